package service

import (
	"context"
	"testing"
	"trainwise/fitness-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanHierarchyService_RequiresPlanOwner(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner, intruder := newActor(), newActor()
	plan, ids := f.seedPlan(t, owner)

	_, err := f.hierarchySvc.AddWeek(ctx, intruder, plan.ID, WeekInput{WeekNumber: 2})
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	_, err = f.hierarchySvc.AddDay(ctx, intruder, ids[0], DayInput{DayNumber: 3})
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
	assert.ErrorIs(t, f.hierarchySvc.UpdateWeek(ctx, intruder, ids[0], UpdateWeekInput{WeekNumber: ptr(5)}), ErrPlanAccessDenied)
	assert.ErrorIs(t, f.hierarchySvc.DeleteSession(ctx, intruder, ids[2]), ErrPlanAccessDenied)

	_, err = f.hierarchySvc.AddWeek(ctx, owner, primitive.NewObjectID(), WeekInput{WeekNumber: 1})
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = f.hierarchySvc.AddDay(ctx, owner, primitive.NewObjectID(), DayInput{DayNumber: 1})
	assert.ErrorIs(t, err, ErrPlanNodeNotFound)
}

func TestPlanHierarchyService_UpdateWeek(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := newActor()
	_, ids := f.seedPlan(t, owner)

	assert.ErrorIs(t, f.hierarchySvc.UpdateWeek(ctx, owner, ids[0], UpdateWeekInput{}), ErrEmptyUpdate)
	require.NoError(t, f.hierarchySvc.UpdateWeek(ctx, owner, ids[0], UpdateWeekInput{Description: ptr("Deload")}))
	assert.Equal(t, "Deload", f.hierarchy.weeks[0].Description)
}

func TestPlanHierarchyService_DeleteCascades(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := newActor()
	_, ids := f.seedPlan(t, owner)

	require.NoError(t, f.hierarchySvc.DeleteDay(ctx, owner, ids[1]))
	assert.Len(t, f.hierarchy.days, 1, "only the rest day is left")
	assert.Empty(t, f.hierarchy.sessions)
	assert.Empty(t, f.hierarchy.exercises)
	assert.Empty(t, f.hierarchy.sets)
	assert.Len(t, f.hierarchy.weeks, 1)

	assert.ErrorIs(t, f.hierarchySvc.DeleteDay(ctx, owner, ids[1]), ErrPlanNodeNotFound)
}

func TestPlanHierarchyService_DeleteSet_KeepsNumbering(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := newActor()
	_, ids := f.seedPlan(t, owner)
	entryID := ids[4]

	sets, err := f.hierarchy.ListSetsForEntry(ctx, entryID)
	require.NoError(t, err)
	require.Len(t, sets, 3)

	require.NoError(t, f.hierarchySvc.DeleteSet(ctx, owner, sets[1].ID))
	remaining, err := f.hierarchy.ListSetsForEntry(ctx, entryID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 1, remaining[0].SetNumber)
	assert.Equal(t, 3, remaining[1].SetNumber)
}

func TestPlanHierarchyService_AddSet(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := newActor()
	plan, ids := f.seedPlan(t, owner)

	set, err := f.hierarchySvc.AddSet(ctx, owner, ids[4], SetInput{SetNumber: 4})
	require.NoError(t, err)
	assert.Equal(t, domain.SetTypeNormal, set.SetType)
	assert.Equal(t, plan.ID, set.PlanID)

	_, err = f.hierarchySvc.AddSet(ctx, owner, ids[4], SetInput{SetNumber: 5, SetType: "giant"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPlanHierarchyService_AddSessionExercise_UnknownExercise(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := newActor()
	_, ids := f.seedPlan(t, owner)

	_, err := f.hierarchySvc.AddSessionExercise(ctx, owner, ids[3], SessionExerciseInput{ExerciseID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestPlanHierarchyService_GetGroupedSets(t *testing.T) {
	f := newPlanFixture()
	ctx := context.Background()
	owner := newActor()
	_, ids := f.seedPlan(t, owner)

	groups, err := f.hierarchySvc.GetGroupedSets(ctx, newActor(), ids[4])
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, domain.SetTypeWarmup, groups[0].SetType)
	assert.Len(t, groups[0].Sets, 1)
	assert.Equal(t, domain.SetTypePyramid, groups[1].SetType)
	assert.Len(t, groups[1].Sets, 2)

	_, err = f.hierarchySvc.GetGroupedSets(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPlanNodeNotFound)
}
