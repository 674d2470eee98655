package service

import (
	"context"
	"testing"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWorkoutLogService_UpdateSessionLog_NonOwner(t *testing.T) {
	repo := newFakeSessionLogRepo()
	svc := NewWorkoutLogService(repo, &fakeHierarchyRepo{})
	ctx := context.Background()
	owner, intruder := newActor(), newActor()

	entry, err := svc.CreateSessionLog(ctx, owner, CreateSessionLogInput{Title: "Morning run"})
	require.NoError(t, err)

	_, err = svc.UpdateSessionLog(ctx, intruder, entry.ID, UpdateSessionLogInput{Title: ptr("Hacked")})
	assert.ErrorIs(t, err, ErrSessionLogNotOwned)
	assert.Equal(t, 1, repo.updateCalls, "exactly one conditional write, no separate ownership read")
	assert.Equal(t, "Morning run", repo.logs[entry.ID].Title)

	updated, err := svc.UpdateSessionLog(ctx, owner, entry.ID, UpdateSessionLogInput{Title: ptr("Long run")})
	require.NoError(t, err)
	assert.Equal(t, "Long run", updated.Title)
}

func TestWorkoutLogService_UpdateSessionLog_Empty(t *testing.T) {
	repo := newFakeSessionLogRepo()
	svc := NewWorkoutLogService(repo, &fakeHierarchyRepo{})

	_, err := svc.UpdateSessionLog(context.Background(), newActor(), primitive.NewObjectID(), UpdateSessionLogInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
	assert.Equal(t, 0, repo.updateCalls)
}

func TestWorkoutLogService_CreateSessionLog_FromPlanSession(t *testing.T) {
	hierarchy := &fakeHierarchyRepo{}
	planID := primitive.NewObjectID()
	sessionID, err := hierarchy.CreateSession(context.Background(), &domain.PlanSession{PlanID: planID})
	require.NoError(t, err)

	svc := NewWorkoutLogService(newFakeSessionLogRepo(), hierarchy)
	entry, err := svc.CreateSessionLog(context.Background(), newActor(), CreateSessionLogInput{PlanSessionID: ptr(sessionID.Hex())})
	require.NoError(t, err)
	require.NotNil(t, entry.PlanID)
	assert.Equal(t, planID, *entry.PlanID)
	assert.False(t, entry.StartedAt.IsZero())

	_, err = svc.CreateSessionLog(context.Background(), newActor(), CreateSessionLogInput{PlanSessionID: ptr(primitive.NewObjectID().Hex())})
	assert.ErrorIs(t, err, ErrPlanNodeNotFound)
}

func TestWorkoutLogService_SetLogs(t *testing.T) {
	repo := newFakeSessionLogRepo()
	svc := NewWorkoutLogService(repo, &fakeHierarchyRepo{})
	ctx := context.Background()
	owner := newActor()
	exerciseID := primitive.NewObjectID().Hex()

	entry, err := svc.CreateSessionLog(ctx, owner, CreateSessionLogInput{Title: "Legs"})
	require.NoError(t, err)

	_, err = svc.AddSetLog(ctx, newActor(), entry.ID, SetLogInput{ExerciseID: exerciseID, SetNumber: 1})
	assert.ErrorIs(t, err, ErrSessionLogNotOwned)

	first, err := svc.AddSetLog(ctx, owner, entry.ID, SetLogInput{ExerciseID: exerciseID, SetNumber: 1, Reps: ptr(5), Weight: ptr(100.0)})
	require.NoError(t, err)
	assert.Equal(t, domain.SetTypeNormal, first.SetType)
	_, err = svc.AddSetLog(ctx, owner, entry.ID, SetLogInput{ExerciseID: exerciseID, SetNumber: 2, SetType: domain.SetTypeFailure})
	require.NoError(t, err)

	rich, err := svc.GetSessionLog(ctx, owner, entry.ID)
	require.NoError(t, err)
	require.Len(t, rich.Sets, 2)
	assert.Equal(t, 1, rich.Sets[0].SetNumber)

	assert.ErrorIs(t, svc.DeleteSetLog(ctx, newActor(), first.ID), ErrSetLogNotOwned)
	require.NoError(t, svc.DeleteSetLog(ctx, owner, first.ID))

	require.NoError(t, svc.DeleteSessionLog(ctx, owner, entry.ID))
	assert.Empty(t, repo.logs)
	assert.Empty(t, repo.sets)
}

func TestWorkoutLogService_GetSessionLog_HidesOthers(t *testing.T) {
	svc := NewWorkoutLogService(newFakeSessionLogRepo(), &fakeHierarchyRepo{})
	ctx := context.Background()
	owner := newActor()

	entry, err := svc.CreateSessionLog(ctx, owner, CreateSessionLogInput{CompletedAt: ptr(time.Now())})
	require.NoError(t, err)

	got, err := svc.GetSessionLog(ctx, newActor(), entry.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.GetSessionLog(ctx, owner, primitive.NewObjectID())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestWorkoutLogService_DeleteSessionLog_NonOwner(t *testing.T) {
	repo := newFakeSessionLogRepo()
	svc := NewWorkoutLogService(repo, &fakeHierarchyRepo{})
	ctx := context.Background()

	entry, err := svc.CreateSessionLog(ctx, newActor(), CreateSessionLogInput{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteSessionLog(ctx, newActor(), entry.ID), ErrSessionLogNotOwned)
	assert.Len(t, repo.logs, 1)
}

func TestWorkoutLogService_ListSessionLogs_NormalizesPage(t *testing.T) {
	repo := newFakeSessionLogRepo()
	svc := NewWorkoutLogService(repo, &fakeHierarchyRepo{})

	_, err := svc.ListSessionLogs(context.Background(), newActor(), repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Page: 1, Limit: repository.DefaultPageLimit}, repo.lastListPage)
}
