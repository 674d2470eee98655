package service

import (
	"context"
	"testing"

	"trainwise/fitness-app/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type referenceFixture struct {
	svc    ReferenceService
	global *fakeReferenceRepo
	saved  *fakeReferenceRepo
	ex     *domain.ExerciseWithRelations
}

func newReferenceFixture(t *testing.T) referenceFixture {
	t.Helper()
	exercises := newFakeExerciseRepo()
	ex, err := NewExerciseService(exercises, &fakeStorage{}).CreateExercise(context.Background(), newActor(), CreateExerciseInput{
		Name:     "Deadlift",
		Category: "back",
		Type:     "strength",
	})
	require.NoError(t, err)

	global, saved := newFakeReferenceRepo(), newFakeReferenceRepo()
	return referenceFixture{
		svc:    NewReferenceService(exercises, global, saved),
		global: global,
		saved:  saved,
		ex:     ex,
	}
}

func TestReferenceService_GlobalReferences(t *testing.T) {
	f := newReferenceFixture(t)
	ctx := context.Background()
	owner, other := newActor(), newActor()

	ref, err := f.svc.AddGlobalReference(ctx, owner, f.ex.ID, ReferenceInput{URL: gofakeit.URL(), Title: "Form check"})
	require.NoError(t, err)
	assert.Equal(t, owner, ref.UserID)
	assert.Len(t, f.global.refs, 1)
	assert.Empty(t, f.saved.refs)

	refs, err := f.svc.ListGlobalReferences(ctx, f.ex.ID)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	_, err = f.svc.UpdateGlobalReference(ctx, other, ref.ID, UpdateReferenceInput{Title: ptr("Mine now")})
	assert.ErrorIs(t, err, ErrReferenceNotOwned)
	assert.Equal(t, "Form check", f.global.refs[ref.ID].Title)

	updated, err := f.svc.UpdateGlobalReference(ctx, owner, ref.ID, UpdateReferenceInput{Title: ptr("Cues")})
	require.NoError(t, err)
	assert.Equal(t, "Cues", updated.Title)

	_, err = f.svc.UpdateGlobalReference(ctx, owner, ref.ID, UpdateReferenceInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	assert.ErrorIs(t, f.svc.DeleteGlobalReference(ctx, other, ref.ID), ErrReferenceNotOwned)
	require.NoError(t, f.svc.DeleteGlobalReference(ctx, owner, ref.ID))
	assert.Empty(t, f.global.refs)
}

func TestReferenceService_SavedReferences(t *testing.T) {
	f := newReferenceFixture(t)
	ctx := context.Background()
	user := newActor()

	ref, err := f.svc.SaveReference(ctx, user, f.ex.ID, ReferenceInput{URL: gofakeit.URL()})
	require.NoError(t, err)

	mine, err := f.svc.ListSavedReferences(ctx, user)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := f.svc.ListSavedReferences(ctx, newActor())
	require.NoError(t, err)
	assert.Empty(t, others)

	assert.ErrorIs(t, f.svc.DeleteSavedReference(ctx, newActor(), ref.ID), ErrReferenceNotOwned)
	require.NoError(t, f.svc.DeleteSavedReference(ctx, user, ref.ID))
}

func TestReferenceService_Validation(t *testing.T) {
	f := newReferenceFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddGlobalReference(ctx, newActor(), f.ex.ID, ReferenceInput{URL: "not a url"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.AddGlobalReference(ctx, primitive.NilObjectID, f.ex.ID, ReferenceInput{URL: gofakeit.URL()})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.SaveReference(ctx, newActor(), primitive.NewObjectID(), ReferenceInput{URL: gofakeit.URL()})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}
