package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/progress"
	"trainwise/fitness-app/internal/repository"
	"trainwise/fitness-app/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeExerciseService struct {
	service.ExerciseService
	byID       map[primitive.ObjectID]*domain.ExerciseWithRelations
	lastParams service.ExerciseListParams
	getCalls   int
}

func (f *fakeExerciseService) GetExercise(_ context.Context, id primitive.ObjectID) (*domain.ExerciseWithRelations, error) {
	f.getCalls++
	return f.byID[id], nil
}

func (f *fakeExerciseService) ListExercises(_ context.Context, _ primitive.ObjectID, params service.ExerciseListParams) ([]domain.ExerciseWithRelations, error) {
	f.lastParams = params
	return []domain.ExerciseWithRelations{}, nil
}

func (f *fakeExerciseService) UpdateExercise(_ context.Context, _, id primitive.ObjectID, in service.UpdateExerciseInput) (*domain.ExerciseWithRelations, error) {
	ex, ok := f.byID[id]
	if !ok {
		return nil, service.ErrExerciseNotOwned
	}
	if in.Name != nil {
		ex.Name = *in.Name
	}
	return ex, nil
}

type fakePlanService struct {
	service.PlanService
	summaryCalls int
	forkErr      error
}

func (f *fakePlanService) GetPlanSummary(_ context.Context, _, planID primitive.ObjectID) (*service.PlanSummary, error) {
	f.summaryCalls++
	return &service.PlanSummary{
		PlanID:            planID,
		Rollup:            progress.Rollup{NumWeeks: 1, TotalDays: 2, WorkoutDays: 1, RestDays: 1, TotalSessions: 2},
		CompletedSessions: f.summaryCalls,
		CompletionPercent: 50,
	}, nil
}

func (f *fakePlanService) ForkPlan(_ context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error) {
	if f.forkErr != nil {
		return nil, f.forkErr
	}
	return &domain.Plan{ID: primitive.NewObjectID(), CreatedBy: actorID, ForkedFrom: &planID, IsPrivate: true}, nil
}

type fakeWorkoutLogService struct {
	service.WorkoutLogService
	owner primitive.ObjectID
}

func (f *fakeWorkoutLogService) CreateSessionLog(_ context.Context, actorID primitive.ObjectID, in service.CreateSessionLogInput) (*domain.SessionLog, error) {
	return &domain.SessionLog{ID: primitive.NewObjectID(), UserID: actorID, Title: in.Title}, nil
}

func (f *fakeWorkoutLogService) UpdateSessionLog(_ context.Context, actorID, id primitive.ObjectID, in service.UpdateSessionLogInput) (*domain.SessionLog, error) {
	if in.Title == nil && in.Notes == nil && in.CompletedAt == nil {
		return nil, service.ErrEmptyUpdate
	}
	if actorID != f.owner {
		return nil, service.ErrSessionLogNotOwned
	}
	return &domain.SessionLog{ID: id, UserID: actorID, Title: *in.Title}, nil
}

func (f *fakeWorkoutLogService) GetSessionLog(_ context.Context, _, _ primitive.ObjectID) (*domain.SessionLogWithSets, error) {
	return nil, nil
}

func TestGetExercise_MissingIsNotFound(t *testing.T) {
	srv := newTestServer(t, Services{Exercise: &fakeExerciseService{}}, nil)
	token, _ := srv.auth.login(domain.RoleAthlete)

	rec := srv.do(t, http.MethodGet, "/api/v1/exercises/"+primitive.NewObjectID().Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, service.ErrExerciseNotFound.Error(), errorMessage(t, rec))

	rec = srv.do(t, http.MethodGet, "/api/v1/exercises/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetExercise_CachedUntilUpdate(t *testing.T) {
	id := primitive.NewObjectID()
	exercises := &fakeExerciseService{byID: map[primitive.ObjectID]*domain.ExerciseWithRelations{
		id: {Exercise: domain.Exercise{ID: id, Name: "Squat"}},
	}}
	srv := newTestServer(t, Services{Exercise: exercises}, nil)
	token, _ := srv.auth.login(domain.RoleCoach)
	path := "/api/v1/exercises/" + id.Hex()

	for i := 0; i < 2; i++ {
		rec := srv.do(t, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Squat", decode[domain.ExerciseWithRelations](t, rec).Name)
	}
	assert.Equal(t, 1, exercises.getCalls)

	rec := srv.do(t, http.MethodPatch, path, token, map[string]string{"name": "Back squat"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Back squat", decode[domain.ExerciseWithRelations](t, rec).Name)
	assert.Equal(t, 2, exercises.getCalls)
}

func TestListExercises_BindsQuery(t *testing.T) {
	exercises := &fakeExerciseService{}
	srv := newTestServer(t, Services{Exercise: exercises}, nil)
	token, _ := srv.auth.login(domain.RoleAthlete)

	rec := srv.do(t, http.MethodGet, "/api/v1/exercises?search=row&category=back&category=arms&type=strength&mine=true&page=2&limit=20", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	p := exercises.lastParams
	assert.Equal(t, "row", p.Search)
	assert.Equal(t, []string{"back", "arms"}, p.Categories)
	assert.Equal(t, []string{"strength"}, p.Types)
	assert.True(t, p.Mine)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 20, p.Limit)
}

func TestPlanSummary_InvalidatedBySessionLog(t *testing.T) {
	plans := &fakePlanService{}
	srv := newTestServer(t, Services{Plan: plans, WorkoutLog: &fakeWorkoutLogService{}}, nil)
	token, _ := srv.auth.login(domain.RoleAthlete)
	path := fmt.Sprintf("/api/v1/plans/%s/summary", primitive.NewObjectID().Hex())

	first := decode[service.PlanSummary](t, srv.do(t, http.MethodGet, path, token, nil))
	second := decode[service.PlanSummary](t, srv.do(t, http.MethodGet, path, token, nil))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, plans.summaryCalls)

	rec := srv.do(t, http.MethodPost, "/api/v1/session-logs", token, map[string]string{"title": gofakeit.HipsterWord()})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.CounterSessionLogs))

	third := decode[service.PlanSummary](t, srv.do(t, http.MethodGet, path, token, nil))
	assert.Equal(t, 2, plans.summaryCalls)
	assert.Equal(t, 2, third.CompletedSessions)
}

func TestForkPlan(t *testing.T) {
	t.Run("CountsSuccessfulForks", func(t *testing.T) {
		srv := newTestServer(t, Services{Plan: &fakePlanService{}}, nil)
		token, userID := srv.auth.login(domain.RoleAthlete)
		source := primitive.NewObjectID()

		rec := srv.do(t, http.MethodPost, "/api/v1/plans/"+source.Hex()+"/fork", token, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		fork := decode[domain.Plan](t, rec)
		assert.Equal(t, userID, fork.CreatedBy)
		require.NotNil(t, fork.ForkedFrom)
		assert.Equal(t, source, *fork.ForkedFrom)
		assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.CounterPlanForks))
	})

	t.Run("PrivatePlanIsNotFound", func(t *testing.T) {
		srv := newTestServer(t, Services{Plan: &fakePlanService{forkErr: service.ErrPlanNotFound}}, nil)
		token, _ := srv.auth.login(domain.RoleAthlete)

		rec := srv.do(t, http.MethodPost, "/api/v1/plans/"+primitive.NewObjectID().Hex()+"/fork", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, 0.0, testutil.ToFloat64(srv.metrics.CounterPlanForks))
	})
}

func TestUpdateSessionLog(t *testing.T) {
	logs := &fakeWorkoutLogService{}
	srv := newTestServer(t, Services{WorkoutLog: logs}, nil)
	ownerToken, ownerID := srv.auth.login(domain.RoleAthlete)
	otherToken, _ := srv.auth.login(domain.RoleAthlete)
	logs.owner = ownerID
	path := "/api/v1/session-logs/" + primitive.NewObjectID().Hex()

	testCases := []struct {
		name           string
		token          string
		body           map[string]any
		expectedStatus int
	}{
		{name: "Owner", token: ownerToken, body: map[string]any{"title": "Leg day"}, expectedStatus: http.StatusOK},
		{name: "NotOwner", token: otherToken, body: map[string]any{"title": "Leg day"}, expectedStatus: http.StatusForbidden},
		{name: "EmptyUpdate", token: ownerToken, body: map[string]any{}, expectedStatus: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPatch, path, tc.token, tc.body)
			assert.Equal(t, tc.expectedStatus, rec.Code, rec.Body.String())
		})
	}

	rec := srv.do(t, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendInvitationEmail(t *testing.T) {
	t.Run("FailureReturnsRawError", func(t *testing.T) {
		teams := &fakeTeamService{emailErr: errors.New("send email: provider returned 422: invalid from address")}
		srv := newTestServer(t, Services{Team: teams}, nil)
		token, _ := srv.auth.login(domain.RoleCoach)

		rec := srv.do(t, http.MethodPost, "/api/v1/invitations/"+primitive.NewObjectID().Hex()+"/email", token, nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "send email: provider returned 422: invalid from address", errorMessage(t, rec))
		assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.CounterInvitationEmails.WithLabelValues("failed")))
	})

	t.Run("Sent", func(t *testing.T) {
		srv := newTestServer(t, Services{Team: &fakeTeamService{}}, nil)
		token, _ := srv.auth.login(domain.RoleCoach)

		rec := srv.do(t, http.MethodPost, "/api/v1/invitations/"+primitive.NewObjectID().Hex()+"/email", token, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"sent": true}`, rec.Body.String())
		assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.CounterInvitationEmails.WithLabelValues("sent")))
	})
}

func TestRespondError(t *testing.T) {
	testCases := []struct {
		err            error
		expectedStatus int
	}{
		{fmt.Errorf("%w: name must satisfy required", service.ErrValidation), http.StatusBadRequest},
		{service.ErrEmptyUpdate, http.StatusBadRequest},
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{service.ErrUserAlreadyExists, http.StatusConflict},
		{service.ErrInvitationNotPending, http.StatusConflict},
		{service.ErrPlanNotFound, http.StatusNotFound},
		{service.ErrBaselineNotFound, http.StatusNotFound},
		{service.ErrPlanAccessDenied, http.StatusForbidden},
		{service.ErrNotTeamMember, http.StatusForbidden},
		{fmt.Errorf("get plan: %w", repository.ErrNotFound), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			srv := newTestServer(t, Services{Plan: &fakePlanService{forkErr: tc.err}}, nil)
			token, _ := srv.auth.login(domain.RoleAthlete)

			rec := srv.do(t, http.MethodPost, "/api/v1/plans/"+primitive.NewObjectID().Hex()+"/fork", token, nil)
			assert.Equal(t, tc.expectedStatus, rec.Code)
			if tc.expectedStatus == http.StatusInternalServerError {
				assert.Equal(t, "Failed to fork plan.", errorMessage(t, rec))
			} else {
				assert.Equal(t, tc.err.Error(), errorMessage(t, rec))
			}
		})
	}
}
