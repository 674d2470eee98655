package service

import (
	"context"
	"errors"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/progress"
	"trainwise/fitness-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGoalNotOwned     = errors.New("cannot modify another user's goal")
	ErrBaselineNotFound = errors.New("no baseline recorded for this goal")
)

type CreateGoalInput struct {
	Metric      string                `json:"metric" validate:"required,max=100"`
	Direction   domain.GoalDirection  `json:"direction" validate:"required,oneof=increase decrease"`
	TargetType  domain.GoalTargetType `json:"target_type" validate:"required,oneof=absolute_value percent_change absolute_change"`
	TargetValue float64               `json:"target_value"`
	ExerciseID  *string               `json:"exercise_id" validate:"omitempty,len=24,hexadecimal"`
}

type UpdateGoalInput struct {
	Metric      *string                `json:"metric" validate:"omitempty,min=1,max=100"`
	Direction   *domain.GoalDirection  `json:"direction" validate:"omitempty,oneof=increase decrease"`
	TargetType  *domain.GoalTargetType `json:"target_type" validate:"omitempty,oneof=absolute_value percent_change absolute_change"`
	TargetValue *float64               `json:"target_value"`
}

type GoalService interface {
	CreateGoal(ctx context.Context, actorID, planID primitive.ObjectID, in CreateGoalInput) (*domain.PlanGoal, error)
	ListGoals(ctx context.Context, viewerID, planID primitive.ObjectID) ([]domain.PlanGoal, error)
	UpdateGoal(ctx context.Context, actorID, goalID primitive.ObjectID, in UpdateGoalInput) (*domain.PlanGoal, error)
	DeleteGoal(ctx context.Context, actorID, goalID primitive.ObjectID) error
	SetBaseline(ctx context.Context, actorID, goalID primitive.ObjectID, value float64) (*domain.UserBaseline, error)
	GetBaseline(ctx context.Context, actorID, goalID primitive.ObjectID) (*domain.UserBaseline, error)
	// EvaluateGoal compares current against the actor's baseline for the goal.
	EvaluateGoal(ctx context.Context, actorID, goalID primitive.ObjectID, current float64) (*progress.GoalProgress, error)
}

type goalService struct {
	goalRepo repository.GoalRepository
	planRepo repository.PlanRepository
	now      func() time.Time
}

func NewGoalService(goalRepo repository.GoalRepository, planRepo repository.PlanRepository) GoalService {
	return &goalService{
		goalRepo: goalRepo,
		planRepo: planRepo,
		now:      time.Now,
	}
}

func (s *goalService) CreateGoal(ctx context.Context, actorID, planID primitive.ObjectID, in CreateGoalInput) (*domain.PlanGoal, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := loadPlanForOwner(ctx, s.planRepo, planID, actorID); err != nil {
		return nil, err
	}

	goal := &domain.PlanGoal{
		PlanID:      planID,
		CreatedBy:   actorID,
		Metric:      in.Metric,
		Direction:   in.Direction,
		TargetType:  in.TargetType,
		TargetValue: in.TargetValue,
	}
	if in.ExerciseID != nil {
		exerciseID, _ := primitive.ObjectIDFromHex(*in.ExerciseID)
		goal.ExerciseID = &exerciseID
	}
	id, err := s.goalRepo.Create(ctx, goal)
	if err != nil {
		return nil, storeError("create goal", err)
	}
	goal.ID = id
	return goal, nil
}

func (s *goalService) ListGoals(ctx context.Context, viewerID, planID primitive.ObjectID) ([]domain.PlanGoal, error) {
	if _, err := loadVisiblePlan(ctx, s.planRepo, planID, viewerID); err != nil {
		return nil, err
	}
	goals, err := s.goalRepo.ListByPlan(ctx, planID)
	if err != nil {
		return nil, storeError("list goals", err)
	}
	return goals, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, actorID, goalID primitive.ObjectID, in UpdateGoalInput) (*domain.PlanGoal, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	fields := repository.Fields{}
	setIf(fields, "metric", in.Metric)
	setIf(fields, "direction", in.Direction)
	setIf(fields, "target_type", in.TargetType)
	setIf(fields, "target_value", in.TargetValue)
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	err := s.goalRepo.UpdateOwned(ctx, goalID, actorID, fields)
	if err := ownedWriteError(err, ErrGoalNotOwned, "update goal"); err != nil {
		return nil, err
	}
	return s.loadGoal(ctx, goalID)
}

func (s *goalService) DeleteGoal(ctx context.Context, actorID, goalID primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.goalRepo.DeleteOwned(ctx, goalID, actorID)
	return ownedWriteError(err, ErrGoalNotOwned, "delete goal")
}

// loadVisibleGoal fetches a goal whose plan the viewer can see.
func (s *goalService) loadVisibleGoal(ctx context.Context, viewerID, goalID primitive.ObjectID) (*domain.PlanGoal, error) {
	goal, err := s.loadGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisiblePlan(ctx, s.planRepo, goal.PlanID, viewerID); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (s *goalService) loadGoal(ctx context.Context, goalID primitive.ObjectID) (*domain.PlanGoal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, storeError("get goal", err)
	}
	return goal, nil
}

// SetBaseline records or replaces the actor's starting value for a goal.
func (s *goalService) SetBaseline(ctx context.Context, actorID, goalID primitive.ObjectID, value float64) (*domain.UserBaseline, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if _, err := s.loadVisibleGoal(ctx, actorID, goalID); err != nil {
		return nil, err
	}
	baseline := &domain.UserBaseline{
		UserID:        actorID,
		GoalID:        goalID,
		BaselineValue: value,
		RecordedAt:    s.now().UTC(),
	}
	if err := s.goalRepo.UpsertBaseline(ctx, baseline); err != nil {
		return nil, storeError("upsert baseline", err)
	}
	return baseline, nil
}

// GetBaseline returns nil when the actor has not recorded a baseline yet.
func (s *goalService) GetBaseline(ctx context.Context, actorID, goalID primitive.ObjectID) (*domain.UserBaseline, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	baseline, err := s.goalRepo.GetBaseline(ctx, actorID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warnf("no baseline for goal %s and user %s", goalID.Hex(), actorID.Hex())
			return nil, nil
		}
		return nil, storeError("get baseline", err)
	}
	return baseline, nil
}

func (s *goalService) EvaluateGoal(ctx context.Context, actorID, goalID primitive.ObjectID, current float64) (*progress.GoalProgress, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	goal, err := s.loadVisibleGoal(ctx, actorID, goalID)
	if err != nil {
		return nil, err
	}
	baseline, err := s.GetBaseline(ctx, actorID, goalID)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, ErrBaselineNotFound
	}
	result := progress.Evaluate(*goal, baseline.BaselineValue, current)
	return &result, nil
}
