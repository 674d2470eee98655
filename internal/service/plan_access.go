package service

import (
	"context"
	"errors"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanAccessDenied = errors.New("cannot modify another user's plan")
)

func loadPlan(ctx context.Context, planRepo repository.PlanRepository, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, storeError("get plan", err)
	}
	return plan, nil
}

// loadVisiblePlan hides private plans from everyone but their creator.
func loadVisiblePlan(ctx context.Context, planRepo repository.PlanRepository, planID, viewerID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := loadPlan(ctx, planRepo, planID)
	if err != nil {
		return nil, err
	}
	if plan.IsPrivate && plan.CreatedBy != viewerID {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// loadPlanForOwner is used by every structural mutation below the plan row.
func loadPlanForOwner(ctx context.Context, planRepo repository.PlanRepository, planID, actorID primitive.ObjectID) (*domain.Plan, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	plan, err := loadPlan(ctx, planRepo, planID)
	if err != nil {
		return nil, err
	}
	if plan.CreatedBy != actorID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}
