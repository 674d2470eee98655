package mongo

import (
	"context"
	"errors"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	goalCollectionName     = "plan_goals"
	baselineCollectionName = "user_baselines"
)

type mongoGoalRepository struct {
	goals     *mongo.Collection
	baselines *mongo.Collection
}

// NewMongoGoalRepository creates a repository for plan goals and user baselines.
func NewMongoGoalRepository(db *mongo.Database) repository.GoalRepository {
	return &mongoGoalRepository{
		goals:     db.Collection(goalCollectionName),
		baselines: db.Collection(baselineCollectionName),
	}
}

func (r *mongoGoalRepository) Create(ctx context.Context, goal *domain.PlanGoal) (primitive.ObjectID, error) {
	if goal.PlanID == primitive.NilObjectID || goal.Metric == "" {
		return primitive.NilObjectID, errors.New("goal requires a plan and a metric")
	}
	goal.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	return insertOne(ctx, r.goals, goal)
}

func (r *mongoGoalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanGoal, error) {
	return findOne[domain.PlanGoal](ctx, r.goals, bson.M{"_id": id})
}

func (r *mongoGoalRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanGoal, error) {
	return findAll[domain.PlanGoal](ctx, r.goals, bson.M{"plan_id": planID}, sortedBy("created_at"))
}

func (r *mongoGoalRepository) UpdateOwned(ctx context.Context, id, ownerID primitive.ObjectID, fields repository.Fields) error {
	return updateOwned(ctx, r.goals, id, "created_by", ownerID, fields)
}

func (r *mongoGoalRepository) DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error {
	if err := deleteOwned(ctx, r.goals, id, "created_by", ownerID); err != nil {
		return err
	}
	_, err := r.baselines.DeleteMany(ctx, bson.M{"goal_id": id})
	return err
}

// DeleteByPlan removes a plan's goals along with every baseline recorded against them.
func (r *mongoGoalRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	values, err := r.goals.Distinct(ctx, "_id", bson.M{"plan_id": planID})
	if err != nil {
		return err
	}
	if len(values) > 0 {
		if _, err := r.baselines.DeleteMany(ctx, bson.M{"goal_id": bson.M{"$in": values}}); err != nil {
			return err
		}
	}
	_, err = r.goals.DeleteMany(ctx, bson.M{"plan_id": planID})
	return err
}

// UpsertBaseline writes the baseline for (user, goal), replacing any previous value.
func (r *mongoGoalRepository) UpsertBaseline(ctx context.Context, baseline *domain.UserBaseline) error {
	if baseline.RecordedAt.IsZero() {
		baseline.RecordedAt = time.Now().UTC()
	}
	filter := bson.M{"user_id": baseline.UserID, "goal_id": baseline.GoalID}
	update := bson.M{
		"$set": bson.M{
			"baseline_value": baseline.BaselineValue,
			"recorded_at":    baseline.RecordedAt,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	_, err := r.baselines.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoGoalRepository) GetBaseline(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.UserBaseline, error) {
	return findOne[domain.UserBaseline](ctx, r.baselines, bson.M{"user_id": userID, "goal_id": goalID})
}

// EnsureGoalIndexes creates indexes for plan_goals and user_baselines.
func EnsureGoalIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(goalCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "plan_id", Value: 1}}},
	})
	createIndexes(ctx, db.Collection(baselineCollectionName), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "goal_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
