package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.CreatedBy == primitive.NilObjectID || plan.Title == "" {
		return primitive.NilObjectID, errors.New("plan requires a creator and a title")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	return insertOne(ctx, r.collection, plan)
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	return findOne[domain.Plan](ctx, r.collection, bson.M{"_id": id})
}

// List returns one page of plans visible to the viewer, newest first.
func (r *mongoPlanRepository) List(ctx context.Context, filter repository.PlanFilter) ([]domain.Plan, error) {
	findOptions := pageOptions(filter.Page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[domain.Plan](ctx, r.collection, planListFilter(filter), findOptions)
}

func planListFilter(filter repository.PlanFilter) bson.M {
	query := bson.M{}
	if filter.OnlyMine {
		query["created_by"] = filter.ViewerID
	} else {
		query["$or"] = bson.A{
			bson.M{"is_private": false},
			bson.M{"created_by": filter.ViewerID},
		}
	}
	if filter.Sport != "" {
		query["sport"] = filter.Sport
	}
	if filter.Difficulty > 0 {
		query["difficulty"] = filter.Difficulty
	}
	if filter.Search != "" {
		query["title"] = containsInsensitive(filter.Search)
	}
	if filter.TeamID != nil {
		query["team_id"] = *filter.TeamID
	}
	return query
}

func (r *mongoPlanRepository) UpdateOwned(ctx context.Context, id, ownerID primitive.ObjectID, fields repository.Fields) error {
	return updateOwned(ctx, r.collection, id, "created_by", ownerID, fields)
}

func (r *mongoPlanRepository) DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error {
	return deleteOwned(ctx, r.collection, id, "created_by", ownerID)
}

func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// IncrementCounter atomically adds one to an engagement counter.
func (r *mongoPlanRepository) IncrementCounter(ctx context.Context, id primitive.ObjectID, counter string) error {
	switch counter {
	case repository.CounterForks, repository.CounterLikes, repository.CounterViews:
	default:
		return fmt.Errorf("unknown plan counter %q", counter)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{counter: 1}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "is_private", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "team_id", Value: 1}}},
		{Keys: bson.D{{Key: "sport", Value: 1}}},
	})
}
