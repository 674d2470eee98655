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
	sessionLogCollectionName = "session_logs"
	setLogCollectionName     = "set_logs"
)

// mongoSessionLogRepository implements repository.SessionLogRepository
type mongoSessionLogRepository struct {
	logs *mongo.Collection
	sets *mongo.Collection
}

func NewMongoSessionLogRepository(db *mongo.Database) repository.SessionLogRepository {
	return &mongoSessionLogRepository{
		logs: db.Collection(sessionLogCollectionName),
		sets: db.Collection(setLogCollectionName),
	}
}

// Create inserts a new session log. StartedAt defaults to now.
func (r *mongoSessionLogRepository) Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error) {
	if log.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session log requires a user")
	}
	log.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if log.StartedAt.IsZero() {
		log.StartedAt = now
	}
	log.CreatedAt = now
	log.UpdatedAt = now

	return insertOne(ctx, r.logs, log)
}

func (r *mongoSessionLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionLog, error) {
	return findOne[domain.SessionLog](ctx, r.logs, bson.M{"_id": id})
}

// ListByUser returns one page of the user's logs, most recently started first.
func (r *mongoSessionLogRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page repository.Page) ([]domain.SessionLog, error) {
	findOptions := pageOptions(page).SetSort(bson.D{{Key: "started_at", Value: -1}})
	return findAll[domain.SessionLog](ctx, r.logs, bson.M{"user_id": userID}, findOptions)
}

func (r *mongoSessionLogRepository) UpdateOwned(ctx context.Context, id, userID primitive.ObjectID, fields repository.Fields) error {
	return updateOwned(ctx, r.logs, id, "user_id", userID, fields)
}

func (r *mongoSessionLogRepository) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error {
	return deleteOwned(ctx, r.logs, id, "user_id", userID)
}

func (r *mongoSessionLogRepository) CountCompletedSessions(ctx context.Context, userID, planID primitive.ObjectID) (int, error) {
	filter := bson.M{
		"user_id":         userID,
		"plan_id":         planID,
		"plan_session_id": bson.M{"$exists": true},
		"completed_at":    bson.M{"$exists": true},
	}
	values, err := r.logs.Distinct(ctx, "plan_session_id", filter)
	if err != nil {
		return 0, err
	}
	return len(values), nil
}

func (r *mongoSessionLogRepository) CreateSet(ctx context.Context, set *domain.SetLog) (primitive.ObjectID, error) {
	set.ID = primitive.NewObjectID()
	set.CreatedAt = time.Now().UTC()
	if set.SetType == "" {
		set.SetType = domain.SetTypeNormal
	}
	return insertOne(ctx, r.sets, set)
}

func (r *mongoSessionLogRepository) ListSets(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.SetLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "set_number", Value: 1}, {Key: "created_at", Value: 1}})
	return findAll[domain.SetLog](ctx, r.sets, bson.M{"session_log_id": sessionLogID}, opts)
}

func (r *mongoSessionLogRepository) DeleteSetOwned(ctx context.Context, id, userID primitive.ObjectID) error {
	return deleteOwned(ctx, r.sets, id, "user_id", userID)
}

func (r *mongoSessionLogRepository) DeleteSetsBySession(ctx context.Context, sessionLogID primitive.ObjectID) error {
	_, err := r.sets.DeleteMany(ctx, bson.M{"session_log_id": sessionLogID})
	return err
}

// EnsureSessionLogIndexes creates indexes for session_logs and set_logs.
func EnsureSessionLogIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(sessionLogCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "started_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "plan_id", Value: 1}, {Key: "plan_session_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	createIndexes(ctx, db.Collection(setLogCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_log_id", Value: 1}, {Key: "set_number", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
}
