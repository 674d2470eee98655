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

const measurementCollectionName = "user_measurements"

// mongoMeasurementRepository implements repository.MeasurementRepository
type mongoMeasurementRepository struct {
	collection *mongo.Collection
}

func NewMongoMeasurementRepository(db *mongo.Database) repository.MeasurementRepository {
	return &mongoMeasurementRepository{
		collection: db.Collection(measurementCollectionName),
	}
}

// Create inserts a measurement. The unique (user_id, date) index turns a
// second entry for the same day into repository.ErrDuplicate.
func (r *mongoMeasurementRepository) Create(ctx context.Context, m *domain.UserMeasurement) (primitive.ObjectID, error) {
	if m.UserID == primitive.NilObjectID || m.Date == "" {
		return primitive.NilObjectID, errors.New("measurement requires a user and a date")
	}
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now().UTC()
	return insertOne(ctx, r.collection, m)
}

func (r *mongoMeasurementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserMeasurement, error) {
	return findOne[domain.UserMeasurement](ctx, r.collection, bson.M{"_id": id})
}

// ListByUser returns one page of the user's measurements, latest date first.
func (r *mongoMeasurementRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, page repository.Page) ([]domain.UserMeasurement, error) {
	findOptions := pageOptions(page).SetSort(bson.D{{Key: "date", Value: -1}})
	return findAll[domain.UserMeasurement](ctx, r.collection, bson.M{"user_id": userID}, findOptions)
}

func (r *mongoMeasurementRepository) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error {
	return deleteOwned(ctx, r.collection, id, "user_id", userID)
}

func (r *mongoMeasurementRepository) AddPhoto(ctx context.Context, id, userID primitive.ObjectID, key string) error {
	filter := bson.M{"_id": id, "user_id": userID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$addToSet": bson.M{"photo_paths": key}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

// EnsureMeasurementIndexes creates necessary indexes for the user_measurements collection.
func EnsureMeasurementIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
	})
}
