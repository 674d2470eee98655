package mongo

import (
	"context"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections backing repository.ExerciseReferenceRepository.
const (
	GlobalReferenceCollection = "exercise_reference_global"
	SavedReferenceCollection  = "exercise_saved_references"
)

type mongoReferenceRepository struct {
	collection *mongo.Collection
}

// NewMongoReferenceRepository returns a reference repository over the named
// collection, either GlobalReferenceCollection or SavedReferenceCollection.
func NewMongoReferenceRepository(db *mongo.Database, collectionName string) repository.ExerciseReferenceRepository {
	return &mongoReferenceRepository{collection: db.Collection(collectionName)}
}

func (r *mongoReferenceRepository) Create(ctx context.Context, ref *domain.ExerciseReference) (primitive.ObjectID, error) {
	ref.ID = primitive.NewObjectID()
	ref.CreatedAt = time.Now().UTC()
	return insertOne(ctx, r.collection, ref)
}

func (r *mongoReferenceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseReference, error) {
	return findOne[domain.ExerciseReference](ctx, r.collection, bson.M{"_id": id})
}

func (r *mongoReferenceRepository) ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseReference, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[domain.ExerciseReference](ctx, r.collection, bson.M{"exercise_id": exerciseID}, opts)
}

func (r *mongoReferenceRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseReference, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[domain.ExerciseReference](ctx, r.collection, bson.M{"user_id": userID}, opts)
}

func (r *mongoReferenceRepository) UpdateOwned(ctx context.Context, id, userID primitive.ObjectID, fields repository.Fields) error {
	return updateOwned(ctx, r.collection, id, "user_id", userID, fields)
}

func (r *mongoReferenceRepository) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error {
	return deleteOwned(ctx, r.collection, id, "user_id", userID)
}

// EnsureReferenceIndexes creates indexes for one reference collection.
func EnsureReferenceIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "exercise_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
}
