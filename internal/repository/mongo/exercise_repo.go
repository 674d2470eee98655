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
	exerciseCollectionName         = "exercises"
	exerciseCategoryCollectionName = "exercise_to_category"
	exerciseTypeCollectionName     = "exercise_to_type"
	exerciseMuscleCollectionName   = "exercise_muscle"
)

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
	categories *mongo.Collection
	types      *mongo.Collection
	muscles    *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
		categories: db.Collection(exerciseCategoryCollectionName),
		types:      db.Collection(exerciseTypeCollectionName),
		muscles:    db.Collection(exerciseMuscleCollectionName),
	}
}

// Create inserts a new exercise into the database.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and creator are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	return insertOne(ctx, r.collection, exercise)
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	return findOne[domain.Exercise](ctx, r.collection, bson.M{"_id": id})
}

// List returns one page of exercises, newest first. Category and type
// filters are resolved against the join collections first.
func (r *mongoExerciseRepository) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	var restrictTo []primitive.ObjectID
	restricted := false

	if len(filter.Categories) > 0 {
		ids, err := distinctExerciseIDs(ctx, r.categories, bson.M{"category": bson.M{"$in": filter.Categories}})
		if err != nil {
			return nil, err
		}
		restrictTo, restricted = ids, true
	}
	if len(filter.Types) > 0 {
		ids, err := distinctExerciseIDs(ctx, r.types, bson.M{"type": bson.M{"$in": filter.Types}})
		if err != nil {
			return nil, err
		}
		if restricted {
			ids = intersectIDs(restrictTo, ids)
		}
		restrictTo, restricted = ids, true
	}
	if restricted && len(restrictTo) == 0 {
		return []domain.Exercise{}, nil
	}

	findOptions := pageOptions(filter.Page).SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[domain.Exercise](ctx, r.collection, exerciseListFilter(filter, restrictTo), findOptions)
}

// exerciseListFilter builds the query document for List. restrictTo, when
// non-nil, limits the result to those ids.
func exerciseListFilter(filter repository.ExerciseFilter, restrictTo []primitive.ObjectID) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		query["name"] = containsInsensitive(filter.Search)
	}
	if filter.Environment != "" {
		query["environment"] = filter.Environment
	}
	if filter.Difficulty > 0 {
		query["difficulty"] = filter.Difficulty
	}
	if filter.CreatedBy != nil {
		query["created_by"] = *filter.CreatedBy
	}
	if restrictTo != nil {
		query["_id"] = bson.M{"$in": restrictTo}
	}
	return query
}

func distinctExerciseIDs(ctx context.Context, collection *mongo.Collection, filter bson.M) ([]primitive.ObjectID, error) {
	values, err := collection.Distinct(ctx, "exercise_id", filter)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func intersectIDs(a, b []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	out := []primitive.ObjectID{}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// UpdateOwned modifies an exercise only when it was created by ownerID.
func (r *mongoExerciseRepository) UpdateOwned(ctx context.Context, id, ownerID primitive.ObjectID, fields repository.Fields) error {
	return updateOwned(ctx, r.collection, id, "created_by", ownerID, fields)
}

// DeleteOwned removes an exercise only when it was created by ownerID.
func (r *mongoExerciseRepository) DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error {
	return deleteOwned(ctx, r.collection, id, "created_by", ownerID)
}

func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoExerciseRepository) AddCategory(ctx context.Context, link *domain.ExerciseCategory) (primitive.ObjectID, error) {
	link.ID = primitive.NewObjectID()
	return insertOne(ctx, r.categories, link)
}

func (r *mongoExerciseRepository) AddType(ctx context.Context, link *domain.ExerciseType) (primitive.ObjectID, error) {
	link.ID = primitive.NewObjectID()
	return insertOne(ctx, r.types, link)
}

func (r *mongoExerciseRepository) AddMuscle(ctx context.Context, link *domain.ExerciseMuscle) (primitive.ObjectID, error) {
	link.ID = primitive.NewObjectID()
	return insertOne(ctx, r.muscles, link)
}

func (r *mongoExerciseRepository) ListCategories(ctx context.Context, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseCategory, error) {
	return findAll[domain.ExerciseCategory](ctx, r.categories, bson.M{"exercise_id": bson.M{"$in": exerciseIDs}})
}

func (r *mongoExerciseRepository) ListTypes(ctx context.Context, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseType, error) {
	return findAll[domain.ExerciseType](ctx, r.types, bson.M{"exercise_id": bson.M{"$in": exerciseIDs}})
}

func (r *mongoExerciseRepository) ListMuscles(ctx context.Context, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseMuscle, error) {
	return findAll[domain.ExerciseMuscle](ctx, r.muscles, bson.M{"exercise_id": bson.M{"$in": exerciseIDs}})
}

// DeleteRelations removes every category, type and muscle link of an exercise.
func (r *mongoExerciseRepository) DeleteRelations(ctx context.Context, exerciseID primitive.ObjectID) error {
	filter := bson.M{"exercise_id": exerciseID}
	for _, c := range []*mongo.Collection{r.categories, r.types, r.muscles} {
		if _, err := c.DeleteMany(ctx, filter); err != nil {
			return err
		}
	}
	return nil
}

// EnsureExerciseIndexes creates indexes for exercises and its join collections.
func EnsureExerciseIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(exerciseCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
		{Keys: bson.D{{Key: "environment", Value: 1}, {Key: "difficulty", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	createIndexes(ctx, db.Collection(exerciseCategoryCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "exercise_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "exercise_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	createIndexes(ctx, db.Collection(exerciseTypeCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "exercise_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "exercise_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	createIndexes(ctx, db.Collection(exerciseMuscleCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "exercise_id", Value: 1}}},
	})
}
