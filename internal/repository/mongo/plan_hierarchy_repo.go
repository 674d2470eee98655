package mongo

import (
	"context"
	"errors"
	"fmt"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// childLink describes the level directly below another one and the field
// that points back up.
type childLink struct {
	level repository.Level
	field string
}

var hierarchyChildren = map[repository.Level]childLink{
	repository.LevelWeek:     {level: repository.LevelDay, field: "plan_week_id"},
	repository.LevelDay:      {level: repository.LevelSession, field: "plan_day_id"},
	repository.LevelSession:  {level: repository.LevelExercise, field: "plan_session_id"},
	repository.LevelExercise: {level: repository.LevelSet, field: "plan_session_exercise_id"},
}

var hierarchyLevels = []repository.Level{
	repository.LevelWeek,
	repository.LevelDay,
	repository.LevelSession,
	repository.LevelExercise,
	repository.LevelSet,
}

// mongoPlanHierarchyRepository implements repository.PlanHierarchyRepository
type mongoPlanHierarchyRepository struct {
	collections map[repository.Level]*mongo.Collection
}

// NewMongoPlanHierarchyRepository creates a repository over the five plan_* collections.
func NewMongoPlanHierarchyRepository(db *mongo.Database) repository.PlanHierarchyRepository {
	collections := make(map[repository.Level]*mongo.Collection, len(hierarchyLevels))
	for _, level := range hierarchyLevels {
		collections[level] = db.Collection(string(level))
	}
	return &mongoPlanHierarchyRepository{collections: collections}
}

func (r *mongoPlanHierarchyRepository) collection(level repository.Level) (*mongo.Collection, error) {
	c, ok := r.collections[level]
	if !ok {
		return nil, fmt.Errorf("unknown plan level %q", level)
	}
	return c, nil
}

func (r *mongoPlanHierarchyRepository) CreateWeek(ctx context.Context, week *domain.PlanWeek) (primitive.ObjectID, error) {
	week.ID = primitive.NewObjectID()
	return insertOne(ctx, r.collections[repository.LevelWeek], week)
}

func (r *mongoPlanHierarchyRepository) CreateDay(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	day.ID = primitive.NewObjectID()
	return insertOne(ctx, r.collections[repository.LevelDay], day)
}

func (r *mongoPlanHierarchyRepository) CreateSession(ctx context.Context, session *domain.PlanSession) (primitive.ObjectID, error) {
	session.ID = primitive.NewObjectID()
	return insertOne(ctx, r.collections[repository.LevelSession], session)
}

func (r *mongoPlanHierarchyRepository) CreateSessionExercise(ctx context.Context, entry *domain.PlanSessionExercise) (primitive.ObjectID, error) {
	entry.ID = primitive.NewObjectID()
	return insertOne(ctx, r.collections[repository.LevelExercise], entry)
}

func (r *mongoPlanHierarchyRepository) CreateSet(ctx context.Context, set *domain.PlanSessionExerciseSet) (primitive.ObjectID, error) {
	set.ID = primitive.NewObjectID()
	return insertOne(ctx, r.collections[repository.LevelSet], set)
}

// PlanIDOf reads only the plan_id of a hierarchy row.
func (r *mongoPlanHierarchyRepository) PlanIDOf(ctx context.Context, level repository.Level, id primitive.ObjectID) (primitive.ObjectID, error) {
	c, err := r.collection(level)
	if err != nil {
		return primitive.NilObjectID, err
	}
	var row struct {
		PlanID primitive.ObjectID `bson:"plan_id"`
	}
	opts := options.FindOne().SetProjection(bson.M{"plan_id": 1})
	if err := c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&row); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, repository.ErrNotFound
		}
		return primitive.NilObjectID, err
	}
	return row.PlanID, nil
}

func (r *mongoPlanHierarchyRepository) Update(ctx context.Context, level repository.Level, id primitive.ObjectID, fields repository.Fields) error {
	c, err := r.collection(level)
	if err != nil {
		return err
	}
	result, err := c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": setDocument(fields)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a row and walks down the hierarchy removing its descendants.
func (r *mongoPlanHierarchyRepository) Delete(ctx context.Context, level repository.Level, id primitive.ObjectID) error {
	c, err := r.collection(level)
	if err != nil {
		return err
	}
	result, err := c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return r.deleteDescendants(ctx, level, []primitive.ObjectID{id})
}

func (r *mongoPlanHierarchyRepository) deleteDescendants(ctx context.Context, level repository.Level, parentIDs []primitive.ObjectID) error {
	link, ok := hierarchyChildren[level]
	if !ok || len(parentIDs) == 0 {
		return nil
	}
	children := r.collections[link.level]
	filter := bson.M{link.field: bson.M{"$in": parentIDs}}

	var childIDs []primitive.ObjectID
	if _, hasGrandchildren := hierarchyChildren[link.level]; hasGrandchildren {
		values, err := children.Distinct(ctx, "_id", filter)
		if err != nil {
			return err
		}
		for _, v := range values {
			if oid, ok := v.(primitive.ObjectID); ok {
				childIDs = append(childIDs, oid)
			}
		}
	}

	if _, err := children.DeleteMany(ctx, filter); err != nil {
		return err
	}
	return r.deleteDescendants(ctx, link.level, childIDs)
}

// DeleteByPlan removes every hierarchy row of a plan, leaves first.
func (r *mongoPlanHierarchyRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error {
	for i := len(hierarchyLevels) - 1; i >= 0; i-- {
		if _, err := r.collections[hierarchyLevels[i]].DeleteMany(ctx, bson.M{"plan_id": planID}); err != nil {
			return err
		}
	}
	return nil
}

func (r *mongoPlanHierarchyRepository) ListWeeks(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanWeek, error) {
	return findAll[domain.PlanWeek](ctx, r.collections[repository.LevelWeek], bson.M{"plan_id": planID}, sortedBy("week_number"))
}

func (r *mongoPlanHierarchyRepository) ListDays(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	return findAll[domain.PlanDay](ctx, r.collections[repository.LevelDay], bson.M{"plan_id": planID}, sortedBy("day_number"))
}

func (r *mongoPlanHierarchyRepository) ListSessions(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSession, error) {
	return findAll[domain.PlanSession](ctx, r.collections[repository.LevelSession], bson.M{"plan_id": planID}, sortedBy("order_index"))
}

func (r *mongoPlanHierarchyRepository) ListSessionExercises(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSessionExercise, error) {
	return findAll[domain.PlanSessionExercise](ctx, r.collections[repository.LevelExercise], bson.M{"plan_id": planID}, sortedBy("order_index"))
}

func (r *mongoPlanHierarchyRepository) ListSets(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSessionExerciseSet, error) {
	return findAll[domain.PlanSessionExerciseSet](ctx, r.collections[repository.LevelSet], bson.M{"plan_id": planID}, sortedBy("set_number"))
}

func (r *mongoPlanHierarchyRepository) ListSetsForEntry(ctx context.Context, sessionExerciseID primitive.ObjectID) ([]domain.PlanSessionExerciseSet, error) {
	filter := bson.M{"plan_session_exercise_id": sessionExerciseID}
	return findAll[domain.PlanSessionExerciseSet](ctx, r.collections[repository.LevelSet], filter, sortedBy("set_number"))
}

func sortedBy(field string) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: 1}})
}

// EnsurePlanHierarchyIndexes indexes plan_id and the parent pointer of every level.
func EnsurePlanHierarchyIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(string(repository.LevelWeek)), []mongo.IndexModel{
		{Keys: bson.D{{Key: "plan_id", Value: 1}, {Key: "week_number", Value: 1}}},
	})
	for _, link := range hierarchyChildren {
		createIndexes(ctx, db.Collection(string(link.level)), []mongo.IndexModel{
			{Keys: bson.D{{Key: "plan_id", Value: 1}}},
			{Keys: bson.D{{Key: link.field, Value: 1}}},
		})
	}
}
