package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errInsertedID = errors.New("failed to convert inserted ID")

func insertOne(ctx context.Context, collection *mongo.Collection, doc any) (primitive.ObjectID, error) {
	result, err := collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errInsertedID
	}
	return insertedID, nil
}

// findOne decodes a single document. Missing documents map to repository.ErrNotFound.
func findOne[T any](ctx context.Context, collection *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := collection.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// findAll decodes every document matching filter. The result is never nil.
func findAll[T any](ctx context.Context, collection *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// updateOwned applies fields to the document matching both id and the owner field.
// A miss means the row is absent or owned by someone else.
func updateOwned(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, ownerField string, ownerID primitive.ObjectID, fields repository.Fields) error {
	result, err := collection.UpdateOne(ctx, ownedFilter(id, ownerField, ownerID), bson.M{"$set": setDocument(fields)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

func deleteOwned(ctx context.Context, collection *mongo.Collection, id primitive.ObjectID, ownerField string, ownerID primitive.ObjectID) error {
	result, err := collection.DeleteOne(ctx, ownedFilter(id, ownerField, ownerID))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

func ownedFilter(id primitive.ObjectID, ownerField string, ownerID primitive.ObjectID) bson.M {
	return bson.M{"_id": id, ownerField: ownerID}
}

// setDocument turns a partial update into a $set document and stamps updated_at.
func setDocument(fields repository.Fields) bson.M {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	set["updated_at"] = time.Now().UTC()
	return set
}

// pageOptions translates a page into skip/limit. Page 2 with limit 20 skips 20.
func pageOptions(page repository.Page) *options.FindOptions {
	from, to := page.Range()
	return options.Find().SetSkip(int64(from)).SetLimit(int64(to - from + 1))
}

// containsInsensitive builds a case-insensitive substring match.
func containsInsensitive(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}
