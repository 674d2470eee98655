package mongo

import (
	"context"
	"errors"
	"strings"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const profileCollectionName = "profiles"

// mongoProfileRepository implements the repository.ProfileRepository interface using MongoDB.
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new instance of mongoProfileRepository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Create inserts a new profile. Emails are stored lower-cased and are unique.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error) {
	if profile.Email == "" || profile.PasswordHash == "" || profile.Role == "" {
		return primitive.NilObjectID, errors.New("profile email, password hash, and role are required")
	}

	profile.ID = primitive.NewObjectID()
	profile.Email = strings.ToLower(profile.Email)
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	return insertOne(ctx, r.collection, profile)
}

// GetByEmail retrieves a profile by its email address.
func (r *mongoProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return findOne[domain.Profile](ctx, r.collection, bson.M{"email": strings.ToLower(email)})
}

// GetByID retrieves a profile by its ObjectID.
func (r *mongoProfileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	return findOne[domain.Profile](ctx, r.collection, bson.M{"_id": id})
}

// EnsureProfileIndexes creates necessary indexes for the profiles collection.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	})
}
