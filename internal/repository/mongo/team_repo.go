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

const (
	teamCollectionName       = "teams"
	invitationCollectionName = "team_invitations"
)

// mongoTeamRepository implements repository.TeamRepository
type mongoTeamRepository struct {
	teams       *mongo.Collection
	invitations *mongo.Collection
}

func NewMongoTeamRepository(db *mongo.Database) repository.TeamRepository {
	return &mongoTeamRepository{
		teams:       db.Collection(teamCollectionName),
		invitations: db.Collection(invitationCollectionName),
	}
}

// Create inserts a team. The creator is always its first member.
func (r *mongoTeamRepository) Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error) {
	if team.Name == "" || team.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("team requires a name and a creator")
	}
	team.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	if !containsID(team.MemberIDs, team.CreatedBy) {
		team.MemberIDs = append(team.MemberIDs, team.CreatedBy)
	}
	return insertOne(ctx, r.teams, team)
}

func (r *mongoTeamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error) {
	return findOne[domain.Team](ctx, r.teams, bson.M{"_id": id})
}

func (r *mongoTeamRepository) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]domain.Team, error) {
	return findAll[domain.Team](ctx, r.teams, bson.M{"member_ids": userID}, sortedBy("name"))
}

func (r *mongoTeamRepository) AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.teams.UpdateOne(ctx, bson.M{"_id": teamID}, update)
	if err != nil {
		return err
	}
	// ModifiedCount is 0 when the user already was a member, which is fine.
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTeamRepository) CreateInvitation(ctx context.Context, inv *domain.TeamInvitation) (primitive.ObjectID, error) {
	inv.ID = primitive.NewObjectID()
	inv.Email = strings.ToLower(inv.Email)
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.Status == "" {
		inv.Status = domain.InvitationPending
	}
	return insertOne(ctx, r.invitations, inv)
}

func (r *mongoTeamRepository) GetInvitation(ctx context.Context, id primitive.ObjectID) (*domain.TeamInvitation, error) {
	return findOne[domain.TeamInvitation](ctx, r.invitations, bson.M{"_id": id})
}

func (r *mongoTeamRepository) ListInvitations(ctx context.Context, teamID primitive.ObjectID) ([]domain.TeamInvitation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findAll[domain.TeamInvitation](ctx, r.invitations, bson.M{"team_id": teamID}, opts)
}

// RespondToInvitation only matches a pending invitation addressed to email.
func (r *mongoTeamRepository) RespondToInvitation(ctx context.Context, id primitive.ObjectID, email string, status domain.InvitationStatus) error {
	filter := bson.M{
		"_id":    id,
		"email":  strings.ToLower(email),
		"status": domain.InvitationPending,
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	result, err := r.invitations.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNoRowsAffected
	}
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// EnsureTeamIndexes creates indexes for teams and team_invitations.
func EnsureTeamIndexes(ctx context.Context, db *mongo.Database) {
	createIndexes(ctx, db.Collection(teamCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "member_ids", Value: 1}}},
	})
	createIndexes(ctx, db.Collection(invitationCollectionName), []mongo.IndexModel{
		{Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}}},
	})
}
