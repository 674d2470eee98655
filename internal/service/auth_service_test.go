package service

import (
	"context"
	"testing"
	"time"
	"trainwise/fitness-app/internal/domain"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAuthService_RegisterLoginParse(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeProfileRepo(), "test-secret", time.Hour)

	in := RegisterInput{
		Name:     gofakeit.Name(),
		Email:    gofakeit.Email(),
		Password: "correct-horse-battery",
		Role:     domain.RoleCoach,
	}
	profile, err := svc.Register(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Empty(t, profile.PasswordHash)

	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, loggedIn, err := svc.Login(ctx, in.Email, in.Password)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, loggedIn.ID)

	userID, role, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, userID)
	assert.Equal(t, domain.RoleCoach, role)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeProfileRepo(), "test-secret", time.Hour)
	_, err := svc.Register(ctx, RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "password123", Role: domain.RoleAthlete,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeProfileRepo(), "test-secret", time.Hour)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "x", Email: "not-an-email", Password: "short", Role: "admin",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "role")
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	issuer := NewAuthService(repo, "secret-a", time.Hour)
	_, err := issuer.Register(ctx, RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "password123", Role: domain.RoleAthlete,
	})
	require.NoError(t, err)
	token, _, err := issuer.Login(ctx, "ana@example.com", "password123")
	require.NoError(t, err)

	other := NewAuthService(repo, "secret-b", time.Hour)
	_, _, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = issuer.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_GetProfile_Missing(t *testing.T) {
	svc := NewAuthService(newFakeProfileRepo(), "test-secret", time.Hour)
	profile, err := svc.GetProfile(context.Background(), primitive.NewObjectID())
	assert.NoError(t, err)
	assert.Nil(t, profile)
}
