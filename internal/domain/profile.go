package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
)

// Profile represents an account in the system. Stored in the "profiles" collection.
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`            // unique
	PasswordHash string             `bson:"password_hash" json:"-"`        // never exposed via JSON
	Role         Role               `bson:"role" json:"role"`
	AvatarPath   string             `bson:"avatar_path,omitempty" json:"avatar_path,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

func (p *Profile) IsCoach() bool {
	return p.Role == RoleCoach
}
