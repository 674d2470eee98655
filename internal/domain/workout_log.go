package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionLog records a workout the user actually performed.
type SessionLog struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	PlanID        *primitive.ObjectID `bson:"plan_id,omitempty" json:"plan_id,omitempty"`
	PlanSessionID *primitive.ObjectID `bson:"plan_session_id,omitempty" json:"plan_session_id,omitempty"`
	Title         string              `bson:"title,omitempty" json:"title,omitempty"`
	Notes         string              `bson:"notes,omitempty" json:"notes,omitempty"`
	StartedAt     time.Time           `bson:"started_at" json:"started_at"`
	CompletedAt   *time.Time          `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at" json:"updated_at"`
}

// SetLog is a single performed set inside a session log.
type SetLog struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionLogID    primitive.ObjectID `bson:"session_log_id" json:"session_log_id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ExerciseID      primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	SetNumber       int                `bson:"set_number" json:"set_number"`
	SetType         SetType            `bson:"set_type" json:"set_type"`
	Reps            *int               `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight          *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	DurationSeconds *int               `bson:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// SessionLogWithSets is the rich view of a session log.
type SessionLogWithSets struct {
	SessionLog
	Sets []SetLog `bson:"-" json:"set_logs"`
}
