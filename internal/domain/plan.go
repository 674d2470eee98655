// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is a multi-week training plan. The structure lives in the plan_* collections.
type Plan struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	TeamID      *primitive.ObjectID `bson:"team_id,omitempty" json:"team_id,omitempty"`
	ForkedFrom  *primitive.ObjectID `bson:"forked_from,omitempty" json:"forked_from,omitempty"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Difficulty  int                 `bson:"difficulty" json:"difficulty"` // 1-5
	Sport       string              `bson:"sport,omitempty" json:"sport,omitempty"`
	IsPrivate   bool                `bson:"is_private" json:"is_private"`
	ForkCount   int                 `bson:"fork_count" json:"fork_count"`
	LikeCount   int                 `bson:"like_count" json:"like_count"`
	ViewCount   int                 `bson:"view_count" json:"view_count"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// PlanWeek is the first level of the plan hierarchy.
type PlanWeek struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID `bson:"plan_id" json:"plan_id"`
	WeekNumber  int                `bson:"week_number" json:"week_number"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

type PlanDay struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"plan_id" json:"plan_id"` // denormalized for ownership checks
	PlanWeekID primitive.ObjectID `bson:"plan_week_id" json:"plan_week_id"`
	DayNumber  int                `bson:"day_number" json:"day_number"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	IsRestDay  bool               `bson:"is_rest_day" json:"is_rest_day"`
}

type PlanSession struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"plan_id" json:"plan_id"`
	PlanDayID  primitive.ObjectID `bson:"plan_day_id" json:"plan_day_id"`
	OrderIndex int                `bson:"order_index" json:"order_index"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PlanSessionExercise is an exercise entry within a session. Entries sharing
// an ExecutionGroup are performed back to back (a superset).
type PlanSessionExercise struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID         primitive.ObjectID `bson:"plan_id" json:"plan_id"`
	PlanSessionID  primitive.ObjectID `bson:"plan_session_id" json:"plan_session_id"`
	ExerciseID     primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	OrderIndex     int                `bson:"order_index" json:"order_index"`
	ExecutionGroup int                `bson:"execution_group" json:"execution_group"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

// SetType classifies a set.
type SetType string

const (
	SetTypeNormal  SetType = "normal"
	SetTypeWarmup  SetType = "warmup"
	SetTypePyramid SetType = "pyramid"
	SetTypeDrop    SetType = "drop"
	SetTypeFailure SetType = "failure"
)

type PlanSessionExerciseSet struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID                primitive.ObjectID `bson:"plan_id" json:"plan_id"`
	PlanSessionExerciseID primitive.ObjectID `bson:"plan_session_exercise_id" json:"plan_session_exercise_id"`
	SetNumber             int                `bson:"set_number" json:"set_number"`
	SetType               SetType            `bson:"set_type" json:"set_type"`
	Reps                  *int               `bson:"reps,omitempty" json:"reps,omitempty"`
	Weight                *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	RestSeconds           *int               `bson:"rest_seconds,omitempty" json:"rest_seconds,omitempty"`
	DurationSeconds       *int               `bson:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
}
