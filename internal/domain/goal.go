package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GoalDirection string

const (
	DirectionIncrease GoalDirection = "increase"
	DirectionDecrease GoalDirection = "decrease"
)

type GoalTargetType string

const (
	TargetAbsoluteValue  GoalTargetType = "absolute_value"
	TargetPercentChange  GoalTargetType = "percent_change"
	TargetAbsoluteChange GoalTargetType = "absolute_change"
)

// PlanGoal is a target attached to a plan, e.g. "increase squat 1RM by 10%".
type PlanGoal struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID  `bson:"plan_id" json:"plan_id"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	Metric      string              `bson:"metric" json:"metric"` // e.g. "weight_kg", "one_rep_max"
	Direction   GoalDirection       `bson:"direction" json:"direction"`
	TargetType  GoalTargetType      `bson:"target_type" json:"target_type"`
	TargetValue float64             `bson:"target_value" json:"target_value"`
	ExerciseID  *primitive.ObjectID `bson:"exercise_id,omitempty" json:"exercise_id,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

// UserBaseline is a user's starting value for a goal metric. One per (user, goal).
type UserBaseline struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	GoalID        primitive.ObjectID `bson:"goal_id" json:"goal_id"`
	BaselineValue float64            `bson:"baseline_value" json:"baseline_value"`
	RecordedAt    time.Time          `bson:"recorded_at" json:"recorded_at"`
}
