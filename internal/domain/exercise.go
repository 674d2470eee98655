// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy    primitive.ObjectID `bson:"created_by" json:"created_by"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Instructions string             `bson:"instructions,omitempty" json:"instructions,omitempty"` // Markdown
	Difficulty   int                `bson:"difficulty,omitempty" json:"difficulty,omitempty"`     // 1-5
	Environment  string             `bson:"environment,omitempty" json:"environment,omitempty"`   // e.g. "gym", "home", "outdoor"
	ImagePath    string             `bson:"image_path,omitempty" json:"image_path,omitempty"`     // key in object storage
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// ExerciseCategory is a row of the exercise_to_category join collection.
type ExerciseCategory struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	Category   string             `bson:"category" json:"category"`
}

// ExerciseType is a row of the exercise_to_type join collection.
type ExerciseType struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	Type       string             `bson:"type" json:"type"`
}

// ExerciseMuscle links an exercise to a targeted muscle.
type ExerciseMuscle struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	Muscle     string             `bson:"muscle" json:"muscle"`
	IsPrimary  bool               `bson:"is_primary" json:"is_primary"`
}

// ExerciseReference is an external link (video, article) attached to an exercise.
// Global references are visible to everyone; saved references only to their owner.
type ExerciseReference struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id" json:"exercise_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	URL        string             `bson:"url" json:"url"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// ExerciseWithRelations is the "rich" view of an exercise returned after
// inserts and single fetches.
type ExerciseWithRelations struct {
	Exercise
	Categories []ExerciseCategory `bson:"-" json:"exercise_to_category"`
	Types      []ExerciseType     `bson:"-" json:"exercise_to_type"`
	Muscles    []ExerciseMuscle   `bson:"-" json:"exercise_muscle"`
	ImageURL   string             `bson:"-" json:"image_url,omitempty"`
}
