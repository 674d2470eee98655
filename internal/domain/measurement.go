package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserMeasurement is a dated snapshot of body metrics. One per user per date.
// The actual photos reside in object storage; only their keys are stored here.
type UserMeasurement struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date             string             `bson:"date" json:"date"` // YYYY-MM-DD
	WeightKg         *float64           `bson:"weight_kg,omitempty" json:"weight_kg,omitempty"`
	ChestCm          *float64           `bson:"chest_cm,omitempty" json:"chest_cm,omitempty"`
	WaistCm          *float64           `bson:"waist_cm,omitempty" json:"waist_cm,omitempty"`
	HipsCm           *float64           `bson:"hips_cm,omitempty" json:"hips_cm,omitempty"`
	ArmCm            *float64           `bson:"arm_cm,omitempty" json:"arm_cm,omitempty"`
	ThighCm          *float64           `bson:"thigh_cm,omitempty" json:"thigh_cm,omitempty"`
	BodyFatPct       *float64           `bson:"body_fat_pct,omitempty" json:"body_fat_pct,omitempty"`
	RestingHeartRate *int               `bson:"resting_heart_rate,omitempty" json:"resting_heart_rate,omitempty"`
	PhotoPaths       []string           `bson:"photo_paths,omitempty" json:"-"`
	PhotoURLs        []string           `bson:"-" json:"photo_urls,omitempty"` // resolved per request, not stored
	Notes            string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}
