package entities

import (
	"time"

	"presenza.io/application/utils"
)

// GeoPosition is a measured position produced per verification attempt.
type GeoPosition struct {
	Latitude   float64   `bson:"latitude" json:"latitude"`
	Longitude  float64   `bson:"longitude" json:"longitude"`
	AccuracyM  float64   `bson:"accuracyM" json:"accuracyM"`
	CapturedAt time.Time `bson:"capturedAt" json:"capturedAt"`
}

// AttendanceRecord is created exactly once per successful verification
// run. It is append-only and never mutated after creation. A record
// exists only if liveness passed, the match score cleared the threshold
// and the position fell inside the geofence; the fraud flag is advisory
// and never blocks the commit.
type AttendanceRecord struct {
	IdentityKey    string      `bson:"identityKey" json:"identityKey"`
	Timestamp      time.Time   `bson:"timestamp" json:"timestamp"`
	Position       GeoPosition `bson:"position" json:"position"`
	BiometricScore float64     `bson:"biometricScore" json:"biometricScore"`
	LivenessPassed bool        `bson:"livenessPassed" json:"livenessPassed"`
	DeviceHash     string      `bson:"deviceHash" json:"deviceHash"`
	FraudFlag      bool        `bson:"fraudFlag" json:"fraudFlag"`
	FraudReason    string      `bson:"fraudReason" json:"fraudReason,omitempty"`

	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (model AttendanceRecord) ParseModel() any {
	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
		model.ID = utils.GenerateULIDString()
	}
	model.UpdatedAt = now
	return &model
}
