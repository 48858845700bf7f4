package dto

import (
	"time"

	"presenza.io/infrastructure/biometric/types"
)

type StartSessionDTO struct {
	IdentityKey string `json:"identityKey" validate:"required,identity_key"`
}

type VerifyAttendanceDTO struct {
	Frames  []types.LandmarkFrame `json:"frames" validate:"required,min=1"`
	Capture string                `json:"capture" validate:"required"`

	Latitude           float64   `json:"latitude" validate:"latitude_range"`
	Longitude          float64   `json:"longitude" validate:"longitude_range"`
	AccuracyM          float64   `json:"accuracyM"`
	PositionCapturedAt time.Time `json:"positionCapturedAt"`
}

type HistoryFilterDTO struct {
	IdentityKey string `json:"identityKey" validate:"required,identity_key"`
	Page        int64  `json:"page"`
	PerPage     int64  `json:"perPage"`
}
