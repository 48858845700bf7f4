package geolocation

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"presenza.io/application/constants"
	"presenza.io/application/faults"
	"presenza.io/entities"
	"presenza.io/infrastructure/logger"
)

// Geofence is a circular allowed area around a venue.
type Geofence struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// Provider acquires the caller's position. The HTTP surface passes the
// client-reported position through a provider so the acquisition path
// stays swappable.
type Provider interface {
	CurrentPosition() (*entities.GeoPosition, error)
}

// ClientReported serves a position the caller's device measured,
// rejecting missing or stale fixes.
type ClientReported struct {
	Position entities.GeoPosition
}

func (provider ClientReported) CurrentPosition() (*entities.GeoPosition, error) {
	if provider.Position.CapturedAt.IsZero() {
		return nil, faults.New(faults.KindLocationUnavailable, "no position was acquired for this attempt")
	}
	if time.Since(provider.Position.CapturedAt) > constants.LOCATION_ACQUISITION_TIMEOUT {
		return nil, faults.New(faults.KindLocationUnavailable, "the acquired position is too old to trust")
	}
	return &provider.Position, nil
}

// HaversineKm returns the great-circle distance between two coordinates
// in kilometres.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return constants.EARTH_RADIUS_KM * c
}

// ValidateGeofence checks a position against the venue fence. A position
// exactly on the boundary is allowed.
func ValidateGeofence(position entities.GeoPosition, fence Geofence) error {
	distance := HaversineKm(position.Latitude, position.Longitude, fence.Latitude, fence.Longitude)
	if distance > fence.RadiusKm {
		return faults.GeofenceRejected(distance)
	}
	return nil
}

type TravelAssessment struct {
	Flagged    bool
	Reason     string
	DistanceKm float64
	SpeedKmh   float64
}

// EvaluateTravel compares the current check-in position against the
// previous one and flags physically implausible movement. The flag is
// advisory and never blocks a check-in. Near-simultaneous records are
// floored to one second of elapsed time to keep the speed finite.
func EvaluateTravel(previous *entities.AttendanceRecord, position entities.GeoPosition, now time.Time) TravelAssessment {
	if previous == nil {
		return TravelAssessment{}
	}

	distance := HaversineKm(previous.Position.Latitude, previous.Position.Longitude, position.Latitude, position.Longitude)
	elapsedHours := now.Sub(previous.Timestamp).Hours()
	if elapsedHours < 1.0/3600 {
		elapsedHours = 1.0 / 3600
	}

	speed := distance / elapsedHours
	if speed > constants.IMPLAUSIBLE_SPEED_KMH {
		return TravelAssessment{
			Flagged:    true,
			Reason:     fmt.Sprintf("implied travel speed of %.0fkm/h over %.1fkm since the previous check-in", speed, distance),
			DistanceKm: distance,
			SpeedKmh:   speed,
		}
	}
	return TravelAssessment{DistanceKm: distance, SpeedKmh: speed}
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// FenceFromEnv reads the venue fence for this deployment.
func FenceFromEnv() Geofence {
	return Geofence{
		Latitude:  envFloat("VENUE_LATITUDE"),
		Longitude: envFloat("VENUE_LONGITUDE"),
		RadiusKm:  envFloat("VENUE_RADIUS_KM"),
	}
}

func envFloat(key string) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		logger.Warning("geofence env value missing or malformed", logger.LoggerOptions{
			Key:  "key",
			Data: key,
		})
		return 0
	}
	return value
}
