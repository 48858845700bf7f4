package geolocation

import (
	"math"
	"testing"
	"time"

	"presenza.io/application/faults"
	"presenza.io/entities"
)

func TestHaversineKm(t *testing.T) {
	if got := HaversineKm(6.5244, 3.3792, 6.5244, 3.3792); got != 0 {
		t.Errorf("expected zero distance for identical coordinates, got %f", got)
	}

	forward := HaversineKm(6.5244, 3.3792, 9.0765, 7.3986)
	backward := HaversineKm(9.0765, 7.3986, 6.5244, 3.3792)
	if math.Abs(forward-backward) > 1e-9 {
		t.Errorf("expected a symmetric distance, got %f and %f", forward, backward)
	}

	// Equator to the pole is a quarter of the great circle.
	quarter := HaversineKm(0, 0, 90, 0)
	if math.Abs(quarter-10007.54) > 1 {
		t.Errorf("expected roughly 10007.54km, got %f", quarter)
	}
}

func TestValidateGeofence(t *testing.T) {
	fence := Geofence{Latitude: 6.5244, Longitude: 3.3792, RadiusKm: 0.5}

	inside := entities.GeoPosition{Latitude: 6.5244, Longitude: 3.3792}
	if err := ValidateGeofence(inside, fence); err != nil {
		t.Errorf("expected a position at the anchor to pass, got %v", err)
	}

	outside := entities.GeoPosition{Latitude: 6.5344, Longitude: 3.3792}
	err := ValidateGeofence(outside, fence)
	if !faults.IsKind(err, faults.KindGeofenceRejected) {
		t.Fatalf("expected a geofence fault, got %v", err)
	}
	fault, _ := faults.As(err)
	if fault.DistanceKm <= fence.RadiusKm {
		t.Errorf("expected the fault to carry the offending distance, got %f", fault.DistanceKm)
	}

	// A position exactly on the boundary is allowed.
	boundaryDistance := HaversineKm(outside.Latitude, outside.Longitude, fence.Latitude, fence.Longitude)
	exact := Geofence{Latitude: fence.Latitude, Longitude: fence.Longitude, RadiusKm: boundaryDistance}
	if err := ValidateGeofence(outside, exact); err != nil {
		t.Errorf("expected a boundary position to pass, got %v", err)
	}
}

func TestClientReportedProvider(t *testing.T) {
	fresh := entities.GeoPosition{Latitude: 6.5244, Longitude: 3.3792, CapturedAt: time.Now()}
	position, err := ClientReported{Position: fresh}.CurrentPosition()
	if err != nil {
		t.Fatalf("expected a fresh fix to pass, got %v", err)
	}
	if position.Latitude != fresh.Latitude {
		t.Errorf("unexpected position %+v", position)
	}

	_, err = ClientReported{}.CurrentPosition()
	if !faults.IsKind(err, faults.KindLocationUnavailable) {
		t.Errorf("expected a location fault for a missing fix, got %v", err)
	}

	stale := fresh
	stale.CapturedAt = time.Now().Add(-20 * time.Minute)
	_, err = ClientReported{Position: stale}.CurrentPosition()
	if !faults.IsKind(err, faults.KindLocationUnavailable) {
		t.Errorf("expected a location fault for a stale fix, got %v", err)
	}
}

func TestEvaluateTravel(t *testing.T) {
	now := time.Now()
	// Roughly 1000km east along the equator.
	far := entities.GeoPosition{Latitude: 0, Longitude: 8.9932}

	previousAt := func(ago time.Duration) *entities.AttendanceRecord {
		return &entities.AttendanceRecord{
			Position:  entities.GeoPosition{Latitude: 0, Longitude: 0},
			Timestamp: now.Add(-ago),
		}
	}

	if assessment := EvaluateTravel(nil, far, now); assessment.Flagged {
		t.Error("expected no flag without a previous record")
	}

	assessment := EvaluateTravel(previousAt(30*time.Minute), far, now)
	if !assessment.Flagged {
		t.Errorf("expected 1000km in 30 minutes to be flagged, speed was %f", assessment.SpeedKmh)
	}
	if assessment.Reason == "" {
		t.Error("expected a reason on a flagged assessment")
	}

	if assessment := EvaluateTravel(previousAt(5*time.Hour), far, now); assessment.Flagged {
		t.Errorf("expected 1000km in 5 hours to pass, speed was %f", assessment.SpeedKmh)
	}

	// Near-simultaneous records must not divide by zero.
	assessment = EvaluateTravel(previousAt(0), far, now)
	if !assessment.Flagged {
		t.Error("expected an instantaneous jump to be flagged")
	}
	if math.IsInf(assessment.SpeedKmh, 1) || math.IsNaN(assessment.SpeedKmh) {
		t.Errorf("expected a finite speed, got %f", assessment.SpeedKmh)
	}
}
