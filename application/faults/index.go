package faults

import (
	"errors"
	"fmt"
	"time"
)

// Kind identifies the failure class a verification stage resolved to.
// Reason strings attached to each kind are stable and safe to surface
// to the caller.
type Kind string

const (
	KindValidation         Kind = "ValidationError"
	KindNotFound           Kind = "NotFoundError"
	KindRateLimitExceeded  Kind = "RateLimitExceeded"
	KindCapture            Kind = "CaptureError"
	KindCaptureExtraction  Kind = "CaptureExtractionFailed"
	KindLivenessTimeout    Kind = "LivenessTimeout"
	KindLivenessFailed     Kind = "LivenessFailed"
	KindMatchRejected      Kind = "MatchRejected"
	KindGeofenceRejected   Kind = "GeofenceRejected"
	KindLocationUnavailable Kind = "LocationUnavailable"
	KindPersistence        Kind = "PersistenceError"
)

type Fault struct {
	Kind   Kind
	Reason string

	// RetryAfter is set on RateLimitExceeded only.
	RetryAfter time.Duration
	// Score is set on MatchRejected only.
	Score float64
	// DistanceKm is set on GeofenceRejected only.
	DistanceKm float64
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

func New(kind Kind, reason string) *Fault {
	return &Fault{Kind: kind, Reason: reason}
}

func Validation(reason string) *Fault {
	return &Fault{Kind: KindValidation, Reason: reason}
}

func NotFound(reason string) *Fault {
	return &Fault{Kind: KindNotFound, Reason: reason}
}

func RateLimitExceeded(wait time.Duration) *Fault {
	return &Fault{
		Kind:       KindRateLimitExceeded,
		Reason:     fmt.Sprintf("too many attempts. try again in %s", wait.Round(time.Second)),
		RetryAfter: wait,
	}
}

func CaptureExtractionFailed(reason string) *Fault {
	return &Fault{Kind: KindCaptureExtraction, Reason: reason}
}

func MatchRejected(score float64) *Fault {
	return &Fault{
		Kind:   KindMatchRejected,
		Reason: fmt.Sprintf("face does not match enrolled samples (score %.1f)", score),
		Score:  score,
	}
}

func GeofenceRejected(distanceKm float64) *Fault {
	return &Fault{
		Kind:       KindGeofenceRejected,
		Reason:     fmt.Sprintf("outside the approved zone (%.2f km from anchor)", distanceKm),
		DistanceKm: distanceKm,
	}
}

func Persistence(reason string) *Fault {
	return &Fault{Kind: KindPersistence, Reason: reason}
}

// As unwraps err into a *Fault when possible.
func As(err error) (*Fault, bool) {
	var fault *Fault
	if errors.As(err, &fault) {
		return fault, true
	}
	return nil, false
}

// IsKind reports whether err is a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	fault, ok := As(err)
	return ok && fault.Kind == kind
}
