package attendance

import (
	"fmt"
	"time"

	"presenza.io/application/faults"
	"presenza.io/entities"
	"presenza.io/infrastructure/biometric"
	"presenza.io/infrastructure/biometric/types"
	"presenza.io/infrastructure/geolocation"
	"presenza.io/infrastructure/logger"
)

type Stage string

const (
	StageIdle       Stage = "IDLE"
	StageRateCheck  Stage = "RATE_CHECK"
	StageLiveness   Stage = "LIVENESS"
	StageMatching   Stage = "MATCHING"
	StageGeofence   Stage = "GEOFENCE"
	StageFraudCheck Stage = "FRAUD_CHECK"
	StageCommitted  Stage = "COMMITTED"
	StageFailed     Stage = "FAILED"
)

type StageTransition struct {
	From Stage     `json:"from"`
	To   Stage     `json:"to"`
	At   time.Time `json:"at"`
}

// RecordStore is the persistence surface the workflow needs. The mongo
// implementation lives in store.go; tests substitute an in-memory one.
type RecordStore interface {
	FindStudent(identityKey string) (*entities.Student, error)
	LatestRecord(identityKey string) (*entities.AttendanceRecord, error)
	CountRecordsSince(identityKey string, since time.Time) (int64, error)
	SaveRecord(record entities.AttendanceRecord) (*entities.AttendanceRecord, error)
}

// AttemptLimiter throttles verification attempts per identity.
type AttemptLimiter interface {
	Check(identityKey string) error
	Reset(identityKey string)
}

// ReceiptDispatcher queues post-commit work such as receipt delivery.
// A nil dispatcher disables it.
type ReceiptDispatcher interface {
	QueueReceipt(record entities.AttendanceRecord) error
}

// VerificationInput is everything one verify call contributes: the
// sampled liveness frames, the final still capture and the measured
// position.
type VerificationInput struct {
	IdentityKey string
	DeviceHash  string
	Frames      []types.LandmarkFrame
	Capture     string
	Position    entities.GeoPosition
}

type VerificationResult struct {
	Record      *entities.AttendanceRecord `json:"record"`
	Transitions []StageTransition          `json:"transitions"`
}

// Workflow runs the verification pipeline for one attempt: rate check,
// liveness, matching, geofence, fraud heuristic, commit. Stages run
// strictly in that order and the first failing stage ends the run with
// a typed fault; the fraud check alone cannot fail the run.
type Workflow struct {
	Store    RecordStore
	Detector types.DetectorClient
	Limiter  AttemptLimiter
	Receipts ReceiptDispatcher
	Fence    geolocation.Geofence
	Clock    biometric.Clock

	// DuplicateDayCheck rejects a second check-in on the same calendar
	// day (UTC). Deployments that run several sessions a day turn it off.
	DuplicateDayCheck bool
}

func (workflow *Workflow) now() time.Time {
	if workflow.Clock != nil {
		return workflow.Clock.Now()
	}
	return time.Now()
}

// Run executes the pipeline. On failure the returned transitions still
// describe how far the attempt got. A committed session is terminal and
// cannot be re-run; a failed one can.
func (workflow *Workflow) Run(session *SessionContext, input VerificationInput) (*VerificationResult, error) {
	transitions := []StageTransition{}
	advance := func(to Stage) {
		transitions = append(transitions, StageTransition{From: session.Stage, To: to, At: workflow.now()})
		session.Stage = to
	}
	fail := func(err error) (*VerificationResult, error) {
		advance(StageFailed)
		session.TrackingActive = false
		return &VerificationResult{Transitions: transitions}, err
	}

	if session.Stage == StageCommitted {
		return fail(faults.Validation("this verification session has already been committed"))
	}

	advance(StageRateCheck)
	if err := workflow.Limiter.Check(input.IdentityKey); err != nil {
		return fail(err)
	}

	if workflow.DuplicateDayCheck {
		if MarkedToday(input.IdentityKey, workflow.now()) {
			return fail(faults.Validation("attendance has already been recorded for this identity today"))
		}
		dayStart := workflow.now().UTC().Truncate(24 * time.Hour)
		count, err := workflow.Store.CountRecordsSince(input.IdentityKey, dayStart)
		if err != nil {
			return fail(faults.Persistence("could not check for an existing record"))
		}
		if count > 0 {
			return fail(faults.Validation("attendance has already been recorded for this identity today"))
		}
	}

	student, err := workflow.Store.FindStudent(input.IdentityKey)
	if err != nil {
		return fail(faults.Persistence("could not load the enrollment record"))
	}
	if student == nil || student.Deactivated {
		return fail(faults.NotFound(fmt.Sprintf("no active enrollment found for %s", input.IdentityKey)))
	}

	advance(StageLiveness)
	session.TrackingActive = true
	livenessSession := biometric.NewLivenessSession(workflow.Clock)
	if err := biometric.RunLivenessCheck(livenessSession, &biometric.SliceFrameSource{Frames: input.Frames}); err != nil {
		return fail(err)
	}
	session.TrackingActive = false

	advance(StageMatching)
	score, err := workflow.matchCapture(student, input.Capture)
	if err != nil {
		return fail(err)
	}

	advance(StageGeofence)
	if input.Position.CapturedAt.IsZero() {
		return fail(faults.New(faults.KindLocationUnavailable, "no position was acquired for this attempt"))
	}
	if err := geolocation.ValidateGeofence(input.Position, workflow.Fence); err != nil {
		return fail(err)
	}

	advance(StageFraudCheck)
	previous, err := workflow.Store.LatestRecord(input.IdentityKey)
	if err != nil {
		logger.Warning("could not load the previous record for the travel heuristic", logger.LoggerOptions{
			Key:  "identityKey",
			Data: input.IdentityKey,
		})
	}
	assessment := geolocation.EvaluateTravel(previous, input.Position, workflow.now())
	if assessment.Flagged {
		logger.Warning("implausible travel flagged on check-in", logger.LoggerOptions{
			Key:  "identityKey",
			Data: input.IdentityKey,
		}, logger.LoggerOptions{
			Key:  "reason",
			Data: assessment.Reason,
		})
	}

	record, err := workflow.Store.SaveRecord(entities.AttendanceRecord{
		IdentityKey:    input.IdentityKey,
		Timestamp:      workflow.now(),
		Position:       input.Position,
		BiometricScore: score,
		LivenessPassed: true,
		DeviceHash:     input.DeviceHash,
		FraudFlag:      assessment.Flagged,
		FraudReason:    assessment.Reason,
	})
	if err != nil {
		return fail(faults.Persistence("could not save the attendance record"))
	}

	advance(StageCommitted)
	if workflow.DuplicateDayCheck {
		MarkToday(input.IdentityKey, workflow.now())
	}
	workflow.Limiter.Reset(input.IdentityKey)
	if workflow.Receipts != nil {
		if err := workflow.Receipts.QueueReceipt(*record); err != nil {
			logger.Warning("could not queue the attendance receipt", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
		}
	}

	return &VerificationResult{Record: record, Transitions: transitions}, nil
}

// matchCapture turns the final still into a descriptor and scores it
// against the student's enrollment.
func (workflow *Workflow) matchCapture(student *entities.Student, capture string) (float64, error) {
	if capture == "" {
		return 0, faults.New(faults.KindCapture, "no final capture was provided")
	}

	detection, err := workflow.Detector.DetectFace(capture)
	if err != nil {
		return 0, err
	}
	if !detection.Found {
		return 0, faults.New(faults.KindCapture, "no face found in the final capture")
	}

	live, err := biometric.ExtractWithRetry(workflow.Detector, capture, detection.Box)
	if err != nil {
		return 0, err
	}

	enrolled, err := biometric.EnrolledDescriptors(workflow.Detector, student.IdentityKey, student.Descriptors, student.Photos)
	if err != nil {
		return 0, err
	}

	result, err := biometric.Match(live, enrolled)
	if err != nil {
		return 0, err
	}
	if !result.Accepted {
		return 0, faults.MatchRejected(result.Score)
	}
	return result.Score, nil
}
