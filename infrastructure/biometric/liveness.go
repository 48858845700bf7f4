package biometric

import (
	"math"
	"time"

	"presenza.io/application/constants"
	"presenza.io/infrastructure/biometric/types"
)

type LivenessState string

const (
	LivenessCalibrating LivenessState = "CALIBRATING"
	LivenessOpen        LivenessState = "OPEN"
	LivenessClosed      LivenessState = "CLOSED"
	LivenessVerified    LivenessState = "VERIFIED"
	LivenessTimedOut    LivenessState = "TIMED_OUT"
	LivenessFailed      LivenessState = "FAILED"
)

// Clock abstracts time for the liveness session so the timeout and
// blink cadence can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}

// LivenessSession is the blink detection state machine for one check-in
// attempt. The first frames calibrate a per-person baseline from the
// widest openness observed, because lid geometry varies too much for
// fixed thresholds. A blink is counted when openness drops below the
// close threshold and recovers past the reopen threshold.
type LivenessSession struct {
	clock        Clock
	startedAt    time.Time
	firstFrameAt time.Time

	state            LivenessState
	calibrationMax   float64
	calibrationCount int
	baseline         float64
	blinkCount       int
}

func NewLivenessSession(clock Clock) *LivenessSession {
	if clock == nil {
		clock = SystemClock
	}
	return &LivenessSession{
		clock:     clock,
		startedAt: clock.Now(),
		state:     LivenessCalibrating,
	}
}

func (session *LivenessSession) State() LivenessState { return session.state }

func (session *LivenessSession) BlinkCount() int { return session.blinkCount }

func (session *LivenessSession) Baseline() float64 { return session.baseline }

// ProcessFrame advances the state machine with one sampled frame and
// returns the resulting state. Terminal states are sticky.
func (session *LivenessSession) ProcessFrame(frame types.LandmarkFrame) LivenessState {
	switch session.state {
	case LivenessVerified, LivenessTimedOut, LivenessFailed:
		return session.state
	}

	if session.elapsed(frame) > constants.LIVENESS_TIMEOUT {
		session.state = LivenessTimedOut
		return session.state
	}

	openness := EyeOpenness(frame)

	if session.state == LivenessCalibrating {
		if openness > session.calibrationMax {
			session.calibrationMax = openness
		}
		session.calibrationCount++
		if session.calibrationCount >= constants.CALIBRATION_FRAME_COUNT {
			session.baseline = session.calibrationMax
			if session.baseline < constants.BASELINE_OPENNESS_FLOOR {
				session.baseline = constants.BASELINE_OPENNESS_FLOOR
			}
			session.state = LivenessOpen
		}
		return session.state
	}

	closeThreshold := session.baseline * constants.BLINK_CLOSE_RATIO
	reopenThreshold := session.baseline * constants.BLINK_REOPEN_RATIO

	switch session.state {
	case LivenessOpen:
		if openness < closeThreshold {
			session.state = LivenessClosed
		}
	case LivenessClosed:
		if openness > reopenThreshold {
			session.blinkCount++
			if session.blinkCount >= constants.TARGET_BLINK_COUNT {
				session.state = LivenessVerified
			} else {
				session.state = LivenessOpen
			}
		}
	}
	return session.state
}

// elapsed is how far into the blink window the session is. Frames carry
// their capture timestamps, so a batch assembled over longer than the
// window times out no matter how quickly it is drained; the wall clock
// covers sources that do not stamp frames.
func (session *LivenessSession) elapsed(frame types.LandmarkFrame) time.Duration {
	elapsed := session.clock.Now().Sub(session.startedAt)
	if !frame.CapturedAt.IsZero() {
		if session.firstFrameAt.IsZero() {
			session.firstFrameAt = frame.CapturedAt
		}
		if span := frame.CapturedAt.Sub(session.firstFrameAt); span > elapsed {
			elapsed = span
		}
	}
	return elapsed
}

// Expire marks the session timed out if its window has lapsed without
// enough blinks. Used when the frame stream stops early.
func (session *LivenessSession) Expire() LivenessState {
	switch session.state {
	case LivenessVerified, LivenessTimedOut, LivenessFailed:
		return session.state
	}
	if session.clock.Now().Sub(session.startedAt) > constants.LIVENESS_TIMEOUT {
		session.state = LivenessTimedOut
	}
	return session.state
}

// EyeOpenness computes the mean eye aspect ratio across both eyes. Per
// eye it is the sum of the two vertical lid distances over twice the
// horizontal corner distance.
func EyeOpenness(frame types.LandmarkFrame) float64 {
	return (eyeAspectRatio(frame.LeftEye) + eyeAspectRatio(frame.RightEye)) / 2
}

func eyeAspectRatio(eye types.EyeLandmarks) float64 {
	horizontal := pointDistance(eye[0], eye[3])
	if horizontal == 0 {
		return 0
	}
	vertical := pointDistance(eye[1], eye[5]) + pointDistance(eye[2], eye[4])
	return vertical / (2 * horizontal)
}

func pointDistance(a types.Point3, b types.Point3) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
