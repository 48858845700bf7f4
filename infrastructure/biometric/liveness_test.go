package biometric

import (
	"math"
	"testing"
	"time"

	"presenza.io/application/constants"
	"presenza.io/application/faults"
	"presenza.io/infrastructure/biometric/types"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

// frameWithOpenness builds a frame whose eye aspect ratio equals the
// given openness for both eyes.
func frameWithOpenness(openness float64) types.LandmarkFrame {
	eye := types.EyeLandmarks{
		{X: 0, Y: 0, Z: 0},
		{X: 0.3, Y: 0, Z: 0},
		{X: 0.6, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0.6, Y: openness, Z: 0},
		{X: 0.3, Y: openness, Z: 0},
	}
	return types.LandmarkFrame{LeftEye: eye, RightEye: eye}
}

func calibrate(session *LivenessSession, openness float64) {
	for i := 0; i < constants.CALIBRATION_FRAME_COUNT; i++ {
		session.ProcessFrame(frameWithOpenness(openness))
	}
}

func TestEyeOpenness(t *testing.T) {
	if got := EyeOpenness(frameWithOpenness(0.3)); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("expected openness 0.3, got %f", got)
	}
	if got := EyeOpenness(types.LandmarkFrame{}); got != 0 {
		t.Errorf("expected zero openness for degenerate landmarks, got %f", got)
	}
}

func TestLivenessCalibration(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	session := NewLivenessSession(clock)

	for i := 0; i < constants.CALIBRATION_FRAME_COUNT-1; i++ {
		if state := session.ProcessFrame(frameWithOpenness(0.3)); state != LivenessCalibrating {
			t.Fatalf("expected calibration to continue at frame %d, got %s", i, state)
		}
	}
	if state := session.ProcessFrame(frameWithOpenness(0.3)); state != LivenessOpen {
		t.Fatalf("expected calibration to complete, got %s", state)
	}
	if math.Abs(session.Baseline()-0.3) > 1e-9 {
		t.Errorf("expected baseline 0.3, got %f", session.Baseline())
	}
}

func TestLivenessBaselineFloor(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	session := NewLivenessSession(clock)
	calibrate(session, 0.1)

	if session.Baseline() != constants.BASELINE_OPENNESS_FLOOR {
		t.Errorf("expected the baseline to be floored at %f, got %f",
			constants.BASELINE_OPENNESS_FLOOR, session.Baseline())
	}
}

func TestLivenessTwoBlinksVerify(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	session := NewLivenessSession(clock)
	calibrate(session, 0.3)

	// First blink.
	if state := session.ProcessFrame(frameWithOpenness(0.1)); state != LivenessClosed {
		t.Fatalf("expected closed, got %s", state)
	}
	if state := session.ProcessFrame(frameWithOpenness(0.3)); state != LivenessOpen {
		t.Fatalf("expected reopen after first blink, got %s", state)
	}
	if session.BlinkCount() != 1 {
		t.Fatalf("expected one blink counted, got %d", session.BlinkCount())
	}

	// Second blink completes the check.
	session.ProcessFrame(frameWithOpenness(0.1))
	if state := session.ProcessFrame(frameWithOpenness(0.3)); state != LivenessVerified {
		t.Fatalf("expected verified after two blinks, got %s", state)
	}

	// Terminal state is sticky.
	if state := session.ProcessFrame(frameWithOpenness(0.1)); state != LivenessVerified {
		t.Errorf("expected verified to be sticky, got %s", state)
	}
}

func TestLivenessPartialCloseDoesNotCount(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	session := NewLivenessSession(clock)
	calibrate(session, 0.3)

	// 0.25 sits between the close threshold (0.21) and the reopen
	// threshold (0.27) so it is neither a close nor a reopen.
	if state := session.ProcessFrame(frameWithOpenness(0.25)); state != LivenessOpen {
		t.Errorf("expected a partial droop to be ignored, got %s", state)
	}
	if session.BlinkCount() != 0 {
		t.Errorf("expected no blinks counted, got %d", session.BlinkCount())
	}
}

func TestLivenessTimeout(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	session := NewLivenessSession(clock)
	calibrate(session, 0.3)

	session.ProcessFrame(frameWithOpenness(0.1))
	session.ProcessFrame(frameWithOpenness(0.3))

	clock.advance(constants.LIVENESS_TIMEOUT + time.Second)
	if state := session.ProcessFrame(frameWithOpenness(0.1)); state != LivenessTimedOut {
		t.Errorf("expected a timeout with only one blink, got %s", state)
	}
}

func TestLivenessTimeoutFromFrameTimestamps(t *testing.T) {
	base := time.Now()
	stampedAt := func(frame types.LandmarkFrame, at time.Time) types.LandmarkFrame {
		frame.CapturedAt = at
		return frame
	}

	// Two clean blinks assembled from frames captured over two hours.
	// The batch drains in microseconds, so only the capture timestamps
	// can catch it.
	frames := []types.LandmarkFrame{}
	for i := 0; i < constants.CALIBRATION_FRAME_COUNT; i++ {
		frames = append(frames, stampedAt(frameWithOpenness(0.3), base.Add(time.Duration(i)*4*time.Minute)))
	}
	next := base.Add(2 * time.Hour)
	frames = append(frames,
		stampedAt(frameWithOpenness(0.1), next),
		stampedAt(frameWithOpenness(0.3), next.Add(time.Second)),
		stampedAt(frameWithOpenness(0.1), next.Add(2*time.Second)),
		stampedAt(frameWithOpenness(0.3), next.Add(3*time.Second)))

	session := NewLivenessSession(&fakeClock{current: time.Now()})
	err := RunLivenessCheck(session, &SliceFrameSource{Frames: frames})
	if !faults.IsKind(err, faults.KindLivenessTimeout) {
		t.Errorf("expected a stretched-out batch to time out, got %v", err)
	}

	// The same blinks captured inside the window still verify.
	frames = frames[:0]
	for i := 0; i < constants.CALIBRATION_FRAME_COUNT; i++ {
		frames = append(frames, stampedAt(frameWithOpenness(0.3), base.Add(time.Duration(i)*time.Second)))
	}
	next = base.Add(31 * time.Second)
	frames = append(frames,
		stampedAt(frameWithOpenness(0.1), next),
		stampedAt(frameWithOpenness(0.3), next.Add(time.Second)),
		stampedAt(frameWithOpenness(0.1), next.Add(2*time.Second)),
		stampedAt(frameWithOpenness(0.3), next.Add(3*time.Second)))

	session = NewLivenessSession(&fakeClock{current: time.Now()})
	if err := RunLivenessCheck(session, &SliceFrameSource{Frames: frames}); err != nil {
		t.Errorf("expected stamped frames inside the window to verify, got %v", err)
	}
}

func TestRunLivenessCheck(t *testing.T) {
	verified := []types.LandmarkFrame{}
	for i := 0; i < constants.CALIBRATION_FRAME_COUNT; i++ {
		verified = append(verified, frameWithOpenness(0.3))
	}
	verified = append(verified,
		frameWithOpenness(0.1), frameWithOpenness(0.3),
		frameWithOpenness(0.1), frameWithOpenness(0.3))

	clock := &fakeClock{current: time.Now()}
	session := NewLivenessSession(clock)
	if err := RunLivenessCheck(session, &SliceFrameSource{Frames: verified}); err != nil {
		t.Errorf("expected the scripted blinks to verify, got %v", err)
	}

	// A stream that ends mid-check fails.
	session = NewLivenessSession(&fakeClock{current: time.Now()})
	short := verified[:constants.CALIBRATION_FRAME_COUNT+2]
	err := RunLivenessCheck(session, &SliceFrameSource{Frames: short})
	if !faults.IsKind(err, faults.KindLivenessFailed) {
		t.Errorf("expected a liveness failed fault for a truncated stream, got %v", err)
	}
}
