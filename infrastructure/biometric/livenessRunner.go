package biometric

import (
	"io"

	"presenza.io/application/faults"
	"presenza.io/infrastructure/biometric/types"
	"presenza.io/infrastructure/logger"
)

// FrameSource yields sampled landmark frames in capture order and
// returns io.EOF when the stream ends.
type FrameSource interface {
	NextFrame() (*types.LandmarkFrame, error)
}

// SliceFrameSource serves a pre-collected batch of frames, which is how
// the verify endpoint feeds the check.
type SliceFrameSource struct {
	Frames []types.LandmarkFrame
	cursor int
}

func (source *SliceFrameSource) NextFrame() (*types.LandmarkFrame, error) {
	if source.cursor >= len(source.Frames) {
		return nil, io.EOF
	}
	frame := source.Frames[source.cursor]
	source.cursor++
	return &frame, nil
}

// RunLivenessCheck drains a frame source through a liveness session and
// reports the outcome as a fault when the check does not pass.
func RunLivenessCheck(session *LivenessSession, source FrameSource) error {
	for {
		frame, err := source.NextFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error("frame source failed mid liveness check", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			return faults.New(faults.KindCapture, "could not read capture frames")
		}

		switch session.ProcessFrame(*frame) {
		case LivenessVerified:
			return nil
		case LivenessTimedOut:
			return faults.New(faults.KindLivenessTimeout, "liveness check timed out before enough blinks were seen")
		case LivenessFailed:
			return faults.New(faults.KindLivenessFailed, "liveness check failed")
		}
	}

	if session.Expire() == LivenessTimedOut {
		return faults.New(faults.KindLivenessTimeout, "liveness check timed out before enough blinks were seen")
	}
	return faults.New(faults.KindLivenessFailed, "capture ended before the liveness check completed")
}
