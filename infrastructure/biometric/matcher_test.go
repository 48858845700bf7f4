package biometric

import (
	"errors"
	"math"
	"os"
	"testing"

	"presenza.io/application/constants"
	"presenza.io/application/faults"
	"presenza.io/infrastructure/biometric/types"
	"presenza.io/infrastructure/logger"
)

func TestMain(m *testing.M) {
	logger.InitializeLogger()
	os.Exit(m.Run())
}

func makeDescriptor(fill float64) types.FaceDescriptor {
	descriptor := make(types.FaceDescriptor, constants.DESCRIPTOR_LENGTH)
	for i := range descriptor {
		descriptor[i] = fill
	}
	return descriptor
}

func TestDistance(t *testing.T) {
	a := types.FaceDescriptor{3, 0, 0}
	b := types.FaceDescriptor{0, 4, 0}

	distance, err := Distance(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(distance-5) > 1e-9 {
		t.Errorf("expected distance 5, got %f", distance)
	}

	same, err := Distance(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same != 0 {
		t.Errorf("expected zero distance for identical descriptors, got %f", same)
	}

	reversed, err := Distance(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reversed != distance {
		t.Errorf("expected a symmetric distance, got %f and %f", distance, reversed)
	}

	if _, err := Distance(a, types.FaceDescriptor{1, 2}); err == nil {
		t.Error("expected an error for mismatched descriptor lengths")
	}
	if _, err := Distance(types.FaceDescriptor{}, types.FaceDescriptor{}); err == nil {
		t.Error("expected an error for empty descriptors")
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"identical", 0, 100},
		{"threshold boundary", 0.4, 60},
		{"at one", 1, 0},
		{"beyond one clamps", 1.5, 0},
		{"close match", 0.1, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.distance); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%f) = %f, want %f", tt.distance, got, tt.want)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	live := makeDescriptor(0)

	near := makeDescriptor(0)
	near[0] = 0.3
	far := makeDescriptor(0)
	far[0] = 0.9

	result, err := Match(live, []types.FaceDescriptor{far, near})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Accepted {
		t.Error("expected the nearest enrolled descriptor to clear the threshold")
	}
	if math.Abs(result.Score-70) > 1e-9 {
		t.Errorf("expected the best score to win, got %f", result.Score)
	}

	result, err = Match(live, []types.FaceDescriptor{far})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Accepted {
		t.Errorf("expected a score of %f to be rejected", result.Score)
	}

	// A malformed enrolled sample scores zero instead of killing the run.
	result, err = Match(live, []types.FaceDescriptor{{1, 2, 3}, near})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Accepted {
		t.Error("expected the well-formed sample to carry the match")
	}

	if _, err := Match(live, nil); !faults.IsKind(err, faults.KindNotFound) {
		t.Errorf("expected a not found fault for an empty enrollment, got %v", err)
	}
}

type scriptedDetector struct {
	descriptors []types.ExtractDescriptorResponse
	errs        []error
	calls       int
	landmarks   *types.AnalyzeLandmarksResponse
	detection   *types.DetectFaceResponse
}

func (d *scriptedDetector) DetectFace(image string) (*types.DetectFaceResponse, error) {
	if d.detection != nil {
		return d.detection, nil
	}
	return &types.DetectFaceResponse{Found: true, Box: &types.FaceBox{Width: 100, Height: 100}}, nil
}

func (d *scriptedDetector) AnalyzeLandmarks(image string) (*types.AnalyzeLandmarksResponse, error) {
	return d.landmarks, nil
}

func (d *scriptedDetector) ExtractDescriptor(payload types.ExtractDescriptorRequest) (*types.ExtractDescriptorResponse, error) {
	i := d.calls
	d.calls++
	if i < len(d.errs) && d.errs[i] != nil {
		return nil, d.errs[i]
	}
	response := d.descriptors[i]
	return &response, nil
}

func TestExtractWithRetryLadder(t *testing.T) {
	detector := &scriptedDetector{descriptors: []types.ExtractDescriptorResponse{
		{Found: false},
		{Found: false},
		{Found: true, Descriptor: makeDescriptor(0.5)},
	}}

	descriptor, err := ExtractWithRetry(detector, "capture", &types.FaceBox{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detector.calls != 3 {
		t.Errorf("expected the full ladder to run, got %d attempts", detector.calls)
	}
	if len(descriptor) != constants.DESCRIPTOR_LENGTH {
		t.Errorf("unexpected descriptor length %d", len(descriptor))
	}
}

func TestExtractWithRetrySurvivesTransportError(t *testing.T) {
	detector := &scriptedDetector{
		descriptors: []types.ExtractDescriptorResponse{
			{},
			{Found: true, Descriptor: makeDescriptor(0.5)},
		},
		errs: []error{errors.New("descriptor endpoint unreachable"), nil},
	}

	descriptor, err := ExtractWithRetry(detector, "capture", &types.FaceBox{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("expected a later strategy to recover, got %v", err)
	}
	if detector.calls != 2 {
		t.Errorf("expected the ladder to advance past the failure, got %d attempts", detector.calls)
	}
	if len(descriptor) != constants.DESCRIPTOR_LENGTH {
		t.Errorf("unexpected descriptor length %d", len(descriptor))
	}

	// Every strategy erroring still surfaces an extraction fault.
	boom := errors.New("descriptor endpoint unreachable")
	detector = &scriptedDetector{
		descriptors: []types.ExtractDescriptorResponse{{}, {}, {}},
		errs:        []error{boom, boom, boom},
	}
	_, err = ExtractWithRetry(detector, "capture", &types.FaceBox{Width: 10, Height: 10})
	if !faults.IsKind(err, faults.KindCaptureExtraction) {
		t.Errorf("expected a capture extraction fault, got %v", err)
	}
}

func TestExtractWithRetryExhausted(t *testing.T) {
	detector := &scriptedDetector{descriptors: []types.ExtractDescriptorResponse{
		{Found: false},
		{Found: false},
		{Found: false},
	}}

	_, err := ExtractWithRetry(detector, "capture", &types.FaceBox{Width: 10, Height: 10})
	if !faults.IsKind(err, faults.KindCaptureExtraction) {
		t.Errorf("expected a capture extraction fault, got %v", err)
	}
}

func TestExtractWithRetryNoBox(t *testing.T) {
	detector := &scriptedDetector{descriptors: []types.ExtractDescriptorResponse{
		{Found: true, Descriptor: makeDescriptor(0.5)},
	}}

	if _, err := ExtractWithRetry(detector, "capture", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detector.calls != 1 {
		t.Errorf("expected a single full-frame attempt without a box, got %d", detector.calls)
	}
}
