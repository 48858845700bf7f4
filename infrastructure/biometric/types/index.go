package types

import "time"

// FaceDescriptor is a 128-dimension embedding produced by the face service.
type FaceDescriptor []float64

type FaceBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EyeLandmarks holds the six contour points of one eye in the order the
// face service emits them: outer corner, two upper lid points, inner
// corner, two lower lid points.
type EyeLandmarks [6]Point3

// LandmarkFrame is one sampled video frame reduced to the landmarks the
// liveness check needs.
type LandmarkFrame struct {
	LeftEye    EyeLandmarks `json:"leftEye"`
	RightEye   EyeLandmarks `json:"rightEye"`
	CapturedAt time.Time    `json:"capturedAt"`
}

type DetectFaceRequest struct {
	Image string `json:"image"`
}

type DetectFaceResponse struct {
	Found bool     `json:"found"`
	Box   *FaceBox `json:"box"`
}

type ExtractDescriptorRequest struct {
	Image string   `json:"image"`
	Crop  *FaceBox `json:"crop,omitempty"`
	Scale float64  `json:"scale,omitempty"`
}

type ExtractDescriptorResponse struct {
	Found      bool           `json:"found"`
	Descriptor FaceDescriptor `json:"descriptor"`
}

type AnalyzeLandmarksRequest struct {
	Image string `json:"image"`
}

type AnalyzeLandmarksResponse struct {
	Found bool           `json:"found"`
	Frame *LandmarkFrame `json:"frame"`
}

// DetectorClient is the synchronous face analysis contract. Detection
// reports presence and a bounding box only; landmark analysis adds the
// eye contours liveness needs. Both are cheap calls meant for per-frame
// use, extraction is the expensive one reserved for the final capture.
type DetectorClient interface {
	DetectFace(image string) (*DetectFaceResponse, error)
	AnalyzeLandmarks(image string) (*AnalyzeLandmarksResponse, error)
	ExtractDescriptor(payload ExtractDescriptorRequest) (*ExtractDescriptorResponse, error)
}
