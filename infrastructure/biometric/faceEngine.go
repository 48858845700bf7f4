package biometric

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"presenza.io/application/faults"
	"presenza.io/infrastructure/biometric/types"
	"presenza.io/infrastructure/logger"
	"presenza.io/infrastructure/network"
)

// FaceEngine talks to the face analysis service over HTTP. It is the
// production implementation of types.DetectorClient.
type FaceEngine struct {
	Network *network.NetworkController
	APIKey  string
}

func NewFaceEngine() *FaceEngine {
	return &FaceEngine{
		Network: &network.NetworkController{
			BaseUrl: os.Getenv("FACE_ENGINE_URL"),
		},
		APIKey: os.Getenv("FACE_ENGINE_API_KEY"),
	}
}

func (engine *FaceEngine) headers() *map[string]string {
	return &map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", engine.APIKey),
	}
}

func (engine *FaceEngine) DetectFace(image string) (*types.DetectFaceResponse, error) {
	response, statusCode, err := engine.Network.Post("/detect", engine.headers(), types.DetectFaceRequest{
		Image: image,
	})
	if err != nil {
		logger.Error("an error occured while calling the face engine detect endpoint", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, faults.New(faults.KindCapture, "face analysis service unreachable")
	}
	if *statusCode != http.StatusOK {
		logger.Error("face engine detect endpoint returned a non 200 status", logger.LoggerOptions{
			Key:  "statusCode",
			Data: statusCode,
		})
		return nil, faults.New(faults.KindCapture, "face analysis service rejected the capture")
	}
	var parsed types.DetectFaceResponse
	if err := json.Unmarshal(*response, &parsed); err != nil {
		return nil, faults.New(faults.KindCapture, "unable to parse face analysis response")
	}
	return &parsed, nil
}

func (engine *FaceEngine) AnalyzeLandmarks(image string) (*types.AnalyzeLandmarksResponse, error) {
	response, statusCode, err := engine.Network.Post("/landmarks", engine.headers(), types.AnalyzeLandmarksRequest{
		Image: image,
	})
	if err != nil {
		logger.Error("an error occured while calling the face engine landmarks endpoint", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, faults.New(faults.KindCapture, "face analysis service unreachable")
	}
	if *statusCode != http.StatusOK {
		logger.Error("face engine landmarks endpoint returned a non 200 status", logger.LoggerOptions{
			Key:  "statusCode",
			Data: statusCode,
		})
		return nil, faults.New(faults.KindCapture, "face analysis service rejected the capture")
	}
	var parsed types.AnalyzeLandmarksResponse
	if err := json.Unmarshal(*response, &parsed); err != nil {
		return nil, faults.New(faults.KindCapture, "unable to parse face analysis response")
	}
	return &parsed, nil
}

func (engine *FaceEngine) ExtractDescriptor(payload types.ExtractDescriptorRequest) (*types.ExtractDescriptorResponse, error) {
	response, statusCode, err := engine.Network.Post("/descriptor", engine.headers(), payload)
	if err != nil {
		logger.Error("an error occured while calling the face engine descriptor endpoint", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, faults.New(faults.KindCapture, "face analysis service unreachable")
	}
	if *statusCode != http.StatusOK {
		logger.Error("face engine descriptor endpoint returned a non 200 status", logger.LoggerOptions{
			Key:  "statusCode",
			Data: statusCode,
		})
		return nil, faults.New(faults.KindCapture, "face analysis service rejected the capture")
	}
	var parsed types.ExtractDescriptorResponse
	if err := json.Unmarshal(*response, &parsed); err != nil {
		return nil, faults.New(faults.KindCapture, "unable to parse face analysis response")
	}
	return &parsed, nil
}
