package biometric

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"presenza.io/application/constants"
	"presenza.io/application/faults"
	"presenza.io/infrastructure/biometric/types"
	"presenza.io/infrastructure/database/repository/cache"
	"presenza.io/infrastructure/logger"
)

// Distance returns the euclidean distance between two descriptors.
func Distance(a types.FaceDescriptor, b types.FaceDescriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, faults.Validation(fmt.Sprintf("descriptor length mismatch. %d vs %d", len(a), len(b)))
	}
	if len(a) == 0 {
		return 0, faults.Validation("empty descriptor")
	}
	return floats.Distance(a, b, 2), nil
}

// Score converts a euclidean distance into a 0 to 100 similarity score.
// Identical descriptors score 100 and anything at distance 1 or beyond
// scores 0.
func Score(distance float64) float64 {
	score := (1 - distance) * 100
	return math.Max(0, math.Min(100, score))
}

type MatchResult struct {
	Score    float64
	Accepted bool
}

// Match scores a live descriptor against every enrolled descriptor and
// keeps the best score. Enrollment quality varies per sample so the
// student is judged on their closest one. A candidate that cannot be
// compared (wrong length) scores zero instead of failing the match.
func Match(live types.FaceDescriptor, enrolled []types.FaceDescriptor) (*MatchResult, error) {
	if len(enrolled) == 0 {
		return nil, faults.NotFound("no enrolled descriptors to match against")
	}

	best := 0.0
	for _, candidate := range enrolled {
		distance, err := Distance(live, candidate)
		if err != nil {
			continue
		}
		if score := Score(distance); score > best {
			best = score
		}
	}

	return &MatchResult{
		Score:    best,
		Accepted: best >= constants.MATCH_ACCEPT_THRESHOLD,
	}, nil
}

// ExtractWithRetry runs the descriptor extraction ladder over a capture.
// The tight crop around the detected box is attempted first, then an
// upscaled crop, then the full frame. The ladder exists because tight
// crops fail on faces near the frame edge.
func ExtractWithRetry(client types.DetectorClient, image string, box *types.FaceBox) (types.FaceDescriptor, error) {
	attempts := []types.ExtractDescriptorRequest{
		{Image: image, Crop: box},
		{Image: image, Crop: box, Scale: 2},
		{Image: image},
	}
	if box == nil {
		attempts = attempts[2:]
	}

	for i, attempt := range attempts {
		result, err := client.ExtractDescriptor(attempt)
		if err != nil {
			logger.Warning("descriptor extraction attempt failed, trying the next strategy", logger.LoggerOptions{
				Key:  "attempt",
				Data: i + 1,
			}, logger.LoggerOptions{
				Key:  "error",
				Data: err,
			})
			continue
		}
		if result.Found && len(result.Descriptor) == constants.DESCRIPTOR_LENGTH {
			return result.Descriptor, nil
		}
		logger.Warning("descriptor extraction attempt came back empty", logger.LoggerOptions{
			Key:  "attempt",
			Data: i + 1,
		})
	}
	return nil, faults.CaptureExtractionFailed("could not extract a face descriptor from the capture")
}

// EnrolledDescriptors returns every usable descriptor for a student.
// Students enrolled before descriptors were stored directly only have
// reference photos, so descriptors are derived from those photos on
// first use and cached.
func EnrolledDescriptors(client types.DetectorClient, identityKey string, stored [][]float64, legacyPhotos []string) ([]types.FaceDescriptor, error) {
	descriptors := make([]types.FaceDescriptor, 0, len(stored))
	for _, d := range stored {
		descriptors = append(descriptors, types.FaceDescriptor(d))
	}
	if len(descriptors) != 0 {
		return descriptors, nil
	}

	for i, photo := range legacyPhotos {
		cacheKey := fmt.Sprintf("%s-legacy-descriptor-%d", identityKey, i)
		if cached := cache.Cache.FindOneByteArray(cacheKey); cached != nil {
			var descriptor types.FaceDescriptor
			if err := json.Unmarshal(*cached, &descriptor); err == nil {
				descriptors = append(descriptors, descriptor)
				continue
			}
		}

		descriptor, err := ExtractWithRetry(client, photo, nil)
		if err != nil {
			logger.Warning("could not derive a descriptor from a legacy reference photo", logger.LoggerOptions{
				Key:  "identityKey",
				Data: identityKey,
			}, logger.LoggerOptions{
				Key:  "photoIndex",
				Data: i,
			})
			continue
		}
		if encoded, err := json.Marshal(descriptor); err == nil {
			cache.Cache.CreateEntry(cacheKey, encoded, 0)
		}
		descriptors = append(descriptors, descriptor)
	}

	if len(descriptors) == 0 {
		return nil, faults.NotFound("student has no usable face enrollment")
	}
	return descriptors, nil
}
