package biometric

import (
	"presenza.io/infrastructure/biometric/types"
	"presenza.io/infrastructure/logger"
)

var Detector types.DetectorClient

func InitialiseDetectorService() {
	Detector = NewFaceEngine()
	logger.Info("face detector service initialised")
}
