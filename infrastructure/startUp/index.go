package startup

import (
	"presenza.io/infrastructure/biometric"
	"presenza.io/infrastructure/database"
	"presenza.io/infrastructure/logger"
	messagequeue "presenza.io/infrastructure/message_queue"
)

// StartServices boots everything the request path depends on, in
// dependency order.
func StartServices() {
	logger.InitializeLogger()
	database.SetUpDatabase()
	biometric.InitialiseDetectorService()
	messagequeue.InitialiseBroker()
}

// CleanUpServices releases external connections on shutdown.
func CleanUpServices() {
	database.CleanUp()
}
