package infrastructure

import (
	"sync"

	messagequeue "presenza.io/infrastructure/message_queue"
	startup "presenza.io/infrastructure/startUp"
)

// StartServer boots shared services then runs the queue worker and the
// HTTP server side by side.
func StartServer() {
	startup.StartServices()
	defer startup.CleanUpServices()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		messagequeue.StartQueueWorker()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ginServer{}.Start()
	}()

	wg.Wait()
}
