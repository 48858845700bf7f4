package types

import "time"

// TaskQueueBroker enqueues background tasks for the worker pool.
type TaskQueueBroker interface {
	EmitTask(taskName string, payload []byte, opts TaskOptions) error
}

type TaskOptions struct {
	Queue    string
	MaxRetry int
	Delay    time.Duration
}

const (
	AttendanceReceiptTaskName = "attendance:receipt"

	DefaultQueue  = "default"
	PriorityQueue = "priority"
)

// AttendanceReceiptPayload is the body of the receipt task queued once
// a check-in commits.
type AttendanceReceiptPayload struct {
	RecordID    string    `json:"recordID"`
	IdentityKey string    `json:"identityKey"`
	Timestamp   time.Time `json:"timestamp"`
	Score       float64   `json:"score"`
	FraudFlag   bool      `json:"fraudFlag"`
}
