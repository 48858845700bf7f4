package messagequeue

import (
	"os"

	"github.com/hibiken/asynq"

	"presenza.io/infrastructure/logger"
	"presenza.io/infrastructure/message_queue/tasks"
	queue_types "presenza.io/infrastructure/message_queue/types"
)

type AsynqBroker struct {
	client *asynq.Client
}

var Broker queue_types.TaskQueueBroker

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
}

func InitialiseBroker() {
	Broker = &AsynqBroker{client: asynq.NewClient(redisOpts())}
	logger.Info("task queue broker initialised")
}

func (broker *AsynqBroker) EmitTask(taskName string, payload []byte, opts queue_types.TaskOptions) error {
	taskOpts := []asynq.Option{}
	if opts.Queue != "" {
		taskOpts = append(taskOpts, asynq.Queue(opts.Queue))
	}
	if opts.MaxRetry != 0 {
		taskOpts = append(taskOpts, asynq.MaxRetry(opts.MaxRetry))
	}
	if opts.Delay != 0 {
		taskOpts = append(taskOpts, asynq.ProcessIn(opts.Delay))
	}

	_, err := broker.client.Enqueue(asynq.NewTask(taskName, payload), taskOpts...)
	if err != nil {
		logger.Error("an error occured while emitting a task", logger.LoggerOptions{
			Key:  "taskName",
			Data: taskName,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}
	return nil
}

// StartQueueWorker runs the background worker pool. It blocks, so the
// caller runs it on its own goroutine.
func StartQueueWorker() {
	server := asynq.NewServer(redisOpts(), asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queue_types.PriorityQueue: 6,
			queue_types.DefaultQueue:  3,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue_types.AttendanceReceiptTaskName, tasks.HandleAttendanceReceiptTask)

	if err := server.Run(mux); err != nil {
		logger.Error("task queue worker stopped", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
	}
}
