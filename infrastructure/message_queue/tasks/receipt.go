package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"presenza.io/infrastructure/logger"
	queue_types "presenza.io/infrastructure/message_queue/types"
)

// HandleAttendanceReceiptTask records that a receipt went out for a
// committed check-in. Delivery itself is a no-op until a notification
// channel is configured for the deployment.
func HandleAttendanceReceiptTask(ctx context.Context, task *asynq.Task) error {
	var payload queue_types.AttendanceReceiptPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("abnormal payload on an attendance receipt task", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}

	logger.Info("attendance receipt processed", logger.LoggerOptions{
		Key:  "recordID",
		Data: payload.RecordID,
	}, logger.LoggerOptions{
		Key:  "identityKey",
		Data: payload.IdentityKey,
	}, logger.LoggerOptions{
		Key:  "fraudFlag",
		Data: payload.FraudFlag,
	})
	return nil
}
