package controller

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	apperrors "presenza.io/application/appErrors"
	"presenza.io/application/constants"
	"presenza.io/application/controller/dto"
	"presenza.io/application/faults"
	"presenza.io/application/interfaces"
	"presenza.io/application/repository"
	"presenza.io/application/usecases/attendance"
	"presenza.io/entities"
	"presenza.io/infrastructure/auth"
	"presenza.io/infrastructure/biometric"
	"presenza.io/infrastructure/database/repository/mongo"
	"presenza.io/infrastructure/geolocation"
	messagequeue "presenza.io/infrastructure/message_queue"
	queue_types "presenza.io/infrastructure/message_queue/types"
	"presenza.io/infrastructure/ratelimit"
	server_response "presenza.io/infrastructure/serverResponse"
	"presenza.io/infrastructure/validator"
)

// StartVerificationSession opens a session for an enrolled identity and
// returns the token plus the capture parameters the client must honour.
func StartVerificationSession(ctx *interfaces.ApplicationContext[dto.StartSessionDTO]) {
	if valiErr := validator.ValidatorInstance.ValidateStruct(*ctx.Body); valiErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiErr)
		return
	}

	student, err := repository.StudentRepo().FindOneByFilter(map[string]interface{}{
		"identityKey": ctx.Body.IdentityKey,
		"deletedAt":   nil,
	})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	if student == nil || student.Deactivated {
		apperrors.NotFoundError(ctx.Ctx, "no active enrollment found for this identity")
		return
	}

	deviceHash, _ := ctx.Keys["DeviceHash"].(string)
	session := attendance.OpenSession(ctx.Body.IdentityKey, deviceHash)
	token, err := auth.GenerateSessionToken(session.SessionID, session.IdentityKey, deviceHash)
	if err != nil {
		attendance.CloseSession(session.SessionID)
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "verification session opened", map[string]any{
		"sessionID":                 session.SessionID,
		"token":                     token,
		"calibrationFrames":         constants.CALIBRATION_FRAME_COUNT,
		"targetBlinks":              constants.TARGET_BLINK_COUNT,
		"livenessTimeoutSeconds":    int(constants.LIVENESS_TIMEOUT.Seconds()),
		"locationTimeoutSeconds":    int(constants.LOCATION_ACQUISITION_TIMEOUT.Seconds()),
		"sessionExpiresInSeconds":   int(constants.VERIFICATION_SESSION_TTL.Seconds()),
	}, nil)
}

// VerifyAttendance runs the full pipeline over the frames, capture and
// position submitted for an open session.
func VerifyAttendance(ctx *interfaces.ApplicationContext[dto.VerifyAttendanceDTO]) {
	if valiErr := validator.ValidatorInstance.ValidateStruct(*ctx.Body); valiErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiErr)
		return
	}

	sessionID, _ := ctx.Keys["SessionID"].(string)
	session := attendance.ClaimSession(sessionID)
	if session == nil {
		apperrors.NotFoundError(ctx.Ctx, "verification session not found or expired. start a new one")
		return
	}

	workflow := attendance.Workflow{
		Store:             attendance.MongoRecordStore{},
		Detector:          biometric.Detector,
		Limiter:           ratelimit.IdentityLimiter,
		Receipts:          queueReceiptDispatcher{},
		Fence:             geolocation.FenceFromEnv(),
		DuplicateDayCheck: os.Getenv("DUPLICATE_DAY_CHECK") != "false",
	}

	provider := geolocation.ClientReported{Position: entities.GeoPosition{
		Latitude:   ctx.Body.Latitude,
		Longitude:  ctx.Body.Longitude,
		AccuracyM:  ctx.Body.AccuracyM,
		CapturedAt: ctx.Body.PositionCapturedAt,
	}}
	position, err := provider.CurrentPosition()
	if err != nil {
		if fault, ok := faults.As(err); ok {
			apperrors.FaultError(ctx.Ctx, fault)
			return
		}
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	result, err := workflow.Run(session, attendance.VerificationInput{
		IdentityKey: session.IdentityKey,
		DeviceHash:  session.DeviceHash,
		Frames:      ctx.Body.Frames,
		Capture:     ctx.Body.Capture,
		Position:    *position,
	})
	if err != nil {
		// A failed run keeps the session claimable so the caller can
		// retry until the token expires. Commit is terminal.
		if fault, ok := faults.As(err); ok {
			apperrors.FaultError(ctx.Ctx, fault)
			return
		}
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}
	attendance.CloseSession(session.SessionID)

	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "attendance recorded", result, nil)
}

// FetchAttendanceHistory lists an identity's records, newest first.
func FetchAttendanceHistory(ctx *interfaces.ApplicationContext[dto.HistoryFilterDTO]) {
	if valiErr := validator.ValidatorInstance.ValidateStruct(*ctx.Body); valiErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, valiErr)
		return
	}

	perPage := ctx.Body.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	page := ctx.Body.Page
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * perPage

	var sort interface{} = map[string]interface{}{"timestamp": -1}
	records, err := repository.AttendanceRecordRepo().FindMany(map[string]interface{}{
		"identityKey": ctx.Body.IdentityKey,
	}, mongo.FindOptions{Sort: &sort, Skip: &skip, Limit: &perPage})
	if err != nil {
		apperrors.FatalServerError(ctx.Ctx, err)
		return
	}

	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "attendance history fetched", map[string]any{
		"records": records,
		"page":    page,
		"perPage": perPage,
	}, nil)
}

// queueReceiptDispatcher forwards committed records to the task queue.
type queueReceiptDispatcher struct{}

func (queueReceiptDispatcher) QueueReceipt(record entities.AttendanceRecord) error {
	payload, err := json.Marshal(queue_types.AttendanceReceiptPayload{
		RecordID:    record.ID,
		IdentityKey: record.IdentityKey,
		Timestamp:   record.Timestamp,
		Score:       record.BiometricScore,
		FraudFlag:   record.FraudFlag,
	})
	if err != nil {
		return err
	}
	return messagequeue.Broker.EmitTask(queue_types.AttendanceReceiptTaskName, payload, queue_types.TaskOptions{
		Queue:    queue_types.DefaultQueue,
		MaxRetry: 3,
		Delay:    time.Second,
	})
}
