package apperrors

import (
	"net/http"

	"presenza.io/application/faults"
	"presenza.io/infrastructure/logger"
	server_response "presenza.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, message, nil, nil)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "payload validation failed", nil, *errMessages)
}

func ClientError(ctx interface{}, msg string, errs []error) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, errs)
}

func AuthenticationError(ctx interface{}, message string) {
	server_response.Responder.Respond(ctx, http.StatusUnauthorized, message, nil, nil)
}

func ExternalDependencyError(ctx interface{}, serviceName string, err error) {
	logger.Error("external dependency failed", logger.LoggerOptions{
		Key:  "service",
		Data: serviceName,
	}, logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusServiceUnavailable,
		"our service is temporarily unavailable. please try again shortly.", nil, nil)
}

func ErrorProcessingPayload(ctx interface{}) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, "abnormal payload passed", nil, nil)
}

func FatalServerError(ctx interface{}, err error) {
	logger.Error("fatal server error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusInternalServerError,
		"something went wrong on our end. please try again shortly.", nil, nil)
}

// FaultError maps a typed verification fault to the matching HTTP status.
// The fault's reason string is stable and is surfaced verbatim.
func FaultError(ctx interface{}, fault *faults.Fault) {
	var code int
	switch fault.Kind {
	case faults.KindValidation:
		code = http.StatusBadRequest
	case faults.KindNotFound:
		code = http.StatusNotFound
	case faults.KindRateLimitExceeded:
		code = http.StatusTooManyRequests
	case faults.KindMatchRejected, faults.KindLivenessTimeout, faults.KindLivenessFailed:
		code = http.StatusUnauthorized
	case faults.KindGeofenceRejected:
		code = http.StatusForbidden
	case faults.KindCapture, faults.KindCaptureExtraction, faults.KindLocationUnavailable:
		code = http.StatusUnprocessableEntity
	case faults.KindPersistence:
		code = http.StatusInternalServerError
	default:
		code = http.StatusBadRequest
	}
	payload := map[string]any{
		"kind": fault.Kind,
	}
	if fault.RetryAfter != 0 {
		payload["retryAfterSeconds"] = int(fault.RetryAfter.Seconds())
	}
	server_response.Responder.Respond(ctx, code, fault.Reason, payload, nil)
}
