package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mileusna/useragent"

	apperrors "presenza.io/application/appErrors"
	"presenza.io/application/interfaces"
)

// DeviceMiddleware identifies the requesting device. Every request must
// carry an X-Device-Id header; the device hash stored on attendance
// records is derived from it together with the user agent.
func DeviceMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		deviceID := ctx.GetHeader("X-Device-Id")
		if deviceID == "" {
			apperrors.ClientError(ctx, "X-Device-Id header is required", nil)
			return
		}

		agentHeader := ctx.GetHeader("User-Agent")
		agent := useragent.Parse(agentHeader)

		ctx.Set("DeviceID", deviceID)
		ctx.Set("DeviceName", fmt.Sprintf("%s on %s", agent.Name, agent.OS))
		ctx.Set("UserAgent", agentHeader)
		ctx.Set("DeviceHash", HashDevice(deviceID, agentHeader))
		ctx.Next()
	}
}

func HashDevice(deviceID string, userAgent string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", deviceID, userAgent)))
	return hex.EncodeToString(sum[:])
}

// BuildAppContext assembles the application context handlers consume
// from what the middleware stashed on the request.
func BuildAppContext[T any](ctx *gin.Context, body *T) *interfaces.ApplicationContext[T] {
	return &interfaces.ApplicationContext[T]{
		Ctx:        ctx,
		Body:       body,
		Keys:       ctx.Keys,
		Header:     http.Header(ctx.Request.Header),
		DeviceID:   ctx.GetString("DeviceID"),
		DeviceName: ctx.GetString("DeviceName"),
		UserAgent:  ctx.GetString("UserAgent"),
	}
}
