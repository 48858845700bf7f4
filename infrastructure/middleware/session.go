package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "presenza.io/application/appErrors"
	"presenza.io/infrastructure/auth"
)

// SessionMiddleware requires a verification session token issued by the
// session endpoint and rejects tokens presented from a different device
// than the one that opened the session.
func SessionMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			apperrors.AuthenticationError(ctx, "a verification session token is required")
			return
		}

		claims, err := auth.DecodeSessionToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			apperrors.AuthenticationError(ctx, "verification session token is invalid or expired")
			return
		}
		if claims.DeviceHash != ctx.GetString("DeviceHash") {
			apperrors.AuthenticationError(ctx, "verification session was opened on a different device")
			return
		}

		ctx.Set("SessionID", claims.SessionID)
		ctx.Set("IdentityKey", claims.IdentityKey)
		ctx.Next()
	}
}
