package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"presenza.io/application/constants"
	"presenza.io/infrastructure/logger"
)

// SessionClaims binds a verification session token to the identity and
// device that opened it.
type SessionClaims struct {
	SessionID   string `json:"sessionID"`
	IdentityKey string `json:"identityKey"`
	DeviceHash  string `json:"deviceHash"`
	jwt.RegisteredClaims
}

func signingKey() []byte {
	return []byte(os.Getenv("JWT_SIGNING_KEY"))
}

func GenerateSessionToken(sessionID string, identityKey string, deviceHash string) (*string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID:   sessionID,
		IdentityKey: identityKey,
		DeviceHash:  deviceHash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(constants.VERIFICATION_SESSION_TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(signingKey())
	if err != nil {
		logger.Error("an error occured while signing a session token", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}
	return &signed, nil
}

func DecodeSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
