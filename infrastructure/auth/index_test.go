package auth

import (
	"os"
	"testing"

	"presenza.io/infrastructure/logger"
)

func TestMain(m *testing.M) {
	logger.InitializeLogger()
	os.Exit(m.Run())
}

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	token, err := GenerateSessionToken("01SESSION", "AB123", "device-hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := DecodeSessionToken(*token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.SessionID != "01SESSION" {
		t.Errorf("unexpected session id %s", claims.SessionID)
	}
	if claims.IdentityKey != "AB123" {
		t.Errorf("unexpected identity key %s", claims.IdentityKey)
	}
	if claims.DeviceHash != "device-hash" {
		t.Errorf("unexpected device hash %s", claims.DeviceHash)
	}
}

func TestDecodeRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-signing-key")

	token, err := GenerateSessionToken("01SESSION", "AB123", "device-hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := DecodeSessionToken(*token + "x"); err == nil {
		t.Error("expected a tampered token to be rejected")
	}

	t.Setenv("JWT_SIGNING_KEY", "a-different-key")
	if _, err := DecodeSessionToken(*token); err == nil {
		t.Error("expected a token signed with another key to be rejected")
	}
}
