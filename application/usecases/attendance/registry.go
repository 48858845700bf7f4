package attendance

import (
	"sync"
	"time"

	"presenza.io/application/constants"
	"presenza.io/application/utils"
)

// SessionContext is the per-attempt state kept between opening a
// verification session and completing it. TrackingActive is true only
// while the liveness stage is consuming frames.
type SessionContext struct {
	SessionID      string
	IdentityKey    string
	DeviceHash     string
	Stage          Stage
	TrackingActive bool
	CreatedAt      time.Time
}

type sessionRegistry struct {
	mutex    sync.Mutex
	sessions map[string]*SessionContext
}

var registry = sessionRegistry{sessions: map[string]*SessionContext{}}

// OpenSession creates and registers a new verification session.
func OpenSession(identityKey string, deviceHash string) *SessionContext {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	session := &SessionContext{
		SessionID:   utils.GenerateULIDString(),
		IdentityKey: identityKey,
		DeviceHash:  deviceHash,
		Stage:       StageIdle,
		CreatedAt:   time.Now(),
	}
	registry.sessions[session.SessionID] = session
	return session
}

// ClaimSession fetches a live session by id, dropping it if the session
// token TTL has lapsed.
func ClaimSession(sessionID string) *SessionContext {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()

	session := registry.sessions[sessionID]
	if session == nil {
		return nil
	}
	if time.Since(session.CreatedAt) > constants.VERIFICATION_SESSION_TTL {
		delete(registry.sessions, sessionID)
		return nil
	}
	return session
}

func CloseSession(sessionID string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	delete(registry.sessions, sessionID)
}

// markedDays backs the duplicate-day policy when it is enabled,
// guarding against a double commit racing the datastore check. It only
// remembers the current process's commits, which is exactly the window
// the datastore read can miss.
var markedDays = struct {
	mutex sync.Mutex
	days  map[string]string
}{days: map[string]string{}}

func MarkToday(identityKey string, now time.Time) {
	markedDays.mutex.Lock()
	defer markedDays.mutex.Unlock()
	markedDays.days[identityKey] = now.UTC().Format("2006-01-02")
}

func MarkedToday(identityKey string, now time.Time) bool {
	markedDays.mutex.Lock()
	defer markedDays.mutex.Unlock()
	return markedDays.days[identityKey] == now.UTC().Format("2006-01-02")
}
