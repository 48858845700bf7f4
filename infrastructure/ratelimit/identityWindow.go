package ratelimit

import (
	"sync"
	"time"

	"presenza.io/application/constants"
	"presenza.io/application/faults"
	"presenza.io/infrastructure/logger"
)

type attemptRecord struct {
	Count       int
	LastAttempt time.Time
}

// IdentityRateLimiter throttles verification attempts per identity key
// over a fixed window. State is process local; each instance of the
// service enforces its own window.
type IdentityRateLimiter struct {
	mutex    sync.Mutex
	attempts map[string]*attemptRecord
	now      func() time.Time
}

func NewIdentityRateLimiter(now func() time.Time) *IdentityRateLimiter {
	if now == nil {
		now = time.Now
	}
	return &IdentityRateLimiter{
		attempts: map[string]*attemptRecord{},
		now:      now,
	}
}

var IdentityLimiter = NewIdentityRateLimiter(nil)

// Check records one attempt for the identity and fails once the window
// budget is spent. The window slides from the most recent attempt, and
// the returned fault carries how long the caller has to wait. Rejected
// attempts are not themselves counted.
func (limiter *IdentityRateLimiter) Check(identityKey string) error {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()

	now := limiter.now()
	record := limiter.attempts[identityKey]
	if record == nil || now.Sub(record.LastAttempt) >= constants.RATE_LIMIT_WINDOW {
		limiter.attempts[identityKey] = &attemptRecord{
			Count:       1,
			LastAttempt: now,
		}
		return nil
	}

	if record.Count >= constants.RATE_LIMIT_MAX_ATTEMPTS {
		wait := constants.RATE_LIMIT_WINDOW - now.Sub(record.LastAttempt)
		if wait < 0 {
			wait = 0
		}
		logger.Warning("verification attempts rate limited", logger.LoggerOptions{
			Key:  "identityKey",
			Data: identityKey,
		})
		return faults.RateLimitExceeded(wait)
	}

	record.Count++
	record.LastAttempt = now
	return nil
}

// Reset clears the window for an identity. Called after a successful
// check-in so a legitimate user is not penalised for earlier retries.
func (limiter *IdentityRateLimiter) Reset(identityKey string) {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	delete(limiter.attempts, identityKey)
}
