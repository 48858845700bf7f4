package constants

import "time"

// Descriptor matching. The acceptance threshold trades the odd false
// reject for a low impersonation rate.
var DESCRIPTOR_LENGTH int = 128
var MATCH_ACCEPT_THRESHOLD float64 = 60

// Blink liveness. The baseline floor guards against a poor camera angle
// producing a tiny calibrated openness and every frame reading as a blink.
var CALIBRATION_FRAME_COUNT int = 30
var BASELINE_OPENNESS_FLOOR float64 = 0.25
var BLINK_CLOSE_RATIO float64 = 0.70
var BLINK_REOPEN_RATIO float64 = 0.90
var TARGET_BLINK_COUNT int = 2
var LIVENESS_TIMEOUT time.Duration = 45 * time.Second

// Per-identity attempt throttle.
var RATE_LIMIT_MAX_ATTEMPTS int = 20
var RATE_LIMIT_WINDOW time.Duration = 300 * time.Second

// Geofence and impossible-travel heuristic.
var EARTH_RADIUS_KM float64 = 6371
var IMPLAUSIBLE_SPEED_KMH float64 = 600

// Budget for the client-side position acquisition capability.
var LOCATION_ACQUISITION_TIMEOUT time.Duration = 15 * time.Second

// How long a started verification session stays claimable before the
// token expires and per-session state is discarded.
var VERIFICATION_SESSION_TTL time.Duration = 10 * time.Minute

var SUPPORT_EMAIL = "help@presenza.io"
