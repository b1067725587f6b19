package audit

import (
	"context"
	"time"
)

// LoginAttempt is one append-only row per full authentication attempt.
// Cache hits and silent refreshes are intentionally not recorded.
// Attempts are immutable once written.
type LoginAttempt struct {
	Identity             string    // Normalized identity; masked in log output, stored as-is
	Timestamp            time.Time // When the attempt was made
	Success              bool      // Whether the provider accepted the credentials
	ClientAddress        string    // Remote address of the caller
	SecondFactorProvided bool      // Whether a step-up code accompanied the attempt
}

// Log defines the interface for the append-only attempt log.
// Append failures must never fail the authentication request that produced
// the attempt; callers absorb and log them.
type Log interface {
	Append(ctx context.Context, attempt LoginAttempt) error
}
