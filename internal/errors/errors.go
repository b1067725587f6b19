package errors

import (
	"errors"
)

// Error taxonomy for the authentication gateway. Every failure surfaced to a
// caller maps onto exactly one of these so clients can branch on step-up vs
// hard failure vs retry-later.
var (
	// Authentication errors
	ErrSecondFactorRequired = errors.New("second factor required")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRefreshFailed        = errors.New("session refresh failed")

	// Admission errors
	ErrRateLimited = errors.New("too many attempts")

	// Infrastructure errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
