package config

import (
	"strconv"
	"time"
)

// AuthConfig carries the orchestrator and rate limiter tunables.
type AuthConfig interface {
	GetGracePeriod() time.Duration
	GetRateLimitWindow() time.Duration
	GetRateLimitMaxAttempts() int
	GetRotateRefreshTokens() bool
	GetProviderTimeout() time.Duration
	GetSecondaryTimeout() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

// GetGracePeriod is the safety margin subtracted from a cached token's
// expiry when judging cache validity.
func (Auth) GetGracePeriod() time.Duration {
	return getDurationEnv("GRACE_PERIOD_SECONDS", 60*time.Second)
}

func (Auth) GetRateLimitWindow() time.Duration {
	return getDurationEnv("RATE_LIMIT_WINDOW_SECONDS", 60*time.Second)
}

func (Auth) GetRateLimitMaxAttempts() int {
	return getIntEnv("RATE_LIMIT_MAX_ATTEMPTS", 5)
}

// GetRotateRefreshTokens reports whether the provider rotates refresh tokens
// on every refresh call. When false the stored refresh token is preserved
// after a successful refresh.
func (Auth) GetRotateRefreshTokens() bool {
	return GetEnv("ROTATE_REFRESH_TOKENS", "false") == "true"
}

func (Auth) GetProviderTimeout() time.Duration {
	return getDurationEnv("PROVIDER_TIMEOUT_SECONDS", 10*time.Second)
}

func (Auth) GetSecondaryTimeout() time.Duration {
	return getDurationEnv("SECONDARY_TIMEOUT_SECONDS", 8*time.Second)
}

func getIntEnv(envVar string, defaultValue int) int {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	raw := GetEnv(envVar, "")
	if raw == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
