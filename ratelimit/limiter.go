// Package ratelimit implements a fixed-window per-client attempt counter
// guarding the authentication flow.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // Only set on rejection; always > 0
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts authentication attempts per client address in fixed windows.
// State is in-memory only; stale windows are swept lazily on access to bound
// memory. A single mutex covers the whole map, contention is low for this
// workload.
type Limiter struct {
	mu          sync.Mutex
	windows     map[string]*window
	maxAttempts int
	windowLen   time.Duration
	nowTime     func() time.Time // injectable for testing
}

// Option modifies a Limiter at construction time.
type Option func(*Limiter)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(l *Limiter) {
		l.nowTime = nowFunc
	}
}

// New creates a Limiter allowing maxAttempts per windowLen per client address.
func New(maxAttempts int, windowLen time.Duration, options ...Option) *Limiter {
	l := &Limiter{
		windows:     make(map[string]*window),
		maxAttempts: maxAttempts,
		windowLen:   windowLen,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Admit checks whether another attempt from clientAddress may proceed.
// The first request for an address opens a window with count 1; requests
// inside an active window increment the count; once the count would exceed
// the maximum the request is rejected with the time until the window resets.
func (l *Limiter) Admit(clientAddress string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowTime()
	l.sweep(now)

	w, ok := l.windows[clientAddress]
	if !ok || now.After(w.resetAt) {
		l.windows[clientAddress] = &window{count: 1, resetAt: now.Add(l.windowLen)}
		return Decision{Allowed: true}
	}

	if w.count >= l.maxAttempts {
		// Round up to whole seconds so the caller never retries inside
		// the same window
		retry := w.resetAt.Sub(now)
		if rem := retry % time.Second; rem > 0 {
			retry += time.Second - rem
		}
		if retry <= 0 {
			retry = time.Second
		}
		return Decision{Allowed: false, RetryAfter: retry}
	}

	w.count++
	return Decision{Allowed: true}
}

// Reset clears the window for a client address. Called after a successful
// authentication so earlier failed attempts stop counting against the caller.
func (l *Limiter) Reset(clientAddress string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, clientAddress)
}

// sweep drops windows that expired more than one window length ago.
// Caller must hold the mutex.
func (l *Limiter) sweep(now time.Time) {
	for addr, w := range l.windows {
		if now.Sub(w.resetAt) > l.windowLen {
			delete(l.windows, addr)
		}
	}
}
