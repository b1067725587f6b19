package audit

import (
	"context"
	"sync"
)

var _ Log = (*InMemoryLog)(nil)

// InMemoryLog keeps attempts in a slice. Appends are serialized by a mutex so
// concurrent writers never interleave partial records.
type InMemoryLog struct {
	mu       sync.Mutex
	attempts []LoginAttempt
}

// NewInMemoryLog creates a new in-memory attempt log
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

// Append records one attempt
func (l *InMemoryLog) Append(_ context.Context, attempt LoginAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts = append(l.attempts, attempt)
	return nil
}

// Attempts returns a copy of everything appended so far.
func (l *InMemoryLog) Attempts() []LoginAttempt {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LoginAttempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}
