package auditfakes

import (
	"context"
	"sync"

	"github.com/azulbi/go-auth-gateway/audit"
)

var _ audit.Log = (*FakeLog)(nil)

// FakeLog records appended attempts and can be forced to fail.
type FakeLog struct {
	lock     sync.Mutex
	attempts []audit.LoginAttempt

	AppendErr error
}

func NewFakeLog() *FakeLog {
	return &FakeLog{}
}

func (l *FakeLog) Append(_ context.Context, attempt audit.LoginAttempt) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.AppendErr != nil {
		return l.AppendErr
	}
	l.attempts = append(l.attempts, attempt)
	return nil
}

// Attempts returns a copy of everything appended so far.
func (l *FakeLog) Attempts() []audit.LoginAttempt {
	l.lock.Lock()
	defer l.lock.Unlock()
	out := make([]audit.LoginAttempt, len(l.attempts))
	copy(out, l.attempts)
	return out
}
