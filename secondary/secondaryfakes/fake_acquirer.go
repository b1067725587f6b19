package secondaryfakes

import (
	"context"
	"sync"
)

// FakeAcquirer returns a scripted token or error and counts calls.
type FakeAcquirer struct {
	lock sync.Mutex

	Token      string
	FetchErr   error
	FetchCalls int
}

func NewFakeAcquirer() *FakeAcquirer {
	return &FakeAcquirer{}
}

func (a *FakeAcquirer) Fetch(_ context.Context, _, _ string) (string, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.FetchCalls++
	if a.FetchErr != nil {
		return "", a.FetchErr
	}
	return a.Token, nil
}
