package providerfakes

import (
	"context"
	"sync"

	"github.com/azulbi/go-auth-gateway/provider"
)

var _ provider.IdentityProvider = (*FakeProvider)(nil)

// FakeProvider scripts outcomes per operation and counts invocations.
type FakeProvider struct {
	lock sync.Mutex

	AuthenticateOutcome provider.Outcome
	AuthenticateErr     error
	AuthenticateCalls   int

	VerifyOutcome provider.Outcome
	VerifyErr     error
	VerifyCalls   int

	RefreshOutcome provider.Outcome
	RefreshErr     error
	RefreshCalls   int
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{}
}

func (p *FakeProvider) Authenticate(_ context.Context, _, _ string) (provider.Outcome, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.AuthenticateCalls++
	return p.AuthenticateOutcome, p.AuthenticateErr
}

func (p *FakeProvider) VerifySecondFactor(_ context.Context, _, _, _ string) (provider.Outcome, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.VerifyCalls++
	return p.VerifyOutcome, p.VerifyErr
}

func (p *FakeProvider) Refresh(_ context.Context, _, _ string) (provider.Outcome, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.RefreshCalls++
	return p.RefreshOutcome, p.RefreshErr
}

// Calls returns the three invocation counters (authenticate, verify, refresh).
func (p *FakeProvider) Calls() (int, int, int) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.AuthenticateCalls, p.VerifyCalls, p.RefreshCalls
}
