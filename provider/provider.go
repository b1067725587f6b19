// Package provider adapts the upstream identity provider's three operations
// behind a uniform tagged-result contract. The adapter never interprets or
// retries provider rejections; retry and fallback policy belongs to the
// orchestrator.
package provider

import (
	"context"
)

// Status tags an Outcome.
type Status int

const (
	// StatusSuccess means the provider issued tokens.
	StatusSuccess Status = iota
	// StatusSecondFactorRequired means the provider demands a step-up code.
	StatusSecondFactorRequired
	// StatusFailure means the provider rejected the request; Reason carries
	// the provider-supplied message.
	StatusFailure
)

// Tokens is the token set issued by the provider on success.
type Tokens struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int64 // Seconds until AccessToken expires; 0 if not reported
}

// Outcome is the uniform result of any provider operation.
type Outcome struct {
	Status Status
	Tokens Tokens // Populated only when Status == StatusSuccess
	Reason string // Populated only when Status == StatusFailure
}

// IdentityProvider wraps the provider operations. A returned error means the
// provider could not be reached at all (network, timeout); credential
// rejections come back as StatusFailure outcomes, not errors.
type IdentityProvider interface {
	// Authenticate performs primary password authentication
	Authenticate(ctx context.Context, identity, secret string) (Outcome, error)

	// VerifySecondFactor completes a step-up after StatusSecondFactorRequired.
	// Must only be called when the caller actually has a code.
	VerifySecondFactor(ctx context.Context, identity, secret, code string) (Outcome, error)

	// Refresh renews tokens using a previously issued refresh token
	Refresh(ctx context.Context, identity, refreshToken string) (Outcome, error)
}
