package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/azulbi/go-auth-gateway/audit"
	apperrors "github.com/azulbi/go-auth-gateway/internal/errors"
	"github.com/azulbi/go-auth-gateway/internal/utils"
	"github.com/azulbi/go-auth-gateway/provider"
	"github.com/azulbi/go-auth-gateway/secondary"
	"github.com/azulbi/go-auth-gateway/sessions"
	"github.com/azulbi/go-auth-gateway/token"
)

const (
	defaultGracePeriod      = 60 * time.Second
	defaultSecondaryTimeout = 8 * time.Second
	defaultTokenLifetime    = time.Hour
)

// Deps holds all collaborator dependencies for the Service.
type Deps struct {
	Sessions  sessions.Store            // Session record storage
	Audit     audit.Log                 // Append-only attempt log
	Provider  provider.IdentityProvider // Upstream identity provider
	Secondary secondary.Acquirer        // Best-effort side-channel credential
}

// Request is one inbound authentication request after boundary validation.
type Request struct {
	Identity         string
	Secret           string
	SecondFactorCode string
	ClientAddress    string
}

// Result is the successful outcome of HandleAuth.
type Result struct {
	AccessToken    string
	IDToken        string
	RefreshToken   string
	SecondaryToken string // Empty when the side channel produced nothing
	ExpiresAt      int64  // Epoch seconds
	FromCache      bool
}

// Service is the authentication orchestrator. Given a login request it
// chooses between the cache-hit, refresh and full-authentication paths,
// handles the second-factor step-up, and keeps the secondary credential
// strictly best effort.
type Service struct {
	deps                Deps
	gracePeriod         time.Duration
	rotateRefreshTokens bool
	secondaryTimeout    time.Duration
	flight              singleflight.Group // Coalesces provider calls per identity
	nowTime             func() time.Time   // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithGracePeriod sets the safety margin used when judging cache validity.
func WithGracePeriod(grace time.Duration) ServiceOption {
	return func(s *Service) {
		s.gracePeriod = grace
	}
}

// WithRotateRefreshTokens configures whether a successful refresh overwrites
// the stored refresh token (provider rotates) or preserves it.
func WithRotateRefreshTokens(rotate bool) ServiceOption {
	return func(s *Service) {
		s.rotateRefreshTokens = rotate
	}
}

// WithSecondaryTimeout bounds each side-channel fetch.
func WithSecondaryTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.secondaryTimeout = timeout
	}
}

// NewService initializes the orchestrator with required dependencies.
func NewService(deps Deps, options ...ServiceOption) (*Service, error) {
	if deps.Sessions == nil {
		return nil, errors.New("[NewService] Sessions store is required")
	}
	if deps.Audit == nil {
		return nil, errors.New("[NewService] Audit log is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("[NewService] Provider is required")
	}
	if deps.Secondary == nil {
		return nil, errors.New("[NewService] Secondary acquirer is required")
	}

	service := &Service{
		deps:             deps,
		gracePeriod:      defaultGracePeriod,
		secondaryTimeout: defaultSecondaryTimeout,
		nowTime:          time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// HandleAuth runs the per-request decision flow: cached session when still
// valid, transparent refresh when a refresh token exists, full
// authentication otherwise. Failures map onto the gateway error taxonomy.
func (s *Service) HandleAuth(ctx context.Context, req Request) (*Result, error) {
	identity := NormalizeIdentity(req.Identity)
	if identity == "" {
		return nil, errors.Wrap(apperrors.ErrAuthenticationFailed, "[HandleAuth] empty identity")
	}

	record, err := s.readRecord(ctx, identity)
	if err != nil {
		return nil, err
	}

	// Cache hit: serve the stored tokens verbatim. Intentionally silent,
	// steady-state polling must not flood the audit log.
	if record.ValidFor(s.nowTime(), s.gracePeriod) {
		return resultFromRecord(record, true), nil
	}

	// Everything from here on calls the provider and writes the store, so
	// concurrent requests for the same identity are coalesced: the second
	// caller waits for the in-flight result instead of issuing a duplicate
	// provider call.
	value, err, _ := s.flight.Do(identity, func() (interface{}, error) {
		// The in-flight call must complete and persist even if the
		// inbound request is cancelled, otherwise the cache diverges
		// from what the provider believes.
		return s.renew(context.WithoutCancel(ctx), identity, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*Result), nil
}

// renew is the provider-call-and-persist sequence, always executed under the
// per-identity singleflight.
func (s *Service) renew(ctx context.Context, identity string, req Request) (*Result, error) {
	// Re-read: a coalesced predecessor may have refreshed the record
	// between the caller's read and this execution.
	record, err := s.readRecord(ctx, identity)
	if err != nil {
		return nil, err
	}
	if record.ValidFor(s.nowTime(), s.gracePeriod) {
		return resultFromRecord(record, true), nil
	}

	// An expired record without a refresh token goes straight to full
	// authentication, a refresh call would fail deterministically.
	if record != nil && record.RefreshToken != "" {
		result, err := s.refresh(ctx, identity, record, req)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errRefreshRejected) {
			return nil, err
		}
		if req.Secret == "" {
			return nil, errors.Wrap(apperrors.ErrRefreshFailed, "[HandleAuth] refresh rejected and no secret available")
		}
		log.Warn().
			Str("identity", utils.MaskIdentity(identity)).
			Msg("Refresh failed, falling back to full authentication")
	}

	return s.fullAuth(ctx, identity, record, req)
}

// errRefreshRejected distinguishes a provider rejection of the refresh
// grant (eligible for full-auth fallback) from infrastructure errors.
var errRefreshRejected = errors.New("refresh rejected")

// refresh renews the session with the stored refresh token. Silent on
// success: refreshes are not audited, only full authentications are.
func (s *Service) refresh(ctx context.Context, identity string, record *sessions.Record, req Request) (*Result, error) {
	outcome, err := s.deps.Provider.Refresh(ctx, identity, record.RefreshToken)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrUpstreamUnavailable, "[refresh] %v", err)
	}

	switch outcome.Status {
	case provider.StatusSuccess:
		refreshToken := record.RefreshToken
		if s.rotateRefreshTokens && outcome.Tokens.RefreshToken != "" {
			refreshToken = outcome.Tokens.RefreshToken
		}
		updated := &sessions.Record{
			Identity:       identity,
			AccessToken:    outcome.Tokens.AccessToken,
			IDToken:        outcome.Tokens.IDToken,
			RefreshToken:   refreshToken,
			SecondaryToken: s.fetchSecondary(ctx, identity, req.Secret, record.SecondaryToken),
			ExpiresAt:      s.expiryOf(outcome.Tokens),
			UpdatedAt:      s.nowTime(),
		}
		if err := s.deps.Sessions.Put(ctx, updated); err != nil {
			return nil, errors.Wrapf(apperrors.ErrUpstreamUnavailable, "[refresh] persisting record: %v", err)
		}
		log.Info().
			Str("identity", utils.MaskIdentity(identity)).
			Bool("hasSecondaryToken", updated.SecondaryToken != "").
			Msg("Session refreshed")
		return resultFromRecord(updated, false), nil

	default:
		log.Warn().
			Str("identity", utils.MaskIdentity(identity)).
			Str("reason", outcome.Reason).
			Msg("Provider rejected refresh")
		return nil, errRefreshRejected
	}
}

// fullAuth performs a complete authentication, including the second-factor
// step-up sub-flow. Every full attempt is audited, success or failure.
func (s *Service) fullAuth(ctx context.Context, identity string, previous *sessions.Record, req Request) (*Result, error) {
	if req.Secret == "" {
		s.appendAttempt(ctx, identity, false, req)
		return nil, errors.Wrap(apperrors.ErrAuthenticationFailed, "[fullAuth] no secret supplied")
	}

	outcome, err := s.deps.Provider.Authenticate(ctx, identity, req.Secret)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrUpstreamUnavailable, "[fullAuth] %v", err)
	}

	switch outcome.Status {
	case provider.StatusSuccess:
		return s.completeAuth(ctx, identity, previous, req, outcome)

	case provider.StatusSecondFactorRequired:
		if req.SecondFactorCode == "" {
			// Never call the provider again without a code; the
			// caller must re-submit with one.
			s.appendAttempt(ctx, identity, false, req)
			return nil, errors.Wrap(apperrors.ErrSecondFactorRequired, "[fullAuth] second factor not provided")
		}
		return s.verifySecondFactor(ctx, identity, previous, req)

	default:
		s.appendAttempt(ctx, identity, false, req)
		log.Warn().
			Str("identity", utils.MaskIdentity(identity)).
			Str("reason", outcome.Reason).
			Str("clientAddress", req.ClientAddress).
			Msg("Authentication failed")
		// The provider's detailed reason stays in the log; callers get
		// a generic message so failed guesses reveal nothing.
		return nil, errors.Wrap(apperrors.ErrAuthenticationFailed, "[fullAuth] provider rejected credentials")
	}
}

func (s *Service) verifySecondFactor(ctx context.Context, identity string, previous *sessions.Record, req Request) (*Result, error) {
	outcome, err := s.deps.Provider.VerifySecondFactor(ctx, identity, req.Secret, req.SecondFactorCode)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrUpstreamUnavailable, "[verifySecondFactor] %v", err)
	}

	if outcome.Status != provider.StatusSuccess {
		s.appendAttempt(ctx, identity, false, req)
		log.Warn().
			Str("identity", utils.MaskIdentity(identity)).
			Str("reason", outcome.Reason).
			Msg("Second factor verification failed")
		return nil, errors.Wrap(apperrors.ErrAuthenticationFailed, "[verifySecondFactor] provider rejected code")
	}

	return s.completeAuth(ctx, identity, previous, req, outcome)
}

// completeAuth persists a fresh record after a successful full
// authentication. Unlike refresh, the provider-issued refresh token always
// replaces the stored one here.
func (s *Service) completeAuth(ctx context.Context, identity string, previous *sessions.Record, req Request, outcome provider.Outcome) (*Result, error) {
	s.appendAttempt(ctx, identity, true, req)

	cachedSecondary := ""
	if previous != nil {
		cachedSecondary = previous.SecondaryToken
	}

	record := &sessions.Record{
		Identity:       identity,
		AccessToken:    outcome.Tokens.AccessToken,
		IDToken:        outcome.Tokens.IDToken,
		RefreshToken:   outcome.Tokens.RefreshToken,
		SecondaryToken: s.fetchSecondary(ctx, identity, req.Secret, cachedSecondary),
		ExpiresAt:      s.expiryOf(outcome.Tokens),
		UpdatedAt:      s.nowTime(),
	}
	if err := s.deps.Sessions.Put(ctx, record); err != nil {
		return nil, errors.Wrapf(apperrors.ErrUpstreamUnavailable, "[completeAuth] persisting record: %v", err)
	}

	log.Info().
		Str("identity", utils.MaskIdentity(identity)).
		Str("clientAddress", req.ClientAddress).
		Bool("secondFactor", req.SecondFactorCode != "").
		Bool("hasSecondaryToken", record.SecondaryToken != "").
		Msg("Authentication succeeded")

	return resultFromRecord(record, false), nil
}

// fetchSecondary attempts the best-effort side-channel fetch. Any failure,
// timeout included, keeps the previously cached value; nothing escalates to
// the primary flow.
func (s *Service) fetchSecondary(ctx context.Context, identity, secret, cached string) string {
	if secret == "" {
		return cached
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.secondaryTimeout)
	defer cancel()

	fetched, err := s.deps.Secondary.Fetch(fetchCtx, identity, secret)
	if err != nil {
		log.Warn().
			Str("identity", utils.MaskIdentity(identity)).
			Err(err).
			Msg("Secondary token fetch failed, keeping cached value")
		return cached
	}
	if fetched == "" {
		return cached
	}
	return fetched
}

// appendAttempt records a full authentication attempt. Audit failures are
// absorbed: they must never fail the request that produced them.
func (s *Service) appendAttempt(ctx context.Context, identity string, success bool, req Request) {
	attempt := audit.LoginAttempt{
		Identity:             identity,
		Timestamp:            s.nowTime(),
		Success:              success,
		ClientAddress:        req.ClientAddress,
		SecondFactorProvided: req.SecondFactorCode != "",
	}
	if err := s.deps.Audit.Append(ctx, attempt); err != nil {
		log.Error().
			Str("identity", utils.MaskIdentity(identity)).
			Err(err).
			Msg("Failed to append login attempt")
	}
}

// readRecord loads the session record, mapping absence to nil.
func (s *Service) readRecord(ctx context.Context, identity string) (*sessions.Record, error) {
	record, err := s.deps.Sessions.Get(ctx, identity)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrUpstreamUnavailable, "[readRecord] %v", err)
	}
	return record, nil
}

// expiryOf computes the absolute expiry instant for a fresh token set,
// preferring the provider-reported lifetime, then the token's own exp claim.
func (s *Service) expiryOf(tokens provider.Tokens) int64 {
	if tokens.ExpiresIn > 0 {
		return s.nowTime().Add(time.Duration(tokens.ExpiresIn) * time.Second).Unix()
	}
	if exp, ok := token.Expiry(tokens.AccessToken); ok {
		return exp
	}
	return s.nowTime().Add(defaultTokenLifetime).Unix()
}

func resultFromRecord(record *sessions.Record, fromCache bool) *Result {
	return &Result{
		AccessToken:    record.AccessToken,
		IDToken:        record.IDToken,
		RefreshToken:   record.RefreshToken,
		SecondaryToken: record.SecondaryToken,
		ExpiresAt:      record.ExpiresAt,
		FromCache:      fromCache,
	}
}
