package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultCallTimeout = 10 * time.Second

// Config describes one identity-provider realm. The gateway runs one
// OIDCProvider per audience (standard and privileged pools).
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	CallTimeout  time.Duration // Per-operation timeout; defaults to 10s
}

var _ IdentityProvider = (*OIDCProvider)(nil)

// OIDCProvider implements IdentityProvider against an OIDC-discoverable
// token endpoint using the resource owner password credentials grant.
type OIDCProvider struct {
	oauth       oauth2.Config
	tokenURL    string
	callTimeout time.Duration
	httpClient  *http.Client
}

// NewOIDCProvider discovers the realm's endpoints once at construction.
func NewOIDCProvider(ctx context.Context, cfg Config) (*OIDCProvider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("[NewOIDCProvider] issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("[NewOIDCProvider] client ID is required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "[NewOIDCProvider] provider discovery failed")
	}

	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	endpoint := oidcProvider.Endpoint()
	return &OIDCProvider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
		},
		tokenURL:    endpoint.TokenURL,
		callTimeout: timeout,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

// Authenticate performs the password grant.
func (p *OIDCProvider) Authenticate(ctx context.Context, identity, secret string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	tok, err := p.oauth.PasswordCredentialsToken(ctx, identity, secret)
	if err != nil {
		return p.outcomeFromError(err)
	}
	return successOutcome(tok), nil
}

// VerifySecondFactor repeats the password grant with the step-up code as a
// "totp" form value. x/oauth2 has no hook for extra password-grant
// parameters, so the token endpoint is called directly.
func (p *OIDCProvider) VerifySecondFactor(ctx context.Context, identity, secret, code string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	form := url.Values{
		"grant_type":    {"password"},
		"username":      {identity},
		"password":      {secret},
		"totp":          {code},
		"client_id":     {p.oauth.ClientID},
		"client_secret": {p.oauth.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Outcome{}, errors.Wrap(err, "[VerifySecondFactor] building request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return p.outcomeFromError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Outcome{}, errors.Wrap(err, "[VerifySecondFactor] reading response")
	}

	if resp.StatusCode != http.StatusOK {
		return p.outcomeFromError(&oauth2.RetrieveError{
			Response: resp,
			Body:     body,
		})
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Outcome{}, errors.Wrap(err, "[VerifySecondFactor] decoding token response")
	}

	return Outcome{
		Status: StatusSuccess,
		Tokens: Tokens{
			AccessToken:  payload.AccessToken,
			IDToken:      payload.IDToken,
			RefreshToken: payload.RefreshToken,
			ExpiresIn:    payload.ExpiresIn,
		},
	}, nil
}

// Refresh performs the refresh token grant.
func (p *OIDCProvider) Refresh(ctx context.Context, _ string, refreshToken string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	source := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := source.Token()
	if err != nil {
		return p.outcomeFromError(err)
	}
	return successOutcome(tok), nil
}

// outcomeFromError maps transport and grant errors onto the uniform
// contract: provider rejections and timeouts become outcomes (the
// orchestrator's fallback policy applies), an unreachable provider stays an
// error.
func (p *OIDCProvider) outcomeFromError(err error) (Outcome, error) {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		reason := retrieveErr.ErrorDescription
		if reason == "" {
			reason = string(retrieveErr.Body)
		}
		if isSecondFactorDemand(retrieveErr.ErrorCode, reason) {
			return Outcome{Status: StatusSecondFactorRequired}, nil
		}
		return Outcome{Status: StatusFailure, Reason: reason}, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Status: StatusFailure, Reason: "timeout"}, nil
	}
	return Outcome{}, errors.Wrap(err, "identity provider unreachable")
}

// isSecondFactorDemand recognizes the provider's step-up demand in an
// otherwise ordinary grant rejection.
func isSecondFactorDemand(code, description string) bool {
	text := strings.ToLower(code + " " + description)
	return strings.Contains(text, "mfa") ||
		strings.Contains(text, "otp") ||
		strings.Contains(text, "second factor")
}

func successOutcome(tok *oauth2.Token) Outcome {
	tokens := Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		tokens.IDToken = idToken
	}
	if !tok.Expiry.IsZero() {
		tokens.ExpiresIn = int64(time.Until(tok.Expiry).Seconds())
	}
	return Outcome{Status: StatusSuccess, Tokens: tokens}
}
