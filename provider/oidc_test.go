package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azulbi/go-auth-gateway/provider"
)

// fakeIdP is a minimal OIDC-discoverable token endpoint with one password
// user and one MFA-enrolled user.
type fakeIdP struct {
	server *httptest.Server

	tokenDelay    time.Duration
	lastGrantType string
	lastTOTP      string
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	idp := &fakeIdP{}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 idp.server.URL,
			"authorization_endpoint": idp.server.URL + "/authorize",
			"token_endpoint":         idp.server.URL + "/token",
			"jwks_uri":               idp.server.URL + "/keys",
		})
	})
	mux.HandleFunc("/token", idp.tokenHandler)

	idp.server = httptest.NewServer(mux)
	t.Cleanup(idp.server.Close)
	return idp
}

func (idp *fakeIdP) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if idp.tokenDelay > 0 {
		time.Sleep(idp.tokenDelay)
	}
	_ = r.ParseForm()
	idp.lastGrantType = r.PostFormValue("grant_type")
	idp.lastTOTP = r.PostFormValue("totp")

	issue := func() {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "issued-access",
			"id_token":      "issued-id",
			"refresh_token": "issued-refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}
	reject := func(description string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": description,
		})
	}

	switch idp.lastGrantType {
	case "password":
		user := r.PostFormValue("username")
		password := r.PostFormValue("password")
		switch {
		case user == "mfa@x.com" && password == "password123" && idp.lastTOTP == "123456":
			issue()
		case user == "mfa@x.com" && password == "password123" && idp.lastTOTP == "":
			reject("OTP code required")
		case user == "mfa@x.com" && password == "password123":
			reject("invalid user credentials")
		case user == "u@x.com" && password == "password123":
			issue()
		default:
			reject("invalid user credentials")
		}
	case "refresh_token":
		if r.PostFormValue("refresh_token") == "good-refresh" {
			issue()
		} else {
			reject("refresh token expired")
		}
	default:
		reject("unsupported grant")
	}
}

func newTestProvider(t *testing.T) *provider.OIDCProvider {
	t.Helper()
	idp := newFakeIdP(t)
	p, err := provider.NewOIDCProvider(context.Background(), provider.Config{
		IssuerURL:    idp.server.URL,
		ClientID:     "gateway",
		ClientSecret: "gateway-secret",
		CallTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return p
}

func TestAuthenticateSuccess(t *testing.T) {
	p := newTestProvider(t)

	outcome, err := p.Authenticate(context.Background(), "u@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, provider.StatusSuccess, outcome.Status)
	require.Equal(t, "issued-access", outcome.Tokens.AccessToken)
	require.Equal(t, "issued-id", outcome.Tokens.IDToken)
	require.Equal(t, "issued-refresh", outcome.Tokens.RefreshToken)
	require.Greater(t, outcome.Tokens.ExpiresIn, int64(3500))
}

func TestAuthenticateRejection(t *testing.T) {
	p := newTestProvider(t)

	outcome, err := p.Authenticate(context.Background(), "u@x.com", "wrong-password")
	require.NoError(t, err, "a credential rejection is an outcome, not an error")
	require.Equal(t, provider.StatusFailure, outcome.Status)
	require.Contains(t, outcome.Reason, "invalid user credentials")
}

func TestAuthenticateDetectsSecondFactorDemand(t *testing.T) {
	p := newTestProvider(t)

	outcome, err := p.Authenticate(context.Background(), "mfa@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, provider.StatusSecondFactorRequired, outcome.Status)
}

func TestVerifySecondFactorSendsTOTP(t *testing.T) {
	idp := newFakeIdP(t)
	p, err := provider.NewOIDCProvider(context.Background(), provider.Config{
		IssuerURL: idp.server.URL,
		ClientID:  "gateway",
	})
	require.NoError(t, err)

	outcome, err := p.VerifySecondFactor(context.Background(), "mfa@x.com", "password123", "123456")
	require.NoError(t, err)
	require.Equal(t, provider.StatusSuccess, outcome.Status)
	require.Equal(t, "issued-access", outcome.Tokens.AccessToken)
	require.Equal(t, "123456", idp.lastTOTP)
	require.Equal(t, "password", idp.lastGrantType)
}

func TestVerifySecondFactorRejection(t *testing.T) {
	p := newTestProvider(t)

	outcome, err := p.VerifySecondFactor(context.Background(), "mfa@x.com", "password123", "999999")
	require.NoError(t, err)
	require.Equal(t, provider.StatusFailure, outcome.Status)
}

func TestRefreshSuccess(t *testing.T) {
	p := newTestProvider(t)

	outcome, err := p.Refresh(context.Background(), "u@x.com", "good-refresh")
	require.NoError(t, err)
	require.Equal(t, provider.StatusSuccess, outcome.Status)
	require.Equal(t, "issued-access", outcome.Tokens.AccessToken)
}

func TestRefreshRejection(t *testing.T) {
	p := newTestProvider(t)

	outcome, err := p.Refresh(context.Background(), "u@x.com", "stale-refresh")
	require.NoError(t, err)
	require.Equal(t, provider.StatusFailure, outcome.Status)
	require.Contains(t, outcome.Reason, "refresh token expired")
}

func TestSlowProviderBecomesTimeoutOutcome(t *testing.T) {
	idp := newFakeIdP(t)
	idp.tokenDelay = 500 * time.Millisecond

	p, err := provider.NewOIDCProvider(context.Background(), provider.Config{
		IssuerURL:   idp.server.URL,
		ClientID:    "gateway",
		CallTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	outcome, err := p.Authenticate(context.Background(), "u@x.com", "password123")
	require.NoError(t, err, "a timed-out call is an outcome, not an error")
	require.Equal(t, provider.StatusFailure, outcome.Status)
	require.Equal(t, "timeout", outcome.Reason)

	outcome, err = p.Refresh(context.Background(), "u@x.com", "good-refresh")
	require.NoError(t, err)
	require.Equal(t, provider.StatusFailure, outcome.Status)
	require.Equal(t, "timeout", outcome.Reason)
}

func TestUnreachableProviderFailsDiscovery(t *testing.T) {
	_, err := provider.NewOIDCProvider(context.Background(), provider.Config{
		IssuerURL: "http://127.0.0.1:1/nowhere",
		ClientID:  "gateway",
	})
	require.Error(t, err)
}
