package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azulbi/go-auth-gateway/server"
)

func TestCorsUnrestrictedUsesWildcardWithoutCredentials(t *testing.T) {
	f := setupServer(t, 5)

	rec := postAuthFromOrigin(t, f.server, "https://anywhere.example")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"),
		"credentials must never be allowed without an explicit origin list")
}

func TestCorsListedOriginIsEchoedWithCredentials(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	f := setupServer(t, 5)

	rec := postAuthFromOrigin(t, f.server, "https://app.example.com")
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsUnlistedOriginGetsNoHeaders(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com")
	f := setupServer(t, 5)

	rec := postAuthFromOrigin(t, f.server, "https://other.example.com")
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func postAuthFromOrigin(t *testing.T, s *server.Server, origin string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(validBody())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.RouteAuth, bytes.NewReader(raw))
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", origin)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}
