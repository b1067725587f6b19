package secondary_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/azulbi/go-auth-gateway/secondary"
)

func TestFetchReadsAuthorizationHeader(t *testing.T) {
	var gotUser, gotPassword string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotUser = r.PostFormValue("user")
		gotPassword = r.PostFormValue("password")
		w.Header().Set("Authorization", "Bearer secondary-token-1")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	acquirer := secondary.NewHTTPAcquirer(ts.URL, "https://app.example.com", 5*time.Second)
	tokenValue, err := acquirer.Fetch(context.Background(), "u@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "secondary-token-1", tokenValue)
	require.Equal(t, "u@x.com", gotUser)
	require.Equal(t, "password123", gotPassword)
}

func TestFetchFallsBackToCookieOnRedirect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "auth-token-accountancy", Value: "cookie-token"})
		w.Header().Set("Location", "/dashboard")
		w.WriteHeader(http.StatusFound)
	}))
	defer ts.Close()

	acquirer := secondary.NewHTTPAcquirer(ts.URL, "", 5*time.Second)
	tokenValue, err := acquirer.Fetch(context.Background(), "u@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "cookie-token", tokenValue)
}

func TestFetchRejectsUnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	acquirer := secondary.NewHTTPAcquirer(ts.URL, "", 5*time.Second)
	_, err := acquirer.Fetch(context.Background(), "u@x.com", "wrong")
	require.Error(t, err)
}

func TestFetchErrorsWhenNoTokenPresent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	acquirer := secondary.NewHTTPAcquirer(ts.URL, "", 5*time.Second)
	_, err := acquirer.Fetch(context.Background(), "u@x.com", "password123")
	require.Error(t, err)
}

func TestFetchDoesNotFollowRedirects(t *testing.T) {
	followed := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/next" {
			followed = true
			w.WriteHeader(http.StatusOK)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth-token-accountancy", Value: "tok"})
		w.Header().Set("Location", "/next")
		w.WriteHeader(http.StatusFound)
	}))
	defer ts.Close()

	acquirer := secondary.NewHTTPAcquirer(ts.URL, "", 5*time.Second)
	tokenValue, err := acquirer.Fetch(context.Background(), "u@x.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "tok", tokenValue)
	require.False(t, followed, "the redirect target must never be requested")
}
