package secondary

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultFetchTimeout = 8 * time.Second
	tokenCookieName     = "auth-token-accountancy"
)

var _ Acquirer = (*HTTPAcquirer)(nil)

// HTTPAcquirer logs in to the downstream accountancy system with the user's
// primary credentials and extracts the bearer token it issues. The endpoint
// answers a successful form login with 204 or a redirect carrying the token
// in the Authorization header or a cookie; redirects are never followed.
type HTTPAcquirer struct {
	loginURL string
	origin   string
	client   *http.Client
}

// NewHTTPAcquirer builds an acquirer for the given login endpoint.
// origin is sent as the Origin/Referer pair the endpoint expects.
func NewHTTPAcquirer(loginURL, origin string, timeout time.Duration) *HTTPAcquirer {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPAcquirer{
		loginURL: loginURL,
		origin:   origin,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Fetch performs the downstream login and returns the issued token.
func (a *HTTPAcquirer) Fetch(ctx context.Context, identity, secret string) (string, error) {
	form := url.Values{
		"user":     {identity},
		"password": {secret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "[Fetch] building request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if a.origin != "" {
		req.Header.Set("Origin", a.origin)
		req.Header.Set("Referer", a.origin+"/")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "[Fetch] downstream login failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusFound {
		return "", errors.Errorf("[Fetch] unexpected status %d", resp.StatusCode)
	}

	token := extractToken(resp)
	if token == "" {
		return "", errors.New("[Fetch] no token in downstream response")
	}
	return token, nil
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the session cookie.
func extractToken(resp *http.Response) string {
	if auth := resp.Header.Get("Authorization"); auth != "" {
		token := strings.TrimSpace(auth)
		if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		return token
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == tokenCookieName {
			return cookie.Value
		}
	}
	return ""
}
