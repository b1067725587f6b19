package server

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/azulbi/go-auth-gateway/auth"
	apperrors "github.com/azulbi/go-auth-gateway/internal/errors"
	"github.com/azulbi/go-auth-gateway/internal/utils"
)

type authRequest struct {
	Identity         string `json:"identity"`
	Secret           string `json:"secret"`
	SecondFactorCode string `json:"secondFactorCode,omitempty"`
}

type authResponse struct {
	Success        bool   `json:"success"`
	AccessToken    string `json:"accessToken,omitempty"`
	IDToken        string `json:"idToken,omitempty"`
	RefreshToken   string `json:"refreshToken,omitempty"`
	SecondaryToken string `json:"secondaryToken,omitempty"`
	ExpiresAt      int64  `json:"expiresAt,omitempty"`
}

type errorResponse struct {
	Success           bool     `json:"success"`
	Error             string   `json:"error"`
	Details           []string `json:"details,omitempty"`
	RetryAfterSeconds int      `json:"retryAfterSeconds,omitempty"`
}

// AuthHandler handles one audience's login endpoint: boundary validation,
// rate limiting, orchestration, and mapping of the error taxonomy onto
// distinct responses.
func (s *Server) AuthHandler(orchestrator *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientAddress := getClientAddress(r)
		if decision := s.limiter.Admit(clientAddress); !decision.Allowed {
			retryAfter := int(decision.RetryAfter.Seconds())
			log.Warn().
				Str("clientAddress", clientAddress).
				Int("retryAfterSeconds", retryAfter).
				Msg("Rate limit exceeded")
			s.writeAuthError(w, "", errors.Wrap(apperrors.ErrRateLimited, "[AuthHandler] admission rejected"), retryAfter)
			return
		}

		var req authRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", nil, 0)
			return
		}

		if problems := s.validator.ValidateCredentials(req.Identity, req.Secret, req.SecondFactorCode); len(problems) > 0 {
			writeError(w, http.StatusBadRequest, "invalid input", problems, 0)
			return
		}

		result, err := orchestrator.HandleAuth(r.Context(), auth.Request{
			Identity:         req.Identity,
			Secret:           req.Secret,
			SecondFactorCode: req.SecondFactorCode,
			ClientAddress:    clientAddress,
		})
		if err != nil {
			s.writeAuthError(w, req.Identity, err, 0)
			return
		}

		// A successful login clears earlier failed attempts so legitimate
		// users are not locked out by their own typos.
		s.limiter.Reset(clientAddress)

		writeJSON(w, http.StatusOK, authResponse{
			Success:        true,
			AccessToken:    result.AccessToken,
			IDToken:        result.IDToken,
			RefreshToken:   result.RefreshToken,
			SecondaryToken: result.SecondaryToken,
			ExpiresAt:      result.ExpiresAt,
		})
	}
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeAuthError maps the taxonomy onto distinct status codes and messages
// so clients can branch on step-up vs hard failure vs retry-later. Detailed
// provider reasons never leave the process.
func (s *Server) writeAuthError(w http.ResponseWriter, identity string, err error, retryAfterSeconds int) {
	switch {
	case apperrors.Is(err, apperrors.ErrRateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		writeError(w, http.StatusTooManyRequests, "too many attempts, try again shortly", nil, retryAfterSeconds)
	case apperrors.Is(err, apperrors.ErrSecondFactorRequired):
		writeError(w, http.StatusUnauthorized, "second factor required", nil, 0)
	case apperrors.Is(err, apperrors.ErrRefreshFailed):
		writeError(w, http.StatusUnauthorized, "session refresh failed, please log in again", nil, 0)
	case apperrors.Is(err, apperrors.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "invalid credentials", nil, 0)
	case apperrors.Is(err, apperrors.ErrUpstreamUnavailable):
		log.Error().
			Str("identity", utils.MaskIdentity(identity)).
			Err(err).
			Msg("Upstream unavailable")
		writeError(w, http.StatusBadGateway, "authentication service unavailable", nil, 0)
	default:
		log.Error().
			Str("identity", utils.MaskIdentity(identity)).
			Err(err).
			Msg("Unexpected authentication error")
		writeError(w, http.StatusInternalServerError, "internal error", nil, 0)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, details []string, retryAfterSeconds int) {
	writeJSON(w, status, errorResponse{
		Success:           false,
		Error:             message,
		Details:           details,
		RetryAfterSeconds: retryAfterSeconds,
	})
}

// getClientAddress prefers the first X-Forwarded-For hop, falling back to
// the socket's remote address.
func getClientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
