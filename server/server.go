package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/azulbi/go-auth-gateway/auth"
	"github.com/azulbi/go-auth-gateway/internal/config"
	"github.com/azulbi/go-auth-gateway/ratelimit"
)

// Orchestrators holds one authentication orchestrator per audience.
type Orchestrators struct {
	Standard   *auth.Service // Regular user pool
	Privileged *auth.Service // Admin pool
}

type Server struct {
	env       string // Environment (e.g., "DEV", "production")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	auth      Orchestrators
	limiter   *ratelimit.Limiter
	validator *auth.Validator
}

func New(cfg config.Config, orchestrators Orchestrators, limiter *ratelimit.Limiter) (*Server, error) {
	if orchestrators.Standard == nil {
		return nil, fmt.Errorf("[Server New] standard orchestrator is required")
	}
	if orchestrators.Privileged == nil {
		return nil, fmt.Errorf("[Server New] privileged orchestrator is required")
	}
	if limiter == nil {
		return nil, fmt.Errorf("[Server New] rate limiter is required")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		auth:      orchestrators,
		limiter:   limiter,
		validator: auth.NewValidator(),
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
