package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/docuflow/admin-gateway/backend"
	"github.com/docuflow/admin-gateway/internal/config"
	"github.com/docuflow/admin-gateway/refresh"
	"github.com/docuflow/admin-gateway/session"
)

// Server is the admin gateway: it serves the dashboard pages, owns the
// session cookie, and proxies document API calls to the backend.
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	backend   *backend.Client
	refresher *refresh.Coordinator
	nowTime   func() time.Time // nowTime function (injectable for testing)
}

// Option configures a Server.
type Option func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithBackendClient overrides the backend client (primarily for testing)
func WithBackendClient(client *backend.Client) Option {
	return func(s *Server) {
		s.backend = client
		s.refresher = refresh.NewCoordinator(client)
	}
}

// New creates the gateway server from config.
func New(cfg config.Config, options ...Option) (*Server, error) {
	timeout, err := time.ParseDuration(cfg.GetBackendTimeout())
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid backend timeout %q: %w", cfg.GetBackendTimeout(), err)
	}

	backendClient, err := backend.NewClient(cfg.GetBackendURL(), backend.WithHTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create backend client: %w", err)
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		backend:   backendClient,
		refresher: refresh.NewCoordinator(backendClient),
		nowTime:   time.Now,
	}
	s.env = cfg.GetEnv()

	for _, opt := range options {
		opt(s)
	}

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

// sessionStore binds a cookie-backed session store to one request.
func (s *Server) sessionStore(w http.ResponseWriter, r *http.Request) session.Store {
	isSecure := s.config.GetSecureCookies() || getScheme(r) == "https"

	return session.NewCookieStore(w, r,
		session.WithCookieName(s.config.GetSessionCookieName()),
		session.WithSecureCookies(isSecure),
	)
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
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
