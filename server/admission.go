package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/docuflow/admin-gateway/backend"
	"github.com/docuflow/admin-gateway/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the admitted token bundle
const ContextKeySession ContextKey = "session_bundle"

// publicRoutes bypass the admission gate entirely. Everything else on
// the site requires an admitted admin session.
var publicRoutes = []string{
	RouteLoginPage,
	RouteAPILogin,
	RouteAPIRefresh,
	"/favicon.ico",
}

func isPublicRoute(path string) bool {
	for _, route := range publicRoutes {
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

func isAPIRoute(path string) bool {
	return strings.HasPrefix(path, "/api")
}

// RequireAdmin is the admission gate, run before every protected page
// and proxy route. It resolves the session cookie and either passes the
// request through with rewritten auth headers or rejects it: API routes
// get a 401, page routes get a redirect to the login page with the
// original path preserved.
//
// The gate checks expiry strictly, without the refresh margin. It has
// no way to run an async refresh inside a navigation, so a stale token
// fails the request here and is recovered by the next request's
// refresh-and-retry cycle.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if isPublicRoute(r.URL.Path) {
				next(w, r)
				return
			}

			store := s.sessionStore(w, r)
			bundle := store.Load()
			if bundle == nil {
				s.rejectUnauthorized(w, r)
				return
			}

			if bundle.UserRole != session.RoleAdmin {
				log.Warn().
					Int64("user_id", bundle.UserID).
					Str("role", string(bundle.UserRole)).
					Msg("non-admin session rejected by admission gate")
				store.Delete()
				s.rejectUnauthorized(w, r)
				return
			}

			if bundle.AccessExpiredStrict(s.nowTime()) {
				s.rejectUnauthorized(w, r)
				return
			}

			// Proxied API routes get the validated credential rewritten
			// onto the request so downstream code never re-derives it.
			if isAPIRoute(r.URL.Path) {
				r.Header.Set("Authorization", "Bearer "+bundle.AccessToken)
				if bundle.TenantID != 0 {
					r.Header.Set(backend.HeaderTenantID, strconv.FormatInt(bundle.TenantID, 10))
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, bundle)
			next(w, r.WithContext(ctx))
		}
	}
}

func (s *Server) rejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	if isAPIRoute(r.URL.Path) {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.redirectToLogin(w, r)
}

// redirectToLogin sends the browser to the login page with the original
// path preserved, so login can return the user where they started.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginURL := RouteLoginPage + "?redirect=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// sessionFromContext returns the bundle the admission gate stashed, or
// nil for ungated routes.
func sessionFromContext(ctx context.Context) *session.TokenBundle {
	bundle, _ := ctx.Value(ContextKeySession).(*session.TokenBundle)
	return bundle
}
