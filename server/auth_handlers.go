package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/docuflow/admin-gateway/backend"
	errs "github.com/docuflow/admin-gateway/internal/errors"
	"github.com/docuflow/admin-gateway/session"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Err(err).Msg("failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// LoginAPIHandler exchanges credentials for a session
// (POST /api/auth/tenant/token). On success the bundle is persisted in
// the session cookie and echoed in the response body.
func (s *Server) LoginAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		bundle, status, message := s.login(w, r, req)
		if bundle == nil {
			writeJSONError(w, status, message)
			return
		}
		writeJSON(w, http.StatusOK, bundle)
	}
}

// LoginSubmitHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		req := backend.LoginRequest{
			Email:      r.FormValue("email"),
			Password:   r.FormValue("password"),
			TenantSlug: r.FormValue("tenant_slug"),
		}
		redirect := safeRedirectTarget(r.FormValue("redirect"))

		if req.Email == "" || req.Password == "" || req.TenantSlug == "" {
			s.redirectLoginError(w, r, redirect, req.Email, "Email, password and tenant are required")
			return
		}

		bundle, _, message := s.login(w, r, req)
		if bundle == nil {
			s.redirectLoginError(w, r, redirect, req.Email, message)
			return
		}

		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// login runs the credential exchange and persists the resulting bundle.
// It returns (nil, status, message) on failure, distinguishing invalid
// credentials from an unknown tenant from a generic upstream failure.
func (s *Server) login(w http.ResponseWriter, r *http.Request, req backend.LoginRequest) (*session.TokenBundle, int, string) {
	token, err := s.backend.Login(r.Context(), req)
	if err != nil {
		switch {
		case errs.Is(err, errs.ErrInvalidCredentials):
			return nil, http.StatusUnauthorized, "invalid credentials"
		case errs.Is(err, errs.ErrTenantNotFound):
			return nil, http.StatusNotFound, "tenant not found"
		default:
			log.Err(err).Str("tenant", req.TenantSlug).Msg("login exchange failed")
			return nil, http.StatusBadGateway, "authentication failed"
		}
	}

	if token.UserRole != session.RoleAdmin {
		log.Warn().
			Int64("user_id", token.UserID).
			Str("role", string(token.UserRole)).
			Msg("login rejected: dashboard is restricted to administrators")
		return nil, http.StatusForbidden, "admin role required"
	}

	if !token.HasLifetimes() {
		// The backend contract supplies both lifetimes; treat omission
		// as a contract anomaly, then fall back to defaults so login
		// still succeeds.
		log.Error().
			Int64("expires_in", token.ExpiresIn).
			Int64("refresh_token_expires_in", token.RefreshTokenExpiresIn).
			Msg("backend omitted token lifetimes, applying defaults")
	}

	bundle := session.NewBundle(*token, s.nowTime())
	store := s.sessionStore(w, r)
	if err := store.Save(bundle); err != nil {
		log.Err(err).Msg("failed to persist session bundle")
		return nil, http.StatusInternalServerError, "failed to establish session"
	}
	return &bundle, http.StatusOK, ""
}

// RefreshAPIHandler exchanges the session's refresh token for a new
// bundle (POST /api/auth/refresh). The route is public; the handler
// authorizes against the session cookie itself.
func (s *Server) RefreshAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		store := s.sessionStore(w, r)
		bundle := store.Load()
		if bundle == nil {
			writeJSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		if req.RefreshToken != "" && req.RefreshToken != bundle.RefreshToken {
			writeJSONError(w, http.StatusUnauthorized, "unknown refresh token")
			return
		}

		refreshed, err := s.refresher.Refresh(r.Context(), store, *bundle)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", bundle.UserID).Msg("session refresh failed")
			writeJSONError(w, http.StatusUnauthorized, "session expired")
			return
		}
		writeJSON(w, http.StatusOK, refreshed)
	}
}

// LogoutHandler clears the session and redirects to login (GET /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessionStore(w, r).Delete()
		http.Redirect(w, r, RouteLoginPage, http.StatusSeeOther)
	}
}

// LogoutAPIHandler clears the session (GET /api/auth/logout)
func (s *Server) LogoutAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessionStore(w, r).Delete()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, redirect, email, errorMsg string) {
	query := url.Values{}
	query.Set("error", errorMsg)
	if email != "" {
		query.Set("email", email)
	}
	if redirect != RouteDashboard {
		query.Set("redirect", redirect)
	}
	http.Redirect(w, r, RouteLoginPage+"?"+query.Encode(), http.StatusSeeOther)
}

// safeRedirectTarget constrains post-login redirects to site-local
// paths so the redirect parameter cannot be abused as an open redirect.
func safeRedirectTarget(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return RouteDashboard
	}
	return target
}
