package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// DefaultCookieName is the canonical session cookie name.
const DefaultCookieName = "session"

// Store persists the current token bundle. Absence is a normal state:
// Load returns nil rather than an error when nothing (or garbage) is
// stored, and Delete is a no-op when already absent.
type Store interface {
	Save(bundle TokenBundle) error
	Load() *TokenBundle
	Delete()
}

// CookieStore implements Store on top of a single HttpOnly cookie and
// is bound to one request/response pair. Writes are cached so a Load
// following a Save within the same request observes the new bundle
// even though the inbound Cookie header still carries the old one.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	name   string
	secure bool

	cached  *TokenBundle
	deleted bool
}

var _ Store = (*CookieStore)(nil)

// CookieStoreOption configures a CookieStore.
type CookieStoreOption func(*CookieStore)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) CookieStoreOption {
	return func(s *CookieStore) {
		if name != "" {
			s.name = name
		}
	}
}

// WithSecureCookies marks the cookie Secure (HTTPS only).
func WithSecureCookies(secure bool) CookieStoreOption {
	return func(s *CookieStore) {
		s.secure = secure
	}
}

// NewCookieStore creates a Store bound to the given request/response pair.
func NewCookieStore(w http.ResponseWriter, r *http.Request, options ...CookieStoreOption) *CookieStore {
	s := &CookieStore{
		w:    w,
		r:    r,
		name: DefaultCookieName,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Save persists the bundle, overwriting any prior one. The cookie
// lifetime is capped at the refresh token expiry, after which the
// browser drops it on its own.
func (s *CookieStore) Save(bundle TokenBundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("[CookieStore.Save] failed to marshal bundle: %w", err)
	}

	http.SetCookie(s.w, &http.Cookie{
		Name:     s.name,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		Expires:  bundle.RefreshTokenExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	s.cached = &bundle
	s.deleted = false
	return nil
}

// Load returns the current bundle or nil when absent. Malformed or
// partial cookie data is deleted and reported as absent rather than
// surfaced as an error.
func (s *CookieStore) Load() *TokenBundle {
	if s.deleted {
		return nil
	}
	if s.cached != nil {
		return s.cached
	}

	cookie, err := s.r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		log.Warn().Str("cookie", s.name).Msg("session cookie is not valid base64, discarding")
		s.Delete()
		return nil
	}

	var bundle TokenBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		log.Warn().Str("cookie", s.name).Msg("session cookie holds malformed JSON, discarding")
		s.Delete()
		return nil
	}

	if !bundle.complete() {
		log.Warn().Str("cookie", s.name).Msg("session cookie holds an incomplete bundle, discarding")
		s.Delete()
		return nil
	}

	s.cached = &bundle
	return s.cached
}

// Delete removes the persisted bundle unconditionally. Idempotent.
func (s *CookieStore) Delete() {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.cached = nil
	s.deleted = true
}
