package server_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docuflow/admin-gateway/refresh"
	"github.com/docuflow/admin-gateway/server"
	"github.com/docuflow/admin-gateway/session"
)

var serverNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// testConfig satisfies config.Config without touching the environment.
type testConfig struct {
	backendURL string
	secure     bool
}

func (c testConfig) GetPort() string              { return ":0" }
func (c testConfig) GetAppName() string           { return "Admin Gateway" }
func (c testConfig) GetBackendURL() string        { return c.backendURL }
func (c testConfig) GetBackendTimeout() string    { return "5s" }
func (c testConfig) GetEnv() string               { return "TEST" }
func (c testConfig) GetSessionCookieName() string { return "session" }
func (c testConfig) GetSecureCookies() bool       { return c.secure }

// newTestServer builds a gateway pinned to serverNow, in both the
// server clock and the refresh package clock.
func newTestServer(t *testing.T, backendURL string) *server.Server {
	t.Helper()

	previous := refresh.NowTimeFunc
	refresh.NowTimeFunc = func() time.Time { return serverNow }
	t.Cleanup(func() { refresh.NowTimeFunc = previous })

	s, err := server.New(
		testConfig{backendURL: backendURL},
		server.WithNowTime(func() time.Time { return serverNow }),
	)
	require.NoError(t, err)
	return s
}

func adminToken() session.Token {
	return session.Token{
		AccessToken:           "access-1",
		RefreshToken:          "refresh-1",
		TokenType:             "bearer",
		UserRole:              session.RoleAdmin,
		TenantID:              7,
		TenantName:            "Acme Corp",
		TenantSlug:            "acme",
		UserID:                42,
		ExpiresIn:             3600,
		RefreshTokenExpiresIn: 86400,
	}
}

// sessionCookie encodes a bundle the way the cookie store persists it.
func sessionCookie(t *testing.T, bundle session.TokenBundle) *http.Cookie {
	t.Helper()
	payload, err := json.Marshal(bundle)
	require.NoError(t, err)
	return &http.Cookie{
		Name:  "session",
		Value: base64.RawURLEncoding.EncodeToString(payload),
	}
}

func adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	return sessionCookie(t, session.NewBundle(adminToken(), serverNow))
}

// findCookie returns the named cookie from a response, or nil.
func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeJSONBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
