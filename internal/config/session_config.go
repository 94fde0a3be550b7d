package config

const (
	sessionCookieVar  = "SESSION_COOKIE_NAME"
	defaultCookieName = "session"
)

type SessionConfig interface {
	GetSessionCookieName() string
	GetSecureCookies() bool
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv(sessionCookieVar, defaultCookieName)
}

// GetSecureCookies reports whether session cookies should carry the
// Secure flag. Only disabled for local development over plain HTTP.
func (Session) GetSecureCookies() bool {
	return GetEnv(environmentVar, defaultEnv) == "PROD"
}
