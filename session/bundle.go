package session

import "time"

// Role is the user role carried in a token bundle. Only RoleAdmin is
// admitted to the dashboard.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

// Default lifetimes applied when the backend omits them from a token
// response. The omission itself is a contract anomaly and is logged by
// the caller before these kick in.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// Token is the wire shape returned by the backend token endpoints.
// Lifetimes are relative (seconds); they are converted to absolute
// timestamps exactly once, when the bundle is derived.
type Token struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	TokenType             string `json:"token_type"`
	UserRole              Role   `json:"user_role"`
	TenantID              int64  `json:"tenant_id,omitempty"`
	TenantName            string `json:"tenant_name,omitempty"`
	TenantSlug            string `json:"tenant_slug,omitempty"`
	UserID                int64  `json:"user_id"`
	ExpiresIn             int64  `json:"expires_in,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in,omitempty"`
}

// HasLifetimes reports whether the backend supplied both token lifetimes.
func (t Token) HasLifetimes() bool {
	return t.ExpiresIn > 0 && t.RefreshTokenExpiresIn > 0
}

// TokenBundle is the persisted session state: the wire token plus the
// absolute expiry timestamps derived at issuance. A bundle is replaced
// wholesale on every login and refresh, never patched.
type TokenBundle struct {
	Token
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// NewBundle derives a TokenBundle from a wire token at the given issue
// time. Missing lifetimes fall back to the documented defaults; callers
// should check Token.HasLifetimes first and log the anomaly.
func NewBundle(t Token, issuedAt time.Time) TokenBundle {
	accessTTL := time.Duration(t.ExpiresIn) * time.Second
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	refreshTTL := time.Duration(t.RefreshTokenExpiresIn) * time.Second
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}

	return TokenBundle{
		Token:                 t,
		ExpiresAt:             issuedAt.Add(accessTTL),
		RefreshTokenExpiresAt: issuedAt.Add(refreshTTL),
	}
}

// complete reports whether the bundle carries every field the gateway
// relies on. Anything less is treated as corrupt persisted state.
func (b TokenBundle) complete() bool {
	return b.AccessToken != "" &&
		b.RefreshToken != "" &&
		b.UserRole != "" &&
		!b.ExpiresAt.IsZero() &&
		!b.RefreshTokenExpiresAt.IsZero()
}
