package session

import "time"

// RefreshMargin is the lead time subtracted from the literal access
// token expiry so a refresh happens before the backend would start
// rejecting the token.
const RefreshMargin = 60 * time.Second

// AccessExpired reports whether the access token is due for refresh at
// the given time. The check includes RefreshMargin, so it turns true
// shortly before the token literally expires.
func (b TokenBundle) AccessExpired(now time.Time) bool {
	return !now.Before(b.ExpiresAt.Add(-RefreshMargin))
}

// AccessExpiredStrict reports whether the access token is past its
// literal expiry, without the refresh margin. The admission gate uses
// this form: it cannot refresh mid-request, so a token inside the
// margin is still good enough to admit.
func (b TokenBundle) AccessExpiredStrict(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// RefreshExpired reports whether the refresh token itself has expired.
// Once true the session is terminal and the user must log in again.
func (b TokenBundle) RefreshExpired(now time.Time) bool {
	return !now.Before(b.RefreshTokenExpiresAt)
}

// AdmittedAt reports whether the bundle admits its holder to the
// dashboard at the given time: admin role and an access token that is
// not strictly expired.
func (b TokenBundle) AdmittedAt(now time.Time) bool {
	return b.UserRole == RoleAdmin && !b.AccessExpiredStrict(now)
}
