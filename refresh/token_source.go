package refresh

import (
	"context"

	"golang.org/x/oauth2"

	errs "github.com/docuflow/admin-gateway/internal/errors"
	"github.com/docuflow/admin-gateway/session"
)

// TokenSource yields a usable access token for outbound backend calls,
// refreshing proactively when the stored token is inside the refresh
// margin. It implements oauth2.TokenSource so the bearer header can be
// attached by oauth2.Transport, the same way the rest of our tooling
// authenticates HTTP clients.
type TokenSource struct {
	store       session.Store
	coordinator *Coordinator
}

var _ oauth2.TokenSource = (*TokenSource)(nil)

// NewTokenSource creates a TokenSource over the given store and coordinator.
func NewTokenSource(store session.Store, coordinator *Coordinator) *TokenSource {
	return &TokenSource{store: store, coordinator: coordinator}
}

// Token returns the current access token, refreshing it first when it
// is due. A missing bundle or an expired refresh token is terminal:
// the caller has no session to act with.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	bundle := ts.store.Load()
	if bundle == nil {
		return nil, errs.ErrNotAuthenticated
	}

	now := NowTimeFunc()
	if bundle.RefreshExpired(now) {
		ts.store.Delete()
		return nil, errs.ErrRefreshTokenExpired
	}

	if bundle.AccessExpired(now) {
		refreshed, err := ts.coordinator.Refresh(context.Background(), ts.store, *bundle)
		if err != nil {
			return nil, err
		}
		bundle = &refreshed
	}

	return &oauth2.Token{
		AccessToken: bundle.AccessToken,
		TokenType:   bundle.TokenType,
		Expiry:      bundle.ExpiresAt,
	}, nil
}
