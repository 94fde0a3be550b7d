// Package refresh exchanges an expiring token bundle for a fresh one
// against the backend, serializing concurrent attempts so a rotating
// refresh token is only ever presented once.
package refresh

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	errs "github.com/docuflow/admin-gateway/internal/errors"
	"github.com/docuflow/admin-gateway/session"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// TokenExchanger performs the refresh exchange against the backend.
type TokenExchanger interface {
	Refresh(ctx context.Context, refreshToken string) (*session.Token, error)
}

// Coordinator exchanges refresh tokens for new bundles. Concurrent
// calls holding the same refresh token share a single in-flight
// exchange; everyone gets the one result.
type Coordinator struct {
	exchanger TokenExchanger
	group     singleflight.Group
}

// NewCoordinator creates a Coordinator backed by the given exchanger.
func NewCoordinator(exchanger TokenExchanger) *Coordinator {
	return &Coordinator{exchanger: exchanger}
}

// Refresh exchanges the current bundle's refresh token for a new bundle
// and persists it through the caller's store. Callers are expected to
// have checked RefreshExpired already; the coordinator re-checks and
// fails closed. Any failure clears the store: a rejected refresh token
// is terminal for the session.
func (c *Coordinator) Refresh(ctx context.Context, store session.Store, current session.TokenBundle) (session.TokenBundle, error) {
	if current.RefreshToken == "" {
		store.Delete()
		return session.TokenBundle{}, errs.ErrNotAuthenticated
	}
	if current.RefreshExpired(NowTimeFunc()) {
		store.Delete()
		return session.TokenBundle{}, errs.ErrRefreshTokenExpired
	}

	// Deduplicate by refresh token: overlapping requests for the same
	// session await the one exchange instead of each issuing their own.
	result, err, _ := c.group.Do(current.RefreshToken, func() (interface{}, error) {
		token, err := c.exchanger.Refresh(ctx, current.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("[Coordinator.Refresh] token exchange: %w", err)
		}
		return session.NewBundle(*token, NowTimeFunc()), nil
	})
	if err != nil {
		store.Delete()
		return session.TokenBundle{}, fmt.Errorf("%w: %w", errs.ErrRefreshFailed, err)
	}

	bundle := result.(session.TokenBundle)
	if err := store.Save(bundle); err != nil {
		return session.TokenBundle{}, fmt.Errorf("[Coordinator.Refresh] persisting refreshed bundle: %w", err)
	}
	return bundle, nil
}
