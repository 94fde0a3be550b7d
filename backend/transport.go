package backend

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/docuflow/admin-gateway/refresh"
	"github.com/docuflow/admin-gateway/session"
)

// ProxyClient builds an *http.Client for forwarding requests to the
// backend on behalf of the session held in store. The transport stack,
// outermost first:
//
//  1. retryTransport — one refresh-and-retry cycle on a 401
//  2. oauth2.Transport — attaches the bearer header from the token
//     source, refreshing proactively inside the margin
//  3. tenantTransport — attaches the X-Tenant-ID header
func (c *Client) ProxyClient(store session.Store, coordinator *refresh.Coordinator) *http.Client {
	source := refresh.NewTokenSource(store, coordinator)

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &retryTransport{
			store:       store,
			coordinator: coordinator,
			base: &oauth2.Transport{
				Source: source,
				Base:   &tenantTransport{store: store, base: base},
			},
		},
	}
}

// tenantTransport adds the tenant header from the current bundle.
type tenantTransport struct {
	store session.Store
	base  http.RoundTripper
}

func (t *tenantTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if bundle := t.store.Load(); bundle != nil && bundle.TenantID != 0 {
		req = req.Clone(req.Context())
		req.Header.Set(HeaderTenantID, strconv.FormatInt(bundle.TenantID, 10))
	}
	return t.base.RoundTrip(req)
}

// retryTransport performs at most one refresh-and-retry cycle when the
// backend answers 401. Requests to the auth endpoints are exempt: a 401
// there is a genuine credential rejection, not a staleness signal.
type retryTransport struct {
	store       session.Store
	coordinator *refresh.Coordinator
	base        http.RoundTripper
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Buffer the body up front so the request can be replayed once.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if isAuthPath(req.URL.Path) {
		return resp, nil
	}

	bundle := t.store.Load()
	if bundle == nil {
		return resp, nil
	}
	if _, err := t.coordinator.Refresh(req.Context(), t.store, *bundle); err != nil {
		// Refresh failed; the store is already cleared. Propagate the
		// original 401 to the caller.
		return resp, nil
	}

	resp.Body.Close()

	retried := req.Clone(req.Context())
	if body != nil {
		retried.Body = io.NopCloser(bytes.NewReader(body))
	}
	// The oauth2 transport re-reads the token source, which now holds
	// the refreshed access token.
	retryResp, err := t.base.RoundTrip(retried)
	if err == nil && retryResp.StatusCode == http.StatusUnauthorized {
		// A fresh token was rejected too. The session is unusable.
		t.store.Delete()
	}
	return retryResp, err
}

func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/api/auth/")
}
