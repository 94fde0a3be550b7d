package backend_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docuflow/admin-gateway/backend"
	"github.com/docuflow/admin-gateway/refresh"
	"github.com/docuflow/admin-gateway/session"
	"github.com/docuflow/admin-gateway/session/storefakes"
)

var proxyNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// proxyBackend is a scripted backend: it records every document request
// and serves the refresh endpoint with a rotated token.
type proxyBackend struct {
	url string

	refreshCalls     int
	documentRequests []*http.Request
	documentBodies   []string

	// rejectTokens holds access tokens that get a 401.
	rejectTokens map[string]bool
}

func (b *proxyBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls++
		rotated := tokenResponse()
		rotated.AccessToken = "access-new"
		rotated.RefreshToken = "refresh-new"
		json.NewEncoder(w).Encode(rotated)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid token"}`))
	})
	mux.HandleFunc("/api/documents/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.documentRequests = append(b.documentRequests, r.Clone(r.Context()))
		b.documentBodies = append(b.documentBodies, string(body))

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if b.rejectTokens[token] {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		w.Write([]byte(`{"items":[]}`))
	})
	return mux
}

func newProxyFixture(t *testing.T, reject ...string) (*proxyBackend, *storefakes.FakeStore, *http.Client) {
	t.Helper()

	previous := refresh.NowTimeFunc
	refresh.NowTimeFunc = func() time.Time { return proxyNow }
	t.Cleanup(func() { refresh.NowTimeFunc = previous })

	scripted := &proxyBackend{rejectTokens: map[string]bool{}}
	for _, token := range reject {
		scripted.rejectTokens[token] = true
	}

	srv := httptest.NewServer(scripted.handler())
	t.Cleanup(srv.Close)
	scripted.url = srv.URL

	client, err := backend.NewClient(srv.URL)
	require.NoError(t, err)

	current := tokenResponse()
	current.AccessToken = "access-old"
	current.RefreshToken = "refresh-old"
	store := storefakes.NewFakeStoreWith(session.NewBundle(current, proxyNow))

	proxy := client.ProxyClient(store, refresh.NewCoordinator(client))
	return scripted, store, proxy
}

func doGet(t *testing.T, proxy *http.Client, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := proxy.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestProxyAttachesAuthAndTenantHeaders(t *testing.T) {
	scripted, _, proxy := newProxyFixture(t)

	resp := doGet(t, proxy, scripted.url+"/api/documents/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, scripted.documentRequests, 1)
	sent := scripted.documentRequests[0]
	require.Equal(t, "Bearer access-old", sent.Header.Get("Authorization"))
	require.Equal(t, "7", sent.Header.Get(backend.HeaderTenantID))
	require.Zero(t, scripted.refreshCalls)
}

func TestProxyRefreshesAndRetriesOnceOn401(t *testing.T) {
	scripted, store, proxy := newProxyFixture(t, "access-old")

	resp := doGet(t, proxy, scripted.url+"/api/documents/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, 1, scripted.refreshCalls)
	require.Len(t, scripted.documentRequests, 2)
	require.Equal(t, "Bearer access-old", scripted.documentRequests[0].Header.Get("Authorization"))
	require.Equal(t, "Bearer access-new", scripted.documentRequests[1].Header.Get("Authorization"))

	persisted := store.Load()
	require.NotNil(t, persisted)
	require.Equal(t, "refresh-new", persisted.RefreshToken)
}

func TestProxyReplaysRequestBodyOnRetry(t *testing.T) {
	scripted, _, proxy := newProxyFixture(t, "access-old")

	req, err := http.NewRequest(http.MethodPost, scripted.url+"/api/documents/", strings.NewReader("file-contents"))
	require.NoError(t, err)
	resp, err := proxy.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, scripted.documentBodies, 2)
	require.Equal(t, "file-contents", scripted.documentBodies[0])
	require.Equal(t, "file-contents", scripted.documentBodies[1])
}

func TestProxyGivesUpAfterSecond401(t *testing.T) {
	scripted, store, proxy := newProxyFixture(t, "access-old", "access-new")

	resp := doGet(t, proxy, scripted.url+"/api/documents/")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.Equal(t, 1, scripted.refreshCalls, "only one refresh-and-retry cycle")
	require.Len(t, scripted.documentRequests, 2)
	require.Nil(t, store.Load(), "a 401 with a fresh token ends the session")
}

func TestProxyDoesNotRetryAuthEndpoints(t *testing.T) {
	scripted, _, proxy := newProxyFixture(t)

	req, err := http.NewRequest(http.MethodPost, scripted.url+"/api/auth/logout", nil)
	require.NoError(t, err)
	resp, err := proxy.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, scripted.refreshCalls)
}
