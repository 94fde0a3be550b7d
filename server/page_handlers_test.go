package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docuflow/admin-gateway/server"
)

func TestLoginPagePreservesQueryState(t *testing.T) {
	s := newTestServer(t, "http://localhost:9")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		server.RouteLoginPage+"?error=invalid+credentials&email=admin%40acme.test&redirect=%2Fdocuments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "invalid credentials")
	require.Contains(t, body, `value="admin@acme.test"`)
	require.Contains(t, body, `value="/documents"`)
}

func TestLoginPageSanitizesRedirect(t *testing.T) {
	s := newTestServer(t, "http://localhost:9")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		server.RouteLoginPage+"?redirect=%2F%2Fevil.example", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `value="`+server.RouteDashboard+`"`)
}

func TestIndexRedirectsToDashboard(t *testing.T) {
	s := newTestServer(t, "http://localhost:9")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(adminCookie(t))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, server.RouteDashboard, rec.Header().Get("Location"))
}

func TestPageRendersTenantName(t *testing.T) {
	s := newTestServer(t, "http://localhost:9")

	req := httptest.NewRequest(http.MethodGet, server.RouteDocuments, nil)
	req.AddCookie(adminCookie(t))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Acme Corp")
	require.Contains(t, rec.Body.String(), "Documents")
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}
