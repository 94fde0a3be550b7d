package server

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	errs "github.com/docuflow/admin-gateway/internal/errors"
)

// DocumentsListHandler proxies GET /api/documents to the backend,
// sorted newest first.
func (s *Server) DocumentsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodGet, "/api/documents/?sort=-created_at", nil, "")
	}
}

// DocumentUploadHandler proxies POST /api/documents (multipart upload)
// to the backend, streaming the body through unchanged.
func (s *Server) DocumentUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodPost, "/api/documents/", r.Body, r.Header.Get("Content-Type"))
	}
}

// DocumentDeleteHandler proxies DELETE /api/documents/{documentID}.
func (s *Server) DocumentDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodDelete, "/api/documents/"+r.PathValue("documentID"), nil, "")
	}
}

// DocumentStatusHandler proxies GET /api/documents/{documentID}/status,
// polled by the dashboard while processing runs.
func (s *Server) DocumentStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.forward(w, r, http.MethodGet, "/api/documents/"+r.PathValue("documentID")+"/status", nil, "")
	}
}

// forward relays a request to the backend through the authenticated
// proxy client: bearer and tenant headers are attached by the transport
// stack, which also performs the single refresh-and-retry cycle on 401.
// The upstream status and body pass through to the caller; transport
// failures map to 401 (dead session) or 502 (backend unreachable).
func (s *Server) forward(w http.ResponseWriter, r *http.Request, method, backendPath string, body io.Reader, contentType string) {
	client := s.backend.ProxyClient(s.sessionStore(w, r), s.refresher)

	req, err := http.NewRequestWithContext(r.Context(), method, s.backend.BaseURL()+backendPath, body)
	if err != nil {
		log.Err(err).Str("path", backendPath).Msg("failed to build proxy request")
		writeJSONError(w, http.StatusInternalServerError, "proxy request failed")
		return
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		if errs.Is(err, errs.ErrNotAuthenticated) ||
			errs.Is(err, errs.ErrRefreshTokenExpired) ||
			errs.Is(err, errs.ErrRefreshFailed) {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		log.Err(err).Str("path", backendPath).Msg("backend request failed")
		writeJSONError(w, http.StatusBadGateway, "backend unavailable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("path", backendPath).
			Msg("backend returned error status")
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Err(err).Str("path", backendPath).Msg("failed to stream backend response")
	}
}
