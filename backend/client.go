// Package backend is the HTTP client for the external API the gateway
// fronts: token issuance, token refresh, and the proxied document
// endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	errs "github.com/docuflow/admin-gateway/internal/errors"
	"github.com/docuflow/admin-gateway/refresh"
	"github.com/docuflow/admin-gateway/session"
)

const (
	// HeaderTenantID carries the tenant context on proxied requests.
	HeaderTenantID = "X-Tenant-ID"

	routeTenantToken = "/api/auth/tenant/token"
	routeRefresh     = "/api/auth/refresh"
)

// LoginRequest is the credential exchange payload.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	TenantSlug string `json:"tenant_slug"`
}

// RefreshRequest is the refresh exchange payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// APIError is a non-2xx backend response, with the "detail" message the
// backend includes in its error bodies when it has one.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Detail)
}

// Client talks to the backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (timeouts,
// transport, test doubles).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("[backend.NewClient] invalid base URL %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a token via POST /api/auth/tenant/token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*session.Token, error) {
	token, err := c.postToken(ctx, routeTenantToken, req)
	if err != nil {
		var apiErr *APIError
		if errs.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCredentials, apiErr.Detail)
			case http.StatusNotFound:
				return nil, fmt.Errorf("%w: %s", errs.ErrTenantNotFound, apiErr.Detail)
			}
		}
		return nil, fmt.Errorf("[Client.Login] %w", err)
	}
	return token, nil
}

// Refresh exchanges a refresh token for a new token via POST /api/auth/refresh.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*session.Token, error) {
	token, err := c.postToken(ctx, routeRefresh, RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		var apiErr *APIError
		if errs.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", errs.ErrRefreshTokenExpired, apiErr.Detail)
		}
		return nil, fmt.Errorf("[Client.Refresh] %w", err)
	}
	return token, nil
}

var _ refresh.TokenExchanger = (*Client)(nil)

func (c *Client) postToken(ctx context.Context, path string, body any) (*session.Token, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}

	var token session.Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

// decodeAPIError extracts the backend's {"detail": ...} error body.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}
