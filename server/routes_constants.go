package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Page Routes
	RouteLoginPage = "/auth/login"
	RouteLogout    = "/auth/logout"
	RouteDashboard = "/dashboard"
	RouteDocuments = "/documents"
	RouteUsers     = "/users"
	RouteSettings  = "/settings"

	// Auth API Routes
	RouteAPILogin   = "/api/auth/tenant/token"
	RouteAPIRefresh = "/api/auth/refresh"
	RouteAPILogout  = "/api/auth/logout"

	// Proxied API Routes
	RouteAPIDocuments      = "/api/documents"
	RouteAPIDocumentByID   = "/api/documents/{documentID}"
	RouteAPIDocumentStatus = "/api/documents/{documentID}/status"
)
