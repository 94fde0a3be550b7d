package server

import "net/http"

func (s *Server) initRoutes() {
	gate := s.RequireAdmin()

	// Public routes
	s.RegisterRouteHandler("GET "+RouteLoginPage, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLoginPage, ChainMiddleware(s.LoginSubmitHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAPILogin, ChainMiddleware(s.LoginAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIRefresh, ChainMiddleware(s.RefreshAPIHandler(), s.APIMiddleware()...))

	// Logout clears the session regardless of its validity, so it runs ungated
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAPILogout, ChainMiddleware(s.LogoutAPIHandler(), s.APIMiddleware()...))

	// Gated pages
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(gate)...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.PageHandler("Dashboard"), s.HTMLMiddleWare(gate)...))
	s.RegisterRouteHandler("GET "+RouteDocuments, ChainMiddleware(s.PageHandler("Documents"), s.HTMLMiddleWare(gate)...))
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.PageHandler("Users"), s.HTMLMiddleWare(gate)...))
	s.RegisterRouteHandler("GET "+RouteSettings, ChainMiddleware(s.PageHandler("Settings"), s.HTMLMiddleWare(gate)...))

	// Gated document proxies
	s.RegisterRouteHandler("GET "+RouteAPIDocuments, ChainMiddleware(s.DocumentsListHandler(), s.APIMiddleware(gate)...))
	s.RegisterRouteHandler("POST "+RouteAPIDocuments, ChainMiddleware(s.DocumentUploadHandler(), s.APIMiddleware(gate)...))
	s.RegisterRouteHandler("DELETE "+RouteAPIDocumentByID, ChainMiddleware(s.DocumentDeleteHandler(), s.APIMiddleware(gate)...))
	s.RegisterRouteHandler("GET "+RouteAPIDocumentStatus, ChainMiddleware(s.DocumentStatusHandler(), s.APIMiddleware(gate)...))
}

var _ http.Handler = (*Server)(nil)
