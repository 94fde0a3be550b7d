package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

// The dashboard's real front end lives elsewhere; these templates are
// the minimal server-rendered shell around the gated routes.
const loginPageTemplate = `<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - Sign in</title></head>
<body>
  <h1>Sign in</h1>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  <form method="post" action="/auth/login">
    <input type="hidden" name="redirect" value="{{.Redirect}}">
    <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
    <label>Password <input type="password" name="password" required></label>
    <label>Tenant <input type="text" name="tenant_slug" required></label>
    <button type="submit">Sign in</button>
  </form>
</body>
</html>`

const pageTemplate = `<!DOCTYPE html>
<html>
<head><title>{{.AppName}} - {{.Title}}</title></head>
<body>
  <header>
    <strong>{{.AppName}}</strong>
    {{if .TenantName}}<span>{{.TenantName}}</span>{{end}}
    <a href="/auth/logout">Sign out</a>
  </header>
  <nav>
    <a href="/dashboard">Dashboard</a>
    <a href="/documents">Documents</a>
    <a href="/users">Users</a>
    <a href="/settings">Settings</a>
  </nav>
  <main><h1>{{.Title}}</h1></main>
</body>
</html>`

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName  string
	Error    string
	Email    string // Preserve email on error
	Redirect string
}

// PageData contains data for rendering a dashboard page shell
type PageData struct {
	AppName    string
	Title      string
	TenantName string
}

// LoginPageHandler displays the login page (GET /auth/login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := template.Must(template.New("login").Parse(loginPageTemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		data := LoginPageData{
			AppName:  s.config.GetAppName(),
			Error:    r.URL.Query().Get("error"),
			Email:    r.URL.Query().Get("email"),
			Redirect: safeRedirectTarget(r.URL.Query().Get("redirect")),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("failed to render login page")
		}
	}
}

// IndexHandler redirects the root path to the dashboard
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteDashboard, http.StatusSeeOther)
	}
}

// PageHandler renders the shell for a gated dashboard page
func (s *Server) PageHandler(title string) http.HandlerFunc {
	pageTmpl := template.Must(template.New("page").Parse(pageTemplate))

	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{
			AppName: s.config.GetAppName(),
			Title:   title,
		}
		if bundle := sessionFromContext(r.Context()); bundle != nil {
			data.TenantName = bundle.TenantName
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pageTmpl.Execute(w, data); err != nil {
			log.Err(err).Str("page", title).Msg("failed to render page")
		}
	}
}
