// Package web holds the browser page templates and the call widget assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"

	"github.com/spec-kit/browser-calls/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names, relative to the templates directory without extension.
const (
	LayoutBase    = "base"
	PageIndex     = "index"
	PageDashboard = "dashboard"
	PageLogin     = "login"
)

// Layout is shared by every page.
type Layout struct {
	Agent     *domain.Agent
	CSRFToken string
	Paths     map[string]string
}

// TicketForm echoes intake values back to the visitor.
type TicketForm struct {
	Name        string
	PhoneNumber string
	Description string
}

// IndexPage is the intake form with the customer call widget.
type IndexPage struct {
	Layout
	Flash  string
	Form   TicketForm
	Errors map[string]string
}

// DashboardPage lists tickets for a signed-in agent.
type DashboardPage struct {
	Layout
	Tickets []domain.SupportTicket
}

// LoginPage is the agent sign-in form.
type LoginPage struct {
	Layout
	Email string
	Next  string
	Error string
}

// NewViews returns the fiber view engine over the embedded templates. Pages render
// inside LayoutBase through {{embed}}.
func NewViews() *html.Engine {
	engine := html.NewFileSystem(http.FS(mustSub(templateFS, "templates")), ".html")
	engine.AddFunc("path", func(paths map[string]string, name string) string {
		return paths[name]
	})
	return engine
}

// Static returns the call widget assets rooted at the static directory.
func Static() fs.FS {
	return mustSub(staticFS, "static")
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
