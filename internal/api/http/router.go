package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"

	"github.com/spec-kit/browser-calls/internal/api/http/handlers"
	"github.com/spec-kit/browser-calls/internal/auth"
	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/web"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Pages     *pages.Registry
	Health    *handlers.HealthHandler
	Intake    *handlers.IntakeHandler
	Dashboard *handlers.DashboardHandler
	Auth      *handlers.AuthHandler
	Telephony *handlers.TelephonyHandler
	Session   *auth.SessionMiddleware

	// CSRF guards browser pages; nil disables it.
	CSRF fiber.Handler
	// CallbackGuard checks provider signatures on /call; nil disables it.
	CallbackGuard fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	p := cfg.Pages

	app.Get(p.MustPath(pages.HealthLive), cfg.Health.Live)
	app.Get(p.MustPath(pages.HealthReady), cfg.Health.Ready)

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))

	browser := []fiber.Handler{cfg.Session.Handle}
	if cfg.CSRF != nil {
		browser = append(browser, cfg.CSRF)
	}
	with := func(h ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, browser...), h...)
	}

	app.Get(p.MustPath(pages.Home), with(cfg.Intake.Show)...)
	app.Post(p.MustPath(pages.Home), with(cfg.Intake.Submit)...)
	app.Get(p.MustPath(pages.Dashboard), with(auth.RequireAgent(p.MustPath(pages.Login)), cfg.Dashboard.Show)...)
	app.Get(p.MustPath(pages.Login), with(cfg.Auth.ShowLogin)...)
	app.Post(p.MustPath(pages.Login), with(cfg.Auth.Login)...)
	app.Post(p.MustPath(pages.Logout), with(cfg.Auth.Logout)...)

	app.Get(p.MustPath(pages.Token), cfg.Session.Handle, cfg.Telephony.Token)

	call := []fiber.Handler{}
	if cfg.CallbackGuard != nil {
		call = append(call, cfg.CallbackGuard)
	}
	app.Post(p.MustPath(pages.Call), append(call, cfg.Telephony.Call)...)
}
