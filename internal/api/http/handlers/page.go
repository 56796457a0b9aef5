package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/browser-calls/internal/auth"
	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/web"
)

// CSRFContextKey is where the csrf middleware leaves the token for templates.
const CSRFContextKey = "csrf"

// pageKit bundles what every HTML handler needs.
type pageKit struct {
	pages *pages.Registry
	paths map[string]string
}

func newPageKit(registry *pages.Registry) pageKit {
	paths := map[string]string{}
	for _, name := range registry.Names() {
		paths[name] = registry.MustPath(name)
	}
	return pageKit{pages: registry, paths: paths}
}

func (k pageKit) layout(c *fiber.Ctx) web.Layout {
	l := web.Layout{Paths: k.paths, Agent: currentAgent(c)}
	if token, ok := c.Locals(CSRFContextKey).(string); ok {
		l.CSRFToken = token
	}
	return l
}

func (k pageKit) render(c *fiber.Ctx, status int, page string, data any) error {
	return c.Status(status).Render(page, data, web.LayoutBase)
}

func currentAgent(c *fiber.Ctx) *domain.Agent {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.Agent
}
