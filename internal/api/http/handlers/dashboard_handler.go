package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/service"
	"github.com/spec-kit/browser-calls/internal/web"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// DashboardHandler shows submitted tickets to agents.
type DashboardHandler struct {
	pageKit
	tickets *service.TicketService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(tickets *service.TicketService, registry *pages.Registry) *DashboardHandler {
	return &DashboardHandler{pageKit: newPageKit(registry), tickets: tickets}
}

// Show handles GET /dashboard.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListTickets(c.UserContext(), currentAgent(c))
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeAuthenticationRequired) {
			login := h.pages.MustPath(pages.Login) + "?next=" + url.QueryEscape(c.OriginalURL())
			return c.Redirect(login, fiber.StatusFound)
		}
		return err
	}
	return h.render(c, fiber.StatusOK, web.PageDashboard, web.DashboardPage{
		Layout:  h.layout(c),
		Tickets: tickets,
	})
}
