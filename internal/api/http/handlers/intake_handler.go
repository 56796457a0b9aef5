package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/api/dto"
	"github.com/spec-kit/browser-calls/internal/flash"
	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/service"
	"github.com/spec-kit/browser-calls/internal/web"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

const (
	flashCookie = "flash"

	// TicketSubmittedMessage is shown once after a successful submission.
	TicketSubmittedMessage = "Your ticket was submitted! An agent will call you soon."
)

// IntakeHandler serves the home page ticket form.
type IntakeHandler struct {
	pageKit
	tickets *service.TicketService
	flashes flash.Store
	logger  *zap.Logger
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(tickets *service.TicketService, flashes flash.Store, registry *pages.Registry, logger *zap.Logger) *IntakeHandler {
	return &IntakeHandler{
		pageKit: newPageKit(registry),
		tickets: tickets,
		flashes: flashes,
		logger:  logger,
	}
}

// Show handles GET /.
func (h *IntakeHandler) Show(c *fiber.Ctx) error {
	page := web.IndexPage{Layout: h.layout(c), Errors: map[string]string{}}

	if id := c.Cookies(flashCookie); id != "" {
		msg, ok, err := h.flashes.Pop(c.UserContext(), id)
		if err != nil {
			h.logger.Warn("read flash message", zap.Error(err))
		} else if ok {
			page.Flash = msg
		}
		c.ClearCookie(flashCookie)
	}
	return h.render(c, fiber.StatusOK, web.PageIndex, page)
}

// Submit handles POST /.
func (h *IntakeHandler) Submit(c *fiber.Ctx) error {
	var req dto.TicketFormRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid form body")
	}

	_, err := h.tickets.SubmitTicket(c.UserContext(), service.TicketSubmission{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Description: req.Description,
	})
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeValidationFailed) {
			return err
		}
		page := web.IndexPage{
			Layout: h.layout(c),
			Form:   web.TicketForm{Name: req.Name, PhoneNumber: req.PhoneNumber, Description: req.Description},
			Errors: fieldErrors(err),
		}
		return h.render(c, fiber.StatusBadRequest, web.PageIndex, page)
	}

	id := uuid.NewString()
	if err := h.flashes.Put(c.UserContext(), id, TicketSubmittedMessage); err != nil {
		h.logger.Warn("store flash message", zap.Error(err))
	} else {
		c.Cookie(&fiber.Cookie{
			Name:     flashCookie,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(flash.DefaultTTL),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return c.Redirect(h.pages.MustPath(pages.Home), fiber.StatusFound)
}

func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	for field, msg := range apperrors.ToDomainError(err).Details {
		if s, ok := msg.(string); ok {
			out[field] = s
		}
	}
	return out
}
