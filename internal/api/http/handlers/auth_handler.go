package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/browser-calls/internal/api/dto"
	"github.com/spec-kit/browser-calls/internal/auth"
	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/service"
	"github.com/spec-kit/browser-calls/internal/web"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// AuthHandler exposes the agent login and logout pages.
type AuthHandler struct {
	pageKit
	auth    *service.AuthService
	session *auth.SessionMiddleware
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, session *auth.SessionMiddleware, registry *pages.Registry) *AuthHandler {
	return &AuthHandler{pageKit: newPageKit(registry), auth: authService, session: session}
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	next := h.safeNext(c.Query("next"))
	if currentAgent(c) != nil {
		return c.Redirect(next, fiber.StatusFound)
	}
	return h.render(c, fiber.StatusOK, web.PageLogin, web.LoginPage{Layout: h.layout(c), Next: next})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginFormRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid form body")
	}
	next := h.safeNext(req.Next)

	_, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeAuthenticationRequired) || apperrors.HasCode(err, apperrors.CodeValidationFailed) {
			return h.render(c, fiber.StatusUnauthorized, web.PageLogin, web.LoginPage{
				Layout: h.layout(c),
				Email:  req.Email,
				Next:   next,
				Error:  "Please enter a correct email and password.",
			})
		}
		return err
	}

	h.session.SetCookie(c, token, exp)
	return c.Redirect(next, fiber.StatusFound)
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.session.ClearCookie(c)
	return c.Redirect(h.pages.MustPath(pages.Home), fiber.StatusFound)
}

// safeNext keeps post-login redirects on this site.
func (h *AuthHandler) safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return h.pages.MustPath(pages.Dashboard)
	}
	return next
}
