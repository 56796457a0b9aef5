package auth

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/repository"
)

const (
	principalKey = "auth_principal"

	// SessionCookie carries the signed agent session token.
	SessionCookie = "session"
)

// Principal represents the authenticated agent.
type Principal struct {
	Agent *domain.Agent
}

// SessionMiddleware resolves the session cookie into a Principal. It never rejects a request:
// a missing, expired or forged cookie leaves the caller anonymous.
type SessionMiddleware struct {
	tokens *TokenManager
	agents repository.AgentRepository
	logger *zap.Logger
	secure bool
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager, agents repository.AgentRepository, logger *zap.Logger, secureCookies bool) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, agents: agents, logger: logger, secure: secureCookies}
}

// Handle attaches the principal, if any, to the request.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	raw := c.Cookies(SessionCookie)
	if raw == "" {
		return c.Next()
	}

	claims, err := m.tokens.ParseToken(raw)
	if err != nil {
		m.ClearCookie(c)
		return c.Next()
	}

	agent, err := m.agents.GetByID(c.UserContext(), claims.Subject)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			m.logger.Error("load session agent", zap.String("agent_id", claims.Subject), zap.Error(err))
		}
		m.ClearCookie(c)
		return c.Next()
	}
	if !agent.Active {
		m.ClearCookie(c)
		return c.Next()
	}

	c.Locals(principalKey, &Principal{Agent: agent})
	return c.Next()
}

// SetCookie stores a freshly issued session token.
func (m *SessionMiddleware) SetCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *SessionMiddleware) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PrincipalFromContext retrieves the authenticated agent.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil && principal.Agent != nil
}

// RequireAgent redirects anonymous callers to loginPath, remembering where they were going.
func RequireAgent(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); ok {
			return c.Next()
		}
		return c.Redirect(loginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
	}
}
