package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/repository"
)

func newSessionApp(t *testing.T) (*fiber.App, *TokenManager, *repository.MemoryAgentRepository) {
	t.Helper()
	tokens := NewTokenManager("secret", time.Hour)
	agents := repository.NewMemoryAgentRepository()
	session := NewSessionMiddleware(tokens, agents, zap.NewNop(), false)

	app := fiber.New()
	app.Use(session.Handle)
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if p, ok := PrincipalFromContext(c); ok {
			return c.SendString(p.Agent.Email)
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", RequireAgent("/login"), func(c *fiber.Ctx) error {
		return c.SendString("secret")
	})
	return app, tokens, agents
}

func whoami(t *testing.T, app *fiber.App, target string, cookie *http.Cookie) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestSessionMiddleware(t *testing.T) {
	app, tokens, agents := newSessionApp(t)
	active := &domain.Agent{Name: "Alice", Email: "alice@example.com", Active: true}
	inactive := &domain.Agent{Name: "Bob", Email: "bob@example.com", Active: false}
	require.NoError(t, agents.Create(context.Background(), active))
	require.NoError(t, agents.Create(context.Background(), inactive))

	activeToken, _, err := tokens.GenerateToken(active.ID, active.Name)
	require.NoError(t, err)
	inactiveToken, _, err := tokens.GenerateToken(inactive.ID, inactive.Name)
	require.NoError(t, err)
	orphanToken, _, err := tokens.GenerateToken("missing", "Ghost")
	require.NoError(t, err)

	_, body := whoami(t, app, "/whoami", nil)
	assert.Equal(t, "anonymous", body)

	_, body = whoami(t, app, "/whoami", &http.Cookie{Name: SessionCookie, Value: activeToken})
	assert.Equal(t, "alice@example.com", body)

	for _, token := range []string{inactiveToken, orphanToken, "forged"} {
		resp, body := whoami(t, app, "/whoami", &http.Cookie{Name: SessionCookie, Value: token})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "anonymous", body)
	}
}

func TestRequireAgent(t *testing.T) {
	app, tokens, agents := newSessionApp(t)
	agent := &domain.Agent{Name: "Alice", Email: "alice@example.com", Active: true}
	require.NoError(t, agents.Create(context.Background(), agent))

	resp, _ := whoami(t, app, "/private?tab=1", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fprivate%3Ftab%3D1", resp.Header.Get("Location"))

	token, _, err := tokens.GenerateToken(agent.ID, agent.Name)
	require.NoError(t, err)
	resp, body := whoami(t, app, "/private", &http.Cookie{Name: SessionCookie, Value: token})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "secret", body)
}
