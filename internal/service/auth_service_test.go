package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/config"
	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/repository"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryAgentRepository) {
	t.Helper()
	agents := repository.NewMemoryAgentRepository()
	cfg := config.AuthConfig{SessionSecret: "test-secret", SessionTTLMinutes: 10, BcryptCost: 4}
	return NewAuthService(cfg, agents, nil, zap.NewNop()), agents
}

func TestAuthService_EnsureAgentIsIdempotent(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	first, created, err := svc.EnsureAgent(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, first.Active)
	assert.NotEqual(t, "pw", first.PasswordHash)

	second, created, err := svc.EnsureAgent(ctx, "Ada", "ADA@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestAuthService_Login(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()
	agent, _, err := svc.EnsureAgent(ctx, "Ada", "ada@example.com", "correct horse")
	require.NoError(t, err)

	got, token, exp, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, got.ID)
	assert.False(t, exp.IsZero())

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, agents := newAuthService(t)
	ctx := context.Background()
	_, _, err := svc.EnsureAgent(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, agents.Create(ctx, &domain.Agent{Name: "Off", Email: "off@example.com", PasswordHash: "x", Active: false}))

	_, _, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthenticationRequired))

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "pw")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthenticationRequired))

	_, _, _, err = svc.Login(ctx, "off@example.com", "x")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthenticationRequired))

	_, _, _, err = svc.Login(ctx, "", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
