package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/auth"
	"github.com/spec-kit/browser-calls/internal/config"
	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/events"
	"github.com/spec-kit/browser-calls/internal/repository"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// AuthService authenticates support agents.
type AuthService struct {
	agents     repository.AgentRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, agents repository.AgentRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		agents:     agents,
		tokenMgr:   auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL()),
		bcryptCost: cfg.BcryptCost,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Agent, string, time.Time, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	agent, err := s.agents.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewAuthenticationRequired("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	if !agent.Active {
		return nil, "", time.Time{}, apperrors.NewAuthenticationRequired("agent inactive")
	}
	if err := auth.ComparePassword(agent.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewAuthenticationRequired("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(agent.ID, agent.Name)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventAgentLoggedIn,
			Payload: events.AgentLoggedInPayload{AgentID: agent.ID},
		}); err != nil {
			s.logger.Warn("event handler failed", zap.Error(err))
		}
	}
	return agent, token, exp, nil
}

// EnsureAgent creates an active agent unless one with the same email exists.
func (s *AuthService) EnsureAgent(ctx context.Context, name, email, password string) (*domain.Agent, bool, error) {
	existing, err := s.agents.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, false, err
	}
	agent := &domain.Agent{
		Name:         name,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, false, err
	}
	return agent, true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
