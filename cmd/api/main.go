package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/browser-calls/internal/api/http"
	"github.com/spec-kit/browser-calls/internal/api/http/handlers"
	"github.com/spec-kit/browser-calls/internal/auth"
	"github.com/spec-kit/browser-calls/internal/config"
	"github.com/spec-kit/browser-calls/internal/events"
	"github.com/spec-kit/browser-calls/internal/flash"
	"github.com/spec-kit/browser-calls/internal/observability"
	"github.com/spec-kit/browser-calls/internal/pages"
	"github.com/spec-kit/browser-calls/internal/persistence"
	"github.com/spec-kit/browser-calls/internal/repository"
	"github.com/spec-kit/browser-calls/internal/service"
	"github.com/spec-kit/browser-calls/internal/telephony"
	"github.com/spec-kit/browser-calls/internal/web"
	"github.com/spec-kit/browser-calls/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		ticketRepo repository.TicketRepository
		agentRepo  repository.AgentRepository
	)
	if pg.Enabled() {
		ticketRepo = repository.NewTicketRepository(pg.PoolHandle())
		agentRepo = repository.NewAgentRepository(pg.PoolHandle())
	} else {
		ticketRepo = repository.NewMemoryTicketRepository()
		agentRepo = repository.NewMemoryAgentRepository()
	}

	var flashes flash.Store
	if redis.Enabled() {
		flashes = flash.NewRedisStore(redis.Client, flash.DefaultTTL)
	} else {
		flashes = flash.NewMemoryStore(flash.DefaultTTL)
	}

	registry := pages.Default()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService, logger)

	ticketService := service.NewTicketService(ticketRepo, dispatcher, logger)
	callService := service.NewCallService(cfg.Twilio, registry, dispatcher, logger)
	authService := service.NewAuthService(cfg.Auth, agentRepo, dispatcher, logger)

	if cfg.Auth.HasBootstrapAgent() {
		agent, created, err := authService.EnsureAgent(ctx, cfg.Auth.BootstrapAgentName, cfg.Auth.BootstrapAgentEmail, cfg.Auth.BootstrapAgentPassword)
		if err != nil {
			logger.Fatal("failed to ensure bootstrap agent", zap.Error(err))
		}
		if created {
			logger.Info("bootstrap agent created", zap.String("agent_id", agent.ID), zap.String("email", agent.Email))
		}
	}

	missing := cfg.Twilio.MissingKeys()
	if len(missing) > 0 {
		logger.Warn("telephony configuration incomplete; token and call routes will fail",
			zap.String("missing", strings.Join(missing, ",")))
	}

	views := web.NewViews()
	if err := views.Load(); err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	session := auth.NewSessionMiddleware(authService.TokenManager(), agentRepo, logger, cfg.App.SecureCookies)

	routes := httptransport.RouteConfig{
		Pages:     registry,
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, missing),
		Intake:    handlers.NewIntakeHandler(ticketService, flashes, registry, logger),
		Dashboard: handlers.NewDashboardHandler(ticketService, registry),
		Auth:      handlers.NewAuthHandler(authService, session, registry),
		Telephony: handlers.NewTelephonyHandler(callService),
		Session:   session,
	}
	if cfg.App.CSRFEnabled {
		routes.CSRF = httptransport.CSRFProtection(cfg.App.SecureCookies)
	}
	if cfg.Twilio.ValidateWebhooks {
		verifier := telephony.NewWebhookVerifier(cfg.Twilio.AuthToken)
		routes.CallbackGuard = httptransport.RequireTwilioSignature(verifier, cfg.App.PublicBaseURL, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		Views:                 views,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
