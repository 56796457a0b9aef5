package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/config"
	"github.com/spec-kit/browser-calls/internal/events"
)

// EventTypeHeader names the event carried by a webhook delivery.
const EventTypeHeader = "X-Browser-Calls-Event"

// NotificationService logs domain events and forwards ticket and call events to the
// configured webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketSubmitted, n.handleTicketSubmitted)
	n.dispatcher.Subscribe(events.EventCapabilityIssued, n.handleCapabilityIssued)
	n.dispatcher.Subscribe(events.EventCallRouted, n.handleCallRouted)
	n.dispatcher.Subscribe(events.EventAgentLoggedIn, n.handleAgentLoggedIn)
}

func (n *NotificationService) handleTicketSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketSubmitted", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return n.deliverWebhook(ctx, event)
}

func (n *NotificationService) handleCapabilityIssued(_ context.Context, event events.Event) error {
	n.logger.Debug("CapabilityIssued", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleCallRouted(ctx context.Context, event events.Event) error {
	n.logger.Info("CallRouted", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return n.deliverWebhook(ctx, event)
}

func (n *NotificationService) handleAgentLoggedIn(_ context.Context, event events.Event) error {
	n.logger.Info("AgentLoggedIn", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

// deliverWebhook POSTs the event as JSON. Any non-2xx answer is a failed delivery.
func (n *NotificationService) deliverWebhook(_ context.Context, event events.Event) error {
	if n.cfg.WebhookURL == "" {
		return nil
	}

	agent := fiber.Post(n.cfg.WebhookURL).
		JSON(event).
		Set(EventTypeHeader, string(event.Type)).
		Timeout(n.cfg.WebhookTimeout())

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("deliver %s webhook: %w", event.Type, errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		if len(body) > 256 {
			body = body[:256]
		}
		return fmt.Errorf("deliver %s webhook: status %d: %s", event.Type, status, body)
	}

	n.logger.Debug("webhook delivered", zap.String("event_id", event.ID), zap.Int("status", status))
	return nil
}
