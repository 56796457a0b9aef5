package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/events"
	"github.com/spec-kit/browser-calls/internal/repository"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

// FieldRequired is the per-field message for a blank required input.
const FieldRequired = "This field is required."

// TicketService coordinates ticket intake and listing.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketSubmission describes the intake form fields.
type TicketSubmission struct {
	Name        string
	PhoneNumber string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher, logger: logger}
}

// Validate returns a ValidationError naming every blank field.
func (in TicketSubmission) Validate() error {
	details := map[string]any{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = FieldRequired
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		details["phone_number"] = FieldRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		details["description"] = FieldRequired
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("ticket is incomplete", details)
	}
	return nil
}

// SubmitTicket validates and stores one new ticket.
func (s *TicketService) SubmitTicket(ctx context.Context, in TicketSubmission) (*domain.SupportTicket, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ticket := &domain.SupportTicket{
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketSubmitted,
		Payload: events.TicketSubmittedPayload{
			TicketID:    ticket.ID,
			Name:        ticket.Name,
			PhoneNumber: ticket.PhoneNumber,
		},
	})
	return ticket, nil
}

// ListTickets returns every ticket, newest first. agent must be an authenticated agent.
func (s *TicketService) ListTickets(ctx context.Context, agent *domain.Agent) ([]domain.SupportTicket, error) {
	if agent == nil || !agent.Active {
		return nil, apperrors.NewAuthenticationRequired("agent login required")
	}
	tickets, err := s.tickets.ListNewestFirst(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
