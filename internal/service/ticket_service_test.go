package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/events"
	"github.com/spec-kit/browser-calls/internal/repository"
	apperrors "github.com/spec-kit/browser-calls/pkg/util"
)

var activeAgent = &domain.Agent{ID: "agent-1", Name: "Ada", Email: "ada@example.com", Active: true}

func newTicketService(t *testing.T) (*TicketService, events.Dispatcher) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher()
	return NewTicketService(repository.NewMemoryTicketRepository(), dispatcher, zap.NewNop()), dispatcher
}

func TestTicketService_SubmitAppendsOneRecord(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()

	submissions := []TicketSubmission{
		{Name: "Alice", PhoneNumber: "+15551110000", Description: "Router is down"},
		{Name: "Bob", PhoneNumber: "555 222", Description: "Billing question"},
		{Name: "Carol", PhoneNumber: "n/a", Description: "Call me back"},
	}

	for i, in := range submissions {
		before, err := svc.ListTickets(ctx, activeAgent)
		require.NoError(t, err)

		ticket, err := svc.SubmitTicket(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, ticket.ID)

		after, err := svc.ListTickets(ctx, activeAgent)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1, "submission %d", i)
		assert.Equal(t, ticket.ID, after[0].ID)
		if len(before) > 0 {
			assert.False(t, after[0].Timestamp.Before(before[0].Timestamp))
		}
	}
}

func TestTicketService_ListNewestFirst(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	repo := repository.NewMemoryTicketRepository().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	svc := NewTicketService(repo, nil, zap.NewNop())
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.SubmitTicket(ctx, TicketSubmission{Name: name, PhoneNumber: "1", Description: "d"})
		require.NoError(t, err)
	}

	tickets, err := svc.ListTickets(ctx, activeAgent)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, "third", tickets[0].Name)
	assert.Equal(t, "second", tickets[1].Name)
	assert.Equal(t, "first", tickets[2].Name)
	assert.True(t, tickets[0].Timestamp.After(tickets[1].Timestamp))
}

func TestTicketService_SubmitValidation(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()

	_, err := svc.SubmitTicket(ctx, TicketSubmission{Name: "  ", PhoneNumber: "", Description: "ok"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, FieldRequired, details["name"])
	assert.Equal(t, FieldRequired, details["phone_number"])
	assert.NotContains(t, details, "description")

	tickets, err := svc.ListTickets(ctx, activeAgent)
	require.NoError(t, err)
	assert.Empty(t, tickets)
}

func TestTicketService_SubmitTrimsAndPublishes(t *testing.T) {
	svc, dispatcher := newTicketService(t)

	var published []events.TicketSubmittedPayload
	dispatcher.Subscribe(events.EventTicketSubmitted, func(_ context.Context, e events.Event) error {
		published = append(published, e.Payload.(events.TicketSubmittedPayload))
		return nil
	})

	ticket, err := svc.SubmitTicket(context.Background(), TicketSubmission{
		Name: " Dana ", PhoneNumber: " +1555 ", Description: " help ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dana", ticket.Name)
	assert.Equal(t, "+1555", ticket.PhoneNumber)
	assert.Equal(t, "help", ticket.Description)

	require.Len(t, published, 1)
	assert.Equal(t, ticket.ID, published[0].TicketID)
}

func TestTicketService_ListRequiresAgent(t *testing.T) {
	svc, _ := newTicketService(t)
	ctx := context.Background()
	_, err := svc.SubmitTicket(ctx, TicketSubmission{Name: "a", PhoneNumber: "b", Description: "c"})
	require.NoError(t, err)

	tickets, err := svc.ListTickets(ctx, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthenticationRequired))
	assert.Empty(t, tickets)

	inactive := &domain.Agent{ID: "x", Active: false}
	tickets, err = svc.ListTickets(ctx, inactive)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthenticationRequired))
	assert.Empty(t, tickets)
}
