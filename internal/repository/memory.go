package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/browser-calls/internal/domain"
)

// ErrDuplicateEmail is returned when an agent email is already taken.
var ErrDuplicateEmail = errors.New("agent email already registered")

// MemoryTicketRepository keeps tickets in process memory. Used when no Postgres DSN is configured.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets []domain.SupportTicket
	now     func() time.Time
}

// NewMemoryTicketRepository creates an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{now: time.Now}
}

// WithClock replaces the time source. Intended for tests.
func (r *MemoryTicketRepository) WithClock(now func() time.Time) *MemoryTicketRepository {
	r.now = now
	return r
}

func (r *MemoryTicketRepository) Create(_ context.Context, ticket *domain.SupportTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := r.now().UTC()
	// timestamps never go backwards even if the wall clock does
	if n := len(r.tickets); n > 0 && ts.Before(r.tickets[n-1].Timestamp) {
		ts = r.tickets[n-1].Timestamp
	}
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	ticket.Timestamp = ts
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *MemoryTicketRepository) ListNewestFirst(_ context.Context) ([]domain.SupportTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.SupportTicket, 0, len(r.tickets))
	for i := len(r.tickets) - 1; i >= 0; i-- {
		result = append(result, r.tickets[i])
	}
	return result, nil
}

// MemoryAgentRepository keeps agents in process memory.
type MemoryAgentRepository struct {
	mu     sync.RWMutex
	agents map[string]domain.Agent
}

// NewMemoryAgentRepository creates an empty store.
func NewMemoryAgentRepository() *MemoryAgentRepository {
	return &MemoryAgentRepository{agents: make(map[string]domain.Agent)}
}

func (r *MemoryAgentRepository) Create(_ context.Context, agent *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.agents {
		if strings.EqualFold(existing.Email, agent.Email) {
			return ErrDuplicateEmail
		}
	}
	if agent.ID == "" {
		agent.ID = uuid.NewString()
	}
	agent.CreatedAt = time.Now().UTC()
	r.agents[agent.ID] = *agent
	return nil
}

func (r *MemoryAgentRepository) GetByID(_ context.Context, id string) (*domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

func (r *MemoryAgentRepository) GetByEmail(_ context.Context, email string) (*domain.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, agent := range r.agents {
		if strings.EqualFold(agent.Email, email) {
			found := agent
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}
