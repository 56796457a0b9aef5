package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/browser-calls/internal/domain"
)

// TicketRepository encapsulates ticket persistence. Tickets are append-only.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	ListNewestFirst(ctx context.Context) ([]domain.SupportTicket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates a Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        INSERT INTO support_tickets (id, name, phone_number, description)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Name,
		ticket.PhoneNumber,
		ticket.Description,
	).Scan(&ticket.Timestamp)
}

func (r *ticketRepository) ListNewestFirst(ctx context.Context) ([]domain.SupportTicket, error) {
	const query = `
        SELECT id, name, phone_number, description, created_at
        FROM support_tickets
        ORDER BY created_at DESC, seq DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.SupportTicket, error) {
	result := []domain.SupportTicket{}
	for rows.Next() {
		var ticket domain.SupportTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Name,
			&ticket.PhoneNumber,
			&ticket.Description,
			&ticket.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
