package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/browser-calls/internal/domain"
	"github.com/spec-kit/browser-calls/internal/persistence"
)

// postgresPool connects to TEST_POSTGRES_DSN with a migrated, empty schema.
func postgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, "../../migrations", zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE support_tickets, agents`)
	require.NoError(t, err)
	return pool
}

func TestTicketRepository_Postgres(t *testing.T) {
	pool := postgresPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()

	var created []*domain.SupportTicket
	for _, name := range []string{"first", "second", "third"} {
		ticket := &domain.SupportTicket{Name: name, PhoneNumber: "5551234567", Description: "d"}
		require.NoError(t, repo.Create(ctx, ticket))
		assert.NotEmpty(t, ticket.ID)
		assert.False(t, ticket.Timestamp.IsZero())
		created = append(created, ticket)
	}

	list, err := repo.ListNewestFirst(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{list[0].Name, list[1].Name, list[2].Name})
	assert.Equal(t, created[2].ID, list[0].ID)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i-1].Timestamp.Before(list[i].Timestamp))
	}
}

func TestTicketRepository_PostgresTiesNewestInsertFirst(t *testing.T) {
	pool := postgresPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()

	stamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, name := range []string{"older insert", "newer insert"} {
		_, err := pool.Exec(ctx,
			`INSERT INTO support_tickets (id, name, phone_number, description, created_at)
			 VALUES (gen_random_uuid(), $1, '5551234567', 'd', $2)`, name, stamp)
		require.NoError(t, err)
	}

	list, err := repo.ListNewestFirst(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer insert", list[0].Name)
}

func TestAgentRepository_Postgres(t *testing.T) {
	pool := postgresPool(t)
	repo := NewAgentRepository(pool)
	ctx := context.Background()

	agent := &domain.Agent{Name: "Alice", Email: "Alice@Example.com", PasswordHash: "x", Active: true}
	require.NoError(t, repo.Create(ctx, agent))

	found, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, found.ID)
	assert.True(t, found.Active)

	assert.Error(t, repo.Create(ctx, &domain.Agent{Name: "Dup", Email: "ALICE@example.com", PasswordHash: "x"}))
}

func TestTicketRepository_PostgresTimestampsAdvanceWithinTransaction(t *testing.T) {
	pool := postgresPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	var stamps [2]time.Time
	for i := range stamps {
		require.NoError(t, tx.QueryRow(ctx,
			`INSERT INTO support_tickets (id, name, phone_number, description)
			 VALUES (gen_random_uuid(), 'n', '5551234567', 'd') RETURNING created_at`).Scan(&stamps[i]))
	}
	require.NoError(t, tx.Commit(ctx))

	assert.True(t, stamps[1].After(stamps[0]), "created_at must be taken per row, got %v then %v", stamps[0], stamps[1])
}
