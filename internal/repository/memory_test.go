package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/browser-calls/internal/domain"
)

func TestMemoryTicketRepository_NewestFirstWithTies(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryTicketRepository().WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &domain.SupportTicket{Name: name}))
	}

	list, err := repo.ListNewestFirst(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].Name, list[1].Name, list[2].Name})
	for _, ticket := range list {
		assert.NotEmpty(t, ticket.ID)
		assert.Equal(t, fixed, ticket.Timestamp)
	}
}

func TestMemoryTicketRepository_ClockNeverGoesBackwards(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
	}
	i := 0
	repo := NewMemoryTicketRepository().WithClock(func() time.Time {
		ts := times[i]
		i++
		return ts
	})
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.SupportTicket{Name: "first"}))
	require.NoError(t, repo.Create(ctx, &domain.SupportTicket{Name: "second"}))

	list, err := repo.ListNewestFirst(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", list[0].Name)
	assert.False(t, list[0].Timestamp.Before(list[1].Timestamp))
}

func TestMemoryTicketRepository_ConcurrentCreate(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &domain.SupportTicket{Name: "n"})
		}()
	}
	wg.Wait()

	list, err := repo.ListNewestFirst(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestMemoryAgentRepository(t *testing.T) {
	repo := NewMemoryAgentRepository()
	ctx := context.Background()

	agent := &domain.Agent{Name: "Alice", Email: "Alice@Example.com", Active: true}
	require.NoError(t, repo.Create(ctx, agent))
	require.NotEmpty(t, agent.ID)

	found, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, found.ID)

	found, err = repo.GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)

	err = repo.Create(ctx, &domain.Agent{Email: "ALICE@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
