// Package flash stores one-time messages shown on the next page load.
package flash

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an unread message is kept.
const DefaultTTL = 10 * time.Minute

// Store keeps messages keyed by an opaque id carried in a cookie.
type Store interface {
	Put(ctx context.Context, id, message string) error
	// Pop returns the message for id and removes it.
	Pop(ctx context.Context, id string) (string, bool, error)
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a Store backed by Redis keys with an expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Put(ctx context.Context, id, message string) error {
	return s.client.Set(ctx, key(id), message, s.ttl).Err()
}

func (s *redisStore) Pop(ctx context.Context, id string) (string, bool, error) {
	msg, err := s.client.GetDel(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return msg, true, nil
}

func key(id string) string {
	return "flash:" + id
}

type memoryEntry struct {
	message   string
	expiresAt time.Time
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[id] = memoryEntry{message: message, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", false, nil
	}
	delete(s.entries, id)
	if s.now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.message, true, nil
}
