// Package redisstore persists the client session in Redis so several shells
// on one machine (or a kiosk fleet) share a login.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Store keeps the session blob under "<prefix>:<name>".
type Store struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    *slog.Logger
}

// New creates a Store. A zero ttl keeps the key until it is deleted.
func New(client *redis.Client, prefix, name string, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		client: client,
		key:    Key(prefix, name),
		ttl:    ttl,
		log:    logger.With("adapter", "redisstore"),
	}
}

// Key builds the Redis key of a stored session.
func Key(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + ":" + name
}

// Load returns the stored blob, or domain.ErrNotFound when the key is absent.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: get %s: %w", s.key, err)
	}
	return data, nil
}

// Save replaces the stored blob and refreshes its TTL.
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", s.key, err)
	}
	s.log.DebugContext(ctx, "session saved", slog.String("key", s.key), slog.Duration("ttl", s.ttl))
	return nil
}

// Delete removes the stored blob. A missing key is not an error.
func (s *Store) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redisstore: del %s: %w", s.key, err)
	}
	return nil
}

// Ping checks connectivity; the app calls it once at startup.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	return nil
}
