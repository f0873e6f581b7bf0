// Package session holds the authenticated identity of the running client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

type persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

// Store is the single writer of the current session. Readers call Current or
// Token at the moment they need the identity, never caching it.
type Store struct {
	persist persister
	now     func() time.Time
	log     *slog.Logger

	mu      sync.RWMutex
	current *domain.Session
	epoch   uint64
}

// NewStore creates a Store with no session. Call Restore to load the
// persisted one.
func NewStore(logger *slog.Logger, persist persister) *Store {
	return &Store{
		persist: persist,
		now:     time.Now,
		log:     logger.With("service", "session"),
	}
}

// Restore loads the persisted session. Absent, malformed, incomplete or
// expired data yields (zero, false) and evicts the stored copy; it is never an
// error for the caller.
func (s *Store) Restore(ctx context.Context) (domain.Session, bool) {
	data, err := s.persist.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Session{}, false
	}
	if err != nil {
		s.log.WarnContext(ctx, "session load failed", slog.String("error", err.Error()))
		return domain.Session{}, false
	}

	sess, reason := s.decode(data)
	if reason != "" {
		s.log.InfoContext(ctx, "discarding persisted session", slog.String("reason", reason))
		if err := s.persist.Delete(ctx); err != nil {
			s.log.WarnContext(ctx, "evict persisted session", slog.String("error", err.Error()))
		}
		return domain.Session{}, false
	}

	s.mu.Lock()
	s.current = &sess
	s.epoch++
	s.mu.Unlock()

	s.log.InfoContext(ctx, "session restored", slog.Int64("user_id", sess.ID), slog.String("role", sess.Role.String()))
	return sess, true
}

func (s *Store) decode(data []byte) (domain.Session, string) {
	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domain.Session{}, "malformed"
	}
	if !sess.IsValid() {
		return domain.Session{}, "incomplete"
	}
	if exp, ok := tokenExpiry(sess.Token); ok && !exp.After(s.now()) {
		return domain.Session{}, "expired"
	}
	return sess, ""
}

// tokenExpiry reads the exp claim of a JWT access token. The client holds no
// key, so the signature is not checked; opaque tokens report ok=false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Set replaces the current session and persists it.
func (s *Store) Set(ctx context.Context, sess domain.Session) error {
	if !sess.IsValid() {
		return domain.NewValidationError("session", "token and role are required")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.epoch++
	s.mu.Unlock()

	if err := s.persist.Save(ctx, data); err != nil {
		return fmt.Errorf("session: persist: %w", err)
	}

	s.log.InfoContext(ctx, "session set", slog.Int64("user_id", sess.ID), slog.String("role", sess.Role.String()))
	return nil
}

// Clear destroys the current session and evicts the persisted copy.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.epoch++
	s.mu.Unlock()

	if err := s.persist.Delete(ctx); err != nil {
		return fmt.Errorf("session: evict: %w", err)
	}
	s.log.InfoContext(ctx, "session cleared")
	return nil
}

// Current returns the active session, if any.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Session{}, false
	}
	return *s.current, true
}

// Require returns the active session or domain.ErrNoSession.
func (s *Store) Require() (domain.Session, error) {
	sess, ok := s.Current()
	if !ok {
		return domain.Session{}, domain.ErrNoSession
	}
	return sess, nil
}

// Token returns the bearer token of the active session, or "".
func (s *Store) Token() string {
	sess, _ := s.Current()
	return sess.Token
}

// Epoch changes every time the identity changes (set, restore, clear).
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}
