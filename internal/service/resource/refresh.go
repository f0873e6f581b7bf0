package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

// Refresh fetches the whole collection and publishes it. On failure the
// previous collection stays published and a notice is reported. Results
// that resolve after Invalidate, or after a newer refresh was applied, are
// dropped with domain.ErrStale.
func (s *Sync[T, D]) Refresh(ctx context.Context) error {
	ctx = ctxutil.WithOperation(ctx, s.kind+".refresh")

	s.mu.Lock()
	epoch := s.epoch
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	items, err := s.lister.List(ctx)

	s.mu.Lock()
	if s.epoch != epoch || seq < s.applied {
		current := s.epoch
		s.mu.Unlock()
		s.log.DebugContext(ctx, "discarding stale refresh",
			slog.Uint64("epoch", epoch),
			slog.Uint64("current_epoch", current),
			slog.Uint64("seq", seq),
		)
		return domain.ErrStale
	}

	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, domain.ErrNoSession) {
			return err
		}
		s.log.WarnContext(ctx, "refresh failed", slog.String("error", err.Error()))
		s.report(ctx, domain.NoticeError, s.msgs.FetchFailed, err)
		return fmt.Errorf("resource %s: refresh: %w", s.kind, err)
	}

	if items == nil {
		items = []T{}
	}
	s.items = items
	s.loaded = true
	s.applied = seq
	snapshot, subs := s.publication()
	s.mu.Unlock()

	s.log.DebugContext(ctx, "collection refreshed", slog.Int("count", len(snapshot)))
	publish(subs, snapshot)
	return nil
}
