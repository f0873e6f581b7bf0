package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/modal"
	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

type createValidator interface {
	ValidateCreate() error
}

// Create validates draft locally, sends it and refreshes the collection.
// An invalid draft never reaches the backend.
func (s *Sync[T, D]) Create(ctx context.Context, draft D) error {
	if s.creator == nil {
		return fmt.Errorf("resource %s: create: %w", s.kind, domain.ErrUnsupported)
	}
	if err := s.validate(ctx, draft, true); err != nil {
		return err
	}

	return s.mutate(ctx, "create", s.msgs.CreateFailed, s.msgs.Created, func(ctx context.Context) error {
		return s.creator.Create(ctx, draft)
	}, nil)
}

// Update validates draft locally, sends it for item id and refreshes the
// collection.
func (s *Sync[T, D]) Update(ctx context.Context, id int64, draft D) error {
	if s.updater == nil {
		return fmt.Errorf("resource %s: update: %w", s.kind, domain.ErrUnsupported)
	}
	if err := s.validate(ctx, draft, false); err != nil {
		return err
	}

	return s.mutate(ctx, "update", s.msgs.UpdateFailed, s.msgs.Updated, func(ctx context.Context) error {
		return s.updater.Update(ctx, id, draft)
	}, nil)
}

// Remove asks for confirmation, deletes item id, drops it from the published
// collection, runs the OnRemove hooks and refreshes. A declined confirmation
// returns domain.ErrDeclined without a request.
func (s *Sync[T, D]) Remove(ctx context.Context, id int64) error {
	if s.deleter == nil {
		return fmt.Errorf("resource %s: remove: %w", s.kind, domain.ErrUnsupported)
	}
	if s.confirm != nil && s.msgs.ConfirmDelete != "" && !s.confirm.Confirm(ctx, s.msgs.ConfirmDelete) {
		return domain.ErrDeclined
	}

	return s.mutate(ctx, "remove", s.msgs.DeleteFailed, s.msgs.Deleted, func(ctx context.Context) error {
		return s.deleter.Delete(ctx, id)
	}, func(ctx context.Context) {
		s.dropLocal(ctx, id)
	})
}

// Submit runs the submission of an open modal: Create when it has no
// editing target, Update otherwise. Success closes the modal; any failure,
// including local validation, leaves it open with the draft intact.
func (s *Sync[T, D]) Submit(ctx context.Context, m *modal.Modal[D]) error {
	sub, err := m.BeginSubmit()
	if err != nil {
		return err
	}

	if sub.EditingID == nil {
		err = s.Create(ctx, sub.Draft)
	} else {
		err = s.Update(ctx, *sub.EditingID, sub.Draft)
	}

	m.Finish(sub, err)
	return err
}

func (s *Sync[T, D]) validate(ctx context.Context, draft D, creating bool) error {
	err := domain.Validate(draft)
	if err == nil && creating {
		if cv, ok := any(draft).(createValidator); ok {
			err = cv.ValidateCreate()
		}
	}
	if err != nil {
		s.report(ctx, domain.NoticeError, s.msgs.Invalid, err)
		return err
	}
	return nil
}

// mutate serializes mutations of this kind, runs call and on success applies
// local, notifies and refreshes. A success that resolves after Invalidate
// still applies local but leaves the collection unloaded instead of
// refreshing; one that resolves after Reset is dropped.
func (s *Sync[T, D]) mutate(ctx context.Context, op, failMsg, okMsg string, call func(ctx context.Context) error, local func(ctx context.Context)) error {
	s.mu.Lock()
	if s.mutating {
		s.mu.Unlock()
		return fmt.Errorf("resource %s: %s: %w", s.kind, op, domain.ErrBusy)
	}
	s.mutating = true
	epoch, reset := s.epoch, s.reset
	s.mu.Unlock()

	ctx = ctxutil.WithOperation(ctx, s.kind+"."+op)

	defer func() {
		s.mu.Lock()
		s.mutating = false
		s.mu.Unlock()
	}()

	if err := call(ctx); err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return err
		}
		s.log.WarnContext(ctx, op+" failed", slog.String("error", err.Error()))
		s.report(ctx, domain.NoticeError, failMsg, err)
		return fmt.Errorf("resource %s: %s: %w", s.kind, op, err)
	}

	s.mu.Lock()
	switch {
	case s.reset != reset:
		s.mu.Unlock()
		s.log.DebugContext(ctx, "mutation resolved after reset", slog.String("op", op))
		return nil
	case s.epoch != epoch:
		// The server state changed under a left panel: apply what is known
		// and let the next load fetch the rest.
		s.loaded = false
		s.mu.Unlock()
		if local != nil {
			local(ctx)
		}
		s.report(ctx, domain.NoticeInfo, okMsg, nil)
		s.log.InfoContext(ctx, op+" succeeded after invalidation")
		return nil
	}
	s.mu.Unlock()

	if local != nil {
		local(ctx)
	}
	s.report(ctx, domain.NoticeInfo, okMsg, nil)
	s.log.InfoContext(ctx, op+" succeeded")

	// Refresh failures are reported by Refresh itself; the mutation stands.
	_ = s.Refresh(ctx)
	return nil
}

func (s *Sync[T, D]) dropLocal(ctx context.Context, id int64) {
	s.mu.Lock()
	kept := s.items[:0:0]
	for _, it := range s.items {
		if it.ItemID() != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	hooks := append([]func(context.Context, int64){}, s.onRemove...)
	snapshot, subs := s.publication()
	s.mu.Unlock()

	publish(subs, snapshot)
	for _, fn := range hooks {
		fn(ctx, id)
	}
}
