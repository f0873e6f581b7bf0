// Package resource keeps one server-backed collection in sync with the remote
// service and publishes it after every change.
package resource

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Item is an element of a synchronized collection.
type Item interface {
	ItemID() int64
}

// Lister fetches the whole collection. Every backend implements it.
type Lister[T Item] interface {
	List(ctx context.Context) ([]T, error)
}

// Creator, Updater and Deleter are optional backend capabilities. Calls on a
// Sync whose backend lacks one fail with domain.ErrUnsupported.
type Creator[D any] interface {
	Create(ctx context.Context, draft D) error
}

type Updater[D any] interface {
	Update(ctx context.Context, id int64, draft D) error
}

type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

type notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

type confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Messages are the user-facing texts of one resource kind. Empty messages
// are not shown.
type Messages struct {
	FetchFailed   string
	Invalid       string
	CreateFailed  string
	Created       string
	UpdateFailed  string
	Updated       string
	ConfirmDelete string
	DeleteFailed  string
	Deleted       string
}

// Sync owns the collection of one resource kind. It is the only writer of
// that collection; any number of readers may subscribe.
type Sync[T Item, D any] struct {
	kind    string
	lister  Lister[T]
	creator Creator[D]
	updater Updater[D]
	deleter Deleter
	msgs    Messages
	notify  notifier
	confirm confirmer
	log     *slog.Logger

	mu       sync.Mutex
	items    []T
	loaded   bool
	epoch    uint64
	reset    uint64
	seq      uint64
	applied  uint64
	mutating bool
	subs     map[int]func([]T)
	nextSub  int
	onRemove []func(ctx context.Context, id int64)
}

// NewSync creates a Sync for kind. backend must implement Lister[T] and may
// implement Creator[D], Updater[D] and Deleter.
func NewSync[T Item, D any](
	logger *slog.Logger,
	kind string,
	backend Lister[T],
	msgs Messages,
	notify notifier,
	confirm confirmer,
) *Sync[T, D] {
	s := &Sync[T, D]{
		kind:    kind,
		lister:  backend,
		msgs:    msgs,
		notify:  notify,
		confirm: confirm,
		log:     logger.With("service", "resource", "kind", kind),
		items:   []T{},
		subs:    make(map[int]func([]T)),
	}
	if c, ok := backend.(Creator[D]); ok {
		s.creator = c
	}
	if u, ok := backend.(Updater[D]); ok {
		s.updater = u
	}
	if d, ok := backend.(Deleter); ok {
		s.deleter = d
	}
	return s
}

// Kind returns the resource kind name.
func (s *Sync[T, D]) Kind() string { return s.kind }

// Items returns a copy of the published collection.
func (s *Sync[T, D]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Find returns the published item with the given id.
func (s *Sync[T, D]) Find(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ItemID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Loaded reports whether the published collection came from a refresh that
// is still current. A mutation that resolves after Invalidate clears it.
func (s *Sync[T, D]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Mutating reports whether a create, update or remove is in flight.
func (s *Sync[T, D]) Mutating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mutating
}

// Epoch returns the current epoch.
func (s *Sync[T, D]) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Subscribe registers fn to receive every published collection. The returned
// func unregisters it.
func (s *Sync[T, D]) Subscribe(fn func(items []T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// OnRemove registers a hook run after an item is removed, used to clear
// selections derived from it.
func (s *Sync[T, D]) OnRemove(fn func(ctx context.Context, id int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemove = append(s.onRemove, fn)
}

// Invalidate bumps the epoch so that every in-flight resolution is
// discarded. The published collection is kept.
func (s *Sync[T, D]) Invalidate() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

// Reset invalidates in-flight work and empties the collection.
func (s *Sync[T, D]) Reset() {
	s.mu.Lock()
	s.epoch++
	s.reset++
	s.items = []T{}
	s.loaded = false
	snapshot, subs := s.publication()
	s.mu.Unlock()

	publish(subs, snapshot)
}

// publication must be called with s.mu held.
func (s *Sync[T, D]) publication() ([]T, []func([]T)) {
	subs := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return slices.Clone(s.items), subs
}

func publish[T any](subs []func([]T), items []T) {
	for _, fn := range subs {
		fn(slices.Clone(items))
	}
}

func (s *Sync[T, D]) report(ctx context.Context, level domain.NoticeLevel, msg string, err error) {
	if msg == "" || s.notify == nil {
		return
	}
	s.notify.Notify(ctx, domain.Notice{Level: level, Message: msg, Err: err})
}
