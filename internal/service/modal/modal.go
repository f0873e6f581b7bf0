// Package modal implements the lifecycle of one form dialog:
// closed -> open -> submitting -> closed (success) or back to open (failure).
package modal

import (
	"fmt"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Phase is the tag of the modal state.
type Phase int

const (
	Closed Phase = iota
	Open
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of a Modal. Draft and EditingID are meaningful only
// when Phase is not Closed.
type State[D any] struct {
	Phase     Phase
	Draft     D
	EditingID *int64
}

// Editing reports whether the modal edits an existing item.
func (s State[D]) Editing() bool { return s.EditingID != nil }

// Submission is handed out by BeginSubmit and must be passed back to Finish.
type Submission[D any] struct {
	Draft     D
	EditingID *int64
	gen       uint64
}

// Modal holds one form dialog. The zero value is not usable; use New.
type Modal[D any] struct {
	mu      sync.Mutex
	phase   Phase
	draft   D
	editing *int64
	gen     uint64
}

func New[D any]() *Modal[D] {
	return &Modal[D]{}
}

// OpenCreate opens the modal with an empty draft.
func (m *Modal[D]) OpenCreate() error {
	var zero D
	return m.open(nil, zero)
}

// OpenEdit opens the modal for item id, seeding the draft from seed.
func (m *Modal[D]) OpenEdit(id int64, seed D) error {
	return m.open(&id, seed)
}

func (m *Modal[D]) open(editing *int64, seed D) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == Submitting {
		return domain.ErrBusy
	}
	m.phase = Open
	m.draft = seed
	m.editing = editing
	m.gen++
	return nil
}

// Update edits the draft in place. Only valid while open.
func (m *Modal[D]) Update(fn func(d *D) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != Open {
		return fmt.Errorf("modal is %s: %w", m.phase, domain.ErrInvalidState)
	}
	return fn(&m.draft)
}

// Close discards the draft. A submission in flight is orphaned: its Finish
// becomes a no-op.
func (m *Modal[D]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero D
	m.phase = Closed
	m.draft = zero
	m.editing = nil
	m.gen++
}

// BeginSubmit moves an open modal to submitting. A second call while
// submitting returns domain.ErrBusy and changes nothing.
func (m *Modal[D]) BeginSubmit() (Submission[D], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case Submitting:
		return Submission[D]{}, domain.ErrBusy
	case Closed:
		return Submission[D]{}, fmt.Errorf("modal is closed: %w", domain.ErrInvalidState)
	}

	m.phase = Submitting
	return Submission[D]{Draft: m.draft, EditingID: m.editing, gen: m.gen}, nil
}

// Finish resolves a submission: success closes the modal, failure reopens it
// with the draft intact. Submissions orphaned by Close or a reopen are
// ignored; Finish reports whether it applied.
func (m *Modal[D]) Finish(sub Submission[D], err error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub.gen != m.gen || m.phase != Submitting {
		return false
	}
	if err != nil {
		m.phase = Open
		return true
	}

	var zero D
	m.phase = Closed
	m.draft = zero
	m.editing = nil
	m.gen++
	return true
}

// State returns a snapshot.
func (m *Modal[D]) State() State[D] {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := State[D]{Phase: m.phase, Draft: m.draft}
	if m.editing != nil {
		id := *m.editing
		st.EditingID = &id
	}
	return st
}

// Phase returns the current phase.
func (m *Modal[D]) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}
