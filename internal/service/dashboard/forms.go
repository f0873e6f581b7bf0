package dashboard

import (
	"context"
	"fmt"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/modal"
	"github.com/heartmarshall/studybuddy/internal/service/resource"
)

// FormState is a display snapshot of a form.
type FormState struct {
	Phase     modal.Phase
	EditingID *int64
	Draft     any
}

// Form is the create/edit dialog of a panel together with the collection it
// mutates.
type Form interface {
	OpenCreate() error
	OpenEdit(id int64) error
	Set(field, value string) error
	SetFile(u *domain.Upload) error
	Submit(ctx context.Context) error
	Cancel()
	Delete(ctx context.Context, id int64) error
	State() FormState
}

type settable[D any] interface {
	*D
	Set(field, value string) error
}

type fileSetter interface {
	SetFile(u *domain.Upload)
}

type form[T resource.Item, D any, PD settable[D]] struct {
	sync  *resource.Sync[T, D]
	modal *modal.Modal[D]
	seed  func(T) D
}

func newForm[T resource.Item, D any, PD settable[D]](s *resource.Sync[T, D], seed func(T) D) *form[T, D, PD] {
	return &form[T, D, PD]{sync: s, modal: modal.New[D](), seed: seed}
}

func (f *form[T, D, PD]) OpenCreate() error { return f.modal.OpenCreate() }

func (f *form[T, D, PD]) OpenEdit(id int64) error {
	if f.seed == nil {
		return fmt.Errorf("edit %s: %w", f.sync.Kind(), domain.ErrUnsupported)
	}
	item, ok := f.sync.Find(id)
	if !ok {
		return fmt.Errorf("edit %s %d: %w", f.sync.Kind(), id, domain.ErrNotFound)
	}
	return f.modal.OpenEdit(id, f.seed(item))
}

func (f *form[T, D, PD]) Set(field, value string) error {
	return f.modal.Update(func(d *D) error {
		return PD(d).Set(field, value)
	})
}

func (f *form[T, D, PD]) SetFile(u *domain.Upload) error {
	return f.modal.Update(func(d *D) error {
		fs, ok := any(d).(fileSetter)
		if !ok {
			return fmt.Errorf("%s form has no file: %w", f.sync.Kind(), domain.ErrUnsupported)
		}
		fs.SetFile(u)
		return nil
	})
}

func (f *form[T, D, PD]) Submit(ctx context.Context) error { return f.sync.Submit(ctx, f.modal) }

func (f *form[T, D, PD]) Cancel() { f.modal.Close() }

func (f *form[T, D, PD]) Delete(ctx context.Context, id int64) error { return f.sync.Remove(ctx, id) }

func (f *form[T, D, PD]) State() FormState {
	st := f.modal.State()
	return FormState{Phase: st.Phase, EditingID: st.EditingID, Draft: st.Draft}
}

// Form returns the form of a panel. The watch panel shares the notes form.
func (d *Dashboard) Form(key domain.PanelKey) (Form, bool) {
	switch key {
	case domain.PanelShare:
		return d.materialForm, true
	case domain.PanelMyNotes, domain.PanelWatch:
		return d.noteForm, true
	case domain.PanelTimetable:
		return d.eventForm, true
	case domain.PanelUsers:
		return d.userForm, true
	default:
		return nil, false
	}
}

func (d *Dashboard) closeForms() {
	d.materialForm.Cancel()
	d.noteForm.Cancel()
	d.eventForm.Cancel()
	d.userForm.Cancel()
}
