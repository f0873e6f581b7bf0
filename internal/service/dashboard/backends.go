package dashboard

import (
	"context"
	"strings"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/session"
)

// The backends adapt the remote api to resource.Sync capabilities. User
// scoped calls read the session when they run and fail with
// domain.ErrNoSession, without a request, once nobody is logged in.

type materialsBackend struct {
	api api

	mu     sync.Mutex
	module string
}

func (b *materialsBackend) setModule(module string) {
	b.mu.Lock()
	b.module = strings.TrimSpace(module)
	b.mu.Unlock()
}

func (b *materialsBackend) Module() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.module
}

func (b *materialsBackend) List(ctx context.Context) ([]domain.Material, error) {
	return b.api.ListMaterials(ctx, b.Module())
}

func (b *materialsBackend) Create(ctx context.Context, d domain.MaterialDraft) error {
	return b.api.UploadMaterial(ctx, d)
}

type notesBackend struct {
	api     api
	session *session.Store
}

func (b *notesBackend) List(ctx context.Context) ([]domain.Note, error) {
	sess, err := b.session.Require()
	if err != nil {
		return nil, err
	}
	return b.api.ListNotes(ctx, sess.ID)
}

func (b *notesBackend) Create(ctx context.Context, d domain.NoteDraft) error {
	sess, err := b.session.Require()
	if err != nil {
		return err
	}
	return b.api.UploadNote(ctx, sess.ID, d)
}

func (b *notesBackend) Delete(ctx context.Context, id int64) error {
	if _, err := b.session.Require(); err != nil {
		return err
	}
	return b.api.DeleteNote(ctx, id)
}

type eventsBackend struct {
	api     api
	session *session.Store
}

func (b *eventsBackend) List(ctx context.Context) ([]domain.TimetableEvent, error) {
	sess, err := b.session.Require()
	if err != nil {
		return nil, err
	}
	return b.api.ListEvents(ctx, sess.ID)
}

func (b *eventsBackend) Create(ctx context.Context, d domain.EventDraft) error {
	sess, err := b.session.Require()
	if err != nil {
		return err
	}
	return b.api.CreateEvent(ctx, sess.ID, d)
}

type usersBackend struct {
	api api
}

func (b usersBackend) List(ctx context.Context) ([]domain.AdminUser, error) {
	return b.api.ListUsers(ctx)
}

func (b usersBackend) Create(ctx context.Context, d domain.UserDraft) error {
	return b.api.CreateUser(ctx, d)
}

func (b usersBackend) Update(ctx context.Context, id int64, d domain.UserDraft) error {
	return b.api.UpdateUser(ctx, id, d)
}

func (b usersBackend) Delete(ctx context.Context, id int64) error {
	return b.api.DeleteUser(ctx, id)
}

type resourcesBackend struct {
	api api
}

func (b resourcesBackend) List(ctx context.Context) ([]domain.Resource, error) {
	return b.api.ListResources(ctx)
}
