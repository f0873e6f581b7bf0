package dashboard

import (
	"context"
	"io"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// api is the remote service as seen by the dashboard.
type api interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Session, error)
	Register(ctx context.Context, reg domain.Registration) error

	ListUsers(ctx context.Context) ([]domain.AdminUser, error)
	CreateUser(ctx context.Context, d domain.UserDraft) error
	UpdateUser(ctx context.Context, id int64, d domain.UserDraft) error
	DeleteUser(ctx context.Context, id int64) error

	ListResources(ctx context.Context) ([]domain.Resource, error)

	ListMaterials(ctx context.Context, module string) ([]domain.Material, error)
	UploadMaterial(ctx context.Context, d domain.MaterialDraft) error
	DownloadMaterial(ctx context.Context, id int64) (io.ReadCloser, error)

	ListNotes(ctx context.Context, userID int64) ([]domain.Note, error)
	UploadNote(ctx context.Context, userID int64, d domain.NoteDraft) error
	DeleteNote(ctx context.Context, id int64) error
	DownloadNote(ctx context.Context, id int64) (io.ReadCloser, error)
	SuggestedVideos(ctx context.Context, noteID int64) ([]domain.SuggestedVideo, error)

	ListEvents(ctx context.Context, userID int64) ([]domain.TimetableEvent, error)
	CreateEvent(ctx context.Context, userID int64, d domain.EventDraft) error

	ScanHandwritten(ctx context.Context, img *domain.Image, email string) (domain.ScanResult, error)
	Ask(ctx context.Context, email, question string) (string, error)
}

// Notifier shows blocking notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notice)

func (f NotifierFunc) Notify(ctx context.Context, n domain.Notice) { f(ctx, n) }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// downloadSaver materializes a downloaded body as a named local file.
type downloadSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
