// Package dashboard is the orchestration core shared by the student and admin
// dashboards. One Dashboard serves both roles; the variant chosen at login
// decides which panels are mounted.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/capture"
	"github.com/heartmarshall/studybuddy/internal/service/chat"
	"github.com/heartmarshall/studybuddy/internal/service/navigation"
	"github.com/heartmarshall/studybuddy/internal/service/resource"
	"github.com/heartmarshall/studybuddy/internal/service/scan"
	"github.com/heartmarshall/studybuddy/internal/service/session"
	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

// Deps are the collaborators of a Dashboard.
type Deps struct {
	API       api
	Session   *session.Store
	Camera    capture.Camera
	Downloads downloadSaver
	Notifier  Notifier
	Confirmer Confirmer
	// IdentityHint is sent with scan and chat requests when the session
	// carries no email.
	IdentityHint string
}

// Dashboard owns every component of the client.
type Dashboard struct {
	api       api
	session   *session.Store
	downloads downloadSaver
	notify    Notifier
	hint      string
	log       *slog.Logger

	Nav       *navigation.Controller
	Materials *resource.Sync[domain.Material, domain.MaterialDraft]
	Notes     *resource.Sync[domain.Note, domain.NoteDraft]
	Events    *resource.Sync[domain.TimetableEvent, domain.EventDraft]
	Users     *resource.Sync[domain.AdminUser, domain.UserDraft]
	Resources *resource.Sync[domain.Resource, struct{}]
	Videos    *Videos
	Capture   *capture.Controller
	Scan      *scan.Pipeline
	Chat      *chat.Session

	materials    *materialsBackend
	materialForm *form[domain.Material, domain.MaterialDraft, *domain.MaterialDraft]
	noteForm     *form[domain.Note, domain.NoteDraft, *domain.NoteDraft]
	eventForm    *form[domain.TimetableEvent, domain.EventDraft, *domain.EventDraft]
	userForm     *form[domain.AdminUser, domain.UserDraft, *domain.UserDraft]
}

// New wires a Dashboard. Nothing is fetched until Start or Login.
func New(logger *slog.Logger, deps Deps) *Dashboard {
	notify := deps.Notifier
	if notify == nil {
		notify = NotifierFunc(func(context.Context, domain.Notice) {})
	}

	d := &Dashboard{
		api:       deps.API,
		session:   deps.Session,
		downloads: deps.Downloads,
		notify:    notify,
		hint:      deps.IdentityHint,
		log:       logger.With("service", "dashboard"),
		Nav:       navigation.NewController(logger),
		materials: &materialsBackend{api: deps.API},
	}

	d.Materials = resource.NewSync[domain.Material, domain.MaterialDraft](logger, "materials", d.materials, resource.Messages{
		FetchFailed:  "Failed to fetch materials",
		Invalid:      "Please fill all fields and select a file",
		CreateFailed: "Failed to upload material",
		Created:      "Material uploaded successfully!",
	}, notify, deps.Confirmer)

	d.Notes = resource.NewSync[domain.Note, domain.NoteDraft](logger, "notes", &notesBackend{api: deps.API, session: deps.Session}, resource.Messages{
		FetchFailed:   "Failed to fetch notes",
		Invalid:       "Please fill note name and select a file",
		CreateFailed:  "Failed to upload note",
		Created:       "Note uploaded successfully!",
		ConfirmDelete: "Are you sure you want to delete this note?",
		DeleteFailed:  "Failed to delete note",
	}, notify, deps.Confirmer)

	d.Events = resource.NewSync[domain.TimetableEvent, domain.EventDraft](logger, "events", &eventsBackend{api: deps.API, session: deps.Session}, resource.Messages{
		FetchFailed:  "Failed to fetch timetable events",
		Invalid:      "Fill all fields",
		CreateFailed: "Failed to save event",
	}, notify, deps.Confirmer)

	d.Users = resource.NewSync[domain.AdminUser, domain.UserDraft](logger, "users", usersBackend{api: deps.API}, resource.Messages{
		FetchFailed:   "Failed to fetch users",
		Invalid:       "Please fill all fields",
		CreateFailed:  "Failed to save user",
		UpdateFailed:  "Failed to save user",
		ConfirmDelete: "Are you sure you want to delete this user?",
		DeleteFailed:  "Failed to delete user",
	}, notify, deps.Confirmer)

	d.Resources = resource.NewSync[domain.Resource, struct{}](logger, "resources", resourcesBackend{api: deps.API}, resource.Messages{
		FetchFailed: "Failed to fetch resources",
	}, notify, deps.Confirmer)

	d.Videos = NewVideos(logger, deps.API, notify)
	d.Notes.OnRemove(func(_ context.Context, id int64) { d.Videos.ClearFor(id) })

	d.Scan = scan.NewPipeline(logger, deps.API, notify)
	d.Capture = capture.NewController(logger, deps.Camera, d.Scan, notify)
	d.Chat = chat.NewSession(logger, deps.API)
	d.Nav.Subscribe(d.releaseCamera)

	d.materialForm = newForm[domain.Material, domain.MaterialDraft, *domain.MaterialDraft](d.Materials, nil)
	d.noteForm = newForm[domain.Note, domain.NoteDraft, *domain.NoteDraft](d.Notes, nil)
	d.eventForm = newForm[domain.TimetableEvent, domain.EventDraft, *domain.EventDraft](d.Events, nil)
	d.userForm = newForm[domain.AdminUser, domain.UserDraft, *domain.UserDraft](d.Users, domain.UserDraftFrom)

	return d
}

// Start restores the persisted session. A restored session goes straight to
// its dashboard; otherwise the shell shows the home route.
func (d *Dashboard) Start(ctx context.Context) {
	sess, ok := d.session.Restore(ctx)
	if !ok {
		d.Nav.Navigate(ctx, domain.RouteHome)
		return
	}
	d.enter(ctx, sess)
}

// GoTo moves to a route without panels. Dashboard routes are entered only
// through Login or Start.
func (d *Dashboard) GoTo(ctx context.Context, route domain.Route) {
	d.Nav.Navigate(ctx, route)
}

// Login authenticates, stores the session and mounts the role's dashboard.
// Logging in over an active session discards the previous user's state.
func (d *Dashboard) Login(ctx context.Context, creds domain.Credentials) error {
	if err := domain.Validate(creds); err != nil {
		d.notice(ctx, domain.NoticeError, "Enter email and password", err)
		return err
	}

	ctx = ctxutil.WithOperation(ctx, "auth.login")
	sess, err := d.api.Login(ctx, creds)
	if err != nil {
		d.log.WarnContext(ctx, "login failed", slog.String("error", err.Error()))
		d.notice(ctx, domain.NoticeError, detailOr(err, "Login failed"), err)
		return err
	}
	if sess.Email == "" {
		sess.Email = creds.Email
	}
	if _, ok := d.session.Current(); ok {
		// Nothing of the previous user survives into the new session.
		d.resetState(ctx)
	}
	if err := d.session.Set(ctx, sess); err != nil {
		d.notice(ctx, domain.NoticeError, "Login failed", err)
		return err
	}

	d.enter(ctx, sess)
	return nil
}

// Register creates an account and moves to the login route.
func (d *Dashboard) Register(ctx context.Context, reg domain.Registration) error {
	if err := domain.Validate(reg); err != nil {
		d.notice(ctx, domain.NoticeError, "Please fill in all fields", err)
		return err
	}
	ctx = ctxutil.WithOperation(ctx, "auth.register")
	if err := d.api.Register(ctx, reg); err != nil {
		d.log.WarnContext(ctx, "registration failed", slog.String("error", err.Error()))
		d.notice(ctx, domain.NoticeError, detailOr(err, "Registration failed"), err)
		return err
	}

	d.notice(ctx, domain.NoticeInfo, "Registration successful! You can now log in.", nil)
	d.Nav.Navigate(ctx, domain.RouteLogin)
	return nil
}

func (d *Dashboard) enter(ctx context.Context, sess domain.Session) {
	v := VariantFor(sess.Role)
	d.Nav.Configure(ctx, v.Route, d.panels(v), v.Default)

	// Failures are reported by each panel; unloaded panels retry on selection.
	if err := d.Nav.Mount(ctx); err != nil && !domain.IsQuiet(err) {
		d.log.DebugContext(ctx, "mount incomplete", slog.String("error", err.Error()))
	}
}

// Logout clears the session, discards every in-flight result and resets all
// client state before leaving the dashboard.
func (d *Dashboard) Logout(ctx context.Context) error {
	sess, _ := d.session.Current()
	v := VariantFor(sess.Role)

	err := d.session.Clear(ctx)
	d.resetState(ctx)

	d.Nav.Navigate(ctx, v.LogoutRoute)
	return err
}

// resetState releases the camera, discards every in-flight result and
// empties all per-user state.
func (d *Dashboard) resetState(ctx context.Context) {
	d.Capture.Stop(ctx)
	d.Scan.Reset()
	d.Chat.Reset()
	d.Videos.Clear()
	d.closeForms()
	d.materials.setModule("")
	d.Materials.Reset()
	d.Notes.Reset()
	d.Events.Reset()
	d.Users.Reset()
	d.Resources.Reset()
}

// Session returns the active session.
func (d *Dashboard) Session() (domain.Session, bool) { return d.session.Current() }

// IdentityHint is the email sent with scan and chat requests.
func (d *Dashboard) IdentityHint() string {
	if sess, ok := d.session.Current(); ok && sess.Email != "" {
		return sess.Email
	}
	return d.hint
}

// SetModuleFilter restricts the materials list to one module ("" for all)
// and reloads it.
func (d *Dashboard) SetModuleFilter(ctx context.Context, module string) error {
	d.materials.setModule(module)
	return d.Materials.Refresh(ctx)
}

// ModuleFilter returns the current materials filter.
func (d *Dashboard) ModuleFilter() string { return d.materials.Module() }

// SendChat sends one chat turn.
func (d *Dashboard) SendChat(ctx context.Context, text string) error {
	return d.Chat.Send(ctxutil.WithOperation(ctx, "chat.send"), d.IdentityHint(), text)
}

// StartCamera acquires the camera for the scan panel. The camera cannot be
// started from any other panel.
func (d *Dashboard) StartCamera(ctx context.Context) error {
	if d.Nav.Active() != domain.PanelScanNotes {
		return fmt.Errorf("camera: select the %s panel first: %w", domain.PanelScanNotes, domain.ErrInvalidState)
	}
	return d.Capture.Start(ctx)
}

// SubmitScan submits the pending image.
func (d *Dashboard) SubmitScan(ctx context.Context) (domain.ScanResult, error) {
	return d.Scan.Submit(ctxutil.WithOperation(ctx, "scan.submit"), d.IdentityHint())
}

// WatchVideos fetches suggestions for a note of the current user.
func (d *Dashboard) WatchVideos(ctx context.Context, noteID int64) error {
	if _, ok := d.Notes.Find(noteID); !ok {
		return domain.ErrNotFound
	}
	return d.Videos.Watch(ctxutil.WithOperation(ctx, "videos.watch"), noteID)
}

func (d *Dashboard) notice(ctx context.Context, level domain.NoticeLevel, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	d.notify.Notify(ctx, domain.Notice{Level: level, Message: msg, Err: err})
}
