package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/heartmarshall/studybuddy/internal/adapter/localfs"
	"github.com/heartmarshall/studybuddy/internal/adapter/studybuddy"
	"github.com/heartmarshall/studybuddy/internal/adapter/studybuddy/studybuddytest"
	"github.com/heartmarshall/studybuddy/internal/config"
	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/dashboard"
	"github.com/heartmarshall/studybuddy/internal/service/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		API: config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second, UserAgent: "studybuddy-test"},
		Session: config.SessionConfig{
			Backend:     config.SessionBackendFile,
			StorageName: "user",
			Dir:         filepath.Join(dir, "session"),
		},
		Scan:      config.ScanConfig{DefaultIdentityHint: "a@a.com"},
		Downloads: config.DownloadsConfig{Dir: filepath.Join(dir, "downloads")},
	}
}

func runScript(t *testing.T, cfg *config.Config, script string) string {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, discardLogger(), IO{In: strings.NewReader(script), Out: &out})
	if err != nil {
		t.Fatalf("run: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func TestRun_LoginWhoamiLogout(t *testing.T) {
	srv := studybuddytest.New(t)
	id := srv.AddAccount("a@a.com", "x", "student")
	srv.AddMaterial("Intro", "CS101")
	cfg := testConfig(t, srv.URL)

	out := runScript(t, cfg, "login a@a.com x\nwhoami\nlogout\nquit\n")

	for _, want := range []string{
		"> share",
		"Intro",
		"role=student email=a@a.com",
		"Log in with",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "id="+itoa(id)) {
		t.Errorf("output missing id %d:\n%s", id, out)
	}

	req, ok := srv.Last(http.MethodGet, "/student-resources/resources")
	if !ok {
		t.Fatal("materials were not fetched")
	}
	if req.Auth != "Bearer "+studybuddytest.Token {
		t.Errorf("Authorization = %q, want bearer token", req.Auth)
	}

	if _, err := os.Stat(filepath.Join(cfg.Session.Dir, "user.json")); !os.IsNotExist(err) {
		t.Errorf("session file should be removed after logout, stat err = %v", err)
	}
}

func TestRun_RestoresPersistedSession(t *testing.T) {
	srv := studybuddytest.New(t)
	srv.AddAccount("root@example.com", "pw", "admin")
	cfg := testConfig(t, srv.URL)

	runScript(t, cfg, "login root@example.com pw\nquit\n")
	out := runScript(t, cfg, "whoami\nquit\n")

	if !strings.Contains(out, "role=admin") {
		t.Errorf("session not restored:\n%s", out)
	}
	if !strings.Contains(out, "Welcome to the Admin Dashboard") {
		t.Errorf("admin dashboard not shown:\n%s", out)
	}
}

func TestRun_LoginFailureShowsDetail(t *testing.T) {
	srv := studybuddytest.New(t)
	cfg := testConfig(t, srv.URL)

	out := runScript(t, cfg, "login nobody@example.com wrong\nquit\n")

	if !strings.Contains(out, "! Invalid credentials") {
		t.Errorf("output missing server detail:\n%s", out)
	}
}

func TestRun_LogsOperationOfOutboundCalls(t *testing.T) {
	srv := studybuddytest.New(t)
	srv.AddAccount("a@a.com", "x", "student")
	cfg := testConfig(t, srv.URL)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	err := run(context.Background(), cfg, logger, IO{In: strings.NewReader("login a@a.com x\nquit\n"), Out: io.Discard})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, want := range []string{"operation=auth.login", "operation=materials.refresh", "operation=notes.refresh"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
}

func TestRun_EndOfInputStops(t *testing.T) {
	srv := studybuddytest.New(t)
	cfg := testConfig(t, srv.URL)

	out := runScript(t, cfg, "help\n")
	if !strings.Contains(out, "login <email> [password]") {
		t.Errorf("help output missing login usage:\n%s", out)
	}
}

// newTestShell wires a shell and dashboard against srv without the transport
// middleware.
func newTestShell(t *testing.T, srv *studybuddytest.Server, script string) (*Shell, *dashboard.Dashboard, *bytes.Buffer) {
	t.Helper()
	logger := discardLogger()
	var out bytes.Buffer
	sh := NewShell(strings.NewReader(script), &out, logger)
	dash := dashboard.New(logger, dashboard.Deps{
		API:          studybuddy.NewClient(srv.URL, nil, 5*time.Second, logger),
		Session:      session.NewStore(logger, localfs.NewSessionFile(t.TempDir(), "user", logger)),
		Downloads:    localfs.NewDownloads(t.TempDir(), logger),
		Notifier:     sh,
		Confirmer:    sh,
		IdentityHint: "a@a.com",
	})
	sh.dash = dash
	sh.commands = sh.commandTable()
	return sh, dash, &out
}

func TestShell_DeleteAsksForConfirmation(t *testing.T) {
	srv := studybuddytest.New(t)
	id := srv.AddAccount("ann@example.com", "pw", "student")
	noteID := srv.AddNote(id, "algebra")

	// The lines after each delete answer its confirmation prompt.
	sh, dash, out := newTestShell(t, srv, "n\ny\n")
	ctx := context.Background()

	if err := dash.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := sh.Exec(ctx, "panel myNotes"); err != nil {
		t.Fatalf("panel: %v", err)
	}

	_ = sh.Exec(ctx, "delete "+itoa(noteID))
	if n := srv.Count(http.MethodDelete, "/notes/"+itoa(noteID)); n != 0 {
		t.Fatalf("declined delete sent %d requests", n)
	}

	if err := sh.Exec(ctx, "delete "+itoa(noteID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(dash.Notes.Items()) != 0 {
		t.Errorf("notes = %v, want empty", dash.Notes.Items())
	}
	if !strings.Contains(out.String(), "Are you sure you want to delete this note? [y/N]") {
		t.Errorf("confirmation prompt not shown:\n%s", out.String())
	}
}

func TestShell_FormFlow(t *testing.T) {
	srv := studybuddytest.New(t)
	id := srv.AddAccount("ann@example.com", "pw", "student")

	sh, dash, out := newTestShell(t, srv, "")
	ctx := context.Background()
	if err := dash.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	path := filepath.Join(t.TempDir(), "week1.txt")
	if err := os.WriteFile(path, []byte("notes"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, line := range []string{
		"panel myNotes",
		"new",
		"set note_name week one",
		"file " + path,
		"submit",
	} {
		if err := sh.Exec(ctx, line); err != nil {
			t.Fatalf("%q: %v\n%s", line, err, out.String())
		}
	}

	req, ok := srv.Last(http.MethodPost, "/notes/")
	if !ok {
		t.Fatal("note was not uploaded")
	}
	if req.Form["note_name"] != "week one" || req.Form["user_id"] != itoa(id) {
		t.Errorf("form = %v", req.Form)
	}
	if string(req.Files["file"]) != "notes" {
		t.Errorf("file = %q", req.Files["file"])
	}
	if !strings.Contains(out.String(), "week one") {
		t.Errorf("uploaded note not rendered:\n%s", out.String())
	}
}

func TestShell_UsageAndUnknown(t *testing.T) {
	srv := studybuddytest.New(t)
	sh, _, out := newTestShell(t, srv, "")
	ctx := context.Background()

	_ = sh.Exec(ctx, "bogus")
	_ = sh.Exec(ctx, "video x")
	_ = sh.Exec(ctx, "panel share")

	got := out.String()
	if !strings.Contains(got, `unknown command "bogus"`) {
		t.Errorf("missing unknown-command message:\n%s", got)
	}
	if !strings.Contains(got, "usage: video <index>") {
		t.Errorf("missing usage line:\n%s", got)
	}
	if !strings.Contains(got, "error:") {
		t.Errorf("selecting a panel on home should print an error:\n%s", got)
	}
	if len(srv.Requests()) != 0 {
		t.Errorf("requests = %d, want 0", len(srv.Requests()))
	}
}

func TestShell_ChatPrintsReply(t *testing.T) {
	srv := studybuddytest.New(t)
	srv.AddAccount("ann@example.com", "pw", "student")
	sh, dash, out := newTestShell(t, srv, "")
	ctx := context.Background()
	if err := dash.Login(ctx, domain.Credentials{Email: "ann@example.com", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := sh.Exec(ctx, "chat 2"); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.Contains(out.String(), "bot: echo: 2") {
		t.Errorf("reply not printed:\n%s", out.String())
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
