package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/dashboard"
)

var (
	errUsage = errors.New("usage")
	errQuit  = errors.New("quit")
)

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// Shell is the terminal front end of a Dashboard. It renders published state,
// forwards commands and answers confirmation prompts. It is the only component
// that reads the input stream.
type Shell struct {
	in           *bufio.Scanner
	out          io.Writer
	log          *slog.Logger
	readPassword func() (string, error)

	dash     *dashboard.Dashboard
	commands map[string]command
}

// NewShell creates a shell reading commands from in. Passwords are read
// without echo when in is a terminal.
func NewShell(in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	s := &Shell{
		in:  bufio.NewScanner(in),
		out: out,
		log: logger.With("component", "shell"),
	}
	s.readPassword = s.readLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.readPassword = func() (string, error) {
			pwd, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(s.out)
			return string(pwd), err
		}
	}
	return s
}

// Notify prints a notice. It implements dashboard.Notifier.
func (s *Shell) Notify(_ context.Context, n domain.Notice) {
	if n.Level == domain.NoticeError {
		fmt.Fprintf(s.out, "! %s\n", n.Message)
		return
	}
	fmt.Fprintf(s.out, "* %s\n", n.Message)
}

// Confirm asks a yes/no question on the input stream. It implements
// dashboard.Confirmer.
func (s *Shell) Confirm(_ context.Context, prompt string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	line, err := s.readLine()
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func (s *Shell) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

// Run starts the dashboard and processes commands until "quit", end of input
// or ctx is done.
func (s *Shell) Run(ctx context.Context, dash *dashboard.Dashboard) error {
	s.dash = dash
	s.commands = s.commandTable()

	fmt.Fprintf(s.out, "StudyBuddy %s. Type \"help\" for commands.\n", Version)
	dash.Start(ctx)
	s.showRoute()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprintf(s.out, "%s> ", s.prompt())
		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if err := s.Exec(ctx, line); errors.Is(err, errQuit) {
			return nil
		}
	}
}

// Exec runs one command line. Failures already shown as notices are not
// printed again.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, ok := s.commands[strings.ToLower(fields[0])]
	if !ok {
		fmt.Fprintf(s.out, "unknown command %q, try \"help\"\n", fields[0])
		return nil
	}

	err := cmd.run(ctx, fields[1:])
	switch {
	case err == nil:
	case errors.Is(err, errQuit):
		return err
	case errors.Is(err, errUsage):
		fmt.Fprintf(s.out, "usage: %s\n", cmd.usage)
	case domain.IsQuiet(err):
		s.log.DebugContext(ctx, "command discarded", slog.String("error", err.Error()))
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrBusy), errors.Is(err, domain.ErrUnsupported):
		fmt.Fprintf(s.out, "error: %v\n", err)
	default:
		s.log.DebugContext(ctx, "command failed", slog.String("error", err.Error()))
	}
	return err
}

func (s *Shell) prompt() string {
	route := s.dash.Nav.Route()
	if active := s.dash.Nav.Active(); active != "" {
		return route.String() + "/" + active.String()
	}
	return route.String()
}

func (s *Shell) commandTable() map[string]command {
	cmds := map[string]command{
		"help":       {"help", "list commands", s.cmdHelp},
		"quit":       {"quit", "leave the shell", func(context.Context, []string) error { return errQuit }},
		"goto":       {"goto home|login|register", "show a public screen", s.cmdGoto},
		"login":      {"login <email> [password]", "log in; the password is prompted when omitted", s.cmdLogin},
		"register":   {"register <name> <email> <student|admin> [password]", "create an account", s.cmdRegister},
		"logout":     {"logout", "log out", s.cmdLogout},
		"whoami":     {"whoami", "show the session", s.cmdWhoami},
		"panels":     {"panels", "list dashboard panels", s.cmdPanels},
		"panel":      {"panel <key>", "select a panel", s.cmdPanel},
		"reload":     {"reload", "reload the active panel", s.cmdReload},
		"show":       {"show", "render the active panel", s.cmdShow},
		"filter":     {"filter [module]", "filter materials by module, empty for all", s.cmdFilter},
		"new":        {"new", "open the create form of the active panel", s.cmdNew},
		"edit":       {"edit <id>", "open the edit form of the active panel", s.cmdEdit},
		"set":        {"set <field> <value...>", "set a form field", s.cmdSet},
		"file":       {"file <path>", "attach a file to the open form", s.cmdFile},
		"form":       {"form", "show the open form", s.cmdForm},
		"submit":     {"submit", "submit the open form", s.cmdSubmit},
		"cancel":     {"cancel", "close the open form", s.cmdCancel},
		"delete":     {"delete <id>", "delete an item of the active panel", s.cmdDelete},
		"download":   {"download <id>", "save a material or note locally", s.cmdDownload},
		"videos":     {"videos <note-id>", "suggest videos for a note", s.cmdVideos},
		"video":      {"video <index>", "select a suggested video", s.cmdVideo},
		"camera":     {"camera start|capture|stop", "control the camera", s.cmdCamera},
		"image":      {"image <path>", "pick an image file for scanning", s.cmdImage},
		"scan":       {"scan", "scan the pending image", s.cmdScan},
		"chat":       {"chat <message...>", "talk to the tutor", s.cmdChat},
		"transcript": {"transcript", "show the chat transcript", s.cmdTranscript},
	}
	cmds["exit"] = cmds["quit"]
	return cmds
}

func (s *Shell) cmdHelp(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.commands[name]
		fmt.Fprintf(s.out, "  %-52s %s\n", c.usage, c.help)
	}
	return nil
}

func (s *Shell) cmdGoto(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	route := domain.Route(strings.ToLower(args[0]))
	switch route {
	case domain.RouteHome, domain.RouteLogin, domain.RouteRegister:
	default:
		return errUsage
	}
	if _, ok := s.dash.Session(); ok {
		return fmt.Errorf("log out first: %w", domain.ErrInvalidState)
	}
	s.dash.GoTo(ctx, route)
	s.showRoute()
	return nil
}

func (s *Shell) cmdLogin(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	creds := domain.Credentials{Email: args[0]}
	if len(args) == 2 {
		creds.Password = args[1]
	} else {
		fmt.Fprint(s.out, "Password: ")
		pwd, err := s.readPassword()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		creds.Password = pwd
	}
	if err := s.dash.Login(ctx, creds); err != nil {
		return err
	}
	s.showRoute()
	return nil
}

func (s *Shell) cmdRegister(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return errUsage
	}
	reg := domain.Registration{Name: args[0], Email: args[1], Role: domain.Role(strings.ToLower(args[2]))}
	if len(args) == 4 {
		reg.Password = args[3]
	} else {
		fmt.Fprint(s.out, "Password: ")
		pwd, err := s.readPassword()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		reg.Password = pwd
	}
	return s.dash.Register(ctx, reg)
}

func (s *Shell) cmdLogout(ctx context.Context, _ []string) error {
	if _, ok := s.dash.Session(); !ok {
		return domain.ErrNoSession
	}
	err := s.dash.Logout(ctx)
	s.showRoute()
	return err
}

func (s *Shell) cmdWhoami(context.Context, []string) error {
	sess, ok := s.dash.Session()
	if !ok {
		fmt.Fprintln(s.out, "not logged in")
		return nil
	}
	fmt.Fprintf(s.out, "id=%d role=%s email=%s\n", sess.ID, sess.Role, s.dash.IdentityHint())
	return nil
}

func (s *Shell) cmdPanels(context.Context, []string) error {
	s.renderPanels()
	return nil
}

func (s *Shell) cmdPanel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := s.dash.Nav.Select(ctx, domain.PanelKey(args[0])); err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Shell) cmdReload(ctx context.Context, _ []string) error {
	if err := s.dash.Nav.Reload(ctx); err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Shell) cmdShow(context.Context, []string) error {
	s.render()
	return nil
}

func (s *Shell) cmdFilter(ctx context.Context, args []string) error {
	if err := s.dash.SetModuleFilter(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	s.renderMaterials()
	return nil
}

func (s *Shell) activeForm() (dashboard.Form, error) {
	f, ok := s.dash.Form(s.dash.Nav.Active())
	if !ok {
		return nil, fmt.Errorf("panel %q has no form: %w", s.dash.Nav.Active(), domain.ErrUnsupported)
	}
	return f, nil
}

func (s *Shell) cmdNew(context.Context, []string) error {
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	if err := f.OpenCreate(); err != nil {
		return err
	}
	s.renderForm(f)
	return nil
}

func (s *Shell) cmdEdit(_ context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	if err := f.OpenEdit(id); err != nil {
		return err
	}
	s.renderForm(f)
	return nil
}

func (s *Shell) cmdSet(_ context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	if err := f.Set(args[0], strings.Join(args[1:], " ")); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		return err
	}
	return nil
}

func (s *Shell) cmdFile(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	up, err := readUpload(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return err
	}
	return f.SetFile(up)
}

func (s *Shell) cmdForm(context.Context, []string) error {
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	s.renderForm(f)
	return nil
}

func (s *Shell) cmdSubmit(ctx context.Context, _ []string) error {
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	if err := f.Submit(ctx); err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Shell) cmdCancel(context.Context, []string) error {
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	f.Cancel()
	return nil
}

func (s *Shell) cmdDelete(ctx context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	f, err := s.activeForm()
	if err != nil {
		return err
	}
	if err := f.Delete(ctx, id); err != nil {
		return err
	}
	s.render()
	return nil
}

func (s *Shell) cmdDownload(ctx context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	switch s.dash.Nav.Active() {
	case domain.PanelShare:
		_, err = s.dash.DownloadMaterial(ctx, id)
	case domain.PanelMyNotes, domain.PanelWatch:
		_, err = s.dash.DownloadNote(ctx, id)
	default:
		err = fmt.Errorf("nothing to download here: %w", domain.ErrUnsupported)
	}
	return err
}

func (s *Shell) cmdVideos(ctx context.Context, args []string) error {
	id, err := oneID(args)
	if err != nil {
		return err
	}
	if err := s.dash.WatchVideos(ctx, id); err != nil {
		return err
	}
	s.renderVideos()
	return nil
}

func (s *Shell) cmdVideo(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	if err := s.dash.Videos.Select(i); err != nil {
		return err
	}
	s.renderVideos()
	return nil
}

func (s *Shell) cmdCamera(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	switch args[0] {
	case "start":
		if err := s.dash.StartCamera(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "camera streaming")
	case "capture":
		still, err := s.dash.Capture.Capture(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "captured %s (%d bytes)\n", still.Name, len(still.Data))
	case "stop":
		s.dash.Capture.Stop(ctx)
		fmt.Fprintln(s.out, "camera stopped")
	default:
		return errUsage
	}
	return nil
}

func (s *Shell) cmdImage(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	up, err := readUpload(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return err
	}
	s.dash.Scan.SetImage(up)
	fmt.Fprintf(s.out, "image %s ready to scan\n", up.Name)
	return nil
}

func (s *Shell) cmdScan(ctx context.Context, _ []string) error {
	if _, err := s.dash.SubmitScan(ctx); err != nil {
		return err
	}
	s.renderScan()
	return nil
}

func (s *Shell) cmdChat(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	before := len(s.dash.Chat.Transcript())
	err := s.dash.SendChat(ctx, strings.Join(args, " "))
	for _, m := range s.dash.Chat.Transcript()[before:] {
		if m.Sender == domain.SenderBot {
			fmt.Fprintf(s.out, "bot: %s\n", m.Text)
		}
	}
	return err
}

func (s *Shell) cmdTranscript(context.Context, []string) error {
	s.renderChat()
	return nil
}

func oneID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errUsage
	}
	return id, nil
}

// readUpload loads a local file into memory for a multipart upload.
func readUpload(path string) (*domain.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.Upload{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}
