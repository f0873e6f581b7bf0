package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/dashboard"
	"github.com/heartmarshall/studybuddy/internal/service/modal"
)

const timeLayout = "2006-01-02 15:04"

func (s *Shell) showRoute() {
	switch s.dash.Nav.Route() {
	case domain.RouteHome:
		fmt.Fprintln(s.out, "Welcome to StudyBuddy. Use \"login\" or \"register\".")
	case domain.RouteLogin:
		fmt.Fprintln(s.out, "Log in with: login <email>")
	case domain.RouteRegister:
		fmt.Fprintln(s.out, "Create an account with: register <name> <email> <student|admin>")
	default:
		s.renderPanels()
		s.render()
	}
}

func (s *Shell) renderPanels() {
	panels := s.dash.Nav.Panels()
	if len(panels) == 0 {
		fmt.Fprintln(s.out, "no panels on this screen")
		return
	}
	for _, p := range panels {
		marker := " "
		if p.Active {
			marker = ">"
		}
		fmt.Fprintf(s.out, "%s %-10s %s\n", marker, p.Key, p.Title)
	}
}

// render prints the active panel.
func (s *Shell) render() {
	switch s.dash.Nav.Active() {
	case domain.PanelShare:
		s.renderMaterials()
	case domain.PanelMyNotes:
		s.renderNotes()
	case domain.PanelWatch:
		s.renderNotes()
		s.renderVideos()
	case domain.PanelScanNotes:
		s.renderScan()
	case domain.PanelChat:
		s.renderChat()
	case domain.PanelTimetable:
		s.renderEvents()
	case domain.PanelResources:
		s.renderResources()
	case domain.PanelDashboard:
		fmt.Fprintln(s.out, "Welcome to the Admin Dashboard. Manage users from the \"users\" panel.")
	case domain.PanelUsers:
		s.renderUsers()
	}
}

func (s *Shell) table(header string, rows func(w *tabwriter.Writer)) {
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	_ = w.Flush()
}

func (s *Shell) renderMaterials() {
	items := s.dash.Materials.Items()
	if module := s.dash.ModuleFilter(); module != "" {
		fmt.Fprintf(s.out, "module: %s\n", module)
	}
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no materials")
		return
	}
	s.table("ID\tTITLE\tMODULE\tFILE", func(w *tabwriter.Writer) {
		for _, m := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.Title, m.ModuleName, m.FileName)
		}
	})
}

func (s *Shell) renderNotes() {
	items := s.dash.Notes.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no notes")
		return
	}
	s.table("ID\tNAME\tFILE", func(w *tabwriter.Writer) {
		for _, n := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", n.ID, n.NoteName, n.FileName)
		}
	})
}

func (s *Shell) renderVideos() {
	st := s.dash.Videos.State()
	if st.NoteID == 0 {
		return
	}
	if st.Loading {
		fmt.Fprintln(s.out, "loading videos...")
		return
	}
	if len(st.Videos) == 0 {
		fmt.Fprintf(s.out, "no videos for note %d\n", st.NoteID)
		return
	}
	s.table("#\tTITLE\tDURATION\tURL", func(w *tabwriter.Writer) {
		for i, v := range st.Videos {
			marker := ""
			if i == st.Selected {
				marker = ">"
			}
			fmt.Fprintf(w, "%s%d\t%s\t%s\t%s\n", marker, i, v.Title, v.Duration, v.URL)
		}
	})
}

func (s *Shell) renderScan() {
	fmt.Fprintf(s.out, "camera: %s\n", s.dash.Capture.State())
	snap := s.dash.Scan.Snapshot()
	if snap.Image != nil {
		fmt.Fprintf(s.out, "image: %s (%d bytes)\n", snap.Image.Name, len(snap.Image.Data))
	}
	fmt.Fprintf(s.out, "scan: %s\n", snap.Status)
	if snap.Result != nil {
		fmt.Fprintf(s.out, "\nExtracted text:\n%s\n\nNotes:\n%s\n", snap.Result.ExtractedText, snap.Result.Notes)
	}
}

func (s *Shell) renderChat() {
	for _, m := range s.dash.Chat.Transcript() {
		fmt.Fprintf(s.out, "%s: %s\n", m.Sender, m.Text)
	}
}

func (s *Shell) renderEvents() {
	items := s.dash.Events.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no events")
		return
	}
	s.table("ID\tTITLE\tSTART\tEND", func(w *tabwriter.Writer) {
		for _, e := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Title, e.Start.Format(timeLayout), e.End.Format(timeLayout))
		}
	})
}

func (s *Shell) renderResources() {
	items := s.dash.Resources.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no resources")
		return
	}
	s.table("ID\tTITLE\tDESCRIPTION", func(w *tabwriter.Writer) {
		for _, r := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Title, r.Description)
		}
	})
}

func (s *Shell) renderUsers() {
	items := s.dash.Users.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no users")
		return
	}
	s.table("ID\tEMAIL\tROLE", func(w *tabwriter.Writer) {
		for _, u := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.Email, u.Role)
		}
	})
}

func (s *Shell) renderForm(f dashboard.Form) {
	st := f.State()
	if st.Phase == modal.Closed {
		fmt.Fprintln(s.out, "no form open")
		return
	}
	title := "new"
	if st.EditingID != nil {
		title = fmt.Sprintf("edit %d", *st.EditingID)
	}
	fmt.Fprintf(s.out, "form (%s, %s): %+v\n", title, st.Phase, redact(st.Draft))
}

// redact hides passwords and file bytes from a draft before printing.
func redact(draft any) any {
	switch d := draft.(type) {
	case domain.UserDraft:
		if d.Password != "" {
			d.Password = "***"
		}
		return d
	case domain.MaterialDraft:
		return struct{ Title, ModuleName, File string }{d.Title, d.ModuleName, uploadName(d.File)}
	case domain.NoteDraft:
		return struct{ NoteName, File string }{d.NoteName, uploadName(d.File)}
	}
	return draft
}

func uploadName(u *domain.Upload) string {
	if u == nil {
		return ""
	}
	return u.Name
}
