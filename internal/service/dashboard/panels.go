package dashboard

import (
	"context"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/internal/service/navigation"
)

type panel struct {
	key   domain.PanelKey
	load  func(ctx context.Context) error
	leave func(ctx context.Context)
	stale func() bool
}

func (p panel) Key() domain.PanelKey { return p.key }
func (p panel) Title() string        { return panelTitles[p.key] }

func (p panel) Load(ctx context.Context) error {
	if p.load == nil {
		return nil
	}
	return p.load(ctx)
}

// Stale reports whether the collection behind the panel was changed after
// it was last loaded.
func (p panel) Stale() bool {
	return p.stale != nil && p.stale()
}

func (p panel) Leave(ctx context.Context) {
	if p.leave != nil {
		p.leave(ctx)
	}
}

// panels builds the navigation panels of v. Leaving a panel discards its
// in-flight loads. The camera is released by releaseCamera.
func (d *Dashboard) panels(v Variant) []navigation.Panel {
	out := make([]navigation.Panel, 0, len(v.Panels))
	for _, key := range v.Panels {
		p := panel{key: key}
		switch key {
		case domain.PanelShare:
			p.load = d.Materials.Refresh
			p.leave = func(context.Context) { d.Materials.Invalidate() }
			p.stale = unloaded(d.Materials.Loaded)
		case domain.PanelMyNotes:
			p.load = d.Notes.Refresh
			p.leave = func(context.Context) { d.Notes.Invalidate() }
			p.stale = unloaded(d.Notes.Loaded)
		case domain.PanelWatch:
			p.load = d.Notes.Refresh
			p.leave = func(context.Context) {
				d.Notes.Invalidate()
				d.Videos.Invalidate()
			}
			p.stale = unloaded(d.Notes.Loaded)
		case domain.PanelTimetable:
			p.load = d.Events.Refresh
			p.leave = func(context.Context) { d.Events.Invalidate() }
			p.stale = unloaded(d.Events.Loaded)
		case domain.PanelResources:
			p.load = d.Resources.Refresh
			p.leave = func(context.Context) { d.Resources.Invalidate() }
			p.stale = unloaded(d.Resources.Loaded)
		case domain.PanelUsers:
			p.load = d.Users.Refresh
			p.leave = func(context.Context) { d.Users.Invalidate() }
			p.stale = unloaded(d.Users.Loaded)
		}
		out = append(out, p)
	}
	return out
}

func unloaded(loaded func() bool) func() bool {
	return func() bool { return !loaded() }
}

// releaseCamera runs on every route or panel change. The camera is only
// held while the scan panel is active.
func (d *Dashboard) releaseCamera(ctx context.Context, _ domain.Route, active domain.PanelKey) {
	if active != domain.PanelScanNotes {
		d.Capture.Stop(ctx)
	}
}
