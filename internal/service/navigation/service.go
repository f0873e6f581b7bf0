// Package navigation tracks the route and the selected panel of the shell.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Panel is one selectable section of a dashboard.
type Panel interface {
	Key() domain.PanelKey
	Title() string
	// Load fetches the data the panel shows. Called on mount, on first
	// selection until it succeeds and on Reload.
	Load(ctx context.Context) error
	// Leave is called when another panel is selected; in-flight loads of
	// this panel are expected to be discarded.
	Leave(ctx context.Context)
}

// staler is implemented by panels whose data can go stale after a
// successful load. Select loads a stale panel again.
type staler interface {
	Stale() bool
}

// PanelInfo describes a configured panel.
type PanelInfo struct {
	Key    domain.PanelKey
	Title  string
	Loaded bool
	Active bool
}

// Controller holds the current route and, on dashboard routes, exactly one
// selected panel.
type Controller struct {
	log *slog.Logger

	mu     sync.Mutex
	route  domain.Route
	panels []Panel
	active domain.PanelKey
	loaded map[domain.PanelKey]bool
	gen    uint64
	subs   []func(context.Context, domain.Route, domain.PanelKey)
}

func NewController(logger *slog.Logger) *Controller {
	return &Controller{
		log:    logger.With("service", "navigation"),
		route:  domain.RouteHome,
		loaded: make(map[domain.PanelKey]bool),
	}
}

// Navigate moves to a route without panels (home, login, register). The
// active panel, if any, is left.
func (c *Controller) Navigate(ctx context.Context, route domain.Route) {
	c.Configure(ctx, route, nil, "")
}

// Configure moves to route with the given panels and selects def without
// loading it. The previously active panel is left.
func (c *Controller) Configure(ctx context.Context, route domain.Route, panels []Panel, def domain.PanelKey) {
	c.mu.Lock()
	prev := c.activePanelLocked()
	c.route = route
	c.panels = append([]Panel(nil), panels...)
	c.active = def
	if def == "" && len(panels) > 0 {
		c.active = panels[0].Key()
	}
	c.loaded = make(map[domain.PanelKey]bool)
	c.gen++
	subs, active := c.subs, c.active
	c.mu.Unlock()

	if prev != nil {
		prev.Leave(ctx)
	}
	c.log.InfoContext(ctx, "route changed", slog.String("route", route.String()), slog.String("panel", active.String()))
	for _, fn := range subs {
		fn(ctx, route, active)
	}
}

// Mount loads every panel concurrently. Panels that fail stay unloaded and
// are retried on selection; the first error is returned.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	panels := append([]Panel(nil), c.panels...)
	gen := c.gen
	c.mu.Unlock()

	var g errgroup.Group
	for _, p := range panels {
		p := p
		g.Go(func() error {
			return c.load(ctx, gen, p)
		})
	}
	return g.Wait()
}

// Select makes key the active panel. The previous panel is left. The panel
// is loaded unless an earlier load already succeeded and it is not stale.
func (c *Controller) Select(ctx context.Context, key domain.PanelKey) error {
	c.mu.Lock()
	next := c.panelLocked(key)
	if next == nil {
		c.mu.Unlock()
		return fmt.Errorf("navigation: panel %q: %w", key, domain.ErrNotFound)
	}
	var prev Panel
	if c.active != key {
		prev = c.activePanelLocked()
	}
	c.active = key
	loaded := c.loaded[key]
	gen := c.gen
	route, subs := c.route, c.subs
	c.mu.Unlock()

	if prev != nil {
		prev.Leave(ctx)
	}
	for _, fn := range subs {
		fn(ctx, route, key)
	}
	if loaded {
		if st, ok := next.(staler); !ok || !st.Stale() {
			return nil
		}
	}
	return c.load(ctx, gen, next)
}

// Reload loads the active panel again.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	p := c.activePanelLocked()
	gen := c.gen
	c.mu.Unlock()

	if p == nil {
		return fmt.Errorf("navigation: reload: %w", domain.ErrInvalidState)
	}
	return c.load(ctx, gen, p)
}

func (c *Controller) load(ctx context.Context, gen uint64, p Panel) error {
	err := p.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return domain.ErrStale
	}
	if err != nil {
		if !errors.Is(err, domain.ErrStale) {
			c.log.DebugContext(ctx, "panel load failed", slog.String("panel", p.Key().String()), slog.String("error", err.Error()))
		}
		return fmt.Errorf("navigation: load %s: %w", p.Key(), err)
	}
	c.loaded[p.Key()] = true
	return nil
}

// Subscribe registers fn to be told about route and panel changes. fn runs
// after the previous panel was left.
func (c *Controller) Subscribe(fn func(ctx context.Context, route domain.Route, panel domain.PanelKey)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Route returns the current route.
func (c *Controller) Route() domain.Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}

// Active returns the selected panel key, or "" on routes without panels.
func (c *Controller) Active() domain.PanelKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Panels describes the configured panels in order.
func (c *Controller) Panels() []PanelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PanelInfo, 0, len(c.panels))
	for _, p := range c.panels {
		out = append(out, PanelInfo{
			Key:    p.Key(),
			Title:  p.Title(),
			Loaded: c.loaded[p.Key()],
			Active: p.Key() == c.active,
		})
	}
	return out
}

func (c *Controller) panelLocked(key domain.PanelKey) Panel {
	for _, p := range c.panels {
		if p.Key() == key {
			return p
		}
	}
	return nil
}

func (c *Controller) activePanelLocked() Panel {
	if c.active == "" {
		return nil
	}
	return c.panelLocked(c.active)
}
