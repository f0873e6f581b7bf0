package navigation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

type fakePanel struct {
	key    domain.PanelKey
	loads  atomic.Int32
	leaves atomic.Int32
	mu     sync.Mutex
	err    error
}

func newPanel(key domain.PanelKey) *fakePanel { return &fakePanel{key: key} }

func (p *fakePanel) Key() domain.PanelKey { return p.key }
func (p *fakePanel) Title() string        { return string(p.key) }

func (p *fakePanel) Load(context.Context) error {
	p.loads.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePanel) Leave(context.Context) { p.leaves.Add(1) }

func (p *fakePanel) setErr(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func setup(t *testing.T) (*Controller, *fakePanel, *fakePanel) {
	t.Helper()
	c := NewController(slog.Default())
	a, b := newPanel(domain.PanelShare), newPanel(domain.PanelMyNotes)
	c.Configure(context.Background(), domain.RouteStudent, []Panel{a, b}, domain.PanelShare)
	return c, a, b
}

func TestConfigure_SelectsDefault(t *testing.T) {
	t.Parallel()

	c, a, _ := setup(t)
	assert.Equal(t, domain.RouteStudent, c.Route())
	assert.Equal(t, domain.PanelShare, c.Active())
	assert.Zero(t, a.loads.Load())
}

func TestMount_LoadsAllOnce(t *testing.T) {
	t.Parallel()

	c, a, b := setup(t)
	require.NoError(t, c.Mount(context.Background()))
	assert.Equal(t, int32(1), a.loads.Load())
	assert.Equal(t, int32(1), b.loads.Load())

	require.NoError(t, c.Select(context.Background(), domain.PanelMyNotes))
	require.NoError(t, c.Select(context.Background(), domain.PanelShare))
	assert.Equal(t, int32(1), a.loads.Load(), "loaded panel is not refreshed on reselect")
	assert.Equal(t, int32(1), b.loads.Load())
}

func TestSelect_FirstSelectionLoads(t *testing.T) {
	t.Parallel()

	c, a, b := setup(t)
	require.NoError(t, c.Select(context.Background(), domain.PanelMyNotes))

	assert.Equal(t, int32(1), b.loads.Load())
	assert.Equal(t, int32(1), a.leaves.Load())
	assert.Equal(t, domain.PanelMyNotes, c.Active())

	require.NoError(t, c.Select(context.Background(), domain.PanelMyNotes))
	assert.Equal(t, int32(1), b.loads.Load())
	assert.Zero(t, b.leaves.Load(), "reselecting the active panel does not leave it")
}

func TestSelect_FailedLoadRetried(t *testing.T) {
	t.Parallel()

	c, _, b := setup(t)
	b.setErr(errors.New("offline"))
	require.Error(t, c.Select(context.Background(), domain.PanelMyNotes))

	b.setErr(nil)
	require.NoError(t, c.Select(context.Background(), domain.PanelMyNotes))
	assert.Equal(t, int32(2), b.loads.Load())

	infos := c.Panels()
	require.Len(t, infos, 2)
	assert.True(t, infos[1].Loaded)
	assert.True(t, infos[1].Active)
}

func TestSelect_Unknown(t *testing.T) {
	t.Parallel()

	c, _, _ := setup(t)
	err := c.Select(context.Background(), domain.PanelUsers)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.PanelShare, c.Active())
}

func TestReload_ForcesLoad(t *testing.T) {
	t.Parallel()

	c, a, _ := setup(t)
	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.Reload(context.Background()))
	assert.Equal(t, int32(2), a.loads.Load())
}

func TestNavigate_LeavesActivePanel(t *testing.T) {
	t.Parallel()

	c, a, _ := setup(t)
	var routes []domain.Route
	c.Subscribe(func(_ context.Context, r domain.Route, _ domain.PanelKey) { routes = append(routes, r) })

	c.Navigate(context.Background(), domain.RouteLogin)

	assert.Equal(t, domain.RouteLogin, c.Route())
	assert.Equal(t, domain.PanelKey(""), c.Active())
	assert.Equal(t, int32(1), a.leaves.Load())
	assert.Equal(t, []domain.Route{domain.RouteLogin}, routes)
	assert.ErrorIs(t, c.Reload(context.Background()), domain.ErrInvalidState)
}

func TestLoad_StaleAfterReconfigure(t *testing.T) {
	t.Parallel()

	c := NewController(slog.Default())
	var slow *blockingPanel
	slow = &blockingPanel{fakePanel: newPanel(domain.PanelShare), started: make(chan struct{}), release: make(chan struct{})}
	c.Configure(context.Background(), domain.RouteStudent, []Panel{slow}, domain.PanelShare)

	done := make(chan error, 1)
	go func() { done <- c.Mount(context.Background()) }()
	<-slow.started

	c.Navigate(context.Background(), domain.RouteLogin)
	close(slow.release)

	assert.ErrorIs(t, <-done, domain.ErrStale)
}

type blockingPanel struct {
	*fakePanel
	started chan struct{}
	release chan struct{}
}

func (p *blockingPanel) Load(ctx context.Context) error {
	close(p.started)
	<-p.release
	return p.fakePanel.Load(ctx)
}

type stalePanel struct {
	*fakePanel
	stale atomic.Bool
}

func (p *stalePanel) Stale() bool { return p.stale.Load() }

func TestSelect_ReloadsStalePanel(t *testing.T) {
	t.Parallel()

	c := NewController(slog.Default())
	a := newPanel(domain.PanelShare)
	b := &stalePanel{fakePanel: newPanel(domain.PanelMyNotes)}
	c.Configure(context.Background(), domain.RouteStudent, []Panel{a, b}, domain.PanelShare)
	require.NoError(t, c.Mount(context.Background()))
	require.Equal(t, int32(1), b.loads.Load())

	require.NoError(t, c.Select(context.Background(), domain.PanelMyNotes))
	assert.Equal(t, int32(1), b.loads.Load(), "fresh panel is not reloaded")

	require.NoError(t, c.Select(context.Background(), domain.PanelShare))
	b.stale.Store(true)
	require.NoError(t, c.Select(context.Background(), domain.PanelMyNotes))
	assert.Equal(t, int32(2), b.loads.Load())
}
