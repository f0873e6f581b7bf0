package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

type videoAPI interface {
	SuggestedVideos(ctx context.Context, noteID int64) ([]domain.SuggestedVideo, error)
}

// VideosState is the observable state of the videos component.
type VideosState struct {
	NoteID   int64
	Videos   []domain.SuggestedVideo
	Selected int
	Loading  bool
}

// Current returns the selected video.
func (s VideosState) Current() (domain.SuggestedVideo, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Videos) {
		return domain.SuggestedVideo{}, false
	}
	return s.Videos[s.Selected], true
}

// Videos holds the suggestions derived from exactly one note. A new request
// replaces the list wholesale; removing the note clears it.
type Videos struct {
	api    videoAPI
	notify Notifier
	log    *slog.Logger

	mu       sync.Mutex
	noteID   int64
	videos   []domain.SuggestedVideo
	selected int
	loading  bool
	epoch    uint64
}

func NewVideos(logger *slog.Logger, api videoAPI, notify Notifier) *Videos {
	return &Videos{
		api:      api,
		notify:   notify,
		log:      logger.With("service", "videos"),
		selected: -1,
	}
}

// Watch clears the current selection and fetches suggestions for noteID,
// selecting the first one.
func (v *Videos) Watch(ctx context.Context, noteID int64) error {
	v.mu.Lock()
	v.epoch++
	epoch := v.epoch
	v.noteID = noteID
	v.videos = nil
	v.selected = -1
	v.loading = true
	v.mu.Unlock()

	vids, err := v.api.SuggestedVideos(ctx, noteID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.epoch != epoch {
		v.log.DebugContext(ctx, "discarding stale videos", slog.Int64("note_id", noteID))
		return domain.ErrStale
	}
	v.loading = false
	if err != nil {
		v.log.WarnContext(ctx, "fetch videos failed", slog.String("error", err.Error()))
		v.notify.Notify(ctx, domain.Notice{Level: domain.NoticeError, Message: "Failed to fetch videos", Err: err})
		return fmt.Errorf("videos: %w", err)
	}
	v.videos = vids
	if len(vids) > 0 {
		v.selected = 0
	}
	return nil
}

// Select makes the i-th suggestion current.
func (v *Videos) Select(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.videos) {
		return fmt.Errorf("videos: index %d: %w", i, domain.ErrNotFound)
	}
	v.selected = i
	return nil
}

// Clear drops the suggestions and any in-flight fetch.
func (v *Videos) Clear() {
	v.mu.Lock()
	v.epoch++
	v.noteID = 0
	v.videos = nil
	v.selected = -1
	v.loading = false
	v.mu.Unlock()
}

// ClearFor clears the suggestions if they derive from noteID.
func (v *Videos) ClearFor(noteID int64) {
	v.mu.Lock()
	match := v.noteID == noteID
	v.mu.Unlock()
	if match {
		v.Clear()
	}
}

// Invalidate drops an in-flight fetch, keeping what is shown.
func (v *Videos) Invalidate() {
	v.mu.Lock()
	v.epoch++
	v.loading = false
	v.mu.Unlock()
}

// State returns a snapshot.
func (v *Videos) State() VideosState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VideosState{
		NoteID:   v.noteID,
		Videos:   slices.Clone(v.videos),
		Selected: v.selected,
		Loading:  v.loading,
	}
}
