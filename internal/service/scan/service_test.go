package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

type scannerFunc func(ctx context.Context, img *domain.Image, email string) (domain.ScanResult, error)

func (f scannerFunc) ScanHandwritten(ctx context.Context, img *domain.Image, email string) (domain.ScanResult, error) {
	return f(ctx, img, email)
}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) Notify(_ context.Context, no domain.Notice) {
	n.mu.Lock()
	n.msgs = append(n.msgs, no.Message)
	n.mu.Unlock()
}

func pngImage() *domain.Image {
	return &domain.Image{Name: "camera-note.png", ContentType: "image/png", Data: []byte{1, 2, 3}}
}

func TestSubmit_NoImageIssuesNoRequest(t *testing.T) {
	t.Parallel()

	calls := 0
	api := scannerFunc(func(context.Context, *domain.Image, string) (domain.ScanResult, error) {
		calls++
		return domain.ScanResult{}, nil
	})
	n := &notices{}
	p := NewPipeline(slog.Default(), api, n)

	_, err := p.Submit(context.Background(), "a@a.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, calls)
	assert.Equal(t, []string{"Please select or take a photo"}, n.msgs)

	p.SetImage(&domain.Image{Name: "empty.png"})
	_, err = p.Submit(context.Background(), "a@a.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, calls)
}

func TestSubmit_Success(t *testing.T) {
	t.Parallel()

	var gotEmail string
	api := scannerFunc(func(_ context.Context, img *domain.Image, email string) (domain.ScanResult, error) {
		gotEmail = email
		return domain.ScanResult{Success: true, ExtractedText: "x", Notes: "# notes"}, nil
	})
	p := NewPipeline(slog.Default(), api, &notices{})
	p.SetImage(pngImage())

	res, err := p.Submit(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "# notes", res.Notes)
	assert.Equal(t, "ann@example.com", gotEmail)

	snap := p.Snapshot()
	assert.Equal(t, StatusDone, snap.Status)
	require.NotNil(t, snap.Result)
	assert.Equal(t, "x", snap.Result.ExtractedText)
}

func TestSubmit_UnsuccessfulResultIsFailure(t *testing.T) {
	t.Parallel()

	api := scannerFunc(func(context.Context, *domain.Image, string) (domain.ScanResult, error) {
		return domain.ScanResult{Success: false}, nil
	})
	n := &notices{}
	p := NewPipeline(slog.Default(), api, n)
	p.SetImage(pngImage())

	_, err := p.Submit(context.Background(), "a@a.com")
	assert.ErrorIs(t, err, domain.ErrRemote)

	snap := p.Snapshot()
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Nil(t, snap.Result)
	assert.Equal(t, "Failed to scan notes. Please try again.", snap.Error)
	assert.Equal(t, []string{"Failed to scan notes. Please try again."}, n.msgs)
}

func TestSubmit_NewSubmissionSupersedesOld(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	first := true
	var mu sync.Mutex
	api := scannerFunc(func(context.Context, *domain.Image, string) (domain.ScanResult, error) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()
		if isFirst {
			<-release
			return domain.ScanResult{Success: true, Notes: "old"}, nil
		}
		return domain.ScanResult{Success: true, Notes: "new"}, nil
	})
	p := NewPipeline(slog.Default(), api, &notices{})
	p.SetImage(pngImage())

	oldDone := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), "a@a.com")
		oldDone <- err
	}()
	require.Eventually(t, func() bool { return p.Snapshot().Status == StatusScanning }, 2*time.Second, 5*time.Millisecond)

	res, err := p.Submit(context.Background(), "a@a.com")
	require.NoError(t, err)
	assert.Equal(t, "new", res.Notes)

	close(release)
	assert.ErrorIs(t, <-oldDone, domain.ErrStale)
	assert.Equal(t, "new", p.Snapshot().Result.Notes)
}

func TestSubmit_ClearsPreviousResultWhileScanning(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	calls := 0
	api := scannerFunc(func(context.Context, *domain.Image, string) (domain.ScanResult, error) {
		calls++
		if calls == 2 {
			<-release
		}
		return domain.ScanResult{Success: true, Notes: "n"}, nil
	})
	p := NewPipeline(slog.Default(), api, &notices{})
	p.SetImage(pngImage())

	_, err := p.Submit(context.Background(), "a@a.com")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		p.Submit(context.Background(), "a@a.com")
		close(done)
	}()
	require.Eventually(t, func() bool { return p.Snapshot().Status == StatusScanning }, 2*time.Second, 5*time.Millisecond)
	assert.Nil(t, p.Snapshot().Result)

	close(release)
	<-done
}

func TestInvalidate_DropsInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	api := scannerFunc(func(context.Context, *domain.Image, string) (domain.ScanResult, error) {
		<-release
		return domain.ScanResult{}, errors.New("late")
	})
	n := &notices{}
	p := NewPipeline(slog.Default(), api, n)
	p.SetImage(pngImage())

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background(), "a@a.com")
		done <- err
	}()
	require.Eventually(t, func() bool { return p.Snapshot().Status == StatusScanning }, 2*time.Second, 5*time.Millisecond)

	p.Reset()
	close(release)

	assert.ErrorIs(t, <-done, domain.ErrStale)
	assert.Equal(t, StatusIdle, p.Snapshot().Status)
	assert.Nil(t, p.Snapshot().Image)
	assert.Empty(t, n.msgs)
}
