// Package scan submits images of handwritten notes for OCR and summary.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

const (
	msgNoImage = "Please select or take a photo"
	msgFailed  = "Failed to scan notes. Please try again."
)

type scanner interface {
	ScanHandwritten(ctx context.Context, img *domain.Image, email string) (domain.ScanResult, error)
}

type notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

// Status of the pipeline.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusScanning Status = "scanning"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
)

// Snapshot is the observable state of the pipeline.
type Snapshot struct {
	Status   Status
	Image    *domain.Image
	Result   *domain.ScanResult
	Error    string
	Sequence uint64
}

// Pipeline holds the pending image and the single live result. Each Submit
// supersedes the previous one: its result is cleared before the request
// starts and a slower earlier request can never overwrite it.
type Pipeline struct {
	api    scanner
	notify notifier
	log    *slog.Logger

	mu     sync.Mutex
	image  *domain.Image
	seq    uint64
	status Status
	result *domain.ScanResult
	errMsg string
}

func NewPipeline(logger *slog.Logger, api scanner, notify notifier) *Pipeline {
	return &Pipeline{
		api:    api,
		notify: notify,
		log:    logger.With("service", "scan"),
		status: StatusIdle,
	}
}

// SetImage sets the image for the next submission, from a camera capture or a
// picked file.
func (p *Pipeline) SetImage(img *domain.Image) {
	p.mu.Lock()
	p.image = img
	p.mu.Unlock()
}

// Submit sends the pending image with the identity hint. Without an image it
// fails with a validation error before any request.
func (p *Pipeline) Submit(ctx context.Context, identityHint string) (domain.ScanResult, error) {
	p.mu.Lock()
	img := p.image
	if img.IsEmpty() {
		p.mu.Unlock()
		err := domain.NewValidationError("image", "required")
		p.report(ctx, msgNoImage, err)
		return domain.ScanResult{}, err
	}
	p.seq++
	seq := p.seq
	p.status = StatusScanning
	p.result = nil
	p.errMsg = ""
	p.mu.Unlock()

	p.log.InfoContext(ctx, "scan submitted", slog.Uint64("seq", seq), slog.String("image", img.Name))

	res, err := p.api.ScanHandwritten(ctx, img, identityHint)
	if err == nil && !res.Success {
		err = fmt.Errorf("scan: %w: service reported failure", domain.ErrRemote)
	}

	p.mu.Lock()
	if p.seq != seq {
		p.mu.Unlock()
		p.log.DebugContext(ctx, "discarding superseded scan", slog.Uint64("seq", seq))
		return domain.ScanResult{}, domain.ErrStale
	}
	if err != nil {
		p.status = StatusFailed
		p.errMsg = msgFailed
		p.mu.Unlock()
		p.log.WarnContext(ctx, "scan failed", slog.String("error", err.Error()))
		p.report(ctx, msgFailed, err)
		return domain.ScanResult{}, err
	}
	p.status = StatusDone
	p.result = &res
	p.mu.Unlock()

	return res, nil
}

// Invalidate drops any in-flight submission and the current result, keeping
// the pending image.
func (p *Pipeline) Invalidate() {
	p.mu.Lock()
	p.seq++
	p.status = StatusIdle
	p.result = nil
	p.errMsg = ""
	p.mu.Unlock()
}

// Reset is Invalidate plus forgetting the pending image.
func (p *Pipeline) Reset() {
	p.Invalidate()
	p.SetImage(nil)
}

// Snapshot returns the observable state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{Status: p.status, Image: p.image, Error: p.errMsg, Sequence: p.seq}
	if p.result != nil {
		r := *p.result
		snap.Result = &r
	}
	return snap
}

func (p *Pipeline) report(ctx context.Context, msg string, err error) {
	if p.notify == nil || errors.Is(err, context.Canceled) {
		return
	}
	p.notify.Notify(ctx, domain.Notice{Level: domain.NoticeError, Message: msg, Err: err})
}
