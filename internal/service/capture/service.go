// Package capture drives the camera for the scan panel. The controller owns
// the device exclusively while streaming and releases it on every exit
// transition: capture, stop, a failed capture and teardown.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"sync"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// CapturedName is the file name given to captured stills.
const CapturedName = "camera-note.png"

// Stream is an acquired camera.
type Stream interface {
	Frame() (image.Image, error)
	Close() error
}

// Camera acquires a Stream.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// OpenFunc adapts a function to Camera.
type OpenFunc func(ctx context.Context) (Stream, error)

func (f OpenFunc) Open(ctx context.Context) (Stream, error) { return f(ctx) }

// ImageSink receives captured stills, typically the scan pipeline.
type ImageSink interface {
	SetImage(img *domain.Image)
}

type notifier interface {
	Notify(ctx context.Context, n domain.Notice)
}

// State of the controller.
type State string

const (
	Idle      State = "idle"
	Starting  State = "starting"
	Streaming State = "streaming"
	Captured  State = "captured"
)

// Controller is the capture state machine.
type Controller struct {
	camera Camera
	sink   ImageSink
	notify notifier
	log    *slog.Logger

	mu     sync.Mutex
	state  State
	stream Stream
	still  *domain.Image
	gen    uint64
}

func NewController(logger *slog.Logger, camera Camera, sink ImageSink, notify notifier) *Controller {
	return &Controller{
		camera: camera,
		sink:   sink,
		notify: notify,
		log:    logger.With("service", "capture"),
		state:  Idle,
	}
}

// Start acquires the camera. Only valid from Idle. On denial the controller
// stays Idle and the failure is reported.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Idle {
		st := c.state
		c.mu.Unlock()
		return fmt.Errorf("capture: start while %s: %w", st, domain.ErrInvalidState)
	}
	c.state = Starting
	c.still = nil
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	stream, err := c.camera.Open(ctx)

	c.mu.Lock()
	if c.gen != gen {
		// Stopped while the device was being acquired.
		c.mu.Unlock()
		if stream != nil {
			c.closeStream(ctx, stream)
		}
		return domain.ErrStale
	}
	if err != nil {
		c.state = Idle
		c.mu.Unlock()
		c.log.WarnContext(ctx, "camera unavailable", slog.String("error", err.Error()))
		c.report(ctx, "Camera access denied", err)
		return fmt.Errorf("capture: start: %w", err)
	}
	c.stream = stream
	c.state = Streaming
	c.mu.Unlock()

	c.log.InfoContext(ctx, "camera streaming")
	return nil
}

// Capture snapshots the current frame into a PNG still, releases the device
// and hands the still to the sink. Only valid while Streaming. A failed
// frame grab also releases the device and returns to Idle.
func (c *Controller) Capture(ctx context.Context) (*domain.Image, error) {
	c.mu.Lock()
	if c.state != Streaming {
		st := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("capture: capture while %s: %w", st, domain.ErrInvalidState)
	}
	stream := c.stream
	c.stream = nil

	still, err := snapshot(stream)
	c.closeStream(ctx, stream)

	if err != nil {
		c.state = Idle
		c.gen++
		c.mu.Unlock()
		c.report(ctx, "Failed to capture photo", err)
		return nil, fmt.Errorf("capture: %w", err)
	}
	c.state = Captured
	c.still = still
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.SetImage(still)
	}
	c.log.InfoContext(ctx, "photo captured", slog.Int("bytes", len(still.Data)))
	return still, nil
}

func snapshot(stream Stream) (*domain.Image, error) {
	frame, err := stream.Frame()
	if err != nil {
		return nil, fmt.Errorf("grab frame: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return &domain.Image{Name: CapturedName, ContentType: "image/png", Data: buf.Bytes()}, nil
}

// Stop returns to Idle from any state, releasing the device if held and
// discarding a captured still. It is the teardown path as well.
func (c *Controller) Stop(ctx context.Context) {
	c.mu.Lock()
	if c.state == Idle {
		c.mu.Unlock()
		return
	}
	stream := c.stream
	c.stream = nil
	c.state = Idle
	c.still = nil
	c.gen++
	c.mu.Unlock()

	if stream != nil {
		c.closeStream(ctx, stream)
	}
	c.log.DebugContext(ctx, "capture stopped")
}

// closeStream releases the device. Close errors are logged only: the
// controller never holds a stream after calling it.
func (c *Controller) closeStream(ctx context.Context, stream Stream) {
	if err := stream.Close(); err != nil {
		c.log.WarnContext(ctx, "camera release failed", slog.String("error", err.Error()))
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Still returns the last captured still while Captured.
func (c *Controller) Still() (*domain.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.still, c.still != nil
}

// Holding reports whether the controller currently owns a device stream.
func (c *Controller) Holding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

func (c *Controller) report(ctx context.Context, msg string, err error) {
	if c.notify == nil || errors.Is(err, context.Canceled) {
		return
	}
	c.notify.Notify(ctx, domain.Notice{Level: domain.NoticeError, Message: msg, Err: err})
}
