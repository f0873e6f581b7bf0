// Package camera provides still-frame sources for the capture flow. A Device
// is exclusive: at most one Stream is open at a time and the device is free
// again once that Stream is closed.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // decode .jpg sources
	_ "image/png"  // decode .png sources
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// Device is a camera backed by an image file. With an empty path it produces
// a generated test pattern instead.
type Device struct {
	path string
	log  *slog.Logger

	mu    sync.Mutex
	inUse bool
	opens atomic.Int64
}

func NewDevice(path string, logger *slog.Logger) *Device {
	return &Device{path: path, log: logger.With("adapter", "camera")}
}

// Open acquires the device. It fails with domain.ErrDeviceBusy while another
// stream is open and with domain.ErrDeviceDenied when the source is missing
// or unreadable.
func (d *Device) Open(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inUse {
		return nil, fmt.Errorf("camera: %w", domain.ErrDeviceBusy)
	}

	var src []byte
	if d.path != "" {
		data, err := os.ReadFile(d.path)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("camera: open %s: %w", d.path, domain.ErrDeviceDenied)
		}
		if err != nil {
			return nil, fmt.Errorf("camera: open %s: %w", d.path, err)
		}
		src = data
	}

	d.inUse = true
	d.opens.Add(1)
	d.log.DebugContext(ctx, "camera acquired", slog.String("source", d.source()))
	return &Stream{dev: d, src: src}, nil
}

// InUse reports whether a stream currently holds the device.
func (d *Device) InUse() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inUse
}

// Opens returns how many times the device has been acquired.
func (d *Device) Opens() int64 { return d.opens.Load() }

func (d *Device) release() {
	d.mu.Lock()
	d.inUse = false
	d.mu.Unlock()
	d.log.Debug("camera released", slog.String("source", d.source()))
}

func (d *Device) source() string {
	if d.path == "" {
		return "test-pattern"
	}
	return d.path
}

// Stream is an open handle on a Device.
type Stream struct {
	dev    *Device
	src    []byte
	frames int
	once   sync.Once
	closed atomic.Bool
}

// Frame returns the current frame.
func (s *Stream) Frame() (image.Image, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("camera: frame: %w", domain.ErrInvalidState)
	}
	s.frames++
	if s.src == nil {
		return testPattern(s.frames), nil
	}
	img, _, err := image.Decode(bytes.NewReader(s.src))
	if err != nil {
		return nil, fmt.Errorf("camera: decode frame: %w", err)
	}
	return img, nil
}

// Close releases the device. Subsequent calls are no-ops.
func (s *Stream) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.dev.release()
	})
	return nil
}

func testPattern(seq int) image.Image {
	const w, h = 64, 48
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: uint8(seq * 16), A: 0xff})
		}
	}
	return img
}
