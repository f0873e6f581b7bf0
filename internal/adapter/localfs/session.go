// Package localfs persists client state on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// SessionFile stores the serialized session as <dir>/<name>.json.
type SessionFile struct {
	path string
	log  *slog.Logger
}

// NewSessionFile creates a SessionFile. The directory is created on first Save.
func NewSessionFile(dir, name string, logger *slog.Logger) *SessionFile {
	return &SessionFile{
		path: filepath.Join(dir, name+".json"),
		log:  logger.With("adapter", "localfs"),
	}
}

// Path returns the file backing the session.
func (f *SessionFile) Path() string { return f.path }

// Load returns the stored blob, or domain.ErrNotFound when nothing is stored.
func (f *SessionFile) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("localfs: read session: %w", err)
	}
	return data, nil
}

// Save replaces the stored blob atomically.
func (f *SessionFile) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("localfs: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("localfs: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("localfs: write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localfs: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("localfs: replace session: %w", err)
	}

	f.log.DebugContext(ctx, "session saved", slog.String("path", f.path))
	return nil
}

// Delete removes the stored blob. A missing file is not an error.
func (f *SessionFile) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("localfs: delete session: %w", err)
	}
	return nil
}
