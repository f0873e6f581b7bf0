package localfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Downloads writes downloaded documents into a single directory.
type Downloads struct {
	dir string
	log *slog.Logger
}

func NewDownloads(dir string, logger *slog.Logger) *Downloads {
	return &Downloads{dir: dir, log: logger.With("adapter", "localfs")}
}

// Save copies r into <dir>/<base name of name> and returns the written path.
// Directory components of name are discarded.
func (d *Downloads) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("localfs: invalid file name %q", name)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("localfs: create dir: %w", err)
	}

	path := filepath.Join(d.dir, base)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("localfs: create %s: %w", base, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("localfs: write %s: %w", base, err)
	}

	d.log.InfoContext(ctx, "file downloaded", slog.String("path", path), slog.Int64("bytes", n))
	return path, nil
}
