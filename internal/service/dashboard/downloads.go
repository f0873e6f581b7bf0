package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/heartmarshall/studybuddy/internal/domain"
	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

// DownloadMaterial saves a listed material locally and returns the path.
func (d *Dashboard) DownloadMaterial(ctx context.Context, id int64) (string, error) {
	m, ok := d.Materials.Find(id)
	if !ok {
		return "", fmt.Errorf("download material %d: %w", id, domain.ErrNotFound)
	}
	ctx = ctxutil.WithOperation(ctx, "materials.download")
	return d.download(ctx, fileName(m.FileName, m.Title, id), func() (io.ReadCloser, error) {
		return d.api.DownloadMaterial(ctx, id)
	})
}

// DownloadNote saves a listed note locally and returns the path.
func (d *Dashboard) DownloadNote(ctx context.Context, id int64) (string, error) {
	n, ok := d.Notes.Find(id)
	if !ok {
		return "", fmt.Errorf("download note %d: %w", id, domain.ErrNotFound)
	}
	ctx = ctxutil.WithOperation(ctx, "notes.download")
	return d.download(ctx, fileName(n.FileName, n.NoteName, id), func() (io.ReadCloser, error) {
		return d.api.DownloadNote(ctx, id)
	})
}

func (d *Dashboard) download(ctx context.Context, name string, open func() (io.ReadCloser, error)) (string, error) {
	body, err := open()
	if err != nil {
		d.log.WarnContext(ctx, "download failed", slog.String("name", name), slog.String("error", err.Error()))
		d.notice(ctx, domain.NoticeError, "Download failed", err)
		return "", err
	}
	defer body.Close()

	saved, err := d.downloads.Save(ctx, name, body)
	if err != nil {
		d.notice(ctx, domain.NoticeError, "Download failed", err)
		return "", err
	}
	d.notice(ctx, domain.NoticeInfo, "Saved "+saved, nil)
	return saved, nil
}

// fileName prefers the stored file path's base name, then the title.
func fileName(stored, title string, id int64) string {
	if base := path.Base(strings.ReplaceAll(stored, "\\", "/")); stored != "" && base != "." && base != "/" {
		return base
	}
	if strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return fmt.Sprintf("download-%d", id)
}

// detailOr returns the server-provided detail of err, or fallback.
func detailOr(err error, fallback string) string {
	var d interface{ DetailMessage() string }
	if errors.As(err, &d) && d.DetailMessage() != "" {
		return d.DetailMessage()
	}
	return fallback
}
