package studybuddy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// ListNotes returns the notes owned by userID.
func (c *Client) ListNotes(ctx context.Context, userID int64) ([]domain.Note, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/notes/"+strconv.FormatInt(userID, 10), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list notes: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list notes: %w", err)
	}
	items, err := decodeList[apiNote](body)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: list notes: %w", err)
	}

	out := make([]domain.Note, 0, len(items))
	for _, it := range items {
		out = append(out, it.toDomain())
	}
	return out, nil
}

// UploadNote uploads a note as multipart form (note_name, user_id, file).
func (c *Client) UploadNote(ctx context.Context, userID int64, d domain.NoteDraft) error {
	req, err := c.newMultipartRequest(ctx, "/notes/", nil, []multipartField{
		{name: "note_name", value: d.NoteName},
		{name: "user_id", value: strconv.FormatInt(userID, 10)},
		{name: "file", file: d.File},
	})
	if err != nil {
		return fmt.Errorf("studybuddy: upload note: %w", err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: upload note: %w", err)
	}
	return nil
}

// DeleteNote deletes a note.
func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	req, err := c.newJSONRequest(ctx, http.MethodDelete, "/notes/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return fmt.Errorf("studybuddy: delete note %d: %w", id, err)
	}
	if _, err := c.do(req); err != nil {
		return fmt.Errorf("studybuddy: delete note %d: %w", id, err)
	}
	return nil
}

// DownloadNote streams the binary content of a note.
func (c *Client) DownloadNote(ctx context.Context, id int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/notes/download/"+strconv.FormatInt(id, 10), nil), nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: download note %d: %w", id, err)
	}
	rc, err := c.stream(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: download note %d: %w", id, err)
	}
	return rc, nil
}

// SuggestedVideos returns video suggestions derived from a note.
func (c *Client) SuggestedVideos(ctx context.Context, noteID int64) ([]domain.SuggestedVideo, error) {
	req, err := c.newJSONRequest(ctx, http.MethodGet, "/suggest/suggested-videos/"+strconv.FormatInt(noteID, 10), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: suggested videos: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: suggested videos: %w", err)
	}
	items, err := decodeList[apiVideo](body)
	if err != nil {
		return nil, fmt.Errorf("studybuddy: suggested videos: %w", err)
	}

	out := make([]domain.SuggestedVideo, 0, len(items))
	for _, it := range items {
		out = append(out, it.toDomain())
	}

	c.log.DebugContext(ctx, "suggested videos", slog.Int64("note_id", noteID), slog.Int("count", len(out)))
	return out, nil
}
