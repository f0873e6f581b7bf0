package studybuddy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

// ScanHandwritten submits an image of handwritten notes for OCR and
// summarization. A response with success=false is returned as-is; the caller
// decides how to report it.
func (c *Client) ScanHandwritten(ctx context.Context, img *domain.Image, email string) (domain.ScanResult, error) {
	query := url.Values{"email": []string{email}}
	req, err := c.newMultipartRequest(ctx, "/studybuddy/notes-from-handwritten-image", query, []multipartField{
		{name: "image", file: img},
	})
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("studybuddy: scan: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("studybuddy: scan: %w", err)
	}

	resp, err := decodeObject[apiScanResponse](body)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("studybuddy: scan: %w", err)
	}

	c.log.DebugContext(ctx, "scan finished",
		slog.Bool("success", resp.Success),
		slog.Int("text_len", len(resp.ExtractedText)),
	)

	return domain.ScanResult{
		Success:       resp.Success,
		ExtractedText: resp.ExtractedText,
		Notes:         resp.Notes,
	}, nil
}

// Ask sends one chat turn and returns the tutor's answer.
func (c *Client) Ask(ctx context.Context, email, question string) (string, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/studybuddy/", nil, apiChatRequest{Email: email, Question: question})
	if err != nil {
		return "", fmt.Errorf("studybuddy: ask: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("studybuddy: ask: %w", err)
	}

	resp, err := decodeObject[apiChatResponse](body)
	if err != nil {
		return "", fmt.Errorf("studybuddy: ask: %w", err)
	}
	if resp.Answer == nil {
		return "", fmt.Errorf("studybuddy: ask: %w: missing answer", domain.ErrDecode)
	}
	return *resp.Answer, nil
}
