// Package studybuddy is the typed HTTP client of the remote StudyBuddy service.
package studybuddy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/studybuddy/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client calls the StudyBuddy REST API. It never retries: a failed call is
// reported once to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client. transport may be nil to use http.DefaultTransport;
// the app passes the middleware chain here.
func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		log:        logger.With("adapter", "studybuddy"),
	}
}

// APIError is a non-success response from the remote service.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return domain.ErrRemote
	}
}

// DetailMessage returns the server-provided detail, suitable for display.
func (e *APIError) DetailMessage() string { return e.Detail }

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// multipartField is one part of a multipart form: either a text value or a file.
type multipartField struct {
	name  string
	value string
	file  *domain.Upload
}

func (c *Client) newMultipartRequest(ctx context.Context, path string, query url.Values, fields []multipartField) (*http.Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range fields {
		if f.file == nil {
			if err := mw.WriteField(f.name, f.value); err != nil {
				return nil, fmt.Errorf("write field %s: %w", f.name, err)
			}
			continue
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.name, f.file.Name))
		ct := f.file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", f.name, err)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", f.name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, query), &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes req and returns the response body of a 2xx response. Any other
// status is converted into an *APIError carrying the server's detail message.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Detail: parseDetail(body)}
	}
	return body, nil
}

// stream executes req and hands back the open body of a 2xx response.
// The caller must close it.
func (c *Client) stream(req *http.Request) (io.ReadCloser, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, &APIError{Status: resp.StatusCode, Detail: parseDetail(body)}
	}
	return resp.Body, nil
}

func decodeObject[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return v, nil
}

// decodeList decodes a JSON array. A well-formed body of another shape (an
// object, null, a string) yields an empty list rather than an error; a
// malformed body is an ErrDecode.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if len(trimmed) > 0 && !json.Valid(trimmed) {
			return nil, fmt.Errorf("%w: malformed body", domain.ErrDecode)
		}
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
