package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

func TestLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	req := newRequest(http.MethodGet, "http://api.test/student-resources/resources")
	req = req.WithContext(ctxutil.WithOperation(context.Background(), "materials.refresh"))

	if _, err := Logger(logger)(&stubTransport{status: http.StatusOK}).RoundTrip(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logOutput := buf.String()
	for _, want := range []string{"http.client", "GET", "/student-resources/resources", `"status":200`, "duration", "materials.refresh", "INFO"} {
		if !strings.Contains(logOutput, want) {
			t.Errorf("expected log to contain %q, got %q", want, logOutput)
		}
	}
}

func TestLogger_ServerError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, _ = Logger(logger)(&stubTransport{status: http.StatusInternalServerError}).
		RoundTrip(newRequest(http.MethodPost, "http://api.test/notes/"))

	logOutput := buf.String()
	if !strings.Contains(logOutput, `"status":500`) {
		t.Errorf("expected log to contain status 500, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "ERROR") {
		t.Errorf("expected ERROR level for status 500, got %q", logOutput)
	}
}

func TestLogger_TransportError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_, err := Logger(logger)(&stubTransport{err: errors.New("connection refused")}).
		RoundTrip(newRequest(http.MethodGet, "http://api.test/"))
	if err == nil {
		t.Fatal("expected transport error to be returned")
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "connection refused") || !strings.Contains(logOutput, "ERROR") {
		t.Errorf("expected error entry, got %q", logOutput)
	}
}
