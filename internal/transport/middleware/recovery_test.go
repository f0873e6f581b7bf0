package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestRecovery_ConvertsPanicToError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	panicking := RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		panic("boom")
	})

	resp, err := Recovery(logger)(panicking).RoundTrip(newRequest(http.MethodGet, "http://api.test/"))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected error mentioning panic value, got %v", err)
	}
	if resp != nil {
		t.Error("expected nil response after panic")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestRecovery_PassThrough(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	stub := &stubTransport{status: http.StatusOK}

	resp, err := Recovery(logger)(stub).RoundTrip(newRequest(http.MethodGet, "http://api.test/"))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}
}
