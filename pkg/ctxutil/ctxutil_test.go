package ctxutil

import (
	"context"
	"testing"
)

func TestRequestID_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Fatalf("expected %q, got %q", "req-123", got)
	}
}

func TestRequestIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestOperation_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithOperation(context.Background(), "notes.refresh")
	if got := OperationFromCtx(ctx); got != "notes.refresh" {
		t.Fatalf("expected %q, got %q", "notes.refresh", got)
	}
	if got := OperationFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty operation, got %q", got)
	}
}

func TestKeys_DoNotCollide(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(context.Background(), "rid")
	ctx = WithOperation(ctx, "op")

	if RequestIDFromCtx(ctx) != "rid" || OperationFromCtx(ctx) != "op" {
		t.Fatal("request id and operation must be stored independently")
	}
}
