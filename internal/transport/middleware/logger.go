package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

// Logger returns middleware that logs each outbound HTTP call with method,
// path, status code, duration, and context identifiers (request_id, operation).
func Logger(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			duration := time.Since(start)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", duration),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			}
			if op := ctxutil.OperationFromCtx(r.Context()); op != "" {
				attrs = append(attrs, slog.String("operation", op))
			}

			level := slog.LevelInfo
			switch {
			case err != nil:
				level = slog.LevelError
				attrs = append(attrs, slog.String("error", err.Error()))
			case resp.StatusCode >= 500:
				level = slog.LevelError
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
			case resp.StatusCode >= 400:
				level = slog.LevelWarn
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
			default:
				attrs = append(attrs, slog.Int("status", resp.StatusCode))
			}
			logger.LogAttrs(r.Context(), level, "http.client", attrs...)

			return resp, err
		})
	}
}
