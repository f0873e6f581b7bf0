package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery returns middleware that recovers from panics raised by inner round
// trippers, logs them with a stack trace, and converts them into an error so
// a faulty transport cannot take the whole session down.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (resp *http.Response, err error) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("error", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					resp = nil
					err = fmt.Errorf("transport panic: %v", rec)
				}
			}()
			return next.RoundTrip(r)
		})
	}
}
