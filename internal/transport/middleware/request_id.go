package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/heartmarshall/studybuddy/pkg/ctxutil"
)

// RequestIDHeader is the header carrying the correlation id.
const RequestIDHeader = "X-Request-Id"

// RequestID tags every outbound request with a correlation id. An id already
// present in the request context is reused; otherwise a new UUID is generated.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			id := ctxutil.RequestIDFromCtx(r.Context())
			if id == "" {
				id = uuid.New().String()
			}
			req := cloneRequest(r)
			req = req.WithContext(ctxutil.WithRequestID(req.Context(), id))
			req.Header.Set(RequestIDHeader, id)
			return next.RoundTrip(req)
		})
	}
}
