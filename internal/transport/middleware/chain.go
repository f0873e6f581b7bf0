package middleware

import "net/http"

// Middleware wraps an http.RoundTripper used by the outbound API client.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain combines multiple middleware into a single Middleware.
// Middleware are applied in the order given: Chain(mw1, mw2)(transport)
// results in mw1(mw2(transport)), so mw1 sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(final http.RoundTripper) http.RoundTripper {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}

// cloneRequest returns a shallow copy of r with its own header map, so a
// round tripper can add headers without mutating the caller's request.
func cloneRequest(r *http.Request) *http.Request {
	return r.Clone(r.Context())
}
