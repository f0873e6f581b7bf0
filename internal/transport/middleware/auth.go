package middleware

import "net/http"

// TokenSource returns the bearer token of the current session, or "" when
// nobody is logged in. It is read on every request, never cached.
type TokenSource func() string

// Auth attaches "Authorization: Bearer <token>" when a session token exists.
// Requests that already carry an Authorization header are left untouched.
func Auth(tokens TokenSource) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("Authorization") != "" {
				return next.RoundTrip(r)
			}
			token := tokens()
			if token == "" {
				return next.RoundTrip(r) // Anonymous
			}
			req := cloneRequest(r)
			req.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(req)
		})
	}
}

// UserAgent sets the User-Agent header on every request.
func UserAgent(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if ua == "" {
				return next.RoundTrip(r)
			}
			req := cloneRequest(r)
			req.Header.Set("User-Agent", ua)
			return next.RoundTrip(req)
		})
	}
}
