package middleware

import (
	"net/http"
	"testing"
)

func TestAuth_AttachesBearerToken(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	rt := Auth(func() string { return "T" })(stub)

	orig := newRequest(http.MethodGet, "http://api.test/notes/7")
	if _, err := rt.RoundTrip(orig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := stub.last.Header.Get("Authorization"); got != "Bearer T" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer T")
	}
	if orig.Header.Get("Authorization") != "" {
		t.Error("caller's request must not be mutated")
	}
}

func TestAuth_Anonymous(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	rt := Auth(func() string { return "" })(stub)

	if _, err := rt.RoundTrip(newRequest(http.MethodGet, "http://api.test/resources")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := stub.last.Header.Get("Authorization"); got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestAuth_ReadsTokenPerRequest(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	token := "first"
	rt := Auth(func() string { return token })(stub)

	_, _ = rt.RoundTrip(newRequest(http.MethodGet, "http://api.test/a"))
	token = ""
	_, _ = rt.RoundTrip(newRequest(http.MethodGet, "http://api.test/b"))

	if got := stub.last.Header.Get("Authorization"); got != "" {
		t.Errorf("token cleared after logout, got header %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	stub := &stubTransport{status: http.StatusOK}
	rt := UserAgent("studybuddy-cli")(stub)

	_, _ = rt.RoundTrip(newRequest(http.MethodGet, "http://api.test/"))
	if got := stub.last.Header.Get("User-Agent"); got != "studybuddy-cli" {
		t.Errorf("User-Agent = %q", got)
	}
}
