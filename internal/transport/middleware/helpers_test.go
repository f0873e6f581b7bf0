package middleware

import (
	"io"
	"net/http"
	"strings"
)

// stubTransport returns a fixed status and records the last request it saw.
type stubTransport struct {
	status int
	err    error
	last   *http.Request
	calls  int
}

func (s *stubTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	s.calls++
	s.last = r
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     make(http.Header),
		Request:    r,
	}, nil
}

func newRequest(method, url string) *http.Request {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		panic(err)
	}
	return req
}
