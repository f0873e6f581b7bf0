package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsByMethodAndCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClientMetrics(reg)

	ok := Metrics(m)(&stubTransport{status: http.StatusOK})
	failing := Metrics(m)(&stubTransport{err: errors.New("dial tcp: refused")})

	_, _ = ok.RoundTrip(newRequest(http.MethodGet, "http://api.test/a"))
	_, _ = ok.RoundTrip(newRequest(http.MethodGet, "http://api.test/b"))
	_, _ = failing.RoundTrip(newRequest(http.MethodPost, "http://api.test/c"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}
