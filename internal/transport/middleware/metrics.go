package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ClientMetrics holds the collectors updated by the Metrics middleware.
type ClientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewClientMetrics registers the outbound request collectors on reg.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	f := promauto.With(reg)
	return &ClientMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studybuddy",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outbound requests to the StudyBuddy API by method and status code.",
		}, []string{"method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "studybuddy",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound requests to the StudyBuddy API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Metrics records request counts and latencies. Transport errors are counted
// with code "error".
func Metrics(m *ClientMetrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)
			m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.requests.WithLabelValues(r.Method, code).Inc()
			return resp, err
		})
	}
}
