package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/luraaya/factengine/internal/metrics"
)

// MetricsCollector feeds both the /stats counters and the Prometheus
// request counter from one place in the chain.
type MetricsCollector struct {
	requests *atomic.Int64
	errors   *atomic.Int64
	prom     *metrics.Metrics
}

// NewMetricsCollector wires the shared counters. m may be nil.
func NewMetricsCollector(requests, errors *atomic.Int64, m *metrics.Metrics) *MetricsCollector {
	return &MetricsCollector{requests: requests, errors: errors, prom: m}
}

// Middleware counts every request, and as errors those answered with 4xx or 5xx.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requests.Add(1)
		rec := recordStatus(w)
		next.ServeHTTP(rec, r)

		if rec.status >= http.StatusBadRequest {
			mc.errors.Add(1)
		}
		mc.prom.IncrementHTTPRequest(rec.status)
	})
}
