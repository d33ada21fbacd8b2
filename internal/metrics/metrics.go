package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for contract computation.
type Metrics struct {
	// Compute outcomes by precision mode ("FULL", "DEGRADED") or error code
	ComputeOutcome *prometheus.CounterVec

	// Full compute latency including ephemeris calls
	ComputeLatency prometheus.Histogram

	// Place directory lookups by result ("hit", "miss", "error")
	PlaceLookups *prometheus.CounterVec

	// HTTP requests by route pattern and status class
	HTTPRequests *prometheus.CounterVec
}

// New registers all metrics with reg. Each registry may only be used once.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ComputeOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factengine_compute_outcomes_total",
			Help: "Total compute outcomes by precision mode or error code",
		}, []string{"outcome"}),

		ComputeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "factengine_compute_duration_seconds",
			Help:    "Duration of contract computation",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),

		PlaceLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factengine_place_lookups_total",
			Help: "Place directory lookups by result",
		}, []string{"result"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "factengine_http_requests_total",
			Help: "HTTP requests by status class",
		}, []string{"class"}),
	}
}

// IncrementOutcome records a compute outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.ComputeOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveComputeLatency records the total compute duration.
func (m *Metrics) ObserveComputeLatency(d time.Duration) {
	if m != nil {
		m.ComputeLatency.Observe(d.Seconds())
	}
}

// IncrementPlaceLookup records a place directory lookup.
func (m *Metrics) IncrementPlaceLookup(result string) {
	if m != nil {
		m.PlaceLookups.WithLabelValues(result).Inc()
	}
}

// IncrementHTTPRequest records a served request by status class ("2xx", ...).
func (m *Metrics) IncrementHTTPRequest(status int) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(statusClass(status)).Inc()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
