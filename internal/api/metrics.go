package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records gateway traffic.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewMetrics registers the gateway collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finboard",
				Name:      "backend_requests_total",
				Help:      "Total number of backend requests",
			},
			[]string{"op", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finboard",
				Name:      "backend_request_duration_seconds",
				Help:      "Backend request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"op"},
		),
		inflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "finboard",
				Name:      "backend_requests_in_flight",
				Help:      "Backend requests currently in flight",
			},
		),
	}
}

// begin marks a request as started and returns the function that records its outcome.
func (m *Metrics) begin() func(op, status string, elapsed time.Duration) {
	if m == nil {
		return func(string, string, time.Duration) {}
	}
	m.inflight.Inc()
	return func(op, status string, elapsed time.Duration) {
		m.inflight.Dec()
		m.requests.WithLabelValues(op, status).Inc()
		m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	}
}
