package httpserver

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "oashttp"
	metricsSubsystem = "server"

	// unmatchedRoute labels requests no route accepted.
	unmatchedRoute = "unmatched"
)

// Metrics holds the server's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// RequestsTotal counts handled requests.
	// Labels: route (router pattern or "unmatched"), method, status
	RequestsTotal *prometheus.CounterVec

	// AbortsTotal counts aborted sessions.
	// Labels: route, code (error code, or "unknown")
	AbortsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures time spent in the chain and rendering.
	// Labels: route
	RequestDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "requests_total",
				Help:      "Total number of requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		AbortsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "aborts_total",
				Help:      "Total number of aborted sessions by route and error code",
			},
			[]string{"route", "code"},
		),
		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Request handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

func (m *Metrics) observe(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) abort(route, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.AbortsTotal.WithLabelValues(route, code).Inc()
}
