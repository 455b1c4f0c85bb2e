// Package metrics exposes pipeline counters in the Prometheus text format.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application metrics on a private registry.
type Metrics struct {
	// Frame counters
	Frames      atomic.Uint64
	FrameErrors atomic.Uint64

	// Live clients
	StreamClients atomic.Int64
	LiveClients   atomic.Int64

	readings *prometheus.CounterVec
	gestures *prometheus.CounterVec
	actions  *prometheus.CounterVec
	estimate prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a Metrics instance with its collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yubi_readings_total",
			Help: "Hand readings by estimation outcome",
		}, []string{"outcome"}),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yubi_gestures_total",
			Help: "Detected hands by gesture label",
		}, []string{"label"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yubi_actions_total",
			Help: "Plugin actions run on gesture changes",
		}, []string{"result"}),
		estimate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "yubi_estimate_seconds",
			Help:    "Time to estimate one hand",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	m.registerPrometheusMetrics()

	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "yubi_frames_total",
			Help: "Total frames read from the sensor",
		},
		func() float64 { return float64(m.Frames.Load()) },
	))

	m.registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "yubi_frame_errors_total",
			Help: "Total frames that failed to read or detect",
		},
		func() float64 { return float64(m.FrameErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "yubi_stream_clients",
			Help: "Connected MJPEG stream clients",
		},
		func() float64 { return float64(m.StreamClients.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "yubi_live_clients",
			Help: "Connected live reading WebSocket clients",
		},
		func() float64 { return float64(m.LiveClients.Load()) },
	))

	m.registry.MustRegister(m.readings, m.gestures, m.actions, m.estimate)
}

// ObserveReading records one hand estimate. label is ignored unless the
// hand was detected.
func (m *Metrics) ObserveReading(outcome, label string, elapsed time.Duration) {
	m.readings.WithLabelValues(outcome).Inc()
	m.estimate.Observe(elapsed.Seconds())
	if outcome == "detected" && label != "" {
		m.gestures.WithLabelValues(label).Inc()
	}
}

// ObserveAction records a plugin run.
func (m *Metrics) ObserveAction(err error) {
	if err != nil {
		m.actions.WithLabelValues("error").Inc()
		return
	}
	m.actions.WithLabelValues("ok").Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
