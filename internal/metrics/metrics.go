// Package metrics owns the Prometheus collectors and in-process latency windows for
// conversions, sessions and commands.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Direction labels a conversion as import (foreign format to markup) or export.
const (
	DirectionImport = "import"
	DirectionExport = "export"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics groups every collector the service exposes.
type Metrics struct {
	registry *prometheus.Registry

	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	commands    *prometheus.CounterVec
	sessions    prometheus.Gauge
	queueDepth  prometheus.Gauge
	bootTime    prometheus.Gauge

	Stats *ConversionStats
}

// New builds the collectors on a private registry so tests can create as many as they like.
func New(window time.Duration) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docedit",
			Name:      "conversions_total",
			Help:      "Imports and exports by format and outcome",
		}, []string{"direction", "format", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docedit",
			Name:      "conversion_duration_seconds",
			Help:      "Time spent decoding or encoding a document",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"direction", "format"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docedit",
			Name:      "commands_total",
			Help:      "Formatting commands applied to sessions",
		}, []string{"command", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docedit",
			Name:      "sessions_open",
			Help:      "Editing sessions currently held in memory",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docedit",
			Name:      "job_queue_depth",
			Help:      "Jobs waiting for a worker",
		}),
		bootTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docedit",
			Name:      "boot_time",
			Help:      "Server startup time",
		}),
		Stats: NewConversionStats(window),
	}
	m.bootTime.Set(float64(time.Now().UnixMilli()))

	m.registry.MustRegister(
		m.conversions, m.duration, m.commands, m.sessions, m.queueDepth, m.bootTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveConversion records one import or export attempt.
func (m *Metrics) ObserveConversion(direction, format string, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.conversions.WithLabelValues(direction, format, outcome).Inc()
	m.duration.WithLabelValues(direction, format).Observe(elapsed.Seconds())
	m.Stats.Record(direction+":"+format, elapsed.Milliseconds())
}

func (m *Metrics) ObserveCommand(name string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.commands.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) SetSessions(n int) { m.sessions.Set(float64(n)) }

func (m *Metrics) SetQueueDepth(n int) { m.queueDepth.Set(float64(n)) }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and custom gatherers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
