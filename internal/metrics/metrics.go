// Package metrics exposes Prometheus counters for the sync layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the sync layer's collectors. A nil *Metrics is valid and
// records nothing, so components can be built without instrumentation.
type Metrics struct {
	// Registry owns the collectors; the /metrics endpoint serves it.
	Registry *prometheus.Registry

	snapshots          *prometheus.CounterVec
	streamErrors       *prometheus.CounterVec
	activeStreams      *prometheus.GaugeVec
	writes             *prometheus.CounterVec
	propagationUpdates *prometheus.CounterVec
	liveSessions       prometheus.Gauge
}

// New creates a private registry so repeated construction in tests does not
// panic on duplicate registration.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		snapshots: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsync_snapshots_applied_total",
				Help: "Snapshots applied to a state container, by stream.",
			},
			[]string{"stream"},
		),
		streamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsync_stream_errors_total",
				Help: "Subscription streams that stopped with an error, by stream.",
			},
			[]string{"stream"},
		),
		activeStreams: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finsync_active_streams",
				Help: "Currently open subscription streams, by stream.",
			},
			[]string{"stream"},
		),
		writes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsync_writes_total",
				Help: "Repository writes by entity, operation and outcome.",
			},
			[]string{"entity", "operation", "status"},
		),
		propagationUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finsync_currency_propagation_updates_total",
				Help: "Per-document currency updates issued by a propagation, by outcome.",
			},
			[]string{"status"},
		),
		liveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "finsync_live_sessions",
				Help: "Connected websocket sync sessions.",
			},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.liveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.liveSessions.Dec()
}

func (m *Metrics) SnapshotApplied(stream string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(stream).Inc()
}

func (m *Metrics) StreamFailed(stream string) {
	if m == nil {
		return
	}
	m.streamErrors.WithLabelValues(stream).Inc()
}

func (m *Metrics) StreamOpened(stream string) {
	if m == nil {
		return
	}
	m.activeStreams.WithLabelValues(stream).Inc()
}

func (m *Metrics) StreamClosed(stream string) {
	if m == nil {
		return
	}
	m.activeStreams.WithLabelValues(stream).Dec()
}

func (m *Metrics) Write(entity, operation string, err error) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(entity, operation, outcome(err)).Inc()
}

func (m *Metrics) PropagationUpdate(err error) {
	if m == nil {
		return
	}
	m.propagationUpdates.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
