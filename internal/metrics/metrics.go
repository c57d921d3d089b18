// Package metrics exposes fleet counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the fleet's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so packages under test need no registry.
type Metrics struct {
	eventsEmitted   *prometheus.CounterVec
	eventsPersisted *prometheus.CounterVec
	bufferDrained   prometheus.Counter
	bufferDepth     prometheus.Gauge
	scheduleRetries prometheus.Counter
	sessionsRun     *prometheus.CounterVec
	evidenceSent    *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.eventsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointwatch",
		Name:      "events_emitted_total",
		Help:      "Debounced events emitted by the state machines",
	}, []string{"kind"})

	m.eventsPersisted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointwatch",
		Name:      "events_persisted_total",
		Help:      "Events handed to the durable sink, by destination",
	}, []string{"outcome"})

	m.bufferDrained = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pointwatch",
		Name:      "buffer_drained_total",
		Help:      "Buffered events successfully synced to the remote store",
	})

	m.bufferDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pointwatch",
		Name:      "buffer_depth",
		Help:      "Events currently held in the offline buffer",
	})

	m.scheduleRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pointwatch",
		Name:      "schedule_fetch_retries_total",
		Help:      "Failed trading-point schedule fetches",
	})

	m.sessionsRun = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointwatch",
		Name:      "sessions_run_total",
		Help:      "Sampling sessions started, by agent",
	}, []string{"agent"})

	m.evidenceSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pointwatch",
		Name:      "evidence_dispatched_total",
		Help:      "Evidence capture dispatch outcomes",
	}, []string{"result"})

	m.registry.MustRegister(
		m.eventsEmitted, m.eventsPersisted, m.bufferDrained, m.bufferDepth,
		m.scheduleRetries, m.sessionsRun, m.evidenceSent,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EventEmitted counts one debounced event.
func (m *Metrics) EventEmitted(kind string) {
	if m == nil {
		return
	}
	m.eventsEmitted.WithLabelValues(kind).Inc()
}

// EventPersisted counts one sink outcome: remote, buffered or dropped.
func (m *Metrics) EventPersisted(outcome string) {
	if m == nil {
		return
	}
	m.eventsPersisted.WithLabelValues(outcome).Inc()
}

// BufferDrained counts rows synced out of the offline buffer.
func (m *Metrics) BufferDrained(n int) {
	if m == nil {
		return
	}
	m.bufferDrained.Add(float64(n))
}

// BufferDepth records the current offline buffer size.
func (m *Metrics) BufferDepth(n int) {
	if m == nil {
		return
	}
	m.bufferDepth.Set(float64(n))
}

// ScheduleRetry counts one failed schedule fetch.
func (m *Metrics) ScheduleRetry() {
	if m == nil {
		return
	}
	m.scheduleRetries.Inc()
}

// SessionRun counts one sampling session start.
func (m *Metrics) SessionRun(agent string) {
	if m == nil {
		return
	}
	m.sessionsRun.WithLabelValues(agent).Inc()
}

// EvidenceDispatched counts one evidence dispatch result.
func (m *Metrics) EvidenceDispatched(result string) {
	if m == nil {
		return
	}
	m.evidenceSent.WithLabelValues(result).Inc()
}
