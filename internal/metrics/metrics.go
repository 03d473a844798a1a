// Package metrics holds the Prometheus collectors for event syncs, the
// watermark gate and survey submissions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vibecheck"

// Metrics is safe for concurrent use. A nil *Metrics ignores every call.
type Metrics struct {
	registry *prometheus.Registry

	syncs       *prometheus.CounterVec
	upserted    prometheus.Counter
	unmatched   prometheus.Gauge
	syncDur     prometheus.Histogram
	submissions prometheus.Counter
	decisions   *prometheus.CounterVec
}

// New registers the collectors on a private registry along with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.syncs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_syncs_total",
		Help:      "Event syncs by result",
	}, []string{"result"})
	m.upserted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_upserted_total",
		Help:      "Event rows written by syncs",
	})
	m.unmatched = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unmatched_venues",
		Help:      "Distinct venue names without a match in the last sync",
	})
	m.syncDur = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_sync_duration_seconds",
		Help:      "Wall time of event syncs",
		Buckets:   []float64{.25, .5, 1, 2, 5, 10, 20, 40},
	})
	m.submissions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "survey_submissions_total",
		Help:      "Stored survey submissions",
	})
	m.decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_decisions_total",
		Help:      "Watermark gate decisions by reason",
	}, []string{"reason"})

	m.registry.MustRegister(
		m.syncs, m.upserted, m.unmatched, m.syncDur, m.submissions, m.decisions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SyncSucceeded records a completed sync.
func (m *Metrics) SyncSucceeded(rows, unmatched int, took time.Duration) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues("ok").Inc()
	m.upserted.Add(float64(rows))
	m.unmatched.Set(float64(unmatched))
	m.syncDur.Observe(took.Seconds())
}

func (m *Metrics) SyncFailed(took time.Duration) {
	if m == nil {
		return
	}
	m.syncs.WithLabelValues("error").Inc()
	m.syncDur.Observe(took.Seconds())
}

func (m *Metrics) SurveySubmitted() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}

func (m *Metrics) GateDecision(reason string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(reason).Inc()
}
