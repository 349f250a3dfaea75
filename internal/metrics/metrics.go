// metrics описывает prometheus-метрики коллектора.
// Все серии регистрируются на переданном Registerer, поэтому в тестах
// можно использовать изолированный prometheus.NewRegistry().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки outcome.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics — набор метрик одного процесса.
type Metrics struct {
	graphRequests   *prometheus.CounterVec
	graphDuration   prometheus.Histogram
	records         *prometheus.CounterVec
	enrichments     *prometheus.CounterVec
	runs            *prometheus.CounterVec
	lastSuccessUnix prometheus.Gauge
}

// New создаёт метрики и регистрирует их на reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		graphRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_graph_requests_total",
			Help: "Graph API requests by kind (object|connection) and outcome.",
		}, []string{"kind", "outcome"}),
		graphDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "collector_graph_request_duration_seconds",
			Help:    "Graph API request latency without the courtesy delay.",
			Buckets: prometheus.DefBuckets,
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_records_total",
			Help: "Records persisted by kind (post|comment).",
		}, []string{"kind"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_enrichments_total",
			Help: "Article enrichment attempts by outcome.",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_runs_total",
			Help: "Collection runs by outcome.",
		}, []string{"outcome"}),
		lastSuccessUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collector_last_success_timestamp_seconds",
			Help: "Unix time of the last successful collection run.",
		}),
	}

	reg.MustRegister(
		m.graphRequests,
		m.graphDuration,
		m.records,
		m.enrichments,
		m.runs,
		m.lastSuccessUnix,
	)

	return m
}

// ObserveGraphRequest учитывает один запрос к Graph API.
func (m *Metrics) ObserveGraphRequest(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.graphRequests.WithLabelValues(kind, outcome).Inc()
	m.graphDuration.Observe(d.Seconds())
}

// RecordSaved учитывает сохранённую запись.
func (m *Metrics) RecordSaved(kind string) {
	if m == nil {
		return
	}

	m.records.WithLabelValues(kind).Inc()
}

// EnrichmentDone учитывает попытку обогащения.
func (m *Metrics) EnrichmentDone(outcome string) {
	if m == nil {
		return
	}

	m.enrichments.WithLabelValues(outcome).Inc()
}

// RunDone учитывает завершённый прогон; при успехе обновляет отметку времени.
func (m *Metrics) RunDone(outcome string, at time.Time) {
	if m == nil {
		return
	}

	m.runs.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		m.lastSuccessUnix.Set(float64(at.Unix()))
	}
}
