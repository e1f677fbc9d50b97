// Package metrics exposes Prometheus collectors for statement parsing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "statement_parser"

// Outcome labels for ParsesTotal.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
	OutcomeTimeout  = "timeout"
	OutcomeRejected = "rejected"
)

// Metrics groups the parse collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry prometheus.Gatherer

	ParsesTotal       *prometheus.CounterVec
	ParseDuration     *prometheus.HistogramVec
	TransactionsTotal *prometheus.CounterVec
	RowsSkippedTotal  *prometheus.CounterVec
	TablesRejected    *prometheus.CounterVec
	StrategyTotal     *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated from the default registry.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ParsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Statement parse requests by institution and outcome.",
		}, []string{"institution", "outcome"}),
		ParseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent extracting transactions from one document.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"institution"}),
		TransactionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions extracted by institution and direction.",
		}, []string{"institution", "direction"}),
		RowsSkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Table rows that did not produce a transaction.",
		}, []string{"institution"}),
		TablesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_rejected_total",
			Help:      "Tables whose header was not recognized.",
		}, []string{"institution"}),
		StrategyTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_total",
			Help:      "Extraction path that produced the transactions of a document.",
		}, []string{"institution", "strategy"}),
	}
}

// ObserveParse records one finished parse.
func (m *Metrics) ObserveParse(institution, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ParsesTotal.WithLabelValues(institution, outcome).Inc()
	m.ParseDuration.WithLabelValues(institution).Observe(elapsed.Seconds())
}

// ObserveResult records what a successful parse produced.
func (m *Metrics) ObserveResult(institution, strategy string, directions map[string]int, rowsSkipped, tablesRejected int) {
	if m == nil {
		return
	}
	for direction, n := range directions {
		m.TransactionsTotal.WithLabelValues(institution, direction).Add(float64(n))
	}
	m.RowsSkippedTotal.WithLabelValues(institution).Add(float64(rowsSkipped))
	m.TablesRejected.WithLabelValues(institution).Add(float64(tablesRejected))
	if strategy == "" {
		strategy = "none"
	}
	m.StrategyTotal.WithLabelValues(institution, strategy).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
