// Package metrics exposes crawl outcomes as Prometheus counters.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "price_crawler"

// Metrics implements normalize.Sink and records chain run outcomes.
type Metrics struct {
	recordsParsed  *prometheus.CounterVec
	recordsSkipped *prometheus.CounterVec
	groupsSkipped  *prometheus.CounterVec
	storesDropped  *prometheus.CounterVec
	chainRuns      *prometheus.CounterVec
	chainDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil registerer
// leaves them unregistered, which is what tests usually want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recordsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Records normalized into products.",
		}, []string{"chain"}),
		recordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Records skipped during normalization, by reason.",
		}, []string{"chain", "reason"}),
		groupsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_skipped_total",
			Help:      "Record groups that could not be fetched or parsed.",
		}, []string{"chain", "reason"}),
		storesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stores_dropped_total",
			Help:      "Stores dropped because no product survived normalization.",
		}, []string{"chain"}),
		chainRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_runs_total",
			Help:      "Completed chain runs, by outcome.",
		}, []string{"chain", "outcome"}),
		chainDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_run_duration_seconds",
			Help:      "Wall time of one chain run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"chain"}),
	}
	if reg != nil {
		reg.MustRegister(m.recordsParsed, m.recordsSkipped, m.groupsSkipped,
			m.storesDropped, m.chainRuns, m.chainDuration)
	}
	return m
}

func (m *Metrics) RecordParsed(chain string) {
	m.recordsParsed.WithLabelValues(chain).Inc()
}

func (m *Metrics) RecordSkipped(chain, reason string) {
	m.recordsSkipped.WithLabelValues(chain, reason).Inc()
}

func (m *Metrics) GroupSkipped(chain, reason string) {
	m.groupsSkipped.WithLabelValues(chain, reason).Inc()
}

func (m *Metrics) StoreDropped(chain string) {
	m.storesDropped.WithLabelValues(chain).Inc()
}

// ChainRun records one finished chain run. outcome is "ok", "empty" or
// "failed".
func (m *Metrics) ChainRun(chain, outcome string, elapsed time.Duration) {
	m.chainRuns.WithLabelValues(chain, outcome).Inc()
	m.chainDuration.WithLabelValues(chain).Observe(elapsed.Seconds())
}
