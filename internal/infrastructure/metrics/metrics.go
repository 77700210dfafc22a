package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/gorecon/internal/domain"
)

// Metrics holds the reconciliation Prometheus metrics. It implements the
// run observer consumed by the use case.
type Metrics struct {
	RunsCompleted    prometheus.Counter
	RunDuration      prometheus.Histogram
	RecordsProcessed *prometheus.CounterVec
	MatchesByStage   *prometheus.CounterVec
	MatchRate        prometheus.Gauge
	FindingsBySev    *prometheus.CounterVec
	AmountAtRisk     prometheus.Gauge
}

// New creates all reconciliation metrics and registers them with the
// default registerer. It must only be called once per process; tests
// use NewWith and a fresh registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates metrics registered against the given registerer.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gorecon_runs_completed_total",
			Help: "Total number of completed reconciliation runs",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gorecon_run_duration_seconds",
			Help:    "Duration of reconciliation runs",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		RecordsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gorecon_records_processed_total",
				Help: "Records loaded per source system",
			},
			[]string{"source"},
		),
		MatchesByStage: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gorecon_matches_total",
				Help: "Matches produced per matching stage",
			},
			[]string{"stage"},
		),
		MatchRate: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gorecon_match_rate_percentage",
			Help: "Full chain match rate of the latest run",
		}),
		FindingsBySev: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gorecon_findings_total",
				Help: "Findings raised per severity",
			},
			[]string{"severity"},
		),
		AmountAtRisk: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gorecon_amount_at_risk",
			Help: "Total amount at risk reported by the latest run",
		}),
	}
}

// ObserveRun records the metrics of one completed run.
func (m *Metrics) ObserveRun(summary *domain.ReconciliationSummary) {
	m.RunsCompleted.Inc()
	m.RunDuration.Observe(summary.ProcessingTime.Seconds())

	m.RecordsProcessed.WithLabelValues("pos").Add(float64(summary.Sources.POS))
	m.RecordsProcessed.WithLabelValues("trm").Add(float64(summary.Sources.TRM))
	m.RecordsProcessed.WithLabelValues("mpr_upi").Add(float64(summary.Sources.MPRUPI))
	m.RecordsProcessed.WithLabelValues("mpr_card").Add(float64(summary.Sources.MPRCard))
	m.RecordsProcessed.WithLabelValues("bank").Add(float64(summary.Sources.Bank))

	m.MatchesByStage.WithLabelValues("trm_mpr_upi").Add(float64(summary.Matches.TRMMPRUPI))
	m.MatchesByStage.WithLabelValues("trm_mpr_card").Add(float64(summary.Matches.TRMMPRCard))
	m.MatchesByStage.WithLabelValues("mpr_bank").Add(float64(summary.Matches.MPRBank))
	m.MatchesByStage.WithLabelValues("full_chain").Add(float64(summary.Matches.FullChain))

	m.MatchRate.Set(summary.Financial.MatchRatePercentage)
	m.AmountAtRisk.Set(summary.Financial.TotalAmountAtRisk.InexactFloat64())

	for severity, n := range summary.Findings.BySeverity {
		m.FindingsBySev.WithLabelValues(string(severity)).Add(float64(n))
	}
}
