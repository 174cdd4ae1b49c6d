package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the helpdesk agent.
type Metrics struct {
	RunTotal       *prometheus.CounterVec
	RunDurationMs  *prometheus.HistogramVec
	TokensTotal    *prometheus.CounterVec
	CostUSDTotal   *prometheus.CounterVec
	GateBlockTotal *prometheus.CounterVec
	RepairTotal    prometheus.Counter
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_run_total",
			Help: "Total pipeline runs by terminal state.",
		}, []string{"state"}),

		RunDurationMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_run_duration_ms",
			Help:    "Model-call latency per run in milliseconds, repair included.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"model"}),

		TokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_tokens_total",
			Help: "Total tokens processed.",
		}, []string{"model", "direction"}),

		CostUSDTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_cost_usd_total",
			Help: "Estimated total cost in USD.",
		}, []string{"model"}),

		GateBlockTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_gate_block_total",
			Help: "Runs blocked by a safety gate. Counts the adversarial attempts the cost-gated metrics log drops.",
		}, []string{"gate"}),

		RepairTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_repair_total",
			Help: "Runs that needed the schema-repair model call.",
		}),
	}
}

// RunLabels holds the values recorded for one completed run.
type RunLabels struct {
	State            string
	Model            string
	DurationMs       float64
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
	Repaired         bool
}

// RecordRun records metrics for one terminal pipeline run.
func (m *Metrics) RecordRun(labels RunLabels) {
	m.RunTotal.WithLabelValues(labels.State).Inc()

	if labels.Model != "" {
		m.RunDurationMs.WithLabelValues(labels.Model).Observe(labels.DurationMs)
	}
	if labels.PromptTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Model, "prompt").Add(float64(labels.PromptTokens))
	}
	if labels.CompletionTokens > 0 {
		m.TokensTotal.WithLabelValues(labels.Model, "completion").Add(float64(labels.CompletionTokens))
	}
	if labels.CostUSD > 0 {
		m.CostUSDTotal.WithLabelValues(labels.Model).Add(labels.CostUSD)
	}
	if labels.Repaired {
		m.RepairTotal.Inc()
	}
}

// RecordGateBlock counts one blocked run on the given gate.
func (m *Metrics) RecordGateBlock(gate string) {
	m.GateBlockTotal.WithLabelValues(gate).Inc()
}
