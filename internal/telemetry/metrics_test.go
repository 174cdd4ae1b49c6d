package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	if m.RunTotal == nil {
		t.Error("RunTotal should not be nil")
	}
	if m.RunDurationMs == nil {
		t.Error("RunDurationMs should not be nil")
	}
	if m.TokensTotal == nil {
		t.Error("TokensTotal should not be nil")
	}
	if m.CostUSDTotal == nil {
		t.Error("CostUSDTotal should not be nil")
	}
	if m.GateBlockTotal == nil {
		t.Error("GateBlockTotal should not be nil")
	}
	if m.RepairTotal == nil {
		t.Error("RepairTotal should not be nil")
	}
}

func TestRecordRun(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRun(RunLabels{
		State:            "DONE",
		Model:            "gpt-4o-mini",
		DurationMs:       412.5,
		PromptTokens:     50,
		CompletionTokens: 30,
		CostUSD:          0.0000255,
		Repaired:         true,
	})

	if got := counterValue(t, m.RunTotal.WithLabelValues("DONE")); got != 1 {
		t.Errorf("expected run total 1, got %f", got)
	}
	if got := counterValue(t, m.TokensTotal.WithLabelValues("gpt-4o-mini", "prompt")); got != 50 {
		t.Errorf("expected 50 prompt tokens, got %f", got)
	}
	if got := counterValue(t, m.TokensTotal.WithLabelValues("gpt-4o-mini", "completion")); got != 30 {
		t.Errorf("expected 30 completion tokens, got %f", got)
	}
	if got := counterValue(t, m.RepairTotal); got != 1 {
		t.Errorf("expected repair total 1, got %f", got)
	}
}

func TestRecordRun_BlockedRunSkipsModelSeries(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRun(RunLabels{State: "BLOCKED_INGRESS"})
	m.RecordGateBlock("ingress")

	if got := counterValue(t, m.RunTotal.WithLabelValues("BLOCKED_INGRESS")); got != 1 {
		t.Errorf("expected run total 1, got %f", got)
	}
	if got := counterValue(t, m.GateBlockTotal.WithLabelValues("ingress")); got != 1 {
		t.Errorf("expected gate block total 1, got %f", got)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}
