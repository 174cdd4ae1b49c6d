package safety

import (
	"errors"
	"strings"
	"testing"

	"github.com/af-corp/helpdesk-agent/internal/types"
)

func TestIngressGate_PassesBenignInput(t *testing.T) {
	g := NewIngressGate(testDetector())
	out, err := g.Check("What payment options do you have?")
	if err != nil {
		t.Fatalf("unexpected block: %v", err)
	}
	if out != "What payment options do you have?" {
		t.Errorf("input must pass through unchanged, got %q", out)
	}
}

func TestIngressGate_BlocksProfanity(t *testing.T) {
	g := NewIngressGate(testDetector())
	_, err := g.Check("Who the fuck is this?")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *BlockedError, got %v", err)
	}
	if blocked.Gate != ContextIngress {
		t.Errorf("expected ingress gate, got %s", blocked.Gate)
	}
	if !strings.Contains(blocked.Error(), CategoryProfanity) {
		t.Errorf("error message must list flagged patterns, got %q", blocked.Error())
	}
	if !strings.Contains(blocked.Error(), "risk score: 0.80") {
		t.Errorf("error message must carry the two-decimal score, got %q", blocked.Error())
	}
}

func TestEgressGate_BlocksUnsafeAnswer(t *testing.T) {
	g := NewEgressGate(testDetector())
	err := g.Check("That is a damn shitty question, fuck off.")
	var blocked *BlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *BlockedError, got %v", err)
	}
	if blocked.Gate != ContextEgress {
		t.Errorf("expected egress gate, got %s", blocked.Gate)
	}
}

func TestEgressGate_PassesCleanAnswer(t *testing.T) {
	g := NewEgressGate(testDetector())
	if err := g.Check("We accept credit cards and PayPal."); err != nil {
		t.Fatalf("unexpected block: %v", err)
	}
}

func TestBlockedResponse_Shape(t *testing.T) {
	a := types.RiskAssessment{
		RiskScore: 0.8,
		Flags:     []string{CategoryProfanity},
		Blocked:   true,
	}
	resp, metrics := BlockedResponse(a)

	if resp.Success {
		t.Error("blocked response must have success=false")
	}
	if resp.Confidence != 100 {
		t.Errorf("expected confidence 100, got %f", resp.Confidence)
	}
	if len(resp.Actions) != 0 {
		t.Errorf("expected empty actions, got %v", resp.Actions)
	}
	if resp.Answer != resp.Error {
		t.Error("answer and error must carry the same block message")
	}
	if !strings.Contains(resp.Error, "profanity_detected") {
		t.Errorf("expected flag in error, got %q", resp.Error)
	}

	if metrics.Model != "safety_check" {
		t.Errorf("expected model safety_check, got %q", metrics.Model)
	}
	if metrics.PromptTokens != 0 || metrics.CompletionTokens != 0 || metrics.TotalTokens != 0 {
		t.Error("blocked metrics stub must have zero token counts")
	}
	if metrics.LatencyMS != 0 || metrics.EstimatedCostUSD != 0 {
		t.Error("blocked metrics stub must have zero latency and cost")
	}
}
