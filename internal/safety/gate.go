package safety

import (
	"fmt"
	"strings"
	"time"

	"github.com/af-corp/helpdesk-agent/internal/types"
)

// BlockedError reports that a gate rejected the text it scanned.
type BlockedError struct {
	Gate       Context
	Assessment types.RiskAssessment
}

func (e *BlockedError) Error() string {
	return BlockMessage(e.Assessment)
}

// BlockMessage renders the user-visible message for a blocked assessment.
func BlockMessage(a types.RiskAssessment) string {
	return fmt.Sprintf(
		"Potential adversarial prompt detected with risk score: %.2f. Flagged patterns: %s",
		a.RiskScore, strings.Join(a.Flags, ", "),
	)
}

// IngressGate scans raw user input before it reaches the model.
type IngressGate struct {
	detector *Detector
}

func NewIngressGate(detector *Detector) *IngressGate {
	return &IngressGate{detector: detector}
}

// Check returns the input unchanged when it passes, or a *BlockedError
// carrying the assessment when it does not.
func (g *IngressGate) Check(raw string) (string, error) {
	a := g.detector.Assess(raw, ContextIngress)
	if a.Blocked {
		return "", &BlockedError{Gate: ContextIngress, Assessment: a}
	}
	return raw, nil
}

// EgressGate scans the model's validated answer text before it is returned.
type EgressGate struct {
	detector *Detector
}

func NewEgressGate(detector *Detector) *EgressGate {
	return &EgressGate{detector: detector}
}

func (g *EgressGate) Check(answer string) error {
	a := g.detector.Assess(answer, ContextEgress)
	if a.Blocked {
		return &BlockedError{Gate: ContextEgress, Assessment: a}
	}
	return nil
}

// BlockedResponse builds the failure AgentResponse and the zero-usage
// metrics stub for a blocked run. The stub is never persisted: the
// cost-gated logging policy only keeps runs with a positive cost.
func BlockedResponse(a types.RiskAssessment) (types.AgentResponse, types.UsageMetrics) {
	msg := BlockMessage(a)
	resp := types.AgentResponse{
		Answer:     msg,
		Confidence: 100,
		Actions:    []string{},
		Error:      msg,
		Success:    false,
	}
	metrics := types.UsageMetrics{
		Model:     "safety_check",
		Timestamp: time.Now().Unix(),
	}
	return resp, metrics
}
