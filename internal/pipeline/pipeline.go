// Package pipeline sequences one moderated support-agent run: ingress gate,
// prompt build, model call, schema validation with a single repair retry,
// egress gate, cost estimation, and metrics persistence.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/af-corp/helpdesk-agent/internal/config"
	"github.com/af-corp/helpdesk-agent/internal/cost"
	"github.com/af-corp/helpdesk-agent/internal/llm"
	"github.com/af-corp/helpdesk-agent/internal/metricslog"
	"github.com/af-corp/helpdesk-agent/internal/prompt"
	"github.com/af-corp/helpdesk-agent/internal/safety"
	"github.com/af-corp/helpdesk-agent/internal/schema"
	"github.com/af-corp/helpdesk-agent/internal/types"
)

// State is a terminal pipeline state.
type State string

const (
	StateDone           State = "DONE"
	StateBlockedIngress State = "BLOCKED_INGRESS"
	StateBlockedEgress  State = "BLOCKED_EGRESS"
	StateModelError     State = "MODEL_ERROR"
	StateSchemaFatal    State = "SCHEMA_FATAL"
)

// Outcome is the result of one run that terminated with a structured
// response. Metrics is nil for runs that never reached the model client.
type Outcome struct {
	RunID    string
	State    State
	Response types.AgentResponse
	Metrics  *types.UsageMetrics
	Repaired bool
}

// Pipeline owns one request/response cycle. It is the only component that
// decides whether a metrics record is persisted; persistence goes through
// the injected sink, normally a metricslog.CostGatedSink.
type Pipeline struct {
	ingress   *safety.IngressGate
	egress    *safety.EgressGate
	client    llm.Client
	repairer  *schema.Repairer
	estimator *cost.Estimator
	sink      metricslog.Sink
	agent     func() config.AgentConfig
	logger    *slog.Logger
}

func New(
	ingress *safety.IngressGate,
	egress *safety.EgressGate,
	client llm.Client,
	repairer *schema.Repairer,
	estimator *cost.Estimator,
	sink metricslog.Sink,
	agent func() config.AgentConfig,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		ingress:   ingress,
		egress:    egress,
		client:    client,
		repairer:  repairer,
		estimator: estimator,
		sink:      sink,
		agent:     agent,
		logger:    logger,
	}
}

// Run processes one question to a terminal state. Gate blocks and fatal
// schema failures come back as success=false responses inside a nil-error
// Outcome; a provider failure or price-table gap aborts with a non-nil
// error, since no response can be safely fabricated for those.
func (p *Pipeline) Run(ctx context.Context, question string) (*Outcome, error) {
	runID := uuid.NewString()
	agentCfg := p.agent()

	// Ingress gate
	sanitized, err := p.ingress.Check(question)
	if err != nil {
		var blocked *safety.BlockedError
		if !errors.As(err, &blocked) {
			return nil, err
		}
		resp, stub := safety.BlockedResponse(blocked.Assessment)
		p.logger.Warn("input blocked at ingress",
			"run_id", runID,
			"risk_score", blocked.Assessment.RiskScore,
			"flags", blocked.Assessment.Flags,
		)
		p.persist(runID, stub)
		return &Outcome{RunID: runID, State: StateBlockedIngress, Response: resp, Metrics: &stub}, nil
	}

	// Model call
	payload := prompt.Build(sanitized)
	result, err := p.client.Complete(ctx, llm.Request{
		Model:       agentCfg.Model,
		Messages:    payload.Messages,
		Temperature: agentCfg.Temperature,
		MaxTokens:   agentCfg.MaxTokens,
	})
	if err != nil {
		p.logger.Error("model invocation failed", "run_id", runID, "model", agentCfg.Model, "error", err)
		return nil, err
	}

	promptTokens := result.PromptTokens
	completionTokens := result.CompletionTokens
	latencyMS := result.LatencyMS

	// Validation, with at most one repair call
	repaired := false
	resp, err := schema.Validate(result.Content)
	if err != nil {
		var schemaErr *schema.Error
		if !errors.As(err, &schemaErr) {
			return nil, err
		}
		p.logger.Warn("model output failed validation, repairing",
			"run_id", runID, "reason", schemaErr.Reason)

		repaired = true
		var repairResult *llm.Result
		resp, repairResult, err = p.repairer.Repair(ctx, result.Content, agentCfg.Model)
		if repairResult != nil {
			promptTokens += repairResult.PromptTokens
			completionTokens += repairResult.CompletionTokens
			latencyMS += repairResult.LatencyMS
		}
		if err != nil {
			var invErr *llm.InvocationError
			if errors.As(err, &invErr) {
				p.logger.Error("repair invocation failed", "run_id", runID, "error", err)
				return nil, err
			}
			metrics, costErr := p.buildMetrics(agentCfg.Model, promptTokens, completionTokens, latencyMS)
			if costErr != nil {
				return nil, costErr
			}
			p.logger.Error("repair attempt failed, giving up", "run_id", runID, "error", err)
			p.persist(runID, *metrics)
			return &Outcome{
				RunID:    runID,
				State:    StateSchemaFatal,
				Response: schemaFatalResponse(err),
				Metrics:  metrics,
				Repaired: true,
			}, nil
		}
	}

	metrics, err := p.buildMetrics(agentCfg.Model, promptTokens, completionTokens, latencyMS)
	if err != nil {
		return nil, err
	}

	// Egress gate scans only the answer text, not the JSON envelope.
	if err := p.egress.Check(resp.Answer); err != nil {
		var blocked *safety.BlockedError
		if !errors.As(err, &blocked) {
			return nil, err
		}
		blockedResp, _ := safety.BlockedResponse(blocked.Assessment)
		p.logger.Warn("model answer blocked at egress",
			"run_id", runID,
			"risk_score", blocked.Assessment.RiskScore,
			"flags", blocked.Assessment.Flags,
		)
		p.persist(runID, *metrics)
		return &Outcome{
			RunID:    runID,
			State:    StateBlockedEgress,
			Response: blockedResp,
			Metrics:  metrics,
			Repaired: repaired,
		}, nil
	}

	p.persist(runID, *metrics)
	p.logger.Info("run completed",
		"run_id", runID,
		"model", metrics.Model,
		"prompt_tokens", metrics.PromptTokens,
		"completion_tokens", metrics.CompletionTokens,
		"total_tokens", metrics.TotalTokens,
		"latency_ms", metrics.LatencyMS,
		"estimated_cost_usd", metrics.EstimatedCostUSD,
		"repaired", repaired,
	)
	return &Outcome{
		RunID:    runID,
		State:    StateDone,
		Response: *resp,
		Metrics:  metrics,
		Repaired: repaired,
	}, nil
}

func (p *Pipeline) buildMetrics(model string, promptTokens, completionTokens int, latencyMS float64) (*types.UsageMetrics, error) {
	estimated, err := p.estimator.Estimate(model, promptTokens, completionTokens)
	if err != nil {
		p.logger.Error("cost estimation failed", "model", model, "error", err)
		return nil, err
	}
	return &types.UsageMetrics{
		Model:            model,
		Timestamp:        time.Now().Unix(),
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		LatencyMS:        latencyMS,
		EstimatedCostUSD: estimated,
	}, nil
}

func (p *Pipeline) persist(runID string, m types.UsageMetrics) {
	if err := p.sink.Append(m); err != nil {
		p.logger.Error("failed to persist metrics", "run_id", runID, "error", err)
	}
}

func schemaFatalResponse(err error) types.AgentResponse {
	return types.AgentResponse{
		Answer:     "An error occurred while processing your request.",
		Confidence: 0,
		Actions:    []string{"Contact support"},
		Error:      err.Error(),
		Success:    false,
	}
}
