package schema

import (
	"context"
	"encoding/json"

	"github.com/af-corp/helpdesk-agent/internal/config"
	"github.com/af-corp/helpdesk-agent/internal/llm"
	"github.com/af-corp/helpdesk-agent/internal/types"
)

const repairSystemPrompt = "Fix invalid JSON. Output only valid JSON with the fields: " +
	"answer (string), confidence (number 0-100), actions (array of strings)"

// Defaults filled into a repaired object when the model still omits fields.
const (
	fallbackAnswer = "Unable to process request"
	fallbackAction = "Escalate to human agent"
)

// Repairer issues the single schema-repair model call for malformed output.
type Repairer struct {
	client llm.Client
	agent  func() config.AgentConfig
}

func NewRepairer(client llm.Client, agent func() config.AgentConfig) *Repairer {
	return &Repairer{client: client, agent: agent}
}

// Repair asks the model to reformat raw into schema-conforming JSON and
// re-validates the result. Missing fields in the repaired object get
// fallback values before validation. A second schema failure is fatal; a
// provider failure propagates as *llm.InvocationError.
func (r *Repairer) Repair(ctx context.Context, raw, model string) (*types.AgentResponse, *llm.Result, error) {
	cfg := r.agent()
	res, err := r.client.Complete(ctx, llm.Request{
		Model: model,
		Messages: []types.Message{
			{Role: "system", Content: repairSystemPrompt},
			{Role: "user", Content: raw},
		},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
	if err != nil {
		return nil, nil, err
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(res.Content), &m); err != nil {
		return nil, res, &Error{Reason: "repair produced invalid JSON: " + err.Error(), RawText: res.Content, Err: err}
	}
	if _, ok := m["answer"]; !ok {
		m["answer"] = fallbackAnswer
	}
	if _, ok := m["confidence"]; !ok {
		m["confidence"] = float64(0)
	}
	if _, ok := m["actions"]; !ok {
		m["actions"] = []any{fallbackAction}
	}

	resp, err := fromMap(m, res.Content)
	if err != nil {
		return nil, res, err
	}
	return resp, res, nil
}
