// Package schema parses and validates model output against the agent
// response schema, and recovers malformed output with a single repair call.
package schema

import (
	"encoding/json"

	"github.com/af-corp/helpdesk-agent/internal/types"
)

// Error reports a JSON parse failure or schema violation. RawText carries
// the offending model output for the repair call.
type Error struct {
	Reason  string
	RawText string
	Err     error
}

func (e *Error) Error() string {
	return "schema validation failed: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Validate strictly parses raw model output. Required: answer (non-empty
// string) and confidence (number in [0,100]). A missing or mistyped actions
// field defaults to an empty list.
func Validate(raw string) (*types.AgentResponse, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, &Error{Reason: "invalid JSON: " + err.Error(), RawText: raw, Err: err}
	}
	return fromMap(m, raw)
}

func fromMap(m map[string]any, raw string) (*types.AgentResponse, error) {
	answer, ok := m["answer"].(string)
	if !ok {
		return nil, &Error{Reason: "field 'answer' must be a string", RawText: raw}
	}
	if answer == "" {
		return nil, &Error{Reason: "field 'answer' must not be empty", RawText: raw}
	}

	confidence, ok := m["confidence"].(float64)
	if !ok {
		return nil, &Error{Reason: "field 'confidence' must be a number", RawText: raw}
	}
	if confidence < 0 || confidence > 100 {
		return nil, &Error{Reason: "field 'confidence' must be between 0 and 100", RawText: raw}
	}

	actions := []string{}
	if list, ok := m["actions"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				actions = append(actions, s)
			}
		}
	}

	return &types.AgentResponse{
		Answer:     answer,
		Confidence: confidence,
		Actions:    actions,
		Success:    true,
	}, nil
}
