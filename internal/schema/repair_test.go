package schema

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/af-corp/helpdesk-agent/internal/config"
	"github.com/af-corp/helpdesk-agent/internal/llm"
)

type stubClient struct {
	results []*llm.Result
	errs    []error
	calls   int
	lastReq llm.Request
}

func (s *stubClient) Complete(_ context.Context, req llm.Request) (*llm.Result, error) {
	s.lastReq = req
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.results[i], nil
}

func agentCfg() func() config.AgentConfig {
	return func() config.AgentConfig {
		return config.AgentConfig{Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 150}
	}
}

func TestRepair_ReformatsInvalidJSON(t *testing.T) {
	stub := &stubClient{results: []*llm.Result{
		{Content: `{"answer":"fixed","confidence":80,"actions":["a"]}`, PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30},
	}}
	r := NewRepairer(stub, agentCfg())

	resp, res, err := r.Repair(context.Background(), "{broken", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if resp.Answer != "fixed" {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if res.TotalTokens != 30 {
		t.Errorf("repair usage must be reported, got %+v", res)
	}
	if stub.calls != 1 {
		t.Errorf("expected exactly one repair call, got %d", stub.calls)
	}
	if !strings.Contains(stub.lastReq.Messages[0].Content, "Fix invalid JSON") {
		t.Errorf("repair prompt must instruct JSON fixing, got %q", stub.lastReq.Messages[0].Content)
	}
	if stub.lastReq.Messages[1].Content != "{broken" {
		t.Errorf("repair call must carry the raw malformed text, got %q", stub.lastReq.Messages[1].Content)
	}
}

func TestRepair_FillsMissingFields(t *testing.T) {
	stub := &stubClient{results: []*llm.Result{
		{Content: `{"confidence":50}`, PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10},
	}}
	r := NewRepairer(stub, agentCfg())

	resp, _, err := r.Repair(context.Background(), "{broken", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if resp.Answer != fallbackAnswer {
		t.Errorf("expected fallback answer, got %q", resp.Answer)
	}
	if len(resp.Actions) != 1 || resp.Actions[0] != fallbackAction {
		t.Errorf("expected fallback action, got %v", resp.Actions)
	}
}

func TestRepair_SecondFailureIsFatal(t *testing.T) {
	stub := &stubClient{results: []*llm.Result{
		{Content: "still not json", PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10},
	}}
	r := NewRepairer(stub, agentCfg())

	_, res, err := r.Repair(context.Background(), "{broken", "gpt-4o-mini")
	var schemaErr *Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if res == nil || res.TotalTokens != 10 {
		t.Error("failed repair must still report its token usage")
	}
}

func TestRepair_ProviderFailurePropagates(t *testing.T) {
	stub := &stubClient{errs: []error{&llm.InvocationError{Message: "boom"}}}
	r := NewRepairer(stub, agentCfg())

	_, _, err := r.Repair(context.Background(), "{broken", "gpt-4o-mini")
	var invErr *llm.InvocationError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected *llm.InvocationError, got %v", err)
	}
}
