package prompt

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuild_MessageShape(t *testing.T) {
	p := Build("Where is my order?")
	if len(p.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(p.Messages))
	}
	if p.Messages[0].Role != "system" || p.Messages[1].Role != "user" {
		t.Errorf("unexpected roles: %s, %s", p.Messages[0].Role, p.Messages[1].Role)
	}
	if p.Messages[1].Content != "Where is my order?" {
		t.Errorf("question must be embedded verbatim, got %q", p.Messages[1].Content)
	}
}

func TestBuild_SystemPromptContainsExamples(t *testing.T) {
	p := Build("anything")
	sys := p.Messages[0].Content
	if !strings.Contains(sys, "confidence") || !strings.Contains(sys, "actions") {
		t.Error("system prompt must describe the response schema")
	}
	if strings.Count(sys, "Q:") < 2 {
		t.Error("system prompt must carry the few-shot examples")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build("What payment options do you have?")
	b := Build("What payment options do you have?")
	if !reflect.DeepEqual(a, b) {
		t.Error("Build must be deterministic for identical input")
	}
}
