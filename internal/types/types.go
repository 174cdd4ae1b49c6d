package types

// RiskAssessment is the outcome of one detector pass over a text blob.
// Value object: built once per gate invocation and never mutated.
type RiskAssessment struct {
	RiskScore float64  `json:"risk_score"`
	Flags     []string `json:"flags"`
	Blocked   bool     `json:"blocked"`
}

// AgentResponse is the structured answer produced for every pipeline run.
// Invariant: Answer is non-empty when Success is true; Error is set and
// Success is false on every failure path.
type AgentResponse struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Actions    []string `json:"actions"`
	Error      string   `json:"error,omitempty"`
	Success    bool     `json:"success"`
}

// UsageMetrics records token usage, latency and estimated cost for one run.
// At most one is created per run; repair-call figures are summed in before
// it is sealed.
type UsageMetrics struct {
	Model            string  `json:"model"`
	Timestamp        int64   `json:"timestamp"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	LatencyMS        float64 `json:"latency_ms"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// Message is a single chat message in provider wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
