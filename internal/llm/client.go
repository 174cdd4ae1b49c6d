package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/af-corp/helpdesk-agent/internal/config"
	"github.com/af-corp/helpdesk-agent/internal/types"
)

// Client is the narrow model-invocation contract the pipeline depends on.
// Nothing above this interface sees provider wire formats.
type Client interface {
	Complete(ctx context.Context, req Request) (*Result, error)
}

// Request is one chat-completion invocation.
type Request struct {
	Model       string
	Messages    []types.Message
	Temperature float64
	MaxTokens   int
}

// Result carries the model output and the usage the provider reported,
// plus the measured wall-clock latency of the call.
type Result struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	LatencyMS        float64
}

// InvocationError reports a failed provider call: transport failure, auth
// failure, or a provider-side error status. Never retried by the client.
type InvocationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *InvocationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model invocation failed: provider returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("model invocation failed: %s", e.Message)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	cfg    func() config.ProviderConfig
	client *http.Client
}

// NewClient builds a client for the configured provider endpoint. cfg is
// read per call so config hot-reload takes effect.
func NewClient(cfg func() config.ProviderConfig) *OpenAIClient {
	c := cfg()
	return &OpenAIClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        c.MaxConcurrent,
				MaxIdleConnsPerHost: c.MaxConcurrent,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// Complete sends one chat-completion request and measures its latency from
// dispatch to response receipt. JSON-object output is always requested.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Result, error) {
	cfg := c.cfg()

	body := chatRequestBody{
		Model:          req.Model,
		Messages:       req.Messages,
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &InvocationError{Message: "marshal request", Err: err}
	}

	url := cfg.BaseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, &InvocationError{Message: "create http request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	for k, v := range cfg.Headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, &InvocationError{Message: "provider request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	latency := time.Since(start)
	if err != nil {
		return nil, &InvocationError{Message: "read provider response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &InvocationError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var parsed chatResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &InvocationError{Message: "unmarshal provider response", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return nil, &InvocationError{Message: "provider returned no choices"}
	}

	return &Result{
		Content:          parsed.Choices[0].Message.Content,
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
		LatencyMS:        float64(latency.Microseconds()) / 1000.0,
	}, nil
}

type chatRequestBody struct {
	Model          string          `json:"model"`
	Messages       []types.Message `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat  `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponseBody struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int           `json:"index"`
		Message      types.Message `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
