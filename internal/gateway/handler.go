package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/af-corp/helpdesk-agent/internal/httputil"
	"github.com/af-corp/helpdesk-agent/internal/llm"
	"github.com/af-corp/helpdesk-agent/internal/pipeline"
	"github.com/af-corp/helpdesk-agent/internal/telemetry"
)

// Handler exposes the pipeline over HTTP for serve mode. Each request is
// one independent pipeline run; there is no conversation state.
type Handler struct {
	pipe    *pipeline.Pipeline
	metrics *telemetry.Metrics
}

func NewHandler(pipe *pipeline.Pipeline, metrics *telemetry.Metrics) *Handler {
	return &Handler{pipe: pipe, metrics: metrics}
}

type queryRequest struct {
	Question string `json:"question"`
}

// SupportQuery handles POST /v1/support/query.
func (h *Handler) SupportQuery(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	defer r.Body.Close()

	if req.Question == "" {
		httputil.WriteBadRequestError(w, reqID, "question is required")
		return
	}

	out, err := h.pipe.Run(r.Context(), req.Question)
	if err != nil {
		var invErr *llm.InvocationError
		if errors.As(err, &invErr) {
			h.record(telemetry.RunLabels{State: string(pipeline.StateModelError)})
			httputil.WriteUpstreamError(w, reqID, err.Error())
			return
		}
		slog.Error("pipeline aborted", "request_id", reqID, "error", err)
		httputil.WriteInternalError(w, reqID, err.Error())
		return
	}

	labels := telemetry.RunLabels{State: string(out.State), Repaired: out.Repaired}
	if out.Metrics != nil {
		labels.Model = out.Metrics.Model
		labels.DurationMs = out.Metrics.LatencyMS
		labels.PromptTokens = out.Metrics.PromptTokens
		labels.CompletionTokens = out.Metrics.CompletionTokens
		labels.CostUSD = out.Metrics.EstimatedCostUSD
	}
	h.record(labels)

	if h.metrics != nil {
		switch out.State {
		case pipeline.StateBlockedIngress:
			h.metrics.RecordGateBlock("ingress")
		case pipeline.StateBlockedEgress:
			h.metrics.RecordGateBlock("egress")
		}
	}

	// All terminal states answer with a well-formed AgentResponse.
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Run-ID", out.RunID)
	json.NewEncoder(w).Encode(out.Response)
}

func (h *Handler) record(labels telemetry.RunLabels) {
	if h.metrics != nil {
		h.metrics.RecordRun(labels)
	}
}
