// Package metricslog persists per-run usage metrics to an append-only
// JSON-lines log. The sink is an injected collaborator so tests can
// substitute an in-memory one.
package metricslog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/af-corp/helpdesk-agent/internal/types"
)

// Sink appends one UsageMetrics record per persisted run.
type Sink interface {
	Append(m types.UsageMetrics) error
}

// FileSink appends JSON lines to a file. O_APPEND writes keep the log
// consistent under the single-writer assumption.
type FileSink struct {
	path func() string
	mu   sync.Mutex
}

func NewFileSink(path func() string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Append(m types.UsageMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics log %s: %w", path, err)
	}
	defer f.Close()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal metrics record: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append metrics record: %w", err)
	}
	return nil
}

// CostGatedSink implements the cost-gated logging policy: a run is
// persisted iff its estimated cost is positive. Blocked and zero-cost runs
// build a metrics value but never reach the underlying sink. Deliberate
// policy, carried over as-is; adversarial-attempt counting lives in the
// Prometheus telemetry instead.
type CostGatedSink struct {
	next Sink
}

func NewCostGatedSink(next Sink) *CostGatedSink {
	return &CostGatedSink{next: next}
}

func (s *CostGatedSink) Append(m types.UsageMetrics) error {
	if m.EstimatedCostUSD <= 0 {
		return nil
	}
	return s.next.Append(m)
}

// MemorySink collects records in memory for tests.
type MemorySink struct {
	mu      sync.Mutex
	Records []types.UsageMetrics
}

func (s *MemorySink) Append(m types.UsageMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, m)
	return nil
}
