// Package cost converts token counts into estimated USD amounts using the
// static per-model price table.
package cost

import (
	"fmt"
	"math"

	"github.com/af-corp/helpdesk-agent/internal/config"
)

// UnknownModelError reports a price-table gap. Fatal: cost must never
// silently default to zero for a real call.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no price entry for model %q", e.Model)
}

// Estimator looks up per-model prices (USD per 1K tokens). The table is
// read per call so pricing hot-reload takes effect.
type Estimator struct {
	pricing func() *config.PricingConfig
}

func NewEstimator(pricing func() *config.PricingConfig) *Estimator {
	return &Estimator{pricing: pricing}
}

// Estimate returns the estimated USD cost for one call's token usage,
// rounded half-away-from-zero at 8 decimal places so small per-call costs
// stay non-zero.
func (e *Estimator) Estimate(model string, promptTokens, completionTokens int) (float64, error) {
	entry, ok := e.pricing().Models[model]
	if !ok {
		return 0, &UnknownModelError{Model: model}
	}
	usd := float64(promptTokens)/1000*entry.Input + float64(completionTokens)/1000*entry.Output
	return math.Round(usd*1e8) / 1e8, nil
}
