package cost

import (
	"errors"
	"math"
	"testing"

	"github.com/af-corp/helpdesk-agent/internal/config"
)

func testPricing() func() *config.PricingConfig {
	return func() *config.PricingConfig {
		return &config.PricingConfig{
			Models: map[string]config.PriceEntry{
				"gpt-4o-mini": {Input: 0.00015, Output: 0.0006},
			},
		}
	}
}

func TestEstimate_KnownModel(t *testing.T) {
	e := NewEstimator(testPricing())
	got, err := e.Estimate("gpt-4o-mini", 100, 50)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	want := 100.0/1000*0.00015 + 50.0/1000*0.0006
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %.8f, got %.8f", want, got)
	}
	if got == 0 {
		t.Error("small real costs must not round to zero")
	}
}

func TestEstimate_ZeroTokens(t *testing.T) {
	e := NewEstimator(testPricing())
	got, err := e.Estimate("gpt-4o-mini", 0, 0)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for zero tokens, got %f", got)
	}
}

func TestEstimate_UnknownModelFails(t *testing.T) {
	e := NewEstimator(testPricing())
	_, err := e.Estimate("gpt-99-turbo", 100, 50)
	var unknown *UnknownModelError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected *UnknownModelError, got %v", err)
	}
	if unknown.Model != "gpt-99-turbo" {
		t.Errorf("error must name the model, got %q", unknown.Model)
	}
}
