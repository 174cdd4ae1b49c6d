package config

// PricingConfig is the static model price table, loaded from pricing.yaml.
type PricingConfig struct {
	Models map[string]PriceEntry `yaml:"models"`
}

// PriceEntry holds USD prices per 1K tokens.
type PriceEntry struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}
