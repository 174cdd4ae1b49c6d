package config

import "time"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Safety     SafetyConfig     `yaml:"safety"`
	Provider   ProviderConfig   `yaml:"provider"`
	Agent      AgentConfig      `yaml:"agent"`
	MetricsLog MetricsLogConfig `yaml:"metrics_log"`
}

type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

type TelemetryConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsPort int    `yaml:"metrics_port"`
}

type SafetyConfig struct {
	// Ingress and egress gates block when the detector's risk score
	// reaches this value.
	BlockThreshold float64 `yaml:"block_threshold"`
}

// ProviderConfig describes the single OpenAI-compatible endpoint the
// model client talks to.
type ProviderConfig struct {
	BaseURL       string            `yaml:"base_url"`
	APIKey        string            `yaml:"api_key"`
	Timeout       time.Duration     `yaml:"timeout"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	Headers       map[string]string `yaml:"headers,omitempty"`
}

type AgentConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type MetricsLogConfig struct {
	Path string `yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8080,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 30 * time.Second,
		},
		Telemetry: TelemetryConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			MetricsPort: 9090,
		},
		Safety: SafetyConfig{
			BlockThreshold: 0.7,
		},
		Provider: ProviderConfig{
			BaseURL:       "https://api.openai.com/v1",
			Timeout:       30 * time.Second,
			MaxConcurrent: 8,
		},
		Agent: AgentConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   150,
		},
		MetricsLog: MetricsLogConfig{
			Path: "metrics/metrics.jsonl",
		},
	}
}
