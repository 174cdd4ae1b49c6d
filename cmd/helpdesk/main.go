package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/af-corp/helpdesk-agent/internal/config"
	"github.com/af-corp/helpdesk-agent/internal/cost"
	"github.com/af-corp/helpdesk-agent/internal/gateway"
	"github.com/af-corp/helpdesk-agent/internal/llm"
	"github.com/af-corp/helpdesk-agent/internal/metricslog"
	"github.com/af-corp/helpdesk-agent/internal/pipeline"
	"github.com/af-corp/helpdesk-agent/internal/safety"
	"github.com/af-corp/helpdesk-agent/internal/schema"
	"github.com/af-corp/helpdesk-agent/internal/telemetry"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		// A bare question works like `ask`, keeping the single-argument
		// invocation contract.
		runAsk(os.Args[1:])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage:
  helpdesk ask [-config dir] "Your question here"
  helpdesk serve [-config dir]`)
}

func newLogger(cfg config.TelemetryConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	// stderr keeps stdout clean for the response JSON in ask mode.
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func buildPipeline(loader *config.Loader, logger *slog.Logger) *pipeline.Pipeline {
	detector := safety.NewDetector(func() float64 {
		return loader.Config().Safety.BlockThreshold
	})
	client := llm.NewClient(func() config.ProviderConfig {
		return loader.Config().Provider
	})
	agent := func() config.AgentConfig {
		return loader.Config().Agent
	}
	sink := metricslog.NewCostGatedSink(metricslog.NewFileSink(func() string {
		return loader.Config().MetricsLog.Path
	}))
	return pipeline.New(
		safety.NewIngressGate(detector),
		safety.NewEgressGate(detector),
		client,
		schema.NewRepairer(client, agent),
		cost.NewEstimator(func() *config.PricingConfig {
			return loader.Pricing()
		}),
		sink,
		agent,
		logger,
	)
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configDir := fs.String("config", "configs", "path to configuration directory")
	fs.Parse(args)

	question := fs.Arg(0)
	if question == "" {
		usage()
		os.Exit(1)
	}

	logger := newLogger(config.DefaultConfig().Telemetry)
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = newLogger(loader.Config().Telemetry)
	slog.SetDefault(logger)

	pipe := buildPipeline(loader, logger)
	out, err := pipe.Run(context.Background(), question)
	if err != nil {
		logger.Error("run aborted", "error", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(out.Response, "", "  ")
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(data))

	if out.Metrics != nil {
		logger.Debug("usage",
			"model", out.Metrics.Model,
			"total_tokens", out.Metrics.TotalTokens,
			"latency_ms", out.Metrics.LatencyMS,
			"estimated_cost_usd", out.Metrics.EstimatedCostUSD,
		)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configDir := fs.String("config", "configs", "path to configuration directory")
	fs.Parse(args)

	logger := newLogger(config.DefaultConfig().Telemetry)
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = newLogger(loader.Config().Telemetry)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	cfg := loader.Config()

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	pipe := buildPipeline(loader, logger)
	handler := gateway.NewHandler(pipe, metrics)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)

	r.Get("/helpdesk/v1/health", healthHandler)
	r.Post("/v1/support/query", handler.SupportQuery)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Telemetry.MetricsPort),
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("helpdesk agent starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	_ = metricsSrv.Shutdown(ctx)
	logger.Info("helpdesk agent stopped")
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": version,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = "req_" + uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}
