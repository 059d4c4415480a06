// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command prismd starts the ChangePrism analysis server.
//
// ChangePrism turns unified diffs into change intelligence:
//   - Per-file deltas with AST-derived entity and complexity data
//   - Secret scanning over every added line
//   - Knowledge-graph context (similar repositories, learned patterns)
//   - Rule-based review with optional model-written summaries
//
// Usage:
//
//	go run ./cmd/prismd
//	go run ./cmd/prismd -port 9090 -root /path/to/project
//
// Configuration comes from environment variables (see pkg/config), or a
// YAML file passed with -config. With a local Ollama daemon:
//
//	OLLAMA_HOST=http://localhost:11434 go run ./cmd/prismd
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/prism/health
//
//	# Analyze a diff
//	curl -X POST http://localhost:8080/v1/prism/analyze \
//	  -H "Content-Type: application/json" \
//	  -d "{\"diff\": \"$(git diff | sed 's/"/\\"/g' | tr '\n' ' ')\"}"
//
//	# Scan a project tree
//	curl -X POST http://localhost:8080/v1/prism/scan \
//	  -H "Content-Type: application/json" \
//	  -d '{"project_root": "/path/to/project"}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/ChangePrism/pkg/config"
	"github.com/AleutianAI/ChangePrism/pkg/logging"
	"github.com/AleutianAI/ChangePrism/pkg/telemetry"
	"github.com/AleutianAI/ChangePrism/services/change_intel"
	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/ekg/idstore"
	"github.com/AleutianAI/ChangePrism/services/ekg/transport"
	"github.com/AleutianAI/ChangePrism/services/llm"
	"github.com/AleutianAI/ChangePrism/services/review"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	root := flag.String("root", ".", "Project root diff paths resolve against")
	configPath := flag.String("config", "", "YAML config file (optional; environment still wins)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(logging.Config{
		Level:   level,
		Service: "prismd",
		JSON:    true,
	})
	slog.SetDefault(logger.Slog())

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = "prismd"
	tcfg.ServiceVersion = change_intel.ServiceVersion
	shutdownTelemetry, err := telemetry.Init(context.Background(), tcfg)
	if err != nil {
		slog.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := idstore.Open(cfg.IDStorePath)
	pipeline := buildPipeline(cfg, *root, store)
	handlers := change_intel.NewHandlers(pipeline)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("prism-service"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	change_intel.RegisterRoutes(v1, handlers)

	printBanner(*port, pipeline)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down prismd")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
		_ = store.Close()
		_ = logger.Close()
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting prismd", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildPipeline wires the pipeline with the knowledge client, indexing
// flow, and (when configured) the model-backed reviewer.
func buildPipeline(cfg config.Config, root string, store idstore.Store) *change_intel.Pipeline {
	tclient := transport.NewClient(transport.Options{
		Timeout:     cfg.Timeout(),
		MaxAttempts: cfg.RequestRetries,
		DevMode:     cfg.DevMode,
	})

	knowledge := ekg.NewClient(tclient, store, ekg.Config{
		QueryServiceURL: cfg.QueryServiceURL,
		RepoRoot:        root,
	})

	opts := []change_intel.PipelineOption{
		change_intel.WithContextFetcher(knowledge),
		change_intel.WithIndexing(
			ekg.NewIdentifier(store),
			ekg.NewIndexer(tclient, cfg.IngestionServiceURL),
		),
	}

	if summarizer := setupSummaries(cfg); summarizer != nil {
		opts = append(opts, change_intel.WithReviewer(
			review.NewEnhancedReviewer(nil, summarizer)))
	}

	return change_intel.NewPipeline(root, opts...)
}

// setupSummaries builds the model-backed summarizer when a generation
// endpoint is configured.
//
// Returns nil when OLLAMA_HOST is unset; review summaries then stay
// rule-based.
func setupSummaries(cfg config.Config) *llm.Summarizer {
	if os.Getenv(llm.EnvHost) == "" {
		slog.Info("Summary generation disabled")
		slog.Info("Set OLLAMA_HOST to enable model-written review summaries")
		return nil
	}

	client := llm.NewOpenAICompatClient(cfg.OllamaHost, cfg.OllamaModel, os.Getenv(llm.EnvAPIKey))
	slog.Info("Summary generation enabled", slog.String("model", client.Model()))
	return llm.NewSummarizer(client)
}

func printBanner(port int, pipeline *change_intel.Pipeline) {
	contextStatus := "DISABLED"
	if pipeline.ContextConfigured() {
		contextStatus = "ENABLED"
	}
	indexStatus := "DISABLED"
	if pipeline.IndexingConfigured() {
		indexStatus = "ENABLED"
	}

	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                      CHANGEPRISM SERVER                           ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Diff-driven change intelligence with knowledge-graph context.    ║
║  Knowledge Context: %-8s    Repository Indexing: %-8s     ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%-5d/v1/prism/health                 │  ║
║  │                                                             │  ║
║  │ # Analyze a diff                                            │  ║
║  │ curl -X POST http://localhost:%-5d/v1/prism/analyze \      │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"diff": "..."}'                                      │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Pipeline: /analyze, /scan, /review, /index                   ║
║  └── Observability: /health, /ready, /metrics                     ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, contextStatus, indexStatus, port, port)
}
