// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates runtime settings for the change
// analysis pipeline. Settings come from a YAML file with environment
// variable overrides; validation is eager so a misconfigured process
// fails at startup instead of mid-pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// configValidate is the validator instance for config structs.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
}

// Config holds runtime settings for the pipeline and its service clients.
//
// Environment overrides (applied after the YAML file is read):
//
//	INGESTION_SERVICE_URL  ingestion_service_url
//	QUERY_SERVICE_URL      query_service_url
//	REQUEST_TIMEOUT        request_timeout_ms (milliseconds)
//	REQUEST_RETRIES        request_retries
//	LOG_LEVEL              log_level
//	DEV_MODE               dev_mode
//	OLLAMA_HOST            ollama_host
//	OLLAMA_DEFAULT_MODEL   ollama_model
//	PRISM_ID_STORE         id_store_path
type Config struct {
	// IngestionServiceURL is the base URL for webhook delivery.
	IngestionServiceURL string `yaml:"ingestion_service_url" validate:"required,url"`

	// QueryServiceURL is the base URL of the knowledge graph GraphQL endpoint.
	QueryServiceURL string `yaml:"query_service_url" validate:"required,url"`

	// RequestTimeoutMS bounds each outbound request attempt, in milliseconds.
	RequestTimeoutMS int `yaml:"request_timeout_ms" validate:"gte=1,lte=300000"`

	// RequestRetries is the maximum number of attempts per outbound request.
	RequestRetries int `yaml:"request_retries" validate:"gte=1,lte=10"`

	// LogLevel is one of error, warn, info, debug.
	LogLevel string `yaml:"log_level" validate:"oneof=error warn info debug"`

	// DevMode relaxes the private-host guard so local service stacks work.
	DevMode bool `yaml:"dev_mode"`

	// OllamaHost is the OpenAI-compatible endpoint used for summaries.
	OllamaHost string `yaml:"ollama_host" validate:"required,url"`

	// OllamaModel is the model tag requested from OllamaHost.
	OllamaModel string `yaml:"ollama_model" validate:"required"`

	// IDStorePath is the directory backing the repository id cache.
	IDStorePath string `yaml:"id_store_path" validate:"required"`
}

// Timeout returns the per-attempt request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks the config against its constraints. Call this before
// handing the config to any service; an invalid config must stop the
// process.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DefaultConfig returns the settings used when no file or environment
// overrides are present. The defaults target a local development stack.
func DefaultConfig() Config {
	idStore := filepath.Join(".changeprism", "ids")
	if home, err := os.UserHomeDir(); err == nil {
		idStore = filepath.Join(home, ".changeprism", "ids")
	}
	return Config{
		IngestionServiceURL: "http://localhost:3000",
		QueryServiceURL:     "http://localhost:4000",
		RequestTimeoutMS:    30000,
		RequestRetries:      3,
		LogLevel:            "info",
		DevMode:             false,
		OllamaHost:          "http://localhost:11434",
		OllamaModel:         "codellama:7b-code",
		IDStorePath:         idStore,
	}
}
