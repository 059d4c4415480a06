// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies the local-stack defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.IngestionServiceURL != "http://localhost:3000" {
		t.Errorf("IngestionServiceURL = %q, want %q", cfg.IngestionServiceURL, "http://localhost:3000")
	}
	if cfg.QueryServiceURL != "http://localhost:4000" {
		t.Errorf("QueryServiceURL = %q, want %q", cfg.QueryServiceURL, "http://localhost:4000")
	}
	if cfg.RequestTimeoutMS != 30000 {
		t.Errorf("RequestTimeoutMS = %d, want 30000", cfg.RequestTimeoutMS)
	}
	if cfg.RequestRetries != 3 {
		t.Errorf("RequestRetries = %d, want 3", cfg.RequestRetries)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.DevMode {
		t.Error("DevMode should default to false")
	}
	if cfg.OllamaHost != "http://localhost:11434" {
		t.Errorf("OllamaHost = %q, want %q", cfg.OllamaHost, "http://localhost:11434")
	}
	if cfg.OllamaModel != "codellama:7b-code" {
		t.Errorf("OllamaModel = %q, want %q", cfg.OllamaModel, "codellama:7b-code")
	}
	if !strings.Contains(cfg.IDStorePath, ".changeprism") {
		t.Errorf("IDStorePath = %q, want a .changeprism path", cfg.IDStorePath)
	}
}

// TestDefaultConfig_IsValid verifies the defaults pass their own validation.
func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfig_Timeout(t *testing.T) {
	cfg := Config{RequestTimeoutMS: 1500}
	if got := cfg.Timeout(); got != 1500*time.Millisecond {
		t.Errorf("Timeout() = %v, want 1.5s", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"timeout at floor", func(c *Config) { c.RequestTimeoutMS = 1 }, false},
		{"timeout at ceiling", func(c *Config) { c.RequestTimeoutMS = 300000 }, false},
		{"timeout zero", func(c *Config) { c.RequestTimeoutMS = 0 }, true},
		{"timeout negative", func(c *Config) { c.RequestTimeoutMS = -5 }, true},
		{"timeout over ceiling", func(c *Config) { c.RequestTimeoutMS = 300001 }, true},
		{"retries at floor", func(c *Config) { c.RequestRetries = 1 }, false},
		{"retries at ceiling", func(c *Config) { c.RequestRetries = 10 }, false},
		{"retries zero", func(c *Config) { c.RequestRetries = 0 }, true},
		{"retries over ceiling", func(c *Config) { c.RequestRetries = 11 }, true},
		{"log level debug", func(c *Config) { c.LogLevel = "debug" }, false},
		{"log level error", func(c *Config) { c.LogLevel = "error" }, false},
		{"log level bogus", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"ingestion url empty", func(c *Config) { c.IngestionServiceURL = "" }, true},
		{"ingestion url not a url", func(c *Config) { c.IngestionServiceURL = "not a url" }, true},
		{"query url empty", func(c *Config) { c.QueryServiceURL = "" }, true},
		{"ollama host empty", func(c *Config) { c.OllamaHost = "" }, true},
		{"ollama model empty", func(c *Config) { c.OllamaModel = "" }, true},
		{"id store empty", func(c *Config) { c.IDStorePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
