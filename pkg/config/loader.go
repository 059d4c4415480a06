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
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load builds the runtime configuration in precedence order: defaults,
// then the YAML file at path, then environment overrides. The result is
// validated before return; callers treat an error as fatal. An empty
// path skips the file step, so Load("") is the pure-environment form.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a config from defaults plus environment overrides,
// skipping any YAML file. Server deployments use this so the container
// image needs no config file at all.
func FromEnv() (Config, error) {
	return Load("")
}

// DefaultPath returns the conventional config file location,
// ~/.changeprism/changeprism.yaml, or empty when no home directory
// can be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".changeprism", "changeprism.yaml")
}

// applyEnv overlays environment variables onto cfg. A set-but-unparseable
// variable is an error; the caller must treat it as fatal.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("INGESTION_SERVICE_URL"); v != "" {
		cfg.IngestionServiceURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("QUERY_SERVICE_URL"); v != "" {
		cfg.QueryServiceURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT must be an integer millisecond count, got %q", v)
		}
		cfg.RequestTimeoutMS = ms
	}
	if v := os.Getenv("REQUEST_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REQUEST_RETRIES must be an integer, got %q", v)
		}
		cfg.RequestRetries = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("DEV_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEV_MODE must be a boolean, got %q", v)
		}
		cfg.DevMode = b
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.OllamaHost = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("OLLAMA_DEFAULT_MODEL"); v != "" {
		cfg.OllamaModel = v
	}
	if v := os.Getenv("PRISM_ID_STORE"); v != "" {
		cfg.IDStorePath = expandPath(v)
	}
	return nil
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// WriteDefault writes the default configuration as YAML to path,
// creating parent directories as needed. Used by the CLI's first-run
// setup; an existing file is overwritten.
func WriteDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
