// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides best-effort text generation for review summaries.
//
// # Description
//
// One OpenAI-compatible chat client covers every supported backend; a
// local Ollama daemon serves the same surface at {host}/v1. The
// Summarizer layers prompt chunking on top so oversized inputs are
// map-reduced through the model. Everything here is optional: when no
// endpoint is configured, callers fall back to rule-based output.
package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no generation endpoint is set up.
var ErrNotConfigured = errors.New("llm: no endpoint configured")

// GenerationParams tunes a single completion request. Nil fields keep
// the backend's defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// LLMClient defines the standard interface for any LLM backend.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}
