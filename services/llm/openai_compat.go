// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("changeprism.llm")

// Environment variables read by NewFromEnv.
const (
	EnvHost   = "OLLAMA_HOST"
	EnvModel  = "OLLAMA_DEFAULT_MODEL"
	EnvAPIKey = "OPENAI_API_KEY"
)

// Defaults for a local Ollama daemon.
const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "codellama:7b-code"
)

// OpenAICompatClient talks the OpenAI chat-completion protocol against
// any compatible endpoint. Ollama exposes one at {host}/v1 and ignores
// the API key.
type OpenAICompatClient struct {
	client *openai.Client
	model  string
}

// NewOpenAICompatClient creates a client against host. Empty host and
// model fall back to the local Ollama defaults; an empty key gets a
// placeholder since Ollama does not check it.
func NewOpenAICompatClient(host, model, apiKey string) *OpenAICompatClient {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	if apiKey == "" {
		apiKey = "ollama"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(host, "/") + "/v1"

	slog.Info("initializing llm client",
		slog.String("base_url", cfg.BaseURL),
		slog.String("model", model),
	)
	return &OpenAICompatClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// NewFromEnv builds a client from OLLAMA_HOST, OLLAMA_DEFAULT_MODEL and
// OPENAI_API_KEY. Returns ErrNotConfigured when no host is set, which
// callers treat as "generation disabled".
func NewFromEnv() (*OpenAICompatClient, error) {
	host := os.Getenv(EnvHost)
	if host == "" {
		return nil, ErrNotConfigured
	}

	model := os.Getenv(EnvModel)
	if model == "" {
		slog.Warn("model not set, using default",
			slog.String("env", EnvModel),
			slog.String("default", DefaultModel),
		)
	}
	return NewOpenAICompatClient(host, model, os.Getenv(EnvAPIKey)), nil
}

// Model returns the configured model name.
func (c *OpenAICompatClient) Model() string {
	return c.model
}

// Generate implements the LLMClient interface. TopK has no equivalent
// on the OpenAI surface and is ignored.
func (c *OpenAICompatClient) Generate(ctx context.Context, prompt string,
	params GenerationParams) (string, error) {

	ctx, span := tracer.Start(ctx, "OpenAICompatClient.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.model))
	slog.Debug("generating text", slog.String("model", c.model))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if params.MaxTokens != nil {
		req.MaxTokens = *params.MaxTokens
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	span.SetAttributes(attribute.String("llm.finish_reason", string(resp.Choices[0].FinishReason)))
	return resp.Choices[0].Message.Content, nil
}
