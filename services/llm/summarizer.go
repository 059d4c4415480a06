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
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Chunking bounds for oversized prompts.
const (
	summaryChunkSize    = 4000
	summaryChunkOverlap = 200
)

// diffSeparators split along diff structure first so hunks survive
// chunking intact where possible.
var diffSeparators = []string{"\ndiff --git ", "\n@@ ", "\n\n", "\n", " ", ""}

// Summarizer turns prompts into short summaries through an LLMClient.
// Prompts above the chunk size are split, summarized per chunk, and
// the partial summaries combined in a final pass.
type Summarizer struct {
	client   LLMClient
	splitter textsplitter.TextSplitter
	params   GenerationParams
}

// NewSummarizer creates a summarizer over client. A nil client yields
// ErrNotConfigured from every call.
func NewSummarizer(client LLMClient) *Summarizer {
	temperature := float32(0.2)
	maxTokens := 400
	return &Summarizer{
		client: client,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(summaryChunkSize),
			textsplitter.WithChunkOverlap(summaryChunkOverlap),
			textsplitter.WithSeparators(diffSeparators),
		),
		params: GenerationParams{
			Temperature: &temperature,
			MaxTokens:   &maxTokens,
		},
	}
}

// Summarize generates a summary for prompt. Small prompts go straight
// to the model; large ones are map-reduced chunk by chunk.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", ErrNotConfigured
	}
	if len(prompt) <= summaryChunkSize {
		return s.generate(ctx, prompt)
	}

	chunks, err := s.splitter.SplitText(prompt)
	if err != nil {
		return "", fmt.Errorf("split prompt: %w", err)
	}
	if len(chunks) == 1 {
		return s.generate(ctx, chunks[0])
	}

	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		part, err := s.generate(ctx, fmt.Sprintf(
			"Summarize the key points of part %d of %d of a document in two sentences:\n\n%s",
			i+1, len(chunks), chunk))
		if err != nil {
			return "", err
		}
		partials = append(partials, part)
	}

	var b strings.Builder
	b.WriteString("Combine these partial summaries into one short summary. Respond with the summary only.\n")
	for _, part := range partials {
		fmt.Fprintf(&b, "\n- %s", part)
	}
	return s.generate(ctx, b.String())
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	text, err := s.client.Generate(ctx, prompt, s.params)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
