// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// maxPromptIssues caps how many findings are quoted in the summary
// prompt so it stays within small-model context windows.
const maxPromptIssues = 20

// Summarizer produces a natural-language summary from a prompt.
// services/llm provides the standard implementation.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// EnhancedReviewer wraps a Reviewer and rewrites the result summary
// with a language model. The rule-based verdict, scores, and issues are
// never altered; when the summarizer is missing or fails, the result is
// returned unchanged.
type EnhancedReviewer struct {
	*Reviewer
	summarizer Summarizer
}

// NewEnhancedReviewer creates an enhanced reviewer. A nil base gets the
// default rule set; a nil summarizer leaves results untouched.
func NewEnhancedReviewer(base *Reviewer, summarizer Summarizer) *EnhancedReviewer {
	if base == nil {
		base = NewReviewer()
	}
	return &EnhancedReviewer{
		Reviewer:   base,
		summarizer: summarizer,
	}
}

// Review runs the rule-based review, then replaces the banded summary
// with a model-written one when a summarizer is configured.
func (r *EnhancedReviewer) Review(ctx context.Context, input Input) (*Result, error) {
	result, err := r.Reviewer.Review(ctx, input)
	if err != nil {
		return nil, err
	}
	if r.summarizer == nil {
		return result, nil
	}

	text, err := r.summarizer.Summarize(ctx, summaryPrompt(result))
	if err != nil {
		slog.Debug("review summary generation failed",
			slog.String("error", err.Error()),
		)
		return result, nil
	}
	if text = strings.TrimSpace(text); text != "" {
		result.Summary = text
	}
	return result, nil
}

// summaryPrompt renders the rule-based result as a prompt asking for a
// short reviewer-voice summary.
func summaryPrompt(result *Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A code change was reviewed and scored %d/10 (%s).\n", result.Score, result.OverallStatus)
	b.WriteString("Findings:\n")

	quoted := 0
	total := result.IssueCount()
	for _, file := range result.Files {
		for _, issue := range file.Issues {
			if quoted >= maxPromptIssues {
				break
			}
			fmt.Fprintf(&b, "- %s line %d, %s (%s): %s\n",
				file.FileName, issue.Line, issue.Category, issue.Severity, issue.Description)
			quoted++
		}
	}
	if quoted == 0 {
		b.WriteString("- none\n")
	}
	if total > quoted {
		fmt.Fprintf(&b, "- and %d more\n", total-quoted)
	}

	b.WriteString("\nWrite a two to three sentence review summary for the author. " +
		"Lead with the most important fix. Respond with the summary only.")
	return b.String()
}
