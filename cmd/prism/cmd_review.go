// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/AleutianAI/ChangePrism/services/change_intel"
	"github.com/AleutianAI/ChangePrism/services/llm"
	"github.com/AleutianAI/ChangePrism/services/review"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	reviewFormat string // Output format: text, markdown, or json
	reviewRoot   string // Project root diff paths resolve against
	reviewAI     bool   // Rewrite the summary with the configured model
)

func init() {
	reviewCmd.Flags().StringVarP(&reviewFormat, "format", "f", "text",
		"Output format: text, markdown, or json")
	reviewCmd.Flags().StringVarP(&reviewRoot, "root", "r", ".",
		"Project root that diff paths resolve against")
	reviewCmd.Flags().BoolVar(&reviewAI, "ai", false,
		"Rewrite the review summary with the configured model (requires Ollama)")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runReview executes the review command. Exits with code 1 when the
// review fails so CI jobs can gate on it.
func runReview(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	diffText, err := readDiffInput(args)
	if err != nil {
		fatal("Cannot read diff", err)
	}

	var opts []change_intel.PipelineOption
	if reviewAI {
		// The enhanced reviewer falls back to the rule-based summary on
		// any model failure, so a missing Ollama daemon never blocks.
		client := llm.NewOpenAICompatClient(cfg.OllamaHost, cfg.OllamaModel, os.Getenv(llm.EnvAPIKey))
		opts = append(opts, change_intel.WithReviewer(
			review.NewEnhancedReviewer(nil, llm.NewSummarizer(client))))
	}
	pipeline := change_intel.NewPipeline(reviewRoot, opts...)

	result, err := pipeline.Review(ctx, diffText)
	if err != nil {
		fatal("Review failed", err)
	}

	switch reviewFormat {
	case "json":
		text, err := result.ToJSON()
		if err != nil {
			fatal("Cannot render review", err)
		}
		fmt.Println(text)
	case "markdown", "md":
		fmt.Print(result.ToMarkdown())
	default:
		outputReviewText(result)
	}

	if !result.Passed() {
		os.Exit(1)
	}
}

// =============================================================================
// OUTPUT FORMATTING
// =============================================================================

// outputReviewText renders the review with per-file verdicts.
func outputReviewText(result *review.Result) {
	ux.Title("Code Review")
	fmt.Printf("  %s\n", ux.ScoreLine(result.Score, result.Passed()))
	ux.Info(result.Summary)

	for _, file := range result.Files {
		fmt.Println()
		icon := ux.IconSuccess
		if file.Status != review.StatusPass {
			icon = ux.IconError
		}
		ux.FileStatus(file.FileName, icon, fmt.Sprintf("%d/10", file.Score))

		for _, issue := range file.Issues {
			printFinding(string(issue.Severity),
				fmt.Sprintf("[%s] %s", issue.Category, issue.Description),
				"", issue.Line)
			if issue.Suggestion != "" {
				fmt.Printf("      %s %s\n", ux.IconArrow, ux.Styles.Muted.Render(issue.Suggestion))
			}
		}
	}

	if result.IssueCount() == 0 {
		fmt.Println()
		ux.Success("No issues found")
	}
}
