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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/AleutianAI/ChangePrism/services/change_intel"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeJSONOutput  bool   // Output as JSON
	analyzeRoot        string // Project root diff paths resolve against
	analyzeWithContext bool   // Query the knowledge graph for context
)

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false,
		"Output as JSON for scripting")
	analyzeCmd.Flags().StringVarP(&analyzeRoot, "root", "r", ".",
		"Project root that diff paths resolve against")
	analyzeCmd.Flags().BoolVar(&analyzeWithContext, "with-context", false,
		"Query the knowledge graph for repository context")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runAnalyze executes the analyze command: diff in, synthesized
// analysis out.
func runAnalyze(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	diffText, err := readDiffInput(args)
	if err != nil {
		fatal("Cannot read diff", err)
	}

	pipeline, cleanup := newPipeline(analyzeRoot, analyzeWithContext)
	defer cleanup()

	result := pipeline.AnalyzeDiff(ctx, diffText)

	if analyzeJSONOutput {
		outputJSON(result)
		if !result.Success {
			fatal("Analysis failed", errors.New(result.Message))
		}
		return
	}

	if !result.Success {
		fatal("Analysis failed", errors.New(result.Message))
	}
	outputAnalysisText(result)
}

// =============================================================================
// OUTPUT FORMATTING
// =============================================================================

// outputAnalysisText renders the analysis with per-file detail,
// findings, and recommendations.
func outputAnalysisText(result *change_intel.PipelineResult) {
	analysis := result.Analysis

	ux.Title("Change Analysis")
	ux.Info(analysis.Summary)

	if analysis.Type == change_intel.AnalysisTypeNoChanges {
		ux.Muted("Nothing to analyze.")
		return
	}

	fmt.Println()
	for _, f := range analysis.Files {
		// A parsed file always carries a complexity of at least one.
		icon := ux.IconSuccess
		if f.Complexity == 0 {
			icon = ux.IconPending
		}
		reason := formatDelta(f.Additions, f.Deletions)
		if f.IsNew {
			reason += ", new"
		}
		if f.Entities > 0 {
			reason += fmt.Sprintf(", %d entities", f.Entities)
		}
		ux.FileStatus(f.Path, icon, reason)
	}

	if len(analysis.Issues) > 0 {
		fmt.Println()
		ux.Title("Findings")
		for _, issue := range analysis.Issues {
			printFinding(issue.Severity, issue.Message, issue.Path, issue.Line)
		}
	}

	if len(analysis.Recommendations) > 0 {
		fmt.Println()
		ux.Title("Recommendations")
		for _, rec := range analysis.Recommendations {
			fmt.Printf("  %s %s\n", ux.IconBullet, rec.Message)
		}
	}

	if analysis.EKGContext.QueriesMade > 0 {
		fmt.Println()
		ux.Muted(fmt.Sprintf(
			"Knowledge context: %d queries, %d similar repositories, %d patterns, confidence %.2f",
			analysis.EKGContext.QueriesMade,
			analysis.EKGContext.SimilarRepositoriesFound,
			analysis.EKGContext.PatternsAnalyzed,
			analysis.EKGContext.Confidence))
	}

	analyzed, skipped := analyzedCounts(analysis.Files)
	ux.AnalysisSummary(analyzed, skipped, len(analysis.Issues))
	ux.Muted(fmt.Sprintf("Completed in %dms", result.ElapsedMs))
}

// printFinding renders one severity-tagged finding with its location.
func printFinding(severity, message, path string, line int) {
	tag := ux.SeverityStyle(severity).Render(strings.ToUpper(severity))
	location := path
	if line > 0 {
		if path != "" {
			location = fmt.Sprintf("%s:%d", path, line)
		} else {
			location = fmt.Sprintf("line %d", line)
		}
	}
	if location != "" {
		fmt.Printf("  %s %s %s\n", tag, message, ux.Styles.Muted.Render("("+location+")"))
		return
	}
	fmt.Printf("  %s %s\n", tag, message)
}

// analyzedCounts splits changed files into analyzed and skipped.
// Deleted, renamed-away, and unparsable files carry zero complexity.
func analyzedCounts(files []change_intel.FileSummary) (analyzed, skipped int) {
	for _, f := range files {
		if f.Complexity > 0 {
			analyzed++
		} else {
			skipped++
		}
	}
	return analyzed, skipped
}
