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
	"path/filepath"
	"sort"
	"time"

	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/AleutianAI/ChangePrism/services/prism"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var scanJSONOutput bool // Output as JSON

func init() {
	scanCmd.Flags().BoolVar(&scanJSONOutput, "json", false,
		"Output as JSON for scripting")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runScan executes the scan command over a project tree.
func runScan(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fatal("Invalid path", err)
	}

	pipeline, cleanup := newPipeline(absRoot, false)
	defer cleanup()

	var project *prism.ProjectAnalysis
	err = ux.WithSpinner(fmt.Sprintf("Scanning %s", absRoot), func() error {
		var scanErr error
		project, scanErr = pipeline.Scan(ctx, absRoot)
		return scanErr
	})
	if err != nil {
		fatal("Scan failed", err)
	}

	if scanJSONOutput {
		outputJSON(project)
		return
	}
	outputScanText(project)
}

// =============================================================================
// OUTPUT FORMATTING
// =============================================================================

// outputScanText renders the project analysis summary.
func outputScanText(project *prism.ProjectAnalysis) {
	ux.Title("Project Scan")
	ux.Info(project.Root)

	fmt.Println()
	quality := project.Quality
	printMetric("Files", fmt.Sprintf("%d", quality.TotalFiles))
	printMetric("Lines", fmt.Sprintf("%d", quality.TotalLines))
	printMetric("Entities", fmt.Sprintf("%d", quality.TotalEntities))
	printMetric("Avg complexity", fmt.Sprintf("%.1f", quality.AverageComplexity))
	printMetric("Avg maintainability", fmt.Sprintf("%.1f", quality.AverageMaintainability))

	if len(quality.FilesByLanguage) > 0 {
		fmt.Println()
		ux.Title("Languages")
		for _, lang := range sortedKeys(quality.FilesByLanguage) {
			printMetric(lang, fmt.Sprintf("%d", quality.FilesByLanguage[lang]))
		}
	}

	if project.Graph != nil && project.Graph.Metadata.TotalNodes > 0 {
		fmt.Println()
		ux.Muted(fmt.Sprintf("Dependency graph: %d nodes, %d edges, density %.3f",
			project.Graph.Metadata.TotalNodes,
			project.Graph.Metadata.TotalEdges,
			project.Graph.Metadata.Density))
	}

	if len(project.Errors) > 0 {
		fmt.Println()
		ux.Warning(fmt.Sprintf("%d file(s) skipped", len(project.Errors)))
		for _, fe := range project.Errors {
			ux.FileStatus(fe.Path, ux.IconWarning, fe.Message)
		}
	}

	fmt.Println()
	ux.Muted(fmt.Sprintf("Completed in %dms", project.DurationMs))
}

// printMetric renders one label/value row.
func printMetric(label, value string) {
	fmt.Printf("  %-22s %s\n", ux.Styles.Muted.Render(label), ux.Styles.Bold.Render(value))
}

// sortedKeys returns the map keys in sorted order for stable output.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
