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
	"fmt"
	"os"

	"github.com/AleutianAI/ChangePrism/pkg/config"
	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configFile       string // --config override for the YAML config path
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "prism",
		Short: "Change intelligence for unified diffs",
		Long: `ChangePrism turns code changes into reviewable intelligence: it
				parses unified diffs, inspects the changed files, scans added
				lines for secrets, and scores the change against review rules.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize UX personality from flag or environment
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}

			loaded, err := config.Load(resolveConfigPath(configFile))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
				os.Exit(1)
			}
			cfg = loaded
		},
	}

	// --- Pipeline ---
	analyzeCmd = &cobra.Command{
		Use:   "analyze [diff-file]",
		Short: "Run the change intelligence pipeline over a diff",
		Long: `Runs the full pipeline over a unified diff read from a file or stdin:
per-file deltas, entity and complexity metrics for the changed files,
secret scanning over added lines, and (with --with-context) knowledge
graph context for the repository.

Examples:
  git diff | prism analyze
  prism analyze changes.patch
  prism analyze changes.patch --json
  git diff | prism analyze --with-context`,
		Args: cobra.MaximumNArgs(1),
		Run:  runAnalyze, // Defined in cmd_analyze.go
	}

	scanCmd = &cobra.Command{
		Use:   "scan [path]",
		Short: "Analyze every source file in a project tree",
		Args:  cobra.MaximumNArgs(1),
		Run:   runScan, // Defined in cmd_scan.go
	}

	reviewCmd = &cobra.Command{
		Use:   "review [diff-file]",
		Short: "Score a diff against the review rules",
		Long: `Reviews the added lines of a unified diff: security, bug, style, and
performance rules plus entity-level checks and secret findings, scored
1-10 with a pass threshold of 7. Exits non-zero when the review fails.

Examples:
  git diff | prism review
  prism review changes.patch --format markdown
  git diff | prism review --ai    # model-written summary (requires Ollama)`,
		Args: cobra.MaximumNArgs(1),
		Run:  runReview, // Defined in cmd_review.go
	}

	indexCmd = &cobra.Command{
		Use:   "index [path]",
		Short: "Announce a repository to the ingestion service",
		Long: `Reads the repository identity from .git/config and delivers a
repository.indexed webhook to the configured ingestion service.

The default ingestion URL points at a local stack; set DEV_MODE=true to
allow webhook delivery to localhost.`,
		Args: cobra.MaximumNArgs(1),
		Run:  runIndex, // Defined in cmd_index.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default ~/.changeprism/changeprism.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default), standard, minimal, or machine (scripting)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(indexCmd)
}
