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
	"time"

	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var indexJSONOutput bool // Output as JSON

func init() {
	indexCmd.Flags().BoolVar(&indexJSONOutput, "json", false,
		"Output as JSON for scripting")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

// runIndex executes the index command: resolve the repository identity
// and deliver the repository.indexed webhook.
func runIndex(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fatal("Invalid path", err)
	}

	pipeline, cleanup := newPipeline(absRoot, true)
	defer cleanup()

	repo, receipt, err := pipeline.Index(ctx, absRoot)
	if err != nil {
		fatal("Indexing failed", err)
	}

	if indexJSONOutput {
		outputJSON(map[string]any{
			"success":    true,
			"repository": repo.FullName,
			"receipt":    receipt,
		})
		return
	}

	ux.Success(fmt.Sprintf("Announced %s to %s", repo.FullName, cfg.IngestionServiceURL))
	ux.Muted(fmt.Sprintf("Delivery %s (status %d)", receipt.Delivery, receipt.StatusCode))
}
