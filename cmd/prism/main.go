// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command prism is the ChangePrism command line interface.
//
// It runs the change intelligence pipeline locally: diff analysis,
// whole-project scanning, rule-based review, and repository indexing.
//
// Usage:
//
//	git diff | prism analyze
//	prism analyze changes.patch --json
//	prism scan ./myproject
//	git diff | prism review --format markdown
//	prism index .
//
// Configuration is read from ~/.changeprism/changeprism.yaml when the
// file exists (or the path given with --config), with environment
// variables taking precedence; see pkg/config for the variable list.
// `prism config init` writes a starter file.
package main

import (
	"os"

	"github.com/AleutianAI/ChangePrism/pkg/config"
	"github.com/AleutianAI/ChangePrism/pkg/ux"
)

// cfg is resolved by the root command's PersistentPreRun before any
// subcommand runs.
var cfg config.Config

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		ux.Error(err.Error())
		os.Exit(1)
	}
}
