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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AleutianAI/ChangePrism/pkg/config"
	"github.com/AleutianAI/ChangePrism/pkg/ux"
	"github.com/AleutianAI/ChangePrism/services/change_intel"
	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/ekg/idstore"
	"github.com/AleutianAI/ChangePrism/services/ekg/transport"
)

// resolveConfigPath picks the config file to load: the explicit flag
// value when set, otherwise the conventional path when a file exists
// there, otherwise none.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	path := config.DefaultPath()
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// readDiffInput returns diff text from the file named by the first
// argument, or from stdin when no argument (or "-") is given.
func readDiffInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read diff file: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// newPipeline builds a pipeline rooted at root. The knowledge context
// client and indexing flow are wired only when withServices is true;
// the returned cleanup releases the id store and must run when the
// command finishes.
func newPipeline(root string, withServices bool) (*change_intel.Pipeline, func()) {
	if !withServices {
		return change_intel.NewPipeline(root), func() {}
	}

	store := idstore.Open(cfg.IDStorePath)
	tclient := transport.NewClient(transport.Options{
		Timeout:     cfg.Timeout(),
		MaxAttempts: cfg.RequestRetries,
		DevMode:     cfg.DevMode,
	})
	knowledge := ekg.NewClient(tclient, store, ekg.Config{
		QueryServiceURL: cfg.QueryServiceURL,
		RepoRoot:        root,
	})

	p := change_intel.NewPipeline(root,
		change_intel.WithContextFetcher(knowledge),
		change_intel.WithIndexing(
			ekg.NewIdentifier(store),
			ekg.NewIndexer(tclient, cfg.IngestionServiceURL),
		),
	)
	return p, func() { _ = store.Close() }
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
		os.Exit(1)
	}
}

// fatal prints an error and exits with code 1.
func fatal(msg string, err error) {
	if err != nil {
		ux.Error(fmt.Sprintf("%s: %v", msg, err))
	} else {
		ux.Error(msg)
	}
	os.Exit(1)
}

// formatDelta renders an added/removed line count pair, "+12 -3" style.
func formatDelta(additions, deletions int) string {
	return fmt.Sprintf("+%d -%d", additions, deletions)
}
