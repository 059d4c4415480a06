// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package diff converts raw unified-diff text into per-file change records.
//
// # Description
//
// This package parses git and plain unified diffs into a ChangeSet: one
// FileDelta per file header, with added/removed line counts and an
// inferred language. Parsing is tolerant: malformed input degrades to an
// empty or partial ChangeSet instead of an error, so a garbage diff never
// aborts an analysis run.
//
// # Thread Safety
//
// A ChangeSet is immutable after parsing and safe for concurrent reads.
package diff

import (
	"fmt"
)

// =============================================================================
// File Delta
// =============================================================================

// FileDelta records the change footprint of a single file in a diff.
type FileDelta struct {
	// Path is the post-change file path with a/ b/ prefixes trimmed.
	Path string `json:"path"`

	// Additions counts lines starting with "+" (excluding the "+++" header).
	Additions int `json:"additions"`

	// Deletions counts lines starting with "-" (excluding the "---" header).
	Deletions int `json:"deletions"`

	// IsNew indicates the file is created by this diff.
	IsNew bool `json:"is_new"`

	// Language is inferred from the file extension, "unknown" otherwise.
	Language string `json:"language"`
}

// Stats returns a formatted stats string like "+12 -3".
func (d FileDelta) Stats() string {
	return fmt.Sprintf("+%d -%d", d.Additions, d.Deletions)
}

// =============================================================================
// Change Set
// =============================================================================

// ChangeSet is the structured representation of one unified diff.
//
// # Description
//
// Files appear in the order their headers appear in the diff. Totals are
// derived once at parse time; the struct is not modified afterwards.
type ChangeSet struct {
	// Files lists one delta per file header encountered.
	Files []FileDelta `json:"files"`

	// TotalAdditions is the sum of additions across all files.
	TotalAdditions int `json:"total_additions"`

	// TotalDeletions is the sum of deletions across all files.
	TotalDeletions int `json:"total_deletions"`

	// Summary is a human-readable line like "3 files changed, +12 -4".
	Summary string `json:"summary"`
}

// IsEmpty returns true if the diff touched no files.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.Files) == 0
}

// FileCount returns the number of files touched.
func (c *ChangeSet) FileCount() int {
	return len(c.Files)
}

// Paths returns the file paths in diff order.
func (c *ChangeSet) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Languages returns the distinct known languages touched by the change
// set, in first-appearance order. Files with an unknown language are
// omitted.
func (c *ChangeSet) Languages() []string {
	seen := make(map[string]bool)
	languages := make([]string, 0)
	for _, f := range c.Files {
		if f.Language == "" || f.Language == "unknown" {
			continue
		}
		if !seen[f.Language] {
			seen[f.Language] = true
			languages = append(languages, f.Language)
		}
	}
	return languages
}
