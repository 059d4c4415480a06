// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prism

import (
	"runtime"

	"github.com/AleutianAI/ChangePrism/services/prism/ast"
	"github.com/AleutianAI/ChangePrism/services/prism/graph"
)

// Default project analysis limits.
const (
	// DefaultMaxFiles bounds how many files a project walk will collect.
	DefaultMaxFiles = 10000
)

// AnalyzeOptions configures a project analysis run.
type AnalyzeOptions struct {
	// Root is the absolute path to the project root directory.
	Root string

	// Workers is the number of files analyzed in parallel.
	// Default: runtime.NumCPU()
	Workers int

	// MaxFiles bounds the project walk. The walk stops once the limit
	// is reached and the truncation is recorded as a file error.
	// Default: DefaultMaxFiles
	MaxFiles int
}

// DefaultAnalyzeOptions returns sensible defaults for the given root.
func DefaultAnalyzeOptions(root string) AnalyzeOptions {
	return AnalyzeOptions{
		Root:     root,
		Workers:  runtime.NumCPU(),
		MaxFiles: DefaultMaxFiles,
	}
}

// FileError records a per-file analysis failure. Failed files are
// skipped, never aborting the rest of the run.
type FileError struct {
	// Path is the project-relative file path.
	Path string `json:"path"`

	// Message describes the failure.
	Message string `json:"message"`
}

// QualityMetrics aggregates per-file metrics across a project.
type QualityMetrics struct {
	// TotalFiles is the number of files analyzed successfully.
	TotalFiles int `json:"total_files"`

	// TotalLines is the summed non-blank line count.
	TotalLines int `json:"total_lines"`

	// TotalEntities is the summed entity count.
	TotalEntities int `json:"total_entities"`

	// AverageComplexity is the mean per-file complexity.
	AverageComplexity float64 `json:"average_complexity"`

	// AverageMaintainability is the mean per-file maintainability score.
	AverageMaintainability float64 `json:"average_maintainability"`

	// FilesByLanguage counts analyzed files per language.
	FilesByLanguage map[string]int `json:"files_by_language"`
}

// ProjectAnalysis is the result of analyzing a project directory.
type ProjectAnalysis struct {
	// Root is the analyzed project root.
	Root string `json:"root"`

	// Files holds one analysis per discovered file, in walk order.
	Files []*ast.FileAnalysis `json:"files"`

	// Graph is the file-level dependency graph.
	Graph *graph.DependencyGraph `json:"dependency_graph"`

	// Quality aggregates metrics across Files.
	Quality QualityMetrics `json:"quality_metrics"`

	// Errors lists files that failed analysis and were skipped.
	Errors []FileError `json:"errors,omitempty"`

	// DurationMs is the total analysis wall time.
	DurationMs int64 `json:"duration_ms"`
}

// FileCount returns the number of successfully analyzed files.
func (p *ProjectAnalysis) FileCount() int {
	return len(p.Files)
}

// AnalysisFor returns the analysis for a project-relative path, nil if
// the file was not analyzed.
func (p *ProjectAnalysis) AnalysisFor(path string) *ast.FileAnalysis {
	for _, f := range p.Files {
		if f != nil && f.Path == path {
			return f
		}
	}
	return nil
}

// sourceLanguages is the set of languages collected by the project walk.
// Parseable languages get full analysis; the rest degrade to line counts.
var sourceLanguages = map[string]bool{
	"typescript": true,
	"javascript": true,
	"python":     true,
	"go":         true,
	"rust":       true,
	"java":       true,
	"kotlin":     true,
	"ruby":       true,
	"php":        true,
	"c":          true,
	"cpp":        true,
	"csharp":     true,
	"swift":      true,
}

// skipDirectories are directories never descended into during the walk.
// Dot-directories are skipped by name prefix, not listed here.
var skipDirectories = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	"coverage":     true,
	"bin":          true,
	"tmp":          true,
}

// workerCount normalizes the configured worker count.
func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	return runtime.NumCPU()
}
