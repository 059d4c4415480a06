// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package change_intel runs the change intelligence pipeline and exposes
// it over HTTP.
//
// # Description
//
// One pipeline run takes unified-diff text through five stages: diff
// parsing, source analysis of the changed files, dependency graph
// construction, best-effort knowledge context retrieval, and synthesis
// of the final AnalysisResult. Context retrieval degrades silently;
// only parse-level failures fail a run.
//
// The package also provides the Gin handlers and routes for the
// /v1/prism service surface.
package change_intel

import (
	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/prism"
	"github.com/AleutianAI/ChangePrism/services/review"
)

// State is the lifecycle state of the most recent pipeline run.
type State string

const (
	// StateIdle means no run has started yet.
	StateIdle State = "idle"

	// StateRunning means a run is in progress.
	StateRunning State = "running"

	// StateCompleted means the last run produced a result.
	StateCompleted State = "completed"

	// StateFailed means the last run hit a parse-level failure.
	StateFailed State = "failed"
)

// AnalysisTypeNoChanges marks a result produced from an empty diff.
const AnalysisTypeNoChanges = "no-changes"

// Severity levels used for synthesized issues. Secret findings keep the
// severity assigned by the scanner.
const (
	SeverityInfo     = "info"
	SeverityCritical = "critical"
)

// Recommendation kinds emitted by the synthesizer.
const (
	// RecommendationPatterns points at learned patterns relevant to
	// one changed file.
	RecommendationPatterns = "patterns"

	// RecommendationSimilarRepositories points at repositories that
	// resemble this one.
	RecommendationSimilarRepositories = "similar-repositories"
)

// FileSummary describes one changed file in the final result.
type FileSummary struct {
	// Path is the post-change file path from the diff.
	Path string `json:"path"`

	// Language is inferred from the file extension, "unknown" when
	// the extension is not recognized.
	Language string `json:"language"`

	// Additions counts added lines in the diff.
	Additions int `json:"additions"`

	// Deletions counts removed lines in the diff.
	Deletions int `json:"deletions"`

	// IsNew is true when the diff introduces the file.
	IsNew bool `json:"is_new,omitempty"`

	// Entities counts functions, methods, and classes parsed from the
	// on-disk file. Zero when the file was deleted or unparsable.
	Entities int `json:"entities"`

	// Complexity is the parsed file's complexity proxy. Zero when the
	// file was not analyzed.
	Complexity int `json:"complexity,omitempty"`

	// Dependents counts other changed files that import this one.
	Dependents int `json:"dependents,omitempty"`
}

// Issue is a finding raised against the change.
type Issue struct {
	// Severity is one of the scanner/reviewer severity levels.
	Severity string `json:"severity"`

	// Message describes the finding.
	Message string `json:"message"`

	// Path is the affected file, empty for change-wide issues.
	Path string `json:"path,omitempty"`

	// Line is the 1-based line number, 0 when not line-scoped.
	Line int `json:"line,omitempty"`
}

// Recommendation is an advisory note derived from knowledge context.
type Recommendation struct {
	// Kind is one of the Recommendation* constants.
	Kind string `json:"kind"`

	// Message describes the advice.
	Message string `json:"message"`

	// Path scopes the advice to one file, empty for change-wide advice.
	Path string `json:"path,omitempty"`
}

// AnalysisResult is the terminal artifact of a pipeline run. It is a
// read-only projection; nothing in it is persisted.
type AnalysisResult struct {
	// Type is AnalysisTypeNoChanges for empty diffs, empty otherwise.
	Type string `json:"type,omitempty"`

	// Summary is the one-line change summary.
	Summary string `json:"summary"`

	// Files lists the changed files in diff order.
	Files []FileSummary `json:"files"`

	// Issues lists findings, ordered synthesized first, then secrets.
	Issues []Issue `json:"issues"`

	// Recommendations lists advisory notes from knowledge context.
	Recommendations []Recommendation `json:"recommendations"`

	// EKGContext summarizes how much knowledge context informed the
	// run.
	EKGContext ekg.ContextSummary `json:"ekg_context"`
}

// PipelineResult is the envelope returned by AnalyzeDiff.
type PipelineResult struct {
	// Success is false only for parse-level failures.
	Success bool `json:"success"`

	// Message carries the human-readable failure description.
	Message string `json:"message,omitempty"`

	// Analysis is the result of a successful run, nil on failure.
	Analysis *AnalysisResult `json:"analysis,omitempty"`

	// ElapsedMs is the wall-clock duration of the run.
	ElapsedMs int64 `json:"elapsed_ms"`
}

// =============================================================================
// HTTP request / response types
// =============================================================================

// AnalyzeRequest is the request body for POST /v1/prism/analyze.
type AnalyzeRequest struct {
	// Diff is unified-diff text. An empty diff is valid and yields a
	// no-changes result.
	Diff string `json:"diff"`
}

// ScanRequest is the request body for POST /v1/prism/scan.
type ScanRequest struct {
	// ProjectRoot is the absolute path to the project to analyze.
	// Required.
	ProjectRoot string `json:"project_root" binding:"required"`
}

// ScanResponse is the response for POST /v1/prism/scan.
type ScanResponse struct {
	Success bool `json:"success"`

	// Project is the full project analysis.
	Project *prism.ProjectAnalysis `json:"project"`
}

// ReviewRequest is the request body for POST /v1/prism/review.
type ReviewRequest struct {
	// Diff is unified-diff text. An empty diff yields a passing
	// review with no files.
	Diff string `json:"diff"`
}

// ReviewResponse is the response for POST /v1/prism/review.
type ReviewResponse struct {
	Success bool `json:"success"`

	// Review is the scored review result.
	Review *review.Result `json:"review"`
}

// IndexRequest is the request body for POST /v1/prism/index.
type IndexRequest struct {
	// ProjectRoot is the repository to announce to the ingestion
	// service. Required.
	ProjectRoot string `json:"project_root" binding:"required"`
}

// IndexResponse is the response for POST /v1/prism/index.
type IndexResponse struct {
	Success bool `json:"success"`

	// Repository is the "owner/name" that was announced.
	Repository string `json:"repository"`

	// Receipt identifies the delivered webhook.
	Receipt *ekg.IndexReceipt `json:"receipt"`
}

// ErrorResponse is the failure envelope for every endpoint.
type ErrorResponse struct {
	Success bool `json:"success"`

	// Message is the human-readable failure description.
	Message string `json:"message"`
}

// HealthResponse is the response for GET /v1/prism/health.
type HealthResponse struct {
	// Status is "healthy" whenever the process is serving.
	Status string `json:"status"`

	// Timestamp is the server time in RFC 3339 form.
	Timestamp string `json:"timestamp"`

	// Version is the service version.
	Version string `json:"version"`
}

// ReadyResponse is the response for GET /v1/prism/ready.
type ReadyResponse struct {
	// Ready is true once the pipeline is constructed.
	Ready bool `json:"ready"`

	// State is the pipeline's current lifecycle state.
	State State `json:"state"`

	// ContextConfigured is true when a knowledge context client is
	// wired in.
	ContextConfigured bool `json:"context_configured"`

	// IndexingConfigured is true when the ingestion webhook client is
	// wired in.
	IndexingConfigured bool `json:"indexing_configured"`
}
