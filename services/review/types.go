// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package review runs rule-based code review over the added lines of a
// change set.
//
// # Description
//
// The reviewer matches pre-compiled pattern tables (security, bug, style,
// performance) against each added line, applies entity-level checks to
// analyzed declarations, and folds secret-scanner findings in as critical
// issues. Issues are weighted by severity into a 1-10 score per file and
// overall; a score of 7 or better passes. Results render to JSON or
// Markdown.
//
// # Thread Safety
//
// A Reviewer is immutable after construction and safe for concurrent use.
package review

import (
	"math"
)

// =============================================================================
// Severity
// =============================================================================

// Severity ranks how much an issue should weigh on the score.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Weight returns the score penalty for one issue of this severity.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 0.5
	case SeverityInfo:
		return 0.1
	}
	return 0
}

// =============================================================================
// Categories
// =============================================================================

// Category names the review dimension an issue belongs to.
type Category string

const (
	CategorySecurity        Category = "Security"
	CategoryBug             Category = "Bug"
	CategoryPerformance     Category = "Performance"
	CategoryStyle           Category = "Style"
	CategoryMaintainability Category = "Maintainability"
)

// =============================================================================
// Results
// =============================================================================

// Review outcome statuses.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// PassThreshold is the minimum score that passes review.
const PassThreshold = 7

// Issue is a single finding against one added line or entity.
type Issue struct {
	// Path is the file the issue was found in.
	Path string `json:"path,omitempty"`

	// Line is the 1-indexed line in the post-change file. Zero when the
	// line could not be placed (malformed diff input).
	Line int `json:"line"`

	// Category is the review dimension.
	Category Category `json:"type"`

	// Severity ranks the issue.
	Severity Severity `json:"severity"`

	// Description says what was found.
	Description string `json:"description"`

	// Suggestion says how to fix it, when the rule has one.
	Suggestion string `json:"suggestion,omitempty"`
}

// FileReview is the per-file portion of a review result.
type FileReview struct {
	FileName    string   `json:"file_name"`
	Status      string   `json:"status"`
	Score       int      `json:"score"`
	Issues      []Issue  `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Result is a complete review: overall verdict plus per-file detail.
type Result struct {
	OverallStatus string       `json:"overall_status"`
	Summary       string       `json:"summary"`
	Score         int          `json:"score"`
	Files         []FileReview `json:"files"`
}

// Passed reports whether the overall review passed.
func (r *Result) Passed() bool {
	return r.OverallStatus == StatusPass
}

// IssueCount returns the total number of issues across all files.
func (r *Result) IssueCount() int {
	count := 0
	for _, f := range r.Files {
		count += len(f.Issues)
	}
	return count
}

// =============================================================================
// Scoring
// =============================================================================

// ScoreIssues computes the 1-10 quality score: 10 minus the truncated sum
// of severity weights, floored at 1. No issues scores a clean 10.
func ScoreIssues(issues []Issue) int {
	if len(issues) == 0 {
		return 10
	}
	var penalty float64
	for _, issue := range issues {
		penalty += issue.Severity.Weight()
	}
	score := 10 - int(math.Trunc(penalty))
	if score < 1 {
		return 1
	}
	return score
}

// statusFor maps a score to PASS or FAIL.
func statusFor(score int) string {
	if score >= PassThreshold {
		return StatusPass
	}
	return StatusFail
}

// summaryFor renders the banded summary line for a score.
func summaryFor(score int) string {
	switch {
	case score >= 8:
		return "Code quality is good with minor issues."
	case score >= 6:
		return "Code has some issues that should be addressed."
	case score >= 4:
		return "Code has several issues that need attention."
	default:
		return "Code has significant issues that require immediate attention."
	}
}
