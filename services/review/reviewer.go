// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package review

import (
	"context"
	"fmt"
	"sort"

	"github.com/AleutianAI/ChangePrism/services/prism/ast"
	"github.com/AleutianAI/ChangePrism/services/prism/diff"
	"github.com/AleutianAI/ChangePrism/services/prism/secrets"
)

// maxParameters is the parameter count above which a callable is flagged
// as hard to maintain.
const maxParameters = 5

// Input carries everything the reviewer inspects for one change set.
type Input struct {
	// Lines are the added lines of the change, pattern-matched one at a
	// time.
	Lines []diff.AddedLine

	// Analyses carry parsed entities for entity-level checks. Optional.
	Analyses []*ast.FileAnalysis

	// Secrets are credential findings folded in as critical security
	// issues. Optional.
	Secrets []secrets.Finding
}

// Empty reports whether there is nothing to review.
func (in Input) Empty() bool {
	return len(in.Lines) == 0 && len(in.Analyses) == 0 && len(in.Secrets) == 0
}

// Reviewer runs the rule-based review.
type Reviewer struct {
	patterns []Pattern
}

// NewReviewer creates a reviewer with the default rule set.
func NewReviewer() *Reviewer {
	return &Reviewer{
		patterns: DefaultPatterns(),
	}
}

// NewReviewerWithPatterns creates a reviewer with custom patterns.
func NewReviewerWithPatterns(patterns []Pattern) *Reviewer {
	return &Reviewer{
		patterns: patterns,
	}
}

// Patterns returns the configured patterns.
func (r *Reviewer) Patterns() []Pattern {
	return r.patterns
}

// AddPattern adds a custom rule.
func (r *Reviewer) AddPattern(pattern Pattern) error {
	if pattern.Name == "" {
		return fmt.Errorf("pattern name required")
	}
	if pattern.Pattern == nil {
		return fmt.Errorf("pattern %q has no expression", pattern.Name)
	}
	if pattern.Category == "" {
		return fmt.Errorf("pattern %q has no category", pattern.Name)
	}
	if pattern.Severity == "" {
		pattern.Severity = SeverityInfo
	}
	r.patterns = append(r.patterns, pattern)
	return nil
}

// Review inspects the input and produces a scored result.
//
// Every pattern is matched against every added line, so one line can
// raise several issues. Entity checks and secret findings contribute
// additional issues. Empty input short-circuits to a passing result.
//
// Inputs:
//   - ctx: Context for cancellation
//   - input: Added lines, analyses, and secret findings to review
//
// Outputs:
//   - *Result: Scored review, never nil on success
//   - error: Non-nil only on context cancellation
func (r *Reviewer) Review(ctx context.Context, input Input) (*Result, error) {
	if input.Empty() {
		return noChangesResult(), nil
	}

	// Files with added lines get a review entry even when no issue is
	// raised against them.
	touched := make(map[string]struct{})

	issues := make([]Issue, 0)
	for _, line := range input.Lines {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		touched[line.Path] = struct{}{}
		for _, pattern := range r.patterns {
			if pattern.Pattern.MatchString(line.Text) {
				issues = append(issues, Issue{
					Path:        line.Path,
					Line:        line.Number,
					Category:    pattern.Category,
					Severity:    pattern.Severity,
					Description: pattern.Description,
					Suggestion:  pattern.Suggestion,
				})
			}
		}
	}

	issues = append(issues, entityIssues(input.Analyses)...)
	issues = append(issues, secretIssues(input.Secrets)...)

	return buildResult(issues, touched), nil
}

// entityIssues applies declaration-level checks to parsed entities:
// oversized parameter lists and undocumented exported declarations.
func entityIssues(analyses []*ast.FileAnalysis) []Issue {
	issues := make([]Issue, 0)
	for _, analysis := range analyses {
		if analysis == nil {
			continue
		}
		for _, entity := range analysis.Entities {
			if entity == nil {
				continue
			}
			if entity.Metadata.ParamCount > maxParameters {
				issues = append(issues, Issue{
					Path:     analysis.Path,
					Line:     entity.LineStart,
					Category: CategoryMaintainability,
					Severity: SeverityMedium,
					Description: fmt.Sprintf("%s '%s' has too many parameters (%d)",
						kindLabel(entity.Kind), entity.Name, entity.Metadata.ParamCount),
					Suggestion: "Group related parameters into a struct or options object",
				})
			}
			if entity.Metadata.Exported && !entity.Metadata.HasDoc {
				issues = append(issues, Issue{
					Path:     analysis.Path,
					Line:     entity.LineStart,
					Category: CategoryMaintainability,
					Severity: SeverityLow,
					Description: fmt.Sprintf("Exported %s '%s' has no documentation comment",
						entity.Kind, entity.Name),
					Suggestion: "Add a doc comment describing the contract",
				})
			}
		}
	}
	return issues
}

// secretIssues folds credential findings into review issues. Findings
// keep their own severity; an unset severity counts as critical.
func secretIssues(findings []secrets.Finding) []Issue {
	issues := make([]Issue, 0, len(findings))
	for _, finding := range findings {
		severity := Severity(finding.Severity)
		if severity == "" {
			severity = SeverityCritical
		}
		issues = append(issues, Issue{
			Path:        finding.Path,
			Line:        finding.Line,
			Category:    CategorySecurity,
			Severity:    severity,
			Description: fmt.Sprintf("%s committed in source", finding.Label),
			Suggestion:  "Remove the credential and rotate it immediately",
		})
	}
	return issues
}

// buildResult groups issues by file and computes per-file and overall
// verdicts.
func buildResult(issues []Issue, touched map[string]struct{}) *Result {
	score := ScoreIssues(issues)
	return &Result{
		OverallStatus: statusFor(score),
		Summary:       summaryFor(score),
		Score:         score,
		Files:         groupByFile(issues, touched),
	}
}

// groupByFile splits issues into per-file reviews, ordered by path.
// Touched paths get an entry even without issues.
func groupByFile(issues []Issue, touched map[string]struct{}) []FileReview {
	byPath := make(map[string][]Issue)
	for path := range touched {
		byPath[path] = make([]Issue, 0)
	}
	for _, issue := range issues {
		byPath[issue.Path] = append(byPath[issue.Path], issue)
	}

	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	reviews := make([]FileReview, 0, len(paths))
	for _, path := range paths {
		fileIssues := byPath[path]
		fileScore := ScoreIssues(fileIssues)
		reviews = append(reviews, FileReview{
			FileName:    path,
			Status:      statusFor(fileScore),
			Score:       fileScore,
			Issues:      fileIssues,
			Suggestions: dedupSuggestions(fileIssues),
		})
	}
	return reviews
}

// dedupSuggestions collects distinct suggestions in first-seen order.
func dedupSuggestions(issues []Issue) []string {
	seen := make(map[string]struct{})
	suggestions := make([]string, 0)
	for _, issue := range issues {
		if issue.Suggestion == "" {
			continue
		}
		if _, ok := seen[issue.Suggestion]; ok {
			continue
		}
		seen[issue.Suggestion] = struct{}{}
		suggestions = append(suggestions, issue.Suggestion)
	}
	return suggestions
}

// noChangesResult is the verdict for an empty change set.
func noChangesResult() *Result {
	return &Result{
		OverallStatus: StatusPass,
		Summary:       "No new code changes detected",
		Score:         10,
		Files:         make([]FileReview, 0),
	}
}

// kindLabel renders an entity kind as a sentence-leading word.
func kindLabel(kind ast.EntityKind) string {
	switch kind {
	case ast.EntityMethod:
		return "Method"
	case ast.EntityClass:
		return "Class"
	default:
		return "Function"
	}
}
