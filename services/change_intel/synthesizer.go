// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change_intel

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/prism/diff"
)

// maxSimilarNamed caps how many similar repositories one recommendation
// names.
const maxSimilarNamed = 3

// advisoryCategories are the pattern categories worth surfacing against
// individual files.
var advisoryCategories = map[string]bool{
	"security":     true,
	"architecture": true,
}

// Synthesizer combines a change set with knowledge context into the
// final analysis result.
//
// # Thread Safety
//
// Synthesizer is stateless and safe for concurrent use.
type Synthesizer struct{}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Synthesize builds an AnalysisResult from a change set and a context
// bundle.
//
// Description:
//
//	Pure combination step, no I/O. Every changed file gets a summary
//	entry. Security and architecture patterns relevant to a file's
//	language become one recommendation per file; similar repositories
//	become one recommendation naming up to three of them; repository
//	intelligence becomes one informational issue. A nil change set or
//	bundle degrades to an empty result, never a panic.
//
// Inputs:
//
//	changes - Parsed change set, may be nil
//	bundle - Best-effort knowledge context, may be nil
//
// Outputs:
//
//	*AnalysisResult - Never nil; slices are always non-nil
func (s *Synthesizer) Synthesize(changes *diff.ChangeSet, bundle *ekg.ContextBundle) *AnalysisResult {
	result := emptyAnalysis()
	result.EKGContext = bundle.Summarize()
	if changes == nil {
		return result
	}

	result.Summary = changes.Summary
	for _, f := range changes.Files {
		result.Files = append(result.Files, FileSummary{
			Path:      f.Path,
			Language:  f.Language,
			Additions: f.Additions,
			Deletions: f.Deletions,
			IsNew:     f.IsNew,
		})
	}

	if bundle == nil {
		return result
	}

	for _, f := range changes.Files {
		names := advisoryPatternNames(bundle.Patterns, f.Language)
		if len(names) == 0 {
			continue
		}
		result.Recommendations = append(result.Recommendations, Recommendation{
			Kind: RecommendationPatterns,
			Path: f.Path,
			Message: fmt.Sprintf("Learned patterns apply to this file: %s",
				strings.Join(names, ", ")),
		})
	}

	if names := similarNames(bundle.SimilarRepositories); len(names) > 0 {
		result.Recommendations = append(result.Recommendations, Recommendation{
			Kind: RecommendationSimilarRepositories,
			Message: fmt.Sprintf("Similar repositories may have solved this already: %s",
				strings.Join(names, ", ")),
		})
	}

	if ri := bundle.RepositoryIntelligence; ri != nil {
		language := ri.PrimaryLanguage
		if language == "" {
			language = "unknown"
		}
		result.Issues = append(result.Issues, Issue{
			Severity: SeverityInfo,
			Message: fmt.Sprintf("Repository %s is known to the knowledge graph (primary language: %s)",
				ri.FullName, language),
		})
	}

	return result
}

// emptyAnalysis returns a result with allocated empty slices so JSON
// renders [] rather than null.
func emptyAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Files:           make([]FileSummary, 0),
		Issues:          make([]Issue, 0),
		Recommendations: make([]Recommendation, 0),
	}
}

// advisoryPatternNames returns the names of security and architecture
// patterns relevant to a file language. A pattern with no language
// applies to every file; otherwise languages must match.
func advisoryPatternNames(patterns []ekg.Pattern, language string) []string {
	names := make([]string, 0)
	for _, p := range patterns {
		if p.Name == "" || !advisoryCategories[strings.ToLower(p.Category)] {
			continue
		}
		if p.Language != "" && !strings.EqualFold(p.Language, language) {
			continue
		}
		names = append(names, p.Name)
	}
	return names
}

// similarNames returns up to maxSimilarNamed repository full names.
func similarNames(repos []ekg.SimilarRepository) []string {
	names := make([]string, 0, maxSimilarNamed)
	for _, r := range repos {
		if r.FullName == "" {
			continue
		}
		names = append(names, r.FullName)
		if len(names) == maxSimilarNamed {
			break
		}
	}
	return names
}
