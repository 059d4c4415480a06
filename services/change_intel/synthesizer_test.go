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
	"strings"
	"testing"

	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/prism/diff"
)

func sampleChanges() *diff.ChangeSet {
	return &diff.ChangeSet{
		Files: []diff.FileDelta{
			{Path: "src/auth.py", Additions: 12, Deletions: 3, Language: "python"},
			{Path: "web/app.ts", Additions: 5, Deletions: 1, Language: "typescript", IsNew: true},
		},
		TotalAdditions: 17,
		TotalDeletions: 4,
		Summary:        "2 files changed, +17 -4",
	}
}

func sampleBundle() *ekg.ContextBundle {
	return &ekg.ContextBundle{
		RepositoryIntelligence: &ekg.RepositoryIntelligence{
			ID:              "repo-1",
			FullName:        "acme/payments",
			PrimaryLanguage: "python",
		},
		SimilarRepositories: []ekg.SimilarRepository{
			{FullName: "acme/billing", Similarity: 0.91},
			{FullName: "acme/ledger", Similarity: 0.84},
			{FullName: "acme/invoices", Similarity: 0.78},
			{FullName: "acme/refunds", Similarity: 0.70},
		},
		Patterns: []ekg.Pattern{
			{Name: "input-validation", Category: "security", Language: "python"},
			{Name: "layered-services", Category: "architecture"},
			{Name: "list-comprehension", Category: "style", Language: "python"},
			{Name: "strict-null-checks", Category: "security", Language: "typescript"},
		},
		QueriesMade: 3,
		Confidence:  1.0,
	}
}

func TestSynthesizer_NilInputs(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(nil, nil)
	if result == nil {
		t.Fatal("Synthesize(nil, nil) returned nil")
	}
	if len(result.Files) != 0 || len(result.Issues) != 0 || len(result.Recommendations) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.Files == nil || result.Issues == nil || result.Recommendations == nil {
		t.Error("result slices should be allocated, not nil")
	}
	if result.EKGContext.Confidence == 0 {
		t.Error("nil bundle should still summarize to base confidence")
	}
}

func TestSynthesizer_NilBundle(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), nil)
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 file summaries, got %d", len(result.Files))
	}
	if result.Summary != "2 files changed, +17 -4" {
		t.Errorf("Summary = %q", result.Summary)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("expected no recommendations without a bundle, got %d", len(result.Recommendations))
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues without a bundle, got %d", len(result.Issues))
	}
}

func TestSynthesizer_FileSummariesCarryDeltas(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), nil)

	first := result.Files[0]
	if first.Path != "src/auth.py" || first.Language != "python" {
		t.Errorf("first file = %+v", first)
	}
	if first.Additions != 12 || first.Deletions != 3 || first.IsNew {
		t.Errorf("first file deltas = %+v", first)
	}

	second := result.Files[1]
	if !second.IsNew {
		t.Error("second file should keep IsNew")
	}
}

func TestSynthesizer_PatternRecommendationsPerFile(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), sampleBundle())

	var patternRecs []Recommendation
	for _, r := range result.Recommendations {
		if r.Kind == RecommendationPatterns {
			patternRecs = append(patternRecs, r)
		}
	}
	if len(patternRecs) != 2 {
		t.Fatalf("expected 2 pattern recommendations, got %d: %+v", len(patternRecs), patternRecs)
	}

	// The python file sees the python security pattern plus the
	// language-agnostic architecture pattern, never the style one.
	py := patternRecs[0]
	if py.Path != "src/auth.py" {
		t.Errorf("first pattern recommendation path = %q", py.Path)
	}
	if !strings.Contains(py.Message, "input-validation") ||
		!strings.Contains(py.Message, "layered-services") {
		t.Errorf("python recommendation message = %q", py.Message)
	}
	if strings.Contains(py.Message, "list-comprehension") {
		t.Errorf("style pattern leaked into recommendation: %q", py.Message)
	}
	if strings.Contains(py.Message, "strict-null-checks") {
		t.Errorf("typescript pattern leaked into python recommendation: %q", py.Message)
	}

	ts := patternRecs[1]
	if ts.Path != "web/app.ts" {
		t.Errorf("second pattern recommendation path = %q", ts.Path)
	}
	if !strings.Contains(ts.Message, "strict-null-checks") {
		t.Errorf("typescript recommendation message = %q", ts.Message)
	}
}

func TestSynthesizer_SimilarRepositoriesCappedAtThree(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), sampleBundle())

	var similar []Recommendation
	for _, r := range result.Recommendations {
		if r.Kind == RecommendationSimilarRepositories {
			similar = append(similar, r)
		}
	}
	if len(similar) != 1 {
		t.Fatalf("expected exactly one similar-repositories recommendation, got %d", len(similar))
	}

	msg := similar[0].Message
	for _, name := range []string{"acme/billing", "acme/ledger", "acme/invoices"} {
		if !strings.Contains(msg, name) {
			t.Errorf("message %q missing %q", msg, name)
		}
	}
	if strings.Contains(msg, "acme/refunds") {
		t.Errorf("message %q should cap at three names", msg)
	}
}

func TestSynthesizer_IntelligenceIssue(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), sampleBundle())

	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(result.Issues))
	}
	issue := result.Issues[0]
	if issue.Severity != SeverityInfo {
		t.Errorf("Severity = %q, want %q", issue.Severity, SeverityInfo)
	}
	if !strings.Contains(issue.Message, "acme/payments") ||
		!strings.Contains(issue.Message, "python") {
		t.Errorf("Message = %q", issue.Message)
	}
}

func TestSynthesizer_ContextSummaryCarried(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), sampleBundle())

	ctx := result.EKGContext
	if !ctx.RepositoryKnown {
		t.Error("RepositoryKnown should be true")
	}
	if ctx.SimilarRepositoriesFound != 4 {
		t.Errorf("SimilarRepositoriesFound = %d, want 4", ctx.SimilarRepositoriesFound)
	}
	if ctx.PatternsAnalyzed != 4 {
		t.Errorf("PatternsAnalyzed = %d, want 4", ctx.PatternsAnalyzed)
	}
	if ctx.QueriesMade != 3 {
		t.Errorf("QueriesMade = %d, want 3", ctx.QueriesMade)
	}
	if ctx.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", ctx.Confidence)
	}
}

func TestSynthesizer_EmptyBundleNoAdvice(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(sampleChanges(), ekg.EmptyBundle())

	if len(result.Recommendations) != 0 {
		t.Errorf("expected no recommendations from an empty bundle, got %+v", result.Recommendations)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues from an empty bundle, got %+v", result.Issues)
	}
	if result.EKGContext.PatternsAnalyzed != 0 {
		t.Errorf("PatternsAnalyzed = %d, want 0", result.EKGContext.PatternsAnalyzed)
	}
}
