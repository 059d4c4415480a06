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
	"regexp"
	"strings"
	"testing"

	"github.com/AleutianAI/ChangePrism/services/prism/ast"
	"github.com/AleutianAI/ChangePrism/services/prism/diff"
	"github.com/AleutianAI/ChangePrism/services/prism/secrets"
)

func TestNewReviewer(t *testing.T) {
	reviewer := NewReviewer()

	if reviewer == nil {
		t.Fatal("NewReviewer returned nil")
	}
	if len(reviewer.Patterns()) == 0 {
		t.Error("Expected default patterns")
	}
}

func TestReviewer_Review_Empty(t *testing.T) {
	reviewer := NewReviewer()

	result, err := reviewer.Review(context.Background(), Input{})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if result.OverallStatus != StatusPass {
		t.Errorf("OverallStatus = %s, want PASS", result.OverallStatus)
	}
	if result.Score != 10 {
		t.Errorf("Score = %d, want 10", result.Score)
	}
	if result.Summary != "No new code changes detected" {
		t.Errorf("Summary = %q", result.Summary)
	}
	if len(result.Files) != 0 {
		t.Errorf("Files = %v, want none", result.Files)
	}
}

func TestReviewer_Review_CleanFileGetsEntry(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Lines: []diff.AddedLine{
			{Path: "main.go", Number: 3, Text: `value := compute(input)`},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if result.Score != 10 || result.OverallStatus != StatusPass {
		t.Errorf("got %d/%s, want 10/PASS", result.Score, result.OverallStatus)
	}
	if len(result.Files) != 1 {
		t.Fatalf("Files = %v, want one entry", result.Files)
	}

	file := result.Files[0]
	if file.FileName != "main.go" {
		t.Errorf("FileName = %q, want main.go", file.FileName)
	}
	if file.Status != StatusPass || file.Score != 10 {
		t.Errorf("file verdict = %s/%d, want PASS/10", file.Status, file.Score)
	}
	if len(file.Issues) != 0 {
		t.Errorf("Issues = %v, want none", file.Issues)
	}
}

func TestReviewer_Review_HardcodedPassword(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Lines: []diff.AddedLine{
			{Path: "config.py", Number: 12, Text: `password = "hunter2"`},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if result.Score != 8 {
		t.Errorf("Score = %d, want 8 for one high issue", result.Score)
	}
	if result.OverallStatus != StatusPass {
		t.Errorf("OverallStatus = %s, want PASS", result.OverallStatus)
	}
	if result.Summary != "Code quality is good with minor issues." {
		t.Errorf("Summary = %q", result.Summary)
	}

	if len(result.Files) != 1 || len(result.Files[0].Issues) != 1 {
		t.Fatalf("Files = %+v, want one file with one issue", result.Files)
	}
	issue := result.Files[0].Issues[0]
	if issue.Category != CategorySecurity || issue.Severity != SeverityHigh {
		t.Errorf("issue = %s/%s, want Security/high", issue.Category, issue.Severity)
	}
	if issue.Line != 12 {
		t.Errorf("Line = %d, want 12", issue.Line)
	}
	if issue.Description != "Hardcoded password detected" {
		t.Errorf("Description = %q", issue.Description)
	}
	if len(result.Files[0].Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want one", result.Files[0].Suggestions)
	}
}

func TestReviewer_Review_FailsOnPileup(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Lines: []diff.AddedLine{
			{Path: "run.py", Number: 1, Text: `result = eval(user_input)`},
			{Path: "run.py", Number: 2, Text: `exec(payload)`},
			{Path: "run.py", Number: 3, Text: `os.system("rm " + path)`},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	// Two criticals and a high: penalty 8, score 2.
	if result.Score != 2 {
		t.Errorf("Score = %d, want 2", result.Score)
	}
	if result.OverallStatus != StatusFail {
		t.Errorf("OverallStatus = %s, want FAIL", result.OverallStatus)
	}
	if result.Summary != "Code has significant issues that require immediate attention." {
		t.Errorf("Summary = %q", result.Summary)
	}
}

func TestReviewer_Review_ScoreFloor(t *testing.T) {
	reviewer := NewReviewer()

	lines := make([]diff.AddedLine, 0, 4)
	for i := 0; i < 4; i++ {
		lines = append(lines, diff.AddedLine{Path: "x.py", Number: i + 1, Text: `eval(data)`})
	}

	result, err := reviewer.Review(context.Background(), Input{Lines: lines})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("Score = %d, want floor of 1", result.Score)
	}
}

func TestReviewer_Review_RangeLenFiresTwice(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Lines: []diff.AddedLine{
			{Path: "loop.py", Number: 5, Text: `for i in range(len(items)):`},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if len(result.Files) != 1 || len(result.Files[0].Issues) != 2 {
		t.Fatalf("Files = %+v, want one file with two issues", result.Files)
	}

	categories := make(map[Category]bool)
	for _, issue := range result.Files[0].Issues {
		categories[issue.Category] = true
	}
	if !categories[CategoryBug] || !categories[CategoryPerformance] {
		t.Errorf("categories = %v, want Bug and Performance", categories)
	}
	if result.Score != 8 {
		t.Errorf("Score = %d, want 8 for two medium issues", result.Score)
	}
}

func TestReviewer_Review_EntityChecks(t *testing.T) {
	reviewer := NewReviewer()

	analyses := []*ast.FileAnalysis{
		{
			Path: "svc.py",
			Entities: []*ast.CodeEntity{
				{
					Name:      "process",
					Kind:      ast.EntityFunction,
					LineStart: 10,
					Metadata:  ast.EntityMetadata{ParamCount: 7, HasDoc: true},
				},
				{
					Name:      "Widget",
					Kind:      ast.EntityClass,
					LineStart: 40,
					Metadata:  ast.EntityMetadata{Exported: true, HasDoc: false},
				},
			},
		},
	}

	result, err := reviewer.Review(context.Background(), Input{Analyses: analyses})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("Files = %+v, want one", result.Files)
	}

	issues := result.Files[0].Issues
	if len(issues) != 2 {
		t.Fatalf("Issues = %+v, want two", issues)
	}
	if issues[0].Description != "Function 'process' has too many parameters (7)" {
		t.Errorf("Description = %q", issues[0].Description)
	}
	if issues[0].Line != 10 || issues[0].Severity != SeverityMedium {
		t.Errorf("issue = line %d %s, want line 10 medium", issues[0].Line, issues[0].Severity)
	}
	if issues[1].Description != "Exported class 'Widget' has no documentation comment" {
		t.Errorf("Description = %q", issues[1].Description)
	}
	if issues[1].Severity != SeverityLow || issues[1].Category != CategoryMaintainability {
		t.Errorf("issue = %s/%s, want Maintainability/low", issues[1].Category, issues[1].Severity)
	}
}

func TestReviewer_Review_ParamCountAtLimitPasses(t *testing.T) {
	reviewer := NewReviewer()

	analyses := []*ast.FileAnalysis{
		{
			Path: "svc.py",
			Entities: []*ast.CodeEntity{
				{
					Name:      "configure",
					Kind:      ast.EntityFunction,
					LineStart: 1,
					Metadata:  ast.EntityMetadata{ParamCount: maxParameters, HasDoc: true},
				},
			},
		},
	}

	result, err := reviewer.Review(context.Background(), Input{Analyses: analyses})
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if got := result.IssueCount(); got != 0 {
		t.Errorf("IssueCount = %d, want 0 at the parameter limit", got)
	}
}

func TestReviewer_Review_SecretFinding(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Secrets: []secrets.Finding{
			{
				Rule:     "aws_access_key",
				Label:    "AWS Access Key",
				Severity: secrets.SeverityCritical,
				Path:     "config.py",
				Line:     3,
			},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	// One critical: penalty 3, score 7, right at the pass threshold.
	if result.Score != 7 || result.OverallStatus != StatusPass {
		t.Errorf("got %d/%s, want 7/PASS", result.Score, result.OverallStatus)
	}

	if len(result.Files) != 1 || len(result.Files[0].Issues) != 1 {
		t.Fatalf("Files = %+v, want one file with one issue", result.Files)
	}
	issue := result.Files[0].Issues[0]
	if issue.Category != CategorySecurity || issue.Severity != SeverityCritical {
		t.Errorf("issue = %s/%s, want Security/critical", issue.Category, issue.Severity)
	}
	if issue.Description != "AWS Access Key committed in source" {
		t.Errorf("Description = %q", issue.Description)
	}
	if issue.Path != "config.py" || issue.Line != 3 {
		t.Errorf("issue at %s:%d, want config.py:3", issue.Path, issue.Line)
	}
}

func TestReviewer_Review_GroupsByFile(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Lines: []diff.AddedLine{
			{Path: "z.py", Number: 1, Text: `eval(x)`},
			{Path: "a.py", Number: 2, Text: `print("debug")`},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("Files = %+v, want two", result.Files)
	}
	if result.Files[0].FileName != "a.py" || result.Files[1].FileName != "z.py" {
		t.Errorf("file order = %s, %s; want a.py, z.py",
			result.Files[0].FileName, result.Files[1].FileName)
	}

	// a.py has one low issue, z.py one critical.
	if result.Files[0].Score != 10 || result.Files[0].Status != StatusPass {
		t.Errorf("a.py verdict = %d/%s, want 10/PASS", result.Files[0].Score, result.Files[0].Status)
	}
	if result.Files[1].Score != 7 {
		t.Errorf("z.py score = %d, want 7", result.Files[1].Score)
	}

	// Overall spans both files: penalty 3.5 truncates to 3.
	if result.Score != 7 || result.OverallStatus != StatusPass {
		t.Errorf("overall = %d/%s, want 7/PASS", result.Score, result.OverallStatus)
	}
}

func TestReviewer_Review_SuggestionsDeduplicated(t *testing.T) {
	reviewer := NewReviewer()

	input := Input{
		Lines: []diff.AddedLine{
			{Path: "cfg.py", Number: 1, Text: `api_key = "one"`},
			{Path: "cfg.py", Number: 2, Text: `secret = "two"`},
		},
	}

	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("Files = %+v, want one", result.Files)
	}
	if len(result.Files[0].Issues) != 2 {
		t.Fatalf("Issues = %+v, want two", result.Files[0].Issues)
	}

	suggestions := result.Files[0].Suggestions
	if len(suggestions) != 1 {
		t.Fatalf("Suggestions = %v, want one after dedup", suggestions)
	}
	if !strings.Contains(suggestions[0], "environment variables") {
		t.Errorf("Suggestion = %q", suggestions[0])
	}
}

func TestReviewer_Review_Canceled(t *testing.T) {
	reviewer := NewReviewer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := Input{
		Lines: []diff.AddedLine{{Path: "x.py", Number: 1, Text: "a = 1"}},
	}
	if _, err := reviewer.Review(ctx, input); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestReviewer_AddPattern(t *testing.T) {
	reviewer := NewReviewerWithPatterns(nil)

	err := reviewer.AddPattern(Pattern{
		Name:        "console_log",
		Category:    CategoryStyle,
		Pattern:     regexp.MustCompile(`console\.log\s*\(`),
		Description: "console.log left in code",
	})
	if err != nil {
		t.Fatalf("AddPattern error: %v", err)
	}
	if len(reviewer.Patterns()) != 1 {
		t.Fatalf("Patterns = %d, want 1", len(reviewer.Patterns()))
	}
	if reviewer.Patterns()[0].Severity != SeverityInfo {
		t.Errorf("default severity = %q, want info", reviewer.Patterns()[0].Severity)
	}

	if err := reviewer.AddPattern(Pattern{Pattern: regexp.MustCompile(`x`)}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := reviewer.AddPattern(Pattern{Name: "no_expr", Category: CategoryStyle}); err == nil {
		t.Error("expected error for missing expression")
	}
	if err := reviewer.AddPattern(Pattern{Name: "no_cat", Pattern: regexp.MustCompile(`y`)}); err == nil {
		t.Error("expected error for missing category")
	}

	input := Input{
		Lines: []diff.AddedLine{{Path: "app.ts", Number: 9, Text: `console.log(state)`}},
	}
	result, err := reviewer.Review(context.Background(), input)
	if err != nil {
		t.Fatalf("Review error: %v", err)
	}
	if got := result.IssueCount(); got != 1 {
		t.Errorf("IssueCount = %d, want custom rule to fire once", got)
	}
}

func TestScoreIssues(t *testing.T) {
	tests := []struct {
		name       string
		severities []Severity
		want       int
	}{
		{"no issues", nil, 10},
		{"one info rounds away", []Severity{SeverityInfo}, 10},
		{"one low rounds away", []Severity{SeverityLow}, 10},
		{"two lows", []Severity{SeverityLow, SeverityLow}, 9},
		{"one medium", []Severity{SeverityMedium}, 9},
		{"one high", []Severity{SeverityHigh}, 8},
		{"one critical", []Severity{SeverityCritical}, 7},
		{"critical plus high", []Severity{SeverityCritical, SeverityHigh}, 5},
		{"overload floors at one", []Severity{
			SeverityCritical, SeverityCritical, SeverityCritical, SeverityCritical,
		}, 1},
	}

	for _, tt := range tests {
		issues := make([]Issue, 0, len(tt.severities))
		for _, s := range tt.severities {
			issues = append(issues, Issue{Severity: s})
		}
		if got := ScoreIssues(issues); got != tt.want {
			t.Errorf("%s: ScoreIssues = %d, want %d", tt.name, got, tt.want)
		}
	}
}
