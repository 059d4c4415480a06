// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

import (
	"math"
	"regexp"
	"strings"
)

// MaxComplexity caps the reported cyclomatic complexity. Files beyond
// this are uniformly "too complex"; finer resolution adds no signal.
const MaxComplexity = 100

// Branch-point patterns per language family. Word boundaries keep
// identifiers like "iffy" or "format" from counting.
var (
	cStyleBranchPattern = regexp.MustCompile(`\b(if|for|while|case|catch|switch)\b|&&|\|\|`)
	pythonBranchPattern = regexp.MustCompile(`\b(if|elif|for|while|except|and|or)\b`)
	goBranchPattern     = regexp.MustCompile(`\b(if|for|case|select)\b|&&|\|\|`)
)

// ComputeMetrics measures size and structural complexity for a file.
//
// LinesOfCode counts non-blank lines. Complexity approximates
// cyclomatic complexity as 1 plus the number of branch points, capped
// at MaxComplexity. Maintainability follows the Visual Studio
// maintainability index rescaled to 0-100, using lines of code in
// place of Halstead volume:
//
//	MI = clamp((171 - 0.23*complexity - 16.2*ln(LOC)) * 100 / 171)
//
// Works for any language: unsupported languages get keyword counting
// with the C-style pattern, which is close enough for a coarse score.
func ComputeMetrics(content []byte, language string) FileMetrics {
	loc := CountLinesOfCode(content)

	complexity := 1 + countBranches(content, language)
	if complexity > MaxComplexity {
		complexity = MaxComplexity
	}

	return FileMetrics{
		LinesOfCode:     loc,
		Complexity:      complexity,
		Maintainability: maintainabilityIndex(loc, complexity),
	}
}

// CountLinesOfCode counts non-blank lines.
func CountLinesOfCode(content []byte) int {
	loc := 0
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			loc++
		}
	}
	return loc
}

// countBranches counts branch points using the pattern for the file's
// language family.
func countBranches(content []byte, language string) int {
	var pattern *regexp.Regexp
	switch language {
	case "python":
		pattern = pythonBranchPattern
	case "go":
		pattern = goBranchPattern
	default:
		pattern = cStyleBranchPattern
	}
	return len(pattern.FindAllIndex(content, -1))
}

// maintainabilityIndex computes the 0-100 maintainability score.
// An empty file is trivially maintainable.
func maintainabilityIndex(loc, complexity int) int {
	if loc == 0 {
		return 100
	}

	raw := (171.0 - 0.23*float64(complexity) - 16.2*math.Log(float64(loc))) * 100.0 / 171.0
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
