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
	"regexp"
)

// Pattern defines one reviewable anti-pattern.
type Pattern struct {
	Name        string
	Category    Category
	Pattern     *regexp.Regexp
	Severity    Severity
	Description string
	Suggestion  string
}

// DefaultPatterns returns the full built-in rule set: security, bug, style
// and performance tables concatenated.
func DefaultPatterns() []Pattern {
	var patterns []Pattern
	patterns = append(patterns, defaultSecurityPatterns()...)
	patterns = append(patterns, defaultBugPatterns()...)
	patterns = append(patterns, defaultStylePatterns()...)
	patterns = append(patterns, defaultPerformancePatterns()...)
	return patterns
}

func defaultSecurityPatterns() []Pattern {
	return []Pattern{
		// Dynamic code execution
		{
			Name:        "eval_usage",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)eval\s*\(`),
			Severity:    SeverityCritical,
			Description: "Use of eval() can lead to code injection vulnerabilities",
			Suggestion:  "Use ast.literal_eval() for safe evaluation or implement proper input validation",
		},
		{
			Name:        "exec_usage",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)exec\s*\(`),
			Severity:    SeverityCritical,
			Description: "Use of exec() can lead to code injection vulnerabilities",
			Suggestion:  "Avoid dynamic code execution or implement strict input validation",
		},
		// Unsafe deserialization
		{
			Name:        "unsafe_pickle",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)pickle\.loads?\s*\(`),
			Severity:    SeverityHigh,
			Description: "Pickle deserialization of untrusted data is unsafe",
			Suggestion:  "Use JSON or implement safe deserialization with validation",
		},
		// Command injection
		{
			Name:        "os_system",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)os\.system\s*\(`),
			Severity:    SeverityHigh,
			Description: "os.system() is vulnerable to shell injection",
			Suggestion:  "Use subprocess with shell=False and validate inputs",
		},
		{
			Name:        "shell_true",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)subprocess\.(call|run|Popen)\s*\([^)]*shell\s*=\s*True`),
			Severity:    SeverityHigh,
			Description: "subprocess with shell=True is vulnerable to injection",
			Suggestion:  "Use shell=False and pass arguments as a list",
		},
		// Hardcoded credentials
		{
			Name:        "hardcoded_password",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)password\s*=`),
			Severity:    SeverityHigh,
			Description: "Hardcoded password detected",
			Suggestion:  "Use environment variables or a secure configuration store",
		},
		{
			Name:        "hardcoded_api_key",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)api[_-]?key\s*=`),
			Severity:    SeverityHigh,
			Description: "Hardcoded API key detected",
			Suggestion:  "Use environment variables or a secure configuration store",
		},
		{
			Name:        "hardcoded_secret",
			Category:    CategorySecurity,
			Pattern:     regexp.MustCompile(`(?i)secret\s*=`),
			Severity:    SeverityHigh,
			Description: "Hardcoded secret detected",
			Suggestion:  "Use environment variables or a secure configuration store",
		},
	}
}

func defaultBugPatterns() []Pattern {
	return []Pattern{
		// None comparisons
		{
			Name:        "equality_with_none",
			Category:    CategoryBug,
			Pattern:     regexp.MustCompile(`==\s*None\b`),
			Severity:    SeverityMedium,
			Description: "Comparison with None using == instead of is",
			Suggestion:  "Use 'is None' for identity comparison",
		},
		{
			Name:        "inequality_with_none",
			Category:    CategoryBug,
			Pattern:     regexp.MustCompile(`!=\s*None\b`),
			Severity:    SeverityMedium,
			Description: "Comparison with None using != instead of is not",
			Suggestion:  "Use 'is not None' for identity comparison",
		},
		// Iteration style
		{
			Name:        "range_len_iteration",
			Category:    CategoryBug,
			Pattern:     regexp.MustCompile(`for\s+\w+\s+in\s+range\s*\(\s*len\s*\(`),
			Severity:    SeverityMedium,
			Description: "Iterating over range(len()) instead of the sequence",
			Suggestion:  "Iterate directly or use enumerate() when the index is needed",
		},
		{
			Name:        "append_empty_list",
			Category:    CategoryBug,
			Pattern:     regexp.MustCompile(`\.append\s*\(\s*\[\s*\]\s*\)`),
			Severity:    SeverityLow,
			Description: "Appending an empty list literal",
			Suggestion:  "Check whether extend() or a comprehension was intended",
		},
		// Exception handling
		{
			Name:        "bare_except",
			Category:    CategoryBug,
			Pattern:     regexp.MustCompile(`except\s*:`),
			Severity:    SeverityMedium,
			Description: "Bare except clause catches all exceptions",
			Suggestion:  "Catch specific exception types",
		},
		{
			Name:        "broad_except",
			Category:    CategoryBug,
			Pattern:     regexp.MustCompile(`except\s+Exception\s*:`),
			Severity:    SeverityMedium,
			Description: "Overly broad exception handler",
			Suggestion:  "Catch the narrowest exception type that covers the failure",
		},
	}
}

func defaultStylePatterns() []Pattern {
	return []Pattern{
		{
			Name:        "debug_print",
			Category:    CategoryStyle,
			Pattern:     regexp.MustCompile(`print\s*\(`),
			Severity:    SeverityLow,
			Description: "print() statement left in code",
			Suggestion:  "Use the logging framework instead of print()",
		},
		{
			Name:        "todo_marker",
			Category:    CategoryStyle,
			Pattern:     regexp.MustCompile(`TODO|FIXME|XXX`),
			Severity:    SeverityLow,
			Description: "Unresolved TODO/FIXME marker",
			Suggestion:  "Resolve the marker or file a tracked issue for it",
		},
		{
			Name:        "trailing_whitespace",
			Category:    CategoryStyle,
			Pattern:     regexp.MustCompile(`\s+$`),
			Severity:    SeverityLow,
			Description: "Trailing whitespace",
			Suggestion:  "Strip trailing whitespace",
		},
		{
			Name:        "wildcard_import",
			Category:    CategoryStyle,
			Pattern:     regexp.MustCompile(`import\s+\*`),
			Severity:    SeverityMedium,
			Description: "Wildcard import pollutes the namespace",
			Suggestion:  "Import the specific names that are used",
		},
	}
}

func defaultPerformancePatterns() []Pattern {
	return []Pattern{
		// Also flagged as a bug pattern; both rules fire on the same line.
		{
			Name:        "range_len_scan",
			Category:    CategoryPerformance,
			Pattern:     regexp.MustCompile(`for\s+\w+\s+in\s+range\s*\(\s*len\s*\(`),
			Severity:    SeverityMedium,
			Description: "Index-based iteration is slower than direct iteration",
			Suggestion:  "Iterate directly or use enumerate() when the index is needed",
		},
		{
			Name:        "list_concat_in_loop",
			Category:    CategoryPerformance,
			Pattern:     regexp.MustCompile(`\+?\+\s*\[`),
			Severity:    SeverityMedium,
			Description: "List concatenation allocates a new list each time",
			Suggestion:  "Use append() or extend() to grow lists in place",
		},
		{
			Name:        "whole_file_read",
			Category:    CategoryPerformance,
			Pattern:     regexp.MustCompile(`open\s*\([^)]*\)\.read\(\)`),
			Severity:    SeverityLow,
			Description: "Reading a whole file into memory at once",
			Suggestion:  "Stream the file or read it in chunks for large inputs",
		},
	}
}
