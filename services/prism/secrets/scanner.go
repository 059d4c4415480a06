// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package secrets detects hardcoded credentials in source lines.
//
// # Description
//
// Line-oriented pattern scanning for leaked credentials: cloud access
// keys, provider tokens, credential assignments, database URLs with
// embedded passwords, and private key material. The scanner runs over
// the added lines of a diff during review, so findings carry file
// paths and new-file line numbers.
//
// # Thread Safety
//
// Scanner is safe for concurrent use once constructed. Patterns are
// compiled at construction; AddPattern is not safe to call while scans
// are running.
package secrets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// SeverityCritical is the severity assigned to every default pattern.
// Leaked credentials are never less than critical.
const SeverityCritical = "critical"

// maxMatchesPerLine caps matches per pattern on a single line to bound
// work on pathological input.
const maxMatchesPerLine = 10

// maxExcerptLength bounds how much of a matched secret is echoed back
// in a finding.
const maxExcerptLength = 50

// SecretPattern defines one credential pattern to detect.
type SecretPattern struct {
	// Name is the stable rule identifier ("aws_access_key").
	Name string

	// Label is the human-readable credential type ("AWS Access Key").
	Label string

	// Severity of findings produced by this pattern.
	Severity string

	// Pattern is the compiled expression matched against each line.
	Pattern *regexp.Regexp
}

// Line is one line of text to scan, with its origin.
type Line struct {
	// Path is the file the line belongs to, empty when unknown.
	Path string

	// Number is the 1-based line number, 0 when unknown.
	Number int

	// Text is the line content.
	Text string
}

// Finding is one detected credential.
type Finding struct {
	// Rule is the matching pattern's name.
	Rule string `json:"rule"`

	// Label is the credential type.
	Label string `json:"label"`

	// Severity of the finding.
	Severity string `json:"severity"`

	// Path is the file the credential was found in.
	Path string `json:"path,omitempty"`

	// Line is the 1-based line number, 0 when unknown.
	Line int `json:"line"`

	// Excerpt is the start of the matched text, truncated so reports
	// never echo a full secret.
	Excerpt string `json:"excerpt"`
}

// Scanner scans lines for hardcoded credentials.
type Scanner struct {
	patterns []SecretPattern
}

// NewScanner creates a scanner with the default patterns.
func NewScanner() *Scanner {
	return &Scanner{
		patterns: DefaultPatterns(),
	}
}

// NewScannerWithPatterns creates a scanner with custom patterns.
func NewScannerWithPatterns(patterns []SecretPattern) *Scanner {
	return &Scanner{
		patterns: patterns,
	}
}

// DefaultPatterns returns the standard credential patterns.
func DefaultPatterns() []SecretPattern {
	return []SecretPattern{
		{
			Name:     "api_key",
			Label:    "API Key",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*["']?[a-zA-Z0-9_-]{20,}`),
		},
		{
			Name:     "secret_key",
			Label:    "Secret Key",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(secret[_-]?key|secretkey|secret_token)\s*[=:]\s*["']?[a-zA-Z0-9_-]{20,}`),
		},
		{
			Name:     "password",
			Label:    "Password",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*["'][^"']{8,}`),
		},
		{
			Name:     "private_key_assignment",
			Label:    "Private Key",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(private[_-]?key)\s*[=:]\s*["']?-----BEGIN`),
		},
		{
			Name:     "private_key_block",
			Label:    "Private Key",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`-----BEGIN (RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY( BLOCK)?-----`),
		},
		{
			Name:     "stripe_live_key",
			Label:    "Stripe Live Key",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`sk_live_[a-zA-Z0-9]{24,}`),
		},
		{
			Name:     "aws_access_key",
			Label:    "AWS Access Key",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		},
		{
			Name:     "postgres_url",
			Label:    "Database URL",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(database|db)[_-]?url\s*[=:]\s*["']?postgres://[^"\s]+`),
		},
		{
			Name:     "mysql_url",
			Label:    "Database URL",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(database|db)[_-]?url\s*[=:]\s*["']?mysql://[^"\s]+`),
		},
		{
			Name:     "mongodb_url",
			Label:    "MongoDB URL",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(database|db)[_-]?url\s*[=:]\s*["']?mongodb\+srv://[^"\s]+`),
		},
		{
			Name:     "github_token",
			Label:    "GitHub Token",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`ghp_[a-zA-Z0-9]{36}`),
		},
		{
			Name:     "slack_token",
			Label:    "Slack Token",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z]{10,}`),
		},
	}
}

// Scan scans a whole text blob, numbering lines from 1.
//
// Inputs:
//   - ctx: Context for cancellation
//   - path: File path recorded on findings, may be empty
//   - content: Text to scan
//
// Outputs:
//   - []Finding: Findings in line order, never nil
//   - error: Non-nil only on context cancellation
func (s *Scanner) Scan(ctx context.Context, path, content string) ([]Finding, error) {
	rawLines := strings.Split(content, "\n")
	lines := make([]Line, 0, len(rawLines))
	for i, text := range rawLines {
		lines = append(lines, Line{Path: path, Number: i + 1, Text: text})
	}
	return s.ScanLines(ctx, lines)
}

// ScanLines scans pre-numbered lines, typically the added lines of a
// diff.
//
// Inputs:
//   - ctx: Context for cancellation
//   - lines: Lines with their origin paths and numbers
//
// Outputs:
//   - []Finding: Findings in line order, never nil
//   - error: Non-nil only on context cancellation
func (s *Scanner) ScanLines(ctx context.Context, lines []Line) ([]Finding, error) {
	findings := make([]Finding, 0)

	for _, line := range lines {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		for _, pattern := range s.patterns {
			matches := pattern.Pattern.FindAllString(line.Text, maxMatchesPerLine)
			for _, match := range matches {
				findings = append(findings, Finding{
					Rule:     pattern.Name,
					Label:    pattern.Label,
					Severity: pattern.Severity,
					Path:     line.Path,
					Line:     line.Number,
					Excerpt:  truncateExcerpt(match, maxExcerptLength),
				})
			}
		}
	}

	return findings, nil
}

// Patterns returns the configured patterns.
func (s *Scanner) Patterns() []SecretPattern {
	return s.patterns
}

// AddPattern adds a custom pattern.
func (s *Scanner) AddPattern(pattern SecretPattern) error {
	if pattern.Name == "" {
		return fmt.Errorf("pattern name required")
	}
	if pattern.Pattern == nil {
		return fmt.Errorf("pattern %q has no expression", pattern.Name)
	}
	if pattern.Severity == "" {
		pattern.Severity = SeverityCritical
	}
	s.patterns = append(s.patterns, pattern)
	return nil
}

func truncateExcerpt(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
