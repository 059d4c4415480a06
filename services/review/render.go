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
	"encoding/json"
	"fmt"
	"strings"
)

// ToJSON renders the result as indented JSON.
func (r *Result) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode review result: %w", err)
	}
	return string(data), nil
}

// ToMarkdown renders the result as a Markdown report: overall verdict
// first, then one section per file with its issues and deduplicated
// suggestions.
func (r *Result) ToMarkdown() string {
	var b strings.Builder

	b.WriteString("# Code Review Results\n\n")
	fmt.Fprintf(&b, "**Overall Status**: %s\n", r.OverallStatus)
	fmt.Fprintf(&b, "**Score**: %d/10\n", r.Score)
	fmt.Fprintf(&b, "**Summary**: %s\n\n", r.Summary)

	for _, file := range r.Files {
		fmt.Fprintf(&b, "## File: %s\n", file.FileName)
		fmt.Fprintf(&b, "- **Status**: %s\n", file.Status)
		fmt.Fprintf(&b, "- **Score**: %d/10\n", file.Score)
		fmt.Fprintf(&b, "- **Issues Found**: %d\n\n", len(file.Issues))

		if len(file.Issues) > 0 {
			b.WriteString("### Issues:\n\n")
			for _, issue := range file.Issues {
				fmt.Fprintf(&b, "- **Line %d**: %s (%s)\n", issue.Line, issue.Category, issue.Severity)
				fmt.Fprintf(&b, "  - %s\n", issue.Description)
				if issue.Suggestion != "" {
					fmt.Fprintf(&b, "  - **Suggestion**: %s\n", issue.Suggestion)
				}
			}
			b.WriteString("\n")
		}

		if len(file.Suggestions) > 0 {
			b.WriteString("### General Suggestions:\n\n")
			for _, suggestion := range file.Suggestions {
				fmt.Fprintf(&b, "- %s\n", suggestion)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
