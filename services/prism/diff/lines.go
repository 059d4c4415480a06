// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diff

import (
	"log/slog"
	"strconv"
	"strings"
)

// AddedLine is one "+" line of a unified diff, carrying its 1-based
// line number in the post-change file. Number is 0 when the source
// diff was too malformed to track positions.
type AddedLine struct {
	// Path is the post-change file path.
	Path string `json:"path"`

	// Number is the line's position in the new file, 1-based.
	Number int `json:"number"`

	// Text is the line content without the leading "+".
	Text string `json:"text"`
}

// AddedLines extracts every added line of the diff with its position
// in the post-change file.
//
// Description:
//
//	Walks hunks from the structured parse, advancing the new-file line
//	counter on context and added lines only. Falls back to the same
//	tolerant git-header scan as Parse when the structured parse rejects
//	the input, so malformed diffs yield a partial or empty result, not
//	an error. Review rules and secret scanning run over this output.
//
// Inputs:
//
//	diffText - Unified diff text (git or plain format, may be empty)
//
// Outputs:
//
//	[]AddedLine - Added lines in diff order, never nil
func (p *Parser) AddedLines(diffText string) []AddedLine {
	added := make([]AddedLine, 0)
	if strings.TrimSpace(diffText) == "" {
		return added
	}

	fileDiffs, err := newMultiFileDiffs(diffText)
	if err != nil {
		slog.Debug("structured diff parse failed, scanning lines directly",
			"error", err)
		return scanAddedLines(diffText)
	}

	for _, fd := range fileDiffs {
		path := fileDiffPath(fd)
		for _, hunk := range fd.Hunks {
			lineNo := int(hunk.NewStartLine)
			body := strings.Split(string(hunk.Body), "\n")
			if n := len(body); n > 0 && body[n-1] == "" {
				body = body[:n-1]
			}
			for _, raw := range body {
				switch {
				case strings.HasPrefix(raw, "+"):
					added = append(added, AddedLine{
						Path:   path,
						Number: lineNo,
						Text:   strings.TrimPrefix(raw, "+"),
					})
					lineNo++
				case strings.HasPrefix(raw, "-"):
					// Removed lines occupy no position in the new file.
				default:
					lineNo++
				}
			}
		}
	}
	return added
}

// scanAddedLines is the tolerant fallback: tracks the current file from
// "diff --git" headers and the new-file position from "@@" hunk
// headers. Added lines outside any file block are dropped; added lines
// outside any hunk get Number 0.
func scanAddedLines(diffText string) []AddedLine {
	added := make([]AddedLine, 0)
	var path string
	lineNo := 0
	inHunk := false

	for _, raw := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(raw, "diff --git "):
			path = pathFromGitHeader(raw)
			inHunk = false
		case strings.HasPrefix(raw, "@@"):
			lineNo = newStartFromHunkHeader(raw)
			inHunk = lineNo > 0
		case strings.HasPrefix(raw, "+++"), strings.HasPrefix(raw, "---"):
			// Header lines
		case strings.HasPrefix(raw, "+"):
			if path == "" {
				continue
			}
			number := 0
			if inHunk {
				number = lineNo
				lineNo++
			}
			added = append(added, AddedLine{
				Path:   path,
				Number: number,
				Text:   strings.TrimPrefix(raw, "+"),
			})
		case strings.HasPrefix(raw, "-"):
			// Removed lines occupy no position in the new file.
		default:
			if inHunk {
				lineNo++
			}
		}
	}
	return added
}

// newStartFromHunkHeader parses the new-file start line out of an
// "@@ -a,b +c,d @@" header, 0 when malformed.
func newStartFromHunkHeader(header string) int {
	idx := strings.Index(header, "+")
	if idx < 0 {
		return 0
	}
	rest := header[idx+1:]
	end := strings.IndexAny(rest, ", @")
	if end < 0 {
		end = len(rest)
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
