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
	"fmt"
	"log/slog"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/ChangePrism/services/prism/ast"
)

const devNull = "/dev/null"

// Parser converts unified-diff text into a ChangeSet.
//
// Thread Safety: Parse calls are safe for concurrent use. The parser
// maintains no state between calls.
type Parser struct{}

// NewParser creates a new diff parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts diff text into a ChangeSet.
//
// Description:
//
//	Parses the input as a structured multi-file diff first; when the
//	structured parse rejects the input, falls back to a tolerant line
//	scan over git file headers. Malformed input therefore yields an
//	empty or partial ChangeSet, never an error. Empty input yields an
//	empty ChangeSet.
//
// Inputs:
//
//	diffText - Unified diff text (git or plain format, may be empty)
//
// Outputs:
//
//	*ChangeSet - Per-file deltas in header order, with totals and summary
//	error - Reserved for internal invariant violations; nil for bad input
func (p *Parser) Parse(diffText string) (*ChangeSet, error) {
	changeSet := &ChangeSet{Files: make([]FileDelta, 0)}

	if strings.TrimSpace(diffText) != "" {
		files, err := p.parseStructured(diffText)
		if err != nil {
			slog.Debug("structured diff parse failed, falling back to line scan",
				"error", err)
			files = p.scanGitHeaders(diffText)
		}
		changeSet.Files = files
	}

	for _, f := range changeSet.Files {
		changeSet.TotalAdditions += f.Additions
		changeSet.TotalDeletions += f.Deletions
	}
	changeSet.Summary = buildSummary(len(changeSet.Files),
		changeSet.TotalAdditions, changeSet.TotalDeletions)

	return changeSet, nil
}

// newMultiFileDiffs runs the structured multi-file parse.
func newMultiFileDiffs(diffText string) ([]*godiff.FileDiff, error) {
	return godiff.NewMultiFileDiffReader(strings.NewReader(diffText)).ReadAllFiles()
}

// parseStructured parses the diff with the multi-file diff reader.
func (p *Parser) parseStructured(diffText string) ([]FileDelta, error) {
	fileDiffs, err := newMultiFileDiffs(diffText)
	if err != nil {
		return nil, err
	}

	files := make([]FileDelta, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		files = append(files, p.convertFileDiff(fd))
	}
	return files, nil
}

// fileDiffPath resolves the display path for a parsed file diff:
// post-change name first, pre-change name for deletions, git prefixes
// stripped.
func fileDiffPath(fd *godiff.FileDiff) string {
	path := fd.NewName
	if path == "" || path == devNull {
		path = fd.OrigName
	}

	// Strip a/ or b/ prefix from git diffs
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")
	return path
}

// convertFileDiff maps one parsed file diff onto a FileDelta.
func (p *Parser) convertFileDiff(fd *godiff.FileDiff) FileDelta {
	path := fileDiffPath(fd)

	delta := FileDelta{
		Path:     path,
		Language: ast.LanguageForPath(path),
	}

	if fd.OrigName == devNull {
		delta.IsNew = true
	}
	for _, ext := range fd.Extended {
		if strings.HasPrefix(ext, "new file mode") {
			delta.IsNew = true
		}
	}

	for _, hunk := range fd.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
				delta.Additions++
			} else if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
				delta.Deletions++
			}
		}
	}

	return delta
}

// scanGitHeaders is the tolerant fallback: a sequential scan keyed on
// "diff --git" file headers. Added and removed lines outside any file
// block are dropped rather than reported as an error.
func (p *Parser) scanGitHeaders(diffText string) []FileDelta {
	files := make([]FileDelta, 0)
	var current *FileDelta

	flush := func() {
		if current != nil && current.Path != "" {
			files = append(files, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
			path := pathFromGitHeader(line)
			current = &FileDelta{
				Path:     path,
				Language: ast.LanguageForPath(path),
			}
		case strings.HasPrefix(line, "new file mode"):
			if current != nil {
				current.IsNew = true
			}
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// Header lines, never counted
		case strings.HasPrefix(line, "+"):
			if current != nil {
				current.Additions++
			}
		case strings.HasPrefix(line, "-"):
			if current != nil {
				current.Deletions++
			}
		}
	}
	flush()

	return files
}

// pathFromGitHeader extracts the post-change path from a
// "diff --git a/old b/new" header line.
func pathFromGitHeader(line string) string {
	rest := strings.TrimPrefix(line, "diff --git ")
	// The b/ side may contain spaces, so search from the right.
	if idx := strings.LastIndex(rest, " b/"); idx >= 0 {
		return rest[idx+len(" b/"):]
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimPrefix(fields[len(fields)-1], "b/")
}

// buildSummary formats the human-readable change line.
func buildSummary(fileCount, additions, deletions int) string {
	noun := "files"
	if fileCount == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s changed, +%d -%d", fileCount, noun, additions, deletions)
}
