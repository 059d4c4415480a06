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

import "errors"

// Sentinel errors for common parse failure conditions.
//
// These errors can be checked using errors.Is() to determine the
// category of failure without inspecting error messages. Partial
// failures (a file that parses with syntax errors) are not errors at
// all: they are reported in FileAnalysis.Errors alongside whatever
// entities could still be extracted.
var (
	// ErrUnsupportedLanguage indicates that no parser is available for
	// the requested language or file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrParseFailed indicates that parsing failed completely and no
	// useful result could be produced.
	ErrParseFailed = errors.New("parse failed")

	// ErrInvalidContent indicates that the provided content cannot be
	// processed: nil, non-UTF-8, or binary.
	ErrInvalidContent = errors.New("invalid content")

	// ErrFileTooLarge indicates the file exceeds the parser's size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")

	// ErrContextCanceled indicates that parsing was canceled via context.
	ErrContextCanceled = errors.New("parse canceled")
)

// IsUnsupportedLanguage reports whether err indicates an unsupported
// language or extension.
func IsUnsupportedLanguage(err error) bool {
	return errors.Is(err, ErrUnsupportedLanguage)
}

// IsFileTooLarge reports whether err indicates an oversized file.
func IsFileTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}

// IsInvalidContent reports whether err indicates unprocessable content.
func IsInvalidContent(err error) bool {
	return errors.Is(err, ErrInvalidContent)
}
