// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// repoNamePattern matches "owner/name" repository identifiers.
// Allows: letters, digits, dots, hyphens, underscores in each segment.
// Max length: 100 characters per segment (GitHub's limit is 100 for names).
var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,99}/[A-Za-z0-9._\-]{1,100}$`)

// languagePattern matches language identifiers used in pattern queries.
var languagePattern = regexp.MustCompile(`^[a-z][a-z0-9+#\-]{0,29}$`)

// ValidateRepoFullName validates an "owner/name" repository identifier
// before it is used to derive storage keys or webhook payloads.
//
// Valid names:
//   - Exactly one slash separating owner and name
//   - Letters, digits, dots, underscores, hyphens in each segment
//   - Owner starts with an alphanumeric character
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidateRepoFullName(fullName); err != nil {
//	    return "", fmt.Errorf("invalid repository: %w", err)
//	}
//	// Safe to use as a storage key
func ValidateRepoFullName(fullName string) error {
	if fullName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}

	if !repoNamePattern.MatchString(fullName) {
		return fmt.Errorf("invalid repository name: %q (must be owner/name with alphanumerics, dots, underscores, or hyphens)", fullName)
	}

	return nil
}

// SanitizeRepoFullName normalizes and validates a repository identifier.
// Returns the trimmed name if valid, or an error if invalid.
func SanitizeRepoFullName(fullName string) (string, error) {
	normalized := strings.TrimSpace(fullName)
	if err := ValidateRepoFullName(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ValidateLanguage validates a language identifier before it is used in
// a pattern query. Identifiers are lowercase: "typescript", "python",
// "go", "c++", "c#".
func ValidateLanguage(language string) error {
	if language == "" {
		return fmt.Errorf("language cannot be empty")
	}

	if !languagePattern.MatchString(language) {
		return fmt.Errorf("invalid language identifier: %q", language)
	}

	return nil
}

// SanitizeLanguage normalizes and validates a language identifier.
// Returns the lowercase identifier if valid, or an error if invalid.
func SanitizeLanguage(language string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(language))
	if err := ValidateLanguage(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
