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
	"path/filepath"
	"strings"
)

// languageByExtension maps file extensions to canonical language names.
//
// The table covers more languages than the parsers support: the diff
// module uses it to label every changed file, while the analyzer only
// dispatches extensions present in the parser registry.
var languageByExtension = map[string]string{
	".ts":         "typescript",
	".tsx":        "typescript",
	".mts":        "typescript",
	".cts":        "typescript",
	".js":         "javascript",
	".jsx":        "javascript",
	".mjs":        "javascript",
	".cjs":        "javascript",
	".py":         "python",
	".pyi":        "python",
	".go":         "go",
	".rs":         "rust",
	".java":       "java",
	".kt":         "kotlin",
	".rb":         "ruby",
	".php":        "php",
	".c":          "c",
	".h":          "c",
	".cpp":        "cpp",
	".cc":         "cpp",
	".hpp":        "cpp",
	".cs":         "csharp",
	".swift":      "swift",
	".sh":         "shell",
	".bash":       "shell",
	".sql":        "sql",
	".html":       "html",
	".css":        "css",
	".scss":       "css",
	".json":       "json",
	".yaml":       "yaml",
	".yml":        "yaml",
	".toml":       "toml",
	".md":         "markdown",
	".tf":         "terraform",
	".dockerfile": "dockerfile",
	".proto":      "protobuf",
	".graphql":    "graphql",
	".txt":        "text",
}

// LanguageForPath returns the canonical language name for a file path
// based on its extension, or "unknown" when the extension is not
// recognized. Dockerfiles without an extension are special-cased.
func LanguageForPath(path string) string {
	base := filepath.Base(path)
	if strings.EqualFold(base, "Dockerfile") {
		return "dockerfile"
	}
	if strings.EqualFold(base, "Makefile") {
		return "make"
	}

	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return "unknown"
}
