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
	"context"
	"strings"
	"sync"
)

const (
	// DefaultMaxFileSize is the maximum file size parsers accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold above which parsers log a warning (1MB).
	WarnFileSize = 1 * 1024 * 1024
)

// SourceParser extracts entities, imports, and exports from source code.
//
// Implementations must be safe for concurrent use: the project analyzer
// calls Parse from multiple goroutines against a shared parser instance.
type SourceParser interface {
	// Parse analyzes source content and returns the extracted analysis.
	//
	// The returned FileAnalysis may carry partial results together with
	// entries in its Errors field when the source has syntax errors.
	// A non-nil error means no useful result could be produced.
	Parse(ctx context.Context, content []byte, filePath string) (*FileAnalysis, error)

	// Language returns the canonical lowercase language name
	// ("typescript", "javascript", "python", "go").
	Language() string

	// Extensions returns the file extensions this parser handles,
	// each with a leading dot (".ts", ".tsx").
	Extensions() []string
}

// ParseOptions configures parser behavior.
type ParseOptions struct {
	// IncludePrivate determines whether non-exported entities are
	// extracted. Default true.
	IncludePrivate bool

	// IncludeTypeOnly determines whether TypeScript type-only imports
	// are reported as import edges. Default true: type-only edges
	// still express a real file dependency.
	IncludeTypeOnly bool
}

// DefaultParseOptions returns the standard options used by the analyzer.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		IncludePrivate:  true,
		IncludeTypeOnly: true,
	}
}

// ParserRegistry maps languages and file extensions to parsers.
//
// The registry is safe for concurrent use. Lookups are case-insensitive
// for both language names and extensions.
type ParserRegistry struct {
	mu          sync.RWMutex
	byLanguage  map[string]SourceParser
	byExtension map[string]SourceParser
}

// NewParserRegistry creates an empty registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{
		byLanguage:  make(map[string]SourceParser),
		byExtension: make(map[string]SourceParser),
	}
}

// NewDefaultRegistry creates a registry with all built-in parsers
// registered: TypeScript (including TSX), JavaScript, Python, and Go.
func NewDefaultRegistry() *ParserRegistry {
	r := NewParserRegistry()
	r.Register(NewTypeScriptParser())
	r.Register(NewJavaScriptParser())
	r.Register(NewPythonParser())
	r.Register(NewGoParser())
	return r
}

// Register adds a parser under its language name and all of its
// extensions. A nil parser is ignored. Later registrations overwrite
// earlier ones for the same language or extension.
func (r *ParserRegistry) Register(p SourceParser) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.byLanguage[strings.ToLower(p.Language())] = p
	for _, ext := range p.Extensions() {
		r.byExtension[strings.ToLower(ext)] = p
	}
}

// GetByLanguage returns the parser registered for the given language.
func (r *ParserRegistry) GetByLanguage(language string) (SourceParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byLanguage[strings.ToLower(language)]
	return p, ok
}

// GetByExtension returns the parser registered for the given file
// extension. The extension must include the leading dot.
func (r *ParserRegistry) GetByExtension(ext string) (SourceParser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byExtension[strings.ToLower(ext)]
	return p, ok
}

// Languages returns the registered language names in no particular order.
func (r *ParserRegistry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	languages := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		languages = append(languages, lang)
	}
	return languages
}

// Extensions returns the registered extensions in no particular order.
func (r *ParserRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	return exts
}
