// Package ast provides types and interfaces for language-agnostic source analysis.
//
// This package defines the core data structures used throughout the Prism
// service for representing extracted code entities, import edges, and per-file
// metrics. All parser implementations (TypeScript, JavaScript, Python, Go)
// produce output conforming to these types.
//
// Design principles:
//   - Language-agnostic: Types work for any supported language
//   - Timestamps as int64 UnixMilli per project conventions
//   - No map[string]interface{} - concrete types only
//   - Deterministic entity IDs so repeated analysis of the same tree
//     produces the same identifiers
package ast

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EntityKind identifies the category of an extracted code entity.
type EntityKind int

const (
	// EntityUnknown is the zero value for unrecognized entities.
	EntityUnknown EntityKind = iota

	// EntityFunction is a free-standing function.
	EntityFunction

	// EntityMethod is a function bound to a class or receiver type.
	EntityMethod

	// EntityClass is a class, struct, or equivalent type declaration.
	EntityClass
)

// entityKindNames maps EntityKind values to their string representations.
var entityKindNames = map[EntityKind]string{
	EntityUnknown:  "unknown",
	EntityFunction: "function",
	EntityMethod:   "method",
	EntityClass:    "class",
}

// String returns the lowercase string representation of the kind.
// Unrecognized values return "unknown".
func (k EntityKind) String() string {
	if name, ok := entityKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON serializes the kind as its string name.
func (k EntityKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON deserializes a kind from either a string name or an
// integer value for backward compatibility.
func (k *EntityKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = ParseEntityKind(s)
		return nil
	}

	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("EntityKind must be a string or integer: %w", err)
	}
	*k = EntityKind(i)
	return nil
}

// ParseEntityKind converts a string to an EntityKind.
// Unrecognized strings return EntityUnknown.
func ParseEntityKind(s string) EntityKind {
	for kind, name := range entityKindNames {
		if name == strings.ToLower(strings.TrimSpace(s)) {
			return kind
		}
	}
	return EntityUnknown
}

// Location identifies a position range within a source file.
//
// Lines are 1-indexed (first line is 1). Columns are 0-indexed
// (first column is 0), matching tree-sitter's native coordinates.
type Location struct {
	// FilePath is the path of the containing file, relative to the
	// analysis root where possible.
	FilePath string `json:"file_path"`

	// StartLine is the 1-indexed line where the range begins.
	StartLine int `json:"start_line"`

	// EndLine is the 1-indexed line where the range ends (inclusive).
	EndLine int `json:"end_line"`

	// StartCol is the 0-indexed column where the range begins.
	StartCol int `json:"start_col"`

	// EndCol is the 0-indexed column where the range ends.
	EndCol int `json:"end_col"`
}

// String returns a human-readable "file:line:col" representation.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.FilePath, l.StartLine, l.StartCol)
}

// EntityMetadata carries per-entity attributes beyond name and position.
//
// Fields default to their zero values for languages where an attribute
// does not apply (e.g. Async for Go functions).
type EntityMetadata struct {
	// Exported reports whether the entity is visible outside its file
	// or package (export keyword, uppercase first letter in Go,
	// no leading underscore in Python).
	Exported bool `json:"exported,omitempty"`

	// Async reports whether the entity is declared async.
	Async bool `json:"async,omitempty"`

	// Static reports whether a method is static.
	Static bool `json:"static,omitempty"`

	// Abstract reports whether a class or method is abstract.
	Abstract bool `json:"abstract,omitempty"`

	// HasDoc reports whether a documentation comment immediately
	// precedes the entity (JSDoc, docstring, or Go doc comment).
	HasDoc bool `json:"has_doc,omitempty"`

	// ParamCount is the number of declared parameters for functions
	// and methods. Zero for classes.
	ParamCount int `json:"param_count,omitempty"`

	// Parent is the enclosing class name for methods, or the receiver
	// type for Go methods. Empty for top-level entities.
	Parent string `json:"parent,omitempty"`

	// ReturnType is the declared return type annotation, when the
	// language surface carries one. Empty when inferred or absent.
	ReturnType string `json:"return_type,omitempty"`

	// Decorators lists decorator names applied to the entity
	// (TypeScript decorators, Python decorators).
	Decorators []string `json:"decorators,omitempty"`
}

// CodeEntity is a single extracted declaration: a function, method, or class.
type CodeEntity struct {
	// ID is a deterministic identifier derived from the file path and
	// qualified entity name. Re-analyzing an unchanged file yields the
	// same ID, which lets downstream stores upsert instead of duplicate.
	ID string `json:"id"`

	// Kind categorizes the entity.
	Kind EntityKind `json:"kind"`

	// Name is the declared name. Methods are qualified with their
	// parent as "Class.method".
	Name string `json:"name"`

	// FilePath is the path of the file containing the declaration.
	FilePath string `json:"file_path"`

	// LineStart is the 1-indexed first line of the declaration.
	LineStart int `json:"line_start"`

	// LineEnd is the 1-indexed last line of the declaration.
	LineEnd int `json:"line_end"`

	// Metadata carries language-specific attributes.
	Metadata EntityMetadata `json:"metadata"`
}

// GenerateEntityID builds the deterministic ID for an entity.
//
// The ID is a pure function of file path and qualified name so that
// repeated analysis of the same tree is idempotent. Line numbers are
// deliberately excluded: moving a function within a file must not
// change its identity.
func GenerateEntityID(filePath, name string) string {
	return fmt.Sprintf("%s:%s", filePath, name)
}

// Validate checks the entity for structural correctness.
// Returns nil if valid, or a ValidationError describing the first invalid field.
func (e *CodeEntity) Validate() error {
	if e.Name == "" {
		return ValidationError{Field: "Name", Message: "must not be empty"}
	}
	if e.FilePath == "" {
		return ValidationError{Field: "FilePath", Message: "must not be empty"}
	}
	if strings.Contains(e.FilePath, "..") {
		return ValidationError{Field: "FilePath", Message: "must not contain path traversal (..)"}
	}
	if e.LineStart < 1 {
		return ValidationError{Field: "LineStart", Message: "must be >= 1 (1-indexed)"}
	}
	if e.LineEnd < e.LineStart {
		return ValidationError{Field: "LineEnd", Message: "must be >= LineStart"}
	}
	return nil
}

// ImportSpecifier is a single name bound by an import statement.
type ImportSpecifier struct {
	// Imported is the name as exported by the source module.
	// "default" for default imports, "*" for namespace imports.
	Imported string `json:"imported"`

	// Local is the name the binding is visible under in the importing
	// file. Equal to Imported unless the import uses an alias.
	Local string `json:"local"`

	// IsTypeOnly reports whether the specifier is a TypeScript
	// type-only import.
	IsTypeOnly bool `json:"is_type_only,omitempty"`
}

// ImportEdge is a dependency from the analyzed file on another module.
type ImportEdge struct {
	// Module is the import path as written in the source
	// ("react", "./utils", "os", "golang.org/x/sync/errgroup").
	Module string `json:"module"`

	// Specifiers lists the individual names bound by the import.
	// Empty for side-effect imports and Go imports.
	Specifiers []ImportSpecifier `json:"specifiers,omitempty"`

	// IsLocal reports whether the module resolves within the analyzed
	// project: relative paths, or Go paths under the project's module
	// path. Only local edges become graph edges downstream.
	IsLocal bool `json:"is_local"`

	// IsRelative reports whether the path is relative ("./x", "../y",
	// or a leading-dot Python import).
	IsRelative bool `json:"is_relative,omitempty"`

	// IsTypeOnly reports whether the whole import is type-only
	// (import type { X } from "y").
	IsTypeOnly bool `json:"is_type_only,omitempty"`

	// IsDefault reports whether the import binds a default export.
	IsDefault bool `json:"is_default,omitempty"`

	// IsNamespace reports whether the import binds the whole module
	// namespace (import * as ns).
	IsNamespace bool `json:"is_namespace,omitempty"`

	// IsWildcard reports whether the import is a Python wildcard
	// (from x import *).
	IsWildcard bool `json:"is_wildcard,omitempty"`

	// IsCommonJS reports whether the dependency comes from a
	// require() call rather than an ES import statement.
	IsCommonJS bool `json:"is_commonjs,omitempty"`

	// Location is where the import statement appears.
	Location Location `json:"location"`
}

// FileMetrics summarizes size and structural complexity for one file.
type FileMetrics struct {
	// LinesOfCode counts non-blank lines.
	LinesOfCode int `json:"lines_of_code"`

	// Complexity approximates cyclomatic complexity: 1 plus the number
	// of branch points. Capped at 100.
	Complexity int `json:"complexity"`

	// Maintainability scores the file from 0 (unmaintainable) to 100,
	// derived from size and complexity.
	Maintainability int `json:"maintainability"`
}

// FileAnalysis is the complete analysis result for a single source file.
//
// Note: All timestamps are int64 UnixMilli per project conventions.
type FileAnalysis struct {
	// Path is the analyzed file path.
	Path string `json:"path"`

	// Language is the detected language ("typescript", "python", ...).
	Language string `json:"language"`

	// Entities lists extracted functions, methods, and classes.
	// Empty for unsupported languages.
	Entities []*CodeEntity `json:"entities"`

	// Imports lists the file's module dependencies.
	Imports []ImportEdge `json:"imports"`

	// Exports lists the names the file exports, including names that
	// do not produce entities (interfaces, type aliases, constants).
	Exports []string `json:"exports"`

	// Dependencies lists resolved project-relative paths of local
	// imports. Populated by project-level analysis once the file set
	// is known; empty for single-file analysis.
	Dependencies []string `json:"dependencies,omitempty"`

	// Metrics carries size and complexity measurements. Populated even
	// when the language is unsupported.
	Metrics FileMetrics `json:"metrics"`

	// Errors lists non-fatal problems encountered during parsing.
	// A file with errors may still have partial results.
	Errors []string `json:"errors,omitempty"`

	// Hash is the SHA-256 of the file content, hex-encoded.
	Hash string `json:"hash,omitempty"`

	// ParsedAtMilli is when the analysis completed, UnixMilli.
	ParsedAtMilli int64 `json:"parsed_at_milli"`

	// ParseDurationMs is how long the analysis took.
	ParseDurationMs int64 `json:"parse_duration_ms"`
}

// Finalize stamps the analysis with completion time and duration.
func (a *FileAnalysis) Finalize(start time.Time) {
	a.ParsedAtMilli = time.Now().UnixMilli()
	a.ParseDurationMs = time.Since(start).Milliseconds()
}

// EntityCount returns the number of extracted entities.
func (a *FileAnalysis) EntityCount() int {
	return len(a.Entities)
}

// LocalImports returns only the import edges that resolve within the
// analyzed project.
func (a *FileAnalysis) LocalImports() []ImportEdge {
	var local []ImportEdge
	for _, imp := range a.Imports {
		if imp.IsLocal {
			local = append(local, imp)
		}
	}
	return local
}

// Validate checks the analysis for structural correctness, including
// all contained entities.
func (a *FileAnalysis) Validate() error {
	if a.Path == "" {
		return ValidationError{Field: "Path", Message: "must not be empty"}
	}
	if a.Language == "" {
		return ValidationError{Field: "Language", Message: "must not be empty"}
	}
	for i, entity := range a.Entities {
		if entity == nil {
			return ValidationError{
				Field:   fmt.Sprintf("Entities[%d]", i),
				Message: "must not be nil",
			}
		}
		if err := entity.Validate(); err != nil {
			return fmt.Errorf("entity %d (%s): %w", i, entity.Name, err)
		}
	}
	return nil
}

// ValidationError represents a validation failure with field context.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
