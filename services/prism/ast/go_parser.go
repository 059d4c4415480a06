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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoParserOption configures a GoParser instance.
type GoParserOption func(*GoParser)

// WithMaxFileSize sets the maximum file size the parser will accept.
func WithMaxFileSize(bytes int64) GoParserOption {
	return func(p *GoParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithParseOptions applies the given ParseOptions to the parser.
func WithParseOptions(opts ParseOptions) GoParserOption {
	return func(p *GoParser) {
		p.parseOptions = opts
	}
}

// GoParser implements SourceParser for Go sources.
//
// Structs become class entities; methods are qualified with their
// receiver type as "Receiver.Method". Import locality cannot be
// decided here because it depends on the enclosing module path, so
// the project analyzer resolves IsLocal after parsing.
//
// Thread Safety:
//
//	GoParser instances are safe for concurrent use. Each Parse call
//	creates its own tree-sitter parser instance internally.
type GoParser struct {
	maxFileSize  int64
	parseOptions ParseOptions
}

// NewGoParser creates a GoParser with the given options.
func NewGoParser(opts ...GoParserOption) *GoParser {
	p := &GoParser{
		maxFileSize:  DefaultMaxFileSize,
		parseOptions: DefaultParseOptions(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse extracts entities, imports, and exports from Go source.
//
// The parser is error-tolerant and returns partial results for
// syntactically invalid code. A non-nil error is returned only for
// complete failures (oversized content, invalid UTF-8, canceled context).
func (p *GoParser) Parse(ctx context.Context, content []byte, filePath string) (analysis *FileAnalysis, err error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", ctxErr)
	}

	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	start := time.Now()
	ctx, span := startParseSpan(ctx, "go", filePath, len(content))
	defer span.End()
	defer func() {
		entityCount, errorCount := 0, 0
		if analysis != nil {
			entityCount = len(analysis.Entities)
			errorCount = len(analysis.Errors)
		}
		setParseSpanResult(span, entityCount, errorCount)
		recordParseMetrics(ctx, "go", time.Since(start), entityCount, err == nil)
	}()

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())

	tree, parseErr := parser.ParseCtx(ctx, nil, content)
	if parseErr != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", parseErr)
	}
	defer tree.Close()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", ctxErr)
	}

	analysis = &FileAnalysis{
		Path:     filePath,
		Language: "go",
		Hash:     hex.EncodeToString(hash[:]),
		Entities: make([]*CodeEntity, 0),
		Imports:  make([]ImportEdge, 0),
		Exports:  make([]string, 0),
		Errors:   make([]string, 0),
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		analysis.Errors = append(analysis.Errors, "tree-sitter returned nil root node")
		analysis.Metrics = ComputeMetrics(content, "go")
		analysis.Finalize(start)
		return analysis, nil
	}

	if rootNode.HasError() {
		analysis.Errors = append(analysis.Errors, "source contains syntax errors")
	}

	p.extractImports(rootNode, content, filePath, analysis)
	p.extractDeclarations(rootNode, content, filePath, analysis)
	analysis.Metrics = ComputeMetrics(content, "go")

	if validateErr := analysis.Validate(); validateErr != nil {
		return nil, fmt.Errorf("result validation failed: %w", validateErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", ctxErr)
	}

	analysis.Finalize(start)
	return analysis, nil
}

// Language returns "go".
func (p *GoParser) Language() string {
	return "go"
}

// Extensions returns the extensions this parser handles.
func (p *GoParser) Extensions() []string {
	return []string{".go"}
}

// extractImports extracts import declarations.
func (p *GoParser) extractImports(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "import_declaration" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "import_spec":
				p.processImportSpec(gc, content, filePath, analysis)
			case "import_spec_list":
				// Grouped imports: import ( ... )
				for k := 0; k < int(gc.ChildCount()); k++ {
					spec := gc.Child(k)
					if spec.Type() == "import_spec" {
						p.processImportSpec(spec, content, filePath, analysis)
					}
				}
			}
		}
	}
}

// processImportSpec extracts a single import specification.
func (p *GoParser) processImportSpec(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	var alias, path string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "package_identifier", "blank_identifier", "dot":
			alias = string(content[child.StartByte():child.EndByte()])
		case "interpreted_string_literal":
			raw := string(content[child.StartByte():child.EndByte()])
			path = strings.Trim(raw, "\"")
		}
	}

	if path == "" {
		return
	}

	edge := ImportEdge{
		Module:   path,
		Location: nodeLocation(node, filePath),
	}
	switch alias {
	case "", "_":
		// Plain or side-effect import: no local binding of interest.
	case ".":
		edge.IsWildcard = true
	default:
		edge.Specifiers = []ImportSpecifier{{Imported: "*", Local: alias}}
	}

	analysis.Imports = append(analysis.Imports, edge)
}

// extractDeclarations extracts functions, methods, types, and the
// exported names of vars and consts.
func (p *GoParser) extractDeclarations(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_declaration":
			p.processFunctionDecl(child, content, filePath, root, analysis)
		case "method_declaration":
			p.processMethodDecl(child, content, filePath, root, analysis)
		case "type_declaration":
			p.processTypeDecl(child, content, filePath, root, analysis)
		case "var_declaration", "const_declaration":
			p.collectValueExports(child, content, analysis)
		}
	}
}

// processFunctionDecl extracts a function declaration as an entity.
func (p *GoParser) processFunctionDecl(node *sitter.Node, content []byte, filePath string, root *sitter.Node, analysis *FileAnalysis) {
	var name, returns string
	paramCount := -1

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "parameter_list":
			// First parameter_list is params, a second one is return values
			if paramCount < 0 {
				paramCount = countGoParameters(child)
			} else {
				returns = string(content[child.StartByte():child.EndByte()])
			}
		case "type_identifier", "pointer_type", "slice_type", "map_type", "channel_type", "qualified_type", "interface_type", "struct_type", "function_type":
			returns = string(content[child.StartByte():child.EndByte()])
		}
	}

	if name == "" {
		return
	}
	if paramCount < 0 {
		paramCount = 0
	}

	exported := goNameExported(name)
	if !p.parseOptions.IncludePrivate && !exported {
		return
	}

	analysis.Entities = append(analysis.Entities, &CodeEntity{
		ID:        GenerateEntityID(filePath, name),
		Kind:      EntityFunction,
		Name:      name,
		FilePath:  filePath,
		LineStart: int(node.StartPoint().Row + 1),
		LineEnd:   int(node.EndPoint().Row + 1),
		Metadata: EntityMetadata{
			Exported:   exported,
			HasDoc:     hasGoDocComment(root, node),
			ParamCount: paramCount,
			ReturnType: returns,
		},
	})
	if exported {
		analysis.Exports = append(analysis.Exports, name)
	}
}

// processMethodDecl extracts a method declaration as an entity named
// "Receiver.Method".
func (p *GoParser) processMethodDecl(node *sitter.Node, content []byte, filePath string, root *sitter.Node, analysis *FileAnalysis) {
	var name, receiverText, returns string
	paramCount := -1
	sawReceiver := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "parameter_list":
			// First parameter_list is the receiver, second is params,
			// a third one is return values
			switch {
			case !sawReceiver:
				receiverText = string(content[child.StartByte():child.EndByte()])
				sawReceiver = true
			case paramCount < 0:
				paramCount = countGoParameters(child)
			default:
				returns = string(content[child.StartByte():child.EndByte()])
			}
		case "field_identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "type_identifier", "pointer_type", "slice_type", "map_type", "channel_type", "qualified_type":
			returns = string(content[child.StartByte():child.EndByte()])
		}
	}

	if name == "" {
		return
	}
	if paramCount < 0 {
		paramCount = 0
	}

	exported := goNameExported(name)
	if !p.parseOptions.IncludePrivate && !exported {
		return
	}

	receiver := receiverTypeName(receiverText)
	qualified := name
	if receiver != "" {
		qualified = receiver + "." + name
	}

	analysis.Entities = append(analysis.Entities, &CodeEntity{
		ID:        GenerateEntityID(filePath, qualified),
		Kind:      EntityMethod,
		Name:      qualified,
		FilePath:  filePath,
		LineStart: int(node.StartPoint().Row + 1),
		LineEnd:   int(node.EndPoint().Row + 1),
		Metadata: EntityMetadata{
			Exported:   exported,
			HasDoc:     hasGoDocComment(root, node),
			ParamCount: paramCount,
			Parent:     receiver,
			ReturnType: returns,
		},
	})
}

// processTypeDecl extracts struct types as class entities. Other type
// declarations (interfaces, aliases) only contribute exported names.
func (p *GoParser) processTypeDecl(node *sitter.Node, content []byte, filePath string, root *sitter.Node, analysis *FileAnalysis) {
	for i := 0; i < int(node.ChildCount()); i++ {
		spec := node.Child(i)
		if spec.Type() != "type_spec" && spec.Type() != "type_alias" {
			continue
		}

		var name string
		isStruct := false
		for j := 0; j < int(spec.ChildCount()); j++ {
			gc := spec.Child(j)
			switch gc.Type() {
			case "type_identifier":
				if name == "" {
					name = string(content[gc.StartByte():gc.EndByte()])
				}
			case "struct_type":
				isStruct = true
			}
		}

		if name == "" {
			continue
		}

		exported := goNameExported(name)
		if exported {
			analysis.Exports = append(analysis.Exports, name)
		}
		if !isStruct {
			continue
		}
		if !p.parseOptions.IncludePrivate && !exported {
			continue
		}

		analysis.Entities = append(analysis.Entities, &CodeEntity{
			ID:        GenerateEntityID(filePath, name),
			Kind:      EntityClass,
			Name:      name,
			FilePath:  filePath,
			LineStart: int(spec.StartPoint().Row + 1),
			LineEnd:   int(spec.EndPoint().Row + 1),
			Metadata: EntityMetadata{
				Exported: exported,
				HasDoc:   hasGoDocComment(root, node),
			},
		})
	}
}

// collectValueExports adds exported var and const names to the export
// list.
func (p *GoParser) collectValueExports(node *sitter.Node, content []byte, analysis *FileAnalysis) {
	var walkSpec func(spec *sitter.Node)
	walkSpec = func(spec *sitter.Node) {
		switch spec.Type() {
		case "var_spec", "const_spec":
			for i := 0; i < int(spec.ChildCount()); i++ {
				gc := spec.Child(i)
				if gc.Type() != "identifier" {
					continue
				}
				name := string(content[gc.StartByte():gc.EndByte()])
				if goNameExported(name) {
					analysis.Exports = append(analysis.Exports, name)
				}
			}
		case "var_spec_list", "const_spec_list":
			for i := 0; i < int(spec.ChildCount()); i++ {
				walkSpec(spec.Child(i))
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkSpec(node.Child(i))
	}
}

// countGoParameters counts the declared parameters in a parameter_list.
// Multi-name declarations like "a, b int" count each name.
func countGoParameters(node *sitter.Node) int {
	count := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "parameter_declaration":
			names := 0
			for j := 0; j < int(child.ChildCount()); j++ {
				if child.Child(j).Type() == "identifier" {
					names++
				}
			}
			if names == 0 {
				// Unnamed parameter, type only.
				names = 1
			}
			count += names
		case "variadic_parameter_declaration":
			count++
		}
	}
	return count
}

// receiverTypeName extracts the bare type name from a receiver list
// like "(s *Server)" or "(c Client)".
func receiverTypeName(receiver string) string {
	trimmed := strings.Trim(receiver, "()")
	// Drop type parameters on generic receivers before splitting, the
	// parameter list may contain spaces: "c *Cache[K, V]" -> "c *Cache"
	if idx := strings.IndexByte(trimmed, '['); idx > 0 {
		trimmed = trimmed[:idx]
	}
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return ""
	}
	name := fields[len(fields)-1]
	return strings.TrimPrefix(name, "*")
}

// goNameExported reports whether a Go identifier is exported.
func goNameExported(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

// hasGoDocComment reports whether a comment ends on the line directly
// above the node. Go doc comments are siblings at file scope rather
// than children of the declaration.
func hasGoDocComment(root, node *sitter.Node) bool {
	if node == nil {
		return false
	}

	nodeStartLine := int(node.StartPoint().Row)

	for i := 0; i < int(root.ChildCount()); i++ {
		sibling := root.Child(i)
		if sibling.Type() != "comment" {
			continue
		}
		commentEndLine := int(sibling.EndPoint().Row)
		if commentEndLine == nodeStartLine-1 || commentEndLine == nodeStartLine {
			return true
		}
	}

	return false
}

// Compile-time interface compliance check.
var _ SourceParser = (*GoParser)(nil)
