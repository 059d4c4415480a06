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
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptParserOption configures a TypeScriptParser instance.
type TypeScriptParserOption func(*TypeScriptParser)

// WithTypeScriptMaxFileSize sets the maximum file size the parser will accept.
func WithTypeScriptMaxFileSize(bytes int64) TypeScriptParserOption {
	return func(p *TypeScriptParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithTypeScriptParseOptions applies the given ParseOptions to the parser.
func WithTypeScriptParseOptions(opts ParseOptions) TypeScriptParserOption {
	return func(p *TypeScriptParser) {
		p.parseOptions = opts
	}
}

// TypeScriptParser implements SourceParser for TypeScript and TSX sources.
//
// TypeScriptParser uses tree-sitter to parse source files and extract
// entities, import edges, and exported names. It is error-tolerant: files
// with syntax errors yield partial results with entries in
// FileAnalysis.Errors.
//
// Thread Safety:
//
//	TypeScriptParser instances are safe for concurrent use. Each Parse
//	call creates its own tree-sitter parser instance internally.
type TypeScriptParser struct {
	maxFileSize  int64
	parseOptions ParseOptions
}

// NewTypeScriptParser creates a TypeScriptParser with the given options.
//
// Example:
//
//	parser := NewTypeScriptParser(WithTypeScriptMaxFileSize(5 * 1024 * 1024))
func NewTypeScriptParser(opts ...TypeScriptParserOption) *TypeScriptParser {
	p := &TypeScriptParser{
		maxFileSize:  DefaultMaxFileSize,
		parseOptions: DefaultParseOptions(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse extracts entities, imports, and exports from TypeScript source.
//
// The parser is error-tolerant and returns partial results for
// syntactically invalid code. A non-nil error is returned only for
// complete failures:
//   - ErrFileTooLarge: content exceeds the configured limit
//   - ErrInvalidContent: content is not valid UTF-8
//   - Context errors: the context was canceled or timed out
//
// The .tsx extension selects the TSX grammar; all other extensions use
// the plain TypeScript grammar.
func (p *TypeScriptParser) Parse(ctx context.Context, content []byte, filePath string) (analysis *FileAnalysis, err error) {
	// Check context before starting
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", ctxErr)
	}

	// Validate file size
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}

	// Log warning for large files
	if len(content) > WarnFileSize {
		slog.Warn("parsing large file",
			slog.String("file", filePath),
			slog.Int("size_bytes", len(content)))
	}

	// Validate UTF-8
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	start := time.Now()
	ctx, span := startParseSpan(ctx, "typescript", filePath, len(content))
	defer span.End()
	defer func() {
		entityCount, errorCount := 0, 0
		if analysis != nil {
			entityCount = len(analysis.Entities)
			errorCount = len(analysis.Errors)
		}
		setParseSpanResult(span, entityCount, errorCount)
		recordParseMetrics(ctx, "typescript", time.Since(start), entityCount, err == nil)
	}()

	// Compute hash before parsing (captures input)
	hash := sha256.Sum256(content)

	// Create tree-sitter parser (new instance per call for thread safety)
	parser := sitter.NewParser()

	// Use TSX grammar for .tsx files, TypeScript grammar otherwise
	if strings.HasSuffix(filePath, ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	tree, parseErr := parser.ParseCtx(ctx, nil, content)
	if parseErr != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", parseErr)
	}
	defer tree.Close()

	// Check context after parsing
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", ctxErr)
	}

	analysis = &FileAnalysis{
		Path:     filePath,
		Language: "typescript",
		Hash:     hex.EncodeToString(hash[:]),
		Entities: make([]*CodeEntity, 0),
		Imports:  make([]ImportEdge, 0),
		Exports:  make([]string, 0),
		Errors:   make([]string, 0),
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		analysis.Errors = append(analysis.Errors, "tree-sitter returned nil root node")
		analysis.Metrics = ComputeMetrics(content, "typescript")
		analysis.Finalize(start)
		return analysis, nil
	}

	if rootNode.HasError() {
		analysis.Errors = append(analysis.Errors, "source contains syntax errors")
	}

	p.extractImports(rootNode, content, filePath, analysis)
	p.extractDeclarations(rootNode, content, filePath, analysis)
	analysis.Metrics = ComputeMetrics(content, "typescript")

	if validateErr := analysis.Validate(); validateErr != nil {
		return nil, fmt.Errorf("result validation failed: %w", validateErr)
	}

	// Check context one final time
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", ctxErr)
	}

	analysis.Finalize(start)
	return analysis, nil
}

// Language returns "typescript".
func (p *TypeScriptParser) Language() string {
	return "typescript"
}

// Extensions returns the extensions this parser handles.
func (p *TypeScriptParser) Extensions() []string {
	return []string{".ts", ".tsx", ".mts", ".cts"}
}

// extractImports extracts import statements from the AST.
func (p *TypeScriptParser) extractImports(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			p.processImportStatement(child, content, filePath, analysis)
		case "lexical_declaration", "variable_declaration":
			// Check for CommonJS require
			p.processCommonJSRequire(child, content, filePath, analysis)
		}
	}
}

// processImportStatement handles ES module import statements.
func (p *TypeScriptParser) processImportStatement(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	var module string
	var specifiers []ImportSpecifier
	var isDefault, isNamespace, isTypeOnly bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type":
			// import type { ... }
			isTypeOnly = true
		case "import_clause":
			p.processImportClause(child, content, &specifiers, &isDefault, &isNamespace)
		case "string":
			module = extractStringContent(child, content)
		}
	}

	if module == "" {
		return
	}
	if isTypeOnly && !p.parseOptions.IncludeTypeOnly {
		return
	}

	if isTypeOnly {
		for i := range specifiers {
			specifiers[i].IsTypeOnly = true
		}
	}

	relative := isRelativeModule(module)
	analysis.Imports = append(analysis.Imports, ImportEdge{
		Module:      module,
		Specifiers:  specifiers,
		IsLocal:     relative,
		IsRelative:  relative,
		IsTypeOnly:  isTypeOnly,
		IsDefault:   isDefault,
		IsNamespace: isNamespace,
		Location:    nodeLocation(node, filePath),
	})
}

// processImportClause extracts the bindings from an import clause.
func (p *TypeScriptParser) processImportClause(node *sitter.Node, content []byte, specifiers *[]ImportSpecifier, isDefault, isNamespace *bool) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			// Default import: import foo from 'bar'
			local := string(content[child.StartByte():child.EndByte()])
			*specifiers = append(*specifiers, ImportSpecifier{Imported: "default", Local: local})
			*isDefault = true
		case "namespace_import":
			// Namespace import: import * as foo from 'bar'
			*isNamespace = true
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "identifier" {
					local := string(content[gc.StartByte():gc.EndByte()])
					*specifiers = append(*specifiers, ImportSpecifier{Imported: "*", Local: local})
				}
			}
		case "named_imports":
			// Named imports: import { a, b as c } from 'bar'
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "import_specifier" {
					if spec, ok := extractImportSpecifier(gc, content); ok {
						*specifiers = append(*specifiers, spec)
					}
				}
			}
		}
	}
}

// extractImportSpecifier extracts one name from a named-imports list.
// Handles "name", "name as alias", and per-specifier "type name".
func extractImportSpecifier(node *sitter.Node, content []byte) (ImportSpecifier, bool) {
	var spec ImportSpecifier
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type":
			spec.IsTypeOnly = true
		case "identifier":
			name := string(content[child.StartByte():child.EndByte()])
			if spec.Imported == "" {
				spec.Imported = name
			} else {
				spec.Local = name
			}
		}
	}
	if spec.Imported == "" {
		return spec, false
	}
	if spec.Local == "" {
		spec.Local = spec.Imported
	}
	return spec, true
}

// processCommonJSRequire handles const foo = require('bar') style imports.
func (p *TypeScriptParser) processCommonJSRequire(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		var name, module string
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "identifier":
				name = string(content[gc.StartByte():gc.EndByte()])
			case "call_expression":
				module = extractRequireCall(gc, content)
			}
		}

		if module == "" || name == "" {
			continue
		}

		relative := isRelativeModule(module)
		analysis.Imports = append(analysis.Imports, ImportEdge{
			Module:     module,
			Specifiers: []ImportSpecifier{{Imported: "default", Local: name}},
			IsLocal:    relative,
			IsRelative: relative,
			IsCommonJS: true,
			Location:   nodeLocation(node, filePath),
		})
	}
}

// extractRequireCall returns the module path from a require() call, or
// "" if the call expression is not a require.
func extractRequireCall(node *sitter.Node, content []byte) string {
	var funcName, module string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			funcName = string(content[child.StartByte():child.EndByte()])
		case "arguments":
			for j := 0; j < int(child.ChildCount()); j++ {
				arg := child.Child(j)
				if arg.Type() == "string" {
					module = extractStringContent(arg, content)
				}
			}
		}
	}

	if funcName == "require" {
		return module
	}
	return ""
}

// extractDeclarations extracts all top-level declarations.
func (p *TypeScriptParser) extractDeclarations(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			p.processExportStatement(child, content, filePath, analysis)
		case "function_declaration":
			if p.parseOptions.IncludePrivate {
				if fn := p.processFunction(child, content, filePath, nil, false); fn != nil {
					analysis.Entities = append(analysis.Entities, fn)
				}
			}
		case "class_declaration", "abstract_class_declaration":
			if p.parseOptions.IncludePrivate {
				p.processClass(child, content, filePath, nil, false, analysis)
			}
		case "lexical_declaration", "variable_declaration":
			if p.parseOptions.IncludePrivate {
				p.processArrowFunctions(child, content, filePath, false, analysis)
			}
		}
	}
}

// processExportStatement handles export statements: exported
// declarations, re-export clauses, and default exports.
func (p *TypeScriptParser) processExportStatement(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	var decorators []string

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "decorator":
			if name := extractDecoratorName(child, content); name != "" {
				decorators = append(decorators, name)
			}
		case "function_declaration":
			if fn := p.processFunction(child, content, filePath, decorators, true); fn != nil {
				analysis.Entities = append(analysis.Entities, fn)
				analysis.Exports = append(analysis.Exports, fn.Name)
			}
		case "class_declaration", "abstract_class_declaration":
			p.processClass(child, content, filePath, decorators, true, analysis)
		case "interface_declaration", "type_alias_declaration":
			// Interfaces and type aliases do not become entities, but
			// their names are part of the file's export surface.
			if name := childText(child, "type_identifier", content); name != "" {
				analysis.Exports = append(analysis.Exports, name)
			}
		case "enum_declaration":
			if name := childText(child, "identifier", content); name != "" {
				analysis.Exports = append(analysis.Exports, name)
			}
		case "lexical_declaration", "variable_declaration":
			p.processArrowFunctions(child, content, filePath, true, analysis)
			for _, name := range declaredNames(child, content) {
				analysis.Exports = append(analysis.Exports, name)
			}
		case "export_clause":
			// Re-exports: export { a, b as c }
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "export_specifier" {
					if name := exportedSpecifierName(gc, content); name != "" {
						analysis.Exports = append(analysis.Exports, name)
					}
				}
			}
		}
	}
}

// processFunction extracts a function declaration as an entity.
func (p *TypeScriptParser) processFunction(node *sitter.Node, content []byte, filePath string, decorators []string, exported bool) *CodeEntity {
	var name, returnType string
	var isAsync bool
	paramCount := 0

	hasDoc := hasPrecedingDocComment(node, content)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "formal_parameters":
			paramCount = countParameters(child)
		case "type_annotation":
			returnType = extractTypeAnnotation(child, content)
		}
	}

	if name == "" {
		return nil
	}

	return &CodeEntity{
		ID:        GenerateEntityID(filePath, name),
		Kind:      EntityFunction,
		Name:      name,
		FilePath:  filePath,
		LineStart: int(node.StartPoint().Row + 1),
		LineEnd:   int(node.EndPoint().Row + 1),
		Metadata: EntityMetadata{
			Exported:   exported,
			Async:      isAsync,
			HasDoc:     hasDoc,
			ParamCount: paramCount,
			ReturnType: returnType,
			Decorators: decorators,
		},
	}
}

// processClass extracts a class declaration and its methods. The class
// becomes one entity; each method becomes a separate entity named
// "Class.method" so downstream consumers get a flat entity list.
func (p *TypeScriptParser) processClass(node *sitter.Node, content []byte, filePath string, decorators []string, exported bool, analysis *FileAnalysis) {
	var name string
	var bodyNode *sitter.Node

	hasDoc := hasPrecedingDocComment(node, content)
	isAbstract := node.Type() == "abstract_class_declaration"

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "class_body":
			bodyNode = child
		}
	}

	if name == "" {
		return
	}

	analysis.Entities = append(analysis.Entities, &CodeEntity{
		ID:        GenerateEntityID(filePath, name),
		Kind:      EntityClass,
		Name:      name,
		FilePath:  filePath,
		LineStart: int(node.StartPoint().Row + 1),
		LineEnd:   int(node.EndPoint().Row + 1),
		Metadata: EntityMetadata{
			Exported:   exported,
			Abstract:   isAbstract,
			HasDoc:     hasDoc,
			Decorators: decorators,
		},
	})
	if exported {
		analysis.Exports = append(analysis.Exports, name)
	}

	if bodyNode != nil {
		p.extractMethods(bodyNode, content, filePath, name, analysis)
	}
}

// extractMethods extracts method definitions from a class body.
func (p *TypeScriptParser) extractMethods(body *sitter.Node, content []byte, filePath, className string, analysis *FileAnalysis) {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() != "method_definition" {
			continue
		}
		if method := p.processMethod(child, content, filePath, className); method != nil {
			analysis.Entities = append(analysis.Entities, method)
		}
	}
}

// processMethod extracts a method definition as an entity.
func (p *TypeScriptParser) processMethod(node *sitter.Node, content []byte, filePath, className string) *CodeEntity {
	var name, returnType, accessModifier string
	var isAsync, isStatic, isAbstract bool
	paramCount := 0

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "accessibility_modifier":
			accessModifier = string(content[child.StartByte():child.EndByte()])
		case "static":
			isStatic = true
		case "async":
			isAsync = true
		case "abstract":
			isAbstract = true
		case "property_identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "formal_parameters":
			paramCount = countParameters(child)
		case "type_annotation":
			returnType = extractTypeAnnotation(child, content)
		}
	}

	if name == "" {
		return nil
	}

	visible := accessModifier != "private"
	if !visible && !p.parseOptions.IncludePrivate {
		return nil
	}

	qualified := className + "." + name
	return &CodeEntity{
		ID:        GenerateEntityID(filePath, qualified),
		Kind:      EntityMethod,
		Name:      qualified,
		FilePath:  filePath,
		LineStart: int(node.StartPoint().Row + 1),
		LineEnd:   int(node.EndPoint().Row + 1),
		Metadata: EntityMetadata{
			Exported:   visible,
			Async:      isAsync,
			Static:     isStatic,
			Abstract:   isAbstract,
			ParamCount: paramCount,
			Parent:     className,
			ReturnType: returnType,
		},
	}
}

// processArrowFunctions extracts arrow functions assigned to const/let/var
// declarators as function entities.
func (p *TypeScriptParser) processArrowFunctions(node *sitter.Node, content []byte, filePath string, exported bool, analysis *FileAnalysis) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		var name string
		var arrow *sitter.Node
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "identifier":
				name = string(content[gc.StartByte():gc.EndByte()])
			case "arrow_function":
				arrow = gc
			}
		}

		if name == "" || arrow == nil {
			continue
		}

		paramCount := 0
		isAsync := false
		for j := 0; j < int(arrow.ChildCount()); j++ {
			gc := arrow.Child(j)
			switch gc.Type() {
			case "async":
				isAsync = true
			case "formal_parameters":
				paramCount = countParameters(gc)
			case "identifier":
				// Single unparenthesized parameter: x => x * 2
				paramCount = 1
			}
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
				Async:      isAsync,
				HasDoc:     hasPrecedingDocComment(node, content),
				ParamCount: paramCount,
			},
		})
	}
}

// declaredNames returns the identifiers bound by a lexical or variable
// declaration.
func declaredNames(node *sitter.Node, content []byte) []string {
	var names []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			if gc.Type() == "identifier" {
				names = append(names, string(content[gc.StartByte():gc.EndByte()]))
				break
			}
		}
	}
	return names
}

// exportedSpecifierName returns the externally visible name of an
// export specifier: the alias for "a as b", the name otherwise.
func exportedSpecifierName(node *sitter.Node, content []byte) string {
	var name string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" {
			// The last identifier wins: "a as b" exports "b".
			name = string(content[child.StartByte():child.EndByte()])
		}
	}
	return name
}

// childText returns the text of the first direct child with the given
// node type, or "".
func childText(node *sitter.Node, childType string, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == childType {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

// countParameters counts the declared parameters in a formal_parameters
// node by skipping punctuation children. This works across the
// TypeScript and JavaScript grammars, which name parameter nodes
// differently.
func countParameters(node *sitter.Node) int {
	count := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "(", ")", ",":
		default:
			count++
		}
	}
	return count
}

// extractTypeAnnotation extracts the type from a type annotation.
func extractTypeAnnotation(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != ":" {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

// extractDecoratorName extracts the name from a decorator node.
func extractDecoratorName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			return string(content[child.StartByte():child.EndByte()])
		case "call_expression":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "identifier" {
					return string(content[gc.StartByte():gc.EndByte()])
				}
			}
		}
	}
	return ""
}

// extractStringContent extracts the content from a string node.
func extractStringContent(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string_fragment" {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	// Fallback: strip quotes from raw content
	raw := string(content[node.StartByte():node.EndByte()])
	return strings.Trim(raw, `"'`)
}

// hasPrecedingDocComment reports whether a JSDoc comment immediately
// precedes the node. When the node sits inside an export_statement the
// comment is a sibling of the export statement, not the declaration.
func hasPrecedingDocComment(node *sitter.Node, content []byte) bool {
	if node == nil {
		return false
	}

	prev := node.PrevSibling()
	if prev != nil && prev.Type() == "comment" {
		comment := string(content[prev.StartByte():prev.EndByte()])
		if strings.HasPrefix(comment, "/**") {
			return true
		}
	}

	parent := node.Parent()
	if parent != nil && parent.Type() == "export_statement" {
		parentPrev := parent.PrevSibling()
		if parentPrev != nil && parentPrev.Type() == "comment" {
			comment := string(content[parentPrev.StartByte():parentPrev.EndByte()])
			if strings.HasPrefix(comment, "/**") {
				return true
			}
		}
	}

	return false
}

// isRelativeModule reports whether a JS/TS module path is relative.
func isRelativeModule(module string) bool {
	return module == "." || module == ".." ||
		strings.HasPrefix(module, "./") || strings.HasPrefix(module, "../")
}

// nodeLocation builds a Location from a tree-sitter node.
// Rows convert to 1-indexed lines; columns stay 0-indexed.
func nodeLocation(node *sitter.Node, filePath string) Location {
	return Location{
		FilePath:  filePath,
		StartLine: int(node.StartPoint().Row + 1),
		EndLine:   int(node.EndPoint().Row + 1),
		StartCol:  int(node.StartPoint().Column),
		EndCol:    int(node.EndPoint().Column),
	}
}

// Compile-time interface compliance check.
var _ SourceParser = (*TypeScriptParser)(nil)
