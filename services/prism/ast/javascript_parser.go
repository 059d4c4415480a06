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
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScriptParserOption configures a JavaScriptParser instance.
type JavaScriptParserOption func(*JavaScriptParser)

// WithJavaScriptMaxFileSize sets the maximum file size the parser will accept.
func WithJavaScriptMaxFileSize(bytes int64) JavaScriptParserOption {
	return func(p *JavaScriptParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithJavaScriptParseOptions applies the given ParseOptions to the parser.
func WithJavaScriptParseOptions(opts ParseOptions) JavaScriptParserOption {
	return func(p *JavaScriptParser) {
		p.parseOptions = opts
	}
}

// JavaScriptParser implements SourceParser for JavaScript and JSX sources.
//
// The JavaScript grammar differs from TypeScript in small but breaking
// ways: class names are plain identifiers rather than type identifiers,
// there are no type annotations, and private members use the #-prefix
// instead of accessibility modifiers. A dedicated parser keeps those
// differences explicit instead of special-casing the TypeScript one.
//
// Thread Safety:
//
//	JavaScriptParser instances are safe for concurrent use. Each Parse
//	call creates its own tree-sitter parser instance internally.
type JavaScriptParser struct {
	maxFileSize  int64
	parseOptions ParseOptions
}

// NewJavaScriptParser creates a JavaScriptParser with the given options.
func NewJavaScriptParser(opts ...JavaScriptParserOption) *JavaScriptParser {
	p := &JavaScriptParser{
		maxFileSize:  DefaultMaxFileSize,
		parseOptions: DefaultParseOptions(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse extracts entities, imports, and exports from JavaScript source.
//
// The parser is error-tolerant and returns partial results for
// syntactically invalid code. A non-nil error is returned only for
// complete failures (oversized content, invalid UTF-8, canceled context).
func (p *JavaScriptParser) Parse(ctx context.Context, content []byte, filePath string) (analysis *FileAnalysis, err error) {
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
	ctx, span := startParseSpan(ctx, "javascript", filePath, len(content))
	defer span.End()
	defer func() {
		entityCount, errorCount := 0, 0
		if analysis != nil {
			entityCount = len(analysis.Entities)
			errorCount = len(analysis.Errors)
		}
		setParseSpanResult(span, entityCount, errorCount)
		recordParseMetrics(ctx, "javascript", time.Since(start), entityCount, err == nil)
	}()

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

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
		Language: "javascript",
		Hash:     hex.EncodeToString(hash[:]),
		Entities: make([]*CodeEntity, 0),
		Imports:  make([]ImportEdge, 0),
		Exports:  make([]string, 0),
		Errors:   make([]string, 0),
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		analysis.Errors = append(analysis.Errors, "tree-sitter returned nil root node")
		analysis.Metrics = ComputeMetrics(content, "javascript")
		analysis.Finalize(start)
		return analysis, nil
	}

	if rootNode.HasError() {
		analysis.Errors = append(analysis.Errors, "source contains syntax errors")
	}

	p.extractImports(rootNode, content, filePath, analysis)
	p.extractDeclarations(rootNode, content, filePath, analysis)
	analysis.Metrics = ComputeMetrics(content, "javascript")

	if validateErr := analysis.Validate(); validateErr != nil {
		return nil, fmt.Errorf("result validation failed: %w", validateErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", ctxErr)
	}

	analysis.Finalize(start)
	return analysis, nil
}

// Language returns "javascript".
func (p *JavaScriptParser) Language() string {
	return "javascript"
}

// Extensions returns the extensions this parser handles.
func (p *JavaScriptParser) Extensions() []string {
	return []string{".js", ".jsx", ".mjs", ".cjs"}
}

// extractImports extracts ES imports and CommonJS requires.
func (p *JavaScriptParser) extractImports(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			p.processImportStatement(child, content, filePath, analysis)
		case "lexical_declaration", "variable_declaration":
			p.processCommonJSRequire(child, content, filePath, analysis)
		}
	}
}

// processImportStatement handles ES module import statements.
func (p *JavaScriptParser) processImportStatement(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	var module string
	var specifiers []ImportSpecifier
	var isDefault, isNamespace bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "identifier":
					local := string(content[gc.StartByte():gc.EndByte()])
					specifiers = append(specifiers, ImportSpecifier{Imported: "default", Local: local})
					isDefault = true
				case "namespace_import":
					isNamespace = true
					for k := 0; k < int(gc.ChildCount()); k++ {
						ggc := gc.Child(k)
						if ggc.Type() == "identifier" {
							local := string(content[ggc.StartByte():ggc.EndByte()])
							specifiers = append(specifiers, ImportSpecifier{Imported: "*", Local: local})
						}
					}
				case "named_imports":
					for k := 0; k < int(gc.ChildCount()); k++ {
						ggc := gc.Child(k)
						if ggc.Type() == "import_specifier" {
							if spec, ok := extractImportSpecifier(ggc, content); ok {
								specifiers = append(specifiers, spec)
							}
						}
					}
				}
			}
		case "string":
			module = extractStringContent(child, content)
		}
	}

	if module == "" {
		return
	}

	relative := isRelativeModule(module)
	analysis.Imports = append(analysis.Imports, ImportEdge{
		Module:      module,
		Specifiers:  specifiers,
		IsLocal:     relative,
		IsRelative:  relative,
		IsDefault:   isDefault,
		IsNamespace: isNamespace,
		Location:    nodeLocation(node, filePath),
	})
}

// processCommonJSRequire handles const foo = require('bar') style imports.
func (p *JavaScriptParser) processCommonJSRequire(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
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

// extractDeclarations extracts all top-level declarations.
func (p *JavaScriptParser) extractDeclarations(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "export_statement":
			p.processExportStatement(child, content, filePath, analysis)
		case "function_declaration", "generator_function_declaration":
			if p.parseOptions.IncludePrivate {
				if fn := p.processFunction(child, content, filePath, false); fn != nil {
					analysis.Entities = append(analysis.Entities, fn)
				}
			}
		case "class_declaration":
			if p.parseOptions.IncludePrivate {
				p.processClass(child, content, filePath, false, analysis)
			}
		case "lexical_declaration", "variable_declaration":
			if p.parseOptions.IncludePrivate {
				p.processArrowFunctions(child, content, filePath, false, analysis)
			}
		}
	}
}

// processExportStatement handles export statements.
func (p *JavaScriptParser) processExportStatement(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_declaration", "generator_function_declaration":
			if fn := p.processFunction(child, content, filePath, true); fn != nil {
				analysis.Entities = append(analysis.Entities, fn)
				analysis.Exports = append(analysis.Exports, fn.Name)
			}
		case "class_declaration":
			p.processClass(child, content, filePath, true, analysis)
		case "lexical_declaration", "variable_declaration":
			p.processArrowFunctions(child, content, filePath, true, analysis)
			for _, name := range declaredNames(child, content) {
				analysis.Exports = append(analysis.Exports, name)
			}
		case "export_clause":
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
func (p *JavaScriptParser) processFunction(node *sitter.Node, content []byte, filePath string, exported bool) *CodeEntity {
	var name string
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
		},
	}
}

// processClass extracts a class declaration and its methods.
// In the JavaScript grammar the class name is a plain identifier.
func (p *JavaScriptParser) processClass(node *sitter.Node, content []byte, filePath string, exported bool, analysis *FileAnalysis) {
	var name string
	var bodyNode *sitter.Node

	hasDoc := hasPrecedingDocComment(node, content)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
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
			Exported: exported,
			HasDoc:   hasDoc,
		},
	})
	if exported {
		analysis.Exports = append(analysis.Exports, name)
	}

	if bodyNode == nil {
		return
	}

	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		child := bodyNode.Child(i)
		if child.Type() != "method_definition" {
			continue
		}
		if method := p.processMethod(child, content, filePath, name); method != nil {
			analysis.Entities = append(analysis.Entities, method)
		}
	}
}

// processMethod extracts a method definition as an entity. Methods named
// with the #-prefix are private.
func (p *JavaScriptParser) processMethod(node *sitter.Node, content []byte, filePath, className string) *CodeEntity {
	var name string
	var isAsync, isStatic, isPrivate bool
	paramCount := 0

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "static":
			isStatic = true
		case "async":
			isAsync = true
		case "property_identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "private_property_identifier":
			name = string(content[child.StartByte():child.EndByte()])
			isPrivate = true
		case "formal_parameters":
			paramCount = countParameters(child)
		}
	}

	if name == "" {
		return nil
	}
	if isPrivate && !p.parseOptions.IncludePrivate {
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
			Exported:   !isPrivate,
			Async:      isAsync,
			Static:     isStatic,
			ParamCount: paramCount,
			Parent:     className,
		},
	}
}

// processArrowFunctions extracts arrow functions assigned to
// const/let/var declarators as function entities.
func (p *JavaScriptParser) processArrowFunctions(node *sitter.Node, content []byte, filePath string, exported bool, analysis *FileAnalysis) {
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

// Compile-time interface compliance check.
var _ SourceParser = (*JavaScriptParser)(nil)
