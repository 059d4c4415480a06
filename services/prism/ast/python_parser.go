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
	"github.com/smacker/go-tree-sitter/python"
)

// PythonParserOption configures a PythonParser instance.
type PythonParserOption func(*PythonParser)

// WithPythonMaxFileSize sets the maximum file size the parser will accept.
func WithPythonMaxFileSize(bytes int64) PythonParserOption {
	return func(p *PythonParser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// WithPythonParseOptions applies the given ParseOptions to the parser.
func WithPythonParseOptions(opts ParseOptions) PythonParserOption {
	return func(p *PythonParser) {
		p.parseOptions = opts
	}
}

// PythonParser implements SourceParser for Python sources.
//
// Visibility follows Python convention: names starting with an
// underscore are private. When the module assigns __all__, the export
// list comes from there instead of naming conventions.
//
// Thread Safety:
//
//	PythonParser instances are safe for concurrent use. Each Parse
//	call creates its own tree-sitter parser instance internally.
type PythonParser struct {
	maxFileSize  int64
	parseOptions ParseOptions
}

// NewPythonParser creates a PythonParser with the given options.
func NewPythonParser(opts ...PythonParserOption) *PythonParser {
	p := &PythonParser{
		maxFileSize:  DefaultMaxFileSize,
		parseOptions: DefaultParseOptions(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse extracts entities, imports, and exports from Python source.
//
// The parser is error-tolerant and returns partial results for
// syntactically invalid code. A non-nil error is returned only for
// complete failures (oversized content, invalid UTF-8, canceled context).
func (p *PythonParser) Parse(ctx context.Context, content []byte, filePath string) (analysis *FileAnalysis, err error) {
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
	ctx, span := startParseSpan(ctx, "python", filePath, len(content))
	defer span.End()
	defer func() {
		entityCount, errorCount := 0, 0
		if analysis != nil {
			entityCount = len(analysis.Entities)
			errorCount = len(analysis.Errors)
		}
		setParseSpanResult(span, entityCount, errorCount)
		recordParseMetrics(ctx, "python", time.Since(start), entityCount, err == nil)
	}()

	hash := sha256.Sum256(content)

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

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
		Language: "python",
		Hash:     hex.EncodeToString(hash[:]),
		Entities: make([]*CodeEntity, 0),
		Imports:  make([]ImportEdge, 0),
		Exports:  make([]string, 0),
		Errors:   make([]string, 0),
	}

	rootNode := tree.RootNode()
	if rootNode == nil {
		analysis.Errors = append(analysis.Errors, "tree-sitter returned nil root node")
		analysis.Metrics = ComputeMetrics(content, "python")
		analysis.Finalize(start)
		return analysis, nil
	}

	if rootNode.HasError() {
		analysis.Errors = append(analysis.Errors, "source contains syntax errors")
	}

	p.extractImports(rootNode, content, filePath, analysis)
	p.extractEntities(rootNode, content, filePath, analysis)
	p.collectExports(rootNode, content, analysis)
	analysis.Metrics = ComputeMetrics(content, "python")

	if validateErr := analysis.Validate(); validateErr != nil {
		return nil, fmt.Errorf("result validation failed: %w", validateErr)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("parse canceled after extraction: %w", ctxErr)
	}

	analysis.Finalize(start)
	return analysis, nil
}

// Language returns "python".
func (p *PythonParser) Language() string {
	return "python"
}

// Extensions returns the extensions this parser handles.
func (p *PythonParser) Extensions() []string {
	return []string{".py", ".pyi"}
}

// extractImports extracts import and from-import statements.
func (p *PythonParser) extractImports(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement":
			p.processImportStatement(child, content, filePath, analysis)
		case "import_from_statement":
			p.processImportFromStatement(child, content, filePath, analysis)
		}
	}
}

// processImportStatement handles "import x" and "import x as y".
func (p *PythonParser) processImportStatement(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name":
			module := string(content[child.StartByte():child.EndByte()])
			analysis.Imports = append(analysis.Imports, ImportEdge{
				Module:      module,
				IsNamespace: true,
				Location:    nodeLocation(node, filePath),
			})
		case "aliased_import":
			var module, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "dotted_name":
					module = string(content[gc.StartByte():gc.EndByte()])
				case "identifier":
					alias = string(content[gc.StartByte():gc.EndByte()])
				}
			}
			if module == "" {
				continue
			}
			edge := ImportEdge{
				Module:      module,
				IsNamespace: true,
				Location:    nodeLocation(node, filePath),
			}
			if alias != "" {
				edge.Specifiers = []ImportSpecifier{{Imported: "*", Local: alias}}
			}
			analysis.Imports = append(analysis.Imports, edge)
		}
	}
}

// processImportFromStatement handles "from x import a, b as c" and
// relative forms like "from ..pkg import d".
func (p *PythonParser) processImportFromStatement(node *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	var module string
	var specifiers []ImportSpecifier
	var isRelative, isWildcard, sawImport bool

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "from":
			// Keyword node, nothing to extract.
		case "import":
			sawImport = true
		case "relative_import":
			isRelative = true
			var prefix, name string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "import_prefix":
					prefix = string(content[gc.StartByte():gc.EndByte()])
				case "dotted_name":
					name = string(content[gc.StartByte():gc.EndByte()])
				}
			}
			module = prefix + name
		case "dotted_name":
			text := string(content[child.StartByte():child.EndByte()])
			if !sawImport {
				module = text
			} else {
				specifiers = append(specifiers, ImportSpecifier{Imported: text, Local: text})
			}
		case "identifier":
			if sawImport {
				name := string(content[child.StartByte():child.EndByte()])
				specifiers = append(specifiers, ImportSpecifier{Imported: name, Local: name})
			}
		case "aliased_import":
			var name, alias string
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "dotted_name":
					name = string(content[gc.StartByte():gc.EndByte()])
				case "identifier":
					alias = string(content[gc.StartByte():gc.EndByte()])
				}
			}
			if name != "" {
				if alias == "" {
					alias = name
				}
				specifiers = append(specifiers, ImportSpecifier{Imported: name, Local: alias})
			}
		case "wildcard_import":
			isWildcard = true
		}
	}

	// "from . import x" yields a relative import with no dotted name.
	if module == "" {
		if !isRelative {
			return
		}
		module = "."
	}

	analysis.Imports = append(analysis.Imports, ImportEdge{
		Module:     module,
		Specifiers: specifiers,
		IsLocal:    isRelative,
		IsRelative: isRelative,
		IsWildcard: isWildcard,
		Location:   nodeLocation(node, filePath),
	})
}

// extractEntities extracts top-level functions and classes, including
// decorated definitions.
func (p *PythonParser) extractEntities(root *sitter.Node, content []byte, filePath string, analysis *FileAnalysis) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "function_definition":
			if fn := p.processFunction(child, content, filePath, nil, ""); fn != nil {
				analysis.Entities = append(analysis.Entities, fn)
			}
		case "class_definition":
			p.processClass(child, content, filePath, nil, analysis)
		case "decorated_definition":
			decorators := extractPythonDecorators(child, content)
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				switch gc.Type() {
				case "function_definition":
					if fn := p.processFunction(gc, content, filePath, decorators, ""); fn != nil {
						analysis.Entities = append(analysis.Entities, fn)
					}
				case "class_definition":
					p.processClass(gc, content, filePath, decorators, analysis)
				}
			}
		}
	}
}

// processFunction extracts a function or method definition as an entity.
// A non-empty className marks the entity as a method of that class.
func (p *PythonParser) processFunction(node *sitter.Node, content []byte, filePath string, decorators []string, className string) *CodeEntity {
	var name string
	var returnType string
	var isAsync, hasDoc bool
	paramCount := 0

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "async":
			isAsync = true
		case "identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "parameters":
			paramCount = countPythonParameters(child, content, className != "")
		case "type":
			returnType = string(content[child.StartByte():child.EndByte()])
		case "block":
			hasDoc = blockHasDocstring(child)
		}
	}

	if name == "" {
		return nil
	}

	exported := pythonNameExported(name)
	if !p.parseOptions.IncludePrivate && !exported {
		return nil
	}

	kind := EntityFunction
	isStatic := false
	if className != "" {
		kind = EntityMethod
	}
	for _, dec := range decorators {
		if dec == "staticmethod" || dec == "classmethod" {
			isStatic = true
		}
	}

	qualified := name
	if className != "" {
		qualified = className + "." + name
	}

	return &CodeEntity{
		ID:        GenerateEntityID(filePath, qualified),
		Kind:      kind,
		Name:      qualified,
		FilePath:  filePath,
		LineStart: int(node.StartPoint().Row + 1),
		LineEnd:   int(node.EndPoint().Row + 1),
		Metadata: EntityMetadata{
			Exported:   exported,
			Async:      isAsync,
			Static:     isStatic,
			HasDoc:     hasDoc,
			ParamCount: paramCount,
			Parent:     className,
			ReturnType: returnType,
			Decorators: decorators,
		},
	}
}

// processClass extracts a class definition and its methods.
func (p *PythonParser) processClass(node *sitter.Node, content []byte, filePath string, decorators []string, analysis *FileAnalysis) {
	var name string
	var bodyNode *sitter.Node

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			name = string(content[child.StartByte():child.EndByte()])
		case "block":
			bodyNode = child
		}
	}

	if name == "" {
		return
	}

	exported := pythonNameExported(name)
	if !p.parseOptions.IncludePrivate && !exported {
		return
	}

	hasDoc := false
	if bodyNode != nil {
		hasDoc = blockHasDocstring(bodyNode)
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
			HasDoc:     hasDoc,
			Decorators: decorators,
		},
	})

	if bodyNode == nil {
		return
	}

	for i := 0; i < int(bodyNode.ChildCount()); i++ {
		child := bodyNode.Child(i)
		switch child.Type() {
		case "function_definition":
			if method := p.processFunction(child, content, filePath, nil, name); method != nil {
				analysis.Entities = append(analysis.Entities, method)
			}
		case "decorated_definition":
			methodDecorators := extractPythonDecorators(child, content)
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "function_definition" {
					if method := p.processFunction(gc, content, filePath, methodDecorators, name); method != nil {
						analysis.Entities = append(analysis.Entities, method)
					}
					break
				}
			}
		}
	}
}

// collectExports builds the export list. An explicit __all__ assignment
// wins; otherwise every top-level entity whose name does not start with
// an underscore is exported.
func (p *PythonParser) collectExports(root *sitter.Node, content []byte, analysis *FileAnalysis) {
	if all, ok := extractDunderAll(root, content); ok {
		analysis.Exports = append(analysis.Exports, all...)
		return
	}

	for _, entity := range analysis.Entities {
		if entity.Metadata.Parent != "" {
			continue
		}
		if entity.Metadata.Exported {
			analysis.Exports = append(analysis.Exports, entity.Name)
		}
	}
}

// extractDunderAll finds a top-level __all__ = [...] assignment and
// returns the listed string names.
func extractDunderAll(root *sitter.Node, content []byte) ([]string, bool) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "expression_statement" || child.ChildCount() == 0 {
			continue
		}
		expr := child.Child(0)
		if expr.Type() != "assignment" {
			continue
		}

		var target string
		var listNode *sitter.Node
		for j := 0; j < int(expr.ChildCount()); j++ {
			gc := expr.Child(j)
			switch gc.Type() {
			case "identifier":
				if target == "" {
					target = string(content[gc.StartByte():gc.EndByte()])
				}
			case "list":
				listNode = gc
			}
		}

		if target != "__all__" || listNode == nil {
			continue
		}

		var names []string
		for j := 0; j < int(listNode.ChildCount()); j++ {
			item := listNode.Child(j)
			if item.Type() == "string" {
				if name := extractStringContent(item, content); name != "" {
					names = append(names, name)
				}
			}
		}
		return names, true
	}
	return nil, false
}

// extractPythonDecorators extracts decorator names from a
// decorated_definition node.
func extractPythonDecorators(node *sitter.Node, content []byte) []string {
	decorators := make([]string, 0)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "identifier", "attribute":
				decorators = append(decorators, string(content[gc.StartByte():gc.EndByte()]))
			case "call":
				// Decorator with arguments: @foo(x)
				for k := 0; k < int(gc.ChildCount()); k++ {
					ggc := gc.Child(k)
					if ggc.Type() == "identifier" || ggc.Type() == "attribute" {
						decorators = append(decorators, string(content[ggc.StartByte():ggc.EndByte()]))
						break
					}
				}
			}
		}
	}

	return decorators
}

// countPythonParameters counts declared parameters, excluding the
// implicit self/cls receiver on methods.
func countPythonParameters(node *sitter.Node, content []byte, isMethod bool) int {
	count := 0
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "(", ")", ",":
			continue
		}
		if isMethod && count == 0 {
			text := string(content[child.StartByte():child.EndByte()])
			if text == "self" || text == "cls" {
				isMethod = false
				continue
			}
		}
		count++
	}
	return count
}

// blockHasDocstring reports whether the first statement of a block is a
// string literal.
func blockHasDocstring(block *sitter.Node) bool {
	if block.ChildCount() == 0 {
		return false
	}
	first := block.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return false
	}
	return first.Child(0).Type() == "string"
}

// pythonNameExported reports whether a Python name is public by
// convention.
func pythonNameExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}

// Compile-time interface compliance check.
var _ SourceParser = (*PythonParser)(nil)
