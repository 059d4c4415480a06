// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prism turns source trees into structured change intelligence.
//
// # Description
//
// The package walks a project, runs the language parsers from the ast
// subpackage over every supported file, resolves local imports against
// the discovered file set, and assembles the results into a
// ProjectAnalysis: per-file entities and metrics, a file-level
// dependency graph, and aggregate quality numbers.
//
// Single files can be analyzed without a project context through
// AnalyzeFile; unsupported languages degrade to a line-count-only
// analysis instead of failing.
//
// # Thread Safety
//
// Analyzer is stateless apart from its parser registry, which is safe
// for concurrent use. A single Analyzer may serve concurrent
// AnalyzeFile and AnalyzeProject calls.
package prism

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/ChangePrism/services/prism/ast"
	"github.com/AleutianAI/ChangePrism/services/prism/graph"
)

// ============================================================================
// Analyzer
// ============================================================================

// Analyzer coordinates per-file parsing and project-level analysis.
type Analyzer struct {
	registry *ast.ParserRegistry
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithRegistry replaces the default parser registry. A nil registry is
// ignored.
func WithRegistry(registry *ast.ParserRegistry) AnalyzerOption {
	return func(a *Analyzer) {
		if registry != nil {
			a.registry = registry
		}
	}
}

// NewAnalyzer creates an Analyzer backed by the default parser registry.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		registry: ast.NewDefaultRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ============================================================================
// Single-File Analysis
// ============================================================================

// AnalyzeFile parses one file from disk.
//
// Description:
//
//	Reads the file, dispatches to the parser registered for its
//	extension, and returns the analysis. Files in languages without a
//	registered parser are not an error: they produce an analysis with
//	zero entities and a line count, so callers can treat every file
//	uniformly.
//
// Inputs:
//   - ctx: Context for cancellation
//   - filePath: Path to the file, absolute or relative to the working
//     directory
//
// Outputs:
//   - *ast.FileAnalysis: Analysis result, never nil on success
//   - error: Read failures, invalid paths, or parser-level failures
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) AnalyzeFile(ctx context.Context, filePath string) (*ast.FileAnalysis, error) {
	if filePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filePath)
	if strings.Contains(cleaned, "..") {
		// Paths reaching above the working directory are stored in
		// absolute form so downstream validation never sees "..".
		abs, absErr := filepath.Abs(cleaned)
		if absErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPath, filePath)
		}
		cleaned = abs
	}

	content, err := os.ReadFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cleaned, err)
	}

	analysis, err := a.analyzeContent(ctx, content, filepath.ToSlash(cleaned))
	if err != nil {
		return nil, err
	}

	// Locality for Go imports depends on the enclosing module, which
	// parsers cannot see. Resolve it from the nearest go.mod.
	if analysis.Language == "go" {
		if modulePath := findModulePath(filepath.Dir(cleaned)); modulePath != "" {
			markGoLocalImports(analysis, modulePath)
		}
	}

	return analysis, nil
}

// analyzeContent dispatches content to the registered parser for the
// path's extension, degrading to a metrics-only analysis when no
// parser handles it.
func (a *Analyzer) analyzeContent(ctx context.Context, content []byte, filePath string) (*ast.FileAnalysis, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	parser, ok := a.registry.GetByExtension(ext)
	if !ok {
		return unsupportedAnalysis(content, filePath), nil
	}
	return parser.Parse(ctx, content, filePath)
}

// unsupportedAnalysis builds the degraded result for files no parser
// handles: zero entities, a content hash, and a line count.
func unsupportedAnalysis(content []byte, filePath string) *ast.FileAnalysis {
	start := time.Now()
	hash := sha256.Sum256(content)

	analysis := &ast.FileAnalysis{
		Path:     filePath,
		Language: ast.LanguageForPath(filePath),
		Entities: make([]*ast.CodeEntity, 0),
		Imports:  make([]ast.ImportEdge, 0),
		Exports:  make([]string, 0),
		Metrics: ast.FileMetrics{
			LinesOfCode: ast.CountLinesOfCode(content),
		},
		Hash: hex.EncodeToString(hash[:]),
	}
	analysis.Finalize(start)
	return analysis
}

// ============================================================================
// Project Analysis
// ============================================================================

// AnalyzeProject walks a project root and analyzes every supported
// source file.
//
// Description:
//
//	Discovers files under opts.Root (skipping hidden entries and
//	common build/dependency directories), parses them with a bounded
//	worker pool, resolves local imports against the discovered set,
//	and builds the file dependency graph. Files that fail to read or
//	parse are recorded in the result's Errors and skipped; only
//	cancellation and an unusable root abort the whole run.
//
// Inputs:
//   - ctx: Context for cancellation
//   - opts: Root directory, worker count, and file limit
//
// Outputs:
//   - *ProjectAnalysis: Aggregated result, nil only when error is
//     non-nil
//   - error: Invalid root, root read failures, or context cancellation
//
// Thread Safety: Safe for concurrent use.
func (a *Analyzer) AnalyzeProject(ctx context.Context, opts AnalyzeOptions) (result *ProjectAnalysis, err error) {
	start := time.Now()
	ctx, span := startProjectSpan(ctx, opts.Root)
	defer span.End()
	defer func() {
		fileCount, edgeCount, errorCount := 0, 0, 0
		if result != nil {
			fileCount = len(result.Files)
			errorCount = len(result.Errors)
			if result.Graph != nil {
				edgeCount = len(result.Graph.Edges)
			}
		}
		setProjectSpanResult(span, fileCount, edgeCount, errorCount)
		recordProjectMetrics(ctx, time.Since(start), fileCount, err == nil)
	}()

	if opts.Root == "" {
		return nil, fmt.Errorf("%w: empty root", ErrInvalidRoot)
	}
	info, statErr := os.Stat(opts.Root)
	if statErr != nil {
		return nil, fmt.Errorf("project root: %w", statErr)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, opts.Root)
	}

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	files, truncated, walkErr := discoverFiles(ctx, opts.Root, maxFiles)
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", opts.Root, walkErr)
	}

	result = &ProjectAnalysis{
		Root:   opts.Root,
		Files:  make([]*ast.FileAnalysis, 0, len(files)),
		Errors: make([]FileError, 0),
	}
	if truncated {
		result.Errors = append(result.Errors, FileError{
			Path:    opts.Root,
			Message: fmt.Sprintf("file limit of %d reached, remaining files skipped", maxFiles),
		})
		slog.Warn("project walk truncated",
			"root", opts.Root,
			"limit", maxFiles)
	}

	analyses := make([]*ast.FileAnalysis, len(files))
	fileErrs := make([]*FileError, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(opts.Workers))
	for i, relPath := range files {
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}

			content, readErr := os.ReadFile(filepath.Join(opts.Root, filepath.FromSlash(relPath)))
			if readErr != nil {
				fileErrs[i] = &FileError{Path: relPath, Message: readErr.Error()}
				slog.Warn("skipping unreadable file",
					"path", relPath,
					"error", readErr)
				return nil
			}

			analysis, parseErr := a.analyzeContent(gCtx, content, relPath)
			if parseErr != nil {
				if errors.Is(parseErr, ast.ErrContextCanceled) {
					return parseErr
				}
				fileErrs[i] = &FileError{Path: relPath, Message: parseErr.Error()}
				slog.Warn("skipping unparseable file",
					"path", relPath,
					"error", parseErr)
				return nil
			}

			analyses[i] = analysis
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return nil, waitErr
	}

	// Compact in walk order.
	for i := range analyses {
		if analyses[i] != nil {
			result.Files = append(result.Files, analyses[i])
		}
		if fileErrs[i] != nil {
			result.Errors = append(result.Errors, *fileErrs[i])
		}
	}

	resolveDependencies(result.Files, goModulePath(opts.Root))

	result.Graph = graph.NewBuilder().Build(result.Files)
	result.Quality = aggregateQuality(result.Files)
	result.DurationMs = time.Since(start).Milliseconds()

	slog.Info("project analysis complete",
		"root", opts.Root,
		"files", len(result.Files),
		"edges", len(result.Graph.Edges),
		"failed", len(result.Errors),
		"duration_ms", result.DurationMs)

	return result, nil
}

// ============================================================================
// File Discovery
// ============================================================================

// discoverFiles walks root and returns project-relative slash paths of
// supported source files, in walk order. The boolean reports whether
// the walk stopped early at maxFiles.
func discoverFiles(ctx context.Context, root string, maxFiles int) ([]string, bool, error) {
	files := make([]string, 0, 256)
	truncated := false

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			if p == root {
				return walkErr
			}
			slog.Debug("skipping unreadable entry",
				"path", p,
				"error", walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if p == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || skipDirectories[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		// Symlinks and other irregular entries are not followed.
		if !d.Type().IsRegular() {
			return nil
		}
		if !sourceLanguages[ast.LanguageForPath(p)] {
			return nil
		}
		if len(files) >= maxFiles {
			truncated = true
			return filepath.SkipAll
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return files, truncated, nil
}

// ============================================================================
// Dependency Resolution
// ============================================================================

// scriptResolutionSuffixes are tried in order when resolving an
// ECMAScript import path against the file set. The empty suffix
// matches imports written with an explicit extension.
var scriptResolutionSuffixes = []string{
	"",
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js",
}

// resolveDependencies fills each analysis's Dependencies with the
// project-relative paths its local imports resolve to. Imports that do
// not land on an analyzed file are dropped.
func resolveDependencies(analyses []*ast.FileAnalysis, modulePath string) {
	fileSet := make(map[string]bool, len(analyses))
	filesByDir := make(map[string][]string)
	for _, a := range analyses {
		if a == nil {
			continue
		}
		fileSet[a.Path] = true
		dir := path.Dir(a.Path)
		filesByDir[dir] = append(filesByDir[dir], a.Path)
	}

	for _, a := range analyses {
		if a == nil {
			continue
		}
		switch a.Language {
		case "go":
			resolveGoDependencies(a, modulePath, filesByDir)
		case "python":
			resolvePythonDependencies(a, fileSet)
		case "typescript", "javascript":
			resolveScriptDependencies(a, fileSet)
		}
	}
}

// resolveScriptDependencies resolves relative TypeScript and JavaScript
// imports: the written path first, then common extensions, then index
// files.
func resolveScriptDependencies(a *ast.FileAnalysis, fileSet map[string]bool) {
	dir := path.Dir(a.Path)
	for _, imp := range a.Imports {
		if !imp.IsLocal {
			continue
		}
		base := path.Join(dir, imp.Module)
		for _, suffix := range scriptResolutionSuffixes {
			if candidate := base + suffix; fileSet[candidate] {
				a.Dependencies = append(a.Dependencies, candidate)
				break
			}
		}
	}
}

// resolvePythonDependencies resolves leading-dot relative imports. One
// dot anchors at the file's package, each further dot climbs one
// level. A bare relative import ("from . import x") resolves each
// imported name as a module.
func resolvePythonDependencies(a *ast.FileAnalysis, fileSet map[string]bool) {
	for _, imp := range a.Imports {
		if !imp.IsLocal {
			continue
		}
		dots := 0
		for dots < len(imp.Module) && imp.Module[dots] == '.' {
			dots++
		}
		if dots == 0 {
			continue
		}

		dir := path.Dir(a.Path)
		for level := 1; level < dots; level++ {
			dir = path.Dir(dir)
		}

		rest := imp.Module[dots:]
		if rest != "" {
			target := resolvePythonModule(path.Join(dir, strings.ReplaceAll(rest, ".", "/")), fileSet)
			if target != "" {
				a.Dependencies = append(a.Dependencies, target)
			}
			continue
		}
		for _, spec := range imp.Specifiers {
			if spec.Imported == "" || spec.Imported == "*" {
				continue
			}
			if target := resolvePythonModule(path.Join(dir, spec.Imported), fileSet); target != "" {
				a.Dependencies = append(a.Dependencies, target)
			}
		}
	}
}

// resolvePythonModule maps a module base path to a file: plain module
// first, then package __init__.
func resolvePythonModule(base string, fileSet map[string]bool) string {
	if fileSet[base+".py"] {
		return base + ".py"
	}
	if fileSet[base+"/__init__.py"] {
		return base + "/__init__.py"
	}
	return ""
}

// resolveGoDependencies marks imports under the project's module path
// as local and records every analyzed file of the imported package as
// a dependency. Go imports name packages, not files, so the edge fans
// out to the package's files.
func resolveGoDependencies(a *ast.FileAnalysis, modulePath string, filesByDir map[string][]string) {
	if modulePath == "" {
		return
	}
	for i := range a.Imports {
		module := a.Imports[i].Module

		var pkgDir string
		switch {
		case module == modulePath:
			pkgDir = "."
		case strings.HasPrefix(module, modulePath+"/"):
			pkgDir = strings.TrimPrefix(module, modulePath+"/")
		default:
			continue
		}

		a.Imports[i].IsLocal = true
		for _, f := range filesByDir[pkgDir] {
			if f != a.Path {
				a.Dependencies = append(a.Dependencies, f)
			}
		}
	}
}

// markGoLocalImports sets IsLocal on imports under modulePath. Used for
// single-file analysis, where no file set exists to resolve against.
func markGoLocalImports(a *ast.FileAnalysis, modulePath string) {
	for i := range a.Imports {
		module := a.Imports[i].Module
		if module == modulePath || strings.HasPrefix(module, modulePath+"/") {
			a.Imports[i].IsLocal = true
		}
	}
}

// goModulePath reads the module path from root's go.mod, empty when
// absent or unparseable.
func goModulePath(root string) string {
	content, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	f, err := modfile.Parse("go.mod", content, nil)
	if err != nil || f.Module == nil {
		return ""
	}
	return f.Module.Mod.Path
}

// findModulePath searches dir and its ancestors for a go.mod and
// returns its module path, empty when none is found.
func findModulePath(dir string) string {
	for {
		if modulePath := goModulePath(dir); modulePath != "" {
			return modulePath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ============================================================================
// Quality Aggregation
// ============================================================================

// aggregateQuality rolls per-file metrics up to project level.
func aggregateQuality(analyses []*ast.FileAnalysis) QualityMetrics {
	quality := QualityMetrics{
		FilesByLanguage: make(map[string]int),
	}
	if len(analyses) == 0 {
		return quality
	}

	var complexitySum, maintainabilitySum int
	for _, a := range analyses {
		quality.TotalFiles++
		quality.TotalLines += a.Metrics.LinesOfCode
		quality.TotalEntities += a.EntityCount()
		complexitySum += a.Metrics.Complexity
		maintainabilitySum += a.Metrics.Maintainability
		quality.FilesByLanguage[a.Language]++
	}

	n := float64(quality.TotalFiles)
	quality.AverageComplexity = round2(float64(complexitySum) / n)
	quality.AverageMaintainability = round2(float64(maintainabilitySum) / n)
	return quality
}

// round2 rounds to two decimal places for stable JSON output.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
