// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change_intel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/prism"
	"github.com/AleutianAI/ChangePrism/services/prism/ast"
	"github.com/AleutianAI/ChangePrism/services/prism/diff"
	"github.com/AleutianAI/ChangePrism/services/prism/graph"
	"github.com/AleutianAI/ChangePrism/services/prism/secrets"
	"github.com/AleutianAI/ChangePrism/services/review"
)

// ErrIndexingNotConfigured is returned by Index when no ingestion
// client was wired into the pipeline.
var ErrIndexingNotConfigured = errors.New("indexing not configured")

// ContextFetcher retrieves best-effort knowledge context for a change
// set. services/ekg provides the standard implementation.
type ContextFetcher interface {
	GetContext(ctx context.Context, changes *diff.ChangeSet) *ekg.ContextBundle
}

// ChangeReviewer scores the added lines of a change. services/review
// provides the standard implementation.
type ChangeReviewer interface {
	Review(ctx context.Context, input review.Input) (*review.Result, error)
}

// Pipeline runs the change intelligence stages end to end.
//
// # Description
//
// A run parses the diff, analyzes the changed files that exist on disk,
// builds their dependency graph, scans added lines for secrets, fetches
// knowledge context in parallel, and synthesizes the final result.
// Context retrieval never fails a run; diff or analysis failures do.
//
// # Thread Safety
//
// Pipeline is safe for concurrent use. Each run owns its object graph;
// the lifecycle state reflects the most recently started run.
type Pipeline struct {
	root        string
	parser      *diff.Parser
	analyzer    *prism.Analyzer
	builder     *graph.Builder
	scanner     *secrets.Scanner
	synthesizer *Synthesizer
	reviewer    ChangeReviewer
	fetcher     ContextFetcher
	identifier  *ekg.Identifier
	indexer     *ekg.Indexer

	mu    sync.RWMutex
	state State
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithContextFetcher wires in the knowledge context client. Without
// one, runs complete with an empty context bundle.
func WithContextFetcher(f ContextFetcher) PipelineOption {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// WithAnalyzer replaces the default source analyzer.
func WithAnalyzer(a *prism.Analyzer) PipelineOption {
	return func(p *Pipeline) {
		if a != nil {
			p.analyzer = a
		}
	}
}

// WithScanner replaces the default secret scanner.
func WithScanner(s *secrets.Scanner) PipelineOption {
	return func(p *Pipeline) {
		if s != nil {
			p.scanner = s
		}
	}
}

// WithReviewer replaces the default rule-based reviewer, typically
// with a review.EnhancedReviewer.
func WithReviewer(r ChangeReviewer) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.reviewer = r
		}
	}
}

// WithIndexing wires in repository identification and the ingestion
// webhook client used by Index.
func WithIndexing(identifier *ekg.Identifier, indexer *ekg.Indexer) PipelineOption {
	return func(p *Pipeline) {
		p.identifier = identifier
		p.indexer = indexer
	}
}

// NewPipeline creates a pipeline rooted at the given directory.
// Relative paths from diffs are resolved against root.
func NewPipeline(root string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		root:        root,
		parser:      diff.NewParser(),
		analyzer:    prism.NewAnalyzer(),
		builder:     graph.NewBuilder(),
		scanner:     secrets.NewScanner(),
		synthesizer: NewSynthesizer(),
		reviewer:    review.NewReviewer(),
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the lifecycle state of the most recent run.
func (p *Pipeline) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ContextConfigured reports whether a knowledge context client is
// wired in.
func (p *Pipeline) ContextConfigured() bool {
	return p.fetcher != nil
}

// IndexingConfigured reports whether Index can deliver webhooks.
func (p *Pipeline) IndexingConfigured() bool {
	return p.identifier != nil && p.indexer != nil
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// AnalyzeDiff runs the full pipeline over unified-diff text.
//
// Description:
//
//	An empty or headerless diff completes immediately with a
//	no-changes result. Otherwise the changed files present on disk
//	are analyzed while knowledge context is fetched concurrently,
//	added lines are scanned for secrets, and everything is combined
//	by the synthesizer. A run fails only on a diff parse error or a
//	canceled context; context retrieval and per-file analysis
//	problems degrade the result instead.
//
// Inputs:
//
//	ctx - Bounds the run; cancellation fails it
//	diffText - Unified diff text, may be empty
//
// Outputs:
//
//	*PipelineResult - Never nil. Success false carries a message and
//	no analysis; success true carries the full analysis.
func (p *Pipeline) AnalyzeDiff(ctx context.Context, diffText string) *PipelineResult {
	start := time.Now()
	p.setState(StateRunning)

	changes, err := p.parser.Parse(diffText)
	if err != nil {
		return p.fail(start, fmt.Errorf("parse diff: %w", err))
	}
	if changes.IsEmpty() {
		p.setState(StateCompleted)
		analysis := emptyAnalysis()
		analysis.Type = AnalysisTypeNoChanges
		analysis.Summary = changes.Summary
		return &PipelineResult{
			Success:   true,
			Analysis:  analysis,
			ElapsedMs: elapsedMs(start),
		}
	}

	slog.Info("pipeline run started",
		slog.Int("files", changes.FileCount()),
		slog.Int("additions", changes.TotalAdditions),
		slog.Int("deletions", changes.TotalDeletions))

	// Context retrieval is independent of local analysis; overlap them.
	bundleCh := make(chan *ekg.ContextBundle, 1)
	go func() {
		bundleCh <- p.fetchContext(ctx, changes)
	}()

	analyses, err := p.analyzeChanged(ctx, changes)
	if err != nil {
		<-bundleCh
		return p.fail(start, fmt.Errorf("analyze changed files: %w", err))
	}

	depGraph := p.builder.Build(analyses)

	findings, err := p.scanner.ScanLines(ctx, secretLines(p.parser.AddedLines(diffText)))
	if err != nil {
		<-bundleCh
		return p.fail(start, fmt.Errorf("scan added lines: %w", err))
	}

	bundle := <-bundleCh

	analysis := p.synthesizer.Synthesize(changes, bundle)
	enrichFromAnalyses(analysis, analyses, depGraph)
	appendSecretIssues(analysis, findings)

	p.setState(StateCompleted)
	slog.Info("pipeline run completed",
		slog.Int("files", len(analysis.Files)),
		slog.Int("issues", len(analysis.Issues)),
		slog.Int("recommendations", len(analysis.Recommendations)),
		slog.Float64("confidence", analysis.EKGContext.Confidence),
		slog.Int64("elapsed_ms", elapsedMs(start)))

	return &PipelineResult{
		Success:   true,
		Analysis:  analysis,
		ElapsedMs: elapsedMs(start),
	}
}

// Review scores the added lines of a diff with the wired reviewer,
// folding in entity-level checks and secret findings.
func (p *Pipeline) Review(ctx context.Context, diffText string) (*review.Result, error) {
	changes, err := p.parser.Parse(diffText)
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	analyses, err := p.analyzeChanged(ctx, changes)
	if err != nil {
		return nil, fmt.Errorf("analyze changed files: %w", err)
	}

	lines := p.parser.AddedLines(diffText)
	findings, err := p.scanner.ScanLines(ctx, secretLines(lines))
	if err != nil {
		return nil, fmt.Errorf("scan added lines: %w", err)
	}

	return p.reviewer.Review(ctx, review.Input{
		Lines:    lines,
		Analyses: analyses,
		Secrets:  findings,
	})
}

// Scan analyzes a whole project tree. An empty root falls back to the
// pipeline root.
func (p *Pipeline) Scan(ctx context.Context, root string) (*prism.ProjectAnalysis, error) {
	if root == "" {
		root = p.root
	}
	return p.analyzer.AnalyzeProject(ctx, prism.DefaultAnalyzeOptions(root))
}

// Index announces a repository to the ingestion service. An empty root
// falls back to the pipeline root.
func (p *Pipeline) Index(ctx context.Context, root string) (*ekg.Repository, *ekg.IndexReceipt, error) {
	if !p.IndexingConfigured() {
		return nil, nil, ErrIndexingNotConfigured
	}
	if root == "" {
		root = p.root
	}

	repo, repoID, err := p.identifier.Identify(ctx, root)
	if err != nil {
		return nil, nil, fmt.Errorf("identify repository: %w", err)
	}

	receipt, err := p.indexer.Index(ctx, repo, repoID)
	if err != nil {
		return repo, nil, err
	}
	return repo, receipt, nil
}

// fetchContext queries the knowledge graph, degrading to nil when no
// fetcher is configured.
func (p *Pipeline) fetchContext(ctx context.Context, changes *diff.ChangeSet) *ekg.ContextBundle {
	if p.fetcher == nil {
		return nil
	}
	return p.fetcher.GetContext(ctx, changes)
}

// analyzeChanged parses the changed files that exist on disk. Files
// that were deleted, renamed away, or fail to parse are skipped; only
// context cancellation aborts the pass.
func (p *Pipeline) analyzeChanged(ctx context.Context, changes *diff.ChangeSet) ([]*ast.FileAnalysis, error) {
	analyses := make([]*ast.FileAnalysis, 0, len(changes.Files))
	for _, f := range changes.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		onDisk := f.Path
		if p.root != "" && !filepath.IsAbs(onDisk) {
			onDisk = filepath.Join(p.root, f.Path)
		}
		info, err := os.Stat(onDisk)
		if err != nil || info.IsDir() {
			continue
		}

		analysis, err := p.analyzer.AnalyzeFile(ctx, onDisk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("skipping unanalyzable file",
				slog.String("path", f.Path),
				slog.String("error", err.Error()))
			continue
		}

		// Graph nodes and file summaries key on the diff's path form.
		analysis.Path = f.Path
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// fail records a parse-level failure and builds its result envelope.
func (p *Pipeline) fail(start time.Time, err error) *PipelineResult {
	p.setState(StateFailed)
	slog.Error("pipeline run failed", slog.String("error", err.Error()))
	return &PipelineResult{
		Success:   false,
		Message:   err.Error(),
		ElapsedMs: elapsedMs(start),
	}
}

// enrichFromAnalyses copies entity counts, complexity, and dependent
// counts onto the file summaries that were analyzed.
func enrichFromAnalyses(result *AnalysisResult, analyses []*ast.FileAnalysis, depGraph *graph.DependencyGraph) {
	byPath := make(map[string]*ast.FileAnalysis, len(analyses))
	for _, a := range analyses {
		byPath[a.Path] = a
	}

	for i := range result.Files {
		a, ok := byPath[result.Files[i].Path]
		if !ok {
			continue
		}
		result.Files[i].Entities = a.EntityCount()
		result.Files[i].Complexity = a.Metrics.Complexity
		if depGraph != nil {
			result.Files[i].Dependents = len(depGraph.DependentsOf(result.Files[i].Path))
		}
	}
}

// appendSecretIssues folds scanner findings into the result's issues.
func appendSecretIssues(result *AnalysisResult, findings []secrets.Finding) {
	for _, f := range findings {
		severity := f.Severity
		if severity == "" {
			severity = SeverityCritical
		}
		result.Issues = append(result.Issues, Issue{
			Severity: severity,
			Message:  fmt.Sprintf("%s committed in source", f.Label),
			Path:     f.Path,
			Line:     f.Line,
		})
	}
}

// secretLines converts diff added lines to scanner input.
func secretLines(lines []diff.AddedLine) []secrets.Line {
	out := make([]secrets.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, secrets.Line{Path: l.Path, Number: l.Number, Text: l.Text})
	}
	return out
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
