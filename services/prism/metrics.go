// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prism

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for project analysis.
var (
	tracer = otel.Tracer("changeprism.prism")
	meter  = otel.Meter("changeprism.prism")
)

// Metrics for project analysis runs.
var (
	projectLatency metric.Float64Histogram
	projectFiles   metric.Int64Histogram
	projectTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		projectLatency, err = meter.Float64Histogram(
			"prism_project_analyze_duration_seconds",
			metric.WithDescription("Duration of project analysis runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		projectFiles, err = meter.Int64Histogram(
			"prism_project_files_analyzed",
			metric.WithDescription("Number of files analyzed per project run"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		projectTotal, err = meter.Int64Counter(
			"prism_project_analyze_total",
			metric.WithDescription("Total number of project analysis runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordProjectMetrics records metrics for a project analysis run.
func recordProjectMetrics(ctx context.Context, duration time.Duration, fileCount int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", success),
	)

	projectLatency.Record(ctx, duration.Seconds(), attrs)
	projectTotal.Add(ctx, 1, attrs)

	if success {
		projectFiles.Record(ctx, int64(fileCount))
	}
}

// startProjectSpan creates a span for a project analysis run.
// The caller must call span.End().
func startProjectSpan(ctx context.Context, root string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.AnalyzeProject",
		trace.WithAttributes(
			attribute.String("prism.root", root),
		),
	)
}

// setProjectSpanResult sets the result attributes on a project span.
func setProjectSpanResult(span trace.Span, fileCount, edgeCount, errorCount int) {
	span.SetAttributes(
		attribute.Int("prism.file_count", fileCount),
		attribute.Int("prism.edge_count", edgeCount),
		attribute.Int("prism.failed_files", errorCount),
	)
}
