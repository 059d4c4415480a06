// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transport

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for outbound transport.
var (
	tracer = otel.Tracer("changeprism.ekg")
	meter  = otel.Meter("changeprism.ekg")
)

// Metrics for outbound requests.
var (
	requestLatency metric.Float64Histogram
	requestTotal   metric.Int64Counter
	retryTotal     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		requestLatency, err = meter.Float64Histogram(
			"ekg_transport_request_duration_seconds",
			metric.WithDescription("Duration of outbound requests including retries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		requestTotal, err = meter.Int64Counter(
			"ekg_transport_requests_total",
			metric.WithDescription("Total number of outbound request calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		retryTotal, err = meter.Int64Counter(
			"ekg_transport_retries_total",
			metric.WithDescription("Total number of retried attempts"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordRequestMetrics records metrics for one Post call.
func recordRequestMetrics(ctx context.Context, duration time.Duration, attempts int, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", success),
	)

	requestLatency.Record(ctx, duration.Seconds(), attrs)
	requestTotal.Add(ctx, 1, attrs)

	if attempts > 1 {
		retryTotal.Add(ctx, int64(attempts-1), attrs)
	}
}

// startRequestSpan creates a span for an outbound request. The URL is
// already sanitized by the caller. The caller must call span.End().
func startRequestSpan(ctx context.Context, sanitizedURL string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Transport.Post",
		trace.WithAttributes(
			attribute.String("ekg.url", sanitizedURL),
		),
	)
}

// setRequestSpanResult sets the result attributes on a request span.
func setRequestSpanResult(span trace.Span, attempts, status int) {
	span.SetAttributes(
		attribute.Int("ekg.attempts", attempts),
		attribute.Int("ekg.status", status),
	)
}
