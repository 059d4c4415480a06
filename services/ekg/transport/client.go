// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transport is the resilient HTTP layer for every outbound call.
//
// # Description
//
// All traffic to the knowledge backend goes through Client.Post, which
// enforces the outbound security policy before any network activity:
// URL validation fails closed (http/https only, private and loopback
// hosts blocked outside dev mode), credential-bearing headers are
// dropped, and header values are stripped of non-printable characters.
// Transport failures and 5xx responses are retried with exponential
// backoff; any status below 500 is terminal and returned to the
// caller. Logged URLs carry scheme, host, and path only.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/ChangePrism/pkg/validation"
)

// Defaults and bounds for the transport layer.
const (
	// DefaultTimeout bounds each attempt independently.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxAttempts is the total attempt count including the first.
	DefaultMaxAttempts = 3

	// MaxAttemptsLimit caps configured attempt counts.
	MaxAttemptsLimit = 10

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 10 << 20
)

// Sentinel errors for transport outcomes.
var (
	// ErrPolicyViolation marks requests rejected by the outbound
	// security policy before any network call. Never retried.
	ErrPolicyViolation = errors.New("security policy violation")

	// ErrServerStatus marks a 5xx response, retried up to the attempt
	// limit.
	ErrServerStatus = errors.New("server error status")
)

// Options configures a Client.
type Options struct {
	// Timeout bounds each attempt. Default 30s.
	Timeout time.Duration

	// MaxAttempts is the total attempt count including the first,
	// clamped to [1, 10]. Default 3.
	MaxAttempts int

	// DevMode permits loopback and private hosts. The scheme check
	// stays active regardless.
	DevMode bool

	// RateLimit caps outbound requests per second across all calls.
	// Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the rate limiter burst size, minimum 1.
	RateBurst int

	// BackoffUnit scales the 2^attempt backoff. Default one second;
	// tests shrink it.
	BackoffUnit time.Duration
}

// DefaultOptions returns the standard transport configuration.
func DefaultOptions() Options {
	return Options{
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		BackoffUnit: time.Second,
	}
}

// Response is the terminal outcome of a Post call. Any status below
// 500 lands here; callers inspect StatusCode.
type Response struct {
	// StatusCode is the HTTP status of the final attempt.
	StatusCode int

	// Headers are the response headers of the final attempt.
	Headers http.Header

	// Body is the response body, capped at maxResponseBytes.
	Body []byte

	// Attempts is how many attempts the call took.
	Attempts int
}

// OK reports whether the response status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts JSON bodies with validation, sanitization, and retry.
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    *rate.Limiter
}

// NewClient creates a transport client, normalizing out-of-range
// options to their defaults.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.MaxAttempts > MaxAttemptsLimit {
		opts.MaxAttempts = MaxAttemptsLimit
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = time.Second
	}

	c := &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Post sends a JSON body to the URL.
//
// Description:
//
//	Validates the URL and sanitizes headers first; a policy violation
//	returns ErrPolicyViolation without any network call. Then attempts
//	the request up to MaxAttempts times, waiting 2^attempt backoff
//	units between attempts. Transport errors and 5xx responses are
//	retried; any response below 500 returns immediately.
//
// Inputs:
//   - ctx: Context for cancellation, checked before each attempt
//   - rawURL: Target URL
//   - body: Request body, sent as-is with Content-Type
//     application/json unless headers override it
//   - headers: Extra request headers, sanitized before use
//
// Outputs:
//   - *Response: Terminal response with status below 500
//   - error: Policy violation, cancellation, or exhausted retries
//
// Thread Safety: Safe for concurrent use.
func (c *Client) Post(ctx context.Context, rawURL string, body []byte, headers map[string]string) (*Response, error) {
	if err := validation.ValidateOutboundURL(rawURL, c.opts.DevMode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyViolation, err)
	}

	safeHeaders := validation.SanitizeHeaders(headers)
	logURL := validation.SanitizeURLForLog(rawURL)

	ctx, span := startRequestSpan(ctx, logURL)
	defer span.End()

	start := time.Now()
	var lastErr error

	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.doAttempt(ctx, rawURL, body, safeHeaders)
		if err == nil && resp.StatusCode < 500 {
			resp.Attempts = attempt
			setRequestSpanResult(span, attempt, resp.StatusCode)
			recordRequestMetrics(ctx, time.Since(start), attempt, true)
			return resp, nil
		}

		if err != nil {
			lastErr = err
			slog.Warn("transport attempt failed",
				"url", logURL,
				"attempt", attempt,
				"error", err)
		} else {
			lastErr = fmt.Errorf("%w: %d", ErrServerStatus, resp.StatusCode)
			slog.Warn("transport attempt failed",
				"url", logURL,
				"attempt", attempt,
				"status", resp.StatusCode)
		}

		if attempt == c.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.backoff(attempt)):
		}
	}

	setRequestSpanResult(span, c.opts.MaxAttempts, 0)
	recordRequestMetrics(ctx, time.Since(start), c.opts.MaxAttempts, false)
	return nil, fmt.Errorf("post %s failed after %d attempts: %w", logURL, c.opts.MaxAttempts, lastErr)
}

// doAttempt performs a single request.
func (c *Client) doAttempt(ctx context.Context, rawURL string, body []byte, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}

// backoff returns the wait after a failed attempt: 2^attempt units,
// strictly non-decreasing across attempts.
func (c *Client) backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * c.opts.BackoffUnit
}
