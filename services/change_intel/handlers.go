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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/ChangePrism/pkg/telemetry"
	"github.com/AleutianAI/ChangePrism/services/ekg"
	"github.com/AleutianAI/ChangePrism/services/prism"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServiceVersion is the prism service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the prism service surface.
type Handlers struct {
	pipeline *Pipeline
}

// NewHandlers creates handlers around the given pipeline.
func NewHandlers(pipeline *Pipeline) *Handlers {
	return &Handlers{pipeline: pipeline}
}

// HandleAnalyze handles POST /v1/prism/analyze.
//
// Description:
//
//	Runs the full change intelligence pipeline over the posted diff.
//	An empty diff is valid and yields a no-changes analysis.
//
// Request Body:
//
//	AnalyzeRequest
//
// Response:
//
//	200 OK: PipelineResult (success true)
//	400 Bad Request: Invalid body, or PipelineResult with success false
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	logger.Info("Analyzing diff", "diff_bytes", len(req.Diff))

	result := h.pipeline.AnalyzeDiff(c.Request.Context(), req.Diff)
	if !result.Success {
		logger.Warn("Analysis failed", "message", result.Message)
		c.JSON(http.StatusBadRequest, result)
		return
	}

	logger.Info("Analysis complete",
		"files", len(result.Analysis.Files),
		"issues", len(result.Analysis.Issues),
		"elapsed_ms", result.ElapsedMs)

	c.JSON(http.StatusOK, result)
}

// HandleScan handles POST /v1/prism/scan.
//
// Description:
//
//	Analyzes every source file under the posted project root and
//	returns the file analyses, dependency graph, and quality metrics.
//
// Request Body:
//
//	ScanRequest
//
// Response:
//
//	200 OK: ScanResponse
//	400 Bad Request: Validation error or unusable root
//	500 Internal Server Error: Analysis error
func (h *Handlers) HandleScan(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleScan")

	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body: project_root is required",
		})
		return
	}

	logger.Info("Scanning project", "project_root", req.ProjectRoot)

	project, err := h.pipeline.Scan(c.Request.Context(), req.ProjectRoot)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, prism.ErrInvalidRoot) {
			status = http.StatusBadRequest
		}
		logger.Error("Scan failed", "error", err)
		c.JSON(status, ErrorResponse{Message: err.Error()})
		return
	}

	logger.Info("Scan complete",
		"files", project.FileCount(),
		"duration_ms", project.DurationMs)

	c.JSON(http.StatusOK, ScanResponse{Success: true, Project: project})
}

// HandleReview handles POST /v1/prism/review.
//
// Description:
//
//	Runs the rule-based review over the added lines of the posted
//	diff and returns the scored result.
//
// Request Body:
//
//	ReviewRequest
//
// Response:
//
//	200 OK: ReviewResponse
//	400 Bad Request: Invalid body
//	500 Internal Server Error: Review error
func (h *Handlers) HandleReview(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleReview")

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	logger.Info("Reviewing diff", "diff_bytes", len(req.Diff))

	result, err := h.pipeline.Review(c.Request.Context(), req.Diff)
	if err != nil {
		logger.Error("Review failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
		return
	}

	logger.Info("Review complete",
		"status", result.OverallStatus,
		"score", result.Score,
		"issues", result.IssueCount())

	c.JSON(http.StatusOK, ReviewResponse{Success: true, Review: result})
}

// HandleIndex handles POST /v1/prism/index.
//
// Description:
//
//	Identifies the repository at the posted root and announces it to
//	the ingestion service with a repository.indexed webhook.
//
// Request Body:
//
//	IndexRequest
//
// Response:
//
//	200 OK: IndexResponse
//	400 Bad Request: Validation error or no usable git remote
//	502 Bad Gateway: Ingestion service unreachable
//	503 Service Unavailable: Indexing not configured
func (h *Handlers) HandleIndex(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleIndex")

	var req IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body: project_root is required",
		})
		return
	}

	logger.Info("Indexing repository", "project_root", req.ProjectRoot)

	repo, receipt, err := h.pipeline.Index(c.Request.Context(), req.ProjectRoot)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, ErrIndexingNotConfigured):
			status = http.StatusServiceUnavailable
		case errors.Is(err, ekg.ErrNotARepository), errors.Is(err, ekg.ErrNoRemote):
			status = http.StatusBadRequest
		}
		logger.Error("Index failed", "error", err)
		c.JSON(status, ErrorResponse{Message: err.Error()})
		return
	}

	logger.Info("Index requested",
		"repository", repo.FullName,
		"delivery", receipt.Delivery,
		"status_code", receipt.StatusCode)

	c.JSON(http.StatusOK, IndexResponse{
		Success:    true,
		Repository: repo.FullName,
		Receipt:    receipt,
	})
}

// HandleHealth handles GET /v1/prism/health.
//
// Description:
//
//	Returns the health status of the service. Always returns 200 if
//	running.
//
// Response:
//
//	200 OK: HealthResponse
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   ServiceVersion,
	})
}

// HandleReady handles GET /v1/prism/ready.
//
// Description:
//
//	Returns the readiness status of the service along with which
//	optional backends are configured.
//
// Response:
//
//	200 OK: ReadyResponse
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:              h.pipeline != nil,
		State:              h.pipeline.State(),
		ContextConfigured:  h.pipeline.ContextConfigured(),
		IndexingConfigured: h.pipeline.IndexingConfigured(),
	})
}

// HandleMetrics handles GET /v1/prism/metrics.
//
// Description:
//
//	Serves Prometheus metrics. Uses the telemetry package's exporter
//	handler when Init has run, falling back to the default registry.
//
// Response:
//
//	200 OK: Prometheus text format
func (h *Handlers) HandleMetrics(c *gin.Context) {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		handler = promhttp.Handler()
	}
	handler.ServeHTTP(c.Writer, c.Request)
}

// getOrCreateRequestID gets or creates a request ID.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
