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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the prism service routes with the router.
//
// Description:
//
//	Registers all /v1/prism/* endpoints with the given Gin router
//	group. The router group should already have any required
//	middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/prism/analyze - Run the change intelligence pipeline
//	POST /v1/prism/scan - Analyze a whole project tree
//	POST /v1/prism/review - Score a diff with the rule-based reviewer
//	POST /v1/prism/index - Announce a repository to the ingestion service
//	GET  /v1/prism/health - Health check
//	GET  /v1/prism/ready - Readiness check
//	GET  /v1/prism/metrics - Prometheus metrics
//
// Example:
//
//	pipeline := change_intel.NewPipeline(projectRoot)
//	handlers := change_intel.NewHandlers(pipeline)
//
//	v1 := router.Group("/v1")
//	change_intel.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	prism := rg.Group("/prism")
	{
		// Pipeline operations
		prism.POST("/analyze", handlers.HandleAnalyze)
		prism.POST("/scan", handlers.HandleScan)
		prism.POST("/review", handlers.HandleReview)
		prism.POST("/index", handlers.HandleIndex)

		// Health and observability
		prism.GET("/health", handlers.HandleHealth)
		prism.GET("/ready", handlers.HandleReady)
		prism.GET("/metrics", handlers.HandleMetrics)
	}
}
