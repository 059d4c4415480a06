// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ekg enriches change analysis with knowledge-graph context.
//
// # Description
//
// The knowledge backend exposes repository intelligence, repository
// similarity, and learned code patterns over GraphQL. This package derives
// a stable repository identifier from the local git remote, queries the
// backend best-effort through the hardened transport, and folds the
// responses into a ContextBundle. Every sub-query may fail independently;
// a failure degrades its portion of the bundle and nothing else. The
// package also notifies the ingestion service when a repository should be
// (re)indexed.
//
// # Thread Safety
//
// Client and Indexer are safe for concurrent use.
package ekg

import (
	"math"
	"time"
)

// =============================================================================
// Backend Models
// =============================================================================

// RepositoryIntelligence is what the knowledge backend knows about one
// repository. Absent fields are a valid "unknown" state, not an error.
type RepositoryIntelligence struct {
	ID              string   `json:"id"`
	FullName        string   `json:"fullName"`
	PrimaryLanguage string   `json:"primaryLanguage,omitempty"`
	Description     string   `json:"description,omitempty"`
	Stars           int      `json:"stars,omitempty"`
	Topics          []string `json:"topics,omitempty"`
}

// SimilarRepository is one entry from the similarity query.
type SimilarRepository struct {
	FullName   string  `json:"fullName"`
	Language   string  `json:"language,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// Pattern is a learned code pattern relevant to a language.
type Pattern struct {
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Language    string  `json:"language,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Description string  `json:"description,omitempty"`
}

// =============================================================================
// Context Bundle
// =============================================================================

// ContextBundle aggregates the best-effort answers of the three context
// sub-queries for one change set.
//
// # Description
//
// RepositoryIntelligence is nil when the backend does not know the
// repository or the query failed. The slices are never nil. QueriesMade
// counts successful round-trips only; a bundle with QueriesMade zero is
// still a usable (empty) context.
type ContextBundle struct {
	// RepositoryIntelligence describes the current repository, if known.
	RepositoryIntelligence *RepositoryIntelligence `json:"repository_intelligence,omitempty"`

	// SimilarRepositories lists repositories similar to the current one.
	SimilarRepositories []SimilarRepository `json:"similar_repositories"`

	// Patterns lists learned patterns for the change set's languages.
	Patterns []Pattern `json:"patterns"`

	// QueriesMade is the number of sub-queries that completed successfully.
	QueriesMade int `json:"queries_made"`

	// Confidence scores the completeness of this bundle in [0,1].
	Confidence float64 `json:"confidence"`
}

// EmptyBundle returns a bundle with no context and base confidence.
func EmptyBundle() *ContextBundle {
	return &ContextBundle{
		SimilarRepositories: []SimilarRepository{},
		Patterns:            []Pattern{},
		Confidence:          baseConfidence,
	}
}

// ContextSummary is the compact observability projection of a bundle,
// carried on analysis results as ekg_context.
type ContextSummary struct {
	RepositoryKnown          bool    `json:"repository_known"`
	SimilarRepositoriesFound int     `json:"similar_repositories_found"`
	PatternsAnalyzed         int     `json:"patterns_analyzed"`
	QueriesMade              int     `json:"queries_made"`
	Confidence               float64 `json:"confidence"`
}

// Summarize reduces the bundle to its observability fields.
func (b *ContextBundle) Summarize() ContextSummary {
	if b == nil {
		return ContextSummary{Confidence: baseConfidence}
	}
	return ContextSummary{
		RepositoryKnown:          b.RepositoryIntelligence != nil,
		SimilarRepositoriesFound: len(b.SimilarRepositories),
		PatternsAnalyzed:         len(b.Patterns),
		QueriesMade:              b.QueriesMade,
		Confidence:               b.Confidence,
	}
}

// =============================================================================
// Confidence
// =============================================================================

// Confidence weights. Base score plus boosts for each context dimension
// actually present, matching the backend connector's scoring model.
const (
	baseConfidence         = 0.5
	intelligenceBoost      = 0.2
	similarRepositoryBoost = 0.2
	patternBoost           = 0.1
	multiLanguageBoost     = 0.1
)

// computeConfidence scores bundle completeness: base 0.5, +0.2 when the
// repository is known, +0.2 when similar repositories were found, +0.1 when
// patterns were found, +0.1 when the change spans more than one language.
// Clamped to [0,1].
func computeConfidence(b *ContextBundle, multiLanguage bool) float64 {
	score := baseConfidence
	if b.RepositoryIntelligence != nil {
		score += intelligenceBoost
	}
	if len(b.SimilarRepositories) > 0 {
		score += similarRepositoryBoost
	}
	if len(b.Patterns) > 0 {
		score += patternBoost
	}
	if multiLanguage {
		score += multiLanguageBoost
	}
	return math.Max(0, math.Min(1, score))
}

// =============================================================================
// Client Stats
// =============================================================================

// Stats reports cumulative client activity for observability endpoints.
type Stats struct {
	// TotalQueries is the number of context retrievals performed.
	TotalQueries int `json:"total_queries"`

	// TotalQueryTime is the wall time spent across all retrievals.
	TotalQueryTime time.Duration `json:"total_query_time"`

	// AverageQueryTime is TotalQueryTime / TotalQueries, zero when idle.
	AverageQueryTime time.Duration `json:"average_query_time"`
}
