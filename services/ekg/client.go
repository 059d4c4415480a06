// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ekg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/ChangePrism/services/ekg/idstore"
	"github.com/AleutianAI/ChangePrism/services/ekg/transport"
	"github.com/AleutianAI/ChangePrism/services/prism/diff"
)

// =============================================================================
// GraphQL Documents
// =============================================================================

const repositoryIntelligenceQuery = `query RepositoryIntelligence($repositoryId: ID!) {
  repositoryIntelligence(repositoryId: $repositoryId) {
    id
    fullName
    primaryLanguage
    description
    stars
    topics
  }
}`

const similarRepositoriesQuery = `query SimilarRepositories($repositoryId: ID!, $limit: Int!) {
  similarRepositories(repositoryId: $repositoryId, limit: $limit) {
    fullName
    language
    similarity
  }
}`

const patternsQuery = `query Patterns($language: String!, $minConfidence: Float!, $limit: Int!) {
  patterns(language: $language, minConfidence: $minConfidence, limit: $limit) {
    name
    category
    language
    confidence
    description
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

// =============================================================================
// Client
// =============================================================================

// Query sizing defaults.
const (
	DefaultSimilarLimit  = 5
	DefaultPatternLimit  = 10
	DefaultMinConfidence = 0.7
)

// Config holds the knowledge-client settings.
type Config struct {
	// QueryServiceURL is the base URL of the knowledge backend.
	QueryServiceURL string

	// RepoRoot is the project root whose git remote identifies the
	// repository. Defaults to the working directory.
	RepoRoot string

	// SimilarLimit caps the similarRepositories result size.
	SimilarLimit int

	// PatternLimit caps the patterns result size.
	PatternLimit int

	// MinConfidence filters low-confidence patterns backend-side.
	MinConfidence float64
}

// Client retrieves knowledge context for change sets.
//
// # Description
//
// GetContext never returns an error: the knowledge backend is an optional
// collaborator, and any failure, from repository discovery to individual
// sub-queries, degrades the bundle instead of the run.
type Client struct {
	transport  *transport.Client
	identifier *Identifier
	cfg        Config

	mu             sync.Mutex
	totalQueries   int
	totalQueryTime time.Duration
}

// NewClient builds a knowledge client over the given transport and id
// store. Zero config fields take the package defaults.
func NewClient(t *transport.Client, store idstore.Store, cfg Config) *Client {
	if cfg.SimilarLimit <= 0 {
		cfg.SimilarLimit = DefaultSimilarLimit
	}
	if cfg.PatternLimit <= 0 {
		cfg.PatternLimit = DefaultPatternLimit
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultMinConfidence
	}
	if cfg.RepoRoot == "" {
		cfg.RepoRoot = "."
	}
	return &Client{
		transport:  t,
		identifier: NewIdentifier(store),
		cfg:        cfg,
	}
}

// GetContext retrieves the knowledge bundle for a change set.
//
// # Description
//
// Issues up to three independent sub-queries concurrently: repository
// intelligence and similar repositories when the local repository could be
// identified, and patterns when the change set touches a known language.
// Each sub-query that fails is logged and leaves its portion of the bundle
// empty. QueriesMade counts only the sub-queries that completed.
func (c *Client) GetContext(ctx context.Context, changes *diff.ChangeSet) *ContextBundle {
	start := time.Now()
	defer func() { c.recordQuery(time.Since(start)) }()

	bundle := EmptyBundle()
	if changes == nil {
		return bundle
	}

	repoID := c.identify(ctx)
	languages := changes.Languages()

	var (
		intelligence *RepositoryIntelligence
		similar      []SimilarRepository
		patterns     []Pattern

		intelligenceOK bool
		similarOK      bool
		patternsOK     bool
	)

	// Plain group, not WithContext: one sub-query failing must not cancel
	// its siblings. Every closure absorbs its own error.
	var g errgroup.Group

	if repoID != "" {
		g.Go(func() error {
			var payload struct {
				RepositoryIntelligence *RepositoryIntelligence `json:"repositoryIntelligence"`
			}
			err := c.runQuery(ctx, repositoryIntelligenceQuery, map[string]any{
				"repositoryId": repoID,
			}, &payload)
			if err != nil {
				slog.Debug("repository intelligence query failed", slog.String("error", err.Error()))
				return nil
			}
			intelligence = payload.RepositoryIntelligence
			intelligenceOK = true
			return nil
		})

		g.Go(func() error {
			var payload struct {
				SimilarRepositories []SimilarRepository `json:"similarRepositories"`
			}
			err := c.runQuery(ctx, similarRepositoriesQuery, map[string]any{
				"repositoryId": repoID,
				"limit":        c.cfg.SimilarLimit,
			}, &payload)
			if err != nil {
				slog.Debug("similar repositories query failed", slog.String("error", err.Error()))
				return nil
			}
			similar = payload.SimilarRepositories
			similarOK = true
			return nil
		})
	}

	if len(languages) > 0 {
		language := languages[0]
		g.Go(func() error {
			var payload struct {
				Patterns []Pattern `json:"patterns"`
			}
			err := c.runQuery(ctx, patternsQuery, map[string]any{
				"language":      language,
				"minConfidence": c.cfg.MinConfidence,
				"limit":         c.cfg.PatternLimit,
			}, &payload)
			if err != nil {
				slog.Debug("patterns query failed",
					slog.String("language", language),
					slog.String("error", err.Error()),
				)
				return nil
			}
			patterns = payload.Patterns
			patternsOK = true
			return nil
		})
	}

	_ = g.Wait()

	bundle.RepositoryIntelligence = intelligence
	if similar != nil {
		bundle.SimilarRepositories = similar
	}
	if patterns != nil {
		bundle.Patterns = patterns
	}
	for _, ok := range []bool{intelligenceOK, similarOK, patternsOK} {
		if ok {
			bundle.QueriesMade++
		}
	}
	bundle.Confidence = computeConfidence(bundle, len(languages) > 1)

	slog.Debug("knowledge context retrieved",
		slog.Int("queries_made", bundle.QueriesMade),
		slog.Bool("repository_known", bundle.RepositoryIntelligence != nil),
		slog.Int("similar_repositories", len(bundle.SimilarRepositories)),
		slog.Int("patterns", len(bundle.Patterns)),
		slog.Float64("confidence", bundle.Confidence),
	)
	return bundle
}

// identify resolves the stable repository id, or "" when the project has
// no usable git remote.
func (c *Client) identify(ctx context.Context) string {
	_, id, err := c.identifier.Identify(ctx, c.cfg.RepoRoot)
	if err != nil {
		slog.Debug("repository identification failed",
			slog.String("root", c.cfg.RepoRoot),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return id
}

// runQuery posts one GraphQL document and decodes the data envelope into
// out. A non-2xx status or a GraphQL-level error is a query failure.
func (c *Client) runQuery(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	resp, err := c.transport.Post(ctx, c.graphqlURL(), body, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("query service returned status %d", resp.StatusCode)
	}

	var envelope graphqlEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return errors.New(envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) graphqlURL() string {
	return strings.TrimSuffix(c.cfg.QueryServiceURL, "/") + "/graphql"
}

// recordQuery folds one retrieval into the client stats.
func (c *Client) recordQuery(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalQueries++
	c.totalQueryTime += elapsed
}

// Stats returns a snapshot of cumulative client activity.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		TotalQueries:   c.totalQueries,
		TotalQueryTime: c.totalQueryTime,
	}
	if c.totalQueries > 0 {
		s.AverageQueryTime = c.totalQueryTime / time.Duration(c.totalQueries)
	}
	return s
}
