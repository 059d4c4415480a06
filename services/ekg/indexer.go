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
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/AleutianAI/ChangePrism/services/ekg/transport"
)

// =============================================================================
// Indexer
// =============================================================================

// eventRepositoryIndexed is the webhook event name the ingestion service
// dispatches on.
const eventRepositoryIndexed = "repository.indexed"

// Indexer asks the ingestion service to (re)index a repository through its
// GitHub-shaped webhook endpoint.
type Indexer struct {
	transport    *transport.Client
	ingestionURL string
}

// NewIndexer builds an indexer posting to the given ingestion service.
func NewIndexer(t *transport.Client, ingestionURL string) *Indexer {
	return &Indexer{transport: t, ingestionURL: ingestionURL}
}

// IndexReceipt correlates an accepted index request with backend logs.
type IndexReceipt struct {
	// Delivery is the X-GitHub-Delivery id sent with the request.
	Delivery string `json:"delivery"`

	// RequestID is the X-Request-ID sent with the request.
	RequestID string `json:"request_id"`

	// StatusCode is the ingestion service's response status.
	StatusCode int `json:"status_code"`
}

// Webhook payload, shaped like a GitHub repository event so the ingestion
// service can reuse its webhook pipeline.
type indexPayload struct {
	Action       string              `json:"action"`
	Repository   payloadRepository   `json:"repository"`
	Sender       payloadSender       `json:"sender"`
	Installation payloadInstallation `json:"installation"`
	Prism        payloadDirectives   `json:"prism"`
}

type payloadRepository struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	HTMLURL  string `json:"html_url"`
	Private  bool   `json:"private"`
}

type payloadSender struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

type payloadInstallation struct {
	ID     string `json:"id"`
	NodeID string `json:"node_id"`
}

type payloadDirectives struct {
	IncludePatterns     bool `json:"includePatterns"`
	IncludeDependencies bool `json:"includeDependencies"`
	IncludeMetrics      bool `json:"includeMetrics"`
}

// Index posts a repository.indexed webhook for the repository. Any
// response below 500 is acceptance; 5xx and transport failures surface as
// errors after the transport's retries are exhausted.
func (ix *Indexer) Index(ctx context.Context, repo *Repository, repoID string) (*IndexReceipt, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if repoID == "" {
		return nil, errors.New("repository id is required")
	}

	payload := indexPayload{
		Action: eventRepositoryIndexed,
		Repository: payloadRepository{
			ID:       repoID,
			Name:     repo.Name,
			FullName: repo.FullName,
			CloneURL: cloneURL(repo),
			HTMLURL:  htmlURL(repo),
			Private:  false,
		},
		Sender: payloadSender{
			Login: repo.Owner,
			Type:  "User",
		},
		Installation: payloadInstallation{
			ID:     uuid.NewString(),
			NodeID: uuid.NewString(),
		},
		Prism: payloadDirectives{
			IncludePatterns:     true,
			IncludeDependencies: true,
			IncludeMetrics:      true,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	receipt := &IndexReceipt{
		Delivery:  uuid.NewString(),
		RequestID: uuid.NewString(),
	}
	headers := map[string]string{
		"X-GitHub-Event":    eventRepositoryIndexed,
		"X-GitHub-Delivery": receipt.Delivery,
		"X-Request-ID":      receipt.RequestID,
	}

	endpoint := strings.TrimSuffix(ix.ingestionURL, "/") + "/webhooks/github"
	resp, err := ix.transport.Post(ctx, endpoint, body, headers)
	if err != nil {
		return nil, fmt.Errorf("index request for %s: %w", repo.FullName, err)
	}

	receipt.StatusCode = resp.StatusCode
	slog.Info("repository index requested",
		slog.String("full_name", repo.FullName),
		slog.String("delivery", receipt.Delivery),
		slog.Int("status", resp.StatusCode),
	)
	return receipt, nil
}

// cloneURL renders an https clone URL for the repository's remote host.
func cloneURL(repo *Repository) string {
	return "https://" + remoteHost(repo.RemoteURL) + "/" + repo.FullName + ".git"
}

// htmlURL renders the repository's browse URL.
func htmlURL(repo *Repository) string {
	return "https://" + remoteHost(repo.RemoteURL) + "/" + repo.FullName
}

// remoteHost extracts the host from an https, ssh or scp-like remote,
// defaulting to github.com when the remote is unrecognizable.
func remoteHost(remote string) string {
	switch {
	case strings.Contains(remote, "://"):
		if u, err := url.Parse(remote); err == nil && u.Host != "" {
			return u.Host
		}
	case strings.Contains(remote, "@") && strings.Contains(remote, ":"):
		_, after, _ := strings.Cut(remote, "@")
		host, _, _ := strings.Cut(after, ":")
		if host != "" {
			return host
		}
	}
	return "github.com"
}
