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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/ChangePrism/services/ekg/idstore"
)

// =============================================================================
// Repository Discovery
// =============================================================================

var (
	// ErrNoRemote is returned when .git/config has no origin remote URL.
	ErrNoRemote = errors.New("no origin remote configured")

	// ErrNotARepository is returned when root has no readable .git/config.
	ErrNotARepository = errors.New("not a git repository")
)

// Repository identifies the local repository by its origin remote.
type Repository struct {
	// Owner is the remote namespace (user or organization).
	Owner string

	// Name is the repository name without the .git suffix.
	Name string

	// FullName is "owner/name".
	FullName string

	// RemoteURL is the origin URL as written in .git/config.
	RemoteURL string
}

// DiscoverRepository reads .git/config under root and resolves the origin
// remote into owner/name form. Equivalent to `git config --get
// remote.origin.url` without shelling out.
func DiscoverRepository(root string) (*Repository, error) {
	if root == "" {
		root = "."
	}
	configPath := filepath.Join(root, ".git", "config")
	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, root)
	}
	defer f.Close()

	remote := originURL(f)
	if remote == "" {
		return nil, ErrNoRemote
	}

	owner, name, ok := ParseRemote(remote)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized remote %q", ErrNoRemote, remote)
	}
	return &Repository{
		Owner:     owner,
		Name:      name,
		FullName:  owner + "/" + name,
		RemoteURL: remote,
	}, nil
}

// originURL scans a git config stream for the url entry of the origin
// remote section.
func originURL(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	inOrigin := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "[") {
			inOrigin = line == `[remote "origin"]`
			continue
		}
		if !inOrigin {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if found && strings.TrimSpace(key) == "url" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// ParseRemote extracts owner and name from a git remote URL. Handles
// https, ssh and scp-like forms:
//
//	https://github.com/acme/widgets.git
//	ssh://git@github.com/acme/widgets.git
//	git@github.com:acme/widgets.git
func ParseRemote(remote string) (owner, name string, ok bool) {
	remote = strings.TrimSpace(remote)
	remote = strings.TrimSuffix(remote, "/")
	remote = strings.TrimSuffix(remote, ".git")
	if remote == "" {
		return "", "", false
	}

	var repoPath string
	switch {
	case strings.Contains(remote, "://"):
		u, err := url.Parse(remote)
		if err != nil {
			return "", "", false
		}
		repoPath = strings.TrimPrefix(u.Path, "/")
	case strings.Contains(remote, "@") && strings.Contains(remote, ":"):
		// scp-like: everything after the first colon is the path.
		_, after, _ := strings.Cut(remote, ":")
		repoPath = after
	default:
		repoPath = remote
	}

	parts := strings.Split(repoPath, "/")
	if len(parts) < 2 {
		return "", "", false
	}
	owner = parts[len(parts)-2]
	name = parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}

// =============================================================================
// Identifier Derivation
// =============================================================================

// DeriveID builds a repository id from the full name and a timestamp:
// slashes become dashes, followed by the base36 Unix-millisecond time.
// The timestamp component makes derivation non-deterministic; callers
// wanting a stable id go through Identifier, which caches the first one.
func DeriveID(fullName string, now time.Time) string {
	return strings.ReplaceAll(fullName, "/", "-") + "-" +
		strconv.FormatInt(now.UnixMilli(), 36)
}

// Identifier resolves the stable repository id for a project root,
// caching derived ids per full name in the id store.
type Identifier struct {
	store idstore.Store
}

// NewIdentifier wraps the given store. A nil store falls back to an
// in-memory cache.
func NewIdentifier(store idstore.Store) *Identifier {
	if store == nil {
		store = idstore.NewMemoryStore()
	}
	return &Identifier{store: store}
}

// Identify returns the repository and its stable id for root. The first
// call for a repository derives a fresh id and records it; later calls
// reuse the recorded one. A store write failure only costs stability,
// never the id itself.
func (i *Identifier) Identify(ctx context.Context, root string) (*Repository, string, error) {
	repo, err := DiscoverRepository(root)
	if err != nil {
		return nil, "", err
	}

	if id, ok := i.store.Get(ctx, repo.FullName); ok {
		return repo, id, nil
	}

	id := DeriveID(repo.FullName, time.Now())
	if err := i.store.Put(ctx, repo.FullName, id); err != nil {
		slog.Debug("repository id not persisted",
			slog.String("full_name", repo.FullName),
			slog.String("error", err.Error()),
		)
	}
	return repo, id, nil
}
