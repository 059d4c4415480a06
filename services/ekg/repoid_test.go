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
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/ChangePrism/services/ekg/idstore"
)

// writeGitRepo lays down a minimal .git/config with the given origin
// remote and returns the repository root.
func writeGitRepo(t *testing.T, remote string) string {
	t.Helper()
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	config := "[core]\n" +
		"\trepositoryformatversion = 0\n" +
		"[remote \"origin\"]\n" +
		"\turl = " + remote + "\n" +
		"\tfetch = +refs/heads/*:refs/remotes/origin/*\n" +
		"[branch \"main\"]\n" +
		"\tremote = origin\n"
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return root
}

func TestParseRemote(t *testing.T) {
	tests := []struct {
		remote string
		owner  string
		name   string
		ok     bool
	}{
		{"https://github.com/acme/widgets.git", "acme", "widgets", true},
		{"https://github.com/acme/widgets", "acme", "widgets", true},
		{"https://github.com/acme/widgets/", "acme", "widgets", true},
		{"git@github.com:acme/widgets.git", "acme", "widgets", true},
		{"ssh://git@github.com/acme/widgets.git", "acme", "widgets", true},
		{"https://gitlab.example.com/group/sub/project.git", "sub", "project", true},
		{"git@github.com:widgets.git", "", "", false},
		{"not-a-remote", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		owner, name, ok := ParseRemote(tt.remote)
		if ok != tt.ok {
			t.Errorf("ParseRemote(%q) ok = %v, want %v", tt.remote, ok, tt.ok)
			continue
		}
		if owner != tt.owner || name != tt.name {
			t.Errorf("ParseRemote(%q) = %q/%q, want %q/%q",
				tt.remote, owner, name, tt.owner, tt.name)
		}
	}
}

func TestDeriveID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := DeriveID("acme/widgets", now)

	if !strings.HasPrefix(id, "acme-widgets-") {
		t.Fatalf("id = %q, want acme-widgets- prefix", id)
	}

	suffix := strings.TrimPrefix(id, "acme-widgets-")
	ms, err := strconv.ParseInt(suffix, 36, 64)
	if err != nil {
		t.Fatalf("suffix %q is not base36: %v", suffix, err)
	}
	if ms != now.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", ms, now.UnixMilli())
	}
}

func TestDiscoverRepository(t *testing.T) {
	root := writeGitRepo(t, "git@github.com:acme/widgets.git")

	repo, err := DiscoverRepository(root)
	if err != nil {
		t.Fatalf("DiscoverRepository error: %v", err)
	}
	if repo.Owner != "acme" || repo.Name != "widgets" {
		t.Errorf("repo = %s/%s, want acme/widgets", repo.Owner, repo.Name)
	}
	if repo.FullName != "acme/widgets" {
		t.Errorf("FullName = %q", repo.FullName)
	}
	if repo.RemoteURL != "git@github.com:acme/widgets.git" {
		t.Errorf("RemoteURL = %q", repo.RemoteURL)
	}
}

func TestDiscoverRepository_NotARepository(t *testing.T) {
	_, err := DiscoverRepository(t.TempDir())
	if !errors.Is(err, ErrNotARepository) {
		t.Fatalf("error = %v, want ErrNotARepository", err)
	}
}

func TestDiscoverRepository_NoOrigin(t *testing.T) {
	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		t.Fatal(err)
	}
	config := "[core]\n\trepositoryformatversion = 0\n" +
		"[remote \"upstream\"]\n\turl = git@github.com:acme/fork.git\n"
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := DiscoverRepository(root)
	if !errors.Is(err, ErrNoRemote) {
		t.Fatalf("error = %v, want ErrNoRemote", err)
	}
}

func TestIdentifier_ReusesCachedID(t *testing.T) {
	identifier := NewIdentifier(idstore.NewMemoryStore())
	root := writeGitRepo(t, "https://github.com/acme/widgets.git")
	ctx := context.Background()

	repo, first, err := identifier.Identify(ctx, root)
	if err != nil {
		t.Fatalf("Identify error: %v", err)
	}
	if repo.FullName != "acme/widgets" {
		t.Errorf("FullName = %q", repo.FullName)
	}

	// A second root with the same remote resolves to the same id: the
	// cache is keyed by full name, not by path.
	otherRoot := writeGitRepo(t, "https://github.com/acme/widgets.git")
	_, second, err := identifier.Identify(ctx, otherRoot)
	if err != nil {
		t.Fatalf("Identify error: %v", err)
	}
	if first != second {
		t.Errorf("ids differ across calls: %q vs %q", first, second)
	}
}

func TestIdentifier_DiscoveryFailure(t *testing.T) {
	identifier := NewIdentifier(nil)
	_, _, err := identifier.Identify(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for a directory without .git")
	}
}
