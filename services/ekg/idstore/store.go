// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package idstore persists repository identifiers between pipeline runs.
//
// Repository ids carry a timestamp component, so deriving one twice yields
// two different ids for the same repository. The store pins the first id
// seen for each full name so later runs reuse it. Backed by BadgerDB on
// disk; falls back to an in-memory map when the database cannot open, since
// a missing cache must never block a pipeline run.
package idstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
)

// repoKeyPrefix namespaces repository-id records within the database.
const repoKeyPrefix = "repo:"

// EnvPath is the environment variable overriding the store location.
const EnvPath = "PRISM_ID_STORE"

// Store maps repository full names (owner/name) to stable repository ids.
//
// Implementations are safe for concurrent use. Lookups never fail: a broken
// or empty store reports a miss and the caller derives a fresh id.
type Store interface {
	// Get returns the cached id for fullName, or false on a miss.
	Get(ctx context.Context, fullName string) (string, bool)

	// Put records the id for fullName, overwriting any previous value.
	Put(ctx context.Context, fullName, id string) error

	// Close releases the underlying database, if any.
	Close() error
}

// DefaultPath returns the store directory: $PRISM_ID_STORE if set, otherwise
// ~/.changeprism/ids, with the system temp directory as a last resort.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "changeprism-ids")
	}
	return filepath.Join(home, ".changeprism", "ids")
}

// Open opens the id store at path (DefaultPath when empty). It never fails:
// when the on-disk database cannot open, the miss is logged and an in-memory
// store is returned instead.
func Open(path string) Store {
	if path == "" {
		path = DefaultPath()
	}
	store, err := OpenBadger(path)
	if err != nil {
		slog.Warn("id store unavailable, caching ids in memory",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return NewMemoryStore()
	}
	return store
}

// ----------------------------------------------------------------------------
// BadgerStore
// ----------------------------------------------------------------------------

// BadgerStore is the persistent Store backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens a persistent store in the given directory, creating it
// if needed. Badger's own logging is disabled; ids are small and can be
// re-derived, so writes are not synced.
func OpenBadger(path string) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("create id store directory %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open id store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, fullName string) (string, bool) {
	if ctx.Err() != nil || fullName == "" {
		return "", false
	}

	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(repoKey(fullName))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id = string(val)
		return nil
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Debug("id store read failed",
				slog.String("full_name", fullName),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return id, true
}

func (s *BadgerStore) Put(ctx context.Context, fullName, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fullName == "" {
		return errors.New("full name is required")
	}
	if id == "" {
		return errors.New("id is required")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(repoKey(fullName), []byte(id))
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func repoKey(fullName string) []byte {
	return []byte(repoKeyPrefix + fullName)
}

// ----------------------------------------------------------------------------
// MemoryStore
// ----------------------------------------------------------------------------

// MemoryStore is the fallback Store holding ids for the process lifetime.
type MemoryStore struct {
	mu  sync.RWMutex
	ids map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, fullName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.ids[fullName]
	return id, ok
}

func (s *MemoryStore) Put(_ context.Context, fullName, id string) error {
	if fullName == "" {
		return errors.New("full name is required")
	}
	if id == "" {
		return errors.New("id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[fullName] = id
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
