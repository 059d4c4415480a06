// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diff

import (
	"reflect"
	"testing"
)

func TestFileDelta_Stats(t *testing.T) {
	tests := []struct {
		name  string
		delta FileDelta
		want  string
	}{
		{"mixed", FileDelta{Additions: 12, Deletions: 3}, "+12 -3"},
		{"additions only", FileDelta{Additions: 5}, "+5 -0"},
		{"empty", FileDelta{}, "+0 -0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.delta.Stats(); got != tt.want {
				t.Errorf("Stats() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChangeSet_IsEmpty(t *testing.T) {
	empty := &ChangeSet{Files: []FileDelta{}}
	if !empty.IsEmpty() {
		t.Error("expected empty change set")
	}

	nonEmpty := &ChangeSet{Files: []FileDelta{{Path: "a.go"}}}
	if nonEmpty.IsEmpty() {
		t.Error("expected non-empty change set")
	}
	if nonEmpty.FileCount() != 1 {
		t.Errorf("FileCount() = %d, want 1", nonEmpty.FileCount())
	}
}

func TestChangeSet_Paths(t *testing.T) {
	cs := &ChangeSet{Files: []FileDelta{
		{Path: "src/app.ts"},
		{Path: "README.md"},
	}}

	want := []string{"src/app.ts", "README.md"}
	if got := cs.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestChangeSet_Languages(t *testing.T) {
	cs := &ChangeSet{Files: []FileDelta{
		{Path: "a.ts", Language: "typescript"},
		{Path: "b.ts", Language: "typescript"},
		{Path: "c.py", Language: "python"},
		{Path: "notes.xyz", Language: "unknown"},
		{Path: "blank", Language: ""},
	}}

	want := []string{"typescript", "python"}
	if got := cs.Languages(); !reflect.DeepEqual(got, want) {
		t.Errorf("Languages() = %v, want %v", got, want)
	}
}
