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

func TestParser_AddedLines_Empty(t *testing.T) {
	parser := NewParser()

	for _, input := range []string{"", "   \n\n"} {
		added := parser.AddedLines(input)
		if added == nil {
			t.Fatalf("AddedLines(%q) = nil, want empty slice", input)
		}
		if len(added) != 0 {
			t.Errorf("AddedLines(%q) = %v, want none", input, added)
		}
	}
}

func TestParser_AddedLines_TwoFiles(t *testing.T) {
	parser := NewParser()

	added := parser.AddedLines(testDiffTwoFiles)
	want := []AddedLine{
		{Path: "src/app.ts", Number: 2, Text: "const b = 2;"},
		{Path: "src/app.ts", Number: 3, Text: "const c = 3;"},
		{Path: "README.md", Number: 2, Text: "New line."},
	}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("AddedLines() = %v, want %v", added, want)
	}
}

func TestParser_AddedLines_NewFile(t *testing.T) {
	parser := NewParser()

	added := parser.AddedLines(testDiffNewFile)
	want := []AddedLine{
		{Path: "src/util.py", Number: 1, Text: "def f():"},
		{Path: "src/util.py", Number: 2, Text: "    return 1"},
	}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("AddedLines() = %v, want %v", added, want)
	}
}

func TestParser_AddedLines_DeletedFile(t *testing.T) {
	parser := NewParser()

	if added := parser.AddedLines(testDiffDeletedFile); len(added) != 0 {
		t.Errorf("AddedLines() = %v, want none for pure deletion", added)
	}
}

func TestScanAddedLines(t *testing.T) {
	t.Run("tracks hunk positions", func(t *testing.T) {
		input := "diff --git a/x.py b/x.py\n" +
			"@@ -1,2 +10,3 @@\n" +
			" ctx\n" +
			"+added one\n" +
			"-removed\n" +
			"+added two\n"

		added := scanAddedLines(input)
		want := []AddedLine{
			{Path: "x.py", Number: 11, Text: "added one"},
			{Path: "x.py", Number: 12, Text: "added two"},
		}
		if !reflect.DeepEqual(added, want) {
			t.Errorf("scanAddedLines() = %v, want %v", added, want)
		}
	})

	t.Run("added line without hunk gets zero", func(t *testing.T) {
		input := "diff --git a/y.py b/y.py\n+loose line\n"

		added := scanAddedLines(input)
		want := []AddedLine{{Path: "y.py", Number: 0, Text: "loose line"}}
		if !reflect.DeepEqual(added, want) {
			t.Errorf("scanAddedLines() = %v, want %v", added, want)
		}
	})

	t.Run("added line before any file header dropped", func(t *testing.T) {
		input := "+orphan\n" +
			"diff --git a/z.py b/z.py\n" +
			"@@ -0,0 +1 @@\n" +
			"+kept\n"

		added := scanAddedLines(input)
		want := []AddedLine{{Path: "z.py", Number: 1, Text: "kept"}}
		if !reflect.DeepEqual(added, want) {
			t.Errorf("scanAddedLines() = %v, want %v", added, want)
		}
	})
}

func TestNewStartFromHunkHeader(t *testing.T) {
	tests := []struct {
		header string
		want   int
	}{
		{"@@ -1,3 +1,5 @@", 1},
		{"@@ -0,0 +42 @@", 42},
		{"@@ -10,2 +17,4 @@ func main() {", 17},
		{"@@ -1,2 +0,0 @@", 0},
		{"@@ malformed", 0},
		{"@@ -5 +x @@", 0},
	}

	for _, tt := range tests {
		if got := newStartFromHunkHeader(tt.header); got != tt.want {
			t.Errorf("newStartFromHunkHeader(%q) = %d, want %d", tt.header, got, tt.want)
		}
	}
}
