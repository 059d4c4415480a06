package ast

import "testing"

func TestComputeMetrics_EmptyContent(t *testing.T) {
	metrics := ComputeMetrics(nil, "go")

	if metrics.LinesOfCode != 0 {
		t.Errorf("LinesOfCode = %d, want 0", metrics.LinesOfCode)
	}
	if metrics.Complexity != 1 {
		t.Errorf("Complexity = %d, want 1", metrics.Complexity)
	}
	if metrics.Maintainability != 100 {
		t.Errorf("Maintainability = %d, want 100", metrics.Maintainability)
	}
}

func TestComputeMetrics_CountsNonBlankLines(t *testing.T) {
	content := []byte("line one\n\nline two\n   \nline three\n")
	metrics := ComputeMetrics(content, "text")

	if metrics.LinesOfCode != 3 {
		t.Errorf("LinesOfCode = %d, want 3", metrics.LinesOfCode)
	}
}

func TestComputeMetrics_BranchesIncreaseComplexity(t *testing.T) {
	flat := []byte("x := 1\ny := 2\nz := x + y\n")
	branchy := []byte("if a {\n} else if b {\n}\nfor i := range xs {\n\tif c && d {\n\t}\n}\n")

	flatMetrics := ComputeMetrics(flat, "go")
	branchyMetrics := ComputeMetrics(branchy, "go")

	if flatMetrics.Complexity != 1 {
		t.Errorf("flat Complexity = %d, want 1", flatMetrics.Complexity)
	}
	if branchyMetrics.Complexity <= flatMetrics.Complexity {
		t.Errorf("branchy Complexity = %d, should exceed flat %d",
			branchyMetrics.Complexity, flatMetrics.Complexity)
	}
}

func TestComputeMetrics_ComplexityCapped(t *testing.T) {
	var content []byte
	for i := 0; i < 300; i++ {
		content = append(content, []byte("if x { }\n")...)
	}

	metrics := ComputeMetrics(content, "go")
	if metrics.Complexity != MaxComplexity {
		t.Errorf("Complexity = %d, want cap %d", metrics.Complexity, MaxComplexity)
	}
}

func TestComputeMetrics_MaintainabilityBounds(t *testing.T) {
	samples := [][]byte{
		[]byte("x = 1\n"),
		[]byte("if a:\n    pass\nelif b:\n    pass\n"),
	}

	// A very large, very branchy file must still stay within bounds.
	var huge []byte
	for i := 0; i < 5000; i++ {
		huge = append(huge, []byte("while x and y or z:\n    pass\n")...)
	}
	samples = append(samples, huge)

	for i, content := range samples {
		metrics := ComputeMetrics(content, "python")
		if metrics.Maintainability < 0 || metrics.Maintainability > 100 {
			t.Errorf("sample %d: Maintainability = %d, want within [0,100]", i, metrics.Maintainability)
		}
	}
}

func TestComputeMetrics_LargerFilesScoreLower(t *testing.T) {
	small := []byte("def f():\n    return 1\n")

	var large []byte
	for i := 0; i < 500; i++ {
		large = append(large, []byte("def g():\n    if x:\n        return 2\n")...)
	}

	smallMetrics := ComputeMetrics(small, "python")
	largeMetrics := ComputeMetrics(large, "python")

	if largeMetrics.Maintainability >= smallMetrics.Maintainability {
		t.Errorf("large file Maintainability = %d, should be below small file %d",
			largeMetrics.Maintainability, smallMetrics.Maintainability)
	}
}

func TestComputeMetrics_LanguagePatternSelection(t *testing.T) {
	// "elif" and "except" only count for Python.
	content := []byte("elif\nexcept\n")

	pythonMetrics := ComputeMetrics(content, "python")
	goMetrics := ComputeMetrics(content, "go")

	if pythonMetrics.Complexity <= goMetrics.Complexity {
		t.Errorf("python Complexity = %d, go = %d; python keywords should only count for python",
			pythonMetrics.Complexity, goMetrics.Complexity)
	}
}
