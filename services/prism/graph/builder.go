// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"github.com/AleutianAI/ChangePrism/services/prism/ast"
)

// Builder constructs dependency graphs from analysis results.
//
// The builder is stateless and can be reused across multiple builds.
// Each Build() call creates a new graph.
//
// Thread Safety:
//
//	Builder is safe for concurrent use. Each Build() call operates
//	independently with its own internal state.
type Builder struct{}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build constructs a graph from the given analysis results.
//
// Description:
//
//	Every analyzed file becomes a node. Each entry in an analysis's
//	resolved dependency list becomes one From->To edge, deduplicated
//	per file. Dependencies pointing outside the analyzed file set are
//	dropped rather than added as phantom nodes, so every edge endpoint
//	is always a member of Nodes. Nil analyses are skipped.
//
// Inputs:
//
//	analyses - Analysis results, one per file. Order defines node order.
//
// Outputs:
//
//	*DependencyGraph - Directed graph with summary metadata. Never nil.
func (b *Builder) Build(analyses []*ast.FileAnalysis) *DependencyGraph {
	g := &DependencyGraph{
		Nodes: make([]string, 0, len(analyses)),
		Edges: make([]Edge, 0),
	}

	nodeSet := make(map[string]bool, len(analyses))
	for _, a := range analyses {
		if a == nil || a.Path == "" {
			continue
		}
		if !nodeSet[a.Path] {
			nodeSet[a.Path] = true
			g.Nodes = append(g.Nodes, a.Path)
		}
	}

	for _, a := range analyses {
		if a == nil {
			continue
		}
		seen := make(map[string]bool, len(a.Dependencies))
		for _, dep := range a.Dependencies {
			if dep == "" || dep == a.Path || seen[dep] {
				continue
			}
			seen[dep] = true
			if !nodeSet[dep] {
				continue
			}
			g.Edges = append(g.Edges, Edge{From: a.Path, To: dep})
		}
	}

	g.Metadata = Metadata{
		TotalNodes: len(g.Nodes),
		TotalEdges: len(g.Edges),
		Density:    density(len(g.Nodes), len(g.Edges)),
	}

	return g
}

// density computes edge density for a directed graph without self-loops.
func density(nodes, edges int) float64 {
	if nodes <= 1 {
		return 0
	}
	return float64(edges) / float64(nodes*(nodes-1))
}
