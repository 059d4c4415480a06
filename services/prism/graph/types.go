// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph builds file-level dependency graphs from analysis results.
//
// # Description
//
// Nodes are analyzed file paths; edges are local import relationships
// resolved by the analyzer. The graph is directed and may contain cycles.
// Cycle detection is deliberately not performed here: the graph is
// advisory output for downstream consumers, not a correctness gate.
//
// # Thread Safety
//
// A DependencyGraph is immutable after Build and safe for concurrent reads.
package graph

// Edge is a directed local-dependency relationship between two files.
type Edge struct {
	// From is the importing file path.
	From string `json:"from"`

	// To is the imported file path.
	To string `json:"to"`
}

// Metadata carries summary statistics for a built graph.
type Metadata struct {
	// TotalNodes is the number of files in the graph.
	TotalNodes int `json:"total_nodes"`

	// TotalEdges is the number of local-dependency edges.
	TotalEdges int `json:"total_edges"`

	// Density is edges / (nodes * (nodes-1)), 0 when nodes <= 1.
	Density float64 `json:"density"`
}

// DependencyGraph is the file-level dependency structure of a project.
type DependencyGraph struct {
	// Nodes lists every analyzed file path, in analysis order.
	Nodes []string `json:"nodes"`

	// Edges lists local-dependency edges. Every endpoint is a member
	// of Nodes.
	Edges []Edge `json:"edges"`

	// Metadata carries node/edge counts and density.
	Metadata Metadata `json:"metadata"`
}

// HasNode returns true if the path is a node in the graph.
func (g *DependencyGraph) HasNode(path string) bool {
	for _, n := range g.Nodes {
		if n == path {
			return true
		}
	}
	return false
}

// HasEdge returns true if a from->to edge exists.
func (g *DependencyGraph) HasEdge(from, to string) bool {
	for _, e := range g.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// DependenciesOf returns the files the given file imports locally.
func (g *DependencyGraph) DependenciesOf(path string) []string {
	deps := make([]string, 0)
	for _, e := range g.Edges {
		if e.From == path {
			deps = append(deps, e.To)
		}
	}
	return deps
}

// DependentsOf returns the files that locally import the given file.
// Useful for change-impact analysis.
func (g *DependencyGraph) DependentsOf(path string) []string {
	dependents := make([]string, 0)
	for _, e := range g.Edges {
		if e.To == path {
			dependents = append(dependents, e.From)
		}
	}
	return dependents
}
