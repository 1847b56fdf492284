package graph

import (
	"sort"

	"vuedoc/internal/extractor"
)

// Node represents a documented component in the dependency graph.
type Node struct {
	Doc *extractor.ComponentDoc `json:"doc"`
}

// Graph manages component nodes and the modules they import. Nodes are
// keyed by file path; an edge target need not be a node, since plain
// script modules are not documented themselves.
type Graph struct {
	Nodes map[string]*Node `json:"nodes"`
	Edges []Edge           `json:"edges"`

	// Index for faster lookup: path -> edge positions.
	outIndex map[string][]int
	inIndex  map[string][]int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:    make(map[string]*Node),
		Edges:    []Edge{},
		outIndex: make(map[string][]int),
		inIndex:  make(map[string][]int),
	}
}

// AddDoc adds a component as a node, replacing any node for the same file.
func (g *Graph) AddDoc(doc *extractor.ComponentDoc) {
	if doc == nil || doc.Filepath == "" {
		return
	}
	g.Nodes[doc.Filepath] = &Node{Doc: doc}
}

// RemoveFile drops the node of path and the edges leaving it.
func (g *Graph) RemoveFile(path string) {
	delete(g.Nodes, path)
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.From != path {
			kept = append(kept, e)
		}
	}
	g.Edges = kept
	g.RebuildIndices()
}

// LinkRelations rebuilds the edges from every node's dependencies.
func (g *Graph) LinkRelations() {
	g.Edges = []Edge{}

	paths := g.Paths()
	for _, from := range paths {
		node := g.Nodes[from]
		for _, to := range node.Doc.Dependencies {
			if to == from {
				continue
			}
			g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: RelationImports})
		}
	}
	g.RebuildIndices()
}

// RebuildIndices refreshes the lookup indices after Edges changed.
func (g *Graph) RebuildIndices() {
	g.outIndex = make(map[string][]int, len(g.Nodes))
	g.inIndex = make(map[string][]int, len(g.Nodes))
	for i, e := range g.Edges {
		g.outIndex[e.From] = append(g.outIndex[e.From], i)
		g.inIndex[e.To] = append(g.inIndex[e.To], i)
	}
}

// Paths returns the node paths in lexical order.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Imports returns every path the given file imports, whether or not it is
// a component.
func (g *Graph) Imports(path string) []string {
	var out []string
	for _, i := range g.outIndex[path] {
		out = append(out, g.Edges[i].To)
	}
	return out
}

// GetDependencies returns the components the given file imports.
func (g *Graph) GetDependencies(path string) []*Node {
	var deps []*Node
	for _, i := range g.outIndex[path] {
		if node, ok := g.Nodes[g.Edges[i].To]; ok {
			deps = append(deps, node)
		}
	}
	return deps
}

// GetDependents returns the components that import the given file.
func (g *Graph) GetDependents(path string) []*Node {
	var deps []*Node
	for _, i := range g.inIndex[path] {
		if node, ok := g.Nodes[g.Edges[i].From]; ok {
			deps = append(deps, node)
		}
	}
	return deps
}
