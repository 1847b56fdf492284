package analysis

import (
	"path/filepath"
	"sort"

	"vuedoc/internal/git"
	"vuedoc/internal/graph"
)

// ImpactReport summarizes the components affected by changes.
type ImpactReport struct {
	DirectlyAffected   []*graph.Node
	IndirectlyAffected []*graph.Node
	// Removed lists changed component files that no longer exist.
	Removed []string
}

// Paths returns every affected component path, direct ones first.
func (r *ImpactReport) Paths() []string {
	out := make([]string, 0, len(r.DirectlyAffected)+len(r.IndirectlyAffected))
	for _, n := range r.DirectlyAffected {
		out = append(out, n.Doc.Filepath)
	}
	for _, n := range r.IndirectlyAffected {
		out = append(out, n.Doc.Filepath)
	}
	return out
}

// Analyzer performs impact analysis on the dependency graph.
type Analyzer struct {
	g    *graph.Graph
	root string
}

// NewAnalyzer creates a new analyzer. Relative change paths are taken
// from root.
func NewAnalyzer(g *graph.Graph, root string) *Analyzer {
	return &Analyzer{g: g, root: root}
}

// AnalyzeImpact identifies which components are affected by the given
// changes. A changed component is directly affected; every component that
// imports a changed file, directly or through other modules, is
// indirectly affected.
func (a *Analyzer) AnalyzeImpact(changes []git.ChangedFile) (*ImpactReport, error) {
	report := &ImpactReport{
		DirectlyAffected:   []*graph.Node{},
		IndirectlyAffected: []*graph.Node{},
	}

	seen := make(map[string]bool)
	var queue []string

	for _, change := range changes {
		path := a.abs(change.Path)
		if change.Deleted {
			if _, ok := a.g.Nodes[path]; ok {
				report.Removed = append(report.Removed, path)
			}
		} else if node, ok := a.g.Nodes[path]; ok && !seen[path] {
			report.DirectlyAffected = append(report.DirectlyAffected, node)
			seen[path] = true
		}
		queue = append(queue, path)
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}
		visited[path] = true
		for _, dep := range a.g.GetDependents(path) {
			p := dep.Doc.Filepath
			if !seen[p] {
				report.IndirectlyAffected = append(report.IndirectlyAffected, dep)
				seen[p] = true
			}
			queue = append(queue, p)
		}
	}

	sortNodes(report.DirectlyAffected)
	sortNodes(report.IndirectlyAffected)
	sort.Strings(report.Removed)
	return report, nil
}

func (a *Analyzer) abs(path string) string {
	if filepath.IsAbs(path) || a.root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(a.root, filepath.FromSlash(path))
}

func sortNodes(nodes []*graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Doc.Filepath < nodes[j].Doc.Filepath })
}
