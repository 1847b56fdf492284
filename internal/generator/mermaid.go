package generator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"vuedoc/internal/graph"
)

// MermaidGenerator creates diagrams from the component graph.
type MermaidGenerator struct {
	root string
}

// GenerateDependencyDiagram draws components as boxes and plain modules as
// rounded nodes, with an arrow per import. It returns an empty string when
// the graph has no edges.
func (m *MermaidGenerator) GenerateDependencyDiagram(g *graph.Graph) string {
	if len(g.Edges) == 0 {
		return ""
	}

	// Stable node ids: components first, then modules, each in path order.
	ids := make(map[string]string)
	var modules []string
	for _, p := range g.Paths() {
		ids[p] = fmt.Sprintf("c%d", len(ids))
	}
	for _, e := range g.Edges {
		if _, ok := ids[e.To]; !ok {
			ids[e.To] = ""
			modules = append(modules, e.To)
		}
	}
	sort.Strings(modules)
	for i, p := range modules {
		ids[p] = fmt.Sprintf("m%d", i)
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph LR\n")
	for _, p := range g.Paths() {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", ids[p], label(componentTitle(g.Nodes[p].Doc)))
	}
	for _, p := range modules {
		fmt.Fprintf(&sb, "    %s([\"%s\"])\n", ids[p], label(m.rel(p)))
	}

	edges := append([]graph.Edge(nil), g.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From == edges[j].From {
			return edges[i].To < edges[j].To
		}
		return edges[i].From < edges[j].From
	})
	for _, e := range edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", ids[e.From], ids[e.To])
	}

	sb.WriteString("```\n")
	return sb.String()
}

func (m *MermaidGenerator) rel(path string) string {
	if m.root != "" {
		if r, err := filepath.Rel(m.root, path); err == nil && !strings.HasPrefix(r, "..") {
			return filepath.ToSlash(r)
		}
	}
	return filepath.ToSlash(path)
}

func label(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
