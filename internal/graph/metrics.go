package graph

import "vuedoc/internal/script"

// Stats summarizes the graph for run reports.
type Stats struct {
	Components int `json:"components"`
	Edges      int `json:"edges"`
	Entries    int `json:"entries"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
}

func (g *Graph) Stats() Stats {
	var s Stats
	if g == nil {
		return s
	}
	s.Components = len(g.Nodes)
	s.Edges = len(g.Edges)
	for _, n := range g.Nodes {
		s.Entries += len(n.Doc.Entries)
		for _, m := range n.Doc.Messages {
			switch m.Level {
			case script.LevelError:
				s.Errors++
			case script.LevelWarning:
				s.Warnings++
			}
		}
	}
	return s
}

// MessageCounts groups the messages of every component by file.
func (g *Graph) MessageCounts() map[string]int {
	counts := make(map[string]int)
	if g == nil {
		return counts
	}
	for path, n := range g.Nodes {
		if len(n.Doc.Messages) > 0 {
			counts[path] = len(n.Doc.Messages)
		}
	}
	return counts
}
