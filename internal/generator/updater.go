package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"vuedoc/internal/graph"
)

// DocUpdater patches an existing document section by section.
type DocUpdater struct {
	gen *MarkdownGenerator
}

func NewDocUpdater(gen *MarkdownGenerator) *DocUpdater {
	return &DocUpdater{gen: gen}
}

// UpdateResult counts what an update did.
type UpdateResult struct {
	Updated int
	Added   int
	Removed int
	Created bool // The document did not exist and was fully rendered
}

// Plan lists the patches bringing a document up to date with g for the
// given affected component paths and removed component IDs. The
// diagram section is always refreshed.
func (u *DocUpdater) Plan(g *graph.Graph, affected []string, removedIDs []string) []DocPatch {
	patches := []DocPatch{{SectionID: DiagramSectionID, NewContent: u.gen.RenderDiagram(g)}}
	seen := map[string]bool{DiagramSectionID: true}
	for _, id := range removedIDs {
		if !seen[id] {
			patches = append(patches, DocPatch{SectionID: id})
			seen[id] = true
		}
	}
	for _, path := range affected {
		node, ok := g.Nodes[path]
		if !ok || seen[node.Doc.ID] {
			continue
		}
		seen[node.Doc.ID] = true
		patches = append(patches, DocPatch{SectionID: node.Doc.ID, NewContent: u.gen.RenderComponent(node.Doc)})
	}
	return patches
}

// ApplyPatches rewrites the patched sections in place, drops sections with
// empty content and appends sections that did not exist yet.
func ApplyPatches(sections []DocSection, patches []DocPatch) ([]DocSection, UpdateResult) {
	var res UpdateResult
	byID := make(map[string]DocPatch, len(patches))
	for _, p := range patches {
		byID[p.SectionID] = p
	}

	applied := make(map[string]bool)
	out := make([]DocSection, 0, len(sections)+len(patches))
	for _, s := range sections {
		p, ok := byID[s.ID]
		if s.ID == "" || !ok {
			out = append(out, s)
			continue
		}
		applied[s.ID] = true
		if p.NewContent == "" {
			res.Removed++
			continue
		}
		if p.NewContent != s.Content {
			res.Updated++
		}
		out = append(out, DocSection{ID: s.ID, Title: sectionTitle(p.NewContent), Content: p.NewContent})
	}
	for _, p := range patches {
		if applied[p.SectionID] || p.NewContent == "" {
			continue
		}
		res.Added++
		out = append(out, DocSection{ID: p.SectionID, Title: sectionTitle(p.NewContent), Content: p.NewContent})
	}
	return out, res
}

// UpdateDocs patches the document at docPath. A missing document is
// rendered from scratch.
func (u *DocUpdater) UpdateDocs(ctx context.Context, docPath string, g *graph.Graph, affected []string, removedIDs []string) (UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return UpdateResult{}, err
	}
	raw, err := os.ReadFile(docPath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(docPath), 0o755); err != nil {
			return UpdateResult{}, err
		}
		if err := os.WriteFile(docPath, []byte(u.gen.Render(g)), 0o644); err != nil {
			return UpdateResult{}, fmt.Errorf("failed to write %s: %w", docPath, err)
		}
		return UpdateResult{Created: true, Added: len(g.Nodes)}, nil
	}
	if err != nil {
		return UpdateResult{}, fmt.Errorf("failed to read %s: %w", docPath, err)
	}

	sections := SplitMarkdown(string(raw))
	patched, res := ApplyPatches(sections, u.Plan(g, affected, removedIDs))
	if err := os.WriteFile(docPath, []byte(JoinSections(patched)), 0o644); err != nil {
		return UpdateResult{}, fmt.Errorf("failed to write %s: %w", docPath, err)
	}
	return res, nil
}
