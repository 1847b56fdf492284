package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"vuedoc/internal/crawler"
	"vuedoc/internal/extractor"
	"vuedoc/internal/graph"
)

// Indexer orchestrates project indexing and graph management.
type Indexer struct {
	crawler *crawler.Crawler
}

// NewIndexer creates a new indexer.
func NewIndexer(c *crawler.Crawler) *Indexer {
	return &Indexer{
		crawler: c,
	}
}

// BuildGraph scans the project root and constructs the component graph.
func (i *Indexer) BuildGraph(ctx context.Context, root string) (*graph.Graph, error) {
	g := graph.NewGraph()

	err := i.crawler.ScanProject(ctx, root, func(doc *extractor.ComponentDoc) {
		g.AddDoc(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	// Resolve relationships after all components are loaded
	g.LinkRelations()

	return g, nil
}

// Refresh re-extracts the given files into g. Files that no longer exist
// are removed from the graph; edges are relinked afterwards.
func (i *Indexer) Refresh(ctx context.Context, g *graph.Graph, files []string) error {
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			g.RemoveFile(f)
			continue
		}
		if i.crawler.Filter().Match(f) {
			present = append(present, f)
		}
	}
	docs, err := i.crawler.ExtractFiles(ctx, present)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	for _, doc := range docs {
		g.AddDoc(doc)
	}
	g.LinkRelations()
	return nil
}

// SaveGraph persists the graph to a JSON file.
func (i *Indexer) SaveGraph(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(g); err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return nil
}

// LoadGraph loads a graph from a JSON file.
func (i *Indexer) LoadGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	g := graph.NewGraph()
	decoder := json.NewDecoder(f)
	if err := decoder.Decode(g); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}

	// Important: Rebuild internal indices that aren't serialized
	g.RebuildIndices()

	return g, nil
}
