package storage

import (
	"context"
	"time"

	"vuedoc/internal/extractor"
	"vuedoc/internal/graph"
)

// Store combines component and run storage capabilities.
type Store interface {
	ComponentStore
	RunStore
	Close() error
}

// ComponentStore defines operations for persisting documented components
// and their dependency graph.
type ComponentStore interface {
	// SaveComponent upserts a single component.
	SaveComponent(ctx context.Context, doc *extractor.ComponentDoc) error

	// SaveGraph replaces the stored components and edges with the graph.
	SaveGraph(ctx context.Context, g *graph.Graph) error

	// LoadGraph reads every stored component and edge.
	LoadGraph(ctx context.Context) (*graph.Graph, error)

	// GetComponent retrieves a component by its stable ID.
	GetComponent(ctx context.Context, id string) (*extractor.ComponentDoc, error)

	// FindByFile retrieves the component documented from a file.
	FindByFile(ctx context.Context, filepath string) (*extractor.ComponentDoc, error)
}

// RunStore records extraction runs.
type RunStore interface {
	StartRun(ctx context.Context, kind string) (*Run, error)
	FinishRun(ctx context.Context, run *Run) error
	LastRun(ctx context.Context) (*Run, error)
}

// Run is one scan or sync over a project.
type Run struct {
	ID         string
	Kind       string
	StartedAt  time.Time
	FinishedAt time.Time
	Components int
	Errors     int
	Warnings   int
}
