package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vuedoc/internal/analysis"
	"vuedoc/internal/config"
	"vuedoc/internal/crawler"
	"vuedoc/internal/extractor"
	"vuedoc/internal/generator"
	"vuedoc/internal/git"
	"vuedoc/internal/graph"
	"vuedoc/internal/index"
	"vuedoc/internal/storage"
)

// IncrementalSync keeps the stored component graph and the rendered
// documentation current with the working tree.
type IncrementalSync struct {
	cfg     *config.Config
	root    string
	indexer *index.Indexer
	filter  *crawler.Filter
	log     *slog.Logger
	out     io.Writer
}

type updatePlan struct {
	Changes    []git.ChangedFile
	FullResync bool
}

type graphUpdateResult struct {
	Graph      *graph.Graph
	Affected   []string // component paths to re-render
	RemovedIDs []string // component IDs whose sections go away
}

// Result summarizes one sync.
type Result struct {
	RunID      string
	FullResync bool
	Components int
	Affected   int
	Removed    int
	Update     generator.UpdateResult
}

func NewIncrementalSync(cfg *config.Config, logger *slog.Logger, out io.Writer) (*IncrementalSync, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	root, err := cfg.RootDir()
	if err != nil {
		return nil, err
	}
	filter, err := cfg.Filter()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.ScriptOptions(logger)
	if err != nil {
		return nil, err
	}
	ext := extractor.NewExtractor(opts)
	cr := crawler.NewCrawler(ext, filter, crawler.WithJobs(cfg.Extract.Jobs), crawler.WithLogger(logger))
	return &IncrementalSync{
		cfg:     cfg,
		root:    root,
		indexer: index.NewIndexer(cr),
		filter:  filter,
		log:     logger,
		out:     out,
	}, nil
}

// Root returns the absolute project root.
func (s *IncrementalSync) Root() string {
	return s.root
}

// Filter returns the component file filter.
func (s *IncrementalSync) Filter() *crawler.Filter {
	return s.filter
}

// DocPath returns the Markdown document the sync maintains.
func (s *IncrementalSync) DocPath() string {
	return filepath.Join(s.outputDir(), generator.DocFileName)
}

// Run syncs the changes git reports against baseRef. With force, a full
// rebuild runs even when nothing changed.
func (s *IncrementalSync) Run(ctx context.Context, baseRef string, force bool) (*Result, error) {
	plan, err := s.detectChangesStage(ctx, baseRef, force)
	if err != nil {
		return nil, err
	}
	if len(plan.Changes) == 0 && !plan.FullResync {
		fmt.Fprintln(s.out, "No changes detected.")
		return &Result{}, nil
	}
	return s.Sync(ctx, plan.Changes, plan.FullResync)
}

// SyncFiles re-documents the given absolute paths, as reported by a file
// watcher. Missing files count as deleted.
func (s *IncrementalSync) SyncFiles(ctx context.Context, paths []string) (*Result, error) {
	changes := make([]git.ChangedFile, 0, len(paths))
	for _, p := range paths {
		_, err := os.Stat(p)
		changes = append(changes, git.ChangedFile{Path: p, Deleted: errors.Is(err, os.ErrNotExist)})
	}
	return s.Sync(ctx, changes, false)
}

// Sync applies changes to the stored graph and the documentation. Paths
// are absolute or relative to the project root.
func (s *IncrementalSync) Sync(ctx context.Context, changes []git.ChangedFile, full bool) (*Result, error) {
	report := generator.NewPipelineReport("incremental_sync", s.outputDir())
	defer func() {
		if err := report.Save(filepath.Join(s.outputDir(), generator.ReportFileName)); err != nil {
			s.log.Warn("failed to write pipeline report", "error", err)
		}
	}()

	stage := report.BeginStage("init_store")
	store, err := s.initStoreStage()
	if err != nil {
		stage.End(nil, err)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()
	stage.End(nil, nil)

	kind := "sync"
	if full {
		kind = "full"
	}
	run, err := store.StartRun(ctx, kind)
	if err != nil {
		return nil, err
	}

	stage = report.BeginStage("graph_update")
	graphResult, full, err := s.graphUpdateStage(ctx, store, changes, full)
	if err != nil {
		stage.End(nil, err)
		return nil, err
	}
	stage.End(map[string]float64{
		"components": float64(len(graphResult.Graph.Nodes)),
		"edges":      float64(len(graphResult.Graph.Edges)),
		"affected":   float64(len(graphResult.Affected)),
		"removed":    float64(len(graphResult.RemovedIDs)),
	}, nil)
	for _, p := range graphResult.Affected {
		if node, ok := graphResult.Graph.Nodes[p]; ok {
			report.AddComponent(node.Doc, "updated")
		}
	}

	stage = report.BeginStage("save_graph")
	if err := store.SaveGraph(ctx, graphResult.Graph); err != nil {
		stage.End(nil, err)
		return nil, fmt.Errorf("failed to save updated graph: %w", err)
	}
	stage.End(nil, nil)

	stage = report.BeginStage("documentation")
	update, err := s.documentationStage(ctx, graphResult, full)
	if err != nil {
		stage.End(nil, err)
		return nil, err
	}
	stage.End(map[string]float64{
		"updated": float64(update.Updated),
		"added":   float64(update.Added),
		"removed": float64(update.Removed),
	}, nil)

	stats := graphResult.Graph.Stats()
	run.Components = stats.Components
	run.Errors = stats.Errors
	run.Warnings = stats.Warnings
	if err := store.FinishRun(ctx, run); err != nil {
		s.log.Warn("failed to record run", "run", run.ID, "error", err)
	}

	return &Result{
		RunID:      run.ID,
		FullResync: full,
		Components: stats.Components,
		Affected:   len(graphResult.Affected),
		Removed:    len(graphResult.RemovedIDs),
		Update:     update,
	}, nil
}

func (s *IncrementalSync) detectChangesStage(ctx context.Context, baseRef string, force bool) (*updatePlan, error) {
	top, err := git.TopLevel(ctx, s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to locate repository: %w", err)
	}
	changes, err := git.GetChangedFiles(ctx, s.root, baseRef)
	if err != nil {
		return nil, fmt.Errorf("failed to get git changes: %w", err)
	}
	// git reports paths from the repository top level.
	for i := range changes {
		changes[i].Path = filepath.Join(top, filepath.FromSlash(changes[i].Path))
	}

	fullResync := force && len(changes) == 0
	if fullResync {
		fmt.Fprintln(s.out, "No git changes detected. Running full sync from the current tree (--force).")
	} else if len(changes) > 0 {
		fmt.Fprintf(s.out, "Detected %d changed files.\n", len(changes))
	}

	return &updatePlan{
		Changes:    changes,
		FullResync: fullResync,
	}, nil
}

func (s *IncrementalSync) initStoreStage() (*storage.SQLiteStore, error) {
	path := s.inRoot(s.cfg.Storage.DBPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return storage.NewSQLiteStore(path)
}

// graphUpdateStage returns the updated graph. An empty store forces a full
// rebuild, reported through the second result.
func (s *IncrementalSync) graphUpdateStage(ctx context.Context, store storage.ComponentStore, changes []git.ChangedFile, full bool) (*graphUpdateResult, bool, error) {
	var g *graph.Graph
	if !full {
		fmt.Fprintln(s.out, "Loading stored component graph...")
		loaded, err := store.LoadGraph(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load graph: %w", err)
		}
		if len(loaded.Nodes) == 0 {
			full = true
		} else {
			g = loaded
		}
	}

	if full {
		start := time.Now()
		g, err := s.indexer.BuildGraph(ctx, s.root)
		if err != nil {
			return nil, full, fmt.Errorf("full sync graph build failed: %w", err)
		}
		fmt.Fprintf(s.out, "Graph update: full rebuild completed in %v. Components=%d Edges=%d\n", time.Since(start).Round(time.Millisecond), len(g.Nodes), len(g.Edges))
		return &graphUpdateResult{Graph: g, Affected: g.Paths()}, full, nil
	}

	analyzer := analysis.NewAnalyzer(g, s.root)
	impact, err := analyzer.AnalyzeImpact(changes)
	if err != nil {
		return nil, full, fmt.Errorf("impact analysis failed: %w", err)
	}
	fmt.Fprintf(s.out, "  -> %d components directly affected\n", len(impact.DirectlyAffected))
	fmt.Fprintf(s.out, "  -> %d components indirectly affected (importers)\n", len(impact.IndirectlyAffected))

	var removedIDs []string
	for _, p := range impact.Removed {
		removedIDs = append(removedIDs, g.Nodes[p].Doc.ID)
	}

	// Affected components plus new component files.
	refresh := append(impact.Paths(), impact.Removed...)
	for _, c := range changes {
		p := c.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.root, p)
		}
		if _, known := g.Nodes[p]; !known && !c.Deleted && s.filter.Match(p) {
			refresh = append(refresh, p)
		}
	}

	// A component may be renamed, giving it a new ID.
	before := make(map[string]string, len(refresh))
	for _, p := range refresh {
		if n, ok := g.Nodes[p]; ok {
			before[p] = n.Doc.ID
		}
	}
	if err := s.indexer.Refresh(ctx, g, refresh); err != nil {
		return nil, full, err
	}

	var affected []string
	for _, p := range refresh {
		n, ok := g.Nodes[p]
		if !ok {
			continue
		}
		affected = append(affected, p)
		if old, had := before[p]; had && old != n.Doc.ID {
			removedIDs = append(removedIDs, old)
		}
	}
	fmt.Fprintf(s.out, "Graph update: %d components refreshed, %d removed.\n", len(affected), len(impact.Removed))

	return &graphUpdateResult{Graph: g, Affected: affected, RemovedIDs: removedIDs}, full, nil
}

func (s *IncrementalSync) documentationStage(ctx context.Context, res *graphUpdateResult, full bool) (generator.UpdateResult, error) {
	gen := generator.NewMarkdownGenerator(s.root)
	format, _ := generator.ParseFormat(s.cfg.Output.Format)

	if format == generator.FormatJSON || full {
		fmt.Fprintln(s.out, "Generating documentation from scratch...")
		if err := gen.GenerateDocs(ctx, res.Graph, s.outputDir(), format); err != nil {
			return generator.UpdateResult{}, fmt.Errorf("failed to generate docs: %w", err)
		}
		return generator.UpdateResult{Created: true, Added: len(res.Graph.Nodes)}, nil
	}

	fmt.Fprintln(s.out, "Updating documentation sections...")
	update, err := generator.NewDocUpdater(gen).UpdateDocs(ctx, s.DocPath(), res.Graph, res.Affected, res.RemovedIDs)
	if err != nil {
		return update, fmt.Errorf("failed to update docs: %w", err)
	}
	return update, nil
}

func (s *IncrementalSync) outputDir() string {
	return s.inRoot(s.cfg.Output.Dir)
}

// inRoot resolves configured paths against the project root.
func (s *IncrementalSync) inRoot(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}
