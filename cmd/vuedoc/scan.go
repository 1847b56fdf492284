package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vuedoc/internal/crawler"
	"vuedoc/internal/extractor"
	"vuedoc/internal/generator"
	"vuedoc/internal/index"
	"vuedoc/internal/storage"
)

var (
	scanGraphJSON string
	scanNoDocs    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the project, store every component and render the documentation",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Project.Root = args[0]
		}
		root, err := cfg.RootDir()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		fmt.Printf("Scanning directory: %s\n", root)

		// 1. Initialize Store
		path := cfg.Storage.DBPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		store, err := storage.NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()
		run, err := store.StartRun(ctx, "scan")
		if err != nil {
			return err
		}

		// 2. Setup Extractor & Indexer
		opts, err := cfg.ScriptOptions(logger)
		if err != nil {
			return err
		}
		filter, err := cfg.Filter()
		if err != nil {
			return err
		}
		cr := crawler.NewCrawler(extractor.NewExtractor(opts), filter,
			crawler.WithJobs(cfg.Extract.Jobs), crawler.WithLogger(logger))
		idx := index.NewIndexer(cr)

		// 3. Build Graph
		start := time.Now()
		g, err := idx.BuildGraph(ctx, root)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		docs := generator.Docs(g)
		for _, doc := range docs {
			printMessages(os.Stderr, root, doc)
		}
		fmt.Printf("Graph built in %v. ", time.Since(start).Round(time.Millisecond))
		summarize(os.Stdout, docs)

		// 4. Save to DB
		if err := store.SaveGraph(ctx, g); err != nil {
			return fmt.Errorf("failed to save graph: %w", err)
		}
		stats := g.Stats()
		run.Components, run.Errors, run.Warnings = stats.Components, stats.Errors, stats.Warnings
		if err := store.FinishRun(ctx, run); err != nil {
			logger.Warn("failed to record run", "run", run.ID, "error", err)
		}

		if scanGraphJSON != "" {
			if err := idx.SaveGraph(g, scanGraphJSON); err != nil {
				return err
			}
		}

		// 5. Render
		if !scanNoDocs {
			format, _ := generator.ParseFormat(cfg.Output.Format)
			outDir := cfg.Output.Dir
			if !filepath.IsAbs(outDir) {
				outDir = filepath.Join(root, outDir)
			}
			if err := generator.NewMarkdownGenerator(root).GenerateDocs(ctx, g, outDir, format); err != nil {
				return fmt.Errorf("failed to generate docs: %w", err)
			}
			fmt.Printf("Documentation written to %s\n", outDir)
		}

		okColor.Printf("Scan complete. Database: %s\n", path)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanGraphJSON, "graph-json", "", "Also write the component graph to this JSON file")
	scanCmd.Flags().BoolVar(&scanNoDocs, "no-docs", false, "Only store the components, do not render documentation")
}
