package crawler

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"vuedoc/internal/extractor"
)

// Crawler scans a directory for component files and documents them.
type Crawler struct {
	extractor *extractor.Extractor
	filter    *Filter
	jobs      int
	log       *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithJobs bounds the number of files extracted at once.
func WithJobs(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.jobs = n
		}
	}
}

// WithLogger sets the logger used for per-file failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCrawler creates a new crawler instance.
func NewCrawler(ext *extractor.Extractor, filter *Filter, opts ...Option) *Crawler {
	c := &Crawler{
		extractor: ext,
		filter:    filter,
		jobs:      runtime.GOMAXPROCS(0),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Filter returns the file filter of the crawler.
func (c *Crawler) Filter() *Filter {
	return c.filter
}

// Files lists the component files under root in lexical order.
func (c *Crawler) Files(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && c.filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if c.filter.Match(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ScanProject walks root and documents every component file.
// Docs are streamed through onDoc in file order once every file is done.
// A file that cannot be read is logged and skipped.
func (c *Crawler) ScanProject(ctx context.Context, root string, onDoc func(*extractor.ComponentDoc)) error {
	files, err := c.Files(root)
	if err != nil {
		return err
	}
	docs, err := c.ExtractFiles(ctx, files)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		onDoc(doc)
	}
	return nil
}

// ExtractFiles documents files in parallel. The result keeps the order of
// files and omits those that failed.
func (c *Crawler) ExtractFiles(ctx context.Context, files []string) ([]*extractor.ComponentDoc, error) {
	results := make([]*extractor.ComponentDoc, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			doc, err := c.extractor.ExtractFromFile(gctx, path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.log.Warn("failed to extract file", "path", path, "error", err)
				return nil
			}
			results[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]*extractor.ComponentDoc, 0, len(results))
	for _, doc := range results {
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Filepath < docs[j].Filepath })
	return docs, nil
}
