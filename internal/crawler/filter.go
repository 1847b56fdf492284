package crawler

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"

	"vuedoc/internal/extractor"
)

// DefaultInclude selects single-file components.
var DefaultInclude = []string{"*.vue"}

// DefaultExcludeDirs are never walked.
var DefaultExcludeDirs = []string{".git", "node_modules", "dist", "vendor", "testdata", ".*"}

// Filter decides which directories are walked and which files are
// documented. Patterns match base names.
type Filter struct {
	include      []glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

// NewFilter compiles the patterns. An empty include list means
// DefaultInclude.
func NewFilter(include, excludeDirs, excludeFiles []string) (*Filter, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	f := &Filter{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		f.excludeDirs = append(f.excludeDirs, g)
	}
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		f.excludeFiles = append(f.excludeFiles, g)
	}
	return f, nil
}

// SkipDir reports whether the directory at path is excluded.
func (f *Filter) SkipDir(path string) bool {
	base := filepath.Base(path)
	if base == "." || base == ".." {
		return false
	}
	for _, g := range f.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Match reports whether the file at path is a component to document.
func (f *Filter) Match(path string) bool {
	if !extractor.Supported(path) {
		return false
	}
	base := filepath.Base(path)
	for _, g := range f.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	for _, g := range f.include {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// Watched reports whether a change to path can affect documentation: any
// supported script that is not excluded, even when it is not a component.
func (f *Filter) Watched(path string) bool {
	if !extractor.Supported(path) {
		return false
	}
	base := filepath.Base(path)
	for _, g := range f.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	return true
}
