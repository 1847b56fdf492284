// Package resolver locates the modules imported by component scripts.
//
// A Chain runs resolution stages in order (relative paths, path aliases,
// node_modules) and returns the first candidate file that exists.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned when no stage produced an existing file.
	ErrNotFound = errors.New("module not found")
	// ErrNoResolver is reported when imports are met but resolution is off.
	ErrNoResolver = errors.New("no module resolver configured")
)

// Module is a located module.
type Module struct {
	Path    string
	Content []byte
}

// Resolver maps an import specifier, seen in file from, to module content.
type Resolver interface {
	Resolve(ctx context.Context, specifier, from string) (Module, error)
}

// Stage proposes candidate base paths for a specifier. Extensions and index
// files are tried by the chain.
type Stage interface {
	Name() string
	Candidates(specifier, fromDir string) []string
}

// DefaultExtensions are tried, in order, on extension-less candidates.
var DefaultExtensions = []string{".ts", ".js", ".vue", ".mjs", ".tsx", ".jsx", ".d.ts"}

// ResolveStats counts lookups per stage.
type ResolveStats struct {
	Attempted int
	Resolved  int
}

// StageResult reports the stats of one stage.
type StageResult struct {
	Resolver string
	Stats    ResolveStats
}

// Chain tries stages in order.
type Chain struct {
	stages     []Stage
	Extensions []string
	ReadFile   func(name string) ([]byte, error)

	mu    sync.Mutex
	stats map[string]*ResolveStats
}

// NewResolverChain builds a chain reading from the local disk.
func NewResolverChain(stages ...Stage) *Chain {
	return &Chain{
		stages:     stages,
		Extensions: DefaultExtensions,
		ReadFile:   os.ReadFile,
		stats:      map[string]*ResolveStats{},
	}
}

// NewDefaultChain resolves relative paths, then aliases rooted at root, then
// node_modules packages.
func NewDefaultChain(root string, aliases map[string]string) *Chain {
	return NewResolverChain(
		RelativeStage{},
		AliasStage{Root: root, Aliases: aliases},
		NodeModulesStage{Root: root, ReadFile: os.ReadFile},
	)
}

// Resolve returns the first existing candidate.
func (c *Chain) Resolve(ctx context.Context, specifier, from string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return Module{}, err
	}
	fromDir := filepath.Dir(from)
	for _, stage := range c.stages {
		bases := stage.Candidates(specifier, fromDir)
		if len(bases) == 0 {
			continue
		}
		c.count(stage.Name(), false)
		for _, base := range bases {
			for _, candidate := range c.expand(base) {
				content, err := c.ReadFile(candidate)
				if err != nil {
					continue
				}
				c.count(stage.Name(), true)
				return Module{Path: filepath.Clean(candidate), Content: content}, nil
			}
		}
	}
	return Module{}, fmt.Errorf("%q from %s: %w", specifier, from, ErrNotFound)
}

func (c *Chain) expand(base string) []string {
	var out []string
	if ext := filepath.Ext(base); ext != "" {
		out = append(out, base)
	}
	for _, ext := range c.Extensions {
		out = append(out, base+ext)
	}
	for _, ext := range c.Extensions {
		out = append(out, filepath.Join(base, "index"+ext))
	}
	return out
}

func (c *Chain) count(stage string, resolved bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[stage]
	if !ok {
		s = &ResolveStats{}
		c.stats[stage] = s
	}
	if resolved {
		s.Resolved++
	} else {
		s.Attempted++
	}
}

// Stats reports per-stage counters in stage order.
func (c *Chain) Stats() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StageResult, 0, len(c.stages))
	for _, stage := range c.stages {
		var stats ResolveStats
		if s, ok := c.stats[stage.Name()]; ok {
			stats = *s
		}
		out = append(out, StageResult{Resolver: stage.Name(), Stats: stats})
	}
	return out
}

// RelativeStage handles "./x", "../x" and absolute paths.
type RelativeStage struct{}

func (RelativeStage) Name() string { return "relative" }

func (RelativeStage) Candidates(specifier, fromDir string) []string {
	switch {
	case filepath.IsAbs(specifier):
		return []string{specifier}
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"), specifier == ".", specifier == "..":
		return []string{filepath.Join(fromDir, specifier)}
	}
	return nil
}

// AliasStage maps prefixes such as "@/" to directories under Root.
type AliasStage struct {
	Root    string
	Aliases map[string]string
}

func (AliasStage) Name() string { return "alias" }

func (s AliasStage) Candidates(specifier, _ string) []string {
	var out []string
	best := ""
	for prefix := range s.Aliases {
		if strings.HasPrefix(specifier, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		target := s.Aliases[best]
		rest := strings.TrimPrefix(specifier, best)
		if !filepath.IsAbs(target) {
			target = filepath.Join(s.Root, target)
		}
		out = append(out, filepath.Join(target, rest))
	}
	return out
}

// NodeModulesStage looks packages up in node_modules directories from the
// importing file up to Root.
type NodeModulesStage struct {
	Root     string
	ReadFile func(name string) ([]byte, error)
}

func (NodeModulesStage) Name() string { return "node_modules" }

func (s NodeModulesStage) Candidates(specifier, fromDir string) []string {
	if specifier == "" || strings.HasPrefix(specifier, ".") || filepath.IsAbs(specifier) {
		return nil
	}
	var out []string
	root := filepath.Clean(s.Root)
	dir := filepath.Clean(fromDir)
	for {
		pkgDir := filepath.Join(dir, "node_modules", filepath.FromSlash(specifier))
		if entry := s.packageEntry(pkgDir); entry != "" {
			out = append(out, entry)
		}
		out = append(out, pkgDir)
		if dir == root || dir == filepath.Dir(dir) || s.Root == "" {
			break
		}
		dir = filepath.Dir(dir)
	}
	return out
}

func (s NodeModulesStage) packageEntry(pkgDir string) string {
	if s.ReadFile == nil {
		return ""
	}
	data, err := s.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return ""
	}
	var pkg struct {
		Module string `json:"module"`
		Main   string `json:"main"`
		Types  string `json:"types"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	for _, entry := range []string{pkg.Module, pkg.Main, pkg.Types} {
		if entry != "" {
			return filepath.Join(pkgDir, filepath.FromSlash(entry))
		}
	}
	return ""
}

// NewMemoryChain resolves against an in-memory file set keyed by slash
// paths. It is meant for tests and editors holding unsaved buffers.
func NewMemoryChain(files map[string]string, stages ...Stage) *Chain {
	if len(stages) == 0 {
		stages = []Stage{RelativeStage{}}
	}
	c := NewResolverChain(stages...)
	c.ReadFile = func(name string) ([]byte, error) {
		content, ok := files[path.Clean(filepath.ToSlash(name))]
		if !ok {
			return nil, fs.ErrNotExist
		}
		return []byte(content), nil
	}
	return c
}
