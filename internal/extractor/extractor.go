package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vuedoc/internal/entry"
	"vuedoc/internal/script"
	"vuedoc/internal/syntax"
)

// Extractor turns component files into ComponentDocs.
type Extractor struct {
	parser   *script.Parser
	readFile func(string) ([]byte, error)
}

// NewExtractor creates an extractor running the engine with opts.
func NewExtractor(opts script.Options) *Extractor {
	return &Extractor{
		parser:   script.New(opts),
		readFile: os.ReadFile,
	}
}

// Supported reports whether path is a file the extractor documents.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue", ".js", ".jsx", ".ts", ".tsx", ".mjs":
		return !strings.HasSuffix(path, ".d.ts")
	}
	return false
}

// ExtractFromFile reads and documents a single component file.
func (e *Extractor) ExtractFromFile(ctx context.Context, path string) (*ComponentDoc, error) {
	content, err := e.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.Extract(ctx, path, content)
}

// Extract documents content as the component at path.
func (e *Extractor) Extract(ctx context.Context, path string, content []byte) (*ComponentDoc, error) {
	blocks, err := syntax.SplitSFC(ctx, path, content)
	if err != nil {
		return nil, fmt.Errorf("failed to split %s: %w", path, err)
	}

	comp := script.Component{Path: path}
	doc := &ComponentDoc{
		Filepath:    path,
		Language:    language(path),
		ContentHash: ContentHash(content),
	}
	var extra []script.Message
	for _, b := range blocks {
		s := script.Script{Path: path, Lang: b.Lang, Content: b.Content, Setup: b.Setup, LineOffset: b.LineOffset}
		if b.Src != "" {
			// <script src> points at the real code.
			src := filepath.Join(filepath.Dir(path), filepath.FromSlash(b.Src))
			ext, err := e.readFile(src)
			if err != nil {
				extra = append(extra, script.Message{Level: script.LevelError, File: path, Text: fmt.Sprintf("cannot read %s", b.Src), Err: err})
				continue
			}
			s = script.Script{Path: src, Lang: syntax.LangFromPath(src), Content: ext, Setup: b.Setup}
		}
		doc.Setup = doc.Setup || b.Setup
		comp.Scripts = append(comp.Scripts, s)
	}

	res, err := e.parser.Parse(ctx, comp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	doc.Entries = res.Entries
	doc.Messages = append(extra, res.Messages...)
	doc.Dependencies = res.Dependencies
	if n, ok := firstOf(res.Entries, entry.KindName); ok {
		doc.Name = n.Meta().Name
	}
	if d, ok := firstOf(res.Entries, entry.KindDescription); ok {
		doc.Description = d.Meta().Description
	}
	doc.ID = BuildStableComponentID(doc)
	return doc, nil
}

func firstOf(l entry.List, kind entry.Kind) (entry.Entry, bool) {
	found := l.Filter(kind)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

func language(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}
