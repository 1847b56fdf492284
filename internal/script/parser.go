// Package script is the documentation engine. It walks the syntax tree of a
// component script without running it, evaluates what each binding holds,
// recognizes composition calls through a registry, follows imports on
// demand and emits one entry per documented fact.
package script

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/entry"
	"vuedoc/internal/syntax"
)

// Parser extracts entries from components. It is safe for concurrent use:
// each Parse call owns its run.
type Parser struct {
	opts Options
}

// New returns a parser configured by opts.
func New(opts Options) *Parser {
	opts = opts.withDefaults()
	opts.Logger.Debug("composition functions", "names", opts.Registry.Names())
	return &Parser{opts: opts}
}

// run is the state of one Parse call. Everything in it is touched by a
// single goroutine.
type run struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger

	states   map[*syntax.File]*fileState
	modules  map[string]*module
	resolved map[string]resolution
	mixins   map[mixinKey]bool
	files    []*syntax.File

	deferred []func()
	messages []Message
	deps     []string
	seenDeps map[string]bool

	compositionCalls int
}

func newRun(ctx context.Context, opts Options, path string) *run {
	return &run{
		ctx:      ctx,
		opts:     opts,
		log:      opts.Logger.With("component", path),
		states:   map[*syntax.File]*fileState{},
		modules:  map[string]*module{},
		resolved: map[string]resolution{},
		mixins:   map[mixinKey]bool{},
		seenDeps: map[string]bool{},
	}
}

// later queues fn after the synchronous pass.
func (r *run) later(fn func()) {
	r.deferred = append(r.deferred, fn)
}

// drain runs deferred tasks, including the ones they queue, until none is
// left.
func (r *run) drain() {
	for len(r.deferred) > 0 {
		fn := r.deferred[0]
		r.deferred = r.deferred[1:]
		fn()
	}
}

func (r *run) report(level Level, file string, line int, text string, err error) {
	r.messages = append(r.messages, Message{Level: level, File: file, Line: line, Text: text, Err: err})
	if level == LevelError {
		r.log.Warn(text, "file", file, "line", line)
	} else {
		r.log.Debug(text, "file", file, "line", line)
	}
}

// errorAt reports an error located at node of st's file.
func (r *run) errorAt(st *fileState, node *sitter.Node, text string, err error) {
	line := 0
	if node != nil {
		line = st.file.Line(node)
	}
	r.report(LevelError, st.file.Path, line, text, err)
}

func (r *run) depend(path string) {
	if !r.seenDeps[path] {
		r.seenDeps[path] = true
		r.deps = append(r.deps, path)
	}
}

func (r *run) errors() []Message {
	var out []Message
	for _, m := range r.messages {
		if m.Level == LevelError {
			out = append(out, m)
		}
	}
	return out
}

func (r *run) close() {
	for _, f := range r.files {
		f.Close()
	}
}

// Parse documents comp. Every deferred task has settled when it returns.
// Problems with the component's files are reported as messages; the error
// is only set when ctx is done.
func (p *Parser) Parse(ctx context.Context, comp Component) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx, span := startParseSpan(ctx, comp.Path, len(comp.Scripts))
	defer span.End()
	start := time.Now()

	r := newRun(ctx, p.opts, comp.Path)
	defer r.close()
	out := newCollector()

	parsed := 0
	for _, s := range comp.Scripts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.parseScript(r, out, s) {
			parsed++
		}
	}
	r.drain()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if parsed > 0 && !out.hasKind(entry.KindName) && comp.Path != "" {
		base := filepath.Base(comp.Path)
		name := pascalCase(strings.TrimSuffix(base, filepath.Ext(base)))
		out.prepend(&entry.Name{Common: entry.Common{Kind: entry.KindName, Name: name}})
	}
	out.linkModels()

	res := &Result{
		Entries:      out.finish(p.opts),
		Messages:     r.messages,
		Dependencies: r.deps,
	}
	setParseSpanResult(span, len(res.Entries), len(res.Errors()), len(res.Warnings()))
	recordParseMetrics(ctx, r, time.Since(start), len(res.Entries))
	r.log.Debug("component parsed", "entries", len(res.Entries), "messages", len(res.Messages), "elapsed", time.Since(start))
	return res, nil
}

// parseScript binds one script block and emits its entries. A malformed
// block is reported and contributes nothing.
func (p *Parser) parseScript(r *run, out *collector, s Script) bool {
	path := s.Path
	f, err := syntax.Parse(r.ctx, path, s.Content, s.Lang)
	if err != nil {
		err = shiftError(err, s.LineOffset)
		r.report(LevelError, path, lineOf(err), err.Error(), err)
		return false
	}
	f.LineOffset = s.LineOffset
	r.files = append(r.files, f)

	st := newFileState(r, f)
	c := st.root
	c.bindProgram(f.Root)

	sh := detectShape(c, s)
	if sh == nil {
		r.log.Debug("no component declaration", "file", path)
		return true
	}
	r.log.Debug("component shape", "file", path, "shape", sh.name())
	sh.emit(c, out)
	if n := st.pending.Len(); n > 0 {
		r.log.Debug("forward declarations left unbound", "file", path, "count", n)
	}
	return true
}

// ParseFile is a convenience for a component held in a single script.
func (p *Parser) ParseFile(ctx context.Context, path string, content []byte, setup bool) (*Result, error) {
	lang := syntax.LangFromPath(path)
	return p.Parse(ctx, Component{Path: path, Scripts: []Script{{Path: path, Lang: lang, Content: content, Setup: setup}}})
}

// String describes a message for logs and terminals.
func (m Message) String() string {
	if m.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", m.File, m.Line, m.Level, m.Text)
	}
	return fmt.Sprintf("%s: %s: %s", m.File, m.Level, m.Text)
}
