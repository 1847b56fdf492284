package script

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/doctag"
	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// fileState is everything known about one parsed file during a run. Memo
// tables are keyed by node identity instead of annotating the tree.
type fileState struct {
	run  *run
	file *syntax.File

	// types is the type table: aliases, interfaces and enums by name.
	types map[string]*sitter.Node
	// imports holds every import binding by local name, types included.
	imports map[string]*scope.Import
	// framework maps local names imported from framework modules to the
	// imported name ("*" for namespace imports).
	framework map[string]string

	tsMemo  map[syntax.NodeKey]*value.TSValue
	returns map[syntax.NodeKey]value.Type
	busy    map[syntax.NodeKey]bool
	pending *scope.Pending
	docs    map[syntax.NodeKey]doctag.Comment

	root *Context

	// Exports of the file when it is loaded as a module.
	exports      scope.Scope
	def          *scope.Entry
	defNode      *sitter.Node
	stars        []string
	localExports []exportAlias
}

type exportAlias struct {
	local    string
	exported string
	node     *sitter.Node
}

func newFileState(r *run, f *syntax.File) *fileState {
	st := &fileState{
		run:       r,
		file:      f,
		types:     map[string]*sitter.Node{},
		imports:   map[string]*scope.Import{},
		framework: map[string]string{},
		tsMemo:    map[syntax.NodeKey]*value.TSValue{},
		returns:   map[syntax.NodeKey]value.Type{},
		busy:      map[syntax.NodeKey]bool{},
		pending:   scope.NewPending(),
		docs:      map[syntax.NodeKey]doctag.Comment{},
		exports:   scope.New(),
	}
	st.root = &Context{st: st, scope: scope.New()}
	r.states[f] = st
	return st
}

// Context is one parsing context: a file plus the scope visible at the
// current point. Nested contexts copy the scope of their parent.
type Context struct {
	st     *fileState
	scope  scope.Scope
	parent *Context
}

func (c *Context) child() *Context {
	return &Context{st: c.st, scope: c.scope.Copy(), parent: c}
}

// promote merges a binding of c into its parent.
func (c *Context) promote(key string) {
	if c.parent != nil {
		c.scope.Promote(c.parent.scope, key)
	}
}

// File implements composition.Evaluator.
func (c *Context) File() *syntax.File {
	return c.st.file
}

func (c *Context) text(n *sitter.Node) string {
	return c.st.file.Text(n)
}

// lookup returns the binding of name, loading it first when it comes from a
// lazy import.
func (c *Context) lookup(name string) (*scope.Entry, bool) {
	e, ok := c.scope.Get(name)
	if !ok || e == nil {
		return nil, false
	}
	return c.st.run.follow(e), true
}

// contextFor returns a context evaluating nodes of the file owning e.
func (c *Context) contextFor(e *scope.Entry) *Context {
	if e == nil || e.File == nil || e.File == c.st.file {
		return c
	}
	if st, ok := c.st.run.states[e.File]; ok {
		return st.root
	}
	return c
}

// bind stores a binding owned by this context's file.
func (c *Context) bind(key string, v *value.Value, nodes scope.Nodes, opts scope.BindOptions) *scope.Entry {
	if opts.File == nil {
		opts.File = c.st.file
	}
	if ts, ok := c.st.pending.TakeType(key); ok && opts.TSValue == nil {
		opts.TSValue = ts
	}
	return c.scope.Bind(key, v, nodes, opts)
}

func (c *Context) isFramework(name string) bool {
	_, ok := c.st.framework[name]
	return ok
}
