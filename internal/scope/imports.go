package scope

import (
	"sync"

	"github.com/google/uuid"

	"vuedoc/internal/value"
)

// Namespace is a module imported with `import * as ns`. Member access reads
// its scope rather than merging it into the importer.
type Namespace struct {
	ID    string
	Path  string
	Scope Scope
}

// NewNamespace tags a module scope with a unique namespace ID.
func NewNamespace(path string, s Scope) *Namespace {
	return &Namespace{ID: uuid.NewString(), Path: path, Scope: s}
}

// Lookup returns the exported binding name.
func (ns *Namespace) Lookup(name string) (*Entry, bool) {
	if ns == nil {
		return nil, false
	}
	return ns.Scope.Get(name)
}

// Resolved is what loading an import produced: a binding, a namespace, or
// neither when the module has no such export.
type Resolved struct {
	Entry     *Entry
	Namespace *Namespace
}

// Loader locates, parses and binds the imported module.
type Loader func() (Resolved, error)

// Import is a lazily loaded binding. Imported is "default" for default
// imports and "*" for namespace imports.
type Import struct {
	Local    string
	Imported string
	Source   string

	once     sync.Once
	loader   Loader
	resolved Resolved
	err      error
}

// NewImport declares an import whose module is loaded on first Load.
func NewImport(local, imported, source string, loader Loader) *Import {
	return &Import{Local: local, Imported: imported, Source: source, loader: loader}
}

// Load runs the loader once; later calls return the memoized result.
func (i *Import) Load() (Resolved, error) {
	i.once.Do(func() {
		if i.loader != nil {
			i.resolved, i.err = i.loader()
		}
	})
	return i.resolved, i.err
}

// Pending parks type-only declarations (overload signatures, `declare`
// statements) met before the value they describe, until the value shows up.
type Pending struct {
	types map[string]*value.TSValue
}

// NewPending returns an empty table.
func NewPending() *Pending {
	return &Pending{types: map[string]*value.TSValue{}}
}

// ParkType records a declaration for name.
func (p *Pending) ParkType(name string, ts *value.TSValue) {
	p.types[name] = ts
}

// TakeType removes and returns the declaration parked for name.
func (p *Pending) TakeType(name string) (*value.TSValue, bool) {
	ts, ok := p.types[name]
	if ok {
		delete(p.types, name)
	}
	return ts, ok
}

// Len is the number of parked declarations.
func (p *Pending) Len() int {
	return len(p.types)
}
