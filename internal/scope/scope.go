// Package scope tracks what each name is bound to while a script is walked.
//
// A Scope is a plain name to Entry map. Nested contexts copy their parent's
// map, so bindings made inside a function never leak out unless promoted.
// Entries are replaced, never modified, once stored: an inherited entry can
// be shared by several scopes.
package scope

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/composition"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// Nodes are the AST positions attached to a binding: the node carrying its
// type annotation, the defining node and the node carrying its comment.
type Nodes struct {
	Type    *sitter.Node
	Value   *sitter.Node
	Comment *sitter.Node
}

// Entry is a tracked binding.
type Entry struct {
	Key   string
	Value *value.Value
	// Source is the original key when the binding was renamed, as in
	// `const { a: b } = obj`.
	Source      string
	TSValue     *value.TSValue
	Function    bool
	Computed    bool
	Composition *composition.Binding
	Namespace   *Namespace
	Import      *Import
	Nodes       Nodes
	// File owns Nodes. Bindings from imported modules point into other
	// files.
	File *syntax.File
}

// Type returns the best known type: the annotated one when present.
func (e *Entry) Type() value.Type {
	if e == nil {
		return value.T(value.TypeUnknown)
	}
	if e.TSValue != nil && !e.TSValue.Type.IsUnknown() {
		return e.TSValue.Type
	}
	if e.Value == nil {
		return value.T(value.TypeUnknown)
	}
	return e.Value.Type
}

func (e *Entry) clone() *Entry {
	c := *e
	c.Value = e.Value.Clone()
	return &c
}

// BindOptions tune Scope.Bind.
type BindOptions struct {
	// ForceType replaces the type instead of widening it.
	ForceType   bool
	Source      string
	TSValue     *value.TSValue
	Composition *composition.Binding
	Namespace   *Namespace
	Import      *Import
	Function    bool
	Computed    bool
	File        *syntax.File
}

// Scope maps names to entries.
type Scope map[string]*Entry

// New returns an empty scope.
func New() Scope {
	return Scope{}
}

// Copy returns a child scope. The child sees every parent binding; its own
// writes stay local.
func (s Scope) Copy() Scope {
	c := make(Scope, len(s))
	for k, e := range s {
		c[k] = e
	}
	return c
}

// Get returns the entry bound to key.
func (s Scope) Get(key string) (*Entry, bool) {
	e, ok := s[key]
	return e, ok
}

// Bind sets key to v. When key is already bound the type is widened (see
// Widen) unless opts.ForceType, and a composition binding, annotation or
// comment the new binding lacks is carried over.
func (s Scope) Bind(key string, v *value.Value, nodes Nodes, opts BindOptions) *Entry {
	if v == nil {
		v = value.Unknown("")
	}
	next := &Entry{
		Key:         key,
		Value:       v.Clone(),
		Source:      opts.Source,
		TSValue:     opts.TSValue,
		Function:    opts.Function || v.Function,
		Computed:    opts.Computed,
		Composition: opts.Composition,
		Namespace:   opts.Namespace,
		Import:      opts.Import,
		Nodes:       nodes,
		File:        opts.File,
	}
	if prev, ok := s[key]; ok && prev != nil {
		if !opts.ForceType && prev.Value != nil {
			next.Value.Type = Widen(prev.Value.Type, v.Type)
		}
		if next.Composition == nil {
			next.Composition = prev.Composition
		}
		if next.TSValue == nil {
			next.TSValue = prev.TSValue
		}
		if next.Nodes.Comment == nil {
			next.Nodes.Comment = prev.Nodes.Comment
		}
		if next.Nodes.Type == nil {
			next.Nodes.Type = prev.Nodes.Type
		}
		if next.File == nil {
			next.File = prev.File
		}
		if next.Source == "" {
			next.Source = prev.Source
		}
	}
	s[key] = next
	return next
}

// Put stores e as is, replacing any previous binding.
func (s Scope) Put(e *Entry) {
	s[e.Key] = e
}

// Patch replaces the entry of key with a copy changed by fn. Inherited
// entries are left untouched.
func (s Scope) Patch(key string, fn func(*Entry)) bool {
	e, ok := s[key]
	if !ok || e == nil {
		return false
	}
	c := e.clone()
	fn(c)
	s[key] = c
	return true
}

// Promote copies the binding of key into parent (a "global" merge).
func (s Scope) Promote(parent Scope, key string) {
	if e, ok := s[key]; ok {
		parent[key] = e
	}
}

// Widen merges the type of a re-bound name. Conflicting concrete types
// degrade to unknown; an unknown side keeps the other side's type.
func Widen(prev, next value.Type) value.Type {
	switch {
	case prev.IsUnknown():
		return next.Clone()
	case next.IsUnknown():
		return prev.Clone()
	case prev.Equal(next):
		return next.Clone()
	}
	return value.T(value.TypeUnknown)
}
