// Package composition describes the calls that construct or wrap documented
// values (state containers, derived values, declaration helpers) and the
// registry the engine consults to recognize them.
package composition

import (
	"fmt"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// Feature is the public-surface role a composition call gives its result.
type Feature string

const (
	Props    Feature = "props"
	Data     Feature = "data"
	Computed Feature = "computed"
	Methods  Feature = "methods"
	Events   Feature = "events"
)

// Precedence is the order buckets are searched in. A name registered in more
// than one bucket resolves to the first.
var Precedence = []Feature{Props, Data, Computed, Methods, Events}

// ParseFeature validates a feature name coming from configuration.
func ParseFeature(s string) (Feature, error) {
	for _, f := range Precedence {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown composition feature %q", s)
}

// Evaluator is the part of the engine rule hooks may call back into.
type Evaluator interface {
	File() *syntax.File
	Value(n *sitter.Node) *value.Value
	TypeOf(n *sitter.Node) value.Type
	// TSType reads a type node (annotation, type argument, alias).
	TSType(n *sitter.Node) value.Type
	ReturnType(fn *sitter.Node) value.Type
}

// Rule tells the engine how to interpret a call to Name.
type Rule struct {
	Name    string
	Feature Feature
	// ValueIndex selects the argument that carries the effective value.
	ValueIndex *int
	// TypeParameterIndex selects the type argument giving the value type.
	TypeParameterIndex *int
	// ReturningType is a fixed result type.
	ReturningType value.Type
	// IdentifierSuffixes are member names that unwrap the result, like
	// "value" for ref(): `count.value` reads the wrapped value.
	IdentifierSuffixes []string
	// ParseEntryValue produces the value when index-based selection cannot.
	ParseEntryValue func(call *sitter.Node, ev Evaluator) *value.Value
	// ParseEntryNode redirects the call to a node treated as if it were an
	// inline literal for later member access.
	ParseEntryNode func(call *sitter.Node, ev Evaluator) *sitter.Node
}

// HasSuffix reports whether member unwraps the rule's result.
func (r *Rule) HasSuffix(member string) bool {
	for _, s := range r.IdentifierSuffixes {
		if s == member {
			return true
		}
	}
	return false
}

// Binding ties a scope entry to the composition call that produced it.
type Binding struct {
	Rule *Rule
	Call *sitter.Node
}

// Feature returns the bound role, or "" for a nil binding.
func (b *Binding) Feature() Feature {
	if b == nil || b.Rule == nil {
		return ""
	}
	return b.Rule.Feature
}

// Arg returns a pointer to i, for ValueIndex and TypeParameterIndex.
func Arg(i int) *int {
	return &i
}

// Registry holds rules per feature bucket. It is built once and passed to
// the engine; plugins add to their own instance.
type Registry struct {
	mu      sync.RWMutex
	buckets map[Feature][]*Rule
}

// NewRegistry returns a registry holding rules.
func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{buckets: map[Feature][]*Rule{}}
	r.Add(rules...)
	return r
}

// Add registers rules. Within one bucket a later rule for the same name
// wins.
func (r *Registry) Add(rules ...Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range rules {
		rule := rules[i]
		r.buckets[rule.Feature] = append(r.buckets[rule.Feature], &rule)
	}
}

// Lookup finds the rule for a callee name, probing buckets in Precedence
// order.
func (r *Registry) Lookup(name string) (*Rule, bool) {
	if r == nil || name == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, feature := range Precedence {
		rules := r.buckets[feature]
		for i := len(rules) - 1; i >= 0; i-- {
			if rules[i].Name == name {
				return rules[i], true
			}
		}
	}
	return nil, false
}

// Clone returns an independent registry with the same rules.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for feature, rules := range r.buckets {
		c.buckets[feature] = append([]*Rule(nil), rules...)
	}
	return c
}

// Names lists the distinct registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	var names []string
	for _, rules := range r.buckets {
		for _, rule := range rules {
			if !seen[rule.Name] {
				seen[rule.Name] = true
				names = append(names, rule.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}
