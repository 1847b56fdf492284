package script

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/composition"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// maxCompositionDepth bounds composables wrapping composables.
const maxCompositionDepth = 32

// compositionName returns the name a call is looked up under in the
// registry. Names imported from a framework module map back to their
// imported name, so `import { ref as r } from 'vue'` still makes r() a ref.
func (c *Context) compositionName(call *sitter.Node) string {
	fn := syntax.Unwrap(syntax.Field(call, "function"))
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case syntax.KindIdentifier:
		name := c.text(fn)
		if imported, ok := c.st.framework[name]; ok && imported != "*" && imported != "default" {
			return imported
		}
		return name
	case syntax.KindMemberExpression:
		object := syntax.Unwrap(syntax.Field(fn, "object"))
		if object == nil || object.Type() != syntax.KindIdentifier {
			return ""
		}
		if imported, ok := c.st.framework[c.text(object)]; ok && (imported == "*" || imported == "default") {
			return c.text(syntax.Field(fn, "property"))
		}
	}
	return ""
}

// rule returns the registry rule matching call.
func (c *Context) rule(call *sitter.Node) (*composition.Rule, bool) {
	if call == nil || call.Type() != syntax.KindCallExpression {
		return nil, false
	}
	return c.st.run.opts.Registry.Lookup(c.compositionName(call))
}

// resolveComposition interprets call against the registry. ok is false when
// no rule matches and the call is an ordinary one.
func (c *Context) resolveComposition(call *sitter.Node) (*value.Value, *composition.Binding, bool) {
	r, ok := c.rule(call)
	if !ok {
		return nil, nil, false
	}
	c.st.run.compositionCalls++
	return c.compositionValue(r, call, 0), &composition.Binding{Rule: r, Call: call}, true
}

// compositionValue computes the effective value of a composition call. A
// fixed or type-argument type bypasses value inference; the value itself
// comes from the argument at ValueIndex, recursing through nested
// composition calls, or from the rule's hooks.
func (c *Context) compositionValue(r *composition.Rule, call *sitter.Node, depth int) *value.Value {
	raw := c.text(call)
	args := syntax.Arguments(call)

	var v *value.Value
	if r.ValueIndex != nil && *r.ValueIndex < len(args) {
		arg := syntax.Unwrap(args[*r.ValueIndex])
		if inner, ok := c.rule(arg); ok && depth < maxCompositionDepth {
			v = c.compositionValue(inner, arg, depth+1)
		} else {
			v = c.Value(arg)
		}
	}
	if v == nil && r.ParseEntryValue != nil {
		v = r.ParseEntryValue(call, c)
	}
	if v == nil && r.ParseEntryNode != nil {
		if n := r.ParseEntryNode(call, c); n != nil {
			v = c.Value(n)
		}
	}
	if v == nil {
		v = value.Unknown(raw)
	}

	switch {
	case len(r.ReturningType) > 0:
		v = v.WithType(r.ReturningType)
	case r.TypeParameterIndex != nil:
		if targs := syntax.TypeArguments(call); *r.TypeParameterIndex < len(targs) {
			v = v.WithType(c.TSType(targs[*r.TypeParameterIndex]))
		}
	}
	return v
}

// requireValue is the value of a CommonJS require() call: the module's
// default export.
func (c *Context) requireValue(call *sitter.Node) *value.Value {
	args := syntax.Arguments(call)
	if len(args) != 1 {
		return nil
	}
	spec, ok := c.st.file.StringValue(syntax.Unwrap(args[0]))
	if !ok {
		return nil
	}
	m := c.st.run.loadFrom(c.st, spec, call)
	if m == nil || m.state == nil {
		v := value.Unknown(c.text(call))
		v.Kind = "require"
		return v
	}
	res := m.state.export("default", 0)
	if res.Entry == nil || res.Entry.Value == nil {
		return value.Unknown(c.text(call))
	}
	return c.st.run.follow(res.Entry).Value.Clone()
}
