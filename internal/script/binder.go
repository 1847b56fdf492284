package script

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/composition"
	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// SetScopeValue binds key to v with the widening rule of scope.Scope.Bind.
// node is the defining node; its statement carries the comment.
func (c *Context) SetScopeValue(key string, node *sitter.Node, v *value.Value, opts scope.BindOptions) *scope.Entry {
	return c.bind(key, v, scope.Nodes{Type: node, Value: node, Comment: syntax.Statement(node)}, opts)
}

// bindDeclaration binds every declarator of a lexical or variable
// declaration.
func (c *Context) bindDeclaration(decl *sitter.Node) {
	for _, d := range syntax.NamedChildren(decl) {
		if d.Type() == syntax.KindVariableDeclarator {
			c.bindDeclarator(d)
		}
	}
}

func (c *Context) bindDeclarator(d *sitter.Node) {
	name := syntax.Field(d, "name")
	init := syntax.Field(d, "value")
	typeNode := syntax.Field(d, "type")
	if name == nil {
		return
	}

	var ts *value.TSValue
	if typeNode != nil {
		ts = c.tsValue(typeNode)
	}

	var v *value.Value
	var binding *composition.Binding
	switch {
	case init == nil:
		v = value.UndefinedValue()
		if ts != nil {
			v = v.WithType(ts.Type)
		}
	default:
		if call := syntax.Unwrap(init); call.Type() == syntax.KindCallExpression {
			if cv, b, ok := c.resolveComposition(call); ok {
				v, binding = cv, b
			}
		}
		if v == nil {
			v = c.Value(init)
		}
	}

	comment := syntax.Statement(d)
	if name.Type() == syntax.KindIdentifier {
		opts := scope.BindOptions{TSValue: ts, Composition: binding, Function: isFunctionNode(init)}
		if binding != nil && binding.Feature() == composition.Computed {
			opts.Computed = true
		}
		nodes := scope.Nodes{Type: d, Value: d, Comment: comment}
		if typeNode != nil {
			nodes.Type = typeNode
		}
		c.bind(c.text(name), v, nodes, opts)
		return
	}
	c.bindPattern(name, v, comment, binding)
}

func isFunctionNode(n *sitter.Node) bool {
	n = syntax.Unwrap(n)
	return n != nil && syntax.IsFunction(n.Type())
}

// bindFunction binds a function declaration. An overload signature parked
// earlier becomes its annotation.
func (c *Context) bindFunction(fn *sitter.Node) *scope.Entry {
	name := syntax.Field(fn, "name")
	if name == nil {
		return nil
	}
	v := value.Func(c.text(fn))
	v.Kind = "function"
	return c.bind(c.text(name), v, scope.Nodes{Type: fn, Value: fn, Comment: syntax.Statement(fn)},
		scope.BindOptions{Function: true, ForceType: true})
}

func (c *Context) bindClass(class *sitter.Node) {
	name := syntax.Field(class, "name")
	if name == nil {
		return
	}
	v := value.New(value.T(c.text(name)), c.text(class), c.text(class))
	v.Kind = "class"
	c.bind(c.text(name), v, scope.Nodes{Value: class, Comment: syntax.Statement(class)}, scope.BindOptions{ForceType: true})
}

// bindSignature parks a type-only declaration: an overload signature or a
// `declare` statement. When the value was bound first its entry is patched
// in place.
func (c *Context) bindSignature(n *sitter.Node) {
	switch n.Type() {
	case syntax.KindFunctionSignature:
		name := syntax.Field(n, "name")
		if name == nil {
			return
		}
		c.park(c.text(name), &value.TSValue{Type: value.T(value.TypeFunction), Node: n, Kind: n.Type()})
	case syntax.KindAmbientDeclaration:
		for _, inner := range syntax.NamedChildren(n) {
			switch inner.Type() {
			case syntax.KindFunctionSignature:
				c.bindSignature(inner)
			case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
				for _, d := range syntax.NamedChildren(inner) {
					name := syntax.Field(d, "name")
					typeNode := syntax.Field(d, "type")
					if name == nil || name.Type() != syntax.KindIdentifier || typeNode == nil {
						continue
					}
					c.park(c.text(name), c.tsValue(typeNode))
				}
			}
		}
	}
}

func (c *Context) park(name string, ts *value.TSValue) {
	if c.scope.Patch(name, func(e *scope.Entry) { e.TSValue = ts }) {
		return
	}
	c.st.pending.ParkType(name, ts)
}

// bindExpression handles top-level assignments: re-binding an existing name
// runs the same widening check instead of creating a second entry.
func (c *Context) bindExpression(stmt *sitter.Node) {
	for _, expr := range syntax.NamedChildren(stmt) {
		expr = syntax.Unwrap(expr)
		switch expr.Type() {
		case syntax.KindAssignment, syntax.KindAugmentedAssign:
			c.assign(expr)
		case syntax.KindSequenceExpression:
			for _, part := range syntax.NamedChildren(expr) {
				if part.Type() == syntax.KindAssignment || part.Type() == syntax.KindAugmentedAssign {
					c.assign(part)
				}
			}
		}
	}
}

func (c *Context) assign(expr *sitter.Node) {
	left := syntax.Unwrap(syntax.Field(expr, "left"))
	if left == nil {
		return
	}
	switch left.Type() {
	case syntax.KindIdentifier:
		name := c.text(left)
		prev, ok := c.scope.Get(name)
		if !ok {
			return
		}
		v := c.Value(expr)
		if expr.Type() == syntax.KindAugmentedAssign {
			v = c.expression(c.TypeOf(expr), c.text(expr))
		}
		c.bind(name, v, scope.Nodes{Value: prev.Nodes.Value}, scope.BindOptions{})
	case syntax.KindObjectPattern, syntax.KindArrayPattern:
		c.bindPattern(left, c.Value(syntax.Field(expr, "right")), syntax.Statement(expr), nil)
	}
}

// bindParams binds the parameters of fn with their annotated or default
// types.
func (c *Context) bindParams(fn *sitter.Node) {
	if single := syntax.Field(fn, "parameter"); single != nil {
		c.bindParam(single)
		return
	}
	for _, p := range paramList(syntax.Field(fn, "parameters")) {
		c.bindParam(p)
	}
}

func (c *Context) bindParam(p *sitter.Node) {
	comment := syntax.Statement(p)
	switch p.Type() {
	case syntax.KindIdentifier:
		c.bind(c.text(p), value.Unknown(c.text(p)), scope.Nodes{Value: p}, scope.BindOptions{ForceType: true})
	case syntax.KindAssignmentPattern:
		left := syntax.Field(p, "left")
		v := c.Value(syntax.Field(p, "right"))
		if left != nil && left.Type() == syntax.KindIdentifier {
			c.bind(c.text(left), v, scope.Nodes{Value: p}, scope.BindOptions{ForceType: true})
			return
		}
		c.bindPattern(left, v, comment, nil)
	case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
		pattern := syntax.Field(p, "pattern")
		typeNode := syntax.Field(p, "type")
		def := syntax.Field(p, "value")
		v := value.Unknown(c.text(pattern))
		if def != nil {
			v = c.Value(def)
		}
		var ts *value.TSValue
		if typeNode != nil {
			ts = c.tsValue(typeNode)
			v = v.WithType(ts.Type)
		}
		if pattern == nil {
			return
		}
		switch pattern.Type() {
		case syntax.KindIdentifier:
			c.bind(c.text(pattern), v, scope.Nodes{Type: typeNode, Value: p}, scope.BindOptions{ForceType: true, TSValue: ts})
		case syntax.KindRestPattern:
			c.bindParam(pattern)
		case syntax.KindThis:
		default:
			c.bindPattern(pattern, v, comment, nil)
		}
	case syntax.KindRestPattern:
		for _, inner := range syntax.NamedChildren(p) {
			if inner.Type() == syntax.KindIdentifier {
				v := value.Rest(c.text(inner))
				v.Type = value.T(value.TypeArray)
				c.bind(c.text(inner), v, scope.Nodes{Value: p}, scope.BindOptions{ForceType: true})
			}
		}
	case syntax.KindObjectPattern, syntax.KindArrayPattern:
		c.bindPattern(p, value.Unknown(c.text(p)), comment, nil)
	}
}

// bindPattern destructures src into the names of an object or array
// pattern. Defaults apply only when the member is absent or undefined;
// renamed members record their source key; rest elements capture what is
// left, or an opaque "...name" value when src is not tracked.
func (c *Context) bindPattern(pattern *sitter.Node, src *value.Value, comment *sitter.Node, binding *composition.Binding) {
	if pattern == nil {
		return
	}
	if src == nil {
		src = value.Unknown("")
	}
	switch pattern.Type() {
	case syntax.KindObjectPattern:
		c.bindObjectPattern(pattern, src, comment, binding)
	case syntax.KindArrayPattern:
		c.bindArrayPattern(pattern, src, comment, binding)
	case syntax.KindIdentifier:
		c.bind(c.text(pattern), src, scope.Nodes{Type: pattern, Value: pattern, Comment: comment}, scope.BindOptions{Composition: binding})
	}
}

func (c *Context) bindObjectPattern(pattern *sitter.Node, src *value.Value, comment *sitter.Node, binding *composition.Binding) {
	used := map[string]bool{}
	for _, el := range syntax.NamedChildren(pattern) {
		switch el.Type() {
		case syntax.KindShorthandPattern:
			key := c.text(el)
			used[key] = true
			c.bindElement(key, "", el, c.member(src, key), nil, comment, binding)
		case syntax.KindObjectAssignPattern:
			left := syntax.Field(el, "left")
			key := c.text(left)
			used[key] = true
			if left.Type() != syntax.KindShorthandPattern && left.Type() != syntax.KindIdentifier {
				c.bindPattern(left, c.withDefault(c.member(src, key), syntax.Field(el, "right")), comment, binding)
				continue
			}
			c.bindElement(key, "", el, c.member(src, key), syntax.Field(el, "right"), comment, binding)
		case syntax.KindPairPattern:
			key, ok := c.st.file.PropertyKey(syntax.Field(el, "key"))
			if !ok {
				continue
			}
			used[key] = true
			target := syntax.Field(el, "value")
			member := c.member(src, key)
			switch {
			case target == nil:
			case target.Type() == syntax.KindIdentifier:
				c.bindElement(c.text(target), key, el, member, nil, comment, binding)
			case target.Type() == syntax.KindAssignmentPattern:
				left := syntax.Field(target, "left")
				if left != nil && left.Type() == syntax.KindIdentifier {
					c.bindElement(c.text(left), key, el, member, syntax.Field(target, "right"), comment, binding)
				} else {
					c.bindPattern(left, c.withDefault(member, syntax.Field(target, "right")), comment, binding)
				}
			default:
				c.bindPattern(target, member, comment, binding)
			}
		case syntax.KindRestPattern:
			name := restName(c, el)
			if name == "" {
				continue
			}
			var rest *value.Value
			if src.Object != nil && !src.Object.Array {
				obj := src.Object.Clone()
				for k := range used {
					obj.Delete(k)
				}
				rest = value.Compound(obj, "..."+name)
			} else {
				rest = value.Rest(name)
			}
			c.bind(name, rest, scope.Nodes{Type: el, Value: el, Comment: comment}, scope.BindOptions{Composition: binding})
		}
	}
}

func (c *Context) bindArrayPattern(pattern *sitter.Node, src *value.Value, comment *sitter.Node, binding *composition.Binding) {
	index := 0
	for _, el := range syntax.Children(pattern) {
		if !el.IsNamed() {
			if el.Type() == "," {
				index++
			}
			continue
		}
		key := strconv.Itoa(index)
		switch el.Type() {
		case syntax.KindIdentifier:
			c.bindElement(c.text(el), "", el, c.member(src, key), nil, comment, binding)
		case syntax.KindAssignmentPattern:
			left := syntax.Field(el, "left")
			if left != nil && left.Type() == syntax.KindIdentifier {
				c.bindElement(c.text(left), "", el, c.member(src, key), syntax.Field(el, "right"), comment, binding)
			} else {
				c.bindPattern(left, c.withDefault(c.member(src, key), syntax.Field(el, "right")), comment, binding)
			}
		case syntax.KindObjectPattern, syntax.KindArrayPattern:
			c.bindPattern(el, c.member(src, key), comment, binding)
		case syntax.KindRestPattern:
			name := restName(c, el)
			if name == "" {
				continue
			}
			var rest *value.Value
			if src.Object != nil && src.Object.Array {
				rest = value.Compound(src.Object.Slice(index), "..."+name)
			} else {
				rest = value.Rest(name)
			}
			c.bind(name, rest, scope.Nodes{Type: el, Value: el, Comment: comment}, scope.BindOptions{Composition: binding})
		}
	}
}

func restName(c *Context, rest *sitter.Node) string {
	for _, inner := range syntax.NamedChildren(rest) {
		if inner.Type() == syntax.KindIdentifier {
			return c.text(inner)
		}
	}
	return ""
}

// member returns the member key of a tracked src. It is nil when the member
// is absent or src is not tracked, so that defaults apply.
func (c *Context) member(src *value.Value, key string) *value.Value {
	if src.Object == nil {
		return nil
	}
	v, _ := src.Object.Get(key)
	return v
}

func (c *Context) withDefault(member *value.Value, def *sitter.Node) *value.Value {
	if def != nil && value.IsUndefined(member) {
		return c.Value(def)
	}
	if member == nil {
		return value.UndefinedValue().WithType(value.T(value.TypeUnknown))
	}
	return member
}

func (c *Context) bindElement(name, source string, node *sitter.Node, member *value.Value, def *sitter.Node, comment *sitter.Node, binding *composition.Binding) {
	v := c.withDefault(member, def)
	if member == nil && def == nil {
		v = value.Unknown(name)
	}
	c.bind(name, v, scope.Nodes{Type: node, Value: node, Comment: comment}, scope.BindOptions{Source: source, Composition: binding, Function: v.Function})
}
