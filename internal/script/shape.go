package script

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/entry"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// shape is one way of declaring a component. Shapes share the evaluator and
// binder of the Context and differ in where they find features.
type shape interface {
	name() string
	// detect reports whether the script declares its component this way.
	detect(c *Context, s Script) bool
	emit(c *Context, out *collector)
}

var shapes = []shape{setupShape{}, optionsShape{}}

func detectShape(c *Context, s Script) shape {
	for _, sh := range shapes {
		if sh.detect(c, s) {
			return sh
		}
	}
	return nil
}

// resolveNode follows identifiers to the node they are defined by, across
// imports, and returns it with the context of its file.
func (c *Context) resolveNode(n *sitter.Node) (*sitter.Node, *Context) {
	cur := c
	for depth := 0; n != nil && depth < maxImportDepth; depth++ {
		n = syntax.Unwrap(n)
		if n.Type() != syntax.KindIdentifier {
			return n, cur
		}
		e, ok := cur.lookup(cur.text(n))
		if !ok || e.Import != nil || e.Nodes.Value == nil {
			return n, cur
		}
		owner := cur.contextFor(e)
		target := e.Nodes.Value
		switch target.Type() {
		case syntax.KindVariableDeclarator, syntax.KindPair:
			target = syntax.Field(target, "value")
		}
		if target == nil || syntax.Key(target) == syntax.Key(n) {
			return n, cur
		}
		n, cur = target, owner
	}
	return n, cur
}

// componentObject finds the options object of a component expression:
// `{…}`, `defineComponent({…})`, `Vue.extend({…})` or a name bound to one.
func (c *Context) componentObject(n *sitter.Node) (*sitter.Node, *Context) {
	for depth := 0; n != nil && depth < maxImportDepth; depth++ {
		var owner *Context
		n, owner = c.resolveNode(n)
		c = owner
		switch n.Type() {
		case syntax.KindObject:
			return n, c
		case syntax.KindCallExpression:
			args := syntax.Arguments(n)
			if len(args) == 0 {
				return nil, nil
			}
			n = args[len(args)-1]
			if first := syntax.Unwrap(args[0]); first.Type() == syntax.KindObject {
				n = first
			}
		default:
			return nil, nil
		}
	}
	return nil, nil
}

// nativeTypes map runtime prop constructors to type names.
var nativeTypes = map[string]string{
	"String":   value.TypeString,
	"Number":   value.TypeNumber,
	"Boolean":  value.TypeBoolean,
	"Array":    value.TypeArray,
	"Object":   value.TypeObject,
	"Function": value.TypeFunction,
	"Symbol":   value.TypeSymbol,
	"BigInt":   value.TypeBigInt,
	"null":     value.TypeAny,
}

// constructorType reads a prop `type`: a constructor, an array of them, or
// `Object as PropType<T>`.
func (c *Context) constructorType(n *sitter.Node) value.Type {
	n = syntax.Unwrap(n)
	if n == nil {
		return value.T(value.TypeAny)
	}
	switch n.Type() {
	case syntax.KindArray:
		var parts []value.Type
		for _, el := range syntax.NamedChildren(n) {
			parts = append(parts, c.constructorType(el))
		}
		return value.Union(parts...)
	case syntax.KindAsExpression:
		children := syntax.NamedChildren(n)
		if len(children) < 2 {
			return value.T(value.TypeAny)
		}
		typeNode := children[len(children)-1]
		if typeNode.Type() == syntax.KindGenericType && c.text(syntax.Field(typeNode, "name")) == "PropType" {
			if args := syntax.NamedChildren(syntax.Field(typeNode, "type_arguments")); len(args) > 0 {
				return c.TSType(args[0])
			}
		}
		return c.constructorType(children[0])
	}
	name := c.text(n)
	if t, ok := nativeTypes[name]; ok {
		return value.T(t)
	}
	return value.T(name)
}

// defaultRaw renders a default value. Factory functions are unwrapped to
// what they return.
func (c *Context) defaultRaw(n *sitter.Node) string {
	n = syntax.Unwrap(n)
	if n == nil {
		return ""
	}
	if !syntax.IsFunction(n.Type()) {
		return c.text(n)
	}
	body := syntax.Field(n, "body")
	if body == nil {
		return c.text(n)
	}
	if body.Type() != syntax.KindStatementBlock {
		return c.text(syntax.Unwrap(body))
	}
	for _, stmt := range syntax.NamedChildren(body) {
		if stmt.Type() == syntax.KindReturnStatement {
			if arg := firstOf(stmt); arg != stmt {
				return c.text(syntax.Unwrap(arg))
			}
		}
	}
	return c.text(n)
}

// runtimeProps emits props declared at runtime: `['a', 'b']` or
// `{ a: String, b: { type: Number, default: 0, required: true } }`.
func (c *Context) runtimeProps(out *collector, decl *sitter.Node, defaults map[string]string) {
	node, owner := c.resolveNode(decl)
	if node == nil {
		return
	}
	switch node.Type() {
	case syntax.KindArray:
		for _, el := range syntax.NamedChildren(node) {
			name, ok := owner.st.file.StringValue(syntax.Unwrap(el))
			if !ok {
				continue
			}
			p := &entry.Prop{Common: owner.common(entry.KindProp, name, el), Type: value.T(value.TypeAny)}
			p.Default = defaults[name]
			out.add(owner.finishProp(p))
		}
	case syntax.KindObject:
		for _, member := range syntax.NamedChildren(node) {
			name, ok := owner.st.file.MemberName(member)
			if !ok {
				continue
			}
			out.add(owner.objectProp(name, member, defaults[name]))
		}
	}
}

func (c *Context) objectProp(name string, member *sitter.Node, def string) *entry.Prop {
	f := c.st.file
	p := &entry.Prop{Common: c.common(entry.KindProp, name, member), Default: def}
	v := syntax.Unwrap(syntax.MemberValue(member))
	if v != nil && v.Type() == syntax.KindObject {
		p.Type = value.T(value.TypeAny)
		if t := f.ObjectMember(v, "type"); t != nil {
			p.Type = c.constructorType(syntax.MemberValue(t))
		}
		if d := f.ObjectMember(v, "default"); d != nil && p.Default == "" {
			p.Default = c.defaultRaw(syntax.MemberValue(d))
		}
		if r := f.ObjectMember(v, "required"); r != nil {
			p.Required = c.text(syntax.Unwrap(syntax.MemberValue(r))) == "true"
		}
	} else {
		p.Type = c.constructorType(v)
	}
	return c.finishProp(p)
}

// finishProp applies @type and @default overrides.
func (c *Context) finishProp(p *entry.Prop) *entry.Prop {
	if t, ok := typeTag(p.Keywords); ok {
		p.Type = t
	}
	if k, ok := keyword(p.Keywords, "default"); ok && k.Description != "" {
		p.Default = k.Description
	}
	return p
}

// typedProps emits props declared by a type: `defineProps<{ a?: string }>()`.
func (c *Context) typedProps(out *collector, typeNode *sitter.Node, defaults map[string]string) {
	for _, m := range c.typeMembers(typeNode) {
		if m.Call {
			continue
		}
		owner := m.Owner
		p := &entry.Prop{
			Common:   owner.common(entry.KindProp, m.Name, m.Node),
			Type:     m.Type,
			Required: !m.Optional,
			Default:  defaults[m.Name],
		}
		if m.Method {
			p.Type = value.T(value.TypeFunction)
		}
		out.add(owner.finishProp(p))
	}
}

// runtimeEmits emits events declared at runtime: `['change']` or
// `{ change: (id) => true }`.
func (c *Context) runtimeEmits(out *collector, decl *sitter.Node) {
	node, owner := c.resolveNode(decl)
	if node == nil {
		return
	}
	switch node.Type() {
	case syntax.KindArray:
		for _, el := range syntax.NamedChildren(node) {
			if name, ok := owner.st.file.StringValue(syntax.Unwrap(el)); ok {
				out.add(owner.eventEntry(name, nil, el))
			}
		}
	case syntax.KindObject:
		for _, member := range syntax.NamedChildren(node) {
			name, ok := owner.st.file.MemberName(member)
			if !ok {
				continue
			}
			var args []entry.Param
			if fn := syntax.Unwrap(syntax.MemberValue(member)); fn != nil && syntax.IsFunction(fn.Type()) {
				args = owner.params(fn, nil)
			}
			out.add(owner.eventEntry(name, args, member))
		}
	}
}

// typedEmits emits events declared by a type: call signatures
// `(e: 'change', id: number): void` or properties `change: [id: number]`.
func (c *Context) typedEmits(out *collector, typeNode *sitter.Node) {
	for _, m := range c.typeMembers(typeNode) {
		owner := m.Owner
		if !m.Call {
			out.add(owner.eventEntry(m.Name, owner.typeParams(m.Params), m.Node))
			continue
		}
		if len(m.Params) == 0 {
			continue
		}
		names := owner.literalStrings(syntax.Field(m.Params[0], "type"))
		args := owner.typeParams(m.Params[1:])
		for _, name := range names {
			out.add(owner.eventEntry(name, args, m.Node))
		}
	}
}

// literalStrings returns the string literals of a literal type or a union
// of them.
func (c *Context) literalStrings(typeNode *sitter.Node) []string {
	if typeNode == nil {
		return nil
	}
	if typeNode.Type() == syntax.KindTypeAnnotation {
		typeNode = firstOf(typeNode)
	}
	if typeNode.Type() == syntax.KindUnionType {
		var out []string
		for _, member := range syntax.NamedChildren(typeNode) {
			out = append(out, c.literalStrings(member)...)
		}
		return out
	}
	if s, ok := c.literalString(typeNode); ok {
		return []string{s}
	}
	return nil
}

// scanEmits emits the events fired by calls to one of callees within n,
// like `this.$emit('change', id)` or `emit('change', id)`.
func (c *Context) scanEmits(out *collector, n *sitter.Node, callees map[string]bool) {
	if n == nil || len(callees) == 0 {
		return
	}
	if n.Type() == syntax.KindCallExpression && callees[c.st.file.Callee(n)] {
		args := syntax.Arguments(n)
		if len(args) > 0 {
			if name, ok := c.st.file.StringValue(syntax.Unwrap(args[0])); ok {
				out.add(c.eventEntry(name, c.callArguments(args[1:]), syntax.Statement(n)))
			}
		}
	}
	for _, child := range syntax.NamedChildren(n) {
		c.scanEmits(out, child, callees)
	}
}

// linkModels marks the props bound by a model and infers the implicit
// `modelValue` / `update:modelValue` pair.
func (o *collector) linkModels() {
	if o.has(entry.KindProp, "modelValue") && o.has(entry.KindEvent, "update:modelValue") && !o.hasKind(entry.KindModel) {
		o.add(&entry.Model{Common: entry.Common{Kind: entry.KindModel, Name: "modelValue"}, Prop: "modelValue", Event: "update:modelValue"})
	}
	for _, e := range o.entries {
		m, ok := e.(*entry.Model)
		if !ok {
			continue
		}
		if p, ok := o.get(entry.KindProp, m.Prop); ok {
			p.(*entry.Prop).DescribeModel = true
		}
	}
}

func (o *collector) hasKind(kind entry.Kind) bool {
	for _, e := range o.entries {
		if e.Meta().Kind == kind {
			return true
		}
	}
	return false
}

// pascalCase turns a file base name like "my-button" into "MyButton".
func pascalCase(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r == '-' || r == '_' || r == '.' || r == ' ':
			upper = true
		case upper:
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
