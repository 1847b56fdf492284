package script

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/composition"
	"vuedoc/internal/entry"
	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// optionsShape documents a component declared as an options object:
// `export default {…}`, `defineComponent({…})` or `module.exports = {…}`.
type optionsShape struct{}

func (optionsShape) name() string { return "options" }

func (optionsShape) detect(c *Context, s Script) bool {
	obj, _ := c.componentObject(c.st.defNode)
	return obj != nil
}

func (optionsShape) emit(c *Context, out *collector) {
	obj, owner := c.componentObject(c.st.defNode)
	if obj == nil {
		return
	}
	stmt := syntax.Statement(c.st.defNode)
	if c.st.file.LeadingComment(stmt) != "" {
		c.componentDoc(out, stmt, "")
	} else {
		c.componentDoc(out, nil, c.st.file.FileComment())
	}
	owner.options(out, obj)
}

// options emits the features of an options object in member order.
func (c *Context) options(out *collector, obj *sitter.Node) {
	f := c.st.file
	for _, member := range syntax.NamedChildren(obj) {
		key, ok := f.MemberName(member)
		if !ok {
			continue
		}
		v := syntax.MemberValue(member)
		switch key {
		case "name":
			if name, ok := f.StringValue(syntax.Unwrap(v)); ok {
				out.add(&entry.Name{Common: entry.Common{Kind: entry.KindName, Name: name, Line: f.Line(member)}})
			}
		case "props":
			c.runtimeProps(out, v, nil)
		case "data":
			c.dataOption(out, v)
		case "computed":
			c.computedOption(out, v)
		case "methods":
			c.methodsOption(out, v)
		case "emits":
			c.runtimeEmits(out, v)
		case "expose":
			c.exposeOption(out, v)
		case "model":
			c.modelOption(out, v)
		case "setup":
			c.setupOption(out, v)
		case "mixins":
			if list, owner := c.resolveNode(v); list != nil && list.Type() == syntax.KindArray {
				for _, mixin := range syntax.NamedChildren(list) {
					owner.deferMixin(out, mixin)
				}
			}
		case "extends":
			c.deferMixin(out, v)
		}
	}
	c.scanEmits(out, obj, map[string]bool{"this.$emit": true, "vm.$emit": true})
}

type mixinKey struct {
	path string
	node syntax.NodeKey
}

// deferMixin queues a mixin or base component. Its entries follow the
// synchronous entries of the component.
func (c *Context) deferMixin(out *collector, n *sitter.Node) {
	r := c.st.run
	r.later(func() {
		obj, owner := c.componentObject(n)
		if obj == nil {
			return
		}
		key := mixinKey{path: owner.st.file.Path, node: syntax.Key(obj)}
		if r.mixins[key] {
			return
		}
		r.mixins[key] = true
		r.log.Debug("mixin", "file", owner.st.file.Path, "line", owner.st.file.Line(obj))
		owner.options(out, obj)
	})
}

// dataOption handles `data() { return {…} }`, `data: () => ({…})` and a
// plain object.
func (c *Context) dataOption(out *collector, v *sitter.Node) {
	node, owner := c.resolveNode(v)
	if node == nil {
		return
	}
	if node.Type() == syntax.KindObject {
		owner.dataObject(out, owner.Value(node), node)
		return
	}
	if !syntax.IsFunction(node.Type()) {
		return
	}
	inner := owner.child()
	inner.bindParams(node)
	body := syntax.Field(node, "body")
	if body == nil {
		return
	}
	if body.Type() != syntax.KindStatementBlock {
		if obj := syntax.Unwrap(body); obj.Type() == syntax.KindObject {
			inner.dataObject(out, inner.Value(obj), obj)
		}
		return
	}
	var ret *sitter.Node
	inner.walkBody(body, func(stmt *sitter.Node) {
		if arg := syntax.Unwrap(firstOf(stmt)); arg != nil && arg.Type() == syntax.KindObject {
			ret = arg
		}
	})
	if ret != nil {
		inner.dataObject(out, inner.Value(ret), ret)
	}
}

func (c *Context) dataObject(out *collector, v *value.Value, obj *sitter.Node) {
	if v.Object == nil {
		return
	}
	for _, key := range v.Object.Keys() {
		member, _ := v.Object.Get(key)
		node := v.Object.Node(key)
		if node == nil {
			node = obj
		}
		out.add(c.dataValue(key, member, node))
	}
}

// computedOption handles `computed: { a() {…}, b: { get() {…}, set(v) {…} } }`.
func (c *Context) computedOption(out *collector, v *sitter.Node) {
	node, owner := c.resolveNode(v)
	if node == nil || node.Type() != syntax.KindObject {
		return
	}
	f := owner.st.file
	for _, member := range syntax.NamedChildren(node) {
		name, ok := f.MemberName(member)
		if !ok {
			continue
		}
		getter := syntax.Unwrap(syntax.MemberValue(member))
		if getter != nil && getter.Type() == syntax.KindObject {
			if get := f.ObjectMember(getter, "get"); get != nil {
				getter = syntax.Unwrap(syntax.MemberValue(get))
			}
		}
		t := value.T(value.TypeUnknown)
		var deps []string
		if getter != nil && syntax.IsFunction(getter.Type()) {
			t = owner.ReturnType(getter)
			deps = owner.dependencies(syntax.Field(getter, "body"), nil)
		}
		out.add(owner.computedEntry(name, t, member, deps))
	}
}

func (c *Context) methodsOption(out *collector, v *sitter.Node) {
	node, owner := c.resolveNode(v)
	if node == nil || node.Type() != syntax.KindObject {
		return
	}
	for _, member := range syntax.NamedChildren(node) {
		name, ok := owner.st.file.MemberName(member)
		if !ok {
			continue
		}
		fn, fnOwner := owner.resolveNode(syntax.MemberValue(member))
		switch {
		case fn == nil || !syntax.IsFunction(fn.Type()):
			out.add(owner.methodEntry(name, nil, member))
		case fnOwner == owner:
			out.add(owner.methodEntry(name, fn, member))
		default:
			out.add(fnOwner.methodEntry(name, fn, syntax.Statement(fn)))
		}
	}
}

func (c *Context) exposeOption(out *collector, v *sitter.Node) {
	node, owner := c.resolveNode(v)
	out.expose()
	if node == nil || node.Type() != syntax.KindArray {
		return
	}
	for _, el := range syntax.NamedChildren(node) {
		if name, ok := owner.st.file.StringValue(syntax.Unwrap(el)); ok {
			out.expose(name)
		}
	}
}

// modelOption handles `model: { prop: 'checked', event: 'change' }`.
func (c *Context) modelOption(out *collector, v *sitter.Node) {
	node := syntax.Unwrap(v)
	if node == nil || node.Type() != syntax.KindObject {
		return
	}
	f := c.st.file
	m := &entry.Model{Common: c.common(entry.KindModel, "", syntax.Statement(node)), Prop: "value", Event: "input"}
	if p := f.ObjectMember(node, "prop"); p != nil {
		if s, ok := f.StringValue(syntax.Unwrap(syntax.MemberValue(p))); ok {
			m.Prop = s
		}
	}
	if e := f.ObjectMember(node, "event"); e != nil {
		if s, ok := f.StringValue(syntax.Unwrap(syntax.MemberValue(e))); ok {
			m.Event = s
		}
	}
	m.Name = m.Prop
	out.add(m)
}

// setupOption documents what `setup(props, { emit })` returns.
func (c *Context) setupOption(out *collector, v *sitter.Node) {
	fn, owner := c.resolveNode(v)
	if fn == nil || !syntax.IsFunction(fn.Type()) {
		return
	}
	inner := owner.child()
	inner.bindParams(fn)

	emits := map[string]bool{}
	params := paramList(syntax.Field(fn, "parameters"))
	if len(params) > 1 {
		switch ctx := setupParam(params[1]); {
		case ctx == nil:
		case ctx.Type() == syntax.KindIdentifier:
			emits[owner.text(ctx)+".emit"] = true
		case ctx.Type() == syntax.KindObjectPattern:
			for _, name := range owner.patternNames(ctx) {
				if name == "emit" {
					emits["emit"] = true
				}
			}
		}
	}

	body := syntax.Field(fn, "body")
	if body == nil {
		return
	}
	var ret *sitter.Node
	if body.Type() != syntax.KindStatementBlock {
		ret = syntax.Unwrap(body)
	} else {
		inner.walkBody(body, func(stmt *sitter.Node) {
			if arg := syntax.Unwrap(firstOf(stmt)); arg != nil && arg.Type() == syntax.KindObject {
				ret = arg
			}
		})
	}
	if ret != nil && ret.Type() == syntax.KindObject {
		own := inner.ownState()
		for _, member := range syntax.NamedChildren(ret) {
			name, ok := owner.st.file.MemberName(member)
			if !ok {
				continue
			}
			valueNode := syntax.Unwrap(syntax.MemberValue(member))
			if member.Type() == syntax.KindShorthandProp || (valueNode != nil && valueNode.Type() == syntax.KindIdentifier) {
				local := name
				if member.Type() != syntax.KindShorthandProp {
					local = owner.text(valueNode)
				}
				if e, ok := inner.scope.Get(local); ok && e.Import == nil {
					inner.emitBinding(out, name, e, own)
					continue
				}
			}
			if member.Type() == syntax.KindMethodDefinition || (valueNode != nil && syntax.IsFunction(valueNode.Type())) {
				out.add(inner.methodEntry(name, functionOf(member), member))
				continue
			}
			out.add(inner.dataValue(name, inner.Value(valueNode), member))
		}
	}
	owner.scanEmits(out, body, emits)
}

func setupParam(p *sitter.Node) *sitter.Node {
	switch p.Type() {
	case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
		return syntax.Field(p, "pattern")
	case syntax.KindAssignmentPattern:
		return syntax.Field(p, "left")
	}
	return p
}

// ownState reports which names of c's scope are component state, for
// dependency scans.
func (c *Context) ownState() func(string) bool {
	return func(name string) bool {
		e, ok := c.scope.Get(name)
		if !ok || e.Import != nil || e.Function {
			return false
		}
		return e.Composition != nil || e.File == c.st.file
	}
}

// emitBinding documents a binding by its role: a computed or custom
// composition feature, a function, or state.
func (c *Context) emitBinding(out *collector, name string, e *scope.Entry, own func(string) bool) {
	owner := c.contextFor(e)
	switch e.Composition.Feature() {
	case composition.Props, composition.Events:
		return
	case composition.Computed:
		var deps []string
		if getter := computedGetterNode(owner, e.Composition.Call); getter != nil {
			deps = owner.dependencies(syntax.Field(getter, "body"), func(n string) bool {
				return n != name && own != nil && own(n)
			})
		}
		out.add(owner.computedEntry(name, e.Type(), e.Nodes.Comment, deps))
		return
	case composition.Methods:
		var fn *sitter.Node
		for _, arg := range syntax.Arguments(e.Composition.Call) {
			if a := syntax.Unwrap(arg); syntax.IsFunction(a.Type()) {
				fn = a
				break
			}
		}
		out.add(owner.methodEntry(name, fn, e.Nodes.Comment))
		return
	}
	if e.Function {
		out.add(owner.methodEntry(name, functionOf(e.Nodes.Value), e.Nodes.Comment))
		return
	}
	out.add(c.dataEntry(name, e))
}

// computedGetterNode returns the getter of computed(fn) or
// computed({ get, set }).
func computedGetterNode(c *Context, call *sitter.Node) *sitter.Node {
	args := syntax.Arguments(call)
	if len(args) == 0 {
		return nil
	}
	getter := syntax.Unwrap(args[0])
	if getter.Type() == syntax.KindObject {
		if member := c.st.file.ObjectMember(getter, "get"); member != nil {
			getter = syntax.Unwrap(syntax.MemberValue(member))
		}
	}
	if !syntax.IsFunction(getter.Type()) {
		return nil
	}
	return getter
}
