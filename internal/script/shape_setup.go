package script

import (
	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/entry"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// setupShape documents a `<script setup>` block: every top-level binding is
// part of the component, classified by how it is built.
type setupShape struct{}

func (setupShape) name() string { return "setup" }

func (setupShape) detect(_ *Context, s Script) bool {
	return s.Setup
}

func (setupShape) emit(c *Context, out *collector) {
	c.componentDoc(out, nil, c.st.file.FileComment())

	emits := map[string]bool{}
	own := c.ownState()
	for _, stmt := range syntax.NamedChildren(c.st.file.Root) {
		switch stmt.Type() {
		case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
			for _, d := range syntax.NamedChildren(stmt) {
				if d.Type() == syntax.KindVariableDeclarator {
					c.setupDeclarator(out, d, emits, own)
				}
			}
		case syntax.KindFunctionDeclaration, syntax.KindGeneratorDeclaration:
			name := syntax.Field(stmt, "name")
			if name == nil {
				continue
			}
			if e, ok := c.scope.Get(c.text(name)); ok {
				c.emitBinding(out, c.text(name), e, own)
			}
		case syntax.KindExpressionStatement:
			if call := syntax.Unwrap(firstOf(stmt)); call.Type() == syntax.KindCallExpression {
				c.macro(out, call, nil)
			}
		}
	}
	c.scanEmits(out, c.st.file.Root, emits)
}

// macros are the compiler macros of script setup.
var macros = map[string]bool{
	"defineProps":   true,
	"withDefaults":  true,
	"defineEmits":   true,
	"defineModel":   true,
	"defineSlots":   true,
	"defineExpose":  true,
	"defineOptions": true,
}

func (c *Context) setupDeclarator(out *collector, d *sitter.Node, emits map[string]bool, own func(string) bool) {
	target := syntax.Field(d, "name")
	init := syntax.Unwrap(syntax.Field(d, "value"))
	if target == nil {
		return
	}
	if init != nil && init.Type() == syntax.KindCallExpression {
		name := c.compositionName(init)
		if macros[name] {
			c.macro(out, init, d)
			if name == "defineEmits" && target.Type() == syntax.KindIdentifier {
				emits[c.text(target)] = true
			}
			return
		}
		if c.isFrameworkHelper(init) {
			return
		}
	}
	for _, name := range c.patternNames(target) {
		if e, ok := c.scope.Get(name); ok && e.Import == nil {
			c.emitBinding(out, name, e, own)
		}
	}
}

// isFrameworkHelper reports calls to framework functions that are not
// composition rules, like useSlots() or getCurrentInstance(). Their
// results are not component state.
func (c *Context) isFrameworkHelper(call *sitter.Node) bool {
	fn := syntax.Unwrap(syntax.Field(call, "function"))
	if fn == nil || fn.Type() != syntax.KindIdentifier || !c.isFramework(c.text(fn)) {
		return false
	}
	_, ok := c.rule(call)
	return !ok
}

// macro handles one compiler macro call. decl is the declarator the call
// initializes, if any.
func (c *Context) macro(out *collector, call, decl *sitter.Node) {
	args := syntax.Arguments(call)
	switch c.compositionName(call) {
	case "defineProps":
		c.defineProps(out, call, c.destructuredDefaults(decl))
	case "withDefaults":
		defaults := c.destructuredDefaults(decl)
		if len(args) > 1 {
			if obj, owner := c.resolveNode(args[1]); obj != nil && obj.Type() == syntax.KindObject {
				for _, member := range syntax.NamedChildren(obj) {
					if name, ok := owner.st.file.MemberName(member); ok {
						defaults[name] = owner.defaultRaw(syntax.MemberValue(member))
					}
				}
			}
		}
		if len(args) > 0 {
			if inner := syntax.Unwrap(args[0]); inner.Type() == syntax.KindCallExpression {
				c.defineProps(out, inner, defaults)
			}
		}
	case "defineEmits":
		if targs := syntax.TypeArguments(call); len(targs) > 0 {
			c.typedEmits(out, targs[0])
		} else if len(args) > 0 {
			c.runtimeEmits(out, args[0])
		}
	case "defineModel":
		c.defineModel(out, call, decl)
	case "defineSlots":
		c.defineSlots(out, call)
	case "defineExpose":
		out.expose()
		if len(args) > 0 {
			if obj, owner := c.resolveNode(args[0]); obj != nil && obj.Type() == syntax.KindObject {
				for _, member := range syntax.NamedChildren(obj) {
					if name, ok := owner.st.file.MemberName(member); ok {
						out.expose(name)
					}
				}
			}
		}
	case "defineOptions":
		if len(args) > 0 {
			if obj, owner := c.resolveNode(args[0]); obj != nil && obj.Type() == syntax.KindObject {
				if n := owner.st.file.ObjectMember(obj, "name"); n != nil {
					if name, ok := owner.st.file.StringValue(syntax.Unwrap(syntax.MemberValue(n))); ok {
						out.add(&entry.Name{Common: entry.Common{Kind: entry.KindName, Name: name, Line: owner.st.file.Line(n)}})
					}
				}
			}
		}
	}
}

func (c *Context) defineProps(out *collector, call *sitter.Node, defaults map[string]string) {
	if targs := syntax.TypeArguments(call); len(targs) > 0 {
		c.typedProps(out, targs[0], defaults)
		return
	}
	if args := syntax.Arguments(call); len(args) > 0 {
		c.runtimeProps(out, args[0], defaults)
	}
}

// destructuredDefaults reads the defaults of reactive props destructuring:
// `const { size = 'md', label: text = '' } = defineProps<…>()`.
func (c *Context) destructuredDefaults(decl *sitter.Node) map[string]string {
	defaults := map[string]string{}
	if decl == nil {
		return defaults
	}
	pattern := syntax.Field(decl, "name")
	if pattern == nil || pattern.Type() != syntax.KindObjectPattern {
		return defaults
	}
	for _, el := range syntax.NamedChildren(pattern) {
		switch el.Type() {
		case syntax.KindObjectAssignPattern:
			defaults[c.text(syntax.Field(el, "left"))] = c.defaultRaw(syntax.Field(el, "right"))
		case syntax.KindPairPattern:
			key, ok := c.st.file.PropertyKey(syntax.Field(el, "key"))
			target := syntax.Field(el, "value")
			if ok && target != nil && target.Type() == syntax.KindAssignmentPattern {
				defaults[key] = c.defaultRaw(syntax.Field(target, "right"))
			}
		}
	}
	return defaults
}

// defineModel emits the prop, the update event and the model of
// `defineModel('name', { type, default, required })`.
func (c *Context) defineModel(out *collector, call, decl *sitter.Node) {
	f := c.st.file
	name := "modelValue"
	var options *sitter.Node
	for _, arg := range syntax.Arguments(call) {
		arg = syntax.Unwrap(arg)
		if s, ok := f.StringValue(arg); ok {
			name = s
			continue
		}
		if arg.Type() == syntax.KindObject {
			options = arg
		}
	}

	commentNode := call
	if decl != nil {
		commentNode = syntax.Statement(decl)
	}
	p := &entry.Prop{Common: c.common(entry.KindProp, name, commentNode), Type: value.T(value.TypeAny), DescribeModel: true}
	if targs := syntax.TypeArguments(call); len(targs) > 0 {
		p.Type = c.TSType(targs[0])
	}
	if options != nil {
		if t := f.ObjectMember(options, "type"); t != nil && len(syntax.TypeArguments(call)) == 0 {
			p.Type = c.constructorType(syntax.MemberValue(t))
		}
		if d := f.ObjectMember(options, "default"); d != nil {
			p.Default = c.defaultRaw(syntax.MemberValue(d))
		}
		if r := f.ObjectMember(options, "required"); r != nil {
			p.Required = c.text(syntax.Unwrap(syntax.MemberValue(r))) == "true"
		}
	}
	out.add(c.finishProp(p))

	event := "update:" + name
	ev := &entry.Event{
		Common:    entry.Common{Kind: entry.KindEvent, Name: event, Line: f.Line(call)},
		Arguments: []entry.Param{{Name: "value", Type: p.Type}},
	}
	ev.Syntax = []string{"emit(\"" + event + "\", value: " + p.Type.String() + ")"}
	out.add(ev)
	out.add(&entry.Model{Common: entry.Common{Kind: entry.KindModel, Name: name, Line: f.Line(call)}, Prop: name, Event: event})
}

// defineSlots emits slots from `defineSlots<{ default(props: { msg: string }): any }>()`.
func (c *Context) defineSlots(out *collector, call *sitter.Node) {
	targs := syntax.TypeArguments(call)
	if len(targs) == 0 {
		return
	}
	for _, m := range c.typeMembers(targs[0]) {
		if m.Call {
			continue
		}
		owner := m.Owner
		slot := &entry.Slot{Common: owner.common(entry.KindSlot, m.Name, m.Node)}
		if len(m.Params) > 0 {
			var typeNode *sitter.Node
			switch p := m.Params[0]; p.Type() {
			case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
				typeNode = syntax.Field(p, "type")
			}
			for _, prop := range owner.typeMembers(typeNode) {
				if prop.Call {
					continue
				}
				d := prop.Owner.doc(prop.Node)
				slot.Props = append(slot.Props, entry.Param{
					Name:        prop.Name,
					Type:        prop.Type,
					Description: d.Description,
					Optional:    prop.Optional,
				})
			}
		}
		out.add(slot)
	}
}
