package script

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// Value maps an expression to what is statically known about it. It never
// fails: unrecognized shapes degrade to the verbatim source typed unknown.
func (c *Context) Value(n *sitter.Node) *value.Value {
	if n == nil {
		return value.UndefinedValue()
	}
	raw := c.text(n)
	switch n.Type() {
	case syntax.KindNumber:
		return numberValue(raw)
	case syntax.KindString:
		s, _ := c.st.file.StringValue(n)
		return value.String(s, raw)
	case syntax.KindTemplateString:
		if s, ok := c.st.file.StringValue(n); ok {
			return value.String(s, raw)
		}
		v := value.New(value.T(value.TypeString), raw, raw)
		v.Expression = true
		return v
	case syntax.KindTrue:
		return value.Boolean(true)
	case syntax.KindFalse:
		return value.Boolean(false)
	case syntax.KindNull:
		return value.Null()
	case syntax.KindUndefined:
		return value.UndefinedValue()
	case syntax.KindRegex:
		return value.New(value.T(value.TypeRegExp), raw, raw)
	case syntax.KindArray:
		return c.arrayValue(n)
	case syntax.KindObject:
		return c.objectValue(n)
	case syntax.KindIdentifier:
		return c.identifierValue(n)
	case syntax.KindThis:
		return &value.Value{Type: value.T(value.TypeObject), Value: raw, Raw: raw, Kind: "this"}
	case syntax.KindMemberExpression, syntax.KindSubscriptExpr:
		return c.memberValue(n)
	case syntax.KindCallExpression:
		return c.callValue(n)
	case syntax.KindNewExpression:
		return c.newValue(n)
	case syntax.KindBinaryExpression:
		return c.binaryValue(n)
	case syntax.KindUnaryExpression:
		return c.unaryValue(n)
	case syntax.KindUpdateExpression:
		return c.expression(value.T(value.TypeNumber), raw)
	case syntax.KindAssignment:
		return c.Value(syntax.Field(n, "right"))
	case syntax.KindAugmentedAssign:
		return c.expression(c.TypeOf(n), raw)
	case syntax.KindTernaryExpression:
		return c.expression(c.TypeOf(n), raw)
	case syntax.KindParenthesized, syntax.KindNonNullExpression:
		inner := syntax.Unwrap(n)
		if inner == n {
			return value.Unknown(raw)
		}
		return c.Value(inner)
	case syntax.KindSequenceExpression:
		parts := syntax.NamedChildren(n)
		if len(parts) == 0 {
			return value.Unknown(raw)
		}
		return c.Value(parts[len(parts)-1])
	case syntax.KindAwaitExpression:
		inner := syntax.NamedChildren(n)
		if len(inner) == 0 {
			return value.Unknown(raw)
		}
		return c.expression(value.Awaited(c.TypeOf(inner[0])), raw)
	case syntax.KindAsExpression, syntax.KindSatisfiesExpr:
		return c.assertionValue(n)
	case syntax.KindArrowFunction, syntax.KindFunction, syntax.KindFunctionExpression,
		syntax.KindGeneratorFunction, syntax.KindMethodDefinition:
		v := value.Func(raw)
		v.Kind = "function"
		return v
	}
	return value.Unknown(raw)
}

func (c *Context) expression(t value.Type, raw string) *value.Value {
	return &value.Value{Type: t, Value: raw, Raw: raw, Expression: true}
}

func numberValue(raw string) *value.Value {
	text := strings.ReplaceAll(raw, "_", "")
	if strings.HasSuffix(text, "n") {
		return value.New(value.T(value.TypeBigInt), raw, raw)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return value.Number(f, raw)
	}
	if i, err := strconv.ParseInt(text, 0, 64); err == nil {
		return value.Number(float64(i), raw)
	}
	return value.New(value.T(value.TypeNumber), raw, raw)
}

func (c *Context) arrayValue(n *sitter.Node) *value.Value {
	obj := value.NewObject(true)
	for _, el := range syntax.NamedChildren(n) {
		if el.Type() == syntax.KindSpreadElement {
			spread := c.spreadSource(el)
			if spread != nil && spread.Object != nil && spread.Object.Array {
				for i := 0; i < spread.Object.Len(); i++ {
					member, _ := spread.Object.Index(i)
					obj.Append(member, spread.Object.Node(strconv.Itoa(i)))
				}
				continue
			}
			obj.Append(value.Rest(c.text(firstOf(el))), el)
			continue
		}
		obj.Append(c.Value(el), el)
	}
	return value.Compound(obj, c.text(n))
}

func (c *Context) objectValue(n *sitter.Node) *value.Value {
	obj := value.NewObject(false)
	f := c.st.file
	for _, member := range syntax.NamedChildren(n) {
		switch member.Type() {
		case syntax.KindPair:
			key, ok := f.PropertyKey(syntax.Field(member, "key"))
			if !ok {
				key = c.text(syntax.Field(member, "key"))
			}
			v := c.Value(syntax.Field(member, "value"))
			v.Member = true
			obj.Set(key, v, member)
		case syntax.KindShorthandProp:
			v := c.Value(member)
			v.Member = true
			obj.Set(c.text(member), v, member)
		case syntax.KindMethodDefinition:
			key, ok := f.MemberName(member)
			if !ok {
				continue
			}
			v := c.Value(member)
			if syntax.HasToken(member, "get") {
				v = c.expression(c.ReturnType(member), c.text(member))
			}
			v.Member = true
			obj.Set(key, v, member)
		case syntax.KindSpreadElement:
			spread := c.spreadSource(member)
			if spread == nil || spread.Object == nil || spread.Object.Array {
				continue
			}
			for _, k := range spread.Object.Keys() {
				v, _ := spread.Object.Get(k)
				obj.Set(k, v, spread.Object.Node(k))
			}
		}
	}
	return value.Compound(obj, c.text(n))
}

func firstOf(n *sitter.Node) *sitter.Node {
	children := syntax.NamedChildren(n)
	if len(children) == 0 {
		return n
	}
	return children[0]
}

func (c *Context) spreadSource(spread *sitter.Node) *value.Value {
	inner := syntax.NamedChildren(spread)
	if len(inner) == 0 {
		return nil
	}
	return c.Value(inner[0])
}

func (c *Context) identifierValue(n *sitter.Node) *value.Value {
	name := c.text(n)
	if e, ok := c.lookup(name); ok && e.Value != nil {
		v := e.Value.Clone()
		if e.TSValue != nil && !e.TSValue.Type.IsUnknown() && v.Type.IsUnknown() {
			v.Type = e.TSValue.Type.Clone()
		}
		return v
	}
	switch name {
	case "undefined":
		return value.UndefinedValue()
	case "NaN", "Infinity":
		return value.New(value.T(value.TypeNumber), name, name)
	}
	v := value.Unknown(name)
	v.Kind = "identifier"
	return v
}

// numericNamespaces are globals whose members are numbers or return them.
var numericNamespaces = map[string]bool{"Math": true, "Number": true}

func (c *Context) memberValue(n *sitter.Node) *value.Value {
	raw := c.text(n)
	object := syntax.Unwrap(syntax.Field(n, "object"))
	key, static := c.memberKey(n)

	if object != nil && object.Type() == syntax.KindIdentifier {
		name := c.text(object)
		e, bound := c.lookup(name)
		if bound && e.Namespace != nil && static {
			if member, ok := e.Namespace.Lookup(key); ok {
				member = c.st.run.follow(member)
				if member.Value != nil {
					v := member.Value.Clone()
					v.Member = true
					return v
				}
			}
			return c.unknownMember(raw)
		}
		if bound && e.Composition != nil && static && e.Composition.Rule.HasSuffix(key) {
			v := e.Value.Clone()
			v.Member = true
			return v
		}
		if !bound && numericNamespaces[name] {
			return c.memberOf(value.T(value.TypeNumber), raw)
		}
	}

	target := c.Value(object)
	if static && target.Object != nil {
		if member, ok := target.Object.Get(key); ok {
			v := member.Clone()
			v.Member = true
			return v
		}
	}
	if static && key == "length" {
		return c.memberOf(value.T(value.TypeNumber), raw)
	}
	return c.unknownMember(raw)
}

func (c *Context) memberKey(n *sitter.Node) (string, bool) {
	if n.Type() == syntax.KindMemberExpression {
		return c.text(syntax.Field(n, "property")), true
	}
	index := syntax.Unwrap(syntax.Field(n, "index"))
	if index == nil {
		return "", false
	}
	switch index.Type() {
	case syntax.KindString:
		return c.st.file.StringValue(index)
	case syntax.KindNumber:
		v := numberValue(c.text(index))
		if f, ok := v.Value.(float64); ok {
			return value.FormatNumber(f), true
		}
	}
	return "", false
}

func (c *Context) memberOf(t value.Type, raw string) *value.Value {
	v := c.expression(t, raw)
	v.Member = true
	return v
}

func (c *Context) unknownMember(raw string) *value.Value {
	v := value.Unknown(raw)
	v.Member = true
	return v
}

// nativeCalls type calls to global constructors and helpers.
var nativeCalls = map[string]string{
	"String":         value.TypeString,
	"Number":         value.TypeNumber,
	"Boolean":        value.TypeBoolean,
	"Symbol":         value.TypeSymbol,
	"BigInt":         value.TypeBigInt,
	"Array":          value.TypeArray,
	"Object":         value.TypeObject,
	"Date":           value.TypeString,
	"RegExp":         value.TypeRegExp,
	"Function":       value.TypeFunction,
	"parseInt":       value.TypeNumber,
	"parseFloat":     value.TypeNumber,
	"isNaN":          value.TypeBoolean,
	"isFinite":       value.TypeBoolean,
	"Array.isArray":  value.TypeBoolean,
	"Array.from":     value.TypeArray,
	"Array.of":       value.TypeArray,
	"Object.keys":    value.TypeArray,
	"Object.values":  value.TypeArray,
	"Object.entries": value.TypeArray,
	"Object.assign":  value.TypeObject,
	"JSON.stringify": value.TypeString,
	"Date.now":       value.TypeNumber,

	"Number.isInteger":     value.TypeBoolean,
	"Number.isSafeInteger": value.TypeBoolean,
	"Number.isFinite":      value.TypeBoolean,
	"Number.isNaN":         value.TypeBoolean,
}

// methodResults type well-known methods whatever their receiver.
var methodResults = map[string]string{
	"toString":    value.TypeString,
	"toFixed":     value.TypeString,
	"toPrecision": value.TypeString,
	"join":        value.TypeString,
	"trim":        value.TypeString,
	"trimStart":   value.TypeString,
	"trimEnd":     value.TypeString,
	"toUpperCase": value.TypeString,
	"toLowerCase": value.TypeString,
	"padStart":    value.TypeString,
	"padEnd":      value.TypeString,
	"repeat":      value.TypeString,
	"replaceAll":  value.TypeString,
	"charAt":      value.TypeString,
	"substring":   value.TypeString,
	"toISOString": value.TypeString,
	"indexOf":     value.TypeNumber,
	"lastIndexOf": value.TypeNumber,
	"findIndex":   value.TypeNumber,
	"charCodeAt":  value.TypeNumber,
	"getTime":     value.TypeNumber,
	"includes":    value.TypeBoolean,
	"startsWith":  value.TypeBoolean,
	"endsWith":    value.TypeBoolean,
	"some":        value.TypeBoolean,
	"every":       value.TypeBoolean,
}

func (c *Context) callValue(n *sitter.Node) *value.Value {
	raw := c.text(n)
	if v, _, ok := c.resolveComposition(n); ok {
		return v
	}
	callee := c.st.file.Callee(n)
	if callee == "require" {
		if v := c.requireValue(n); v != nil {
			return v
		}
	}
	if t := c.callType(n); !t.IsUnknown() {
		v := c.expression(t, raw)
		v.Kind = "call"
		return v
	}
	v := value.Unknown(raw)
	v.Kind = "call"
	return v
}

// callType is the type of a call that is not a composition call: a native
// constructor, a local function's return type, or a well-known method.
func (c *Context) callType(n *sitter.Node) value.Type {
	callee := c.st.file.Callee(n)
	fn := syntax.Unwrap(syntax.Field(n, "function"))
	if callee != "" {
		root, _, qualified := strings.Cut(callee, ".")
		if _, shadowed := c.scope.Get(root); !shadowed {
			if t, ok := nativeCalls[callee]; ok {
				return value.T(t)
			}
			if qualified && numericNamespaces[root] {
				return value.T(value.TypeNumber)
			}
		}
		if fnNode, owner := c.functionNode(fn); fnNode != nil {
			return owner.ReturnType(fnNode)
		}
	}
	if fn != nil && fn.Type() == syntax.KindMemberExpression {
		if t, ok := methodResults[c.text(syntax.Field(fn, "property"))]; ok {
			return value.T(t)
		}
	}
	if fn != nil && syntax.IsFunction(fn.Type()) {
		return c.ReturnType(fn)
	}
	return nil
}

// functionNode finds the function a callee refers to, with the context of
// the file that declares it.
func (c *Context) functionNode(callee *sitter.Node) (*sitter.Node, *Context) {
	if callee == nil {
		return nil, nil
	}
	var e *scope.Entry
	switch callee.Type() {
	case syntax.KindIdentifier:
		found, ok := c.lookup(c.text(callee))
		if !ok {
			return nil, nil
		}
		e = found
	case syntax.KindMemberExpression:
		object := syntax.Unwrap(syntax.Field(callee, "object"))
		if object == nil || object.Type() != syntax.KindIdentifier {
			return nil, nil
		}
		holder, ok := c.lookup(c.text(object))
		if !ok || holder.Namespace == nil {
			return nil, nil
		}
		found, ok := holder.Namespace.Lookup(c.text(syntax.Field(callee, "property")))
		if !ok {
			return nil, nil
		}
		e = c.st.run.follow(found)
	default:
		return nil, nil
	}
	if e == nil || !e.Function {
		return nil, nil
	}
	fn := functionOf(e.Nodes.Value)
	if fn == nil {
		return nil, nil
	}
	return fn, c.contextFor(e)
}

// functionOf returns the function node defined by a declaration node.
func functionOf(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if syntax.IsFunction(n.Type()) {
		return n
	}
	switch n.Type() {
	case syntax.KindVariableDeclarator, syntax.KindPair:
		v := syntax.Unwrap(syntax.Field(n, "value"))
		if v != nil && syntax.IsFunction(v.Type()) {
			return v
		}
	}
	return nil
}

func (c *Context) newValue(n *sitter.Node) *value.Value {
	raw := c.text(n)
	ctor := c.st.file.DottedName(syntax.Unwrap(syntax.Field(n, "constructor")))
	if ctor == "" {
		v := value.Unknown(raw)
		v.Kind = "new"
		return v
	}
	t := ctor
	switch ctor {
	case "String":
		t = value.TypeString
	case "Number":
		t = value.TypeNumber
	case "Boolean":
		t = value.TypeBoolean
	case "Array":
		t = value.TypeArray
	case "Object":
		t = value.TypeObject
	}
	if args := syntax.TypeArguments(n); len(args) > 0 {
		t = c.text(syntax.Field(n, "constructor")) + c.text(syntax.FirstNamed(n, syntax.KindTypeArguments))
	}
	v := c.expression(value.T(t), raw)
	v.Kind = "new"
	return v
}

func (c *Context) assertionValue(n *sitter.Node) *value.Value {
	children := syntax.NamedChildren(n)
	if len(children) == 0 {
		return value.Unknown(c.text(n))
	}
	v := c.Value(children[0])
	if len(children) < 2 {
		return v
	}
	typeNode := children[len(children)-1]
	if c.text(typeNode) == "const" {
		return v
	}
	if t := c.TSType(typeNode); !t.IsUnknown() {
		v = v.WithType(t)
	}
	return v
}
