package script

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// maxTypeDepth bounds alias expansion through recursive declarations.
const maxTypeDepth = 16

// TSType reads a type node: an annotation, a type argument or any type
// expression. Local aliases of non-object types are expanded; interfaces and
// object aliases keep their name.
func (c *Context) TSType(n *sitter.Node) value.Type {
	ts := c.tsValue(n)
	if ts == nil {
		return value.T(value.TypeUnknown)
	}
	return ts.Type
}

// tsValue returns the memoized TSValue of a type node.
func (c *Context) tsValue(n *sitter.Node) *value.TSValue {
	if n == nil {
		return nil
	}
	key := syntax.Key(n)
	if ts, ok := c.st.tsMemo[key]; ok {
		return ts
	}
	ts := &value.TSValue{Type: c.typeOfNode(n, 0), Node: n, Kind: n.Type()}
	c.st.tsMemo[key] = ts
	return ts
}

func (c *Context) typeOfNode(n *sitter.Node, depth int) value.Type {
	if n == nil || depth > maxTypeDepth {
		return value.T(value.TypeUnknown)
	}
	text := strings.TrimSpace(c.text(n))
	switch n.Type() {
	case syntax.KindTypeAnnotation, "omitting_type_annotation", "opting_type_annotation", "asserts_annotation":
		inner := syntax.NamedChildren(n)
		if len(inner) == 0 {
			return value.T(value.TypeUnknown)
		}
		return c.typeOfNode(inner[0], depth)
	case syntax.KindPredefinedType:
		return value.T(text)
	case syntax.KindParenthesizedType:
		inner := syntax.NamedChildren(n)
		if len(inner) == 1 {
			return c.typeOfNode(inner[0], depth)
		}
	case syntax.KindUnionType:
		var parts []value.Type
		for _, member := range syntax.NamedChildren(n) {
			parts = append(parts, c.typeOfNode(member, depth))
		}
		return value.Union(parts...)
	case syntax.KindLiteralType:
		inner := syntax.NamedChildren(n)
		if len(inner) == 1 {
			switch inner[0].Type() {
			case syntax.KindNull:
				return value.T(value.TypeNull)
			case syntax.KindUndefined:
				return value.T(value.TypeUndefined)
			}
		}
		return value.T(text)
	case syntax.KindTypeIdentifier:
		return c.namedType(text, depth)
	}
	if text == "" {
		return value.T(value.TypeUnknown)
	}
	return value.T(text)
}

// namedType expands a local alias whose value is not an object type.
func (c *Context) namedType(name string, depth int) value.Type {
	decl, owner := c.lookupType(name)
	if decl == nil || decl.Type() != syntax.KindTypeAliasDeclaration {
		return value.T(name)
	}
	if syntax.Field(decl, "type_parameters") != nil {
		return value.T(name)
	}
	target := syntax.Field(decl, "value")
	if target == nil || target.Type() == syntax.KindObjectType {
		return value.T(name)
	}
	return owner.typeOfNode(target, depth+1)
}

// lookupType finds a type declaration, locally or through an import, and
// the context of the file declaring it.
func (c *Context) lookupType(name string) (*sitter.Node, *Context) {
	if decl, ok := c.st.types[name]; ok {
		return decl, c.st.root
	}
	imp, ok := c.st.imports[name]
	if !ok {
		return nil, nil
	}
	m := c.st.run.loadFrom(c.st, imp.Source, nil)
	if m == nil || m.state == nil {
		return nil, nil
	}
	imported := imp.Imported
	if imported == "default" || imported == "*" {
		return nil, nil
	}
	return m.state.root.lookupExportedType(imported, 0)
}

func (c *Context) lookupExportedType(name string, depth int) (*sitter.Node, *Context) {
	if depth > maxTypeDepth {
		return nil, nil
	}
	if decl, ok := c.st.types[name]; ok {
		return decl, c
	}
	for _, alias := range c.st.localExports {
		if alias.exported == name {
			if decl, owner := c.lookupType(alias.local); decl != nil {
				return decl, owner
			}
		}
	}
	if decl, owner := c.lookupType(name); decl != nil {
		return decl, owner
	}
	for _, spec := range c.st.stars {
		m := c.st.run.loadFrom(c.st, spec, nil)
		if m == nil || m.state == nil {
			continue
		}
		if decl, owner := m.state.root.lookupExportedType(name, depth+1); decl != nil {
			return decl, owner
		}
	}
	return nil, nil
}

// typeMember is one property or call signature of an object-like type.
type typeMember struct {
	Name     string
	Node     *sitter.Node
	Type     value.Type
	Optional bool
	// Params and Call are set for call signatures, `(e: 'change'): void`.
	Call   bool
	Method bool
	Params []*sitter.Node
	Owner  *Context
}

// typeMembers lists the members of an object type, an interface, or an
// alias to either, following `extends` clauses and intersections.
func (c *Context) typeMembers(n *sitter.Node) []typeMember {
	return c.collectMembers(n, 0, map[syntax.NodeKey]bool{})
}

func (c *Context) collectMembers(n *sitter.Node, depth int, seen map[syntax.NodeKey]bool) []typeMember {
	if n == nil || depth > maxTypeDepth || seen[syntax.Key(n)] {
		return nil
	}
	seen[syntax.Key(n)] = true

	switch n.Type() {
	case syntax.KindTypeAnnotation, syntax.KindParenthesizedType, syntax.KindTypeArguments:
		var out []typeMember
		for _, inner := range syntax.NamedChildren(n) {
			out = append(out, c.collectMembers(inner, depth, seen)...)
		}
		return out
	case syntax.KindIntersectionType:
		var out []typeMember
		for _, part := range syntax.NamedChildren(n) {
			out = mergeMembers(out, c.collectMembers(part, depth+1, seen))
		}
		return out
	case syntax.KindTypeIdentifier:
		decl, owner := c.lookupType(c.text(n))
		if decl == nil {
			return nil
		}
		return owner.collectMembers(decl, depth+1, seen)
	case syntax.KindGenericType:
		name := syntax.Field(n, "name")
		if name == nil {
			return nil
		}
		return c.collectMembers(name, depth+1, seen)
	case syntax.KindTypeAliasDeclaration:
		return c.collectMembers(syntax.Field(n, "value"), depth+1, seen)
	case syntax.KindInterfaceDeclaration:
		var out []typeMember
		for _, clause := range syntax.NamedChildren(n) {
			if clause.Type() != syntax.KindExtendsTypeClause {
				continue
			}
			for _, base := range syntax.NamedChildren(clause) {
				out = mergeMembers(out, c.collectMembers(base, depth+1, seen))
			}
		}
		return mergeMembers(out, c.bodyMembers(syntax.Field(n, "body")))
	case syntax.KindObjectType, syntax.KindInterfaceBody:
		return c.bodyMembers(n)
	}
	return nil
}

func mergeMembers(base, extra []typeMember) []typeMember {
	index := map[string]int{}
	for i, m := range base {
		if !m.Call {
			index[m.Name] = i
		}
	}
	for _, m := range extra {
		if i, ok := index[m.Name]; ok && !m.Call {
			base[i] = m
			continue
		}
		base = append(base, m)
	}
	return base
}

func (c *Context) bodyMembers(body *sitter.Node) []typeMember {
	var out []typeMember
	f := c.st.file
	for _, member := range syntax.NamedChildren(body) {
		switch member.Type() {
		case syntax.KindPropertySignature:
			name, ok := f.PropertyKey(syntax.Field(member, "name"))
			if !ok {
				continue
			}
			typeNode := syntax.Field(member, "type")
			t := value.T(value.TypeUnknown)
			if typeNode != nil {
				t = c.TSType(typeNode)
			}
			out = append(out, typeMember{
				Name:     name,
				Node:     member,
				Type:     t,
				Optional: syntax.HasToken(member, syntax.KindOptionalMarker),
				Params:   c.functionTypeParams(typeNode),
				Owner:    c,
			})
		case syntax.KindMethodSignature:
			name, ok := f.PropertyKey(syntax.Field(member, "name"))
			if !ok {
				continue
			}
			out = append(out, typeMember{
				Name:     name,
				Node:     member,
				Type:     value.T(value.TypeFunction),
				Optional: syntax.HasToken(member, syntax.KindOptionalMarker),
				Method:   true,
				Params:   paramList(syntax.Field(member, "parameters")),
				Owner:    c,
			})
		case syntax.KindCallSignature:
			out = append(out, typeMember{
				Node:   member,
				Type:   value.T(value.TypeFunction),
				Call:   true,
				Params: paramList(syntax.Field(member, "parameters")),
				Owner:  c,
			})
		}
	}
	return out
}

// functionTypeParams returns the parameters of a function type annotation,
// as in `change: [id: number]` or `change: (id: number) => void`.
func (c *Context) functionTypeParams(typeNode *sitter.Node) []*sitter.Node {
	if typeNode == nil {
		return nil
	}
	inner := typeNode
	if inner.Type() == syntax.KindTypeAnnotation {
		children := syntax.NamedChildren(inner)
		if len(children) == 0 {
			return nil
		}
		inner = children[0]
	}
	switch inner.Type() {
	case "function_type":
		return paramList(syntax.Field(inner, "parameters"))
	case "tuple_type":
		return syntax.NamedChildren(inner)
	}
	return nil
}

func paramList(params *sitter.Node) []*sitter.Node {
	return syntax.NamedChildren(params)
}

// literalString returns the value of a string literal type like 'change'.
func (c *Context) literalString(typeNode *sitter.Node) (string, bool) {
	if typeNode == nil {
		return "", false
	}
	if typeNode.Type() == syntax.KindTypeAnnotation {
		children := syntax.NamedChildren(typeNode)
		if len(children) == 0 {
			return "", false
		}
		typeNode = children[0]
	}
	if typeNode.Type() != syntax.KindLiteralType {
		return "", false
	}
	inner := syntax.NamedChildren(typeNode)
	if len(inner) != 1 {
		return "", false
	}
	return c.st.file.StringValue(inner[0])
}
