package syntax

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// NodeKey identifies a node within one tree. Side tables use it instead of
// storing state on the nodes themselves.
type NodeKey struct {
	Start uint32
	End   uint32
	Type  string
}

// Key returns the identity of n. The zero key stands for nil.
func Key(n *sitter.Node) NodeKey {
	if n == nil {
		return NodeKey{}
	}
	return NodeKey{Start: n.StartByte(), End: n.EndByte(), Type: n.Type()}
}

// Field is ChildByFieldName tolerant of a nil receiver.
func Field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// NamedChildren lists the named children of n, comments excluded.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child.Type() == KindComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

// Children lists every child of n, anonymous tokens included.
func Children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// HasToken reports whether n has a direct anonymous child of the given type,
// e.g. "async", "?" or "default".
func HasToken(n *sitter.Node, token string) bool {
	for _, child := range Children(n) {
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

// FirstNamed returns the first named child of the given type.
func FirstNamed(n *sitter.Node, kind string) *sitter.Node {
	for _, child := range NamedChildren(n) {
		if child.Type() == kind {
			return child
		}
	}
	return nil
}

// Arguments returns the argument expressions of a call or new expression.
func Arguments(call *sitter.Node) []*sitter.Node {
	args := Field(call, "arguments")
	if args == nil || args.Type() != KindArguments {
		return nil
	}
	return NamedChildren(args)
}

// TypeArguments returns the type arguments of a call, e.g. the `Props` in
// defineProps<Props>().
func TypeArguments(call *sitter.Node) []*sitter.Node {
	args := Field(call, "type_arguments")
	if args == nil {
		args = FirstNamed(call, KindTypeArguments)
	}
	return NamedChildren(args)
}

// Unwrap strips parentheses and non-null assertions around an expression.
func Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case KindParenthesized:
			inner := NamedChildren(n)
			if len(inner) == 0 {
				return n
			}
			n = inner[len(inner)-1]
		case KindNonNullExpression:
			inner := NamedChildren(n)
			if len(inner) == 0 {
				return n
			}
			n = inner[0]
		default:
			return n
		}
	}
	return nil
}

// Callee returns the dotted name of a call target, like "defineProps" or
// "Vue.extend". The empty string means the callee is not a plain path.
func (f *File) Callee(call *sitter.Node) string {
	if call == nil {
		return ""
	}
	return f.DottedName(Unwrap(Field(call, "function")))
}

// DottedName renders identifiers and member chains as dotted paths.
func (f *File) DottedName(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case KindIdentifier, KindThis, KindPropertyIdent, KindPrivateIdent:
		return f.Text(n)
	case KindMemberExpression:
		obj := f.DottedName(Unwrap(Field(n, "object")))
		if obj == "" {
			return ""
		}
		return obj + "." + f.Text(Field(n, "property"))
	}
	return ""
}

// StringValue decodes a string literal, or a template literal without
// substitutions.
func (f *File) StringValue(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case KindString:
	case KindTemplateString:
		if FirstNamed(n, KindTemplateSubst) != nil {
			return "", false
		}
	default:
		return "", false
	}
	var b strings.Builder
	for _, child := range NamedChildren(n) {
		switch child.Type() {
		case KindStringFragment:
			b.WriteString(f.Text(child))
		case KindEscapeSequence:
			b.WriteString(unescape(f.Text(child)))
		}
	}
	if b.Len() == 0 && n.NamedChildCount() == 0 {
		// Some grammar versions expose no fragments; fall back to the text.
		text := f.Text(n)
		if len(text) >= 2 {
			return text[1 : len(text)-1], true
		}
	}
	return b.String(), true
}

func unescape(seq string) string {
	if s, err := strconv.Unquote(`"` + seq + `"`); err == nil {
		return s
	}
	return strings.TrimPrefix(seq, `\`)
}

// PropertyKey returns the static name of an object key node.
func (f *File) PropertyKey(key *sitter.Node) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case KindPropertyIdent, KindIdentifier, KindShorthandProp, KindShorthandPattern, KindPrivateIdent, KindNumber:
		return f.Text(key), true
	case KindString:
		return f.StringValue(key)
	case KindComputedPropKey:
		inner := NamedChildren(key)
		if len(inner) == 1 {
			return f.StringValue(inner[0])
		}
	}
	return "", false
}

// MemberName returns the key of an object member: a pair, a shorthand
// property or a method definition.
func (f *File) MemberName(member *sitter.Node) (string, bool) {
	switch member.Type() {
	case KindPair, KindMethodDefinition, KindPairPattern:
		key := Field(member, "key")
		if key == nil {
			key = Field(member, "name")
		}
		return f.PropertyKey(key)
	case KindShorthandProp, KindShorthandPattern:
		return f.Text(member), true
	}
	return "", false
}

// ObjectMember finds the member named key in an object literal.
func (f *File) ObjectMember(object *sitter.Node, key string) *sitter.Node {
	if object == nil || object.Type() != KindObject {
		return nil
	}
	for _, member := range NamedChildren(object) {
		if name, ok := f.MemberName(member); ok && name == key {
			return member
		}
	}
	return nil
}

// MemberValue returns the value node of an object member. For a shorthand
// property it is the property itself, for a method definition the method.
func MemberValue(member *sitter.Node) *sitter.Node {
	if member == nil {
		return nil
	}
	switch member.Type() {
	case KindPair, KindPairPattern:
		return Field(member, "value")
	}
	return member
}

// Statement climbs from n to the node owning its documentation comment:
// the enclosing declaration, or the export wrapping it.
func Statement(n *sitter.Node) *sitter.Node {
	cur := n
	for cur != nil {
		parent := cur.Parent()
		if parent == nil {
			return cur
		}
		switch parent.Type() {
		case KindProgram, KindStatementBlock, KindObject, KindArray, KindClassBody, KindInterfaceBody, KindObjectType:
			return cur
		}
		cur = parent
	}
	return n
}
