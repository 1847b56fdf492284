package script

import (
	"math"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// TypeOf returns the type of n without materializing a full value where a
// cheaper path exists.
func (c *Context) TypeOf(n *sitter.Node) value.Type {
	if n == nil {
		return value.T(value.TypeUndefined)
	}
	switch n.Type() {
	case syntax.KindBinaryExpression:
		left := c.TypeOf(syntax.Field(n, "left"))
		right := c.TypeOf(syntax.Field(n, "right"))
		return binaryType(c.operator(n), left, right)
	case syntax.KindAugmentedAssign:
		op := strings.TrimSuffix(c.operator(n), "=")
		return binaryType(op, c.TypeOf(syntax.Field(n, "left")), c.TypeOf(syntax.Field(n, "right")))
	case syntax.KindAssignment:
		return c.TypeOf(syntax.Field(n, "right"))
	case syntax.KindUnaryExpression:
		return unaryType(c.operator(n))
	case syntax.KindUpdateExpression:
		return value.T(value.TypeNumber)
	case syntax.KindTernaryExpression:
		consequent := c.TypeOf(syntax.Field(n, "consequence"))
		alternate := c.TypeOf(syntax.Field(n, "alternative"))
		if consequent.Equal(alternate) {
			return consequent
		}
		return value.Union(consequent, alternate)
	case syntax.KindParenthesized, syntax.KindNonNullExpression:
		if inner := syntax.Unwrap(n); inner != n {
			return c.TypeOf(inner)
		}
	case syntax.KindArrowFunction, syntax.KindFunction, syntax.KindFunctionExpression,
		syntax.KindGeneratorFunction, syntax.KindMethodDefinition, syntax.KindFunctionDeclaration:
		return value.T(value.TypeFunction)
	}
	return c.Value(n).Type
}

func (c *Context) operator(n *sitter.Node) string {
	if op := syntax.Field(n, "operator"); op != nil {
		return c.text(op)
	}
	for _, child := range syntax.Children(n) {
		if !child.IsNamed() {
			return child.Type()
		}
	}
	return ""
}

// binaryType applies the operator typing policy.
func binaryType(op string, left, right value.Type) value.Type {
	switch op {
	case "&", "|", "^", "<<", ">>", ">>>":
		return value.T(value.TypeBinary)
	case "==", "!=", "===", "!==", "<", "<=", ">", ">=", "&&", "in", "instanceof":
		return value.T(value.TypeBoolean)
	case "||", "??":
		switch {
		case left.Equal(right):
			return left.Clone()
		case left.Is(value.TypeString), right.Is(value.TypeString):
			return value.T(value.TypeString)
		}
		return value.T(value.TypeBoolean)
	case "-", "*", "/", "%", "**":
		return value.T(value.TypeNumber)
	case "+":
		if left.Is(value.TypeNumber) && right.Is(value.TypeNumber) {
			return value.T(value.TypeNumber)
		}
		return value.T(value.TypeString)
	}
	return value.T(value.TypeUnknown)
}

func unaryType(op string) value.Type {
	switch op {
	case "typeof", "!":
		return value.T(value.TypeBoolean)
	case "~":
		return value.T(value.TypeBinary)
	case "+", "-":
		return value.T(value.TypeNumber)
	}
	return value.T(value.TypeUnknown)
}

func (c *Context) binaryValue(n *sitter.Node) *value.Value {
	raw := c.text(n)
	op := c.operator(n)
	left := c.Value(syntax.Field(n, "left"))
	right := c.Value(syntax.Field(n, "right"))
	t := binaryType(op, left.Type, right.Type)
	if folded, ok := fold(op, left, right); ok {
		return &value.Value{Type: t, Value: folded, Raw: raw, Expression: true}
	}
	return c.expression(t, raw)
}

// fold computes binary expressions over literal operands.
func fold(op string, left, right *value.Value) (any, bool) {
	if !left.Known() || !right.Known() {
		return nil, false
	}
	ln, lnum := left.Value.(float64)
	rn, rnum := right.Value.(float64)
	ls, lstr := left.Value.(string)
	rs, rstr := right.Value.(string)
	lb, lbool := left.Value.(bool)
	rb, rbool := right.Value.(bool)

	switch {
	case lnum && rnum:
		switch op {
		case "+":
			return ln + rn, true
		case "-":
			return ln - rn, true
		case "*":
			return ln * rn, true
		case "/":
			return ln / rn, true
		case "%":
			return math.Mod(ln, rn), true
		case "**":
			return math.Pow(ln, rn), true
		case "<":
			return ln < rn, true
		case "<=":
			return ln <= rn, true
		case ">":
			return ln > rn, true
		case ">=":
			return ln >= rn, true
		case "===", "==":
			return ln == rn, true
		case "!==", "!=":
			return ln != rn, true
		}
	case op == "+" && (lstr || rstr) && (lstr || lnum) && (rstr || rnum):
		return display(left) + display(right), true
	case lstr && rstr:
		switch op {
		case "===", "==":
			return ls == rs, true
		case "!==", "!=":
			return ls != rs, true
		}
	case lbool && rbool:
		switch op {
		case "&&":
			return lb && rb, true
		case "===", "==":
			return lb == rb, true
		case "!==", "!=":
			return lb != rb, true
		}
	}
	return nil, false
}

func display(v *value.Value) string {
	switch x := v.Value.(type) {
	case string:
		return x
	case float64:
		return value.FormatNumber(x)
	}
	return v.Raw
}

func (c *Context) unaryValue(n *sitter.Node) *value.Value {
	raw := c.text(n)
	op := c.operator(n)
	t := unaryType(op)
	if t.IsUnknown() {
		return value.Unknown(raw)
	}
	arg := c.Value(syntax.Field(n, "argument"))
	if arg.Known() {
		switch x := arg.Value.(type) {
		case bool:
			if op == "!" {
				return &value.Value{Type: t, Value: !x, Raw: raw, Expression: true}
			}
		case float64:
			switch op {
			case "-":
				return value.Number(-x, raw)
			case "+":
				return value.Number(x, raw)
			}
		}
	}
	return c.expression(t, raw)
}

// ReturnType infers what fn returns. The declared annotation wins; otherwise
// the return statements (or the expression body) are typed in a context
// binding the parameters. Functions returning nothing are "void" and async
// functions wrap their result in Promise. The result is computed once per
// node.
func (c *Context) ReturnType(fn *sitter.Node) value.Type {
	if fn == nil {
		return value.T(value.TypeUnknown)
	}
	st := c.st
	key := syntax.Key(fn)
	if t, ok := st.returns[key]; ok {
		return t
	}
	if st.busy[key] {
		return value.T(value.TypeUnknown)
	}
	st.busy[key] = true
	defer delete(st.busy, key)

	t := c.inferReturn(fn)
	st.returns[key] = t
	return t
}

func (c *Context) inferReturn(fn *sitter.Node) value.Type {
	async := syntax.HasToken(fn, syntax.KindAsync)
	if declared := syntax.Field(fn, "return_type"); declared != nil {
		return c.TSType(declared)
	}
	body := syntax.Field(fn, "body")
	if body == nil {
		return value.T(value.TypeVoid)
	}

	inner := c.child()
	inner.bindParams(fn)

	var t value.Type
	if body.Type() != syntax.KindStatementBlock {
		t = inner.TypeOf(body)
	} else {
		var returns []value.Type
		inner.walkBody(body, func(ret *sitter.Node) {
			if arg := firstOf(ret); arg != ret {
				returns = append(returns, inner.TypeOf(arg))
			}
		})
		if len(returns) == 0 {
			t = value.T(value.TypeVoid)
		} else {
			t = value.Union(returns...)
		}
	}
	if len(t) == 0 {
		t = value.T(value.TypeUnknown)
	}
	if async {
		return value.Promise(value.Awaited(t))
	}
	return t
}

// walkBody binds the declarations of a function body in order and reports
// its return statements, without entering nested functions.
func (c *Context) walkBody(block *sitter.Node, onReturn func(*sitter.Node)) {
	for _, stmt := range syntax.NamedChildren(block) {
		switch stmt.Type() {
		case syntax.KindReturnStatement:
			onReturn(stmt)
		case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
			c.bindDeclaration(stmt)
		case syntax.KindFunctionDeclaration, syntax.KindGeneratorDeclaration:
			c.bindFunction(stmt)
		case syntax.KindExpressionStatement:
			c.bindExpression(stmt)
		case syntax.KindClassDeclaration:
			c.bindClass(stmt)
		default:
			if syntax.IsFunction(stmt.Type()) || stmt.Type() == syntax.KindClass {
				continue
			}
			c.walkBody(stmt, onReturn)
		}
	}
}
