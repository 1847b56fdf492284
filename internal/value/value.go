package value

import (
	"strconv"

	sitter "github.com/smacker/go-tree-sitter"
)

// Value is what the engine knows about an expression without running it.
//
// Value holds the native Go form when it is statically known: string,
// float64, bool, nil for null, Undefined, map[string]any for objects and
// []any for arrays. Raw is the source text used for display. Object, when
// set, decomposes a compound value member by member so later member access
// does not walk the source again; its keys always match Value's own keys
// (object) or length (array).
type Value struct {
	Type       Type
	Value      any
	Raw        string
	Object     *Object
	Member     bool
	Function   bool
	Expression bool
	// Kind is a hint about how the value was produced, e.g. "call",
	// "identifier" or "new".
	Kind string
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the native form of the undefined value.
var Undefined any = undefined{}

// IsUndefined reports whether v is absent or holds undefined.
func IsUndefined(v *Value) bool {
	return v == nil || v.Value == Undefined
}

// New builds a value of an explicit type.
func New(t Type, native any, raw string) *Value {
	return &Value{Type: t, Value: native, Raw: raw}
}

// Unknown is the degraded value: the verbatim source typed "unknown".
func Unknown(raw string) *Value {
	return &Value{Type: T(TypeUnknown), Value: raw, Raw: raw}
}

// String builds a string value; raw is its source text.
func String(s, raw string) *Value {
	return &Value{Type: T(TypeString), Value: s, Raw: raw}
}

// Number builds a number value. An empty raw is rendered from n.
func Number(n float64, raw string) *Value {
	if raw == "" {
		raw = FormatNumber(n)
	}
	return &Value{Type: T(TypeNumber), Value: n, Raw: raw}
}

// Boolean builds a boolean value.
func Boolean(b bool) *Value {
	return &Value{Type: T(TypeBoolean), Value: b, Raw: strconv.FormatBool(b)}
}

// Null builds the null value.
func Null() *Value {
	return &Value{Type: T(TypeNull), Raw: "null"}
}

// UndefinedValue builds the undefined value.
func UndefinedValue() *Value {
	return &Value{Type: T(TypeUndefined), Value: Undefined, Raw: "undefined"}
}

// Func builds a function value.
func Func(raw string) *Value {
	return &Value{Type: T(TypeFunction), Value: raw, Raw: raw, Function: true}
}

// Compound builds an object or array value from its decomposition.
func Compound(obj *Object, raw string) *Value {
	t := TypeObject
	if obj.Array {
		t = TypeArray
	}
	return &Value{Type: T(t), Value: obj.Native(), Raw: raw, Object: obj}
}

// Rest is the opaque value captured by a rest element whose remainder
// cannot be enumerated.
func Rest(name string) *Value {
	raw := "..." + name
	return &Value{Type: T(TypeUnknown), Value: raw, Raw: raw}
}

// FormatNumber renders n the way a script would print it.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Clone returns a copy safe to modify. Decomposed members are shared; they
// are never modified after construction.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := *v
	c.Type = v.Type.Clone()
	if v.Object != nil {
		c.Object = v.Object.Clone()
	}
	return &c
}

// WithType returns a copy of v retyped as t.
func (v *Value) WithType(t Type) *Value {
	c := v.Clone()
	c.Type = t.Clone()
	return c
}

// Known reports whether the native value is statically known.
func (v *Value) Known() bool {
	if v == nil || v.Type.IsUnknown() || v.Function {
		return false
	}
	switch v.Value.(type) {
	case string, float64, bool, nil, undefined, map[string]any, []any:
		return true
	}
	return false
}

// TSValue is a type derived purely from annotations, aliases and interfaces,
// independent from value inference.
type TSValue struct {
	Type            Type
	Node            *sitter.Node
	Kind            string
	Computed        bool
	CompositionType string
}
