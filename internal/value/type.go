// Package value models statically known (or partially known) runtime values
// of component scripts together with their types.
package value

import (
	"encoding/json"
	"strings"
)

// Type names. Structural signatures and user types (e.g. "Promise<string>",
// "Array<User>", "{ id: number }") are carried verbatim next to these.
const (
	TypeUnknown   = "unknown"
	TypeAny       = "any"
	TypeString    = "string"
	TypeNumber    = "number"
	TypeBigInt    = "bigint"
	TypeBoolean   = "boolean"
	TypeBinary    = "binary"
	TypeFunction  = "function"
	TypeObject    = "object"
	TypeArray     = "array"
	TypeNull      = "null"
	TypeUndefined = "undefined"
	TypeVoid      = "void"
	TypeSymbol    = "symbol"
	TypeRegExp    = "RegExp"
	TypeNever     = "never"
)

// Type is an ordered list of alternatives. One element is a plain type, more
// than one a union. The empty Type reads as unknown.
type Type []string

// T builds a Type, flattening " | " unions and dropping duplicates while
// keeping the first occurrence order.
func T(names ...string) Type {
	var out Type
	seen := map[string]bool{}
	for _, name := range names {
		for _, part := range splitUnion(name) {
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// Union merges types in order.
func Union(types ...Type) Type {
	var names []string
	for _, t := range types {
		names = append(names, t...)
	}
	return T(names...)
}

func splitUnion(name string) []string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, "|") {
		return []string{name}
	}
	var parts []string
	depth := 0
	start := 0
	for i, r := range name {
		switch r {
		case '<', '(', '{', '[':
			depth++
		case '>':
			if i > 0 && name[i-1] == '=' {
				continue
			}
			depth--
		case ')', '}', ']':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(name[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(name[start:]))
	return parts
}

// IsUnknown reports whether nothing useful is known: the empty type, "unknown"
// or "any".
func (t Type) IsUnknown() bool {
	if len(t) == 0 {
		return true
	}
	return len(t) == 1 && (t[0] == TypeUnknown || t[0] == TypeAny)
}

// Is reports whether t is exactly the single type name.
func (t Type) Is(name string) bool {
	return len(t) == 1 && t[0] == name
}

// Has reports whether name is one of the alternatives.
func (t Type) Has(name string) bool {
	for _, n := range t {
		if n == name {
			return true
		}
	}
	return false
}

// Equal compares alternatives in order.
func (t Type) Equal(o Type) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	if len(t) == 0 {
		return TypeUnknown
	}
	return strings.Join(t, " | ")
}

// Clone returns an independent copy.
func (t Type) Clone() Type {
	if t == nil {
		return nil
	}
	return append(Type(nil), t...)
}

// MarshalJSON writes a single type as a string and a union as an array.
func (t Type) MarshalJSON() ([]byte, error) {
	switch len(t) {
	case 0:
		return json.Marshal(TypeUnknown)
	case 1:
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts both forms written by MarshalJSON.
func (t *Type) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = T(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = T(many...)
	return nil
}

// Promise wraps t the way an async function wraps its return type.
func Promise(t Type) Type {
	return T("Promise<" + t.String() + ">")
}

// Awaited unwraps Promise<T>; other types are returned unchanged.
func Awaited(t Type) Type {
	if len(t) == 1 && strings.HasPrefix(t[0], "Promise<") && strings.HasSuffix(t[0], ">") {
		return T(t[0][len("Promise<") : len(t[0])-1])
	}
	return t
}
