package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	t.Run("flattens and dedupes", func(t *testing.T) {
		got := T("number | string", "string", "boolean")
		assert.Equal(t, Type{"number", "string", "boolean"}, got)
	})

	t.Run("keeps nested unions", func(t *testing.T) {
		got := T("Array<string | number> | null")
		assert.Equal(t, Type{"Array<string | number>", "null"}, got)

		got = T("(a: string | number) => void")
		assert.Equal(t, Type{"(a: string | number) => void"}, got)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.True(t, Type(nil).IsUnknown())
		assert.True(t, T(TypeAny).IsUnknown())
		assert.False(t, T(TypeString).IsUnknown())
		assert.Equal(t, "unknown", Type(nil).String())
	})

	t.Run("union order", func(t *testing.T) {
		assert.Equal(t, Type{"number", "string"}, Union(T("number"), T("string"), T("number")))
	})

	t.Run("promise", func(t *testing.T) {
		p := Promise(T("string"))
		assert.Equal(t, Type{"Promise<string>"}, p)
		assert.Equal(t, Type{"string"}, Awaited(p))
		assert.Equal(t, Type{"number"}, Awaited(T("number")))
	})
}

func TestTypeJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Type `json:"a"`
		B Type `json:"b"`
	}{T("string"), T("number", "string")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"string","b":["number","string"]}`, string(data))

	var back struct {
		A Type `json:"a"`
		B Type `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, Type{"string"}, back.A)
	assert.Equal(t, Type{"number", "string"}, back.B)
}

func TestObject(t *testing.T) {
	obj := NewObject(false)
	obj.Set("a", Number(1, "1"), nil)
	obj.Set("b", String("x", "'x'"), nil)
	obj.Set("a", Number(2, "2"), nil)

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v := Compound(obj, "{ a: 2, b: 'x' }")
	assert.Equal(t, Type{"object"}, v.Type)
	assert.Equal(t, map[string]any{"a": 2.0, "b": "x"}, v.Value)

	clone := obj.Clone()
	clone.Delete("a")
	assert.Equal(t, []string{"b"}, clone.Keys())
	assert.Equal(t, 2, obj.Len())

	arr := NewObject(true)
	arr.Append(Number(1, ""), nil)
	arr.Append(Number(2, ""), nil)
	arr.Append(Number(3, ""), nil)
	assert.Equal(t, []any{1.0, 2.0, 3.0}, arr.Native())
	assert.Equal(t, []any{2.0, 3.0}, arr.Slice(1).Native())
}

func TestValue(t *testing.T) {
	u := Unknown("foo()")
	assert.True(t, u.Type.IsUnknown())
	assert.Equal(t, "foo()", u.Value)
	assert.False(t, u.Known())

	assert.True(t, IsUndefined(nil))
	assert.True(t, IsUndefined(UndefinedValue()))
	assert.False(t, IsUndefined(Null()))

	n := Number(1.5, "")
	assert.Equal(t, "1.5", n.Raw)
	c := n.WithType(T(TypeUnknown))
	assert.Equal(t, Type{"number"}, n.Type)
	assert.Equal(t, Type{"unknown"}, c.Type)
}
