package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/composition"
	"vuedoc/internal/scope"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

func binding(t *testing.T, c *Context, name string) *scope.Entry {
	t.Helper()
	e, ok := c.scope.Get(name)
	require.True(t, ok, "missing binding %q", name)
	require.NotNil(t, e.Value, name)
	return e
}

func TestBinaryTyping(t *testing.T) {
	tests := []struct {
		expr string
		want value.Type
	}{
		{"1 | 2", value.Type{"binary"}},
		{"a & b", value.Type{"binary"}},
		{"a ^ 1", value.Type{"binary"}},
		{"a << 2", value.Type{"binary"}},
		{"a >>> 1", value.Type{"binary"}},
		{"1 < 2", value.Type{"boolean"}},
		{"a === b", value.Type{"boolean"}},
		{"a != 1", value.Type{"boolean"}},
		{"'k' in o", value.Type{"boolean"}},
		{"o instanceof Date", value.Type{"boolean"}},
		{"a && b", value.Type{"boolean"}},
		{"1 || 2", value.Type{"number"}},
		{"1 || 'b'", value.Type{"string"}},
		{"u || 'b'", value.Type{"string"}},
		{"1 || true", value.Type{"boolean"}},
		{"1 ?? 2", value.Type{"number"}},
		{"u ?? 'd'", value.Type{"string"}},
		{"a - b", value.Type{"number"}},
		{"'6' * 2", value.Type{"number"}},
		{"a / 2", value.Type{"number"}},
		{"a % 2", value.Type{"number"}},
		{"2 ** 3", value.Type{"number"}},
		{"1 + 2", value.Type{"number"}},
		{"u + v", value.Type{"string"}},
		{"1 + 'a'", value.Type{"string"}},
		{"u + 1", value.Type{"string"}},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			c := bindSource(t, "const x = "+tc.expr)
			assert.Equal(t, tc.want, binding(t, c, "x").Value.Type)
		})
	}

	t.Run("Literal operands fold", func(t *testing.T) {
		c := bindSource(t, "const sum = 1 + 2")
		assert.Equal(t, float64(3), binding(t, c, "sum").Value.Value)
	})
}

func TestUnaryTyping(t *testing.T) {
	tests := []struct {
		expr string
		want value.Type
	}{
		{"typeof a", value.Type{"boolean"}},
		{"!a", value.Type{"boolean"}},
		{"~a", value.Type{"binary"}},
		{"-a", value.Type{"number"}},
		{"+'3'", value.Type{"number"}},
		{"void 0", value.Type{"unknown"}},
		{"delete o.a", value.Type{"unknown"}},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			c := bindSource(t, "const x = "+tc.expr)
			assert.Equal(t, tc.want, binding(t, c, "x").Value.Type)
		})
	}

	t.Run("Unknown operators keep the source text", func(t *testing.T) {
		c := bindSource(t, "const x = void 0")
		assert.Equal(t, "void 0", binding(t, c, "x").Value.Value)
	})

	t.Run("Literal operands fold", func(t *testing.T) {
		c := bindSource(t, "const neg = -1\nconst not = !true")
		assert.Equal(t, float64(-1), binding(t, c, "neg").Value.Value)
		assert.Equal(t, false, binding(t, c, "not").Value.Value)
	})
}

func TestConditionalTyping(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want value.Type
	}{
		{"Same branch types", "c ? 1 : 2", value.Type{"number"}},
		{"Ordered pair", "c ? 'a' : 1", value.Type{"string", "number"}},
		{"Nested conditionals flatten", "c ? (d ? 1 : 'a') : 'a'", value.Type{"number", "string"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := bindSource(t, "const x = "+tc.expr)
			assert.Equal(t, tc.want, binding(t, c, "x").Value.Type)
		})
	}
}

func TestNumericMembers(t *testing.T) {
	c := bindSource(t, `
const pi = Math.PI
const biggest = Math.max(1, 2)
const rounded = Math.round(x)
const limit = Number.MAX_SAFE_INTEGER
const parsed = Number.parseFloat('1.5')
const whole = Number.isInteger(3)
const size = name.length
const count = [1, 2].length
`)

	for _, name := range []string{"pi", "biggest", "rounded", "limit", "parsed", "size", "count"} {
		assert.Equal(t, value.Type{"number"}, binding(t, c, name).Value.Type, name)
	}
	assert.Equal(t, value.Type{"boolean"}, binding(t, c, "whole").Value.Type)

	t.Run("Shadowed namespace", func(t *testing.T) {
		c := bindSource(t, "const Math = { max: () => 'x' }\nconst m = Math.max()")
		assert.NotEqual(t, value.Type{"number"}, binding(t, c, "m").Value.Type)
	})
}

func TestDestructuring(t *testing.T) {
	t.Run("Array pattern with hole, default and rest", func(t *testing.T) {
		c := bindSource(t, "const [a0, , a2 = 9, ...ar] = [1, 2, undefined, 4, 5]")

		a0 := binding(t, c, "a0")
		assert.Equal(t, value.Type{"number"}, a0.Value.Type)
		assert.Equal(t, float64(1), a0.Value.Value)

		a2 := binding(t, c, "a2")
		assert.Equal(t, value.Type{"number"}, a2.Value.Type)
		assert.Equal(t, float64(9), a2.Value.Value)

		ar := binding(t, c, "ar")
		assert.Equal(t, value.Type{"array"}, ar.Value.Type)
		require.NotNil(t, ar.Value.Object)
		assert.Equal(t, 2, ar.Value.Object.Len())
		assert.Equal(t, []any{float64(4), float64(5)}, ar.Value.Value)
	})

	t.Run("Defaults apply only to absent members", func(t *testing.T) {
		c := bindSource(t, "const { q = 'd', z = 3 } = { q: 'v', y: 1 }")

		q := binding(t, c, "q")
		assert.Equal(t, value.Type{"string"}, q.Value.Type)
		assert.Equal(t, "v", q.Value.Value)

		z := binding(t, c, "z")
		assert.Equal(t, value.Type{"number"}, z.Value.Type)
		assert.Equal(t, float64(3), z.Value.Value)
	})

	t.Run("Renames record their source key", func(t *testing.T) {
		c := bindSource(t, "const { p: pp, r: rr = 2 } = { p: 1 }")

		pp := binding(t, c, "pp")
		assert.Equal(t, "p", pp.Source)
		assert.Equal(t, float64(1), pp.Value.Value)

		rr := binding(t, c, "rr")
		assert.Equal(t, "r", rr.Source)
		assert.Equal(t, float64(2), rr.Value.Value)

		_, ok := c.scope.Get("p")
		assert.False(t, ok)
	})

	t.Run("Nested patterns", func(t *testing.T) {
		c := bindSource(t, "const { n: { deep }, list: [first] } = { n: { deep: 'x' }, list: [true] }")

		deep := binding(t, c, "deep")
		assert.Equal(t, value.Type{"string"}, deep.Value.Type)
		assert.Equal(t, "x", deep.Value.Value)

		first := binding(t, c, "first")
		assert.Equal(t, value.Type{"boolean"}, first.Value.Type)
		assert.Equal(t, true, first.Value.Value)
	})

	t.Run("Object rest over a tracked source", func(t *testing.T) {
		c := bindSource(t, "const { a, ...others } = { a: 1, b: 2, c: 3 }")

		others := binding(t, c, "others")
		assert.Equal(t, value.Type{"object"}, others.Value.Type)
		require.NotNil(t, others.Value.Object)
		assert.Equal(t, []string{"b", "c"}, others.Value.Object.Keys())
	})

	t.Run("Rest over an untracked source is opaque", func(t *testing.T) {
		c := bindSource(t, "const { a, ...more } = load()\nconst [h, ...tail] = items")

		more := binding(t, c, "more")
		assert.Equal(t, "...more", more.Value.Value)
		assert.Nil(t, more.Value.Object)

		tail := binding(t, c, "tail")
		assert.Equal(t, "...tail", tail.Value.Value)
		assert.Nil(t, tail.Value.Object)

		assert.Equal(t, value.Type{"unknown"}, binding(t, c, "a").Value.Type)
	})
}

func TestReturnTypes(t *testing.T) {
	c := bindSource(t, `
function noop() {}
async function load() { return 1 }
async function wrap() { return await load() }
const twice = (n: number) => n * 2
function label(): string { return x }
function pick(f) {
  if (f) {
    return 1
  }
  return 'a'
}
const v = noop()
const p = load()
const w = wrap()
const d = twice(2)
const s = label()
const u = pick(true)
`)

	tests := []struct {
		name string
		want value.Type
	}{
		{"v", value.Type{"void"}},
		{"p", value.Type{"Promise<number>"}},
		{"w", value.Type{"Promise<number>"}},
		{"d", value.Type{"number"}},
		{"s", value.Type{"string"}},
		{"u", value.Type{"number", "string"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, binding(t, c, tc.name).Value.Type)
		})
	}

	t.Run("Return type is computed once", func(t *testing.T) {
		c := bindSource(t, "function f() { return 1 }")
		fn := syntax.NamedChildren(c.st.file.Root)[0]

		assert.Equal(t, value.Type{"number"}, c.ReturnType(fn))
		c.st.returns[syntax.Key(fn)] = value.T("memoized")
		assert.Equal(t, value.Type{"memoized"}, c.ReturnType(fn))
	})
}

func TestCompositionTyping(t *testing.T) {
	t.Run("Value index recurses through nested calls", func(t *testing.T) {
		c := bindSource(t, "import { ref } from 'vue'\nconst nested = ref(ref(5))")

		nested := binding(t, c, "nested")
		assert.Equal(t, value.Type{"number"}, nested.Value.Type)
		assert.Equal(t, float64(5), nested.Value.Value)
	})

	t.Run("Type argument wins over the value", func(t *testing.T) {
		c := bindSource(t, "import { ref } from 'vue'\nconst typed = ref<string>(load())")
		assert.Equal(t, value.Type{"string"}, binding(t, c, "typed").Value.Type)
	})

	t.Run("Returning type wins over the value", func(t *testing.T) {
		reg := composition.NewRegistry(composition.Rule{
			Name:          "useClock",
			Feature:       composition.Data,
			ValueIndex:    composition.Arg(0),
			ReturningType: value.T("Date"),
		})
		c := bindSourceWith(t, Options{Registry: reg}, "const now = useClock('noon')")
		assert.Equal(t, value.Type{"Date"}, binding(t, c, "now").Value.Type)
	})
}
