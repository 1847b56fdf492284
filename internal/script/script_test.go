package script

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/composition"
	"vuedoc/internal/entry"
	"vuedoc/internal/resolver"
	"vuedoc/internal/syntax"
	"vuedoc/internal/value"
)

// bindSource binds src as a TypeScript module and returns its root context.
func bindSource(t *testing.T, src string) *Context {
	t.Helper()
	return bindSourceWith(t, Options{}, src)
}

func bindSourceWith(t *testing.T, opts Options, src string) *Context {
	t.Helper()
	r := newRun(context.Background(), opts.withDefaults(), "test.ts")
	t.Cleanup(r.close)
	f, err := syntax.Parse(r.ctx, "test.ts", []byte(src), syntax.LangTS)
	require.NoError(t, err)
	r.files = append(r.files, f)
	st := newFileState(r, f)
	st.root.bindProgram(f.Root)
	return st.root
}

func parseSetup(t *testing.T, opts Options, src string) *Result {
	t.Helper()
	res, err := New(opts).Parse(context.Background(), Component{
		Path:    "/app/src/MyWidget.vue",
		Scripts: []Script{{Path: "/app/src/MyWidget.vue", Lang: syntax.LangTS, Content: []byte(src), Setup: true}},
	})
	require.NoError(t, err)
	return res
}

func parseOptions(t *testing.T, opts Options, src string) *Result {
	t.Helper()
	res, err := New(opts).Parse(context.Background(), Component{
		Path:    "/app/src/MyWidget.vue",
		Scripts: []Script{{Path: "/app/src/MyWidget.vue", Lang: syntax.LangJS, Content: []byte(src)}},
	})
	require.NoError(t, err)
	return res
}

func find[T entry.Entry](t *testing.T, l entry.List, kind entry.Kind, name string) T {
	t.Helper()
	e, ok := l.Find(kind, name)
	require.True(t, ok, "missing %s %q", kind, name)
	typed, ok := e.(T)
	require.True(t, ok, "unexpected entry type %T", e)
	return typed
}

func TestValueDecomposition(t *testing.T) {
	c := bindSource(t, `const o = { a: 1, b: [1, 2, 3], 'c-d': 'x' }`)

	e, ok := c.scope.Get("o")
	require.True(t, ok)
	require.NotNil(t, e.Value.Object)
	assert.Equal(t, []string{"a", "b", "c-d"}, e.Value.Object.Keys())

	b, ok := e.Value.Object.Get("b")
	require.True(t, ok)
	require.NotNil(t, b.Object)
	assert.Equal(t, 3, b.Object.Len())
	assert.NotNil(t, e.Value.Object.Node("a"))
}

func TestAliasPropagation(t *testing.T) {
	c := bindSource(t, "const count = 0\nconst length = count")

	for _, name := range []string{"count", "length"} {
		e, ok := c.scope.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, value.Type{"number"}, e.Value.Type, name)
		assert.Equal(t, float64(0), e.Value.Value, name)
	}
}

func TestConditionalUnion(t *testing.T) {
	c := bindSource(t, `const a = cond ? 1 : 'x'`)

	e, ok := c.scope.Get("a")
	require.True(t, ok)
	assert.Equal(t, value.Type{"number", "string"}, e.Value.Type)
}

func TestRebindWidening(t *testing.T) {
	c := bindSource(t, "let a = 1\na = 'x'\nlet b = 1\nb = f()")

	a, _ := c.scope.Get("a")
	assert.Equal(t, value.Type{"unknown"}, a.Value.Type)
	b, _ := c.scope.Get("b")
	assert.Equal(t, value.Type{"number"}, b.Value.Type)
}

func TestCompositionValue(t *testing.T) {
	c := bindSource(t, "import { ref, computed } from 'vue'\nconst msg = ref('hello')\nconst upper = computed(() => msg.value.toUpperCase())")

	msg, ok := c.scope.Get("msg")
	require.True(t, ok)
	assert.Equal(t, value.Type{"string"}, msg.Value.Type)
	assert.Equal(t, "hello", msg.Value.Value)
	require.NotNil(t, msg.Composition)
	assert.Equal(t, composition.Data, msg.Composition.Feature())

	upper, ok := c.scope.Get("upper")
	require.True(t, ok)
	assert.Equal(t, composition.Computed, upper.Composition.Feature())
}

func TestCompositionPrecedence(t *testing.T) {
	reg := composition.NewRegistry(
		composition.Rule{Name: "useThing", Feature: composition.Methods},
		composition.Rule{Name: "useThing", Feature: composition.Data, ValueIndex: composition.Arg(0)},
	)
	res := parseSetup(t, Options{Registry: reg}, "const thing = useThing(42)")

	d := find[*entry.Data](t, res.Entries, entry.KindData, "thing")
	assert.Equal(t, value.Type{"number"}, d.Type)
	assert.Equal(t, "42", d.InitialValue)
	_, ok := res.Entries.Find(entry.KindMethod, "thing")
	assert.False(t, ok)
}

func TestUnresolvedImportKeepsEntries(t *testing.T) {
	src := "import { helper } from './missing'\nconst a = 1\nconst b = 'x'"
	res := parseSetup(t, Options{Resolver: resolver.NewMemoryChain(nil)}, src)

	assert.Len(t, res.Entries.Filter(entry.KindData), 2)
	require.Len(t, res.Errors(), 1)
	assert.Contains(t, res.Errors()[0].Text, "./missing")
	assert.Equal(t, 1, res.Errors()[0].Line)
}

func TestMalformedScript(t *testing.T) {
	res := parseSetup(t, Options{}, "const a = (")

	assert.Empty(t, res.Entries)
	require.Len(t, res.Errors(), 1)
	assert.Equal(t, "/app/src/MyWidget.vue", res.Errors()[0].File)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).ParseFile(ctx, "a.js", []byte("export default {}"), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptionsComponent(t *testing.T) {
	src := `
/**
 * A text input.
 */
export default {
  name: 'TextInput',
  props: {
    /** Current text */
    value: { type: String, default: '' },
    size: [String, Number],
    disabled: Boolean,
  },
  data() {
    return { count: 0, label: 'x' }
  },
  computed: {
    double() {
      return this.count * 2
    },
  },
  methods: {
    /**
     * Resets the input.
     * @param {number} n - new count
     */
    reset(n) {
      this.$emit('change', n)
    },
  },
}
`
	res := parseOptions(t, Options{}, src)
	require.Empty(t, res.Errors())

	name := find[*entry.Name](t, res.Entries, entry.KindName, "TextInput")
	assert.Equal(t, entry.KindName, name.Kind)
	desc := res.Entries.Filter(entry.KindDescription)
	require.Len(t, desc, 1)
	assert.Equal(t, "A text input.", desc[0].Meta().Description)

	text := find[*entry.Prop](t, res.Entries, entry.KindProp, "value")
	assert.Equal(t, value.Type{"string"}, text.Type)
	assert.Equal(t, "''", text.Default)
	assert.Equal(t, "Current text", text.Description)
	assert.Equal(t, entry.Public, text.Visibility)

	size := find[*entry.Prop](t, res.Entries, entry.KindProp, "size")
	assert.Equal(t, value.Type{"string", "number"}, size.Type)
	assert.Equal(t, value.Type{"boolean"}, find[*entry.Prop](t, res.Entries, entry.KindProp, "disabled").Type)

	count := find[*entry.Data](t, res.Entries, entry.KindData, "count")
	assert.Equal(t, value.Type{"number"}, count.Type)
	assert.Equal(t, "0", count.InitialValue)

	double := find[*entry.Computed](t, res.Entries, entry.KindComputed, "double")
	assert.Equal(t, value.Type{"number"}, double.Type)
	assert.Equal(t, []string{"count"}, double.Dependencies)

	reset := find[*entry.Method](t, res.Entries, entry.KindMethod, "reset")
	assert.Equal(t, "Resets the input.", reset.Description)
	require.Len(t, reset.Params, 1)
	assert.Equal(t, "n", reset.Params[0].Name)
	assert.Equal(t, value.Type{"number"}, reset.Params[0].Type)
	assert.Equal(t, "new count", reset.Params[0].Description)

	change := find[*entry.Event](t, res.Entries, entry.KindEvent, "change")
	require.Len(t, change.Arguments, 1)
	assert.Equal(t, "n", change.Arguments[0].Name)
}

func TestAllowList(t *testing.T) {
	src := `
export default {
  expose: ['open'],
  methods: {
    /** @public */
    close() {},
    open() {},
  },
}
`
	res := parseOptions(t, Options{IgnoredVisibilities: []entry.Visibility{}}, src)

	assert.Equal(t, entry.Private, find[*entry.Method](t, res.Entries, entry.KindMethod, "close").Visibility)
	assert.Equal(t, entry.Public, find[*entry.Method](t, res.Entries, entry.KindMethod, "open").Visibility)

	res = parseOptions(t, Options{}, src)
	_, ok := res.Entries.Find(entry.KindMethod, "close")
	assert.False(t, ok)
}

func TestSetupComponent(t *testing.T) {
	src := `
import { ref, computed } from 'vue'

/** Clicks so far */
const count = ref(0)
const double = computed(() => count.value * 2)

function increment(step = 1) {
  count.value += step
  emit('changed', count.value)
}

const emit = defineEmits(['changed'])
`
	res := parseSetup(t, Options{}, src)
	require.Empty(t, res.Errors())

	find[*entry.Name](t, res.Entries, entry.KindName, "MyWidget")

	count := find[*entry.Data](t, res.Entries, entry.KindData, "count")
	assert.Equal(t, value.Type{"number"}, count.Type)
	assert.Equal(t, "0", count.InitialValue)
	assert.Equal(t, "Clicks so far", count.Description)

	double := find[*entry.Computed](t, res.Entries, entry.KindComputed, "double")
	assert.Equal(t, []string{"count"}, double.Dependencies)

	inc := find[*entry.Method](t, res.Entries, entry.KindMethod, "increment")
	require.Len(t, inc.Params, 1)
	assert.Equal(t, value.Type{"number"}, inc.Params[0].Type)
	assert.Equal(t, "1", inc.Params[0].Default)
	assert.Equal(t, value.Type{"void"}, inc.Returns.Type)

	find[*entry.Event](t, res.Entries, entry.KindEvent, "changed")
	_, ok := res.Entries.Find(entry.KindData, "emit")
	assert.False(t, ok)
}

func TestTypedProps(t *testing.T) {
	src := `
interface Props {
  /** Visible label */
  label: string
  size?: 'sm' | 'md'
}
const { size = 'md' } = defineProps<Props>()
`
	res := parseSetup(t, Options{}, src)
	require.Empty(t, res.Errors())

	label := find[*entry.Prop](t, res.Entries, entry.KindProp, "label")
	assert.Equal(t, value.Type{"string"}, label.Type)
	assert.True(t, label.Required)
	assert.Equal(t, "Visible label", label.Description)

	size := find[*entry.Prop](t, res.Entries, entry.KindProp, "size")
	assert.Equal(t, value.Type{"'sm'", "'md'"}, size.Type)
	assert.False(t, size.Required)
	assert.Equal(t, "'md'", size.Default)
}

func TestTypedEmits(t *testing.T) {
	src := `
const emit = defineEmits<{
  (e: 'open' | 'close'): void
  (e: 'select', id: number): void
}>()
`
	res := parseSetup(t, Options{}, src)

	find[*entry.Event](t, res.Entries, entry.KindEvent, "open")
	find[*entry.Event](t, res.Entries, entry.KindEvent, "close")
	sel := find[*entry.Event](t, res.Entries, entry.KindEvent, "select")
	require.Len(t, sel.Arguments, 1)
	assert.Equal(t, "id", sel.Arguments[0].Name)
	assert.Equal(t, value.Type{"number"}, sel.Arguments[0].Type)
}

func TestDefineModel(t *testing.T) {
	res := parseSetup(t, Options{}, "const model = defineModel<string>()")

	p := find[*entry.Prop](t, res.Entries, entry.KindProp, "modelValue")
	assert.True(t, p.DescribeModel)
	assert.Equal(t, value.Type{"string"}, p.Type)
	find[*entry.Event](t, res.Entries, entry.KindEvent, "update:modelValue")
	m := find[*entry.Model](t, res.Entries, entry.KindModel, "modelValue")
	assert.Equal(t, "update:modelValue", m.Event)
}

func TestMixinsAreDeferred(t *testing.T) {
	files := map[string]string{
		"/app/src/mixins/toggle.js": "export default { data() { return { active: false } } }",
	}
	src := `
import toggle from './mixins/toggle'
export default {
  mixins: [toggle, toggle],
  data() { return { count: 0 } },
}
`
	res := parseOptions(t, Options{Resolver: resolver.NewMemoryChain(files)}, src)
	require.Empty(t, res.Errors())

	data := res.Entries.Filter(entry.KindData)
	require.Len(t, data, 2)
	assert.Equal(t, "count", data[0].Meta().Name)
	assert.Equal(t, "active", data[1].Meta().Name)
	assert.Equal(t, []string{"/app/src/mixins/toggle.js"}, res.Dependencies)
}

func TestNamespaceImport(t *testing.T) {
	files := map[string]string{
		"/app/src/utils.js": "export const size = 10\nexport const label = 'x'",
	}
	src := `
import * as utils from './utils'
import { label } from './utils'
const total = utils.size
const title = label
`
	res := parseSetup(t, Options{Resolver: resolver.NewMemoryChain(files)}, src)
	require.Empty(t, res.Errors())

	total := find[*entry.Data](t, res.Entries, entry.KindData, "total")
	assert.Equal(t, value.Type{"number"}, total.Type)
	assert.Equal(t, "10", total.InitialValue)
	title := find[*entry.Data](t, res.Entries, entry.KindData, "title")
	assert.Equal(t, value.Type{"string"}, title.Type)
}

func TestFeaturesFilter(t *testing.T) {
	var seen []string
	opts := Options{
		Features: []entry.Kind{entry.KindMethod},
		OnEntry:  func(e entry.Entry) { seen = append(seen, e.Meta().Name) },
	}
	res := parseSetup(t, opts, "const a = 1\nfunction go() {}")

	require.Len(t, res.Entries, 1)
	assert.Equal(t, entry.KindMethod, res.Entries[0].Meta().Kind)
	assert.Equal(t, []string{"go"}, seen)
}

func TestPascalCase(t *testing.T) {
	assert.Equal(t, "MyButton", pascalCase("my-button"))
	assert.Equal(t, "Button", pascalCase("Button"))
	assert.Equal(t, "AB", pascalCase("a_b"))
}

func TestParseDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	parseSetup(t, Options{Logger: logger}, "declare const later: string\nconst a = 1")

	out := buf.String()
	assert.Contains(t, out, "composition functions")
	assert.Contains(t, out, "defineProps")
	assert.Contains(t, out, "forward declarations left unbound")
	assert.Contains(t, out, "count=1")
}
