package syntax

import (
	"context"
	"errors"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string, lang Lang) *File {
	t.Helper()
	f, err := Parse(context.Background(), "test."+string(lang), []byte(src), lang)
	require.NoError(t, err)
	t.Cleanup(f.Close)
	return f
}

func firstDeclarator(f *File) *sitter.Node {
	decl := NamedChildren(f.Root)[0]
	return FirstNamed(decl, KindVariableDeclarator)
}

func TestParse(t *testing.T) {
	t.Run("valid javascript", func(t *testing.T) {
		f := parse(t, "const a = 1\n", LangJS)
		assert.Equal(t, KindProgram, f.Root.Type())
	})

	t.Run("malformed source", func(t *testing.T) {
		_, err := Parse(context.Background(), "bad.js", []byte("const = ;\nlet x = (\n"), LangJS)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedSource))

		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "bad.js", perr.Path)
		assert.Positive(t, perr.Line)
	})

	t.Run("typescript annotations", func(t *testing.T) {
		f := parse(t, "const a: number = 1\n", LangTS)
		d := firstDeclarator(f)
		require.NotNil(t, d)
		assert.Equal(t, ": number", f.Text(Field(d, "type")))
	})
}

func TestParseLang(t *testing.T) {
	for in, want := range map[string]Lang{"": LangJS, "ts": LangTS, ".tsx": LangTSX, "JSX": LangJSX, "mjs": LangJS} {
		got, err := ParseLang(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLang("coffee")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestStringValue(t *testing.T) {
	f := parse(t, "const a = 'he\\'llo'\nconst b = `plain`\nconst c = `x${a}`\n", LangJS)
	decls := NamedChildren(f.Root)

	value := func(i int) *sitter.Node {
		return Field(FirstNamed(decls[i], KindVariableDeclarator), "value")
	}

	s, ok := f.StringValue(value(0))
	require.True(t, ok)
	assert.Equal(t, "he'llo", s)

	s, ok = f.StringValue(value(1))
	require.True(t, ok)
	assert.Equal(t, "plain", s)

	_, ok = f.StringValue(value(2))
	assert.False(t, ok)
}

func TestObjectMember(t *testing.T) {
	f := parse(t, "const o = { a: 1, 'b-c': 2, d, e() {} }\n", LangJS)
	obj := Field(firstDeclarator(f), "value")

	for _, key := range []string{"a", "b-c", "d", "e"} {
		assert.NotNil(t, f.ObjectMember(obj, key), key)
	}
	assert.Nil(t, f.ObjectMember(obj, "z"))
	assert.Equal(t, "1", f.Text(MemberValue(f.ObjectMember(obj, "a"))))
}

func TestLeadingComment(t *testing.T) {
	src := `// unrelated

/**
 * The counter.
 */
const count = 0;
const other = 1; // trailing
// line one
// line two
const third = 2
`
	f := parse(t, src, LangJS)
	decls := NamedChildren(f.Root)
	require.Len(t, decls, 3)

	assert.Equal(t, "/**\n * The counter.\n */", f.LeadingComment(decls[0]))
	assert.Empty(t, f.LeadingComment(decls[1]))
	assert.Equal(t, "// line one\n// line two", f.LeadingComment(decls[2]))
	assert.Equal(t, "// trailing", f.TrailingComment(decls[1]))
}

func TestStatement(t *testing.T) {
	f := parse(t, "export const a = { b: 1 }\n", LangJS)
	export := NamedChildren(f.Root)[0]
	decl := Field(export, "declaration")
	declarator := FirstNamed(decl, KindVariableDeclarator)
	assert.Equal(t, Key(export), Key(Statement(declarator)))

	obj := Field(declarator, "value")
	pair := NamedChildren(obj)[0]
	assert.Equal(t, Key(pair), Key(Statement(Field(pair, "value"))))
}

func TestSplitSFC(t *testing.T) {
	src := `<template>
  <div>{{ msg }}</div>
</template>

<script lang="ts">
export default { name: 'Hello' }
</script>

<script setup lang="ts">
const msg = 'hi'
</script>
`
	blocks, err := SplitSFC(context.Background(), "Hello.vue", []byte(src))
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.False(t, blocks[0].Setup)
	assert.Equal(t, LangTS, blocks[0].Lang)
	assert.Contains(t, string(blocks[0].Content), "export default")
	assert.Equal(t, 4, blocks[0].LineOffset)

	assert.True(t, blocks[1].Setup)
	assert.Contains(t, string(blocks[1].Content), "const msg")

	f, err := Parse(context.Background(), "Hello.vue", blocks[1].Content, blocks[1].Lang)
	require.NoError(t, err)
	defer f.Close()
	f.LineOffset = blocks[1].LineOffset
	assert.Equal(t, 10, f.Line(NamedChildren(f.Root)[0]))
}

func TestSplitPlainScript(t *testing.T) {
	blocks, err := SplitSFC(context.Background(), "comp.ts", []byte("export default {}"))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, LangTS, blocks[0].Lang)
	assert.False(t, blocks[0].Setup)
}
