package extractor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/entry"
	"vuedoc/internal/resolver"
	"vuedoc/internal/script"
)

func newTestExtractor(t *testing.T) (*Extractor, string) {
	t.Helper()
	root, err := filepath.Abs("testdata")
	require.NoError(t, err)
	ext := NewExtractor(script.Options{Resolver: resolver.NewDefaultChain(root, nil)})
	return ext, root
}

func TestExtractor_ExtractFromFile(t *testing.T) {
	ext, root := newTestExtractor(t)
	path := filepath.Join(root, "Button.vue")

	doc, err := ext.ExtractFromFile(context.Background(), path)
	require.NoError(t, err)

	t.Run("Component", func(t *testing.T) {
		assert.Equal(t, "AppButton", doc.Name)
		assert.Equal(t, "A button that toggles between two states.", doc.Description)
		assert.Equal(t, "vue", doc.Language)
		assert.True(t, doc.Setup)
		assert.False(t, doc.HasErrors(), "messages: %v", doc.Messages)
		assert.Len(t, doc.ContentHash, 64)
	})

	t.Run("Props", func(t *testing.T) {
		e, ok := doc.Entries.Find(entry.KindProp, "label")
		require.True(t, ok)
		p := e.(*entry.Prop)
		assert.Equal(t, "Button text", p.Description)
		assert.True(t, p.Required)
		assert.Equal(t, 2, doc.Count(entry.KindProp))
	})

	t.Run("Events", func(t *testing.T) {
		e, ok := doc.Entries.Find(entry.KindEvent, "toggled")
		require.True(t, ok)
		ev := e.(*entry.Event)
		require.Len(t, ev.Arguments, 1)
		assert.Equal(t, "on", ev.Arguments[0].Name)
	})

	t.Run("Computed", func(t *testing.T) {
		e, ok := doc.Entries.Find(entry.KindComputed, "classes")
		require.True(t, ok)
		c := e.(*entry.Computed)
		assert.Equal(t, "Classes applied to the button", c.Description)
		assert.Contains(t, c.Dependencies, "size")
	})

	t.Run("Dependencies", func(t *testing.T) {
		assert.Equal(t, []string{filepath.Join(root, "useToggle.js")}, doc.Dependencies)
	})

	t.Run("Stable ID", func(t *testing.T) {
		again, err := ext.ExtractFromFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, again.ID)
		assert.Contains(t, doc.ID, ":component:AppButton:")
	})
}

func TestExtractor_MalformedScript(t *testing.T) {
	ext, root := newTestExtractor(t)

	doc, err := ext.ExtractFromFile(context.Background(), filepath.Join(root, "Broken.vue"))
	require.NoError(t, err)
	assert.True(t, doc.HasErrors())
	assert.Empty(t, doc.Entries)
}

func TestExtractor_ScriptSrc(t *testing.T) {
	ext, root := newTestExtractor(t)

	doc, err := ext.ExtractFromFile(context.Background(), filepath.Join(root, "Legacy.vue"))
	require.NoError(t, err)
	assert.Equal(t, "Legacy", doc.Name)
	_, ok := doc.Entries.Find(entry.KindProp, "title")
	assert.True(t, ok)
}

func TestExtractor_MissingFile(t *testing.T) {
	ext, root := newTestExtractor(t)
	_, err := ext.ExtractFromFile(context.Background(), filepath.Join(root, "Nope.vue"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a/B.vue"))
	assert.True(t, Supported("a/b.ts"))
	assert.False(t, Supported("a/b.d.ts"))
	assert.False(t, Supported("a/b.css"))
}
