package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/crawler"
	"vuedoc/internal/entry"
	"vuedoc/internal/extractor"
	"vuedoc/internal/resolver"
	"vuedoc/internal/script"
)

func setup(t *testing.T) (*Indexer, string) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"App.vue": `<script setup>
import Card from './Card.vue'
const card = Card
</script>`,
		"Card.vue": `<script>
export default {
  name: 'Card',
  props: { title: String }
}
</script>`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	filter, err := crawler.NewFilter(nil, crawler.DefaultExcludeDirs, nil)
	require.NoError(t, err)
	ext := extractor.NewExtractor(script.Options{Resolver: resolver.NewDefaultChain(root, nil)})
	return NewIndexer(crawler.NewCrawler(ext, filter)), root
}

func TestIndexer_BuildGraph(t *testing.T) {
	idx, root := setup(t)
	ctx := context.Background()

	g, err := idx.BuildGraph(ctx, root)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)

	app := filepath.Join(root, "App.vue")
	card := filepath.Join(root, "Card.vue")
	deps := g.GetDependencies(app)
	require.Len(t, deps, 1)
	assert.Equal(t, card, deps[0].Doc.Filepath)

	t.Run("JSON round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.json")
		require.NoError(t, idx.SaveGraph(g, path))

		loaded, err := idx.LoadGraph(path)
		require.NoError(t, err)
		assert.Len(t, loaded.Nodes, 2)
		assert.Len(t, loaded.GetDependents(card), 1)

		_, ok := loaded.Nodes[card].Doc.Entries.Find(entry.KindProp, "title")
		assert.True(t, ok)
	})

	t.Run("Refresh drops deleted files", func(t *testing.T) {
		require.NoError(t, os.Remove(app))
		require.NoError(t, idx.Refresh(ctx, g, []string{app}))
		assert.NotContains(t, g.Nodes, app)
		assert.Empty(t, g.GetDependents(card))
	})
}
