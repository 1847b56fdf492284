package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/config"
	"vuedoc/internal/entry"
	"vuedoc/internal/generator"
	"vuedoc/internal/storage"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newSync(t *testing.T) (*IncrementalSync, string) {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "src", "sizes.js"), `export const size = 10`)
	write(t, filepath.Join(root, "src", "Box.vue"), `<script>
import { size } from './sizes'
export default {
  name: 'Box',
  data() {
    return { width: size }
  }
}
</script>`)
	write(t, filepath.Join(root, "src", "Label.vue"), `<script>
export default {
  name: 'Label',
  props: { text: String }
}
</script>`)

	cfg := config.Default()
	cfg.Project.Root = root
	s, err := NewIncrementalSync(cfg, nil, io.Discard)
	require.NoError(t, err)
	return s, root
}

func TestIncrementalSync(t *testing.T) {
	ctx := context.Background()
	s, root := newSync(t)
	box := filepath.Join(root, "src", "Box.vue")
	label := filepath.Join(root, "src", "Label.vue")

	res, err := s.Sync(ctx, nil, true)
	require.NoError(t, err)
	assert.True(t, res.FullResync)
	assert.Equal(t, 2, res.Components)
	assert.FileExists(t, s.DocPath())
	assert.FileExists(t, filepath.Join(root, "docs", generator.ReportFileName))

	t.Run("Imported module change re-documents importers", func(t *testing.T) {
		write(t, filepath.Join(root, "src", "sizes.js"), `export const size = 'wide'`)

		res, err := s.SyncFiles(ctx, []string{filepath.Join(root, "src", "sizes.js")})
		require.NoError(t, err)
		assert.False(t, res.FullResync)
		assert.Equal(t, 1, res.Affected)

		store, err := storage.NewSQLiteStore(filepath.Join(root, ".vuedoc", "vuedoc.db"))
		require.NoError(t, err)
		defer store.Close()
		doc, err := store.FindByFile(ctx, box)
		require.NoError(t, err)
		e, ok := doc.Entries.Find(entry.KindData, "width")
		require.True(t, ok)
		assert.Equal(t, "string", e.(*entry.Data).Type.String())

		last, err := store.LastRun(ctx)
		require.NoError(t, err)
		assert.Equal(t, res.RunID, last.ID)
	})

	t.Run("Deleted component leaves the document", func(t *testing.T) {
		require.NoError(t, os.Remove(label))

		res, err := s.SyncFiles(ctx, []string{label})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Removed)
		assert.Equal(t, 1, res.Components)
		assert.Equal(t, 1, res.Update.Removed)

		raw, err := os.ReadFile(s.DocPath())
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "## Label")
		assert.Contains(t, string(raw), "## Box")
	})

	t.Run("New component is added", func(t *testing.T) {
		card := filepath.Join(root, "src", "Card.vue")
		write(t, card, `<script>export default { name: 'Card' }</script>`)

		res, err := s.SyncFiles(ctx, []string{card})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Components)
		assert.Equal(t, 1, res.Update.Added)
	})
}
