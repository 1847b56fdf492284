package crawler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/extractor"
	"vuedoc/internal/resolver"
	"vuedoc/internal/script"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/components/Hello.vue", `<script>
export default {
  name: 'Hello',
  props: { who: String }
}
</script>`)
	writeFile(t, root, "src/components/World.vue", `<script setup>
import { shared } from '../shared'
const count = shared + 1
</script>`)
	writeFile(t, root, "src/shared.js", `export const shared = 1`)
	writeFile(t, root, "src/components/World.spec.vue", `<script>export default {}</script>`)
	writeFile(t, root, "node_modules/lib/Vendor.vue", `<script>export default { name: 'Vendor' }</script>`)
	writeFile(t, root, "dist/Built.vue", `<script>export default { name: 'Built' }</script>`)
	return root
}

func newTestCrawler(t *testing.T, root string, excludeFiles ...string) *Crawler {
	t.Helper()
	filter, err := NewFilter(nil, DefaultExcludeDirs, excludeFiles)
	require.NoError(t, err)
	ext := extractor.NewExtractor(script.Options{Resolver: resolver.NewDefaultChain(root, nil)})
	return NewCrawler(ext, filter, WithJobs(2))
}

func TestCrawler_ScanProject(t *testing.T) {
	root := newProject(t)
	c := newTestCrawler(t, root, "*.spec.vue")

	var docs []*extractor.ComponentDoc
	err := c.ScanProject(context.Background(), root, func(doc *extractor.ComponentDoc) {
		docs = append(docs, doc)
	})
	require.NoError(t, err)

	t.Run("Excluded paths are skipped", func(t *testing.T) {
		require.Len(t, docs, 2)
		assert.Equal(t, "Hello", docs[0].Name)
		assert.Equal(t, "World", docs[1].Name)
	})

	t.Run("Dependencies are resolved", func(t *testing.T) {
		assert.Equal(t, []string{filepath.Join(root, "src", "shared.js")}, docs[1].Dependencies)
	})
}

func TestCrawler_Files(t *testing.T) {
	root := newProject(t)
	c := newTestCrawler(t, root)

	files, err := c.Files(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "src", "components", "Hello.vue"),
		filepath.Join(root, "src", "components", "World.spec.vue"),
		filepath.Join(root, "src", "components", "World.vue"),
	}, files)
}

func TestCrawler_CanceledContext(t *testing.T) {
	root := newProject(t)
	c := newTestCrawler(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.ScanProject(ctx, root, func(*extractor.ComponentDoc) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilter(t *testing.T) {
	f, err := NewFilter([]string{"*.vue", "*.js"}, DefaultExcludeDirs, []string{"*.config.js"})
	require.NoError(t, err)

	assert.True(t, f.Match("src/App.vue"))
	assert.True(t, f.Match("src/store.js"))
	assert.False(t, f.Match("vite.config.js"))
	assert.False(t, f.Match("src/types.d.ts"))
	assert.False(t, f.Match("README.md"))

	assert.True(t, f.SkipDir("app/node_modules"))
	assert.True(t, f.SkipDir("app/.cache"))
	assert.False(t, f.SkipDir("app/src"))
	assert.False(t, f.SkipDir("."))

	_, err = NewFilter([]string{"[unclosed"}, nil, nil)
	assert.Error(t, err)
}
