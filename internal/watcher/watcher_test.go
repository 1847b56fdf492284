package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/crawler"
)

func waitFor(t *testing.T, changed <-chan []string, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changed:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func drain(changed <-chan []string) {
	for {
		select {
		case <-changed:
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))

	filter, err := crawler.NewFilter(nil, crawler.DefaultExcludeDirs, []string{"*.spec.js"})
	require.NoError(t, err)

	changed := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, filter, nil, func(paths []string) {
		changed <- paths
	})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Watch(ctx, []string{root}))

	t.Run("Component change", func(t *testing.T) {
		path := filepath.Join(root, "App.vue")
		require.NoError(t, os.WriteFile(path, []byte("<script>export default {}</script>"), 0o644))
		waitFor(t, changed, path)
	})

	t.Run("Plain module change", func(t *testing.T) {
		path := filepath.Join(root, "store.js")
		require.NoError(t, os.WriteFile(path, []byte("export const a = 1"), 0o644))
		waitFor(t, changed, path)
	})

	t.Run("Excluded files are ignored", func(t *testing.T) {
		drain(changed)
		require.NoError(t, os.WriteFile(filepath.Join(root, "a.spec.js"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "Lib.vue"), []byte("x"), 0o644))
		select {
		case paths := <-changed:
			t.Errorf("unexpected change batch %v", paths)
		case <-time.After(300 * time.Millisecond):
		}
	})

	t.Run("New directory is watched", func(t *testing.T) {
		dir := filepath.Join(root, "components")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		path := filepath.Join(dir, "Card.vue")
		require.NoError(t, os.WriteFile(path, []byte("<script>export default {}</script>"), 0o644))
		waitFor(t, changed, path)
	})

	cancel()
	select {
	case <-w.Done():
	case <-time.After(time.Second):
		assert.Fail(t, "watcher did not stop")
	}
}
