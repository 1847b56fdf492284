package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/entry"
	"vuedoc/internal/extractor"
	"vuedoc/internal/graph"
	"vuedoc/internal/script"
	"vuedoc/internal/value"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveGraph_SnapshotSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Initial snapshot: A, B and edge A->B
	g1 := graph.NewGraph()
	a := testDoc("/app/A.vue", "A", "/app/B.vue")
	b := testDoc("/app/B.vue", "B")
	g1.AddDoc(a)
	g1.AddDoc(b)
	g1.LinkRelations()
	require.NoError(t, store.SaveGraph(ctx, g1))

	// New snapshot: remove A, add C, and replace edge with C->B.
	g2 := graph.NewGraph()
	c := testDoc("/app/C.vue", "C", "/app/B.vue")
	g2.AddDoc(b)
	g2.AddDoc(c)
	g2.LinkRelations()
	require.NoError(t, store.SaveGraph(ctx, g2))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)

	// Node snapshot should match exactly (A removed).
	assert.Len(t, loaded.Nodes, 2)
	assert.NotContains(t, loaded.Nodes, a.Filepath)
	assert.Contains(t, loaded.Nodes, b.Filepath)
	assert.Contains(t, loaded.Nodes, c.Filepath)

	// Edge snapshot should match exactly (old edge removed).
	require.Len(t, loaded.Edges, 1)
	assert.Equal(t, graph.Edge{From: c.Filepath, To: b.Filepath, Kind: graph.RelationImports}, loaded.Edges[0])
	assert.Len(t, loaded.GetDependents(b.Filepath), 1)
}

func TestSQLiteStore_SaveGraph_EmptySnapshotClearsData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	g := graph.NewGraph()
	g.AddDoc(testDoc("/app/X.vue", "X"))
	require.NoError(t, store.SaveGraph(ctx, g))

	require.NoError(t, store.SaveGraph(ctx, graph.NewGraph()))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.Nodes)
	assert.Empty(t, loaded.Edges)
}

func TestSQLiteStore_ComponentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := testDoc("/app/Card.vue", "Card")
	require.NoError(t, store.SaveComponent(ctx, doc))

	got, err := store.GetComponent(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Card", got.Name)
	assert.True(t, got.Setup)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, script.LevelWarning, got.Messages[0].Level)

	e, ok := got.Entries.Find(entry.KindProp, "title")
	require.True(t, ok)
	assert.Equal(t, value.Type{"string"}, e.(*entry.Prop).Type)

	byFile, err := store.FindByFile(ctx, "/app/Card.vue")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, byFile.ID)

	_, err = store.GetComponent(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_Runs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.LastRun(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	run, err := store.StartRun(ctx, "scan")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	run.Components = 3
	run.Warnings = 1
	require.NoError(t, store.FinishRun(ctx, run))

	last, err := store.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, last.ID)
	assert.Equal(t, "scan", last.Kind)
	assert.Equal(t, 3, last.Components)
	assert.Equal(t, 1, last.Warnings)
}

func testDoc(path, name string, deps ...string) *extractor.ComponentDoc {
	doc := &extractor.ComponentDoc{
		Filepath:     path,
		Name:         name,
		Language:     "vue",
		Setup:        true,
		Dependencies: deps,
		Entries: entry.List{
			&entry.Name{Common: entry.Common{Kind: entry.KindName, Name: name}},
			&entry.Prop{Common: entry.Common{Kind: entry.KindProp, Name: "title"}, Type: value.Type{"string"}},
		},
		Messages: []script.Message{{Level: script.LevelWarning, File: path, Text: "bad tag"}},
	}
	doc.ID = extractor.BuildStableComponentID(doc)
	return doc
}
