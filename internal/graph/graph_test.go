package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/extractor"
	"vuedoc/internal/script"
)

func sampleGraph() *Graph {
	g := NewGraph()
	g.AddDoc(&extractor.ComponentDoc{
		Filepath:     "/app/App.vue",
		Name:         "App",
		Dependencies: []string{"/app/Card.vue", "/app/store.js"},
	})
	g.AddDoc(&extractor.ComponentDoc{
		Filepath:     "/app/Card.vue",
		Name:         "Card",
		Dependencies: []string{"/app/store.js"},
		Messages:     []script.Message{{Level: script.LevelWarning, File: "/app/Card.vue", Text: "bad tag"}},
	})
	g.AddDoc(&extractor.ComponentDoc{Filepath: "/app/Empty.vue", Name: "Empty"})
	g.LinkRelations()
	return g
}

func TestGraph_LinkRelations(t *testing.T) {
	g := sampleGraph()

	t.Run("Edges follow dependencies", func(t *testing.T) {
		assert.Len(t, g.Edges, 3)
		assert.Equal(t, []string{"/app/Card.vue", "/app/store.js"}, g.Imports("/app/App.vue"))
	})

	t.Run("Component dependencies", func(t *testing.T) {
		deps := g.GetDependencies("/app/App.vue")
		require.Len(t, deps, 1)
		assert.Equal(t, "Card", deps[0].Doc.Name)
	})

	t.Run("Dependents of a plain module", func(t *testing.T) {
		dependents := g.GetDependents("/app/store.js")
		assert.Len(t, dependents, 2)
	})

	t.Run("Dependent lookup", func(t *testing.T) {
		dependents := g.GetDependents("/app/Card.vue")
		require.Len(t, dependents, 1)
		assert.Equal(t, "App", dependents[0].Doc.Name)
	})
}

func TestGraph_RemoveFile(t *testing.T) {
	g := sampleGraph()
	g.RemoveFile("/app/App.vue")

	assert.NotContains(t, g.Nodes, "/app/App.vue")
	assert.Empty(t, g.GetDependents("/app/Card.vue"))
	assert.Len(t, g.GetDependents("/app/store.js"), 1)
}

func TestGraph_Stats(t *testing.T) {
	g := sampleGraph()
	s := g.Stats()
	assert.Equal(t, 3, s.Components)
	assert.Equal(t, 3, s.Edges)
	assert.Equal(t, 1, s.Warnings)
	assert.Equal(t, map[string]int{"/app/Card.vue": 1}, g.MessageCounts())
}
