package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vuedoc/internal/extractor"
	"vuedoc/internal/git"
	"vuedoc/internal/graph"
)

func newGraph() *graph.Graph {
	g := graph.NewGraph()
	g.AddDoc(&extractor.ComponentDoc{Filepath: "/app/src/App.vue", Dependencies: []string{"/app/src/Layout.vue"}})
	g.AddDoc(&extractor.ComponentDoc{Filepath: "/app/src/Layout.vue", Dependencies: []string{"/app/src/theme.js"}})
	g.AddDoc(&extractor.ComponentDoc{Filepath: "/app/src/Other.vue"})
	g.LinkRelations()
	return g
}

func TestAnalyzeImpact(t *testing.T) {
	a := NewAnalyzer(newGraph(), "/app")

	t.Run("Plain module change reaches components transitively", func(t *testing.T) {
		report, err := a.AnalyzeImpact([]git.ChangedFile{{Path: "src/theme.js"}})
		require.NoError(t, err)
		assert.Empty(t, report.DirectlyAffected)
		assert.Equal(t, []string{"/app/src/App.vue", "/app/src/Layout.vue"}, report.Paths())
	})

	t.Run("Component change", func(t *testing.T) {
		report, err := a.AnalyzeImpact([]git.ChangedFile{{Path: "src/Layout.vue"}, {Path: "src/Other.vue"}})
		require.NoError(t, err)
		require.Len(t, report.DirectlyAffected, 2)
		require.Len(t, report.IndirectlyAffected, 1)
		assert.Equal(t, "/app/src/App.vue", report.IndirectlyAffected[0].Doc.Filepath)
	})

	t.Run("Deleted component", func(t *testing.T) {
		report, err := a.AnalyzeImpact([]git.ChangedFile{{Path: "src/Layout.vue", Deleted: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{"/app/src/Layout.vue"}, report.Removed)
		assert.Equal(t, []string{"/app/src/App.vue"}, report.Paths())
	})
}
