package doctag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("block comment", func(t *testing.T) {
		c := Parse(`/**
 * Increments the counter.
 * Second line.
 *
 * @param {number} step amount
 *   added each time
 * @public
 */`)
		assert.Equal(t, "Increments the counter.\nSecond line.", c.Description)
		require.Len(t, c.Keywords, 2)
		assert.Equal(t, Keyword{Name: "param", Description: "{number} step amount\nadded each time"}, c.Keywords[0])
		assert.Equal(t, Keyword{Name: "public"}, c.Keywords[1])
		assert.Empty(t, c.Warnings)
	})

	t.Run("line comments", func(t *testing.T) {
		c := Parse("// The label\n// @ignore")
		assert.Equal(t, "The label", c.Description)
		assert.True(t, c.Has("ignore"))
	})

	t.Run("malformed tag is dropped with a warning", func(t *testing.T) {
		c := Parse("/** Desc\n * @ broken tag\n * @1x nope\n * @private\n */")
		assert.Equal(t, "Desc", c.Description)
		require.Len(t, c.Keywords, 1)
		assert.Equal(t, "private", c.Keywords[0].Name)
		assert.Len(t, c.Warnings, 2)
	})

	t.Run("namespaced tags", func(t *testing.T) {
		c := Parse("/** @slot:header the header */")
		k, ok := c.Get("slot:header")
		require.True(t, ok)
		assert.Equal(t, "the header", k.Description)
	})

	t.Run("empty", func(t *testing.T) {
		c := Parse("")
		assert.Empty(t, c.Description)
		assert.Empty(t, c.Keywords)
	})
}

func TestAll(t *testing.T) {
	c := Parse("/**\n * @slot default body\n * @slot footer\n */")
	slots := c.All("slot")
	require.Len(t, slots, 2)
	assert.Equal(t, "default body", slots[0].Description)
	assert.Equal(t, "footer", slots[1].Description)
}
