package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_TakeEmpties(t *testing.T) {
	var c Cell
	_, ok := c.Take()
	assert.False(t, ok)

	c.Store("hello")
	text, ok := c.Take()
	require.True(t, ok)
	assert.Equal(t, "hello", text)

	_, ok = c.Take()
	assert.False(t, ok)
}

func TestMemory_Destinations(t *testing.T) {
	var m Memory
	require.NoError(t, m.SetContents(Clipboard, "a"))
	require.NoError(t, m.SetContents(PrimarySelection, "b"))

	assert.Equal(t, "a", fetch(t, &m, SourceClipboard))
	assert.Equal(t, "b", fetch(t, &m, SourcePrimarySelection))

	require.NoError(t, m.SetContents(ClipboardAndPrimarySelection, "c"))
	assert.Equal(t, "c", fetch(t, &m, SourceClipboard))
	assert.Equal(t, "c", fetch(t, &m, SourcePrimarySelection))
}

func fetch(t *testing.T, p Provider, src Source) string {
	t.Helper()
	var cell Cell
	done := make(chan struct{})
	p.GetContents(src, func(text string, err error) {
		assert.NoError(t, err)
		cell.Store(text)
		close(done)
	})
	<-done
	text, ok := cell.Take()
	require.True(t, ok)
	return text
}
