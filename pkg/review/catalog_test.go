package review

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Scan(t *testing.T) {
	dir := scriptsDir(t)
	cat := NewCatalog(dir, nil)
	require.NoError(t, cat.Scan())

	ids := make([]string, 0)
	for _, s := range cat.List() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"Array/Deep/Sort.ahk", "Gui/Button.ahk", "Gui/Window.ahk", "Loose.ahk"}, ids)

	s, ok := cat.Get("Array/Deep/Sort.ahk")
	require.True(t, ok)
	assert.Equal(t, "Array", s.Category)
	assert.Equal(t, "Sort.ahk", s.Filename)
	assert.Equal(t, s.ID, s.RelativePath)
	assert.Equal(t, filepath.Join(dir, "Array", "Deep", "Sort.ahk"), s.AbsolutePath)
	assert.EqualValues(t, len("arr := [3, 1, 2]\n"), s.Size)
	assert.False(t, s.Modified.IsZero())

	loose, ok := cat.Get("Loose.ahk")
	require.True(t, ok)
	assert.Equal(t, Uncategorized, loose.Category)

	_, ok = cat.Get("notes.txt")
	assert.False(t, ok)
}

func TestCatalog_MissingDir(t *testing.T) {
	cat := NewCatalog(filepath.Join(t.TempDir(), "missing"), nil)
	require.NoError(t, cat.Scan())
	assert.Equal(t, 0, cat.Len())
	assert.Empty(t, cat.List())
}

func TestCatalog_Rescan(t *testing.T) {
	dir := scriptsDir(t)
	cat := NewCatalog(dir, nil)
	require.NoError(t, cat.Scan())
	assert.Equal(t, 4, cat.Len())

	write(t, filepath.Join(dir, "New", "Added.ahk"), "x := 1\n")
	require.NoError(t, cat.Scan())
	assert.Equal(t, 5, cat.Len())
	_, ok := cat.Get("New/Added.ahk")
	assert.True(t, ok)
}
