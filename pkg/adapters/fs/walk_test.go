package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestGlob(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.ahk":          "b",
		"a.ahk":          "a",
		"Gui/win.ahk":    "w",
		"Gui/deep/x.ahk": "x",
		"notes.txt":      "n",
		"lib/mod.ah2":    "m",
		".git/hook.ahk":  "ignored",
		"a/inside.ahk":   "i",
	})

	t.Run("Sorted And Filtered", func(t *testing.T) {
		got, err := GlobExt(root, ".ahk")
		require.NoError(t, err)
		assert.Equal(t, []string{"Gui/deep/x.ahk", "Gui/win.ahk", "a/inside.ahk", "a.ahk", "b.ahk"}, got)
	})

	t.Run("Multiple Patterns", func(t *testing.T) {
		got, err := Glob(root, WalkOptions{Patterns: []string{"**/*.ah2", "*.txt"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"lib/mod.ah2", "notes.txt"}, got)
	})

	t.Run("Custom Skip Dirs", func(t *testing.T) {
		got, err := Glob(root, WalkOptions{Patterns: []string{"**/*.ahk"}, SkipDirs: []string{"Gui"}})
		require.NoError(t, err)
		assert.Contains(t, got, ".git/hook.ahk")
		assert.NotContains(t, got, "Gui/win.ahk")
	})

	t.Run("Invalid Pattern", func(t *testing.T) {
		_, err := Glob(root, WalkOptions{Patterns: []string{"[unclosed"}})
		assert.Error(t, err)
	})

	t.Run("Missing Root", func(t *testing.T) {
		_, err := GlobExt(filepath.Join(root, "nope"), ".ahk")
		assert.Error(t, err)
	})
}
