package normalize_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/normalize"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "b", "two.ah2"), "HotkeyStressTest()\n")
	write(t, filepath.Join(root, "a.ah2"), "clean\n")
	write(t, filepath.Join(root, "skip.ahk"), "HotkeyStressTest()\n")

	repls, err := normalize.Compile(normalize.DefaultPairs)
	require.NoError(t, err)

	t.Run("dry run", func(t *testing.T) {
		edits, err := normalize.Run(ctx, root, repls, normalize.Options{DryRun: true})
		require.NoError(t, err)
		require.Len(t, edits, 2)
		assert.Empty(t, edits[0].Replacements)
		assert.Equal(t, []string{"'HotkeyStressTest' -> 'HotkeyDemo' (1x)"}, edits[1].Replacements)
		assert.Equal(t, "HotkeyStressTest()\n", read(t, filepath.Join(root, "b", "two.ah2")))
	})

	t.Run("write", func(t *testing.T) {
		edits, err := normalize.Run(ctx, root, repls, normalize.Options{})
		require.NoError(t, err)
		assert.Equal(t, "HotkeyDemo()\n", read(t, filepath.Join(root, "b", "two.ah2")))
		assert.Equal(t, "HotkeyStressTest()\n", read(t, filepath.Join(root, "skip.ahk")))

		report := filepath.Join(root, "out", "report.json")
		require.NoError(t, normalize.WriteReport(report, edits))
		got := read(t, report)
		assert.Contains(t, got, `"'HotkeyStressTest' -> 'HotkeyDemo' (1x)"`)
		assert.NotContains(t, got, "a.ah2")
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := normalize.Run(ctx, filepath.Join(root, "nope"), repls, normalize.Options{})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}
