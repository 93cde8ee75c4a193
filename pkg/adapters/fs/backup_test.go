package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackups(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "script.ahk")
	require.NoError(t, os.WriteFile(src, []byte("original"), 0644))

	t.Run("Sibling", func(t *testing.T) {
		bak, err := BackupSibling(src, ".bak")
		require.NoError(t, err)
		assert.Equal(t, src+".bak", bak)
		data, err := os.ReadFile(bak)
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
	})

	t.Run("Timestamped", func(t *testing.T) {
		now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
		bak, err := BackupTimestamped(src, now)
		require.NoError(t, err)
		assert.Equal(t, src+".backup-20250304-050607", bak)
	})

	t.Run("Into Directory", func(t *testing.T) {
		bak, err := BackupInto(src, filepath.Join(dir, "backup"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "backup", "script.ahk"), bak)
	})

	t.Run("Restore", func(t *testing.T) {
		bak, err := BackupSibling(src, ".orig")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(src, []byte("broken"), 0644))
		require.NoError(t, Restore(bak, src))
		data, err := os.ReadFile(src)
		require.NoError(t, err)
		assert.Equal(t, "original", string(data))
	})

	t.Run("Missing Source", func(t *testing.T) {
		_, err := BackupSibling(filepath.Join(dir, "nope.ahk"), ".bak")
		assert.Error(t, err)
	})
}
