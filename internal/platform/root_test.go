package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   repo/ (ahkcurate.yaml)
	//     subdir/nested/
	//   empty/
	baseDir := t.TempDir()
	repoDir := filepath.Join(baseDir, "repo")
	nestedDir := filepath.Join(repoDir, "subdir", "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0755))
	require.NoError(t, os.MkdirAll(emptyDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(repoDir, ConfigFile), []byte("store: json\n"), 0644))

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
	}{
		{name: "Start at Root", startPath: repoDir, wantRoot: repoDir},
		{name: "Start in Subdir", startPath: filepath.Join(repoDir, "subdir"), wantRoot: repoDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: repoDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.wantRoot), filepath.Clean(got))
		})
	}

	t.Run("Data Directory", func(t *testing.T) {
		dir := filepath.Join(baseDir, "dataonly")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "Scripts"), 0755))
		got, err := FindRoot(filepath.Join(dir, "data", "Scripts"))
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})
}
