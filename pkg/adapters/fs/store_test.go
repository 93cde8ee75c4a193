package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/core"
)

func TestStatusStore_Load(t *testing.T) {
	t.Run("Starts Empty if File Missing", func(t *testing.T) {
		s, err := NewStatusStore(filepath.Join(t.TempDir(), "review_status.json"), nil)
		require.NoError(t, err)

		st, err := s.Status(context.Background(), "a.ahk")
		require.NoError(t, err)
		assert.Equal(t, core.StatusPending, st)
	})

	t.Run("Loads Legacy Layout", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "review_status.json")
		legacy := `{
			"statuses": {"Gui/a.ahk": "approved"},
			"qualities": {"Gui/a.ahk": {"quality": "warning", "errors": 0, "warnings": 2, "lint_results": []}},
			"updated": "2025-01-02T03:04:05Z"
		}`
		require.NoError(t, os.WriteFile(p, []byte(legacy), 0644))

		s, err := NewStatusStore(p, nil)
		require.NoError(t, err)

		st, _ := s.Status(context.Background(), "Gui/a.ahk")
		assert.Equal(t, core.StatusApproved, st)
		q, ok, _ := s.Quality(context.Background(), "Gui/a.ahk")
		require.True(t, ok)
		assert.Equal(t, core.QualityWarning, q.Quality)
		assert.Equal(t, 2, q.Warnings)
	})

	t.Run("Resets on Corrupted JSON", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "review_status.json")
		require.NoError(t, os.WriteFile(p, []byte("{ invalid json"), 0644))

		s, err := NewStatusStore(p, nil)
		require.NoError(t, err)
		snap, err := s.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Empty(t, snap.Statuses)
	})
}

func TestStatusStore_Persist(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "data", "review_status.json")

	s, err := NewStatusStore(p, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetStatus(ctx, "a.ahk", core.StatusRejected))
	require.NoError(t, s.SetQuality(ctx, "a.ahk", core.QualityInfo{Quality: core.QualityError, Errors: 1}))

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	var onDisk map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Contains(t, onDisk, "statuses")
	assert.Contains(t, onDisk, "qualities")
	assert.Contains(t, onDisk, "updated")

	reopened, err := NewStatusStore(p, nil)
	require.NoError(t, err)
	st, _ := reopened.Status(ctx, "a.ahk")
	assert.Equal(t, core.StatusRejected, st)

	state := reopened.State().(StoreState)
	assert.Equal(t, 1, state.Statuses)
	assert.Equal(t, "json-store", reopened.ComponentType())
}

func TestStatusStore_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "review_status.json")
	s, err := NewStatusStore(p, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := filepath.ToSlash(filepath.Join("cat", string(rune('a'+i))+".ahk"))
			_ = s.SetStatus(ctx, id, core.StatusApproved)
		}(i)
	}
	wg.Wait()

	reopened, err := NewStatusStore(p, nil)
	require.NoError(t, err)
	snap, err := reopened.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Statuses, 20)
}
