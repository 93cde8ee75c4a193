package review

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_Collapses(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	var calls, changes atomic.Int32
	for range 5 {
		d.add(func(n int) {
			calls.Add(1)
			changes.Add(int32(n))
		})
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 5, changes.Load())

	d.add(func(int) { calls.Add(1) })
	d.stop()
	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load(), "stop cancels the pending call")
}

func TestCatalog_Watch(t *testing.T) {
	dir := scriptsDir(t)
	cat := NewCatalog(dir, nil)
	require.NoError(t, cat.Scan())

	ctx, cancel := context.WithCancel(context.Background())
	events, err := cat.Watch(ctx, 20*time.Millisecond)
	require.NoError(t, err)

	write(t, filepath.Join(dir, "Gui", "Added.ahk"), "x := 1\n")
	select {
	case e := <-events:
		assert.Equal(t, 5, e.Scripts)
		assert.GreaterOrEqual(t, e.Changes, 1)
	case <-time.After(3 * time.Second):
		t.Fatal("no rescan after adding a script")
	}
	_, ok := cat.Get("Gui/Added.ahk")
	assert.True(t, ok)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}
