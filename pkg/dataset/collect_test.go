package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, data, 0644))
}

func TestCollectSnippets(t *testing.T) {
	ctx := context.Background()

	t.Run("Skips Other Extensions", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "test.txt", []byte("Not AHK"))
		write(t, root, "test.py", []byte("# Python"))
		write(t, root, "test.ahk", []byte("MsgBox('AHK')"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0].Response, "MsgBox")
	})

	t.Run("Nested Directories And Category", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "root.ahk", []byte("MsgBox('Root')"))
		write(t, root, "category/subcategory/nested.ahk", []byte("MsgBox('Nested')"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		require.Len(t, recs, 2)

		nested := recs[0]
		assert.Equal(t, "category", nested.Metadata["category"])
		assert.Equal(t, "category/subcategory/nested.ahk", nested.Metadata["source_path"])
		assert.Equal(t, "nested.ahk", nested.Metadata["filename"])
		assert.Contains(t, nested.Prompt, "Example ID: nested")

		assert.Equal(t, "", recs[1].Metadata["category"])
	})

	t.Run("Strips BOM", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "bom.ahk", []byte("\xEF\xBB\xBF#Requires AutoHotkey v2.0\nMsgBox('Test')"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.False(t, strings.HasPrefix(recs[0].Response, "\ufeff"))
		assert.Equal(t, 2, recs[0].Metadata["line_count"])
	})

	t.Run("Skips Empty Files", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "empty.ahk", nil)
		write(t, root, "whitespace.ahk", []byte("   \n\n  "))
		write(t, root, "content.ahk", []byte("MsgBox('Test')"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("Response Ends With One Newline", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "test.ahk", []byte("\n\nMsgBox('Test')\n\n\n"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		assert.Equal(t, "MsgBox('Test')\n", recs[0].Response)
		assert.Equal(t, "snippet", recs[0].Metadata["record_type"])
	})

	t.Run("Invalid UTF8 Is Replaced", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "test.ahk", []byte("MsgBox('Test')\xff\xfe"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("CRLF Normalized To LF", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "A/lf.ahk", []byte("x := 1\ny := 2\n"))
		write(t, root, "B/crlf.ahk", []byte("x := 1\r\ny := 2\r\n"))
		write(t, root, "C/cr.ahk", []byte("x := 1\ry := 2\r"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{})
		require.NoError(t, err)
		require.Len(t, recs, 3)
		for _, r := range recs {
			assert.Equal(t, "x := 1\ny := 2\n", r.Response)
			assert.Equal(t, 2, r.Metadata["line_count"])
		}
		assert.Len(t, Dedupe(recs), 1)
	})

	t.Run("Custom Extensions", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "a.ah2", []byte("x := 1"))
		write(t, root, "b.ahk", []byte("y := 2"))

		recs, err := CollectSnippets(ctx, root, CollectOptions{Extensions: []string{".ah2"}})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "a.ah2", recs[0].Metadata["filename"])
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		root := t.TempDir()
		write(t, root, "a.ahk", []byte("x"))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := CollectSnippets(cctx, root, CollectOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
