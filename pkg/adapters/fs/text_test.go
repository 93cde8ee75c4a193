package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	t.Run("Strips BOM", func(t *testing.T) {
		got := DecodeText(append(append([]byte{}, BOM...), []byte("#Requires AutoHotkey v2.0")...))
		assert.Equal(t, "#Requires AutoHotkey v2.0", got)
	})

	t.Run("Replaces Invalid Bytes", func(t *testing.T) {
		got := DecodeText([]byte("MsgBox('Test')\xff\xfe"))
		assert.True(t, strings.HasPrefix(got, "MsgBox('Test')"))
		assert.Contains(t, got, "\uFFFD")
	})

	t.Run("Keeps Non ASCII", func(t *testing.T) {
		assert.Equal(t, "héllo ✓", DecodeText([]byte("héllo ✓")))
	})

	t.Run("HasBOM", func(t *testing.T) {
		assert.True(t, HasBOM([]byte("\xEF\xBB\xBFx")))
		assert.False(t, HasBOM([]byte("x")))
	})
}

func TestReadText(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bom.ahk")
	require.NoError(t, os.WriteFile(p, []byte("\xEF\xBB\xBFMsgBox 1"), 0644))

	got, err := ReadText(p)
	require.NoError(t, err)
	assert.Equal(t, "MsgBox 1", got)

	_, err = ReadText(filepath.Join(t.TempDir(), "missing.ahk"))
	assert.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a"}, SplitLines("a\n"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\rc"))
	assert.Equal(t, []string{"a", ""}, SplitLines("a\n\n"))
}

func TestToLF(t *testing.T) {
	assert.Equal(t, "a\nb\nc\n", ToLF("a\r\nb\rc\n"))
	assert.Equal(t, "", ToLF(""))
}
