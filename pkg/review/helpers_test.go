package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
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

// scriptsDir lays out a small scripts tree.
func scriptsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write(t, filepath.Join(dir, "Gui", "Window.ahk"), "#Requires AutoHotkey v2.0\nMyGui := Gui()\n")
	write(t, filepath.Join(dir, "Gui", "Button.ahk"), "#Requires AutoHotkey v2.0\n")
	write(t, filepath.Join(dir, "Array", "Deep", "Sort.ahk"), "arr := [3, 1, 2]\n")
	write(t, filepath.Join(dir, "Loose.ahk"), "MsgBox 1\n")
	write(t, filepath.Join(dir, "notes.txt"), "ignored")
	write(t, filepath.Join(dir, ".git", "hook.ahk"), "ignored")
	return dir
}

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	cat := NewCatalog(dir, nil)
	require.NoError(t, cat.Scan())
	store, err := fs.NewStatusStore(filepath.Join(t.TempDir(), "review_status.json"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(Config{Catalog: cat, Store: store})
}

// fakeRun returns canned output and records the argv it was called with.
type fakeRun struct {
	argv   []string
	dir    string
	result ahk.Result
	err    error
	before func(argv []string)
}

func (f *fakeRun) run(_ context.Context, argv []string, opts ahk.RunOptions) (ahk.Result, error) {
	f.argv = argv
	f.dir = opts.Dir
	if f.before != nil {
		f.before(argv)
	}
	return f.result, f.err
}
