package review

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/core"
)

func fixedClock() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func newTestFixer(fake *fakeRun) *Fixer {
	f := NewFixer(ahk.ParseCommand("fix {file} --level={level}"), "/project")
	f.run = fake.run
	f.now = fixedClock
	return f
}

func TestParseLevel(t *testing.T) {
	for _, l := range FixLevels {
		got, err := ParseLevel(l)
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	_, err := ParseLevel("Full")
	assert.ErrorIs(t, err, core.ErrInvalidLevel)
}

func TestFixer_Changed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	write(t, path, "x:=1\n")

	fake := &fakeRun{
		result: ahk.Result{Stdout: "done", Stderr: "", ExitCode: 0},
		before: func(argv []string) { write(t, argv[1], "x := 1\n") },
	}
	res, err := newTestFixer(fake).Fix(context.Background(), path, "formatting")
	require.NoError(t, err)

	assert.Equal(t, []string{"fix", path, "--level=formatting"}, fake.argv)
	assert.Equal(t, "/project", fake.dir)
	assert.True(t, res.Success)
	assert.True(t, res.Changed)
	assert.Equal(t, "x:=1\n", res.Original)
	assert.Equal(t, "x := 1\n", res.Fixed)
	assert.Equal(t, path+".backup-20260304-050607", res.Backup)
	assert.Equal(t, "x:=1\n", read(t, res.Backup))
	assert.Equal(t, "done", res.Stdout)
}

func TestFixer_NonZeroExitIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	write(t, path, "x:=1\n")

	fake := &fakeRun{result: ahk.Result{Stderr: "model refused", ExitCode: 3}}
	res, err := newTestFixer(fake).Fix(context.Background(), path, "full")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Changed)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "model refused", res.Stderr)
}

func TestFixer_RestoresOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	write(t, path, "original\n")

	fake := &fakeRun{
		err:    errors.New("python: not found"),
		before: func(argv []string) { write(t, argv[1], "half-written") },
	}
	res, err := newTestFixer(fake).Fix(context.Background(), path, "syntax")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "python: not found", res.Error)
	assert.Equal(t, "original\n", res.Original)
	assert.Equal(t, "original\n", read(t, path))
}

func TestFixer_Errors(t *testing.T) {
	f := newTestFixer(&fakeRun{})

	_, err := f.Fix(context.Background(), "x.ahk", "bogus")
	assert.ErrorIs(t, err, core.ErrInvalidLevel)

	res, err := f.Fix(context.Background(), filepath.Join(t.TempDir(), "gone.ahk"), "syntax")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "File not found", res.Error)
}

func TestService_FixTouchesCatalog(t *testing.T) {
	dir := scriptsDir(t)
	svc := newTestService(t, dir)
	svc.fixer = newTestFixer(&fakeRun{before: func(argv []string) { write(t, argv[1], "MsgBox \"fixed\"\n") }})

	res, err := svc.Fix(context.Background(), "Loose.ahk", "semantic")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	sc, ok := svc.Catalog().Get("Loose.ahk")
	require.True(t, ok)
	info, err := os.Stat(filepath.Join(dir, "Loose.ahk"))
	require.NoError(t, err)
	assert.Equal(t, info.Size(), sc.Size)
}
