package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// resetFlags restores every flag in the tree to its default, since the
// command tree is package state shared by all tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "ahkcurate version "))
}

func TestBuild_DryRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw")
	write(t, filepath.Join(in, "Gui", "Window.ahk"), "MyGui := Gui()\n")
	write(t, filepath.Join(in, "Gui", "Copy.ahk"), "MyGui := Gui()\n")
	write(t, filepath.Join(in, "Array", "Sort.ahk"), "arr := [3, 1, 2]\n")

	out, err := run(t, "", "build", "--input-dir", in, "--output-dir", filepath.Join(dir, "out"), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 3 raw snippets from "+in+".")
	assert.Contains(t, out, "After deduplication: 2 unique records.")
	assert.Contains(t, out, "Split sizes (train/val/test): 2/0/0")
	assert.Contains(t, out, "Dry run complete; no files written.")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestBuild_WritesSplits(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw")
	write(t, filepath.Join(in, "a.ahk"), "x := 1\n")
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "", "build", "--input-dir", in, "--output-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote datasets to "+outDir+".")
	for _, name := range []string{"train.jsonl", "val.jsonl", "test.jsonl"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}
}

func TestBuild_NegativeSeed(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "raw")
	for _, name := range []string{"a.ahk", "b.ahk", "c.ahk"} {
		write(t, filepath.Join(in, name), name+" := 1\n")
	}
	args := []string{"build", "--input-dir", in, "--val-ratio", "0.34", "--test-ratio", "0", "--dry-run"}

	out, err := run(t, "", append(args, "--seed", "-7")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Split sizes (train/val/test): 2/1/0")

	again, err := run(t, "", append(args, "--seed", "-7")...)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestBuild_InvalidRatios(t *testing.T) {
	_, err := run(t, "", "build", "--val-ratio", "0.6", "--test-ratio", "0.5", "--dry-run")
	assert.ErrorIs(t, err, core.ErrInvalidRatio)
}

func TestHarmony(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "train.jsonl")
	write(t, in, `{"prompt":"p","response":"r\n","metadata":{}}`+"\n")
	out, err := run(t, "", "harmony", in, filepath.Join(dir, "h.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 1 examples")
}

func TestNormalize_DryRun(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.ah2")
	write(t, path, "foo := 1\n")

	out, err := run(t, "", "normalize", "--root", root, "--pattern", "foo=bar", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] ")
	assert.Contains(t, out, "'foo' -> 'bar' (1x)")
	assert.Contains(t, out, "Dry run complete; no files written.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "foo := 1\n", string(data))

	_, err = run(t, "", "normalize", "--root", root, "--pattern", "novalue")
	assert.ErrorIs(t, err, core.ErrInvalidPattern)
}

func TestFixup(t *testing.T) {
	out, err := run(t, "", "fixup", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "downgrade-requires")

	root := t.TempDir()
	path := filepath.Join(root, "a.ahk")
	write(t, path, "#Requires AutoHotkey v2.1-alpha.16\nx := 1\n")
	out, err = run(t, "", "fixup", "--root", root, "--apply", "downgrade-requires")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files changed.")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#Requires AutoHotkey v2.0")

	_, err = run(t, "", "fixup", "--root", root)
	assert.Error(t, err)
}

func TestFormat_CheckThenFix(t *testing.T) {
	dir := t.TempDir()
	scripts := filepath.Join(dir, "scripts")
	write(t, filepath.Join(scripts, "a.ahk"), "f() {\n\tx := 1\n  y := 2\n}\n")
	report := filepath.Join(dir, "report.json")

	out, err := run(t, "", "format", "check", "--root", scripts, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "Total files checked: 1")
	assert.Contains(t, out, "Files with issues: 1")
	assert.Contains(t, out, "  indentation: ")
	assert.FileExists(t, report)

	out, err = run(t, "", "format", "fix", "--report", report, "--backup-dir", filepath.Join(dir, "backup"))
	require.NoError(t, err)
	assert.Contains(t, out, "Files fixed: 1")
	assert.Contains(t, out, "No errors encountered.")
	assert.FileExists(t, filepath.Join(dir, "backup", "a.ahk"))
}

func TestFormat_Hygiene(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "ok.ahk"), "#Requires AutoHotkey v2.0\n#SingleInstance Force\nx := 1\n")

	out, err := run(t, "", "format", "hygiene", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Scanned 1 files: no findings.")

	write(t, filepath.Join(root, "bad.ahk"), "x := 1   \n")
	out, err = run(t, "", "format", "hygiene", "--root", root)
	assert.Error(t, err)
	assert.Contains(t, out, "Error files:")

	_, err = run(t, "", "format", "hygiene", "--root", root, "--line-endings", "mac")
	assert.Error(t, err)
}

func TestAudit_Headers(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "ok.ahk"), "#Requires AutoHotkey v2.0\n#SingleInstance Force\n")
	write(t, filepath.Join(root, "bad.ahk"), "x := 1\n")

	out, err := run(t, "", "audit", "headers", "--root", root)
	assert.Error(t, err)
	assert.Contains(t, out, "  Total AHK files: 2")
	assert.Contains(t, out, "Files missing #Requires (1):")

	out, err = run(t, "", "audit", "fix-headers", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "  Files modified: 1")

	out, err = run(t, "", "audit", "headers", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "All files have required headers!")
}

func TestAudit_Includes(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "lib.ahk"), "x := 1\n")
	write(t, filepath.Join(root, "main.ahk"), "#Include lib.ahk\n#Include missing.ahk\n")

	out, err := run(t, "", "audit", "includes", "--root", root, "--dry-run")
	assert.Error(t, err)
	assert.Contains(t, out, "Found 2 .ahk files")
	assert.Contains(t, out, "Found 2 #Include directives")
	assert.Contains(t, out, "Dry run: Would modify 1 files")
}

const lintSample = `{
  "summary": {"totalFiles": 2, "filesWithErrors": 1, "filesWithWarnings": 0, "totalErrors": 1, "totalWarnings": 0},
  "files": [
    {"file": "/data/Scripts/Gui/a.ahk", "summary": {"errors": 0, "warnings": 0}},
    {"file": "/data/Scripts/Gui/b.ahk", "summary": {"errors": 1, "warnings": 0},
     "diagnostics": [{"message": "missing operand"}]}
  ]
}`

func TestLintReport_Stdin(t *testing.T) {
	out, err := run(t, lintSample, "lint-report", "-", "--root", "/data/Scripts")
	require.NoError(t, err)
	assert.Contains(t, out, "AHK V2 SCRIPT CORPUS - LINTER ANALYSIS")
	assert.Contains(t, out, "missing operand")

	out, err = run(t, lintSample, "lint-report", "-", "--root", "/data/Scripts", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"directories"`)
}

func TestProblems(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "broken.ahk")
	write(t, script, "a := 1\nb := (\nc := 3\n")
	problems := filepath.Join(dir, "problems.json")
	write(t, problems, `[{"resource": "`+filepath.ToSlash(script)+`", "severity": 8, "message": "missing )", "startLineNumber": 2, "startColumn": 6}]`)

	out, err := run(t, "", "problems", "--problems", problems, "--index", "0", "--context", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Severity: error")
	assert.Contains(t, out, "> 0002 b := (")

	chat := filepath.Join(dir, "chat", "chat.txt")
	out, err = run(t, "", "problems", "--problems", problems, "--match", "BROKEN", "--chat-file", chat)
	require.NoError(t, err)
	assert.Contains(t, out, "Appended problem from")
	assert.FileExists(t, chat)

	_, err = run(t, "", "problems", "--problems", problems)
	assert.Error(t, err)
	_, err = run(t, "", "problems", "--problems", problems, "--index", "0", "--match", "x")
	assert.Error(t, err)
	_, err = run(t, "", "problems", "--problems", problems, "--index", "5")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestOrganize_DryRun(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "Array_Sort.ahk"), "x := 1\n")
	write(t, filepath.Join(root, "misc.ahk"), "y := 2\n")

	out, err := run(t, "", "organize", "--root", root, "--list-unmatched")
	require.NoError(t, err)
	assert.Contains(t, out, "DRY RUN MODE - No files will be moved")
	assert.Contains(t, out, "  Would move: Array_Sort.ahk -> Array/")
	assert.Contains(t, out, "ALL UNMATCHED FILES")
	assert.FileExists(t, filepath.Join(root, "Array_Sort.ahk"))

	out, err = run(t, "", "organize", "--root", root, "--execute")
	require.NoError(t, err)
	assert.Contains(t, out, "  Moved: Array_Sort.ahk -> Array/")
	assert.FileExists(t, filepath.Join(root, "Array", "Array_Sort.ahk"))
}

func TestRules(t *testing.T) {
	project := t.TempDir()
	write(t, filepath.Join(project, "ahkcurate.yaml"), "store: json\n")

	out, err := run(t, "", "--project", project, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[required]")

	out, err = run(t, "", "--project", project, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "Required rules: ")

	script := filepath.Join(project, "v1.ahk")
	write(t, script, "MsgBox, hello\n")
	out, err = run(t, "", "--project", project, "rules", "validate", script)
	require.NoError(t, err)
	assert.Contains(t, out, "v1 MsgBox syntax")

	out, err = run(t, "", "--project", project, "rules", "validate", "--json", script)
	require.NoError(t, err)
	assert.Contains(t, out, `"rule_id": "syntax-v2-pure"`)
}
