package format_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/format"
)

func codes(res format.FileResult) []string {
	out := make([]string, len(res.Findings))
	for i, f := range res.Findings {
		out[i] = f.Code
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const misordered = "\xef\xbb\xbf; header\n#SingleInstance Force\n#Requires AutoHotkey v2.0  \nx := 1"

func TestCheckHygiene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, misordered)

	res, err := format.CheckHygiene(path)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, []string{
		format.CodeBOM,
		format.CodeRequiresNotFirst,
		format.CodeTrailingWhitespace,
		format.CodeMissingFinalNewline,
	}, codes(res))
	assert.Equal(t, 3, res.Findings[2].Line)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, misordered, string(got), "check mode never writes")
}

func TestCheckHygiene_MissingDirectives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, "MsgBox(1)\n")

	res, err := format.CheckHygiene(path)
	require.NoError(t, err)
	assert.Equal(t, []string{format.CodeMissingRequires, format.CodeMissingSingle}, codes(res))
	assert.Equal(t, format.SeverityError, res.Findings[0].Severity)
}

func TestCheckHygiene_DecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, "\xef\xbb\xbf\xff\xfe")

	res, err := format.CheckHygiene(path)
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, format.CodeDecode, res.Findings[0].Code)
	assert.Contains(t, res.Findings[0].Message, "position 0")
}

func TestCheckHygiene_TrailingCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, "#Requires AutoHotkey v2.0\n#SingleInstance\n"+strings.Repeat("x \n", 60))

	res, err := format.CheckHygiene(path)
	require.NoError(t, err)
	require.Len(t, res.Findings, 51)
	assert.Equal(t, "Trailing whitespace (and 10 more lines).", res.Findings[50].Message)
	assert.Zero(t, res.Findings[50].Line)
}

func TestCheckHygiene_InlineHotkey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, "#Requires AutoHotkey v2.0\n#SingleInstance Force F1::MsgBox()\n")

	res, err := format.CheckHygiene(path)
	require.NoError(t, err)
	assert.Equal(t, []string{format.CodeSingleInlineHotkey}, codes(res))
	assert.Equal(t, 2, res.Findings[0].Line)
}

func TestFixHygiene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, misordered)

	res, err := format.FixHygiene(path, format.LineEndingsPreserve)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Contains(t, codes(res), format.CodeBOM)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "; header\n#Requires AutoHotkey v2.0\n#SingleInstance Force\nx := 1\n", string(got))

	again, err := format.FixHygiene(path, format.LineEndingsPreserve)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Empty(t, again.Findings)
}

func TestFixHygiene_LineEndingPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.ahk")
	writeFile(t, path, "#Requires AutoHotkey v2.0\n#SingleInstance\n")

	res, err := format.FixHygiene(path, format.LineEndingsCRLF)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#Requires AutoHotkey v2.0\r\n#SingleInstance\r\n", string(got))

	res, err = format.FixHygiene(path, format.LineEndingsPreserve)
	require.NoError(t, err)
	assert.False(t, res.Changed, "preserve keeps the detected CRLF")
}

func TestSplitInlineHotkeys(t *testing.T) {
	out, changed := format.SplitInlineHotkeys([]string{
		"#SingleInstance Force F1::MsgBox() ; note",
		"#SingleInstance Force",
		"F2::Reload()",
	})
	assert.True(t, changed)
	assert.Equal(t, []string{
		"#SingleInstance Force ; note",
		"F1::MsgBox()",
		"#SingleInstance Force",
		"F2::Reload()",
	}, out)
}

func TestReorderHeader(t *testing.T) {
	in := []string{
		"/*",
		" docblock",
		"*/",
		"#Include lib.ahk",
		"#SingleInstance Force",
		"#Warn",
		"#Requires AutoHotkey v2.0",
		"",
		"x := 1",
		"#Include late.ahk",
	}
	assert.Equal(t, []string{
		"/*",
		" docblock",
		"*/",
		"#Requires AutoHotkey v2.0",
		"#SingleInstance Force",
		"#Include lib.ahk",
		"#Warn",
		"",
		"x := 1",
		"#Include late.ahk",
	}, format.ReorderHeader(in))
}

func TestRunHygiene(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.ahk"), "#Requires AutoHotkey v2.0\n#SingleInstance\n")
	writeFile(t, filepath.Join(root, "a", "bad.ahk"), "MsgBox(1)")
	writeFile(t, filepath.Join(root, ".history", "old.ahk"), "MsgBox(1)")

	results, err := format.RunHygiene(root, format.HygieneOptions{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(root, "a", "bad.ahk"), results[0].Path)

	sum := format.Summarize(results)
	assert.Equal(t, 2, sum.Files)
	assert.Equal(t, 1, sum.Errors)
	assert.Equal(t, 2, sum.Warnings)
	assert.Equal(t, []string{results[0].Path}, sum.ErrorFiles)
	assert.True(t, sum.Failed(false))

	limited, err := format.RunHygiene(root, format.HygieneOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	report := filepath.Join(root, "out", "hygiene.json")
	require.NoError(t, format.WriteHygieneReport(report, results))
	assert.FileExists(t, report)

	_, err = format.RunHygiene(filepath.Join(root, "missing"), format.HygieneOptions{})
	assert.Error(t, err)
}

func TestParseLineEndings(t *testing.T) {
	p, err := format.ParseLineEndings("")
	require.NoError(t, err)
	assert.Equal(t, format.LineEndingsPreserve, p)
	_, err = format.ParseLineEndings("cr")
	assert.Error(t, err)
}
