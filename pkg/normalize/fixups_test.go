package normalize_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/normalize"
)

func TestDowngradeRequires(t *testing.T) {
	out, ok := normalize.DowngradeRequires("#Requires AutoHotkey v2.1-alpha.16\nx := 1\n")
	assert.True(t, ok)
	assert.Equal(t, "#Requires AutoHotkey v2.0\nx := 1\n", out)

	_, ok = normalize.DowngradeRequires("#Requires AutoHotkey v2.0\n")
	assert.False(t, ok)
}

func TestFixStringMult(t *testing.T) {
	out, ok := normalize.FixStringMult("OutputDebug(\"`n\" \"=\" * 70 \"`n\")\nline := '-' *3")
	assert.True(t, ok)
	assert.Equal(t, "OutputDebug(\"`n\" Format(\"{:=<70}\", \"\") \"`n\")\nline := Format(\"{:-<3}\", \"\")", out)

	_, ok = normalize.FixStringMult(`x := "ab" * 2`)
	assert.False(t, ok)
}

func TestAddJSONInclude(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "after directives",
			in:   "; header\n#Requires AutoHotkey v2.0\n#SingleInstance Force\n\nobj := JSON.Parse(s)\n",
			want: "; header\n#Requires AutoHotkey v2.0\n#SingleInstance Force\n#Include JSON.ahk\n\nobj := JSON.Parse(s)\n",
			ok:   true,
		},
		{
			name: "before first code",
			in:   "; header\nobj := JSON.Parse(s)",
			want: "; header\n#Include JSON.ahk\nobj := JSON.Parse(s)",
			ok:   true,
		},
		{
			name: "already included",
			in:   "#Include <JSON>\nJSON.Parse(s)\n",
			want: "#Include <JSON>\nJSON.Parse(s)\n",
		},
		{
			name: "defines class",
			in:   "class JSON {\n}\nJSON.Parse(s)\n",
			want: "class JSON {\n}\nJSON.Parse(s)\n",
		},
		{
			name: "unused",
			in:   "x := 1\n",
			want: "x := 1\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, ok := normalize.AddJSONInclude(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestSplitConcatenatedDirective(t *testing.T) {
	in := "#SingleInstance Force ; Source: demo.ah2 a := 1\n#SingleInstance Force ; MyVar := \"joe\"\n#SingleInstance Force ; Source: only\n"
	out, ok := normalize.SplitConcatenatedDirective(in)
	assert.True(t, ok)
	assert.Equal(t, "#SingleInstance Force ; Source: demo.ah2\na := 1\n#SingleInstance Force\nMyVar := \"joe\"\n#SingleInstance Force ; Source: only\n", out)

	_, ok = normalize.SplitConcatenatedDirective("#SingleInstance Force\n")
	assert.False(t, ok)
}

func TestHoistNestedClasses(t *testing.T) {
	in := "Main() {\n    class Helper {\n        Run() {\n        }\n    }\n    return 1\n}\n"
	out, ok := normalize.HoistNestedClasses(in)
	assert.True(t, ok)
	assert.Equal(t, "Main() {\n    return 1\n}\n\n; Moved class Helper from nested scope\nclass Helper {\n    Run() {\n    }\n}\n", out)

	_, ok = normalize.HoistNestedClasses("class Top {\n}\n")
	assert.False(t, ok)
}

func TestLookupFixups(t *testing.T) {
	fx, err := normalize.LookupFixups("json-include", "downgrade-requires")
	require.NoError(t, err)
	require.Len(t, fx, 2)
	assert.Equal(t, "json-include", fx[0].Name)

	_, err = normalize.LookupFixups("bogus")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRunFixups(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	write(t, filepath.Join(root, "x", "a.ahk"), "#Requires AutoHotkey v2.1-alpha.16\nMsgBox(\"-\" * 5)\n")
	write(t, filepath.Join(root, "b.ahk"), "#Requires AutoHotkey v2.0\n")

	fx, err := normalize.LookupFixups("downgrade-requires", "string-mult")
	require.NoError(t, err)

	res, err := normalize.RunFixups(ctx, root, fx, normalize.FixupOptions{DryRun: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, normalize.FixupResult{Path: "x/a.ahk", Applied: []string{"downgrade-requires", "string-mult"}}, res[0])
	assert.Contains(t, read(t, filepath.Join(root, "x", "a.ahk")), "alpha")

	_, err = normalize.RunFixups(ctx, root, fx, normalize.FixupOptions{})
	require.NoError(t, err)
	assert.Equal(t, "#Requires AutoHotkey v2.0\nMsgBox(Format(\"{:-<5}\", \"\"))\n", read(t, filepath.Join(root, "x", "a.ahk")))
}
