package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/ahkcurate/pkg/core"
)

func builtinEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(t.TempDir())
	require.NoError(t, e.LoadBuiltin())
	return e
}

func TestBuiltinPack(t *testing.T) {
	pack, err := Builtin()
	require.NoError(t, err)
	require.Len(t, pack.RuleSets, 2)

	agents, ok := pack.Find("data/Scripts/AGENTS.md")
	require.True(t, ok)
	assert.Len(t, agents.Rules, 9)
	assert.Len(t, agents.Required(), 4)
	assert.Len(t, agents.ByCategory(CategoryHeader), 2)

	guide, ok := pack.Find("docs/dataset_guidelines.md")
	require.True(t, ok)
	assert.Len(t, guide.Rules, 3)

	for _, rs := range pack.RuleSets {
		for _, r := range rs.Rules {
			assert.NotEmpty(t, r.Title, r.ID)
			assert.Contains(t, Categories, r.Category, r.ID)
		}
	}
}

func TestLoadAll_OnlyExistingDocs(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(root)
	require.NoError(t, e.LoadAll())
	assert.Empty(t, e.Rules())

	docs := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(docs, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "dataset_guidelines.md"), []byte("# guide"), 0644))

	e = NewEngine(root)
	require.NoError(t, e.LoadAll())
	require.Len(t, e.RuleSets(), 1)
	assert.Equal(t, "Dataset Curation Guidelines", e.RuleSets()[0].Name)
	assert.Equal(t, filepath.Join(docs, "dataset_guidelines.md"), e.RuleSets()[0].Source)
}

func TestRulePrompt(t *testing.T) {
	r := &Rule{
		Title:        "T",
		Description:  "D",
		Category:     CategoryHeader,
		Severity:     SeverityRequired,
		ExamplesGood: []string{"good"},
		ExamplesBad:  []string{"bad"},
	}
	assert.Equal(t, "## Rule: T\n**Severity:** required\n**Category:** header\n\nD\n"+
		"\n**Correct examples:**\n```ahk\ngood\n```\n"+
		"\n**Incorrect examples (avoid):**\n```ahk\nbad\n```", r.Prompt())
}

func TestSystemPrompt(t *testing.T) {
	e := builtinEngine(t)
	p := e.SystemPrompt()
	assert.True(t, strings.HasPrefix(p, "# AHK v2 Example Validation Rules\n"))
	assert.Contains(t, p, "## Header Rules")
	assert.Contains(t, p, "## Dependencies Rules")
	assert.Contains(t, p, "# Dataset Curation Guidelines")
	assert.Less(t, strings.Index(p, "## Header Rules"), strings.Index(p, "## Syntax Rules"))
}

func TestFixPrompt(t *testing.T) {
	e := builtinEngine(t)
	p := e.FixPrompt("MsgBox, hi", []core.Diagnostic{
		{"line": float64(3), "message": "bad call", "severity": "warning"},
		{},
	})
	assert.Contains(t, p, "```ahk\nMsgBox, hi\n```")
	assert.Contains(t, p, "- Line 3: bad call [warning]")
	assert.Contains(t, p, "- Line ?: Unknown issue [error]")

	assert.NotContains(t, e.FixPrompt("x", nil), "LSP Diagnostics")
}

func TestValidateQuick(t *testing.T) {
	e := builtinEngine(t)

	t.Run("Clean Script", func(t *testing.T) {
		issues := e.ValidateQuick("#Requires AutoHotkey v2.0\n#SingleInstance Force\n; Shows a greeting\nMsgBox(\"hi\")\n")
		assert.Empty(t, issues)
	})

	t.Run("Missing Headers", func(t *testing.T) {
		issues := e.ValidateQuick("MsgBox(\"hi\")")
		ids := map[string]Issue{}
		for _, i := range issues {
			ids[i.RuleID] = i
		}
		require.Contains(t, ids, "header-requires")
		require.Contains(t, ids, "header-singleinstance")
		assert.Equal(t, "#Requires AutoHotkey v2.0", ids["header-requires"].FixTemplate)
	})

	t.Run("Artifacts Report Line", func(t *testing.T) {
		issues := e.ValidateQuick("#Requires AutoHotkey v2.0\n#SingleInstance Force\n; Issue #42 regression\n")
		require.Len(t, issues, 1)
		assert.Equal(t, "content-no-artifacts", issues[0].RuleID)
		assert.Equal(t, 3, issues[0].Line)
		assert.Equal(t, "Found prohibited content: Issue #42", issues[0].Message)
	})

	t.Run("V1 Syntax", func(t *testing.T) {
		content := "#Requires AutoHotkey v2.0\n#SingleInstance Force\n  msgbox, Hello\nGui, Add, Button\nvar = value\nx := 1\n"
		var lines []int
		for _, i := range e.ValidateQuick(content) {
			assert.Equal(t, "syntax-v2-pure", i.RuleID)
			lines = append(lines, i.Line)
		}
		assert.Equal(t, []int{3, 4, 5}, lines)
	})
}
