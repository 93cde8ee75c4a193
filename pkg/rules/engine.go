package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// Issue is a violation found by ValidateQuick.
type Issue struct {
	RuleID      string   `json:"rule_id"`
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	Line        int      `json:"line,omitempty"`
	FixTemplate string   `json:"fix_template,omitempty"`
}

type v1Pattern struct {
	re   *regexp.Regexp
	desc string
}

// v1Patterns flag AutoHotkey v1 command syntax at the start of a line.
var v1Patterns = []v1Pattern{
	{regexp.MustCompile(`(?i)^(\s*)MsgBox\s*,`), "v1 MsgBox syntax"},
	{regexp.MustCompile(`(?i)^(\s*)Gui\s*,`), "v1 Gui syntax"},
	{regexp.MustCompile(`(?i)^(\s*)StringReplace\s*,`), "v1 StringReplace command"},
	{regexp.MustCompile(`(?i)^(\s*)IfEqual\s*,`), "v1 IfEqual syntax"},
	{regexp.MustCompile(`(?i)^(\s*)SetEnv\s*,`), "v1 SetEnv command"},
	{regexp.MustCompile(`(?i)^(\w+)\s*=\s*[^=]`), "Possible v1 assignment (should use :=)"},
}

// Engine aggregates rule sets and validates scripts against them.
type Engine struct {
	root string
	sets []*RuleSet
}

// NewEngine creates an engine for the project rooted at root.
func NewEngine(root string) *Engine {
	return &Engine{root: root}
}

// LoadAll adds each builtin rule set whose source document exists under the
// project root.
func (e *Engine) LoadAll() error {
	pack, err := Builtin()
	if err != nil {
		return err
	}
	for _, rs := range pack.RuleSets {
		doc := filepath.Join(e.root, filepath.FromSlash(rs.Source))
		if _, err := os.Stat(doc); err != nil {
			continue
		}
		clone := *rs
		clone.Source = doc
		e.sets = append(e.sets, &clone)
	}
	return nil
}

// LoadBuiltin adds every builtin rule set regardless of the project layout.
func (e *Engine) LoadBuiltin() error {
	pack, err := Builtin()
	if err != nil {
		return err
	}
	e.sets = append(e.sets, pack.RuleSets...)
	return nil
}

// Add appends rule sets, e.g. from a custom pack.
func (e *Engine) Add(sets ...*RuleSet) {
	e.sets = append(e.sets, sets...)
}

// RuleSets returns the loaded rule sets.
func (e *Engine) RuleSets() []*RuleSet {
	return e.sets
}

// Rules returns every loaded rule.
func (e *Engine) Rules() []*Rule {
	var out []*Rule
	for _, rs := range e.sets {
		out = append(out, rs.Rules...)
	}
	return out
}

// Required returns only the required rules.
func (e *Engine) Required() []*Rule {
	var out []*Rule
	for _, r := range e.Rules() {
		if r.Severity == SeverityRequired {
			out = append(out, r)
		}
	}
	return out
}

// SystemPrompt renders a complete system prompt with all rules.
func (e *Engine) SystemPrompt() string {
	parts := []string{
		"# AHK v2 Example Validation Rules\n",
		"You are an expert AutoHotkey v2 developer tasked with validating and fixing example scripts.\n",
		"Apply the following rules when analyzing scripts:\n",
	}
	for _, rs := range e.sets {
		parts = append(parts, rs.SystemPrompt())
	}
	return strings.Join(parts, "\n")
}

// FixPrompt renders a request to fix one script given its diagnostics.
func (e *Engine) FixPrompt(content string, diags []core.Diagnostic) string {
	parts := []string{
		"# Script Analysis Request\n",
		"## Current Script Content\n",
		"```ahk",
		content,
		"```\n",
	}
	if len(diags) > 0 {
		parts = append(parts, "## LSP Diagnostics Found\n")
		for _, d := range diags {
			parts = append(parts, fmt.Sprintf("- Line %v: %v [%v]",
				valueOr(d, "line", "?"), valueOr(d, "message", "Unknown issue"), valueOr(d, "severity", "error")))
		}
		parts = append(parts, "")
	}
	parts = append(parts,
		"## Task\n",
		"1. Analyze the script against all rules",
		"2. Identify all violations",
		"3. Provide a corrected version of the script",
		"4. Explain what was changed and why\n",
		"## Response Format\n",
		"Provide your response as:",
		"1. **Issues Found**: List each rule violation",
		"2. **Corrected Script**: The fixed AHK code in a code block",
		"3. **Changes Made**: Brief explanation of each fix",
	)
	return strings.Join(parts, "\n")
}

func valueOr(d core.Diagnostic, key string, def any) any {
	if v, ok := d[key]; ok && v != nil {
		return v
	}
	return def
}

// ValidateQuick runs the regex rules and the v1 syntax heuristics over a
// script without invoking any external linter.
func (e *Engine) ValidateQuick(content string) []Issue {
	var issues []Issue

	for _, r := range e.Rules() {
		re := r.Regexp()
		if re == nil {
			continue
		}
		switch {
		case r.isHeader():
			if !re.MatchString(content) {
				issues = append(issues, Issue{
					RuleID:      r.ID,
					Title:       r.Title,
					Severity:    r.Severity,
					Message:     "Missing required element: " + r.Title,
					FixTemplate: r.FixTemplate,
				})
			}
		case r.isNegative():
			if loc := re.FindStringIndex(content); loc != nil {
				issues = append(issues, Issue{
					RuleID:   r.ID,
					Title:    r.Title,
					Severity: r.Severity,
					Message:  "Found prohibited content: " + content[loc[0]:loc[1]],
					Line:     strings.Count(content[:loc[0]], "\n") + 1,
				})
			}
		}
	}

	for i, line := range strings.Split(content, "\n") {
		for _, p := range v1Patterns {
			if p.re.MatchString(line) {
				issues = append(issues, Issue{
					RuleID:   "syntax-v2-pure",
					Title:    "Pure AHK v2 Syntax",
					Severity: SeverityRequired,
					Message:  "Detected " + p.desc,
					Line:     i + 1,
				})
			}
		}
	}
	return issues
}
