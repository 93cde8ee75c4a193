// Package rules holds the curation rules for AutoHotkey v2 examples as
// tagged records, loaded from an embedded YAML pack, and a quick regex
// validator built on them.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity ranks how strongly a rule must be followed.
type Severity string

const (
	SeverityRequired    Severity = "required"
	SeverityRecommended Severity = "recommended"
	SeverityOptional    Severity = "optional"
)

// Category groups rules by the aspect of a script they cover.
type Category string

const (
	CategoryHeader       Category = "header"
	CategorySyntax       Category = "syntax"
	CategoryNaming       Category = "naming"
	CategoryComments     Category = "comments"
	CategoryEncoding     Category = "encoding"
	CategoryStructure    Category = "structure"
	CategoryDependencies Category = "dependencies"
)

// Categories lists every category in prompt order.
var Categories = []Category{
	CategoryHeader, CategorySyntax, CategoryNaming, CategoryComments,
	CategoryEncoding, CategoryStructure, CategoryDependencies,
}

// Title returns the capitalised category name.
func (c Category) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Rule is a single validation rule.
type Rule struct {
	ID           string   `yaml:"id" json:"id"`
	Title        string   `yaml:"title" json:"title"`
	Description  string   `yaml:"description" json:"description"`
	Category     Category `yaml:"category" json:"category"`
	Severity     Severity `yaml:"severity" json:"severity"`
	ExamplesGood []string `yaml:"examples_good" json:"examples_good,omitempty"`
	ExamplesBad  []string `yaml:"examples_bad" json:"examples_bad,omitempty"`
	Pattern      string   `yaml:"pattern" json:"pattern,omitempty"`
	FixTemplate  string   `yaml:"fix_template" json:"fix_template,omitempty"`

	re *regexp.Regexp
}

// compile prepares the rule pattern in multi-line mode.
func (r *Rule) compile() error {
	if r.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?m)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %s: bad pattern: %w", r.ID, err)
	}
	r.re = re
	return nil
}

// Regexp returns the compiled pattern, or nil when the rule has none.
func (r *Rule) Regexp() *regexp.Regexp {
	return r.re
}

// isHeader rules must match somewhere in the script.
func (r *Rule) isHeader() bool {
	return strings.HasPrefix(r.ID, "header-")
}

// isNegative rules must not match anywhere in the script.
func (r *Rule) isNegative() bool {
	return strings.Contains(r.ID, "no-") || strings.Contains(r.ID, "artifacts")
}

// Prompt renders the rule as a markdown fragment for a model prompt.
func (r *Rule) Prompt() string {
	parts := []string{
		"## Rule: " + r.Title,
		"**Severity:** " + string(r.Severity),
		"**Category:** " + string(r.Category),
		"\n" + r.Description,
	}
	if len(r.ExamplesGood) > 0 {
		parts = append(parts, "\n**Correct examples:**")
		for _, ex := range r.ExamplesGood {
			parts = append(parts, "```ahk\n"+ex+"\n```")
		}
	}
	if len(r.ExamplesBad) > 0 {
		parts = append(parts, "\n**Incorrect examples (avoid):**")
		for _, ex := range r.ExamplesBad {
			parts = append(parts, "```ahk\n"+ex+"\n```")
		}
	}
	return strings.Join(parts, "\n")
}

// RuleSet is a named collection of rules from one source document.
type RuleSet struct {
	Name   string  `yaml:"name" json:"name"`
	Source string  `yaml:"source" json:"source"`
	Rules  []*Rule `yaml:"rules" json:"rules"`
}

// ByCategory returns the rules of one category, in declaration order.
func (rs *RuleSet) ByCategory(c Category) []*Rule {
	var out []*Rule
	for _, r := range rs.Rules {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// Required returns the rules with required severity.
func (rs *RuleSet) Required() []*Rule {
	var out []*Rule
	for _, r := range rs.Rules {
		if r.Severity == SeverityRequired {
			out = append(out, r)
		}
	}
	return out
}

// SystemPrompt renders every rule grouped by category.
func (rs *RuleSet) SystemPrompt() string {
	parts := []string{
		"# " + rs.Name + "\n",
		"Source: " + rs.Source + "\n",
	}
	for _, c := range Categories {
		list := rs.ByCategory(c)
		if len(list) == 0 {
			continue
		}
		parts = append(parts, "\n## "+c.Title()+" Rules\n")
		for _, r := range list {
			parts = append(parts, r.Prompt(), "")
		}
	}
	return strings.Join(parts, "\n")
}
