// Package normalize rewrites converter artefacts and legacy references in
// AutoHotkey sources with ordered regular-expression replacements, and hosts
// the one-shot fixups used to repair scraped examples.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/core"
)

// Pair is an uncompiled search/replace specification. Replacement uses
// Python-style group references (\1, \g<1>, \g<name>).
type Pair struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// DefaultPairs map common converter artefacts to meaningful names and
// rewrite issue references in comments.
var DefaultPairs = []Pair{
	{`V1toV2_GblCode_001`, "GlobalInitBlock"},
	{`V1toV2_GblCode_002`, "GlobalInitBlock2"},
	{`HotkeyStressTest`, "HotkeyDemo"},
	{`converter stress test`, "Demonstration"},
	{`Issue #(\d+)`, `Legacy issue reference (Issue #\g<1>)`},
}

// ParsePattern parses "regex=replacement", splitting on the first '='.
func ParsePattern(spec string) (Pair, error) {
	lhs, rhs, ok := strings.Cut(spec, "=")
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q", core.ErrInvalidPattern, spec)
	}
	return Pair{Pattern: strings.TrimSpace(lhs), Replacement: strings.TrimSpace(rhs)}, nil
}

// Replacement is a compiled Pair.
type Replacement struct {
	Pair
	re       *regexp.Regexp
	template string
}

// Compile compiles pairs in order.
func Compile(pairs []Pair) ([]*Replacement, error) {
	out := make([]*Replacement, 0, len(pairs))
	for _, p := range pairs {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", core.ErrInvalidPattern, p.Pattern, err)
		}
		out = append(out, &Replacement{Pair: p, re: re, template: translateTemplate(p.Replacement)})
	}
	return out, nil
}

// Apply runs each replacement on the output of the previous one and returns
// the final text plus one note per replacement that matched.
func Apply(text string, repls []*Replacement) (string, []string) {
	var notes []string
	for _, r := range repls {
		n := len(r.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		text = r.re.ReplaceAllString(text, r.template)
		notes = append(notes, fmt.Sprintf("%s -> %s (%dx)", quote(r.Pattern), quote(r.Replacement), n))
	}
	return text, notes
}

var groupRef = regexp.MustCompile(`\\g<(\w+)>|\\(\d{1,2})`)

// translateTemplate converts Python-style group references into Go's
// ${name} form and escapes literal dollar signs.
func translateTemplate(s string) string {
	s = strings.ReplaceAll(s, "$", "$$")
	return groupRef.ReplaceAllStringFunc(s, func(m string) string {
		sub := groupRef.FindStringSubmatch(m)
		name := sub[1]
		if name == "" {
			name = sub[2]
		}
		return "${" + name + "}"
	})
}

// quote renders a string the way edit notes have always shown it: single
// quoted with backslashes doubled.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
