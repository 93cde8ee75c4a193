package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

var includeDirective = regexp.MustCompile(`(?i)^\s*#Include\s+(?:<([^>]+)>|"([^"]+)"|'([^']+)'|([^\s;]+))`)

// BrokenIncludePrefix marks a commented-out include that could not be resolved.
const BrokenIncludePrefix = "; [BROKEN INCLUDE] "

// IncludeRef is one #Include directive.
type IncludeRef struct {
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Text    string `json:"text"`
	Target  string `json:"target"`
	Library bool   `json:"library"`
}

// IncludeResult is a resolved (or unresolved) IncludeRef.
type IncludeResult struct {
	IncludeRef
	Resolved string `json:"resolved,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OK reports whether the include resolved to an existing file.
func (r IncludeResult) OK() bool { return r.Resolved != "" }

// ExtractIncludes returns the #Include directives of one file.
func ExtractIncludes(path string) ([]IncludeRef, error) {
	text, err := fs.ReadText(path)
	if err != nil {
		return nil, err
	}
	var refs []IncludeRef
	for i, line := range strings.Split(text, "\n") {
		m := includeDirective.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		target := ""
		for _, g := range m[1:] {
			if g != "" {
				target = g
				break
			}
		}
		if target == "" {
			continue
		}
		refs = append(refs, IncludeRef{
			Source:  path,
			Line:    i + 1,
			Text:    strings.TrimRight(line, " \t\r"),
			Target:  target,
			Library: m[1] != "",
		})
	}
	return refs, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// ResolveInclude finds the file an include points at. Library includes are
// looked up in a Lib directory next to the source, then under root. Other
// includes are tried relative to the source, relative to root, then as an
// absolute path.
func ResolveInclude(ref IncludeRef, root string) (string, bool) {
	dir := filepath.Dir(ref.Source)
	target := filepath.FromSlash(strings.ReplaceAll(ref.Target, `\`, "/"))
	var candidates []string
	if ref.Library {
		candidates = []string{
			filepath.Join(dir, "Lib", target+".ahk"),
			filepath.Join(dir, "Lib", target),
			filepath.Join(root, "Lib", target+".ahk"),
			filepath.Join(root, "Lib", target),
		}
	} else {
		candidates = []string{filepath.Join(dir, target), filepath.Join(root, target)}
		if filepath.IsAbs(target) {
			candidates = append(candidates, target)
		}
	}
	for _, c := range candidates {
		if exists(c) {
			return c, true
		}
	}
	return "", false
}

// ValidateInclude resolves ref and describes the failure when it does not.
func ValidateInclude(ref IncludeRef, root string) IncludeResult {
	if p, ok := ResolveInclude(ref, root); ok {
		return IncludeResult{IncludeRef: ref, Resolved: p}
	}
	msg := "Cannot find included file: " + ref.Target
	if ref.Library {
		msg += " (library include - expected in Lib/ subdirectory)"
	}
	return IncludeResult{IncludeRef: ref, Error: msg}
}

// ValidateIncludes checks every #Include of every .ahk file under root.
func ValidateIncludes(root string, logger *slog.Logger) ([]IncludeResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := scriptFiles(root)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var results []IncludeResult
	for _, path := range files {
		refs, err := ExtractIncludes(path)
		if err != nil {
			logger.Warn("could not read file", "path", path, "error", err)
			continue
		}
		for _, ref := range refs {
			results = append(results, ValidateInclude(ref, root))
		}
	}
	return results, nil
}

// Broken returns the unresolved includes grouped by source file.
func Broken(results []IncludeResult) map[string][]IncludeResult {
	out := make(map[string][]IncludeResult)
	for _, r := range results {
		if !r.OK() {
			out[r.Source] = append(out[r.Source], r)
		}
	}
	return out
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return n * 100 / total
}

// RenderIncludeReport renders the human-readable include report.
func RenderIncludeReport(results []IncludeResult) string {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)
	broken := Broken(results)
	nBroken := 0
	for _, list := range broken {
		nBroken += len(list)
	}
	total := len(results)
	valid := total - nBroken

	lines := []string{
		rule,
		"AutoHotkey #Include Validation Report",
		rule,
		"",
		fmt.Sprintf("Total #Include directives found: %d", total),
		fmt.Sprintf("Valid references: %d (%d%%)", valid, percent(valid, total)),
		fmt.Sprintf("Broken references: %d (%d%%)", nBroken, percent(nBroken, total)),
		"",
	}
	if nBroken > 0 {
		lines = append(lines, thin, "BROKEN REFERENCES:", thin)
		files := make([]string, 0, len(broken))
		for f := range broken {
			files = append(files, f)
		}
		sort.Strings(files)
		for _, f := range files {
			lines = append(lines, "", "File: "+f)
			for _, r := range broken[f] {
				lines = append(lines,
					fmt.Sprintf("  Line %d: %s", r.Line, r.Text),
					"    → "+r.Error)
			}
		}
	} else {
		lines = append(lines, "✓ All #Include references are valid!")
	}
	lines = append(lines, "", rule)
	return strings.Join(lines, "\n")
}

// FixBrokenIncludes comments out unresolved include lines that are not
// already comments and returns the files that changed. With dryRun set
// nothing is written.
func FixBrokenIncludes(results []IncludeResult, dryRun bool, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	broken := Broken(results)
	files := make([]string, 0, len(broken))
	for f := range broken {
		files = append(files, f)
	}
	sort.Strings(files)

	var modified []string
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read file", "path", path, "error", err)
			continue
		}
		targets := make(map[int]bool)
		for _, r := range broken[path] {
			targets[r.Line] = true
		}
		lines := strings.SplitAfter(string(data), "\n")
		changed := false
		for i, l := range lines {
			if targets[i+1] && !strings.HasPrefix(strings.TrimLeft(l, " \t"), ";") {
				lines[i] = BrokenIncludePrefix + l
				changed = true
			}
		}
		if !changed {
			continue
		}
		if !dryRun {
			if err := fs.ReplaceFile(path, []byte(strings.Join(lines, ""))); err != nil {
				return modified, err
			}
		}
		logger.Info("commented broken includes", "path", path, "dry_run", dryRun)
		modified = append(modified, path)
	}
	return modified, nil
}
