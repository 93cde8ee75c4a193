package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// Fixup is a named whole-file rewrite. Apply returns the new content and
// whether anything changed.
type Fixup struct {
	Name        string
	Description string
	Apply       func(content string) (string, bool)
}

const (
	alphaRequires = "#Requires AutoHotkey v2.1-alpha.16"
	v2Requires    = "#Requires AutoHotkey v2.0"
	jsonInclude   = "#Include JSON.ahk"
)

// Fixups lists the built-in fixups by name.
var Fixups = []Fixup{
	{
		Name:        "downgrade-requires",
		Description: "Replace the v2.1 alpha #Requires line with v2.0",
		Apply:       DowngradeRequires,
	},
	{
		Name:        "string-mult",
		Description: `Rewrite "c" * N string repetition as Format("{:c<N}", "")`,
		Apply:       FixStringMult,
	},
	{
		Name:        "json-include",
		Description: "Add #Include JSON.ahk where JSON is used but not included",
		Apply:       AddJSONInclude,
	},
	{
		Name:        "split-directive",
		Description: "Move code concatenated after #SingleInstance Force onto its own line",
		Apply:       SplitConcatenatedDirective,
	},
	{
		Name:        "hoist-classes",
		Description: "Move indented class definitions to the end of the file",
		Apply:       HoistNestedClasses,
	},
}

// LookupFixups resolves names to fixups, keeping the order given.
func LookupFixups(names ...string) ([]Fixup, error) {
	out := make([]Fixup, 0, len(names))
	for _, n := range names {
		found := false
		for _, f := range Fixups {
			if f.Name == n {
				out = append(out, f)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown fixup %q: %w", n, core.ErrNotFound)
		}
	}
	return out, nil
}

// DowngradeRequires replaces the alpha #Requires directive with v2.0.
func DowngradeRequires(content string) (string, bool) {
	if !strings.Contains(content, alphaRequires) {
		return content, false
	}
	return strings.ReplaceAll(content, alphaRequires, v2Requires), true
}

var stringMult = regexp.MustCompile(`"(.)"\s*\*\s*(\d+)|'(.)'\s*\*\s*(\d+)`)

// FixStringMult rewrites "c" * N, which is not valid AutoHotkey, with a
// padded Format call.
func FixStringMult(content string) (string, bool) {
	if !stringMult.MatchString(content) {
		return content, false
	}
	out := stringMult.ReplaceAllStringFunc(content, func(m string) string {
		sub := stringMult.FindStringSubmatch(m)
		ch, n := sub[1], sub[2]
		if ch == "" {
			ch, n = sub[3], sub[4]
		}
		return fmt.Sprintf(`Format("{:%s<%s}", "")`, ch, n)
	})
	return out, true
}

// AddJSONInclude inserts #Include JSON.ahk after the leading #Requires and
// #SingleInstance directives when JSON is referenced but never included or
// defined.
func AddJSONInclude(content string) (string, bool) {
	uses := strings.Contains(content, "JSON.") || strings.Contains(content, "JSON ")
	if !uses || strings.Contains(content, "class JSON") ||
		strings.Contains(content, jsonInclude) || strings.Contains(content, "#Include <JSON>") {
		return content, false
	}

	lines := fs.SplitLines(content)
	at := 0
	for i, line := range lines {
		s := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(s, "#Requires"), strings.HasPrefix(s, "#SingleInstance"):
			at = i + 1
			continue
		case s == "", strings.HasPrefix(s, ";"):
			continue
		}
		if at == 0 {
			at = i
		}
		break
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, jsonInclude)
	out = append(out, lines[at:]...)

	text := strings.Join(out, "\n")
	if strings.HasSuffix(content, "\n") {
		text += "\n"
	}
	return text, true
}

var (
	concatDirective = regexp.MustCompile(`^(#SingleInstance Force)\s+;\s+(.+)$`)
	sourceComment   = regexp.MustCompile(`^(Source:.*\.ah2)\s+(.+)$`)
)

// SplitConcatenatedDirective repairs lines where converted code was appended
// to a "#SingleInstance Force ;" line. A "Source: ... .ah2" comment stays on
// the directive line and the trailing code moves below it. Otherwise
// everything after the semicolon is treated as code.
func SplitConcatenatedDirective(content string) (string, bool) {
	lines := fs.SplitLines(content)
	out := make([]string, 0, len(lines))
	changed := false
	for _, line := range lines {
		m := concatDirective.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			out = append(out, line)
			continue
		}
		prefix, rest := m[1], m[2]
		switch src := sourceComment.FindStringSubmatch(rest); {
		case src != nil:
			out = append(out, prefix+" ; "+src[1], src[2])
			changed = true
		case strings.HasPrefix(rest, "Source:"):
			out = append(out, line)
		default:
			out = append(out, prefix, rest)
			changed = true
		}
	}
	if !changed {
		return content, false
	}
	text := strings.Join(out, "\n")
	if strings.HasSuffix(content, "\n") || strings.HasSuffix(content, "\r") {
		text += "\n"
	}
	return text, true
}

var nestedClass = regexp.MustCompile(`^([ \t]+)class\s+(\w+)`)

// HoistNestedClasses moves indented class blocks, which AutoHotkey v2 does
// not allow inside functions, to the end of the file with their indentation
// removed.
func HoistNestedClasses(content string) (string, bool) {
	lines := fs.SplitLines(content)
	var kept, moved []string
	for i := 0; i < len(lines); i++ {
		m := nestedClass.FindStringSubmatch(lines[i])
		if m == nil || !strings.Contains(lines[i], "{") {
			kept = append(kept, lines[i])
			continue
		}
		indent, name := m[1], m[2]
		depth := 0
		j := i
		for ; j < len(lines); j++ {
			depth += strings.Count(lines[j], "{") - strings.Count(lines[j], "}")
			if depth <= 0 {
				break
			}
		}
		if depth != 0 || j == len(lines) {
			kept = append(kept, lines[i])
			continue
		}
		moved = append(moved, "", "; Moved class "+name+" from nested scope")
		for _, l := range lines[i : j+1] {
			moved = append(moved, strings.TrimPrefix(l, indent))
		}
		i = j
	}
	if len(moved) == 0 {
		return content, false
	}
	return strings.Join(append(kept, moved...), "\n") + "\n", true
}

// FixupOptions configures RunFixups.
type FixupOptions struct {
	// Extensions selects files by suffix. Defaults to .ahk.
	Extensions []string
	DryRun     bool
	Logger     *slog.Logger
}

// FixupResult names the fixups that changed one file.
type FixupResult struct {
	Path    string   `json:"path"`
	Applied []string `json:"applied"`
}

// RunFixups applies fixups in order to every matching file under root and
// returns only the files that changed.
func RunFixups(ctx context.Context, root string, fixups []Fixup, opts FixupOptions) ([]FixupResult, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root directory not found: %s: %w", root, core.ErrNotFound)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".ahk"}
	}
	rels, err := fs.GlobExt(root, exts...)
	if err != nil {
		return nil, err
	}
	sort.Strings(rels)

	var results []FixupResult
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			continue
		}
		content := string(data)
		var applied []string
		for _, f := range fixups {
			next, ok := f.Apply(content)
			if ok {
				content = next
				applied = append(applied, f.Name)
			}
		}
		if len(applied) == 0 {
			continue
		}
		if !opts.DryRun {
			if err := fs.ReplaceFile(path, []byte(content)); err != nil {
				logger.Warn("failed to write file", "path", path, "error", err)
				continue
			}
		}
		logger.Info("updated", "path", rel, "fixups", strings.Join(applied, ","))
		results = append(results, FixupResult{Path: rel, Applied: applied})
	}
	return results, nil
}
