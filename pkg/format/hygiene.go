package format

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

// Severity of a hygiene finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding codes.
const (
	CodeBOM                 = "utf8_bom"
	CodeDecode              = "utf8_decode"
	CodeMissingRequires     = "missing_requires"
	CodeRequiresNotFirst    = "requires_not_first"
	CodeMissingSingle       = "missing_singleinstance"
	CodeTrailingWhitespace  = "trailing_whitespace"
	CodeMissingFinalNewline = "missing_final_newline"
	CodeSingleInlineHotkey  = "singleinstance_inline_hotkey"
)

// maxTrailingFindings caps per-line trailing whitespace findings per file.
const maxTrailingFindings = 50

var (
	reRequiresV2     = regexp.MustCompile(`(?i)^\s*#requires\s+autohotkey\s+v2`)
	reSingleInstance = regexp.MustCompile(`(?i)^\s*#singleinstance\b`)
	reInclude        = regexp.MustCompile(`(?i)^\s*#include\b`)
)

// HygieneSkipDirs are never scanned by the hygiene pass.
var HygieneSkipDirs = []string{".git", ".history", ".local-history"}

// Finding is one hygiene problem. Line is zero when the finding is file-wide.
type Finding struct {
	Path     string   `json:"path"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
}

// FileResult is the hygiene outcome of one file.
type FileResult struct {
	Path     string    `json:"path"`
	Changed  bool      `json:"changed"`
	Findings []Finding `json:"findings"`
}

// LineEndings is the terminator policy used when writing fixed files.
type LineEndings string

const (
	LineEndingsPreserve LineEndings = "preserve"
	LineEndingsLF       LineEndings = "lf"
	LineEndingsCRLF     LineEndings = "crlf"
)

// ParseLineEndings validates a policy name.
func ParseLineEndings(s string) (LineEndings, error) {
	switch LineEndings(s) {
	case LineEndingsPreserve, LineEndingsLF, LineEndingsCRLF:
		return LineEndings(s), nil
	case "":
		return LineEndingsPreserve, nil
	}
	return "", fmt.Errorf("invalid line ending policy %q: must be one of preserve, lf, crlf", s)
}

func (p LineEndings) newline(raw []byte) string {
	switch p {
	case LineEndingsLF:
		return "\n"
	case LineEndingsCRLF:
		return "\r\n"
	}
	if strings.Contains(string(raw), "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func normalizeNewlines(text, newline string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if newline == "\n" {
		return text
	}
	return strings.ReplaceAll(text, "\n", newline)
}

// decode strips a BOM and validates UTF-8. A non-nil finding means the file
// cannot be processed further.
func decode(path string, raw []byte) (string, bool, *Finding) {
	hadBOM := fs.HasBOM(raw)
	if hadBOM {
		raw = raw[len(fs.BOM):]
	}
	if !utf8.Valid(raw) {
		off := invalidOffset(raw)
		return "", hadBOM, &Finding{
			Path:     path,
			Severity: SeverityError,
			Code:     CodeDecode,
			Message:  fmt.Sprintf("Cannot decode as UTF-8: invalid byte 0x%02x in position %d", raw[off], off),
		}
	}
	return string(raw), hadBOM, nil
}

func invalidOffset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return 0
}

func bomFinding(path string) Finding {
	return Finding{
		Path:     path,
		Severity: SeverityWarning,
		Code:     CodeBOM,
		Message:  "UTF-8 BOM present (prefer UTF-8 without BOM).",
	}
}

// audit produces the findings shared by check and fix mode.
func audit(path, text string, lines []string) []Finding {
	var out []Finding
	add := func(sev Severity, code, msg string, line int) {
		out = append(out, Finding{Path: path, Severity: sev, Code: code, Message: msg, Line: line})
	}

	if !anyMatch(reRequiresV2, lines) {
		add(SeverityError, CodeMissingRequires, "Missing '#Requires AutoHotkey v2...' directive.", 0)
	} else if first := firstNonCommentLine(lines); first != "" && !reRequiresV2.MatchString(first) {
		add(SeverityWarning, CodeRequiresNotFirst, "First non-comment line is not '#Requires AutoHotkey v2...'.", 0)
	}

	if !anyMatch(reSingleInstance, lines) {
		add(SeverityWarning, CodeMissingSingle, "Missing '#SingleInstance ...' (recommended for runnable examples).", 0)
	}

	var trailing []int
	for i, line := range lines {
		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			trailing = append(trailing, i+1)
		}
	}
	for _, n := range trailing[:min(len(trailing), maxTrailingFindings)] {
		add(SeverityWarning, CodeTrailingWhitespace, "Trailing whitespace.", n)
	}
	if extra := len(trailing) - maxTrailingFindings; extra > 0 {
		add(SeverityWarning, CodeTrailingWhitespace, fmt.Sprintf("Trailing whitespace (and %d more lines).", extra), 0)
	}

	if !endsWithNewline(text) {
		add(SeverityWarning, CodeMissingFinalNewline, "File does not end with a newline.", 0)
	}
	return out
}

func endsWithNewline(text string) bool {
	return strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\r")
}

func anyMatch(re *regexp.Regexp, lines []string) bool {
	for _, l := range lines {
		if re.MatchString(l) {
			return true
		}
	}
	return false
}

// CheckHygiene audits path without modifying it.
func CheckHygiene(path string) (FileResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	res := FileResult{Path: path, Findings: []Finding{}}
	text, hadBOM, bad := decode(path, raw)
	if hadBOM {
		res.Findings = append(res.Findings, bomFinding(path))
	}
	if bad != nil {
		res.Findings = []Finding{*bad}
		return res, nil
	}

	lines := strings.Split(normalizeNewlines(text, "\n"), "\n")
	res.Findings = append(res.Findings, audit(path, text, lines)...)
	for i, line := range lines {
		if !reSingleInstance.MatchString(line) {
			continue
		}
		if before, _, _ := strings.Cut(line, ";"); strings.Contains(before, "::") {
			res.Findings = append(res.Findings, Finding{
				Path:     path,
				Severity: SeverityWarning,
				Code:     CodeSingleInlineHotkey,
				Message:  "Line mixes '#SingleInstance' with a hotkey/label (split onto separate lines).",
				Line:     i + 1,
			})
		}
	}
	return res, nil
}

// FixHygiene audits path and rewrites it with the safe text fixes applied:
// BOM removed, trailing whitespace stripped, inline hotkeys split off
// #SingleInstance, header directives reordered and a final newline added.
func FixHygiene(path string, policy LineEndings) (FileResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	newline := policy.newline(raw)
	res := FileResult{Path: path, Findings: []Finding{}}
	text, hadBOM, bad := decode(path, raw)
	if bad != nil {
		res.Findings = []Finding{*bad}
		return res, nil
	}
	if hadBOM {
		res.Findings = append(res.Findings, bomFinding(path))
	}

	lines := strings.Split(normalizeNewlines(text, "\n"), "\n")
	res.Findings = append(res.Findings, audit(path, text, lines)...)

	fixed := make([]string, len(lines))
	for i, l := range lines {
		fixed[i] = strings.TrimRight(l, " \t")
	}
	fixed, split := SplitInlineHotkeys(fixed)
	fixed = ReorderHeader(fixed)
	out := strings.Join(fixed, "\n")
	if !endsWithNewline(text) {
		out += "\n"
	}
	out = normalizeNewlines(out, newline)

	res.Changed = hadBOM || split || out != text
	if res.Changed {
		if err := fs.ReplaceFile(path, []byte(out)); err != nil {
			return res, err
		}
	}
	return res, nil
}

// headerEnd returns the index of the first line that is neither blank, a
// comment nor a directive.
func headerEnd(lines []string) int {
	return scanPrefix(lines, true)
}

// commentPrefixEnd returns the index after the leading blank and comment lines.
func commentPrefixEnd(lines []string) int {
	return scanPrefix(lines, false)
}

func scanPrefix(lines []string, allowDirectives bool) int {
	inBlock := false
	for i, line := range lines {
		s := strings.TrimLeftFunc(line, unicode.IsSpace)
		if inBlock {
			if strings.Contains(s, "*/") {
				inBlock = false
			}
			continue
		}
		switch {
		case s == "", strings.HasPrefix(s, ";"):
			continue
		case strings.HasPrefix(s, "/*"):
			inBlock = true
			continue
		case allowDirectives && strings.HasPrefix(s, "#"):
			continue
		}
		return i
	}
	return len(lines)
}

func firstNonCommentLine(lines []string) string {
	for _, l := range lines[commentPrefixEnd(lines):] {
		if strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}

// ReorderHeader moves #Requires first, then #SingleInstance, then #Include
// directives, within the directive block that follows any leading comments.
// Lines after the header are untouched.
func ReorderHeader(lines []string) []string {
	end := headerEnd(lines)
	header, rest := lines[:end], lines[end:]
	pre := commentPrefixEnd(header)
	prefix, block := header[:pre], header[pre:]

	moved := make(map[int]bool)
	var order []int
	pick := func(re *regexp.Regexp, all bool) {
		for i, l := range block {
			if moved[i] || !re.MatchString(l) {
				continue
			}
			moved[i] = true
			order = append(order, i)
			if !all {
				return
			}
		}
	}
	pick(reRequiresV2, false)
	pick(reSingleInstance, false)
	pick(reInclude, true)
	for i := range block {
		if !moved[i] {
			order = append(order, i)
		}
	}

	out := make([]string, 0, len(lines))
	out = append(out, prefix...)
	for _, i := range order {
		out = append(out, strings.TrimRightFunc(block[i], unicode.IsSpace))
	}
	return append(out, rest...)
}

// SplitInlineHotkeys moves a hotkey or label that shares a line with
// #SingleInstance onto its own line.
func SplitInlineHotkeys(lines []string) ([]string, bool) {
	changed := false
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !reSingleInstance.MatchString(line) {
			out = append(out, line)
			continue
		}
		before, after, hasComment := strings.Cut(line, ";")
		idx := strings.Index(before, "::")
		if idx < 0 {
			out = append(out, line)
			continue
		}
		start := idx
		for start > 0 {
			r, size := utf8.DecodeLastRuneInString(before[:start])
			if unicode.IsSpace(r) {
				break
			}
			start -= size
		}
		directive := strings.TrimRightFunc(before[:start], unicode.IsSpace)
		hotkey := strings.TrimSpace(before[start:])
		if directive == "" || hotkey == "" {
			out = append(out, line)
			continue
		}
		if hasComment {
			directive += " ;" + strings.TrimRightFunc(after, unicode.IsSpace)
		}
		out = append(out, strings.TrimRightFunc(directive, unicode.IsSpace), hotkey)
		changed = true
	}
	return out, changed
}

// HygieneOptions configures RunHygiene.
type HygieneOptions struct {
	Fix         bool
	LineEndings LineEndings
	// Limit caps the number of files processed when positive.
	Limit  int
	Logger *slog.Logger
}

// HygieneFiles returns every .ahk file under root, sorted.
func HygieneFiles(root string) ([]string, error) {
	rels, err := fs.Glob(root, fs.WalkOptions{Patterns: []string{"**/*.ahk"}, SkipDirs: HygieneSkipDirs})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	sort.Strings(out)
	return out, nil
}

// RunHygiene checks or fixes every .ahk file under root.
func RunHygiene(root string, opts HygieneOptions) ([]FileResult, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root directory not found: %s", root)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	files, err := HygieneFiles(root)
	if err != nil {
		return nil, err
	}
	if opts.Limit > 0 && len(files) > opts.Limit {
		files = files[:opts.Limit]
	}

	results := make([]FileResult, 0, len(files))
	for _, path := range files {
		var (
			res FileResult
			err error
		)
		if opts.Fix {
			res, err = FixHygiene(path, opts.LineEndings)
		} else {
			res, err = CheckHygiene(path)
		}
		if err != nil {
			return results, err
		}
		if res.Changed {
			logger.Debug("rewrote", "path", path)
		}
		results = append(results, res)
	}
	return results, nil
}

// HygieneSummary aggregates hygiene results.
type HygieneSummary struct {
	Files        int
	Changed      int
	Errors       int
	Warnings     int
	ErrorFiles   []string
	WarningFiles []string
}

// Summarize aggregates results.
func Summarize(results []FileResult) HygieneSummary {
	s := HygieneSummary{Files: len(results)}
	for _, r := range results {
		if r.Changed {
			s.Changed++
		}
		var hasErr, hasWarn bool
		for _, f := range r.Findings {
			switch f.Severity {
			case SeverityError:
				s.Errors++
				hasErr = true
			case SeverityWarning:
				s.Warnings++
				hasWarn = true
			}
		}
		if hasErr {
			s.ErrorFiles = append(s.ErrorFiles, r.Path)
		}
		if hasWarn {
			s.WarningFiles = append(s.WarningFiles, r.Path)
		}
	}
	sort.Strings(s.ErrorFiles)
	sort.Strings(s.WarningFiles)
	return s
}

// Failed reports whether the run should exit non-zero.
func (s HygieneSummary) Failed(strict bool) bool {
	return s.Errors > 0 || (strict && s.Warnings > 0)
}

// WriteHygieneReport writes results as indented JSON.
func WriteHygieneReport(path string, results []FileResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode hygiene report: %w", err)
	}
	return fs.WriteFileAtomicMkdir(path, data, 0644)
}
