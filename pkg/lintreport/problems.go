package lintreport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	afs "github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/dataset"
)

// ProblemsSystemPrompt is the system turn of exported chat rows.
const ProblemsSystemPrompt = "You are a helpful assistant fixing AutoHotkey issues from diagnostics."

// DefaultContext is the number of lines shown around the problem line.
const DefaultContext = 2

// SeverityLabels maps editor marker severities to names.
var SeverityLabels = map[int]string{8: "error", 4: "warning", 2: "info", 1: "hint"}

// Problem is one entry of an editor problems export.
type Problem struct {
	Resource        string `json:"resource"`
	Owner           string `json:"owner,omitempty"`
	Severity        *int   `json:"severity,omitempty"`
	Message         string `json:"message"`
	Origin          string `json:"origin,omitempty"`
	StartLineNumber *int   `json:"startLineNumber,omitempty"`
	StartColumn     *int   `json:"startColumn,omitempty"`
	EndLineNumber   *int   `json:"endLineNumber,omitempty"`
	EndColumn       *int   `json:"endColumn,omitempty"`
}

// SeverityLabel returns the severity name, or the raw number when unknown.
func (p Problem) SeverityLabel() string {
	if p.Severity == nil {
		return "unknown"
	}
	if l, ok := SeverityLabels[*p.Severity]; ok {
		return l
	}
	return strconv.Itoa(*p.Severity)
}

// Span formats the range as L<line>:C<col>-L<line>:C<col>. Missing starts
// are shown as "?" and missing ends default to the start.
func (p Problem) Span() string {
	sl, sc := p.StartLineNumber, p.StartColumn
	el, ec := p.EndLineNumber, p.EndColumn
	if el == nil {
		el = sl
	}
	if ec == nil {
		ec = sc
	}
	return fmt.Sprintf("L%s:C%s-L%s:C%s", num(sl), num(sc), num(el), num(ec))
}

func num(v *int) string {
	if v == nil {
		return "?"
	}
	return strconv.Itoa(*v)
}

// LoadProblems reads a problems export, which must be a JSON array.
func LoadProblems(path string) ([]Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("problems file %s: %w", path, core.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read problems file: %w", err)
	}
	var problems []Problem
	if err := json.Unmarshal(data, &problems); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return nil, errors.New("problems file must contain a JSON array")
		}
		return nil, fmt.Errorf("problems file is not valid JSON: %w", err)
	}
	return problems, nil
}

// SelectIndex returns the problem at a zero-based index.
func SelectIndex(problems []Problem, index int) (Problem, error) {
	if index < 0 || index >= len(problems) {
		return Problem{}, fmt.Errorf("index %d out of range (0-%d): %w", index, len(problems)-1, core.ErrNotFound)
	}
	return problems[index], nil
}

// SelectMatch returns the first problem whose resource contains needle,
// ignoring case.
func SelectMatch(problems []Problem, needle string) (Problem, error) {
	lower := strings.ToLower(needle)
	for _, p := range problems {
		if strings.Contains(strings.ToLower(p.Resource), lower) {
			return p, nil
		}
	}
	return Problem{}, fmt.Errorf("no problem entry found matching %q: %w", needle, core.ErrNotFound)
}

// NormalizeResource turns an editor resource into a slash path. A leading
// slash before a drive letter ("/c:/...") is dropped.
func NormalizeResource(resource string) string {
	cleaned := strings.ReplaceAll(resource, "\\", "/")
	if strings.HasPrefix(cleaned, "/") && len(cleaned) > 2 && cleaned[2] == ':' {
		cleaned = cleaned[1:]
	}
	return path.Clean(cleaned)
}

// Snippet returns the lines around line (1-based), the target line marked
// with ">" and every line prefixed with its zero-padded number.
func Snippet(file string, line, context int) string {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "File not found; no snippet available."
		}
		return fmt.Sprintf("Cannot read file: %v", err)
	}
	lines := afs.SplitLines(afs.DecodeText(data))
	target := max(line-1, 0)
	start := max(target-context, 0)
	end := min(target+context+1, len(lines))

	var out []string
	for i := start; i < end; i++ {
		marker := " "
		if i == target {
			marker = ">"
		}
		out = append(out, fmt.Sprintf("%s %04d %s", marker, i+1, lines[i]))
	}
	return strings.Join(out, "\n")
}

// Chunk formats a problem as a chat-ready text block. It also returns the
// normalized source path.
func Chunk(p Problem, context int) (string, string) {
	src := NormalizeResource(p.Resource)
	msg := strings.TrimSpace(p.Message)
	if msg == "" {
		msg = "<no message>"
	}
	lines := []string{
		"File: " + src,
		"Severity: " + p.SeverityLabel(),
		"Message: " + msg,
		"Range: " + p.Span(),
	}
	if p.Origin != "" {
		lines = append(lines, "Origin: "+p.Origin)
	}
	if p.StartLineNumber != nil && *p.StartLineNumber != 0 {
		if snip := Snippet(filepath.FromSlash(src), *p.StartLineNumber, context); snip != "" {
			lines = append(lines, "Code:", snip)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), src
}

// AppendText appends a chunk followed by a blank line.
func AppendText(file, text string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file, err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	if _, err := f.WriteString(strings.TrimSpace(text) + "\n\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", file, err)
	}
	return f.Close()
}

// AppendHarmony appends a system/user chat row to a JSONL file.
func AppendHarmony(file, user string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", file, err)
	}
	row := core.Conversation{Messages: []core.Message{
		{Role: "system", Content: ProblemsSystemPrompt},
		{Role: "user", Content: user},
	}}
	return dataset.AppendJSONL(file, []core.Conversation{row})
}
