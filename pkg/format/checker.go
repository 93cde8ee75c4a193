package format

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Check categories, in report order.
const (
	CategoryIndentation = "indentation"
	CategoryLineEndings = "line_endings"
	CategoryComments    = "comments"
	CategorySyntax      = "syntax"
	CategoryStructure   = "structure"
	CategoryErrors      = "errors"
)

// Issue is a single formatting problem. Line is 1-based.
type Issue struct {
	Line        int    `json:"line"`
	Description string `json:"description"`
}

// FileIssues groups the issues of one file by check category.
type FileIssues struct {
	Indentation []Issue `json:"indentation"`
	LineEndings []Issue `json:"line_endings"`
	Comments    []Issue `json:"comments"`
	Syntax      []Issue `json:"syntax"`
	Structure   []Issue `json:"structure"`
	Errors      []Issue `json:"errors,omitempty"`
}

// ByCategory returns the non-empty categories keyed by name.
func (f FileIssues) ByCategory() map[string][]Issue {
	out := make(map[string][]Issue)
	for name, list := range map[string][]Issue{
		CategoryIndentation: f.Indentation,
		CategoryLineEndings: f.LineEndings,
		CategoryComments:    f.Comments,
		CategorySyntax:      f.Syntax,
		CategoryStructure:   f.Structure,
		CategoryErrors:      f.Errors,
	} {
		if len(list) > 0 {
			out[name] = list
		}
	}
	return out
}

// Count returns the total number of issues.
func (f FileIssues) Count() int {
	return len(f.Indentation) + len(f.LineEndings) + len(f.Comments) +
		len(f.Syntax) + len(f.Structure) + len(f.Errors)
}

var (
	functionStart = regexp.MustCompile(`^\w+\s*\([^)]*\)\s*\{`)
	closers       = map[rune]rune{'}': '{', ']': '[', ')': '('}
	openers       = map[rune]rune{'{': '}', '[': ']', '(': ')'}
)

// CheckFile reads path and runs every check on its content. A read failure
// or content that is not valid UTF-8 is reported as an issue under Errors
// rather than returned.
func CheckFile(path string) FileIssues {
	data, err := os.ReadFile(path)
	if err != nil {
		return readError(err)
	}
	if !utf8.Valid(data) {
		return readError(invalidUTF8(data))
	}
	return CheckContent(string(data))
}

func readError(err error) FileIssues {
	return FileIssues{Errors: []Issue{{Line: 1, Description: fmt.Sprintf("Error reading file: %v", err)}}}
}

func invalidUTF8(data []byte) error {
	off := invalidOffset(data)
	return fmt.Errorf("cannot decode as UTF-8: invalid byte 0x%02x in position %d", data[off], off)
}

// CheckContent runs every check on raw file content, line endings untouched.
func CheckContent(content string) FileIssues {
	segs := splitKeepEnds(content)
	lines := make([]string, len(segs))
	for i, s := range segs {
		lines[i] = s.text
	}
	return FileIssues{
		Indentation: CheckIndentation(lines),
		LineEndings: checkLineEndings(segs),
		Comments:    CheckComments(lines),
		Syntax:      CheckSyntax(lines),
		Structure:   CheckStructure(lines),
	}
}

type segment struct {
	text string
	end  string
}

// splitKeepEnds splits on \r\n, \n and a lone \r, remembering each terminator.
func splitKeepEnds(s string) []segment {
	var out []segment
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			out = append(out, segment{s[start:i], "\n"})
			start = i + 1
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				out = append(out, segment{s[start:i], "\r\n"})
				i++
			} else {
				out = append(out, segment{s[start:i], "\r"})
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, segment{s[start:], ""})
	}
	return out
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
}

// CheckIndentation detects mixed tabs and spaces. The first indented line
// decides whether the file is tab or space indented.
func CheckIndentation(lines []string) []Issue {
	var issues []Issue
	mode := ""
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := leadingWhitespace(line)
		if indent == "" {
			continue
		}
		if mode == "" {
			if strings.Contains(indent, "\t") {
				mode = "tab"
			} else {
				mode = "space"
			}
		}
		n := i + 1
		switch mode {
		case "tab":
			if strings.Contains(indent, " ") {
				issues = append(issues, Issue{n, "Mixed indentation: spaces found in tab-indented file"})
			}
			if strings.Trim(indent, "\t") != "" {
				issues = append(issues, Issue{n, "Inconsistent tab usage"})
			}
		case "space":
			if strings.Contains(indent, "\t") {
				issues = append(issues, Issue{n, "Mixed indentation: tabs found in space-indented file"})
			}
			if len([]rune(indent))%4 != 0 {
				issues = append(issues, Issue{n, "Indentation not multiple of 4 spaces"})
			}
		}
	}
	return issues
}

func endingName(end string) string {
	switch end {
	case "\r\n":
		return "CRLF"
	case "\r":
		return "CR"
	}
	return "LF"
}

// checkLineEndings reports only the first line whose terminator differs from
// the first terminator seen.
func checkLineEndings(segs []segment) []Issue {
	expected := ""
	for i, s := range segs {
		if s.end == "" {
			continue
		}
		if expected == "" {
			expected = s.end
			continue
		}
		if s.end != expected {
			return []Issue{{i + 1, fmt.Sprintf("Inconsistent line ending: %s found, expected %s",
				endingName(s.end), endingName(expected))}}
		}
	}
	return nil
}

// CheckLineEndings checks raw content for mixed line terminators.
func CheckLineEndings(content string) []Issue {
	return checkLineEndings(splitKeepEnds(content))
}

// CheckComments verifies a space follows ';' in full-line comments and that
// block comment markers are balanced.
func CheckComments(lines []string) []Issue {
	var issues []Issue
	for i, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if !strings.HasPrefix(trimmed, ";") {
			continue
		}
		if len(trimmed) > 1 && trimmed[1] != ' ' {
			issues = append(issues, Issue{i + 1, "Missing space after ; in comment"})
		}
	}
	joined := strings.Join(lines, "\n")
	opens, closes := strings.Count(joined, "/*"), strings.Count(joined, "*/")
	if opens != closes {
		issues = append(issues, Issue{1, fmt.Sprintf("Unbalanced multi-line comments: %d /* vs %d */", opens, closes)})
	}
	return issues
}

// CheckSyntax verifies that braces, brackets and parentheses are balanced.
func CheckSyntax(lines []string) []Issue {
	type open struct {
		ch   rune
		line int
	}
	var (
		issues []Issue
		stack  []open
	)
	for i, line := range lines {
		for _, c := range line {
			if _, ok := openers[c]; ok {
				stack = append(stack, open{c, i + 1})
				continue
			}
			want, ok := closers[c]
			if !ok {
				continue
			}
			if len(stack) == 0 {
				issues = append(issues, Issue{i + 1, fmt.Sprintf("Unmatched closing delimiter: %c", c)})
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.ch != want {
				issues = append(issues, Issue{i + 1, fmt.Sprintf("Mismatched delimiter: expected %c, found %c", openers[top.ch], c)})
			}
		}
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		issues = append(issues, Issue{top.line, fmt.Sprintf("Unmatched opening delimiter: %c", top.ch)})
	}
	return issues
}

// CheckStructure verifies that the bodies of functions and classes are
// indented four columns deeper than their opening line.
func CheckStructure(lines []string) []Issue {
	var (
		issues   []Issue
		inFunc   bool
		inClass  bool
		expected int
	)
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		indent := len([]rune(leadingWhitespace(line)))
		switch {
		case functionStart.MatchString(trimmed):
			inFunc = true
			expected = indent + 4
		case strings.HasPrefix(trimmed, "class ") && strings.Contains(trimmed, "{"):
			inClass = true
			expected = indent + 4
		case trimmed == "}":
			if inFunc {
				inFunc = false
				expected = max(expected-4, 0)
			} else if inClass {
				inClass = false
				expected = max(expected-4, 0)
			}
		case (inFunc || inClass) && indent != expected:
			kind := "class"
			if inFunc {
				kind = "function"
			}
			issues = append(issues, Issue{i + 1, fmt.Sprintf("Incorrect indentation in %s: expected %d spaces, found %d", kind, expected, indent)})
		}
	}
	return issues
}
