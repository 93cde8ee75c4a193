package lintreport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ProblematicThreshold is the error count from which a file is listed as
// problematic.
const ProblematicThreshold = 20

// Summary is the linter's corpus-wide totals.
type Summary struct {
	TotalFiles        int `json:"totalFiles"`
	FilesWithErrors   int `json:"filesWithErrors"`
	FilesWithWarnings int `json:"filesWithWarnings"`
	TotalErrors       int `json:"totalErrors"`
	TotalWarnings     int `json:"totalWarnings"`
}

// FileSummary holds the per-file counts.
type FileSummary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
}

// Diagnostic is one linter message.
type Diagnostic struct {
	Message string `json:"message"`
}

// FileEntry is the linter result for one file.
type FileEntry struct {
	File        string       `json:"file"`
	Summary     FileSummary  `json:"summary"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Report is the linter's JSON output.
type Report struct {
	Summary Summary     `json:"summary"`
	Files   []FileEntry `json:"files"`
}

// Load reads a report file. See Decode.
func Load(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to open report %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a linter report. The linter prints a banner line such as
// "Using root: ..." before the JSON document; any leading line that does not
// start the document is skipped.
func Decode(r io.Reader) (Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read report: %w", err)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] != '{' {
		if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
			trimmed = trimmed[i+1:]
		} else {
			trimmed = nil
		}
	}
	var rep Report
	if err := json.Unmarshal(trimmed, &rep); err != nil {
		return Report{}, fmt.Errorf("failed to parse report: %w", err)
	}
	return rep, nil
}

// DirStats aggregates the files of one top-level directory.
type DirStats struct {
	Name          string `json:"name"`
	Total         int    `json:"total"`
	WithErrors    int    `json:"with_errors"`
	WithWarnings  int    `json:"with_warnings"`
	TotalErrors   int    `json:"total_errors"`
	TotalWarnings int    `json:"total_warnings"`
	Clean         int    `json:"clean"`
}

// ErrorPercent is the share of files with at least one error.
func (d DirStats) ErrorPercent() float64 { return percent(d.WithErrors, d.Total) }

// QualityPercent is the share of files without errors or warnings.
func (d DirStats) QualityPercent() float64 { return percent(d.Clean, d.Total) }

// Perfect reports whether every file in the directory is clean.
func (d DirStats) Perfect() bool { return d.Clean == d.Total }

// MessageCount is a diagnostic message with its number of occurrences.
type MessageCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Category groups related diagnostic messages.
type Category struct {
	Name     string         `json:"name"`
	Total    int            `json:"total"`
	Messages []MessageCount `json:"messages"`
}

// FileCount is a file with its error count.
type FileCount struct {
	File   string `json:"file"`
	Errors int    `json:"errors"`
}

// Analysis is the derived view of a report.
type Analysis struct {
	Summary     Summary        `json:"summary"`
	Directories []DirStats     `json:"directories"`
	Messages    []MessageCount `json:"messages"`
	Categories  []Category     `json:"categories"`
	Problematic []FileCount    `json:"problematic"`
}

// Clean is the number of files without errors.
func (a Analysis) Clean() int { return a.Summary.TotalFiles - a.Summary.FilesWithErrors }

// Analyze derives directory stats, message counts, categories and the list
// of problematic files. Root is stripped from file paths before grouping.
func Analyze(r Report, root string) Analysis {
	a := Analysis{Summary: r.Summary}
	dirs := make(map[string]*DirStats)
	counts := make(map[string]int)
	var order []string

	for _, f := range r.Files {
		rel := relative(f.File, root)

		name := "ROOT"
		if parts := strings.Split(rel, "/"); len(parts) > 1 {
			name = parts[0]
		}
		d, ok := dirs[name]
		if !ok {
			d = &DirStats{Name: name}
			dirs[name] = d
		}
		d.Total++
		d.TotalErrors += f.Summary.Errors
		d.TotalWarnings += f.Summary.Warnings
		if f.Summary.Errors > 0 {
			d.WithErrors++
		}
		if f.Summary.Warnings > 0 {
			d.WithWarnings++
		}
		if f.Summary.Errors == 0 && f.Summary.Warnings == 0 {
			d.Clean++
		}

		for _, diag := range f.Diagnostics {
			if diag.Message == "" {
				continue
			}
			if _, seen := counts[diag.Message]; !seen {
				order = append(order, diag.Message)
			}
			counts[diag.Message]++
		}

		if f.Summary.Errors >= ProblematicThreshold {
			a.Problematic = append(a.Problematic, FileCount{File: rel, Errors: f.Summary.Errors})
		}
	}

	for _, d := range dirs {
		a.Directories = append(a.Directories, *d)
	}
	sort.Slice(a.Directories, func(i, j int) bool {
		x, y := a.Directories[i], a.Directories[j]
		qx, qy := float64(x.Clean)/float64(x.Total), float64(y.Clean)/float64(y.Total)
		if qx != qy {
			return qx > qy
		}
		if x.Total != y.Total {
			return x.Total > y.Total
		}
		return x.Name < y.Name
	})

	for _, m := range order {
		a.Messages = append(a.Messages, MessageCount{Message: m, Count: counts[m]})
	}
	sort.SliceStable(a.Messages, func(i, j int) bool { return a.Messages[i].Count > a.Messages[j].Count })

	a.Categories = Categorize(a.Messages)
	sort.SliceStable(a.Problematic, func(i, j int) bool { return a.Problematic[i].Errors > a.Problematic[j].Errors })
	return a
}

func relative(file, root string) string {
	file = strings.ReplaceAll(file, "\\", "/")
	if root == "" {
		return file
	}
	root = strings.TrimSuffix(strings.ReplaceAll(root, "\\", "/"), "/") + "/"
	return strings.TrimPrefix(file, root)
}

// CategoryNames lists the message categories in report order.
var CategoryNames = []string{
	"Missing/Unexpected Operators",
	"String Issues",
	"Object/Literal Issues",
	"Reserved Words",
	"Unknown Tokens",
	"Hotkey/Hotstring Issues",
	"File/Include Issues",
	"Alpha Features (Export/Module)",
	"Other",
}

var unexpectedTokens = []string{"')'", "'}'", "':'", "'{'", "']'"}

// CategoryOf assigns a diagnostic message to one of CategoryNames. The first
// matching rule wins.
func CategoryOf(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "missing operand"),
		strings.Contains(msg, "unexpected") && containsAny(msg, unexpectedTokens):
		return CategoryNames[0]
	case strings.Contains(lower, "string"), strings.Contains(msg, "unterminated"):
		return CategoryNames[1]
	case strings.Contains(lower, "object literal"):
		return CategoryNames[2]
	case strings.Contains(lower, "reserved word"):
		return CategoryNames[3]
	case strings.Contains(msg, "unknown"):
		return CategoryNames[4]
	case strings.Contains(lower, "hotkey"), strings.Contains(lower, "hotstring"):
		return CategoryNames[5]
	case strings.Contains(lower, "does not exist"), strings.Contains(msg, "invalid file path"):
		return CategoryNames[6]
	case strings.Contains(lower, "export"), strings.Contains(lower, "module"):
		return CategoryNames[7]
	}
	return CategoryNames[8]
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Categorize buckets message counts. Every category is returned, in
// CategoryNames order, with its messages sorted by count.
func Categorize(msgs []MessageCount) []Category {
	byName := make(map[string]*Category, len(CategoryNames))
	out := make([]Category, len(CategoryNames))
	for i, name := range CategoryNames {
		out[i].Name = name
		byName[name] = &out[i]
	}
	for _, m := range msgs {
		c := byName[CategoryOf(m.Message)]
		c.Total += m.Count
		c.Messages = append(c.Messages, m)
	}
	for i := range out {
		sort.SliceStable(out[i].Messages, func(a, b int) bool {
			return out[i].Messages[a].Count > out[i].Messages[b].Count
		})
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
