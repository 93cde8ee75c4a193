package format

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

// Report maps a file path to the issues found in it. Only files with at
// least one issue are present.
type Report map[string]FileIssues

// Summary totals a check run.
type Summary struct {
	FilesChecked    int            `json:"files_checked"`
	FilesWithIssues int            `json:"files_with_issues"`
	TotalIssues     int            `json:"total_issues"`
	ByCategory      map[string]int `json:"by_category"`
}

// Categories returns the category names present in the summary, sorted.
func (s Summary) Categories() []string {
	out := make([]string, 0, len(s.ByCategory))
	for k := range s.ByCategory {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CheckFiles checks each path in order. Missing files are logged and skipped
// but still counted as checked.
func CheckFiles(paths []string, logger *slog.Logger) (Report, Summary) {
	if logger == nil {
		logger = slog.Default()
	}
	report := make(Report)
	sum := Summary{FilesChecked: len(paths), ByCategory: make(map[string]int)}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			logger.Warn("file not found", "path", p)
			continue
		}
		logger.Debug("checking", "path", p)
		issues := CheckFile(p)
		if issues.Count() == 0 {
			continue
		}
		report[p] = issues
		for cat, list := range issues.ByCategory() {
			sum.TotalIssues += len(list)
			sum.ByCategory[cat] += len(list)
		}
	}
	sum.FilesWithIssues = len(report)
	return report, sum
}

// Paths returns the report's file paths, sorted.
func (r Report) Paths() []string {
	out := make([]string, 0, len(r))
	for p := range r {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Save writes the report as indented JSON.
func (r Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return fs.WriteFileAtomicMkdir(path, append(data, '\n'), 0644)
}

// LoadReport reads a report written by Save.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return r, nil
}

// ReadFileList reads one path per line, ignoring blank lines.
func ReadFileList(path string) ([]string, error) {
	text, err := fs.ReadText(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range fs.SplitLines(text) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// ListFiles returns every .ahk file under root, joined with root.
func ListFiles(root string) ([]string, error) {
	rels, err := fs.GlobExt(root, ".ahk")
	if err != nil {
		return nil, err
	}
	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	return out, nil
}

// WriteFileList writes one path per line.
func WriteFileList(path string, paths []string) error {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return fs.WriteFileAtomicMkdir(path, []byte(b.String()), 0644)
}
