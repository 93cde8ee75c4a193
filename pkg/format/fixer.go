package format

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

// Reindent rewrites the leading whitespace of every line as tabs, counting a
// tab as four columns and keeping any remainder as spaces. Line terminators
// are preserved.
func Reindent(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	for _, seg := range splitKeepEnds(content) {
		rest := strings.TrimLeft(seg.text, " \t")
		indent := seg.text[:len(seg.text)-len(rest)]
		if indent != "" {
			width := len(strings.ReplaceAll(indent, "\t", "    "))
			b.WriteString(strings.Repeat("\t", width/4))
			b.WriteString(strings.Repeat(" ", width%4))
		}
		b.WriteString(rest)
		b.WriteString(seg.end)
	}
	return b.String()
}

// FixResult summarizes a FixReport run.
type FixResult struct {
	Fixed  []string
	Errors []error
}

// FixReport reindents every file of the report that has indentation issues,
// copying the original into backupDir first.
func FixReport(r Report, backupDir string, logger *slog.Logger) FixResult {
	if logger == nil {
		logger = slog.Default()
	}
	var res FixResult
	for _, path := range r.Paths() {
		if len(r[path].Indentation) == 0 {
			continue
		}
		if err := fixFile(path, backupDir); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("failed to fix %s: %w", path, err))
			continue
		}
		logger.Info("fixed", "path", path)
		res.Fixed = append(res.Fixed, path)
	}
	return res
}

func fixFile(path, backupDir string) error {
	if _, err := fs.BackupInto(path, backupDir); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fs.ReplaceFile(path, []byte(Reindent(string(data))))
}
