package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

const (
	requiresDirective       = "#Requires AutoHotkey v2.0"
	singleInstanceDirective = "#SingleInstance Force"

	requiresMarker       = "#Requires AutoHotkey v2"
	singleInstanceMarker = "#SingleInstance"

	// validateWindow and fixWindow are the number of leading lines searched
	// for existing directives.
	validateWindow = 20
	fixWindow      = 15
)

// HeaderReport lists the files missing header directives.
type HeaderReport struct {
	Total                 int
	MissingRequires       []string
	MissingSingleInstance []string
	// Unreadable files are logged and excluded from the missing lists.
	Unreadable []string
}

// OK reports whether every file carries both directives.
func (r HeaderReport) OK() bool {
	return len(r.MissingRequires) == 0 && len(r.MissingSingleInstance) == 0
}

func scriptFiles(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("scripts directory not found: %s", root)
	}
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

func window(lines []string, n int) []string {
	return lines[:min(len(lines), n)]
}

func containsAny(lines []string, marker string) bool {
	for _, l := range lines {
		if strings.Contains(l, marker) {
			return true
		}
	}
	return false
}

// ValidateHeaders checks the first lines of every .ahk file under root for
// #Requires AutoHotkey v2 and #SingleInstance.
func ValidateHeaders(root string, logger *slog.Logger) (HeaderReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := scriptFiles(root)
	if err != nil {
		return HeaderReport{}, err
	}
	rep := HeaderReport{Total: len(files)}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read file", "path", path, "error", err)
			rep.Unreadable = append(rep.Unreadable, path)
			continue
		}
		head := window(strings.Split(string(data), "\n"), validateWindow)
		if !containsAny(head, requiresMarker) {
			rep.MissingRequires = append(rep.MissingRequires, path)
		}
		if !containsAny(head, singleInstanceMarker) {
			rep.MissingSingleInstance = append(rep.MissingSingleInstance, path)
		}
	}
	return rep, nil
}

// FixHeaderContent inserts the missing directives. A missing #Requires goes
// on the first line, followed by #SingleInstance Force when that is missing
// too; otherwise #SingleInstance Force goes right after the existing
// #Requires line.
func FixHeaderContent(content string) (out string, addedRequires, addedSingle bool) {
	lines := strings.Split(content, "\n")
	head := window(lines, fixWindow)
	hasRequires := containsAny(head, requiresMarker)
	hasSingle := containsAny(head, singleInstanceMarker)
	if hasRequires && hasSingle {
		return content, false, false
	}

	fixed := make([]string, 0, len(lines)+2)
	if !hasRequires {
		fixed = append(fixed, requiresDirective)
		addedRequires = true
		if !hasSingle {
			fixed = append(fixed, singleInstanceDirective)
			addedSingle = true
		}
		fixed = append(fixed, lines...)
		return strings.Join(fixed, "\n"), addedRequires, addedSingle
	}

	for _, l := range lines {
		fixed = append(fixed, l)
		if !addedSingle && strings.Contains(l, requiresMarker) {
			fixed = append(fixed, singleInstanceDirective)
			addedSingle = true
		}
	}
	return strings.Join(fixed, "\n"), false, addedSingle
}

// HeaderFixSummary counts the changes made by FixHeaders.
type HeaderFixSummary struct {
	Modified            []string
	RequiresAdded       int
	SingleInstanceAdded int
}

// FixHeaders adds missing header directives to every .ahk file under root.
// With dryRun set, files are reported but not written.
func FixHeaders(root string, dryRun bool, logger *slog.Logger) (HeaderFixSummary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := scriptFiles(root)
	if err != nil {
		return HeaderFixSummary{}, err
	}
	var sum HeaderFixSummary
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read file", "path", path, "error", err)
			continue
		}
		out, req, single := FixHeaderContent(string(data))
		if !req && !single {
			continue
		}
		if !dryRun {
			if err := fs.ReplaceFile(path, []byte(out)); err != nil {
				logger.Warn("failed to write file", "path", path, "error", err)
				continue
			}
		}
		if req {
			sum.RequiresAdded++
		}
		if single {
			sum.SingleInstanceAdded++
		}
		sum.Modified = append(sum.Modified, path)
		logger.Info("fixed headers", "path", path)
	}
	return sum, nil
}
