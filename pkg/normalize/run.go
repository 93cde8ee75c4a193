package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// DefaultPatterns select the files Run rewrites.
var DefaultPatterns = []string{"**/*.ah2"}

// Options configures Run.
type Options struct {
	// Patterns are doublestar globs relative to the root. Defaults to DefaultPatterns.
	Patterns []string
	DryRun   bool
	Logger   *slog.Logger
}

// Edit records the replacements applied to one file.
type Edit struct {
	Path         string   `json:"path"`
	Replacements []string `json:"replacements"`
}

// Run applies repls to every matching file under root in sorted order.
// Files are only written when something changed and DryRun is false.
func Run(ctx context.Context, root string, repls []*Replacement, opts Options) ([]Edit, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("root directory not found: %s: %w", root, core.ErrNotFound)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	rels, err := fs.Glob(root, fs.WalkOptions{Patterns: patterns})
	if err != nil {
		return nil, err
	}
	sort.Strings(rels)

	edits := make([]Edit, 0, len(rels))
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return edits, err
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			return edits, fmt.Errorf("failed to read %s: %w", path, err)
		}
		updated, notes := Apply(string(data), repls)
		if len(notes) > 0 {
			logger.Info("normalized", "path", filepath.ToSlash(path), "replacements", len(notes))
			if !opts.DryRun {
				if err := fs.ReplaceFile(path, []byte(updated)); err != nil {
					return edits, err
				}
			}
		}
		edits = append(edits, Edit{Path: filepath.ToSlash(path), Replacements: notes})
	}
	return edits, nil
}

// RenderReport encodes the edits that changed something as indented JSON.
func RenderReport(edits []Edit) ([]byte, error) {
	changed := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if len(e.Replacements) > 0 {
			changed = append(changed, e)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(changed); err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReport writes RenderReport output to path, creating parent directories.
func WriteReport(path string, edits []Edit) error {
	data, err := RenderReport(edits)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomicMkdir(path, data, 0644)
}
