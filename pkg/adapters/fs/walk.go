package fs

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSkipDirs are directory names never descended into while walking.
var DefaultSkipDirs = []string{".git", ".history", "node_modules"}

// WalkOptions configures Glob.
type WalkOptions struct {
	// Patterns are doublestar patterns matched against slash-separated paths
	// relative to the root. A file matching any pattern is returned.
	Patterns []string
	// SkipDirs overrides DefaultSkipDirs when non-nil.
	SkipDirs []string
}

// Glob walks root and returns the slash-separated relative paths of the
// regular files matching any pattern. Directory entries are visited in
// lexical order, so the result is deterministic across runs.
func Glob(root string, opts WalkOptions) ([]string, error) {
	for _, p := range opts.Patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	skip := opts.SkipDirs
	if skip == nil {
		skip = DefaultSkipDirs
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && contains(skip, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, p := range opts.Patterns {
			if ok, _ := doublestar.Match(p, rel); ok {
				out = append(out, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return out, nil
}

// GlobExt is a shorthand for Glob matching "**/*<ext>" for each extension.
func GlobExt(root string, exts ...string) ([]string, error) {
	patterns := make([]string, len(exts))
	for i, ext := range exts {
		patterns[i] = "**/*" + ext
	}
	return Glob(root, WalkOptions{Patterns: patterns})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
