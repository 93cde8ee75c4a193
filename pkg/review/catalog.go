package review

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// ScriptPattern selects reviewable files under the scripts directory.
const ScriptPattern = "**/*.ahk"

// Uncategorized is the category of scripts placed at the root.
const Uncategorized = "Uncategorized"

// Catalog is the in-memory index of the scripts directory. It is safe for
// concurrent use.
type Catalog struct {
	root   string
	logger *slog.Logger

	mu      sync.RWMutex
	scripts map[string]core.Script
}

// NewCatalog creates an empty catalog rooted at dir. Call Scan to fill it.
func NewCatalog(dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{root: dir, logger: logger, scripts: make(map[string]core.Script)}
}

// Root returns the scripts directory.
func (c *Catalog) Root() string { return c.root }

// Scan rebuilds the index. A missing directory yields an empty catalog.
func (c *Catalog) Scan() error {
	scripts := make(map[string]core.Script)
	if _, err := os.Stat(c.root); errors.Is(err, iofs.ErrNotExist) {
		c.logger.Warn("scripts directory not found", "path", c.root)
		c.swap(scripts)
		return nil
	}

	rels, err := fs.Glob(c.root, fs.WalkOptions{Patterns: []string{ScriptPattern}})
	if err != nil {
		return fmt.Errorf("failed to scan scripts: %w", err)
	}
	for _, rel := range rels {
		abs := filepath.Join(c.root, filepath.FromSlash(rel))
		info, err := os.Stat(abs)
		if err != nil {
			c.logger.Warn("failed to stat script", "path", abs, "error", err)
			continue
		}
		scripts[rel] = newScript(rel, abs, info)
	}
	c.swap(scripts)
	c.logger.Debug("catalog scanned", "root", c.root, "scripts", len(scripts))
	return nil
}

func (c *Catalog) swap(scripts map[string]core.Script) {
	c.mu.Lock()
	c.scripts = scripts
	c.mu.Unlock()
}

func newScript(rel, abs string, info os.FileInfo) core.Script {
	category := Uncategorized
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		category = rel[:i]
	}
	return core.Script{
		ID:           rel,
		Filename:     info.Name(),
		Category:     category,
		RelativePath: rel,
		AbsolutePath: abs,
		Size:         info.Size(),
		Modified:     info.ModTime(),
	}
}

// Get returns the script with the given ID.
func (c *Catalog) Get(id string) (core.Script, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scripts[id]
	return s, ok
}

// List returns every script sorted by ID.
func (c *Catalog) List() []core.Script {
	c.mu.RLock()
	out := make([]core.Script, 0, len(c.scripts))
	for _, s := range c.scripts {
		out = append(out, s)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of indexed scripts.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scripts)
}

// touch records a new size and modification time after an edit.
func (c *Catalog) touch(id string, size int64, modified time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.scripts[id]; ok {
		s.Size = size
		s.Modified = modified
		c.scripts[id] = s
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
