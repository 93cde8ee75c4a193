package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/ahkcurate/pkg/adapters/bolt"
	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/review"
)

// Store adapter names.
const (
	AdapterBolt = "bolt"
	AdapterJSON = "json"
)

// StatusBase is the file name, without extension, of the default status store.
const StatusBase = "review_status"

// DefaultStatusPath places the store next to the scripts directory, as
// data/Scripts -> data/review_status.db.
func DefaultStatusPath(scriptsDir, adapter string) string {
	ext := ".db"
	if adapter == AdapterJSON {
		ext = ".json"
	}
	return filepath.Join(filepath.Dir(filepath.Clean(scriptsDir)), StatusBase+ext)
}

// New builds the review service over scriptsDir. The catalog is scanned once
// before returning.
//
//	svc, err := platform.New("data/Scripts", platform.WithAdapter("json"))
func New(scriptsDir string, opts ...Option) (*review.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	if o.adapter == "" {
		o.adapter = AdapterBolt
	}

	statusPath := o.statusPath
	if statusPath == "" {
		statusPath = DefaultStatusPath(scriptsDir, o.adapter)
	}
	legacy := o.legacyPath
	if legacy == "" && o.adapter == AdapterBolt {
		legacy = DefaultStatusPath(scriptsDir, AdapterJSON)
	}
	store, err := OpenStore(o.adapter, statusPath, legacy, logger)
	if err != nil {
		return nil, err
	}

	catalog := review.NewCatalog(scriptsDir, logger)
	if err := catalog.Scan(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to scan scripts: %w", err)
	}

	runner := o.runner
	if runner == nil {
		runner = review.NewRunner()
	}
	return review.NewService(review.Config{
		Catalog: catalog,
		Store:   store,
		Linter:  review.NewLinter(o.lintCommand, o.lintDir),
		Fixer:   review.NewFixer(o.fixCommand, o.fixDir),
		Runner:  runner,
		Logger:  logger,
	}), nil
}

// OpenStore opens the named status store adapter at path. For the bolt
// adapter, an existing legacy JSON file is imported when the database is
// still empty.
func OpenStore(adapter, path, legacy string, logger *slog.Logger) (core.StatusStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch adapter {
	case AdapterJSON:
		return fs.NewStatusStore(path, logger)
	case AdapterBolt, "":
		s, err := bolt.Open(path, logger)
		if err != nil {
			return nil, err
		}
		if legacy != "" {
			if err := importLegacy(s, legacy, logger); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store adapter %q", adapter)
	}
}

func importLegacy(s *bolt.Store, legacy string, logger *slog.Logger) error {
	if _, err := os.Stat(legacy); err != nil {
		return nil
	}
	empty, err := s.Empty()
	if err != nil || !empty {
		return err
	}
	old, err := fs.NewStatusStore(legacy, logger)
	if err != nil {
		return err
	}
	ctx := context.Background()
	snap, err := old.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := s.Import(ctx, snap); err != nil {
		return fmt.Errorf("failed to import %s: %w", legacy, err)
	}
	logger.Info("imported legacy review status", "path", legacy,
		"statuses", len(snap.Statuses), "qualities", len(snap.Qualities))
	return nil
}
