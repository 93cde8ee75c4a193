package review

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// BackupSuffix is appended to a script's path when its content is replaced.
const BackupSuffix = ".bak"

// Config wires a Service. Linter, Fixer and Runner are optional; the
// corresponding operations fail with core.ErrToolNotFound when unset.
type Config struct {
	Catalog *Catalog
	Store   core.StatusStore
	Linter  *Linter
	Fixer   *Fixer
	Runner  *Runner
	Logger  *slog.Logger
}

// Service is the review workflow over a catalog of scripts.
type Service struct {
	catalog *Catalog
	core    *core.Service
	linter  *Linter
	fixer   *Fixer
	runner  *Runner
	logger  *slog.Logger
}

// NewService creates a review service.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog: cfg.Catalog,
		core:    core.NewService(cfg.Store),
		linter:  cfg.Linter,
		fixer:   cfg.Fixer,
		runner:  cfg.Runner,
		logger:  logger,
	}
}

// Catalog returns the script index.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Close releases the status store.
func (s *Service) Close() error { return s.core.Store().Close() }

func (s *Service) script(id string) (core.Script, error) {
	sc, ok := s.catalog.Get(id)
	if !ok {
		return core.Script{}, fmt.Errorf("script %q: %w", id, core.ErrNotFound)
	}
	return sc, nil
}

// List returns scripts matching f, sorted by category then filename.
func (s *Service) List(ctx context.Context, f core.Filter) ([]core.ScriptView, error) {
	return s.core.Views(ctx, s.catalog.List(), f)
}

// Get returns one script with its full review state.
func (s *Service) Get(ctx context.Context, id string) (core.ScriptView, error) {
	sc, err := s.script(id)
	if err != nil {
		return core.ScriptView{}, err
	}
	return s.core.View(ctx, sc)
}

// Content returns the script source.
func (s *Service) Content(id string) (string, error) {
	sc, err := s.script(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(sc.AbsolutePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", id, err)
	}
	return string(data), nil
}

// UpdateContent replaces the script source, keeping the previous version
// next to it with BackupSuffix.
func (s *Service) UpdateContent(id, content string) error {
	sc, err := s.script(id)
	if err != nil {
		return err
	}
	if _, err := fs.BackupSibling(sc.AbsolutePath, BackupSuffix); err != nil {
		return fmt.Errorf("failed to back up %s: %w", id, err)
	}
	if err := fs.ReplaceFile(sc.AbsolutePath, []byte(content)); err != nil {
		return fmt.Errorf("failed to write %s: %w", id, err)
	}
	modified := time.Now()
	if info, err := os.Stat(sc.AbsolutePath); err == nil {
		modified = info.ModTime()
	}
	s.catalog.touch(id, int64(len(content)), modified)
	s.logger.Info("script updated", "id", id, "size", len(content))
	return nil
}

// SetStatus records a review decision for a known script.
func (s *Service) SetStatus(ctx context.Context, id, status string) (core.Status, error) {
	if _, err := s.script(id); err != nil {
		return "", err
	}
	return s.core.SetStatus(ctx, id, status)
}

// Lint runs the linter on a script and stores the derived quality.
func (s *Service) Lint(ctx context.Context, id string) (core.LintResult, error) {
	sc, err := s.script(id)
	if err != nil {
		return core.LintResult{}, err
	}
	if s.linter == nil {
		return core.LintResult{}, fmt.Errorf("linter: %w", core.ErrToolNotFound)
	}
	res := s.linter.Lint(ctx, sc.AbsolutePath)
	if res.Error != "" {
		s.logger.Warn("lint failed", "id", id, "error", res.Error)
	}
	if _, err := s.core.RecordLint(ctx, id, res); err != nil {
		return core.LintResult{}, err
	}
	return res, nil
}

// Fix runs the fixer on a script at the given level.
func (s *Service) Fix(ctx context.Context, id, level string) (FixResult, error) {
	sc, err := s.script(id)
	if err != nil {
		return FixResult{}, err
	}
	if _, err := ParseLevel(level); err != nil {
		return FixResult{}, err
	}
	if s.fixer == nil {
		return FixResult{}, fmt.Errorf("fixer: %w", core.ErrToolNotFound)
	}
	res, err := s.fixer.Fix(ctx, sc.AbsolutePath, level)
	if err != nil {
		return FixResult{}, err
	}
	if res.Changed {
		if info, err := os.Stat(sc.AbsolutePath); err == nil {
			s.catalog.touch(id, info.Size(), info.ModTime())
		}
	}
	return res, nil
}

// Run launches a script with the interpreter.
func (s *Service) Run(id string) (RunResult, error) {
	sc, err := s.script(id)
	if err != nil {
		return RunResult{}, err
	}
	if s.runner == nil {
		return RunResult{}, fmt.Errorf("runner: %w", core.ErrToolNotFound)
	}
	return s.runner.Run(sc.AbsolutePath)
}

// Categories counts scripts per category.
func (s *Service) Categories(ctx context.Context) ([]core.CategoryCount, error) {
	return s.core.Categories(ctx, s.catalog.List())
}

// Stats summarizes review progress.
func (s *Service) Stats(ctx context.Context) (core.Stats, error) {
	return s.core.Stats(ctx, s.catalog.List())
}
