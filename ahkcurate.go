package ahkcurate

import (
	"log/slog"

	"github.com/aretw0/ahkcurate/internal/platform"
	"github.com/aretw0/ahkcurate/pkg/core"
	"github.com/aretw0/ahkcurate/pkg/review"
)

// --- Configuration ---

// Option defines a functional option for configuring the review service.
type Option = platform.Option

// Config is the project configuration read from ahkcurate.yaml.
type Config = platform.Config

// Store adapter names.
const (
	AdapterBolt = platform.AdapterBolt
	AdapterJSON = platform.AdapterJSON
)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithAdapter selects the status store by name ("bolt" or "json").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStatusPath overrides the status store location.
func WithStatusPath(path string) Option {
	return platform.WithStatusPath(path)
}

// WithLegacyStatusPath sets the JSON status file imported into an empty bolt store.
func WithLegacyStatusPath(path string) Option {
	return platform.WithLegacyStatusPath(path)
}

// WithLintCommand sets the linter command line and its working directory.
func WithLintCommand(command, dir string) Option {
	return platform.WithLintCommand(command, dir)
}

// WithFixCommand sets the fixer command line and its working directory.
func WithFixCommand(command, dir string) Option {
	return platform.WithFixCommand(command, dir)
}

// WithRunner injects the script runner.
func WithRunner(r *review.Runner) Option {
	return platform.WithRunner(r)
}

// --- Factory ---

// New opens the review service over a scripts directory.
func New(scriptsDir string, opts ...Option) (*review.Service, error) {
	return platform.New(scriptsDir, opts...)
}

// OpenStore opens a status store by adapter name.
func OpenStore(adapter, path, legacy string, logger *slog.Logger) (core.StatusStore, error) {
	return platform.OpenStore(adapter, path, legacy, logger)
}

// --- Project ---

// FindRoot looks upwards from startDir for the project root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadConfig reads ahkcurate.yaml under root, resolving relative paths
// against it.
func LoadConfig(root string) (Config, error) {
	cfg, err := platform.LoadConfig(root)
	if err != nil {
		return Config{}, err
	}
	return cfg.Resolve(root), nil
}
