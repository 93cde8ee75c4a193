package platform

import (
	"log/slog"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/review"
)

// options holds the internal configuration for the review service.
type options struct {
	logger      *slog.Logger
	adapter     string
	statusPath  string
	legacyPath  string
	lintCommand ahk.Command
	lintDir     string
	fixCommand  ahk.Command
	fixDir      string
	runner      *review.Runner
}

// Option defines a functional option for configuring the review service.
type Option func(*options)

func defaultOptions() *options {
	return &options{adapter: AdapterBolt}
}

// WithLogger sets the logger for the service and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAdapter selects the status store by name ("bolt" or "json").
// Defaults to "bolt".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithStatusPath sets the status store location. When empty, the store
// lives next to the scripts directory.
func WithStatusPath(path string) Option {
	return func(o *options) {
		o.statusPath = path
	}
}

// WithLegacyStatusPath names a JSON status file to import into an empty
// bolt store on first open.
func WithLegacyStatusPath(path string) Option {
	return func(o *options) {
		o.legacyPath = path
	}
}

// WithLintCommand overrides the linter command line and its working directory.
// An empty command keeps the default.
func WithLintCommand(command, dir string) Option {
	return func(o *options) {
		o.lintCommand = ahk.ParseCommand(command)
		o.lintDir = dir
	}
}

// WithFixCommand overrides the fixer command line and its working directory.
func WithFixCommand(command, dir string) Option {
	return func(o *options) {
		o.fixCommand = ahk.ParseCommand(command)
		o.fixDir = dir
	}
}

// WithRunner replaces the AutoHotkey launcher (useful for testing).
func WithRunner(r *review.Runner) Option {
	return func(o *options) {
		o.runner = r
	}
}
