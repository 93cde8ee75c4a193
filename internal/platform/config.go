package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional project file read from the project root.
const ConfigFile = "ahkcurate.yaml"

// Config carries project defaults. Relative paths are resolved against the
// project root by Resolve.
type Config struct {
	ScriptsDir     string   `yaml:"scripts_dir"`
	Store          string   `yaml:"store"`
	StatusFile     string   `yaml:"status_file"`
	LegacyStatus   string   `yaml:"legacy_status_file"`
	LintCommand    string   `yaml:"lint_command"`
	LintDir        string   `yaml:"lint_dir"`
	FixCommand     string   `yaml:"fix_command"`
	FixDir         string   `yaml:"fix_dir"`
	Samples        string   `yaml:"samples"`
	Grades         string   `yaml:"grades"`
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig mirrors the layout of the original toolset: scripts under
// data/Scripts and the linter under tools/ahk-linter.
func DefaultConfig() Config {
	return Config{
		ScriptsDir: filepath.Join("data", "Scripts"),
		Store:      AdapterBolt,
		LintDir:    filepath.Join("tools", "ahk-linter"),
		Samples:    filepath.Join("data", "samples.jsonl"),
		Grades:     filepath.Join("data", "graded_samples.jsonl"),
		Addr:       "127.0.0.1:8000",
	}
}

// LoadConfig reads ConfigFile from root, filling unset fields from
// DefaultConfig. A missing file yields the defaults.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// Resolve returns a copy with relative paths anchored at root.
func (c Config) Resolve(root string) Config {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	c.ScriptsDir = abs(c.ScriptsDir)
	c.StatusFile = abs(c.StatusFile)
	c.LegacyStatus = abs(c.LegacyStatus)
	c.LintDir = abs(c.LintDir)
	c.FixDir = abs(c.FixDir)
	if c.FixDir == "" {
		c.FixDir = root
	}
	c.Samples = abs(c.Samples)
	c.Grades = abs(c.Grades)
	return c
}

// Options converts the config into service options.
func (c Config) Options() []Option {
	return []Option{
		WithAdapter(c.Store),
		WithStatusPath(c.StatusFile),
		WithLegacyStatusPath(c.LegacyStatus),
		WithLintCommand(c.LintCommand, c.LintDir),
		WithFixCommand(c.FixCommand, c.FixDir),
	}
}
