package review

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
	"github.com/aretw0/ahkcurate/pkg/core"
)

// FixLevels are the accepted fix levels, least invasive first.
var FixLevels = []string{"formatting", "syntax", "semantic", "full"}

// ParseLevel validates a fix level.
func ParseLevel(level string) (string, error) {
	if slices.Contains(FixLevels, level) {
		return level, nil
	}
	return "", fmt.Errorf("%w %q: must be one of %s", core.ErrInvalidLevel, level, strings.Join(FixLevels, ", "))
}

const (
	// DefaultFixCommand invokes the fixing agent on one file.
	DefaultFixCommand = `python tools/agent-harness/agent.py fix "{file}" --level={level}`
	// DefaultFixTimeout bounds one fixer run.
	DefaultFixTimeout = 10 * time.Minute

	maxFixOutput = 2000
)

// FixResult reports a fixer run. Original and Fixed hold the file content
// before and after.
type FixResult struct {
	Success  bool   `json:"success"`
	Changed  bool   `json:"changed"`
	Original string `json:"original,omitempty"`
	Fixed    string `json:"fixed,omitempty"`
	Backup   string `json:"backup,omitempty"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

// Fixer runs an external command that rewrites a script in place.
type Fixer struct {
	// Command is the argv template; {file} and {level} are substituted.
	Command ahk.Command
	Dir     string
	Timeout time.Duration

	run runFunc
	now func() time.Time
}

// NewFixer creates a fixer for the given command template.
func NewFixer(command ahk.Command, dir string) *Fixer {
	if len(command) == 0 {
		command = ahk.ParseCommand(DefaultFixCommand)
	}
	return &Fixer{Command: command, Dir: dir, Timeout: DefaultFixTimeout, run: ahk.Run, now: time.Now}
}

// Fix backs up file, runs the fixer at the given level and reports the
// content change. When the fixer cannot be run the backup is restored. An
// invalid level is returned as an error; every other failure is reported in
// the result.
func (f *Fixer) Fix(ctx context.Context, file, level string) (FixResult, error) {
	if _, err := ParseLevel(level); err != nil {
		return FixResult{}, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return FixResult{Error: "File not found"}, nil
		}
		return FixResult{Error: fmt.Sprintf("Could not read file: %v", err)}, nil
	}
	original := string(data)

	backup, err := fs.BackupTimestamped(file, f.now())
	if err != nil {
		return FixResult{Error: err.Error(), Original: original}, nil
	}

	res, err := f.run(ctx, f.Command.Expand(map[string]string{"file": file, "level": level}), ahk.RunOptions{
		Dir:     f.Dir,
		Timeout: f.Timeout,
	})
	if err != nil {
		if rerr := fs.Restore(backup, file); rerr != nil {
			err = fmt.Errorf("%w (restore failed: %v)", err, rerr)
		}
		return FixResult{Error: err.Error(), Original: original, Backup: backup}, nil
	}

	fixed := original
	if data, err := os.ReadFile(file); err == nil {
		fixed = string(data)
	}
	return FixResult{
		Success:  true,
		Changed:  fixed != original,
		Original: original,
		Fixed:    fixed,
		Backup:   backup,
		Stdout:   ahk.Truncate(res.Stdout, maxFixOutput),
		Stderr:   ahk.Truncate(res.Stderr, maxFixOutput),
		ExitCode: res.ExitCode,
	}, nil
}
