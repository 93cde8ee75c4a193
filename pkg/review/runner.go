package review

import (
	"fmt"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
)

// RunResult reports a launched script.
type RunResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PID     int    `json:"pid"`
	AhkExe  string `json:"ahk_exe"`
}

// Runner launches scripts with the AutoHotkey interpreter without waiting
// for them.
type Runner struct {
	Locate func() (string, error)
	Start  func(argv []string, dir string) (int, error)
}

// NewRunner returns a runner that locates the interpreter through AHK_PATH,
// the default install paths and PATH.
func NewRunner() *Runner {
	return &Runner{Locate: ahk.FindExecutable, Start: ahk.Start}
}

// Run launches script. A missing interpreter is reported as an error
// wrapping core.ErrToolNotFound.
func (r *Runner) Run(script string) (RunResult, error) {
	exe, err := r.Locate()
	if err != nil {
		return RunResult{}, err
	}
	pid, err := r.Start([]string{exe, script}, "")
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to run script: %w", err)
	}
	return RunResult{
		Success: true,
		Message: fmt.Sprintf("Script launched with PID %d", pid),
		PID:     pid,
		AhkExe:  exe,
	}, nil
}
