package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/adapters/fs"
)

// DefaultValidateTimeout bounds a single interpreter run.
const DefaultValidateTimeout = 5 * time.Second

// Return codes recorded for runs that produced no exit status.
const (
	ReturnTimeout = -1
	ReturnError   = -2
)

// ScriptSummary totals a validation run.
type ScriptSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

// ScriptFailure is a script the interpreter rejected, timed out on or could
// not run.
type ScriptFailure struct {
	File       string `json:"file"`
	Error      string `json:"error"`
	ReturnCode int    `json:"returncode"`
}

// ScriptReport is written as the validation results JSON.
type ScriptReport struct {
	Summary  ScriptSummary   `json:"summary"`
	Failures []ScriptFailure `json:"failures"`
}

// Save writes the report as indented JSON.
func (r ScriptReport) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return fs.WriteFileAtomicMkdir(path, data, 0644)
}

// ScriptValidator runs the interpreter's /validate mode over scripts.
type ScriptValidator struct {
	// Exe is the interpreter path.
	Exe string
	// Timeout per script. Defaults to DefaultValidateTimeout.
	Timeout time.Duration
	// Parallel bounds concurrent runs. Defaults to GOMAXPROCS.
	Parallel int
	Logger   *slog.Logger
	// run is swapped in tests.
	run func(ctx context.Context, argv []string, opts ahk.RunOptions) (ahk.Result, error)
}

// ValidateDir validates every .ahk file under root.
func (v *ScriptValidator) ValidateDir(ctx context.Context, root string) (ScriptReport, error) {
	files, err := scriptFiles(root)
	if err != nil {
		return ScriptReport{}, err
	}
	return v.Validate(ctx, files)
}

// Validate runs the interpreter on each file with bounded parallelism.
// Failures keep the input order.
func (v *ScriptValidator) Validate(ctx context.Context, files []string) (ScriptReport, error) {
	logger := v.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultValidateTimeout
	}
	limit := v.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	run := v.run
	if run == nil {
		run = ahk.Run
	}

	outcomes := make([]*ScriptFailure, len(files))
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = v.check(gctx, run, file, timeout)
			if f := outcomes[i]; f != nil {
				logger.Warn("validation failed", "file", filepath.Base(file), "error", firstLine(f.Error))
			}
			mu.Lock()
			done++
			if done%10 == 0 {
				logger.Info("progress", "processed", done, "total", len(files))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScriptReport{}, err
	}

	rep := ScriptReport{Summary: ScriptSummary{Total: len(files)}, Failures: []ScriptFailure{}}
	for _, f := range outcomes {
		switch {
		case f == nil:
			rep.Summary.Passed++
		case f.ReturnCode == ReturnError:
			rep.Summary.Errors++
			rep.Failures = append(rep.Failures, *f)
		default:
			rep.Summary.Failed++
			rep.Failures = append(rep.Failures, *f)
		}
	}
	return rep, nil
}

// check returns nil when the script passes.
func (v *ScriptValidator) check(ctx context.Context, run func(context.Context, []string, ahk.RunOptions) (ahk.Result, error), file string, timeout time.Duration) *ScriptFailure {
	res, err := run(ctx, []string{v.Exe, "/validate", "/ErrorStdOut", file}, ahk.RunOptions{Timeout: timeout})
	switch {
	case errors.Is(err, ahk.ErrTimeout):
		return &ScriptFailure{
			File:       file,
			Error:      fmt.Sprintf("Validation timed out after %s", formatSeconds(timeout)),
			ReturnCode: ReturnTimeout,
		}
	case err != nil:
		return &ScriptFailure{File: file, Error: err.Error(), ReturnCode: ReturnError}
	}
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	if res.ExitCode == 0 && msg == "" {
		return nil
	}
	return &ScriptFailure{File: file, Error: msg, ReturnCode: res.ExitCode}
}

func formatSeconds(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	}
	return d.String()
}

func firstLine(s string) string {
	if s == "" {
		return "Unknown error"
	}
	line, _, _ := strings.Cut(s, "\n")
	return line
}
