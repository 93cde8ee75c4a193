package review

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aretw0/ahkcurate/pkg/adapters/ahk"
	"github.com/aretw0/ahkcurate/pkg/core"
)

const (
	// DefaultLintCommand runs the project linter on a single file.
	DefaultLintCommand = `npx ts-node index.ts lint path="{file}" --format=json`
	// DefaultLintTimeout bounds one linter run.
	DefaultLintTimeout = 2 * time.Minute

	maxDiagnostics = 50
	maxRawOutput   = 2000
)

// runFunc matches ahk.Run; tests substitute it.
type runFunc func(ctx context.Context, argv []string, opts ahk.RunOptions) (ahk.Result, error)

// Linter runs an external linter and interprets its output.
type Linter struct {
	// Command is the argv template; {file} is replaced by the script path.
	Command ahk.Command
	// Dir is the working directory of the linter process.
	Dir     string
	Timeout time.Duration

	run runFunc
}

// NewLinter creates a linter for the given command template.
func NewLinter(command ahk.Command, dir string) *Linter {
	if len(command) == 0 {
		command = ahk.ParseCommand(DefaultLintCommand)
	}
	return &Linter{Command: command, Dir: dir, Timeout: DefaultLintTimeout, run: ahk.Run}
}

// Lint runs the linter on file. Failures to run are reported in the
// result's Error field with zero counts.
func (l *Linter) Lint(ctx context.Context, file string) core.LintResult {
	res, err := l.run(ctx, l.Command.Expand(map[string]string{"file": file}), ahk.RunOptions{
		Dir:     l.Dir,
		Timeout: l.Timeout,
	})
	if err != nil {
		return core.LintResult{Diagnostics: []core.Diagnostic{}, Error: err.Error()}
	}
	// The linter may exit non-zero and still print a valid report.
	return ParseLintOutput(res.Stdout)
}

// ParseLintOutput interprets linter stdout. JSON output is either an array
// of diagnostics or an object holding "diagnostics" (or "results"). A
// diagnostic without severity counts as an error. Anything else is scanned
// line by line for "error" and "warning".
func ParseLintOutput(output string) core.LintResult {
	output = strings.TrimSpace(output)
	if output == "" {
		return core.LintResult{Diagnostics: []core.Diagnostic{}}
	}

	var doc any
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		var res core.LintResult
		for _, line := range strings.Split(output, "\n") {
			lower := strings.ToLower(line)
			if strings.Contains(lower, "error") {
				res.Errors++
			}
			if strings.Contains(lower, "warning") {
				res.Warnings++
			}
		}
		res.Diagnostics = []core.Diagnostic{}
		res.RawOutput = ahk.Truncate(output, maxRawOutput)
		return res
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		list, ok := v["diagnostics"].([]any)
		if !ok {
			list, _ = v["results"].([]any)
		}
		items = list
	}

	res := core.LintResult{Diagnostics: []core.Diagnostic{}}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := core.Diagnostic(obj)
		switch d.Severity() {
		case 0, 1:
			res.Errors++
		case 2:
			res.Warnings++
		}
		if len(res.Diagnostics) < maxDiagnostics {
			res.Diagnostics = append(res.Diagnostics, d)
		}
	}
	return res
}
