package ahk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"
)

// Command is an argv template. Arguments may contain {name} placeholders
// that Expand substitutes.
type Command []string

// ParseCommand splits a command line on whitespace, keeping double-quoted
// segments together.
func ParseCommand(line string) Command {
	var (
		out   Command
		cur   strings.Builder
		quote bool
		has   bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quote = !quote
			has = true
		case !quote && (r == ' ' || r == '\t'):
			if has {
				out = append(out, cur.String())
				cur.Reset()
				has = false
			}
		default:
			cur.WriteRune(r)
			has = true
		}
	}
	if has {
		out = append(out, cur.String())
	}
	return out
}

// Expand substitutes {key} placeholders in every argument.
func (c Command) Expand(vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	out := make([]string, len(c))
	for i, a := range c {
		out[i] = r.Replace(a)
	}
	return out
}

// String renders the template for logs.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// RunOptions configures Run.
type RunOptions struct {
	Dir     string
	Timeout time.Duration
}

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// waitDelay bounds how long Run waits for output pipes after the process
// is killed.
const waitDelay = 2 * time.Second

// ErrTimeout is returned when a process exceeds its timeout.
var ErrTimeout = errors.New("process timed out")

// Run executes argv and waits for it. A non-zero exit is not an error: the
// code is reported in Result. Failing to start, a timeout or a cancelled ctx
// are errors.
func Run(ctx context.Context, argv []string, opts RunOptions) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("empty command")
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := Result{
		Stdout:   strings.ToValidUTF8(stdout.String(), "\uFFFD"),
		Stderr:   strings.ToValidUTF8(stderr.String(), "\uFFFD"),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		return res, fmt.Errorf("%s: %w", argv[0], ErrTimeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}
		return res, fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return res, nil
}

// Start launches argv without waiting for it and returns its PID. The
// process is reaped in the background.
func Start(argv []string, dir string) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
