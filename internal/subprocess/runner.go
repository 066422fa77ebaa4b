// Package subprocess runs external commands with captured output.
package subprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/efebarandurmaz/doccheck/internal/observability"
)

// Command is a single external command invocation.
type Command struct {
	Args []string
	Env  []string // Full environment; nil inherits the current process environment
	Dir  string
}

// Runner executes a command and captures its output. A non-zero exit is
// reported as a *SubprocessError alongside the captured output.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Timeout time.Duration // Zero means no timeout

	// Observe is called after every command; may be nil.
	Observe func(cmd Command, duration time.Duration, err error)
}

func (r *ExecRunner) Run(ctx context.Context, c Command) ([]byte, []byte, error) {
	if len(c.Args) == 0 {
		return nil, nil, errors.New("empty command")
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	ctx, span := observability.StartCommandSpan(ctx, c.Args)
	defer span.End()

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	status := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		status = exitErr.ExitCode()
		err = &SubprocessError{
			Cmd:    c.Args,
			Status: status,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	} else if err != nil {
		err = fmt.Errorf("run %s: %w", c.Args[0], err)
	}

	observability.RecordCommandResult(span, status, duration, err)
	if r.Observe != nil {
		r.Observe(c, duration, err)
	}

	return stdout.Bytes(), stderr.Bytes(), err
}

// SubprocessError describes a command that exited with a non-zero status.
type SubprocessError struct {
	Cmd    []string
	Status int
	Stdout string
	Stderr string
}

func (e *SubprocessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command \"%s\" returned exit status %d.\n", QuoteArgs(e.Cmd), e.Status)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, ">>> Standard Error\n%s\n", s)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, ">>> Standard Output\n%s\n", s)
	}
	return b.String()
}

// QuoteArgs joins args into a string a POSIX shell would split back into args.
func QuoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quote(a)
	}
	return strings.Join(quoted, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("@%+=:,./-_", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
