// Package toolchain runs the native compiler and linker used to turn
// translated Mika programs into executables.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/satishbabariya/mika-go/internal/debug"
)

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// String renders the command the way a shell user would type it.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Name}, c.Args...)...)
}

// ParseCommand splits a shell-style command line such as "mika2c -v".
func ParseCommand(line string) (Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("invalid command %q: %w", line, err)
	}
	if len(words) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	return Command{Name: words[0], Args: words[1:]}, nil
}

// Outcome is what a finished process left behind.
type Outcome struct {
	ExitCode int
	// Output holds the combined stdout and stderr.
	Output string
}

// Success reports whether the process exited with status 0.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// Runner runs a command to completion.
//
// A non-nil error means the process could not be run at all (binary
// missing, not executable). A process that ran and failed is reported
// through Outcome.ExitCode with a nil error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Outcome, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command) (Outcome, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (Outcome, error) {
	return f(ctx, cmd)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env replaces the process environment when non-nil.
	Env []string
}

// NewExecRunner creates a runner that inherits the current environment.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes cmd and waits for it.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Outcome, error) {
	debug.Debug("Running command", "command", cmd.String(), "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if r.Env != nil {
		c.Env = r.Env
	}

	var output bytes.Buffer
	c.Stdout = &output
	c.Stderr = &output

	err := c.Run()
	outcome := Outcome{Output: output.String()}
	if err == nil {
		return outcome, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		if outcome.ExitCode == 0 {
			// Killed by a signal.
			outcome.ExitCode = -1
		}
		debug.Debug("Command failed", "command", cmd.String(), "exit_code", outcome.ExitCode)
		return outcome, nil
	}

	debug.Error("Command could not be started", "command", cmd.String(), "error", err)
	return outcome, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
}
