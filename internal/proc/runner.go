// Package proc runs external measurement commands with hard time budgets.
//
// Measurement tools (sysbench fileio, iperf3) can hang on misconfigured
// hosts, so every invocation goes through a wall-clock timeout that
// force-kills and reaps the child rather than blocking the suite.
package proc

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/hostbench/hostbench/internal/errors"
)

// Result holds the captured output of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout and stderr concatenated, for parsers that do not
// care which stream a line arrived on.
func (r *Result) Combined() string {
	return r.Stdout + r.Stderr
}

// Handle is a started background process that the caller must reap,
// either by Wait or Kill.
type Handle interface {
	// Wait blocks until the process exits or the timeout elapses.
	// On timeout the process is killed and an ErrTimeout error returned.
	Wait(timeout time.Duration) error

	// Kill terminates the process and reaps it.
	Kill() error
}

// Runner executes external commands. The suite depends on this interface so
// tests can substitute canned outputs for real measurement tools.
type Runner interface {
	// Run executes a command, waits for completion, and returns its output.
	// A non-zero child exit is not an error; it is reported in ExitCode.
	// Errors carry ErrTimeout (budget exceeded, child killed) or ErrLaunch
	// (binary missing / not executable) codes.
	Run(ctx context.Context, name string, args []string, timeout time.Duration) (*Result, error)

	// RunIn is Run with an explicit working directory, for tools that
	// write scratch files into their cwd. An empty dir means inherit ours.
	RunIn(ctx context.Context, dir, name string, args []string, timeout time.Duration) (*Result, error)

	// Start launches a long-lived helper process (the one-shot iperf3
	// server) without waiting. The caller owns the returned Handle.
	Start(name string, args ...string) (Handle, error)
}

// execRunner is the os/exec-backed Runner.
type execRunner struct{}

// NewRunner returns the default Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (r execRunner) Run(ctx context.Context, name string, args []string, timeout time.Duration) (*Result, error) {
	return r.RunIn(ctx, "", name, args, timeout)
}

func (execRunner) RunIn(ctx context.Context, dir, name string, args []string, timeout time.Duration) (*Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't let lingering pipe readers outlive the kill signal.
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr == nil {
		return result, nil
	}

	// Context expired or was cancelled: CommandContext killed the child and
	// Run reaped it. Either way the command didn't get to finish.
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if ctxErr == context.DeadlineExceeded {
			return result, errors.WrapWithCode(ctxErr, errors.ErrTimeout,
				fmt.Sprintf("'%s' exceeded its %s time budget", name, timeout),
				"The tool may be hanging on this host. Raise probes.timeout if the test legitimately needs longer.")
		}
		return result, errors.WrapWithCode(ctxErr, errors.ErrTimeout,
			fmt.Sprintf("'%s' was interrupted before finishing", name),
			"The run was cancelled; re-run to produce a measurement.")
	}

	// Ran but exited non-zero: report the code, not an error.
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	return nil, launchError(name, runErr)
}

func (execRunner) Start(name string, args ...string) (Handle, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, launchError(name, err)
	}
	return &execHandle{cmd: cmd}, nil
}

// launchError classifies start failures as ErrLaunch. Both binary-not-found
// and permission errors land here; callers surface them as probe-level
// failures, never suite aborts.
func launchError(name string, err error) error {
	suggestion := fmt.Sprintf("Install '%s' and make sure it is on PATH. Run 'hostbench doctor' to check all measurement tools.", name)
	if stderrors.Is(err, fs.ErrPermission) {
		suggestion = fmt.Sprintf("'%s' exists but is not executable. Check its permissions.", name)
	}
	return errors.WrapWithCode(err, errors.ErrLaunch,
		fmt.Sprintf("Couldn't launch '%s'", name),
		suggestion)
}

// execHandle wraps a started exec.Cmd.
type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Wait(timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			if _, ok := err.(*exec.ExitError); ok {
				// Helper exited non-zero; it still got reaped.
				return nil
			}
			return errors.Wrap(err, "Background helper failed")
		}
		return nil
	case <-time.After(timeout):
		_ = h.cmd.Process.Kill()
		<-done // reap
		return errors.New(errors.ErrTimeout,
			"Background helper didn't exit in time",
			"It was killed to avoid a process leak.")
	}
}

func (h *execHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	err := h.cmd.Process.Kill()
	_ = h.cmd.Wait() // reap
	if err != nil {
		return errors.Wrap(err, "Couldn't kill background helper")
	}
	return nil
}
