package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long a killed command may hold its output pipes open.
const waitDelay = time.Second

// Runner executes external commands. Checks depend on this interface so
// tests can substitute canned output for systemctl and friends.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) CommandResult
}

// ExecRunner runs commands on the host.
type ExecRunner struct{}

// Run implements Runner with RunCommand.
func (ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) CommandResult {
	return RunCommand(ctx, timeout, name, args...)
}

// RunCommand executes name once with args and returns its output. The process
// is killed when timeout elapses; a hang is reported as a timed-out result,
// never as a propagated error.
func RunCommand(ctx context.Context, timeout time.Duration, name string, args ...string) CommandResult {
	result := CommandResult{Name: name}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	// Children that inherit the output pipes must not keep Wait blocked past the deadline.
	cmd.WaitDelay = waitDelay
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Stdout = strings.TrimSpace(stdout.String())
	result.Stderr = strings.TrimSpace(stderr.String())

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		result.Err = fmt.Errorf("timeout after %s", timeout)
		result.FailureKind = FailureTimeout
		return result
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		result.Err = fmt.Errorf("exec %s: %w", name, err)
		classifyFailure(&result)
		return result
	}

	result.ExitCode = 0
	result.FailureKind = FailureNone
	return result
}

// classifyFailure sets FailureKind based on exit code and stderr content.
func classifyFailure(result *CommandResult) {
	if result.TimedOut {
		result.FailureKind = FailureTimeout
		return
	}
	if result.Err == nil {
		result.FailureKind = FailureNone
		return
	}
	if errors.Is(result.Err, exec.ErrNotFound) {
		result.FailureKind = FailureNotFound
		return
	}
	switch result.ExitCode {
	case 126: // POSIX: cannot execute (permission denied)
		result.FailureKind = FailurePermission
	case 127: // POSIX: command not found
		result.FailureKind = FailureNotFound
	case -1: // OS-level exec failure, not a process exit code
		result.FailureKind = FailureUnknown
	default:
		if result.ExitCode > 0 {
			stderr := strings.ToLower(result.Stderr)
			if strings.Contains(stderr, "access denied") ||
				strings.Contains(stderr, "permission denied") {
				result.FailureKind = FailurePermission
			} else {
				result.FailureKind = FailureExitError
			}
		} else {
			result.FailureKind = FailureUnknown
		}
	}
}
