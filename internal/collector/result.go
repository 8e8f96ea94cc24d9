// Package collector runs read-only system inspection commands and reads
// small text artifacts on behalf of the persistence checks.
package collector

// FailureKind classifies why a command failed.
type FailureKind int

const (
	FailureNone       FailureKind = iota // no failure (ExitCode == 0)
	FailureTimeout                       // killed by timeout
	FailurePermission                    // access denied / permission denied
	FailureExitError                     // command returned non-zero exit code
	FailureNotFound                      // command not found
	FailureUnknown                       // unclassified error
)

// String returns a short human-readable label for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailurePermission:
		return "permission_denied"
	case FailureExitError:
		return "exit_error"
	case FailureNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// CommandResult holds the outcome of a single command invocation.
type CommandResult struct {
	// Name is the executable that was invoked.
	Name string
	// Stdout is the captured standard output with surrounding whitespace trimmed.
	Stdout string
	// Stderr is the captured standard error with surrounding whitespace trimmed.
	Stderr string
	// ExitCode is the process exit code (-1 if killed or never started).
	ExitCode int
	// Err is non-nil if the command did not exit cleanly.
	Err error
	// TimedOut is true if the command was killed due to timeout.
	TimedOut bool
	// FailureKind classifies the reason for failure.
	FailureKind FailureKind
}

// OK reports whether the command exited with status 0.
func (r CommandResult) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}
