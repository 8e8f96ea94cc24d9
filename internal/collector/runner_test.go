package collector

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRunCommand_Simple(t *testing.T) {
	result := RunCommand(context.Background(), 5*time.Second, "sh", "-c", "echo '  hello  '")
	if !result.OK() {
		t.Fatalf("exit code = %d, err = %v, stderr = %s", result.ExitCode, result.Err, result.Stderr)
	}
	if result.Stdout != "hello" {
		t.Errorf("Stdout = %q, want trimmed %q", result.Stdout, "hello")
	}
	if result.Name != "sh" {
		t.Errorf("Name = %q", result.Name)
	}
	if result.FailureKind != FailureNone {
		t.Errorf("FailureKind = %v, want FailureNone", result.FailureKind)
	}
}

func TestRunCommand_Timeout(t *testing.T) {
	start := time.Now()
	result := RunCommand(context.Background(), 500*time.Millisecond, "sleep", "30")
	elapsed := time.Since(start)
	if !result.TimedOut {
		t.Fatal("expected TimedOut=true")
	}
	if result.Err == nil {
		t.Error("expected non-nil error for timeout")
	}
	if result.FailureKind != FailureTimeout {
		t.Errorf("FailureKind = %v, want FailureTimeout", result.FailureKind)
	}
	if elapsed > 10*time.Second {
		t.Errorf("process was not killed promptly: %s", elapsed)
	}
}

func TestRunCommand_ExitError(t *testing.T) {
	result := RunCommand(context.Background(), 5*time.Second, "sh", "-c", "echo partial; exit 3")
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.Stdout != "partial" {
		t.Errorf("stdout should keep partial output, got %q", result.Stdout)
	}
	if result.FailureKind != FailureExitError {
		t.Errorf("FailureKind = %v, want FailureExitError", result.FailureKind)
	}
}

func TestRunCommand_NotFound(t *testing.T) {
	result := RunCommand(context.Background(), time.Second, "llp-definitely-not-a-command")
	if result.OK() {
		t.Fatal("expected failure for missing command")
	}
	if result.FailureKind != FailureNotFound {
		t.Errorf("FailureKind = %v, want FailureNotFound", result.FailureKind)
	}
}

func TestRunCommand_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()
	result := RunCommand(ctx, 60*time.Second, "sleep", "30")
	if result.Err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestExecRunner(t *testing.T) {
	var r Runner = ExecRunner{}
	result := r.Run(context.Background(), 5*time.Second, "sh", "-c", "echo ok")
	if result.Stdout != "ok" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name   string
		result CommandResult
		want   FailureKind
	}{
		{"none", CommandResult{}, FailureNone},
		{"timeout", CommandResult{TimedOut: true, ExitCode: -1, Err: fmt.Errorf("timeout")}, FailureTimeout},
		{"cannot execute", CommandResult{ExitCode: 126, Err: fmt.Errorf("exit status 126")}, FailurePermission},
		{"not found", CommandResult{ExitCode: 127, Err: fmt.Errorf("exit status 127")}, FailureNotFound},
		{"stderr permission", CommandResult{ExitCode: 1, Err: fmt.Errorf("exit status 1"), Stderr: "Failed: Permission denied"}, FailurePermission},
		{"plain exit", CommandResult{ExitCode: 1, Err: fmt.Errorf("exit status 1"), Stderr: "some other error"}, FailureExitError},
		{"os error", CommandResult{ExitCode: -1, Err: fmt.Errorf("exec: some os error")}, FailureUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.result
			classifyFailure(&r)
			if r.FailureKind != tc.want {
				t.Errorf("FailureKind = %v, want %v", r.FailureKind, tc.want)
			}
		})
	}
}

func TestFailureKind_String(t *testing.T) {
	want := map[FailureKind]string{
		FailureNone:       "none",
		FailureTimeout:    "timeout",
		FailurePermission: "permission_denied",
		FailureExitError:  "exit_error",
		FailureNotFound:   "not_found",
		FailureUnknown:    "unknown",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), s)
		}
	}
}
