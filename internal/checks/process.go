package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
)

const runtimeCheckID = "runtime.process"

type procExe struct {
	pid int
	exe string
}

// RuntimeProcess reviews the executable paths of running processes.
type RuntimeProcess struct {
	procRoot   string
	riskyPaths []string
}

// NewRuntimeProcess builds the running-process check.
func NewRuntimeProcess(cfg config.RuntimeConfig) *RuntimeProcess {
	return &RuntimeProcess{procRoot: cfg.ProcRoot, riskyPaths: cfg.RiskyPaths}
}

func (r *RuntimeProcess) ID() string   { return platform.RuntimeProcessID }
func (r *RuntimeProcess) Name() string { return "Runtime Processes" }

// Run implements platform.Check.
func (r *RuntimeProcess) Run(ctx context.Context) []finding.Finding {
	var findings []finding.Finding
	for _, p := range r.processes() {
		if ctx.Err() != nil {
			break
		}
		flags := r.flags(p.exe)
		if len(flags) == 0 {
			continue
		}
		findings = append(findings, finding.Finding{
			CheckID:  runtimeCheckID,
			Title:    fmt.Sprintf("Review runtime process: PID %d", p.pid),
			Severity: finding.SeverityOf(flags),
			Description: "Process executable path suggests runtime-only or memory-backed execution. " +
				"This can indicate ephemeral or fileless persistence techniques.",
			Evidence: []finding.Evidence{
				{Source: "procfs", Key: "pid", Value: p.pid},
				{Source: "procfs", Key: "exe", Value: p.exe},
				flagsEvidence(flags),
			},
			Remediation: finding.Text("Verify process legitimacy and parent chain. If unexpected, terminate the process " +
				"and investigate how it was launched."),
		})
	}
	return findings
}

// flags rates the first matching risky prefix high and stops; otherwise a
// hidden directory in the path is medium.
func (r *RuntimeProcess) flags(exe string) []finding.Flag {
	for _, hint := range r.riskyPaths {
		if hint != "" && strings.HasPrefix(exe, hint) {
			return []finding.Flag{{Severity: finding.SeverityHigh,
				Reason: "Process executing from risky runtime path: " + hint}}
		}
	}
	if strings.Contains(exe, "/.") {
		return []finding.Flag{{Severity: finding.SeverityMedium,
			Reason: "Process executable located in hidden directory"}}
	}
	return nil
}

// processes lists resolvable exe links under the proc root, sorted by pid.
// Processes whose link cannot be read (kernel threads, other users) are skipped.
func (r *RuntimeProcess) processes() []procExe {
	entries, err := os.ReadDir(r.procRoot)
	if err != nil {
		return nil
	}
	var procs []procExe
	for _, e := range entries {
		if !e.IsDir() || strings.Trim(e.Name(), "0123456789") != "" {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		exe, err := os.Readlink(filepath.Join(r.procRoot, e.Name(), "exe"))
		if err != nil {
			continue
		}
		procs = append(procs, procExe{pid: pid, exe: exe})
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].pid < procs[j].pid })
	return procs
}
