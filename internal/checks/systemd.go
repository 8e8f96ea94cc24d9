package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iyulab/llp/internal/collector"
	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
)

const systemdCheckID = "systemd.units"

// Unit scopes, in scan order.
const (
	scopeSystem = "system"
	scopeUser   = "user"
)

// Executables launched from these prefixes are rated high.
var memoryBackedPrefixes = []string{"/tmp/", "/dev/shm/"}

type unitInfo struct {
	name         string
	scope        string
	enabledState string
	unitFile     string // empty when FragmentPath is unset or missing on disk
	execStart    string
	dropIns      []string
}

// Systemd reviews service unit files through systemctl, for both the system
// and the calling user's manager.
type Systemd struct {
	runner         collector.Runner
	listTimeout    time.Duration
	enabledTimeout time.Duration
	localUnitDirs  []string
	userUnitDir    string
	hints          *hintTable
}

// NewSystemd builds the systemd check. Commands go through runner.
func NewSystemd(cfg config.SystemdConfig, runner collector.Runner) *Systemd {
	timeout := time.Duration(cfg.Timeout) * time.Second
	return &Systemd{
		runner:         runner,
		listTimeout:    timeout,
		enabledTimeout: timeout / 2,
		localUnitDirs:  cfg.LocalUnitDirs,
		userUnitDir:    cfg.UserUnitDir,
		hints:          newHintTable(cfg.PathHints),
	}
}

func (s *Systemd) ID() string   { return platform.SystemdID }
func (s *Systemd) Name() string { return "Systemd Services" }

// Run implements platform.Check.
func (s *Systemd) Run(ctx context.Context) []finding.Finding {
	var findings []finding.Finding
	for _, scope := range []string{scopeSystem, scopeUser} {
		units, res := s.listUnits(ctx, scope)
		if note, ok := unavailableFinding(scope, res); ok {
			findings = append(findings, note)
			if res.FailureKind == collector.FailureNotFound {
				// No systemctl binary: the user scope would fail the same way.
				break
			}
			continue
		}
		for _, name := range units {
			if ctx.Err() != nil {
				return findings
			}
			u := s.inspect(ctx, name, scope)
			flags := s.flags(u)
			if len(flags) == 0 {
				continue
			}
			findings = append(findings, unitFinding(u, flags))
		}
	}
	return findings
}

func unitFinding(u unitInfo, flags []finding.Flag) finding.Finding {
	evidence := []finding.Evidence{
		{Source: "systemctl", Key: "unit", Value: u.name},
		{Source: "systemctl", Key: "scope", Value: u.scope},
		{Source: "systemctl", Key: "enabled_state", Value: u.enabledState},
		flagsEvidence(flags),
	}
	if u.unitFile != "" {
		evidence = append(evidence, finding.Evidence{Source: "systemctl", Key: "FragmentPath", Value: u.unitFile})
		if txt, ok := collector.ReadText(u.unitFile, collector.DefaultMaxBytes); ok && txt != "" {
			evidence = append(evidence, fsEvidence("unit_file_snippet", collector.HeadLines(txt, unitSnippetLines)))
		}
	}
	if u.execStart != "" {
		evidence = append(evidence, finding.Evidence{Source: "systemctl", Key: "ExecStart", Value: u.execStart})
	}

	return finding.Finding{
		CheckID:     systemdCheckID,
		Title:       fmt.Sprintf("Review systemd service: %s (%s)", u.name, u.scope),
		Severity:    finding.SeverityOf(flags),
		Description: "Heuristic indicators suggest review. This is not a determination of compromise.",
		Evidence:    evidence,
		Remediation: finding.Text("Verify service origin, overrides, and ExecStart paths. Disable if unexpected."),
	}
}

func (s *Systemd) flags(u unitInfo) []finding.Flag {
	var flags []finding.Flag
	enabled := u.enabledState == "enabled"

	if u.scope == scopeUser && enabled {
		flags = append(flags, finding.Flag{Severity: finding.SeverityLow, Reason: "Enabled user-level service"})
	}
	if len(u.dropIns) > 0 {
		flags = append(flags, finding.Flag{Severity: finding.SeverityLow, Reason: "Service has drop-in override snippets"})
	}

	if u.unitFile != "" {
		if enabled && containsAny(u.unitFile, s.localUnitDirs) {
			flags = append(flags, finding.Flag{Severity: finding.SeverityMedium, Reason: "Enabled unit from local override directory"})
		}
		if u.scope == scopeUser && enabled && s.userUnitDir != "" && strings.Contains(u.unitFile, s.userUnitDir) {
			flags = append(flags, finding.Flag{Severity: finding.SeverityMedium, Reason: "Enabled unit in user config directory"})
		}
	} else {
		flags = append(flags, finding.Flag{Severity: finding.SeverityInfo, Reason: "FragmentPath unavailable"})
	}

	if u.execStart != "" {
		if hint, ok := s.hints.First(u.execStart); ok {
			flags = append(flags, finding.Flag{Severity: finding.SeverityMedium, Reason: "ExecStart references risky path: " + hint})
		}
		if p := extractExecPath(u.execStart); p != "" && hasAnyPrefix(p, memoryBackedPrefixes) {
			flags = append(flags, finding.Flag{Severity: finding.SeverityHigh, Reason: "Executable path in temp or memory-backed directory"})
		}
	}
	return flags
}

func (s *Systemd) inspect(ctx context.Context, name, scope string) unitInfo {
	props := s.unitProps(ctx, name, scope)
	u := unitInfo{
		name:         name,
		scope:        scope,
		enabledState: s.enabledState(ctx, name, scope),
		execStart:    props["ExecStart"],
	}
	if fragment := props["FragmentPath"]; fragment != "" && collector.Exists(fragment) {
		u.unitFile = fragment
	}
	for _, p := range strings.Fields(props["DropInPaths"]) {
		if collector.Exists(p) {
			u.dropIns = append(u.dropIns, p)
		}
	}
	return u
}

func systemctlArgs(scope string, args ...string) []string {
	if scope == scopeUser {
		return append([]string{"--user"}, args...)
	}
	return args
}

// listUnits returns the sorted, de-duplicated service unit names for scope
// together with the listing result. A failing systemctl yields no units.
func (s *Systemd) listUnits(ctx context.Context, scope string) ([]string, collector.CommandResult) {
	res := s.runner.Run(ctx, s.listTimeout, "systemctl",
		systemctlArgs(scope, "list-unit-files", "--type=service", "--no-pager", "--no-legend")...)
	if !res.OK() {
		return nil, res
	}
	seen := make(map[string]bool)
	var units []string
	for _, line := range collector.SplitLines(res.Stdout) {
		fields := strings.Fields(line)
		if len(fields) == 0 || seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		units = append(units, fields[0])
	}
	sort.Strings(units)
	return units, res
}

// unavailableFinding turns a listing failure that left a scope unreviewed
// into an info note. A plain non-zero exit (no user bus, for one) stays quiet.
func unavailableFinding(scope string, res collector.CommandResult) (finding.Finding, bool) {
	switch res.FailureKind {
	case collector.FailureNotFound, collector.FailurePermission, collector.FailureTimeout:
	default:
		return finding.Finding{}, false
	}
	evidence := []finding.Evidence{
		{Source: "systemctl", Key: "scope", Value: scope},
		{Source: "systemctl", Key: "command", Value: res.Name},
		{Source: "systemctl", Key: "failure_kind", Value: res.FailureKind.String()},
	}
	if res.Stderr != "" {
		evidence = append(evidence, finding.Evidence{Source: "systemctl", Key: "stderr", Value: res.Stderr})
	}
	return finding.Finding{
		CheckID:     systemdCheckID,
		Title:       fmt.Sprintf("systemctl unavailable (%s scope)", scope),
		Severity:    finding.SeverityInfo,
		Description: fmt.Sprintf("Service units could not be listed (%s); this scope was not reviewed.", res.FailureKind),
		Evidence:    evidence,
	}, true
}

// enabledState reports is-enabled output even on a non-zero exit, since
// systemctl exits 1 for disabled units.
func (s *Systemd) enabledState(ctx context.Context, name, scope string) string {
	res := s.runner.Run(ctx, s.enabledTimeout, "systemctl", systemctlArgs(scope, "is-enabled", name)...)
	if res.Stdout == "" {
		return "unknown"
	}
	return res.Stdout
}

func (s *Systemd) unitProps(ctx context.Context, name, scope string) map[string]string {
	res := s.runner.Run(ctx, s.listTimeout, "systemctl",
		systemctlArgs(scope, "show", name, "--property=FragmentPath", "--property=ExecStart", "--property=DropInPaths")...)
	if !res.OK() {
		return map[string]string{}
	}
	return parseKV(res.Stdout)
}

// parseKV parses systemctl show output. Values keep everything after the
// first "=".
func parseKV(out string) map[string]string {
	kv := make(map[string]string)
	for _, line := range collector.SplitLines(out) {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		kv[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return kv
}

// extractExecPath returns the absolute executable path of an ExecStart value,
// either from systemctl's "path=" form or the first token. It returns "" when
// no absolute path is present.
func extractExecPath(execStart string) string {
	if idx := strings.Index(execStart, "path="); idx >= 0 {
		sub := execStart[idx+len("path="):]
		for _, sep := range []string{" ", ";", "}", ","} {
			sub, _, _ = strings.Cut(sub, sep)
		}
		if strings.HasPrefix(sub, "/") {
			return sub
		}
		return ""
	}
	fields := strings.Fields(execStart)
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		return fields[0]
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
