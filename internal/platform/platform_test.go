package platform

import (
	"context"
	"runtime"
	"testing"

	"github.com/iyulab/llp/internal/finding"
)

type stubCheck struct{ id string }

func (s stubCheck) ID() string   { return s.id }
func (s stubCheck) Name() string { return "stub " + s.id }
func (s stubCheck) Run(context.Context) []finding.Finding {
	return nil
}

func allStubs() []Check {
	var checks []Check
	for _, id := range LinuxCheckIDs() {
		checks = append(checks, stubCheck{id: id})
	}
	return checks
}

func ids(checks []Check) []string {
	var out []string
	for _, c := range checks {
		out = append(out, c.ID())
	}
	return out
}

func TestDetectOS(t *testing.T) {
	got := DetectOS()
	if got != runtime.GOOS {
		t.Errorf("DetectOS() = %q, want %q", got, runtime.GOOS)
	}
}

func TestLinuxCheckIDs_Order(t *testing.T) {
	want := []string{"systemd", "cron", "shell_init", "xdg_autostart", "runtime_process"}
	got := LinuxCheckIDs()
	if len(got) != len(want) {
		t.Fatalf("LinuxCheckIDs() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LinuxCheckIDs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseSelection(t *testing.T) {
	got := ParseSelection(" Cron, ,systemd ,")
	if len(got) != 2 || got[0] != "cron" || got[1] != "systemd" {
		t.Errorf("ParseSelection = %v", got)
	}
	if got := ParseSelection(""); len(got) != 0 {
		t.Errorf("ParseSelection(\"\") = %v, want empty", got)
	}
}

func TestFilterChecks_NoFilter(t *testing.T) {
	checks := allStubs()
	filtered := FilterChecks(checks, nil)
	if len(filtered) != len(checks) {
		t.Errorf("FilterChecks with nil filter: got %d, want %d", len(filtered), len(checks))
	}
}

func TestFilterChecks_All(t *testing.T) {
	checks := allStubs()
	filtered := FilterChecks(checks, []string{"cron", "ALL"})
	if len(filtered) != len(checks) {
		t.Errorf("FilterChecks with all: got %d, want %d", len(filtered), len(checks))
	}
}

func TestFilterChecks_SubsetKeepsRegistryOrder(t *testing.T) {
	filtered := FilterChecks(allStubs(), []string{"runtime_process", "Cron"})
	got := ids(filtered)
	if len(got) != 2 || got[0] != "cron" || got[1] != "runtime_process" {
		t.Errorf("FilterChecks = %v, want [cron runtime_process]", got)
	}
}

func TestFilterChecks_NonExistent(t *testing.T) {
	filtered := FilterChecks(allStubs(), []string{"nonexistent"})
	if len(filtered) != 0 {
		t.Errorf("FilterChecks with nonexistent ID: got %d, want 0", len(filtered))
	}
}

func TestFilterEnabled_NilMap(t *testing.T) {
	checks := allStubs()
	filtered := FilterEnabled(checks, nil)
	if len(filtered) != len(checks) {
		t.Errorf("FilterEnabled with nil map: got %d, want %d", len(filtered), len(checks))
	}
}

func TestFilterEnabled_DisableOne(t *testing.T) {
	checks := allStubs()
	filtered := FilterEnabled(checks, map[string]bool{"xdg_autostart": false, "cron": true})
	if len(filtered) != len(checks)-1 {
		t.Errorf("FilterEnabled disabling 1: got %d, want %d", len(filtered), len(checks)-1)
	}
	for _, c := range filtered {
		if c.ID() == "xdg_autostart" {
			t.Error("xdg_autostart should be filtered out")
		}
	}
}

func TestUnknownIDs(t *testing.T) {
	got := UnknownIDs([]string{"cron", "all", "bogus"})
	if len(got) != 1 || got[0] != "bogus" {
		t.Errorf("UnknownIDs = %v, want [bogus]", got)
	}
}
