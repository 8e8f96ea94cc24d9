package finding

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMaxSeverity(t *testing.T) {
	tests := []struct {
		name string
		in   []Severity
		want Severity
	}{
		{"empty", nil, SeverityInfo},
		{"single", []Severity{SeverityLow}, SeverityLow},
		{"mixed", []Severity{SeverityLow, SeverityHigh, SeverityMedium}, SeverityHigh},
		{"info and low", []Severity{SeverityInfo, SeverityLow}, SeverityLow},
		{"unknown ranks as info", []Severity{"bogus", SeverityInfo}, "bogus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxSeverity(tt.in...); got != tt.want {
				t.Errorf("MaxSeverity(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSeverityOf(t *testing.T) {
	flags := []Flag{
		{SeverityLow, "hidden path"},
		{SeverityMedium, "url"},
		{SeverityLow, "base64"},
	}
	if got := SeverityOf(flags); got != SeverityMedium {
		t.Errorf("SeverityOf = %q, want medium", got)
	}
	if got := SeverityOf(nil); got != SeverityInfo {
		t.Errorf("SeverityOf(nil) = %q, want info", got)
	}
	reasons := Reasons(flags)
	if len(reasons) != 3 || reasons[1] != "url" {
		t.Errorf("Reasons = %v", reasons)
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"HIGH":    SeverityHigh,
		" medium": SeverityMedium,
		"low":     SeverityLow,
		"info":    SeverityInfo,
		"":        SeverityInfo,
		"urgent":  SeverityInfo,
	}
	for in, want := range cases {
		if got := ParseSeverity(in); got != want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindingJSON_NullRemediationAndEmptyLists(t *testing.T) {
	f := Finding{CheckID: "cron.artifacts", Title: "Cron artifacts", Severity: SeverityInfo}
	data, err := json.Marshal(f.Normalized())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"remediation":null`, `"evidence":[]`, `"references":[]`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
}

func TestRecord_GenericValues(t *testing.T) {
	f := Finding{
		CheckID:  "runtime.process",
		Title:    "Review runtime process: PID 42",
		Severity: SeverityHigh,
		Evidence: []Evidence{
			{"procfs", "pid", 42},
			{"procfs", "exe", "/tmp/x"},
			{"heuristics", "flags", []string{"a", "b"}},
		},
		Remediation: Text("terminate"),
	}
	rec := f.Record()
	if rec["severity"] != "high" {
		t.Errorf("severity = %v", rec["severity"])
	}
	if rec["remediation"] != "terminate" {
		t.Errorf("remediation = %v", rec["remediation"])
	}
	ev, ok := rec["evidence"].([]any)
	if !ok || len(ev) != 3 {
		t.Fatalf("evidence = %#v", rec["evidence"])
	}
	pid := ev[0].(map[string]any)["value"]
	if pid != float64(42) {
		t.Errorf("pid value = %#v, want float64(42)", pid)
	}
	flags := ev[2].(map[string]any)["value"].([]any)
	if len(flags) != 2 || flags[0] != "a" {
		t.Errorf("flags value = %#v", flags)
	}
}

func TestAnchor(t *testing.T) {
	f := Finding{Evidence: []Evidence{
		{"systemctl", "unit", "x.service"},
		{"systemctl", "FragmentPath", "/etc/systemd/system/x.service"},
		{"filesystem", "path", "/other"},
	}}
	e, ok := f.Anchor()
	if !ok || e.Value != "/etc/systemd/system/x.service" {
		t.Errorf("Anchor = %v, %v", e, ok)
	}
	if _, ok := (Finding{}).Anchor(); ok {
		t.Error("empty finding should have no anchor")
	}
	if IsAnchorKey("fragmentpath") {
		t.Error("anchor keys are case-sensitive")
	}
}
