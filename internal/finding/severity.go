package finding

import "strings"

// Severity is the ordered risk level assigned to a Finding.
type Severity string

const (
	SeverityInfo   Severity = "info"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities ascending by risk. Unknown values rank as info.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// ParseSeverity maps a case-insensitive label to a Severity, defaulting to info.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	case SeverityLow:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// MaxSeverity returns the highest-ranked severity, keeping the first on ties.
// It returns info for an empty argument list.
func MaxSeverity(sevs ...Severity) Severity {
	if len(sevs) == 0 {
		return SeverityInfo
	}
	best := sevs[0]
	for _, s := range sevs[1:] {
		if s.Rank() > best.Rank() {
			best = s
		}
	}
	return best
}

// Flag is a single heuristic hit raised by a check.
type Flag struct {
	Severity Severity
	Reason   string
}

// SeverityOf returns the overall severity of a set of flags.
func SeverityOf(flags []Flag) Severity {
	sevs := make([]Severity, 0, len(flags))
	for _, f := range flags {
		sevs = append(sevs, f.Severity)
	}
	return MaxSeverity(sevs...)
}

// Reasons returns the flag reasons in order, as carried in heuristics evidence.
func Reasons(flags []Flag) []string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.Reason)
	}
	return out
}
