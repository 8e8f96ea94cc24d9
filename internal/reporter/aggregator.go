package reporter

import (
	"fmt"
	"strings"

	"github.com/iyulab/llp/internal/finding"
)

// Summary counts findings per severity.
type Summary struct {
	Total  int
	Counts map[finding.Severity]int
	Max    finding.Severity
}

// Summarize aggregates findings for the stderr status line.
func Summarize(findings []finding.Finding) Summary {
	s := Summary{Counts: make(map[finding.Severity]int), Max: finding.SeverityInfo}
	for _, f := range findings {
		s.Total++
		s.Counts[f.Severity]++
		s.Max = finding.MaxSeverity(s.Max, f.Severity)
	}
	return s
}

// String renders e.g. "5 findings (high: 1, medium: 2, low: 0, info: 2)".
func (s Summary) String() string {
	levels := []finding.Severity{
		finding.SeverityHigh,
		finding.SeverityMedium,
		finding.SeverityLow,
		finding.SeverityInfo,
	}
	parts := make([]string, 0, len(levels))
	for _, sev := range levels {
		parts = append(parts, fmt.Sprintf("%s: %d", sev, s.Counts[sev]))
	}
	noun := "findings"
	if s.Total == 1 {
		noun = "finding"
	}
	return fmt.Sprintf("%d %s (%s)", s.Total, noun, strings.Join(parts, ", "))
}

// NeedsReview reports whether any finding is above info.
func (s Summary) NeedsReview() bool {
	return s.Max.Rank() > finding.SeverityInfo.Rank()
}
