package sigma

import (
	"github.com/iyulab/llp/internal/finding"
)

// SigmaMatch records a Sigma rule hit against a finding.
type SigmaMatch struct {
	CheckID   string                 `json:"check_id"`
	RuleTitle string                 `json:"rule_title"`
	RuleID    string                 `json:"rule_id,omitempty"`
	Level     string                 `json:"level"`  // informational | low | medium | high | critical
	Anchor    any                    `json:"anchor"` // path of the matched finding, or its title
	Event     map[string]interface{} `json:"event"`  // matched event for evidence
}

// SeverityForLevel maps a Sigma rule level onto the finding severity scale.
func SeverityForLevel(level string) finding.Severity {
	switch level {
	case "low":
		return finding.SeverityLow
	case "medium":
		return finding.SeverityMedium
	case "high", "critical":
		return finding.SeverityHigh
	default:
		return finding.SeverityInfo
	}
}

// Finding converts the match into a reportable finding. Its stable identity
// follows the matched artifact, so a rule hit on the same file keeps its id
// across runs.
func (m SigmaMatch) Finding() finding.Finding {
	ruleKey := m.RuleID
	if ruleKey == "" {
		ruleKey = m.RuleTitle
	}
	return finding.Finding{
		CheckID:  "sigma." + ruleKey,
		Title:    "Sigma rule matched: " + m.RuleTitle,
		Severity: SeverityForLevel(m.Level),
		Description: "A detection rule matched a " + m.CheckID + " finding. " +
			"Rule hits corroborate the heuristic flags and are not a determination of compromise.",
		Evidence: []finding.Evidence{
			{Source: "sigma", Key: "rule_id", Value: m.RuleID},
			{Source: "sigma", Key: "rule_title", Value: m.RuleTitle},
			{Source: "sigma", Key: "level", Value: m.Level},
			{Source: "sigma", Key: "matched_check", Value: m.CheckID},
			{Source: "sigma", Key: "path", Value: m.Anchor},
		},
		Remediation: finding.Text("Review the artifact referenced by the matched finding."),
	}
}

// Findings converts matches into findings, in match order.
func Findings(matches []SigmaMatch) []finding.Finding {
	out := make([]finding.Finding, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Finding())
	}
	return out
}
