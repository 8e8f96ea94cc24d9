package checks

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iyulab/llp/internal/collector"
	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
)

const shellInitCheckID = "shell.init"

// ShellInit reviews the login and interactive shell startup files in a home
// directory.
type ShellInit struct {
	home  string
	files []string
	hints *hintTable
}

// NewShellInit builds the shell init check for files under home.
func NewShellInit(cfg config.ShellInitConfig, home string) *ShellInit {
	lowered := make([]string, 0, len(cfg.Hints))
	for _, h := range cfg.Hints {
		lowered = append(lowered, strings.ToLower(h))
	}
	return &ShellInit{home: home, files: cfg.Files, hints: newHintTable(lowered)}
}

func (s *ShellInit) ID() string   { return platform.ShellInitID }
func (s *ShellInit) Name() string { return "Shell Initialization Files" }

// Run implements platform.Check.
func (s *ShellInit) Run(ctx context.Context) []finding.Finding {
	if s.home == "" {
		return nil
	}
	var findings []finding.Finding
	for _, name := range s.files {
		if ctx.Err() != nil {
			break
		}
		p := filepath.Join(s.home, name)
		if !collector.IsFile(p) {
			continue
		}
		text, ok := collector.ReadText(p, collector.DefaultMaxBytes)
		if !ok || text == "" {
			continue
		}
		flags := s.flags(text)
		if len(flags) == 0 {
			continue
		}

		findings = append(findings, finding.Finding{
			CheckID:  shellInitCheckID,
			Title:    "Review shell initialization file: " + filepath.Base(p),
			Severity: finding.SeverityOf(flags),
			Description: "Shell initialization files execute on login or shell start and are " +
				"a common persistence surface. Flags are heuristic-only.",
			Evidence: []finding.Evidence{
				fsEvidence("path", p),
				flagsEvidence(flags),
				fsEvidence("snippet", collector.HeadLines(text, shellSnippetLines)),
			},
			Remediation: finding.Text("Verify each command is expected. Remove or comment unexpected entries " +
				"and review recent user changes."),
		})
	}
	return findings
}

func (s *ShellInit) flags(text string) []finding.Flag {
	var flags []finding.Flag
	if hint, ok := s.hints.First(strings.ToLower(text)); ok {
		flags = append(flags, finding.Flag{Severity: finding.SeverityMedium,
			Reason: "Shell init contains suspicious token: " + strings.TrimSpace(hint)})
	}
	if strings.Contains(text, "/.") {
		flags = append(flags, finding.Flag{Severity: finding.SeverityLow,
			Reason: "Shell init references hidden paths; verify intent"})
	}
	return flags
}
