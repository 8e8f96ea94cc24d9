package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iyulab/llp/internal/collector"
	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
)

const cronCheckID = "cron.artifacts"

// Artifact kinds.
const (
	cronKindFile      = "file"
	cronKindDirEntry  = "dir_entry"
	cronKindUserSpool = "user_spool"
)

type cronArtifact struct {
	kind  string
	path  string
	owner any // string, or nil when the file could not be stat'ed
}

// Cron reviews system cron files, cron.* directories, and per-user spools.
type Cron struct {
	systemLocations []string
	userSpoolDirs   []string
	alwaysReport    map[string]bool
	hints           *hintTable
}

// NewCron builds the cron check from its config section.
func NewCron(cfg config.CronConfig) *Cron {
	always := make(map[string]bool, len(cfg.AlwaysReport))
	for _, p := range cfg.AlwaysReport {
		always[filepath.Clean(p)] = true
	}
	return &Cron{
		systemLocations: cfg.SystemLocations,
		userSpoolDirs:   cfg.UserSpoolDirs,
		alwaysReport:    always,
		hints:           newHintTable(cfg.PathHints),
	}
}

func (c *Cron) ID() string   { return platform.CronID }
func (c *Cron) Name() string { return "Cron Jobs" }

// Run implements platform.Check.
func (c *Cron) Run(ctx context.Context) []finding.Finding {
	artifacts := append(c.systemArtifacts(), c.userSpoolArtifacts()...)
	if len(artifacts) == 0 {
		return []finding.Finding{{
			CheckID:     cronCheckID,
			Title:       "Cron artifacts",
			Severity:    finding.SeverityInfo,
			Description: "No cron artifacts were found in common locations, or access was restricted.",
		}}
	}

	var findings []finding.Finding
	for _, a := range artifacts {
		if ctx.Err() != nil {
			break
		}
		if f, ok := c.review(a); ok {
			findings = append(findings, f)
		}
	}
	return findings
}

func (c *Cron) review(a cronArtifact) (finding.Finding, bool) {
	content, ok := collector.ReadText(a.path, collector.DefaultMaxBytes)
	if !ok {
		return finding.Finding{
			CheckID:     cronCheckID,
			Title:       fmt.Sprintf("Review cron artifact (unreadable/large): %s", a.path),
			Severity:    finding.SeverityInfo,
			Description: "Cron artifact exists but could not be read (permission, binary, or too large).",
			Evidence: []finding.Evidence{
				fsEvidence("path", a.path),
				fsEvidence("kind", a.kind),
				fsEvidence("owner", a.owner),
			},
			Remediation: finding.Text("Verify permissions and inspect the file contents using appropriate privileges."),
		}, true
	}

	flags := c.flags(content)
	if len(flags) == 0 && !c.alwaysReport[filepath.Clean(a.path)] {
		return finding.Finding{}, false
	}

	evidence := []finding.Evidence{
		fsEvidence("path", a.path),
		fsEvidence("kind", a.kind),
		fsEvidence("owner", a.owner),
		fsEvidence("snippet", collector.HeadLines(content, cronSnippetLines)),
	}
	if len(flags) > 0 {
		evidence = append(evidence, flagsEvidence(flags))
	}

	return finding.Finding{
		CheckID:  cronCheckID,
		Title:    fmt.Sprintf("Review cron artifact: %s", a.path),
		Severity: finding.SeverityOf(flags),
		// Baselines compare descriptions; keep this text stable across releases.
		Description: "Module 2 checks cron-related locations for entries that deserve review. " +
			"Flags are heuristic and not a determination of compromise.",
		Evidence: evidence,
		Remediation: finding.Text("Confirm the artifact's purpose and provenance. If unexpected, disable/remove it per policy, " +
			"and review referenced scripts/binaries and recent account changes."),
	}, true
}

func (c *Cron) flags(text string) []finding.Flag {
	var flags []finding.Flag
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "http://") || strings.Contains(lowered, "https://") {
		flags = append(flags, finding.Flag{Severity: finding.SeverityMedium,
			Reason: "Cron content includes URL(s); review for unexpected network retrieval."})
	}
	if hint, ok := c.hints.First(text); ok {
		flags = append(flags, finding.Flag{Severity: finding.SeverityMedium,
			Reason: "Cron references potentially risky location: " + hint})
	}
	if strings.Contains(lowered, "base64") {
		flags = append(flags, finding.Flag{Severity: finding.SeverityLow,
			Reason: "Cron content references 'base64'; verify intent and source."})
	}
	if strings.Contains(text, "/.") {
		flags = append(flags, finding.Flag{Severity: finding.SeverityLow,
			Reason: "Cron references hidden path(s) (dot-files/dirs); verify intent."})
	}
	return flags
}

func (c *Cron) systemArtifacts() []cronArtifact {
	var artifacts []cronArtifact
	for _, p := range c.systemLocations {
		switch {
		case collector.IsFile(p):
			artifacts = append(artifacts, cronArtifact{kind: cronKindFile, path: p, owner: fileOwner(p)})
		case collector.IsDir(p):
			for _, child := range dirFiles(p) {
				artifacts = append(artifacts, cronArtifact{kind: cronKindDirEntry, path: child, owner: fileOwner(child)})
			}
		}
	}
	return artifacts
}

func (c *Cron) userSpoolArtifacts() []cronArtifact {
	var artifacts []cronArtifact
	for _, d := range c.userSpoolDirs {
		if !collector.IsDir(d) {
			continue
		}
		for _, child := range dirFiles(d) {
			artifacts = append(artifacts, cronArtifact{kind: cronKindUserSpool, path: child, owner: fileOwner(child)})
		}
	}
	return artifacts
}

// dirFiles lists the regular files directly inside dir, sorted by name.
// Dotfiles are skipped. An unreadable directory yields nothing.
func dirFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if collector.IsFile(p) {
			files = append(files, p)
		}
	}
	return files
}
