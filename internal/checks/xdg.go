package checks

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iyulab/llp/internal/collector"
	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
)

const xdgCheckID = "xdg.autostart"

// XDGAutostart reviews .desktop entries started on graphical login.
type XDGAutostart struct {
	home  string
	dirs  []string
	hints *hintTable
}

// NewXDGAutostart builds the autostart check. "~" in configured directories
// expands to home.
func NewXDGAutostart(cfg config.XDGConfig, home string) *XDGAutostart {
	dirs := make([]string, 0, len(cfg.Dirs))
	for _, d := range cfg.Dirs {
		if strings.HasPrefix(d, "~") && home == "" {
			continue
		}
		dirs = append(dirs, config.ExpandHome(d, home))
	}
	lowered := make([]string, 0, len(cfg.Hints))
	for _, h := range cfg.Hints {
		lowered = append(lowered, strings.ToLower(h))
	}
	return &XDGAutostart{home: home, dirs: dirs, hints: newHintTable(lowered)}
}

func (x *XDGAutostart) ID() string   { return platform.XDGAutostartID }
func (x *XDGAutostart) Name() string { return "XDG Autostart Entries" }

// Run implements platform.Check.
func (x *XDGAutostart) Run(ctx context.Context) []finding.Finding {
	var findings []finding.Finding
	for _, dir := range x.dirs {
		if !collector.IsDir(dir) {
			continue
		}
		for _, p := range desktopFiles(dir) {
			if ctx.Err() != nil {
				return findings
			}
			text, ok := collector.ReadText(p, collector.DefaultMaxBytes)
			if !ok || text == "" {
				continue
			}
			flags := x.flags(text)
			if len(flags) == 0 {
				continue
			}

			findings = append(findings, finding.Finding{
				CheckID:  xdgCheckID,
				Title:    "Review XDG autostart entry: " + filepath.Base(p),
				Severity: finding.SeverityOf(flags),
				Description: "XDG autostart entries execute automatically on desktop login " +
					"and are a common user-level persistence surface. Flags are heuristic-only.",
				Evidence: []finding.Evidence{
					fsEvidence("path", p),
					fsEvidence("scope", x.scope(p)),
					flagsEvidence(flags),
					fsEvidence("snippet", collector.HeadLines(text, autostartSnippetLines)),
				},
				Remediation: finding.Text("Confirm the entry is expected for this system/user. " +
					"Disable or remove unexpected autostart files and review referenced executables."),
			})
		}
	}
	return findings
}

// scope is "user" for entries under the home directory, "system" otherwise.
func (x *XDGAutostart) scope(path string) string {
	if x.home != "" && strings.HasPrefix(path, x.home) {
		return "user"
	}
	return "system"
}

// flags inspects Exec= lines, or the whole entry when it has none.
func (x *XDGAutostart) flags(text string) []finding.Flag {
	lowered := strings.ToLower(text)
	var execLines []string
	for _, line := range collector.SplitLines(lowered) {
		if strings.HasPrefix(strings.TrimSpace(line), "exec=") {
			execLines = append(execLines, line)
		}
	}
	joined := lowered
	if len(execLines) > 0 {
		joined = strings.Join(execLines, "\n")
	}

	var flags []finding.Flag
	if hint, ok := x.hints.First(joined); ok {
		flags = append(flags, finding.Flag{Severity: finding.SeverityMedium,
			Reason: "Autostart Exec contains suspicious token: " + strings.TrimSpace(hint)})
	}
	if strings.Contains(joined, "/.") {
		flags = append(flags, finding.Flag{Severity: finding.SeverityLow,
			Reason: "Autostart Exec references hidden paths; verify intent"})
	}
	return flags
}

// desktopFiles lists *.desktop entries in dir, sorted by name.
func desktopFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ".desktop") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files
}
