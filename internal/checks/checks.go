// Package checks implements the persistence surface scanners.
//
// Every check reads its locations and hint tables from configuration and
// reports heuristics only: a flag marks an entry for review, not compromise.
package checks

import (
	"github.com/iyulab/llp/internal/collector"
	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
)

// Snippet sizes, in lines.
const (
	cronSnippetLines      = 80
	unitSnippetLines      = 40
	shellSnippetLines     = 60
	autostartSnippetLines = 80
)

// All returns every check in execution order, configured from cfg.
func All(cfg *config.Config, runner collector.Runner) []platform.Check {
	home := cfg.HomeDir()
	return []platform.Check{
		NewSystemd(cfg.Systemd, runner),
		NewCron(cfg.Cron),
		NewShellInit(cfg.ShellInit, home),
		NewXDGAutostart(cfg.XDG, home),
		NewRuntimeProcess(cfg.Runtime),
	}
}

func flagsEvidence(flags []finding.Flag) finding.Evidence {
	return finding.Evidence{Source: "heuristics", Key: "flags", Value: finding.Reasons(flags)}
}

func fsEvidence(key string, value any) finding.Evidence {
	return finding.Evidence{Source: "filesystem", Key: key, Value: value}
}
