// Package orchestrator coordinates the Scan → Match → Baseline/Report pipeline.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iyulab/llp/internal/baseline"
	"github.com/iyulab/llp/internal/checks"
	"github.com/iyulab/llp/internal/collector"
	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
	"github.com/iyulab/llp/internal/platform"
	"github.com/iyulab/llp/internal/reporter"
	"github.com/iyulab/llp/internal/sigma"
	"github.com/iyulab/llp/internal/store"
)

// Options holds CLI flags for the orchestrator.
type Options struct {
	Only            []string
	Format          string
	BaselineSave    string
	BaselineCompare string
	Verbose         bool

	// Stdout receives findings, diffs, and the save confirmation.
	// Stderr receives progress and warnings. Both default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Orchestrator runs the pipeline.
type Orchestrator struct {
	cfg    *config.Config
	opts   Options
	checks []platform.Check
}

// New creates an Orchestrator with the configured Linux checks, filtered by
// the [checks] table and the --checks selection.
func New(cfg *config.Config, opts Options) *Orchestrator {
	return NewWithChecks(cfg, opts, checks.All(cfg, collector.ExecRunner{}))
}

// NewWithChecks creates an Orchestrator over the given checks (used in tests).
func NewWithChecks(cfg *config.Config, opts Options, all []platform.Check) *Orchestrator {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = cfg.Output.Format
	}
	selected := platform.FilterEnabled(all, cfg.Checks)
	selected = platform.FilterChecks(selected, opts.Only)

	return &Orchestrator{
		cfg:    cfg,
		opts:   opts,
		checks: selected,
	}
}

// Checks returns the checks that Run will execute, in order.
func (o *Orchestrator) Checks() []platform.Check {
	return o.checks
}

// Run executes the checks, then saves a baseline, compares against one, or
// renders the findings. A missing or malformed baseline is an error, as is a
// cancelled context; check trouble never is.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !platform.Supported() {
		o.warnf("persistence checks target linux; running on %s", platform.DetectOS())
	}
	if unknown := platform.UnknownIDs(o.opts.Only); len(unknown) > 0 {
		o.warnf("unknown check(s) ignored: %s", strings.Join(unknown, ", "))
	}

	findings := o.Scan(ctx)

	// Partial results must not replace a baseline or be diffed against one.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	switch {
	case o.opts.BaselineSave != "":
		return o.saveBaseline(ctx, findings)
	case o.opts.BaselineCompare != "":
		return o.compareBaseline(ctx, findings)
	default:
		if err := reporter.Render(o.opts.Stdout, o.opts.Format, findings); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		return nil
	}
}

// Scan runs every selected check in order, then appends Sigma rule findings.
func (o *Orchestrator) Scan(ctx context.Context) []finding.Finding {
	start := time.Now()
	fmt.Fprintf(o.opts.Stderr, "[*] Scanning persistence surfaces (%d checks)...\n", len(o.checks))

	var findings []finding.Finding
	for _, c := range o.checks {
		checkStart := time.Now()
		found := runCheck(ctx, c)
		o.debugf("%s: %d finding(s) (%s)", c.ID(), len(found), time.Since(checkStart).Round(time.Millisecond))
		findings = append(findings, found...)
	}

	if o.cfg.Sigma.Enabled {
		findings = append(findings, o.matchSigma(ctx, findings)...)
	}

	summary := reporter.Summarize(findings)
	fmt.Fprintf(o.opts.Stderr, "[*] Scan complete: %s (%s)\n", summary, time.Since(start).Round(time.Millisecond))
	if summary.NeedsReview() {
		fmt.Fprintf(o.opts.Stderr, "[*] Highest severity: %s. Review the flagged entries.\n", summary.Max)
	}
	return findings
}

// runCheck runs c, turning a panic into an info finding so one broken
// scanner does not abort the run.
func runCheck(ctx context.Context, c platform.Check) (found []finding.Finding) {
	defer func() {
		if r := recover(); r != nil {
			found = append(found, finding.Finding{
				CheckID:     "llp.internal",
				Title:       "Check did not complete: " + c.Name(),
				Severity:    finding.SeverityInfo,
				Description: fmt.Sprintf("The %s check stopped unexpectedly: %v", c.ID(), r),
				Evidence: []finding.Evidence{
					{Source: "llp", Key: "check", Value: c.ID()},
				},
			})
		}
	}()
	return c.Run(ctx)
}

func (o *Orchestrator) matchSigma(ctx context.Context, findings []finding.Finding) []finding.Finding {
	eng, err := sigma.Load(o.cfg.Sigma.RulesDir)
	if err != nil {
		o.warnf("sigma engine init: %v", err)
		return nil
	}
	matches := eng.MatchAll(ctx, findings)
	if len(matches) > 0 {
		fmt.Fprintf(o.opts.Stderr, "[*] Sigma: %d rule match(es) detected\n", len(matches))
	}
	return sigma.Findings(matches)
}

func (o *Orchestrator) saveBaseline(ctx context.Context, findings []finding.Finding) error {
	b := baseline.Make(findings, o.cfg.Baseline.Version)
	data, err := b.ToJSON()
	if err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}

	backend, key, err := store.Open(ctx, o.opts.BaselineSave, o.cfg.Baseline)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.Write(ctx, key, data); err != nil {
		return fmt.Errorf("write baseline %s: %w", o.opts.BaselineSave, err)
	}
	fmt.Fprintf(o.opts.Stdout, "Baseline written to: %s\n", o.opts.BaselineSave)
	return nil
}

func (o *Orchestrator) compareBaseline(ctx context.Context, findings []finding.Finding) error {
	backend, key, err := store.Open(ctx, o.opts.BaselineCompare, o.cfg.Baseline)
	if err != nil {
		return err
	}
	defer backend.Close()

	data, err := backend.Read(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("baseline not found: %s", o.opts.BaselineCompare)
		}
		return fmt.Errorf("read baseline %s: %w", o.opts.BaselineCompare, err)
	}

	old, err := baseline.FromJSON(data)
	if err != nil {
		return fmt.Errorf("parse baseline %s: %w", o.opts.BaselineCompare, err)
	}

	diff := baseline.Compare(old, findings)
	if diff.Empty() {
		o.debugf("no differences from baseline %s", o.opts.BaselineCompare)
	}
	o.debugf("baseline %s (version %s): %d added, %d removed, %d changed",
		o.opts.BaselineCompare, old.Version, len(diff.Added), len(diff.Removed), len(diff.Changed))

	out, err := reporter.Diff(diff)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(o.opts.Stdout, "%s\n", out)
	return err
}

func (o *Orchestrator) warnf(format string, args ...any) {
	fmt.Fprintf(o.opts.Stderr, "[orchestrator] warning: "+format+"\n", args...)
}

func (o *Orchestrator) debugf(format string, args ...any) {
	if o.opts.Verbose {
		fmt.Fprintf(o.opts.Stderr, "[orchestrator] "+format+"\n", args...)
	}
}
