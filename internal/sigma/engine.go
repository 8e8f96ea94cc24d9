// Package sigma evaluates Sigma detection rules against check findings.
package sigma

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	sigmalib "github.com/bradleyjkemp/sigma-go"
	"github.com/bradleyjkemp/sigma-go/evaluator"

	"github.com/iyulab/llp/internal/finding"
)

//go:embed rules
var embeddedRules embed.FS

// Engine evaluates Sigma rules against findings.
type Engine struct {
	rules []evaluator.RuleEvaluator
}

// NewDefault creates an Engine loaded with the built-in embedded Sigma rules.
func NewDefault() (*Engine, error) {
	sub, err := fs.Sub(embeddedRules, "rules")
	if err != nil {
		return nil, err
	}
	return New(sub)
}

// Load creates an Engine from the embedded rules plus any rules under
// extraDir. An empty extraDir loads the embedded rules only.
func Load(extraDir string) (*Engine, error) {
	eng, err := NewDefault()
	if err != nil {
		return nil, fmt.Errorf("embedded rules: %w", err)
	}
	if extraDir == "" {
		return eng, nil
	}
	if info, err := os.Stat(extraDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("sigma rules dir %s: not a directory", extraDir)
	}
	extra, err := New(os.DirFS(extraDir))
	if err != nil {
		return nil, fmt.Errorf("rules in %s: %w", extraDir, err)
	}
	eng.rules = append(eng.rules, extra.rules...)
	return eng, nil
}

// New creates an Engine by loading Sigma rules from the given FS.
// All .yml/.yaml files are parsed as Sigma rules.
func New(rulesFS fs.FS) (*Engine, error) {
	var rules []evaluator.RuleEvaluator

	err := fs.WalkDir(rulesFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		data, err := fs.ReadFile(rulesFS, path)
		if err != nil {
			return err
		}
		rule, err := sigmalib.ParseRule(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		rules = append(rules, *evaluator.ForRule(rule))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Engine{rules: rules}, nil
}

// RuleCount returns the number of loaded rules.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// MatchAll evaluates all rules against each finding and returns matches in
// finding order. Rules are scoped by logsource.category (must match the
// finding's check_id); a rule without a category applies to every finding.
func (e *Engine) MatchAll(ctx context.Context, findings []finding.Finding) []SigmaMatch {
	var matches []SigmaMatch
	for _, f := range findings {
		matches = append(matches, e.matchFinding(ctx, f)...)
	}
	return matches
}

// matchFinding evaluates rules against a single finding.
func (e *Engine) matchFinding(ctx context.Context, f finding.Finding) []SigmaMatch {
	event := eventOf(f)

	var matches []SigmaMatch
	for _, ev := range e.rules {
		cat := ev.Rule.Logsource.Category
		if cat != "" && cat != f.CheckID {
			continue
		}

		res, err := ev.Matches(ctx, event)
		if err != nil || !res.Match {
			continue
		}
		m := SigmaMatch{
			CheckID:   f.CheckID,
			RuleTitle: ev.Rule.Title,
			RuleID:    ev.Rule.ID,
			Level:     ev.Rule.Level,
			Event:     event,
		}
		if anchor, ok := f.Anchor(); ok {
			m.Anchor = anchor.Value
		} else {
			m.Anchor = f.Title
		}
		matches = append(matches, m)
	}
	return matches
}

// eventOf flattens a finding into the field map rules are evaluated against.
// Evidence keys become fields with string values; lists are joined by
// newlines. The first evidence entry wins when a key repeats.
func eventOf(f finding.Finding) map[string]interface{} {
	event := map[string]interface{}{
		"check_id":    f.CheckID,
		"title":       f.Title,
		"severity":    string(f.Severity),
		"description": f.Description,
	}
	for _, ev := range f.Evidence {
		if _, exists := event[ev.Key]; exists {
			continue
		}
		event[ev.Key] = stringValue(ev.Value)
	}
	return event
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case []string:
		return strings.Join(typed, "\n")
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, stringValue(item))
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(typed)
	}
}
