package baseline

import (
	"reflect"
	"testing"

	"github.com/iyulab/llp/internal/finding"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var severities = []finding.Severity{
	finding.SeverityInfo,
	finding.SeverityLow,
	finding.SeverityMedium,
	finding.SeverityHigh,
}

// genFinding generates findings with either a path anchor or only a title.
func genFinding() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("cron.artifacts", "systemd.units", "shell.init", "xdg.autostart"),
		gen.Identifier(),
		gen.AlphaString(),
		gen.IntRange(0, len(severities)-1),
		gen.Bool(),
	).Map(func(vals []interface{}) finding.Finding {
		f := finding.Finding{
			CheckID:     vals[0].(string),
			Title:       vals[2].(string),
			Severity:    severities[vals[3].(int)],
			Description: "generated",
		}
		if vals[4].(bool) {
			f.Evidence = []finding.Evidence{
				{Source: "filesystem", Key: "path", Value: "/" + vals[1].(string)},
				{Source: "heuristics", Key: "flags", Value: []string{vals[2].(string)}},
			}
		}
		return f
	})
}

func testParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	return parameters
}

// TestStableIDDeterministic: the same finding always hashes to the same id.
func TestStableIDDeterministic(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	properties.Property("stable id is deterministic", prop.ForAll(
		func(f finding.Finding) bool {
			id := StableID(f)
			return len(id) == 16 && id == StableID(f)
		},
		genFinding(),
	))

	properties.TestingRun(t)
}

// TestBaselineRoundTrip: FromJSON(ToJSON(b)) reproduces version and findings.
func TestBaselineRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	properties.Property("baseline survives JSON round trip", prop.ForAll(
		func(fs []finding.Finding, version string) bool {
			b := Make(fs, version)
			data, err := b.ToJSON()
			if err != nil {
				return false
			}
			back, err := FromJSON(data)
			if err != nil {
				return false
			}
			return back.Version == b.Version && reflect.DeepEqual(back.Findings, b.Findings)
		},
		gen.SliceOf(genFinding()),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestDiffIdempotent: comparing a finding set against its own baseline is empty.
func TestDiffIdempotent(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	properties.Property("diff against own baseline is empty", prop.ForAll(
		func(fs []finding.Finding) bool {
			return Compare(Make(fs, DefaultVersion), fs).Empty()
		},
		gen.SliceOf(genFinding()),
	))

	properties.TestingRun(t)
}

// TestDiffPartition: every id lands in exactly one of added, removed, or unchanged/changed.
func TestDiffPartition(t *testing.T) {
	properties := gopter.NewProperties(testParameters())

	properties.Property("added and removed count the id set difference", prop.ForAll(
		func(oldFs, newFs []finding.Finding) bool {
			old := Make(oldFs, DefaultVersion)
			cur := Make(newFs, DefaultVersion)
			d := Compare(old, newFs)

			added, removed := 0, 0
			for id := range cur.Findings {
				if _, ok := old.Findings[id]; !ok {
					added++
				}
			}
			for id := range old.Findings {
				if _, ok := cur.Findings[id]; !ok {
					removed++
				}
			}
			return len(d.Added) == added && len(d.Removed) == removed
		},
		gen.SliceOf(genFinding()),
		gen.SliceOf(genFinding()),
	))

	properties.TestingRun(t)
}
