package baseline

import (
	"reflect"
	"sort"

	"github.com/iyulab/llp/internal/finding"
)

// Change pairs the stored and current form of a finding whose severity or
// description moved between runs.
type Change struct {
	ID  string         `json:"id"`
	Old finding.Record `json:"old"`
	New finding.Record `json:"new"`
}

// Diff is the outcome of comparing a run against a baseline.
type Diff struct {
	Added   []finding.Record `json:"added"`
	Removed []finding.Record `json:"removed"`
	Changed []Change         `json:"changed"`
}

// Empty reports whether nothing was added, removed or changed.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// changeFields are the only fields whose difference reports a finding as
// changed. Evidence routinely varies run to run (snippets, pids).
var changeFields = []string{"severity", "description"}

// Compare diffs newFindings against old. Removed entries come from the old
// baseline's stored records; every list is sorted by identifier.
func Compare(old *Baseline, newFindings []finding.Finding) Diff {
	current := Make(newFindings, old.Version)

	d := Diff{
		Added:   []finding.Record{},
		Removed: []finding.Record{},
		Changed: []Change{},
	}

	for _, id := range sortedKeys(current.Findings) {
		if _, ok := old.Findings[id]; !ok {
			d.Added = append(d.Added, current.Findings[id])
		}
	}

	for _, id := range sortedKeys(old.Findings) {
		o := old.Findings[id]
		n, ok := current.Findings[id]
		if !ok {
			d.Removed = append(d.Removed, o)
			continue
		}
		if changed(o, n) {
			d.Changed = append(d.Changed, Change{ID: id, Old: o, New: n})
		}
	}

	return d
}

func changed(o, n finding.Record) bool {
	for _, field := range changeFields {
		if !reflect.DeepEqual(o[field], n[field]) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]finding.Record) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
