// Package finding defines the record format every persistence check produces.
package finding

import (
	"bytes"
	"encoding/json"
)

// Evidence is one supporting data point attached to a Finding.
type Evidence struct {
	// Source names the collection mechanism (filesystem, procfs, systemctl, heuristics).
	Source string `json:"source" yaml:"source"`
	// Key names the attribute. "path" and "FragmentPath" anchor the finding's stable id.
	Key string `json:"key" yaml:"key"`
	// Value is a string, an integer, a list of strings, or nil.
	Value any `json:"value" yaml:"value"`
}

// Finding is one reportable observation produced by a check.
type Finding struct {
	CheckID     string     `json:"check_id" yaml:"check_id"`
	Title       string     `json:"title" yaml:"title"`
	Severity    Severity   `json:"severity" yaml:"severity"`
	Description string     `json:"description" yaml:"description"`
	Evidence    []Evidence `json:"evidence" yaml:"evidence"`
	Remediation *string    `json:"remediation" yaml:"remediation"`
	References  []string   `json:"references" yaml:"references"`
}

// Record is a serialized finding held as a generic field mapping.
// Baselines store records rather than Findings so that files written by
// other versions of the tool, with extra or missing fields, still load.
type Record map[string]any

// Text returns a pointer to s, for optional string fields such as Remediation.
func Text(s string) *string {
	return &s
}

// Normalized returns a copy of f with nil slices replaced by empty ones,
// so that JSON output carries [] instead of null.
func (f Finding) Normalized() Finding {
	if f.Evidence == nil {
		f.Evidence = []Evidence{}
	}
	if f.References == nil {
		f.References = []string{}
	}
	return f
}

// Record converts f into its loosely typed serialized form. The conversion
// goes through JSON so a record built in-process compares equal to one read
// back from a baseline file.
func (f Finding) Record() Record {
	data, err := json.Marshal(f.Normalized())
	if err != nil {
		// Evidence values are scalars or string lists; an unmarshalable
		// value falls back to the fields that are always representable.
		return Record{
			"check_id":    f.CheckID,
			"title":       f.Title,
			"severity":    string(f.Severity),
			"description": f.Description,
			"evidence":    []any{},
			"remediation": nil,
			"references":  []any{},
		}
	}
	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return Record{}
	}
	return rec
}

// AnchorKeys are the evidence keys whose values identify what a finding refers to.
var AnchorKeys = []string{"FragmentPath", "path"}

// IsAnchorKey reports whether key is one of AnchorKeys.
func IsAnchorKey(key string) bool {
	for _, k := range AnchorKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Anchor returns the first anchor-keyed evidence value of f.
func (f Finding) Anchor() (Evidence, bool) {
	for _, e := range f.Evidence {
		if IsAnchorKey(e.Key) {
			return e, true
		}
	}
	return Evidence{}, false
}
