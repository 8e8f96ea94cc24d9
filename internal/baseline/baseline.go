// Package baseline snapshots findings under stable identifiers and diffs
// a later run against a saved snapshot.
package baseline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iyulab/llp/internal/finding"
)

// DefaultVersion is the label written into newly saved baselines.
const DefaultVersion = "0.1.0"

// unknownVersion is assumed for baseline files that carry no version field.
const unknownVersion = "unknown"

// idLength is the number of hex characters kept from the SHA-256 digest.
const idLength = 16

// Baseline maps stable finding identifiers to serialized findings.
type Baseline struct {
	Version  string                    `json:"version"`
	Findings map[string]finding.Record `json:"findings"`
}

// StableID derives a finding's identifier from its check id and anchor.
// The anchor is the first evidence value keyed "FragmentPath" or "path",
// or the title when there is none, so wording and severity may change
// between runs without changing the id.
func StableID(f finding.Finding) string {
	anchor := f.Title
	if e, ok := f.Anchor(); ok {
		anchor = anchorString(e.Value)
	}
	sum := sha256.Sum256([]byte(f.CheckID + "|" + anchor))
	return hex.EncodeToString(sum[:])[:idLength]
}

// anchorString renders non-string anchors the way baselines from earlier
// releases spelled them, so ids survive an upgrade.
func anchorString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case []string:
		quoted := make([]string, len(t))
		for i, s := range t {
			quoted[i] = quoteItem(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}

// quoteItem single-quotes s, switching to double quotes when s holds a
// single quote and no double quote.
func quoteItem(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

// Make builds a baseline from findings. A later finding whose id collides
// with an earlier one replaces it.
func Make(findings []finding.Finding, version string) *Baseline {
	mapped := make(map[string]finding.Record, len(findings))
	for _, f := range findings {
		mapped[StableID(f)] = f.Record()
	}
	return &Baseline{Version: version, Findings: mapped}
}

// ToJSON serializes the baseline with sorted keys and two-space indentation,
// so the same findings always produce the same bytes.
func (b *Baseline) ToJSON() ([]byte, error) {
	doc := Baseline{Version: b.Version, Findings: b.Findings}
	if doc.Findings == nil {
		doc.Findings = map[string]finding.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode baseline: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// FromJSON parses a baseline document. A missing version reads as "unknown"
// and missing findings as an empty mapping; malformed JSON is an error.
func FromJSON(data []byte) (*Baseline, error) {
	var doc struct {
		Version  *string                   `json:"version"`
		Findings map[string]finding.Record `json:"findings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	b := &Baseline{Version: unknownVersion, Findings: doc.Findings}
	if doc.Version != nil {
		b.Version = *doc.Version
	}
	if b.Findings == nil {
		b.Findings = map[string]finding.Record{}
	}
	return b, nil
}
