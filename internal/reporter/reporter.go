// Package reporter renders findings and baseline diffs for the terminal.
package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/iyulab/llp/internal/baseline"
	"github.com/iyulab/llp/internal/finding"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const (
	maxTextEvidence   = 8
	maxTextValueRunes = 200
)

// Render writes findings to w in the given format, followed by a newline.
func Render(w io.Writer, format string, findings []finding.Finding) error {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatText, "":
		out = []byte(Text(findings))
	case FormatJSON:
		out, err = JSON(findings)
	case FormatYAML:
		out, err = YAML(findings)
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
	if err != nil {
		return err
	}
	out = append(bytes.TrimRight(out, "\n"), '\n')
	_, err = w.Write(out)
	return err
}

// Text renders findings for human review. Each finding shows its first eight
// evidence entries, with values cut to 200 characters.
func Text(findings []finding.Finding) string {
	var lines []string
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("[%s] %s", strings.ToUpper(string(f.Severity)), f.Title))
		lines = append(lines, "  "+f.Description)
		for i, ev := range f.Evidence {
			if i == maxTextEvidence {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s:%s = %s", ev.Source, ev.Key, truncate(displayValue(ev.Value), maxTextValueRunes)))
		}
		if f.Remediation != nil && *f.Remediation != "" {
			lines = append(lines, "  Remediation: "+*f.Remediation)
		}
		lines = append(lines, "")
	}
	return strings.TrimRightFunc(strings.Join(lines, "\n"), unicode.IsSpace)
}

// JSON renders findings as a 2-space indented array. Nil evidence and
// reference lists are written as [].
func JSON(findings []finding.Finding) ([]byte, error) {
	out := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Normalized())
	}
	return marshalIndent(out)
}

// YAML renders findings as a YAML sequence.
func YAML(findings []finding.Finding) ([]byte, error) {
	out := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Normalized())
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Diff renders a baseline comparison as {added, removed, changed}.
func Diff(d baseline.Diff) ([]byte, error) {
	return marshalIndent(d)
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func displayValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return "null"
	case string:
		return typed
	case []string:
		return "[" + strings.Join(typed, ", ") + "]"
	default:
		return fmt.Sprint(typed)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
