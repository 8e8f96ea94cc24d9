// Package platform provides OS detection and the persistence check contract.
package platform

import (
	"context"
	"runtime"
	"strings"

	"github.com/iyulab/llp/internal/finding"
)

// Check scans one persistence surface.
//
// Run must not panic or fail for expected conditions such as missing paths,
// permission errors, or failing commands: those degrade to fewer findings or
// an info-severity note.
type Check interface {
	// ID is the selection key used by --checks and the [checks] config table.
	ID() string
	// Name is the human-readable display name.
	Name() string
	Run(ctx context.Context) []finding.Finding
}

// DetectOS returns the current operating system identifier.
func DetectOS() string {
	return runtime.GOOS
}

// Supported reports whether the persistence surfaces exist on this OS.
func Supported() bool {
	return DetectOS() == "linux"
}

// ParseSelection splits a comma-separated --checks value into trimmed,
// lower-cased IDs. Empty items are dropped.
func ParseSelection(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// FilterChecks returns only checks whose IDs are in the allowed list, in
// their original order. If allowed is empty or contains "all", all checks are
// returned. Matching is case-insensitive and unknown IDs are ignored.
func FilterChecks(checks []Check, allowed []string) []Check {
	if len(allowed) == 0 {
		return checks
	}
	set := make(map[string]bool, len(allowed))
	for _, id := range allowed {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "all" {
			return checks
		}
		set[id] = true
	}
	var filtered []Check
	for _, c := range checks {
		if set[strings.ToLower(c.ID())] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterEnabled returns only checks that are enabled in the config.
// If enabledMap is nil, all checks are returned.
func FilterEnabled(checks []Check, enabledMap map[string]bool) []Check {
	if enabledMap == nil {
		return checks
	}
	var filtered []Check
	for _, c := range checks {
		enabled, exists := enabledMap[c.ID()]
		if !exists || enabled {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// UnknownIDs returns the requested IDs that name no known check.
func UnknownIDs(requested []string) []string {
	known := make(map[string]bool)
	for _, id := range LinuxCheckIDs() {
		known[id] = true
	}
	known["all"] = true
	var unknown []string
	for _, id := range requested {
		if !known[strings.ToLower(id)] {
			unknown = append(unknown, id)
		}
	}
	return unknown
}
