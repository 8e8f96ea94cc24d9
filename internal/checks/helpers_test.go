package checks

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/iyulab/llp/internal/finding"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func evidenceValue(f finding.Finding, key string) (any, bool) {
	for _, ev := range f.Evidence {
		if ev.Key == key {
			return ev.Value, true
		}
	}
	return nil, false
}

func evidenceKeys(f finding.Finding) []string {
	var keys []string
	for _, ev := range f.Evidence {
		keys = append(keys, ev.Key)
	}
	return keys
}

func flagReasons(t *testing.T, f finding.Finding) []string {
	t.Helper()
	v, ok := evidenceValue(f, "flags")
	if !ok {
		return nil
	}
	reasons, ok := v.([]string)
	if !ok {
		t.Fatalf("flags evidence is %T, want []string", v)
	}
	return reasons
}

func assertReasons(t *testing.T, f finding.Finding, want ...string) {
	t.Helper()
	if got := flagReasons(t, f); !reflect.DeepEqual(got, want) {
		t.Errorf("flags = %q, want %q", got, want)
	}
}
