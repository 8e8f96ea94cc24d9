package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small")
	if err := os.WriteFile(small, []byte("* * * * * root true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	text, ok := ReadText(small, DefaultMaxBytes)
	if !ok || text != "* * * * * root true\n" {
		t.Errorf("ReadText = %q, %v", text, ok)
	}

	big := filepath.Join(dir, "big")
	if err := os.WriteFile(big, make([]byte, 11), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := ReadText(big, 10); ok {
		t.Error("oversized file should not be read")
	}

	if _, ok := ReadText(filepath.Join(dir, "missing"), DefaultMaxBytes); ok {
		t.Error("missing file should not be read")
	}
	if _, ok := ReadText(dir, DefaultMaxBytes); ok {
		t.Error("directory should not be read")
	}
}

func TestReadText_EmptyFileIsOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	text, ok := ReadText(path, DefaultMaxBytes)
	if !ok || text != "" {
		t.Errorf("ReadText(empty) = %q, %v; want \"\", true", text, ok)
	}
}

func TestReadText_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(path, []byte{'a', 0xff, 'b'}, 0644); err != nil {
		t.Fatal(err)
	}
	text, ok := ReadText(path, DefaultMaxBytes)
	if !ok {
		t.Fatal("expected readable")
	}
	if !strings.HasPrefix(text, "a") || !strings.HasSuffix(text, "b") || !strings.Contains(text, "\uFFFD") {
		t.Errorf("text = %q", text)
	}
}

func TestHeadLines(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"a\nb\nc\n", 2, "a\nb"},
		{"a\r\nb\r\n", 5, "a\nb"},
		{"", 3, ""},
		{"only", 1, "only"},
	}
	for _, tc := range cases {
		if got := HeadLines(tc.in, tc.n); got != tc.want {
			t.Errorf("HeadLines(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestPathPredicates(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsFile(file) || IsDir(file) || !Exists(file) {
		t.Error("file predicates wrong")
	}
	if IsFile(dir) || !IsDir(dir) {
		t.Error("dir predicates wrong")
	}
	if Exists(filepath.Join(dir, "nope")) {
		t.Error("missing path reported as existing")
	}
}
