package collector

import (
	"os"
	"strings"
)

// DefaultMaxBytes bounds how much of an artifact ReadText will accept.
const DefaultMaxBytes = 200_000

// ReadText reads a small text file. It returns ok=false when the file cannot
// be read or is larger than maxBytes; invalid UTF-8 is replaced, not rejected.
func ReadText(path string, maxBytes int64) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > maxBytes {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil || int64(len(data)) > maxBytes {
		return "", false
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), true
}

// SplitLines splits text on line endings without a trailing empty element.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// HeadLines returns the first n lines of text joined by newlines.
func HeadLines(text string, n int) string {
	lines := SplitLines(text)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// IsFile reports whether path exists and is a regular file, following symlinks.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDir reports whether path exists and is a directory, following symlinks.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
