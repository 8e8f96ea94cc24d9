// Package updater handles self-update of the llp binary from GitHub releases.
package updater

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.github.com/repos/iyulab/llp/releases/latest"

const requestTimeout = 60 * time.Second

// UpdateInfo holds the result of a version check.
type UpdateInfo struct {
	HasUpdate      bool
	CurrentVersion string
	LatestVersion  string
	DownloadURL    string
	// ChecksumURL points at "<asset>.sha256" when the release publishes one.
	ChecksumURL string
}

type githubRelease struct {
	TagName string        `json:"tag_name"`
	Assets  []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

var httpClient = &http.Client{Timeout: requestTimeout}

// CheckLatest queries the GitHub API and returns update info.
// apiURL defaults to the official GitHub releases endpoint when empty.
func CheckLatest(ctx context.Context, currentVersion, apiURL string) (*UpdateInfo, error) {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	resp, err := get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("updater: fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("updater: GitHub API returned %d", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("updater: parse response: %w", err)
	}

	info := &UpdateInfo{
		CurrentVersion: currentVersion,
		LatestVersion:  release.TagName,
		HasUpdate:      isNewer(currentVersion, release.TagName),
	}

	if info.HasUpdate {
		target := AssetName(runtime.GOOS, runtime.GOARCH)
		for _, a := range release.Assets {
			switch a.Name {
			case target:
				info.DownloadURL = a.BrowserDownloadURL
			case target + ".sha256":
				info.ChecksumURL = a.BrowserDownloadURL
			}
		}
	}

	return info, nil
}

// AssetName returns the expected release asset filename for the given OS/arch.
func AssetName(goos, goarch string) string {
	return "llp-" + goos + "-" + goarch
}

// SelfReplace atomically replaces exePath with newBinary using os.Rename,
// which requires both paths on the same filesystem.
func SelfReplace(exePath, newBinary string) error {
	if err := os.Chmod(newBinary, 0o755); err != nil {
		return fmt.Errorf("updater: chmod new binary: %w", err)
	}
	if err := os.Rename(newBinary, exePath); err != nil {
		return fmt.Errorf("updater: replace exe: %w", err)
	}
	return nil
}

// Download fetches url, writes the content to destPath, and returns the
// hex SHA-256 of what was written.
func Download(ctx context.Context, url, destPath string) (string, error) {
	resp, err := get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("updater: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("updater: download returned %d", resp.StatusCode)
	}

	f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return "", fmt.Errorf("updater: create dest file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		return "", fmt.Errorf("updater: write download: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FetchChecksum reads a sha256sum-style file and returns its first digest.
func FetchChecksum(ctx context.Context, url string) (string, error) {
	resp, err := get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("updater: fetch checksum: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("updater: checksum returned %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(io.LimitReader(resp.Body, 4096))
	if sc.Scan() {
		if fields := strings.Fields(sc.Text()); len(fields) > 0 && len(fields[0]) == sha256.Size*2 {
			return strings.ToLower(fields[0]), nil
		}
	}
	return "", fmt.Errorf("updater: malformed checksum file")
}

func get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	return httpClient.Do(req)
}

// isNewer returns true if latest > current (semver comparison).
// A "dev" current version is always considered older.
func isNewer(current, latest string) bool {
	current = strings.TrimPrefix(current, "v")
	latest = strings.TrimPrefix(latest, "v")
	if current == "dev" || current == "" || current == "none" {
		return latest != ""
	}
	return semverLess(current, latest)
}

// semverLess returns true if a < b using major.minor.patch comparison.
// Pre-release and build suffixes are ignored.
func semverLess(a, b string) bool {
	pa := splitSemver(a)
	pb := splitSemver(b)
	for i := 0; i < 3; i++ {
		if pa[i] < pb[i] {
			return true
		}
		if pa[i] > pb[i] {
			return false
		}
	}
	return false
}

func splitSemver(v string) [3]int {
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.SplitN(v, ".", 3)
	var out [3]int
	for i, p := range parts {
		out[i], _ = strconv.Atoi(p)
	}
	return out
}
