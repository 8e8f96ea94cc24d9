package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/iyulab/llp/internal/updater"
)

func newUpdateCmd(currentVersion string) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update llp to the latest release",
		Long:  "Checks GitHub Releases for a newer llp and replaces the running binary.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, currentVersion, checkOnly)
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only report the latest version, do not download")
	return cmd
}

func runUpdate(cmd *cobra.Command, currentVersion string, checkOnly bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Checking for updates...")

	info, err := updater.CheckLatest(ctx, currentVersion, "")
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}

	if !info.HasUpdate {
		fmt.Fprintf(out, "Already up to date (%s)\n", info.CurrentVersion)
		return nil
	}

	fmt.Fprintf(out, "New version available: %s -> %s\n", info.CurrentVersion, info.LatestVersion)

	if checkOnly {
		fmt.Fprintln(out, "To update, run: llp update")
		return nil
	}

	if info.DownloadURL == "" {
		return fmt.Errorf("update: no release binary for this platform")
	}

	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("update: locate executable: %w", err)
	}

	tmpPath := exePath + ".new"
	fmt.Fprintf(out, "Downloading: %s\n", info.DownloadURL)

	digest, err := updater.Download(ctx, info.DownloadURL, tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("update: download failed: %w", err)
	}

	if info.ChecksumURL != "" {
		want, err := updater.FetchChecksum(ctx, info.ChecksumURL)
		if err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("update: %w", err)
		}
		if want != digest {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("update: checksum mismatch (got %s, want %s)", digest, want)
		}
	}

	fmt.Fprintf(out, "Replacing: %s\n", filepath.Base(exePath))
	if err := updater.SelfReplace(exePath, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("update: replace failed (check permissions): %w", err)
	}

	fmt.Fprintf(out, "Updated %s -> %s\n", info.CurrentVersion, info.LatestVersion)
	return nil
}
