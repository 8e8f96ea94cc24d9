// Package main is the CLI entry point for llp.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/orchestrator"
	"github.com/iyulab/llp/internal/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Credentials for remote baseline stores may live in a local .env file.
	_ = godotenv.Load(".env")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "llp",
		Short: "Linux Less-Persistence: defensive audit of common persistence surfaces",
		Long: `llp enumerates cron, systemd units, shell init files, XDG autostart
entries, and running process executables, flags entries that deserve review,
and can save a baseline snapshot or diff the current state against one.
Flags are heuristic; they are not a determination of compromise.`,
		Args:          cobra.NoArgs,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().String("format", "", "output format: text, json, or yaml (default from config, else text)")
	rootCmd.Flags().String("checks", "all", "comma-separated checks to run: all,systemd,cron,shell_init,xdg_autostart,runtime_process")
	rootCmd.Flags().String("baseline-save", "", "save a baseline of current findings to `LOCATION` (path, s3://bucket/key, or pg:name)")
	rootCmd.Flags().String("baseline-compare", "", "compare current findings to the baseline at `LOCATION`")
	rootCmd.Flags().StringP("config", "c", "", "path to config file (defaults built in)")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.AddCommand(newUpdateCmd(version))

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")
	checksStr, _ := cmd.Flags().GetString("checks")
	save, _ := cmd.Flags().GetString("baseline-save")
	compare, _ := cmd.Flags().GetString("baseline-compare")
	verbose, _ := cmd.Flags().GetBool("verbose")

	switch format {
	case "", "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid --format %q (want text, json, or yaml)", format)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	orch := orchestrator.New(cfg, orchestrator.Options{
		Only:            platform.ParseSelection(checksStr),
		Format:          format,
		BaselineSave:    save,
		BaselineCompare: compare,
		Verbose:         verbose,
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})

	return orch.Run(cmd.Context())
}
