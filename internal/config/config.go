// Package config handles loading and validating the llp TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	Checks    map[string]bool `toml:"checks"`
	Paths     PathsConfig     `toml:"paths"`
	Output    OutputConfig    `toml:"output"`
	Baseline  BaselineConfig  `toml:"baseline"`
	Cron      CronConfig      `toml:"cron"`
	Systemd   SystemdConfig   `toml:"systemd"`
	ShellInit ShellInitConfig `toml:"shell_init"`
	XDG       XDGConfig       `toml:"xdg_autostart"`
	Runtime   RuntimeConfig   `toml:"runtime_process"`
	Sigma     SigmaConfig     `toml:"sigma"`
}

// PathsConfig holds locations shared by several checks.
type PathsConfig struct {
	Home string `toml:"home"` // empty = current user's home; used for shell init and XDG autostart
}

// OutputConfig configures rendering of findings.
type OutputConfig struct {
	Format string `toml:"format"` // text | json | yaml
}

// BaselineConfig configures baseline snapshots and remote stores.
type BaselineConfig struct {
	// Version is the label written into saved baselines.
	Version  string         `toml:"version"`
	S3       S3Config       `toml:"s3"`
	Postgres PostgresConfig `toml:"postgres"`
}

// S3Config locates an S3-compatible object store for s3:// baseline locations.
type S3Config struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Region    string `toml:"region"`
}

// PostgresConfig locates the database for pg: baseline locations.
type PostgresConfig struct {
	URL string `toml:"url"`
}

// CronConfig lists cron locations and the risky path hints matched in cron content.
type CronConfig struct {
	SystemLocations []string `toml:"system_locations"`
	UserSpoolDirs   []string `toml:"user_spool_dirs"`
	// AlwaysReport lists artifacts reported at info severity even without flags.
	AlwaysReport []string `toml:"always_report"`
	PathHints    []string `toml:"path_hints"`
}

// SystemdConfig tunes the systemd unit check.
type SystemdConfig struct {
	Timeout       int      `toml:"timeout"` // seconds for list/show; is-enabled uses half
	PathHints     []string `toml:"path_hints"`
	LocalUnitDirs []string `toml:"local_unit_dirs"`
	UserUnitDir   string   `toml:"user_unit_dir"`
}

// ShellInitConfig lists shell startup files relative to the home directory.
type ShellInitConfig struct {
	Files []string `toml:"files"`
	Hints []string `toml:"hints"`
}

// XDGConfig lists XDG autostart directories.
type XDGConfig struct {
	Dirs  []string `toml:"dirs"`
	Hints []string `toml:"hints"`
}

// RuntimeConfig configures the running-process check.
type RuntimeConfig struct {
	ProcRoot   string   `toml:"proc_root"`
	RiskyPaths []string `toml:"risky_paths"`
}

// SigmaConfig configures deterministic rule matching over findings.
type SigmaConfig struct {
	Enabled  bool   `toml:"enabled"`
	RulesDir string `toml:"rules_dir"` // optional extra rules on disk
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	riskyPaths := []string{"/tmp/", "/dev/shm/", "/var/tmp/", "/run/user/", "/.cache/", "/.local/share/"}
	return &Config{
		Checks: make(map[string]bool),
		Output: OutputConfig{Format: "text"},
		Baseline: BaselineConfig{
			Version: "0.1.0",
		},
		Cron: CronConfig{
			SystemLocations: []string{
				"/etc/crontab",
				"/etc/cron.d",
				"/etc/cron.daily",
				"/etc/cron.hourly",
				"/etc/cron.weekly",
				"/etc/cron.monthly",
			},
			UserSpoolDirs: []string{
				"/var/spool/cron/crontabs", // Debian/Ubuntu/Kali
				"/var/spool/cron",          // RHEL/CentOS/Fedora
			},
			AlwaysReport: []string{"/etc/crontab"},
			PathHints:    append([]string(nil), riskyPaths...),
		},
		Systemd: SystemdConfig{
			Timeout:       10,
			PathHints:     append([]string(nil), riskyPaths...),
			LocalUnitDirs: []string{"/etc/systemd/system/", "/run/systemd/system/"},
			UserUnitDir:   "/.config/systemd/user/",
		},
		ShellInit: ShellInitConfig{
			Files: []string{".bashrc", ".bash_profile", ".profile", ".zshrc", ".zprofile"},
			Hints: []string{"/tmp/", "/dev/shm/", "curl ", "wget ", "nc ", "bash -c", "python -c", "base64"},
		},
		XDG: XDGConfig{
			Dirs:  []string{"~/.config/autostart", "/etc/xdg/autostart"},
			Hints: []string{"/tmp/", "/dev/shm/", "/var/tmp/", "curl ", "wget ", "bash -c", "sh -c", "python -c", "base64"},
		},
		Runtime: RuntimeConfig{
			ProcRoot:   "/proc",
			RiskyPaths: []string{"/tmp/", "/dev/shm/", "/run/user/", "/var/tmp/"},
		},
		Sigma: SigmaConfig{Enabled: true},
	}
}

// Load reads a config.toml file over the defaults and returns a validated Config.
// An empty path returns the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	// Environment variable overrides for credentials
	if v := os.Getenv("LLP_S3_ACCESS_KEY"); v != "" {
		cfg.Baseline.S3.AccessKey = v
	}
	if v := os.Getenv("LLP_S3_SECRET_KEY"); v != "" {
		cfg.Baseline.S3.SecretKey = v
	}
	if v := os.Getenv("LLP_DATABASE_URL"); v != "" {
		cfg.Baseline.Postgres.URL = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	switch c.Output.Format {
	case "text", "json", "yaml":
		// valid
	case "":
		c.Output.Format = "text"
	default:
		return fmt.Errorf("unsupported output.format: %q", c.Output.Format)
	}

	if c.Systemd.Timeout <= 0 {
		return fmt.Errorf("systemd.timeout must be positive, got %d", c.Systemd.Timeout)
	}

	if c.Baseline.Version == "" {
		c.Baseline.Version = "0.1.0"
	}

	if c.Runtime.ProcRoot == "" {
		c.Runtime.ProcRoot = "/proc"
	}

	if c.Checks == nil {
		c.Checks = make(map[string]bool)
	}

	return nil
}

// ExpandHome replaces a leading "~/" (or a bare "~") with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// HomeDir returns the configured home override or the current user's home.
func (c *Config) HomeDir() string {
	if c.Paths.Home != "" {
		return c.Paths.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
