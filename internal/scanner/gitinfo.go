package scanner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/devscope/devscope/internal/project"
)

// gitInfo collects version control metadata by shelling out to git. Every
// field is best effort: a missing tool, an unborn branch, or any other git
// failure leaves the field empty rather than failing the scan. Returns nil
// when dir has no .git entry at all.
func (s *Scanner) gitInfo(ctx context.Context, dir string) *project.GitInfo {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil
	}
	info := &project.GitInfo{}

	if out, err := runGit(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		info.Branch = out
	}
	if out, err := runGit(ctx, dir, "status", "--porcelain"); err == nil {
		if out == "" {
			info.Status = "clean"
		} else {
			info.Status = "dirty"
			info.HasUncommittedChanges = true
		}
	}
	if out, err := runGit(ctx, dir, "config", "--get", "remote.origin.url"); err == nil {
		info.RemoteURL = out
	}
	if out, err := runGit(ctx, dir, "log", "-1", "--format=%cI%n%s"); err == nil {
		date, msg, _ := strings.Cut(out, "\n")
		if ts, perr := time.Parse(time.RFC3339, date); perr == nil {
			info.LastCommitDate = &ts
		}
		info.LastCommitMessage = strings.TrimSpace(msg)
	}
	return info
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	full := append([]string{"-C", dir}, args...)
	// #nosec G204 -- fixed binary, arguments are not user input
	out, err := exec.CommandContext(ctx, "git", full...).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
