package scanner

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gitOrSkip(t *testing.T, dir string, args ...string) {
	t.Helper()
	full := append([]string{"-C", dir,
		"-c", "user.name=tester",
		"-c", "user.email=tester@example.com",
	}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	if err != nil {
		t.Skipf("git unavailable or failed (%v): %s", err, out)
	}
}

func TestGitInfoAbsentForNonRepo(t *testing.T) {
	s := newTestScanner(t)
	assert.Nil(t, s.gitInfo(context.Background(), t.TempDir()))
}

func TestGitInfoCleanRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	gitOrSkip(t, dir, "init", "-b", "main")
	gitOrSkip(t, dir, "add", ".")
	gitOrSkip(t, dir, "commit", "-m", "initial commit")

	s := newTestScanner(t)
	info := s.gitInfo(context.Background(), dir)
	require.NotNil(t, info)
	assert.Equal(t, "main", info.Branch)
	assert.Equal(t, "clean", info.Status)
	assert.False(t, info.HasUncommittedChanges)
	assert.Equal(t, "initial commit", info.LastCommitMessage)
	require.NotNil(t, info.LastCommitDate)
	assert.Empty(t, info.RemoteURL)
}

func TestGitInfoDirtyRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main\n")
	gitOrSkip(t, dir, "init", "-b", "main")
	gitOrSkip(t, dir, "add", ".")
	gitOrSkip(t, dir, "commit", "-m", "initial commit")
	writeFile(t, filepath.Join(dir, "extra.go"), "package main\n")

	s := newTestScanner(t)
	info := s.gitInfo(context.Background(), dir)
	require.NotNil(t, info)
	assert.Equal(t, "dirty", info.Status)
	assert.True(t, info.HasUncommittedChanges)
}
