package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devscope/devscope/internal/techdetect"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestScanner(t *testing.T, opts ...Option) *Scanner {
	t.Helper()
	return New(techdetect.DefaultTable(), opts...)
}

func TestIsProjectRoot(t *testing.T) {
	dir := t.TempDir()
	s := newTestScanner(t)
	assert.False(t, s.IsProjectRoot(dir))

	writeFile(t, filepath.Join(dir, "go.mod"), "module example\n")
	assert.True(t, s.IsProjectRoot(dir))
}

func TestScanForestStopsAtProjectRoot(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "app-a", "package.json"), `{"name":"app-a"}`)
	// A nested manifest below a discovered root must stay invisible.
	writeFile(t, filepath.Join(base, "app-a", "inner", "go.mod"), "module inner\n")
	writeFile(t, filepath.Join(base, "app-b", "sub", "package.json"), `{"name":"sub"}`)

	s := newTestScanner(t)
	found, err := s.ScanAll(context.Background(), []string{base}, 2)
	require.NoError(t, err)

	paths := make([]string, 0, len(found))
	for _, c := range found {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(base, "app-a"),
		filepath.Join(base, "app-b", "sub"),
	}, paths)
}

func TestScanForestHonorsMaxDepth(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "l1", "l2", "l3", "go.mod"), "module deep\n")

	s := newTestScanner(t)

	found, err := s.ScanAll(context.Background(), []string{base}, 2)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.ScanAll(context.Background(), []string{base}, 3)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "l1", "l2", "l3"), found[0].Path)
}

func TestScanForestSkipsHiddenAndIgnoredDirs(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "node_modules", "pkg", "package.json"), `{}`)
	writeFile(t, filepath.Join(base, ".config", "proj", "go.mod"), "module hidden\n")
	writeFile(t, filepath.Join(base, "real", "go.mod"), "module real\n")

	s := newTestScanner(t)
	found, err := s.ScanAll(context.Background(), []string{base}, 3)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join(base, "real"), found[0].Path)
}

func TestScanForestDeduplicatesSymlinks(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "proj")
	writeFile(t, filepath.Join(target, "package.json"), `{"name":"proj"}`)
	if err := os.Symlink(target, filepath.Join(base, "alias")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s := newTestScanner(t)
	found, err := s.ScanAll(context.Background(), []string{base}, 2)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestScanForestCancelled(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "proj", "go.mod"), "module proj\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(t)
	found, err := s.ScanAll(ctx, []string{base}, 2)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, found)
}

func TestScanProjectNonRoot(t *testing.T) {
	s := newTestScanner(t)
	cand, err := s.ScanProject(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestScanProjectManifestMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{
		"name": "webapp",
		"description": "a web app",
		"dependencies": {"react": "^18.0.0"},
		"devDependencies": {"vite": "^5.0.0"}
	}`)
	writeFile(t, filepath.Join(dir, "src", "main.jsx"), "render()\n")

	s := newTestScanner(t)
	cand, err := s.ScanProject(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, cand)

	assert.Equal(t, "webapp", cand.Name)
	assert.Equal(t, "a web app", cand.Description)
	assert.Contains(t, cand.Technologies, "nodejs")
	assert.Contains(t, cand.Technologies, "react")
	assert.Contains(t, cand.Technologies, "vite")
	assert.Nil(t, cand.Git)
	assert.Equal(t, 2, cand.Stats.FileCount)
}

func TestScanProjectNameFallsBackToDirName(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "my-service")
	writeFile(t, filepath.Join(sub, "go.mod"), "module example.com/my-service\n")

	s := newTestScanner(t)
	cand, err := s.ScanProject(context.Background(), sub)
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "my-service", cand.Name)
}
