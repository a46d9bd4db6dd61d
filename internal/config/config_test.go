package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devscope.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
base_dirs = ["/home/dev/src", "/home/dev/work"]
max_depth = 4
ignore_dirs = ["node_modules", "tmp"]
output_buffer = 500
metrics_listen = "127.0.0.1:9090"

[log]
level = "debug"

[store]
type = "postgres"
host = "db.internal"
database = "devscope"
username = "scout"
password = "s3cret"

[[detectors]]
name = "Zig"
slug = "zig"
marker_files = ["build.zig"]
extensions = [".zig"]

[[projects]]
path = "/home/dev/src/webapp"

[[projects.processes]]
id = "dev"
name = "Dev Server"
commands = ["npm install", "npm run dev"]
url = "http://localhost:3000"

[[projects.processes]]
id = "storybook"
commands = ["npm run storybook"]
workdir = "ui"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/home/dev/src", "/home/dev/work"}, cfg.BaseDirs)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, []string{"node_modules", "tmp"}, cfg.IgnoreDirs)
	assert.Equal(t, 500, cfg.OutputBuffer)
	assert.Equal(t, "127.0.0.1:9090", cfg.MetricsListen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "db.internal", cfg.Store.Host)

	zig, err := cfg.Table.BySlug("zig")
	require.NoError(t, err)
	assert.Equal(t, []string{"build.zig"}, zig.MarkerFiles)

	specs := cfg.SpecsFor("/home/dev/src/webapp")
	require.Len(t, specs, 2)
	assert.Equal(t, "dev", specs[0].ID)
	assert.Equal(t, "Dev Server", specs[0].Name)
	assert.Equal(t, []string{"npm install", "npm run dev"}, specs[0].Commands)
	assert.Equal(t, "http://localhost:3000", specs[0].URL)
	assert.Equal(t, "ui", specs[1].WorkDir)

	assert.Nil(t, cfg.SpecsFor("/unknown"))
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `base_dirs = ["/home/dev/src"]`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, DefaultOutputCap, cfg.OutputBuffer)
	assert.NotEmpty(t, cfg.IgnoreDirs)
	// The sqlite default path lands next to the config file.
	assert.Equal(t, filepath.Join(filepath.Dir(path), "projects.db"), cfg.Store.Path)
	require.NoError(t, cfg.Table.Validate())
}

func TestLoadRejectsDuplicateDetectorSlug(t *testing.T) {
	path := writeConfig(t, `
[[detectors]]
name = "Go Again"
slug = "go"
marker_files = ["go.work"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid detector table")
}

func TestLoadRejectsProcessWithoutID(t *testing.T) {
	path := writeConfig(t, `
[[projects]]
path = "/home/dev/src/webapp"

[[projects.processes]]
commands = ["npm run dev"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestLoadRejectsProcessWithoutCommands(t *testing.T) {
	path := writeConfig(t, `
[[projects]]
path = "/home/dev/src/webapp"

[[projects.processes]]
id = "dev"
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commands are required")
}

func TestLoadRejectsProjectWithoutPath(t *testing.T) {
	path := writeConfig(t, `
[[projects]]

[[projects.processes]]
id = "dev"
commands = ["make run"]
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}
