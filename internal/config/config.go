package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/devscope/devscope/internal/logger"
	"github.com/devscope/devscope/internal/scanner"
	"github.com/devscope/devscope/internal/store"
	"github.com/devscope/devscope/internal/supervisor"
	"github.com/devscope/devscope/internal/techdetect"
)

// Defaults applied when the corresponding key is absent.
const (
	DefaultMaxDepth  = 3
	DefaultOutputCap = 1000
)

// FileConfig mirrors the top-level TOML structure.
type FileConfig struct {
	BaseDirs      []string             `toml:"base_dirs" mapstructure:"base_dirs"`
	MaxDepth      int                  `toml:"max_depth" mapstructure:"max_depth"`
	IgnoreDirs    []string             `toml:"ignore_dirs" mapstructure:"ignore_dirs"`
	IgnoreFiles   []string             `toml:"ignore_files" mapstructure:"ignore_files"`
	OutputBuffer  int                  `toml:"output_buffer" mapstructure:"output_buffer"`
	MetricsListen string               `toml:"metrics_listen" mapstructure:"metrics_listen"`
	Log           *logger.Config       `toml:"log" mapstructure:"log"`
	Store         *store.Config        `toml:"store" mapstructure:"store"`
	Detectors     []DetectorConfig     `toml:"detectors" mapstructure:"detectors"`
	Projects      []ProjectConfig      `toml:"projects" mapstructure:"projects"`
}

// DetectorConfig is a custom technology detector appended after the
// built-in table.
type DetectorConfig struct {
	Name         string   `toml:"name" mapstructure:"name"`
	Slug         string   `toml:"slug" mapstructure:"slug"`
	MarkerFiles  []string `toml:"marker_files" mapstructure:"marker_files"`
	ManifestKeys []string `toml:"manifest_keys" mapstructure:"manifest_keys"`
	Extensions   []string `toml:"extensions" mapstructure:"extensions"`
}

// ProjectConfig binds configured start processes to a project path.
type ProjectConfig struct {
	Path      string            `toml:"path" mapstructure:"path"`
	Processes []supervisor.Spec `toml:"processes" mapstructure:"processes"`
}

// Config is the resolved runtime configuration.
type Config struct {
	BaseDirs      []string
	MaxDepth      int
	IgnoreDirs    []string
	IgnoreFiles   []string
	OutputBuffer  int
	MetricsListen string
	Log           logger.Config
	Store         store.Config
	Table         techdetect.Table
	Projects      []ProjectConfig
}

// Load parses a TOML config file and resolves defaults. An inconsistent
// detector table (duplicate or empty slug) is a hard error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}
	return resolve(fc, filepath.Dir(path))
}

// Default returns the configuration used when no config file exists:
// scan the user's home directory with the built-in table, persist to a
// sqlite file under the user config dir.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dataDir := filepath.Join(home, ".devscope")
	return resolve(FileConfig{
		BaseDirs: []string{home},
		Store:    &store.Config{Type: "sqlite", Path: filepath.Join(dataDir, "projects.db")},
	}, dataDir)
}

func resolve(fc FileConfig, baseDir string) (*Config, error) {
	cfg := &Config{
		BaseDirs:      fc.BaseDirs,
		MaxDepth:      fc.MaxDepth,
		IgnoreDirs:    fc.IgnoreDirs,
		IgnoreFiles:   fc.IgnoreFiles,
		OutputBuffer:  fc.OutputBuffer,
		MetricsListen: fc.MetricsListen,
		Projects:      fc.Projects,
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = DefaultOutputCap
	}
	if len(cfg.IgnoreDirs) == 0 {
		cfg.IgnoreDirs = scanner.DefaultIgnoreDirs()
	}
	if fc.Log != nil {
		cfg.Log = *fc.Log
	}
	if fc.Store != nil {
		cfg.Store = *fc.Store
	}
	if cfg.Store.Type == "" || cfg.Store.Type == "sqlite" {
		if cfg.Store.Path == "" {
			cfg.Store.Path = filepath.Join(baseDir, "projects.db")
		}
	}

	table := techdetect.DefaultTable()
	for _, d := range fc.Detectors {
		table = append(table, techdetect.Detector{
			Name:         d.Name,
			Slug:         d.Slug,
			MarkerFiles:  d.MarkerFiles,
			ManifestKeys: d.ManifestKeys,
			Extensions:   d.Extensions,
		})
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector table: %w", err)
	}
	cfg.Table = table

	for i, p := range cfg.Projects {
		if p.Path == "" {
			return nil, fmt.Errorf("projects[%d]: path is required", i)
		}
		for j, spec := range p.Processes {
			if spec.ID == "" {
				return nil, fmt.Errorf("projects[%d].processes[%d]: id is required", i, j)
			}
			if len(spec.Commands) == 0 {
				return nil, fmt.Errorf("process %q: commands are required", spec.ID)
			}
		}
	}
	return cfg, nil
}

// SpecsFor returns the configured start processes for a project path.
func (c *Config) SpecsFor(path string) []supervisor.Spec {
	for _, p := range c.Projects {
		if p.Path == path {
			return p.Processes
		}
	}
	return nil
}
