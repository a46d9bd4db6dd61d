package store

import (
	"context"

	"github.com/devscope/devscope/internal/project"
)

// Config selects and configures a project store backend.
type Config struct {
	Type string `toml:"type" mapstructure:"type"` // "sqlite" or "postgres"

	// SQLite
	Path string `toml:"path,omitempty" mapstructure:"path"`

	// PostgreSQL
	Host     string `toml:"host,omitempty" mapstructure:"host"`
	Port     int    `toml:"port,omitempty" mapstructure:"port"`
	Database string `toml:"database,omitempty" mapstructure:"database"`
	Username string `toml:"username,omitempty" mapstructure:"username"`
	Password string `toml:"password,omitempty" mapstructure:"password"`
	SSLMode  string `toml:"ssl_mode,omitempty" mapstructure:"ssl_mode"`
}

// ProjectStore is the persistence collaborator the scan engine hands each
// discovery to. Save upserts by path and returns the persisted record; the
// engine keeps no reference to it afterward. Running-process state is
// never persisted.
type ProjectStore interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, c project.Candidate) (project.Saved, error)
	GetByPath(ctx context.Context, path string) (project.Saved, error)
	Close() error
}
