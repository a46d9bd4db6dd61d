package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devscope/devscope/internal/project"
)

// DB implements store.ProjectStore for PostgreSQL via the pgx stdlib
// driver. DSN is a standard postgres:// connection string.
type DB struct {
	db *sql.DB
}

// New opens a PostgreSQL connection pool for dsn.
func New(dsn string) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty postgres dsn")
	}
	d, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects(
			id BIGSERIAL PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			technologies JSONB NOT NULL,
			stats JSONB NOT NULL,
			git JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_projects_name ON projects(name);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Save(ctx context.Context, c project.Candidate) (project.Saved, error) {
	techs, err := json.Marshal(c.Technologies)
	if err != nil {
		return project.Saved{}, err
	}
	stats, err := json.Marshal(c.Stats)
	if err != nil {
		return project.Saved{}, err
	}
	var git any
	if c.Git != nil {
		gb, err := json.Marshal(c.Git)
		if err != nil {
			return project.Saved{}, err
		}
		git = string(gb)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects(path, name, description, technologies, stats, git, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT(path) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			technologies=excluded.technologies,
			stats=excluded.stats,
			git=excluded.git,
			updated_at=excluded.updated_at;`,
		c.Path, c.Name, c.Description, string(techs), string(stats), git, now)
	if err != nil {
		return project.Saved{}, err
	}
	return s.GetByPath(ctx, c.Path)
}

func (s *DB) GetByPath(ctx context.Context, path string) (project.Saved, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, name, description, technologies, stats, git, created_at, updated_at
		FROM projects WHERE path=$1;`, path)
	var (
		rec         project.Saved
		description sql.NullString
		techs       []byte
		stats       []byte
		git         []byte
	)
	err := row.Scan(&rec.ID, &rec.Path, &rec.Name, &description, &techs, &stats, &git, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return project.Saved{}, err
	}
	rec.Description = description.String
	if err := json.Unmarshal(techs, &rec.Technologies); err != nil {
		return project.Saved{}, err
	}
	if err := json.Unmarshal(stats, &rec.Stats); err != nil {
		return project.Saved{}, err
	}
	if len(git) > 0 {
		rec.Git = &project.GitInfo{}
		if err := json.Unmarshal(git, rec.Git); err != nil {
			return project.Saved{}, err
		}
	}
	return rec, nil
}
