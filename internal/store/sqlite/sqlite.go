package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devscope/devscope/internal/project"
)

// DB implements store.ProjectStore for SQLite (modernc.org/sqlite driver,
// CGO-free). Path is a filesystem path; use ":memory:" for in-memory.
type DB struct {
	db *sql.DB
}

// New opens a SQLite database at path.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT,
			technologies TEXT NOT NULL,
			stats TEXT NOT NULL,
			git TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
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
	techs, stats, git, err := encodeColumns(c)
	if err != nil {
		return project.Saved{}, err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects(path, name, description, technologies, stats, git, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name=excluded.name,
			description=excluded.description,
			technologies=excluded.technologies,
			stats=excluded.stats,
			git=excluded.git,
			updated_at=excluded.updated_at;`,
		c.Path, c.Name, c.Description, techs, stats, git, now, now)
	if err != nil {
		return project.Saved{}, err
	}
	return s.GetByPath(ctx, c.Path)
}

func (s *DB) GetByPath(ctx context.Context, path string) (project.Saved, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, name, description, technologies, stats, git, created_at, updated_at
		FROM projects WHERE path=?;`, path)
	return scanSaved(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSaved(row rowScanner) (project.Saved, error) {
	var (
		rec         project.Saved
		description sql.NullString
		techs       string
		stats       string
		git         sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Path, &rec.Name, &description, &techs, &stats, &git, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return project.Saved{}, err
	}
	rec.Description = description.String
	if err := json.Unmarshal([]byte(techs), &rec.Technologies); err != nil {
		return project.Saved{}, err
	}
	if err := json.Unmarshal([]byte(stats), &rec.Stats); err != nil {
		return project.Saved{}, err
	}
	if git.Valid && git.String != "" {
		rec.Git = &project.GitInfo{}
		if err := json.Unmarshal([]byte(git.String), rec.Git); err != nil {
			return project.Saved{}, err
		}
	}
	return rec, nil
}

func encodeColumns(c project.Candidate) (techs, stats string, git any, err error) {
	tb, err := json.Marshal(c.Technologies)
	if err != nil {
		return "", "", nil, err
	}
	sb, err := json.Marshal(c.Stats)
	if err != nil {
		return "", "", nil, err
	}
	if c.Git != nil {
		gb, err := json.Marshal(c.Git)
		if err != nil {
			return "", "", nil, err
		}
		git = string(gb)
	}
	return string(tb), string(sb), git, nil
}
