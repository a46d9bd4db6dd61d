package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devscope/devscope/internal/project"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.EnsureSchema(context.Background()))
	return db
}

func sampleCandidate(path string) project.Candidate {
	commit := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return project.Candidate{
		Path:         path,
		Name:         "webapp",
		Description:  "a web app",
		Technologies: []string{"nodejs", "react"},
		Stats: project.Stats{
			FileCount:   12,
			DirCount:    3,
			SizeBytes:   4096,
			LinesOfCode: 420,
			LanguageStats: map[string]project.LanguageStat{
				"javascript": {FileCount: 10, Percentage: 83.3, LinesOfCode: 420},
			},
		},
		Git: &project.GitInfo{
			Branch:                "main",
			Status:                "clean",
			HasUncommittedChanges: false,
			LastCommitDate:        &commit,
			LastCommitMessage:     "initial commit",
			RemoteURL:             "git@example.com:acme/webapp.git",
		},
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("  ")
	require.Error(t, err)
}

func TestSaveAndGetByPath(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cand := sampleCandidate("/home/dev/webapp")
	saved, err := db.Save(ctx, cand)
	require.NoError(t, err)
	assert.Positive(t, saved.ID)
	assert.Equal(t, cand.Path, saved.Path)
	assert.Equal(t, cand.Name, saved.Name)
	assert.Equal(t, cand.Technologies, saved.Technologies)
	assert.Equal(t, cand.Stats.LinesOfCode, saved.Stats.LinesOfCode)
	require.NotNil(t, saved.Git)
	assert.Equal(t, "main", saved.Git.Branch)
	require.NotNil(t, saved.Git.LastCommitDate)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := db.GetByPath(ctx, cand.Path)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

// Re-saving the same path updates in place and keeps the row identity.
func TestSaveUpsertsByPath(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.Save(ctx, sampleCandidate("/home/dev/webapp"))
	require.NoError(t, err)

	updated := sampleCandidate("/home/dev/webapp")
	updated.Name = "webapp-renamed"
	updated.Technologies = []string{"nodejs", "react", "vite"}
	second, err := db.Save(ctx, updated)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "webapp-renamed", second.Name)
	assert.Len(t, second.Technologies, 3)

	other, err := db.Save(ctx, sampleCandidate("/home/dev/other"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestSaveWithoutGit(t *testing.T) {
	db := openTestDB(t)

	cand := sampleCandidate("/home/dev/plain")
	cand.Git = nil
	saved, err := db.Save(context.Background(), cand)
	require.NoError(t, err)
	assert.Nil(t, saved.Git)
}

func TestGetByPathMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetByPath(context.Background(), "/nope")
	require.Error(t, err)
}
