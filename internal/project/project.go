package project

import "time"

// Candidate is one discovered project before it has been persisted.
// It is produced by the scanner, handed to the project store once, and
// not retained by the engine afterward.
type Candidate struct {
	Path         string   `json:"path"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies"`
	Stats        Stats    `json:"stats"`
	Git          *GitInfo `json:"git,omitempty"`
}

// Stats holds the size/line/file statistics gathered in a single walk of
// the project tree.
type Stats struct {
	FileCount     int                     `json:"file_count"`
	DirCount      int                     `json:"dir_count"`
	SizeBytes     int64                   `json:"size_bytes"`
	LastModified  time.Time               `json:"last_modified"`
	LinesOfCode   int                     `json:"lines_of_code"`
	LanguageStats map[string]LanguageStat `json:"language_stats,omitempty"`
}

// LanguageStat aggregates the files attributed to one technology slug.
// Percentage is relative to the total file count, rounded to one decimal.
type LanguageStat struct {
	FileCount   int     `json:"file_count"`
	Percentage  float64 `json:"percentage"`
	LinesOfCode int     `json:"lines_of_code"`
}

// GitInfo is best-effort version control metadata. Any field may be empty
// when the underlying git invocation failed.
type GitInfo struct {
	Branch                string     `json:"branch,omitempty"`
	Status                string     `json:"status,omitempty"`
	HasUncommittedChanges bool       `json:"has_uncommitted_changes"`
	LastCommitDate        *time.Time `json:"last_commit_date,omitempty"`
	LastCommitMessage     string     `json:"last_commit_message,omitempty"`
	RemoteURL             string     `json:"remote_url,omitempty"`
}

// Saved is the persisted form of a Candidate as returned by the store.
type Saved struct {
	ID        int64     `json:"id"`
	Candidate
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
