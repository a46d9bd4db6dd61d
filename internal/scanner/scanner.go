package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/devscope/devscope/internal/project"
	"github.com/devscope/devscope/internal/techdetect"
)

// rootMarkers qualifies a directory as a project root when at least one is
// directly present: a manifest, a lockfile, or version control metadata.
var rootMarkers = []string{
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"requirements.txt",
	"setup.py",
	"Pipfile",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"Gemfile",
	"composer.json",
	"mix.exs",
	"Package.swift",
	"CMakeLists.txt",
	"yarn.lock",
	"pnpm-lock.yaml",
	"package-lock.json",
	".git",
}

// DefaultIgnoreDirs are never counted and never descended into, gitignore
// or not: version control metadata, dependency caches, build output.
func DefaultIgnoreDirs() []string {
	return []string{
		".git", ".hg", ".svn",
		"node_modules", "vendor", "venv", ".venv", "__pycache__",
		".pytest_cache", ".mypy_cache", ".tox",
		"dist", "build", "out", "target", ".next", ".nuxt", ".output",
		".gradle", ".idea", ".vscode", "DerivedData", "Pods",
		".terraform", ".cache", "coverage",
	}
}

// Scanner classifies single directories and walks directory forests.
// The zero value is not usable; construct with New.
type Scanner struct {
	table       techdetect.Table
	ignoreDirs  map[string]bool
	ignoreFiles map[string]bool
	log         *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithIgnoreDirs replaces the static ignore-directory list.
func WithIgnoreDirs(dirs []string) Option {
	return func(s *Scanner) {
		s.ignoreDirs = toSet(dirs)
	}
}

// WithIgnoreFiles sets file names excluded from statistics.
func WithIgnoreFiles(files []string) Option {
	return func(s *Scanner) {
		s.ignoreFiles = toSet(files)
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

func New(table techdetect.Table, opts ...Option) *Scanner {
	s := &Scanner{
		table:       table,
		ignoreDirs:  toSet(DefaultIgnoreDirs()),
		ignoreFiles: map[string]bool{".DS_Store": true},
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// IsProjectRoot reports whether dir directly contains a recognized marker.
func (s *Scanner) IsProjectRoot(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// ScanProject builds a Candidate for dir, or returns (nil, nil) when dir is
// not a project root. Statistics, git metadata, and manifest metadata are
// independent and run concurrently.
func (s *Scanner) ScanProject(ctx context.Context, dir string) (*project.Candidate, error) {
	if !s.IsProjectRoot(dir) {
		return nil, nil
	}

	var (
		stats    project.Stats
		exts     map[string]struct{}
		git      *project.GitInfo
		manifest manifestInfo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, exts, err = s.scanStatistics(dir)
		return err
	})
	g.Go(func() error {
		git = s.gitInfo(gctx, dir)
		return nil
	})
	g.Go(func() error {
		manifest = readManifest(dir)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	name := manifest.Name
	if name == "" {
		name = filepath.Base(dir)
	}
	cand := &project.Candidate{
		Path:         dir,
		Name:         name,
		Description:  manifest.Description,
		Technologies: s.table.Detect(dir, manifest.Deps, exts),
		Stats:        stats,
		Git:          git,
	}
	return cand, nil
}

// ScanForest walks every base path depth-first up to maxDepth, invoking fn
// for each discovered project. Once a directory qualifies as a project
// root its subtree is never explored, so vendored or embedded projects are
// not double counted. Visited absolute paths are deduplicated to survive
// symlink cycles. fn returning an error aborts the walk.
func (s *Scanner) ScanForest(ctx context.Context, basePaths []string, maxDepth int, fn func(*project.Candidate) error) error {
	type item struct {
		dir   string
		depth int
	}
	visited := make(map[string]struct{})

	for _, base := range basePaths {
		stack := []item{{dir: base, depth: 0}}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			abs, err := canonicalPath(it.dir)
			if err != nil {
				s.log.Debug("skipping unreadable directory", "dir", it.dir, "error", err)
				continue
			}
			if _, seen := visited[abs]; seen {
				continue
			}
			visited[abs] = struct{}{}

			if s.IsProjectRoot(it.dir) {
				cand, err := s.ScanProject(ctx, it.dir)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					s.log.Warn("project scan failed", "dir", it.dir, "error", err)
					continue
				}
				if cand != nil {
					if err := fn(cand); err != nil {
						return err
					}
				}
				continue
			}
			if it.depth >= maxDepth {
				continue
			}
			entries, err := os.ReadDir(it.dir)
			if err != nil {
				s.log.Debug("skipping unreadable directory", "dir", it.dir, "error", err)
				continue
			}
			// Reverse push keeps lexical visit order on the LIFO stack.
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				if !e.IsDir() {
					continue
				}
				name := e.Name()
				if strings.HasPrefix(name, ".") || s.ignoreDirs[name] {
					continue
				}
				stack = append(stack, item{dir: filepath.Join(it.dir, name), depth: it.depth + 1})
			}
		}
	}
	return nil
}

// ScanAll is ScanForest collecting results into a slice.
func (s *Scanner) ScanAll(ctx context.Context, basePaths []string, maxDepth int) ([]*project.Candidate, error) {
	var found []*project.Candidate
	err := s.ScanForest(ctx, basePaths, maxDepth, func(c *project.Candidate) error {
		found = append(found, c)
		return nil
	})
	return found, err
}

// canonicalPath resolves symlinks so that a link pointing back into an
// ancestor is seen as the same directory.
func canonicalPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
