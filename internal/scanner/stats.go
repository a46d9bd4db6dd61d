package scanner

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/devscope/devscope/internal/project"
)

// sniffLen bounds how much of a file is inspected to decide text vs binary.
const sniffLen = 8192

// scanStatistics performs the single recursive statistics walk for one
// project. It returns the aggregate stats plus the set of observed file
// extensions, which feeds technology detection.
func (s *Scanner) scanStatistics(root string) (project.Stats, map[string]struct{}, error) {
	stats := project.Stats{LanguageStats: make(map[string]project.LanguageStat)}
	extFiles := make(map[string]int)
	extLines := make(map[string]int)
	extensions := make(map[string]struct{})

	matcher := loadGitignore(root)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission or transient I/O problems skip the entry only.
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = name
		}

		if d.IsDir() {
			if s.ignoreDirs[name] {
				return fs.SkipDir
			}
			// Directory patterns like "generated/" only match the slashed
			// form of the path.
			if matcher != nil && (matcher.MatchesPath(rel) || matcher.MatchesPath(rel+"/")) {
				return fs.SkipDir
			}
			stats.DirCount++
			return nil
		}
		if s.ignoreFiles[name] {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		stats.FileCount++
		stats.SizeBytes += info.Size()
		if info.ModTime().After(stats.LastModified) {
			stats.LastModified = info.ModTime()
		}
		ext := filepath.Ext(name)
		if ext != "" {
			extensions[ext] = struct{}{}
			extFiles[ext]++
			if lines, ok := countTextLines(path); ok {
				extLines[ext] += lines
				stats.LinesOfCode += lines
			}
		}
		return nil
	})
	if err != nil {
		return stats, extensions, err
	}

	// Attribute per-extension tallies to technology slugs by summing over
	// each detector's extension list, in table order.
	for _, det := range s.table {
		files, lines := 0, 0
		for _, ext := range det.Extensions {
			files += extFiles[ext]
			lines += extLines[ext]
		}
		if files == 0 {
			continue
		}
		pct := 0.0
		if stats.FileCount > 0 {
			pct = math.Round(float64(files)/float64(stats.FileCount)*1000) / 10
		}
		stats.LanguageStats[det.Slug] = project.LanguageStat{
			FileCount:   files,
			Percentage:  pct,
			LinesOfCode: lines,
		}
	}
	return stats, extensions, nil
}

// loadGitignore compiles the root .gitignore, if any. Patterns are only
// honored from the project root; nested gitignore files are not merged.
func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return matcher
}

// countTextLines counts newlines in a file, reporting ok=false for files
// that look binary (NUL byte within the sniff window).
func countTextLines(path string) (int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return 0, false
	}
	head = head[:n]
	if bytes.IndexByte(head, 0) >= 0 {
		return 0, false
	}

	lines := bytes.Count(head, []byte{'\n'})
	var last byte
	if len(head) > 0 {
		last = head[len(head)-1]
	}
	r := bufio.NewReader(f)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err != nil {
			break
		}
	}
	if last != 0 && last != '\n' {
		// Count a trailing unterminated line.
		lines++
	}
	return lines, true
}
