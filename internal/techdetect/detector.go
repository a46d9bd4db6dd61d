package techdetect

import (
	"fmt"
	"os"
	"path/filepath"
)

// Detector is one classification rule. Rules are probed in three stages:
// marker file presence, manifest dependency key, file extension. The first
// stage that matches wins for that detector; detectors are independent of
// each other, so a project may match many.
type Detector struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	MarkerFiles  []string `json:"marker_files,omitempty"`
	ManifestKeys []string `json:"manifest_keys,omitempty"`
	Extensions   []string `json:"extensions,omitempty"`
}

// Table is an ordered detector rule set. Order matters: detection results
// and derived language statistics follow table order.
type Table []Detector

// Validate checks slug uniqueness. A duplicate slug is a configuration
// error and must fail loudly instead of silently merging statistics.
func (t Table) Validate() error {
	seen := make(map[string]struct{}, len(t))
	for _, d := range t {
		if d.Slug == "" {
			return fmt.Errorf("technology detector %q has empty slug", d.Name)
		}
		if _, dup := seen[d.Slug]; dup {
			return fmt.Errorf("duplicate technology detector slug %q", d.Slug)
		}
		seen[d.Slug] = struct{}{}
	}
	return nil
}

// BySlug returns the detector for slug. Referencing a slug absent from the
// table indicates an inconsistent configuration.
func (t Table) BySlug(slug string) (Detector, error) {
	for _, d := range t {
		if d.Slug == slug {
			return d, nil
		}
	}
	return Detector{}, fmt.Errorf("unknown technology slug %q", slug)
}

// Detect classifies a project directory. manifestDeps holds the combined
// dependency keys of the project manifest; extensions holds every file
// extension (with leading dot) observed in the project tree.
func (t Table) Detect(dir string, manifestDeps map[string]struct{}, extensions map[string]struct{}) []string {
	var slugs []string
	for _, d := range t {
		if d.matches(dir, manifestDeps, extensions) {
			slugs = append(slugs, d.Slug)
		}
	}
	return slugs
}

func (d Detector) matches(dir string, manifestDeps map[string]struct{}, extensions map[string]struct{}) bool {
	for _, marker := range d.MarkerFiles {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	for _, key := range d.ManifestKeys {
		if _, ok := manifestDeps[key]; ok {
			return true
		}
	}
	for _, ext := range d.Extensions {
		if _, ok := extensions[ext]; ok {
			return true
		}
	}
	return false
}
