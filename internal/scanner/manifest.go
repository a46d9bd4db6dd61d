package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// manifestInfo is what a project manifest contributes to a Candidate:
// display metadata and the combined dependency key set used for
// technology detection.
type manifestInfo struct {
	Name        string
	Description string
	Deps        map[string]struct{}
}

type packageJSON struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// readManifest parses package.json when present. Parse failures yield an
// empty manifestInfo; the directory name serves as a fallback elsewhere.
func readManifest(dir string) manifestInfo {
	b, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return manifestInfo{}
	}
	var pkg packageJSON
	if err := json.Unmarshal(b, &pkg); err != nil {
		return manifestInfo{}
	}
	deps := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies)+len(pkg.PeerDependencies))
	for k := range pkg.Dependencies {
		deps[k] = struct{}{}
	}
	for k := range pkg.DevDependencies {
		deps[k] = struct{}{}
	}
	for k := range pkg.PeerDependencies {
		deps[k] = struct{}{}
	}
	return manifestInfo{Name: pkg.Name, Description: pkg.Description, Deps: deps}
}
