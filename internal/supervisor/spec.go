package supervisor

import (
	"os/exec"
	"strings"
)

// Spec describes one configured start process for a project.
type Spec struct {
	ID       string   `json:"id" toml:"id" mapstructure:"id"`
	Name     string   `json:"name" toml:"name" mapstructure:"name"`
	Commands []string `json:"commands" toml:"commands" mapstructure:"commands"`
	// WorkDir is relative to the project base path.
	WorkDir string `json:"workdir,omitempty" toml:"workdir" mapstructure:"workdir"`
	Color   string `json:"color,omitempty" toml:"color" mapstructure:"color"`
	URL     string `json:"url,omitempty" toml:"url" mapstructure:"url"`
}

// JoinCommands sequences multi-step commands fail-fast: the chain stops at
// the first non-zero step.
func (s Spec) JoinCommands() string {
	steps := make([]string, 0, len(s.Commands))
	for _, c := range s.Commands {
		if t := strings.TrimSpace(c); t != "" {
			steps = append(steps, t)
		}
	}
	return strings.Join(steps, " && ")
}

// buildCommand wraps a command line in a shell. Dev-server commands are
// user-authored shell fragments (pipes, env prefixes, && chains), so a
// shell is always interposed.
func buildCommand(cmdStr string) *exec.Cmd {
	// #nosec G204 -- intentional: specs carry user-authored commands
	return exec.Command("/bin/sh", "-c", cmdStr)
}
