// Package env composes the environment handed to spawned dev servers.
// Parents of this process are often launched from sparse environments
// (GUI shells, service managers), so the interactive essentials are
// ensured before per-spec overrides apply.
package env

import (
	"os"
	"strings"
)

const defaultPath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

type Var map[string]string

type Env struct {
	Var Var // global overrides (K->V)
	env Var // cached base from OS environment
}

func New() *Env {
	return &Env{Var: make(Var)}
}

// FromOS caches the current process environment as the base.
func (e *Env) FromOS() {
	base := make(Var)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k := kv[:i]
			v := kv[i+1:]
			if k == "" {
				continue
			}
			base[k] = v
		}
	}
	e.env = base
}

// Set sets a global override K=V.
func (e *Env) Set(k, v string) {
	if e.Var == nil {
		e.Var = make(Var)
	}
	e.Var[k] = v
}

// Interactive composes the environment for a pty-backed dev server:
// base = OS env with PATH/HOME/SHELL/TERM ensured and color forced,
// then global overrides, then perProc ("K=V") overrides, with ${VAR}
// expansion over the composed map (single pass, no recursion).
func (e *Env) Interactive(perProc []string) []string {
	if e.env == nil {
		e.FromOS()
	}
	m := make(Var, len(e.env)+len(e.Var)+len(perProc))
	for k, v := range e.env {
		m[k] = v
	}
	ensure(m, "PATH", defaultPath)
	ensure(m, "SHELL", "/bin/sh")
	ensure(m, "TERM", "xterm-256color")
	if m["HOME"] == "" {
		if home, err := os.UserHomeDir(); err == nil {
			m["HOME"] = home
		}
	}
	m["FORCE_COLOR"] = "1"

	for k, v := range e.Var {
		if k == "" {
			continue
		}
		m[k] = v
	}
	for _, kv := range perProc {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			k := kv[:i]
			if k == "" {
				continue
			}
			m[k] = kv[i+1:]
		}
	}

	expanded := make(Var, len(m))
	for k, v := range m {
		expanded[k] = expand(v, m)
	}
	out := make([]string, 0, len(expanded))
	for k, v := range expanded {
		out = append(out, k+"="+v)
	}
	return out
}

func ensure(m Var, k, def string) {
	if m[k] == "" {
		m[k] = def
	}
}

func expand(s string, m Var) string {
	if !strings.Contains(s, "${") {
		return s
	}
	res := s
	for k, v := range m {
		res = strings.ReplaceAll(res, "${"+k+"}", v)
	}
	return res
}
