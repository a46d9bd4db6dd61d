package supervisor

import (
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/devscope/devscope/internal/urldetect"
)

// Status is the lifecycle state of a supervised process. Transitions are
// monotone: running is the only initial state, stopped and failed are
// terminal.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusFailed  Status = "failed"
)

// GlobalProject is the synthetic bucket for ad hoc processes started
// without a project.
const GlobalProject = "global"

// ProcessStatus is the query-surface view of one supervised process.
// URL is the configured URL when present, else the detected one.
type ProcessStatus struct {
	ProcessID   string    `json:"process_id"`
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Command     string    `json:"command,omitempty"`
	Dir         string    `json:"cwd,omitempty"`
	Status      Status    `json:"status"`
	ExitCode    *int      `json:"exit_code,omitempty"`
	Error       string    `json:"error,omitempty"`
	URL         string    `json:"url,omitempty"`
	DetectedURL string    `json:"detected_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// process is the mutable supervised-process record. Each record is
// mutated only by its own pump goroutine plus explicit supervisor calls,
// all under its own lock.
type process struct {
	mu sync.Mutex

	id        string
	projectID string
	name      string
	command   string
	dir       string
	createdAt time.Time

	status   Status
	exitCode *int
	errMsg   string

	output        *ring
	configuredURL string
	detectedURL   string // write-once

	cmd *exec.Cmd
	tty *os.File
}

func newProcess(id, projectID, name, command, dir, configuredURL string, bufCap int) *process {
	return &process{
		id:            id,
		projectID:     projectID,
		name:          name,
		command:       command,
		dir:           dir,
		createdAt:     time.Now(),
		status:        StatusRunning,
		output:        newRing(bufCap),
		configuredURL: configuredURL,
	}
}

// appendOutput records one output chunk and, while no URL is configured
// or latched, runs URL detection on it. The first match latches
// permanently. Chunks arriving after a terminal state are discarded.
func (p *process) appendOutput(chunk string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusRunning {
		return
	}
	p.output.Append(chunk)
	if p.configuredURL == "" && p.detectedURL == "" {
		if u, ok := urldetect.Detect(chunk); ok {
			p.detectedURL = u
		}
	}
}

// markExited transitions to the terminal state for exitCode. A record
// already terminal (explicitly stopped) is left untouched.
func (p *process) markExited(exitCode int, errMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != StatusRunning {
		return
	}
	code := exitCode
	p.exitCode = &code
	p.errMsg = errMsg
	if exitCode == 0 {
		p.status = StatusStopped
	} else {
		p.status = StatusFailed
	}
}

// markStopped records an explicit stop. Fire-and-forget: the signal has
// been sent, the record does not wait for the OS to confirm.
func (p *process) markStopped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusRunning {
		p.status = StatusStopped
	}
}

// markSpawnFailed records a spawn error on a record that never ran.
func (p *process) markSpawnFailed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = StatusFailed
	p.errMsg = err.Error()
}

func (p *process) running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == StatusRunning
}

func (p *process) pid() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		return p.cmd.Process.Pid
	}
	return 0
}

func (p *process) setStarted(cmd *exec.Cmd, tty *os.File) {
	p.mu.Lock()
	p.cmd = cmd
	p.tty = tty
	p.mu.Unlock()
}

func (p *process) snapshot() ProcessStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := ProcessStatus{
		ProcessID:   p.id,
		ProjectID:   p.projectID,
		Name:        p.name,
		Command:     p.command,
		Dir:         p.dir,
		Status:      p.status,
		Error:       p.errMsg,
		DetectedURL: p.detectedURL,
		CreatedAt:   p.createdAt,
	}
	if p.exitCode != nil {
		code := *p.exitCode
		st.ExitCode = &code
	}
	st.URL = p.configuredURL
	if st.URL == "" {
		st.URL = p.detectedURL
	}
	return st
}

// outputSnapshot returns the retained chunks and their concatenation.
func (p *process) outputSnapshot() ([]string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	chunks := p.output.Snapshot()
	return chunks, strings.Join(chunks, "")
}
