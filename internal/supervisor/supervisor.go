package supervisor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/devscope/devscope/internal/env"
	"github.com/devscope/devscope/internal/metrics"
)

// DefaultOutputCap bounds the per-process output buffer.
const DefaultOutputCap = 1000

// Supervisor owns the registry of supervised processes. The registry maps
// project buckets to process records; process ids are unique across all
// projects, so a lookup by id alone is unambiguous. Each record is
// mutated only by its own pump goroutine plus explicit stop calls, so the
// single registry mutex is all the locking required.
type Supervisor struct {
	mu     sync.Mutex
	byProj map[string]map[string]*process // projectID -> processID -> record
	byID   map[string]*process
	env    *env.Env
	bufCap int
	log    *slog.Logger
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithOutputCap overrides the output buffer capacity.
func WithOutputCap(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.bufCap = n
		}
	}
}

// WithEnv overrides the environment composer.
func WithEnv(e *env.Env) Option {
	return func(s *Supervisor) { s.env = e }
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Supervisor) { s.log = l }
}

func New(opts ...Option) *Supervisor {
	s := &Supervisor{
		byProj: make(map[string]map[string]*process),
		byID:   make(map[string]*process),
		env:    env.New(),
		bufCap: DefaultOutputCap,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartProjectProcesses starts every spec not already running under
// (projectID, spec.ID). Re-starting a running spec returns its current
// status unchanged. A spawn failure is reported in that spec's status
// slot without aborting the remaining specs.
func (s *Supervisor) StartProjectProcesses(projectID, basePath string, specs []Spec) []ProcessStatus {
	statuses := make([]ProcessStatus, 0, len(specs))
	for _, spec := range specs {
		statuses = append(statuses, s.startSpec(projectID, basePath, spec))
	}
	return statuses
}

func (s *Supervisor) startSpec(projectID, basePath string, spec Spec) ProcessStatus {
	processID := specProcessID(projectID, spec.ID)

	s.mu.Lock()
	if existing, ok := s.byID[processID]; ok && existing.running() {
		s.mu.Unlock()
		return existing.snapshot()
	}
	dir := basePath
	if spec.WorkDir != "" {
		dir = filepath.Join(basePath, spec.WorkDir)
	}
	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	p := newProcess(processID, projectID, name, spec.JoinCommands(), dir, spec.URL, s.bufCap)
	s.registerLocked(p)
	s.mu.Unlock()

	s.spawn(p)
	return p.snapshot()
}

// CreateProcess starts an ad hoc process not tied to any configured spec.
// Without a projectID it lands in the synthetic "global" bucket. An empty
// command spawns the user's shell.
func (s *Supervisor) CreateProcess(projectID, cwd, command, title string) ProcessStatus {
	if projectID == "" {
		projectID = GlobalProject
	}
	if cwd == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cwd = home
		} else {
			cwd = "."
		}
	}
	if title == "" {
		if command != "" {
			title = command
		} else {
			title = "shell"
		}
	}

	p := newProcess(uuid.NewString(), projectID, title, command, cwd, "", s.bufCap)
	s.mu.Lock()
	s.registerLocked(p)
	s.mu.Unlock()

	s.spawn(p)
	return p.snapshot()
}

// spawn launches the record's command behind a pty and starts the output
// pump. The record is already registered, so status queries observe it
// before the first output callback fires.
func (s *Supervisor) spawn(p *process) {
	var cmd *exec.Cmd
	if p.command != "" {
		cmd = buildCommand(p.command)
	} else {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		// #nosec G204 -- user's own shell
		cmd = exec.Command(shell)
	}
	cmd.Dir = p.dir
	cmd.Env = s.env.Interactive(nil)

	tty, err := pty.Start(cmd)
	if err != nil {
		p.markSpawnFailed(err)
		metrics.IncProcessFailure(p.projectID)
		s.log.Warn("failed to spawn process", "process", p.id, "error", err)
		return
	}
	p.setStarted(cmd, tty)
	metrics.IncProcessStart(p.projectID)
	s.updateRunningGauge()
	go s.pump(p, tty, cmd)
}

// pump copies pty output into the record until the stream closes, then
// reaps the subprocess and records its exit.
func (s *Supervisor) pump(p *process, tty *os.File, cmd *exec.Cmd) {
	buf := make([]byte, 4096)
	for {
		n, err := tty.Read(buf)
		if n > 0 {
			p.appendOutput(string(buf[:n]))
		}
		if err != nil {
			// EOF or EIO once the child's side of the pty closes.
			break
		}
	}
	_ = tty.Close()

	err := cmd.Wait()
	code := 0
	msg := ""
	if err != nil {
		msg = err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	p.markExited(code, msg)
	if code != 0 {
		metrics.IncProcessFailure(p.projectID)
	}
	s.updateRunningGauge()
	s.log.Debug("process exited", "process", p.id, "exit_code", code)
}

// StopProcess signals the process group, marks the record stopped, and
// deregisters it. Termination is fire-and-forget: the supervisor does not
// wait for the OS to confirm the exit.
func (s *Supervisor) StopProcess(projectID, processID string) bool {
	s.mu.Lock()
	bucket := s.byProj[projectID]
	p, ok := bucket[processID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.deregisterLocked(p)
	s.mu.Unlock()

	s.terminate(p)
	metrics.IncProcessStop(projectID)
	s.updateRunningGauge()
	return true
}

// StopProjectProcesses stops and deregisters every process in the
// project's bucket.
func (s *Supervisor) StopProjectProcesses(projectID string) int {
	s.mu.Lock()
	bucket := s.byProj[projectID]
	procs := make([]*process, 0, len(bucket))
	for _, p := range bucket {
		procs = append(procs, p)
	}
	for _, p := range procs {
		s.deregisterLocked(p)
	}
	s.mu.Unlock()

	for _, p := range procs {
		s.terminate(p)
		metrics.IncProcessStop(projectID)
	}
	s.updateRunningGauge()
	return len(procs)
}

// Cleanup terminates every registered process. Intended to run once at
// shutdown.
func (s *Supervisor) Cleanup() {
	s.mu.Lock()
	procs := make([]*process, 0, len(s.byID))
	for _, p := range s.byID {
		procs = append(procs, p)
	}
	s.byProj = make(map[string]map[string]*process)
	s.byID = make(map[string]*process)
	s.mu.Unlock()

	for _, p := range procs {
		s.terminate(p)
	}
	s.updateRunningGauge()
}

// terminate sends SIGTERM to the process group and marks the record
// stopped without waiting.
func (s *Supervisor) terminate(p *process) {
	if pid := p.pid(); pid > 0 {
		// pty.Start made the child a session leader, so -pid reaches the
		// whole group.
		_ = syscall.Kill(-pid, syscall.SIGTERM)
	}
	p.markStopped()
}

// GetProcess looks a process up by id alone.
func (s *Supervisor) GetProcess(processID string) (ProcessStatus, bool) {
	s.mu.Lock()
	p, ok := s.byID[processID]
	s.mu.Unlock()
	if !ok {
		return ProcessStatus{}, false
	}
	return p.snapshot(), true
}

// GetProcessOutput returns the retained output chunks and their
// concatenation.
func (s *Supervisor) GetProcessOutput(projectID, processID string) ([]string, string, bool) {
	s.mu.Lock()
	p, ok := s.byProj[projectID][processID]
	s.mu.Unlock()
	if !ok {
		return nil, "", false
	}
	chunks, combined := p.outputSnapshot()
	return chunks, combined, true
}

// GetAllProcesses returns every registered process, oldest first.
func (s *Supervisor) GetAllProcesses() []ProcessStatus {
	s.mu.Lock()
	statuses := make([]ProcessStatus, 0, len(s.byID))
	for _, p := range s.byID {
		statuses = append(statuses, p.snapshot())
	}
	s.mu.Unlock()
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].CreatedAt.Equal(statuses[j].CreatedAt) {
			return statuses[i].ProcessID < statuses[j].ProcessID
		}
		return statuses[i].CreatedAt.Before(statuses[j].CreatedAt)
	})
	return statuses
}

// GetProjectStatus returns the statuses for one project bucket. Empty for
// an unknown project.
func (s *Supervisor) GetProjectStatus(projectID string) []ProcessStatus {
	s.mu.Lock()
	bucket := s.byProj[projectID]
	statuses := make([]ProcessStatus, 0, len(bucket))
	for _, p := range bucket {
		statuses = append(statuses, p.snapshot())
	}
	s.mu.Unlock()
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ProcessID < statuses[j].ProcessID
	})
	return statuses
}

func (s *Supervisor) registerLocked(p *process) {
	bucket := s.byProj[p.projectID]
	if bucket == nil {
		bucket = make(map[string]*process)
		s.byProj[p.projectID] = bucket
	}
	bucket[p.id] = p
	s.byID[p.id] = p
}

func (s *Supervisor) deregisterLocked(p *process) {
	if bucket := s.byProj[p.projectID]; bucket != nil {
		delete(bucket, p.id)
		if len(bucket) == 0 {
			delete(s.byProj, p.projectID)
		}
	}
	delete(s.byID, p.id)
}

func (s *Supervisor) updateRunningGauge() {
	s.mu.Lock()
	n := len(s.byID)
	s.mu.Unlock()
	metrics.SetRunningProcesses(n)
}

// specProcessID derives the registry id for a configured spec. Prefixing
// with the project keeps ids unique across projects that reuse spec ids
// like "dev".
func specProcessID(projectID, specID string) string {
	return fmt.Sprintf("%s:%s", projectID, specID)
}
