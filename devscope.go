package devscope

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/devscope/devscope/internal/config"
	"github.com/devscope/devscope/internal/env"
	"github.com/devscope/devscope/internal/metrics"
	"github.com/devscope/devscope/internal/project"
	"github.com/devscope/devscope/internal/scan"
	"github.com/devscope/devscope/internal/scanner"
	"github.com/devscope/devscope/internal/store"
	"github.com/devscope/devscope/internal/store/factory"
	"github.com/devscope/devscope/internal/supervisor"
	"github.com/devscope/devscope/internal/techdetect"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Candidate = project.Candidate

type Saved = project.Saved

type GitInfo = project.GitInfo

type Stats = project.Stats

type Detector = techdetect.Detector

type DetectorTable = techdetect.Table

type Spec = supervisor.Spec

type ProcessStatus = supervisor.ProcessStatus

type Event = scan.Event

type StoreConfig = store.Config

type ProjectStore = store.ProjectStore

// DefaultDetectorTable returns the built-in technology detector rules.
func DefaultDetectorTable() DetectorTable { return techdetect.DefaultTable() }

// Scanner is a thin facade over internal/scanner.Scanner.
type Scanner struct{ inner *scanner.Scanner }

func NewScanner(table techdetect.Table, opts ...scanner.Option) *Scanner {
	return &Scanner{inner: scanner.New(table, opts...)}
}

func (s *Scanner) IsProjectRoot(dir string) bool { return s.inner.IsProjectRoot(dir) }
func (s *Scanner) ScanProject(ctx context.Context, dir string) (*Candidate, error) {
	return s.inner.ScanProject(ctx, dir)
}
func (s *Scanner) ScanAll(ctx context.Context, dirs []string, maxDepth int) ([]*Candidate, error) {
	return s.inner.ScanAll(ctx, dirs, maxDepth)
}

// Coordinator facade

type Coordinator struct{ inner *scan.Coordinator }

func NewCoordinator(s *Scanner, st ProjectStore, opts ...scan.Option) *Coordinator {
	return &Coordinator{inner: scan.NewCoordinator(s.inner, st, opts...)}
}

func (c *Coordinator) Subscribe() (<-chan Event, func())    { return c.inner.Subscribe() }
func (c *Coordinator) Start(dirs []string, depth int) error { return c.inner.Start(dirs, depth) }
func (c *Coordinator) Stop()                                { c.inner.Stop() }
func (c *Coordinator) Active() bool                         { return c.inner.Active() }

// Supervisor facade

type Supervisor struct{ inner *supervisor.Supervisor }

func NewSupervisor(opts ...supervisor.Option) *Supervisor {
	return &Supervisor{inner: supervisor.New(opts...)}
}

func (s *Supervisor) StartProjectProcesses(projectID, basePath string, specs []Spec) []ProcessStatus {
	return s.inner.StartProjectProcesses(projectID, basePath, specs)
}
func (s *Supervisor) CreateProcess(projectID, cwd, command, title string) ProcessStatus {
	return s.inner.CreateProcess(projectID, cwd, command, title)
}
func (s *Supervisor) StopProcess(projectID, processID string) bool {
	return s.inner.StopProcess(projectID, processID)
}
func (s *Supervisor) StopProjectProcesses(projectID string) int {
	return s.inner.StopProjectProcesses(projectID)
}
func (s *Supervisor) GetProcess(processID string) (ProcessStatus, bool) {
	return s.inner.GetProcess(processID)
}
func (s *Supervisor) GetProcessOutput(projectID, processID string) ([]string, string, bool) {
	return s.inner.GetProcessOutput(projectID, processID)
}
func (s *Supervisor) GetAllProcesses() []ProcessStatus { return s.inner.GetAllProcesses() }
func (s *Supervisor) GetProjectStatus(projectID string) []ProcessStatus {
	return s.inner.GetProjectStatus(projectID)
}
func (s *Supervisor) Cleanup() { s.inner.Cleanup() }

// SetGlobalEnv installs K=V overrides applied to every spawned process.
func (s *Supervisor) SetGlobalEnv(kvs []string) {
	e := env.New()
	for _, kv := range kvs {
		if k, v, ok := splitKV(kv); ok {
			e.Set(k, v)
		}
	}
	supervisor.WithEnv(e)(s.inner)
}

func splitKV(kv string) (string, string, bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], i > 0
		}
	}
	return "", "", false
}

func LoadConfig(path string) (*cfg.Config, error) {
	return cfg.Load(path)
}

// NewStore opens the project store described by c.
func NewStore(c StoreConfig) (ProjectStore, error) {
	return factory.New(c)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
