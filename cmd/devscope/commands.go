package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devscope/devscope"
	"github.com/devscope/devscope/internal/config"
	"github.com/devscope/devscope/internal/logger"
	"github.com/devscope/devscope/internal/scan"
	"github.com/devscope/devscope/internal/scanner"
	"github.com/devscope/devscope/internal/supervisor"
)

type command struct {
	global *GlobalFlags
}

func (c command) loadConfig() (*config.Config, error) {
	if c.global.ConfigPath != "" {
		return devscope.LoadConfig(c.global.ConfigPath)
	}
	return config.Default()
}

// Scan runs one discovery session and prints each event as a JSON line.
func (c command) Scan(f ScanFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log, "devscope")
	_ = devscope.RegisterMetricsDefault()

	var st devscope.ProjectStore
	if !f.NoStore {
		opened, err := devscope.NewStore(cfg.Store)
		if err != nil {
			log.Warn("failed to open project store, discoveries will not persist", "error", err)
		} else {
			defer func() { _ = opened.Close() }()
			if err := opened.EnsureSchema(context.Background()); err != nil {
				return fmt.Errorf("ensure store schema: %w", err)
			}
			st = opened
		}
	}

	sc := devscope.NewScanner(cfg.Table,
		scanner.WithIgnoreDirs(cfg.IgnoreDirs),
		scanner.WithIgnoreFiles(cfg.IgnoreFiles),
		scanner.WithLogger(log),
	)
	coord := devscope.NewCoordinator(sc, st,
		scan.WithDefaults(cfg.BaseDirs, cfg.MaxDepth),
		scan.WithLogger(log),
	)

	events, unsubscribe := coord.Subscribe()
	defer unsubscribe()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		<-sig
		coord.Stop()
	}()

	if err := coord.Start(f.Dirs, f.MaxDepth); err != nil {
		return err
	}
	for ev := range events {
		printJSON(ev)
		if ev.Type == scan.EventScanCompleted || ev.Type == scan.EventScanError {
			break
		}
	}
	return nil
}

// Up starts configured project processes and supervises them until
// interrupted.
func (c command) Up(f UpFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log, "devscope")
	_ = devscope.RegisterMetricsDefault()
	if cfg.MetricsListen != "" {
		go func() {
			if err := devscope.ServeMetrics(cfg.MetricsListen); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	projects := cfg.Projects
	if f.Project != "" {
		specs := cfg.SpecsFor(f.Project)
		if len(specs) == 0 {
			return fmt.Errorf("no processes configured for project %s", f.Project)
		}
		projects = []config.ProjectConfig{{Path: f.Project, Processes: specs}}
	}
	if len(projects) == 0 {
		return fmt.Errorf("no [[projects]] configured")
	}

	sup := devscope.NewSupervisor(
		supervisor.WithOutputCap(cfg.OutputBuffer),
		supervisor.WithLogger(log),
	)
	defer sup.Cleanup()

	for _, p := range projects {
		statuses := sup.StartProjectProcesses(p.Path, p.Path, p.Processes)
		for _, st := range statuses {
			printJSON(st)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	reported := make(map[string]string)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			log.Info("shutting down")
			return nil
		case <-ticker.C:
			for _, st := range sup.GetAllProcesses() {
				if st.URL != "" && reported[st.ProcessID] != st.URL {
					reported[st.ProcessID] = st.URL
					log.Info("dev server ready", "process", st.ProcessID, "url", st.URL)
				}
			}
		}
	}
}

// Run spawns one ad hoc process and streams its output until it exits or
// the user interrupts.
func (c command) Run(f RunFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log, "devscope")
	_ = devscope.RegisterMetricsDefault()

	sup := devscope.NewSupervisor(
		supervisor.WithOutputCap(cfg.OutputBuffer),
		supervisor.WithLogger(log),
	)
	defer sup.Cleanup()

	st := sup.CreateProcess(f.Project, f.Cwd, f.CmdStr, f.Title)
	if st.Status == supervisor.StatusFailed {
		return fmt.Errorf("failed to start process: %s", st.Error)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	printed := 0
	for {
		select {
		case <-sig:
			sup.StopProcess(st.ProjectID, st.ProcessID)
			return nil
		case <-time.After(100 * time.Millisecond):
		}
		chunks, _, ok := sup.GetProcessOutput(st.ProjectID, st.ProcessID)
		if ok {
			for ; printed < len(chunks); printed++ {
				fmt.Print(chunks[printed])
			}
		}
		cur, ok := sup.GetProcess(st.ProcessID)
		if !ok {
			return nil
		}
		if cur.Status != supervisor.StatusRunning {
			if cur.Status == supervisor.StatusFailed {
				if cur.ExitCode != nil {
					return fmt.Errorf("process exited with code %d", *cur.ExitCode)
				}
				return fmt.Errorf("process failed: %s", cur.Error)
			}
			return nil
		}
	}
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", v)
		return
	}
	fmt.Println(string(b))
}
