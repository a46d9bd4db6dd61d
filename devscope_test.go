package devscope

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func requireUnix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix-like environment")
	}
}

func TestScannerFacadeDiscovers(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "svc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module svc\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sc := NewScanner(DefaultDetectorTable())
	if !sc.IsProjectRoot(dir) {
		t.Fatal("expected project root")
	}
	found, err := sc.ScanAll(context.Background(), []string{base}, 2)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(found) != 1 || found[0].Name != "svc" {
		t.Fatalf("unexpected discoveries: %+v", found)
	}
}

func TestSupervisorFacadeStartStop(t *testing.T) {
	requireUnix(t)
	sup := NewSupervisor()
	defer sup.Cleanup()

	statuses := sup.StartProjectProcesses("proj", t.TempDir(), []Spec{
		{ID: "demo", Commands: []string{"sleep 30"}},
	})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if _, ok := sup.GetProcess("proj:demo"); !ok {
		t.Fatal("process not registered")
	}
	if !sup.StopProcess("proj", "proj:demo") {
		t.Fatal("stop reported no-op")
	}
}

func TestCoordinatorFacadeCompletes(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "svc")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"svc"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := NewCoordinator(NewScanner(DefaultDetectorTable()), nil)
	events, unsubscribe := c.Subscribe()
	defer unsubscribe()
	if err := c.Start([]string{base}, 2); err != nil {
		t.Fatalf("start: %v", err)
	}

	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == "scan-completed" {
				if ev.Total != 1 {
					t.Fatalf("expected 1 discovery, got %d", ev.Total)
				}
				return
			}
			if ev.Type == "scan-error" {
				t.Fatalf("scan failed: %s", ev.Reason)
			}
		case <-deadline:
			t.Fatal("scan did not complete")
		}
	}
}
