package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/loykin/solarctl/internal/config"
	"github.com/loykin/solarctl/internal/controller"
	"github.com/loykin/solarctl/internal/registry"
)

type stubStarter struct{ pid int }

func (s *stubStarter) Start(path string, args []string) (int, error) {
	s.pid++
	return s.pid, nil
}

type aliveProber struct{}

func (aliveProber) Alive(int) bool { return true }

var projSeq atomic.Int64

func testProjectDir(t *testing.T) string {
	t.Helper()
	name := fmt.Sprintf("%s-%d", strings.ReplaceAll(t.Name(), "/", "_"), projSeq.Add(1))
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.lua"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("write main.lua: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Remove(filepath.Join(os.TempDir(), "solar2d_control_"+name+".json"))
	})
	return dir
}

func testServer(t *testing.T) *Server {
	t.Helper()
	ctl := controller.New(
		controller.WithRegistry(registry.New(registry.WithStarter(&stubStarter{}), registry.WithProber(aliveProber{}))),
		controller.WithConfigStore(config.Store{Path: filepath.Join(t.TempDir(), "config.toml")}),
	)
	s, err := NewServer(&Config{Name: "solarctl", Version: "test"}, ctl)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func TestRunProjectTool(t *testing.T) {
	s := testServer(t)
	dir := testProjectDir(t)

	_, out, err := s.handleRunProject(context.Background(), nil, RunProjectInput{
		Path:      dir,
		Simulator: "/opt/sim/solar2d",
	})
	if err != nil {
		t.Fatalf("run_project: %v", err)
	}
	if out.PID != 1 || out.LogPath == "" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if !out.Instrument.Touch.RequireInjected {
		t.Fatalf("expected instrumentation, got %+v", out.Instrument)
	}

	_, listed, err := s.handleListInstances(context.Background(), nil, ListInstancesInput{})
	if err != nil {
		t.Fatalf("list_instances: %v", err)
	}
	if listed.Count != 1 || listed.Instances[0].PID != 1 {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestReadLogsToolNoLogsYet(t *testing.T) {
	s := testServer(t)
	dir := testProjectDir(t)

	_, out, err := s.handleReadLogs(context.Background(), nil, ReadLogsInput{Path: dir})
	if err != nil {
		t.Fatalf("read_logs: %v", err)
	}
	if !out.NoLogsYet {
		t.Fatalf("expected no_logs_yet, got %+v", out)
	}
}

func TestSimulateTapTool(t *testing.T) {
	s := testServer(t)
	dir := testProjectDir(t)

	_, out, err := s.handleSimulateTap(context.Background(), nil, SimulateTapInput{
		Path: dir, Left: 30, Right: 50, Top: 60, Bottom: 70,
	})
	if err != nil {
		t.Fatalf("simulate_tap: %v", err)
	}
	if out.CenterX != 40 || out.CenterY != 65 {
		t.Fatalf("unexpected center: %+v", out)
	}

	_, _, err = s.handleSimulateTap(context.Background(), nil, SimulateTapInput{
		Path: dir, Left: 50, Right: 50, Top: 0, Bottom: 10,
	})
	if err == nil {
		t.Fatal("degenerate box should fail")
	}
}

func TestInstancesResource(t *testing.T) {
	s := testServer(t)

	res, err := s.handleInstancesResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	if len(res.Contents) != 1 || !strings.Contains(res.Contents[0].Text, "No simulators") {
		t.Fatalf("unexpected resource: %+v", res)
	}
}
