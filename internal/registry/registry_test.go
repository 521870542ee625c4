package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/loykin/solarctl/internal/history"
	"github.com/loykin/solarctl/internal/project"
)

type fakeStarter struct {
	nextPID int
	err     error
	lastCmd string
	lastArg []string
}

func (f *fakeStarter) Start(path string, args []string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextPID++
	f.lastCmd = path
	f.lastArg = args
	return f.nextPID, nil
}

type fakeProber struct {
	mu   sync.Mutex
	dead map[int]bool
}

func (f *fakeProber) Alive(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead[pid]
}

func (f *fakeProber) kill(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead == nil {
		f.dead = map[int]bool{}
	}
	f.dead[pid] = true
}

var projSeq int64

// testProject gives each project a unique directory name so slugs stay
// distinct between tests.
func testProject(t *testing.T) *project.Project {
	t.Helper()
	projSeq++
	dir := filepath.Join(t.TempDir(), fmt.Sprintf("proj-%d", projSeq))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.lua"), []byte(""), 0o644); err != nil {
		t.Fatalf("write main.lua: %v", err)
	}
	p, err := project.Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return p
}

func TestLaunchRecordsInstance(t *testing.T) {
	starter := &fakeStarter{}
	prober := &fakeProber{}
	r := New(WithStarter(starter), WithProber(prober))
	p := testProject(t)

	inst, err := r.Launch(p, "/opt/sim", true, false)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}
	if inst.PID != 1 || inst.Slug != p.Slug || inst.Status != StatusRunning {
		t.Fatalf("unexpected instance: %+v", inst)
	}

	want := []string{"-no-console", "YES", "-debug", "1", "-project", p.Main}
	if len(starter.lastArg) != len(want) {
		t.Fatalf("args = %v, want %v", starter.lastArg, want)
	}
	for i := range want {
		if starter.lastArg[i] != want[i] {
			t.Fatalf("args = %v, want %v", starter.lastArg, want)
		}
	}
}

func TestLaunchConsoleSkipsNoConsoleFlag(t *testing.T) {
	starter := &fakeStarter{}
	r := New(WithStarter(starter), WithProber(&fakeProber{}))
	p := testProject(t)

	if _, err := r.Launch(p, "/opt/sim", false, true); err != nil {
		t.Fatalf("launch: %v", err)
	}
	for _, a := range starter.lastArg {
		if a == "-no-console" || a == "-debug" {
			t.Fatalf("unexpected flag %q in %v", a, starter.lastArg)
		}
	}
}

func TestFailedLaunchIsNotRecorded(t *testing.T) {
	starter := &fakeStarter{err: errors.New("no such executable")}
	r := New(WithStarter(starter), WithProber(&fakeProber{}))
	p := testProject(t)

	_, err := r.Launch(p, "/nope", false, false)
	if err == nil {
		t.Fatal("expected launch error")
	}
	var le *LaunchError
	if !errors.As(err, &le) {
		t.Fatalf("expected LaunchError, got %T", err)
	}
	if got := r.List(); len(got) != 0 {
		t.Fatalf("failed launch must not be recorded, got %v", got)
	}
}

func TestListProbesLiveness(t *testing.T) {
	starter := &fakeStarter{}
	prober := &fakeProber{}
	r := New(WithStarter(starter), WithProber(prober))
	p := testProject(t)

	inst, err := r.Launch(p, "/opt/sim", false, false)
	if err != nil {
		t.Fatalf("launch: %v", err)
	}

	if got := r.List(); got[0].Status != StatusRunning {
		t.Fatalf("expected running, got %s", got[0].Status)
	}

	prober.kill(inst.PID)
	got := r.List()
	if len(got) != 1 {
		t.Fatalf("exited instance must stay listed, got %d entries", len(got))
	}
	if got[0].Status != StatusExited {
		t.Fatalf("expected exited, got %s", got[0].Status)
	}
	// The transition sticks even if the pid were to be reused.
	if got := r.List(); got[0].Status != StatusExited {
		t.Fatalf("exited must be terminal, got %s", got[0].Status)
	}
}

func TestRepeatedLaunchesAreIndependent(t *testing.T) {
	r := New(WithStarter(&fakeStarter{}), WithProber(&fakeProber{}))
	p := testProject(t)

	for i := 0; i < 3; i++ {
		if _, err := r.Launch(p, "/opt/sim", false, false); err != nil {
			t.Fatalf("launch %d: %v", i, err)
		}
	}
	got := r.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].PID == got[1].PID || got[1].PID == got[2].PID {
		t.Fatalf("expected distinct pids, got %v", got)
	}
}

type captureSink struct {
	mu     sync.Mutex
	events []history.Event
	closed bool
}

func (c *captureSink) Send(_ context.Context, e history.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *captureSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *captureSink) snapshot() []history.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]history.Event(nil), c.events...)
}

func TestHistorySinkReceivesLaunchEvents(t *testing.T) {
	sink := &captureSink{}
	r := New(WithStarter(&fakeStarter{}), WithProber(&fakeProber{}))
	r.SetHistorySinks(sink)
	p := testProject(t)

	if _, err := r.Launch(p, "/opt/sim", false, false); err != nil {
		t.Fatalf("launch: %v", err)
	}

	// Sends are asynchronous.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	events := sink.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != history.EventLaunch || events[0].Record.Slug != p.Slug {
		t.Fatalf("unexpected event: %+v", events[0])
	}

	r.CloseHistorySinks()
	if !sink.closed {
		t.Fatal("sink should be closed")
	}
}
