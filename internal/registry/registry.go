// Package registry launches simulator instances and tracks their lifecycle
// in memory. The registry never persists its records; a controller restart
// starts from an empty registry.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loykin/solarctl/internal/history"
	"github.com/loykin/solarctl/internal/metrics"
	"github.com/loykin/solarctl/internal/project"
)

// Status values for a tracked instance.
const (
	StatusRunning = "running"
	StatusExited  = "exited"
	StatusUnknown = "unknown"
)

// LaunchError wraps the OS failure encountered while spawning the runtime.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch simulator: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Instance is one tracked simulator process. Records are retained after
// the process exits for history and diagnostics.
type Instance struct {
	ProjectDir string    `json:"project_dir"`
	Slug       string    `json:"slug"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	Debug      bool      `json:"debug"`
	Console    bool      `json:"console"`
	Status     string    `json:"status"`
}

// Starter spawns the simulator executable detached from the controller.
// Implementations must not wait on the child.
type Starter interface {
	Start(path string, args []string) (pid int, err error)
}

// Prober reports whether a pid refers to a live process.
type Prober interface {
	Alive(pid int) bool
}

// Registry tracks launched instances. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	instances []*Instance

	starter Starter
	prober  Prober
	now     func() time.Time

	sinkMu sync.RWMutex
	sinks  []history.Sink
}

// Option configures a Registry; used by tests to substitute fakes.
type Option func(*Registry)

func WithStarter(s Starter) Option { return func(r *Registry) { r.starter = s } }

func WithProber(p Prober) Option { return func(r *Registry) { r.prober = p } }

func WithClock(f func() time.Time) Option { return func(r *Registry) { r.now = f } }

func New(opts ...Option) *Registry {
	r := &Registry{
		starter: execStarter{},
		prober:  pidProber{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Launch spawns the simulator for the project and records the instance.
// The caller must have run the instrumenter first; Launch does not.
// Multiple launches for the same project produce independent records.
func (r *Registry) Launch(p *project.Project, simulatorPath string, debug, console bool) (Instance, error) {
	args := make([]string, 0, 6)
	if !console {
		args = append(args, "-no-console", "YES")
	}
	if debug {
		args = append(args, "-debug", "1")
	}
	args = append(args, "-project", p.Main)

	pid, err := r.starter.Start(simulatorPath, args)
	if err != nil {
		metrics.IncLaunchFailure(p.Slug)
		r.emit(history.Event{
			Type:       history.EventLaunchFailure,
			OccurredAt: r.now(),
			Record: history.Record{
				Slug:       p.Slug,
				ProjectDir: p.Dir,
				Error:      err.Error(),
			},
		})
		return Instance{}, &LaunchError{Err: err}
	}

	inst := &Instance{
		ProjectDir: p.Dir,
		Slug:       p.Slug,
		PID:        pid,
		StartedAt:  r.now(),
		Debug:      debug,
		Console:    console,
		Status:     StatusRunning,
	}

	r.mu.Lock()
	r.instances = append(r.instances, inst)
	r.mu.Unlock()

	metrics.IncLaunch(p.Slug)
	r.emit(history.Event{
		Type:       history.EventLaunch,
		OccurredAt: inst.StartedAt,
		Record: history.Record{
			Slug:       p.Slug,
			ProjectDir: p.Dir,
			PID:        pid,
			StartedAt:  inst.StartedAt,
		},
	})
	return *inst, nil
}

// SetHistorySinks replaces the sinks that receive launch events.
func (r *Registry) SetHistorySinks(sinks ...history.Sink) {
	r.sinkMu.Lock()
	r.sinks = append([]history.Sink(nil), sinks...)
	r.sinkMu.Unlock()
}

// CloseHistorySinks closes and detaches all registered sinks.
func (r *Registry) CloseHistorySinks() {
	r.sinkMu.Lock()
	sinks := r.sinks
	r.sinks = nil
	r.sinkMu.Unlock()
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			slog.Warn("history sink close failed", "error", err)
		}
	}
}

// emit delivers an event to every sink. Delivery is best effort and must
// never block or fail a launch.
func (r *Registry) emit(e history.Event) {
	r.sinkMu.RLock()
	sinks := r.sinks
	r.sinkMu.RUnlock()
	if len(sinks) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, s := range sinks {
			if err := s.Send(ctx, e); err != nil {
				slog.Warn("history sink send failed", "type", string(e.Type), "error", err)
			}
		}
	}()
}

// List returns all tracked instances with freshly probed liveness. Dead
// pids transition to exited but stay in the list.
func (r *Registry) List() []Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		if inst.Status == StatusRunning && !r.prober.Alive(inst.PID) {
			inst.Status = StatusExited
		}
		out = append(out, *inst)
	}
	return out
}
