// Package controller ties the session components together behind one
// orchestrating type. HTTP, MCP, and CLI surfaces all talk to a Controller;
// none of them reach into the component packages directly.
package controller

import (
	"log/slog"
	"time"

	"github.com/loykin/solarctl/internal/config"
	"github.com/loykin/solarctl/internal/history"
	"github.com/loykin/solarctl/internal/instrument"
	"github.com/loykin/solarctl/internal/logs"
	"github.com/loykin/solarctl/internal/project"
	"github.com/loykin/solarctl/internal/registry"
	"github.com/loykin/solarctl/internal/screenshot"
	"github.com/loykin/solarctl/internal/touch"
)

// DefaultLogLines is the tail size when a read does not specify one.
const DefaultLogLines = 100

// RunOptions controls a launch.
type RunOptions struct {
	// Simulator overrides the configured simulator path for this launch.
	Simulator string
	// Debug enables the runtime debugger hook.
	Debug bool
	// Console keeps the simulator's own console window.
	Console bool
}

// RunResult is everything a caller needs to follow up on a launch.
type RunResult struct {
	Instance   registry.Instance `json:"instance"`
	Instrument instrument.Result `json:"instrument"`
	LogPath    string            `json:"log_path"`
}

// Controller owns the registry and recorder for its lifetime. Safe for
// concurrent use.
type Controller struct {
	reg   *registry.Registry
	rec   *screenshot.Recorder
	syn   *touch.Synthesizer
	store config.Store
}

// Option configures a Controller.
type Option func(*Controller)

// WithConfigStore points the controller at a specific preference file.
func WithConfigStore(s config.Store) Option {
	return func(c *Controller) { c.store = s }
}

// WithRegistry substitutes the instance registry; used by tests.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Controller) { c.reg = r }
}

// WithRecorder substitutes the screenshot recorder; used by tests.
func WithRecorder(r *screenshot.Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

func New(opts ...Option) *Controller {
	c := &Controller{
		reg: registry.New(),
		rec: screenshot.NewRecorder(),
		syn: touch.NewSynthesizer(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Resolve turns a user-supplied path into a project.
func (c *Controller) Resolve(path string) (*project.Project, error) {
	return project.Resolve(path)
}

// Run instruments the project and launches the simulator for it. The
// simulator path comes from opts.Simulator, falling back to the saved
// configuration.
func (c *Controller) Run(path string, opts RunOptions) (RunResult, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return RunResult{}, err
	}

	sim := opts.Simulator
	if sim == "" {
		resolved, _, needsConfirm, err := c.store.SimulatorOrDetect()
		if err != nil {
			return RunResult{}, err
		}
		if resolved == "" || needsConfirm {
			return RunResult{}, config.ErrNotConfigured
		}
		sim = resolved
	}

	ires, err := instrument.EnsureInstrumented(p)
	if err != nil {
		return RunResult{}, err
	}

	inst, err := c.reg.Launch(p, sim, opts.Debug, opts.Console)
	if err != nil {
		return RunResult{}, err
	}
	slog.Info("simulator launched", "slug", p.Slug, "pid", inst.PID, "debug", opts.Debug)
	return RunResult{Instance: inst, Instrument: ires, LogPath: p.LogPath()}, nil
}

// Instances lists tracked launches with freshly probed liveness.
func (c *Controller) Instances() []registry.Instance {
	return c.reg.List()
}

// Logs tails the project's log file.
func (c *Controller) Logs(path string, maxLines int) (logs.Tail, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return logs.Tail{}, err
	}
	if maxLines <= 0 {
		maxLines = DefaultLogLines
	}
	return logs.Read(p, maxLines)
}

// StartRecording starts or extends the project's recording session.
func (c *Controller) StartRecording(path string, duration time.Duration) (screenshot.Status, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return screenshot.Status{}, err
	}
	return c.rec.Start(p, duration)
}

// StopRecording ends the project's recording session.
func (c *Controller) StopRecording(path string) (screenshot.Status, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return screenshot.Status{}, err
	}
	return c.rec.Stop(p)
}

// CaptureLatest takes a fresh on-demand screenshot and waits for it.
func (c *Controller) CaptureLatest(path string) (screenshot.Shot, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return screenshot.Shot{}, err
	}
	return c.rec.CaptureLatest(p)
}

// Screenshots resolves a selector ("last", "all", "latest", or an index)
// against the project's screenshots.
func (c *Controller) Screenshots(path, selector string) ([]screenshot.Shot, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return nil, err
	}
	sel, err := screenshot.ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	return c.rec.Get(p, sel)
}

// ListScreenshots enumerates the recorded screenshots.
func (c *Controller) ListScreenshots(path string) ([]screenshot.Shot, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return nil, err
	}
	return c.rec.List(p)
}

// Tap writes a tap directive at the center of the bounding box. Returns
// the center percentages actually signaled.
func (c *Controller) Tap(path string, left, right, top, bottom float64) (float64, float64, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return 0, 0, err
	}
	return c.syn.Tap(p, left, right, top, bottom)
}

// Drag writes a drag directive between the two box centers.
func (c *Controller) Drag(path string, from, to [4]float64, durationMS int) error {
	p, err := project.Resolve(path)
	if err != nil {
		return err
	}
	return c.syn.Drag(p, from, to, durationMS)
}

// DisplayInfo reads the display metrics the runtime reported on startup.
func (c *Controller) DisplayInfo(path string) (touch.DisplayInfo, error) {
	p, err := project.Resolve(path)
	if err != nil {
		return touch.DisplayInfo{}, err
	}
	return touch.DisplayInfoFor(p)
}

// Configure persists the simulator path.
func (c *Controller) Configure(simulatorPath string) error {
	return c.store.Save(config.Config{SimulatorPath: simulatorPath})
}

// Simulator reports the effective simulator path, the detection candidates,
// and whether the path still needs user confirmation.
func (c *Controller) Simulator() (path string, detected []string, needsConfirm bool, err error) {
	return c.store.SimulatorOrDetect()
}

// SetHistorySinks attaches launch-event sinks to the registry.
func (c *Controller) SetHistorySinks(sinks ...history.Sink) {
	c.reg.SetHistorySinks(sinks...)
}

// Close releases resources held by the controller.
func (c *Controller) Close() {
	c.reg.CloseHistorySinks()
}
