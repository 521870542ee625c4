package solarctl

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/loykin/solarctl/internal/config"
	"github.com/loykin/solarctl/internal/controller"
	"github.com/loykin/solarctl/internal/history"
	"github.com/loykin/solarctl/internal/history/factory"
	"github.com/loykin/solarctl/internal/instrument"
	"github.com/loykin/solarctl/internal/logs"
	"github.com/loykin/solarctl/internal/mcp"
	"github.com/loykin/solarctl/internal/metrics"
	"github.com/loykin/solarctl/internal/registry"
	"github.com/loykin/solarctl/internal/screenshot"
	iapi "github.com/loykin/solarctl/internal/server"
	"github.com/loykin/solarctl/internal/touch"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Instance = registry.Instance

type InstrumentResult = instrument.Result

type LogTail = logs.Tail

type RecordingStatus = screenshot.Status

type Shot = screenshot.Shot

type DisplayInfo = touch.DisplayInfo

type RunOptions = controller.RunOptions

type RunResult = controller.RunResult

type HistorySink = history.Sink

// Controller is a thin facade over internal/controller.Controller.
// It provides a stable public API for embedding.

type Controller struct{ inner *controller.Controller }

func New() *Controller { return &Controller{inner: controller.New()} }

// NewWithConfig points the controller at a specific preference file instead
// of the default user config location.
func NewWithConfig(configPath string) *Controller {
	return &Controller{inner: controller.New(controller.WithConfigStore(cfg.Store{Path: configPath}))}
}

func (c *Controller) Run(path string, opts RunOptions) (RunResult, error) {
	return c.inner.Run(path, opts)
}
func (c *Controller) Instances() []Instance { return c.inner.Instances() }
func (c *Controller) Logs(path string, maxLines int) (LogTail, error) {
	return c.inner.Logs(path, maxLines)
}
func (c *Controller) StartRecording(path string, d time.Duration) (RecordingStatus, error) {
	return c.inner.StartRecording(path, d)
}
func (c *Controller) StopRecording(path string) (RecordingStatus, error) {
	return c.inner.StopRecording(path)
}
func (c *Controller) CaptureLatest(path string) (Shot, error) {
	return c.inner.CaptureLatest(path)
}
func (c *Controller) Screenshots(path, selector string) ([]Shot, error) {
	return c.inner.Screenshots(path, selector)
}
func (c *Controller) ListScreenshots(path string) ([]Shot, error) {
	return c.inner.ListScreenshots(path)
}
func (c *Controller) Tap(path string, left, right, top, bottom float64) (float64, float64, error) {
	return c.inner.Tap(path, left, right, top, bottom)
}
func (c *Controller) Drag(path string, from, to [4]float64, durationMS int) error {
	return c.inner.Drag(path, from, to, durationMS)
}
func (c *Controller) DisplayInfo(path string) (DisplayInfo, error) {
	return c.inner.DisplayInfo(path)
}
func (c *Controller) Configure(simulatorPath string) error {
	return c.inner.Configure(simulatorPath)
}

// Simulator reports the effective simulator path, detection candidates, and
// whether the path still needs confirmation.
func (c *Controller) Simulator() (path string, detected []string, needsConfirm bool, err error) {
	return c.inner.Simulator()
}
func (c *Controller) SetHistorySinks(sinks ...HistorySink) { c.inner.SetHistorySinks(sinks...) }
func (c *Controller) Close()                               { c.inner.Close() }

// NewHistorySink builds a launch-event sink from a DSN
// (sqlite://, postgres://, clickhouse://).
func NewHistorySink(dsn string) (HistorySink, error) {
	return factory.NewSinkFromDSN(dsn)
}

// NewMCPServer builds a stdio MCP server exposing the controller's tools.
func NewMCPServer(version string, c *Controller) (*mcp.Server, error) {
	return mcp.NewServer(&mcp.Config{Name: "solarctl", Version: version}, c.inner)
}

// NewHTTPServer starts an HTTP server exposing the internal API using the given controller.
func NewHTTPServer(addr, basePath string, c *Controller) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, c.inner)
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
