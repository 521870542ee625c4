package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/solarctl/internal/controller"
	"github.com/loykin/solarctl/internal/metrics"
	"github.com/loykin/solarctl/internal/project"
	"github.com/loykin/solarctl/internal/screenshot"
	"github.com/loykin/solarctl/internal/touch"
)

// Router provides embeddable HTTP handlers for driving simulator sessions.
// Endpoints:
//   POST {basePath}/run                body: runReq JSON
//   GET  {basePath}/instances
//   GET  {basePath}/logs               query: path=...&lines=N
//   POST {basePath}/record/start       body: recordReq JSON
//   POST {basePath}/record/stop        body: pathReq JSON
//   POST {basePath}/capture            body: pathReq JSON
//   GET  {basePath}/screenshots        query: path=...&selector=...
//   POST {basePath}/tap                body: tapReq JSON
//   POST {basePath}/drag               body: dragReq JSON
//   GET  {basePath}/display            query: path=...
//   GET  {basePath}/metrics
// basePath may be empty or start with '/'; no trailing slash.

type Router struct {
	ctl      *controller.Controller
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/run, /api/instances, etc.
func NewRouter(ctl *controller.Controller, basePath string) *Router {
	return &Router{ctl: ctl, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/run", r.handleRun)
	group.GET("/instances", r.handleInstances)
	group.GET("/logs", r.handleLogs)
	group.POST("/record/start", r.handleRecordStart)
	group.POST("/record/stop", r.handleRecordStop)
	group.POST("/capture", r.handleCapture)
	group.GET("/screenshots", r.handleScreenshots)
	group.POST("/tap", r.handleTap)
	group.POST("/drag", r.handleDrag)
	group.GET("/display", r.handleDisplay)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// Callers shut it down via the returned http.Server.
func NewServer(addr, basePath string, ctl *controller.Controller) (*http.Server, error) {
	r := NewRouter(ctl, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type pathReq struct {
	Path string `json:"path"`
}

type runReq struct {
	Path      string `json:"path"`
	Simulator string `json:"simulator,omitempty"`
	Debug     bool   `json:"debug,omitempty"`
	Console   bool   `json:"console,omitempty"`
}

func (r *Router) handleRun(c *gin.Context) {
	var req runReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if !isSafeAbsPath(req.Path) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid path: must be absolute path without traversal"})
		return
	}
	if req.Simulator != "" && !isSafeAbsPath(req.Simulator) {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid simulator: must be absolute path without traversal"})
		return
	}
	res, err := r.ctl.Run(req.Path, controller.RunOptions{
		Simulator: req.Simulator,
		Debug:     req.Debug,
		Console:   req.Console,
	})
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (r *Router) handleInstances(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.ctl.Instances())
}

func (r *Router) handleLogs(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "path query param required"})
		return
	}
	lines := intQuery(c, "lines", controller.DefaultLogLines)
	tail, err := r.ctl.Logs(path, lines)
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, tail)
}

type recordReq struct {
	Path        string  `json:"path"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

func (r *Router) handleRecordStart(c *gin.Context) {
	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	st, err := r.ctl.StartRecording(req.Path, time.Duration(req.DurationSec*float64(time.Second)))
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (r *Router) handleRecordStop(c *gin.Context) {
	var req pathReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	st, err := r.ctl.StopRecording(req.Path)
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, st)
}

func (r *Router) handleCapture(c *gin.Context) {
	var req pathReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	shot, err := r.ctl.CaptureLatest(req.Path)
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, shot)
}

func (r *Router) handleScreenshots(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "path query param required"})
		return
	}
	selector := c.DefaultQuery("selector", "all")
	shots, err := r.ctl.Screenshots(path, selector)
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, shots)
}

type tapReq struct {
	Path   string  `json:"path"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

type tapResp struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

func (r *Router) handleTap(c *gin.Context) {
	var req tapReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	cx, cy, err := r.ctl.Tap(req.Path, req.Left, req.Right, req.Top, req.Bottom)
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, tapResp{CenterX: cx, CenterY: cy})
}

type dragReq struct {
	Path       string     `json:"path"`
	From       [4]float64 `json:"from"`
	To         [4]float64 `json:"to"`
	DurationMS int        `json:"duration_ms,omitempty"`
}

func (r *Router) handleDrag(c *gin.Context) {
	var req dragReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if err := r.ctl.Drag(req.Path, req.From, req.To, req.DurationMS); err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleDisplay(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "path query param required"})
		return
	}
	info, err := r.ctl.DisplayInfo(path)
	if err != nil {
		writeJSON(c, statusFor(err), errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, info)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var nf *project.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	var snf *screenshot.NotFoundError
	if errors.As(err, &snf) {
		return http.StatusNotFound
	}
	var ic *touch.InvalidCoordinateError
	if errors.As(err, &ic) {
		return http.StatusBadRequest
	}
	if errors.Is(err, screenshot.ErrCaptureTimeout) {
		return http.StatusGatewayTimeout
	}
	if errors.Is(err, touch.ErrNoDisplayInfo) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
