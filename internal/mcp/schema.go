package mcp

import (
	"github.com/loykin/solarctl/internal/instrument"
	"github.com/loykin/solarctl/internal/screenshot"
)

// RunProjectInput defines the input for the run_project tool.
type RunProjectInput struct {
	Path      string `json:"path" jsonschema:"Path to the project directory or its main.lua"`
	Simulator string `json:"simulator,omitempty" jsonschema:"Simulator executable path; overrides the configured one"`
	Debug     bool   `json:"debug,omitempty" jsonschema:"Enable the runtime debugger hook"`
	Console   bool   `json:"console,omitempty" jsonschema:"Keep the simulator console window"`
}

// RunProjectOutput defines the output for the run_project tool.
type RunProjectOutput struct {
	PID        int               `json:"pid" jsonschema:"Process id of the launched simulator"`
	Slug       string            `json:"slug" jsonschema:"Stable project identifier derived from the directory name"`
	LogPath    string            `json:"log_path" jsonschema:"Where the runtime writes its log"`
	Instrument instrument.Result `json:"instrument" jsonschema:"What instrumentation was added on this run"`
}

// ListInstancesInput defines the input for the list_instances tool.
type ListInstancesInput struct{}

// InstanceSummary is one tracked simulator launch.
type InstanceSummary struct {
	Slug       string `json:"slug"`
	ProjectDir string `json:"project_dir"`
	PID        int    `json:"pid"`
	StartedAt  string `json:"started_at"`
	Status     string `json:"status"`
}

// ListInstancesOutput defines the output for the list_instances tool.
type ListInstancesOutput struct {
	Instances []InstanceSummary `json:"instances"`
	Count     int               `json:"count"`
}

// ReadLogsInput defines the input for the read_logs tool.
type ReadLogsInput struct {
	Path  string `json:"path" jsonschema:"Project directory or main.lua path"`
	Lines int    `json:"lines,omitempty" jsonschema:"Maximum number of log lines to return (default 100)"`
}

// ReadLogsOutput defines the output for the read_logs tool.
type ReadLogsOutput struct {
	Lines     []string `json:"lines"`
	NoLogsYet bool     `json:"no_logs_yet,omitempty" jsonschema:"True when the runtime has not created the log file yet"`
	LogPath   string   `json:"log_path"`
}

// StartRecordingInput defines the input for the start_recording tool.
type StartRecordingInput struct {
	Path        string  `json:"path" jsonschema:"Project directory or main.lua path"`
	DurationSec float64 `json:"duration_sec,omitempty" jsonschema:"Recording window in seconds (default 60, max 300); extends when already recording"`
}

// StartRecordingOutput defines the output for the start_recording tool.
type StartRecordingOutput struct {
	Recording bool   `json:"recording"`
	Extended  bool   `json:"extended,omitempty" jsonschema:"True when an active session was extended instead of restarted"`
	EndsAt    string `json:"ends_at,omitempty"`
}

// StopRecordingInput defines the input for the stop_recording tool.
type StopRecordingInput struct {
	Path string `json:"path" jsonschema:"Project directory or main.lua path"`
}

// StopRecordingOutput defines the output for the stop_recording tool.
type StopRecordingOutput struct {
	Recording bool   `json:"recording"`
	Note      string `json:"note,omitempty"`
}

// GetScreenshotInput defines the input for the get_screenshot tool.
type GetScreenshotInput struct {
	Path     string `json:"path" jsonschema:"Project directory or main.lua path"`
	Selector string `json:"selector,omitempty" jsonschema:"'latest' captures a fresh frame (default); 'last' returns the newest recorded one; 'all' returns every recorded one; a number returns that sequence"`
}

// ShotSummary is one screenshot file on disk.
type ShotSummary struct {
	Seq  int    `json:"seq,omitempty"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// GetScreenshotOutput defines the output for the get_screenshot tool.
type GetScreenshotOutput struct {
	Shots []ShotSummary `json:"shots"`
	Count int           `json:"count"`
}

// ListScreenshotsInput defines the input for the list_screenshots tool.
type ListScreenshotsInput struct {
	Path string `json:"path" jsonschema:"Project directory or main.lua path"`
}

// ListScreenshotsOutput defines the output for the list_screenshots tool.
type ListScreenshotsOutput struct {
	Shots []ShotSummary `json:"shots"`
	Count int           `json:"count"`
}

// SimulateTapInput defines the input for the simulate_tap tool. All four
// values are percentages of the content area.
type SimulateTapInput struct {
	Path   string  `json:"path" jsonschema:"Project directory or main.lua path"`
	Left   float64 `json:"left" jsonschema:"Left edge of the target box (0-100)"`
	Right  float64 `json:"right" jsonschema:"Right edge of the target box (0-100)"`
	Top    float64 `json:"top" jsonschema:"Top edge of the target box (0-100)"`
	Bottom float64 `json:"bottom" jsonschema:"Bottom edge of the target box (0-100)"`
}

// SimulateTapOutput defines the output for the simulate_tap tool.
type SimulateTapOutput struct {
	CenterX float64 `json:"center_x" jsonschema:"Tapped center, percent of content width"`
	CenterY float64 `json:"center_y" jsonschema:"Tapped center, percent of content height"`
}

// SimulateDragInput defines the input for the simulate_drag tool. Boxes are
// [left, right, top, bottom] percentages.
type SimulateDragInput struct {
	Path       string     `json:"path" jsonschema:"Project directory or main.lua path"`
	From       [4]float64 `json:"from" jsonschema:"Start box as [left right top bottom] percentages"`
	To         [4]float64 `json:"to" jsonschema:"End box as [left right top bottom] percentages"`
	DurationMS int        `json:"duration_ms,omitempty" jsonschema:"Gesture duration in milliseconds (default 250)"`
}

// SimulateDragOutput defines the output for the simulate_drag tool.
type SimulateDragOutput struct {
	OK bool `json:"ok"`
}

// GetDisplayInfoInput defines the input for the get_display_info tool.
type GetDisplayInfoInput struct {
	Path string `json:"path" jsonschema:"Project directory or main.lua path"`
}

// GetDisplayInfoOutput defines the output for the get_display_info tool.
type GetDisplayInfoOutput struct {
	ContentWidth        float64 `json:"contentWidth"`
	ContentHeight       float64 `json:"contentHeight"`
	ActualContentWidth  float64 `json:"actualContentWidth"`
	ActualContentHeight float64 `json:"actualContentHeight"`
	ScreenOriginX       float64 `json:"screenOriginX"`
	ScreenOriginY       float64 `json:"screenOriginY"`
}

// ConfigureInput defines the input for the configure_simulator tool.
type ConfigureInput struct {
	Simulator string `json:"simulator,omitempty" jsonschema:"Simulator executable path to save; omit to auto-detect"`
}

// ConfigureOutput defines the output for the configure_simulator tool.
type ConfigureOutput struct {
	Simulator string   `json:"simulator,omitempty" jsonschema:"The path now in effect"`
	Detected  []string `json:"detected,omitempty" jsonschema:"Installed simulators found by auto-detection"`
	Saved     bool     `json:"saved"`
}

func shotSummaries(shots []screenshot.Shot) []ShotSummary {
	out := make([]ShotSummary, 0, len(shots))
	for _, s := range shots {
		out = append(out, ShotSummary{Seq: s.Seq, Path: s.Path, Size: s.Size})
	}
	return out
}
