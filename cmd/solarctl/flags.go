package main

import "time"

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string // preference file (simulator path)
	LogLevel   string
	LogFile    string
}

// RunFlags holds flags for the run command.
type RunFlags struct {
	Path      string
	Simulator string
	Debug     bool
	Console   bool
}

// LogsFlags holds flags for the logs command.
type LogsFlags struct {
	Path  string
	Lines int
}

// RecordFlags holds flags for the record start/stop commands.
type RecordFlags struct {
	Path     string
	Duration time.Duration
}

// ScreenshotFlags holds flags for screenshot commands.
type ScreenshotFlags struct {
	Path     string
	Selector string
}

// TapFlags holds flags for the tap command.
type TapFlags struct {
	Path   string
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// DragFlags holds flags for the drag command.
type DragFlags struct {
	Path     string
	From     []float64
	To       []float64
	Duration int
}

// ConfigureFlags holds flags for the configure command.
type ConfigureFlags struct {
	Simulator string
	Yes       bool
}

// ServeFlags holds flags for the serve command.
type ServeFlags struct {
	Listen     string
	BasePath   string
	HistoryDSN string
}

// MCPFlags holds flags for the mcp command.
type MCPFlags struct {
	HistoryDSN string
}
