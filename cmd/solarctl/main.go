package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/solarctl"
	"github.com/loykin/solarctl/internal/logger"
)

var version = "dev"

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot creates the root command and wires all subcommands.
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	runFlags := &RunFlags{}
	logsFlags := &LogsFlags{}
	recordFlags := &RecordFlags{}
	screenshotFlags := &ScreenshotFlags{}
	tapFlags := &TapFlags{}
	dragFlags := &DragFlags{}
	configureFlags := &ConfigureFlags{}
	serveFlags := &ServeFlags{}
	mcpFlags := &MCPFlags{}

	solarCommand := command{global: globalFlags}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRunCommand(solarCommand, runFlags),
		createInstancesCommand(solarCommand),
		createLogsCommand(solarCommand, logsFlags),
		createRecordCommand(solarCommand, recordFlags),
		createCaptureCommand(solarCommand, screenshotFlags),
		createScreenshotsCommand(solarCommand, screenshotFlags),
		createTapCommand(solarCommand, tapFlags),
		createDragCommand(solarCommand, dragFlags),
		createDisplayCommand(solarCommand, screenshotFlags),
		createConfigureCommand(solarCommand, configureFlags),
		createServeCommand(solarCommand, serveFlags),
		createMCPCommand(solarCommand, mcpFlags),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags.
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:     "solarctl",
		Short:   "Solar2D simulator session and instrumentation controller",
		Version: version,
		Long: `Solarctl instruments Solar2D projects, launches them in the simulator,
and drives them from outside: logs, screenshot recording, and synthetic touch.

Examples:
  solarctl run --path ./mygame
  solarctl logs --path ./mygame --lines 50
  solarctl record start --path ./mygame --duration 30s
  solarctl tap --path ./mygame --left 30 --right 50 --top 60 --bottom 70
  solarctl mcp                      # Serve tools over MCP stdio`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.Config{
				Path:  flags.LogFile,
				Level: logger.ParseLevel(flags.LogLevel),
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to preference file (optional)")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "log to file instead of stderr")
	return root
}

func createRunCommand(solarCommand command, flags *RunFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Instrument a project and launch it in the simulator",
		Long: `Run injects the logging, screenshot, and touch modules into the project
(idempotently) and launches the simulator detached.

Examples:
  solarctl run --path ./mygame
  solarctl run --path ./mygame --debug
  solarctl run --path ./mygame --simulator "/Applications/Corona-3717/Corona Simulator.app/Contents/MacOS/Corona Simulator"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Run(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	cmd.Flags().StringVar(&flags.Simulator, "simulator", "", "simulator executable; overrides the configured one")
	cmd.Flags().BoolVar(&flags.Debug, "debug", false, "enable the runtime debugger hook")
	cmd.Flags().BoolVar(&flags.Console, "console", false, "keep the simulator console window")
	mustMarkRequired(cmd, "path")
	return cmd
}

func createInstancesCommand(solarCommand command) *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "List launched simulator instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Instances()
		},
	}
}

func createLogsCommand(solarCommand command, flags *LogsFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Read the tail of a project's runtime log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Logs(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	cmd.Flags().IntVar(&flags.Lines, "lines", 100, "maximum number of lines to print")
	mustMarkRequired(cmd, "path")
	return cmd
}

func createRecordCommand(solarCommand command, flags *RecordFlags) *cobra.Command {
	record := &cobra.Command{
		Use:   "record",
		Short: "Control the screenshot recording session",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start (or extend) screenshot recording",
		Long: `Start begins capturing a screenshot on every frame render. Starting
while already recording extends the window instead of restarting it.

Examples:
  solarctl record start --path ./mygame
  solarctl record start --path ./mygame --duration 2m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.RecordStart(*flags)
		},
	}
	start.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	start.Flags().DurationVar(&flags.Duration, "duration", 0, "recording window (default 60s, max 5m)")
	mustMarkRequired(start, "path")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop screenshot recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.RecordStop(*flags)
		},
	}
	stop.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	mustMarkRequired(stop, "path")

	record.AddCommand(start, stop)
	return record
}

func createCaptureCommand(solarCommand command, flags *ScreenshotFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a fresh screenshot on demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Capture(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	mustMarkRequired(cmd, "path")
	return cmd
}

func createScreenshotsCommand(solarCommand command, flags *ScreenshotFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screenshots",
		Short: "List or fetch recorded screenshots",
		Long: `Screenshots resolves a selector against the recorded files.

Examples:
  solarctl screenshots --path ./mygame                  # list all
  solarctl screenshots --path ./mygame --selector last  # newest recorded
  solarctl screenshots --path ./mygame --selector 7     # exact sequence`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Screenshots(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	cmd.Flags().StringVar(&flags.Selector, "selector", "all", "'latest', 'last', 'all', or a sequence number")
	mustMarkRequired(cmd, "path")
	return cmd
}

func createTapCommand(solarCommand command, flags *TapFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tap",
		Short: "Tap the center of a bounding box (content-area percentages)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Tap(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	cmd.Flags().Float64Var(&flags.Left, "left", 0, "left edge percent (0-100)")
	cmd.Flags().Float64Var(&flags.Right, "right", 0, "right edge percent (0-100)")
	cmd.Flags().Float64Var(&flags.Top, "top", 0, "top edge percent (0-100)")
	cmd.Flags().Float64Var(&flags.Bottom, "bottom", 0, "bottom edge percent (0-100)")
	mustMarkRequired(cmd, "path")
	return cmd
}

func createDragCommand(solarCommand command, flags *DragFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Drag between the centers of two bounding boxes",
		Long: `Drag takes start and end boxes as left,right,top,bottom percentages.

Example:
  solarctl drag --path ./mygame --from 10,20,40,50 --to 70,80,40,50 --duration 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Drag(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	cmd.Flags().Float64SliceVar(&flags.From, "from", nil, "start box as left,right,top,bottom percentages")
	cmd.Flags().Float64SliceVar(&flags.To, "to", nil, "end box as left,right,top,bottom percentages")
	cmd.Flags().IntVar(&flags.Duration, "duration", 250, "gesture duration in milliseconds")
	mustMarkRequired(cmd, "path")
	mustMarkRequired(cmd, "from")
	mustMarkRequired(cmd, "to")
	return cmd
}

func createDisplayCommand(solarCommand command, flags *ScreenshotFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "display",
		Short: "Print the runtime's reported display metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Display(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Path, "path", "", "project directory or main.lua path (required)")
	mustMarkRequired(cmd, "path")
	return cmd
}

func createConfigureCommand(solarCommand command, flags *ConfigureFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save the simulator path, or auto-detect installed simulators",
		Long: `Configure persists the simulator executable used by run. Without
--simulator it lists detected installations; add --yes to save the newest.

Examples:
  solarctl configure
  solarctl configure --yes
  solarctl configure --simulator "/opt/Solar2D/Corona Simulator 3717/Solar2D Simulator"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Configure(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Simulator, "simulator", "", "simulator executable path to save")
	cmd.Flags().BoolVar(&flags.Yes, "yes", false, "save the newest detected simulator without prompting")
	return cmd
}

func createServeCommand(solarCommand command, flags *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the controller over HTTP",
		Long: `Serve exposes the controller's operations as a JSON HTTP API, plus
Prometheus metrics on /metrics.

Example:
  solarctl serve --listen 127.0.0.1:8170 --base-path /api`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.Serve(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.Listen, "listen", "127.0.0.1:8170", "listen address")
	cmd.Flags().StringVar(&flags.BasePath, "base-path", "", "base path for all endpoints")
	cmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "launch history sink DSN (sqlite://, postgres://, clickhouse://)")
	return cmd
}

func createMCPCommand(solarCommand command, flags *MCPFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the controller as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return solarCommand.MCP(*flags)
		},
	}
	cmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "launch history sink DSN (sqlite://, postgres://, clickhouse://)")
	return cmd
}

func mustMarkRequired(cmd *cobra.Command, name string) {
	if err := cmd.MarkFlagRequired(name); err != nil {
		panic(err)
	}
}

// sink construction shared by serve and mcp.
func attachHistory(ctl *solarctl.Controller, dsn string) error {
	if dsn == "" {
		return nil
	}
	sink, err := solarctl.NewHistorySink(dsn)
	if err != nil {
		return fmt.Errorf("history sink: %w", err)
	}
	ctl.SetHistorySinks(sink)
	return nil
}
