package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/loykin/solarctl/internal/controller"
)

// registerTools registers the session tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "run_project",
		Description: "Instrument a Solar2D project and launch it in the simulator",
	}, s.handleRunProject)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_instances",
		Description: "List launched simulator instances with their liveness",
	}, s.handleListInstances)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "read_logs",
		Description: "Read the tail of a project's runtime log",
	}, s.handleReadLogs)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "start_recording",
		Description: "Start recording screenshots each frame render; extends the window when already recording",
	}, s.handleStartRecording)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "stop_recording",
		Description: "Stop the screenshot recording session",
	}, s.handleStopRecording)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_screenshot",
		Description: "Get screenshots: capture a fresh one ('latest'), or fetch recorded ones ('last', 'all', or a sequence number)",
	}, s.handleGetScreenshot)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_screenshots",
		Description: "List recorded screenshots with sizes",
	}, s.handleListScreenshots)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simulate_tap",
		Description: "Tap the center of a bounding box given as content-area percentages",
	}, s.handleSimulateTap)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "simulate_drag",
		Description: "Drag between the centers of two bounding boxes given as content-area percentages",
	}, s.handleSimulateDrag)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "get_display_info",
		Description: "Get the runtime's display metrics (content size, origin) for coordinate math",
	}, s.handleGetDisplayInfo)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "configure_simulator",
		Description: "Save the simulator executable path, or auto-detect installed simulators",
	}, s.handleConfigure)
}

// registerResources registers read-only resources.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "solarctl://instances",
		Name:        "solarctl-instances",
		Description: "Currently tracked simulator launches.",
		MIMEType:    "text/markdown",
	}, s.handleInstancesResource)
}

func (s *Server) handleInstancesResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	instances := s.ctl.Instances()

	var sb strings.Builder
	sb.WriteString("# Simulator Instances\n\n")
	if len(instances) == 0 {
		sb.WriteString("No simulators launched yet. Use `run_project` to start one.\n")
	}
	for _, inst := range instances {
		sb.WriteString(fmt.Sprintf("- **%s** pid=%d status=%s started=%s\n",
			inst.Slug, inst.PID, inst.Status, inst.StartedAt.Format(time.RFC3339)))
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      "solarctl://instances",
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

func (s *Server) handleRunProject(ctx context.Context, req *sdk.CallToolRequest, args RunProjectInput) (*sdk.CallToolResult, RunProjectOutput, error) {
	res, err := s.ctl.Run(args.Path, controller.RunOptions{
		Simulator: args.Simulator,
		Debug:     args.Debug,
		Console:   args.Console,
	})
	if err != nil {
		return nil, RunProjectOutput{}, err
	}
	return nil, RunProjectOutput{
		PID:        res.Instance.PID,
		Slug:       res.Instance.Slug,
		LogPath:    res.LogPath,
		Instrument: res.Instrument,
	}, nil
}

func (s *Server) handleListInstances(ctx context.Context, req *sdk.CallToolRequest, args ListInstancesInput) (*sdk.CallToolResult, ListInstancesOutput, error) {
	instances := s.ctl.Instances()
	out := ListInstancesOutput{Count: len(instances)}
	for _, inst := range instances {
		out.Instances = append(out.Instances, InstanceSummary{
			Slug:       inst.Slug,
			ProjectDir: inst.ProjectDir,
			PID:        inst.PID,
			StartedAt:  inst.StartedAt.Format(time.RFC3339),
			Status:     inst.Status,
		})
	}
	return nil, out, nil
}

func (s *Server) handleReadLogs(ctx context.Context, req *sdk.CallToolRequest, args ReadLogsInput) (*sdk.CallToolResult, ReadLogsOutput, error) {
	tail, err := s.ctl.Logs(args.Path, args.Lines)
	if err != nil {
		return nil, ReadLogsOutput{}, err
	}
	return nil, ReadLogsOutput{
		Lines:     tail.Lines,
		NoLogsYet: tail.NoLogsYet,
		LogPath:   tail.Path,
	}, nil
}

func (s *Server) handleStartRecording(ctx context.Context, req *sdk.CallToolRequest, args StartRecordingInput) (*sdk.CallToolResult, StartRecordingOutput, error) {
	st, err := s.ctl.StartRecording(args.Path, time.Duration(args.DurationSec*float64(time.Second)))
	if err != nil {
		return nil, StartRecordingOutput{}, err
	}
	out := StartRecordingOutput{Recording: st.Recording, Extended: st.Extended}
	if !st.EndTime.IsZero() {
		out.EndsAt = st.EndTime.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleStopRecording(ctx context.Context, req *sdk.CallToolRequest, args StopRecordingInput) (*sdk.CallToolResult, StopRecordingOutput, error) {
	st, err := s.ctl.StopRecording(args.Path)
	if err != nil {
		return nil, StopRecordingOutput{}, err
	}
	return nil, StopRecordingOutput{Recording: st.Recording, Note: st.Note}, nil
}

func (s *Server) handleGetScreenshot(ctx context.Context, req *sdk.CallToolRequest, args GetScreenshotInput) (*sdk.CallToolResult, GetScreenshotOutput, error) {
	shots, err := s.ctl.Screenshots(args.Path, args.Selector)
	if err != nil {
		return nil, GetScreenshotOutput{}, err
	}
	summaries := shotSummaries(shots)
	return nil, GetScreenshotOutput{Shots: summaries, Count: len(summaries)}, nil
}

func (s *Server) handleListScreenshots(ctx context.Context, req *sdk.CallToolRequest, args ListScreenshotsInput) (*sdk.CallToolResult, ListScreenshotsOutput, error) {
	shots, err := s.ctl.ListScreenshots(args.Path)
	if err != nil {
		return nil, ListScreenshotsOutput{}, err
	}
	summaries := shotSummaries(shots)
	return nil, ListScreenshotsOutput{Shots: summaries, Count: len(summaries)}, nil
}

func (s *Server) handleSimulateTap(ctx context.Context, req *sdk.CallToolRequest, args SimulateTapInput) (*sdk.CallToolResult, SimulateTapOutput, error) {
	cx, cy, err := s.ctl.Tap(args.Path, args.Left, args.Right, args.Top, args.Bottom)
	if err != nil {
		return nil, SimulateTapOutput{}, err
	}
	return nil, SimulateTapOutput{CenterX: cx, CenterY: cy}, nil
}

func (s *Server) handleSimulateDrag(ctx context.Context, req *sdk.CallToolRequest, args SimulateDragInput) (*sdk.CallToolResult, SimulateDragOutput, error) {
	if err := s.ctl.Drag(args.Path, args.From, args.To, args.DurationMS); err != nil {
		return nil, SimulateDragOutput{}, err
	}
	return nil, SimulateDragOutput{OK: true}, nil
}

func (s *Server) handleGetDisplayInfo(ctx context.Context, req *sdk.CallToolRequest, args GetDisplayInfoInput) (*sdk.CallToolResult, GetDisplayInfoOutput, error) {
	info, err := s.ctl.DisplayInfo(args.Path)
	if err != nil {
		return nil, GetDisplayInfoOutput{}, err
	}
	return nil, GetDisplayInfoOutput{
		ContentWidth:        info.ContentWidth,
		ContentHeight:       info.ContentHeight,
		ActualContentWidth:  info.ActualContentWidth,
		ActualContentHeight: info.ActualContentHeight,
		ScreenOriginX:       info.ScreenOriginX,
		ScreenOriginY:       info.ScreenOriginY,
	}, nil
}

func (s *Server) handleConfigure(ctx context.Context, req *sdk.CallToolRequest, args ConfigureInput) (*sdk.CallToolResult, ConfigureOutput, error) {
	if args.Simulator != "" {
		if err := s.ctl.Configure(args.Simulator); err != nil {
			return nil, ConfigureOutput{}, err
		}
		return nil, ConfigureOutput{Simulator: args.Simulator, Saved: true}, nil
	}

	path, detected, needsConfirm, err := s.ctl.Simulator()
	if err != nil {
		return nil, ConfigureOutput{}, err
	}
	out := ConfigureOutput{Simulator: path, Detected: detected}
	if path != "" && !needsConfirm {
		out.Saved = true
	}
	return nil, out, nil
}
