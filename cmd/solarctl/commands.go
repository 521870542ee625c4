package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/solarctl"
)

type command struct {
	global *GlobalFlags
}

// controller builds the facade honoring the global --config flag.
func (c command) controller() *solarctl.Controller {
	if c.global.ConfigPath != "" {
		return solarctl.NewWithConfig(c.global.ConfigPath)
	}
	return solarctl.New()
}

func (c command) Run(f RunFlags) error {
	res, err := c.controller().Run(f.Path, solarctl.RunOptions{
		Simulator: f.Simulator,
		Debug:     f.Debug,
		Console:   f.Console,
	})
	if err != nil {
		return err
	}
	printJSON(res)
	return nil
}

func (c command) Instances() error {
	printJSON(c.controller().Instances())
	return nil
}

func (c command) Logs(f LogsFlags) error {
	tail, err := c.controller().Logs(f.Path, f.Lines)
	if err != nil {
		return err
	}
	if tail.NoLogsYet {
		fmt.Printf("no logs yet at %s - has the project been run?\n", tail.Path)
		return nil
	}
	for _, line := range tail.Lines {
		fmt.Println(line)
	}
	return nil
}

func (c command) RecordStart(f RecordFlags) error {
	st, err := c.controller().StartRecording(f.Path, f.Duration)
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

func (c command) RecordStop(f RecordFlags) error {
	st, err := c.controller().StopRecording(f.Path)
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

func (c command) Capture(f ScreenshotFlags) error {
	shot, err := c.controller().CaptureLatest(f.Path)
	if err != nil {
		return err
	}
	printJSON(shot)
	return nil
}

func (c command) Screenshots(f ScreenshotFlags) error {
	shots, err := c.controller().Screenshots(f.Path, f.Selector)
	if err != nil {
		return err
	}
	printJSON(shots)
	return nil
}

func (c command) Tap(f TapFlags) error {
	cx, cy, err := c.controller().Tap(f.Path, f.Left, f.Right, f.Top, f.Bottom)
	if err != nil {
		return err
	}
	printJSON(map[string]float64{"center_x": cx, "center_y": cy})
	return nil
}

func (c command) Drag(f DragFlags) error {
	from, err := asBox(f.From, "from")
	if err != nil {
		return err
	}
	to, err := asBox(f.To, "to")
	if err != nil {
		return err
	}
	if err := c.controller().Drag(f.Path, from, to, f.Duration); err != nil {
		return err
	}
	fmt.Println("drag signaled")
	return nil
}

func (c command) Display(f ScreenshotFlags) error {
	info, err := c.controller().DisplayInfo(f.Path)
	if err != nil {
		return err
	}
	printJSON(info)
	return nil
}

func (c command) Configure(f ConfigureFlags) error {
	ctl := c.controller()
	if f.Simulator != "" {
		if _, err := os.Stat(f.Simulator); err != nil {
			return fmt.Errorf("simulator not found at %s", f.Simulator)
		}
		if err := ctl.Configure(f.Simulator); err != nil {
			return err
		}
		fmt.Printf("saved simulator: %s\n", f.Simulator)
		return nil
	}

	path, detected, needsConfirm, err := ctl.Simulator()
	if err != nil {
		return err
	}
	if len(detected) == 0 && path == "" {
		return errors.New("no simulators detected; install Solar2D or pass --simulator with the executable path")
	}
	if !needsConfirm {
		fmt.Printf("configured simulator: %s\n", path)
		return nil
	}
	fmt.Println("detected simulators:")
	for _, d := range detected {
		fmt.Printf("  %s\n", d)
	}
	if !f.Yes {
		fmt.Printf("run 'solarctl configure --yes' to save the newest, or --simulator <path> to pick one\n")
		return nil
	}
	if err := ctl.Configure(path); err != nil {
		return err
	}
	fmt.Printf("saved simulator: %s\n", path)
	return nil
}

func (c command) Serve(f ServeFlags) error {
	ctl := c.controller()
	defer ctl.Close()
	if err := attachHistory(ctl, f.HistoryDSN); err != nil {
		return err
	}
	if err := solarctl.RegisterMetricsDefault(); err != nil {
		return err
	}

	srv, err := solarctl.NewHTTPServer(f.Listen, f.BasePath, ctl)
	if err != nil {
		return err
	}
	fmt.Printf("listening on %s\n", f.Listen)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	return srv.Close()
}

func (c command) MCP(f MCPFlags) error {
	ctl := c.controller()
	if err := attachHistory(ctl, f.HistoryDSN); err != nil {
		return err
	}
	srv, err := solarctl.NewMCPServer(version, ctl)
	if err != nil {
		return err
	}
	return srv.Run(context.Background())
}
