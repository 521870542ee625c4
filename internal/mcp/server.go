// Package mcp exposes the session controller as an MCP (Model Context
// Protocol) server over stdio, so coding agents can drive the simulator.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/loykin/solarctl/internal/controller"
)

// Server wraps the MCP SDK server around a session controller.
type Server struct {
	server *sdk.Server
	ctl    *controller.Controller
}

// Config holds server configuration.
type Config struct {
	Name    string // server name, e.g. "solarctl"
	Version string
}

// NewServer creates an MCP server exposing the controller's operations as
// tools.
func NewServer(cfg *Config, ctl *controller.Controller) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{server: mcpServer, ctl: ctl}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until the client disconnects or the context is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.ctl.Close()
	return err
}
