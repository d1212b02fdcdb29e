// Package mcp exposes the running disp instance as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Z1ni/disp/internal/ipc"
)

const (
	ServerName    = "disp"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools call.
type Daemon interface {
	Status() (*ipc.StatusData, error)
	ListPresets() (*ipc.PresetsData, error)
	ApplyPreset(name string) (*ipc.ApplyData, error)
	SavePreset(name string) (*ipc.SaveData, error)
	SetOrientation(display, orientation string) (*ipc.OrientationData, error)
	About() (*ipc.AboutData, error)
	Reload() error
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for display presets.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_presets",
		Description: "List the saved display presets in order. A preset is applicable when every display it names is connected and no other display is.",
	}, s.handleListPresets)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "apply_preset",
		Description: "Apply a saved display preset. Only orientation and position are changed; the mode of each display is kept. Fails when the preset is not applicable and warns when another change is still running.",
	}, s.handleApplyPreset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_preset",
		Description: "Save the current display layout as a preset. A preset with the same name (case-insensitive) is replaced in place.",
	}, s.handleSavePreset)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_orientation",
		Description: "Rotate one connected display. Width and height are swapped for quarter turns.",
	}, s.handleSetOrientation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "about_displays",
		Description: "Describe the connected displays: name, device path, resolution, orientation and position in the virtual desktop.",
	}, s.handleAbout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_presets",
		Description: "Re-read the preset file and the display topology.",
	}, s.handleReload)
}
