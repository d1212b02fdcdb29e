// Package tui is a terminal preset picker for a running disp instance.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/Z1ni/disp/internal/ipc"
)

// Client is the part of the IPC client the TUI uses.
type Client interface {
	Status() (*ipc.StatusData, error)
	ListPresets() (*ipc.PresetsData, error)
	ApplyPreset(name string) (*ipc.ApplyData, error)
	SavePreset(name string) (*ipc.SaveData, error)
	SetOrientation(display, orientation string) (*ipc.OrientationData, error)
	About() (*ipc.AboutData, error)
	Reload() error
}

var _ Client = (*ipc.Client)(nil)

// Run starts the TUI and blocks until the user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
