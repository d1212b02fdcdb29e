//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/Z1ni/disp/internal/display"
	"github.com/Z1ni/disp/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the display.Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ display.Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, fmt.Errorf("failed to connect to X11: DISPLAY is not set")
	}
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

func newBackend() (display.Backend, error) {
	return NewLinuxBackendFromDisplay()
}

// Monitors lists the active RandR outputs.
func (b *LinuxBackend) Monitors() (display.Topology, error) {
	return b.conn.GetMonitors()
}

// SetMode reconfigures one output.
func (b *LinuxBackend) SetMode(devicePath string, change display.ModeChange) error {
	return b.conn.SetMode(devicePath, change)
}

// Watch reports RandR layout changes until ctx is cancelled.
func (b *LinuxBackend) Watch(ctx context.Context, onChange func()) error {
	return b.conn.Watch(ctx, onChange)
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}
