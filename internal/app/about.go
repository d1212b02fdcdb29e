package app

import (
	"fmt"
	"strings"

	"github.com/Z1ni/disp/internal/display"
)

// AboutReport describes the connected displays.
type AboutReport struct {
	Virtual  display.Bounds
	Monitors []display.Monitor
}

// About re-reads the topology and describes it.
func (a *App) About() (AboutReport, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.snapshotLocked(); err != nil {
		return AboutReport{}, err
	}
	a.store.Match(a.topology.DevicePaths())
	return AboutReport{
		Virtual:  a.topology.VirtualBounds(),
		Monitors: append([]display.Monitor(nil), a.topology...),
	}, nil
}

func (r AboutReport) String() string {
	var b strings.Builder
	b.WriteString("Display information:\n\n")
	fmt.Fprintf(&b, "Displays: %d\n", len(r.Monitors))
	fmt.Fprintf(&b, "Virtual resolution: %dx%d\n", r.Virtual.Width, r.Virtual.Height)
	for _, m := range r.Monitors {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d: %s\n", m.Number, m.Label())
		fmt.Fprintf(&b, "  Device ID: %s\n", m.DevicePath)
		fmt.Fprintf(&b, "  Resolution: %dx%d\n", m.Width, m.Height)
		fmt.Fprintf(&b, "  Orientation: %s\n", m.Orientation)
		fmt.Fprintf(&b, "  Virtual position: (%d, %d)\n", m.X, m.Y)
	}
	return b.String()
}
