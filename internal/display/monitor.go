// Package display describes the live monitor topology and the operations the
// preset applier needs from a display server.
package display

import (
	"context"
	"fmt"
	"sort"

	"github.com/Z1ni/disp/internal/preset"
)

// Monitor is one active output as reported by the display server.
type Monitor struct {
	// DevicePath identifies the output across reboots (RandR output name on X11).
	DevicePath   string
	Output       string
	FriendlyName string
	// Number is the 1-based position after Normalize.
	Number      int
	Orientation preset.Orientation
	X           int
	Y           int
	Width       int
	Height      int
}

// State returns the part of m that a preset records.
func (m Monitor) State() preset.MonitorState {
	return preset.MonitorState{
		DevicePath:  m.DevicePath,
		Orientation: m.Orientation,
		Position:    preset.Position{X: m.X, Y: m.Y},
		Resolution:  preset.Resolution{Width: m.Width, Height: m.Height},
	}
}

// Label is the name shown to users, e.g. "DELL U2720Q (DP-1)".
func (m Monitor) Label() string {
	if m.Output == "" || m.Output == m.FriendlyName {
		return m.FriendlyName
	}
	return fmt.Sprintf("%s (%s)", m.FriendlyName, m.Output)
}

// Topology is the set of active monitors at one point in time.
type Topology []Monitor

// Find returns the monitor with the given device path. Matching is exact.
func (t Topology) Find(devicePath string) (Monitor, bool) {
	for _, m := range t {
		if m.DevicePath == devicePath {
			return m, true
		}
	}
	return Monitor{}, false
}

// DevicePaths lists the device paths in topology order.
func (t Topology) DevicePaths() []string {
	out := make([]string, len(t))
	for i, m := range t {
		out[i] = m.DevicePath
	}
	return out
}

// Snapshots converts the topology for the preset builder.
func (t Topology) Snapshots() []preset.MonitorState {
	out := make([]preset.MonitorState, len(t))
	for i, m := range t {
		out[i] = m.State()
	}
	return out
}

// Bounds is a rectangle in virtual screen coordinates.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// VirtualBounds returns the smallest rectangle covering every monitor.
func (t Topology) VirtualBounds() Bounds {
	if len(t) == 0 {
		return Bounds{}
	}
	x1, y1 := t[0].X, t[0].Y
	x2, y2 := t[0].X+t[0].Width, t[0].Y+t[0].Height
	for _, m := range t[1:] {
		x1 = min(x1, m.X)
		y1 = min(y1, m.Y)
		x2 = max(x2, m.X+m.Width)
		y2 = max(y2, m.Y+m.Height)
	}
	return Bounds{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Normalize orders monitors left to right, then top to bottom, numbers them
// from 1 and fills in missing friendly names.
func Normalize(monitors []Monitor) Topology {
	out := make(Topology, len(monitors))
	copy(out, monitors)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Y < out[j].Y
	})
	for i := range out {
		out[i].Number = i + 1
		if out[i].FriendlyName == "" {
			out[i].FriendlyName = fmt.Sprintf("Display %d", out[i].Number)
		}
	}
	return out
}

// Field is one attribute a ModeChange may set.
type Field uint8

const (
	FieldOrientation Field = 1 << iota
	FieldPosition
	FieldWidth
	FieldHeight
)

func (f Field) String() string {
	names := []struct {
		f    Field
		name string
	}{
		{FieldOrientation, "orientation"},
		{FieldPosition, "position"},
		{FieldWidth, "width"},
		{FieldHeight, "height"},
	}
	s := ""
	for _, n := range names {
		if f&n.f == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	if s == "" {
		return "none"
	}
	return s
}

// ModeChange carries the new values of a monitor. Only the attributes named
// in Fields are applied.
type ModeChange struct {
	Orientation preset.Orientation
	X           int
	Y           int
	Width       int
	Height      int
	Fields      Field
}

// Has reports whether f is set in the change.
func (c ModeChange) Has(f Field) bool {
	return c.Fields&f == f
}

// Empty reports whether the change touches nothing.
func (c ModeChange) Empty() bool {
	return c.Fields == 0
}

// Enumerator lists the active monitors.
type Enumerator interface {
	Monitors() (Topology, error)
}

// Mutator changes the mode of one monitor.
type Mutator interface {
	SetMode(devicePath string, change ModeChange) error
}

// Backend is a display server connection.
type Backend interface {
	Enumerator
	Mutator
	// Watch calls onChange whenever the monitor layout changes, until ctx is
	// cancelled.
	Watch(ctx context.Context, onChange func()) error
	Close() error
}
