// Package apply reconfigures live monitors to match a preset.
package apply

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/Z1ni/disp/internal/disperr"
	"github.com/Z1ni/disp/internal/display"
	"github.com/Z1ni/disp/internal/preset"
)

// Failure is one monitor the display server refused to change.
type Failure struct {
	DevicePath string
	Err        error
}

// Outcome summarizes one Apply run.
type Outcome struct {
	Preset    string
	Total     int
	Succeeded int
	Failures  []Failure
}

// OK reports whether every display of the preset was applied.
func (o Outcome) OK() bool {
	return o.Succeeded == o.Total
}

func (o Outcome) String() string {
	return fmt.Sprintf("%d of %d displays changed successfully", o.Succeeded, o.Total)
}

// Err returns nil for a full success and a backend error naming every
// failed display otherwise.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	if len(o.Failures) == 0 {
		return disperr.New(disperr.KindBackend, "apply preset", "%s", o.String())
	}
	errs := make([]error, 0, len(o.Failures))
	names := make([]string, 0, len(o.Failures))
	for _, f := range o.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.DevicePath, f.Err))
		names = append(names, f.DevicePath)
	}
	return &disperr.Error{
		Kind: disperr.KindBackend,
		Op:   "apply preset",
		Err:  fmt.Errorf("%s (failed: %s): %w", o.String(), strings.Join(names, ", "), errors.Join(errs...)),
	}
}

// Applier drives the display server. Only one run may be active at a time;
// a second request is rejected with disperr.ErrInProgress instead of waiting.
type Applier struct {
	backend display.Mutator
	refresh func()
	logger  *slog.Logger

	busy atomic.Bool
}

// New returns an Applier. refresh is called once after every run, while the
// Applier is still busy, so the caller can re-read the topology.
func New(backend display.Mutator, refresh func(), logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	if refresh == nil {
		refresh = func() {}
	}
	return &Applier{backend: backend, refresh: refresh, logger: logger}
}

// Busy reports whether a run is in progress.
func (a *Applier) Busy() bool {
	return a.busy.Load()
}

// Plan computes the change that brings m to settings. The second result is
// false when m already matches and no call to the display server is needed.
// Resolution is never changed; a quarter turn only swaps the current width
// and height.
func Plan(m display.Monitor, settings preset.DisplaySettings) (display.ModeChange, bool) {
	change := display.ModeChange{
		Orientation: m.Orientation,
		X:           m.X,
		Y:           m.Y,
		Width:       m.Width,
		Height:      m.Height,
	}
	if settings.Orientation != m.Orientation {
		change.Orientation = settings.Orientation
		change.Fields |= display.FieldOrientation
		if m.Orientation.SwapsAxes(settings.Orientation) {
			change.Width, change.Height = m.Height, m.Width
			change.Fields |= display.FieldWidth | display.FieldHeight
		}
	}
	if settings.Position.X != m.X || settings.Position.Y != m.Y {
		change.X, change.Y = settings.Position.X, settings.Position.Y
		change.Fields |= display.FieldPosition
	}
	return change, !change.Empty()
}

// Apply reconfigures every display of p. A display missing from topology
// stops the run with a consistency error; display server failures are
// collected in the Outcome and the remaining displays are still attempted.
// The refresh hook runs exactly once in both cases.
func (a *Applier) Apply(p preset.Preset, topology display.Topology) (Outcome, error) {
	if !a.busy.CompareAndSwap(false, true) {
		a.logger.Warn("apply rejected, another update is running", "preset", p.Name)
		return Outcome{}, disperr.ErrInProgress
	}
	defer a.busy.Store(false)
	defer a.refresh()

	out := Outcome{Preset: p.Name, Total: len(p.Displays)}
	a.logger.Info("applying preset", "preset", p.Name, "displays", out.Total)

	for _, d := range p.Displays {
		m, ok := topology.Find(d.DevicePath)
		if !ok {
			err := disperr.New(disperr.KindConsistency, "apply preset", "display %q from preset %q is not connected", d.DevicePath, p.Name)
			a.logger.Error("preset no longer matches topology", "preset", p.Name, "display", d.DevicePath)
			return out, err
		}

		if err := a.change(m, d); err != nil {
			out.Failures = append(out.Failures, Failure{DevicePath: d.DevicePath, Err: err})
			continue
		}
		out.Succeeded++
	}

	if out.OK() {
		a.logger.Info("preset applied", "preset", p.Name, "result", out.String())
	} else {
		a.logger.Warn("preset partially applied", "preset", p.Name, "result", out.String())
	}
	return out, nil
}

// SetOrientation rotates a single monitor. It reports false when the
// monitor already has the requested orientation.
func (a *Applier) SetOrientation(m display.Monitor, o preset.Orientation) (bool, error) {
	if !o.Valid() {
		return false, disperr.New(disperr.KindInvalid, "set orientation", "orientation %d out of range (0-3)", int(o))
	}
	if !a.busy.CompareAndSwap(false, true) {
		return false, disperr.ErrInProgress
	}
	defer a.busy.Store(false)

	if m.Orientation == o {
		return false, nil
	}
	defer a.refresh()

	settings := preset.DisplaySettings(m.State())
	settings.Orientation = o
	if err := a.change(m, settings); err != nil {
		return false, &disperr.Error{Kind: disperr.KindBackend, Op: "set orientation", Path: m.DevicePath, Err: err}
	}
	a.logger.Info("orientation changed", "display", m.DevicePath, "orientation", o.String())
	return true, nil
}

func (a *Applier) change(m display.Monitor, d preset.DisplaySettings) error {
	change, dirty := Plan(m, d)
	if !dirty {
		a.logger.Debug("display already matches", "display", d.DevicePath)
		return nil
	}
	a.logger.Debug("changing display", "display", d.DevicePath, "fields", change.Fields.String(),
		"orientation", change.Orientation.String(), "x", change.X, "y", change.Y,
		"width", change.Width, "height", change.Height)
	if err := a.backend.SetMode(d.DevicePath, change); err != nil {
		a.logger.Error("display change failed", "display", d.DevicePath, "error", err)
		return err
	}
	return nil
}
