// Package app ties the preset store, the display backend and the applier
// together into the state of one running disp instance.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Z1ni/disp/internal/apply"
	"github.com/Z1ni/disp/internal/config"
	"github.com/Z1ni/disp/internal/disperr"
	"github.com/Z1ni/disp/internal/display"
	"github.com/Z1ni/disp/internal/events"
	"github.com/Z1ni/disp/internal/logging"
	"github.com/Z1ni/disp/internal/preset"
)

// Options configures New.
type Options struct {
	ConfigPath string
	Backend    display.Backend
	// Bus receives state changes. A private bus is created when nil.
	Bus    *events.Bus
	Logger *slog.Logger
}

// App is the state of a running instance. All methods are safe for
// concurrent use; the store and the topology are guarded by one mutex, and
// display changes are serialized by the applier.
type App struct {
	configPath string
	backend    display.Backend
	applier    *apply.Applier
	bus        *events.Bus
	logger     *slog.Logger
	instanceID string
	started    time.Time

	mu       sync.Mutex
	store    *preset.Store
	topology display.Topology

	droppedLog rate.Sometimes
}

// New creates an App. Start must be called before use.
func New(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	a := &App{
		configPath: opts.ConfigPath,
		backend:    opts.Backend,
		bus:        bus,
		logger:     logger,
		instanceID: uuid.NewString(),
		store:      preset.NewStore(),
		droppedLog: rate.Sometimes{Interval: 5 * time.Second},
	}
	a.applier = apply.New(opts.Backend, a.refreshTopology, logger.With("component", "applier"))
	return a
}

// InstanceID identifies this process in IPC status replies.
func (a *App) InstanceID() string { return a.instanceID }

// ConfigPath returns the preset document path.
func (a *App) ConfigPath() string { return a.configPath }

// Bus returns the event bus of the instance.
func (a *App) Bus() *events.Bus { return a.bus }

// Start creates the preset document when missing, reads it, takes the
// first topology snapshot and flags applicable presets.
func (a *App) Start() error {
	a.started = time.Now()

	created, err := config.EnsureFile(a.configPath)
	if err != nil {
		return fmt.Errorf("could not create a config file: %w", err)
	}
	if created {
		a.logger.Info("config file was created", "path", a.configPath)
	}

	a.mu.Lock()
	if err := a.snapshotLocked(); err != nil {
		a.mu.Unlock()
		return err
	}
	a.logger.Info("reading config", "path", a.configPath)
	if err := config.ReadInto(a.store, a.configPath); err != nil {
		a.mu.Unlock()
		return fmt.Errorf("could not read configuration file: %w", err)
	}
	applicable := a.store.Match(a.topology.DevicePaths())
	notify := a.store.NotifyOnStart
	presets := len(a.store.Presets)
	a.mu.Unlock()

	a.logger.Info("ready", "presets", presets, "applicable", applicable, "instance", a.instanceID)
	a.bus.Publish(events.Event{Kind: events.Started, Notify: notify})
	return nil
}

// snapshotLocked re-reads the topology. a.mu must be held.
func (a *App) snapshotLocked() error {
	topo, err := a.backend.Monitors()
	if err != nil {
		return disperr.Wrap(disperr.KindBackend, "enumerate displays", err)
	}
	a.topology = topo
	for _, m := range topo {
		logging.Trace(a.logger, "monitor", "number", m.Number, "display", m.DevicePath, "name", m.FriendlyName,
			"orientation", m.Orientation.String(), "x", m.X, "y", m.Y, "width", m.Width, "height", m.Height)
	}
	return nil
}

// refreshTopology is the applier's post-run hook.
func (a *App) refreshTopology() {
	a.mu.Lock()
	err := a.snapshotLocked()
	if err == nil {
		a.store.Match(a.topology.DevicePaths())
	}
	a.mu.Unlock()

	if err != nil {
		a.logger.Error("failed to refresh displays", "error", err)
		return
	}
	a.bus.Publish(events.Event{Kind: events.TopologyChanged})
}

// Reload re-reads the topology and the preset document. A document that
// fails to read leaves the previous presets in place and is reported.
func (a *App) Reload() error {
	a.logger.Debug("reloading")
	a.mu.Lock()
	snapErr := a.snapshotLocked()
	readErr := config.ReadInto(a.store, a.configPath)
	a.store.Match(a.topology.DevicePaths())
	a.mu.Unlock()

	if readErr != nil {
		a.logger.Error("could not read configuration file", "error", readErr)
		a.bus.Publish(events.Event{Kind: events.ConfigError, Err: readErr})
		return readErr
	}
	if snapErr != nil {
		a.logger.Error("failed to enumerate displays", "error", snapErr)
		return snapErr
	}
	a.bus.Publish(events.Event{Kind: events.ConfigReloaded})
	return nil
}

// ConfigChanged handles an edit of the preset document on disk.
func (a *App) ConfigChanged() {
	a.logger.Info("config file changed, reloading", "path", a.configPath)
	_ = a.Reload()
}

// TopologyChanged handles a display change notification from the backend.
// Notifications that arrive while presets are being applied are dropped; the
// applier refreshes the topology when it finishes.
func (a *App) TopologyChanged() {
	if a.applier.Busy() {
		a.droppedLog.Do(func() {
			a.logger.Debug("display change ignored while applying a preset")
		})
		return
	}
	a.refreshTopology()
}

// PresetInfo describes one preset for menus and IPC replies.
type PresetInfo struct {
	Name       string
	Applicable bool
	Displays   []preset.DisplaySettings
}

// Presets lists the presets in document order with their applicability.
func (a *App) Presets() []PresetInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	all := a.store.All()
	out := make([]PresetInfo, len(all))
	for i, p := range all {
		out[i] = PresetInfo{Name: p.Name, Applicable: p.Applicable, Displays: p.Displays}
	}
	return out
}

// Topology returns the last display snapshot.
func (a *App) Topology() display.Topology {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append(display.Topology(nil), a.topology...)
}

// LastError returns the error of the last failed document read or write.
func (a *App) LastError() *disperr.Error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.LastError
}

// ApplyPreset reconfigures the displays to the named preset. A busy applier
// yields disperr.ErrInProgress, which callers report as a warning.
func (a *App) ApplyPreset(name string) (apply.Outcome, error) {
	a.mu.Lock()
	idx, ok := a.store.FindPresetIndex(name)
	if !ok {
		a.mu.Unlock()
		return apply.Outcome{}, disperr.New(disperr.KindInvalid, "apply preset", "no preset named %q", name)
	}
	p := a.store.Presets[idx]
	topo := append(display.Topology(nil), a.topology...)
	a.mu.Unlock()

	if !p.Applicable {
		return apply.Outcome{}, disperr.New(disperr.KindConsistency, "apply preset", "preset %q does not match the connected displays", p.Name)
	}

	a.logger.Info("changing display preset", "preset", p.Name)
	out, err := a.applier.Apply(p, topo)
	switch {
	case errors.Is(err, disperr.ErrInProgress):
		a.bus.Publish(events.Event{Kind: events.PresetApplyRejected, Preset: p.Name, Err: err})
		return out, err
	case err != nil:
		a.bus.Publish(events.Event{Kind: events.PresetApplyFailed, Preset: p.Name, Detail: out.String(), Err: err})
		return out, err
	}
	if err := out.Err(); err != nil {
		a.bus.Publish(events.Event{Kind: events.PresetApplyFailed, Preset: p.Name, Detail: out.String(), Err: err})
		return out, err
	}
	a.bus.Publish(events.Event{Kind: events.PresetApplied, Preset: p.Name, Detail: out.String()})
	return out, nil
}

// SaveResult reports where a saved preset landed.
type SaveResult struct {
	Name     string
	Index    int
	Replaced bool
	Displays int
}

// SaveCurrentAsPreset captures the current layout under name, replacing a
// preset with the same name, and writes the document. When the write fails
// the in-memory presets are left as they were.
func (a *App) SaveCurrentAsPreset(name string) (SaveResult, error) {
	a.mu.Lock()
	if err := a.snapshotLocked(); err != nil {
		a.mu.Unlock()
		a.bus.Publish(events.Event{Kind: events.PresetSaveFailed, Preset: name, Err: err})
		return SaveResult{}, err
	}

	before := a.store.Clone()
	idx, replaced, err := a.store.SaveSnapshot(name, a.topology.Snapshots())
	if err != nil {
		a.mu.Unlock()
		a.bus.Publish(events.Event{Kind: events.PresetSaveFailed, Preset: name, Err: err})
		return SaveResult{}, err
	}
	saved := a.store.Presets[idx]

	if err := config.Write(a.configPath, a.store); err != nil {
		lastErr := a.store.LastError
		a.store.Replace(before)
		a.store.LastError = lastErr
		a.store.Match(a.topology.DevicePaths())
		a.mu.Unlock()
		a.logger.Error("could not save preset", "preset", name, "error", err)
		a.bus.Publish(events.Event{Kind: events.PresetSaveFailed, Preset: name, Err: err})
		return SaveResult{}, err
	}
	a.store.Match(a.topology.DevicePaths())
	a.mu.Unlock()

	if replaced {
		a.logger.Info("preset replaced", "preset", saved.Name, "index", idx)
	} else {
		a.logger.Info("preset saved", "preset", saved.Name, "index", idx)
	}
	a.bus.Publish(events.Event{Kind: events.PresetSaved, Preset: saved.Name})
	return SaveResult{Name: saved.Name, Index: idx, Replaced: replaced, Displays: len(saved.Displays)}, nil
}

// SetOrientation rotates one display. It reports false when the display
// already had the requested orientation.
func (a *App) SetOrientation(devicePath string, o preset.Orientation) (bool, error) {
	a.mu.Lock()
	m, ok := a.topology.Find(devicePath)
	a.mu.Unlock()
	if !ok {
		return false, disperr.New(disperr.KindInvalid, "set orientation", "no connected display %q", devicePath)
	}

	changed, err := a.applier.SetOrientation(m, o)
	if err != nil {
		if errors.Is(err, disperr.ErrInProgress) {
			a.bus.Publish(events.Event{Kind: events.PresetApplyRejected, Display: m.Label(), Err: err})
		}
		return false, err
	}
	if changed {
		a.bus.Publish(events.Event{Kind: events.OrientationChanged, Display: m.Label(), Orientation: o.String()})
	}
	return changed, nil
}

// Status summarizes the instance.
type Status struct {
	InstanceID string
	ConfigPath string
	Uptime     time.Duration
	Displays   int
	Presets    int
	Applicable int
	Busy       bool
	LastError  string
}

// Status returns a summary of the instance.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := Status{
		InstanceID: a.instanceID,
		ConfigPath: a.configPath,
		Uptime:     time.Since(a.started),
		Displays:   len(a.topology),
		Presets:    len(a.store.Presets),
		Busy:       a.applier.Busy(),
	}
	for _, p := range a.store.Presets {
		if p.Applicable {
			st.Applicable++
		}
	}
	if a.store.LastError != nil {
		st.LastError = a.store.LastError.Error()
	}
	return st
}
