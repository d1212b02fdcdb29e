package display

import (
	"context"
	"fmt"
	"sync"
)

// Call records one SetMode invocation on a Fake.
type Call struct {
	DevicePath string
	Change     ModeChange
}

// Fake is an in-memory Backend. SetMode updates the stored monitor the way a
// display server would, unless a failure was injected for that device.
type Fake struct {
	mu       sync.Mutex
	monitors []Monitor
	fail     map[string]error
	calls    []Call
	listErr  error
	onChange []func()

	// BeforeSetMode, when set, runs at the start of every SetMode call.
	BeforeSetMode func(devicePath string)
}

var _ Backend = (*Fake)(nil)

// NewFake returns a Fake holding the given monitors.
func NewFake(monitors ...Monitor) *Fake {
	f := &Fake{fail: make(map[string]error)}
	f.monitors = append(f.monitors, monitors...)
	return f
}

// Monitors returns the stored monitors normalized.
func (f *Fake) Monitors() (Topology, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return Normalize(f.monitors), nil
}

// SetMode applies change to the monitor with the given device path.
func (f *Fake) SetMode(devicePath string, change ModeChange) error {
	if hook := f.BeforeSetMode; hook != nil {
		hook(devicePath)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{DevicePath: devicePath, Change: change})
	if err := f.fail[devicePath]; err != nil {
		return err
	}
	for i := range f.monitors {
		m := &f.monitors[i]
		if m.DevicePath != devicePath {
			continue
		}
		if change.Has(FieldOrientation) {
			m.Orientation = change.Orientation
		}
		if change.Has(FieldPosition) {
			m.X, m.Y = change.X, change.Y
		}
		if change.Has(FieldWidth) {
			m.Width = change.Width
		}
		if change.Has(FieldHeight) {
			m.Height = change.Height
		}
		return nil
	}
	return fmt.Errorf("no output named %q", devicePath)
}

// Watch registers onChange for Trigger and blocks until ctx is done.
func (f *Fake) Watch(ctx context.Context, onChange func()) error {
	f.mu.Lock()
	f.onChange = append(f.onChange, onChange)
	f.mu.Unlock()
	<-ctx.Done()
	return nil
}

// Close does nothing.
func (f *Fake) Close() error { return nil }

// FailOn makes SetMode for devicePath return err. A nil err clears it.
func (f *Fake) FailOn(devicePath string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, devicePath)
		return
	}
	f.fail[devicePath] = err
}

// FailList makes Monitors return err. A nil err clears it.
func (f *Fake) FailList(err error) {
	f.mu.Lock()
	f.listErr = err
	f.mu.Unlock()
}

// SetMonitors replaces the stored monitors, as if outputs were plugged or
// unplugged.
func (f *Fake) SetMonitors(monitors ...Monitor) {
	f.mu.Lock()
	f.monitors = append([]Monitor(nil), monitors...)
	f.mu.Unlock()
}

// Trigger calls every callback registered through Watch.
func (f *Fake) Trigger() {
	f.mu.Lock()
	hooks := append([]func(){}, f.onChange...)
	f.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Calls returns the recorded SetMode calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// ResetCalls forgets the recorded calls.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}
