package events

import "fmt"

// Kind identifies what happened.
type Kind int

const (
	Started Kind = iota
	PresetApplied
	PresetApplyFailed
	PresetApplyRejected
	OrientationChanged
	PresetSaved
	PresetSaveFailed
	ConfigReloaded
	ConfigError
	TopologyChanged
)

func (k Kind) String() string {
	switch k {
	case Started:
		return "started"
	case PresetApplied:
		return "preset-applied"
	case PresetApplyFailed:
		return "preset-apply-failed"
	case PresetApplyRejected:
		return "preset-apply-rejected"
	case OrientationChanged:
		return "orientation-changed"
	case PresetSaved:
		return "preset-saved"
	case PresetSaveFailed:
		return "preset-save-failed"
	case ConfigReloaded:
		return "config-reloaded"
	case ConfigError:
		return "config-error"
	case TopologyChanged:
		return "topology-changed"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is one state change. Fields that do not apply to Kind are empty.
type Event struct {
	Kind        Kind
	Preset      string
	Display     string
	Orientation string
	// Detail is a human-readable result, e.g. "2 of 3 displays changed successfully".
	Detail string
	Err    error
	// Notify is set when the user asked to hear about the event, for example
	// the start event with notify_on_start enabled.
	Notify bool
}

// Text renders the event the way it is shown to users.
func (e Event) Text() string {
	switch e.Kind {
	case Started:
		return "Display settings manager is running"
	case PresetApplied:
		return fmt.Sprintf("Changed display preset to %q", e.Preset)
	case PresetApplyFailed:
		return fmt.Sprintf("Failed to change display preset to %q", e.Preset)
	case PresetApplyRejected:
		return "Display update already in progress"
	case OrientationChanged:
		return fmt.Sprintf("Changed display %s orientation to %s", e.Display, e.Orientation)
	case PresetSaved:
		return fmt.Sprintf("Preset %q was saved", e.Preset)
	case PresetSaveFailed:
		return fmt.Sprintf("Failed to save preset %q", e.Preset)
	case ConfigReloaded:
		return "Presets reloaded"
	case ConfigError:
		return "Failed to load presets"
	case TopologyChanged:
		return "Display layout changed"
	}
	return e.Kind.String()
}

// Failed reports whether the event describes an error.
func (e Event) Failed() bool {
	switch e.Kind {
	case PresetApplyFailed, PresetSaveFailed, ConfigError:
		return true
	}
	return false
}
