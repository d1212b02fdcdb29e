package preset

import "github.com/Z1ni/disp/internal/disperr"

// MonitorState is what the builder needs to know about one live monitor.
type MonitorState struct {
	DevicePath  string
	Orientation Orientation
	Position    Position
	Resolution  Resolution
}

// Build captures the given monitors into a new preset named name.
func Build(name string, monitors []MonitorState) (Preset, error) {
	if err := ValidateName(name); err != nil {
		return Preset{}, disperr.Wrap(disperr.KindInvalid, "build preset", err)
	}
	if len(monitors) == 0 {
		return Preset{}, disperr.New(disperr.KindInvalid, "build preset", "no monitors connected")
	}

	p := Preset{
		Name:     name,
		Displays: make([]DisplaySettings, 0, len(monitors)),
	}
	seen := make(map[string]struct{}, len(monitors))
	for _, m := range monitors {
		if m.DevicePath == "" {
			return Preset{}, disperr.New(disperr.KindInvalid, "build preset", "monitor without a device path")
		}
		if _, dup := seen[m.DevicePath]; dup {
			return Preset{}, disperr.New(disperr.KindInvalid, "build preset", "device path %q reported twice", m.DevicePath)
		}
		seen[m.DevicePath] = struct{}{}
		p.Displays = append(p.Displays, DisplaySettings(m))
	}
	return p, nil
}

// SaveSnapshot builds a preset from monitors and upserts it by name. An
// existing preset keeps its index; its old display list is discarded.
func (s *Store) SaveSnapshot(name string, monitors []MonitorState) (index int, replaced bool, err error) {
	p, err := Build(name, monitors)
	if err != nil {
		return -1, false, err
	}
	index, replaced = s.Upsert(p)
	return index, replaced, nil
}
