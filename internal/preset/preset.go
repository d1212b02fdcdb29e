// Package preset models the persisted collection of named display presets
// and the operations that reconcile it with the live monitor topology.
package preset

import "fmt"

// Orientation is a display rotation in quarter turns, encoded 0..3.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
	LandscapeFlipped
	PortraitFlipped
)

var orientationLabels = [...]string{
	"Landscape",
	"Portrait",
	"Landscape (flipped)",
	"Portrait (flipped)",
}

// Orientations lists every valid orientation in encoding order.
func Orientations() []Orientation {
	return []Orientation{Landscape, Portrait, LandscapeFlipped, PortraitFlipped}
}

// Valid reports whether o is one of the four encodings.
func (o Orientation) Valid() bool {
	return o >= Landscape && o <= PortraitFlipped
}

func (o Orientation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationLabels[o]
}

// QuarterTurnsTo returns the number of clockwise quarter turns (0..3) needed
// to go from o to target.
func (o Orientation) QuarterTurnsTo(target Orientation) int {
	return ((int(target)-int(o))%4 + 4) % 4
}

// SwapsAxes reports whether rotating from o to target exchanges width and
// height, which is the case for an odd number of quarter turns.
func (o Orientation) SwapsAxes(target Orientation) bool {
	return o.QuarterTurnsTo(target)%2 == 1
}

// ParseOrientation accepts the numeric encoding or a case-insensitive label
// such as "portrait" or "landscape-flipped".
func ParseOrientation(s string) (Orientation, error) {
	switch normalizeOrientationLabel(s) {
	case "0", "landscape":
		return Landscape, nil
	case "1", "portrait":
		return Portrait, nil
	case "2", "landscapeflipped":
		return LandscapeFlipped, nil
	case "3", "portraitflipped":
		return PortraitFlipped, nil
	}
	return 0, fmt.Errorf("unknown orientation %q (expected 0-3, landscape, portrait, landscape-flipped, portrait-flipped)", s)
}

func normalizeOrientationLabel(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_' || r == '(' || r == ')':
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// Position is an offset in the virtual desktop.
type Position struct {
	X int
	Y int
}

// Resolution is a pixel size. It is informational only; applying a preset
// never changes it.
type Resolution struct {
	Width  int
	Height int
}

// DisplaySettings is the target configuration of one display in a preset.
type DisplaySettings struct {
	DevicePath  string
	Orientation Orientation
	Position    Position
	Resolution  Resolution
}

// Preset is a named set of display settings. Applicable is derived by the
// matcher and never persisted.
type Preset struct {
	Name       string
	Displays   []DisplaySettings
	Applicable bool
}

// FindDisplay returns the settings for devicePath. The comparison is exact.
func (p *Preset) FindDisplay(devicePath string) (DisplaySettings, bool) {
	for _, d := range p.Displays {
		if d.DevicePath == devicePath {
			return d, true
		}
	}
	return DisplaySettings{}, false
}

func (p Preset) clone() Preset {
	out := p
	out.Displays = append([]DisplaySettings(nil), p.Displays...)
	return out
}
