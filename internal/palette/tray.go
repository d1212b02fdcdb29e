package palette

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Z1ni/disp/internal/preset"
)

// ActionKind identifies what a tray menu selection asks for.
type ActionKind int

const (
	ActionApply ActionKind = iota + 1
	ActionSave
	ActionOrient
	ActionAbout
	ActionReload
)

// Action is a decoded tray menu selection.
type Action struct {
	Kind        ActionKind
	Preset      string
	Display     string
	Orientation preset.Orientation
}

// Encode returns the menu action identifier for a.
func (a Action) Encode() string {
	switch a.Kind {
	case ActionApply:
		return "apply:" + a.Preset
	case ActionSave:
		return "save"
	case ActionOrient:
		return "orient:" + strconv.Itoa(int(a.Orientation)) + ":" + a.Display
	case ActionAbout:
		return "about"
	case ActionReload:
		return "reload"
	}
	return ""
}

// ParseAction decodes an identifier produced by Encode.
func ParseAction(s string) (Action, error) {
	verb, rest, _ := strings.Cut(s, ":")
	switch verb {
	case "apply":
		if rest == "" {
			return Action{}, fmt.Errorf("menu action %q has no preset", s)
		}
		return Action{Kind: ActionApply, Preset: rest}, nil
	case "orient":
		num, device, ok := strings.Cut(rest, ":")
		if !ok || device == "" {
			return Action{}, fmt.Errorf("menu action %q has no display", s)
		}
		o, err := preset.ParseOrientation(num)
		if err != nil {
			return Action{}, err
		}
		return Action{Kind: ActionOrient, Display: device, Orientation: o}, nil
	case "save":
		return Action{Kind: ActionSave}, nil
	case "about":
		return Action{Kind: ActionAbout}, nil
	case "reload":
		return Action{Kind: ActionReload}, nil
	}
	return Action{}, fmt.Errorf("unknown menu action %q", s)
}

// TrayPreset is a preset as the tray menu shows it.
type TrayPreset struct {
	Name       string
	Applicable bool
}

// TrayDisplay is a connected display as the tray menu shows it.
type TrayDisplay struct {
	Display     string
	Name        string
	Orientation preset.Orientation
}

// TrayState is everything the tray menu is built from.
type TrayState struct {
	Version  string
	Presets  []TrayPreset
	Displays []TrayDisplay
}

// BuildTrayMenu lays out the tray menu: one orientation submenu per display,
// then the about entry and the config submenu. Only applicable presets are
// offered.
func BuildTrayMenu(state TrayState) []MenuItem {
	items := []MenuItem{
		{Label: "disp " + state.Version, IsHeader: true},
		{Label: "────────", IsDivider: true},
	}

	for _, d := range state.Displays {
		orientations := make([]MenuItem, 0, 4)
		for _, o := range preset.Orientations() {
			orientations = append(orientations, MenuItem{
				Label:    o.String(),
				Action:   Action{Kind: ActionOrient, Display: d.Display, Orientation: o}.Encode(),
				IsActive: o == d.Orientation,
			})
		}
		items = append(items, MenuItem{
			Label:   fmt.Sprintf("%s (%s)", d.Name, d.Orientation),
			Icon:    "video-display",
			Meta:    d.Display,
			Submenu: []MenuItem{{Label: "Orientation", Submenu: orientations}},
		})
	}

	config := []MenuItem{
		{Label: "Save current configuration…", Action: Action{Kind: ActionSave}.Encode(), Icon: "document-save"},
		{Label: "────────", IsDivider: true},
		{Label: "Saved configurations", IsHeader: true},
	}
	applicable := 0
	for _, p := range state.Presets {
		if !p.Applicable {
			continue
		}
		applicable++
		config = append(config, MenuItem{Label: p.Name, Action: Action{Kind: ActionApply, Preset: p.Name}.Encode()})
	}
	if applicable == 0 {
		config = append(config, MenuItem{Label: "None", IsHeader: true})
	}
	config = append(config,
		MenuItem{Label: "────────", IsDivider: true},
		MenuItem{Label: "Reload presets", Action: Action{Kind: ActionReload}.Encode(), Icon: "view-refresh"},
	)

	items = append(items,
		MenuItem{Label: "────────", IsDivider: true},
		MenuItem{Label: "About displays", Action: Action{Kind: ActionAbout}.Encode(), Icon: "help-about"},
		MenuItem{Label: "Config", Icon: "preferences-desktop-display", Submenu: config},
	)
	return items
}
