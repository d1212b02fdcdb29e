package mcp

// ListPresetsInput is the input for the list_presets tool.
type ListPresetsInput struct {
	ApplicableOnly bool `json:"applicable_only,omitempty" jsonschema:"When true, list only presets that match the connected displays"`
}

// PresetSummary describes one preset.
type PresetSummary struct {
	Name       string           `json:"name"`
	Applicable bool             `json:"applicable"`
	Displays   []DisplaySetting `json:"displays"`
}

// DisplaySetting is the stored configuration of one display in a preset.
type DisplaySetting struct {
	Display     string `json:"display"`
	Orientation string `json:"orientation"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// ListPresetsOutput is the output for the list_presets tool.
type ListPresetsOutput struct {
	Presets []PresetSummary `json:"presets"`
}

// PresetNameInput is the input for apply_preset and save_preset.
type PresetNameInput struct {
	Name string `json:"name" jsonschema:"required,Preset name. Matching is case-insensitive."`
}

// ApplyPresetOutput is the output for the apply_preset tool.
type ApplyPresetOutput struct {
	Preset    string   `json:"preset"`
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    []string `json:"failed,omitempty"`
	Message   string   `json:"message"`
}

// SavePresetOutput is the output for the save_preset tool.
type SavePresetOutput struct {
	Name     string `json:"name"`
	Replaced bool   `json:"replaced"`
	Displays int    `json:"displays"`
}

// SetOrientationInput is the input for the set_orientation tool.
type SetOrientationInput struct {
	Display     string `json:"display" jsonschema:"required,Device path of the display as reported by about_displays"`
	Orientation string `json:"orientation" jsonschema:"required,0-3 or one of landscape, portrait, landscape-flipped, portrait-flipped"`
}

// SetOrientationOutput is the output for the set_orientation tool.
type SetOrientationOutput struct {
	Display     string `json:"display"`
	Orientation string `json:"orientation"`
	Changed     bool   `json:"changed"`
}

// AboutInput is the input for the about_displays tool.
type AboutInput struct{}

// MonitorSummary describes one connected display.
type MonitorSummary struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Display     string `json:"display"`
	Orientation string `json:"orientation"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// AboutOutput is the output for the about_displays tool.
type AboutOutput struct {
	VirtualWidth  int              `json:"virtual_width"`
	VirtualHeight int              `json:"virtual_height"`
	Monitors      []MonitorSummary `json:"monitors"`
}

// ReloadInput is the input for the reload_presets tool.
type ReloadInput struct{}

// ReloadOutput is the output for the reload_presets tool.
type ReloadOutput struct {
	Presets    int `json:"presets"`
	Applicable int `json:"applicable"`
}
