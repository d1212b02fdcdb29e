package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/palette"
	"github.com/Z1ni/disp/internal/preset"
	"github.com/Z1ni/disp/internal/prompt"
)

func runMenu(args []string) int {
	fs := newCommandFlags("menu",
		"Usage: disp menu [--backend NAME]",
		"",
		"Open the disp menu in a launcher: rotate displays, apply or save",
		"presets and describe the connected displays.",
		"",
		"Backends: "+strings.Join(palette.Backends, ", ")+" (default: first one found).",
	)
	backendName := fs.String("backend", "auto", "Launcher to use")
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	state, status, err := loadTrayState(client)
	if err != nil {
		return reportError(err)
	}

	menu := palette.NewMenu(backend, "disp", palette.BuildTrayMenu(state))
	menu.SetMessage(trayMessage(status))

	selection, err := menu.Show()
	if err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	action, err := palette.ParseAction(selection)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return runTrayAction(client, backend, state, action)
}

// loadTrayState collects what the menu shows from the running instance.
func loadTrayState(client *ipc.Client) (palette.TrayState, *ipc.StatusData, error) {
	state := palette.TrayState{Version: version}

	status, err := client.Status()
	if err != nil {
		return state, nil, err
	}
	presets, err := client.ListPresets()
	if err != nil {
		return state, nil, err
	}
	about, err := client.About()
	if err != nil {
		return state, nil, err
	}

	for _, p := range presets.Presets {
		state.Presets = append(state.Presets, palette.TrayPreset{Name: p.Name, Applicable: p.Applicable})
	}
	for _, m := range about.Monitors {
		o, err := preset.ParseOrientation(m.Orientation)
		if err != nil {
			return state, nil, fmt.Errorf("display %s: %w", m.Display, err)
		}
		state.Displays = append(state.Displays, palette.TrayDisplay{
			Display:     m.Display,
			Name:        monitorLabel(m),
			Orientation: o,
		})
	}
	return state, status, nil
}

func monitorLabel(m ipc.MonitorInfo) string {
	if m.Name == "" {
		return m.Display
	}
	return fmt.Sprintf("%d: %s", m.Number, m.Name)
}

func trayMessage(s *ipc.StatusData) string {
	if s == nil {
		return ""
	}
	parts := []string{
		fmt.Sprintf("%d displays", s.Displays),
		fmt.Sprintf("%d of %d presets applicable", s.Applicable, s.Presets),
	}
	if s.Busy {
		parts = append(parts, "applying")
	}
	return strings.Join(parts, " • ")
}

func runTrayAction(client *ipc.Client, backend palette.Backend, state palette.TrayState, action palette.Action) int {
	switch action.Kind {
	case palette.ActionApply:
		data, err := client.ApplyPreset(action.Preset)
		if err != nil {
			return reportError(err)
		}
		fmt.Fprintf(os.Stdout, "Changed display preset to %q: %s\n", data.Preset, data.Message)

	case palette.ActionOrient:
		data, err := client.SetOrientation(action.Display, action.Orientation.String())
		if err != nil {
			return reportError(err)
		}
		if data.Changed {
			fmt.Fprintf(os.Stdout, "Changed %s orientation to %s\n", data.Display, data.Orientation)
		}

	case palette.ActionSave:
		existing := make([]string, 0, len(state.Presets))
		for _, p := range state.Presets {
			existing = append(existing, p.Name)
		}
		name, err := prompt.PresetName(existing)
		if errors.Is(err, prompt.ErrCancelled) {
			return 0
		}
		if errors.Is(err, prompt.ErrNotInteractive) {
			fmt.Fprintln(os.Stderr, "saving from the menu needs a terminal; run 'disp save <name>'")
			return 1
		}
		if err != nil {
			return reportError(err)
		}
		data, err := client.SavePreset(name)
		if err != nil {
			return reportError(err)
		}
		fmt.Fprintf(os.Stdout, "Saved preset %q\n", data.Name)

	case palette.ActionAbout:
		data, err := client.About()
		if err != nil {
			return reportError(err)
		}
		if err := showText(backend, "About displays", data.Text); err != nil && !errors.Is(err, palette.ErrCancelled) {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

	case palette.ActionReload:
		if err := client.Reload(); err != nil {
			return reportError(err)
		}
		fmt.Fprintln(os.Stdout, "Presets reloaded")
	}
	return 0
}

// showText displays text in the launcher. Launchers without a message bar
// get the text as header rows.
func showText(backend palette.Backend, title, text string) error {
	ok := palette.Item{Label: "OK", Action: "ok"}
	if backend.Capabilities().MessageBar {
		_, err := backend.Show(title, []palette.Item{ok}, strings.TrimRight(text, "\n"))
		return err
	}
	var items []palette.Item
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		items = append(items, palette.Item{Label: line, IsHeader: true})
	}
	items = append(items, ok)
	_, err := backend.Show(title, items, "")
	return err
}
