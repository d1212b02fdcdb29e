package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/preset"
	"github.com/Z1ni/disp/internal/prompt"
	"github.com/Z1ni/disp/internal/tui"
)

// newCommandFlags returns a FlagSet whose usage prints the given lines.
func newCommandFlags(name string, usage ...string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		for _, line := range usage {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	return fs
}

// parseCommand parses args and checks the positional argument count. It
// returns an exit code and false when the command should not run.
func parseCommand(fs *flag.FlagSet, args []string, minArgs, maxArgs int) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	if n := fs.NArg(); n < minArgs || n > maxArgs {
		if maxArgs == 0 {
			fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		} else {
			fmt.Fprintf(os.Stderr, "%s: wrong number of arguments\n", fs.Name())
		}
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// reportError prints err and maps warnings from the daemon to exit code 3.
func reportError(err error) int {
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, ipc.ErrWarning) {
		return 3
	}
	return 1
}

func runList(args []string) int {
	fs := newCommandFlags("list",
		"Usage: disp list [--json] [--applicable]",
		"",
		"List presets. Applicable presets are marked with '*'.",
	)
	jsonOut := fs.Bool("json", false, "Output JSON")
	applicableOnly := fs.Bool("applicable", false, "Only list presets matching the connected displays")
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	data, err := ipc.NewClient().ListPresets()
	if err != nil {
		return reportError(err)
	}
	presets := data.Presets
	if *applicableOnly {
		presets = filterApplicable(presets)
	}
	if *jsonOut {
		return writeJSON(os.Stdout, presets)
	}
	printPresets(os.Stdout, presets)
	return 0
}

func filterApplicable(presets []ipc.PresetInfo) []ipc.PresetInfo {
	out := make([]ipc.PresetInfo, 0, len(presets))
	for _, p := range presets {
		if p.Applicable {
			out = append(out, p)
		}
	}
	return out
}

func printPresets(w io.Writer, presets []ipc.PresetInfo) {
	if len(presets) == 0 {
		fmt.Fprintln(w, "No presets")
		return
	}
	for _, p := range presets {
		mark := " "
		if p.Applicable {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\n", mark, p.Name)
		for _, d := range p.Displays {
			fmt.Fprintf(w, "    %-12s %dx%d+%d+%d %s\n",
				d.Display, d.Width, d.Height, d.X, d.Y, preset.Orientation(d.Orientation))
		}
	}
}

func runApply(args []string) int {
	fs := newCommandFlags("apply",
		"Usage: disp apply <name>",
		"",
		"Apply a preset in the running instance.",
	)
	if code, ok := parseCommand(fs, args, 1, 1); !ok {
		return code
	}

	data, err := ipc.NewClient().ApplyPreset(fs.Arg(0))
	if data != nil && len(data.Failed) > 0 {
		fmt.Fprintf(os.Stderr, "failed displays: %s\n", strings.Join(data.Failed, ", "))
	}
	if err != nil {
		return reportError(err)
	}
	fmt.Fprintf(os.Stdout, "Changed display preset to %q: %s\n", data.Preset, data.Message)
	return 0
}

func runSave(args []string) int {
	fs := newCommandFlags("save",
		"Usage: disp save [name]",
		"",
		"Save the current display layout as a preset. Without a name, asks for",
		"one on the terminal.",
	)
	if code, ok := parseCommand(fs, args, 0, 1); !ok {
		return code
	}

	client := ipc.NewClient()
	name := fs.Arg(0)
	if name == "" {
		var err error
		name, err = askPresetName(client)
		if errors.Is(err, prompt.ErrCancelled) {
			return 0
		}
		if err != nil {
			return reportError(err)
		}
	}

	data, err := client.SavePreset(name)
	if err != nil {
		return reportError(err)
	}
	verb := "Saved"
	if data.Replaced {
		verb = "Replaced"
	}
	fmt.Fprintf(os.Stdout, "%s preset %q (%d displays)\n", verb, data.Name, data.Displays)
	return 0
}

// askPresetName prompts with the existing names so a replacement is
// confirmed first.
func askPresetName(client *ipc.Client) (string, error) {
	if !prompt.Interactive() {
		return "", errors.New("a preset name is required when not running on a terminal")
	}
	data, err := client.ListPresets()
	if err != nil {
		return "", err
	}
	existing := make([]string, 0, len(data.Presets))
	for _, p := range data.Presets {
		existing = append(existing, p.Name)
	}
	return prompt.PresetName(existing)
}

func runOrient(args []string) int {
	fs := newCommandFlags("orient",
		"Usage: disp orient <display> <orientation>",
		"",
		"Rotate one display. Orientation is 0-3 or one of:",
		"  landscape, portrait, landscape-flipped, portrait-flipped",
	)
	if code, ok := parseCommand(fs, args, 2, 2); !ok {
		return code
	}
	if _, err := preset.ParseOrientation(fs.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	data, err := ipc.NewClient().SetOrientation(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return reportError(err)
	}
	if !data.Changed {
		fmt.Fprintf(os.Stdout, "%s is already %s\n", data.Display, data.Orientation)
		return 0
	}
	fmt.Fprintf(os.Stdout, "Changed %s orientation to %s\n", data.Display, data.Orientation)
	return 0
}

func runAbout(args []string) int {
	fs := newCommandFlags("about",
		"Usage: disp about [--json]",
		"",
		"Describe the connected displays.",
	)
	jsonOut := fs.Bool("json", false, "Output JSON")
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	data, err := ipc.NewClient().About()
	if err != nil {
		return reportError(err)
	}
	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	fmt.Fprint(os.Stdout, data.Text)
	if !strings.HasSuffix(data.Text, "\n") {
		fmt.Fprintln(os.Stdout)
	}
	return 0
}

func runReload(args []string) int {
	fs := newCommandFlags("reload",
		"Usage: disp reload",
		"",
		"Re-read the preset file and re-check the connected displays.",
	)
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		return reportError(err)
	}
	fmt.Fprintln(os.Stdout, "Presets reloaded")
	return 0
}

func runStatus(args []string) int {
	fs := newCommandFlags("status",
		"Usage: disp status [--json]",
		"",
		"Show the status of the running instance.",
	)
	jsonOut := fs.Bool("json", false, "Output JSON")
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	data, err := ipc.NewClient().Status()
	if err != nil {
		return reportError(err)
	}
	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	printStatus(os.Stdout, data)
	return 0
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "Instance:   %s\n", s.InstanceID)
	fmt.Fprintf(w, "Config:     %s\n", s.ConfigPath)
	fmt.Fprintf(w, "Uptime:     %s\n", time.Duration(s.UptimeSeconds)*time.Second)
	fmt.Fprintf(w, "Displays:   %d\n", s.Displays)
	fmt.Fprintf(w, "Presets:    %d (%d applicable)\n", s.Presets, s.Applicable)
	if s.Busy {
		fmt.Fprintln(w, "Busy:       applying a preset")
	}
	if s.LastError != "" {
		fmt.Fprintf(w, "Last error: %s\n", s.LastError)
	}
}

func runTUI(args []string) int {
	fs := newCommandFlags("tui",
		"Usage: disp tui",
		"",
		"Browse, apply and save presets interactively.",
	)
	if code, ok := parseCommand(fs, args, 0, 0); !ok {
		return code
	}

	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		return reportError(err)
	}
	if err := tui.Run(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
