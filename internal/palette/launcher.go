package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcher drives one dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	kind    launcherKind
	caps    Capabilities
}

var launchers = map[string]*launcher{
	"rofi": {
		command: "rofi",
		kind:    kindRofi,
		caps: Capabilities{
			Icons:         true,
			Markup:        true,
			NonSelectable: true,
			IndexOutput:   true,
			MessageBar:    true,
			RowStates:     true,
		},
	},
	"fuzzel": {
		command: "fuzzel",
		kind:    kindFuzzel,
		caps:    Capabilities{Icons: true, IndexOutput: true},
	},
	"wofi": {
		command: "wofi",
		kind:    kindWofi,
		caps:    Capabilities{Icons: true, Markup: true},
	},
	"dmenu": {
		command: "dmenu",
		kind:    kindDmenu,
	},
}

func (l *launcher) Capabilities() Capabilities {
	return l.caps
}

func (l *launcher) Show(prompt string, items []Item, message string) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	shown := make([]Item, len(items))
	copy(shown, items)

	input, selected := l.formatInput(shown)
	cmd := exec.Command(l.command, l.buildArgs(prompt, message, shown, selected)...)
	cmd.Stdin = strings.NewReader(input)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", l.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", l.command, err)
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}
	return l.parseSelection(selection, shown)
}

func (l *launcher) buildArgs(prompt, message string, items []Item, selected int) []string {
	var args []string

	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		for i, item := range items {
			if item.IsActive && item.selectable() {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
		if message != "" {
			args = append(args, "-mesg", message)
		}

	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt+" ")
		}

	case kindWofi:
		args = []string{"--dmenu", "--allow-markup"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}

	case kindDmenu:
		args = []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}

	return args
}

// formatInput renders items one per line and returns the row to preselect:
// the first active selectable row, else the first selectable row, else -1.
// Launchers that report the chosen text rather than its index get unique
// labels.
func (l *launcher) formatInput(items []Item) (string, int) {
	if !l.caps.IndexOutput {
		seen := make(map[string]int)
		for i := range items {
			if !items[i].selectable() {
				continue
			}
			key := sanitizeLabel(items[i].Label)
			if key == "" {
				continue
			}
			if n := seen[key]; n > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(items))
	first, firstActive := -1, -1
	for i, item := range items {
		lines = append(lines, l.formatItem(item))
		if !item.selectable() {
			continue
		}
		if first == -1 {
			first = i
		}
		if item.IsActive && firstActive == -1 {
			firstActive = i
		}
	}

	if firstActive != -1 {
		return strings.Join(lines, "\n"), firstActive
	}
	return strings.Join(lines, "\n"), first
}

func (l *launcher) formatItem(item Item) string {
	text := sanitizeLabel(item.Label)
	if l.caps.Markup {
		text = html.EscapeString(text)
		switch {
		case item.IsHeader:
			text = "<b>" + text + "</b>"
		case item.IsDivider:
			text = "<span foreground='#666666'>" + text + "</span>"
		}
	}
	if l.kind != kindRofi {
		return text
	}

	// Row properties follow a single NUL as \x1f separated key/value pairs.
	var attrs []string
	if !item.selectable() {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Icon != "" {
		attrs = append(attrs, "icon", sanitizeRofiField(item.Icon))
	}
	if item.Meta != "" {
		attrs = append(attrs, "meta", sanitizeRofiField(item.Meta))
	}
	if len(attrs) == 0 {
		return text
	}
	return text + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if l.caps.IndexOutput {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(items) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return items[idx], nil
		}
	}
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(value)
	return strings.TrimSpace(value)
}

// isCancelExit reports the exit codes launchers use for Escape (1) and
// Ctrl+C (130).
func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	code := exitErr.ExitCode()
	return code == 1 || code == 130
}
