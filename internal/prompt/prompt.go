// Package prompt asks the user for a preset name on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/Z1ni/disp/internal/preset"
)

// ErrNotInteractive is returned when stdin or stdout is not a terminal.
var ErrNotInteractive = errors.New("not an interactive terminal")

// ErrCancelled is returned when the user aborts the prompt.
var ErrCancelled = errors.New("cancelled")

// Interactive reports whether both stdin and stdout are terminals.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// PresetName asks for the name to save the current layout under. existing
// holds the current preset names; choosing one of them asks for
// confirmation before it is replaced.
func PresetName(existing []string) (string, error) {
	if !Interactive() {
		return "", ErrNotInteractive
	}

	var name string
	input := huh.NewInput().
		Title("Save current configuration").
		Description("Preset name").
		CharLimit(preset.MaxNameLength).
		Validate(preset.ValidateName).
		Value(&name)
	if err := run(huh.NewForm(huh.NewGroup(input))); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)

	if match, ok := findExisting(existing, name); ok {
		replace := false
		confirm := huh.NewConfirm().
			Title(fmt.Sprintf("Replace preset %q?", match)).
			Affirmative("Replace").
			Negative("Cancel").
			Value(&replace)
		if err := run(huh.NewForm(huh.NewGroup(confirm))); err != nil {
			return "", err
		}
		if !replace {
			return "", ErrCancelled
		}
	}
	return name, nil
}

func run(form *huh.Form) error {
	err := form.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

// findExisting returns the stored spelling of name when a preset with the
// same case-folded name exists.
func findExisting(existing []string, name string) (string, bool) {
	for _, n := range existing {
		if preset.NamesEqual(n, name) {
			return n, true
		}
	}
	return "", false
}
