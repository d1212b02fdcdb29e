package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Z1ni/disp/internal/preset"
)

type savePhase int

const (
	saveHidden savePhase = iota
	saveInput            // asking for the preset name
	saveResult           // showing outcome message
)

// savedMsg reports the outcome of a save request.
type savedMsg struct {
	name     string
	replaced bool
	err      error
}

// SaveOverlay asks for a preset name and saves the current layout under it.
type SaveOverlay struct {
	phase    savePhase
	form     *huh.Form
	name     string
	existing []string
	pending  bool
	result   savedMsg
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show opens the name prompt. existing lists the current preset names so
// the form can tell the user a preset will be replaced.
func (s *SaveOverlay) Show(existing []string) tea.Cmd {
	s.phase = saveInput
	s.name = ""
	s.existing = existing
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Save current configuration").
				Description("Preset name. An existing preset with the same name is replaced.").
				CharLimit(preset.MaxNameLength).
				Validate(preset.ValidateName).
				Value(&s.name),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return s.form.Init()
}

// replaces reports whether saving under name overwrites a preset.
func (s SaveOverlay) replaces(name string) bool {
	for _, n := range s.existing {
		if preset.NamesEqual(n, name) {
			return true
		}
	}
	return false
}

// Update handles input while the overlay is active.
func (s SaveOverlay) Update(msg tea.Msg, client Client) (SaveOverlay, tea.Cmd) {
	switch s.phase {
	case saveInput:
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			s.phase = saveHidden
			s.form = nil
			return s, nil
		}
		form, cmd := s.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			s.form = f
		}
		switch s.form.State {
		case huh.StateCompleted:
			name := strings.TrimSpace(s.name)
			s.form = nil
			s.phase = saveResult
			s.pending = true
			s.result = savedMsg{name: name}
			return s, saveCmd(client, name)
		case huh.StateAborted:
			s.phase = saveHidden
			s.form = nil
			return s, nil
		}
		return s, cmd

	case saveResult:
		switch msg := msg.(type) {
		case savedMsg:
			s.result = msg
			s.pending = false
		case tea.KeyMsg:
			if !s.pending {
				s.phase = saveHidden
			}
		}
	}
	return s, nil
}

func saveCmd(client Client, name string) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return savedMsg{name: name, err: fmt.Errorf("disp is not running")}
		}
		data, err := client.SavePreset(name)
		if err != nil {
			return savedMsg{name: name, err: err}
		}
		return savedMsg{name: data.Name, replaced: data.Replaced}
	}
}

// View renders the overlay for the given content area dimensions.
func (s SaveOverlay) View(width, height int) string {
	boxW := min(max(width-8, 30), 72)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(boxW)

	var body string
	switch s.phase {
	case saveInput:
		body = s.form.View()
		if name := strings.TrimSpace(s.name); name != "" && s.replaces(name) {
			body += "\n" + warnStyle.Render(fmt.Sprintf("%q will be replaced", name))
		}
	case saveResult:
		switch {
		case s.pending:
			body = dimStyle.Render(fmt.Sprintf("Saving %q…", s.result.name))
			return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(body))
		case s.result.err != nil:
			body = errorStyle.Render("Could not save preset: " + s.result.err.Error())
		case s.result.replaced:
			body = okStyle.Render(fmt.Sprintf("Preset %q was replaced", s.result.name))
		default:
			body = okStyle.Render(fmt.Sprintf("Preset %q was saved", s.result.name))
		}
		body += "\n\n" + dimStyle.Render("press any key")
	default:
		return ""
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(body))
}
