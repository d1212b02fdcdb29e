package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Z1ni/disp/internal/ipc"
)

// presetItem implements list.Item for the preset picker sidebar.
type presetItem struct {
	info ipc.PresetInfo
}

func (i presetItem) Title() string {
	if i.info.Applicable {
		return "● " + i.info.Name
	}
	return "  " + i.info.Name
}

func (i presetItem) Description() string {
	n := len(i.info.Displays)
	noun := "displays"
	if n == 1 {
		noun = "display"
	}
	if !i.info.Applicable {
		return fmt.Sprintf("%d %s, not connected", n, noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}

func (i presetItem) FilterValue() string { return i.info.Name }

// PresetsTab lists the presets and previews the selected one.
type PresetsTab struct {
	list   list.Model
	client Client

	width  int
	height int
	ready  bool
}

// NewPresetsTab creates a new PresetsTab sub-model.
func NewPresetsTab(client Client) PresetsTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Presets"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return PresetsTab{list: l, client: client}
}

// SetPresets replaces the listed presets, keeping the selection by name.
func (pt *PresetsTab) SetPresets(presets []ipc.PresetInfo) {
	prev := pt.selected().Name
	items := make([]list.Item, 0, len(presets))
	sel := 0
	for i, p := range presets {
		items = append(items, presetItem{info: p})
		if p.Name == prev {
			sel = i
		}
	}
	pt.list.SetItems(items)
	if len(items) > 0 {
		pt.list.Select(sel)
	}
}

// Names returns the names of the listed presets.
func (pt PresetsTab) Names() []string {
	items := pt.list.Items()
	names := make([]string, 0, len(items))
	for _, it := range items {
		if p, ok := it.(presetItem); ok {
			names = append(names, p.info.Name)
		}
	}
	return names
}

func (pt PresetsTab) selected() ipc.PresetInfo {
	item, ok := pt.list.SelectedItem().(presetItem)
	if !ok {
		return ipc.PresetInfo{}
	}
	return item.info
}

// Update implements tea.Model.
func (pt PresetsTab) Update(msg tea.Msg) (PresetsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pt.width = msg.Width
		pt.height = msg.Height
		pt.list.SetSize(pt.sidebarWidth(), max(pt.height, 1))
		pt.ready = true
		return pt, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "a":
			return pt, pt.applySelected()
		}
	}

	var cmd tea.Cmd
	pt.list, cmd = pt.list.Update(msg)
	return pt, cmd
}

func (pt PresetsTab) applySelected() tea.Cmd {
	p := pt.selected()
	if p.Name == "" {
		return nil
	}
	if !p.Applicable {
		return func() tea.Msg {
			return actionMsg{text: fmt.Sprintf("%q does not match the connected displays", p.Name), warn: true}
		}
	}
	client := pt.client
	return func() tea.Msg {
		data, err := client.ApplyPreset(p.Name)
		if err != nil {
			return actionResult("", err)
		}
		return actionMsg{text: fmt.Sprintf("Changed display preset to %q: %s", data.Preset, data.Message)}
	}
}

func (pt PresetsTab) sidebarWidth() int {
	// Sidebar takes ~35% of width, min 20, max 40
	return min(max(pt.width*35/100, 20), 40)
}

// View implements tea.Model.
func (pt PresetsTab) View() string {
	if !pt.ready || pt.width == 0 || pt.height == 0 {
		return ""
	}

	sidebarWidth := pt.sidebarWidth()
	previewWidth := max(pt.width-sidebarWidth-3, 10)

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(pt.height).
		Render(pt.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.TrimSuffix(strings.Repeat("│\n", pt.height), "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, pt.renderPreview(previewWidth))
}

func (pt PresetsTab) renderPreview(width int) string {
	p := pt.selected()
	if p.Name == "" {
		return dimStyle.Render(" No presets yet. Press s to save the current layout.")
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Render(" " + p.Name)

	summary := summarizePreset(p.Displays)
	for i := range summary {
		summary[i] = " " + summary[i]
	}
	details := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Render(strings.Join(summary, "\n"))

	hint := dimStyle.Render(" enter/a: apply")
	previewHeight := max(pt.height-len(summary)-4, 3)
	canvas := lipgloss.NewStyle().
		Foreground(lipgloss.Color("247")).
		Render(strings.Join(renderLayoutPreview(presetRects(p.Displays), width-2, previewHeight), "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, title, details, "", canvas, hint)
}
