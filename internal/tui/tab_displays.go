package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Z1ni/disp/internal/ipc"
	"github.com/Z1ni/disp/internal/preset"
)

// orientationKeys maps keys on the displays tab to orientations.
var orientationKeys = map[string]preset.Orientation{
	"l": preset.Landscape,
	"p": preset.Portrait,
	"L": preset.LandscapeFlipped,
	"P": preset.PortraitFlipped,
}

// monitorItem implements list.Item for the connected displays.
type monitorItem struct {
	info ipc.MonitorInfo
}

func (i monitorItem) Title() string {
	return fmt.Sprintf("%d: %s", i.info.Number, i.info.Name)
}

func (i monitorItem) Description() string {
	return fmt.Sprintf("%s  %dx%d  %s", i.info.Display, i.info.Width, i.info.Height, i.info.Orientation)
}

func (i monitorItem) FilterValue() string { return i.info.Name }

// DisplaysTab lists the connected displays and rotates the selected one.
type DisplaysTab struct {
	list     list.Model
	client   Client
	monitors []ipc.MonitorInfo

	width  int
	height int
	ready  bool
}

// NewDisplaysTab creates a new DisplaysTab sub-model.
func NewDisplaysTab(client Client) DisplaysTab {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Displays"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return DisplaysTab{list: l, client: client}
}

// SetMonitors replaces the listed displays, keeping the selection by device.
func (dt *DisplaysTab) SetMonitors(monitors []ipc.MonitorInfo) {
	prev := dt.selected().Display
	dt.monitors = monitors
	items := make([]list.Item, 0, len(monitors))
	sel := 0
	for i, m := range monitors {
		items = append(items, monitorItem{info: m})
		if m.Display == prev {
			sel = i
		}
	}
	dt.list.SetItems(items)
	if len(items) > 0 {
		dt.list.Select(sel)
	}
}

func (dt DisplaysTab) selected() ipc.MonitorInfo {
	item, ok := dt.list.SelectedItem().(monitorItem)
	if !ok {
		return ipc.MonitorInfo{}
	}
	return item.info
}

// Update implements tea.Model.
func (dt DisplaysTab) Update(msg tea.Msg) (DisplaysTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		dt.width = msg.Width
		dt.height = msg.Height
		dt.list.SetSize(min(max(dt.width*40/100, 24), 48), max(dt.height, 1))
		dt.ready = true
		return dt, nil

	case tea.KeyMsg:
		if o, ok := orientationKeys[msg.String()]; ok {
			return dt, dt.rotateSelected(o)
		}
	}

	var cmd tea.Cmd
	dt.list, cmd = dt.list.Update(msg)
	return dt, cmd
}

func (dt DisplaysTab) rotateSelected(o preset.Orientation) tea.Cmd {
	m := dt.selected()
	if m.Display == "" {
		return nil
	}
	client := dt.client
	return func() tea.Msg {
		data, err := client.SetOrientation(m.Display, o.String())
		if err != nil {
			return actionResult("", err)
		}
		if !data.Changed {
			return actionMsg{text: fmt.Sprintf("%s is already %s", m.Name, data.Orientation)}
		}
		return actionMsg{text: fmt.Sprintf("Changed display %s orientation to %s", m.Name, data.Orientation)}
	}
}

// View implements tea.Model.
func (dt DisplaysTab) View() string {
	if !dt.ready || dt.width == 0 || dt.height == 0 {
		return ""
	}

	listWidth := min(max(dt.width*40/100, 24), 48)
	sidebar := lipgloss.NewStyle().
		Width(listWidth).
		Height(dt.height).
		Render(dt.list.View())

	previewWidth := max(dt.width-listWidth-3, 10)
	canvas := renderLayoutPreview(monitorRects(dt.monitors), previewWidth-2, max(dt.height-2, 3))
	hint := dimStyle.Render(" l: landscape  p: portrait  L: landscape (flipped)  P: portrait (flipped)")
	preview := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(lipgloss.Color("247")).Render(strings.Join(canvas, "\n")),
		hint,
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", preview)
}
