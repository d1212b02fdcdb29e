package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Z1ni/disp/internal/ipc"
)

// refreshMsg carries a fresh view of the daemon state.
type refreshMsg struct {
	status  *ipc.StatusData
	presets *ipc.PresetsData
	about   *ipc.AboutData
	err     error
}

// actionMsg reports the outcome of an apply, rotate or reload request.
type actionMsg struct {
	text string
	warn bool
	err  error
}

// clearStatusMsg clears the status line after a delay.
type clearStatusMsg struct {
	seq int
}

func refreshCmd(client Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.Status()
		if err != nil {
			return refreshMsg{err: err}
		}
		presets, err := client.ListPresets()
		if err != nil {
			return refreshMsg{status: status, err: err}
		}
		about, err := client.About()
		return refreshMsg{status: status, presets: presets, about: about, err: err}
	}
}

func actionResult(text string, err error) actionMsg {
	switch {
	case errors.Is(err, ipc.ErrWarning):
		return actionMsg{text: err.Error(), warn: true}
	case err != nil:
		return actionMsg{err: err}
	}
	return actionMsg{text: text}
}

func reloadCmd(client Client) tea.Cmd {
	return func() tea.Msg {
		return actionResult("presets reloaded", client.Reload())
	}
}

// model is the root bubbletea model for the TUI.
type model struct {
	client Client

	activeTab   Tab
	presetsTab  PresetsTab
	displaysTab DisplaysTab
	saveOverlay SaveOverlay

	status     *ipc.StatusData
	statusText string
	statusErr  bool
	statusWarn bool
	statusSeq  int

	width  int
	height int
}

func newModel(client Client) model {
	return model{
		client:      client,
		activeTab:   TabPresets,
		presetsTab:  NewPresetsTab(client),
		displaysTab: NewDisplaysTab(client),
	}
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + message line (1) + help bar (1)
	return max(m.height-5, 1)
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return refreshCmd(m.client)
}

func (m *model) setStatus(msg actionMsg) tea.Cmd {
	m.statusSeq++
	m.statusErr = msg.err != nil
	m.statusWarn = msg.warn
	if msg.err != nil {
		m.statusText = "error: " + msg.err.Error()
	} else {
		m.statusText = msg.text
	}
	seq := m.statusSeq
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.presetsTab, _ = m.presetsTab.Update(sub)
		m.displaysTab, _ = m.displaysTab.Update(sub)
		return m, nil

	case refreshMsg:
		m.status = msg.status
		if msg.presets != nil {
			m.presetsTab.SetPresets(msg.presets.Presets)
		}
		if msg.about != nil {
			m.displaysTab.SetMonitors(msg.about.Monitors)
		}
		if msg.err != nil {
			return m, m.setStatus(actionMsg{err: msg.err})
		}
		return m, nil

	case actionMsg:
		return m, tea.Batch(m.setStatus(msg), refreshCmd(m.client))

	case savedMsg:
		m.saveOverlay, _ = m.saveOverlay.Update(msg, m.client)
		return m, refreshCmd(m.client)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.statusText = ""
		}
		return m, nil
	}

	// The save overlay captures all input when active.
	if m.saveOverlay.Active() {
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "ctrl+c" {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.saveOverlay, cmd = m.saveOverlay.Update(msg, m.client)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabPresets
			return m, nil
		case "2":
			m.activeTab = TabDisplays
			return m, nil
		case "s":
			return m, m.saveOverlay.Show(m.presetsTab.Names())
		case "r":
			return m, reloadCmd(m.client)
		}
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabPresets:
		m.presetsTab, cmd = m.presetsTab.Update(msg)
	case TabDisplays:
		m.displaysTab, cmd = m.displaysTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.width)

	var line string
	switch {
	case m.statusErr:
		line = errorStyle.Render(m.statusText)
	case m.statusWarn:
		line = warnStyle.Render(m.statusText)
	default:
		line = okStyle.Render(m.statusText)
	}
	line = lipgloss.NewStyle().Width(m.width).Padding(0, 1).Render(line)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar) + 1
	contentHeight := max(m.height-usedHeight, 1)

	var content string
	if m.saveOverlay.Active() {
		content = m.saveOverlay.View(m.width, contentHeight)
	} else {
		switch m.activeTab {
		case TabPresets:
			content = m.presetsTab.View()
		case TabDisplays:
			content = m.displaysTab.View()
		default:
			content = fmt.Sprintf("%s (unknown tab)", m.activeTab)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		line,
		helpBar,
	)
}
