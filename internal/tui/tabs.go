package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Z1ni/disp/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabPresets Tab = iota
	TabDisplays
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabPresets:
		return "Presets"
	case TabDisplays:
		return "Displays"
	default:
		return "?"
	}
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("250")).
				Background(lipgloss.Color("236")).
				Padding(0, 2)

	tabBarStyle = lipgloss.NewStyle().
			MarginBottom(1)

	tabGap = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		SetString(" ")

	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderTabBar renders the tab bar with the given active tab and width.
func renderTabBar(active Tab, width int) string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", int(i)+1, i)
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, intersperse(tabs, tabGap.Render())...)
	return tabBarStyle.Width(width).Render(row)
}

// intersperse inserts sep between each element of items.
func intersperse(items []string, sep string) []string {
	if len(items) <= 1 {
		return items
	}
	result := make([]string, 0, len(items)*2-1)
	for i, item := range items {
		if i > 0 {
			result = append(result, sep)
		}
		result = append(result, item)
	}
	return result
}

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(status *ipc.StatusData, width int) string {
	var text string
	if status != nil {
		dot := okStyle.Render("●")
		parts := []string{
			dot + " disp running",
			fmt.Sprintf("displays:%d", status.Displays),
			fmt.Sprintf("presets:%d/%d applicable", status.Applicable, status.Presets),
		}
		if status.Busy {
			parts = append(parts, warnStyle.Render("applying"))
		}
		if status.LastError != "" {
			parts = append(parts, errorStyle.Render("config error"))
		}
		text = strings.Join(parts, "  ")
	} else {
		text = dimStyle.Render("●") + " disp not running"
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(width int) string {
	help := "tab: switch tabs  1-2: jump to tab  s: save current layout  r: reload  q/ctrl-c: quit"
	return dimStyle.
		Width(width).
		Padding(0, 1).
		Render(help)
}
