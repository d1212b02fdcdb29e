package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	backAction    = "__back__"
	noopAction    = "__noop__"
	submenuPrefix = "__submenu__:"
)

// MenuItem represents an item in the menu hierarchy.
type MenuItem struct {
	Label     string     // Display label
	Action    string     // Action identifier (empty for parent items)
	Icon      string     // Icon name for display
	Meta      string     // Hidden search keywords
	IsHeader  bool       // Non-selectable section header (bold)
	IsDivider bool       // Non-selectable divider line (dim)
	IsActive  bool       // Highlight as current
	Submenu   []MenuItem // Child items (empty for leaf items)
}

// IsParent returns true if this item has a submenu.
func (m MenuItem) IsParent() bool {
	return len(m.Submenu) > 0
}

// Menu handles hierarchical menu navigation using a palette backend.
type Menu struct {
	backend Backend
	title   string
	root    []MenuItem
	message string
}

// NewMenu creates a menu titled title with the given root items.
func NewMenu(backend Backend, title string, items []MenuItem) *Menu {
	return &Menu{
		backend: backend,
		title:   title,
		root:    items,
	}
}

// SetMessage sets a context message for backends with a message bar.
func (m *Menu) SetMessage(msg string) {
	m.message = msg
}

// Show displays the menu and returns the action of the selected leaf item,
// or ErrCancelled if the user closes the top level.
func (m *Menu) Show() (string, error) {
	return m.showLevel(m.root, nil)
}

func (m *Menu) showLevel(items []MenuItem, breadcrumb []string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("menu: no items to show")
	}

	prompt := m.title
	if len(breadcrumb) > 0 {
		prompt = breadcrumb[len(breadcrumb)-1]
	}

	for {
		entries := make([]Item, 0, len(items)+1)
		if len(breadcrumb) > 0 {
			entries = append(entries, Item{Label: "← Back", Action: backAction, Icon: "go-previous"})
		}
		for i, item := range items {
			entry := Item{
				Label:     item.Label,
				Action:    item.Action,
				Icon:      item.Icon,
				Meta:      item.Meta,
				IsHeader:  item.IsHeader,
				IsDivider: item.IsDivider,
				IsActive:  item.IsActive,
			}
			switch {
			case item.IsParent():
				entry.Label += " →"
				entry.Action = submenuPrefix + strconv.Itoa(i)
			case strings.TrimSpace(entry.Action) == "":
				entry.Action = noopAction
			}
			entries = append(entries, entry)
		}

		chosen, err := m.backend.Show(prompt, entries, m.message)
		if err != nil {
			return "", err
		}

		// Launchers without non-selectable rows let headers through.
		if !chosen.selectable() || chosen.Action == noopAction {
			continue
		}
		if chosen.Action == backAction {
			return "", ErrCancelled
		}

		if rest, ok := strings.CutPrefix(chosen.Action, submenuPrefix); ok {
			idx, err := strconv.Atoi(rest)
			if err != nil || idx < 0 || idx >= len(items) || !items[idx].IsParent() {
				continue
			}
			action, err := m.showLevel(items[idx].Submenu, append(breadcrumb, items[idx].Label))
			if errors.Is(err, ErrCancelled) {
				continue
			}
			return action, err
		}

		return chosen.Action, nil
	}
}
