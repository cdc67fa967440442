package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) tabLabel(i int) string {
	return fmt.Sprintf(" %d %s ", i+1, m.screens[i].title())
}

// tabAt returns the tab under column x of the tab bar, or -1.
func (m Model) tabAt(x int) int {
	pos := 0
	for i := range m.screens {
		w := lipgloss.Width(m.tabLabel(i))
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1
	}
	return -1
}

func (m Model) renderTabs() string {
	t := m.env.theme
	tabs := make([]string, len(m.screens))
	for i := range m.screens {
		label := m.tabLabel(i)
		if i == m.active {
			tabs[i] = t.Selected.Render(label)
			continue
		}
		tabs[i] = lipgloss.NewStyle().Foreground(t.Muted).Render(label)
	}
	return strings.Join(tabs, " ")
}

func (m Model) render() string {
	bodyHeight := max(m.height-contentTop-1, 1)

	body := m.current().view()
	if m.showHelp {
		body = m.renderHelp()
	}
	body = lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		"",
		body,
		m.renderStatusBar(),
	)
}

// renderHelp renders the full key binding reference.
func (m Model) renderHelp() string {
	t := m.env.theme
	full := m.help
	full.ShowAll = true
	return lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("finboard - Help"),
		full.View(m.keymap),
		"",
		lipgloss.NewStyle().Foreground(t.Muted).Render("Press ? or Esc to close help"),
	)
}

// renderStatusBar renders the bottom status bar.
func (m Model) renderStatusBar() string {
	t := m.env.theme

	// Left: who, center: which profile, right: help hint
	left := "signed out"
	if m.stores.Identity != nil {
		if id, ok := m.stores.Identity.Current(); ok {
			left = id.Email
		}
	}
	center := ""
	if m.stores.Profiles != nil {
		center = "profile: " + profileLabel(m.stores.Profiles)
	}
	right := m.help.ShortHelpView(m.keymap.ShortHelp())

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right) - 2
	spacing = max(spacing, 2)
	leftPad := spacing / 2
	rightPad := spacing - leftPad

	status := fmt.Sprintf("%s%s%s%s%s",
		t.StatusInfo.Render(left),
		strings.Repeat(" ", leftPad),
		t.Normal.Render(center),
		strings.Repeat(" ", rightPad),
		right,
	)

	return t.Normal.
		Background(t.Border).
		Width(m.width).
		MaxWidth(m.width).
		Render(status)
}
