// Package themes holds the dashboard color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Selected      lipgloss.Style
	StatusPending lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	BorderedBox   lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Info          lipgloss.Color
	Warning       lipgloss.Color
}

// palette is the set of colors a theme is derived from.
type palette struct {
	primary, muted, border, info, warning, success, errorc lipgloss.Color
	fg, subtle, selectedFg                                 lipgloss.Color
}

func build(p palette) Theme {
	return Theme{
		Primary: p.primary,
		Muted:   p.muted,
		Border:  p.border,
		Info:    p.info,
		Warning: p.warning,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.fg).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtle).
			MarginBottom(1),
		Normal: lipgloss.NewStyle().
			Foreground(p.fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.fg),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.selectedFg).
			Bold(true),

		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(p.success).
			Bold(true),
		StatusError: lipgloss.NewStyle().
			Foreground(p.errorc).
			Bold(true),
		StatusInfo: lipgloss.NewStyle().
			Foreground(p.info).
			Bold(true),
		StatusPending: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:    lipgloss.Color("#7c3aed"),
	muted:      lipgloss.Color("#737373"),
	border:     lipgloss.Color("#404040"),
	info:       lipgloss.Color("#3b82f6"),
	warning:    lipgloss.Color("#f59e0b"),
	success:    lipgloss.Color("#10b981"),
	errorc:     lipgloss.Color("#ef4444"),
	fg:         lipgloss.Color("#fafafa"),
	subtle:     lipgloss.Color("#a3a3a3"),
	selectedFg: lipgloss.Color("#fafafa"),
})

// CatppuccinMocha is based on the Catppuccin Mocha palette.
var CatppuccinMocha = build(palette{
	primary:    lipgloss.Color("#cba6f7"),
	muted:      lipgloss.Color("#6c7086"),
	border:     lipgloss.Color("#45475a"),
	info:       lipgloss.Color("#89dceb"),
	warning:    lipgloss.Color("#f9e2af"),
	success:    lipgloss.Color("#a6e3a1"),
	errorc:     lipgloss.Color("#f38ba8"),
	fg:         lipgloss.Color("#cdd6f4"),
	subtle:     lipgloss.Color("#bac2de"),
	selectedFg: lipgloss.Color("#1e1e2e"),
})

// Names lists the themes GetTheme knows.
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
