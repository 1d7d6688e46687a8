// Package theme defines color themes for the foogie TUI.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name        string
	Border      lipgloss.Color // card borders
	TextDim     lipgloss.Color // hints, disabled
	TextMuted   lipgloss.Color // labels, metadata
	TextPrimary lipgloss.Color
	Accent      lipgloss.Color // cursor, titles
	Good        lipgloss.Color // under budget
	Warn        lipgloss.Color // nearly at goal
	Over        lipgloss.Color // past goal
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:        "flexoki-dark",
	Border:      lipgloss.Color("#403E3C"),
	TextDim:     lipgloss.Color("#575653"),
	TextMuted:   lipgloss.Color("#878580"),
	TextPrimary: lipgloss.Color("#FFFCF0"),
	Accent:      lipgloss.Color("#3AA99F"),
	Good:        lipgloss.Color("#879A39"),
	Warn:        lipgloss.Color("#DA702C"),
	Over:        lipgloss.Color("#D14D41"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:        "catppuccin-mocha",
	Border:      lipgloss.Color("#585B70"),
	TextDim:     lipgloss.Color("#6C7086"),
	TextMuted:   lipgloss.Color("#A6ADC8"),
	TextPrimary: lipgloss.Color("#CDD6F4"),
	Accent:      lipgloss.Color("#89B4FA"),
	Good:        lipgloss.Color("#A6E3A1"),
	Warn:        lipgloss.Color("#FAB387"),
	Over:        lipgloss.Color("#F38BA8"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:        "terminal",
	Border:      lipgloss.Color("8"),
	TextDim:     lipgloss.Color("8"),
	TextMuted:   lipgloss.Color("7"),
	TextPrimary: lipgloss.Color("15"),
	Accent:      lipgloss.Color("6"),
	Good:        lipgloss.Color("2"),
	Warn:        lipgloss.Color("3"),
	Over:        lipgloss.Color("1"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// BudgetColor picks the color for a percent-of-goal figure.
func (t Theme) BudgetColor(percent int) lipgloss.Color {
	switch {
	case percent > 100:
		return t.Over
	case percent >= 90:
		return t.Warn
	default:
		return t.Good
	}
}
