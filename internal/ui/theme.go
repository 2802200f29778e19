// Package ui holds the terminal presentation pieces shared by CLI commands:
// colors, prompts and progress feedback. Everything degrades to plain text
// when stdin is not a terminal or colors are disabled.
package ui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette used for CLI output.
type Theme struct {
	NoColor bool

	Primary lipgloss.AdaptiveColor
	Accent  lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Warn    lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
}

// NewTheme returns the default palette.
func NewTheme(noColor bool) *Theme {
	return &Theme{
		NoColor: noColor,
		Primary: lipgloss.AdaptiveColor{Light: "#C45A3C", Dark: "#DA7756"},
		Accent:  lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#A78BFA"},
		Muted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Success: lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"},
		Warn:    lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"},
		Error:   lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"},
		Border:  lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
	}
}

func (t *Theme) style(c lipgloss.AdaptiveColor) lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(c)
}

// Title styles headings.
func (t *Theme) Title() lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return t.style(t.Primary).Bold(true)
}

// Label styles secondary identifiers such as actions.
func (t *Theme) Label() lipgloss.Style { return t.style(t.Accent) }

// Dim styles annotations.
func (t *Theme) Dim() lipgloss.Style { return t.style(t.Muted) }

// OK styles success messages.
func (t *Theme) OK() lipgloss.Style { return t.style(t.Success) }

// Warning styles warnings.
func (t *Theme) Warning() lipgloss.Style { return t.style(t.Warn) }

// Failure styles errors.
func (t *Theme) Failure() lipgloss.Style { return t.style(t.Error) }

// Box frames a block of text.
func (t *Theme) Box() lipgloss.Style {
	if t.NoColor {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}
