package carousel

import "github.com/charmbracelet/lipgloss"

// Styles contains the style definitions for the carousel chrome.
type Styles struct {
	Frame       lipgloss.Style
	Caption     lipgloss.Style
	Dot         lipgloss.Style
	ActiveDot   lipgloss.Style
	Counter     lipgloss.Style
	Help        lipgloss.Style
	FocusBorder lipgloss.Color
	BlurBorder  lipgloss.Color
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")),
		Caption:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Italic(true),
		Dot:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ActiveDot:   lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true),
		Counter:     lipgloss.NewStyle().Faint(true),
		Help:        lipgloss.NewStyle().Faint(true),
		FocusBorder: lipgloss.Color("99"),
		BlurBorder:  lipgloss.Color("241"),
	}
}
