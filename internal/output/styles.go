package output

import "github.com/charmbracelet/lipgloss"

// Color palette, ANSI 256.
const (
	ColorLime     = "154" // Accent
	ColorWhite    = "255" // Headers
	ColorGray     = "245" // Labels, secondary text
	ColorDarkGray = "238" // Dimmed text
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds the styles used by Writer.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
}

// DefaultStyles returns the colored styles used on terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorLime)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
	}
}

// NoColorStyles returns unstyled components for pipes and NO_COLOR.
func NoColorStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
		Value:   lipgloss.NewStyle(),
	}
}
