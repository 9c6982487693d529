package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

// Theme holds the desk colors.
type Theme struct {
	Border      lipgloss.Color
	FocusBorder lipgloss.Color
	Title       lipgloss.Color
	Muted       lipgloss.Color
	Selected    lipgloss.Color
	Success     lipgloss.Color
	Failure     lipgloss.Color
	Pending     lipgloss.Color
	Approved    lipgloss.Color
	Rejected    lipgloss.Color
}

// DefaultTheme uses the 256-color palette.
var DefaultTheme = Theme{
	Border:      lipgloss.Color("240"),
	FocusBorder: lipgloss.Color("63"),
	Title:       lipgloss.Color("205"),
	Muted:       lipgloss.Color("245"),
	Selected:    lipgloss.Color("57"),
	Success:     lipgloss.Color("42"),
	Failure:     lipgloss.Color("196"),
	Pending:     lipgloss.Color("214"),
	Approved:    lipgloss.Color("42"),
	Rejected:    lipgloss.Color("196"),
}

// StatusColor returns the color for a status label.
func (t Theme) StatusColor(label string) lipgloss.Color {
	switch label {
	case workflow.StateApproved.Label():
		return t.Approved
	case workflow.StateRejected.Label():
		return t.Rejected
	default:
		return t.Pending
	}
}

func (t Theme) pane(focused bool, width int) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.FocusBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width)
}

func (t Theme) title() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}
