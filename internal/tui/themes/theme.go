// Package themes defines the color schemes of the review TUI.
package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/facet-flow/internal/model"
)

// Theme holds the styles the review queue renders with.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Header        lipgloss.Style
	BorderedBox   lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusInfo    lipgloss.Style

	// Priorities colors the review priority badge in the detail pane.
	Priorities map[model.ReviewPriority]lipgloss.Style
}

// Priority returns the badge style for p, falling back to Subtitle.
func (t Theme) Priority(p model.ReviewPriority) lipgloss.Style {
	if style, ok := t.Priorities[p]; ok {
		return style
	}
	return t.Subtitle
}

const (
	white  = lipgloss.Color("#fafafa")
	grey   = lipgloss.Color("#a3a3a3")
	border = lipgloss.Color("#404040")
	violet = lipgloss.Color("#7c3aed")
	red    = lipgloss.Color("#ef4444")
	amber  = lipgloss.Color("#f59e0b")
	green  = lipgloss.Color("#10b981")
	blue   = lipgloss.Color("#3b82f6")
)

// Default is the default theme.
var Default = Theme{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(white).MarginBottom(1),
	Subtitle: lipgloss.NewStyle().Foreground(grey),
	Bold:     lipgloss.NewStyle().Bold(true).Foreground(white),
	Selected: lipgloss.NewStyle().Background(violet).Foreground(white).Bold(true),
	Header: lipgloss.NewStyle().
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(border),
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1),

	StatusError:   lipgloss.NewStyle().Foreground(red),
	StatusWarning: lipgloss.NewStyle().Foreground(amber),
	StatusSuccess: lipgloss.NewStyle().Foreground(green),
	StatusInfo:    lipgloss.NewStyle().Foreground(blue),

	Priorities: map[model.ReviewPriority]lipgloss.Style{
		model.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(red),
		model.PriorityMedium: lipgloss.NewStyle().Foreground(amber),
		model.PriorityLow:    lipgloss.NewStyle().Foreground(green),
	},
}
