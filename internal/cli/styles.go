// Package cli provides styled terminal output using lipgloss, batch progress
// reporting and interrupt handling for the facet commands.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/facet-flow/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#7C5CFF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// LabelStyle right-aligns field labels in key/value listings.
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(22).
			Align(lipgloss.Right).
			MarginRight(1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "!"
	InfoIcon    = "i"
	TagIcon     = "🏷️"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the tag icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(TagIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// FormatConfidence colors a score: green at or above threshold, yellow above
// half of it, red below.
func FormatConfidence(score, threshold float64) string {
	text := fmt.Sprintf("%.2f", score)
	switch {
	case score >= threshold:
		return SuccessStyle.Render(text)
	case score >= threshold/2:
		return WarningStyle.Render(text)
	default:
		return ErrorStyle.Render(text)
	}
}

// FormatStatus renders a review status.
func FormatStatus(status model.Status) string {
	if status == model.StatusApproved {
		return SuccessStyle.Render(string(status))
	}
	return WarningStyle.Render(string(status))
}

// FormatPriority renders a review priority.
func FormatPriority(p model.ReviewPriority) string {
	switch p {
	case model.PriorityHigh:
		return ErrorStyle.Render(string(p))
	case model.PriorityMedium:
		return WarningStyle.Render(string(p))
	default:
		return SubtleStyle.Render(string(p))
	}
}
