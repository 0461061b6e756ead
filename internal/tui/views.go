package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/facet-flow/internal/model"
)

// columns sizes the table to the terminal width. The facet path takes the
// remaining space.
func columns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Product", Width: 14},
		{Title: "Facet 1", Width: 0},
		{Title: "Overall", Width: 8},
		{Title: "Priority", Width: 8},
		{Title: "Status", Width: 14},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 2
	}
	fixed[2].Width = max(width-used-2, 16)
	return fixed
}

func recordRow(r *model.MetadataRecord) table.Row {
	return table.Row{
		shortID(r.ID),
		r.Faceted.Flat.ProductID,
		r.Faceted.Hierarchical.ItemType.FullPath,
		fmt.Sprintf("%.2f", r.Confidence.Overall),
		string(r.ReviewPriority),
		string(r.Status),
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.theme.Subtitle.Render("Loading records...")
	}

	sections := []string{
		m.theme.Title.Render(m.title()),
		m.table.View(),
	}

	if m.showDetails {
		if r := m.Selected(); r != nil {
			sections = append(sections, m.renderDetails(r))
		}
	}

	sections = append(sections, m.renderStatus(), m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) title() string {
	pending := 0
	for _, r := range m.records {
		if r.Status == model.StatusPendingReview {
			pending++
		}
	}
	title := fmt.Sprintf("Review queue: %d records, %d pending", len(m.records), pending)
	if m.pendingOnly {
		title += " (pending only)"
	}
	return title
}

func (m Model) renderStatus() string {
	if m.lastError != nil {
		return m.theme.StatusError.Render("✗ " + m.lastError.Error())
	}
	if len(m.visible) == 0 {
		return m.theme.Subtitle.Render("No records to review.")
	}
	if m.status != "" {
		return m.theme.StatusInfo.Render(m.status)
	}
	return ""
}

func (m Model) renderDetails(r *model.MetadataRecord) string {
	flat := r.Faceted.Flat
	lines := []string{
		m.theme.Bold.Render(r.Descriptive.Title),
		"ID:       " + r.ID,
		"Priority: " + m.theme.Priority(r.ReviewPriority).Render(string(r.ReviewPriority)),
		"Gender:   " + string(r.Faceted.Gender),
		"Facet 2:  " + r.Faceted.Hierarchical.StyleUsage.FullPath,
		fmt.Sprintf("Color:    %s  Material: %s  Pattern: %s", flat.Color, flat.Material, flat.Pattern),
		fmt.Sprintf("Size:     %s  Brand: %s", flat.Size, flat.Brand),
	}

	var scores []string
	for _, name := range r.Confidence.FieldNames() {
		score, _ := r.Confidence.Get(name)
		scores = append(scores, name+"="+m.score(score))
	}
	lines = append(lines, "Scores:   "+strings.Join(scores, " "))

	for _, name := range model.ApprovalValidations {
		if res, ok := r.Validation[name]; ok && !res.Valid {
			lines = append(lines, m.theme.StatusWarning.Render("invalid "+name+": "+res.Error))
		}
	}

	return m.theme.BorderedBox.Render(strings.Join(lines, "\n"))
}

func (m Model) score(v float64) string {
	text := fmt.Sprintf("%.2f", v)
	if v < m.threshold {
		return m.theme.StatusWarning.Render(text)
	}
	return m.theme.StatusSuccess.Render(text)
}
