package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/model"
)

// maxFailuresShown caps the failure lines in a batch summary.
const maxFailuresShown = 10

// RenderBatchSummary renders the counts of a batch run and its first failures.
func RenderBatchSummary(summary engine.Summary, failures []engine.Outcome) string {
	lines := []string{
		field("Rows", fmt.Sprint(summary.Total)),
		field("Succeeded", SuccessStyle.Render(fmt.Sprint(summary.Succeeded))),
		field("Failed", failedCount(summary.Failed)),
		field("Needs review", WarningStyle.Render(fmt.Sprint(summary.NeedsReview))),
	}

	for i, f := range failures {
		if i == maxFailuresShown {
			lines = append(lines, SubtleStyle.Render(fmt.Sprintf("... and %d more", len(failures)-maxFailuresShown)))
			break
		}
		lines = append(lines, FormatError(fmt.Sprintf("row %d: %s", f.RowIndex, f.Message())))
	}

	return RenderBox("Batch summary", strings.Join(lines, "\n"))
}

func failedCount(n int) string {
	if n == 0 {
		return SubtleStyle.Render("0")
	}
	return ErrorStyle.Render(fmt.Sprint(n))
}

// RenderRecord renders a record's facets, scores and validation results.
func RenderRecord(r *model.MetadataRecord, threshold float64) string {
	f1 := r.Faceted.Hierarchical.ItemType
	f2 := r.Faceted.Hierarchical.StyleUsage
	flat := r.Faceted.Flat

	lines := []string{
		field("ID", r.ID),
		field("Product", flat.ProductID),
		field("Status", FormatStatus(r.Status)),
		field("Priority", FormatPriority(r.ReviewPriority)),
		field("Item type", string(r.Faceted.ItemType)),
		field("Gender", string(r.Faceted.Gender)),
		field("Facet 1", f1.FullPath),
		field("Facet 2", f2.FullPath),
		field("Color", flat.Color),
		field("Material", flat.Material),
		field("Pattern", flat.Pattern),
		field("Size", flat.Size),
		field("Brand", flat.Brand),
		field("Title", r.Descriptive.Title),
		"",
		BoldStyle.Render("Confidence"),
	}

	for _, name := range r.Confidence.FieldNames() {
		score, _ := r.Confidence.Get(name)
		lines = append(lines, field(name, FormatConfidence(score, threshold)))
	}
	lines = append(lines, field("overall", FormatConfidence(r.Confidence.Overall, threshold)))

	if failed := failedValidations(r); len(failed) > 0 {
		lines = append(lines, "", BoldStyle.Render("Validation"))
		lines = append(lines, failed...)
	}

	return RenderBox(r.Descriptive.Title, strings.Join(lines, "\n"))
}

func failedValidations(r *model.MetadataRecord) []string {
	var out []string
	for _, name := range model.ApprovalValidations {
		res, ok := r.Validation[name]
		if !ok || res.Valid {
			continue
		}
		msg := name + ": " + res.Error
		if len(res.Suggestions) > 0 {
			msg += " (did you mean " + strings.Join(res.Suggestions, ", ") + "?)"
		}
		out = append(out, FormatError(msg))
	}
	return out
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}
