package evaluate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummary renders the accuracy table.
func RenderSummary(s Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Attribute Accuracy")
	tw.AppendHeader(table.Row{"Attribute", "Accuracy", "Matches"})

	for _, a := range s.Attributes {
		tw.AppendRow(table.Row{a.Name, fmt.Sprintf("%5.1f%%", a.Accuracy), fmt.Sprintf("%d/%d", a.Matches, a.Total)})
	}
	if s.HasOverall {
		tw.AppendFooter(table.Row{"Overall", fmt.Sprintf("%5.1f%%", s.Overall), ""})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// DetailedColumns is the header of the detailed comparison CSV.
func DetailedColumns() []string {
	cols := []string{"ProductId"}
	for _, attr := range Attributes {
		cols = append(cols, attr+"_gold", attr+"_ai", attr+"_match")
	}
	return cols
}

// WriteDetailedCSV writes one row per compared product.
func WriteDetailedCSV(w io.Writer, details []Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DetailedColumns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, d := range details {
		row := []string{d.ProductID}
		for _, attr := range Attributes {
			f := d.Fields[attr]
			match := "NO"
			if f.Match {
				match = "YES"
			}
			row = append(row, f.Gold, f.AI, match)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
