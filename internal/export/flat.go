package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/model"
)

// FlatColumns is the header of the flattened table.
var FlatColumns = []string{
	"product_id", "item_type", "gender",
	"facet1_level1", "facet1_level2", "facet1_level3", "facet1_path",
	"facet2_level1", "facet2_level2", "facet2_level3", "facet2_path",
	"color", "material", "pattern", "size", "brand",
	"title", "status", "overall_confidence",
}

// FlattenRecord returns one table row in FlatColumns order.
func FlattenRecord(r *model.MetadataRecord) []string {
	f1 := r.Faceted.Hierarchical.ItemType
	f2 := r.Faceted.Hierarchical.StyleUsage
	flat := r.Faceted.Flat
	return []string{
		flat.ProductID, string(r.Faceted.ItemType), string(r.Faceted.Gender),
		f1.Level1, f1.Level2, f1.Level3, f1.FullPath,
		f2.Level1, f2.Level2, f2.Level3, f2.FullPath,
		flat.Color, flat.Material, flat.Pattern, flat.Size, flat.Brand,
		r.Descriptive.Title, string(r.Status), strconv.FormatFloat(r.Confidence.Overall, 'f', 2, 64),
	}
}

// FlatTable returns the header followed by one row per record.
func FlatTable(records []*model.MetadataRecord) [][]string {
	table := make([][]string, 0, len(records)+1)
	table = append(table, append([]string(nil), FlatColumns...))
	for _, r := range records {
		table = append(table, FlattenRecord(r))
	}
	return table
}

// Records returns the records of successful outcomes, in order.
func Records(outcomes []engine.Outcome) []*model.MetadataRecord {
	var records []*model.MetadataRecord
	for _, o := range outcomes {
		if !o.Failed() && o.Record != nil {
			records = append(records, o.Record)
		}
	}
	return records
}

// WriteFlatCSV writes the flattened table for records.
func WriteFlatCSV(w io.Writer, records []*model.MetadataRecord) error {
	return writeCSV(w, FlatTable(records))
}

func writeCSV(w io.Writer, table [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
