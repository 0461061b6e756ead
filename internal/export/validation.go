package export

import (
	"io"
	"strings"

	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/model"
)

// ValidationColumns is the header of the validation comparison table.
var ValidationColumns = []string{
	"ProductId", "Status",
	"Original_Title", "Generated_Title", "Title_Match",
	"Original_Gender", "Generated_Gender", "Gender_Match",
	"Original_Color", "Generated_Color", "Color_Match",
	"Original_Category", "Generated_Item_Type", "Generated_Category", "Generated_Product_Type", "Category_Match",
	"Original_Usage", "Generated_Style_Level1", "Generated_Style_Level2", "Generated_Style_Level3",
	"Notes",
}

// ValidationTable compares each source row with what was generated for it.
// Failed rows become ERROR rows carrying the error text in Notes.
func ValidationTable(outcomes []engine.Outcome) [][]string {
	table := [][]string{append([]string(nil), ValidationColumns...)}
	for _, o := range outcomes {
		productID := o.Row.Get(model.FieldProductID)
		if o.Failed() || o.Record == nil {
			row := make([]string, len(ValidationColumns))
			row[0], row[1] = productID, "ERROR"
			row[len(row)-1] = o.Message()
			table = append(table, row)
			continue
		}

		r := o.Record
		f1 := r.Faceted.Hierarchical.ItemType
		f2 := r.Faceted.Hierarchical.StyleUsage

		origTitle := o.Row.Get(model.FieldProductTitle)
		origGender := o.Row.Get(model.FieldGender)
		origColor := o.Row.Get(model.FieldColour)
		origCategory := o.Row.Get(model.FieldCategory)

		genTitle := r.Descriptive.Title
		genGender := string(r.Faceted.Gender)
		genColor := r.Faceted.Flat.Color

		table = append(table, []string{
			productID, "SUCCESS",
			origTitle, genTitle, yesNo(titleMatches(origTitle, genTitle)),
			origGender, genGender, yesNo(strings.EqualFold(origGender, genGender)),
			origColor, genColor, yesNo(strings.EqualFold(origColor, genColor)),
			origCategory, f1.Level1, f1.Level2, f1.Level3,
			yesNo(strings.EqualFold(origCategory, f1.Level2) || strings.EqualFold(origCategory, f1.Level1)),
			o.Row.Get(model.FieldUsage), f2.Level1, f2.Level2, f2.Level3,
			"",
		})
	}
	return table
}

// WriteValidationCSV writes the validation comparison table.
func WriteValidationCSV(w io.Writer, outcomes []engine.Outcome) error {
	return writeCSV(w, ValidationTable(outcomes))
}

// titleMatches reports whether either title contains the other.
func titleMatches(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(b, a) || strings.Contains(a, b)
}

func yesNo(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}
