package evaluate

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Navy", "navy", true},
		{" Dress ", "dress", true},
		{"", "", false},
		{"Red", "", false},
		{"Red", "Maroon", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Equal(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestValue(t *testing.T) {
	row := map[string]string{"Colour": "nan", "Color": " Red ", "color": "Blue"}
	assert.Equal(t, "Red", Value(row, "Colour", "Color", "color"))
	assert.Equal(t, "", Value(row, "Material"))
	assert.Equal(t, "", Value(map[string]string{"Pattern": "None"}, "Pattern"))
}

func TestEvaluate(t *testing.T) {
	gold := Table{
		{"ProductId": "1", "Item-type": "Apparel", "Category": "Dress", "Colour": "Red", "Material": "Silk", "Pattern": "Solid"},
		{"ProductId": "2", "Item-type": "Footwear", "Category": "Shoes", "Colour": "Black", "Material": "", "Pattern": "nan"},
		{"ProductId": "3", "Item-type": "Apparel", "Category": "Topwear", "Colour": "Blue"},
	}
	ai := Table{
		{"product_id": "1", "item_type": "apparel", "facet1_level2": "Dress", "color": "red", "material": "Cotton", "pattern": "Solid"},
		{"product_id": "2", "item_type": "Footwear", "facet1_level2": "Sandals", "color": "Black", "material": "Leather"},
	}

	result := Evaluate(gold, ai, 0)
	assert.Equal(t, []string{"3"}, result.MissingProducts)
	assert.Equal(t, 2, result.TotalProcessed)
	require.Len(t, result.Details, 2)
	assert.Equal(t, FieldComparison{Gold: "Red", AI: "red", Match: true}, result.Details[0].Fields["color"])

	byName := map[string]AttributeAccuracy{}
	for _, a := range result.Summary.Attributes {
		byName[a.Name] = a
	}

	assert.Equal(t, AttributeAccuracy{Name: "item_type", Accuracy: 100, Matches: 2, Total: 2}, byName["item_type"])
	assert.Equal(t, AttributeAccuracy{Name: "facet1_level1", Accuracy: 100, Matches: 2, Total: 2}, byName["facet1_level1"])
	assert.Equal(t, AttributeAccuracy{Name: "facet1_level2", Accuracy: 50, Matches: 1, Total: 2}, byName["facet1_level2"])
	assert.Equal(t, AttributeAccuracy{Name: "color", Accuracy: 100, Matches: 2, Total: 2}, byName["color"])
	assert.Equal(t, AttributeAccuracy{Name: "material", Accuracy: 0, Matches: 0, Total: 1}, byName["material"])
	assert.Equal(t, AttributeAccuracy{Name: "pattern", Accuracy: 100, Matches: 1, Total: 1}, byName["pattern"])
	_, hasStyle := byName["facet2_level1"]
	assert.False(t, hasStyle)

	// (100 + 100 + 50 + 100 + 0 + 100) / 6
	assert.True(t, result.Summary.HasOverall)
	assert.InDelta(t, 75.0, result.Summary.Overall, 1e-9)
}

func TestEvaluate_Limit(t *testing.T) {
	gold := Table{{"ProductId": "1", "Colour": "Red"}, {"ProductId": "2", "Colour": "Blue"}}
	ai := Table{{"ProductId": "2", "Colour": "Blue"}, {"ProductId": "1", "Colour": "Red"}}

	result := Evaluate(gold, ai, 1)
	assert.Equal(t, []string{"1"}, result.MissingProducts)
	assert.Empty(t, result.Details)
	assert.False(t, result.Summary.HasOverall)
}

func TestReadTable(t *testing.T) {
	table, err := ReadTable(strings.NewReader("\ufeffProductId,Colour\n1,Red\n2\n"))
	require.NoError(t, err)
	assert.Equal(t, Table{
		{"ProductId": "1", "Colour": "Red"},
		{"ProductId": "2"},
	}, table)
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(Summary{
		Attributes: []AttributeAccuracy{{Name: "color", Accuracy: 87.5, Matches: 7, Total: 8}},
		Overall:    87.5,
		HasOverall: true,
	})
	assert.Contains(t, out, "color")
	assert.Contains(t, out, "87.5%")
	assert.Contains(t, out, "7/8")
	assert.Contains(t, strings.ToLower(out), "overall")
}

func TestWriteDetailedCSV(t *testing.T) {
	var buf bytes.Buffer
	details := []Comparison{{
		ProductID: "1",
		Fields:    map[string]FieldComparison{"color": {Gold: "Red", AI: "red", Match: true}},
	}}
	require.NoError(t, WriteDetailedCSV(&buf, details))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, DetailedColumns(), rows[0])
	assert.Len(t, rows[1], 1+3*len(Attributes))
	assert.Equal(t, "1", rows[1][0])

	colorIdx := 1 + 3*7
	assert.Equal(t, []string{"Red", "red", "YES"}, rows[1][colorIdx:colorIdx+3])
	assert.Equal(t, "NO", rows[1][3])
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, Summary{Overall: 50, HasOverall: true}))
	assert.Contains(t, buf.String(), `"overall": 50`)
}
