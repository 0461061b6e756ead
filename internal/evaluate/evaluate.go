// Package evaluate scores generated metadata against a gold-standard table by
// case-insensitive exact match per attribute.
package evaluate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Table is a CSV file as rows keyed by header.
type Table []map[string]string

// Attributes are compared in this order.
var Attributes = []string{
	"item_type", "facet1_level1", "facet1_level2", "facet1_level3",
	"facet2_level1", "facet2_level2", "facet2_level3",
	"color", "material", "pattern",
}

// columnAliases lists, per attribute, the gold and generated column names to
// try in order.
var columnAliases = map[string]struct{ gold, ai []string }{
	"item_type": {
		gold: []string{"Item-type", "ItemType", "Category", "item_type", "Item Type"},
		ai:   []string{"Item-type", "ItemType", "item_type", "facet1_level1"},
	},
	"facet1_level2": {
		gold: []string{"Category", "SubCategory", "Itemcategory", "ItemCategory", "Item-category"},
		ai:   []string{"Itemcategory", "ItemCategory", "Category", "category", "facet1_level2"},
	},
	"facet1_level3": {
		gold: []string{"ProductType", "product_type", "Product Type", "Product-Type"},
		ai:   []string{"ProductType", "product_type", "facet1_level3"},
	},
	"facet2_level1": {
		gold: []string{"Usage", "usage", "Style", "style"},
		ai:   []string{"Usage", "usage", "facet2_level1"},
	},
	"facet2_level2": {
		gold: []string{"substyle", "SubStyle", "Sub-Style", "Substyle", "Sub Style"},
		ai:   []string{"substyle", "Sub-Style", "SubStyle", "Substyle", "facet2_level2"},
	},
	"facet2_level3": {
		gold: []string{"specific-style", "SpecificStyle", "specific_style", "Specific Style"},
		ai:   []string{"specific-style", "Specific Style", "SpecificStyle", "specific_style", "facet2_level3"},
	},
	"color": {
		gold: []string{"Colour", "Color", "colour", "color"},
		ai:   []string{"Colour", "Color", "color"},
	},
	"material": {
		gold: []string{"Material", "material"},
		ai:   []string{"Material", "material"},
	},
	"pattern": {
		gold: []string{"Pattern", "pattern"},
		ai:   []string{"Pattern", "pattern"},
	},
}

// aliasesFor returns the columns for attr; facet1_level1 shares the item
// type columns.
func aliasesFor(attr string) (gold, ai []string) {
	if attr == "facet1_level1" {
		attr = "item_type"
	}
	a := columnAliases[attr]
	return a.gold, a.ai
}

var productIDColumns = []string{"ProductId", "product_id", "Product ID"}

// FieldComparison is one attribute of one product.
type FieldComparison struct {
	Gold  string `json:"gold"`
	AI    string `json:"ai"`
	Match bool   `json:"match"`
}

// Comparison is every attribute of one product.
type Comparison struct {
	Fields    map[string]FieldComparison `json:"fields"`
	ProductID string                     `json:"product_id"`
}

// AttributeAccuracy is the accuracy of one attribute over rows with a gold value.
type AttributeAccuracy struct {
	Name     string  `json:"name"`
	Accuracy float64 `json:"accuracy"`
	Matches  int     `json:"matches"`
	Total    int     `json:"total"`
}

// Summary holds per-attribute accuracies and their mean.
type Summary struct {
	Attributes []AttributeAccuracy `json:"attributes"`
	Overall    float64             `json:"overall"`
	HasOverall bool                `json:"has_overall"`
}

// Result is a full evaluation run.
type Result struct {
	Timestamp       time.Time    `json:"timestamp"`
	Details         []Comparison `json:"detailed_results"`
	MissingProducts []string     `json:"missing_products"`
	Summary         Summary      `json:"summary"`
	TotalProcessed  int          `json:"total_processed"`
}

// Evaluate joins gold and generated rows by product id and scores each
// attribute. A positive limit truncates both tables first. Gold products with
// no generated row are listed as missing.
func Evaluate(gold, ai Table, limit int) Result {
	if limit > 0 {
		gold = truncate(gold, limit)
		ai = truncate(ai, limit)
	}

	goldIDs, goldByID := index(gold)
	_, aiByID := index(ai)

	result := Result{Timestamp: time.Now().UTC(), MissingProducts: []string{}}
	for _, id := range goldIDs {
		aiRow, ok := aiByID[id]
		if !ok {
			result.MissingProducts = append(result.MissingProducts, id)
			continue
		}
		cmp := compareRows(goldByID[id], aiRow)
		cmp.ProductID = id
		result.Details = append(result.Details, cmp)
	}

	result.TotalProcessed = len(result.Details)
	result.Summary = summarize(result.Details)
	return result
}

func truncate(t Table, n int) Table {
	if len(t) > n {
		return t[:n]
	}
	return t
}

// index keys rows by product id in first-seen order; later duplicates win.
func index(t Table) ([]string, map[string]map[string]string) {
	var ids []string
	byID := make(map[string]map[string]string, len(t))
	for _, row := range t {
		id := Value(row, productIDColumns...)
		if _, seen := byID[id]; !seen {
			ids = append(ids, id)
		}
		byID[id] = row
	}
	return ids, byID
}

func compareRows(gold, ai map[string]string) Comparison {
	cmp := Comparison{Fields: make(map[string]FieldComparison, len(Attributes))}
	for _, attr := range Attributes {
		goldKeys, aiKeys := aliasesFor(attr)
		g := Value(gold, goldKeys...)
		a := Value(ai, aiKeys...)
		cmp.Fields[attr] = FieldComparison{Gold: g, AI: a, Match: Equal(g, a)}
	}
	return cmp
}

// Value returns the first non-empty value among keys. "nan", "none" and
// "null" count as empty.
func Value(row map[string]string, keys ...string) string {
	for _, key := range keys {
		v, ok := row[key]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		switch strings.ToLower(v) {
		case "", "nan", "none", "null":
			continue
		}
		return v
	}
	return ""
}

// Equal compares trimmed values case-insensitively. Empty on either side is a
// mismatch.
func Equal(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func summarize(details []Comparison) Summary {
	var s Summary
	if len(details) == 0 {
		return s
	}

	var sum float64
	for _, attr := range Attributes {
		acc := AttributeAccuracy{Name: attr}
		for _, d := range details {
			f := d.Fields[attr]
			if f.Gold == "" {
				continue
			}
			acc.Total++
			if f.Match {
				acc.Matches++
			}
		}
		if acc.Total == 0 {
			continue
		}
		acc.Accuracy = float64(acc.Matches) / float64(acc.Total) * 100
		sum += acc.Accuracy
		s.Attributes = append(s.Attributes, acc)
	}

	if len(s.Attributes) > 0 {
		s.Overall = sum / float64(len(s.Attributes))
		s.HasOverall = true
	}
	return s
}

// ReadTable reads a CSV file with a header row.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var table Table
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table)+1, err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		table = append(table, row)
	}
	return table, nil
}

// ReadTableFile reads a CSV file from disk.
func ReadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadTable(f)
}
