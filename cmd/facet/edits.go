package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
)

var (
	errNoEdits      = errors.New("no edits")
	errBadEdit      = errors.New("invalid edit")
	errUnknownField = errors.New("unknown field")
)

// editSetters maps --set keys onto edit fields. Style levels accept both
// style_level_N and facet2_levelN.
var editSetters = map[string]func(*model.Edits, string){
	"item_type":         func(e *model.Edits, v string) { e.ItemType = &v },
	"category":          func(e *model.Edits, v string) { e.Category = &v },
	"product_type":      func(e *model.Edits, v string) { e.ProductType = &v },
	"style_level_1":     func(e *model.Edits, v string) { e.StyleLevel1 = &v },
	"style_level_2":     func(e *model.Edits, v string) { e.StyleLevel2 = &v },
	"style_level_3":     func(e *model.Edits, v string) { e.StyleLevel3 = &v },
	"gender":            func(e *model.Edits, v string) { e.Gender = &v },
	"color":             func(e *model.Edits, v string) { e.Color = &v },
	"material":          func(e *model.Edits, v string) { e.Material = &v },
	"pattern":           func(e *model.Edits, v string) { e.Pattern = &v },
	"size":              func(e *model.Edits, v string) { e.Size = &v },
	"brand":             func(e *model.Edits, v string) { e.Brand = &v },
	"title":             func(e *model.Edits, v string) { e.Title = &v },
	"short_description": func(e *model.Edits, v string) { e.ShortDescription = &v },
	"long_description":  func(e *model.Edits, v string) { e.LongDescription = &v },
}

var editAliases = map[string]string{
	"itemtype":      "item_type",
	"facet1_level1": "item_type",
	"facet1_level2": "category",
	"facet1_level3": "product_type",
	"producttype":   "product_type",
	"facet2_level1": "style_level_1",
	"facet2_level2": "style_level_2",
	"facet2_level3": "style_level_3",
	"usage":         "style_level_1",
	"colour":        "color",
}

func editableFields() []string {
	fields := make([]string, 0, len(editSetters))
	for f := range editSetters {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// parseEdits turns field=value pairs into an edit set. Keys are matched
// case-insensitively with '-' treated as '_'. A later pair for the same field
// wins.
func parseEdits(pairs []string) (model.Edits, error) {
	var edits model.Edits
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return model.Edits{}, fmt.Errorf("%w: %q is not field=value", errBadEdit, pair)
		}

		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
		if alias, found := editAliases[key]; found {
			key = alias
		}
		setter, found := editSetters[key]
		if !found {
			return model.Edits{}, fmt.Errorf("%w: %q", errUnknownField, key)
		}
		setter(&edits, strings.TrimSpace(value))
	}
	return edits, nil
}
