// Package classification resolves observation bundles into faceted taxonomy metadata.
package classification

import (
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/pattern"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

// Resolver turns observations into faceted metadata. It holds no per-call
// state, so one Resolver may serve concurrent callers.
type Resolver struct {
	vocab         *vocabulary.Store
	keywords      *pattern.Matcher
	categoryRules pattern.Table
}

// NewResolver creates a resolver over the given vocabulary.
func NewResolver(vocab *vocabulary.Store) *Resolver {
	rules := vocab.CategoryKeywordMappings()
	return &Resolver{
		vocab:         vocab,
		keywords:      pattern.NewMatcher(rules),
		categoryRules: rules,
	}
}

// Resolve produces the full faceted metadata for a bundle. Every field ends
// with a concrete value; ambiguity resolves to defaults, never to an error.
func (r *Resolver) Resolve(b model.ObservationBundle) model.FacetedMetadata {
	itemType := r.ResolveItemType(b)
	return model.FacetedMetadata{
		ItemType: itemType,
		Gender:   r.ResolveGender(b),
		Hierarchical: model.HierarchicalFacets{
			ItemType:   r.ResolveItemTypeFacet(itemType, b),
			StyleUsage: r.ResolveStyleFacet(b),
		},
		Flat: r.ResolveFlat(b),
	}
}

// ResolveItemType decides between Apparel and Footwear. Row Category text wins
// over image signals whenever it is present.
func (r *Resolver) ResolveItemType(b model.ObservationBundle) model.ItemType {
	if category := b.Row.Get(model.FieldCategory); category != "" {
		if pattern.ContainsAny(category, rowFootwearSignals...) {
			return model.ItemTypeFootwear
		}
		return model.ItemTypeApparel
	}

	for _, name := range categoryNames(b.Image) {
		if pattern.ContainsAny(name, imageFootwearSignals...) {
			return model.ItemTypeFootwear
		}
	}
	return model.ItemTypeApparel
}

// ResolveGender checks row Gender, then manual gender, then image category names.
func (r *Resolver) ResolveGender(b model.ObservationBundle) model.Gender {
	if g := b.Row.Get(model.FieldGender); g != "" {
		return genderFrom(g)
	}
	if b.Product != nil {
		if g := strings.TrimSpace(b.Product.Gender); g != "" {
			return genderFrom(g)
		}
	}

	for _, name := range categoryNames(b.Image) {
		switch {
		case pattern.ContainsAny(name, imageWomenSignals...):
			return model.GenderWomen
		case pattern.ContainsAny(name, imageMenSignals...):
			return model.GenderMen
		}
	}
	return model.GenderUnisex
}

func genderFrom(text string) model.Gender {
	switch {
	case pattern.ContainsAny(text, womenSignals...):
		return model.GenderWomen
	case pattern.ContainsAny(text, menSignals...):
		return model.GenderMen
	default:
		return model.GenderUnisex
	}
}

// ResolveItemTypeFacet builds the item_type > category > product type path.
func (r *Resolver) ResolveItemTypeFacet(itemType model.ItemType, b model.ObservationBundle) model.HierarchicalFacet {
	tree := r.vocab.ItemTypeHierarchy()
	branches, _ := tree.Get(string(itemType))

	// Row SubCategory decides when it names a category; otherwise image
	// candidates get their turn even if other row fields are present.
	var level2, level3 string
	if b.Row.Has(model.FieldSubCategory) {
		level2, level3 = matchRowCategory(branches, b.Row.Get(model.FieldSubCategory), b.Row.Get(model.FieldProductType))
	}
	if level2 == "" {
		names := categoryNames(b.Image)
		level2, level3 = matchCategoryDirect(branches, names)
		if level2 == "" {
			level2, level3 = r.matchCategoryKeywords(branches, names)
		}
	}

	if level2 == "" {
		level2, _, _ = branches.First()
	}
	if level3 == "" {
		level3 = fallbackProductType(branches, level2)
	}

	return model.NewHierarchicalFacet(string(itemType), level2, level3)
}

// matchRowCategory maps row SubCategory to a category key (exact, then
// substring either way) and ProductType to one of its product types.
func matchRowCategory(branches vocabulary.Branches, subCategory, productType string) (string, string) {
	if subCategory == "" {
		return "", ""
	}

	category := ""
	if branches.Has(subCategory) {
		category = subCategory
	} else {
		sub := strings.ToLower(subCategory)
		for _, key := range branches.Keys() {
			k := strings.ToLower(key)
			if strings.Contains(sub, k) || strings.Contains(k, sub) {
				category = key
				break
			}
		}
	}
	if category == "" {
		return "", ""
	}

	types, _ := branches.Get(category)
	for _, pt := range types {
		if pt == productType {
			return category, pt
		}
	}
	for _, pt := range types {
		if productType != "" && strings.EqualFold(pt, productType) {
			return category, pt
		}
	}
	return category, firstOf(types)
}

// matchCategoryDirect looks for a category key inside an image category name,
// a key token inside the name, or the name inside the key.
func matchCategoryDirect(branches vocabulary.Branches, names []string) (string, string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		for _, key := range branches.Keys() {
			k := strings.ToLower(key)
			if strings.Contains(name, k) || pattern.ContainsAny(name, strings.Fields(k)...) || strings.Contains(k, name) {
				types, _ := branches.Get(key)
				return key, firstOf(types)
			}
		}
	}
	return "", ""
}

// matchCategoryKeywords runs image category names through the vocabulary's
// category keyword table and maps the canonical term onto a category key.
func (r *Resolver) matchCategoryKeywords(branches vocabulary.Branches, names []string) (string, string) {
	for _, name := range names {
		for _, match := range r.keywords.MatchAll(name) {
			rule, _ := r.categoryRules.Lookup(match.Term)
			category, ok := categoryForTerm(branches, match, rule.Keywords)
			if !ok {
				continue
			}
			types, _ := branches.Get(category)
			return category, productTypeForMatch(types, name, match)
		}
	}
	return "", ""
}

// categoryForTerm finds the category a canonical term belongs to: a category
// of the same name, else one whose name or product types mention the term or
// any of its keywords.
func categoryForTerm(branches vocabulary.Branches, match pattern.Match, keywords []string) (string, bool) {
	for _, key := range branches.Keys() {
		if strings.EqualFold(key, match.Term) {
			return key, true
		}
	}

	needles := []string{strings.ToLower(match.Term), strings.ToLower(match.Keyword)}
	for _, kw := range keywords {
		needles = append(needles, strings.ToLower(kw))
	}
	for _, key := range branches.Keys() {
		if pattern.ContainsAny(strings.ToLower(key), needles...) {
			return key, true
		}
		types, _ := branches.Get(key)
		for _, pt := range types {
			if pattern.ContainsAny(strings.ToLower(pt), needles...) {
				return key, true
			}
		}
	}
	return "", false
}

// productTypeForMatch picks the product type named by the term, else one
// sharing a token with the candidate name, else one mentioning the term or keyword.
func productTypeForMatch(types []string, name string, match pattern.Match) string {
	for _, pt := range types {
		if strings.EqualFold(pt, match.Term) {
			return pt
		}
	}
	for _, pt := range types {
		if pattern.ContainsAny(name, strings.Fields(strings.ToLower(pt))...) {
			return pt
		}
	}
	needles := []string{strings.ToLower(match.Term), strings.ToLower(match.Keyword)}
	for _, pt := range types {
		if pattern.ContainsAny(strings.ToLower(pt), needles...) {
			return pt
		}
	}
	return ""
}

func fallbackProductType(branches vocabulary.Branches, category string) string {
	types, _ := branches.Get(category)
	if pt := firstOf(types); pt != "" {
		return pt
	}
	if pt, ok := categoryProductTypeDefaults[category]; ok {
		return pt
	}
	return model.Unknown
}

// ResolveStyleFacet builds the usage > sub-style > style path from row Usage.
// Image signals are not consulted.
func (r *Resolver) ResolveStyleFacet(b model.ObservationBundle) model.HierarchicalFacet {
	style := r.vocab.StyleHierarchy()
	level1 := r.resolveUsage(style, b.Row.Get(model.FieldUsage))

	branches, _ := style.Get(level1)
	if branches.Len() == 0 {
		branches, _ = vocabulary.DefaultStyleHierarchy().Get(level1)
	}

	level2, entries, ok := branches.First()
	if !ok {
		return model.NewHierarchicalFacet(level1, model.Unknown, model.Unknown)
	}

	level3 := firstOf(entries)
	if level3 == "" {
		level3 = styleLevel3Defaults[level1]
	}
	return model.NewHierarchicalFacet(level1, level2, level3)
}

func (r *Resolver) resolveUsage(style vocabulary.Tree, usage string) string {
	if usage == "" {
		return defaultStyleLevel1
	}
	if style.Has(usage) {
		return usage
	}
	for _, rule := range usageRules {
		if pattern.ContainsAny(usage, rule.Keywords...) {
			return rule.Term
		}
	}

	u := strings.ToLower(usage)
	for _, key := range style.Keys() {
		k := strings.ToLower(key)
		if strings.Contains(u, k) || strings.Contains(k, u) {
			return key
		}
	}
	return defaultStyleLevel1
}

// ResolveFlat resolves single-level facets. Color, material and pattern prefer
// image observations; size and brand prefer manual input; row data is the
// fallback for all of them.
func (r *Resolver) ResolveFlat(b model.ObservationBundle) model.FlatFacets {
	var manualSize, manualBrand model.Observation
	if b.Product != nil {
		manualSize = model.Single(b.Product.Size)
		manualBrand = model.Single(b.Product.Brand)
	}

	return model.FlatFacets{
		Color:           flatValue(b.Image.Get(model.AxisColor), b.Row, model.FieldColour),
		Material:        flatValue(b.Image.Get(model.AxisMaterial), b.Row, model.FieldMaterial),
		Pattern:         flatValue(b.Image.Get(model.AxisPattern), b.Row, model.FieldPattern),
		Size:            flatValue(manualSize, b.Row, model.FieldSize),
		Brand:           flatValue(manualBrand, b.Row, model.FieldBrand),
		ProductID:       b.Row.Get(model.FieldProductID),
		ProductTitle:    b.Row.Get(model.FieldProductTitle),
		ImageURL:        b.Row.Get(model.FieldImageURL),
		ImageFile:       b.Row.Get(model.FieldImage),
		ColorDetails:    rankedDetails(b.Image.Get(model.AxisColor)),
		MaterialDetails: rankedDetails(b.Image.Get(model.AxisMaterial)),
		PatternDetails:  rankedDetails(b.Image.Get(model.AxisPattern)),
		StyleDetails:    rankedDetails(b.Image.Get(model.AxisStyle)),
	}
}

func flatValue(primary model.Observation, row model.Row, field string) string {
	if v, ok := primary.Primary(); ok {
		return v
	}
	if v := row.Get(field); v != "" {
		return v
	}
	return model.Unknown
}

func rankedDetails(o model.Observation) []model.Candidate {
	if o.Kind != model.ObservationRanked {
		return nil
	}
	return o.Candidates
}

// categoryNames returns lowercased image category names in confidence order.
func categoryNames(attrs model.ImageAttributes) []string {
	candidates := attrs.Candidates(model.AxisCategory)
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, strings.ToLower(strings.TrimSpace(c.Name)))
	}
	return names
}

func firstOf(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
