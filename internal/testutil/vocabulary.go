package testutil

import (
	"testing"

	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

// VocabularyBuilder provides a fluent interface for constructing test vocabularies.
// It starts from the built-in vocabulary unless Empty is called.
//
// Example:
//
//	store := testutil.NewVocabularyBuilder(t).
//		WithColors("Black", "Maroon").
//		WithColorKeywords("Maroon", "burgundy", "wine").
//		Build()
type VocabularyBuilder struct {
	t   *testing.T
	doc *vocabulary.Document
}

// NewVocabularyBuilder creates a builder seeded with the built-in vocabulary.
func NewVocabularyBuilder(t *testing.T) *VocabularyBuilder {
	t.Helper()
	return &VocabularyBuilder{t: t, doc: vocabulary.DefaultDocument()}
}

// Empty discards every section, including the style hierarchy.
func (b *VocabularyBuilder) Empty() *VocabularyBuilder {
	b.doc = &vocabulary.Document{}
	return b
}

// WithVersion sets the document version.
func (b *VocabularyBuilder) WithVersion(version string) *VocabularyBuilder {
	b.doc.Version = version
	return b
}

// WithGenders replaces the gender list.
func (b *VocabularyBuilder) WithGenders(genders ...string) *VocabularyBuilder {
	b.doc.Gender = genders
	return b
}

// WithColors replaces the color list.
func (b *VocabularyBuilder) WithColors(colors ...string) *VocabularyBuilder {
	b.doc.Colors = colors
	return b
}

// WithMaterials replaces the material list.
func (b *VocabularyBuilder) WithMaterials(materials ...string) *VocabularyBuilder {
	b.doc.Materials = materials
	return b
}

// WithPatterns replaces the pattern list.
func (b *VocabularyBuilder) WithPatterns(patterns ...string) *VocabularyBuilder {
	b.doc.Patterns = patterns
	return b
}

// WithUsages replaces the usage list.
func (b *VocabularyBuilder) WithUsages(usages ...string) *VocabularyBuilder {
	b.doc.Usages = usages
	return b
}

// WithBrands replaces the brand list.
func (b *VocabularyBuilder) WithBrands(brands ...string) *VocabularyBuilder {
	b.doc.Brands = brands
	return b
}

// WithCategory appends a category under itemType, registering the item type
// if needed, with optional product types.
func (b *VocabularyBuilder) WithCategory(itemType, category string, productTypes ...string) *VocabularyBuilder {
	if !containsString(b.doc.ItemType, itemType) {
		b.doc.ItemType = append(b.doc.ItemType, itemType)
	}

	categories, _ := b.doc.Categories.Get(itemType)
	if !containsString(categories, category) {
		categories = append(categories, category)
	}
	b.doc.Categories.Set(itemType, categories)

	if len(productTypes) > 0 {
		branches, _ := b.doc.ProductTypes.Get(itemType)
		branches.Set(category, productTypes)
		b.doc.ProductTypes.Set(itemType, branches)
	}
	return b
}

// WithStyle adds a style branch.
func (b *VocabularyBuilder) WithStyle(level1, level2 string, level3 ...string) *VocabularyBuilder {
	branches, _ := b.doc.StyleHierarchy.Get(level1)
	if level2 != "" {
		branches.Set(level2, level3)
	}
	b.doc.StyleHierarchy.Set(level1, branches)
	return b
}

// WithoutStyleHierarchy drops the style hierarchy section.
func (b *VocabularyBuilder) WithoutStyleHierarchy() *VocabularyBuilder {
	b.doc.StyleHierarchy = vocabulary.Tree{}
	return b
}

// WithCategoryKeywords adds a category keyword rule.
func (b *VocabularyBuilder) WithCategoryKeywords(term string, keywords ...string) *VocabularyBuilder {
	b.doc.CategoryKeywordMapping.Set(term, keywords)
	return b
}

// WithColorKeywords adds a color keyword rule.
func (b *VocabularyBuilder) WithColorKeywords(term string, keywords ...string) *VocabularyBuilder {
	b.doc.ColorKeywordMapping.Set(term, keywords)
	return b
}

// WithMaterialKeywords adds a material keyword rule.
func (b *VocabularyBuilder) WithMaterialKeywords(term string, keywords ...string) *VocabularyBuilder {
	b.doc.MaterialKeywordMapping.Set(term, keywords)
	return b
}

// Document returns the document built so far.
func (b *VocabularyBuilder) Document() *vocabulary.Document {
	return b.doc
}

// Build creates the store.
func (b *VocabularyBuilder) Build(opts ...vocabulary.Option) *vocabulary.Store {
	b.t.Helper()
	return vocabulary.New(b.doc, opts...)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
