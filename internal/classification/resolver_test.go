package classification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/testutil"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

func imageCategories(names ...string) model.ImageAttributes {
	candidates := make([]model.Candidate, 0, len(names))
	for i, n := range names {
		candidates = append(candidates, model.Candidate{Name: n, Confidence: 0.9 - float64(i)*0.1})
	}
	return model.ImageAttributes{model.AxisCategory: model.Ranked(candidates...)}
}

func TestResolver_ImageOnlyDress(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	got := r.Resolve(model.ObservationBundle{
		Row: model.Row{"Gender": "Women", "Brand": "Zara", "Image": "dress1.jpg"},
		Image: model.ImageAttributes{
			model.AxisCategory: model.Ranked(model.Candidate{Name: "dress", Confidence: 0.95}),
			model.AxisColor:    model.Ranked(model.Candidate{Name: "Red", Confidence: 0.9}),
		},
	})

	assert.Equal(t, model.ItemTypeApparel, got.ItemType)
	assert.Equal(t, model.GenderWomen, got.Gender)
	assert.Equal(t, "Dress", got.Hierarchical.ItemType.Level2)
	assert.Equal(t, "Dresses", got.Hierarchical.ItemType.Level3)
	assert.Equal(t, "Apparel > Dress > Dresses", got.Hierarchical.ItemType.FullPath)
	assert.Equal(t, "Red", got.Flat.Color)
	assert.Equal(t, "Zara", got.Flat.Brand)
	assert.Equal(t, "dress1.jpg", got.Flat.ImageFile)
	assert.Equal(t, model.Unknown, got.Flat.Material)
	assert.Equal(t, []model.Candidate{{Name: "Red", Confidence: 0.9}}, got.Flat.ColorDetails)
}

func TestResolver_RowCategoryFootwear(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	// Image signals pointing elsewhere must not override the row.
	for _, image := range []model.ImageAttributes{nil, imageCategories("denim jacket")} {
		got := r.Resolve(model.ObservationBundle{
			Row:   model.Row{"Category": "Footwear - Sneaker"},
			Image: image,
		})
		assert.Equal(t, model.ItemTypeFootwear, got.ItemType)
		assert.Equal(t, "Footwear", got.Hierarchical.ItemType.Level1)
	}
}

func TestResolver_ResolveItemType(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	tests := []struct {
		name   string
		bundle model.ObservationBundle
		want   model.ItemType
	}{
		{name: "row shoe", bundle: model.ObservationBundle{Row: model.Row{"Category": "Casual Shoe"}}, want: model.ItemTypeFootwear},
		{name: "row check is case sensitive", bundle: model.ObservationBundle{Row: model.Row{"Category": "footwear"}}, want: model.ItemTypeApparel},
		{name: "row apparel", bundle: model.ObservationBundle{Row: model.Row{"Category": "Apparel"}}, want: model.ItemTypeApparel},
		{name: "image sneaker", bundle: model.ObservationBundle{Image: imageCategories("jacket", "White Sneakers")}, want: model.ItemTypeFootwear},
		{name: "image without footwear", bundle: model.ObservationBundle{Image: imageCategories("t-shirt")}, want: model.ItemTypeApparel},
		{name: "nothing", bundle: model.ObservationBundle{}, want: model.ItemTypeApparel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveItemType(tt.bundle))
		})
	}
}

func TestResolver_ResolveGender(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	tests := []struct {
		name   string
		bundle model.ObservationBundle
		want   model.Gender
	}{
		{name: "row women", bundle: model.ObservationBundle{Row: model.Row{"Gender": "Women"}}, want: model.GenderWomen},
		{name: "row girls", bundle: model.ObservationBundle{Row: model.Row{"Gender": "Girls"}}, want: model.GenderWomen},
		{name: "row boys", bundle: model.ObservationBundle{Row: model.Row{"Gender": "Boys"}}, want: model.GenderMen},
		{name: "row female", bundle: model.ObservationBundle{Row: model.Row{"Gender": "Female"}}, want: model.GenderWomen},
		{name: "row unrecognized", bundle: model.ObservationBundle{Row: model.Row{"Gender": "Kids"}}, want: model.GenderUnisex},
		{
			name: "row beats manual",
			bundle: model.ObservationBundle{
				Row:     model.Row{"Gender": "Men"},
				Product: &model.ProductInfo{Gender: "Women"},
			},
			want: model.GenderMen,
		},
		{name: "manual", bundle: model.ObservationBundle{Product: &model.ProductInfo{Gender: "Women"}}, want: model.GenderWomen},
		{name: "image womens", bundle: model.ObservationBundle{Image: imageCategories("womens kurta")}, want: model.GenderWomen},
		{name: "image mens", bundle: model.ObservationBundle{Image: imageCategories("tee", "mens polo")}, want: model.GenderMen},
		{name: "no signal", bundle: model.ObservationBundle{Image: imageCategories("dress")}, want: model.GenderUnisex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveGender(tt.bundle))
		})
	}
}

func TestResolver_ResolveItemTypeFacet(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	tests := []struct {
		name     string
		itemType model.ItemType
		bundle   model.ObservationBundle
		wantPath string
	}{
		{
			name:     "row exact subcategory and product type",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Row: model.Row{"SubCategory": "Topwear", "ProductType": "Shirts"}},
			wantPath: "Apparel > Topwear > Shirts",
		},
		{
			name:     "row substring subcategory, unknown product type takes first",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Row: model.Row{"SubCategory": "bottom", "ProductType": "Chinos"}},
			wantPath: "Apparel > Bottomwear > Jeans",
		},
		{
			name:     "row subcategory wins over image",
			itemType: model.ItemTypeApparel,
			bundle: model.ObservationBundle{
				Row:   model.Row{"SubCategory": "Bottomwear", "ProductType": "Shorts"},
				Image: imageCategories("dress"),
			},
			wantPath: "Apparel > Bottomwear > Shorts",
		},
		{
			name:     "image direct key match",
			itemType: model.ItemTypeFootwear,
			bundle:   model.ObservationBundle{Image: imageCategories("white sports shoes")},
			wantPath: "Footwear > Shoes > Casual Shoes",
		},
		{
			name:     "image keyword table t-shirt",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Image: imageCategories("t-shirt")},
			wantPath: "Apparel > Topwear > Tshirts",
		},
		{
			name:     "image keyword table cargo shorts",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Image: imageCategories("cargo shorts")},
			wantPath: "Apparel > Bottomwear > Shorts",
		},
		{
			name:     "image keyword table jeans",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Image: imageCategories("slim jeans")},
			wantPath: "Apparel > Bottomwear > Jeans",
		},
		{
			name:     "later candidate used when first has no match",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Image: imageCategories("handbag", "blouse")},
			wantPath: "Apparel > Topwear > Shirts",
		},
		{
			name:     "no signal falls back to first category and product type",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{},
			wantPath: "Apparel > Topwear > Tops",
		},
		{
			name:     "category without product types and no default",
			itemType: model.ItemTypeApparel,
			bundle:   model.ObservationBundle{Image: imageCategories("parka jacket")},
			wantPath: "Apparel > Outerwear > Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveItemTypeFacet(tt.itemType, tt.bundle)
			assert.Equal(t, tt.wantPath, got.FullPath)
		})
	}
}

func TestResolver_ItemTypeFacetKeywordSynonyms(t *testing.T) {
	store := testutil.NewVocabularyBuilder(t).
		Empty().
		WithCategory("Apparel", "Topwear", "Tees").
		WithCategory("Apparel", "Bottomwear", "Trousers").
		WithCategoryKeywords("Pants", "pants", "chino", "trouser").
		Build()
	r := NewResolver(store)

	// Neither "Pants" nor "chino" appears in the hierarchy; "trouser" does.
	got := r.ResolveItemTypeFacet(model.ItemTypeApparel, model.ObservationBundle{Image: imageCategories("chino")})
	assert.Equal(t, "Apparel > Bottomwear > Trousers", got.FullPath)
}

func TestResolver_ItemTypeFacetSparseVocabulary(t *testing.T) {
	store := testutil.NewVocabularyBuilder(t).
		Empty().
		WithCategory("Apparel", "Innerwear").
		Build()
	r := NewResolver(store)

	got := r.ResolveItemTypeFacet(model.ItemTypeApparel, model.ObservationBundle{})
	assert.Equal(t, "Apparel > Innerwear > Unknown", got.FullPath)

	// An item type absent from the vocabulary still yields a complete path.
	got = r.ResolveItemTypeFacet(model.ItemTypeFootwear, model.ObservationBundle{})
	assert.Equal(t, "Footwear > Unknown > Unknown", got.FullPath)
}

func TestResolver_ResolveStyleFacet(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	tests := []struct {
		usage    string
		wantPath string
	}{
		{usage: "", wantPath: "Casual > Everyday > Basic"},
		{usage: "Formal", wantPath: "Formal > Business > Professional"},
		{usage: "Smart Casual", wantPath: "Casual > Everyday > Basic"},
		{usage: "Sports", wantPath: "Sporty > Athletic > Performance"},
		{usage: "ethnic wear", wantPath: "Ethnic > Traditional > Classic"},
		{usage: "Party", wantPath: "Casual > Everyday > Basic"},
		{usage: "Athletic wear", wantPath: "Sporty > Athletic > Performance"},
		{usage: "sports", wantPath: "Casual > Everyday > Basic"},
		{usage: "SPORT", wantPath: "Casual > Everyday > Basic"},
	}

	for _, tt := range tests {
		t.Run(tt.usage, func(t *testing.T) {
			got := r.ResolveStyleFacet(model.ObservationBundle{Row: model.Row{"Usage": tt.usage}})
			assert.Equal(t, tt.wantPath, got.FullPath)
		})
	}
}

func TestResolver_StyleFacetIgnoresImage(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	got := r.ResolveStyleFacet(model.ObservationBundle{
		Image: model.ImageAttributes{model.AxisStyle: model.Single("Formal")},
	})
	assert.Equal(t, "Casual", got.Level1)
}

func TestResolver_StyleFacetFallbacks(t *testing.T) {
	store := testutil.NewVocabularyBuilder(t).
		WithoutStyleHierarchy().
		WithStyle("Formal", "").
		WithStyle("Festive", "Party").
		WithStyle("Resort", "").
		Build()
	r := NewResolver(store)

	tests := []struct {
		usage    string
		wantPath string
	}{
		{usage: "Formal", wantPath: "Formal > Business > Professional"},
		{usage: "Festive", wantPath: "Festive > Party > Unknown"},
		{usage: "Resort", wantPath: "Resort > Unknown > Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.usage, func(t *testing.T) {
			got := r.ResolveStyleFacet(model.ObservationBundle{Row: model.Row{"Usage": tt.usage}})
			assert.Equal(t, tt.wantPath, got.FullPath)
		})
	}
}

func TestResolver_ResolveFlat(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	got := r.ResolveFlat(model.ObservationBundle{
		Image: model.ImageAttributes{
			model.AxisColor:    model.Single("Navy"),
			model.AxisMaterial: model.Ranked(),
			model.AxisPattern:  model.Ranked(model.Candidate{Name: "Striped", Confidence: 0.8}),
		},
		Row: model.Row{
			"ProductId": "P-1", "Colour": "Blue", "Material": "Cotton",
			"Size": "M", "Brand": "RowBrand", "ProductTitle": "Row title", "ImageURL": "https://x/y.jpg",
		},
		Product: &model.ProductInfo{Brand: "ManualBrand"},
	})

	assert.Equal(t, "Navy", got.Color)
	assert.Equal(t, "Cotton", got.Material)
	assert.Equal(t, "Striped", got.Pattern)
	assert.Equal(t, "M", got.Size)
	assert.Equal(t, "ManualBrand", got.Brand)
	assert.Equal(t, "P-1", got.ProductID)
	assert.Equal(t, "Row title", got.ProductTitle)
	assert.Equal(t, "https://x/y.jpg", got.ImageURL)
	assert.Nil(t, got.ColorDetails)
	assert.Len(t, got.PatternDetails, 1)
}

func TestResolver_FullPathInvariant(t *testing.T) {
	r := NewResolver(vocabulary.New(nil))

	bundles := []model.ObservationBundle{
		{},
		{Row: model.Row{"Category": "Footwear", "SubCategory": "Nonsense"}},
		{Image: imageCategories("", "???")},
		{Image: imageCategories("women sandal"), Row: model.Row{"Usage": "Resort"}},
		{Row: model.Row{"SubCategory": "Dress", "Usage": "Formal"}},
	}

	for _, b := range bundles {
		got := r.Resolve(b)
		for _, facet := range []model.HierarchicalFacet{got.Hierarchical.ItemType, got.Hierarchical.StyleUsage} {
			require.NotEmpty(t, facet.Level1)
			require.NotEmpty(t, facet.Level2)
			require.NotEmpty(t, facet.Level3)
			assert.Equal(t, strings.Join([]string{facet.Level1, facet.Level2, facet.Level3}, " > "), facet.FullPath)
		}
		assert.NotEmpty(t, got.Flat.Color)
		assert.NotEmpty(t, got.Flat.Brand)
	}
}
