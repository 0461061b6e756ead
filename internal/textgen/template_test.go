package textgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/facet-flow/internal/model"
)

func dressAttributes() model.ImageAttributes {
	return model.ImageAttributes{
		model.AxisCategory: model.Ranked(model.Candidate{Name: "dress", Confidence: 0.95}),
		model.AxisColor:    model.Ranked(model.Candidate{Name: "red", Confidence: 0.9}),
		model.AxisMaterial: model.Ranked(model.Candidate{Name: "cotton", Confidence: 0.8}),
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		image   model.ImageAttributes
		name    string
		product model.ProductInfo
		want    string
	}{
		{name: "brand color category", product: model.ProductInfo{Brand: "Zara"}, image: dressAttributes(), want: "Zara Red Dress"},
		{name: "no brand", image: dressAttributes(), want: "Red Dress"},
		{name: "caption category cleaned", image: model.ImageAttributes{
			model.AxisCategory: model.Single("women's clothing"),
		}, want: "Women"},
		{name: "nothing known", want: "Clothing"},
		{name: "brand only", product: model.ProductInfo{Brand: "Acme"}, want: "Acme Clothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.product, tt.image))
		})
	}
}

func TestDescription(t *testing.T) {
	got := Description(model.ProductInfo{Brand: "Zara"}, dressAttributes())
	assert.Equal(t, "This Zara red dress is crafted from cotton for comfort and durability. "+
		"Perfect for everyday wear, this piece combines style and functionality. "+
		"Made with attention to detail and quality construction.", got)

	fallback := Description(model.ProductInfo{}, nil)
	assert.Contains(t, fallback, "This clothing item is crafted from quality materials")
}

func TestBulletPoints(t *testing.T) {
	t.Run("padded when sparse", func(t *testing.T) {
		bullets := BulletPoints(model.ImageAttributes{
			model.AxisColor: model.Single("Navy"),
		})
		assert.Equal(t, []string{"Available in Navy", "High-quality construction", "Comfortable fit", "Easy to care for"}, bullets)
	})

	t.Run("attribute bullets without padding", func(t *testing.T) {
		image := dressAttributes()
		image[model.AxisStyle] = model.Single("SHORT SLEEVE")
		image[model.AxisPattern] = model.Single("floral")
		bullets := BulletPoints(image)
		assert.Equal(t, []string{
			"Available in red",
			"Made from premium cotton",
			"Short sleeve design",
			"Floral pattern",
		}, bullets)
	})

	t.Run("empty attributes", func(t *testing.T) {
		assert.Equal(t, genericBullets, BulletPoints(nil))
	})
}

func TestKeywords(t *testing.T) {
	image := model.ImageAttributes{
		model.AxisCategory: model.Ranked(
			model.Candidate{Name: "Cargo Shorts", Confidence: 0.9},
			model.Candidate{Name: "shorts", Confidence: 0.4},
		),
		model.AxisColor: model.Single("Olive"),
	}

	got := Keywords(model.ProductInfo{Brand: "Levi's"}, image)

	assert.Equal(t, []string{"cargo", "cargo shorts", "levi's", "olive", "shorts"}, got)
}

func TestKeywords_Capped(t *testing.T) {
	var candidates []model.Candidate
	for _, name := range []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet",
		"kilo", "lima", "mike", "november", "oscar", "papa", "quebec", "romeo", "sierra", "tango",
		"uniform", "victor",
	} {
		candidates = append(candidates, model.Candidate{Name: name, Confidence: 0.1})
	}

	got := Keywords(model.ProductInfo{}, model.ImageAttributes{model.AxisStyle: model.Ranked(candidates...)})

	require.Len(t, got, maxKeywords)
	assert.Equal(t, "alpha", got[0])
	assert.Equal(t, "tango", got[maxKeywords-1])
}

func TestTemplate_Generate(t *testing.T) {
	g := NewTemplate()

	text, err := g.Generate(context.Background(), model.ProductInfo{Brand: "Zara", Gender: "Women"}, dressAttributes())
	require.NoError(t, err)
	assert.Equal(t, "Zara Red Dress", text.Title)
	assert.NotEmpty(t, text.Description)
	assert.Len(t, text.BulletPoints, 5)
	assert.Contains(t, text.Keywords, "zara")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, model.ProductInfo{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
