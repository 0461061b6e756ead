// Package textgen produces product titles, descriptions, bullet points and
// search keywords from resolved attributes.
package textgen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Veraticus/facet-flow/internal/model"
)

const (
	maxBulletPoints = 5
	minBulletPoints = 3
	maxKeywords     = 20
)

var genericBullets = []string{
	"High-quality construction",
	"Comfortable fit",
	"Easy to care for",
}

// Template generates deterministic text from image attributes and product info.
// It never fails and makes no network calls.
type Template struct{}

// NewTemplate creates a template generator.
func NewTemplate() *Template {
	return &Template{}
}

// Generate builds the full text block for one product.
func (g *Template) Generate(ctx context.Context, product model.ProductInfo, image model.ImageAttributes) (model.GeneratedText, error) {
	if err := ctx.Err(); err != nil {
		return model.GeneratedText{}, err
	}
	return model.GeneratedText{
		Title:        Title(product, image),
		Description:  Description(product, image),
		BulletPoints: BulletPoints(image),
		Keywords:     Keywords(product, image),
	}, nil
}

// Title is brand, color and category joined by spaces.
func Title(product model.ProductInfo, image model.ImageAttributes) string {
	category := cleanCategory(primaryOr(image, model.AxisCategory, "Clothing"))
	color := primaryOr(image, model.AxisColor, "")

	var parts []string
	if brand := strings.TrimSpace(product.Brand); brand != "" {
		parts = append(parts, brand)
	}
	if color != "" {
		parts = append(parts, titleCase(color))
	}
	if category != "" {
		parts = append(parts, titleCase(category))
	}

	if len(parts) == 0 {
		return "Fashion Product"
	}
	return strings.Join(parts, " ")
}

// Description is a short marketing paragraph.
func Description(product model.ProductInfo, image model.ImageAttributes) string {
	category := strings.ToLower(cleanCategory(primaryOr(image, model.AxisCategory, "clothing item")))
	color := primaryOr(image, model.AxisColor, "")
	material := primaryOr(image, model.AxisMaterial, "quality materials")

	var parts []string
	if brand := strings.TrimSpace(product.Brand); brand != "" {
		parts = append(parts, brand)
	}
	if color != "" {
		parts = append(parts, color)
	}
	parts = append(parts, category)

	return fmt.Sprintf("This %s is crafted from %s for comfort and durability. "+
		"Perfect for everyday wear, this piece combines style and functionality. "+
		"Made with attention to detail and quality construction.",
		strings.Join(parts, " "), material)
}

// BulletPoints lists attribute highlights, padded with generic bullets when
// fewer than three are available.
func BulletPoints(image model.ImageAttributes) []string {
	var bullets []string
	if color := primaryOr(image, model.AxisColor, ""); color != "" {
		bullets = append(bullets, "Available in "+color)
	}
	if material := primaryOr(image, model.AxisMaterial, ""); material != "" {
		bullets = append(bullets, "Made from premium "+material)
	}
	if style := primaryOr(image, model.AxisStyle, ""); style != "" {
		bullets = append(bullets, capitalize(style)+" design")
	}
	if pattern := primaryOr(image, model.AxisPattern, ""); pattern != "" {
		bullets = append(bullets, capitalize(pattern)+" pattern")
	}

	if len(bullets) < minBulletPoints {
		bullets = append(bullets, genericBullets...)
	}
	if len(bullets) > maxBulletPoints {
		bullets = bullets[:maxBulletPoints]
	}
	return bullets
}

// Keywords collects lowercased brand and attribute names plus their words,
// sorted and capped.
func Keywords(product model.ProductInfo, image model.ImageAttributes) []string {
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			seen[s] = struct{}{}
		}
	}

	add(product.Brand)
	for _, axis := range model.Axes {
		for _, c := range image.Candidates(axis) {
			add(c.Name)
			for _, word := range strings.Fields(c.Name) {
				add(word)
			}
		}
	}

	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func primaryOr(image model.ImageAttributes, axis model.Axis, fallback string) string {
	if v, ok := image.Get(axis).Primary(); ok {
		return v
	}
	return fallback
}

// cleanCategory strips possessives and a trailing "clothing" from caption
// categories such as "women's clothing".
func cleanCategory(s string) string {
	s = strings.ReplaceAll(s, "'s", "")
	s = strings.ReplaceAll(s, " clothing", "")
	return strings.TrimSpace(s)
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
