package vision

import (
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/pattern"
)

// analysisPrompt asks a captioning model for a structured fashion description
// that ParseCaption understands.
const analysisPrompt = `Analyze this fashion product image and provide detailed information in the following format:

1. **Product Category** (most important - be very specific):
   - Is it a t-shirt, shirt, pants, jeans, shorts, cargo shorts, dress, shoes, sneakers, jacket, etc.?
   - Be very specific about the product type (e.g., "cargo shorts" not just "shorts", "t-shirt" not just "shirt")

2. **Gender**: Men, Women, or Unisex

3. **Color**: Primary color of the item (be specific: khaki, navy blue, etc.)

4. **Material/Fabric**: What material does it appear to be made of? (cotton, denim, leather, etc.)

5. **Pattern**: Solid, striped, floral, geometric, etc.

6. **Style Details**:
   - For tops: sleeve length, neck type, etc.
   - For bottoms: length, fit type, etc.
   - For shoes: type, style, etc.

7. **Usage/Style**: Casual, Formal, Sporty, Ethnic, etc.

Provide your analysis in a structured format focusing on accurately identifying the product category first. Be very specific about the product type.`

const (
	categoryConfidence  = 0.95
	attributeConfidence = 0.9
)

// captionCategories is checked most specific first; bottoms precede tops so
// "cargo shorts" wins over "shorts" and "shirt".
var captionCategories = pattern.Table{
	{Term: "cargo shorts", Keywords: []string{"cargo shorts", "cargo short"}},
	{Term: "shorts", Keywords: []string{"shorts", "short pants", "pair of shorts"}},
	{Term: "jeans", Keywords: []string{"jeans", "jean", "denim pants"}},
	{Term: "pants", Keywords: []string{"pants", "trousers", "trouser", "pant"}},
	{Term: "skirt", Keywords: []string{"skirt"}},
	{Term: "leggings", Keywords: []string{"leggings", "legging"}},
	{Term: "capris", Keywords: []string{"capris", "capri"}},
	{Term: "tshirt", Keywords: []string{"t-shirt", "tshirt", "t shirt", "tee"}},
	{Term: "shirt", Keywords: []string{"shirt", "collared shirt", "button-down", "button down", "dress shirt"}},
	{Term: "top", Keywords: []string{"top", "blouse"}},
	{Term: "sweater", Keywords: []string{"sweater", "pullover"}},
	{Term: "hoodie", Keywords: []string{"hoodie", "hooded"}},
	{Term: "polo", Keywords: []string{"polo", "polo shirt"}},
	{Term: "dress", Keywords: []string{"dress"}},
	{Term: "sneakers", Keywords: []string{"sneakers", "sneaker", "athletic shoes", "running shoes"}},
	{Term: "shoes", Keywords: []string{"shoes", "shoe"}},
	{Term: "boots", Keywords: []string{"boots", "boot"}},
	{Term: "sandals", Keywords: []string{"sandals", "sandal"}},
	{Term: "jacket", Keywords: []string{"jacket"}},
	{Term: "blazer", Keywords: []string{"blazer"}},
	{Term: "coat", Keywords: []string{"coat"}},
}

var captionColors = []string{
	"red", "blue", "black", "white", "green", "yellow", "pink",
	"purple", "brown", "gray", "grey", "beige", "khaki", "navy",
	"olive", "orange", "tan", "maroon", "burgundy", "charcoal",
}

var captionMaterials = []string{
	"cotton", "denim", "leather", "silk", "polyester",
	"wool", "linen", "rayon", "spandex", "nylon", "canvas",
}

var captionPatterns = pattern.Table{
	{Term: "Solid", Keywords: []string{"solid", "plain"}},
	{Term: "Striped", Keywords: []string{"striped", "stripe"}},
	{Term: "Floral", Keywords: []string{"floral"}},
	{Term: "Geometric", Keywords: []string{"geometric"}},
}

var captionStyles = pattern.Table{
	{Term: "Long Sleeve", Keywords: []string{"long sleeve"}},
	{Term: "Short Sleeve", Keywords: []string{"short sleeve"}},
	{Term: "Sleeveless", Keywords: []string{"sleeveless"}},
}

var (
	categoryLineMatcher = pattern.NewMatcher(captionCategories)
	// Free text often says "short sleeves", which must not read as shorts.
	categoryTextMatcher = pattern.NewMatcher(captionCategories, pattern.WithExclusion("short sleeve", 10))
	patternMatcher      = pattern.NewMatcher(captionPatterns)
	styleMatcher        = pattern.NewMatcher(captionStyles)
)

// ParseCaption extracts attributes from a free-text image description. The
// category comes from a "Product Category" line when there is one, else from
// the whole text.
func ParseCaption(text string) model.ImageAttributes {
	attrs := model.ImageAttributes{}

	category, ok := categoryFromLines(text)
	if !ok {
		if m, found := categoryTextMatcher.Match(text); found {
			category, ok = m.Term, true
		}
	}
	if ok {
		attrs[model.AxisCategory] = model.Ranked(model.Candidate{Name: category, Confidence: categoryConfidence})
	}

	lower := strings.ToLower(text)
	if color, found := firstWordIn(lower, captionColors); found {
		attrs[model.AxisColor] = model.Ranked(model.Candidate{Name: capitalize(color), Confidence: attributeConfidence})
	}
	if material, found := firstWordIn(lower, captionMaterials); found {
		attrs[model.AxisMaterial] = model.Ranked(model.Candidate{Name: capitalize(material), Confidence: attributeConfidence})
	}
	if m, found := patternMatcher.Match(text); found {
		attrs[model.AxisPattern] = model.Ranked(model.Candidate{Name: m.Term, Confidence: attributeConfidence})
	}
	if m, found := styleMatcher.Match(text); found {
		attrs[model.AxisStyle] = model.Ranked(model.Candidate{Name: m.Term, Confidence: attributeConfidence})
	}

	return attrs
}

// categoryFromLines looks for a category line and matches the text after its
// colon, or the following line when there is no colon.
func categoryFromLines(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "product category") && !(strings.Contains(lower, "category") && strings.Contains(line, ":")) {
			continue
		}

		value := line
		if _, after, found := strings.Cut(line, ":"); found {
			value = after
		} else if i+1 < len(lines) {
			value = lines[i+1]
		}

		if m, ok := categoryLineMatcher.Match(strings.TrimSpace(value)); ok {
			return m.Term, true
		}
	}
	return "", false
}

func firstWordIn(lower string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
