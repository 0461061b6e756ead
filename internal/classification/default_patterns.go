package classification

import "github.com/Veraticus/facet-flow/internal/pattern"

// Row Category text naming footwear. Checked case-sensitively.
var rowFootwearSignals = []string{"Footwear", "Shoe"}

// Image category keywords naming footwear. Checked against lowercased names.
var imageFootwearSignals = []string{"shoe", "sneaker", "boot", "sandal", "footwear"}

// Gender signals for row and manual sources. Women is checked first because
// "Women" contains "men".
var (
	womenSignals = []string{"Girl", "Women", "Female"}
	menSignals   = []string{"Boy", "Men", "Male"}
)

// Gender signals for lowercased image category names.
var (
	imageWomenSignals = []string{"women", "woman", "girl", "female"}
	imageMenSignals   = []string{"men", "man", "boy", "male"}
)

// usageRules maps free-text usage to a style level 1, in priority order.
// Keywords are checked case-sensitively.
var usageRules = pattern.Table{
	{Term: "Casual", Keywords: []string{"Casual", "Smart Casual"}},
	{Term: "Formal", Keywords: []string{"Formal"}},
	{Term: "Sporty", Keywords: []string{"Sport", "Athletic", "Sports"}},
	{Term: "Ethnic", Keywords: []string{"Ethnic"}},
}

// defaultStyleLevel1 is used when usage is absent or unrecognized.
const defaultStyleLevel1 = "Casual"

// categoryProductTypeDefaults supplies level 3 for categories the vocabulary
// lists without product types.
var categoryProductTypeDefaults = map[string]string{
	"Topwear":    "Tops",
	"Bottomwear": "Pants",
	"Dress":      "Dresses",
	"Shoes":      "Casual Shoes",
}

// styleLevel3Defaults supplies level 3 for sub-styles with no entries.
var styleLevel3Defaults = map[string]string{
	"Casual": "Basic",
	"Formal": "Professional",
	"Sporty": "Performance",
	"Ethnic": "Classic",
}
