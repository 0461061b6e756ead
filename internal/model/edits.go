package model

// Edits is a reviewer's set of field overrides. Nil fields are left unchanged.
type Edits struct {
	ItemType         *string  `json:"item_type,omitempty"`
	Category         *string  `json:"category,omitempty"`
	ProductType      *string  `json:"product_type,omitempty"`
	StyleLevel1      *string  `json:"style_level_1,omitempty"`
	StyleLevel2      *string  `json:"style_level_2,omitempty"`
	StyleLevel3      *string  `json:"style_level_3,omitempty"`
	Gender           *string  `json:"gender,omitempty"`
	Color            *string  `json:"color,omitempty"`
	Material         *string  `json:"material,omitempty"`
	Pattern          *string  `json:"pattern,omitempty"`
	Size             *string  `json:"size,omitempty"`
	Brand            *string  `json:"brand,omitempty"`
	Title            *string  `json:"title,omitempty"`
	ShortDescription *string  `json:"short_description,omitempty"`
	LongDescription  *string  `json:"long_description,omitempty"`
	BulletPoints     []string `json:"bullet_points,omitempty"`
}

// IsEmpty reports whether the edit set changes nothing.
func (e Edits) IsEmpty() bool {
	return e.ItemType == nil && e.Category == nil && e.ProductType == nil &&
		e.StyleLevel1 == nil && e.StyleLevel2 == nil && e.StyleLevel3 == nil &&
		e.Gender == nil && e.Color == nil && e.Material == nil && e.Pattern == nil &&
		e.Size == nil && e.Brand == nil && e.Title == nil &&
		e.ShortDescription == nil && e.LongDescription == nil && e.BulletPoints == nil
}

// StringPtr returns a pointer to s, for building edit sets.
func StringPtr(s string) *string {
	return &s
}
