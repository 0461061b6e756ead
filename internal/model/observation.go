package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Axis names an attribute dimension reported by image analysis.
type Axis string

// Attribute axes produced by image analysis.
const (
	AxisCategory Axis = "category"
	AxisColor    Axis = "color"
	AxisMaterial Axis = "material"
	AxisPattern  Axis = "pattern"
	AxisStyle    Axis = "style"
)

// Axes lists every image axis in reporting order.
var Axes = []Axis{AxisCategory, AxisColor, AxisMaterial, AxisPattern, AxisStyle}

// DefaultCandidateConfidence is assumed for decoded candidates that carry no
// confidence.
const DefaultCandidateConfidence = 0.5

// Candidate is one ranked label observed for an axis.
type Candidate struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ObservationKind tags which variant an Observation holds.
type ObservationKind int

const (
	// ObservationEmpty holds nothing.
	ObservationEmpty ObservationKind = iota
	// ObservationRanked holds candidates ordered by confidence, highest first.
	ObservationRanked
	// ObservationSingle holds one plain value.
	ObservationSingle
)

// Observation is either a ranked candidate list or a single value.
type Observation struct {
	Value      string
	Candidates []Candidate
	Kind       ObservationKind
}

// Ranked builds a ranked observation. An empty list yields an empty observation.
func Ranked(candidates ...Candidate) Observation {
	if len(candidates) == 0 {
		return Observation{}
	}
	return Observation{Kind: ObservationRanked, Candidates: candidates}
}

// Single builds a single-value observation. Blank values yield an empty observation.
func Single(value string) Observation {
	if strings.TrimSpace(value) == "" {
		return Observation{}
	}
	return Observation{Kind: ObservationSingle, Value: value}
}

// IsEmpty reports whether the observation carries no value.
func (o Observation) IsEmpty() bool {
	_, ok := o.Primary()
	return !ok
}

// Primary returns the observation's best value: the first candidate's name for
// ranked lists, or the value itself.
func (o Observation) Primary() (string, bool) {
	switch o.Kind {
	case ObservationRanked:
		if len(o.Candidates) == 0 || o.Candidates[0].Name == "" {
			return "", false
		}
		return o.Candidates[0].Name, true
	case ObservationSingle:
		if o.Value == "" {
			return "", false
		}
		return o.Value, true
	default:
		return "", false
	}
}

// TopConfidence returns the first candidate's confidence for ranked lists.
func (o Observation) TopConfidence() (float64, bool) {
	if o.Kind != ObservationRanked || len(o.Candidates) == 0 {
		return 0, false
	}
	return o.Candidates[0].Confidence, true
}

// List returns the candidates, presenting a single value as one candidate
// without confidence.
func (o Observation) List() []Candidate {
	switch o.Kind {
	case ObservationRanked:
		return o.Candidates
	case ObservationSingle:
		return []Candidate{{Name: o.Value}}
	default:
		return nil
	}
}

// MarshalJSON writes ranked observations as a list and single ones as a string.
func (o Observation) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case ObservationRanked:
		return json.Marshal(o.Candidates)
	case ObservationSingle:
		return json.Marshal(o.Value)
	default:
		return []byte("[]"), nil
	}
}

// UnmarshalJSON accepts a candidate list, a plain string, or an object
// carrying a "primary" or "name" key.
func (o *Observation) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = Observation{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raw []struct {
			Confidence *float64 `json:"confidence"`
			Name       string   `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode candidate list: %w", err)
		}
		candidates := make([]Candidate, len(raw))
		for i, c := range raw {
			candidates[i] = Candidate{Name: c.Name, Confidence: DefaultCandidateConfidence}
			if c.Confidence != nil {
				candidates[i].Confidence = *c.Confidence
			}
		}
		*o = Ranked(candidates...)
		return nil
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return fmt.Errorf("decode observation value: %w", err)
		}
		*o = Single(value)
		return nil
	case '{':
		var obj struct {
			Primary    string   `json:"primary"`
			Name       string   `json:"name"`
			Confidence *float64 `json:"confidence"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return fmt.Errorf("decode observation object: %w", err)
		}
		value := obj.Primary
		if value == "" {
			value = obj.Name
		}
		*o = Single(value)
		return nil
	default:
		return fmt.Errorf("unsupported observation shape: %s", string(trimmed))
	}
}

// ImageAttributes maps each axis to what image analysis observed for it.
type ImageAttributes map[Axis]Observation

// Get returns the observation for an axis, empty when absent.
func (a ImageAttributes) Get(axis Axis) Observation {
	if a == nil {
		return Observation{}
	}
	return a[axis]
}

// Candidates returns the ranked candidates for an axis.
func (a ImageAttributes) Candidates(axis Axis) []Candidate {
	return a.Get(axis).List()
}

// Recognized batch input columns.
const (
	FieldProductID    = "ProductId"
	FieldGender       = "Gender"
	FieldBrand        = "Brand"
	FieldSize         = "Size"
	FieldImage        = "Image"
	FieldImageURL     = "ImageURL"
	FieldCategory     = "Category"
	FieldSubCategory  = "SubCategory"
	FieldProductType  = "ProductType"
	FieldColour       = "Colour"
	FieldMaterial     = "Material"
	FieldPattern      = "Pattern"
	FieldUsage        = "Usage"
	FieldProductTitle = "ProductTitle"
)

// RecognizedFields lists the batch input columns in canonical order.
var RecognizedFields = []string{
	FieldProductID, FieldGender, FieldBrand, FieldSize, FieldImage, FieldImageURL,
	FieldCategory, FieldSubCategory, FieldProductType, FieldColour, FieldMaterial,
	FieldPattern, FieldUsage, FieldProductTitle,
}

// Row is one structured input record keyed by column name.
type Row map[string]string

// Get returns the trimmed value of a column, empty when absent.
func (r Row) Get(field string) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r[field])
}

// Has reports whether a column carries a non-blank value.
func (r Row) Has(field string) bool {
	return r.Get(field) != ""
}

// ProductInfo is what a user typed in directly for a single product.
type ProductInfo struct {
	Brand  string `json:"brand,omitempty"`
	Gender string `json:"gender,omitempty"`
	Size   string `json:"size,omitempty"`
}

// ObservationBundle is every signal gathered for one product.
type ObservationBundle struct {
	Image   ImageAttributes
	Row     Row
	Product *ProductInfo
}

// HasRow reports whether structured row data is present.
func (b ObservationBundle) HasRow() bool {
	return len(b.Row) > 0
}
