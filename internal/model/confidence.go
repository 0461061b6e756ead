package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Source identifies where a field's value came from.
type Source string

// Value sources, in decreasing trust.
const (
	SourceManual    Source = "manual"
	SourceCSV       Source = "csv"
	SourceImage     Source = "image"
	SourceGenerated Source = "generated"
)

// ScoreInput is what one field was scored from: its source and, for image
// sourced fields, the observed confidence.
type ScoreInput struct {
	ImageConfidence *float64 `json:"image_confidence,omitempty"`
	Source          Source   `json:"source"`
}

// ReviewPriority orders records in the review queue.
type ReviewPriority string

// Review priorities.
const (
	PriorityHigh   ReviewPriority = "high"
	PriorityMedium ReviewPriority = "medium"
	PriorityLow    ReviewPriority = "low"
)

// Scored field names.
const (
	FieldNameItemType    = "item_type"
	FieldNameGender      = "gender"
	FieldNameCategory    = "category"
	FieldNameProductType = "product_type"
	FieldNameColor       = "color"
	FieldNameMaterial    = "material"
	FieldNamePattern     = "pattern"
	FieldNameBrand       = "brand"
	FieldNameSize        = "size"
	FieldNameTitle       = "title"
	FieldNameDescription = "description"
	FieldNameUsage       = "usage"
)

// Scores holds per-field confidences and their mean.
type Scores struct {
	Fields  map[string]float64
	Overall float64
}

// Get returns the score recorded for a field.
func (s Scores) Get(field string) (float64, bool) {
	v, ok := s.Fields[field]
	return v, ok
}

// FieldNames returns the scored fields, sorted.
func (s Scores) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON writes scores as one flat object with an "overall" key.
func (s Scores) MarshalJSON() ([]byte, error) {
	flat := make(map[string]float64, len(s.Fields)+1)
	for k, v := range s.Fields {
		flat[k] = v
	}
	flat["overall"] = s.Overall
	return json.Marshal(flat)
}

// UnmarshalJSON reads the flat object written by MarshalJSON.
func (s *Scores) UnmarshalJSON(data []byte) error {
	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err != nil {
		return fmt.Errorf("decode confidence scores: %w", err)
	}
	s.Overall = flat["overall"]
	delete(flat, "overall")
	s.Fields = flat
	return nil
}
