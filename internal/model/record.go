// Package model defines the core domain models used throughout the application.
package model

import (
	"sort"
	"strings"
	"time"
)

// Unknown is the terminal value for any facet that could not be resolved.
const Unknown = "Unknown"

// PathSeparator joins hierarchy levels in a full path.
const PathSeparator = " > "

// ItemType is the top level of the item-type hierarchy.
type ItemType string

// Item types.
const (
	ItemTypeApparel  ItemType = "Apparel"
	ItemTypeFootwear ItemType = "Footwear"
)

// Gender is the resolved target gender of a product.
type Gender string

// Genders.
const (
	GenderMen    Gender = "Men"
	GenderWomen  Gender = "Women"
	GenderUnisex Gender = "Unisex"
)

// HierarchicalFacet is a three-level taxonomy path.
type HierarchicalFacet struct {
	Level1   string `json:"level_1"`
	Level2   string `json:"level_2"`
	Level3   string `json:"level_3"`
	FullPath string `json:"full_path"`
}

// NewHierarchicalFacet builds a facet, defaulting empty levels to Unknown.
func NewHierarchicalFacet(level1, level2, level3 string) HierarchicalFacet {
	f := HierarchicalFacet{Level1: level1, Level2: level2, Level3: level3}
	f.Rebuild()
	return f
}

// Rebuild fills empty levels with Unknown and recomputes the full path.
func (f *HierarchicalFacet) Rebuild() {
	f.Level1 = orUnknown(f.Level1)
	f.Level2 = orUnknown(f.Level2)
	f.Level3 = orUnknown(f.Level3)
	f.FullPath = strings.Join([]string{f.Level1, f.Level2, f.Level3}, PathSeparator)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

// HierarchicalFacets holds both taxonomy facets.
type HierarchicalFacets struct {
	ItemType   HierarchicalFacet `json:"facet_1_item_type"`
	StyleUsage HierarchicalFacet `json:"facet_2_style_usage"`
}

// FlatFacets holds single-level attributes.
type FlatFacets struct {
	Color           string      `json:"color"`
	Material        string      `json:"material"`
	Pattern         string      `json:"pattern"`
	Size            string      `json:"size"`
	Brand           string      `json:"brand"`
	ProductID       string      `json:"product_id"`
	ProductTitle    string      `json:"product_title"`
	ImageURL        string      `json:"image_url"`
	ImageFile       string      `json:"image_file"`
	ColorDetails    []Candidate `json:"color_details,omitempty"`
	MaterialDetails []Candidate `json:"material_details,omitempty"`
	PatternDetails  []Candidate `json:"pattern_details,omitempty"`
	StyleDetails    []Candidate `json:"style_details,omitempty"`
}

// FacetedMetadata is the resolved taxonomy for one product.
type FacetedMetadata struct {
	ItemType     ItemType           `json:"item_type"`
	Gender       Gender             `json:"gender"`
	Hierarchical HierarchicalFacets `json:"hierarchical_facets"`
	Flat         FlatFacets         `json:"flat_facets"`
}

// Descriptive holds generated marketing text.
type Descriptive struct {
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description"`
	LongDescription  string   `json:"long_description"`
	BulletPoints     []string `json:"bullet_points"`
	Keywords         []string `json:"keywords"`
}

// GeneratedText is what a text generator returns for one product.
type GeneratedText struct {
	Title        string
	Description  string
	BulletPoints []string
	Keywords     []string
}

// ValidationResult is the outcome of checking one value against the vocabulary.
type ValidationResult struct {
	Normalized  string   `json:"normalized,omitempty"`
	Error       string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Valid       bool     `json:"valid"`
}

// Keys of the validation map gating approval.
const (
	ValidationGender    = "gender"
	ValidationItemType  = "item_type"
	ValidationColor     = "color"
	ValidationMaterial  = "material"
	ValidationHierarchy = "hierarchy"
)

// ApprovalValidations lists the validations that must pass before approval.
var ApprovalValidations = []string{
	ValidationGender, ValidationItemType, ValidationColor, ValidationMaterial, ValidationHierarchy,
}

// Status is a record's review state.
type Status string

// Review states.
const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusPendingReview || s == StatusApproved
}

// MetadataRecord aggregates everything generated for one product.
type MetadataRecord struct {
	GeneratedAt    time.Time                   `json:"generated_at"`
	UpdatedAt      *time.Time                  `json:"updated_at,omitempty"`
	ApprovedAt     *time.Time                  `json:"approved_at,omitempty"`
	Validation     map[string]ValidationResult `json:"validation_results"`
	Confidence     Scores                      `json:"confidence_scores"`
	ScoreInputs    map[string]ScoreInput       `json:"score_inputs,omitempty"`
	ID             string                      `json:"id"`
	Status         Status                      `json:"status"`
	ReviewPriority ReviewPriority              `json:"review_priority"`
	Descriptive    Descriptive                 `json:"descriptive"`
	Faceted        FacetedMetadata             `json:"faceted_metadata"`
	RequiresReview bool                        `json:"requires_review"`
}

// ProductID returns the originating product id, if any.
func (r *MetadataRecord) ProductID() string {
	return r.Faceted.Flat.ProductID
}

// FailedValidations returns the approval-gating validations that did not pass, sorted.
func (r *MetadataRecord) FailedValidations() []string {
	var failed []string
	for _, key := range ApprovalValidations {
		if result, ok := r.Validation[key]; !ok || !result.Valid {
			failed = append(failed, key)
		}
	}
	sort.Strings(failed)
	return failed
}

// AllValid reports whether every approval-gating validation passed.
func (r *MetadataRecord) AllValid() bool {
	return len(r.FailedValidations()) == 0
}
