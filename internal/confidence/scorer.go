// Package confidence scores how much each resolved field can be trusted and
// decides whether a record needs human review.
package confidence

import (
	"math"
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

// Policy holds the review thresholds.
type Policy struct {
	// ReviewThreshold is the score below which a record needs review.
	ReviewThreshold float64
	// HighPriorityBelow marks overall scores that need review first.
	HighPriorityBelow float64
	// MediumPriorityBelow marks overall scores that need review soon.
	MediumPriorityBelow float64
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{ReviewThreshold: 0.7, HighPriorityBelow: 0.5, MediumPriorityBelow: 0.7}
}

var sourceWeights = map[model.Source]float64{
	model.SourceManual:    1.0,
	model.SourceCSV:       0.9,
	model.SourceImage:     0.7,
	model.SourceGenerated: 0.6,
}

const unknownSourceWeight = 0.5

// defaultImageConfidence is assumed for single-value observations, which
// carry no confidence.
const defaultImageConfidence = model.DefaultCandidateConfidence

// criticalFields gate review individually, not just through the overall mean.
var criticalFields = []string{
	model.FieldNameItemType, model.FieldNameGender, model.FieldNameCategory, model.FieldNameProductType,
}

// CalculateConfidence scores one field value. imageConfidence and vocabularyMatch
// are optional.
func CalculateConfidence(field string, source model.Source, imageConfidence *float64, vocabularyMatch *bool) float64 {
	base, ok := sourceWeights[source]
	if !ok {
		base = unknownSourceWeight
	}

	if source == model.SourceImage && imageConfidence != nil {
		base = (base + *imageConfidence) / 2
	}

	if vocabularyMatch != nil {
		if *vocabularyMatch {
			base = math.Min(1.0, base+0.1)
		} else {
			base = math.Max(0.0, base-0.2)
		}
	}

	switch field {
	case model.FieldNameGender, model.FieldNameItemType, model.FieldNameSize:
		base = math.Min(1.0, base+0.1)
	case model.FieldNameColor, model.FieldNameMaterial:
		// Visual attributes take the raw image confidence when it is non-zero.
		if source == model.SourceImage && imageConfidence != nil && *imageConfidence > 0 {
			base = *imageConfidence
		}
	case model.FieldNameTitle, model.FieldNameDescription:
		base = math.Max(0.0, base-0.1)
	}

	return round2(base)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Scorer scores whole records against a vocabulary.
type Scorer struct {
	vocab  *vocabulary.Store
	policy Policy
}

// NewScorer creates a scorer. Zero policy values take the defaults.
func NewScorer(vocab *vocabulary.Store, policy Policy) *Scorer {
	defaults := DefaultPolicy()
	if policy.ReviewThreshold <= 0 {
		policy.ReviewThreshold = defaults.ReviewThreshold
	}
	if policy.HighPriorityBelow <= 0 {
		policy.HighPriorityBelow = defaults.HighPriorityBelow
	}
	if policy.MediumPriorityBelow <= 0 {
		policy.MediumPriorityBelow = defaults.MediumPriorityBelow
	}
	return &Scorer{vocab: vocab, policy: policy}
}

// Policy returns the thresholds in use.
func (s *Scorer) Policy() Policy {
	return s.policy
}

// scoredFields are the fields ScoreMetadata scores, in scoring order.
var scoredFields = []string{
	model.FieldNameItemType, model.FieldNameGender, model.FieldNameCategory, model.FieldNameProductType,
	model.FieldNameColor, model.FieldNameMaterial, model.FieldNameBrand,
}

// ScoreMetadata scores item_type, gender, category, product_type, color,
// material and brand. A non-nil product means structured input was supplied,
// which shifts the hierarchy fields from the image source to the csv source.
func (s *Scorer) ScoreMetadata(meta model.FacetedMetadata, image model.ImageAttributes, product *model.ProductInfo) model.Scores {
	return s.Score(meta, Inputs(image, product))
}

// Inputs decides the source and image confidence behind each scored field.
func Inputs(image model.ImageAttributes, product *model.ProductInfo) map[string]model.ScoreInput {
	hierarchySource := model.SourceImage
	if product != nil {
		hierarchySource = model.SourceCSV
	}
	gender, brand := model.SourceCSV, model.SourceCSV
	if product != nil && strings.TrimSpace(product.Gender) != "" {
		gender = model.SourceManual
	}
	if product != nil && strings.TrimSpace(product.Brand) != "" {
		brand = model.SourceManual
	}

	return map[string]model.ScoreInput{
		model.FieldNameItemType:    {Source: hierarchySource},
		model.FieldNameGender:      {Source: gender},
		model.FieldNameCategory:    {Source: hierarchySource},
		model.FieldNameProductType: {Source: hierarchySource},
		model.FieldNameColor:       {Source: model.SourceImage, ImageConfidence: imageConfidence(image, model.AxisColor)},
		model.FieldNameMaterial:    {Source: model.SourceImage, ImageConfidence: imageConfidence(image, model.AxisMaterial)},
		model.FieldNameBrand:       {Source: brand},
	}
}

// Score scores every non-empty field of meta from inputs, validating each
// value under the current hierarchy. Fields missing from inputs are scored as
// if nothing but the resolved value were known.
func (s *Scorer) Score(meta model.FacetedMetadata, inputs map[string]model.ScoreInput) model.Scores {
	fallback := Inputs(nil, nil)
	fields := make(map[string]float64)
	for _, field := range scoredFields {
		value, vctx := fieldValue(meta, field)
		if value == "" {
			continue
		}
		in, ok := inputs[field]
		if !ok {
			in = fallback[field]
		}
		fields[field] = CalculateConfidence(field, in.Source, in.ImageConfidence, s.matches(field, value, vctx))
	}
	return model.Scores{Fields: fields, Overall: mean(fields)}
}

// Rescore recomputes every scored field after an edit. Edited fields become
// manual input; the rest keep their inputs but are revalidated, so a changed
// item type or category reaches the fields that depend on it. The returned
// inputs include the edited fields.
func (s *Scorer) Rescore(meta model.FacetedMetadata, inputs map[string]model.ScoreInput, edited []string) (model.Scores, map[string]model.ScoreInput) {
	next := make(map[string]model.ScoreInput, len(scoredFields))
	fallback := Inputs(nil, nil)
	for _, field := range scoredFields {
		if in, ok := inputs[field]; ok {
			next[field] = in
		} else {
			next[field] = fallback[field]
		}
	}
	for _, field := range edited {
		if _, ok := next[field]; ok {
			next[field] = model.ScoreInput{Source: model.SourceManual}
		}
	}
	return s.Score(meta, next), next
}

// fieldValue returns the resolved value of a scored field and the context it
// validates under.
func fieldValue(meta model.FacetedMetadata, field string) (string, vocabulary.ValidationContext) {
	itemType := string(meta.ItemType)
	facet := meta.Hierarchical.ItemType
	switch field {
	case model.FieldNameItemType:
		return itemType, vocabulary.ValidationContext{}
	case model.FieldNameGender:
		return string(meta.Gender), vocabulary.ValidationContext{}
	case model.FieldNameCategory:
		return facet.Level2, vocabulary.ValidationContext{ItemType: itemType}
	case model.FieldNameProductType:
		return facet.Level3, vocabulary.ValidationContext{ItemType: itemType, Category: facet.Level2}
	case model.FieldNameColor:
		return meta.Flat.Color, vocabulary.ValidationContext{}
	case model.FieldNameMaterial:
		return meta.Flat.Material, vocabulary.ValidationContext{}
	case model.FieldNameBrand:
		return meta.Flat.Brand, vocabulary.ValidationContext{}
	default:
		return "", vocabulary.ValidationContext{}
	}
}

func (s *Scorer) matches(field, value string, vctx vocabulary.ValidationContext) *bool {
	valid := s.vocab.Validate(field, value, vctx).Valid
	return &valid
}

// imageConfidence returns the top candidate's confidence for axis, nil when
// the axis has no observation. A zero confidence is returned as is.
func imageConfidence(image model.ImageAttributes, axis model.Axis) *float64 {
	obs := image.Get(axis)
	if obs.IsEmpty() {
		return nil
	}
	c, ok := obs.TopConfidence()
	if !ok {
		c = defaultImageConfidence
	}
	return &c
}

// mean sums in key order so equal maps always give identical results.
func mean(fields map[string]float64) float64 {
	if len(fields) == 0 {
		return 0.5
	}
	var sum float64
	for _, name := range (model.Scores{Fields: fields}).FieldNames() {
		sum += fields[name]
	}
	return sum / float64(len(fields))
}

// RequiresReview reports whether the overall score, or any critical field, is
// below threshold.
func RequiresReview(scores model.Scores, threshold float64) bool {
	if scores.Overall < threshold {
		return true
	}
	for _, field := range criticalFields {
		if v, ok := scores.Get(field); ok && v < threshold {
			return true
		}
	}
	return false
}

// RequiresReview applies the scorer's threshold.
func (s *Scorer) RequiresReview(scores model.Scores) bool {
	return RequiresReview(scores, s.policy.ReviewThreshold)
}

// ReviewPriority ranks a record for the review queue.
func (s *Scorer) ReviewPriority(scores model.Scores) model.ReviewPriority {
	switch {
	case scores.Overall < s.policy.HighPriorityBelow:
		return model.PriorityHigh
	case scores.Overall < s.policy.MediumPriorityBelow:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}
