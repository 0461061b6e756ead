// Package engine assembles faceted metadata records and runs them over batches
// of structured input.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/facet-flow/internal/classification"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/confidence"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

const shortDescriptionLength = 150

// Assembler builds metadata records and manages their review lifecycle.
type Assembler struct {
	vocab    *vocabulary.Store
	resolver *classification.Resolver
	scorer   *confidence.Scorer
	text     TextGenerator
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Config holds assembler options.
type Config struct {
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
	Policy confidence.Policy
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Policy: confidence.DefaultPolicy()}
}

// New creates an assembler with the default configuration.
func New(vocab *vocabulary.Store, text TextGenerator) *Assembler {
	return NewWithConfig(vocab, text, DefaultConfig())
}

// NewWithConfig creates an assembler with custom configuration.
func NewWithConfig(vocab *vocabulary.Store, text TextGenerator, config Config) *Assembler {
	a := &Assembler{
		vocab:    vocab,
		resolver: classification.NewResolver(vocab),
		scorer:   confidence.NewScorer(vocab, config.Policy),
		text:     text,
		logger:   config.Logger,
		now:      config.Now,
		newID:    config.NewID,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = func() time.Time { return time.Now().UTC() }
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}
	return a
}

// Vocabulary returns the store records are validated against.
func (a *Assembler) Vocabulary() *vocabulary.Store {
	return a.vocab
}

// Generate resolves a bundle into a new pending record. Only the text
// generator can fail; its error is wrapped with ErrCollaborator.
func (a *Assembler) Generate(ctx context.Context, bundle model.ObservationBundle) (*model.MetadataRecord, error) {
	faceted := a.resolver.Resolve(bundle)

	text, err := a.text.Generate(ctx, textProduct(bundle), bundle.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: text generation: %w", common.ErrCollaborator, err)
	}

	title := bundle.Row.Get(model.FieldProductTitle)
	if title == "" {
		title = text.Title
	}

	inputs := confidence.Inputs(bundle.Image, scoringProduct(bundle))
	scores := a.scorer.Score(faceted, inputs)
	record := &model.MetadataRecord{
		ID:          a.newID(),
		Status:      model.StatusPendingReview,
		GeneratedAt: a.now(),
		Faceted:     faceted,
		Descriptive: model.Descriptive{
			Title:            title,
			ShortDescription: shorten(text.Description),
			LongDescription:  text.Description,
			BulletPoints:     text.BulletPoints,
			Keywords:         text.Keywords,
		},
		ScoreInputs: inputs,
	}
	a.setScores(record, scores)
	record.Validation = a.Validate(record)

	a.logger.Debug("generated record",
		"id", record.ID,
		"product_id", record.ProductID(),
		"facet_1", faceted.Hierarchical.ItemType.FullPath,
		"overall", scores.Overall)

	return record, nil
}

// textProduct is the product info handed to the text generator: manual input
// when given, else brand and gender from the row.
func textProduct(b model.ObservationBundle) model.ProductInfo {
	if b.Product != nil {
		return *b.Product
	}
	return model.ProductInfo{
		Brand:  b.Row.Get(model.FieldBrand),
		Gender: b.Row.Get(model.FieldGender),
	}
}

// scoringProduct marks row-backed bundles as structured input.
func scoringProduct(b model.ObservationBundle) *model.ProductInfo {
	if b.Product != nil {
		return b.Product
	}
	if b.HasRow() {
		return &model.ProductInfo{}
	}
	return nil
}

func shorten(description string) string {
	runes := []rune(description)
	if len(runes) <= shortDescriptionLength {
		return description
	}
	return string(runes[:shortDescriptionLength]) + "..."
}

func (a *Assembler) setScores(record *model.MetadataRecord, scores model.Scores) {
	record.Confidence = scores
	record.RequiresReview = a.scorer.RequiresReview(scores)
	record.ReviewPriority = a.scorer.ReviewPriority(scores)
}

// Validate checks gender, item type, color, material and the item-type
// hierarchy against the vocabulary.
func (a *Assembler) Validate(record *model.MetadataRecord) map[string]model.ValidationResult {
	f := record.Faceted
	itemType := string(f.ItemType)
	noContext := vocabulary.ValidationContext{}

	results := map[string]model.ValidationResult{
		model.ValidationGender:   a.vocab.Validate(model.FieldNameGender, string(f.Gender), noContext),
		model.ValidationItemType: a.vocab.Validate(model.FieldNameItemType, itemType, noContext),
		model.ValidationColor:    a.vocab.Validate(model.FieldNameColor, f.Flat.Color, noContext),
		model.ValidationMaterial: a.vocab.Validate(model.FieldNameMaterial, f.Flat.Material, noContext),
	}

	facet := f.Hierarchical.ItemType
	// Categories without listed product types carry a fallback level 3 that
	// the vocabulary cannot confirm, so only the category is checked.
	productType := facet.Level3
	if !a.vocab.HasProductTypes(itemType, facet.Level2) {
		productType = ""
	}
	valid, msg := a.vocab.ValidateHierarchy(itemType, facet.Level2, productType)
	results[model.ValidationHierarchy] = model.ValidationResult{
		Valid:      valid,
		Normalized: facet.FullPath,
		Error:      msg,
	}

	return results
}

// ApplyEdits overwrites the edited fields, rebuilds both paths, revalidates,
// rescores every field with the edited ones as manual input and stamps
// updated_at. Editing an
// approved record reopens it for review.
func (a *Assembler) ApplyEdits(record *model.MetadataRecord, edits model.Edits) *model.MetadataRecord {
	f := &record.Faceted
	item := &f.Hierarchical.ItemType
	style := &f.Hierarchical.StyleUsage

	var edited []string
	set := func(dst *string, v *string, field string) {
		if v == nil {
			return
		}
		*dst = strings.TrimSpace(*v)
		if field != "" {
			edited = append(edited, field)
		}
	}

	if edits.ItemType != nil {
		f.ItemType = model.ItemType(strings.TrimSpace(*edits.ItemType))
		item.Level1 = string(f.ItemType)
		edited = append(edited, model.FieldNameItemType)
	}
	if edits.Gender != nil {
		f.Gender = model.Gender(strings.TrimSpace(*edits.Gender))
		edited = append(edited, model.FieldNameGender)
	}
	set(&item.Level2, edits.Category, model.FieldNameCategory)
	set(&item.Level3, edits.ProductType, model.FieldNameProductType)
	set(&style.Level1, edits.StyleLevel1, "")
	set(&style.Level2, edits.StyleLevel2, "")
	set(&style.Level3, edits.StyleLevel3, "")
	set(&f.Flat.Color, edits.Color, model.FieldNameColor)
	set(&f.Flat.Material, edits.Material, model.FieldNameMaterial)
	set(&f.Flat.Pattern, edits.Pattern, "")
	set(&f.Flat.Size, edits.Size, "")
	set(&f.Flat.Brand, edits.Brand, model.FieldNameBrand)
	set(&record.Descriptive.Title, edits.Title, "")
	set(&record.Descriptive.ShortDescription, edits.ShortDescription, "")
	set(&record.Descriptive.LongDescription, edits.LongDescription, "")
	if edits.BulletPoints != nil {
		record.Descriptive.BulletPoints = append([]string(nil), edits.BulletPoints...)
	}

	item.Rebuild()
	style.Rebuild()

	record.Validation = a.Validate(record)
	scores, inputs := a.scorer.Rescore(record.Faceted, record.ScoreInputs, edited)
	record.ScoreInputs = inputs
	a.setScores(record, scores)

	now := a.now()
	record.UpdatedAt = &now
	if record.Status == model.StatusApproved {
		record.Status = model.StatusPendingReview
		record.ApprovedAt = nil
	}
	return record
}

// Approve marks the record approved when every tracked validation passes.
// Validation is recomputed first; on failure the record is left untouched and
// the error wraps ErrApprovalBlocked.
func (a *Assembler) Approve(record *model.MetadataRecord) (*model.MetadataRecord, error) {
	probe := *record
	probe.Validation = a.Validate(record)

	if failed := probe.FailedValidations(); len(failed) > 0 {
		return record, fmt.Errorf("%w: %s", common.ErrApprovalBlocked, describeFailures(probe.Validation, failed))
	}

	now := a.now()
	record.Validation = probe.Validation
	record.Status = model.StatusApproved
	record.ApprovedAt = &now
	return record, nil
}

func describeFailures(results map[string]model.ValidationResult, failed []string) string {
	parts := make([]string, 0, len(failed))
	for _, key := range failed {
		result := results[key]
		switch {
		case result.Error != "":
			parts = append(parts, fmt.Sprintf("%s (%s)", key, result.Error))
		case len(result.Suggestions) > 0:
			parts = append(parts, fmt.Sprintf("%s %q (did you mean %s?)", key, result.Normalized, strings.Join(result.Suggestions, ", ")))
		case result.Normalized != "":
			parts = append(parts, fmt.Sprintf("%s %q", key, result.Normalized))
		default:
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, "; ")
}
