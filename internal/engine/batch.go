package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
)

// RunOptions configures a batch run.
type RunOptions struct {
	Observer Observer
	// ImagesDir is joined with each row's Image column. When the joined path
	// is missing the Image value is tried as given.
	ImagesDir string
	// Limit caps the number of rows processed. Zero means no limit.
	Limit int
}

// Outcome is the result of one row: a record, or an error.
type Outcome struct {
	Err      error                 `json:"-"`
	Record   *model.MetadataRecord `json:"record,omitempty"`
	Row      model.Row             `json:"source_row"`
	RowIndex int                   `json:"row_index"`
}

// Failed reports whether the row produced an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Message returns the row error's text, empty on success.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Summary counts batch outcomes.
type Summary struct {
	Total       int
	Succeeded   int
	Failed      int
	NeedsReview int
}

// Runner processes rows one at a time, in order.
type Runner struct {
	assembler *Assembler
	analyzer  ImageAnalyzer
	logger    *slog.Logger
}

// NewRunner creates a batch runner. A nil analyzer skips image analysis;
// rows still need an image reference.
func NewRunner(assembler *Assembler, analyzer ImageAnalyzer) *Runner {
	return &Runner{
		assembler: assembler,
		analyzer:  analyzer,
		logger:    assembler.logger,
	}
}

// Run processes rows in input order. A failing row becomes an error outcome
// and the batch continues. Cancellation stops before the next row and returns
// the outcomes gathered so far.
func (r *Runner) Run(ctx context.Context, rows []model.Row, opts RunOptions) []Outcome {
	total := len(rows)
	if opts.Limit > 0 && opts.Limit < total {
		total = opts.Limit
	}

	outcomes := make([]Outcome, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch interrupted", "processed", i, "total", total, "error", err)
			break
		}

		row := rows[i]
		outcome := Outcome{RowIndex: i + 1, Row: row}
		outcome.Record, outcome.Err = r.processRow(ctx, row, opts.ImagesDir)
		if outcome.Err != nil {
			r.logger.Info("row failed",
				"row", outcome.RowIndex,
				"product_id", row.Get(model.FieldProductID),
				"error", outcome.Err)
		}
		outcomes = append(outcomes, outcome)

		if opts.Observer != nil {
			opts.Observer.Progress(i+1, total)
		}
	}

	return outcomes
}

func (r *Runner) processRow(ctx context.Context, row model.Row, imagesDir string) (*model.MetadataRecord, error) {
	if err := CheckRequired(row); err != nil {
		return nil, err
	}

	ref, err := ResolveImageRef(row, imagesDir)
	if err != nil {
		return nil, err
	}

	var attrs model.ImageAttributes
	if r.analyzer != nil {
		attrs, err = r.analyzer.Analyze(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("%w: image analysis: %w", common.ErrCollaborator, err)
		}
	}

	return r.assembler.Generate(ctx, model.ObservationBundle{Image: attrs, Row: row})
}

// CheckRequired rejects rows without Gender, Brand, or any image reference.
func CheckRequired(row model.Row) error {
	for _, field := range []string{model.FieldGender, model.FieldBrand} {
		if !row.Has(field) {
			return fmt.Errorf("%w: %s", common.ErrMissingRequiredField, field)
		}
	}
	if !row.Has(model.FieldImage) && !row.Has(model.FieldImageURL) {
		return fmt.Errorf("%w: need %s or %s", common.ErrNoImageReference, model.FieldImage, model.FieldImageURL)
	}
	return nil
}

// ResolveImageRef picks the path or URL to analyze. A local Image file is
// preferred; ImageURL is used when there is no Image column or its file cannot
// be found.
func ResolveImageRef(row model.Row, imagesDir string) (string, error) {
	image := row.Get(model.FieldImage)
	url := row.Get(model.FieldImageURL)

	if image == "" {
		if url == "" {
			return "", common.ErrNoImageReference
		}
		return url, nil
	}

	candidates := []string{image}
	if imagesDir != "" {
		candidates = []string{filepath.Join(imagesDir, image), image}
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, nil
		}
	}

	if url != "" {
		return url, nil
	}
	return "", fmt.Errorf("%w: %s", common.ErrImageNotFound, image)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Summarize counts successes, failures and records flagged for review.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Failed() {
			s.Failed++
			continue
		}
		s.Succeeded++
		if o.Record != nil && o.Record.RequiresReview {
			s.NeedsReview++
		}
	}
	return s
}

// Failures returns the error outcomes in row order.
func Failures(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// IsInputError reports whether a row failed on its own data rather than a
// collaborator.
func IsInputError(err error) bool {
	return errors.Is(err, common.ErrMissingRequiredField) ||
		errors.Is(err, common.ErrNoImageReference) ||
		errors.Is(err, common.ErrImageNotFound)
}
