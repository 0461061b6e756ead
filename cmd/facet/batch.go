package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/export"
)

type batchOptions struct {
	imagesDir  string
	jsonPath   string
	csvPath    string
	validation string
	limit      int
	noSave     bool
	noProgress bool
}

func batchCmd() *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <input.csv>",
		Short: "Generate metadata for every row of a catalog CSV",
		Long: `Process a catalog CSV row by row. Rows missing Gender, Brand or an image
reference become error outcomes and the batch continues. Successful records
are stored in the review queue unless --no-save is given.`,
		Example: `  facet batch catalog.csv --images-dir ./images --json results.json
  facet batch catalog.csv --limit 10 --csv flat.csv --validation check.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.imagesDir, "images-dir", "", "directory holding the images named in the Image column")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "process at most this many rows")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the batch document as JSON to this file (- for stdout)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "write the flattened records as CSV to this file")
	cmd.Flags().StringVar(&opts.validation, "validation", "", "write the validation comparison CSV to this file")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "do not store records in the review queue")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

func runBatch(ctx context.Context, out io.Writer, input string, opts batchOptions) error {
	rows, err := export.ReadRowsFile(input)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not read %s", input), err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No rows found in "+input))
		return nil
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	analyzer, err := newAnalyzer(ctx, a.vocab)
	if err != nil {
		return err
	}
	if analyzer != nil {
		defer func() { _ = analyzer.Close() }()
	}

	interrupts := cli.NewInterruptHandler(out)
	runCtx := interrupts.HandleInterrupts(ctx, !opts.noSave)

	runOpts := engine.RunOptions{ImagesDir: opts.imagesDir, Limit: opts.limit}
	var progress *cli.ProgressObserver
	if !opts.noProgress {
		progress = cli.NewProgressObserver(out, "Generating")
		runOpts.Observer = progress
	}

	slog.Info("starting batch", "input", input, "rows", len(rows), "limit", opts.limit)
	outcomes := engine.NewRunner(a.assembler, imageAnalyzer(analyzer)).Run(runCtx, rows, runOpts)
	if progress != nil {
		progress.Done()
	}

	if !opts.noSave {
		saveCtx := context.WithoutCancel(ctx)
		autoSnapshot(saveCtx, a.store, "batch")
		saved, err := saveOutcomes(saveCtx, a, outcomes)
		if err != nil {
			return err
		}
		slog.Info("records saved", "count", saved)
	}

	if err := writeBatchOutputs(out, outcomes, opts); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.RenderBatchSummary(engine.Summarize(outcomes), engine.Failures(outcomes)))
	if interrupts.WasInterrupted() {
		return common.NewUserError(fmt.Sprintf("batch interrupted after %d of %d rows", len(outcomes), len(rows)), context.Canceled)
	}
	return nil
}

// saveOutcomes stores every successful record. Callers pass a context that
// survives the interrupt so an interrupted run keeps its results.
func saveOutcomes(ctx context.Context, a *app, outcomes []engine.Outcome) (int, error) {
	saved := 0
	for _, record := range export.Records(outcomes) {
		if err := a.store.SaveRecord(ctx, record); err != nil {
			return saved, fmt.Errorf("failed to save record %s: %w", record.ID, err)
		}
		saved++
	}
	return saved, nil
}

func writeBatchOutputs(out io.Writer, outcomes []engine.Outcome, opts batchOptions) error {
	if opts.jsonPath != "" {
		if err := writeTo(opts.jsonPath, out, func(w io.Writer) error {
			return export.WriteBatchJSON(w, outcomes)
		}); err != nil {
			return err
		}
	}
	if opts.csvPath != "" {
		if err := writeTo(opts.csvPath, out, func(w io.Writer) error {
			return export.WriteFlatCSV(w, export.Records(outcomes))
		}); err != nil {
			return err
		}
	}
	if opts.validation != "" {
		if err := writeTo(opts.validation, out, func(w io.Writer) error {
			return export.WriteValidationCSV(w, outcomes)
		}); err != nil {
			return err
		}
	}
	return nil
}
