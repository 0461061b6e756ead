package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/config"
	"github.com/Veraticus/facet-flow/internal/engine"
	"github.com/Veraticus/facet-flow/internal/export"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/Veraticus/facet-flow/internal/sheets"
)

const (
	formatJSON       = "json"
	formatCSV        = "csv"
	formatValidation = "validation"
	formatSheets     = "sheets"
)

type exportOptions struct {
	format string
	status string
	output string
	source string
	limit  int
}

func exportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored records",
		Long: `Export stored records as nested JSON, flattened CSV, a validation comparison
against the source catalog CSV, or to a Google Sheets tab.`,
		Example: `  facet export --format csv --status approved --output approved.csv
  facet export --format validation --source catalog.csv --output check.csv
  facet export --format sheets --status approved`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", formatJSON, "json, csv, validation or sheets")
	cmd.Flags().StringVar(&opts.status, "status", "", "only export records with this status")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.source, "source", "", "catalog CSV the records were generated from (validation format)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "export at most this many records")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, opts exportOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case formatJSON, formatCSV, formatSheets:
	case formatValidation:
		if opts.source == "" {
			return common.NewUserError("--format validation needs --source <catalog.csv>", common.ErrMissingConfig)
		}
	default:
		return common.NewUserError(fmt.Sprintf("unknown format %q (want json, csv, validation or sheets)", opts.format), common.ErrInvalidConfig)
	}

	filter, err := recordFilter(opts.status, opts.limit)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.ListRecords(ctx, filter)
	if err != nil {
		return err
	}
	slog.Debug("exporting records", "format", format, "count", len(records))

	switch format {
	case formatSheets:
		return exportSheets(ctx, out, records)
	case formatValidation:
		rows, err := export.ReadRowsFile(opts.source)
		if err != nil {
			return common.NewUserError("could not read "+opts.source, err)
		}
		return writeTo(opts.output, out, func(w io.Writer) error {
			return export.WriteValidationCSV(w, joinOutcomes(rows, records))
		})
	case formatCSV:
		return writeTo(opts.output, out, func(w io.Writer) error {
			return export.WriteFlatCSV(w, records)
		})
	default:
		return writeTo(opts.output, out, func(w io.Writer) error {
			return export.WriteRecordsJSON(w, records)
		})
	}
}

// joinOutcomes pairs each source row with the newest stored record for its
// product id. Rows without a record become error outcomes.
func joinOutcomes(rows []model.Row, records []*model.MetadataRecord) []engine.Outcome {
	byProduct := make(map[string]*model.MetadataRecord, len(records))
	for _, r := range records {
		id := r.ProductID()
		if existing, ok := byProduct[id]; !ok || r.GeneratedAt.After(existing.GeneratedAt) {
			byProduct[id] = r
		}
	}

	outcomes := make([]engine.Outcome, 0, len(rows))
	for i, row := range rows {
		o := engine.Outcome{Row: row, RowIndex: i + 1}
		id := row.Get(model.FieldProductID)
		if record, ok := byProduct[id]; ok && id != "" {
			o.Record = record
		} else {
			o.Err = fmt.Errorf("no stored record for product %q: %w", id, common.ErrNotFound)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func exportSheets(ctx context.Context, out io.Writer, records []*model.MetadataRecord) error {
	cfg, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError("Google Sheets is not configured; set sheets.* in the config file or run facet auth sheets", err)
	}

	writer, err := sheets.NewWriter(ctx, *cfg, slog.Default())
	if err != nil {
		return err
	}

	id, err := publishTable(ctx, writer, export.FlatTable(records))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Exported %d records to spreadsheet %s", len(records), id)))
	return nil
}

func publishTable(ctx context.Context, w service.TableWriter, table [][]string) (string, error) {
	id, err := w.WriteTable(ctx, table)
	if err != nil {
		return "", fmt.Errorf("sheets export failed: %w", err)
	}
	return id, nil
}
