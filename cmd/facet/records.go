package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/export"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/service"
	"github.com/Veraticus/facet-flow/internal/storage"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and review stored metadata records",
		Long:  `List, show, edit, approve and delete records in the review queue.`,
	}

	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsShowCmd())
	cmd.AddCommand(recordsApproveCmd())
	cmd.AddCommand(recordsEditCmd())
	cmd.AddCommand(recordsDeleteCmd())

	return cmd
}

func recordsListCmd() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := recordFilter(status, limit)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListRecords(ctx, filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No records found."))
				return nil
			}
			fmt.Fprintln(out, renderRecordTable(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only list records with this status (pending_review, approved)")
	cmd.Flags().IntVar(&limit, "limit", 0, "list at most this many records")

	return cmd
}

// recordFilter validates the list flags.
func recordFilter(status string, limit int) (service.RecordFilter, error) {
	if limit < 0 {
		return service.RecordFilter{}, common.NewUserError("--limit must not be negative", storage.ErrInvalidRecord)
	}
	s := model.Status(strings.TrimSpace(status))
	if s != "" && !s.IsValid() {
		return service.RecordFilter{}, common.NewUserError(
			fmt.Sprintf("unknown status %q (want %s or %s)", status, model.StatusPendingReview, model.StatusApproved),
			storage.ErrInvalidStatus)
	}
	return service.RecordFilter{Status: s, Limit: limit}, nil
}

func renderRecordTable(records []*model.MetadataRecord) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Product", "Facet 1", "Overall", "Priority", "Status"})
	for _, r := range records {
		tw.AppendRow(table.Row{
			r.ID,
			r.ProductID(),
			r.Faceted.Hierarchical.ItemType.FullPath,
			fmt.Sprintf("%.2f", r.Confidence.Overall),
			string(r.ReviewPriority),
			string(r.Status),
		})
	}
	tw.AppendFooter(table.Row{"", "", fmt.Sprintf("%d records", len(records)), "", "", ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}

func recordsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			record, err := getRecord(cmd, a, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return export.WriteRecordJSON(out, record)
			}
			fmt.Fprintln(out, cli.RenderRecord(record, a.policy.Review.ReviewThreshold))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	return cmd
}

func recordsApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>...",
		Short: "Approve records whose validations pass",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out := cmd.OutOrStdout()
			var blocked int
			for _, id := range args {
				record, err := getRecord(cmd, a, id)
				if err != nil {
					return err
				}
				if record.Status == model.StatusApproved {
					fmt.Fprintln(out, cli.FormatInfo(id+" is already approved"))
					continue
				}

				if _, err := a.assembler.Approve(record); err != nil {
					if !errors.Is(err, common.ErrApprovalBlocked) {
						return err
					}
					blocked++
					fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", id, err)))
					continue
				}

				if err := a.store.SaveRecord(ctx, record); err != nil {
					return fmt.Errorf("failed to save record %s: %w", id, err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Approved "+id))
			}

			if blocked > 0 {
				return common.NewUserError(fmt.Sprintf("%d record(s) could not be approved; fix them with facet records edit", blocked), common.ErrApprovalBlocked)
			}
			return nil
		},
	}
}

func recordsEditCmd() *cobra.Command {
	var (
		sets    []string
		bullets []string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Override fields of a record",
		Long: `Override record fields with --set field=value. Paths are rebuilt, the record
is revalidated and rescored, and an approved record returns to pending review.

Fields: ` + strings.Join(editableFields(), ", "),
		Example: `  facet records edit 4f1c --set color=Navy --set category=Shirts
  facet records edit 4f1c --bullet "Machine washable" --bullet "Slim fit"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseEdits(sets)
			if err != nil {
				return common.NewUserError(err.Error(), err)
			}
			if cmd.Flags().Changed("bullet") {
				edits.BulletPoints = bullets
			}
			if edits.IsEmpty() {
				return common.NewUserError("nothing to edit; pass --set field=value or --bullet", errNoEdits)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			record, err := getRecord(cmd, a, args[0])
			if err != nil {
				return err
			}

			record = a.assembler.ApplyEdits(record, edits)
			if err := a.store.SaveRecord(ctx, record); err != nil {
				return fmt.Errorf("failed to save record: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return export.WriteRecordJSON(out, record)
			}
			fmt.Fprintln(out, cli.RenderRecord(record, a.policy.Review.ReviewThreshold))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value override (repeatable)")
	cmd.Flags().StringArrayVar(&bullets, "bullet", nil, "replacement bullet point (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the edited record as JSON")

	return cmd
}

func recordsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRecord(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError("no record with id "+args[0], err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+args[0]))
			return nil
		},
	}
}

func getRecord(cmd *cobra.Command, a *app, id string) (*model.MetadataRecord, error) {
	record, err := a.store.GetRecord(cmd.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError("no record with id "+id, err)
		}
		return nil, err
	}
	return record, nil
}
