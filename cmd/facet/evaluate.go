package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/evaluate"
)

func evaluateCmd() *cobra.Command {
	var (
		limit       int
		jsonPath    string
		detailsPath string
	)

	cmd := &cobra.Command{
		Use:   "evaluate <gold.csv> <generated.csv>",
		Short: "Score generated metadata against a gold standard",
		Long: `Join the gold-standard and generated tables by product id and report the
per-attribute exact-match accuracy and the overall mean.`,
		Example: `  facet evaluate gold.csv flat.csv --limit 100 --details details.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gold, err := evaluate.ReadTableFile(args[0])
			if err != nil {
				return common.NewUserError("could not read gold table "+args[0], err)
			}
			generated, err := evaluate.ReadTableFile(args[1])
			if err != nil {
				return common.NewUserError("could not read generated table "+args[1], err)
			}

			result := evaluate.Evaluate(gold, generated, limit)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Evaluated %d products", result.TotalProcessed)))
			fmt.Fprintln(out, evaluate.RenderSummary(result.Summary))
			if n := len(result.MissingProducts); n > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d gold products have no generated row", n)))
			}

			if jsonPath != "" {
				if err := writeTo(jsonPath, out, func(w io.Writer) error {
					return evaluate.WriteSummaryJSON(w, result.Summary)
				}); err != nil {
					return err
				}
			}
			if detailsPath != "" {
				if err := writeTo(detailsPath, out, func(w io.Writer) error {
					return evaluate.WriteDetailedCSV(w, result.Details)
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "compare only the first N rows of each table")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the accuracy summary as JSON to this file")
	cmd.Flags().StringVar(&detailsPath, "details", "", "write the per-product comparison CSV to this file")

	return cmd
}
