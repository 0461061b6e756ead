package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/export"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/vision"
)

func generateCmd() *cobra.Command {
	var (
		image     string
		brand     string
		gender    string
		size      string
		productID string
		asJSON    bool
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate metadata for one product image",
		Long: `Analyze a single product image, combine it with the brand, gender and
size given on the command line and print the resulting metadata record.`,
		Example: `  facet generate --image shirt.jpg --brand Acme --gender Men
  facet generate --image https://example.com/dress.png --gender Women --json --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(image) == "" {
				return common.NewUserError("--image is required", common.ErrNoImageReference)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			analyzer, err := newAnalyzer(ctx, a.vocab)
			if err != nil {
				return err
			}

			var attrs model.ImageAttributes
			if analyzer != nil {
				defer func() { _ = analyzer.Close() }()
				attrs, err = analyzer.Analyze(ctx, image)
				if err != nil {
					return fmt.Errorf("%w: image analysis: %w", common.ErrCollaborator, err)
				}
			} else {
				slog.Warn("no vision provider configured, resolving from product input only")
			}

			record, err := a.assembler.Generate(ctx, model.ObservationBundle{
				Image:   attrs,
				Product: &model.ProductInfo{Brand: brand, Gender: gender, Size: size},
			})
			if err != nil {
				return err
			}
			stampImage(record, image, productID)

			if save {
				if err := a.store.SaveRecord(ctx, record); err != nil {
					return fmt.Errorf("failed to save record: %w", err)
				}
				slog.Info("record saved", "id", record.ID)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return export.WriteRecordJSON(out, record)
			}
			fmt.Fprintln(out, cli.RenderRecord(record, a.policy.Review.ReviewThreshold))
			return nil
		},
	}

	cmd.Flags().StringVar(&image, "image", "", "image file path or URL")
	cmd.Flags().StringVar(&brand, "brand", "", "product brand")
	cmd.Flags().StringVar(&gender, "gender", "", "target gender")
	cmd.Flags().StringVar(&size, "size", "", "product size")
	cmd.Flags().StringVar(&productID, "product-id", "", "product id to store on the record")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the record in the review queue")

	return cmd
}

// stampImage records the analyzed image reference and product id on a record
// generated without a catalog row.
func stampImage(record *model.MetadataRecord, ref, productID string) {
	flat := &record.Faceted.Flat
	if vision.IsURL(ref) {
		flat.ImageURL = ref
	} else {
		flat.ImageFile = ref
	}
	if productID != "" {
		flat.ProductID = productID
	}
	if flat.Size == "" {
		flat.Size = model.Unknown
	}
}
