package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/config"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/vocabulary"
)

// vocabularyFields are the fields with a vocabulary list.
var vocabularyFields = []string{
	model.FieldNameGender, model.FieldNameItemType, model.FieldNameCategory,
	model.FieldNameProductType, model.FieldNameColor, model.FieldNameMaterial,
	model.FieldNamePattern, model.FieldNameUsage, model.FieldNameBrand, model.FieldNameSize,
}

func vocabularyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vocabulary",
		Aliases: []string{"vocab"},
		Short:   "Query and extend the controlled vocabulary",
		Long: `Validate values against the controlled vocabulary, list valid options and
add reviewer-approved custom terms.

Fields: ` + strings.Join(vocabularyFields, ", "),
	}

	cmd.AddCommand(vocabularyValidateCmd())
	cmd.AddCommand(vocabularyOptionsCmd())
	cmd.AddCommand(vocabularyAddTermCmd())
	cmd.AddCommand(vocabularySaveCmd())

	return cmd
}

type contextFlags struct {
	itemType string
	category string
}

func (c *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.itemType, "item-type", "", "item type context for category and product_type")
	cmd.Flags().StringVar(&c.category, "category", "", "category context for product_type")
}

func (c *contextFlags) context() vocabulary.ValidationContext {
	return vocabulary.ValidationContext{ItemType: c.itemType, Category: c.category}
}

func checkField(field string) (string, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	for _, f := range vocabularyFields {
		if f == field {
			return field, nil
		}
	}
	return "", common.NewUserError(
		fmt.Sprintf("unknown field %q (want one of %s)", field, strings.Join(vocabularyFields, ", ")),
		errUnknownField)
}

func vocabularyValidateCmd() *cobra.Command {
	var vctx contextFlags

	cmd := &cobra.Command{
		Use:   "validate <field> <value>",
		Short: "Check a value against the vocabulary",
		Example: `  facet vocabulary validate color "navy blue"
  facet vocabulary validate category Tshirt --item-type Apparel`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := checkField(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			result := a.vocab.Validate(field, args[1], vctx.context())
			out := cmd.OutOrStdout()
			if result.Valid {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s is a valid %s", result.Normalized, field)))
				return nil
			}

			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s is not a valid %s", result.Normalized, field)))
			if len(result.Suggestions) > 0 {
				fmt.Fprintln(out, cli.FormatInfo("Did you mean: "+strings.Join(result.Suggestions, ", ")))
			}
			return nil
		},
	}

	vctx.register(cmd)
	return cmd
}

func vocabularyOptionsCmd() *cobra.Command {
	var vctx contextFlags

	cmd := &cobra.Command{
		Use:   "options <field>",
		Short: "List the valid values for a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := checkField(args[0])
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			options := a.vocab.ValidOptions(field, vctx.context())
			out := cmd.OutOrStdout()
			if len(options) == 0 {
				fmt.Fprintln(out, cli.FormatWarning("No vocabulary for "+field+" in this context; any value is accepted."))
				return nil
			}
			for _, o := range options {
				fmt.Fprintln(out, o)
			}
			return nil
		},
	}

	vctx.register(cmd)
	return cmd
}

func vocabularyAddTermCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-term <field> <value>",
		Short: "Accept a custom term for a field",
		Long: `Add a reviewer-approved term to the vocabulary overlay. The term is stored in
the database and accepted by validation from then on. Use vocabulary save to
write it into the vocabulary document.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := checkField(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			term := a.vocab.AddCustomTerm(field, args[1])
			if term == "" {
				return common.NewUserError("term must not be empty", errBadEdit)
			}
			if err := a.store.SaveCustomTerm(ctx, field, term); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s to %s", term, field)))
			return nil
		},
	}
}

func vocabularySaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [path]",
		Short: "Write the vocabulary document including custom terms",
		Long: `Write the merged vocabulary document, with stored custom terms folded into
their fields, to path or to the configured vocabulary.path. The format follows
the file extension.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := viper.GetString("vocabulary.path")
			if len(args) == 1 {
				path = args[0]
			}
			path = config.ExpandPath(path)
			if path == "" {
				return common.NewUserError("no path given and vocabulary.path is not set", common.ErrMissingConfig)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if err := a.vocab.Save(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Vocabulary written to "+path))
			return nil
		},
	}
}
