package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/facet-flow/internal/tui"
)

func reviewCmd() *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the record queue interactively",
		Long: `Open the review queue. Records are ordered pending first, then by review
priority and lowest confidence. Press a to approve, enter for details,
f to show pending records only and q to quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return tui.Run(ctx,
				tui.WithStore(a.store),
				tui.WithApprover(a.assembler),
				tui.WithThreshold(a.policy.Review.ReviewThreshold),
				tui.WithPendingOnly(pendingOnly),
			)
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "start with only pending records shown")
	return cmd
}
