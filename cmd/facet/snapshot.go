package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/storage"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage record database snapshots",
		Long: `Create, list, restore and delete copies of the record database.

Batch runs take an automatic snapshot before saving unless
database.auto_snapshot is false; the five newest automatic snapshots are kept.`,
		Example: `  # Snapshot before a bulk edit
  facet snapshot create --tag pre-cleanup

  # Roll back
  facet snapshot restore pre-cleanup`,
	}

	cmd.AddCommand(snapshotCreateCmd())
	cmd.AddCommand(snapshotListCmd())
	cmd.AddCommand(snapshotRestoreCmd())
	cmd.AddCommand(snapshotDeleteCmd())

	return cmd
}

// withSnapshots opens storage and hands its snapshot manager to fn.
func withSnapshots(ctx context.Context, fn func(*storage.SnapshotManager) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.Snapshots()
	if err != nil {
		return common.NewUserError("snapshots are not available for this database", err)
	}
	return fn(manager)
}

func snapshotCreateCmd() *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Snapshot the record database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSnapshots(cmd.Context(), func(m *storage.SnapshotManager) error {
				info, err := m.Create(cmd.Context(), tag, description)
				if err != nil {
					return snapshotError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created snapshot %s (%s, %d records)",
					info.ID, formatFileSize(info.FileSize), info.Records)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "snapshot name (generated when empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "note stored with the snapshot")

	return cmd
}

func snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSnapshots(cmd.Context(), func(m *storage.SnapshotManager) error {
				snapshots, err := m.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(snapshots) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No snapshots found."))
					return nil
				}
				fmt.Fprintln(out, renderSnapshotTable(snapshots))
				return nil
			})
		},
	}
}

func snapshotRestoreCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Replace the record database with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withSnapshots(cmd.Context(), func(m *storage.SnapshotManager) error {
				info, err := m.Get(cmd.Context(), id)
				if err != nil {
					return snapshotError(err)
				}

				out := cmd.OutOrStdout()
				if !force {
					prompt := fmt.Sprintf("Replace the record database with snapshot %s from %s (%d records)?",
						info.ID, info.CreatedAt.Format("2006-01-02 15:04"), info.Records)
					if !confirm(cmd.InOrStdin(), out, prompt) {
						fmt.Fprintln(out, cli.FormatInfo("Restore cancelled."))
						return nil
					}
				}

				if err := m.Restore(cmd.Context(), id); err != nil {
					return snapshotError(err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Restored snapshot "+id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func snapshotDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return withSnapshots(cmd.Context(), func(m *storage.SnapshotManager) error {
				info, err := m.Get(cmd.Context(), id)
				if err != nil {
					return snapshotError(err)
				}

				out := cmd.OutOrStdout()
				if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete snapshot %s (%s)?", info.ID, formatFileSize(info.FileSize))) {
					fmt.Fprintln(out, cli.FormatInfo("Deletion cancelled."))
					return nil
				}

				if err := m.Delete(cmd.Context(), id); err != nil {
					return snapshotError(err)
				}
				fmt.Fprintln(out, cli.FormatSuccess("Deleted snapshot "+id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

// autoSnapshot snapshots the database before operation when
// database.auto_snapshot is on. Failures are logged, never fatal.
func autoSnapshot(ctx context.Context, store *storage.SQLiteStorage, operation string) {
	if !viper.GetBool("database.auto_snapshot") {
		return
	}
	manager, err := store.Snapshots()
	if err != nil {
		slog.Debug("automatic snapshot skipped", "reason", err)
		return
	}
	info, err := manager.Auto(ctx, operation)
	if err != nil {
		slog.Warn("automatic snapshot failed", "error", err)
		return
	}
	slog.Debug("automatic snapshot taken", "id", info.ID)
}

// snapshotError turns expected snapshot failures into user errors.
func snapshotError(err error) error {
	switch {
	case errors.Is(err, storage.ErrSnapshotNotFound):
		return common.NewUserError("snapshot not found; run 'facet snapshot list'", err)
	case errors.Is(err, storage.ErrSnapshotExists):
		return common.NewUserError("a snapshot with that tag already exists", err)
	case errors.Is(err, storage.ErrInvalidSnapshotTag):
		return common.NewUserError("snapshot tags cannot contain path separators", err)
	case errors.Is(err, storage.ErrSnapshotCorrupted):
		return common.NewUserError("snapshot failed its integrity check", err)
	default:
		return err
	}
}

func renderSnapshotTable(snapshots []storage.SnapshotInfo) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Created", "Size", "Records", "Approved", "Type"})
	for _, s := range snapshots {
		kind := "manual"
		if s.IsAuto {
			kind = "auto"
		}
		tw.AppendRow(table.Row{
			s.ID,
			s.CreatedAt.Format("2006-01-02 15:04"),
			formatFileSize(s.FileSize),
			s.Records,
			s.Approved,
			kind,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (y/N) ", cli.FormatWarning(prompt))
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
