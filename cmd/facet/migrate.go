package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/facet-flow/internal/cli"
	"github.com/Veraticus/facet-flow/internal/config"
	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Initialize or update the record database schema to the latest version.`,
		RunE:  runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	dbPath := config.ExpandPath(viper.GetString("database.path"))
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", status)

	if status {
		store, err := storage.NewSQLiteStorage(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = store.Close() }()

		version, err := store.SchemaVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Fprintf(out, "Schema version: %d (latest %d)\n", version, storage.ExpectedSchemaVersion)
		if version < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, cli.FormatWarning("Migrations pending; run facet migrate"))
		} else {
			fmt.Fprintln(out, cli.FormatSuccess("Database is up to date"))
		}
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	counts, err := store.CountRecords(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database migrated to version %d", storage.ExpectedSchemaVersion)))
	fmt.Fprintf(out, "Records: %d pending review, %d approved\n",
		counts[model.StatusPendingReview], counts[model.StatusApproved])
	return nil
}
