package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command that touches the database migrates it first; run this
explicitly to prepare a database or to check its schema version.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"database", settings.DatabasePath,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if status {
		state := cli.SuccessStyle.Render("up to date")
		if current < storage.ExpectedSchemaVersion {
			state = cli.WarningStyle.Render(fmt.Sprintf("%d pending", storage.ExpectedSchemaVersion-current))
		}
		_, err := fmt.Fprintln(out, cli.RenderBox(cli.FolderIcon+" Database Migration Status", fmt.Sprintf(
			"Database:         %s\nCurrent version:  %d\nLatest version:   %d\nState:            %s",
			settings.DatabasePath, current, storage.ExpectedSchemaVersion, state)))
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database at schema version %d (was %d)", storage.ExpectedSchemaVersion, current)))
	return err
}
