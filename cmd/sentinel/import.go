package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/service"
	"github.com/Veraticus/sla-sentinel/internal/ticketcsv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <processed_tickets.csv>",
		Short: "Import the processed ticket export",
		Long: `Load the processed ticket export into the local database.

The import replaces every previously imported ticket. Rows with an unknown
priority or unparsable values are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Parse the file and report what would be imported without saving")
	cmd.Flags().Int("show-skipped", 10, "Number of skipped rows to list in the summary")

	_ = viper.BindPFlag("import.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	showSkipped, _ := cmd.Flags().GetInt("show-skipped")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	f, err := os.Open(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return common.NewUserError("Unable to open ticket export "+path, err)
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = f
	var bar *progressbar.ProgressBar
	if info, statErr := f.Stat(); statErr == nil && info.Size() > 0 {
		bar = cli.NewByteProgressBar(cmd.ErrOrStderr(), info.Size(), "Reading tickets")
		reader := progressbar.NewReader(f, bar)
		src = &reader
	}

	stats := service.ImportStats{}
	start := time.Now()

	result, err := ticketcsv.ReadTickets(src, settings.Location)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return common.NewUserError("Unable to read ticket export "+path, err)
	}
	stats.Read = result.Read
	stats.Skipped = len(result.Skipped)

	if viper.GetBool("import.dry_run") {
		slog.Info(cli.FormatWarning("Dry run mode - not saving to database"))
		stats.Imported = len(result.Tickets)
		stats.Duration = time.Now().Sub(start)
		return printImportSummary(cmd.OutOrStdout(), path, stats, result.Skipped, showSkipped)
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close storage", common.Fields{"database": store.Path()})
		}
	}()

	imported, err := store.ReplaceTickets(ctx, result.Tickets)
	if err != nil {
		return fmt.Errorf("failed to save tickets: %w", err)
	}
	stats.Imported = imported
	stats.Duration = time.Now().Sub(start)

	common.LogInfo("Imported tickets", common.Fields{
		"file":     path,
		"database": store.Path(),
		"imported": stats.Imported,
		"skipped":  stats.Skipped,
		"duration": stats.Duration,
	})

	return printImportSummary(cmd.OutOrStdout(), path, stats, result.Skipped, showSkipped)
}

func printImportSummary(w io.Writer, path string, stats service.ImportStats, skipped []ticketcsv.SkippedRow, limit int) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", cli.FolderIcon, path)
	fmt.Fprintf(&b, "Rows read:      %d\n", stats.Read)
	fmt.Fprintf(&b, "Imported:       %s\n", cli.SuccessStyle.Render(fmt.Sprint(stats.Imported)))
	fmt.Fprintf(&b, "Skipped:        %d\n", stats.Skipped)
	fmt.Fprintf(&b, "Took:           %s", stats.Duration.Round(time.Millisecond))

	if len(skipped) > 0 && limit > 0 {
		b.WriteString("\n\n" + cli.BoldStyle.Render("Skipped rows") + "\n")
		for i, row := range skipped {
			if i == limit {
				fmt.Fprintf(&b, "  ... and %d more", len(skipped)-limit)
				break
			}
			fmt.Fprintf(&b, "  line %d %s: %s\n", row.Line, orUnknown(row.Number), row.Reason)
		}
	}

	if _, err := fmt.Fprintln(w, cli.RenderBox(cli.TicketIcon+" Ticket Import", strings.TrimRight(b.String(), "\n"))); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func orUnknown(number string) string {
	if number == "" {
		return "(no number)"
	}
	return number
}
