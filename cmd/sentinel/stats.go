package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
	"github.com/Veraticus/sla-sentinel/internal/storage"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show SLA statistics for imported tickets",
		Long: `Summarize imported tickets: totals, violations, compliance rate, counts per
priority tier and average resolution time.

Filter with --priority (a tier such as "2 - High", or "all") and --violated
(true, false or all).`,
		RunE: runStats,
	}

	cmd.PersistentFlags().String("priority", service.FilterAll, "Priority tier to include, or all")
	cmd.PersistentFlags().String("violated", service.FilterAll, "Violation flag to include: true, false or all")

	categories := &cobra.Command{
		Use:   "categories",
		Short: "Violation rate per category",
		RunE:  runStatsCategories,
	}
	categories.Flags().Int("limit", storage.DefaultCategoryLimit, "Number of categories to show")
	cmd.AddCommand(categories)

	cmd.AddCommand(&cobra.Command{
		Use:   "trend",
		Short: "Tickets and violations per month",
		RunE:  runStatsTrend,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "values",
		Short: "Distinct categories and items seen in the tickets",
		RunE:  runStatsValues,
	})

	return cmd
}

// filterFromFlags builds a ticket filter, accepting short priority names
// such as "high".
func filterFromFlags(cmd *cobra.Command) (service.TicketFilter, error) {
	priority, _ := cmd.Flags().GetString("priority")
	violated, _ := cmd.Flags().GetString("violated")

	filter := service.TicketFilter{
		Priority: service.FilterAll,
		Violated: strings.ToLower(strings.TrimSpace(violated)),
	}
	if p := strings.TrimSpace(priority); p != "" && !strings.EqualFold(p, service.FilterAll) {
		tier, ok := model.NormalizePriority(p)
		if !ok {
			return filter, common.NewUserError(
				fmt.Sprintf("Unknown priority %q (use one of: %s)", p, strings.Join(model.Priorities, ", ")), nil)
		}
		filter.Priority = tier
	}
	if filter.Violated == "" {
		filter.Violated = service.FilterAll
	}
	return filter, nil
}

// withStore runs fn against the configured database.
func withStore(cmd *cobra.Command, fn func(store *storage.SQLiteStorage) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := initStorage(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close storage", common.Fields{"database": store.Path()})
		}
	}()
	return fn(store)
}

func runStats(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		stats, err := store.GetStats(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to get statistics: %w", err)
		}
		if stats.TotalTickets == 0 {
			slog.Info(cli.FormatWarning("No tickets match; run 'sentinel import' first"))
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderStats(stats))
		return err
	})
}

func runStatsCategories(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		rows, err := store.GetViolationByCategory(cmd.Context(), filter, limit)
		if err != nil {
			return fmt.Errorf("failed to get category violations: %w", err)
		}
		return cli.WriteCategoryTable(cmd.OutOrStdout(), rows)
	})
}

func runStatsTrend(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		rows, err := store.GetMonthlyTrend(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to get monthly trend: %w", err)
		}
		return cli.WriteTrendTable(cmd.OutOrStdout(), rows)
	})
}

func runStatsValues(cmd *cobra.Command, _ []string) error {
	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		values, err := store.GetUniqueValues(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get unique values: %w", err)
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Categories (%d)", len(values.Categories)))); err != nil {
			return err
		}
		for _, c := range values.Categories {
			fmt.Fprintln(out, "  "+c)
		}
		if _, err := fmt.Fprintln(out, "\n"+cli.FormatTitle(fmt.Sprintf("Items (%d)", len(values.Items)))); err != nil {
			return err
		}
		for _, item := range values.Items {
			fmt.Fprintln(out, "  "+item)
		}
		return nil
	})
}
