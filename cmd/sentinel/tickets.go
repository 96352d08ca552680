package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
	"github.com/Veraticus/sla-sentinel/internal/storage"
	"github.com/spf13/cobra"
)

// DefaultPageSize is the number of tickets listed per page.
const DefaultPageSize = 7

func ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Browse imported tickets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tickets, newest first unless --sort oldest",
		RunE:  runTicketsList,
	}
	list.Flags().String("priority", service.FilterAll, "Priority tier to include, or all")
	list.Flags().String("violated", service.FilterAll, "Violation flag to include: true, false or all")
	list.Flags().StringP("search", "s", "", "Only tickets whose number contains this text")
	list.Flags().String("sort", "newest", "Open date order: newest or oldest")
	list.Flags().Int("page", 1, "Page to show")
	list.Flags().Int("page-size", DefaultPageSize, "Tickets per page")

	show := &cobra.Command{
		Use:   "show <number>",
		Short: "Show one ticket",
		Args:  cobra.ExactArgs(1),
		RunE:  runTicketsShow,
	}

	cmd.AddCommand(list, show)
	return cmd
}

func runTicketsList(cmd *cobra.Command, _ []string) error {
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	filter.Search, _ = cmd.Flags().GetString("search")
	sortFlag, _ := cmd.Flags().GetString("sort")
	switch sortFlag {
	case "newest", service.SortNewest:
		filter.Sort = service.SortNewest
	case "oldest", service.SortOldest:
		filter.Sort = service.SortOldest
	default:
		return common.NewUserError(fmt.Sprintf("unknown --sort %q, use newest or oldest", sortFlag), nil)
	}
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	if page < 1 || pageSize < 1 {
		return common.NewUserError("--page and --page-size must be positive", nil)
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		tickets, total, err := store.ListTickets(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		out := cmd.OutOrStdout()
		if err := cli.WriteTicketTable(out, tickets); err != nil {
			return err
		}
		pages := (total + pageSize - 1) / pageSize
		_, err = fmt.Fprintln(out, "\n"+cli.SubtleStyle.Render(
			fmt.Sprintf("Page %d of %d (%d tickets)", page, max(pages, 1), total)))
		return err
	})
}

func runTicketsShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(store *storage.SQLiteStorage) error {
		ticket, err := store.GetTicket(cmd.Context(), args[0])
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("Ticket %s not found", args[0]), err)
		}
		if err != nil {
			return fmt.Errorf("failed to get ticket: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTicket(ticket))
		return err
	})
}

func renderTicket(t *model.Ticket) string {
	const layout = "2006-01-02 15:04"

	var b strings.Builder
	fmt.Fprintf(&b, "Priority:          %s\n", t.Priority)
	fmt.Fprintf(&b, "Category:          %s / %s / %s\n", t.Category, t.Item, t.SubCategory)
	fmt.Fprintf(&b, "Opened:            %s (%s)\n", t.OpenDate.Format(layout), t.CreationDayOfWeek)
	fmt.Fprintf(&b, "Due:               %s (%s)\n", t.DueDate.Format(layout), t.DeadlineDayOfWeek)
	if t.ClosedDate != nil {
		fmt.Fprintf(&b, "Closed:            %s\n", t.ClosedDate.Format(layout))
	}
	fmt.Fprintf(&b, "Days to due:       %d\n", t.DaysToDue)
	fmt.Fprintf(&b, "Resolution:        %.2f days\n", t.ResolutionDuration)
	fmt.Fprintf(&b, "SLA compliance:    %.1f%%\n", t.SLAComplianceRate*100)

	violated := cli.SuccessStyle.Render(t.ViolationText())
	if t.IsSLAViolated {
		violated = cli.ErrorStyle.Render(t.ViolationText())
	}
	fmt.Fprintf(&b, "SLA violated:      %s", violated)

	return cli.RenderBox(cli.TicketIcon+" "+t.Number, b.String())
}
