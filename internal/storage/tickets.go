package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
)

const ticketColumns = `number, priority, category, item, sub_category,
	open_date, due_date, closed_date,
	creation_day_of_week, deadline_day_of_week,
	time_left_incl_on_hold, resolution_duration, total_tickets_resolved_wc,
	sla_threshold, average_resolution_time_ac, sla_to_average_resolution_rc,
	sla_compliance_rate, days_to_due, open_month, creation_hour, deadline_hour,
	is_sla_violated, is_open_date_off, is_due_date_off`

// ReplaceTickets swaps the whole ticket set for tickets in one transaction.
// Rows sharing a number keep the last occurrence. It returns the number of
// tickets stored.
func (s *SQLiteStorage) ReplaceTickets(ctx context.Context, tickets []model.Ticket) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTickets(tickets); err != nil {
		return 0, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tickets`); err != nil {
			return fmt.Errorf("failed to clear tickets: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO tickets (`+ticketColumns+`, open_period)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range tickets {
			t := &tickets[i]
			var closed any
			if t.ClosedDate != nil {
				closed = *t.ClosedDate
			}
			if _, err := stmt.ExecContext(ctx,
				t.Number, t.Priority, t.Category, t.Item, t.SubCategory,
				t.OpenDate, t.DueDate, closed,
				t.CreationDayOfWeek, t.DeadlineDayOfWeek,
				t.TimeLeftInclOnHold, t.ResolutionDuration, t.TotalTicketsResolvedWc,
				t.SLAThreshold, t.AverageResolutionTimeAc, t.SLAToAverageResolutionRc,
				t.SLAComplianceRate, t.DaysToDue, t.OpenMonth, t.CreationHour, t.DeadlineHour,
				t.IsSLAViolated, t.IsOpenDateOff, t.IsDueDateOff,
				t.OpenDate.Format("2006-01"),
			); err != nil {
				return fmt.Errorf("failed to insert ticket %s: %w", t.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var stored int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&stored); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	slog.Info("Replaced ticket set", "received", len(tickets), "stored", stored)
	return stored, nil
}

// GetTicket returns the ticket with the given number.
func (s *SQLiteStorage) GetTicket(ctx context.Context, number string) (*model.Ticket, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(number, "number"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE number = ?`, number)
	ticket, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ticket %s: %w", number, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", number, err)
	}
	return ticket, nil
}

// ListTickets returns one page of tickets ordered by filter.Sort (newest
// first by default) and the total number of tickets matching filter.
func (s *SQLiteStorage) ListTickets(ctx context.Context, filter service.TicketFilter) ([]model.Ticket, int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, 0, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}

	where, args := buildTicketWhere(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	order := ` ORDER BY open_date DESC, number`
	if filter.Sort == service.SortOldest {
		order = ` ORDER BY open_date ASC, number`
	}
	query := `SELECT ` + ticketColumns + ` FROM tickets` + where + order
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tickets []model.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, total, nil
}

// buildTicketWhere turns a filter into a WHERE clause and its arguments.
func buildTicketWhere(filter service.TicketFilter) (string, []any) {
	var clauses []string
	var args []any

	if v := strings.TrimSpace(filter.Priority); v != "" && v != service.FilterAll {
		clauses = append(clauses, "priority = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(filter.Category); v != "" && v != service.FilterAll {
		clauses = append(clauses, "category = ?")
		args = append(args, v)
	}
	switch filter.Violated {
	case "true":
		clauses = append(clauses, "is_sla_violated = 1")
	case "false":
		clauses = append(clauses, "is_sla_violated = 0")
	}
	if v := strings.TrimSpace(filter.Search); v != "" {
		clauses = append(clauses, "number LIKE ?")
		args = append(args, "%"+v+"%")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var t model.Ticket
	var closed sql.NullTime
	err := row.Scan(
		&t.Number, &t.Priority, &t.Category, &t.Item, &t.SubCategory,
		&t.OpenDate, &t.DueDate, &closed,
		&t.CreationDayOfWeek, &t.DeadlineDayOfWeek,
		&t.TimeLeftInclOnHold, &t.ResolutionDuration, &t.TotalTicketsResolvedWc,
		&t.SLAThreshold, &t.AverageResolutionTimeAc, &t.SLAToAverageResolutionRc,
		&t.SLAComplianceRate, &t.DaysToDue, &t.OpenMonth, &t.CreationHour, &t.DeadlineHour,
		&t.IsSLAViolated, &t.IsOpenDateOff, &t.IsDueDateOff,
	)
	if err != nil {
		return nil, err
	}
	if closed.Valid {
		c := closed.Time
		t.ClosedDate = &c
	}
	return &t, nil
}
