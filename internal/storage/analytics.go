package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
)

// DefaultCategoryLimit is the number of categories reported when no limit
// is given.
const DefaultCategoryLimit = 10

// GetStats aggregates the tickets matching filter.
func (s *SQLiteStorage) GetStats(ctx context.Context, filter service.TicketFilter) (*service.StatsSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	where, args := buildTicketWhere(filter)

	var (
		total, violations          int
		avgDuration, avgCompliance float64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(is_sla_violated), 0),
			COALESCE(AVG(resolution_duration), 0),
			COALESCE(AVG(sla_compliance_rate), 0)
		FROM tickets`+where, args...).Scan(&total, &violations, &avgDuration, &avgCompliance)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tickets: %w", err)
	}

	summary := &service.StatsSummary{
		TotalTickets:          total,
		ViolationCount:        violations,
		ComplianceCount:       total - violations,
		AvgResolutionDuration: round(avgDuration, 2),
		AvgComplianceRate:     round(avgCompliance*100, 1),
		ByPriority:            make(map[string]int, len(model.Priorities)),
	}
	if total > 0 {
		summary.ComplianceRate = round(float64(summary.ComplianceCount)/float64(total)*100, 1)
	}
	for _, p := range model.Priorities {
		summary.ByPriority[p] = 0
	}

	rows, err := s.db.QueryContext(ctx, `SELECT priority, COUNT(*) FROM tickets`+where+` GROUP BY priority`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count priorities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("failed to scan priority count: %w", err)
		}
		summary.ByPriority[priority] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating priority counts: %w", err)
	}

	return summary, nil
}

// GetViolationByCategory returns per-category violation rates for the
// busiest categories, largest first. A non-positive limit uses
// DefaultCategoryLimit.
func (s *SQLiteStorage) GetViolationByCategory(ctx context.Context, filter service.TicketFilter, limit int) ([]service.CategoryViolation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}

	where, args := buildTicketWhere(filter)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS total, COALESCE(SUM(is_sla_violated), 0)
		FROM tickets`+where+`
		GROUP BY category
		ORDER BY total DESC, category
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category violations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []service.CategoryViolation
	for rows.Next() {
		var cv service.CategoryViolation
		var violated int
		if err := rows.Scan(&cv.Category, &cv.TotalTickets, &violated); err != nil {
			return nil, fmt.Errorf("failed to scan category violation: %w", err)
		}
		if cv.TotalTickets > 0 {
			cv.ViolationRate = round(float64(violated)/float64(cv.TotalTickets)*100, 2)
		}
		results = append(results, cv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category violations: %w", err)
	}

	return results, nil
}

// GetMonthlyTrend returns ticket and violation counts per opening month,
// oldest first.
func (s *SQLiteStorage) GetMonthlyTrend(ctx context.Context, filter service.TicketFilter) ([]service.MonthlyTrend, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	where, args := buildTicketWhere(filter)

	rows, err := s.db.QueryContext(ctx, `
		SELECT open_period, COUNT(*), COALESCE(SUM(is_sla_violated), 0)
		FROM tickets`+where+`
		GROUP BY open_period
		ORDER BY open_period`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly trend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []service.MonthlyTrend
	for rows.Next() {
		var mt service.MonthlyTrend
		if err := rows.Scan(&mt.Month, &mt.TotalTickets, &mt.ViolatedTickets); err != nil {
			return nil, fmt.Errorf("failed to scan monthly trend: %w", err)
		}
		results = append(results, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly trend: %w", err)
	}

	return results, nil
}

// GetUniqueValues lists the distinct non-empty categories and items,
// alphabetically.
func (s *SQLiteStorage) GetUniqueValues(ctx context.Context) (*service.UniqueValues, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	categories, err := s.distinct(ctx, "category")
	if err != nil {
		return nil, err
	}
	items, err := s.distinct(ctx, "item")
	if err != nil {
		return nil, err
	}

	return &service.UniqueValues{Categories: categories, Items: items}, nil
}

// distinct is only called with fixed column names.
func (s *SQLiteStorage) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT %[1]s FROM tickets WHERE %[1]s != '' ORDER BY %[1]s`, column))
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s values: %w", column, err)
	}
	return values, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
