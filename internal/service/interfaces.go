// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// FilterAll disables a ticket filter dimension.
const FilterAll = "all"

// Ticket list orderings. An empty Sort lists newest first.
const (
	SortNewest = "-open_date"
	SortOldest = "open_date"
)

// TicketFilter narrows ticket queries. Empty or FilterAll fields match every
// ticket; Violated accepts "true", "false" or FilterAll. Sort accepts
// SortNewest or SortOldest.
type TicketFilter struct {
	Priority string
	Category string
	Violated string
	Search   string
	Sort     string
	Limit    int
	Offset   int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Ticket operations
	ReplaceTickets(ctx context.Context, tickets []model.Ticket) (int, error)
	GetTicket(ctx context.Context, number string) (*model.Ticket, error)
	ListTickets(ctx context.Context, filter TicketFilter) ([]model.Ticket, int, error)

	// Analytics
	GetStats(ctx context.Context, filter TicketFilter) (*StatsSummary, error)
	GetViolationByCategory(ctx context.Context, filter TicketFilter, limit int) ([]CategoryViolation, error)
	GetMonthlyTrend(ctx context.Context, filter TicketFilter) ([]MonthlyTrend, error)
	GetUniqueValues(ctx context.Context) (*UniqueValues, error)

	// Prediction audit log
	SavePredictionLog(ctx context.Context, entry *model.PredictionLog) error
	GetPredictionLogs(ctx context.Context, limit int) ([]model.PredictionLog, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// StatsSummary contains aggregate ticket statistics.
type StatsSummary struct {
	ByPriority            map[string]int
	TotalTickets          int
	ViolationCount        int
	ComplianceCount       int
	ComplianceRate        float64 // percent
	AvgResolutionDuration float64 // days
	AvgComplianceRate     float64 // percent
}

// CategoryViolation is the violation rate of one ticket category.
type CategoryViolation struct {
	Category      string
	TotalTickets  int
	ViolationRate float64 // percent
}

// MonthlyTrend is the ticket volume of one calendar month.
type MonthlyTrend struct {
	Month           string // YYYY-MM
	TotalTickets    int
	ViolatedTickets int
}

// UniqueValues lists the distinct categorical values in the ticket store.
type UniqueValues struct {
	Categories []string
	Items      []string
}

// ImportStats shows the results of a ticket import.
type ImportStats struct {
	Duration time.Duration
	Read     int
	Imported int
	Skipped  int
}
