// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// Priority tiers as they are stored for historical tickets.
const (
	PriorityCritical = "1 - Critical"
	PriorityHigh     = "2 - High"
	PriorityMedium   = "3 - Medium"
	PriorityLow      = "4 - Low"
)

// Priorities lists every stored priority tier from most to least severe.
var Priorities = []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Ticket represents a historical support ticket imported from the processed export.
type Ticket struct {
	OpenDate                 time.Time
	DueDate                  time.Time
	ClosedDate               *time.Time
	Number                   string
	Priority                 string
	Category                 string
	Item                     string
	SubCategory              string
	CreationDayOfWeek        string
	DeadlineDayOfWeek        string
	TimeLeftInclOnHold       float64
	ResolutionDuration       float64 // days
	TotalTicketsResolvedWc   float64
	SLAThreshold             float64
	AverageResolutionTimeAc  float64
	SLAToAverageResolutionRc float64
	SLAComplianceRate        float64 // 0..1
	DaysToDue                int
	OpenMonth                int
	CreationHour             int
	DeadlineHour             int
	IsSLAViolated            bool
	IsOpenDateOff            bool
	IsDueDateOff             bool
}

// ViolationText renders the violation flag the way the dashboard shows it.
func (t *Ticket) ViolationText() string {
	if t.IsSLAViolated {
		return "Yes"
	}
	return "No"
}

// NormalizePriority maps a free-text priority onto a stored tier.
// The boolean is false when the value does not correspond to any tier.
func NormalizePriority(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical", "1 - critical":
		return PriorityCritical, true
	case "high", "2 - high":
		return PriorityHigh, true
	case "medium", "3 - medium":
		return PriorityMedium, true
	case "low", "4 - low":
		return PriorityLow, true
	default:
		return "", false
	}
}
