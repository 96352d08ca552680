package predict

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// Feature column names as they appear in the trained feature order.
const (
	ColumnPriority     = "Priority"
	ColumnCategory     = "Category"
	ColumnItem         = "Item"
	ColumnSubCategory  = "Sub Category"
	ColumnDaysToDue    = "Days to Due"
	ColumnOpenMonth    = "Open Month"
	ColumnCreationHour = "Application Creation Hour"
	ColumnOpenDateOff  = "Is Open Date Off"
)

const secondsPerDay = 24 * 60 * 60

// timestampLayouts are the ISO-8601 shapes accepted for open and due dates.
// Fractional seconds are optional wherever seconds appear.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NonWorkingDays reports whether a date is a weekend or public holiday.
type NonWorkingDays interface {
	IsNonWorkingDay(t time.Time) bool
}

// Deriver computes the engineered ticket features.
type Deriver struct {
	calendar NonWorkingDays
	loc      *time.Location
}

// NewDeriver returns a Deriver interpreting zone-less timestamps in loc.
func NewDeriver(calendar NonWorkingDays, loc *time.Location) *Deriver {
	if loc == nil {
		loc = time.UTC
	}
	return &Deriver{calendar: calendar, loc: loc}
}

// ParseTimestamp parses an ISO-8601 date or date-time. Values without a zone
// are read as wall-clock time in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Derive parses the request dates and computes the derived features.
func (d *Deriver) Derive(req model.PredictionRequest) (model.TicketFeatures, error) {
	open, err := ParseTimestamp(req.OpenDate, d.loc)
	if err != nil {
		return model.TicketFeatures{}, &InvalidInputError{Field: "open_date", Value: req.OpenDate, Err: err}
	}
	due, err := ParseTimestamp(req.DueDate, d.loc)
	if err != nil {
		return model.TicketFeatures{}, &InvalidInputError{Field: "due_date", Value: req.DueDate, Err: err}
	}

	features := model.TicketFeatures{
		OpenTimestamp: open,
		DueTimestamp:  due,
		Priority:      model.Categorical(req.Priority),
		Category:      model.Categorical(req.Category),
		Item:          model.Categorical(req.Item),
		SubCategory:   model.Categorical(req.SubCategory),
		DaysToDue:     DaysBetween(open, due),
		OpenMonth:     int(open.Month()),
		CreationHour:  open.Hour(),
	}
	if d.calendar != nil && d.calendar.IsNonWorkingDay(open) {
		features.OpenDateOff = 1
	}

	slog.Debug("Derived ticket features",
		"open", open,
		"due", due,
		"days_to_due", features.DaysToDue,
		"open_month", features.OpenMonth,
		"creation_hour", features.CreationHour,
		"open_date_off", features.OpenDateOff)

	return features, nil
}

// DaysBetween returns the whole days from open to due, truncated toward zero.
// Whole-second arithmetic keeps spans longer than a time.Duration exact.
func DaysBetween(open, due time.Time) int {
	secs := due.Unix() - open.Unix()
	nanos := due.Nanosecond() - open.Nanosecond()
	switch {
	case secs > 0 && nanos < 0:
		secs--
	case secs < 0 && nanos > 0:
		secs++
	}
	return int(secs / secondsPerDay)
}

// categoricalColumns pairs each encoded column with the request value it reads.
func categoricalColumns(f model.TicketFeatures) [][2]string {
	return [][2]string{
		{ColumnPriority, f.Priority},
		{ColumnCategory, f.Category},
		{ColumnItem, f.Item},
		{ColumnSubCategory, f.SubCategory},
	}
}

// numericRow returns the derived numeric columns keyed by feature name.
func numericRow(f model.TicketFeatures) map[string]float64 {
	return map[string]float64{
		ColumnDaysToDue:    float64(f.DaysToDue),
		ColumnOpenMonth:    float64(f.OpenMonth),
		ColumnCreationHour: float64(f.CreationHour),
		ColumnOpenDateOff:  float64(f.OpenDateOff),
	}
}
