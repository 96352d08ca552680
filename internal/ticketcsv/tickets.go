package ticketcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// TimestampLayout is the date-time format of the processed export.
const TimestampLayout = "2006-01-02 15:04:05"

// OffDayMarker is the value the export uses for dates that fall on a
// weekend or public holiday.
const OffDayMarker = "Hari Libur"

// Export column names.
const (
	ColNumber             = "Number"
	ColPriority           = "Priority"
	ColCategory           = "Category"
	ColItem               = "Item"
	ColSubCategory        = "Sub Category"
	ColOpenDate           = "Open Date"
	ColDueDate            = "Due Date"
	ColClosedDate         = "Closed Date"
	ColTimeLeft           = "Time Left Incl. On Hold"
	ColViolated           = "Is SLA Violated"
	ColOpenDateOff        = "Is Open Date Off"
	ColDueDateOff         = "Is Due Date Off"
	ColDaysToDue          = "Days to Due"
	ColOpenMonth          = "Open Month"
	ColCreationDayOfWeek  = "Application Creation Day of Week"
	ColCreationHour       = "Application Creation Hour"
	ColDeadlineDayOfWeek  = "Application SLA Deadline Day of Week"
	ColDeadlineHour       = "Application SLA Deadline Hour"
	ColResolutionDuration = "Resolution Duration"
	ColTicketsResolved    = "Total Tickets Resolved (Wc)"
	ColSLAThreshold       = "SLA Threshold"
	ColAvgResolution      = "Average Resolution Time (Ac)"
	ColSLARatio           = "SLA to Average Resolution Ratio (Rc)"
	ColComplianceRate     = "Application SLA Compliance Rate"
)

// requiredColumns must all be present in the header.
var requiredColumns = []string{
	ColNumber, ColPriority, ColCategory, ColItem,
	ColOpenDate, ColDueDate, ColClosedDate, ColTimeLeft,
	ColViolated, ColOpenDateOff, ColDueDateOff,
	ColDaysToDue, ColOpenMonth,
	ColCreationDayOfWeek, ColCreationHour, ColDeadlineDayOfWeek, ColDeadlineHour,
	ColResolutionDuration, ColTicketsResolved, ColSLAThreshold,
	ColAvgResolution, ColSLARatio, ColComplianceRate,
}

// ErrMissingColumns is returned when the export header lacks required columns.
var ErrMissingColumns = errors.New("ticket export is missing required columns")

// SkippedRow describes an export row that was not imported.
type SkippedRow struct {
	Number string
	Reason string
	Line   int
}

// TicketResult is the outcome of reading a ticket export.
type TicketResult struct {
	Tickets []model.Ticket
	Skipped []SkippedRow
	Read    int
}

// record gives named access to one CSV row.
type record struct {
	index  map[string]int
	fields []string
}

func (r record) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) intField(column string) (int, error) {
	v, err := strconv.Atoi(r.get(column))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", column, err)
	}
	return v, nil
}

func (r record) floatField(column string) (float64, error) {
	v, err := strconv.ParseFloat(r.get(column), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", column, err)
	}
	return v, nil
}

func (r record) timeField(column string, loc *time.Location) (time.Time, error) {
	v, err := time.ParseInLocation(TimestampLayout, r.get(column), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", column, err)
	}
	return v, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		// Spreadsheet exports often carry a UTF-8 BOM on the first cell.
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		index[name] = i
	}
	return index
}

// ReadTickets parses a processed ticket export. Timestamps are wall-clock
// times in loc. Rows with an unknown priority or unparsable values are
// skipped with a warning; a malformed header fails the whole read.
func ReadTickets(r io.Reader, loc *time.Location) (*TicketResult, error) {
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	index := headerIndex(header)
	var missing []string
	for _, column := range requiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	result := &TicketResult{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		result.Read++

		rec := record{index: index, fields: fields}
		ticket, err := parseTicket(rec, loc)
		if err != nil {
			skipped := SkippedRow{Line: line, Number: rec.get(ColNumber), Reason: err.Error()}
			slog.Warn("Skipping ticket row",
				"line", skipped.Line,
				"number", skipped.Number,
				"reason", skipped.Reason)
			result.Skipped = append(result.Skipped, skipped)
			continue
		}
		result.Tickets = append(result.Tickets, ticket)
	}

	slog.Info("Read ticket export",
		"rows", result.Read,
		"tickets", len(result.Tickets),
		"skipped", len(result.Skipped))

	return result, nil
}

func parseTicket(rec record, loc *time.Location) (model.Ticket, error) {
	t := model.Ticket{
		Number:            rec.get(ColNumber),
		Category:          rec.get(ColCategory),
		Item:              rec.get(ColItem),
		SubCategory:       rec.get(ColSubCategory),
		CreationDayOfWeek: rec.get(ColCreationDayOfWeek),
		DeadlineDayOfWeek: rec.get(ColDeadlineDayOfWeek),
		IsOpenDateOff:     rec.get(ColOpenDateOff) == OffDayMarker,
		IsDueDateOff:      rec.get(ColDueDateOff) == OffDayMarker,
	}
	if t.Number == "" {
		return t, errors.New("missing ticket number")
	}

	priority, ok := model.NormalizePriority(rec.get(ColPriority))
	if !ok {
		return t, fmt.Errorf("unknown priority %q", rec.get(ColPriority))
	}
	t.Priority = priority

	var err error
	if t.OpenDate, err = rec.timeField(ColOpenDate, loc); err != nil {
		return t, err
	}
	if t.DueDate, err = rec.timeField(ColDueDate, loc); err != nil {
		return t, err
	}
	if rec.get(ColClosedDate) != "" {
		closed, err := rec.timeField(ColClosedDate, loc)
		if err != nil {
			return t, err
		}
		t.ClosedDate = &closed
	}

	violated, err := rec.intField(ColViolated)
	if err != nil {
		return t, err
	}
	t.IsSLAViolated = violated != 0

	ints := []struct {
		dst    *int
		column string
	}{
		{&t.DaysToDue, ColDaysToDue},
		{&t.OpenMonth, ColOpenMonth},
		{&t.CreationHour, ColCreationHour},
		{&t.DeadlineHour, ColDeadlineHour},
	}
	for _, f := range ints {
		if *f.dst, err = rec.intField(f.column); err != nil {
			return t, err
		}
	}

	floats := []struct {
		dst    *float64
		column string
	}{
		{&t.TimeLeftInclOnHold, ColTimeLeft},
		{&t.ResolutionDuration, ColResolutionDuration},
		{&t.TotalTicketsResolvedWc, ColTicketsResolved},
		{&t.SLAThreshold, ColSLAThreshold},
		{&t.AverageResolutionTimeAc, ColAvgResolution},
		{&t.SLAToAverageResolutionRc, ColSLARatio},
		{&t.SLAComplianceRate, ColComplianceRate},
	}
	for _, f := range floats {
		if *f.dst, err = rec.floatField(f.column); err != nil {
			return t, err
		}
	}

	return t, nil
}
