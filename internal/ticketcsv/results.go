package ticketcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// ResultHeader is the header row written by ResultWriter.
var ResultHeader = []string{
	"id", "status", "sla_violated", "violation_text", "probability",
	"confidence", "rule_applied", "days_to_due", "open_hour",
	"risk_factors", "recommended_actions", "message",
}

// ResultWriter writes batch prediction responses as CSV.
type ResultWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewResultWriter returns a writer that emits ResultHeader before the first row.
func NewResultWriter(w io.Writer) *ResultWriter {
	return &ResultWriter{w: csv.NewWriter(w)}
}

// Write appends one response labelled id.
func (rw *ResultWriter) Write(id string, resp model.PredictionResponse) error {
	if !rw.wroteHeader {
		if err := rw.w.Write(ResultHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		rw.wroteHeader = true
	}

	record := make([]string, len(ResultHeader))
	record[0] = id
	record[1] = resp.Status
	record[11] = resp.Message
	if resp.OK() {
		r := resp.PredictionResult
		record[2] = strconv.FormatBool(r.Violated)
		record[3] = r.VerdictText
		record[4] = strconv.FormatFloat(r.Probability, 'f', 4, 64)
		record[5] = strconv.FormatFloat(r.Confidence, 'f', 2, 64)
		record[6] = strconv.FormatBool(r.RuleApplied)
		record[7] = strconv.Itoa(r.DaysToDue)
		record[8] = strconv.Itoa(r.OpenHour)
		record[9] = strings.Join(r.RiskFactors, "; ")
		record[10] = r.Recommendation
	}

	if err := rw.w.Write(record); err != nil {
		return fmt.Errorf("failed to write result %s: %w", id, err)
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer.
func (rw *ResultWriter) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
