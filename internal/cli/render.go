package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
)

// RenderPrediction formats a prediction response for the terminal.
func RenderPrediction(resp model.PredictionResponse) string {
	if !resp.OK() {
		return FormatError("Prediction failed: " + resp.Message)
	}
	r := resp.PredictionResult

	verdict := SuccessStyle.Bold(true).Render(SuccessIcon + " SLA violated: " + r.VerdictText)
	if r.Violated {
		verdict = ErrorStyle.Bold(true).Render(ErrorIcon + " SLA violated: " + r.VerdictText)
	}

	var b strings.Builder
	b.WriteString(verdict + "\n\n")
	fmt.Fprintf(&b, "  Confidence:   %.2f%%\n", r.Confidence)
	fmt.Fprintf(&b, "  Probability:  %.4f\n", r.Probability)
	fmt.Fprintf(&b, "  Days to due:  %d\n", r.DaysToDue)
	fmt.Fprintf(&b, "  Opened at:    %02d:00\n", r.OpenHour)
	if r.RuleApplied {
		b.WriteString("  " + WarningStyle.Render("Business rule applied") + "\n")
	}

	b.WriteString("\n" + BoldStyle.Render("Risk factors") + "\n")
	for _, factor := range r.RiskFactors {
		b.WriteString("  • " + factor + "\n")
	}
	b.WriteString("\n" + BoldStyle.Render("Recommended action") + "\n")
	b.WriteString("  " + r.Recommendation)

	return RenderBox(TicketIcon+" SLA Prediction", b.String())
}

// RenderStats formats aggregate ticket statistics.
func RenderStats(s *service.StatsSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total tickets:       %d\n", s.TotalTickets)
	fmt.Fprintf(&b, "Violations:          %s\n", ErrorStyle.Render(fmt.Sprint(s.ViolationCount)))
	fmt.Fprintf(&b, "Compliant:           %s\n", SuccessStyle.Render(fmt.Sprint(s.ComplianceCount)))
	fmt.Fprintf(&b, "Compliance rate:     %.1f%%\n", s.ComplianceRate)
	fmt.Fprintf(&b, "Avg resolution:      %.2f days\n", s.AvgResolutionDuration)
	fmt.Fprintf(&b, "Avg SLA compliance:  %.1f%%\n\n", s.AvgComplianceRate)

	b.WriteString(BoldStyle.Render("By priority") + "\n")
	for _, p := range model.Priorities {
		fmt.Fprintf(&b, "  %-14s %d\n", p, s.ByPriority[p])
	}

	return RenderBox(ChartIcon+" Ticket Statistics", strings.TrimRight(b.String(), "\n"))
}

// Table writes aligned rows under a styled header.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable starts a table on w with the given column headers.
func NewTable(w io.Writer, headers ...string) (*Table, error) {
	t := &Table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}

	styled := make([]string, len(headers))
	rule := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
		rule[i] = strings.Repeat("─", max(len(h), 4))
	}
	if err := t.Row(styled...); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := t.Row(rule...); err != nil {
		return nil, fmt.Errorf("failed to write separator: %w", err)
	}
	return t, nil
}

// Row appends one row.
func (t *Table) Row(cells ...string) error {
	_, err := fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
	return err
}

// Flush writes the aligned table.
func (t *Table) Flush() error {
	return t.tw.Flush()
}

// WriteCategoryTable writes per-category violation rates.
func WriteCategoryTable(w io.Writer, rows []service.CategoryViolation) error {
	t, err := NewTable(w, "Category", "Tickets", "Violation rate")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := t.Row(r.Category, fmt.Sprint(r.TotalTickets), fmt.Sprintf("%.2f%%", r.ViolationRate)); err != nil {
			return fmt.Errorf("failed to write category row: %w", err)
		}
	}
	return t.Flush()
}

// WriteTrendTable writes monthly ticket volume.
func WriteTrendTable(w io.Writer, rows []service.MonthlyTrend) error {
	t, err := NewTable(w, "Month", "Tickets", "Violated")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := t.Row(r.Month, fmt.Sprint(r.TotalTickets), fmt.Sprint(r.ViolatedTickets)); err != nil {
			return fmt.Errorf("failed to write trend row: %w", err)
		}
	}
	return t.Flush()
}

// WriteImportanceTable writes feature importances with a proportional bar.
func WriteImportanceTable(w io.Writer, rows []artifact.Importance) error {
	t, err := NewTable(w, "Feature", "Importance", "")
	if err != nil {
		return err
	}
	for _, r := range rows {
		bar := strings.Repeat("█", int(r.Importance*40+0.5))
		if err := t.Row(r.Feature, fmt.Sprintf("%.4f", r.Importance), InfoStyle.Render(bar)); err != nil {
			return fmt.Errorf("failed to write importance row: %w", err)
		}
	}
	return t.Flush()
}

// WriteLogTable writes prediction audit entries.
func WriteLogTable(w io.Writer, logs []model.PredictionLog) error {
	t, err := NewTable(w, "When", "By", "Source", "Priority", "Status", "Violated", "Confidence")
	if err != nil {
		return err
	}
	for _, l := range logs {
		violated, confidence := "-", "-"
		if l.Response.OK() {
			violated = l.Response.VerdictText
			confidence = fmt.Sprintf("%.2f%%", l.Response.Confidence)
		}
		if err := t.Row(
			l.CreatedAt.Local().Format("2006-01-02 15:04"),
			orDash(l.RequestedBy),
			orDash(l.Source),
			model.Categorical(l.Request.Priority),
			l.Response.Status,
			violated,
			confidence,
		); err != nil {
			return fmt.Errorf("failed to write log row: %w", err)
		}
	}
	return t.Flush()
}

// WriteTicketTable writes one page of tickets.
func WriteTicketTable(w io.Writer, tickets []model.Ticket) error {
	t, err := NewTable(w, "Number", "Priority", "Category", "Item", "Opened", "Due", "Violated")
	if err != nil {
		return err
	}
	for i := range tickets {
		tk := &tickets[i]
		violated := SuccessStyle.Render(tk.ViolationText())
		if tk.IsSLAViolated {
			violated = ErrorStyle.Render(tk.ViolationText())
		}
		if err := t.Row(
			tk.Number,
			tk.Priority,
			orDash(tk.Category),
			orDash(tk.Item),
			tk.OpenDate.Format("2006-01-02 15:04"),
			tk.DueDate.Format("2006-01-02 15:04"),
			violated,
		); err != nil {
			return fmt.Errorf("failed to write ticket row: %w", err)
		}
	}
	return t.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
