package testutil

import (
	"time"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// DefaultOpenDate is the open date of tickets built without WithDates.
var DefaultOpenDate = time.Date(2024, 1, 10, 9, 0, 0, 0, time.FixedZone("WIB", 7*60*60))

// TicketBuilder assembles valid historical tickets for tests.
type TicketBuilder struct {
	ticket model.Ticket
}

// NewTicketBuilder starts a low-priority, compliant ticket due three days
// after DefaultOpenDate.
func NewTicketBuilder(number string) *TicketBuilder {
	b := &TicketBuilder{ticket: model.Ticket{
		Number:            number,
		Priority:          model.PriorityLow,
		Category:          "network",
		Item:              "vpn",
		SLAComplianceRate: 0.9,
	}}
	return b.WithDates(DefaultOpenDate, DefaultOpenDate.Add(72*time.Hour))
}

// WithPriority sets the stored priority tier.
func (b *TicketBuilder) WithPriority(priority string) *TicketBuilder {
	b.ticket.Priority = priority
	return b
}

// WithCategory sets the category and item.
func (b *TicketBuilder) WithCategory(category, item string) *TicketBuilder {
	b.ticket.Category = category
	b.ticket.Item = item
	return b
}

// WithDates sets the open and due dates and the fields derived from them.
func (b *TicketBuilder) WithDates(open, due time.Time) *TicketBuilder {
	b.ticket.OpenDate = open
	b.ticket.DueDate = due
	b.ticket.DaysToDue = int(due.Sub(open) / (24 * time.Hour))
	b.ticket.OpenMonth = int(open.Month())
	b.ticket.CreationHour = open.Hour()
	b.ticket.DeadlineHour = due.Hour()
	b.ticket.CreationDayOfWeek = open.Weekday().String()
	b.ticket.DeadlineDayOfWeek = due.Weekday().String()
	return b
}

// WithResolution closes the ticket after d.
func (b *TicketBuilder) WithResolution(d time.Duration) *TicketBuilder {
	closed := b.ticket.OpenDate.Add(d)
	b.ticket.ClosedDate = &closed
	b.ticket.ResolutionDuration = d.Hours() / 24
	return b
}

// Violated marks the ticket as having breached its SLA.
func (b *TicketBuilder) Violated() *TicketBuilder {
	b.ticket.IsSLAViolated = true
	return b
}

// Build returns the ticket.
func (b *TicketBuilder) Build() model.Ticket {
	return b.ticket
}
