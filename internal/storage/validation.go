// Package storage provides the data persistence layer for sentinel: the
// historical ticket store and the prediction audit log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidTicket  = errors.New("invalid ticket")
	ErrInvalidFilter  = errors.New("invalid ticket filter")
	ErrInvalidLogItem = errors.New("invalid prediction log")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTickets validates a slice of tickets. An empty slice is allowed
// and clears the store.
func validateTickets(tickets []model.Ticket) error {
	for i := range tickets {
		if err := validateTicket(&tickets[i]); err != nil {
			return fmt.Errorf("ticket at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTicket validates a single ticket.
func validateTicket(ticket *model.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("%w: ticket", ErrNilParameter)
	}
	if strings.TrimSpace(ticket.Number) == "" {
		return fmt.Errorf("%w: missing number", ErrInvalidTicket)
	}
	if !slices.Contains(model.Priorities, ticket.Priority) {
		return fmt.Errorf("%w: %s has unknown priority %q", ErrInvalidTicket, ticket.Number, ticket.Priority)
	}
	if ticket.OpenDate.IsZero() {
		return fmt.Errorf("%w: %s is missing its open date", ErrInvalidTicket, ticket.Number)
	}
	if ticket.DueDate.IsZero() {
		return fmt.Errorf("%w: %s is missing its due date", ErrInvalidTicket, ticket.Number)
	}
	return nil
}

// validateFilter checks the violation flag, sort order and paging values.
func validateFilter(filter service.TicketFilter) error {
	switch filter.Violated {
	case "", service.FilterAll, "true", "false":
	default:
		return fmt.Errorf("%w: violated must be true, false or all, got %q", ErrInvalidFilter, filter.Violated)
	}
	switch filter.Sort {
	case "", service.SortNewest, service.SortOldest:
	default:
		return fmt.Errorf("%w: sort must be %s or %s, got %q",
			ErrInvalidFilter, service.SortOldest, service.SortNewest, filter.Sort)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return fmt.Errorf("%w: limit and offset cannot be negative", ErrInvalidFilter)
	}
	return nil
}

// validatePredictionLog validates an audit entry before it is stored.
func validatePredictionLog(entry *model.PredictionLog) error {
	if entry == nil {
		return fmt.Errorf("%w: prediction log", ErrNilParameter)
	}
	if entry.Response.Status != model.StatusSuccess && entry.Response.Status != model.StatusError {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidLogItem, entry.Response.Status)
	}
	return nil
}
