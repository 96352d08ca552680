package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "INC001", wantErr: false},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "   ", wantErr: true},
		{name: "string with spaces", str: "  INC001  ", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "number")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateTicket(t *testing.T) {
	valid := makeTicket(1, model.PriorityMedium, "network", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), false)

	tests := []struct {
		mutate  func(*model.Ticket)
		name    string
		wantErr error
	}{
		{name: "valid ticket", mutate: func(*model.Ticket) {}},
		{name: "missing number", mutate: func(tk *model.Ticket) { tk.Number = " " }, wantErr: ErrInvalidTicket},
		{name: "raw priority", mutate: func(tk *model.Ticket) { tk.Priority = "Medium" }, wantErr: ErrInvalidTicket},
		{name: "missing open date", mutate: func(tk *model.Ticket) { tk.OpenDate = time.Time{} }, wantErr: ErrInvalidTicket},
		{name: "missing due date", mutate: func(tk *model.Ticket) { tk.DueDate = time.Time{} }, wantErr: ErrInvalidTicket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := valid
			tt.mutate(&ticket)
			err := validateTicket(&ticket)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateTicket() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateTicket() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := validateTicket(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("validateTicket(nil) error = %v, want ErrNilParameter", err)
	}
}

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name    string
		filter  service.TicketFilter
		wantErr bool
	}{
		{name: "zero filter", filter: service.TicketFilter{}},
		{name: "all", filter: service.TicketFilter{Priority: service.FilterAll, Violated: service.FilterAll}},
		{name: "violated true", filter: service.TicketFilter{Violated: "true"}},
		{name: "violated false", filter: service.TicketFilter{Violated: "false"}},
		{name: "violated yes", filter: service.TicketFilter{Violated: "yes"}, wantErr: true},
		{name: "sort oldest", filter: service.TicketFilter{Sort: service.SortOldest}},
		{name: "sort newest", filter: service.TicketFilter{Sort: service.SortNewest}},
		{name: "sort by priority", filter: service.TicketFilter{Sort: "priority"}, wantErr: true},
		{name: "negative limit", filter: service.TicketFilter{Limit: -1}, wantErr: true},
		{name: "negative offset", filter: service.TicketFilter{Offset: -5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFilter(tt.filter)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
