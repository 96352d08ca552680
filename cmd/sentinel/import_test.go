package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
	"github.com/Veraticus/sla-sentinel/internal/testutil"
	tc "github.com/Veraticus/sla-sentinel/internal/ticketcsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importHeader = []string{
	tc.ColNumber, tc.ColPriority, tc.ColCategory, tc.ColItem, tc.ColSubCategory,
	tc.ColOpenDate, tc.ColDueDate, tc.ColClosedDate, tc.ColTimeLeft,
	tc.ColViolated, tc.ColOpenDateOff, tc.ColDueDateOff,
	tc.ColDaysToDue, tc.ColOpenMonth,
	tc.ColCreationDayOfWeek, tc.ColCreationHour, tc.ColDeadlineDayOfWeek, tc.ColDeadlineHour,
	tc.ColResolutionDuration, tc.ColTicketsResolved, tc.ColSLAThreshold,
	tc.ColAvgResolution, tc.ColSLARatio, tc.ColComplianceRate,
}

func importRow(number, priority, violated string) []string {
	return []string{
		number, priority, "network", "vpn", "access",
		"2024-01-08 09:00:00", "2024-01-11 09:00:00", "2024-01-10 12:00:00", "1.5",
		violated, "Hari Kerja", "Hari Kerja",
		"3", "1",
		"Monday", "9", "Thursday", "9",
		"2.13", "120", "3", "2.0", "1.5", "0.8",
	}
}

func writeImportFile(t *testing.T, rows ...[]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.Write(importHeader))
	require.NoError(t, w.WriteAll(rows))

	path := filepath.Join(t.TempDir(), "processed_tickets.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestImportCommand(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// A previous import is replaced entirely.
	_, err := env.openStore(t).ReplaceTickets(ctx, []model.Ticket{testutil.NewTicketBuilder("OLD1").Build()})
	require.NoError(t, err)

	path := writeImportFile(t,
		importRow("INC1", "Critical", "1"),
		importRow("INC2", "Low", "0"),
		importRow("INC3", "Whenever", "0"),
	)

	out, err := execute(t, importCmd(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Ticket Import")
	assert.Contains(t, out, "INC3")
	assert.Contains(t, out, "Whenever")

	store := env.openStore(t)
	tickets, total, err := store.ListTickets(ctx, service.TicketFilter{Priority: service.FilterAll, Violated: service.FilterAll})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	numbers := []string{tickets[0].Number, tickets[1].Number}
	assert.ElementsMatch(t, []string{"INC1", "INC2"}, numbers)

	ticket, err := store.GetTicket(ctx, "INC1")
	require.NoError(t, err)
	assert.Equal(t, model.PriorityCritical, ticket.Priority)
	assert.True(t, ticket.IsSLAViolated)
}

func TestImportCommand_DryRun(t *testing.T) {
	env := setupTestEnv(t)
	path := writeImportFile(t, importRow("INC1", "Medium", "0"))

	_, err := execute(t, importCmd(), path, "--dry-run")
	require.NoError(t, err)

	_, total, err := env.openStore(t).ListTickets(context.Background(), service.TicketFilter{Priority: service.FilterAll, Violated: service.FilterAll})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestImportCommand_BadFile(t *testing.T) {
	setupTestEnv(t)
	path := filepath.Join(t.TempDir(), "broken.csv")
	require.NoError(t, os.WriteFile(path, []byte("Number,Priority\nINC1,Low\n"), 0o600))

	_, err := execute(t, importCmd(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, tc.ErrMissingColumns)

	_, err = execute(t, importCmd(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
