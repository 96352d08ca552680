package main

import (
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketsList(t *testing.T) {
	env := setupTestEnv(t)
	seedTickets(t, env)

	out, err := execute(t, ticketsCmd(), "list", "--page-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1 of 2 (4 tickets)")
	// Newest first: the February tickets lead.
	assert.Contains(t, out, "INC3")
	assert.Contains(t, out, "REQ4")
	assert.NotContains(t, out, "INC1")

	out, err = execute(t, ticketsCmd(), "list", "--search", "REQ")
	require.NoError(t, err)
	assert.Contains(t, out, "REQ4")
	assert.Contains(t, out, "Page 1 of 1 (1 tickets)")

	out, err = execute(t, ticketsCmd(), "list", "--sort", "oldest", "--page-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "INC1")
	assert.Contains(t, out, "INC2")
	assert.NotContains(t, out, "INC3")
	assert.NotContains(t, out, "REQ4")

	_, err = execute(t, ticketsCmd(), "list", "--page", "0")
	assert.Error(t, err)

	_, err = execute(t, ticketsCmd(), "list", "--sort", "priority")
	assert.Error(t, err)
}

func TestTicketsShow(t *testing.T) {
	env := setupTestEnv(t)
	seedTickets(t, env)

	out, err := execute(t, ticketsCmd(), "show", "INC1")
	require.NoError(t, err)
	assert.Contains(t, out, "INC1")
	assert.Contains(t, out, "1 - Critical")
	assert.Contains(t, out, "2.00 days")

	_, err = execute(t, ticketsCmd(), "show", "NOPE")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
