package ticketcsv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

func TestReadRequests(t *testing.T) {
	data := "Number,Open Date,Due Date,Priority,Category,Item\n" +
		"INC1,2024-01-01T09:00:00,2024-01-04T09:00:00,1 - Critical,network,vpn\n" +
		"INC2,2024-01-01,2024-01-21,,,\n" +
		",2024-02-01,2024-02-03,4 - Low,software,\n"

	rows, err := ReadRequests(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "INC1", rows[0].ID)
	req := rows[0].Request
	assert.Equal(t, "2024-01-01T09:00:00", req.OpenDate)
	assert.Equal(t, "2024-01-04T09:00:00", req.DueDate)
	assert.Equal(t, "1 - Critical", model.Categorical(req.Priority))
	assert.Equal(t, "network", model.Categorical(req.Category))
	assert.Equal(t, "vpn", model.Categorical(req.Item))
	assert.Nil(t, req.SubCategory, "absent column")

	assert.Nil(t, rows[1].Request.Priority, "empty cell counts as absent")
	assert.Equal(t, model.MissingCategorical, model.Categorical(rows[1].Request.Category))

	assert.Equal(t, "4", rows[2].ID, "falls back to the line number")
	assert.Equal(t, 4, rows[2].Line)
}

func TestReadRequests_SnakeCaseHeader(t *testing.T) {
	data := "id,open_date,due_date,sub_category\nA,2024-01-01,2024-01-02,repair\n"
	rows, err := ReadRequests(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].ID)
	require.NotNil(t, rows[0].Request.SubCategory)
	assert.Equal(t, "repair", *rows[0].Request.SubCategory)
}

func TestReadRequests_MissingDates(t *testing.T) {
	for _, data := range []string{"", "open_date,priority\n2024-01-01,Low\n"} {
		_, err := ReadRequests(strings.NewReader(data))
		assert.ErrorIs(t, err, ErrMissingDateColumns)
	}
}

func TestResultWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewResultWriter(&buf)

	require.NoError(t, w.Write("INC1", model.PredictionResponse{
		Status: model.StatusSuccess,
		PredictionResult: &model.PredictionResult{
			Violated:       true,
			VerdictText:    "Yes",
			Probability:    0.6,
			Confidence:     60,
			DaysToDue:      3,
			OpenHour:       9,
			RiskFactors:    []string{"Violation probability: 60.00%", "Short time until due date (Days to Due)"},
			Recommendation: "Escalate",
		},
	}))
	require.NoError(t, w.Write("INC2", model.PredictionResponse{Status: model.StatusError, Message: "invalid open_date"}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(ResultHeader, ","), lines[0])
	assert.Equal(t, "INC1,success,true,Yes,0.6000,60.00,false,3,9,Violation probability: 60.00%; Short time until due date (Days to Due),Escalate,", lines[1])
	assert.Equal(t, "INC2,error,,,,,,,,,,invalid open_date", lines[2])
}
