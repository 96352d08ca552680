package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
)

func TestRenderPrediction(t *testing.T) {
	out := RenderPrediction(model.PredictionResponse{
		Status: model.StatusSuccess,
		PredictionResult: &model.PredictionResult{
			Violated:       true,
			RuleApplied:    true,
			VerdictText:    "Yes (business rule)",
			Confidence:     100,
			Probability:    0.6,
			DaysToDue:      3,
			OpenHour:       9,
			RiskFactors:    []string{"Business rule: critical ticket"},
			Recommendation: "Escalate to the responsible team.",
		},
	})

	for _, want := range []string{
		"SLA violated: Yes (business rule)",
		"100.00%",
		"0.6000",
		"Days to due:  3",
		"09:00",
		"Business rule applied",
		"Business rule: critical ticket",
		"Escalate to the responsible team.",
	} {
		assert.Contains(t, out, want)
	}

	failed := RenderPrediction(model.PredictionResponse{Status: model.StatusError, Message: "invalid open_date"})
	assert.Contains(t, failed, "Prediction failed: invalid open_date")
}

func TestRenderStats(t *testing.T) {
	out := RenderStats(&service.StatsSummary{
		TotalTickets:    10,
		ViolationCount:  4,
		ComplianceCount: 6,
		ComplianceRate:  60,
		ByPriority:      map[string]int{model.PriorityCritical: 2, model.PriorityLow: 8},
	})

	assert.Contains(t, out, "Total tickets:       10")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, model.PriorityCritical)
	assert.Contains(t, out, model.PriorityMedium)
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteCategoryTable(&buf, []service.CategoryViolation{
		{Category: "network", TotalTickets: 3, ViolationRate: 33.33},
	}))
	require.NoError(t, WriteTrendTable(&buf, []service.MonthlyTrend{
		{Month: "2024-01", TotalTickets: 2, ViolatedTickets: 1},
	}))
	require.NoError(t, WriteImportanceTable(&buf, []artifact.Importance{
		{Feature: "Days to Due", Importance: 0.5},
	}))
	require.NoError(t, WriteLogTable(&buf, []model.PredictionLog{
		{CreatedAt: time.Now(), Response: model.PredictionResponse{Status: model.StatusError}},
	}))
	require.NoError(t, WriteTicketTable(&buf, []model.Ticket{
		{Number: "INC1", Priority: model.PriorityHigh, IsSLAViolated: true},
	}))

	out := buf.String()
	for _, want := range []string{"network", "33.33%", "2024-01", "Days to Due", "0.5000", strings.Repeat("█", 20), "error", "INC1", "2 - High"} {
		assert.Contains(t, out, want)
	}
}
