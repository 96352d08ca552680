package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

func TestSQLiteStorage_PredictionLogs(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	success := &model.PredictionLog{
		CreatedAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		RequestedBy: "analyst",
		Source:      "workstation-7",
		Request:     model.NewPredictionRequest("2024-05-01T09:00:00", "2024-05-04T09:00:00", "1 - Critical", "network", "vpn", ""),
		Response: model.PredictionResponse{
			Status: model.StatusSuccess,
			PredictionResult: &model.PredictionResult{
				Violated:    true,
				Confidence:  100,
				Probability: 0.6,
				VerdictText: "Yes (business rule)",
				RiskFactors: []string{"Business rule: critical ticket"},
				DaysToDue:   3,
				OpenHour:    9,
				RuleApplied: true,
			},
		},
	}
	require.NoError(t, store.SavePredictionLog(ctx, success))
	assert.NotEmpty(t, success.ID, "ID is generated")

	failure := &model.PredictionLog{
		CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		Request:   model.PredictionRequest{OpenDate: "yesterday", DueDate: "2024-05-04"},
		Response:  model.PredictionResponse{Status: model.StatusError, Message: "invalid open_date"},
	}
	require.NoError(t, store.SavePredictionLog(ctx, failure))

	logs, err := store.GetPredictionLogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, failure.ID, logs[0].ID, "newest first")
	assert.Nil(t, logs[0].Response.PredictionResult)
	assert.Equal(t, "invalid open_date", logs[0].Response.Message)
	assert.Nil(t, logs[0].Request.Priority)

	got := logs[1]
	assert.Equal(t, "analyst", got.RequestedBy)
	assert.Equal(t, "workstation-7", got.Source)
	assert.True(t, got.CreatedAt.Equal(success.CreatedAt))
	assert.Equal(t, success.Request, got.Request)
	assert.Equal(t, success.Response, got.Response)

	limited, err := store.GetPredictionLogs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStorage_SavePredictionLogValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	assert.ErrorIs(t, store.SavePredictionLog(ctx, nil), ErrNilParameter)
	assert.ErrorIs(t, store.SavePredictionLog(ctx, &model.PredictionLog{}), ErrInvalidLogItem)

	entry := &model.PredictionLog{ID: "fixed-id", Response: model.PredictionResponse{Status: model.StatusError}}
	require.NoError(t, store.SavePredictionLog(ctx, entry))
	assert.Error(t, store.SavePredictionLog(ctx, entry), "IDs are unique")
}
