package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// DefaultLogLimit is the number of audit entries returned when no limit is given.
const DefaultLogLimit = 20

// SavePredictionLog records a served prediction. A missing ID or timestamp
// is filled in before the entry is written.
func (s *SQLiteStorage) SavePredictionLog(ctx context.Context, entry *model.PredictionLog) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePredictionLog(entry); err != nil {
		return err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	input, err := json.Marshal(entry.Request)
	if err != nil {
		return fmt.Errorf("failed to encode prediction input: %w", err)
	}
	result, err := json.Marshal(entry.Response)
	if err != nil {
		return fmt.Errorf("failed to encode prediction result: %w", err)
	}

	violated := entry.Response.OK() && entry.Response.Violated

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO prediction_logs (id, created_at, requested_by, source, status, sla_violated, input_data, prediction_result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CreatedAt.UTC(), entry.RequestedBy, entry.Source,
		entry.Response.Status, violated, string(input), string(result))
	if err != nil {
		return fmt.Errorf("failed to save prediction log: %w", err)
	}
	return nil
}

// GetPredictionLogs returns the most recent audit entries, newest first.
// A non-positive limit uses DefaultLogLimit.
func (s *SQLiteStorage) GetPredictionLogs(ctx context.Context, limit int) ([]model.PredictionLog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, requested_by, source, input_data, prediction_result
		FROM prediction_logs
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.PredictionLog
	for rows.Next() {
		var entry model.PredictionLog
		var input, result string
		if err := rows.Scan(&entry.ID, &entry.CreatedAt, &entry.RequestedBy, &entry.Source, &input, &result); err != nil {
			return nil, fmt.Errorf("failed to scan prediction log: %w", err)
		}
		if err := json.Unmarshal([]byte(input), &entry.Request); err != nil {
			return nil, fmt.Errorf("failed to decode input of prediction log %s: %w", entry.ID, err)
		}
		if err := json.Unmarshal([]byte(result), &entry.Response); err != nil {
			return nil, fmt.Errorf("failed to decode result of prediction log %s: %w", entry.ID, err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prediction logs: %w", err)
	}

	return logs, nil
}
