package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial ticket schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS tickets (
					number TEXT PRIMARY KEY,
					priority TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT '',
					item TEXT NOT NULL DEFAULT '',
					sub_category TEXT NOT NULL DEFAULT '',
					open_date DATETIME NOT NULL,
					due_date DATETIME NOT NULL,
					closed_date DATETIME,
					open_period TEXT NOT NULL,
					creation_day_of_week TEXT NOT NULL DEFAULT '',
					deadline_day_of_week TEXT NOT NULL DEFAULT '',
					time_left_incl_on_hold REAL NOT NULL DEFAULT 0,
					resolution_duration REAL NOT NULL DEFAULT 0,
					total_tickets_resolved_wc REAL NOT NULL DEFAULT 0,
					sla_threshold REAL NOT NULL DEFAULT 0,
					average_resolution_time_ac REAL NOT NULL DEFAULT 0,
					sla_to_average_resolution_rc REAL NOT NULL DEFAULT 0,
					sla_compliance_rate REAL NOT NULL DEFAULT 0,
					days_to_due INTEGER NOT NULL DEFAULT 0,
					open_month INTEGER NOT NULL DEFAULT 0,
					creation_hour INTEGER NOT NULL DEFAULT 0,
					deadline_hour INTEGER NOT NULL DEFAULT 0,
					is_sla_violated BOOLEAN NOT NULL DEFAULT 0,
					is_open_date_off BOOLEAN NOT NULL DEFAULT 0,
					is_due_date_off BOOLEAN NOT NULL DEFAULT 0,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_tickets_priority ON tickets(priority)`,
				`CREATE INDEX idx_tickets_category ON tickets(category)`,
				`CREATE INDEX idx_tickets_open_date ON tickets(open_date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add prediction audit log",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS prediction_logs (
					id TEXT PRIMARY KEY,
					created_at DATETIME NOT NULL,
					requested_by TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL,
					sla_violated BOOLEAN NOT NULL DEFAULT 0,
					input_data TEXT NOT NULL,
					prediction_result TEXT NOT NULL
				)`,
				`CREATE INDEX idx_prediction_logs_created_at ON prediction_logs(created_at)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Index tickets by open period for trend queries",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_tickets_open_period ON tickets(open_period)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
