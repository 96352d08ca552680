package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/storage"
)

// TestDB represents a migrated test database.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
	Path    string
}

// SetupTestDB creates a migrated SQLite database in a temporary directory
// and seeds it with tickets. Cleanup is registered automatically.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewTicketBuilder("INC001").Violated().Build(),
//	)
func SetupTestDB(t *testing.T, tickets ...model.Ticket) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Tickets: tickets})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Tickets        []model.Ticket
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sentinel.db")
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if len(opts.Tickets) > 0 {
		if _, err := store.ReplaceTickets(ctx, opts.Tickets); err != nil {
			t.Fatalf("failed to seed tickets: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{
		Storage: store,
		Path:    path,
		t:       t,
	}
}

// MustGetTicket returns the stored ticket with the given number or fails the test.
func (db *TestDB) MustGetTicket(number string) *model.Ticket {
	db.t.Helper()
	ticket, err := db.Storage.GetTicket(context.Background(), number)
	if err != nil {
		db.t.Fatalf("failed to get ticket %s: %v", number, err)
	}
	return ticket
}
