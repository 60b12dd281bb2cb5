package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/example/gemscreen/internal/adapters/sqlite"
	"github.com/example/gemscreen/internal/db"
	"github.com/example/gemscreen/internal/ports/secondary"
)

// setupTestDB opens an in-memory database with the schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLedgerRepository_AppendAndList(t *testing.T) {
	repo := sqlite.NewLedgerRepository(setupTestDB(t))
	ctx := context.Background()

	events := []secondary.RunEvent{
		{RunID: "run1", WellLabel: "A1", Step: "imaging_round_1", Status: "started"},
		{RunID: "run1", WellLabel: "A1", Step: "imaging_round_1", Status: "done"},
		{RunID: "run1", WellLabel: "B2", Step: "cleanup", Status: "done", Detail: "deleted 3"},
		{RunID: "run2", WellLabel: "A1", Step: "cleanup", Status: "started"},
	}
	for _, ev := range events {
		if err := repo.Append(ctx, ev); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := repo.ListByRun(ctx, "run1")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListByRun returned %d events, want 3", len(got))
	}
	if got[0].Step != "imaging_round_1" || got[0].Status != "started" {
		t.Errorf("first event = %+v, want imaging_round_1/started", got[0])
	}
	if got[2].Detail != "deleted 3" {
		t.Errorf("detail = %q, want %q", got[2].Detail, "deleted 3")
	}
	for i, ev := range got {
		if ev.ID == 0 {
			t.Errorf("event %d has no assigned ID", i)
		}
		if ev.CreatedAt.IsZero() {
			t.Errorf("event %d has no timestamp", i)
		}
	}
}

func TestLedgerRepository_ListByRunEmpty(t *testing.T) {
	repo := sqlite.NewLedgerRepository(setupTestDB(t))

	got, err := repo.ListByRun(context.Background(), "absent")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListByRun returned %d events for unknown run, want 0", len(got))
	}
}
