// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/gemscreen/internal/ports/secondary"
)

// LedgerRepository implements secondary.RunLedger with SQLite. Events are
// immutable journal rows; there is no update or delete.
type LedgerRepository struct {
	db *sql.DB
}

var _ secondary.RunLedger = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new SQLite run-ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append persists one journal row.
func (r *LedgerRepository) Append(ctx context.Context, ev secondary.RunEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO run_events (run_id, well_label, step, status, detail)
		 VALUES (?, ?, ?, ?, ?)`,
		ev.RunID, ev.WellLabel, ev.Step, ev.Status, ev.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to append run event: %w", err)
	}
	return nil
}

// ListByRun returns a run's rows in insertion order.
func (r *LedgerRepository) ListByRun(ctx context.Context, runID string) ([]secondary.RunEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, well_label, step, status, detail, created_at
		 FROM run_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run events: %w", err)
	}
	defer rows.Close()

	var events []secondary.RunEvent
	for rows.Next() {
		var ev secondary.RunEvent
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.WellLabel, &ev.Step, &ev.Status, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run events: %w", err)
	}
	return events, nil
}
