package secondary

import (
	"context"
	"time"

	"github.com/example/gemscreen/internal/core/well"
)

// WellStore persists the well graph and owns the well's directory tree.
type WellStore interface {
	// Create builds a fresh well: it resets the well's directories on disk
	// (deleting any artifacts from a prior attempt), derives the FOVs from
	// the grid, and persists the initial graph. The reset is idempotent.
	Create(ctx context.Context, runDir well.Path, runID, label string, grid map[int]well.StageCoord) (*well.Well, error)

	// Load restores a previously persisted well graph. It never touches
	// the directory tree, so it is safe on a mid-run snapshot; the rescue
	// path relies on this.
	Load(ctx context.Context, objPath well.Path) (*well.Well, error)

	// Save persists the current graph. Called after every state-mutating
	// step so a crash loses at most one step's progress.
	Save(ctx context.Context, w *well.Well) error

	// ListImageFiles returns the file names currently present in the
	// well's images directory.
	ListImageFiles(w *well.Well) ([]string, error)

	// ListMaskFiles returns the file names currently present in the
	// well's masks directory.
	ListMaskFiles(w *well.Well) ([]string, error)
}

// RunEvent is one journal row in the run ledger.
type RunEvent struct {
	ID        int64
	RunID     string
	WellLabel string
	Step      string
	Status    string // started, done, failed, quit
	Detail    string
	CreatedAt time.Time
}

// RunLedger records step transitions so an operator can see where each well
// stands after a restart.
type RunLedger interface {
	// Append persists one journal row.
	Append(ctx context.Context, ev RunEvent) error

	// ListByRun returns a run's rows in insertion order.
	ListByRun(ctx context.Context, runID string) ([]RunEvent, error)
}

// CellSelector is the external cell-picking tool: given the measurement
// table on disk, it returns with the process flag filled in per object.
type CellSelector interface {
	Select(ctx context.Context, csvPath well.Path, cropSize int) error
}

// GateDecision is the outcome of a workflow gate.
type GateDecision int

const (
	// GateContinue proceeds with the next step.
	GateContinue GateDecision = iota
	// GateQuit aborts the current well's loop intentionally, leaving all
	// persisted state intact.
	GateQuit
)

// GatePrompter answers the workflow's gate questions (ligand added?
// control loop?). Implementations may ask the operator or read config.
type GatePrompter interface {
	Confirm(ctx context.Context, prompt string) (GateDecision, error)
}
