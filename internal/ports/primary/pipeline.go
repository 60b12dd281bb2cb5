// Package primary defines the primary ports (driving interfaces) for the
// application: what the CLI asks of the screening engine.
package primary

import (
	"context"

	"github.com/example/gemscreen/internal/core/rescue"
	"github.com/example/gemscreen/internal/core/well"
)

// RunWellRequest asks the engine to process one well from scratch.
type RunWellRequest struct {
	RunDir    well.Path
	RunID     string
	WellLabel string
	Grid      map[int]well.StageCoord
}

// ResumeWellRequest asks the engine to continue an interrupted well from
// its persisted graph and on-disk evidence.
type ResumeWellRequest struct {
	ObjPath well.Path
}

// AssessWellRequest asks for a rescue classification without running
// anything.
type AssessWellRequest struct {
	ObjPath well.Path
}

// PipelineService drives the round-based screening workflow for wells.
type PipelineService interface {
	// RunWell executes the full round sequence for a fresh well. A quit
	// gate returns ErrPipelineQuit from the app package; persisted state
	// stays intact.
	RunWell(ctx context.Context, req RunWellRequest) error

	// ResumeWell classifies the well's on-disk evidence and continues from
	// the safe point the assessment proposes.
	ResumeWell(ctx context.Context, req ResumeWellRequest) error

	// AssessWell returns the rescue assessment for an interrupted well.
	AssessWell(ctx context.Context, req AssessWellRequest) (*rescue.Assessment, error)
}
