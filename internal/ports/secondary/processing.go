package secondary

import (
	"context"
	"fmt"
	"time"
)

// ModelSettings selects the segmentation model on the processing server.
type ModelSettings struct {
	ModelType   string `json:"model_type"`
	RestoreType string `json:"restore_type"`
	GPU         bool   `json:"gpu"`
}

// SegSettings tunes the segmentation pass.
type SegSettings struct {
	Diameter          float64 `json:"diameter"`
	FlowThreshold     float64 `json:"flow_threshold"`
	CellprobThreshold float64 `json:"cellprob_threshold"`
}

// BackgroundPayload asks the server for background subtraction only.
type BackgroundPayload struct {
	ImgPath string  `json:"img_path"`
	Sigma   float64 `json:"sigma"`
	Size    int     `json:"size"`
}

// ProcessPayload asks the server for the full background-subtract,
// segment and track pass on one image.
type ProcessPayload struct {
	ImgPath              string        `json:"img_path"`
	Sigma                float64       `json:"sigma"`
	Size                 int           `json:"size"`
	ModelSettings        ModelSettings `json:"mod_settings"`
	SegSettings          SegSettings   `json:"seg_settings"`
	DstFolder            string        `json:"dst_folder"`
	Round                int           `json:"round"`
	WellID               string        `json:"well_id"`
	TotalFOVs            int           `json:"total_fovs"`
	DoDenoise            bool          `json:"do_denoise"`
	TrackStitchThreshold float64       `json:"track_stitch_threshold"`
}

// CompletionTimeoutError reports that a well's jobs did not all finish
// within the polling deadline.
type CompletionTimeoutError struct {
	WellID  string
	Elapsed time.Duration
}

func (e *CompletionTimeoutError) Error() string {
	return fmt.Sprintf("well %s: processing did not complete within %s", e.WellID, e.Elapsed)
}

// ProcessingClient talks to the remote processing service. Submission is
// fire-and-forget; AwaitCompletion is the synchronization barrier.
type ProcessingClient interface {
	// Cleanup removes server-side artifacts whose keys start with prefix
	// and returns how many were deleted.
	Cleanup(ctx context.Context, prefix string) (int, error)

	// SubmitBackgroundSub enqueues a background-subtraction-only job.
	SubmitBackgroundSub(ctx context.Context, payload BackgroundPayload) error

	// SubmitFullProcess enqueues a full processing job. TotalFOVs must be
	// positive; it is the server's completion denominator.
	SubmitFullProcess(ctx context.Context, payload ProcessPayload) error

	// AwaitCompletion polls the server until every job for wellID is
	// finished. It returns a *CompletionTimeoutError when the deadline
	// passes first.
	AwaitCompletion(ctx context.Context, wellID string, pollInterval, timeout time.Duration) error
}
