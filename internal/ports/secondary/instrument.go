// Package secondary defines the secondary ports (driven interfaces): the
// microscope, the processing server, persistence, and the operator gates.
package secondary

import (
	"context"
	"image"

	"github.com/example/gemscreen/internal/core/well"
)

// Preset bundles the acquisition settings for one capture or stimulation.
type Preset struct {
	OpticalConfiguration string
	Intensity            float64
	ExposureMs           float64
}

// ExposureSec returns the exposure converted to seconds.
func (p Preset) ExposureSec() float64 {
	return p.ExposureMs / 1000.0
}

// Instrument drives the microscope hardware. All calls block until the
// hardware settles; ctx cancellation aborts the operation.
type Instrument interface {
	// MoveTo positions the stage at the given coordinate.
	MoveTo(ctx context.Context, coord well.StageCoord) error

	// Snap captures one frame with the given preset.
	Snap(ctx context.Context, preset Preset) (*image.Gray16, error)

	// Stimulate projects the nonzero pixels of mask onto the sample with
	// the given preset.
	Stimulate(ctx context.Context, mask *image.Gray16, preset Preset) error
}
