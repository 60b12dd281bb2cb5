// Package instrument provides a deterministic microscope simulator used
// for dry runs and tests when no hardware is attached.
package instrument

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/example/gemscreen/internal/core/well"
	"github.com/example/gemscreen/internal/ports/secondary"
)

// Simulator implements secondary.Instrument without hardware. Frames are
// synthesized from the current stage position, so repeated runs produce
// identical images.
type Simulator struct {
	mu     sync.Mutex
	pos    well.StageCoord
	width  int
	height int

	moves  int
	snaps  int
	pulses int
}

var _ secondary.Instrument = (*Simulator)(nil)

// NewSimulator returns a simulator producing frames of the given size.
func NewSimulator(width, height int) *Simulator {
	return &Simulator{width: width, height: height}
}

// MoveTo records the new stage position.
func (s *Simulator) MoveTo(ctx context.Context, coord well.StageCoord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = coord
	s.moves++
	return nil
}

// Snap synthesizes a frame whose intensities depend on the stage position
// and the preset, mimicking a structured sample.
func (s *Simulator) Snap(ctx context.Context, preset secondary.Preset) (*image.Gray16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps++

	img := image.NewGray16(image.Rect(0, 0, s.width, s.height))
	base := uint32(int32(s.pos.X) + int32(s.pos.Y)*7 + int32(preset.ExposureMs))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			v := (base + uint32(x)*13 + uint32(y)*31) % 4096
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img, nil
}

// Stimulate records the pulse; the simulated sample has no photophysics.
func (s *Simulator) Stimulate(ctx context.Context, mask *image.Gray16, preset secondary.Preset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pulses++
	return nil
}

// Counts reports how many moves, snaps and stimulation pulses have run.
func (s *Simulator) Counts() (moves, snaps, pulses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves, s.snaps, s.pulses
}
