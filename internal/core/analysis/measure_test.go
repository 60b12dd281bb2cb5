package analysis

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/example/gemscreen/internal/core/well"
)

func TestApplyThresholdAndRatio(t *testing.T) {
	tests := []struct {
		name      string
		before    float64
		after     float64
		threshold float64
		wantAfter float64
		wantRatio float64
		wantNaN   bool
	}{
		{
			name:   "zero denominator is undefined, not a crash",
			before: 0, after: 5, threshold: 0,
			wantAfter: 5, wantNaN: true,
		},
		{
			name:   "below threshold is forced to zero",
			before: 10, after: 4, threshold: 5,
			wantAfter: 0, wantRatio: 0,
		},
		{
			name:   "above threshold passes through",
			before: 10, after: 20, threshold: 5,
			wantAfter: 20, wantRatio: 2,
		},
		{
			name:   "zero denominator with thresholded numerator",
			before: 0, after: 3, threshold: 5,
			wantAfter: 0, wantNaN: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, ratio := ApplyThresholdAndRatio(tt.before, tt.after, tt.threshold)
			if after != tt.wantAfter {
				t.Errorf("adjusted after = %v, want %v", after, tt.wantAfter)
			}
			if tt.wantNaN {
				if !math.IsNaN(ratio) {
					t.Errorf("ratio = %v, want NaN", ratio)
				}
			} else if ratio != tt.wantRatio {
				t.Errorf("ratio = %v, want %v", ratio, tt.wantRatio)
			}
		})
	}
}

// fillRect paints a rectangular region with a constant value.
func fillRect(img *image.Gray16, x0, y0, x1, y1 int, v uint16) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
}

func TestComputeMeasurements(t *testing.T) {
	// Two 8x8 frames with two labeled objects. Label 1 occupies a 2x2
	// block at (1,1), label 2 a 2x2 block at (5,5); both persist across
	// rounds with constant intensities.
	mask1 := image.NewGray16(image.Rect(0, 0, 8, 8))
	mask2 := image.NewGray16(image.Rect(0, 0, 8, 8))
	for _, m := range []*image.Gray16{mask1, mask2} {
		fillRect(m, 1, 1, 3, 3, 1)
		fillRect(m, 5, 5, 7, 7, 2)
	}
	img1 := image.NewGray16(image.Rect(0, 0, 8, 8))
	img2 := image.NewGray16(image.Rect(0, 0, 8, 8))
	fillRect(img1, 1, 1, 3, 3, 100) // label 1 before
	fillRect(img1, 5, 5, 7, 7, 0)   // label 2 before: zero denominator
	fillRect(img2, 1, 1, 3, 3, 200) // label 1 after
	fillRect(img2, 5, 5, 7, 7, 40)  // label 2 after

	coord := well.StageCoord{X: 12.5, Y: -3.25, Z: 1}
	rows, err := ComputeMeasurements("A1P1", coord, img1, img2, mask1, mask2, 10)
	if err != nil {
		t.Fatalf("ComputeMeasurements() returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	r1 := rows[0]
	if r1.Label != 1 || r1.CellID != "A1P1C1" {
		t.Errorf("row 0 identity = (%d, %q), want (1, A1P1C1)", r1.Label, r1.CellID)
	}
	if r1.BeforeStim != 100 || r1.AfterStim != 200 || r1.Ratio != 2 {
		t.Errorf("row 0 intensities = (%v, %v, %v), want (100, 200, 2)", r1.BeforeStim, r1.AfterStim, r1.Ratio)
	}
	if r1.CentroidX != 1.5 || r1.CentroidY != 1.5 {
		t.Errorf("row 0 centroid = (%v, %v), want (1.5, 1.5)", r1.CentroidX, r1.CentroidY)
	}
	if r1.FOVX != 12.5 || r1.FOVY != -3.25 {
		t.Errorf("row 0 FOV coordinates = (%v, %v), want (12.5, -3.25)", r1.FOVX, r1.FOVY)
	}
	if !math.IsNaN(r1.PreIllum) || !math.IsNaN(r1.PostIllum) {
		t.Error("control columns should start undefined")
	}

	r2 := rows[1]
	if r2.BeforeStim != 0 {
		t.Errorf("row 1 before = %v, want 0", r2.BeforeStim)
	}
	if !math.IsNaN(r2.Ratio) {
		t.Errorf("row 1 ratio = %v, want NaN (zero denominator)", r2.Ratio)
	}
}

func TestComputeMeasurementsDropsUntrackedLabels(t *testing.T) {
	mask1 := image.NewGray16(image.Rect(0, 0, 4, 4))
	mask2 := image.NewGray16(image.Rect(0, 0, 4, 4))
	fillRect(mask1, 0, 0, 2, 2, 1)
	fillRect(mask1, 2, 2, 4, 4, 2)
	fillRect(mask2, 0, 0, 2, 2, 1) // label 2 vanished in round 2

	img := image.NewGray16(image.Rect(0, 0, 4, 4))
	fillRect(img, 0, 0, 4, 4, 50)

	rows, err := ComputeMeasurements("A1P1", well.StageCoord{}, img, img, mask1, mask2, 0)
	if err != nil {
		t.Fatalf("ComputeMeasurements() returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].Label != 1 {
		t.Errorf("got %d rows (first label %d), want only label 1", len(rows), rows[0].Label)
	}
}

func TestMergeControlIntensities(t *testing.T) {
	rows := []Measurement{
		{CellID: "A1P1C1", Label: 1, PreIllum: math.NaN(), PostIllum: math.NaN()},
		{CellID: "A1P1C2", Label: 2, PreIllum: math.NaN(), PostIllum: math.NaN()},
	}
	pre := map[int]float64{1: 11}
	post := map[int]float64{1: 22}

	got := MergeControlIntensities(rows, pre, post)
	if got[0].PreIllum != 11 || got[0].PostIllum != 22 {
		t.Errorf("row 0 control = (%v, %v), want (11, 22)", got[0].PreIllum, got[0].PostIllum)
	}
	if !math.IsNaN(got[1].PreIllum) || !math.IsNaN(got[1].PostIllum) {
		t.Error("row 1 should keep undefined control values")
	}
	// Input rows are not mutated.
	if !math.IsNaN(rows[0].PreIllum) {
		t.Error("MergeControlIntensities mutated its input")
	}
}
