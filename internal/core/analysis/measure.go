// Package analysis contains the pure per-object computations of the
// pipeline: mean-intensity extraction from mask/image pairs, the
// before/after ratio with its true-cell threshold rule, and the stimulation
// mask label filtering and erosion. No I/O - images come in as decoded
// Gray16 frames and results leave as plain values.
package analysis

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/example/gemscreen/internal/core/well"
)

// Measurement is one detected object's row in the well measurement table.
type Measurement struct {
	FOVID      string
	Label      int
	CellID     string // <fov_id>C<label>
	BeforeStim float64
	AfterStim  float64
	Ratio      float64 // NaN when the pre-stimulation mean is zero
	CentroidX  float64
	CentroidY  float64
	FOVX       float64
	FOVY       float64
	Process    bool
	PreIllum   float64 // NaN until the control loop runs
	PostIllum  float64 // NaN until the control loop runs
}

// ApplyThresholdAndRatio enforces the true-cell rule on a post-stimulation
// mean and derives the ratio: a post value below the threshold is treated as
// noise and forced to zero before the ratio is computed, and a zero
// pre-stimulation denominator maps to an undefined (NaN) ratio rather than
// a division blow-up.
func ApplyThresholdAndRatio(before, after, trueCellThreshold float64) (adjustedAfter, ratio float64) {
	if after < trueCellThreshold {
		after = 0
	}
	if before == 0 {
		return after, math.NaN()
	}
	return after, after / before
}

// ComputeMeasurements extracts one Measurement per object from a FOV's
// round-1/round-2 mask+image pairs. Objects must appear in both masks to be
// measured (tracking assigns stable labels across rounds).
func ComputeMeasurements(fovID string, coord well.StageCoord,
	img1, img2, mask1, mask2 *image.Gray16, trueCellThreshold float64) ([]Measurement, error) {
	if img1 == nil || img2 == nil || mask1 == nil || mask2 == nil {
		return nil, fmt.Errorf("FOV %s: measurement needs two images and two masks", fovID)
	}

	stats1 := labelStats(mask1, img1)
	stats2 := labelStats(mask2, img2)

	labels := make([]int, 0, len(stats1))
	for label := range stats1 {
		if _, ok := stats2[label]; ok {
			labels = append(labels, label)
		}
	}
	sort.Ints(labels)

	out := make([]Measurement, 0, len(labels))
	for _, label := range labels {
		before := stats1[label].mean()
		after, ratio := ApplyThresholdAndRatio(before, stats2[label].mean(), trueCellThreshold)
		cy, cx := stats2[label].centroid()
		out = append(out, Measurement{
			FOVID:      fovID,
			Label:      label,
			CellID:     fmt.Sprintf("%sC%d", fovID, label),
			BeforeStim: before,
			AfterStim:  after,
			Ratio:      ratio,
			CentroidX:  cx,
			CentroidY:  cy,
			FOVX:       coord.X,
			FOVY:       coord.Y,
			PreIllum:   math.NaN(),
			PostIllum:  math.NaN(),
		})
	}
	return out, nil
}

// MergeControlIntensities fills the pre/post illumination columns of rows
// from control image means keyed by object label. Rows whose label is absent
// from a control mask keep NaN, consistent with never blocking on
// permanently-missing data.
func MergeControlIntensities(rows []Measurement, pre, post map[int]float64) []Measurement {
	out := make([]Measurement, len(rows))
	copy(out, rows)
	for i := range out {
		if v, ok := pre[out[i].Label]; ok {
			out[i].PreIllum = v
		}
		if v, ok := post[out[i].Label]; ok {
			out[i].PostIllum = v
		}
	}
	return out
}

// MeanIntensities returns the mean intensity of img under each mask label.
func MeanIntensities(mask, img *image.Gray16) map[int]float64 {
	stats := labelStats(mask, img)
	out := make(map[int]float64, len(stats))
	for label, s := range stats {
		out[label] = s.mean()
	}
	return out
}

type regionStats struct {
	count int
	sum   float64
	ySum  float64
	xSum  float64
}

func (s regionStats) mean() float64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / float64(s.count)
}

func (s regionStats) centroid() (y, x float64) {
	if s.count == 0 {
		return 0, 0
	}
	return s.ySum / float64(s.count), s.xSum / float64(s.count)
}

// labelStats accumulates per-label pixel statistics of img under mask.
// Label 0 is background and skipped.
func labelStats(mask, img *image.Gray16) map[int]regionStats {
	out := map[int]regionStats{}
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			label := int(mask.Gray16At(x, y).Y)
			if label == 0 {
				continue
			}
			s := out[label]
			s.count++
			s.sum += float64(img.Gray16At(x, y).Y)
			s.ySum += float64(y - b.Min.Y)
			s.xSum += float64(x - b.Min.X)
			out[label] = s
		}
	}
	return out
}
