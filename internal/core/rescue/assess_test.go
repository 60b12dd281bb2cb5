package rescue

import (
	"reflect"
	"testing"
)

func TestAssess(t *testing.T) {
	expected := []string{"A1P1", "A1P2", "A1P3"}

	tests := []struct {
		name              string
		files             []string
		refseg            bool
		wantStatus        Status
		wantMissingRound1 []string
		wantMissingRound2 []string
		wantCompletePairs []string
	}{
		{
			name: "round 1 complete, no round 2 evidence",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P2_measure_1.tif", "A1P2_refseg_1.tif",
				"A1P3_measure_1.tif", "A1P3_refseg_1.tif",
			},
			refseg:     true,
			wantStatus: StatusReadyForRound2,
		},
		{
			name: "round 1 incomplete",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P2_measure_1.tif", "A1P2_refseg_1.tif",
			},
			refseg:            true,
			wantStatus:        StatusContinueRound1,
			wantMissingRound1: []string{"A1P3"},
		},
		{
			name: "half a pair is not a complete round",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P2_measure_1.tif", "A1P2_refseg_1.tif",
				"A1P3_measure_1.tif",
			},
			refseg:            true,
			wantStatus:        StatusContinueRound1,
			wantMissingRound1: []string{"A1P3"},
		},
		{
			name: "round 1 complete, round 2 partial",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P2_measure_1.tif", "A1P2_refseg_1.tif",
				"A1P3_measure_1.tif", "A1P3_refseg_1.tif",
				"A1P1_measure_2.tif", "A1P1_refseg_2.tif",
				"A1P2_measure_2.tif", "A1P2_refseg_2.tif",
			},
			refseg:            true,
			wantStatus:        StatusContinueRound2,
			wantMissingRound2: []string{"A1P3"},
			wantCompletePairs: []string{"A1P1", "A1P2"},
		},
		{
			name: "round 2 evidence with incomplete round 1",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P1_measure_2.tif", "A1P1_refseg_2.tif",
				"A1P2_measure_2.tif", "A1P2_refseg_2.tif",
			},
			refseg:            true,
			wantStatus:        StatusAnalyzeCompletePairsOnly,
			wantMissingRound1: []string{"A1P2", "A1P3"},
			wantCompletePairs: []string{"A1P1"},
		},
		{
			name: "both rounds complete",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P2_measure_1.tif", "A1P2_refseg_1.tif",
				"A1P3_measure_1.tif", "A1P3_refseg_1.tif",
				"A1P1_measure_2.tif", "A1P1_refseg_2.tif",
				"A1P2_measure_2.tif", "A1P2_refseg_2.tif",
				"A1P3_measure_2.tif", "A1P3_refseg_2.tif",
			},
			refseg:            true,
			wantStatus:        StatusComplete,
			wantCompletePairs: []string{"A1P1", "A1P2", "A1P3"},
		},
		{
			name: "refseg disabled needs only the measure channel",
			files: []string{
				"A1P1_measure_1.tif",
				"A1P2_measure_1.tif",
				"A1P3_measure_1.tif",
			},
			refseg:     false,
			wantStatus: StatusReadyForRound2,
		},
		{
			name:              "empty directory",
			files:             nil,
			refseg:            true,
			wantStatus:        StatusContinueRound1,
			wantMissingRound1: []string{"A1P1", "A1P2", "A1P3"},
		},
		{
			name: "malformed names are ignored",
			files: []string{
				"A1P1_measure_1.tif", "A1P1_refseg_1.tif",
				"A1P2_measure_1.tif", "A1P2_refseg_1.tif",
				"A1P3_measure_1.tif", "A1P3_refseg_1.tif",
				"thumbs.db", "A1P3_overlay_1.tif", "A1P3_measure.tif",
			},
			refseg:     true,
			wantStatus: StatusReadyForRound2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(expected, tt.files, tt.refseg)
			if got.Status != tt.wantStatus {
				t.Errorf("Assess().Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if !reflect.DeepEqual(got.MissingRound1, tt.wantMissingRound1) {
				t.Errorf("MissingRound1 = %v, want %v", got.MissingRound1, tt.wantMissingRound1)
			}
			if !reflect.DeepEqual(got.MissingRound2, tt.wantMissingRound2) {
				t.Errorf("MissingRound2 = %v, want %v", got.MissingRound2, tt.wantMissingRound2)
			}
			if !reflect.DeepEqual(got.CompletePairs, tt.wantCompletePairs) {
				t.Errorf("CompletePairs = %v, want %v", got.CompletePairs, tt.wantCompletePairs)
			}
		})
	}
}
