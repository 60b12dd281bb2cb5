package well

import "testing"

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name         string
		filename     string
		wantFOV      string
		wantCat      Category
		wantInstance int
		wantErr      bool
	}{
		{
			name:         "canonical measure file",
			filename:     "A1P3_measure_2.tif",
			wantFOV:      "A1P3",
			wantCat:      CategoryMeasure,
			wantInstance: 2,
		},
		{
			name:         "mask file",
			filename:     "B12P10_mask_1.tif",
			wantFOV:      "B12P10",
			wantCat:      CategoryMask,
			wantInstance: 1,
		},
		{
			name:         "stim file",
			filename:     "A1P1_stim_1.tif",
			wantFOV:      "A1P1",
			wantCat:      CategoryStim,
			wantInstance: 1,
		},
		{
			name:     "missing instance",
			filename: "A1P3_measure.tif",
			wantErr:  true,
		},
		{
			name:     "unknown category",
			filename: "A1P3_overlay_1.tif",
			wantErr:  true,
		},
		{
			name:     "wrong extension",
			filename: "A1P3_measure_2.png",
			wantErr:  true,
		},
		{
			name:     "zero instance",
			filename: "A1P3_measure_0.tif",
			wantErr:  true,
		},
		{
			name:     "no fov id",
			filename: "_measure_2.tif",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fovID, cat, instance, err := ParseFilename(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseFilename(%q) = (%q, %q, %d), want error", tt.filename, fovID, cat, instance)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilename(%q) returned error: %v", tt.filename, err)
			}
			if fovID != tt.wantFOV || cat != tt.wantCat || instance != tt.wantInstance {
				t.Errorf("ParseFilename(%q) = (%q, %q, %d), want (%q, %q, %d)",
					tt.filename, fovID, cat, instance, tt.wantFOV, tt.wantCat, tt.wantInstance)
			}
		})
	}
}

func TestImageName(t *testing.T) {
	got := ImageName("A1P3", CategoryRefseg, 2)
	want := "A1P3_refseg_2.tif"
	if got != want {
		t.Errorf("ImageName() = %q, want %q", got, want)
	}
}
