package imageio

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/gemscreen/internal/core/well"
)

func gray(v uint16) color.Gray16 {
	return color.Gray16{Y: v}
}

func TestWriteAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := well.Path(filepath.Join(dir, "A1P1_measure_1.tif"))

	img := image.NewGray16(image.Rect(0, 0, 4, 3))
	img.SetGray16(1, 2, gray(512))
	img.SetGray16(3, 0, gray(65535))

	if err := WriteAtomic(path, img); err != nil {
		t.Fatalf("WriteAtomic() returned error: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() returned error: %v", err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), img.Bounds())
	}
	if got.Gray16At(1, 2).Y != 512 || got.Gray16At(3, 0).Y != 65535 {
		t.Errorf("pixel values did not survive the round trip")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d files, want 1 (no temp leftovers)", len(entries))
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(well.Path(filepath.Join(t.TempDir(), "absent.tif"))); err == nil {
		t.Error("Read() accepted a missing file")
	}
}

func TestLoadCategoryEmpty(t *testing.T) {
	fov := well.NewFieldOfView(well.Path(t.TempDir()), "A1", 1, well.StageCoord{})

	_, err := LoadCategory(fov, well.CategoryMeasure)
	if !errors.Is(err, ErrNoImages) {
		t.Errorf("LoadCategory() error = %v, want ErrNoImages", err)
	}

	if _, err := LoadCategory(fov, well.Category("bogus")); err == nil {
		t.Error("LoadCategory() accepted an unknown category")
	}
}

func TestLoadCategoryReadsInOrder(t *testing.T) {
	dir := t.TempDir()
	fov := well.NewFieldOfView(well.Path(dir), "A1", 1, well.StageCoord{})
	if err := os.MkdirAll(string(fov.ImagesDir()), 0o755); err != nil {
		t.Fatal(err)
	}

	for i, v := range []uint16{100, 200} {
		p, err := fov.RegisterImage(well.CategoryMeasure, i+1)
		if err != nil {
			t.Fatal(err)
		}
		img := image.NewGray16(image.Rect(0, 0, 2, 2))
		img.SetGray16(0, 0, gray(v))
		if err := WriteAtomic(p, img); err != nil {
			t.Fatal(err)
		}
	}

	got, err := LoadCategory(fov, well.CategoryMeasure)
	if err != nil {
		t.Fatalf("LoadCategory() returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d frames, want 2", len(got))
	}
	if got[0].Gray16At(0, 0).Y != 100 || got[1].Gray16At(0, 0).Y != 200 {
		t.Error("frames are not in registration order")
	}
}
