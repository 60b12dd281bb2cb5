// Package imageio reads and writes the 16-bit grayscale TIFF frames the
// pipeline produces and consumes.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/example/gemscreen/internal/core/well"
)

// ErrNoImages reports a category with zero registered files where the
// caller expected at least one.
var ErrNoImages = fmt.Errorf("no images registered for category")

// Read decodes a Gray16 TIFF from disk.
func Read(path well.Path) (*image.Gray16, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if g, ok := img.(*image.Gray16); ok {
		return g, nil
	}
	// Non-Gray16 sources (8-bit exports, RGB previews) are converted.
	b := img.Bounds()
	g := image.NewGray16(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Set(x, y, img.At(x, y))
		}
	}
	return g, nil
}

// WriteAtomic encodes the frame to a temporary file in the destination
// directory and renames it into place, so readers never observe a
// half-written image even if the process dies mid-write.
func WriteAtomic(path well.Path, img *image.Gray16) error {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, nil); err != nil {
		return fmt.Errorf("failed to encode image %s: %w", path, err)
	}

	dir := filepath.Dir(string(path))
	tmp, err := os.CreateTemp(dir, filepath.Base(string(path))+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, string(path)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move image into place at %s: %w", path, err)
	}
	return nil
}

// LoadCategory reads every file registered for a FOV category, in
// registration order. It fails with ErrNoImages when the category is empty
// and the caller expected frames to exist.
func LoadCategory(fov *well.FieldOfView, cat well.Category) ([]*image.Gray16, error) {
	if err := well.CheckCategory(cat); err != nil {
		return nil, err
	}
	paths := fov.Paths.Get(cat)
	if len(paths) == 0 {
		return nil, fmt.Errorf("FOV %s, category %s: %w", fov.ID, cat, ErrNoImages)
	}
	out := make([]*image.Gray16, 0, len(paths))
	for _, p := range paths {
		img, err := Read(p)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}
