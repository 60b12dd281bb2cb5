// Package well contains the pure entity model for a screening run: wells,
// fields of view, the category-keyed path registry, and the tagged JSON
// codec used to persist the whole graph. This is part of the Functional
// Core - no I/O, only path derivation and bookkeeping.
package well

import "fmt"

// Category classifies a registered file by its role in the pipeline.
type Category string

const (
	// CategoryMeasure is the primary measurement channel.
	CategoryMeasure Category = "measure"
	// CategoryRefseg is the optional reference-segmentation channel.
	CategoryRefseg Category = "refseg"
	// CategoryControl is the pre/post illumination control channel.
	CategoryControl Category = "control"
	// CategoryMask is a segmentation mask produced by the processing server.
	CategoryMask Category = "mask"
	// CategoryStim is a filtered, eroded stimulation mask.
	CategoryStim Category = "stim"
)

// imageCategories route to the images directory, everything else to masks.
var imageCategories = map[Category]bool{
	CategoryMeasure: true,
	CategoryRefseg:  true,
	CategoryControl: true,
}

var validCategories = map[Category]bool{
	CategoryMeasure: true,
	CategoryRefseg:  true,
	CategoryControl: true,
	CategoryMask:    true,
	CategoryStim:    true,
}

// Valid reports whether c is one of the fixed category set.
func (c Category) Valid() bool {
	return validCategories[c]
}

// IsImage reports whether files of this category live in the images
// directory rather than the masks directory.
func (c Category) IsImage() bool {
	return imageCategories[c]
}

// CheckCategory returns an error naming the offending value when c is not
// part of the fixed category set.
func CheckCategory(c Category) error {
	if !c.Valid() {
		return fmt.Errorf("invalid category %q: expected one of measure, refseg, control, mask, stim", c)
	}
	return nil
}
