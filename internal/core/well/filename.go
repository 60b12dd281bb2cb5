package well

import (
	"fmt"
	"regexp"
	"strconv"
)

// Registered files follow the grammar <fov_id>_<category>_<instance>.tif
// where fov_id is <well_label>P<fov_instance> and instance is a positive
// round/sequence marker, e.g. "A1P3_measure_2.tif".
var filenameRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9]*P[0-9]+)_([a-z]+)_([1-9][0-9]*)\.tif$`)

// ParseFilename splits a canonical file name into its FOV identifier,
// category and instance number. The category must belong to the fixed set
// and the extension must be .tif.
func ParseFilename(name string) (fovID string, cat Category, instance int, err error) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return "", "", 0, fmt.Errorf("file name %q does not match <fov_id>_<category>_<instance>.tif", name)
	}
	cat = Category(m[2])
	if err := CheckCategory(cat); err != nil {
		return "", "", 0, fmt.Errorf("file name %q: %w", name, err)
	}
	instance, err = strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("file name %q: bad instance: %w", name, err)
	}
	return m[1], cat, instance, nil
}

// ImageName builds the canonical file name for a FOV, category and instance.
func ImageName(fovID string, cat Category, instance int) string {
	return fmt.Sprintf("%s_%s_%d.tif", fovID, cat, instance)
}
