package well

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// PathRegistry maps a category to the ordered list of files registered under
// it. Lookup of a missing category behaves as an empty list and registration
// is append-only, so order is always chronological registration order
// (round 1 before round 2).
type PathRegistry map[Category][]Path

// Get returns the registered paths for cat, or an empty list when none have
// been registered. The returned slice is the live backing slice; callers
// must not mutate it.
func (r PathRegistry) Get(cat Category) []Path {
	return r[cat]
}

// Append registers a path under cat.
func (r PathRegistry) Append(cat Category, p Path) {
	r[cat] = append(r[cat], p)
}

// Count returns the number of paths registered under cat.
func (r PathRegistry) Count(cat Category) int {
	return len(r[cat])
}

// UnmarshalJSON restores the registry with default-empty semantics: the map
// is always non-nil, lists are never null, and unknown categories are
// rejected rather than silently kept.
func (r *PathRegistry) UnmarshalJSON(data []byte) error {
	raw := map[Category][]Path{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	reg := make(PathRegistry, len(raw))
	for cat, paths := range raw {
		if err := CheckCategory(cat); err != nil {
			return fmt.Errorf("path registry: %w", err)
		}
		if paths == nil {
			paths = []Path{}
		}
		reg[cat] = paths
	}
	*r = reg
	return nil
}

// FieldOfView is one imaging position within a well. It never owns file
// contents, only the registry of canonical paths produced for it.
type FieldOfView struct {
	WellDir        Path
	WellLabel      string
	Coord          StageCoord
	Instance       int
	ContainsTarget bool
	ID             string
	Paths          PathRegistry
}

// NewFieldOfView derives a FOV from its grid entry. The identifier is
// deterministic: <well_label>P<instance>.
func NewFieldOfView(wellDir Path, wellLabel string, instance int, coord StageCoord) *FieldOfView {
	return &FieldOfView{
		WellDir:        wellDir,
		WellLabel:      wellLabel,
		Coord:          coord,
		Instance:       instance,
		ContainsTarget: true,
		ID:             fmt.Sprintf("%sP%d", wellLabel, instance),
		Paths:          PathRegistry{},
	}
}

// ImagesDir returns the well's images directory.
func (f *FieldOfView) ImagesDir() Path {
	return Path(filepath.Join(string(f.WellDir), f.WellLabel+"_"+ImagesFolder))
}

// MasksDir returns the well's masks directory.
func (f *FieldOfView) MasksDir() Path {
	return Path(filepath.Join(string(f.WellDir), f.WellLabel+"_"+MasksFolder))
}

// RegisterImage validates the category, derives the canonical path for the
// given instance number, appends it to the registry and returns it. It
// performs no I/O; the caller writes the actual file.
func (f *FieldOfView) RegisterImage(cat Category, instance int) (Path, error) {
	if err := CheckCategory(cat); err != nil {
		return "", err
	}
	if instance < 1 {
		return "", fmt.Errorf("instance must be positive, got %d", instance)
	}
	dir := f.MasksDir()
	if cat.IsImage() {
		dir = f.ImagesDir()
	}
	p := Path(filepath.Join(string(dir), ImageName(f.ID, cat, instance)))
	f.Paths.Append(cat, p)
	return p, nil
}

// RegisterExisting parses the category from an already-existing file's name
// and appends the path. Used by mask reconciliation to attach files the
// engine did not itself create.
func (f *FieldOfView) RegisterExisting(p Path) error {
	fovID, cat, _, err := ParseFilename(filepath.Base(string(p)))
	if err != nil {
		return err
	}
	if fovID != f.ID {
		return fmt.Errorf("file %s belongs to FOV %s, not %s", p, fovID, f.ID)
	}
	f.Paths.Append(cat, p)
	return nil
}

type fovFields struct {
	WellDir        Path         `json:"well_dir"`
	WellLabel      string       `json:"well_label"`
	Coord          StageCoord   `json:"coord"`
	Instance       int          `json:"instance"`
	ContainsTarget bool         `json:"contains_target"`
	ID             string       `json:"fov_id"`
	Paths          PathRegistry `json:"paths"`
}

// MarshalJSON wraps the FOV in its type-tagged envelope.
func (f *FieldOfView) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]fovFields{
		"__FieldOfView__": {
			WellDir:        f.WellDir,
			WellLabel:      f.WellLabel,
			Coord:          f.Coord,
			Instance:       f.Instance,
			ContainsTarget: f.ContainsTarget,
			ID:             f.ID,
			Paths:          f.Paths,
		},
	})
}

// UnmarshalJSON dispatches on the envelope tag and restores the registry's
// default-empty semantics so partially-populated FOVs reloaded mid-run merge
// correctly with later registrations.
func (f *FieldOfView) UnmarshalJSON(data []byte) error {
	var env struct {
		Inner *fovFields `json:"__FieldOfView__"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Inner == nil {
		return fmt.Errorf("field of view is missing the __FieldOfView__ tag")
	}
	f.WellDir = env.Inner.WellDir
	f.WellLabel = env.Inner.WellLabel
	f.Coord = env.Inner.Coord
	f.Instance = env.Inner.Instance
	f.ContainsTarget = env.Inner.ContainsTarget
	f.ID = env.Inner.ID
	f.Paths = env.Inner.Paths
	if f.Paths == nil {
		f.Paths = PathRegistry{}
	}
	return nil
}
