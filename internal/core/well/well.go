package well

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
)

// Directory and file naming, shared with the processing server contract.
const (
	WellFolder     = "Well"
	ConfigFolder   = "config"
	ImagesFolder   = "images"
	MasksFolder    = "masks"
	CSVFilename    = "cell_data.csv"
	ObjectFilename = "obj.json"
)

// Well is one physical sample location within one run. It owns an ordered
// collection of FieldOfView records derived 1:1 from the coordinate grid;
// after construction the collection never gains or loses members, only
// their flags and registrations mutate.
type Well struct {
	RunDir  Path
	RunID   string
	Label   string
	Grid    map[int]StageCoord
	WellDir Path
	FOVs    []*FieldOfView
}

// New derives a Well and its FOVs from the coordinate grid. It is pure: no
// directories are created or reset here (the well store does that for fresh
// wells and explicitly skips it when resuming).
func New(runDir Path, runID, label string, grid map[int]StageCoord) *Well {
	w := &Well{
		RunDir:  runDir,
		RunID:   runID,
		Label:   label,
		Grid:    grid,
		WellDir: Path(filepath.Join(string(runDir), label+"_"+WellFolder)),
	}
	instances := make([]int, 0, len(grid))
	for i := range grid {
		instances = append(instances, i)
	}
	sort.Ints(instances)
	for _, i := range instances {
		w.FOVs = append(w.FOVs, NewFieldOfView(w.WellDir, label, i, grid[i]))
	}
	return w
}

// WellID is the identifier the processing server scopes its pending counter
// by: <run_id>_<well_label>.
func (w *Well) WellID() string {
	return w.RunID + "_" + w.Label
}

// ConfigDir returns the config directory path.
func (w *Well) ConfigDir() Path {
	return Path(filepath.Join(string(w.WellDir), w.Label+"_"+ConfigFolder))
}

// ImagesDir returns the images directory path.
func (w *Well) ImagesDir() Path {
	return Path(filepath.Join(string(w.WellDir), w.Label+"_"+ImagesFolder))
}

// MasksDir returns the masks directory path.
func (w *Well) MasksDir() Path {
	return Path(filepath.Join(string(w.WellDir), w.Label+"_"+MasksFolder))
}

// CSVPath returns the path of the tabular cell-measurement file.
func (w *Well) CSVPath() Path {
	return Path(filepath.Join(string(w.WellDir), w.Label+"_"+CSVFilename))
}

// ObjectPath returns the path the serialized well graph is persisted at.
func (w *Well) ObjectPath() Path {
	return Path(filepath.Join(string(w.ConfigDir()), w.Label+"_"+ObjectFilename))
}

// EligibleFOVs returns the FOVs still flagged as containing a target, in
// grid order.
func (w *Well) EligibleFOVs() []*FieldOfView {
	var out []*FieldOfView
	for _, f := range w.FOVs {
		if f.ContainsTarget {
			out = append(out, f)
		}
	}
	return out
}

// FOVByID returns the FOV with the given identifier, or nil.
func (w *Well) FOVByID(id string) *FieldOfView {
	for _, f := range w.FOVs {
		if f.ID == id {
			return f
		}
	}
	return nil
}

type wellFields struct {
	RunDir  Path               `json:"run_dir"`
	RunID   string             `json:"run_id"`
	Label   string             `json:"well_label"`
	Grid    map[int]StageCoord `json:"well_grid"`
	WellDir Path               `json:"well_dir"`
	FOVs    []*FieldOfView     `json:"fovs"`
}

// MarshalJSON wraps the well in its type-tagged envelope.
func (w *Well) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]wellFields{
		"__Well__": {
			RunDir:  w.RunDir,
			RunID:   w.RunID,
			Label:   w.Label,
			Grid:    w.Grid,
			WellDir: w.WellDir,
			FOVs:    w.FOVs,
		},
	})
}

// UnmarshalJSON dispatches on the envelope tag.
func (w *Well) UnmarshalJSON(data []byte) error {
	var env struct {
		Inner *wellFields `json:"__Well__"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Inner == nil {
		return fmt.Errorf("well is missing the __Well__ tag")
	}
	w.RunDir = env.Inner.RunDir
	w.RunID = env.Inner.RunID
	w.Label = env.Inner.Label
	w.Grid = env.Inner.Grid
	w.WellDir = env.Inner.WellDir
	w.FOVs = env.Inner.FOVs
	return nil
}

// Encode serializes the whole well graph with type-tagged envelopes. The
// round trip through Decode is lossless.
func Encode(w *Well) ([]byte, error) {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode well %s: %w", w.Label, err)
	}
	return data, nil
}

// Decode restores a well graph persisted by Encode. It only populates
// fields and never touches the filesystem, so it is safe to call on a
// mid-run snapshot.
func Decode(data []byte) (*Well, error) {
	w := &Well{}
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("failed to decode well: %w", err)
	}
	return w, nil
}
