package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/example/gemscreen/internal/core/well"
)

// PlateMap maps well labels to their coordinate grids.
type PlateMap struct {
	Wells map[string]map[int]well.StageCoord `yaml:"wells"`
}

type plateCoord struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type plateMapFile struct {
	Wells map[string]map[int]plateCoord `yaml:"wells"`
}

// LoadPlateMap parses a plate-map YAML file:
//
//	wells:
//	  A1:
//	    1: {x: 0, y: 0, z: 5.0}
//	    2: {x: 250, y: 0, z: 5.0}
//
// Every well needs at least one field of view with a positive instance
// number.
func LoadPlateMap(path string) (*PlateMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plate map %s: %w", path, err)
	}

	var file plateMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plate map %s: %w", path, err)
	}
	if len(file.Wells) == 0 {
		return nil, fmt.Errorf("plate map %s defines no wells", path)
	}

	pm := &PlateMap{Wells: make(map[string]map[int]well.StageCoord, len(file.Wells))}
	for label, grid := range file.Wells {
		if len(grid) == 0 {
			return nil, fmt.Errorf("plate map %s: well %s has no fields of view", path, label)
		}
		coords := make(map[int]well.StageCoord, len(grid))
		for instance, c := range grid {
			if instance < 1 {
				return nil, fmt.Errorf("plate map %s: well %s has non-positive instance %d", path, label, instance)
			}
			coords[instance] = well.StageCoord{X: c.X, Y: c.Y, Z: c.Z}
		}
		pm.Wells[label] = coords
	}
	return pm, nil
}

// Labels returns the well labels in sorted order.
func (pm *PlateMap) Labels() []string {
	labels := make([]string, 0, len(pm.Wells))
	for label := range pm.Wells {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
