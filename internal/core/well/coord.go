package well

import (
	"encoding/json"
	"fmt"
)

// StageCoord is an absolute stage position for one field of view.
type StageCoord struct {
	X float64
	Y float64
	Z float64
}

type stageCoordFields struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// MarshalJSON wraps the coordinate in its type-tagged envelope.
func (c StageCoord) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]stageCoordFields{
		"__StageCoord__": {X: c.X, Y: c.Y, Z: c.Z},
	})
}

// UnmarshalJSON dispatches on the envelope tag, not on shape.
func (c *StageCoord) UnmarshalJSON(data []byte) error {
	var env struct {
		Inner *stageCoordFields `json:"__StageCoord__"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Inner == nil {
		return fmt.Errorf("stage coordinate is missing the __StageCoord__ tag")
	}
	c.X, c.Y, c.Z = env.Inner.X, env.Inner.Y, env.Inner.Z
	return nil
}

// Path is a file-system path that serializes with a type tag so the decoder
// never has to guess whether a string is a path.
type Path string

type pathFields struct {
	Path string `json:"path"`
}

// MarshalJSON wraps the path in its type-tagged envelope.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]pathFields{
		"__Path__": {Path: string(p)},
	})
}

// UnmarshalJSON dispatches on the envelope tag, not on shape.
func (p *Path) UnmarshalJSON(data []byte) error {
	var env struct {
		Inner *pathFields `json:"__Path__"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Inner == nil {
		return fmt.Errorf("path value is missing the __Path__ tag")
	}
	*p = Path(env.Inner.Path)
	return nil
}
