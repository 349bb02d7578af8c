// Package config loads the JSON configuration files a slave invocation
// reads at startup: trajectory files, scenarios, profiles catalogs, and
// the slave/master's own framework configuration.
package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// trajectoryFileJSON is the on-disk shape of a trajectory file: a
// time-ordered list of coordinates, each carrying either road or world
// coordinates but never both.
type trajectoryFileJSON struct {
	Coordinates []trajectoryCoordinateJSON `json:"coordinates"`
}

type trajectoryCoordinateJSON struct {
	TimeMs *int `json:"time"`

	S   *float64 `json:"s,omitempty"`
	T   *float64 `json:"t,omitempty"`
	Hdg *float64 `json:"hdg,omitempty"`

	X   *float64 `json:"x,omitempty"`
	Y   *float64 `json:"y,omitempty"`
	Yaw *float64 `json:"yaw,omitempty"`
}

func (c trajectoryCoordinateJSON) isWorld() bool {
	return c.X != nil || c.Y != nil || c.Yaw != nil
}

func (c trajectoryCoordinateJSON) isRoad() bool {
	return c.S != nil || c.T != nil || c.Hdg != nil
}

// LoadTrajectory reads a trajectory file from r and validates it against
// the bit-exact compatibility rules: a missing time attribute is fatal, a
// coordinate may not mix road and world fields, and no two coordinates may
// share a time value. The trajectory's coordinate system (IsWorld) is
// fixed by its first coordinate and every later coordinate must match it.
func LoadTrajectory(r io.Reader) (*model.TrajectorySignal, error) {
	var payload trajectoryFileJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadTrajectory: decode failed: %w", err)
	}
	if len(payload.Coordinates) == 0 {
		return &model.TrajectorySignal{}, nil
	}

	result := &model.TrajectorySignal{
		IsWorld:     payload.Coordinates[0].isWorld(),
		Coordinates: make([]model.TrajectoryPoint, 0, len(payload.Coordinates)),
	}
	seenTimes := make(map[int]bool, len(payload.Coordinates))

	for i, c := range payload.Coordinates {
		if c.TimeMs == nil {
			return nil, fmt.Errorf("LoadTrajectory: coordinate %d is missing a time attribute", i)
		}
		if c.isWorld() && c.isRoad() {
			return nil, fmt.Errorf("LoadTrajectory: coordinate %d mixes road and world coordinate systems", i)
		}
		if c.isWorld() != result.IsWorld {
			return nil, fmt.Errorf("LoadTrajectory: coordinate %d switches coordinate system mid-trajectory", i)
		}
		if seenTimes[*c.TimeMs] {
			return nil, fmt.Errorf("LoadTrajectory: duplicate time %dms at coordinate %d", *c.TimeMs, i)
		}
		seenTimes[*c.TimeMs] = true

		point := model.TrajectoryPoint{TimeMs: *c.TimeMs}
		if result.IsWorld {
			point.X, point.Y, point.Yaw = floatOrZero(c.X), floatOrZero(c.Y), floatOrZero(c.Yaw)
		} else {
			point.S, point.T, point.Hdg = floatOrZero(c.S), floatOrZero(c.T), floatOrZero(c.Hdg)
		}
		result.Coordinates = append(result.Coordinates, point)
	}

	return result, nil
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
