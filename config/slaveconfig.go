package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// ExperimentLibraries names the pluggable collaborator libraries a slave
// invocation loads: event detector, manipulator, observation, spawn-point,
// stochastics, and world. Each is a plain library name/path; resolving it
// to a concrete EventDetector/Manipulator/Observer/SpawnPoint
// implementation is the slave entrypoint's job, not this package's.
type ExperimentLibraries struct {
	EventDetector string
	Manipulator   string
	Observation   string
	SpawnPoint    string
	Stochastics   string
	World         string
}

// SlaveConfig is the experiment configuration read at slave startup: which
// libraries to load and where the scenario and profiles catalog live.
type SlaveConfig struct {
	Libraries           ExperimentLibraries
	ScenarioPath        string
	ProfilesCatalogPath string
}

type slaveConfigJSON struct {
	Libraries           experimentLibrariesJSON `json:"libraries"`
	ScenarioPath        string                  `json:"scenarioPath"`
	ProfilesCatalogPath string                  `json:"profilesCatalogPath"`
}

type experimentLibrariesJSON struct {
	EventDetector string `json:"eventDetector"`
	Manipulator   string `json:"manipulator"`
	Observation   string `json:"observation"`
	SpawnPoint    string `json:"spawnPoint"`
	Stochastics   string `json:"stochastics"`
	World         string `json:"world"`
}

// LoadSlaveConfig reads the slave's experiment configuration from r.
// ScenarioPath and ProfilesCatalogPath are required; a missing value is a
// configuration error caught at startup rather than mid-run.
func LoadSlaveConfig(r io.Reader) (*SlaveConfig, error) {
	var payload slaveConfigJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadSlaveConfig: decode failed: %w", err)
	}
	if payload.ScenarioPath == "" {
		return nil, fmt.Errorf("LoadSlaveConfig: scenarioPath is required")
	}
	if payload.ProfilesCatalogPath == "" {
		return nil, fmt.Errorf("LoadSlaveConfig: profilesCatalogPath is required")
	}

	return &SlaveConfig{
		Libraries: ExperimentLibraries{
			EventDetector: payload.Libraries.EventDetector,
			Manipulator:   payload.Libraries.Manipulator,
			Observation:   payload.Libraries.Observation,
			SpawnPoint:    payload.Libraries.SpawnPoint,
			Stochastics:   payload.Libraries.Stochastics,
			World:         payload.Libraries.World,
		},
		ScenarioPath:        payload.ScenarioPath,
		ProfilesCatalogPath: payload.ProfilesCatalogPath,
	}, nil
}
