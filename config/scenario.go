package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// ScenarioAgent is one agent placement the scenario defines: an ego or
// scenario-named agent with its starting lane position and velocity, bound
// to a named profile from the profiles catalog.
type ScenarioAgent struct {
	Name            string
	ProfileName     string
	Lane            model.LaneRef
	S               float64
	VelocityLon     float64
	IsScenarioAgent bool
	TrajectoryFile  string // empty if the agent is driven by its profile's components
}

// Scenario is the loaded scenario document: references to the vehicle and
// pedestrian catalogs and the scenery it places agents on, plus every ego
// and scenario agent's initial placement.
type Scenario struct {
	SceneryFile           string
	VehicleCatalogFile    string
	PedestrianCatalogFile string
	Agents                []ScenarioAgent
}

type scenarioJSON struct {
	SceneryFile           string              `json:"sceneryFile"`
	VehicleCatalogFile    string              `json:"vehicleCatalogFile"`
	PedestrianCatalogFile string              `json:"pedestrianCatalogFile"`
	Agents                []scenarioAgentJSON `json:"agents"`
}

type scenarioAgentJSON struct {
	Name            string  `json:"name"`
	ProfileName     string  `json:"profileName"`
	RoadID          string  `json:"roadId"`
	SectionIdx      int     `json:"sectionIdx"`
	LaneIdx         int     `json:"laneIdx"`
	S               float64 `json:"s"`
	VelocityLon     float64 `json:"velocityLon"`
	IsScenarioAgent bool    `json:"isScenarioAgent"`
	TrajectoryFile  string  `json:"trajectoryFile,omitempty"`
}

// LoadScenario reads a scenario document from r. Agent names must be
// unique; an empty roadId is rejected since every agent must reference a
// concrete lane in the scenery.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	result := &Scenario{
		SceneryFile:           payload.SceneryFile,
		VehicleCatalogFile:    payload.VehicleCatalogFile,
		PedestrianCatalogFile: payload.PedestrianCatalogFile,
		Agents:                make([]ScenarioAgent, 0, len(payload.Agents)),
	}

	seenNames := make(map[string]bool, len(payload.Agents))
	for _, a := range payload.Agents {
		if a.Name == "" {
			return nil, fmt.Errorf("LoadScenario: agent with empty name")
		}
		if seenNames[a.Name] {
			return nil, fmt.Errorf("LoadScenario: duplicate agent name %q", a.Name)
		}
		seenNames[a.Name] = true

		if a.RoadID == "" {
			return nil, fmt.Errorf("LoadScenario: agent %q has no roadId", a.Name)
		}

		result.Agents = append(result.Agents, ScenarioAgent{
			Name:            a.Name,
			ProfileName:     a.ProfileName,
			Lane:            model.LaneRef{RoadID: a.RoadID, SectionIdx: a.SectionIdx, LaneIdx: a.LaneIdx},
			S:               a.S,
			VelocityLon:     a.VelocityLon,
			IsScenarioAgent: a.IsScenarioAgent,
			TrajectoryFile:  a.TrajectoryFile,
		})
	}

	return result, nil
}
