package core

import "github.com/hlrs-vis/openpass-sub007/model"

// FixedBlueprintSpawnPoint is the simplest SpawnPoint: it offers exactly
// one pre-built blueprint at a fixed timestamp and reports nothing due
// ever after. It is how scenario agents (placed once at a known time by a
// scenario file) and static traffic are wired into SpawnControl, which
// otherwise only knows how to talk to the SpawnPoint interface.
type FixedBlueprintSpawnPoint struct {
	at        int
	blueprint model.AgentBlueprint
	offered   bool
}

// NewFixedBlueprintSpawnPoint constructs a spawn point that offers
// blueprint once, at timestamp at.
func NewFixedBlueprintSpawnPoint(at int, blueprint model.AgentBlueprint) *FixedBlueprintSpawnPoint {
	return &FixedBlueprintSpawnPoint{at: at, blueprint: blueprint}
}

// NextAgentBlueprint returns the held blueprint the first time timestamp
// reaches its scheduled time, and nothing afterward.
func (s *FixedBlueprintSpawnPoint) NextAgentBlueprint(timestamp int) (*model.AgentBlueprint, bool) {
	if s.offered || timestamp < s.at {
		return nil, false
	}
	s.offered = true
	blueprint := s.blueprint
	return &blueprint, true
}
