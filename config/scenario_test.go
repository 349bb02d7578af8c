package config

import (
	"strings"
	"testing"
)

func TestLoadScenarioParsesAgents(t *testing.T) {
	doc := `{
		"sceneryFile": "straight.xodr",
		"agents": [
			{"name": "Ego", "profileName": "EgoProfile", "roadId": "R1", "sectionIdx": 0, "laneIdx": -1, "s": 0, "velocityLon": 30, "isScenarioAgent": true}
		]
	}`
	scenario, err := LoadScenario(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scenario.Agents) != 1 || scenario.Agents[0].Name != "Ego" {
		t.Fatalf("unexpected agents: %+v", scenario.Agents)
	}
	if !scenario.Agents[0].IsScenarioAgent {
		t.Fatalf("expected ego to be flagged as a scenario agent")
	}
}

func TestLoadScenarioRejectsDuplicateAgentNames(t *testing.T) {
	doc := `{"agents":[
		{"name":"A","roadId":"R1"},
		{"name":"A","roadId":"R1"}
	]}`
	if _, err := LoadScenario(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected an error for duplicate agent names")
	}
}

func TestLoadScenarioRejectsMissingRoadID(t *testing.T) {
	doc := `{"agents":[{"name":"A"}]}`
	if _, err := LoadScenario(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected an error for an agent missing roadId")
	}
}
