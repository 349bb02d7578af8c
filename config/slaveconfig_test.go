package config

import (
	"strings"
	"testing"
)

func TestLoadSlaveConfigParsesLibraries(t *testing.T) {
	doc := `{
		"libraries": {"eventDetector": "EventDetector_Default", "world": "World_OSI"},
		"scenarioPath": "scenario.json",
		"profilesCatalogPath": "profiles.json"
	}`
	cfg, err := LoadSlaveConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Libraries.EventDetector != "EventDetector_Default" {
		t.Fatalf("unexpected event detector library: %q", cfg.Libraries.EventDetector)
	}
	if cfg.ScenarioPath != "scenario.json" {
		t.Fatalf("unexpected scenario path: %q", cfg.ScenarioPath)
	}
}

func TestLoadSlaveConfigRejectsMissingScenarioPath(t *testing.T) {
	doc := `{"profilesCatalogPath": "profiles.json"}`
	if _, err := LoadSlaveConfig(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected an error for a missing scenarioPath")
	}
}

func TestLoadSlaveConfigRejectsMissingProfilesCatalogPath(t *testing.T) {
	doc := `{"scenarioPath": "scenario.json"}`
	if _, err := LoadSlaveConfig(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected an error for a missing profilesCatalogPath")
	}
}
