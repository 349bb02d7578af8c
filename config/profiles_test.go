package config

import (
	"strings"
	"testing"
)

func TestLoadProfilesCatalogParsesProfiles(t *testing.T) {
	doc := `{"profiles":[
		{"name":"EgoProfile","systemConfigFile":"ego.json","vehicleParams":{"massKg":1500,"lengthM":4.5,"widthM":1.8}}
	]}`
	catalog, err := LoadProfilesCatalog(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	profile, ok := catalog.Lookup("EgoProfile")
	if !ok {
		t.Fatalf("expected EgoProfile to be found")
	}
	if profile.VehicleParams.MassKg != 1500 {
		t.Fatalf("expected massKg=1500, got %f", profile.VehicleParams.MassKg)
	}
}

func TestLoadProfilesCatalogRejectsDuplicateNames(t *testing.T) {
	doc := `{"profiles":[{"name":"A"},{"name":"A"}]}`
	if _, err := LoadProfilesCatalog(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected an error for duplicate profile names")
	}
}

func TestLoadProfilesCatalogLookupMissingReturnsFalse(t *testing.T) {
	catalog, err := LoadProfilesCatalog(strings.NewReader(`{"profiles":[]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := catalog.Lookup("missing"); ok {
		t.Fatalf("expected lookup of a missing profile to report false")
	}
}
