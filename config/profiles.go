package config

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// AgentProfile maps a named profile to the system config it instantiates
// and the vehicle parameters it overlays onto that system's components.
type AgentProfile struct {
	Name             string
	SystemConfigFile string
	VehicleParams    model.VehicleParameters
}

// ProfilesCatalog maps profile names to AgentProfile, as referenced by a
// Scenario's agents.
type ProfilesCatalog struct {
	Profiles map[string]AgentProfile
}

// Lookup returns the named profile, or false if the catalog has none.
func (c *ProfilesCatalog) Lookup(name string) (AgentProfile, bool) {
	p, ok := c.Profiles[name]
	return p, ok
}

type profilesCatalogJSON struct {
	Profiles []agentProfileJSON `json:"profiles"`
}

type agentProfileJSON struct {
	Name             string             `json:"name"`
	SystemConfigFile string             `json:"systemConfigFile"`
	VehicleParams    vehicleParamsJSON  `json:"vehicleParams"`
}

type vehicleParamsJSON struct {
	MassKg            float64   `json:"massKg"`
	WheelbaseM        float64   `json:"wheelbaseM"`
	TrackWidthM       float64   `json:"trackWidthM"`
	CogToFrontAxleM   float64   `json:"cogToFrontAxleM"`
	HeightCogM        float64   `json:"heightCogM"`
	EnginePowerW      float64   `json:"enginePowerW"`
	EngineTorqueLimit float64   `json:"engineTorqueLimit"`
	EngineMinRpm      float64   `json:"engineMinRpm"`
	EngineMaxRpm      float64   `json:"engineMaxRpm"`
	AxleRatio         float64   `json:"axleRatio"`
	GearRatios        []float64 `json:"gearRatios"`
	BrakeTorqueLimit  float64   `json:"brakeTorqueLimit"`
	BrakeBalanceFrac  float64   `json:"brakeBalanceFrac"`
	TireRadiusM       float64   `json:"tireRadiusM"`
	TireForcePeakN    float64   `json:"tireForcePeakN"`
	TireForceSlideN   float64   `json:"tireForceSlideN"`
	TireSlipPeak      float64   `json:"tireSlipPeak"`
	TireSlipSlide     float64   `json:"tireSlipSlide"`
	FrictionScale     float64   `json:"frictionScale"`
	DragCoefficient   float64   `json:"dragCoefficient"`
	FrontalAreaM2     float64   `json:"frontalAreaM2"`
	AirDensity        float64   `json:"airDensity"`
	YawInertiaKgM2    float64   `json:"yawInertiaKgM2"`
	LengthM           float64   `json:"lengthM"`
	WidthM            float64   `json:"widthM"`
}

func (v vehicleParamsJSON) toDomain() model.VehicleParameters {
	return model.VehicleParameters{
		MassKg:            v.MassKg,
		WheelbaseM:        v.WheelbaseM,
		TrackWidthM:       v.TrackWidthM,
		CogToFrontAxleM:   v.CogToFrontAxleM,
		HeightCogM:        v.HeightCogM,
		EnginePowerW:      v.EnginePowerW,
		EngineTorqueLimit: v.EngineTorqueLimit,
		EngineMinRpm:      v.EngineMinRpm,
		EngineMaxRpm:      v.EngineMaxRpm,
		AxleRatio:         v.AxleRatio,
		GearRatios:        v.GearRatios,
		BrakeTorqueLimit:  v.BrakeTorqueLimit,
		BrakeBalanceFrac:  v.BrakeBalanceFrac,
		TireRadiusM:       v.TireRadiusM,
		TireForcePeakN:    v.TireForcePeakN,
		TireForceSlideN:   v.TireForceSlideN,
		TireSlipPeak:      v.TireSlipPeak,
		TireSlipSlide:     v.TireSlipSlide,
		FrictionScale:     v.FrictionScale,
		DragCoefficient:   v.DragCoefficient,
		FrontalAreaM2:     v.FrontalAreaM2,
		AirDensity:        v.AirDensity,
		YawInertiaKgM2:    v.YawInertiaKgM2,
		LengthM:           v.LengthM,
		WidthM:            v.WidthM,
	}
}

// LoadProfilesCatalog reads a profiles catalog from r. Profile names must
// be unique within the catalog.
func LoadProfilesCatalog(r io.Reader) (*ProfilesCatalog, error) {
	var payload profilesCatalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadProfilesCatalog: decode failed: %w", err)
	}

	catalog := &ProfilesCatalog{Profiles: make(map[string]AgentProfile, len(payload.Profiles))}
	for _, p := range payload.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("LoadProfilesCatalog: profile with empty name")
		}
		if _, exists := catalog.Profiles[p.Name]; exists {
			return nil, fmt.Errorf("LoadProfilesCatalog: duplicate profile name %q", p.Name)
		}
		catalog.Profiles[p.Name] = AgentProfile{
			Name:             p.Name,
			SystemConfigFile: p.SystemConfigFile,
			VehicleParams:    p.VehicleParams.toDomain(),
		}
	}
	return catalog, nil
}
