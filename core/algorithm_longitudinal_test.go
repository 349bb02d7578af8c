package core

import (
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
)

func referenceLongitudinalParams() model.VehicleParameters {
	return model.VehicleParameters{
		MassKg:            1500,
		TireRadiusM:       0.3,
		AxleRatio:         4.1,
		GearRatios:        []float64{3.5, 2.1, 1.4, 1.0, 0.8},
		EngineTorqueLimit: 300,
		EngineMinRpm:      800,
		EngineMaxRpm:      6000,
	}
}

func TestLongitudinalAlgorithmPositiveWishPicksValidGear(t *testing.T) {
	params := referenceLongitudinalParams()
	algo := NewLongitudinalAlgorithm(params, 15.0, 1.0)

	if err := algo.CalculateGearAndEngineSpeed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if algo.Gear() < 1 || algo.Gear() > len(params.GearRatios) {
		t.Fatalf("expected a valid gear in [1,%d], got %d", len(params.GearRatios), algo.Gear())
	}
	if algo.EngineSpeed() < params.EngineMinRpm-1e-6 {
		t.Fatalf("expected engine speed >= minimum rpm, got %f", algo.EngineSpeed())
	}
}

func TestLongitudinalAlgorithmPedalsAreExclusive(t *testing.T) {
	params := referenceLongitudinalParams()
	algo := NewLongitudinalAlgorithm(params, 15.0, 1.0)
	if err := algo.CalculateGearAndEngineSpeed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	algo.CalculatePedalPositions()

	if algo.AcceleratorPedalPosition() > 0 && algo.BrakePedalPosition() > 0 {
		t.Fatalf("expected accelerator and brake pedals to be mutually exclusive, got accel=%f brake=%f",
			algo.AcceleratorPedalPosition(), algo.BrakePedalPosition())
	}
}

func TestLongitudinalAlgorithmNegativeWishUsesBrakeWhenDragInsufficient(t *testing.T) {
	params := referenceLongitudinalParams()
	algo := NewLongitudinalAlgorithm(params, 30.0, -8.0)
	if err := algo.CalculateGearAndEngineSpeed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	algo.CalculatePedalPositions()

	if algo.BrakePedalPosition() <= 0 {
		t.Fatalf("expected a strong deceleration wish to require braking, got brake=%f", algo.BrakePedalPosition())
	}
	if algo.AcceleratorPedalPosition() != 0 {
		t.Fatalf("expected zero accelerator pedal while braking, got %f", algo.AcceleratorPedalPosition())
	}
}

func TestLongitudinalAlgorithmPedalPositionsStayBounded(t *testing.T) {
	params := referenceLongitudinalParams()
	for _, wish := range []float64{-10, -2, -0.5, 0, 0.5, 2, 10} {
		algo := NewLongitudinalAlgorithm(params, 20.0, wish)
		if err := algo.CalculateGearAndEngineSpeed(); err != nil {
			t.Fatalf("unexpected error for wish=%f: %v", wish, err)
		}
		algo.CalculatePedalPositions()
		if algo.AcceleratorPedalPosition() < 0 || algo.AcceleratorPedalPosition() > 1 {
			t.Fatalf("accelerator pedal out of bounds for wish=%f: %f", wish, algo.AcceleratorPedalPosition())
		}
		if algo.BrakePedalPosition() < 0 || algo.BrakePedalPosition() > 1 {
			t.Fatalf("brake pedal out of bounds for wish=%f: %f", wish, algo.BrakePedalPosition())
		}
	}
}

func TestLongitudinalAlgorithmNoGearsIsConfigurationError(t *testing.T) {
	params := referenceLongitudinalParams()
	params.GearRatios = nil
	algo := NewLongitudinalAlgorithm(params, 10.0, 1.0)
	if err := algo.CalculateGearAndEngineSpeed(); err == nil {
		t.Fatalf("expected an error when no gear ratios are configured")
	}
}
