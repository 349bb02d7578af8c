package core

import (
	"context"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
)

func TestDynamicsTwoTrackAcceleratesAgentForward(t *testing.T) {
	params := referenceVehicleParams()
	params.GearRatios = []float64{3.5, 2.1, 1.4, 1.0, 0.8}
	params.AxleRatio = 4.1
	params.EngineMinRpm = 900
	params.EngineMaxRpm = 6000

	agent := model.NewAgent(1, 0, params)
	agent.State.VelLon = 5.0

	dyn := NewDynamicsTwoTrack("Dynamics", 0, 20, 0, 0, agent)

	if err := dyn.UpdateInput(portTwoTrackDesiredAcceleration, model.NewScalarSignal(2.0), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	startX := agent.State.X
	if err := dyn.Trigger(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.State.X <= startX {
		t.Fatalf("expected agent to advance in x, got %f", agent.State.X)
	}
	if agent.Box.CenterX != agent.State.X {
		t.Fatalf("expected bounding box to track agent position")
	}
}

func TestDynamicsTwoTrackRejectsUnknownInputPort(t *testing.T) {
	agent := model.NewAgent(1, 0, referenceVehicleParams())
	dyn := NewDynamicsTwoTrack("Dynamics", 0, 20, 0, 0, agent)
	if err := dyn.UpdateInput(model.PortID(99), model.NewScalarSignal(1.0), 0); err == nil {
		t.Fatalf("expected an error for an unknown input port")
	}
}

func TestDynamicsTwoTrackUpdateOutputIsNoop(t *testing.T) {
	agent := model.NewAgent(1, 0, referenceVehicleParams())
	dyn := NewDynamicsTwoTrack("Dynamics", 0, 20, 0, 0, agent)
	signal, err := dyn.UpdateOutput(0, 0)
	if err != nil || signal != nil {
		t.Fatalf("expected a nil signal and no error, got %v, %v", signal, err)
	}
}
