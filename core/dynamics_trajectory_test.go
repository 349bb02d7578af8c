package core

import (
	"context"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
)

func testTrajectory() *model.TrajectorySignal {
	return &model.TrajectorySignal{
		IsWorld: true,
		Coordinates: []model.TrajectoryPoint{
			{TimeMs: 0, X: 0, Y: 0, Yaw: 0},
			{TimeMs: 100, X: 1, Y: 0, Yaw: 0},
			{TimeMs: 200, X: 2, Y: 0, Yaw: 0},
		},
	}
}

func TestTrajectoryPlaybackFollowsWaypointsInOrder(t *testing.T) {
	agent := model.NewAgent(1, 0, model.VehicleParameters{})
	d := NewTrajectoryPlayback("dyn", 1, 100, 0, 0, agent, testTrajectory())

	d.Trigger(context.Background(), 0)
	if agent.State.X != 0 || agent.State.Y != 0 {
		t.Fatalf("expected first waypoint at origin, got (%f, %f)", agent.State.X, agent.State.Y)
	}

	d.Trigger(context.Background(), 100)
	if agent.State.X != 1 {
		t.Fatalf("expected second waypoint x=1, got %f", agent.State.X)
	}
	if agent.State.VelLon <= 0 {
		t.Fatalf("expected positive derived velocity at second waypoint, got %f", agent.State.VelLon)
	}
}

func TestTrajectoryPlaybackExtrapolatesPastEnd(t *testing.T) {
	agent := model.NewAgent(1, 0, model.VehicleParameters{})
	d := NewTrajectoryPlayback("dyn", 1, 100, 0, 0, agent, testTrajectory())

	for i := 0; i < 3; i++ {
		d.Trigger(context.Background(), i*100)
	}
	xAtEnd := agent.State.X

	if err := d.Trigger(context.Background(), 300); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.State.X <= xAtEnd {
		t.Fatalf("expected extrapolation to keep advancing x, got %f after %f", agent.State.X, xAtEnd)
	}
}

func TestTrajectoryPlaybackEmptyTrajectoryIsNoop(t *testing.T) {
	agent := model.NewAgent(1, 0, model.VehicleParameters{})
	d := NewTrajectoryPlayback("dyn", 1, 100, 0, 0, agent, &model.TrajectorySignal{IsWorld: true})

	if err := d.Trigger(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.State.X != 0 || agent.State.Y != 0 {
		t.Fatalf("expected agent state untouched for an empty trajectory")
	}
}
