package core

import (
	"context"
	"errors"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

func newTestCruiseControl() *CruiseControlByDistance {
	return NewCruiseControlByDistance("cc", 1, 100, 0, 0, 20.0, 0.3)
}

func TestCruiseControlAcceleratesBelowDesiredVelocityWithClearRoad(t *testing.T) {
	c := newTestCruiseControl()
	c.UpdateInput(portDistanceToLeader, model.NewScalarSignal(1000), 100)
	c.UpdateInput(portEgoVelocity, model.NewScalarSignal(10), 100)

	if err := c.Trigger(context.Background(), 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.desiredAcceleration <= 0 {
		t.Fatalf("expected positive acceleration below desired velocity with a clear road, got %f", c.desiredAcceleration)
	}
	if c.desiredAcceleration > cruiseControlAccelMax {
		t.Fatalf("expected acceleration clamped to %f, got %f", cruiseControlAccelMax, c.desiredAcceleration)
	}
}

func TestCruiseControlCoastsAboveDesiredVelocityWithClearRoad(t *testing.T) {
	c := newTestCruiseControl()
	c.UpdateInput(portDistanceToLeader, model.NewScalarSignal(1000), 100)
	c.UpdateInput(portEgoVelocity, model.NewScalarSignal(30), 100)

	c.Trigger(context.Background(), 100)

	if c.desiredAcceleration >= 0 {
		t.Fatalf("expected coasting (negative) acceleration above desired velocity, got %f", c.desiredAcceleration)
	}
	if c.desiredAcceleration != c.coastingAcceleration {
		t.Fatalf("expected desired acceleration to equal coasting acceleration, got %f vs %f", c.desiredAcceleration, c.coastingAcceleration)
	}
}

func TestCruiseControlBrakesWhenGapBelowMinimum(t *testing.T) {
	c := newTestCruiseControl()
	c.UpdateInput(portDistanceToLeader, model.NewScalarSignal(1.0), 100)
	c.UpdateInput(portEgoVelocity, model.NewScalarSignal(20), 100)

	c.Trigger(context.Background(), 100)

	if c.desiredAcceleration >= 0 {
		t.Fatalf("expected a braking (negative) acceleration with a tight gap, got %f", c.desiredAcceleration)
	}
	if c.desiredAcceleration < cruiseControlDecelMin {
		t.Fatalf("expected acceleration clamped at %f, got %f", cruiseControlDecelMin, c.desiredAcceleration)
	}
}

func TestCruiseControlSkipsComputationAtTimeZero(t *testing.T) {
	c := newTestCruiseControl()
	c.UpdateInput(portDistanceToLeader, model.NewScalarSignal(1.0), 0)
	c.UpdateInput(portEgoVelocity, model.NewScalarSignal(20), 0)

	c.Trigger(context.Background(), 0)

	if c.desiredAcceleration != 0 {
		t.Fatalf("expected zero acceleration at t=0, got %f", c.desiredAcceleration)
	}
}

func TestCruiseControlRejectsWrongSignalKind(t *testing.T) {
	c := newTestCruiseControl()
	err := c.UpdateInput(portDistanceToLeader, model.NewPedalPositionSignal(model.PedalPosition{}), 0)
	if !errors.Is(err, schederr.ErrInvalidSignalType) {
		t.Fatalf("expected ErrInvalidSignalType, got %v", err)
	}
}

func TestCruiseControlRejectsUnknownPort(t *testing.T) {
	c := newTestCruiseControl()
	err := c.UpdateInput(5, model.NewScalarSignal(1), 0)
	if !errors.Is(err, schederr.ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink for unknown input port, got %v", err)
	}

	_, err = c.UpdateOutput(5, 0)
	if !errors.Is(err, schederr.ErrInvalidLink) {
		t.Fatalf("expected ErrInvalidLink for unknown output port, got %v", err)
	}
}

func TestCruiseControlOutputsBothPorts(t *testing.T) {
	c := newTestCruiseControl()
	c.UpdateInput(portDistanceToLeader, model.NewScalarSignal(1000), 100)
	c.UpdateInput(portEgoVelocity, model.NewScalarSignal(10), 100)
	c.Trigger(context.Background(), 100)

	accel, err := c.UpdateOutput(portDesiredAcceleration, 100)
	if err != nil || accel.Scalar != c.desiredAcceleration {
		t.Fatalf("expected desired acceleration output to match, err=%v", err)
	}
	coast, err := c.UpdateOutput(portCoastingAcceleration, 100)
	if err != nil || coast.Scalar != c.coastingAcceleration {
		t.Fatalf("expected coasting acceleration output to match, err=%v", err)
	}
}
