package core

import (
	"math"
	"testing"

	"github.com/hlrs-vis/openpass-sub007/model"
)

func referenceVehicleParams() model.VehicleParameters {
	return model.VehicleParameters{
		MassKg:            1500,
		WheelbaseM:        2.7,
		TrackWidthM:       1.6,
		CogToFrontAxleM:   1.1,
		EnginePowerW:      90000,
		EngineTorqueLimit: 300,
		BrakeTorqueLimit:  4000,
		BrakeBalanceFrac:  0.67,
		TireRadiusM:       0.3,
		TireForcePeakN:    4000,
		TireForceSlideN:   2500,
		TireSlipPeak:      0.1,
		TireSlipSlide:     0.5,
		FrictionScale:     1.0,
		DragCoefficient:   0.34,
		FrontalAreaM2:     1.94,
		AirDensity:        1.29,
		YawInertiaKgM2:    2500,
	}
}

func staticVerticalLoad(params model.VehicleParameters) [4]float64 {
	frontX := params.WheelbaseM/2.0 - params.CogToFrontAxleM
	front := params.MassKg * gravityAccel / 2.0 * frontX / params.WheelbaseM
	rear := params.MassKg * gravityAccel / 2.0 * (params.WheelbaseM - frontX) / params.WheelbaseM
	return [4]float64{front, front, rear, rear}
}

func TestVehicleDynamicsAcceleratesFromStandstill(t *testing.T) {
	params := referenceVehicleParams()
	v := NewVehicleDynamics(params, 0)
	v.SetVelocity(model.Vector2d{}, 0)

	v.DriveTrain(1.0, 0.0, [4]float64{})
	v.ForceLocal(0.02, 0.0, staticVerticalLoad(params))
	v.ForceGlobal()

	forceTotal, _ := v.ForceTotal()
	if forceTotal.X <= 0 {
		t.Fatalf("expected positive longitudinal force under full throttle from rest, got %f", forceTotal.X)
	}
}

func TestVehicleDynamicsBrakingOpposesMotion(t *testing.T) {
	params := referenceVehicleParams()
	v := NewVehicleDynamics(params, 20.0)
	v.SetVelocity(model.Vector2d{X: 20.0, Y: 0}, 0)

	v.DriveTrain(0.0, 1.0, [4]float64{})
	v.ForceLocal(0.02, 0.0, staticVerticalLoad(params))
	v.ForceGlobal()

	forceTotal, _ := v.ForceTotal()
	if forceTotal.X >= 0 {
		t.Fatalf("expected braking to decelerate forward motion (negative force), got %f", forceTotal.X)
	}
}

func TestIntegrateTranslationZeroCrossingClampsVelocity(t *testing.T) {
	state := IntegrationState{
		Velocity: model.Vector2d{X: 0.5, Y: 0},
		Accel:    model.Vector2d{X: -100, Y: 0},
	}
	next := IntegrateTranslation(state, model.Vector2d{X: -100, Y: 0}, 1000, 0.02)

	if next.Velocity.X != 0 {
		t.Fatalf("expected velocity clamped to zero at sign crossing, got %f", next.Velocity.X)
	}
	if next.Accel.X != 0 {
		t.Fatalf("expected acceleration clamped to zero at sign crossing, got %f", next.Accel.X)
	}
}

func TestIntegrateTranslationAdvancesPositionAtPreviousVelocity(t *testing.T) {
	state := IntegrationState{
		Position: model.Vector2d{X: 0, Y: 0},
		Velocity: model.Vector2d{X: 10, Y: 0},
		Yaw:      0,
	}
	next := IntegrateTranslation(state, model.Vector2d{}, 1500, 0.1)
	if math.Abs(next.Position.X-1.0) > 1e-9 {
		t.Fatalf("expected position to advance by v*dt = 1.0, got %f", next.Position.X)
	}
}

func TestIntegrateRotationZeroCrossingClampsYawRate(t *testing.T) {
	state := IntegrationState{YawVel: 0.1, YawAccel: -20}
	next := IntegrateRotation(state, -20, 2500, 0.02)
	if next.YawVel != 0 {
		t.Fatalf("expected yaw velocity clamped to zero at sign crossing, got %f", next.YawVel)
	}
	if next.YawAccel != 0 {
		t.Fatalf("expected yaw acceleration clamped to zero at sign crossing, got %f", next.YawAccel)
	}
}

func TestIntegrateRotationAdvancesYawAtPreviousRate(t *testing.T) {
	state := IntegrationState{Yaw: 0, YawVel: 1.0}
	next := IntegrateRotation(state, 0, 2500, 0.1)
	if math.Abs(next.Yaw-0.1) > 1e-9 {
		t.Fatalf("expected yaw to advance by yawVel*dt = 0.1, got %f", next.Yaw)
	}
}
