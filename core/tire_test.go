package core

import (
	"math"
	"testing"
)

func referenceTire() *Tire {
	return NewTire(100.0, 100.0, 50.0, 0.1, 0.5, 1.0, 1.0)
}

func TestTireGetForceZeroSlipIsZeroForce(t *testing.T) {
	tire := referenceTire()
	if f := tire.GetForce(0); f != 0 {
		t.Fatalf("expected zero force at zero slip, got %f", f)
	}
}

func TestTireGetForceIsOddSymmetric(t *testing.T) {
	tire := referenceTire()
	for _, slip := range []float64{0.02, 0.1, 0.3, 0.8} {
		pos := tire.GetForce(slip)
		neg := tire.GetForce(-slip)
		if math.Abs(pos+neg) > 1e-9 {
			t.Fatalf("expected GetForce(%f) == -GetForce(-%f), got %f vs %f", slip, slip, pos, neg)
		}
	}
}

func TestTireGetForceSlideRegimeSaturatesAtSlideForce(t *testing.T) {
	tire := referenceTire()
	f := tire.GetForce(0.9)
	if math.Abs(f-tire.forceSat) > 1e-9 {
		t.Fatalf("expected slide-regime force to saturate at forceSat=%f, got %f", tire.forceSat, f)
	}
}

func TestTireGetForcePeaksNearAdhesionLimit(t *testing.T) {
	tire := referenceTire()
	atPeak := tire.GetForce(tire.slipPeak)
	belowPeak := tire.GetForce(tire.slipPeak * 0.5)
	if atPeak <= belowPeak {
		t.Fatalf("expected force at slip peak (%f) to exceed force at half peak slip (%f)", atPeak, belowPeak)
	}
}

func TestTireGetLongSlipRoundTripsThroughGetForceInAdhesionRegion(t *testing.T) {
	tire := referenceTire()
	wantForce := tire.forcePeak * 0.6
	slip := tire.GetLongSlip(wantForce * tire.Radius)
	gotForce := tire.GetForce(slip)
	if math.Abs(gotForce-wantForce) > 1e-6 {
		t.Fatalf("expected GetForce(GetLongSlip(F*r)) ~= F, wanted %f got %f", wantForce, gotForce)
	}
}

func TestTireGetLongSlipZeroTorqueIsZeroSlip(t *testing.T) {
	tire := referenceTire()
	if slip := tire.GetLongSlip(0); slip != 0 {
		t.Fatalf("expected zero slip at zero torque, got %f", slip)
	}
}

func TestTireGetLongSlipSaturatesBeyondPeakForce(t *testing.T) {
	tire := referenceTire()
	slip := tire.GetLongSlip(tire.forcePeak * 10 * tire.Radius)
	if math.Abs(slip-tire.slipSat) > 1e-9 {
		t.Fatalf("expected slip to saturate at slipSat=%f, got %f", tire.slipSat, slip)
	}
}

func TestTireCalcSlipYBelowVelocityLimitIsZero(t *testing.T) {
	tire := referenceTire()
	if s := tire.CalcSlipY(0.1, 0.1, 0.1); s != 0 {
		t.Fatalf("expected zero lateral slip below velocityLimit, got %f", s)
	}
}

func TestTireCalcSlipYIsBoundedToUnitRange(t *testing.T) {
	tire := referenceTire()
	s := tire.CalcSlipY(0.5, 1.0, 50.0)
	if s < -1.0 || s > 1.0 {
		t.Fatalf("expected lateral slip saturated to [-1,1], got %f", s)
	}
}

func TestTireGetRollFrictionOpposesMotion(t *testing.T) {
	tire := referenceTire()
	forward := tire.GetRollFriction(10.0)
	backward := tire.GetRollFriction(-10.0)
	if forward <= 0 || backward >= 0 {
		t.Fatalf("expected rolling friction to oppose direction of travel, got forward=%f backward=%f", forward, backward)
	}
}

func TestTireGetRollFrictionRampsToZeroAtStandstill(t *testing.T) {
	tire := referenceTire()
	if f := tire.GetRollFriction(0); f != 0 {
		t.Fatalf("expected zero rolling friction at a standstill, got %f", f)
	}
}

func TestTireRescaleClampsLoadRatio(t *testing.T) {
	tire := referenceTire()
	tire.Rescale(tire.forceZStatic * 100)
	if tire.forcePeak != tire.forcePeakStatic*2.0 {
		t.Fatalf("expected peak force scaling clamped at 2.0x, got ratio %f", tire.forcePeak/tire.forcePeakStatic)
	}

	tire.Rescale(tire.forceZStatic * 0.001)
	if tire.forcePeak != tire.forcePeakStatic*0.1 {
		t.Fatalf("expected peak force scaling clamped at 0.1x, got ratio %f", tire.forcePeak/tire.forcePeakStatic)
	}
}
