package core

import (
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
)

const (
	tireFrictionRoll  = 0.01
	tireStiffnessRoll = 0.3
	tireVelocityLimit = 0.27 // ca. 1 km/h
)

// Tire is a static TMeasy-style tire force model: piecewise adhesion /
// semi-slide / slide regimes mapping combined slip magnitude to tangential
// force, with vertical-load rescaling of the peak and slide force.
type Tire struct {
	Radius float64

	forceZStatic    float64
	forcePeakStatic float64
	forceSatStatic  float64
	slipPeakStatic  float64
	slipSatStatic   float64

	forceZ    float64
	forcePeak float64
	forceSat  float64
	slipPeak  float64
	slipSat   float64
}

// NewTire constructs a tire from its reference vertical load, peak and
// slide forces, peak and slide slip, radius, and a friction-scale factor
// folding in road/tire surface friction.
func NewTire(refLoad, peakForce, slideForce, peakSlip, slideSlip, radius, frictionScale float64) *Tire {
	t := &Tire{
		Radius:          radius,
		forceZStatic:    refLoad,
		forcePeakStatic: peakForce * frictionScale,
		forceSatStatic:  slideForce * frictionScale,
		slipPeakStatic:  peakSlip * frictionScale,
		slipSatStatic:   slideSlip * frictionScale,
	}
	t.Rescale(refLoad)
	return t
}

// Rescale updates the tire's current vertical load and rescales its peak
// and slide force by the ratio to the static reference load, clamped to
// [0.1, 2.0].
func (t *Tire) Rescale(forceZ float64) {
	t.forceZ = forceZ
	scaling := model.Saturate(forceZ/t.forceZStatic, 0.1, 2.0)
	t.forcePeak = t.forcePeakStatic * scaling
	t.forceSat = t.forceSatStatic * scaling
	t.slipPeak = t.slipPeakStatic
	t.slipSat = t.slipSatStatic
}

// GetForce maps a signed combined slip to tangential force via the
// piecewise adhesion/semi-slide/slide curve.
func (t *Tire) GetForce(slip float64) float64 {
	if slip == 0 {
		return 0
	}
	slipAbs := math.Abs(slip)
	slipAbsNorm := model.Saturate(slipAbs, 0.0, 1.0) / t.slipPeak

	var force float64
	switch {
	case slipAbsNorm <= 1.0: // adhesion
		force = t.forcePeak * tireStiffnessRoll * slipAbsNorm /
			(1.0 + slipAbsNorm*(slipAbsNorm+tireStiffnessRoll-2.0))
	case slipAbs < t.slipSat: // semi-slide
		slipSlideForceNorm := t.slipSat / t.slipPeak
		slipNormRatio := (slipAbsNorm - 1.0) / (slipSlideForceNorm - 1.0)
		force = t.forcePeak * (1.0 - (1.0-t.forceSat/t.forcePeak)*slipNormRatio*slipNormRatio*(3.0-2.0*slipNormRatio))
	default: // slide
		force = t.forceSat
	}

	if slip > 0 {
		return force
	}
	return -force
}

// GetLongSlip inverts the adhesion-region force curve to find the
// longitudinal slip that produces the torque-implied tangential force,
// saturating to slipSat once the force exceeds the adhesion peak.
func (t *Tire) GetLongSlip(torque float64) float64 {
	force := torque / t.Radius
	forceAbs := math.Abs(force)

	if force == 0 {
		return 0
	}
	if forceAbs <= t.forcePeak {
		p2 := 0.5 * (tireStiffnessRoll*(1.0-t.forcePeak/forceAbs) - 2.0)
		slip := t.slipPeak * (-p2 - math.Sqrt(p2*p2-1.0))
		if force > 0 {
			return slip
		}
		return -slip
	}
	if force > 0 {
		return t.slipSat
	}
	return -t.slipSat
}

// CalcSlipY derives lateral slip from the longitudinal slip magnitude and
// the tire-frame velocity components, non-ISO sign convention matching the
// original engine.
func (t *Tire) CalcSlipY(slipX, vx, vy float64) float64 {
	if vy == 0 || (math.Abs(vx) < tireVelocityLimit && math.Abs(vy) < tireVelocityLimit) {
		return 0
	}
	if vx == 0 {
		return model.Saturate(-vy, -1.0, 1.0)
	}
	return model.Saturate((math.Abs(slipX)-1)*vy/math.Abs(vx), -1.0, 1.0)
}

// GetRollFriction returns the rolling-resistance force for the tire's
// longitudinal velocity, ramped linearly to zero below velocityLimit to
// avoid a force discontinuity at a standstill.
func (t *Tire) GetRollFriction(velTireX float64) float64 {
	force := t.forceZ * tireFrictionRoll
	if velTireX < 0 {
		force *= -1
	}
	if math.Abs(velTireX) < tireVelocityLimit {
		force *= velTireX / tireVelocityLimit
	}
	return force
}
