package core

import (
	"fmt"
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

const gravityG = 9.81

// LongitudinalAlgorithm converts a desired acceleration at the agent's
// current velocity into a gear, engine speed, and accelerator/brake pedal
// pair consistent with the vehicle's engine torque envelope.
type LongitudinalAlgorithm struct {
	params model.VehicleParameters

	velocity         float64
	accelerationWish float64

	gear                int
	engineSpeed         float64
	brakePedalPosition  float64
	acceleratorPedalPos float64
}

// NewLongitudinalAlgorithm constructs a calculation for one tick's velocity
// and wished acceleration.
func NewLongitudinalAlgorithm(params model.VehicleParameters, velocity, accelerationWish float64) *LongitudinalAlgorithm {
	return &LongitudinalAlgorithm{
		params:           params,
		velocity:         velocity,
		accelerationWish: accelerationWish,
		gear:             1,
	}
}

// Gear returns the gear chosen by CalculateGearAndEngineSpeed.
func (a *LongitudinalAlgorithm) Gear() int { return a.gear }

// EngineSpeed returns the engine speed chosen alongside the gear.
func (a *LongitudinalAlgorithm) EngineSpeed() float64 { return a.engineSpeed }

// BrakePedalPosition returns the computed brake pedal position in [0,1].
func (a *LongitudinalAlgorithm) BrakePedalPosition() float64 { return a.brakePedalPosition }

// AcceleratorPedalPosition returns the computed accelerator pedal position
// in [0,1].
func (a *LongitudinalAlgorithm) AcceleratorPedalPosition() float64 { return a.acceleratorPedalPos }

type gearCandidate struct {
	gear        int
	engineSpeed float64
	wheelAccel  float64
}

// CalculateGearAndEngineSpeed scans every gear for the one whose engine
// speed and resulting torque both lie within the engine's operating
// envelope. Candidates are tried in ascending engine speed and the last
// qualifying one before the first non-qualifying candidate is kept, so the
// smallest qualifying gear (highest engine speed) of that run wins.
// If none qualify it falls back to the gear with the smallest gap between
// wished and achievable acceleration, clamping the wish down to what that
// gear can deliver.
func (a *LongitudinalAlgorithm) CalculateGearAndEngineSpeed() error {
	numGears := len(a.params.GearRatios)
	if numGears == 0 {
		return fmt.Errorf("%w: vehicle has no gear ratios configured", schederr.ErrConfigurationError)
	}

	type candidateBySpeed struct {
		engineSpeed float64
		gear        int
	}

	bySpeed := make([]candidateBySpeed, 0, numGears)
	byDelta := make([]struct {
		delta float64
		c     gearCandidate
	}, 0, numGears)

	for gear := 1; gear <= numGears; gear++ {
		engineSpeed := a.engineSpeedByVelocity(a.velocity, gear)

		var limitWheelAccel, delta float64
		if a.accelerationWish >= 0 {
			mMax := a.engineTorqueMax(engineSpeed)
			limitWheelAccel = a.accFromEngineTorque(mMax, gear)
			if a.accelerationWish == 0 {
				delta = 0
			} else {
				delta = math.Abs(a.accelerationWish - limitWheelAccel)
			}
		} else {
			mMin := a.engineTorqueMin(engineSpeed)
			limitWheelAccel = a.accFromEngineTorque(mMin, gear)
			delta = math.Abs(a.accelerationWish - limitWheelAccel)
		}

		bySpeed = append(bySpeed, candidateBySpeed{engineSpeed: engineSpeed, gear: gear})
		byDelta = append(byDelta, struct {
			delta float64
			c     gearCandidate
		}{delta, gearCandidate{gear, engineSpeed, limitWheelAccel}})
	}

	sortCandidatesBySpeed(bySpeed)

	foundGear := false
	for _, cand := range bySpeed {
		if a.isWithinEngineLimits(cand.gear, cand.engineSpeed, a.accelerationWish) {
			a.gear = cand.gear
			a.engineSpeed = cand.engineSpeed
			foundGear = true
		} else if foundGear {
			return nil
		}
	}
	if foundGear {
		return nil
	}

	best := byDelta[0]
	for _, cand := range byDelta[1:] {
		if cand.delta < best.delta {
			best = cand
		}
	}
	a.gear = best.c.gear
	a.engineSpeed = best.c.engineSpeed
	a.accelerationWish = math.Min(a.accelerationWish, best.c.wheelAccel)
	return nil
}

func sortCandidatesBySpeed(c []struct {
	engineSpeed float64
	gear        int
}) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j].engineSpeed < c[j-1].engineSpeed; j-- {
			c[j], c[j-1] = c[j-1], c[j]
		}
	}
}

// CalculatePedalPositions derives the accelerator/brake split from the
// chosen gear and engine speed. Must be called after
// CalculateGearAndEngineSpeed.
func (a *LongitudinalAlgorithm) CalculatePedalPositions() {
	if a.accelerationWish < 0 {
		engineTorque := a.engineTorqueAtGear(a.gear, a.accelerationWish)
		dragMax := a.engineTorqueMin(a.engineSpeed)

		if engineTorque < dragMax {
			accDragMax := a.accFromEngineTorque(dragMax, a.gear)
			a.acceleratorPedalPos = 0.0
			a.brakePedalPosition = math.Min(-(a.accelerationWish-accDragMax)/gravityG, 1.0)
			return
		}
	}

	dragMax := a.engineTorqueMin(a.engineSpeed)
	torqueMax := a.engineTorqueMax(a.engineSpeed)
	wishTorque := a.engineTorqueAtGear(a.gear, a.accelerationWish)

	a.acceleratorPedalPos = math.Min((wishTorque-dragMax)/(torqueMax-dragMax), 1.0)
	a.brakePedalPosition = 0.0
}

func (a *LongitudinalAlgorithm) isWithinEngineLimits(gear int, engineSpeed, acceleration float64) bool {
	if !a.isEngineSpeedWithinLimits(engineSpeed) {
		return false
	}
	wishTorque := a.engineTorqueAtGear(gear, acceleration)
	return wishTorque <= a.engineTorqueMax(engineSpeed)
}

func (a *LongitudinalAlgorithm) isEngineSpeedWithinLimits(engineSpeed float64) bool {
	return engineSpeed >= a.params.EngineMinRpm && engineSpeed <= a.params.EngineMaxRpm
}

// engineTorqueAtGear inverts the drivetrain ratio to find the engine torque
// that produces the given wheel acceleration at the given gear.
func (a *LongitudinalAlgorithm) engineTorqueAtGear(gear int, acceleration float64) float64 {
	if acceleration == 0 || gear == 0 {
		return 0
	}
	wheelSetTorque := a.params.MassKg * a.params.TireRadiusM * acceleration
	return wheelSetTorque / (a.params.AxleRatio * a.params.GearRatios[gear-1])
}

// engineSpeedByVelocity is the engine rpm implied by the vehicle's
// longitudinal velocity at the given gear, ignoring tire slip (no dynamic
// wheel radius correction).
func (a *LongitudinalAlgorithm) engineSpeedByVelocity(velocity float64, gear int) float64 {
	return (velocity * a.params.AxleRatio * a.params.GearRatios[gear-1] * 60) / (a.params.TireRadiusM * 2.0 * math.Pi)
}

// engineTorqueMax is the engine's maximum available torque at the given
// speed, falling off linearly near the minimum and maximum rpm bounds.
func (a *LongitudinalAlgorithm) engineTorqueMax(engineSpeed float64) float64 {
	torqueMax := a.params.EngineTorqueLimit
	speed := engineSpeed

	lowerSection := engineSpeed < a.params.EngineMinRpm+1000
	beyondLower := engineSpeed < a.params.EngineMinRpm
	upperSection := engineSpeed > a.params.EngineMaxRpm-1000
	beyondUpper := engineSpeed > a.params.EngineMaxRpm

	switch {
	case lowerSection:
		if beyondLower {
			speed = a.params.EngineMinRpm
		}
		torqueMax = (1000-(speed-a.params.EngineMinRpm))*-0.1 + a.params.EngineTorqueLimit
	case upperSection:
		if beyondUpper {
			speed = a.params.EngineMaxRpm
		}
		torqueMax = (speed-a.params.EngineMaxRpm+1000)*-0.04 + a.params.EngineTorqueLimit
	}

	return torqueMax
}

// engineTorqueMin is the maximum engine-braking (drag) torque available at
// the given speed, a fixed fraction of the maximum drive torque.
func (a *LongitudinalAlgorithm) engineTorqueMin(engineSpeed float64) float64 {
	return a.engineTorqueMax(engineSpeed) * -0.1
}

// accFromEngineTorque converts an engine torque at a chosen gear into the
// wheel-based longitudinal acceleration it produces.
func (a *LongitudinalAlgorithm) accFromEngineTorque(engineTorque float64, gear int) float64 {
	wheelSetTorque := engineTorque * (a.params.AxleRatio * a.params.GearRatios[gear-1])
	wheelSetForce := wheelSetTorque / a.params.TireRadiusM
	return wheelSetForce / a.params.MassKg
}
