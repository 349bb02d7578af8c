package core

import (
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
)

const numWheels = 4

// Wheel index order: front-left, front-right, rear-left, rear-right.
const (
	wheelFrontLeft = iota
	wheelFrontRight
	wheelRearLeft
	wheelRearRight
)

const (
	dragCoeffDefault    = 0.34
	frontalAreaDefault  = 1.94
	airDensityDefault   = 1.29
	gravityAccel        = -9.81
	anglePreSet         = 0.0
	brakeBalanceDefault = 0.67
	engineTorqueLimit   = 10000.0
	minRotationDenom    = 0.001
)

// VehicleDynamics is a static two-track vehicle model: four independently
// slipping tires producing local forces that are combined into a total
// planar force and yaw moment, integrated forward with an explicit Euler
// step per tick.
type VehicleDynamics struct {
	params model.VehicleParameters
	tires  [numWheels]*Tire

	tirePosition [numWheels]model.Vector2d

	rotVelX     [numWheels]float64
	rotVelGradX [numWheels]float64
	torqueBrake [numWheels]float64
	torqueDrive [numWheels]float64
	forceTire   [numWheels]model.Vector2d
	slipTire    [numWheels]model.Vector2d
	momentZ     [numWheels]float64

	velocityCar model.Vector2d
	yawVelocity float64

	forceTotalXY model.Vector2d
	momentTotalZ float64
}

// NewVehicleDynamics builds a vehicle dynamics instance from static
// parameters and an initial longitudinal velocity used to seed tire
// rotation rates.
func NewVehicleDynamics(p model.VehicleParameters, initialVelX float64) *VehicleDynamics {
	v := &VehicleDynamics{params: p}

	halfTrack := p.TrackWidthM / 2.0
	frontX := p.WheelbaseM/2.0 - p.CogToFrontAxleM
	rearX := frontX - p.WheelbaseM

	v.tirePosition[wheelFrontLeft] = model.Vector2d{X: frontX, Y: halfTrack}
	v.tirePosition[wheelFrontRight] = model.Vector2d{X: frontX, Y: -halfTrack}
	v.tirePosition[wheelRearLeft] = model.Vector2d{X: rearX, Y: halfTrack}
	v.tirePosition[wheelRearRight] = model.Vector2d{X: rearX, Y: -halfTrack}

	staticLoadFront := p.MassKg * gravityAccel / 2.0 * frontX / p.WheelbaseM
	staticLoadRear := p.MassKg * gravityAccel / 2.0 * (p.WheelbaseM - frontX) / p.WheelbaseM
	staticLoad := [numWheels]float64{staticLoadFront, staticLoadFront, staticLoadRear, staticLoadRear}

	for i := 0; i < numWheels; i++ {
		v.tires[i] = NewTire(staticLoad[i], p.TireForcePeakN, p.TireForceSlideN, p.TireSlipPeak, p.TireSlipSlide, p.TireRadiusM, p.FrictionScale)
		v.rotVelX[i] = initialVelX / p.TireRadiusM
	}

	return v
}

// staticTireLoad distributes a vehicle's static weight across its four
// tires by longitudinal CoG position, the same split NewVehicleDynamics
// uses to seed each tire's reference load.
func staticTireLoad(p model.VehicleParameters) [4]float64 {
	frontX := p.WheelbaseM/2.0 - p.CogToFrontAxleM
	front := p.MassKg * gravityAccel / 2.0 * frontX / p.WheelbaseM
	rear := p.MassKg * gravityAccel / 2.0 * (p.WheelbaseM - frontX) / p.WheelbaseM
	return [4]float64{front, front, rear, rear}
}

// SetVelocity records the car-frame velocity and yaw rate this tick's
// force computation should use.
func (v *VehicleDynamics) SetVelocity(velocityCar model.Vector2d, yawVelocity float64) {
	v.velocityCar = velocityCar
	v.yawVelocity = yawVelocity
}

// DriveTrain computes each tire's brake and drive torque from pedal
// positions, brake balance, and a rear-wheel-drive open differential.
func (v *VehicleDynamics) DriveTrain(throttlePedal, brakePedal float64, brakeSuperpose [4]float64) {
	rotVelMean := 0.5 * (v.rotVelX[wheelRearLeft] + v.rotVelX[wheelRearRight])
	var engineTorqueMax float64
	if rotVelMean != 0 {
		engineTorqueMax = v.params.EnginePowerW / rotVelMean
	} else {
		engineTorqueMax = v.params.EnginePowerW / minRotationDenom
	}
	engineTorqueMax = model.Saturate(engineTorqueMax, 0.0, engineTorqueLimit)

	balance := v.params.BrakeBalanceFrac
	if balance == 0 {
		balance = brakeBalanceDefault
	}

	for i := 0; i < numWheels; i++ {
		var brakePedalMod float64
		if i == wheelFrontLeft || i == wheelFrontRight {
			brakePedalMod = balance * 2.0 * brakePedal
		} else {
			brakePedalMod = (1.0 - balance) * 2.0 * brakePedal
		}
		brakePedalMod += brakeSuperpose[i]

		v.torqueBrake[i] = model.Saturate(brakePedalMod, 0.0, 1.0) * v.params.BrakeTorqueLimit

		if i == wheelRearLeft || i == wheelRearRight {
			v.torqueDrive[i] = throttlePedal * engineTorqueMax / 2.0
		} else {
			v.torqueDrive[i] = 0.0
		}
	}
}

// ForceLocal rescales each tire's vertical load, derives slip and tangential
// force at the tire/road interface, and accumulates the per-tire yaw
// moment contribution.
func (v *VehicleDynamics) ForceLocal(timeStep, steerAngle float64, forceVertical [4]float64) {
	angleTire := [numWheels]float64{
		steerAngle + anglePreSet,
		steerAngle - anglePreSet,
		-anglePreSet,
		anglePreSet,
	}

	for i := 0; i < numWheels; i++ {
		tire := v.tires[i]
		tire.Rescale(forceVertical[i])

		velocityTire := v.tirePosition[i].Rotate(math.Pi / 2.0).Scale(v.yawVelocity)
		velocityTire = velocityTire.Add(v.velocityCar)
		velocityTire = velocityTire.Rotate(-angleTire[i])

		var torqueSum float64
		switch {
		case velocityTire.X == 0:
			torqueSum = 0
		case velocityTire.X < 0:
			torqueSum = v.torqueBrake[i]
		default:
			torqueSum = -v.torqueBrake[i]
		}
		torqueSum += v.torqueDrive[i]

		slipX := tire.GetLongSlip(torqueSum)
		slipY := tire.CalcSlipY(slipX, velocityTire.X, velocityTire.Y)
		v.slipTire[i] = model.Vector2d{X: slipX, Y: slipY}

		forceAbs := tire.GetForce(v.slipTire[i].Length())
		force := v.slipTire[i].Norm().Scale(forceAbs)

		posForce := force.X > 0.0
		force.X += tire.GetRollFriction(velocityTire.X)
		if (force.X < 0.0 && posForce) || (force.X > 0.0 && !posForce) {
			force.X = 0.0
		}

		force = force.Rotate(angleTire[i])
		v.forceTire[i] = force
		v.momentZ[i] = v.tirePosition[i].Cross(force)

		rotVelNew := velocityTire.X / (1 - slipX) / tire.Radius
		v.rotVelGradX[i] = (rotVelNew - v.rotVelX[i]) / timeStep
		v.rotVelX[i] = rotVelNew
	}
}

// ForceGlobal sums the four tire forces and yaw moments into the vehicle's
// total planar force and moment, adding quadratic air drag along the
// vehicle's velocity direction.
func (v *VehicleDynamics) ForceGlobal() {
	total := model.Vector2d{}
	moment := 0.0
	for i := 0; i < numWheels; i++ {
		total = total.Add(v.forceTire[i])
		moment += v.momentZ[i]
	}

	speed := v.velocityCar.Length()
	dragCoeff := v.params.DragCoefficient
	if dragCoeff == 0 {
		dragCoeff = dragCoeffDefault
	}
	frontalArea := v.params.FrontalAreaM2
	if frontalArea == 0 {
		frontalArea = frontalAreaDefault
	}
	airDensity := v.params.AirDensity
	if airDensity == 0 {
		airDensity = airDensityDefault
	}
	forceAirDrag := -0.5 * airDensity * dragCoeff * frontalArea * speed * speed
	slideAngle := v.velocityCar.Angle()

	total = total.Rotate(-slideAngle)
	total.X += forceAirDrag
	total = total.Rotate(slideAngle)

	v.forceTotalXY = total
	v.momentTotalZ = moment
}

// ForceTotal returns the total planar force and yaw moment computed by the
// most recent ForceGlobal call.
func (v *VehicleDynamics) ForceTotal() (model.Vector2d, float64) {
	return v.forceTotalXY, v.momentTotalZ
}

// IntegrationState is the per-tick translational/rotational state the
// vehicle dynamics component reads at the start of a step and writes back
// at the end.
type IntegrationState struct {
	Position model.Vector2d // global CS
	Velocity model.Vector2d // vehicle CS
	Accel    model.Vector2d // vehicle CS
	Yaw      float64
	YawVel   float64
	YawAccel float64
}

// IntegrateTranslation performs the translational Euler step: advance
// position at the previous velocity, then update velocity and acceleration
// from the newly computed global force, clamping at any axis's
// zero-crossing to avoid overshoot oscillation.
func IntegrateTranslation(s IntegrationState, forceTotal model.Vector2d, massKg, timeStep float64) IntegrationState {
	velocityGlobal := s.Velocity.Rotate(s.Yaw)
	s.Position = s.Position.Add(velocityGlobal.Scale(timeStep))

	velocityNew := s.Velocity.Add(s.Accel.Scale(timeStep))
	accelNew := forceTotal.Scale(1.0 / massKg)

	if velocityNew.X*s.Velocity.X < 0.0 {
		s.Velocity.X = 0.0
		accelNew.X = 0.0
	} else {
		s.Velocity.X = velocityNew.X
	}
	if velocityNew.Y*s.Velocity.Y < 0.0 {
		s.Velocity.Y = 0.0
		accelNew.Y = 0.0
	} else {
		s.Velocity.Y = velocityNew.Y
	}
	s.Accel = accelNew

	return s
}

// IntegrateRotation performs the rotational Euler step: advance yaw at the
// previous yaw rate, then update yaw rate and acceleration from the newly
// computed yaw moment, with the same zero-crossing clamp as translation.
func IntegrateRotation(s IntegrationState, momentTotal, yawInertiaKgM2, timeStep float64) IntegrationState {
	s.Yaw = s.Yaw + timeStep*s.YawVel

	yawVelNew := s.YawVel + s.YawAccel*timeStep
	yawAccelNew := momentTotal / yawInertiaKgM2

	if yawVelNew*s.YawVel < 0.0 {
		s.YawVel = 0.0
		s.YawAccel = 0.0
	} else {
		s.YawVel = yawVelNew
		s.YawAccel = yawAccelNew
	}

	return s
}
