package model

// VehicleParameters are the numerical parameters of a vehicle's dynamics
// model. They are set exactly once at construction and never mutated
// afterwards.
type VehicleParameters struct {
	MassKg          float64
	WheelbaseM      float64
	TrackWidthM     float64
	CogToFrontAxleM float64 // COG position relative to front axle, along x
	HeightCogM      float64

	EnginePowerW      float64
	EngineTorqueLimit float64 // N*m, absolute cap regardless of power/omega
	EngineMinRpm      float64
	EngineMaxRpm      float64
	AxleRatio         float64
	GearRatios        []float64 // index 0 == gear 1

	BrakeTorqueLimit float64 // N*m
	BrakeBalanceFrac float64 // fraction of brake torque on the front axle

	TireRadiusM      float64
	TireForcePeakN   float64
	TireForceSlideN  float64
	TireSlipPeak     float64
	TireSlipSlide    float64
	FrictionScale    float64 // roll-friction scale factor (mu_scale)

	DragCoefficient float64
	FrontalAreaM2   float64
	AirDensity      float64

	YawInertiaKgM2 float64 // I_zz

	LengthM float64
	WidthM  float64
}

// BoundingBox is an agent's rotated rectangle in world coordinates.
type BoundingBox struct {
	CenterX, CenterY float64
	Yaw              float64 // radians
	LengthM, WidthM  float64
	// RearAxleToCenterM offsets the geometric center from the reference
	// point along the vehicle's longitudinal axis (lengthwise center offset).
	RearAxleToCenterM float64
}

// WorldObjectState is the kinematic snapshot of an agent at a tick: position,
// velocity, acceleration, yaw and their derivatives, used both as the
// persisted Agent state and as the payload sensors expose to consumers.
type WorldObjectState struct {
	X, Y     float64
	Yaw      float64
	VelLon   float64 // vehicle-frame longitudinal velocity, m/s
	VelLat   float64 // vehicle-frame lateral velocity, m/s
	YawRate  float64
	AccLon   float64
	AccLat   float64
	YawAccel float64
}

// DriverIntent captures what the driver/algorithm layer wants from the
// dynamics component this tick.
type DriverIntent struct {
	Throttle    float64 // [0,1]
	Brake       float64 // [0,1]
	SteeringRad float64 // front-tire steering angle
	// BrakeSuperpose lets a lane-assist style manipulator add a per-tire
	// brake contribution (front-left, front-right, rear-left, rear-right).
	BrakeSuperpose [4]float64
}
