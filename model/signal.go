package model

// SignalKind discriminates the payload a Signal carries. Ports declare the
// kind they expect; UpdateInput rejects a mismatch with ErrInvalidSignalType
// rather than attempting a dynamic downcast.
type SignalKind int

const (
	SignalUndefined SignalKind = iota
	SignalScalar               // a single double, e.g. a desired acceleration
	SignalVehicleParameters
	SignalDriverSensor
	SignalTrajectory
	SignalCarInfoList
	SignalPedalPosition
)

func (k SignalKind) String() string {
	switch k {
	case SignalScalar:
		return "Scalar"
	case SignalVehicleParameters:
		return "VehicleParameters"
	case SignalDriverSensor:
		return "DriverSensor"
	case SignalTrajectory:
		return "Trajectory"
	case SignalCarInfoList:
		return "CarInfoList"
	case SignalPedalPosition:
		return "PedalPosition"
	default:
		return "Undefined"
	}
}

// Signal is an immutable, shared payload produced by one component and
// consumed by zero or more others within the same tick. Exactly one of the
// typed fields below is populated, selected by Kind; consumers must check
// Kind before reading a field, mirroring an exhaustive match at the port
// boundary instead of a dynamic downcast.
type Signal struct {
	Kind SignalKind

	Scalar          float64
	VehicleParams   VehicleParameters
	DriverSensor    DriverSensorSignal
	Trajectory      *TrajectorySignal
	CarInfoList     []CarInfo
	PedalPosition   PedalPosition
}

// DriverSensorSignal bundles what a sensor component exposes to driver /
// algorithm components: ego kinematics and the set of visible neighbors.
type DriverSensorSignal struct {
	Ego       WorldObjectState
	Neighbors []CarInfo
}

// CarInfo is a compact description of another agent, as seen by a sensor.
type CarInfo struct {
	AgentID          int
	RelativeDistance float64 // longitudinal gap along the shared lane stream, meters
	Velocity         float64 // m/s
	Acceleration     float64 // m/s^2
	Lane             LaneRef
}

// TrajectorySignal carries a time-ordered list of waypoints for playback.
type TrajectorySignal struct {
	Coordinates []TrajectoryPoint
	IsWorld     bool // true: X/Y/Yaw: false: S/T/Hdg (road coordinates)
}

// TrajectoryPoint is one waypoint. Exactly one coordinate pair is
// meaningful, selected by the owning TrajectorySignal.IsWorld.
type TrajectoryPoint struct {
	TimeMs int

	// Road coordinates (IsWorld == false)
	S   float64
	T   float64
	Hdg float64

	// World coordinates (IsWorld == true)
	X   float64
	Y   float64
	Yaw float64
}

// PedalPosition is the output of a longitudinal algorithm component.
type PedalPosition struct {
	Throttle     float64 // [0,1]
	Brake        float64 // [0,1]
	Gear         int
	SteeringRad  float64
}

// NewScalarSignal constructs a scalar-kind signal.
func NewScalarSignal(v float64) *Signal {
	return &Signal{Kind: SignalScalar, Scalar: v}
}

// NewVehicleParametersSignal constructs a vehicle-parameters signal.
func NewVehicleParametersSignal(p VehicleParameters) *Signal {
	return &Signal{Kind: SignalVehicleParameters, VehicleParams: p}
}

// NewDriverSensorSignal constructs a driver-sensor signal.
func NewDriverSensorSignal(s DriverSensorSignal) *Signal {
	return &Signal{Kind: SignalDriverSensor, DriverSensor: s}
}

// NewTrajectorySignal constructs a trajectory signal.
func NewTrajectorySignal(t *TrajectorySignal) *Signal {
	return &Signal{Kind: SignalTrajectory, Trajectory: t}
}

// NewCarInfoListSignal constructs a car-info-list signal.
func NewCarInfoListSignal(list []CarInfo) *Signal {
	return &Signal{Kind: SignalCarInfoList, CarInfoList: list}
}

// NewPedalPositionSignal constructs a pedal-position signal.
func NewPedalPositionSignal(p PedalPosition) *Signal {
	return &Signal{Kind: SignalPedalPosition, PedalPosition: p}
}
