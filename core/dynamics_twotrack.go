package core

import (
	"context"
	"fmt"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

const (
	portTwoTrackDesiredAcceleration model.PortID = 0
	portTwoTrackSteeringAngle       model.PortID = 1

	dynamicsDefaultSteeringAngle = 0.0
)

// DynamicsTwoTrack is the agent's Dynamics component: each Trigger converts
// the latched desired acceleration into a gear/pedal pair via
// LongitudinalAlgorithm, runs one tick of the four-tire VehicleDynamics
// model, integrates the resulting force and moment forward, and writes the
// new kinematic state and bounding box back onto the owning agent. It
// implements model.Component.
type DynamicsTwoTrack struct {
	id          model.ComponentID
	priority    int
	cycleTimeMs int
	offsetMs    int
	responseMs  int
	isInit      bool

	agent     *model.Agent
	dynamics  *VehicleDynamics
	timeStepS float64

	desiredAcceleration float64
	steeringAngle       float64

	velocity model.Vector2d
	accel    model.Vector2d
	yawVel   float64
	yawAccel float64
}

var _ model.Component = (*DynamicsTwoTrack)(nil)

// NewDynamicsTwoTrack constructs a two-track dynamics component bound to
// agent, seeding tire rotation rates from the agent's current longitudinal
// velocity.
func NewDynamicsTwoTrack(id model.ComponentID, priority, cycleTimeMs, offsetMs, responseMs int, agent *model.Agent) *DynamicsTwoTrack {
	return &DynamicsTwoTrack{
		id:          id,
		priority:    priority,
		cycleTimeMs: cycleTimeMs,
		offsetMs:    offsetMs,
		responseMs:  responseMs,
		agent:       agent,
		dynamics:    NewVehicleDynamics(agent.VehicleParams, agent.State.VelLon),
		timeStepS:   float64(cycleTimeMs) / 1000.0,
		velocity:      model.Vector2d{X: agent.State.VelLon, Y: agent.State.VelLat},
		steeringAngle: dynamicsDefaultSteeringAngle,
	}
}

func (d *DynamicsTwoTrack) ID() model.ComponentID    { return d.id }
func (d *DynamicsTwoTrack) Kind() model.ComponentKind { return model.ComponentDynamics }
func (d *DynamicsTwoTrack) Priority() int             { return d.priority }
func (d *DynamicsTwoTrack) CycleTimeMs() int          { return d.cycleTimeMs }
func (d *DynamicsTwoTrack) OffsetMs() int             { return d.offsetMs }
func (d *DynamicsTwoTrack) ResponseTimeMs() int       { return d.responseMs }
func (d *DynamicsTwoTrack) IsInit() bool              { return d.isInit }

// UpdateInput latches the desired acceleration or the front-tire steering
// angle.
func (d *DynamicsTwoTrack) UpdateInput(portID model.PortID, signal *model.Signal, t int) error {
	if signal.Kind != model.SignalScalar {
		return fmt.Errorf("%w: two-track dynamics expects a scalar signal on port %d", schederr.ErrInvalidSignalType, portID)
	}
	switch portID {
	case portTwoTrackDesiredAcceleration:
		d.desiredAcceleration = signal.Scalar
	case portTwoTrackSteeringAngle:
		d.steeringAngle = signal.Scalar
	default:
		return fmt.Errorf("%w: two-track dynamics has no input port %d", schederr.ErrInvalidLink, portID)
	}
	return nil
}

// UpdateOutput is a no-op: the kinematic result is written directly onto
// the owning agent rather than published on an output port.
func (d *DynamicsTwoTrack) UpdateOutput(portID model.PortID, t int) (*model.Signal, error) {
	return nil, nil
}

// Trigger runs the longitudinal algorithm to pick a gear and pedal
// positions for the wished acceleration, feeds them through one tick of
// the tire/drivetrain force model, integrates translation and rotation,
// and writes the resulting position, velocity and yaw back onto the
// agent's state and bounding box.
func (d *DynamicsTwoTrack) Trigger(ctx context.Context, t int) error {
	longAlgo := NewLongitudinalAlgorithm(d.agent.VehicleParams, d.velocity.X, d.desiredAcceleration)
	if err := longAlgo.CalculateGearAndEngineSpeed(); err != nil {
		return err
	}
	longAlgo.CalculatePedalPositions()

	d.dynamics.SetVelocity(d.velocity, d.yawVel)
	d.dynamics.DriveTrain(longAlgo.AcceleratorPedalPosition(), longAlgo.BrakePedalPosition(), [4]float64{})

	staticLoad := staticTireLoad(d.agent.VehicleParams)
	d.dynamics.ForceLocal(d.timeStepS, d.steeringAngle, staticLoad)
	d.dynamics.ForceGlobal()
	forceTotal, momentTotal := d.dynamics.ForceTotal()

	state := IntegrationState{
		Position: model.Vector2d{X: d.agent.State.X, Y: d.agent.State.Y},
		Velocity: d.velocity,
		Accel:    d.accel,
		Yaw:      d.agent.State.Yaw,
		YawVel:   d.yawVel,
		YawAccel: d.yawAccel,
	}
	state = IntegrateTranslation(state, forceTotal, d.agent.VehicleParams.MassKg, d.timeStepS)
	state = IntegrateRotation(state, momentTotal, d.agent.VehicleParams.YawInertiaKgM2, d.timeStepS)

	d.velocity = state.Velocity
	d.accel = state.Accel
	d.yawVel = state.YawVel
	d.yawAccel = state.YawAccel

	d.agent.State.X = state.Position.X
	d.agent.State.Y = state.Position.Y
	d.agent.State.Yaw = state.Yaw
	d.agent.State.VelLon = state.Velocity.X
	d.agent.State.VelLat = state.Velocity.Y
	d.agent.State.YawRate = state.YawVel
	d.agent.State.AccLon = state.Accel.X
	d.agent.State.AccLat = state.Accel.Y
	d.agent.State.YawAccel = state.YawAccel

	d.agent.Box.CenterX = state.Position.X
	d.agent.Box.CenterY = state.Position.Y
	d.agent.Box.Yaw = state.Yaw

	return nil
}
