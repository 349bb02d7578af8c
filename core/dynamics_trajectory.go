package core

import (
	"context"
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
)

// TrajectoryPlayback is a dynamics component that drives its agent exactly
// along a prerecorded world-coordinate trajectory: each Trigger advances to
// the next waypoint and writes position, longitudinal velocity and yaw
// directly onto the owning agent. Once the trajectory is exhausted it
// extrapolates from the last waypoint's velocity and heading rather than
// holding the agent still. It implements model.Component; it has no input
// or output ports.
type TrajectoryPlayback struct {
	id          model.ComponentID
	priority    int
	cycleTimeMs int
	offsetMs    int
	responseMs  int
	isInit      bool

	agent      *model.Agent
	trajectory *model.TrajectorySignal
	timeStepS  float64
	counter    int
}

// NewTrajectoryPlayback constructs a playback component bound to agent and
// the world-coordinate trajectory it should follow exactly.
func NewTrajectoryPlayback(id model.ComponentID, priority, cycleTimeMs, offsetMs, responseMs int, agent *model.Agent, trajectory *model.TrajectorySignal) *TrajectoryPlayback {
	return &TrajectoryPlayback{
		id:          id,
		priority:    priority,
		cycleTimeMs: cycleTimeMs,
		offsetMs:    offsetMs,
		responseMs:  responseMs,
		agent:       agent,
		trajectory:  trajectory,
		timeStepS:   float64(cycleTimeMs) / 1000.0,
	}
}

func (d *TrajectoryPlayback) ID() model.ComponentID    { return d.id }
func (d *TrajectoryPlayback) Kind() model.ComponentKind { return model.ComponentDynamics }
func (d *TrajectoryPlayback) Priority() int             { return d.priority }
func (d *TrajectoryPlayback) CycleTimeMs() int          { return d.cycleTimeMs }
func (d *TrajectoryPlayback) OffsetMs() int             { return d.offsetMs }
func (d *TrajectoryPlayback) ResponseTimeMs() int       { return d.responseMs }
func (d *TrajectoryPlayback) IsInit() bool              { return d.isInit }

// UpdateInput is a no-op: the component has no input ports.
func (d *TrajectoryPlayback) UpdateInput(portID model.PortID, signal *model.Signal, t int) error {
	return nil
}

// UpdateOutput is a no-op: the component has no output ports.
func (d *TrajectoryPlayback) UpdateOutput(portID model.PortID, t int) (*model.Signal, error) {
	return nil, nil
}

// Trigger advances to the next recorded waypoint, or extrapolates past the
// end of the trajectory by holding the last velocity and heading. Waypoint
// velocity is not stored in the trajectory format, so it is derived from
// the distance covered since the previous waypoint over one cycle.
func (d *TrajectoryPlayback) Trigger(ctx context.Context, t int) error {
	coords := d.trajectory.Coordinates
	if len(coords) == 0 {
		return nil
	}

	if d.counter < len(coords) {
		wp := coords[d.counter]
		velocity := d.velocityInto(d.counter)
		d.agent.State.X = wp.X
		d.agent.State.Y = wp.Y
		d.agent.State.VelLon = velocity
		d.agent.State.Yaw = wp.Yaw
		d.counter++
		return nil
	}

	last := coords[len(coords)-1]
	velocity := d.velocityInto(len(coords) - 1)
	d.agent.State.X += d.timeStepS * velocity * math.Cos(last.Yaw)
	d.agent.State.Y += d.timeStepS * velocity * math.Sin(last.Yaw)
	d.agent.State.VelLon = velocity
	d.agent.State.Yaw = last.Yaw
	return nil
}

// velocityInto returns the speed covered arriving at coordinate index idx,
// measured over one cycle time, or 0 for the trajectory's first waypoint.
func (d *TrajectoryPlayback) velocityInto(idx int) float64 {
	if idx <= 0 || idx >= len(d.trajectory.Coordinates) {
		return 0
	}
	prev := d.trajectory.Coordinates[idx-1]
	cur := d.trajectory.Coordinates[idx]
	dx := cur.X - prev.X
	dy := cur.Y - prev.Y
	return math.Hypot(dx, dy) / d.timeStepS
}
