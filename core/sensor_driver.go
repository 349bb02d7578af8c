package core

import (
	"context"
	"fmt"
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

const (
	portSensorDistanceToLeader model.PortID = 0
	portSensorEgoVelocity      model.PortID = 1

	noLeaderGapM = math.MaxFloat64 / 2
)

// DriverSensor reports an agent's own longitudinal velocity and the
// bumper-to-bumper gap to the nearest leading agent on its lane, the two
// scalar inputs CruiseControlByDistance needs. With no leader on the lane
// it reports an effectively unbounded gap, matching the controller's
// coast-to-desired-velocity branch. It implements model.Component.
type DriverSensor struct {
	id          model.ComponentID
	priority    int
	cycleTimeMs int
	offsetMs    int
	responseMs  int
	isInit      bool

	agent *model.Agent
	world LeadingAgentFinder

	distanceToLeader float64
	egoVelocity      float64
}

var _ model.Component = (*DriverSensor)(nil)

// NewDriverSensor constructs a sensor bound to agent, querying world for
// the leading agent on the same lane each Trigger.
func NewDriverSensor(id model.ComponentID, priority, cycleTimeMs, offsetMs, responseMs int, agent *model.Agent, world LeadingAgentFinder) *DriverSensor {
	return &DriverSensor{
		id:          id,
		priority:    priority,
		cycleTimeMs: cycleTimeMs,
		offsetMs:    offsetMs,
		responseMs:  responseMs,
		agent:       agent,
		world:       world,
	}
}

func (s *DriverSensor) ID() model.ComponentID    { return s.id }
func (s *DriverSensor) Kind() model.ComponentKind { return model.ComponentSensor }
func (s *DriverSensor) Priority() int             { return s.priority }
func (s *DriverSensor) CycleTimeMs() int          { return s.cycleTimeMs }
func (s *DriverSensor) OffsetMs() int             { return s.offsetMs }
func (s *DriverSensor) ResponseTimeMs() int       { return s.responseMs }
func (s *DriverSensor) IsInit() bool              { return s.isInit }

// UpdateInput always fails: DriverSensor has no input ports.
func (s *DriverSensor) UpdateInput(portID model.PortID, signal *model.Signal, t int) error {
	return fmt.Errorf("%w: driver sensor has no input port %d", schederr.ErrInvalidLink, portID)
}

// UpdateOutput returns the distance-to-leader or ego-velocity scalar
// computed by the last Trigger.
func (s *DriverSensor) UpdateOutput(portID model.PortID, t int) (*model.Signal, error) {
	switch portID {
	case portSensorDistanceToLeader:
		return model.NewScalarSignal(s.distanceToLeader), nil
	case portSensorEgoVelocity:
		return model.NewScalarSignal(s.egoVelocity), nil
	default:
		return nil, fmt.Errorf("%w: driver sensor has no output port %d", schederr.ErrInvalidLink, portID)
	}
}

// Trigger reads the agent's own velocity and its leading agent's gap, if
// any is registered on the same lane ahead of it.
func (s *DriverSensor) Trigger(ctx context.Context, t int) error {
	s.egoVelocity = s.agent.State.VelLon

	ref := s.agent.Localization.Reference
	leader, ok := s.world.LeadingAgent(ref.Lane, ref.S)
	if !ok {
		s.distanceToLeader = noLeaderGapM
		return nil
	}

	gap := leader.Localization.Reference.S - ref.S - leader.Box.LengthM/2 - s.agent.Box.LengthM/2
	if gap < 0 {
		gap = 0
	}
	s.distanceToLeader = gap
	return nil
}
