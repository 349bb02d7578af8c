package core

import (
	"context"
	"fmt"
	"math"

	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

const (
	portDistanceToLeader model.PortID = 0
	portEgoVelocity      model.PortID = 1

	portDesiredAcceleration model.PortID = 0
	portCoastingAcceleration model.PortID = 1

	cruiseControlAirDrag       = 0.5
	cruiseControlAirDensity    = 1.2
	cruiseControlCarHeightM    = 1.5
	cruiseControlCarWidthM     = 1.8
	cruiseControlCarWeightKg   = 1300.0
	cruiseControlAccelMax      = 3.0
	cruiseControlDecelMin      = -15.0
	gapMinVelocityScale        = 3.6 / 2.0 // half the velocity in km/h, in meters
)

// CruiseControlByDistance is a longitudinal gap controller: it targets a
// desired cruising velocity when the gap to the leading agent exceeds a
// minimum gap of half the ego velocity in km/h (taken as meters), and
// otherwise decelerates in proportion to the shortfall below that minimum
// over the cycle-plus-reaction-time horizon. It implements model.Component.
type CruiseControlByDistance struct {
	id           model.ComponentID
	priority     int
	cycleTimeMs  int
	offsetMs     int
	responseMs   int
	isInit       bool

	desiredVelocity float64
	reactionTimeS   float64
	cycleTimeS      float64
	airDragCoeff    float64

	distanceToLeader float64
	egoVelocity      float64

	desiredAcceleration float64
	coastingAcceleration float64
}

// NewCruiseControlByDistance constructs the component. desiredVelocity is
// in m/s, reactionTimeS in seconds, cycleTimeMs the component's own cycle
// time (used both for scheduling and as the plant's internal timestep).
func NewCruiseControlByDistance(id model.ComponentID, priority, cycleTimeMs, offsetMs, responseMs int, desiredVelocity, reactionTimeS float64) *CruiseControlByDistance {
	return &CruiseControlByDistance{
		id:              id,
		priority:        priority,
		cycleTimeMs:     cycleTimeMs,
		offsetMs:        offsetMs,
		responseMs:      responseMs,
		desiredVelocity: desiredVelocity,
		reactionTimeS:   reactionTimeS,
		cycleTimeS:      float64(cycleTimeMs) / 1000.0,
		airDragCoeff:    cruiseControlAirDrag * cruiseControlAirDensity * cruiseControlCarHeightM * cruiseControlCarWidthM / cruiseControlCarWeightKg / 2.0,
	}
}

func (c *CruiseControlByDistance) ID() model.ComponentID    { return c.id }
func (c *CruiseControlByDistance) Kind() model.ComponentKind { return model.ComponentAlgorithm }
func (c *CruiseControlByDistance) Priority() int             { return c.priority }
func (c *CruiseControlByDistance) CycleTimeMs() int          { return c.cycleTimeMs }
func (c *CruiseControlByDistance) OffsetMs() int             { return c.offsetMs }
func (c *CruiseControlByDistance) ResponseTimeMs() int       { return c.responseMs }
func (c *CruiseControlByDistance) IsInit() bool              { return c.isInit }

// UpdateInput latches the distance-to-leader or ego-velocity scalar input.
func (c *CruiseControlByDistance) UpdateInput(portID model.PortID, signal *model.Signal, t int) error {
	if signal.Kind != model.SignalScalar {
		return fmt.Errorf("%w: cruise control by distance expects a scalar signal on port %d", schederr.ErrInvalidSignalType, portID)
	}
	switch portID {
	case portDistanceToLeader:
		c.distanceToLeader = signal.Scalar
	case portEgoVelocity:
		c.egoVelocity = signal.Scalar
	default:
		return fmt.Errorf("%w: cruise control by distance has no input port %d", schederr.ErrInvalidLink, portID)
	}
	return nil
}

// UpdateOutput returns the desired acceleration or the coasting
// (air-drag-only) acceleration computed by the last Trigger.
func (c *CruiseControlByDistance) UpdateOutput(portID model.PortID, t int) (*model.Signal, error) {
	switch portID {
	case portDesiredAcceleration:
		return model.NewScalarSignal(c.desiredAcceleration), nil
	case portCoastingAcceleration:
		return model.NewScalarSignal(c.coastingAcceleration), nil
	default:
		return nil, fmt.Errorf("%w: cruise control by distance has no output port %d", schederr.ErrInvalidLink, portID)
	}
}

// Trigger recomputes the desired acceleration from the latched inputs.
func (c *CruiseControlByDistance) Trigger(ctx context.Context, t int) error {
	c.desiredAcceleration = 0
	if t > 0 {
		c.coastingAcceleration = -c.airDragCoeff * c.egoVelocity * c.egoVelocity

		gapMin := c.egoVelocity * gapMinVelocityScale
		if c.distanceToLeader > gapMin {
			if c.egoVelocity > c.desiredVelocity {
				c.desiredAcceleration = c.coastingAcceleration
			} else {
				c.desiredAcceleration = (c.desiredVelocity - c.egoVelocity) / c.cycleTimeS
			}
		} else {
			ttc := c.cycleTimeS
			c.desiredAcceleration = 2 * (c.distanceToLeader - gapMin) / ((ttc + c.reactionTimeS) * c.cycleTimeS)
		}
	}

	c.desiredAcceleration = plausibleAcceleration(c.desiredAcceleration)
	return nil
}

func plausibleAcceleration(a float64) float64 {
	if a > 0 {
		return math.Min(a, cruiseControlAccelMax)
	}
	return math.Max(a, cruiseControlDecelMin)
}
