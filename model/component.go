package model

import "context"

// PortID identifies an input or output port on a component. Ports are small
// integers scoped to the owning component, not globally unique.
type PortID int

// ComponentKind classifies what role a component plays in an agent's graph.
type ComponentKind int

const (
	ComponentUnknown ComponentKind = iota
	ComponentSensor
	ComponentAlgorithm
	ComponentDynamics
	ComponentInit
	ComponentDriver
)

func (k ComponentKind) String() string {
	switch k {
	case ComponentSensor:
		return "Sensor"
	case ComponentAlgorithm:
		return "Algorithm"
	case ComponentDynamics:
		return "Dynamics"
	case ComponentInit:
		return "Init"
	case ComponentDriver:
		return "Driver"
	default:
		return "Unknown"
	}
}

// Steppable is satisfied by any component that can be triggered: it runs a
// step using previously latched inputs. Outputs are never produced here —
// they are produced on demand by HasOutputs.UpdateOutput.
type Steppable interface {
	Trigger(ctx context.Context, t int) error
}

// HasInputs is satisfied by components with input ports.
type HasInputs interface {
	UpdateInput(portID PortID, signal *Signal, t int) error
}

// HasOutputs is satisfied by components with output ports. UpdateOutput
// produces a freshly owned signal instance for portID; the caller takes
// shared ownership of the returned pointer.
type HasOutputs interface {
	UpdateOutput(portID PortID, t int) (*Signal, error)
}

// Component is the full capability set most real components implement: a
// polymorphic unit with identity, input/output ports, and the three step
// operations (update input, update output, trigger). Agents hold a
// heterogeneous collection
// of components implementing exactly the capabilities they need; callers
// that only care about one capability should depend on Steppable,
// HasInputs, or HasOutputs directly rather than on this aggregate.
type Component interface {
	Steppable
	HasInputs
	HasOutputs

	ID() ComponentID
	Kind() ComponentKind
	Priority() int
	CycleTimeMs() int
	OffsetMs() int
	ResponseTimeMs() int
	IsInit() bool
}

// ComponentID identifies a component within its owning agent's graph.
type ComponentID string

// ChannelTarget names one (component, input port) pair that a channel fans
// out to.
type ChannelTarget struct {
	Component ComponentID
	Port      PortID
}

// Channel is a directed fan-out from exactly one producer output port to a
// set of (component, input-port) targets. Channels never buffer across
// ticks: a late write to a channel whose consumers have already read in
// this tick yields the old value, because UpdateOutput is invoked fresh by
// its own scheduled task item rather than by the channel itself.
type Channel struct {
	ID              string
	SourceComponent ComponentID
	SourcePort      PortID
	Targets         []ChannelTarget
}
