package model

// LaneRef identifies one lane within the road network by its owning
// road/section and its index within the section, following an arena-with-
// stable-indices pattern rather than cyclic pointers.
type LaneRef struct {
	RoadID     string
	SectionIdx int
	LaneIdx    int
}

// StreamType classifies the outcome of locating an agent's candidate points
// against the lane streams they fall in.
type StreamType int

const (
	StreamEmpty StreamType = iota
	StreamSingle
	StreamNeighbours
)

func (s StreamType) String() string {
	switch s {
	case StreamSingle:
		return "Single"
	case StreamNeighbours:
		return "Neighbours"
	default:
		return "Empty"
	}
}

// RoadPosition is a located point: (road, lane, s, t, heading).
type RoadPosition struct {
	Lane    LaneRef
	S       float64
	T       float64
	Heading float64
	Valid   bool
}

// Remainder is the free lateral width between the reference point and each
// lane boundary, per visited section.
type Remainder struct {
	Left  float64
	Right float64
}

// LocalizationResult is Localization's per-tick output for one agent.
type LocalizationResult struct {
	Reference      RoadPosition
	MainLaneLocator RoadPosition
	Corners        [4]RoadPosition // front-left, front-right, rear-left, rear-right
	StreamKind     StreamType
	IsCrossingLanes bool
	AssignedLanes  map[LaneRef]bool
	Remainders     map[string]Remainder // keyed by "roadID/sectionIdx"
	Valid          bool

	// SearchInitializer lets the next tick's search resume where this
	// one left off (section, s-offset); nil means a full scan is needed.
	SearchInitializer *SearchInitializer
}

// SearchInitializer carries forward localization's resume point so the
// next tick's search can start near the agent's last known section
// instead of scanning the whole network.
type SearchInitializer struct {
	RoadID     string
	SectionIdx int
	SOffset    float64
}

// Agent is a container of components plus the WorldObject side: kinematics,
// bounding box, vehicle parameters, trajectory and lane assignments. An
// Agent is owned by the world and destroyed (removed) when invalid.
type Agent struct {
	ID       int
	Priority int

	State       WorldObjectState
	Box         BoundingBox
	VehicleParams VehicleParameters

	Components map[ComponentID]Component
	Channels   []Channel

	Localization LocalizationResult

	// IsScenarioAgent marks ego/scenario-named agents: SpawnControl treats
	// their spawn failures as IncompleteScenario rather than
	// AgentGenerationError.
	IsScenarioAgent bool

	valid bool
}

// IsValid reports whether the agent is still part of the simulated world.
func (a *Agent) IsValid() bool {
	if a == nil {
		return false
	}
	return a.valid
}

// Invalidate marks the agent for removal at the next tick boundary. An
// agent that leaves the world, collides terminally, or fails localization
// is flagged invalid here rather than removed immediately mid-tick.
func (a *Agent) Invalidate() {
	a.valid = false
}

// NewAgent constructs a freshly valid agent with empty component/channel
// sets; callers populate Components/Channels before handing it to the
// scheduler via AgentParser.
func NewAgent(id, priority int, vp VehicleParameters) *Agent {
	return &Agent{
		ID:            id,
		Priority:      priority,
		VehicleParams: vp,
		Components:    make(map[ComponentID]Component),
		valid:         true,
	}
}
