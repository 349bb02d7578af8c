package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hlrs-vis/openpass-sub007/internal/logging"
	"github.com/hlrs-vis/openpass-sub007/internal/observability"
	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/owl"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

// World is the shared state every scheduler tick mutates: the road network
// and the registered agents. Agent access is guarded by an RWMutex so that
// concurrent readers (observation, manipulators querying other agents) and
// the single per-tick writer (world sync, spawn, invalidation) never race.
//
// World satisfies LeadingAgentFinder and AgentFactory so SpawnControl can be
// wired directly to it.
type World struct {
	mu     sync.RWMutex
	net    *owl.Network
	loc    *Localization
	agents map[int]*model.Agent
	nextID int
}

// NewWorld constructs an empty world over the given road network.
func NewWorld(net *owl.Network) *World {
	return &World{
		net:    net,
		loc:    NewLocalization(net),
		agents: make(map[int]*model.Agent),
	}
}

// Network returns the road network the world was constructed with.
func (w *World) Network() *owl.Network {
	return w.net
}

// SetLocalizationMetrics attaches a collector the world's localization
// engine reports search duration and budget-exhaustion counts into.
func (w *World) SetLocalizationMetrics(metrics *observability.LocalizationCollector) {
	w.loc.WithMetrics(metrics)
}

// SetLogger attaches the structured logger the world's localization engine
// reports lost-agent diagnostics through.
func (w *World) SetLogger(logger logging.Logger) {
	w.loc.WithLogger(logger)
}

// Agents returns every currently valid agent, ordered by id.
func (w *World) Agents() []*model.Agent {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*model.Agent, 0, len(w.agents))
	for _, a := range w.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Agent looks up a registered agent by id.
func (w *World) Agent(id int) (*model.Agent, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	return a, ok
}

// Register adds an already-constructed agent to the world.
func (w *World) Register(agent *model.Agent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.agents[agent.ID] = agent
}

// RemoveInvalidAgents drops every agent that Invalidate marked for removal,
// releasing the world's reference to it, and returns their ids.
func (w *World) RemoveInvalidAgents() []int {
	w.mu.Lock()
	defer w.mu.Unlock()

	var removed []int
	for id, a := range w.agents {
		if !a.IsValid() {
			removed = append(removed, id)
			delete(w.agents, id)
		}
	}
	sort.Ints(removed)
	return removed
}

// InstantiateAgent builds a world-registered agent shell from a spawn
// blueprint: vehicle parameters, bounding box sized to them, and an initial
// lane/s placement. Component wiring is the caller's job; InstantiateAgent
// only establishes the WorldObject side the blueprint describes. It
// satisfies AgentFactory.
func (w *World) InstantiateAgent(blueprint model.AgentBlueprint, timestamp int) (*model.Agent, error) {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.mu.Unlock()

	agent := model.NewAgent(id, 0, blueprint.VehicleParams)
	agent.IsScenarioAgent = blueprint.IsScenarioAgent
	agent.State.VelLon = blueprint.VelocityLon
	agent.State.AccLon = blueprint.AccelLon
	agent.Box.LengthM = blueprint.VehicleParams.LengthM
	agent.Box.WidthM = blueprint.VehicleParams.WidthM
	agent.Box.RearAxleToCenterM = blueprint.VehicleParams.LengthM / 2.0

	agent.Localization.Reference = model.RoadPosition{
		Lane:  blueprint.Lane,
		S:     blueprint.S,
		Valid: true,
	}
	agent.Localization.AssignedLanes = map[model.LaneRef]bool{blueprint.Lane: true}

	w.Register(agent)
	return agent, nil
}

// LeadingAgent returns the agent on lane with the smallest S strictly ahead
// of s, if one is registered. It satisfies LeadingAgentFinder.
func (w *World) LeadingAgent(lane model.LaneRef, s float64) (*model.Agent, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var best *model.Agent
	bestS := 0.0
	for _, a := range w.agents {
		if !a.IsValid() || !a.Localization.AssignedLanes[lane] {
			continue
		}
		as := a.Localization.Reference.S
		if as <= s {
			continue
		}
		if best == nil || as < bestS {
			best = a
			bestS = as
		}
	}
	return best, best != nil
}

// Localize relocates every valid agent against the road network, carrying
// each agent's SearchInitializer forward so the next tick resumes near its
// last known section. An agent whose search comes back empty is marked
// invalid rather than dropped immediately, per the scheduler's remove-at-
// tick-boundary lifecycle.
func (w *World) Localize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, a := range w.agents {
		if !a.IsValid() {
			continue
		}
		result := w.loc.Locate(a.Box, a.Localization.SearchInitializer)
		if !result.Valid {
			a.Invalidate()
			continue
		}
		result.SearchInitializer = &model.SearchInitializer{
			RoadID:     result.Reference.Lane.RoadID,
			SectionIdx: result.Reference.Lane.SectionIdx,
			SOffset:    result.Reference.S,
		}
		a.Localization = result
	}
	return nil
}

// validateAgentCount reports a configuration error once the registered
// agent count exceeds limit. Scheduler.updateAgents calls it once per tick
// after spawn control and removal, using the cap set via WithMaxAgents (0
// leaves it unbounded).
func (w *World) validateAgentCount(limit int) error {
	w.mu.RLock()
	n := len(w.agents)
	w.mu.RUnlock()
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: world holds %d agents, exceeding the configured limit of %d", schederr.ErrConfigurationError, n, limit)
	}
	return nil
}
