package core

import (
	"context"
	"fmt"

	"github.com/hlrs-vis/openpass-sub007/internal/logging"
	"github.com/hlrs-vis/openpass-sub007/model"
	"github.com/hlrs-vis/openpass-sub007/schederr"
)

const (
	assumedTimeToBrakeS   = 2.0
	holdbackSearchLimitMs = 5000
	holdbackStepMs        = 100
	velocityReductionStep = 1.0 // m/s per adaptation step
)

// SpawnPoint is a black-box policy: given the current timestamp, it either
// produces the next blueprint it wants placed or reports it has nothing due.
type SpawnPoint interface {
	NextAgentBlueprint(timestamp int) (*model.AgentBlueprint, bool)
}

// LeadingAgentFinder looks up the nearest agent ahead of a lane position,
// the only world query SpawnControl needs to perform its overlap checks.
type LeadingAgentFinder interface {
	LeadingAgent(lane model.LaneRef, s float64) (*model.Agent, bool)
}

// AgentFactory instantiates a blueprint into a registered world agent.
type AgentFactory interface {
	InstantiateAgent(blueprint model.AgentBlueprint, timestamp int) (*model.Agent, error)
}

type pendingSpawn struct {
	spawnPoint      SpawnPoint
	nextSpawnTime   int
	held            *model.AgentBlueprint
	holdbackDeadline int
}

// SpawnControl mediates between spawn-point policies and the scheduler: it
// asks each due policy for a blueprint, adapts or delays it to avoid a
// rear-end collision with a leading agent on the same lane, and buffers
// feasible agents until PullNewAgents drains them.
type SpawnControl struct {
	policies  []*pendingSpawn
	world     LeadingAgentFinder
	factory   AgentFactory
	cycleTime int
	logger    logging.Logger

	newAgents []*model.Agent
}

// SpawnControlOption customises SpawnControl construction.
type SpawnControlOption func(*SpawnControl)

// WithSpawnControlLogger attaches the structured logger SpawnControl
// reports hold-back and placement-failure diagnostics through.
func WithSpawnControlLogger(logger logging.Logger) SpawnControlOption {
	return func(s *SpawnControl) { s.logger = logger }
}

// NewSpawnControl constructs a SpawnControl over the given spawn points.
func NewSpawnControl(spawnPoints []SpawnPoint, world LeadingAgentFinder, factory AgentFactory, cycleTime int, opts ...SpawnControlOption) *SpawnControl {
	policies := make([]*pendingSpawn, len(spawnPoints))
	for i, sp := range spawnPoints {
		policies[i] = &pendingSpawn{spawnPoint: sp, holdbackDeadline: -1}
	}
	s := &SpawnControl{policies: policies, world: world, factory: factory, cycleTime: cycleTime, logger: logging.Noop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs one tick of spawn control: for each policy whose next-due
// time or hold-back deadline equals now, it tries to place the blueprint,
// adapting velocity or delaying it as needed.
func (s *SpawnControl) Execute(timestamp int) error {
	for _, p := range s.policies {
		var blueprint *model.AgentBlueprint

		switch {
		case p.held != nil && p.holdbackDeadline == timestamp:
			blueprint = p.held
			p.held = nil
			p.holdbackDeadline = -1
		case p.held == nil && p.nextSpawnTime == timestamp:
			bp, ok := p.spawnPoint.NextAgentBlueprint(timestamp)
			if !ok {
				continue
			}
			blueprint = bp
		default:
			continue
		}

		if err := s.place(p, blueprint, timestamp); err != nil {
			return err
		}
	}
	return nil
}

func (s *SpawnControl) place(p *pendingSpawn, blueprint *model.AgentBlueprint, timestamp int) error {
	if s.AdaptVelocityForAgentBlueprint(blueprint) {
		return s.instantiate(p, blueprint, timestamp)
	}

	holdback := s.CalculateHoldbackTime(blueprint)
	if holdback >= 0 {
		s.logger.Debug(context.Background(), "holding back blueprint to avoid rear-end overlap",
			logging.String("lane", blueprint.Lane.RoadID),
			logging.Int("holdbackMs", holdback),
		)
		p.held = blueprint
		p.holdbackDeadline = timestamp + holdback
		return nil
	}

	if isScenarioMember(blueprint) {
		err := fmt.Errorf("%w: blueprint at s=%.2f could not be placed within the hold-back budget", schederr.ErrIncompleteScenario, blueprint.S)
		s.logger.Error(context.Background(), "scenario agent could not be placed", logging.String("error", err.Error()))
		return err
	}
	err := fmt.Errorf("%w: blueprint at s=%.2f could not be placed", schederr.ErrAgentGenerationError, blueprint.S)
	s.logger.Error(context.Background(), "agent could not be placed", logging.String("error", err.Error()))
	return err
}

func (s *SpawnControl) instantiate(p *pendingSpawn, blueprint *model.AgentBlueprint, timestamp int) error {
	agent, err := s.factory.InstantiateAgent(*blueprint, timestamp)
	if err != nil {
		if isScenarioMember(blueprint) {
			return fmt.Errorf("%w: %v", schederr.ErrIncompleteScenario, err)
		}
		return fmt.Errorf("%w: %v", schederr.ErrAgentGenerationError, err)
	}
	s.newAgents = append(s.newAgents, agent)
	p.nextSpawnTime += s.cycleTime
	return nil
}

// PullNewAgents returns and clears the agents placed since the last pull.
func (s *SpawnControl) PullNewAgents() []*model.Agent {
	out := s.newAgents
	s.newAgents = nil
	return out
}

// AdaptVelocityForAgentBlueprint reduces the blueprint's longitudinal
// velocity, if a leading agent exists on the same lane, until the two
// vehicles' assumed-time-to-brake extrusions no longer overlap. Returns
// false if no velocity reduction down to a stop resolves the overlap.
func (s *SpawnControl) AdaptVelocityForAgentBlueprint(blueprint *model.AgentBlueprint) bool {
	leader, ok := s.world.LeadingAgent(blueprint.Lane, blueprint.S)
	if !ok {
		return true
	}

	for blueprint.VelocityLon > 0 {
		if drivingCorridorDoesNotOverlap(assumedTimeToBrakeS, leader, blueprint, 0) {
			return true
		}
		blueprint.VelocityLon -= velocityReductionStep
		if blueprint.VelocityLon < 0 {
			blueprint.VelocityLon = 0
		}
	}
	return drivingCorridorDoesNotOverlap(assumedTimeToBrakeS, leader, blueprint, 0)
}

// CalculateHoldbackTime searches delays of 0..5000ms in 100ms steps for the
// smallest one at which the leader (assumed to keep moving at its current
// velocity/acceleration) has moved far enough ahead that the overlap test
// passes. Returns -1 if no delay in the search window resolves it.
func (s *SpawnControl) CalculateHoldbackTime(blueprint *model.AgentBlueprint) int {
	leader, ok := s.world.LeadingAgent(blueprint.Lane, blueprint.S)
	if !ok {
		return 0
	}

	for delayMs := 0; delayMs <= holdbackSearchLimitMs; delayMs += holdbackStepMs {
		delayS := float64(delayMs) / 1000.0
		if drivingCorridorDoesNotOverlap(assumedTimeToBrakeS, leader, blueprint, delayS) {
			return delayMs
		}
	}
	return -1
}

// drivingCorridorDoesNotOverlap extends both vehicles' bounding boxes
// forward by the distance they would cover under homogeneous motion over
// the assumed time-to-brake (accounting for an optional spawn delay during
// which only the leader moves), and reports whether the extruded ranges
// still do not overlap.
func drivingCorridorDoesNotOverlap(ttb float64, leader *model.Agent, ego *model.AgentBlueprint, delayS float64) bool {
	leaderS := leader.Localization.Reference.S + leader.State.VelLon*delayS
	leaderHalfLen := leader.Box.LengthM / 2.0
	leaderExtrusion := leader.State.VelLon*ttb + 0.5*leader.State.AccLon*ttb*ttb
	leaderRearProjected := leaderS - leaderHalfLen + leaderExtrusion

	egoHalfLen := ego.VehicleParams.LengthM / 2.0
	egoExtrusion := ego.VelocityLon*ttb + 0.5*ego.AccelLon*ttb*ttb
	egoFrontProjected := ego.S + egoHalfLen + egoExtrusion

	return egoFrontProjected < leaderRearProjected
}

// isScenarioMember reports whether a blueprint belongs to an ego or
// scenario-named agent, for which spawn failure is an IncompleteScenario
// rather than a plain AgentGenerationError.
func isScenarioMember(blueprint *model.AgentBlueprint) bool {
	return blueprint.IsScenarioAgent
}
